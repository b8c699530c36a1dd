package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStore(t *testing.T) {
	store, err := ParseStore("coles")
	require.NoError(t, err)
	assert.Equal(t, StoreColes, store)

	store, err = ParseStore("woolies")
	require.NoError(t, err)
	assert.Equal(t, StoreWoolies, store)

	_, err = ParseStore("aldi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")
}

func TestCategoryFromNames(t *testing.T) {
	assert.Equal(t, CategoryCode("00"), CategoryFromNames([]string{"Fruit"}))
	assert.Equal(t, CategoryCode("01"), CategoryFromNames([]string{"Vegetables"}))
	// First recognized name wins.
	assert.Equal(t, CategoryCode("02"), CategoryFromNames([]string{"Unknown Aisle", "Salad & Herbs"}))
	// No match means no category.
	assert.Equal(t, CategoryCode(""), CategoryFromNames([]string{"Unknown Aisle"}))
	assert.Equal(t, CategoryCode(""), CategoryFromNames(nil))
}
