package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/product"
	"github.com/xenking/hotprices/internal/stores"
)

var testDay = product.NewDate(2024, time.January, 2)

func colesCapture(t *testing.T) []stores.CategoryCapture {
	t.Helper()
	return []stores.CategoryCapture{
		{
			ID: "fruit-vegetables",
			Products: []json.RawMessage{
				json.RawMessage(`{
					"_type": "PRODUCT",
					"id": 42,
					"name": "Tasty Cheese Block",
					"brand": "Bega",
					"size": "1kg",
					"pricing": {"now": 12.5, "unit": {"isWeighted": false}}
				}`),
			},
		},
	}
}

func TestSnapshotPath(t *testing.T) {
	got := SnapshotPath("output", product.StoreColes, testDay)
	assert.Equal(t, filepath.Join("output", "coles", "2024-01-02.json.gz"), got)
}

func TestSaveCapture_LoadDailySnapshotRoundTrip(t *testing.T) {
	outputDir := t.TempDir()
	path := SnapshotPath(outputDir, product.StoreColes, testDay)

	require.NoError(t, SaveCapture(colesCapture(t), path))

	// The archive on disk is a plain gzip stream of the capture JSON.
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := pgzip.NewReader(f)
	require.NoError(t, err)
	var raw []stores.CategoryCapture
	require.NoError(t, json.NewDecoder(gz).Decode(&raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "fruit-vegetables", raw[0].ID)

	snapshots, err := LoadDailySnapshot(outputDir, testDay, product.StoreColes, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "Bega Tasty Cheese Block", snapshots[0].Info.Name)
	assert.Equal(t, product.PriceFromDollars(12.5), snapshots[0].Point.Price)
	assert.True(t, snapshots[0].Point.Date.Equal(testDay))
}

func TestLoadDailySnapshot_MissingArchiveFails(t *testing.T) {
	_, err := LoadDailySnapshot(t.TempDir(), testDay, product.StoreColes, zap.NewNop())
	require.Error(t, err)
}

func TestSnapshotDates(t *testing.T) {
	outputDir := t.TempDir()

	days := []product.Date{
		product.NewDate(2024, time.January, 1),
		product.NewDate(2024, time.January, 3),
	}
	for _, day := range days {
		require.NoError(t, SaveCapture(nil, SnapshotPath(outputDir, product.StoreColes, day)))
	}
	// Stray files in the store directory are ignored.
	require.NoError(t, os.WriteFile(
		filepath.Join(outputDir, "coles", "notes.txt"), []byte("x"), 0o644))

	dates, err := SnapshotDates(outputDir, product.StoreColes)
	require.NoError(t, err)
	assert.Len(t, dates, 2)

	// A store with no directory yields no dates and no error.
	dates, err = SnapshotDates(outputDir, product.StoreWoolies)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestHistoryRoundTrip(t *testing.T) {
	outputDir := t.TempDir()

	info := product.Info{
		ID:       1,
		Name:     "Milk",
		Unit:     product.UnitMillilitre,
		Quantity: 2000,
		Store:    product.StoreWoolies,
	}
	histories := []product.History{
		product.NewHistory(product.NewSnapshot(info, product.PriceFromDollars(3.1), testDay)),
	}

	require.NoError(t, SaveHistory(histories, outputDir))

	loaded, err := LoadHistory(outputDir, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, histories[0], loaded[0])
}

func TestLoadHistory_AbsentFileFails(t *testing.T) {
	_, err := LoadHistory(t.TempDir(), zap.NewNop())
	require.Error(t, err)
}

func TestSaveToSite_PerStoreFiles(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "static", "data")

	mkHistory := func(store product.Store, id int64) product.History {
		info := product.Info{ID: id, Name: "p", Unit: product.UnitEach, Quantity: 1, Store: store}
		return product.NewHistory(product.NewSnapshot(info, product.PriceFromDollars(1), testDay))
	}
	histories := []product.History{
		mkHistory(product.StoreColes, 1),
		mkHistory(product.StoreColes, 2),
		mkHistory(product.StoreWoolies, 3),
	}

	require.NoError(t, SaveToSite(histories, dataDir, false))

	var colesProducts []product.History
	data, err := os.ReadFile(filepath.Join(dataDir, "latest-canonical.coles.compressed.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &colesProducts))
	assert.Len(t, colesProducts, 2)

	var wooliesProducts []product.History
	data, err = os.ReadFile(filepath.Join(dataDir, "latest-canonical.woolies.compressed.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &wooliesProducts))
	require.Len(t, wooliesProducts, 1)
	assert.Equal(t, int64(3), wooliesProducts[0].ID)
}

func TestSaveToSite_Compressed(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, SaveToSite(nil, dataDir, true))

	f, err := os.Open(filepath.Join(dataDir, "latest-canonical.coles.compressed.json.gz"))
	require.NoError(t, err)
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	require.NoError(t, err)
	var products []product.History
	require.NoError(t, json.NewDecoder(gz).Decode(&products))
	assert.Empty(t, products)
}

func TestRemoveCacheDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "categories"), 0o755))

	require.NoError(t, RemoveCacheDir(dir, zap.NewNop()))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
