package app

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/product"
	"github.com/xenking/hotprices/internal/storage"
	"github.com/xenking/hotprices/internal/stores"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{OutputDir: dir, DataDir: dir + "/data"}
}

// colesArchive writes a daily capture archive with a single cheese product at
// the given price.
func colesArchive(t *testing.T, cfg *Config, day product.Date, dollars float64) {
	t.Helper()
	capture := []stores.CategoryCapture{
		{
			ID: "dairy-eggs-fridge",
			Products: []json.RawMessage{
				json.RawMessage(fmt.Sprintf(`{
					"_type": "PRODUCT",
					"id": 42,
					"name": "Tasty Cheese Block",
					"brand": "Bega",
					"size": "1kg",
					"pricing": {"now": %v, "unit": {"isWeighted": false}}
				}`, dollars)),
			},
		},
	}
	path := storage.SnapshotPath(cfg.OutputDir, product.StoreColes, day)
	require.NoError(t, storage.SaveCapture(capture, path))
}

func TestAnalysis_MergesDayIntoHistory(t *testing.T) {
	cfg := testConfig(t)
	lg := zap.NewNop()

	dayOne := product.NewDate(2024, time.January, 1)
	dayTwo := product.NewDate(2024, time.January, 2)

	// Seed the canonical history with the product at its original price.
	info := product.Info{
		ID:       42,
		Name:     "Bega Tasty Cheese Block",
		Unit:     product.UnitGrams,
		Quantity: 1000,
		Store:    product.StoreColes,
	}
	seed := []product.History{
		product.NewHistory(product.NewSnapshot(info, product.PriceFromDollars(12), dayOne)),
	}
	require.NoError(t, storage.SaveHistory(seed, cfg.OutputDir))

	colesArchive(t, cfg, dayTwo, 6.7)

	opts := AnalysisOptions{Day: dayTwo, Store: product.StoreColes}
	require.NoError(t, Analysis(cfg, lg, opts))

	products, err := storage.LoadHistory(cfg.OutputDir, lg)
	require.NoError(t, err)
	require.Len(t, products, 1)

	points := products[0].PriceHistory
	require.Len(t, points, 2)
	assert.Equal(t, product.PriceFromDollars(6.7), points[0].Price)
	assert.True(t, points[0].Date.Equal(dayTwo))
	assert.Equal(t, product.PriceFromDollars(12), points[1].Price)
	assert.True(t, points[1].Date.Equal(dayOne))
}

func TestAnalysis_UnchangedPriceAddsNothing(t *testing.T) {
	cfg := testConfig(t)
	lg := zap.NewNop()

	dayOne := product.NewDate(2024, time.January, 1)
	dayTwo := product.NewDate(2024, time.January, 2)

	colesArchive(t, cfg, dayOne, 12)
	require.NoError(t, Analysis(cfg, lg, AnalysisOptions{Rebuild: true}))

	colesArchive(t, cfg, dayTwo, 12)
	require.NoError(t, Analysis(cfg, lg, AnalysisOptions{Day: dayTwo, Store: product.StoreColes}))

	products, err := storage.LoadHistory(cfg.OutputDir, lg)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Len(t, products[0].PriceHistory, 1)
}

func TestAnalysis_RebuildReplaysArchivesInOrder(t *testing.T) {
	cfg := testConfig(t)
	lg := zap.NewNop()

	days := []struct {
		day     product.Date
		dollars float64
	}{
		{product.NewDate(2024, time.January, 1), 12},
		{product.NewDate(2024, time.January, 2), 6.7},
		{product.NewDate(2024, time.January, 3), 9.5},
	}
	for _, d := range days {
		colesArchive(t, cfg, d.day, d.dollars)
	}

	require.NoError(t, Analysis(cfg, lg, AnalysisOptions{Rebuild: true}))

	products, err := storage.LoadHistory(cfg.OutputDir, lg)
	require.NoError(t, err)
	require.Len(t, products, 1)

	points := products[0].PriceHistory
	require.Len(t, points, 3)
	assert.Equal(t, product.PriceFromDollars(9.5), points[0].Price)
	assert.Equal(t, product.PriceFromDollars(6.7), points[1].Price)
	assert.Equal(t, product.PriceFromDollars(12), points[2].Price)
}

func TestAnalysis_RebuildWithoutArchivesFails(t *testing.T) {
	cfg := testConfig(t)

	err := Analysis(cfg, zap.NewNop(), AnalysisOptions{Rebuild: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no capture archives")
}

func TestAnalysis_MissingHistoryFails(t *testing.T) {
	cfg := testConfig(t)
	colesArchive(t, cfg, product.Today(), 1)

	err := Analysis(cfg, zap.NewNop(), AnalysisOptions{Day: product.Today()})
	require.Error(t, err)
}
