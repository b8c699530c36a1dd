package conversion

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/product"
)

// fakeDecoder interprets each raw item as a decode directive: "ok" converts,
// "ad" is an advertisement placement, anything else fails.
type fakeDecoder struct{}

func (fakeDecoder) Store() product.Store {
	return product.StoreColes
}

func (fakeDecoder) Decode(raw json.RawMessage, date product.Date) (product.Snapshot, error) {
	var directive string
	if err := json.Unmarshal(raw, &directive); err != nil {
		return product.Snapshot{}, err
	}
	switch directive {
	case "ok":
		info := product.Info{
			ID:       1,
			Name:     "converted",
			Unit:     product.UnitEach,
			Quantity: 1,
			Store:    product.StoreColes,
		}
		return product.NewSnapshot(info, product.PriceFromDollars(1), date), nil
	case "ad":
		return product.Snapshot{}, product.ErrAdResult
	default:
		return product.Snapshot{}, product.NewConversionError("unexpected directive %q", directive)
	}
}

func rawBatch(directives ...string) []json.RawMessage {
	raws := make([]json.RawMessage, 0, len(directives))
	for _, d := range directives {
		raws = append(raws, json.RawMessage(fmt.Sprintf("%q", d)))
	}
	return raws
}

func repeat(directive string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = directive
	}
	return out
}

func TestSnapshots_FailureRateAtThresholdPasses(t *testing.T) {
	// 1 failure in 20 items is exactly 5%, which still passes.
	raws := rawBatch(append(repeat("ok", 19), "bad")...)

	snapshots, metrics, err := Snapshots(fakeDecoder{}, raws, product.Today(), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, snapshots, 19)
	assert.Equal(t, Metrics{Success: 19, Failure: 1}, metrics)
	assert.InDelta(t, 0.05, metrics.FailureRate(), 1e-9)
}

func TestSnapshots_FailureRateAboveThresholdRejectsBatch(t *testing.T) {
	raws := rawBatch(append(repeat("ok", 18), "bad", "bad")...)

	snapshots, metrics, err := Snapshots(fakeDecoder{}, raws, product.Today(), zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, snapshots)
	assert.Equal(t, Metrics{Success: 18, Failure: 2}, metrics)

	var convErr *product.ConversionError
	assert.ErrorAs(t, err, &convErr)
}

func TestSnapshots_AdResultsCountedInNeitherBucket(t *testing.T) {
	// Ads outnumber everything else; the batch must still pass because they
	// are excluded from the rate entirely.
	raws := rawBatch(append(repeat("ad", 30), "ok", "ok")...)

	snapshots, metrics, err := Snapshots(fakeDecoder{}, raws, product.Today(), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)
	assert.Equal(t, Metrics{Success: 2, Failure: 0}, metrics)
}

func TestSnapshots_EmptyBatch(t *testing.T) {
	snapshots, metrics, err := Snapshots(fakeDecoder{}, nil, product.Today(), zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, snapshots)
	assert.Zero(t, metrics.FailureRate())
}

func TestSnapshots_SnapshotCarriesCaptureDate(t *testing.T) {
	day := product.NewDate(2024, time.January, 2)

	snapshots, _, err := Snapshots(fakeDecoder{}, rawBatch("ok"), day, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].Point.Date.Equal(day))
}
