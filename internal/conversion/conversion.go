// Package conversion turns retailer-specific raw catalog entries into
// canonical product snapshots, tolerating a bounded fraction of malformed
// items per batch.
package conversion

import (
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/product"
)

// FailureRateThreshold is the maximum tolerated fraction of unconvertible
// items in one batch. Above it the whole batch is rejected: it almost always
// means the retailer changed its response shape and silently dropping items
// would corrupt the downstream dataset.
const FailureRateThreshold = 0.05

// Metrics counts conversion outcomes for one batch. Ad exclusions are
// expected noise and are counted in neither bucket.
type Metrics struct {
	Success int
	Failure int
}

// FailureRate returns Failure / (Success + Failure).
func (m Metrics) FailureRate() float64 {
	total := m.Success + m.Failure
	if total == 0 {
		return 0
	}
	return float64(m.Failure) / float64(total)
}

// Exceeded reports whether the failure rate is above the batch threshold.
// A rate exactly at the threshold still passes.
func (m Metrics) Exceeded() bool {
	return m.FailureRate() > FailureRateThreshold
}

func (m Metrics) String() string {
	return fmt.Sprintf("success: %d, failure: %d, failure rate: %.2f%%",
		m.Success, m.Failure, m.FailureRate()*100)
}

// ItemDecoder decodes one retailer-specific raw catalog entry into a
// canonical snapshot. Decode returns product.ErrAdResult for advertisement
// placements and a *product.ConversionError for malformed items.
type ItemDecoder interface {
	Store() product.Store
	Decode(raw json.RawMessage, date product.Date) (product.Snapshot, error)
}

// Snapshots converts a batch of raw items for one store and capture date.
// Item-level failures are logged and counted but absorbed; the batch fails
// only when the failure rate exceeds FailureRateThreshold.
func Snapshots(dec ItemDecoder, raws []json.RawMessage, date product.Date, lg *zap.Logger) ([]product.Snapshot, Metrics, error) {
	var (
		snapshots []product.Snapshot
		metrics   Metrics
	)

	for _, raw := range raws {
		snap, err := dec.Decode(raw, date)
		switch {
		case err == nil:
			snapshots = append(snapshots, snap)
			metrics.Success++
		case errors.Is(err, product.ErrAdResult):
			// Expected noise, not a failure.
		default:
			metrics.Failure++
			lg.Debug("dropped unconvertible item",
				zap.String("store", dec.Store().String()),
				zap.Error(err),
			)
		}
	}

	if metrics.Exceeded() {
		lg.Error("conversion failure rate exceeds threshold",
			zap.String("store", dec.Store().String()),
			zap.String("date", date.String()),
			zap.String("metrics", metrics.String()),
		)
		return nil, metrics, product.NewConversionError(
			"failure rate threshold %v for conversion of %s/%s exceeded: %s",
			FailureRateThreshold, dec.Store(), date, metrics)
	}

	lg.Info("conversion succeeded",
		zap.String("store", dec.Store().String()),
		zap.String("date", date.String()),
		zap.String("metrics", metrics.String()),
	)
	return snapshots, metrics, nil
}
