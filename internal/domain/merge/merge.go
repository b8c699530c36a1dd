// Package merge reconciles one day's product snapshots against the
// persisted price histories. Merging is a pure function of its inputs: no
// hidden state, deterministic output for deterministic input.
package merge

import (
	"sort"

	"github.com/xenking/hotprices/internal/domain/product"
)

// Stats aggregates per-store counters from one merge for summary logging.
type Stats struct {
	NewPrices         map[product.Store]int
	NewProducts       map[product.Store]int
	DroppedDuplicates map[product.Store]int
}

func newStats() Stats {
	return Stats{
		NewPrices:         make(map[product.Store]int),
		NewProducts:       make(map[product.Store]int),
		DroppedDuplicates: make(map[product.Store]int),
	}
}

// Deduplicate collapses snapshots sharing a product key to the first
// occurrence, counting dropped duplicates per store.
func Deduplicate(snapshots []product.Snapshot) ([]product.Snapshot, Stats) {
	stats := newStats()
	seen := make(map[product.Key]struct{}, len(snapshots))
	unique := make([]product.Snapshot, 0, len(snapshots))

	for _, snap := range snapshots {
		key := snap.Info.Key()
		if _, dup := seen[key]; dup {
			stats.DroppedDuplicates[key.Store]++
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, snap)
	}
	return unique, stats
}

// Merge reconciles deduplicated snapshots against the previous histories and
// returns the next history set.
//
// Histories of other stores (when storeFilter is non-empty) pass through
// unchanged. A matched history gets its metadata wholesale-replaced; its
// price sequence grows only when the observed price differs from the current
// newest point, which keeps the at-most-one-point-per-date invariant in the
// one-snapshot-per-day operating mode. Unmatched snapshots start new
// histories. Histories absent from the day's snapshots are retained
// unchanged: disappearance from a single fetch does not remove a product
// from the dataset.
func Merge(old []product.History, snapshots []product.Snapshot, storeFilter product.Store) ([]product.History, Stats) {
	stats := newStats()

	// Partition pass-through entries from the mergeable index.
	index := make(map[product.Key]product.History, len(old))
	var passthrough []product.History
	for _, h := range old {
		if storeFilter != "" && h.Store != storeFilter {
			passthrough = append(passthrough, h)
			continue
		}
		index[h.Key()] = h
	}

	result := make([]product.History, 0, len(old)+len(snapshots))
	result = append(result, passthrough...)

	for _, snap := range snapshots {
		key := snap.Info.Key()
		history, ok := index[key]
		if !ok {
			stats.NewProducts[key.Store]++
			result = append(result, product.NewHistory(snap))
			continue
		}
		delete(index, key)

		// Metadata always reflects the latest observation.
		history.Info = snap.Info

		if snap.Point.Price != history.Newest().Price {
			history.PriceHistory = append([]product.PricePoint{snap.Point}, history.PriceHistory...)
			sortPricePoints(history.PriceHistory)
			stats.NewPrices[key.Store]++
		}
		result = append(result, history)
	}

	// Products present yesterday but absent today are carried forward.
	remaining := make([]product.History, 0, len(index))
	for _, h := range index {
		remaining = append(remaining, h)
	}
	sort.Slice(remaining, func(i, j int) bool {
		if remaining[i].Store != remaining[j].Store {
			return remaining[i].Store < remaining[j].Store
		}
		return remaining[i].ID < remaining[j].ID
	})
	result = append(result, remaining...)

	return result, stats
}

// sortPricePoints orders a price sequence newest-first. The sort is stable
// so an equal-date tie (which the skip-unchanged-price rule prevents in
// normal operation) preserves insertion order.
func sortPricePoints(points []product.PricePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[j].Date.Before(points[i].Date)
	})
}
