package app

import (
	"sort"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/merge"
	"github.com/xenking/hotprices/internal/domain/product"
	"github.com/xenking/hotprices/internal/storage"
)

// AnalysisOptions are the per-run analysis flags.
type AnalysisOptions struct {
	// Day is the capture date to reconcile. Ignored when Rebuild is set.
	Day product.Date
	// Store restricts the run to one retailer; empty means all.
	Store product.Store
	// Compress gzips the public data exports.
	Compress bool
	// Rebuild replays every archived day in date order from an empty
	// history instead of merging one day into the existing one.
	Rebuild bool
}

// Analysis reconciles capture archives against the canonical history and
// writes the canonical file plus the public per-store exports.
func Analysis(cfg *Config, lg *zap.Logger, opts AnalysisOptions) error {
	var (
		products []product.History
		err      error
	)
	if opts.Rebuild {
		products, err = rebuildHistory(cfg, lg, opts.Store)
	} else {
		products, err = mergeDay(cfg, lg, opts.Day, opts.Store)
	}
	if err != nil {
		return err
	}

	if err := storage.SaveHistory(products, cfg.OutputDir); err != nil {
		return errors.Wrap(err, "save canonical history")
	}
	if err := storage.SaveToSite(products, cfg.DataDir, opts.Compress); err != nil {
		return errors.Wrap(err, "save site data")
	}

	lg.Info("analysis finished", zap.Int("products", len(products)))
	return nil
}

// mergeDay folds one day's snapshots into the persisted history.
func mergeDay(cfg *Config, lg *zap.Logger, day product.Date, store product.Store) ([]product.History, error) {
	previous, err := storage.LoadHistory(cfg.OutputDir, lg)
	if err != nil {
		return nil, errors.Wrap(err, "load previous history")
	}

	snapshots, err := storage.LoadDailySnapshot(cfg.OutputDir, day, store, lg)
	if err != nil {
		return nil, errors.Wrapf(err, "load snapshots for %s", day)
	}

	return mergeSnapshots(previous, snapshots, store, lg), nil
}

// rebuildHistory replays every archived day in ascending date order through
// the merge, starting from an empty history. A day present for only one
// store is replayed for that store alone.
func rebuildHistory(cfg *Config, lg *zap.Logger, storeFilter product.Store) ([]product.History, error) {
	perStore := make(map[product.Store]map[string]struct{})
	daySet := make(map[string]product.Date)
	for _, store := range product.Stores() {
		if storeFilter != "" && store != storeFilter {
			continue
		}
		dates, err := storage.SnapshotDates(cfg.OutputDir, store)
		if err != nil {
			return nil, err
		}
		perStore[store] = make(map[string]struct{}, len(dates))
		for _, d := range dates {
			perStore[store][d.String()] = struct{}{}
			daySet[d.String()] = d
		}
	}

	days := make([]product.Date, 0, len(daySet))
	for _, d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	if len(days) == 0 {
		return nil, errors.New("no capture archives found for history rebuild")
	}
	lg.Info("rebuilding history", zap.Int("days", len(days)))

	var products []product.History
	for _, day := range days {
		for _, store := range product.Stores() {
			if _, ok := perStore[store][day.String()]; !ok {
				continue
			}
			snapshots, err := storage.LoadDailySnapshot(cfg.OutputDir, day, store, lg)
			if err != nil {
				return nil, errors.Wrapf(err, "load snapshots for %s/%s", store, day)
			}
			products = mergeSnapshots(products, snapshots, store, lg)
		}
	}
	return products, nil
}

func mergeSnapshots(previous []product.History, snapshots []product.Snapshot, store product.Store, lg *zap.Logger) []product.History {
	unique, dedupStats := merge.Deduplicate(snapshots)
	for s, dropped := range dedupStats.DroppedDuplicates {
		lg.Warn("dropped duplicate snapshots",
			zap.String("store", s.String()),
			zap.Int("count", dropped),
		)
	}

	products, stats := merge.Merge(previous, unique, store)
	for _, s := range product.Stores() {
		if stats.NewPrices[s] == 0 && stats.NewProducts[s] == 0 {
			continue
		}
		lg.Info("merge summary",
			zap.String("store", s.String()),
			zap.Int("new_prices", stats.NewPrices[s]),
			zap.Int("new_products", stats.NewProducts[s]),
		)
	}
	return products
}
