// Package app wires the fetch, conversion, and merge stages into the two
// runnable pipelines: sync (crawl one store's catalog into a daily capture
// archive) and analysis (reconcile captures against the canonical history).
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/product"
	"github.com/xenking/hotprices/internal/fetch"
	"github.com/xenking/hotprices/internal/storage"
	"github.com/xenking/hotprices/internal/stores"
)

// SyncOptions are the per-run sync flags.
type SyncOptions struct {
	// Quick limits the crawl to the first page of each category.
	Quick bool
	// PrintSavePath prints the archive path instead of crawling.
	PrintSavePath bool
	// SkipExisting exits successfully when the day's archive already exists.
	SkipExisting bool
}

// Sync crawls one store's catalog for today, archives the raw capture, and
// removes the page cache. The cache directory is keyed by store and day so
// a re-run of a partially failed sync resumes from the cached pages.
func Sync(cfg *Config, lg *zap.Logger, store product.Store, opts SyncOptions) error {
	day := product.Today()
	snapshotPath := storage.SnapshotPath(cfg.OutputDir, store, day)

	if opts.PrintSavePath {
		fmt.Println(snapshotPath)
		return nil
	}
	if opts.SkipExisting {
		if _, err := os.Stat(snapshotPath); err == nil {
			lg.Info("snapshot already exists, skipping sync",
				zap.String("path", snapshotPath))
			return nil
		}
	}

	cacheDir := filepath.Join(cfg.OutputDir, store.String(), day.String())
	cache := fetch.NewDiskCache(cacheDir, lg)

	crawler, err := stores.NewCrawler(store, cache, cfg.ClientConfig(), lg)
	if err != nil {
		return err
	}

	captures, err := crawler.Crawl(opts.Quick)
	if err != nil {
		return errors.Wrapf(err, "sync %s/%s", store, day)
	}

	if err := storage.SaveCapture(captures, snapshotPath); err != nil {
		return errors.Wrapf(err, "archive capture for %s/%s", store, day)
	}
	if err := storage.RemoveCacheDir(cacheDir, lg); err != nil {
		return err
	}

	lg.Info("sync finished",
		zap.String("store", store.String()),
		zap.String("date", day.String()),
		zap.String("path", snapshotPath),
	)
	return nil
}
