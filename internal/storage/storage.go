// Package storage handles the on-disk artifacts of a run: gzip-compressed
// daily capture archives, the canonical latest-canonical.json.gz history
// file, and the per-store public data exports. It is pure I/O; all business
// logic lives upstream.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/product"
	"github.com/xenking/hotprices/internal/stores"
)

const canonicalFile = "latest-canonical.json.gz"

// SnapshotPath returns the daily capture archive path for a store and day.
func SnapshotPath(outputDir string, store product.Store, day product.Date) string {
	return filepath.Join(outputDir, store.String(), day.String()+".json.gz")
}

// SaveCapture writes a day's raw capture as a gzip-compressed JSON archive,
// creating parent directories as needed.
func SaveCapture(captures []stores.CategoryCapture, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create snapshot dir for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create snapshot file %s", path)
	}
	defer func() { _ = f.Close() }()

	gz := pgzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(captures); err != nil {
		return errors.Wrapf(err, "write capture to %s", path)
	}
	if err := gz.Close(); err != nil {
		return errors.Wrapf(err, "flush gzip stream to %s", path)
	}
	return f.Close()
}

// LoadDailySnapshot reads each store's capture archive for a day and
// converts it into canonical snapshots. An empty storeFilter loads every
// store; a missing archive is an error, never silently skipped.
func LoadDailySnapshot(outputDir string, day product.Date, storeFilter product.Store, lg *zap.Logger) ([]product.Snapshot, error) {
	var snapshots []product.Snapshot
	for _, store := range product.Stores() {
		if storeFilter != "" && store != storeFilter {
			continue
		}

		path := SnapshotPath(outputDir, store, day)
		lg.Debug("loading daily snapshot", zap.String("path", path))

		storeSnapshots, err := loadCapture(store, path, day, lg)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s data from snapshot", store)
		}
		snapshots = append(snapshots, storeSnapshots...)
	}

	lg.Debug("loaded daily snapshots",
		zap.Int("products", len(snapshots)),
		zap.String("date", day.String()),
	)
	return snapshots, nil
}

func loadCapture(store product.Store, path string, day product.Date, lg *zap.Logger) ([]product.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open daily snapshot %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read gzip stream from %s", path)
	}
	defer func() { _ = gz.Close() }()

	return stores.LoadSnapshot(store, bufio.NewReader(gz), day, lg)
}

// SnapshotDates lists the capture dates available for a store, unsorted.
func SnapshotDates(outputDir string, store product.Store) ([]product.Date, error) {
	entries, err := os.ReadDir(filepath.Join(outputDir, store.String()))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "list snapshots for %s", store)
	}

	var dates []product.Date
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json.gz")
		if !ok {
			continue
		}
		day, err := product.ParseDate(name)
		if err != nil {
			continue
		}
		dates = append(dates, day)
	}
	return dates, nil
}

// LoadHistory reads the canonical history set. It fails when the file is
// absent or corrupt; the caller decides whether an empty start is allowed.
func LoadHistory(outputDir string, lg *zap.Logger) ([]product.History, error) {
	path := filepath.Join(outputDir, canonicalFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open history file %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read gzip stream from %s", path)
	}
	defer func() { _ = gz.Close() }()

	var products []product.History
	if err := json.NewDecoder(bufio.NewReader(gz)).Decode(&products); err != nil {
		return nil, errors.Wrapf(err, "load history from %s", path)
	}
	lg.Debug("loaded products from history", zap.Int("count", len(products)))
	return products, nil
}

// SaveHistory writes the fully computed history set to the canonical file.
// It is called exactly once per run, after the merge completes, so a crash
// mid-run never corrupts the previous canonical record.
func SaveHistory(products []product.History, outputDir string) error {
	path := filepath.Join(outputDir, canonicalFile)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create history file %s", path)
	}
	defer func() { _ = f.Close() }()

	gz := pgzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(products); err != nil {
		return errors.Wrapf(err, "write history to %s", path)
	}
	if err := gz.Close(); err != nil {
		return errors.Wrapf(err, "flush gzip stream to %s", path)
	}
	return f.Close()
}

// SaveToSite writes the per-store public data files consumed by the site.
func SaveToSite(products []product.History, dataDir string, compress bool) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return errors.Wrapf(err, "create data dir %s", dataDir)
	}

	suffix := ""
	if compress {
		suffix = ".gz"
	}

	for _, store := range product.Stores() {
		path := filepath.Join(dataDir,
			fmt.Sprintf("latest-canonical.%s.compressed.json%s", store, suffix))
		if err := saveStoreFile(products, store, path, compress); err != nil {
			return err
		}
	}
	return nil
}

func saveStoreFile(products []product.History, store product.Store, path string, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create site file %s", path)
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	var gz *pgzip.Writer
	if compress {
		gz = pgzip.NewWriter(f)
		w = gz
	}

	storeProducts := make([]product.History, 0, len(products))
	for _, p := range products {
		if p.Store == store {
			storeProducts = append(storeProducts, p)
		}
	}
	if err := json.NewEncoder(w).Encode(storeProducts); err != nil {
		return errors.Wrapf(err, "write site file %s", path)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return errors.Wrapf(err, "flush gzip stream to %s", path)
		}
	}
	return f.Close()
}

// RemoveCacheDir deletes a run's page cache after its capture has been
// archived.
func RemoveCacheDir(dir string, lg *zap.Logger) error {
	lg.Info("removing cache directory", zap.String("dir", dir))
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "remove cache folder %s", dir)
	}
	return nil
}
