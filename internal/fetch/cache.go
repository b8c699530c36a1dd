package fetch

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// DiskCache memoizes keyed fetch results as files under a root directory.
// There is no eviction and no TTL: callers create a fresh directory per
// store per calendar day and remove it after a successful run, so the path
// convention is the invalidation mechanism.
//
// Check-then-write is not atomic; the cache is single-run, single-goroutine
// by contract.
type DiskCache struct {
	dir string
	lg  *zap.Logger
}

// NewDiskCache creates a cache rooted at dir. The directory itself is
// created lazily on the first miss.
func NewDiskCache(dir string, lg *zap.Logger) *DiskCache {
	return &DiskCache{dir: dir, lg: lg}
}

// GetOrFetch returns the cached content for key if present, otherwise it
// invokes fetch, persists the result, and returns it. A cache hit performs
// no network I/O and no retries.
func (c *DiskCache) GetOrFetch(key string, fetch RequestFunc) (string, error) {
	path := filepath.Join(c.dir, key)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		c.lg.Debug("cache hit", zap.String("key", key))
		return string(data), nil
	case !errors.Is(err, os.ErrNotExist):
		return "", errors.Wrapf(err, "read cache file %s", path)
	}

	c.lg.Debug("cache miss", zap.String("key", key))
	body, err := fetch()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrapf(err, "create cache dir for %s", path)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", errors.Wrapf(err, "write cache file %s", path)
	}
	return body, nil
}
