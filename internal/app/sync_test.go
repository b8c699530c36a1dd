package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/product"
	"github.com/xenking/hotprices/internal/storage"
)

func TestSync_PrintSavePath(t *testing.T) {
	cfg := testConfig(t)

	// Print mode must not touch the network or the filesystem.
	err := Sync(cfg, zap.NewNop(), product.StoreColes, SyncOptions{PrintSavePath: true})
	require.NoError(t, err)

	_, statErr := os.Stat(storage.SnapshotPath(cfg.OutputDir, product.StoreColes, product.Today()))
	require.True(t, os.IsNotExist(statErr))
}

func TestSync_SkipExisting(t *testing.T) {
	cfg := testConfig(t)

	path := storage.SnapshotPath(cfg.OutputDir, product.StoreColes, product.Today())
	require.NoError(t, storage.SaveCapture(nil, path))

	// With the archive already present, sync returns before crawling.
	err := Sync(cfg, zap.NewNop(), product.StoreColes, SyncOptions{SkipExisting: true})
	require.NoError(t, err)
}
