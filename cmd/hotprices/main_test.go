package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DirectoryFlagOverrides(t *testing.T) {
	root := rootCmd()
	require.NoError(t, root.ParseFlags([]string{
		"--output-dir", "/srv/captures",
		"--data-dir", "/srv/site",
	}))

	cfg, err := loadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, "/srv/captures", cfg.OutputDir)
	assert.Equal(t, "/srv/site", cfg.DataDir)
}

func TestLoadConfig_UnsetFlagsKeepConfigValues(t *testing.T) {
	root := rootCmd()
	require.NoError(t, root.ParseFlags(nil))

	cfg, err := loadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "static/data", cfg.DataDir)
}

func TestRootCmd_PersistentFlagBeforeSubcommand(t *testing.T) {
	// cobra accepts persistent flags in front of the subcommand; config
	// loading must not reject that ordering.
	root := rootCmd()
	root.SetArgs([]string{"--debug", "sync", "coles", "--print-save-path"})
	require.NoError(t, root.Execute())
}
