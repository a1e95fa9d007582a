package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/audio-renamer/pkg/renamer"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultFolder, cfg.Rename.Folder)
	assert.Equal(t, ".wav", cfg.Rename.Extension)
	assert.Equal(t, "凉", cfg.Rename.Prefix)
	assert.Equal(t, "listing", cfg.Rename.Order)
	assert.True(t, cfg.Rename.Preflight)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.True(t, len(cfg.Server.WorkingDir) > 0)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	viper.Set("rename.folder", "music")
	viper.Set("rename.prefix", "X")
	viper.Set("rename.order", "name")
	viper.Set("rename.preflight", false)
	viper.Set("server.working_dir", dir)

	cfg, err := Load()
	require.NoError(t, err)

	// folder is used as given, no normalisation
	assert.Equal(t, "music", cfg.Rename.Folder)
	assert.Equal(t, "X", cfg.Rename.Prefix)
	assert.Equal(t, "name", cfg.Rename.Order)
	assert.False(t, cfg.Rename.Preflight)
	assert.Equal(t, dir, cfg.Server.WorkingDir)
}

func TestLoadRejectsUnknownOrder(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("rename.order", "random")

	_, err := Load()
	assert.ErrorIs(t, err, renamer.ErrInvalidArgument)
}

func TestRenamerOptions(t *testing.T) {
	opts, err := Default().Rename.RenamerOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	_, err = RenameConfig{Order: "size"}.RenamerOptions()
	assert.Error(t, err)
}
