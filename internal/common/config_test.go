package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultIndexURL, cfg.Source.IndexURL)
	require.Equal(t, "layout", cfg.PDF.TextMode)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "auctions.json5"))
	require.NoError(t, err)
	require.Equal(t, "Data", cfg.Output.Dir)
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auctions.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// comments are fine in json5
		"output": {"dir": "out"},
		"vin": {"concurrency": 8, "timeout": "5s"},
		"worker": {"workers": 2}
	}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auctions.local.json5"), []byte(`{
		"worker": {"workers": 6}
	}`), 0o600))
	t.Setenv("VIN_CONCURRENCY", "3")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "out", cfg.Output.Dir)
	require.Equal(t, 5*time.Second, cfg.VIN.Timeout.Std())
	require.Equal(t, 6, cfg.Worker.Workers)
	require.Equal(t, 3, cfg.VIN.Concurrency)
	// untouched sections keep their defaults
	require.Equal(t, DefaultBaseURL, cfg.Source.BaseURL)
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auctions.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{ "output": `), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	require.Equal(t, "CONFIG_ERROR", CodeOf(err))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.IndexURL = "not a url"
	cfg.PDF.TextMode = "ocr"
	cfg.Database.Driver = "postgres"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "source.index_url")
	require.Contains(t, err.Error(), "pdf.text_mode")
	require.Contains(t, err.Error(), "database.dsn")
}
