package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJsonOverlay(t *testing.T) {
	body := `{
		"server_url": "http://10.0.0.5:9090",
		"online_check_interval": "7s",
		"slice_interval": "250ms",
		"upload_workers": 3,
		"stage_recordings": false
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://10.0.0.5:9090", cfg.ServerURL)
	assert.Equal(t, "journal.db", cfg.DatabasePath, "absent fields keep defaults")
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.SliceInterval)
	assert.Equal(t, 3, cfg.UploadWorkers)
	assert.False(t, cfg.StageRecordings)
}

func TestParseJsonMissingFlagIsNoOp(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd"}

	cfg := &Config{}
	cfg.LoadDefaults()
	want := *cfg

	parseJson(cfg)
	assert.Equal(t, want, *cfg)
}

func TestParseJsonMalformedPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	require.Panics(t, func() { parseJson(cfg) })
}
