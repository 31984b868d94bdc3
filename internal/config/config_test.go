package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HALFLIFE_DB", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1:37778", cfg.ListenAddr())
	assert.Equal(t, time.Minute, cfg.RefreshInterval())
	assert.Equal(t, 20*time.Second, cfg.AnalyzerTimeout())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
analyzer:
  provider: anthropic
  api_key: sk-test
  timeout_seconds: 5
tracker:
  refresh_seconds: 15
  timezone: Asia/Taipei
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr())
	assert.Equal(t, "anthropic", cfg.Analyzer.Provider)
	assert.Equal(t, 5*time.Second, cfg.AnalyzerTimeout())
	assert.Equal(t, 15*time.Second, cfg.RefreshInterval())
	assert.Equal(t, 10, cfg.Analyzer.RequestsPerMinute, "unset keys keep defaults")

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Taipei", loc.String())
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HALFLIFE_DB", "/tmp/h.db")
	t.Setenv("ANTHROPIC_API_KEY", "a-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.db", cfg.Database.Path)
	assert.Equal(t, "anthropic", cfg.Analyzer.Provider)
	assert.Equal(t, "a-key", cfg.Analyzer.APIKey)

	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Analyzer.Provider)
	assert.Equal(t, "g-key", cfg.Analyzer.APIKey)
}

func TestBadTimezone(t *testing.T) {
	cfg := Default()
	cfg.Tracker.Timezone = "Mars/Olympus"
	_, err := cfg.Location()
	assert.Error(t, err)
}
