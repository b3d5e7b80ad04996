package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	require.Equal(t, "http://localhost:4000/api", cfg.BaseURL)
	require.Equal(t, "ws://localhost:4000/realtime", cfg.RealtimeURL)
	require.Equal(t, "session.db", cfg.SessionDBPath)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("IDM_API_URL", "https://api.example.com")
	t.Setenv("IDM_SESSION_DB", "/tmp/s.db")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	require.Equal(t, "https://api.example.com", cfg.BaseURL)
	require.Equal(t, "/tmp/s.db", cfg.SessionDBPath)
	require.Equal(t, "ws://localhost:4000/realtime", cfg.RealtimeURL)
}

func TestParseJsonOverrides(t *testing.T) {
	file := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"base_url": "https://json.example.com",
		"request_timeout": "5s"
	}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"test", "-c", file}
	t.Cleanup(func() { os.Args = oldArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	require.Equal(t, "https://json.example.com", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, "session.db", cfg.SessionDBPath)
}

func TestParseFlagsOverrides(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"test", "-a", "https://flag.example.com", "-t", "7"}
	t.Cleanup(func() { os.Args = oldArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	require.Equal(t, "https://flag.example.com", cfg.BaseURL)
	require.Equal(t, 7*time.Second, cfg.RequestTimeout)
}
