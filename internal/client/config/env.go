package config

import "os"

// parseEnv overlays Config with values from the environment. Only the
// externally-configured endpoints live here; unset variables keep the
// defaults.
func parseEnv(cfg *Config) {
	if v := os.Getenv("IDM_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("IDM_REALTIME_URL"); v != "" {
		cfg.RealtimeURL = v
	}
	if v := os.Getenv("IDM_SESSION_DB"); v != "" {
		cfg.SessionDBPath = v
	}
}
