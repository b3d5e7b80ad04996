package config

import "time"

// Config holds runtime settings for the data-access client.
//
// Fields:
//   - BaseURL: root of every relative API path.
//   - RealtimeURL: websocket endpoint for row-change notifications.
//   - SessionDBPath: sqlite file for the persisted session record; ""
//     disables persistence (in-memory session only).
//   - RequestTimeout: transport-level timeout applied to every request.
type Config struct {
	BaseURL        string
	RealtimeURL    string
	SessionDBPath  string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:4000/api"
	c.RealtimeURL = "ws://localhost:4000/realtime"
	c.SessionDBPath = "session.db"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, a JSON file (if one was pointed at), and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
