package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Amawers/idmsystem-sub001/internal/flagx"
	"github.com/Amawers/idmsystem-sub001/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify the timeout either as a string
// like "30s" or as integer nanoseconds.
type JsonConfig struct {
	BaseURL        string         `json:"base_url"`
	RealtimeURL    string         `json:"realtime_url"`
	SessionDBPath  string         `json:"session_db_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from the JSON file pointed
// at by -c/-config. No flag, no JSON. Read or unmarshal errors panic;
// intended usage is defaults -> env -> parseJson -> parseFlags, later
// stages overriding earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.RealtimeURL != "" {
		cfg.RealtimeURL = jc.RealtimeURL
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
