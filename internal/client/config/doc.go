// Package config loads runtime settings for the client.
//
// Sources are layered: struct defaults, then environment variables
// (IDM_API_URL, IDM_REALTIME_URL, IDM_SESSION_DB), then an optional JSON
// file given via -c/-config, then command-line flags. Later sources win.
//
// The JSON loader uses timex.Duration, so durations can be written either
// as strings ("30s") or as integer nanoseconds.
package config
