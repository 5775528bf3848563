// Package config loads runtime configuration for the journal CLI.
//
// Sources and precedence:
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
package config

import "time"

// Config holds runtime settings for the journal CLI.
type Config struct {
	// ServerURL is the base URL of the journal server REST API.
	ServerURL string
	// DatabasePath is the local SQLite database file.
	DatabasePath string
	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration
	// SliceInterval is the recorder's fragment slicing interval.
	SliceInterval time.Duration
	// UploadWorkers bounds attachment upload concurrency per save.
	UploadWorkers int
	// StageRecordings writes capture payloads to the staging directory
	// instead of holding them in memory until save.
	StageRecordings bool
	// AudioInput and VideoInput name the capture devices passed to ffmpeg.
	AudioInput string
	VideoInput string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "journal.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.SliceInterval = time.Second
	c.UploadWorkers = 2
	c.StageRecordings = true
	c.AudioInput = "default"
	c.VideoInput = "/dev/video0"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
