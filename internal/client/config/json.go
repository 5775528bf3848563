package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/DAC098/tj2/internal/flagx"
	"github.com/DAC098/tj2/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// use timex.Duration so the file can specify them as strings like "3s" or
// as integer nanoseconds.
type JsonConfig struct {
	ServerURL           string          `json:"server_url"`
	DatabasePath        string          `json:"database_path"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	SliceInterval       *timex.Duration `json:"slice_interval"`
	UploadWorkers       int             `json:"upload_workers"`
	StageRecordings     *bool           `json:"stage_recordings"`
	AudioInput          string          `json:"audio_input"`
	VideoInput          string          `json:"video_input"`
}

// parseJson overlays cfg with values from the JSON file named by -c or
// -config. Absent file path means no overlay; read or unmarshal errors
// panic (defaults -> parseJson -> parseFlags, later stages override).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.SliceInterval != nil {
		cfg.SliceInterval = time.Duration(jc.SliceInterval.Duration)
	}
	if jc.UploadWorkers > 0 {
		cfg.UploadWorkers = jc.UploadWorkers
	}
	if jc.StageRecordings != nil {
		cfg.StageRecordings = *jc.StageRecordings
	}
	if jc.AudioInput != "" {
		cfg.AudioInput = jc.AudioInput
	}
	if jc.VideoInput != "" {
		cfg.VideoInput = jc.VideoInput
	}
}
