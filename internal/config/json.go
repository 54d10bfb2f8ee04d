package config

import (
	"encoding/json"
	"os"

	"github.com/clinicore/clinicore/internal/flagx"
	"github.com/clinicore/clinicore/internal/timex"
)

// jsonConfig is the DTO used only for reading the JSON configuration file.
// It uses timex.Duration for interval fields so both string values such as
// "30m" and integer nanoseconds parse.
type jsonConfig struct {
	DatabaseDSN             string         `json:"database_dsn"`
	KeyFilePath             string         `json:"key_file"`
	RetentionFilePath       string         `json:"retention_file"`
	SessionSecret           string         `json:"session_secret"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
}

// parseJSON overlays values from the JSON file named by the -c/-config flag,
// when given. Fields absent from the file keep their current values. An
// unreadable or malformed file panics: starting with half-applied
// configuration is worse than not starting.
func parseJSON(config *Config) {
	path := flagx.JSONConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.KeyFilePath != "" {
		config.KeyFilePath = c.KeyFilePath
	}
	if c.RetentionFilePath != "" {
		config.RetentionFilePath = c.RetentionFilePath
	}
	if c.SessionSecret != "" {
		config.SessionSecret = c.SessionSecret
	}
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
}
