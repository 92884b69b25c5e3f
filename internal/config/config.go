package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	AllowAutoCreateStreams bool   `json:"allowAutoCreateStreams"`
	StreamNameRegex        string `json:"streamNameRegex"`
	MaxStreams             int    `json:"maxStreams"`
	LogLevel               string `json:"logLevel"`
	LogFormat              string `json:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		AllowAutoCreateStreams: true,
		StreamNameRegex:        `[a-zA-Z0-9:_\-\.]{1,256}`,
		MaxStreams:             0, // unlimited
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
