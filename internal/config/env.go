package config

import (
	"os"
	"strconv"
)

// FromEnv overlays MEMSTREAM_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("MEMSTREAM_ALLOW_AUTO_CREATE_STREAMS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AllowAutoCreateStreams = b
		}
	}
	if v := os.Getenv("MEMSTREAM_STREAM_NAME_REGEX"); v != "" {
		cfg.StreamNameRegex = v
	}
	if v := os.Getenv("MEMSTREAM_MAX_STREAMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxStreams = n
		}
	}
	if v := os.Getenv("MEMSTREAM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MEMSTREAM_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
