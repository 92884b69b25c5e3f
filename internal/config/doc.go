// Package config provides loading and environment overlay for memstream
// runtime configuration. It exposes a Default() baseline, a JSON Load(), and
// FromEnv() to overlay MEMSTREAM_* environment variables.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/memstream.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	rt := runtime.Open(runtime.Options{Config: cfg})
package config
