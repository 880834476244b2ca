// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrInvalidConfig indicates a setting that could not be parsed.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds everything cmd/server needs to start.
type Config struct {
	Addr              string        // listen address, CHESS_ADDR
	AllowedOrigins    []string      // CORS and WebSocket origins, CHESS_ALLOWED_ORIGINS (comma separated)
	Clock             time.Duration // starting time per side, CHESS_CLOCK
	MatchInterval     time.Duration // matchmaking pass period, CHESS_MATCH_INTERVAL
	WSReadBufferSize  int
	WSWriteBufferSize int
}

// Default returns the settings used when no environment overrides are set.
func Default() Config {
	return Config{
		Addr:              ":3000",
		AllowedOrigins:    []string{"http://localhost:5173"},
		Clock:             10 * time.Minute,
		MatchInterval:     time.Second,
		WSReadBufferSize:  1024,
		WSWriteBufferSize: 1024,
	}
}

// Load applies environment overrides on top of Default.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()
	if v := getenv("CHESS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("CHESS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) == 0 {
			return Config{}, fmt.Errorf("%w: CHESS_ALLOWED_ORIGINS is empty", ErrInvalidConfig)
		}
		cfg.AllowedOrigins = origins
	}

	var err error
	if cfg.Clock, err = duration(getenv, "CHESS_CLOCK", cfg.Clock); err != nil {
		return Config{}, err
	}
	if cfg.MatchInterval, err = duration(getenv, "CHESS_MATCH_INTERVAL", cfg.MatchInterval); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return d, nil
}

// OriginList joins AllowedOrigins the way the CORS middleware expects.
func (c Config) OriginList() string {
	return strings.Join(c.AllowedOrigins, ", ")
}
