package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by FromEnv.
const (
	EnvConfig   = "DIGIWARE_CONFIG"
	EnvLogLevel = "DIGIWARE_LOG_LEVEL"
	EnvRadio    = "DIGIWARE_RADIO_DRIVER"
)

// FromEnv loads the given .env files (default ".env") if present, then the
// config file named by DIGIWARE_CONFIG or fallback, then applies
// environment overrides. Variables already set in the process win over .env.
func FromEnv(fallback string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	path := os.Getenv(EnvConfig)
	if path == "" {
		path = fallback
	}
	cfg, _, err := LoadOrDefault(path)
	if err != nil {
		return Config{}, err
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	if drv := os.Getenv(EnvRadio); drv != "" {
		cfg.Radio.Driver = drv
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
