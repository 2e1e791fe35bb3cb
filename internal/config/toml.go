// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Dashboard  DashboardConfig     `toml:"dashboard"`
	KeyEndings KeyEndingsConfig    `toml:"key-endings"`
	Exceptions map[string][]string `toml:"exceptions"`
	Serve      ServeConfig         `toml:"serve"`

	// ExceptionOrder lists the [exceptions] keys in file order.
	ExceptionOrder []string `toml:"-"`
}

// DashboardConfig maps dashboard-related settings.
type DashboardConfig struct {
	DB  *string `toml:"db"`
	Top *int    `toml:"top"`
}

// KeyEndingsConfig maps the key ending selection settings.
type KeyEndingsConfig struct {
	Count       *int     `toml:"count"`
	MinAccuracy *float64 `toml:"min-accuracy"`
}

// ServeConfig maps HTTP server settings.
type ServeConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	for _, key := range md.Keys() {
		if len(key) == 2 && key[0] == "exceptions" {
			cfg.ExceptionOrder = append(cfg.ExceptionOrder, key[1])
		}
	}
	return cfg, nil
}
