// Package config loads the optional calla tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the user-adjustable configuration of the calla tool. Every
// field is optional; an absent or empty file means the defaults.
type Config struct {
	// Debug settings
	Debug struct {
		Trace     bool `toml:"trace"`      // log each instruction as it executes
		PrintCode bool `toml:"print_code"` // log the disassembled chunk after compiling
	} `toml:"debug"`

	// REPL settings
	REPL struct {
		Prompt      string `toml:"prompt"`
		HistoryFile string `toml:"history_file"`
	} `toml:"repl"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.REPL.Prompt = "> "
	return cfg
}

// Load reads the configuration from path, or from
// <UserConfigDir>/calla/config.toml when path is empty. A missing file
// at the default location is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := os.UserConfigDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "calla", "config.toml")
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.REPL.Prompt == "" {
		cfg.REPL.Prompt = "> "
	}
	return cfg, nil
}
