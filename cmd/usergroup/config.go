package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the usergroup configuration file. Command-line flags
// override the values read from it.
type Config struct {
	// Timeout bounds directory searches used for tab completion.
	Timeout time.Duration `yaml:"timeout"`
	// Latency simulates a slow directory backend.
	Latency     time.Duration       `yaml:"latency"`
	HistoryFile string              `yaml:"history_file"`
	MetricsAddr string              `yaml:"metrics_addr"`
	Users       []string            `yaml:"users"`
	Groups      map[string][]string `yaml:"groups"`
}

const defaultTimeout = 2 * time.Second

// seedDirectory fills an empty directory with demo entries.
func (c *Config) seedDirectory() {
	if c.Users != nil || c.Groups != nil {
		return
	}
	c.Users = []string{"alice", "anne", "bob", "bruce", "cliff", "clive"}
	c.Groups = map[string][]string{
		"staff":    {"alice", "bob"},
		"students": {"anne"},
		"visitors": nil,
	}
}

// loadConfig reads path, filling in defaults for anything it leaves
// unset. A missing file is not an error when required is false.
func loadConfig(path string, required bool) (*Config, error) {
	cfg := &Config{Timeout: defaultTimeout}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !required && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if cfg.Timeout < 0 || cfg.Latency < 0 {
		return nil, fmt.Errorf("config %s: durations must not be negative", path)
	}
	cfg.seedDirectory()
	return cfg, nil
}
