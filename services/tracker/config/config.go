// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the tracker service configuration from a yaml
// file with environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type TrackerConfig struct {
	// Server is the HTTP listener configuration
	Server ServerConfig `yaml:"server"`

	// Database points at the sqlite file backing the service
	Database DatabaseConfig `yaml:"database"`

	// Logging controls the slog output
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"` // e.g. 0.0.0.0
	Port int    `yaml:"port"` // e.g. 8080
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // e.g. /var/lib/tracker/tracker.db
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() TrackerConfig {
	return TrackerConfig{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Path: "tracker.db"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads the config at path, falling back to defaults when the file
// does not exist, then applies TRACKER_* environment overrides. An empty
// path skips the file entirely.
func Load(path string) (TrackerConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fine, defaults apply
		case err != nil:
			return cfg, fmt.Errorf("failed to read the config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse the config file: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return cfg, fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	return cfg, nil
}

func applyEnv(cfg *TrackerConfig) {
	if v := os.Getenv("TRACKER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("TRACKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TRACKER_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRACKER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRACKER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
