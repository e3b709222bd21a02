// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the resolved client configuration.
//
// Resolution order, strongest first:
//
//  1. command-line flags
//  2. environment (ALEUTIAN_DECK_API_URL, ALEUTIAN_DECK_WS_URL,
//     ALEUTIAN_DECK_TOKEN)
//  3. ~/.aleutiandeck/config.yaml
//  4. built-in defaults
type Config struct {
	// APIURL is the backend REST base URL.
	APIURL string `yaml:"api_url" validate:"required,url"`

	// WSURL is the WebSocket base URL; socket paths are appended.
	WSURL string `yaml:"ws_url" validate:"required,url"`

	// Token is the bearer token attached to every call. May be empty
	// against a local backend with auth disabled.
	Token string `yaml:"token"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogDir enables file logging. The dashboard always logs to file
	// since the TUI owns the terminal.
	LogDir string `yaml:"log_dir"`
}

// defaultConfig targets a local backend.
func defaultConfig() Config {
	return Config{
		APIURL:   "http://localhost:8080",
		WSURL:    "ws://localhost:8080",
		LogLevel: "info",
		LogDir:   "~/.aleutiandeck/logs",
	}
}

// configDir returns ~/.aleutiandeck, or an error if no home exists.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".aleutiandeck"), nil
}

// loadConfig resolves the effective configuration. flags carries the
// command-line values; empty fields mean the flag was not set.
func loadConfig(path string, flags Config) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		if dir, err := configDir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	overlayEnv(&cfg)
	overlay(&cfg, flags)

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return Config{}, fmt.Errorf("config: %s fails %q validation", f.Field(), f.Tag())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// overlayFile merges a yaml config file into cfg. A missing file is
// not an error; a malformed one is.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	overlay(cfg, fileCfg)
	return nil
}

func overlayEnv(cfg *Config) {
	overlay(cfg, Config{
		APIURL:   os.Getenv("ALEUTIAN_DECK_API_URL"),
		WSURL:    os.Getenv("ALEUTIAN_DECK_WS_URL"),
		Token:    os.Getenv("ALEUTIAN_DECK_TOKEN"),
		LogLevel: os.Getenv("ALEUTIAN_DECK_LOG_LEVEL"),
	})
}

// overlay copies src's non-empty fields onto dst.
func overlay(dst *Config, src Config) {
	if src.APIURL != "" {
		dst.APIURL = src.APIURL
	}
	if src.WSURL != "" {
		dst.WSURL = src.WSURL
	}
	if src.Token != "" {
		dst.Token = src.Token
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogDir != "" {
		dst.LogDir = src.LogDir
	}
}
