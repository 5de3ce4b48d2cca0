// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

type config struct {
	Channels    int
	Flavor      string
	Capacity    int
	Messages    int
	Timeout     time.Duration
	SendDelay   time.Duration
	Seed        uint64
	MetricsAddr string
	LogLevel    zerolog.Level
}

func defaultConfig() config {
	return config{
		Channels: 4,
		Flavor:   "zero",
		Capacity: 16,
		Messages: 10000,
		Timeout:  100 * time.Millisecond,
		LogLevel: zerolog.InfoLevel,
	}
}

type fileConfig struct {
	Channels    int    `toml:"channels"`
	Flavor      string `toml:"flavor"`
	Capacity    int    `toml:"capacity"`
	Messages    int    `toml:"messages"`
	Timeout     string `toml:"timeout"`
	SendDelay   string `toml:"send_delay"`
	Seed        uint64 `toml:"seed"`
	MetricsAddr string `toml:"metrics_addr"`
	LogLevel    string `toml:"log_level"`
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load selstress config: %w", err)
	}

	if meta.IsDefined("channels") {
		cfg.Channels = raw.Channels
	}
	if meta.IsDefined("flavor") {
		cfg.Flavor = strings.ToLower(strings.TrimSpace(raw.Flavor))
	}
	if meta.IsDefined("capacity") {
		cfg.Capacity = raw.Capacity
	}
	if meta.IsDefined("messages") {
		cfg.Messages = raw.Messages
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("send_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.SendDelay))
		if err != nil {
			return config{}, fmt.Errorf("parse send_delay: %w", err)
		}
		cfg.SendDelay = d
	}
	if meta.IsDefined("seed") {
		cfg.Seed = raw.Seed
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("log_level") {
		lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw.LogLevel)))
		if err != nil {
			return config{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.Channels < 1 {
		return fmt.Errorf("channels must be at least 1, got %d", c.Channels)
	}
	if c.Messages < 0 {
		return fmt.Errorf("messages must not be negative, got %d", c.Messages)
	}
	switch c.Flavor {
	case "list", "zero":
	case "array":
		if c.Capacity < 1 {
			return fmt.Errorf("array capacity must be at least 1, got %d", c.Capacity)
		}
	default:
		return fmt.Errorf("unknown flavor %q (want list, array or zero)", c.Flavor)
	}
	return nil
}
