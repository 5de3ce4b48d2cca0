// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "selstress.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
channels = 8
flavor = " Array "
capacity = 32
timeout = "250ms"
log_level = "debug"
seed = 7
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Channels)
	require.Equal(t, "array", cfg.Flavor)
	require.Equal(t, 32, cfg.Capacity)
	require.Equal(t, 250*time.Millisecond, cfg.Timeout)
	require.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	require.Equal(t, uint64(7), cfg.Seed)
	// Unset keys keep their defaults.
	require.Equal(t, defaultConfig().Messages, cfg.Messages)
	require.Empty(t, cfg.MetricsAddr)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"flavor":   `flavor = "ring"`,
		"channels": `channels = 0`,
		"capacity": "flavor = \"array\"\ncapacity = 0",
		"timeout":  `timeout = "soon"`,
		"level":    `log_level = "loud"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestRunDrainsEveryFlavor(t *testing.T) {
	for _, flavor := range []string{"list", "array", "zero"} {
		t.Run(flavor, func(t *testing.T) {
			if flavor == "array" {
				skipRace(t)
			}
			cfg := defaultConfig()
			cfg.Flavor = flavor
			cfg.Channels = 3
			cfg.Messages = 100
			cfg.Timeout = time.Second
			sum := run(cfg, zerolog.Nop())
			require.Equal(t, cfg.Channels*cfg.Messages, sum.received)
		})
	}
}
