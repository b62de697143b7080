// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/z5labs/staticd/runtime/httpd"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "staticd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	configFile := writeConfigFile(t, `
host: 0.0.0.0
port: 9000
root: /srv/www
buffer_size: 4096
read_timeout: 10s
workers: 4
log_level: debug
telemetry:
  trace_exporter: stdout
  metrics_interval: 15s
`)

	testCases := []struct {
		name  string
		args  []string
		env   map[string]string
		check func(*testing.T, settings)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, s settings) {
				require.Equal(t, defaultSettings(), s)
			},
		},
		{
			name: "config file overrides defaults",
			args: []string{"--config", configFile},
			check: func(t *testing.T, s settings) {
				require.Equal(t, httpd.Config{
					Host:        "0.0.0.0",
					Port:        9000,
					Root:        "/srv/www",
					BufferSize:  4096,
					ReadTimeout: 10 * time.Second,
					PoolSize:    4,
				}, s.Server)
				require.Equal(t, slog.LevelDebug, s.LogLevel)
				require.Equal(t, "stdout", s.TraceExporter)
				require.Equal(t, "none", s.MetricsExporter)
				require.Equal(t, 15*time.Second, s.MetricsInterval)
			},
		},
		{
			name: "config file path from environment",
			env:  map[string]string{"STATICD_CONFIG": configFile},
			check: func(t *testing.T, s settings) {
				require.Equal(t, 9000, s.Server.Port)
			},
		},
		{
			name: "environment overrides config file",
			args: []string{"--config", configFile},
			env: map[string]string{
				"STATICD_PORT":         "9100",
				"STATICD_WORKERS":      "6",
				"STATICD_READ_TIMEOUT": "1m",
				"STATICD_LOG_LEVEL":    "warn",
			},
			check: func(t *testing.T, s settings) {
				require.Equal(t, 9100, s.Server.Port)
				require.Equal(t, 6, s.Server.PoolSize)
				require.Equal(t, time.Minute, s.Server.ReadTimeout)
				require.Equal(t, slog.LevelWarn, s.LogLevel)
				require.Equal(t, "0.0.0.0", s.Server.Host)
			},
		},
		{
			name: "flags override environment and config file",
			args: []string{"--config", configFile, "--port", "9200", "-w", "8", "--root", "public", "--log-level", "error"},
			env: map[string]string{
				"STATICD_PORT":    "9100",
				"STATICD_WORKERS": "6",
			},
			check: func(t *testing.T, s settings) {
				require.Equal(t, 9200, s.Server.Port)
				require.Equal(t, 8, s.Server.PoolSize)
				require.Equal(t, "public", s.Server.Root)
				require.Equal(t, slog.LevelError, s.LogLevel)
				require.Equal(t, 4096, s.Server.BufferSize)
			},
		},
		{
			name: "unchanged flags do not shadow other sources",
			args: []string{"--host", "127.0.0.1"},
			env:  map[string]string{"STATICD_BUFFER_SIZE": "2048"},
			check: func(t *testing.T, s settings) {
				require.Equal(t, "127.0.0.1", s.Server.Host)
				require.Equal(t, 2048, s.Server.BufferSize)
				require.Equal(t, 8080, s.Server.Port)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cmd := newRootCmd()
			require.NoError(t, cmd.ParseFlags(tc.args))

			s, err := loadSettings(context.Background(), cmd.Flags())
			require.NoError(t, err)
			tc.check(t, s)
		})
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.yaml")

		cmd := newRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--config", path}))

		_, err := loadSettings(context.Background(), cmd.Flags())

		var nerr ConfigFileNotFoundError
		require.ErrorAs(t, err, &nerr)
		require.Equal(t, path, nerr.Path)
	})

	t.Run("malformed environment values", func(t *testing.T) {
		t.Setenv("STATICD_PORT", "eighty")
		t.Setenv("STATICD_LOG_LEVEL", "loud")

		_, err := loadSettings(context.Background(), newRootCmd().Flags())

		var serr SettingError
		require.ErrorAs(t, err, &serr)
		require.ErrorContains(t, err, "invalid port")
		require.ErrorContains(t, err, "invalid log level")

		var numErr *strconv.NumError
		require.ErrorAs(t, err, &numErr)
	})

	t.Run("malformed config file", func(t *testing.T) {
		path := writeConfigFile(t, "port: [")

		cmd := newRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--config", path}))

		_, err := loadSettings(context.Background(), cmd.Flags())
		require.Error(t, err)
	})
}
