// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type serverConfig struct {
	Host    string        `config:"host"`
	Port    *int          `config:"port"`
	Timeout time.Duration `config:"timeout"`
	Level   slog.Level    `config:"level"`
}

func TestDecodeYaml(t *testing.T) {
	t.Run("will decode", func(t *testing.T) {
		t.Run("tagged fields with duration and text hooks", func(t *testing.T) {
			cfg, err := DecodeYaml[serverConfig](strings.NewReader(`
host: 0.0.0.0
port: 9000
timeout: 45s
level: DEBUG
`))
			require.NoError(t, err)
			require.Equal(t, "0.0.0.0", cfg.Host)
			require.NotNil(t, cfg.Port)
			require.Equal(t, 9000, *cfg.Port)
			require.Equal(t, 45*time.Second, cfg.Timeout)
			require.Equal(t, slog.LevelDebug, cfg.Level)
		})

		t.Run("integer durations as nanoseconds", func(t *testing.T) {
			cfg, err := DecodeYaml[serverConfig](strings.NewReader(`timeout: 1000`))
			require.NoError(t, err)
			require.Equal(t, time.Microsecond, cfg.Timeout)
		})

		t.Run("an empty document to the zero value", func(t *testing.T) {
			cfg, err := DecodeYaml[serverConfig](strings.NewReader(``))
			require.NoError(t, err)
			require.Equal(t, serverConfig{}, cfg)
		})

		t.Run("templated values", func(t *testing.T) {
			t.Setenv("STATICD_TEST_HOST", "127.0.0.1")

			cfg, err := DecodeYaml[serverConfig](strings.NewReader(`host: {{ env "STATICD_TEST_HOST" }}`))
			require.NoError(t, err)
			require.Equal(t, "127.0.0.1", cfg.Host)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the document is not valid yaml", func(t *testing.T) {
			_, err := DecodeYaml[serverConfig](strings.NewReader("host: [unclosed"))

			var yerr InvalidYamlError
			require.ErrorAs(t, err, &yerr)
			require.NotEmpty(t, yerr.Error())
			require.Error(t, yerr.Unwrap())
		})

		t.Run("if a duration cannot be parsed", func(t *testing.T) {
			_, err := DecodeYaml[serverConfig](strings.NewReader("timeout: soon"))

			require.ErrorContains(t, err, "failed to coerce value")
		})

		t.Run("if a text value cannot be unmarshaled", func(t *testing.T) {
			_, err := DecodeYaml[serverConfig](strings.NewReader("level: LOUD"))

			require.ErrorContains(t, err, "failed to coerce value")
		})
	})
}

func TestYamlFile(t *testing.T) {
	t.Run("decodes an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "staticd.yaml")
		require.NoError(t, os.WriteFile(path, []byte("host: example.com\n"), 0o600))

		cfg, err := Read(context.Background(), YamlFile[serverConfig](path))
		require.NoError(t, err)
		require.Equal(t, "example.com", cfg.Host)
		require.Nil(t, cfg.Port)
	})

	t.Run("is unset for a missing file", func(t *testing.T) {
		val, err := YamlFile[serverConfig](filepath.Join(t.TempDir(), "missing.yaml")).Read(context.Background())
		require.NoError(t, err)

		_, ok := val.Value()
		require.False(t, ok)
	})
}
