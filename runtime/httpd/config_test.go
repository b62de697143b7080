// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, "localhost:8080", cfg.Addr())
	require.Equal(t, "httptest", cfg.Root)
	require.Equal(t, 1024, cfg.BufferSize)
	require.Equal(t, 30*time.Second, cfg.ReadTimeout)
	require.Equal(t, 20, cfg.PoolSize)
}

func TestConfig_Validate(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "index.html")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	valid := func() Config {
		cfg := DefaultConfig()
		cfg.Root = root
		return cfg
	}

	testCases := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:   "valid",
			modify: func(c *Config) {},
		},
		{
			name:   "ephemeral port",
			modify: func(c *Config) { c.Port = 0 },
		},
		{
			name:      "negative port",
			modify:    func(c *Config) { c.Port = -1 },
			wantField: "port",
		},
		{
			name:      "port out of range",
			modify:    func(c *Config) { c.Port = 65536 },
			wantField: "port",
		},
		{
			name:      "zero buffer size",
			modify:    func(c *Config) { c.BufferSize = 0 },
			wantField: "buffer_size",
		},
		{
			name:      "zero read timeout",
			modify:    func(c *Config) { c.ReadTimeout = 0 },
			wantField: "read_timeout",
		},
		{
			name:      "negative pool size",
			modify:    func(c *Config) { c.PoolSize = -4 },
			wantField: "workers",
		},
		{
			name:      "missing root",
			modify:    func(c *Config) { c.Root = filepath.Join(root, "missing") },
			wantField: "root",
		},
		{
			name:      "root is a file",
			modify:    func(c *Config) { c.Root = file },
			wantField: "root",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.modify(&cfg)

			err := cfg.Validate()
			if tc.wantField == "" {
				require.NoError(t, err)
				return
			}

			var ierr InvalidConfigError
			require.ErrorAs(t, err, &ierr)
			require.Equal(t, tc.wantField, ierr.Field)
			require.NotEmpty(t, ierr.Error())
		})
	}
}
