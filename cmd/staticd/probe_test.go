// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/z5labs/staticd/runtime/httpd"

	"github.com/stretchr/testify/require"
)

// startStaticd serves a small document root on a loopback port and
// returns the base URL.
func startStaticd(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>ok</h1>"), 0o644))

	cfg := httpd.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.Root = root
	cfg.PoolSize = 2

	ln, err := httpd.Listen(context.Background(), cfg.Addr(), cfg.PoolSize)
	require.NoError(t, err)

	s, err := httpd.NewServer(ln, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("server did not stop")
		}
	})

	return fmt.Sprintf("http://%s", s.Addr())
}

func testProbeOptions() probeOptions {
	return probeOptions{
		retries: 2,
		timeout: time.Second,
		waitMin: time.Millisecond,
		waitMax: 10 * time.Millisecond,
	}
}

func TestProbe(t *testing.T) {
	base := startStaticd(t)

	testCases := []struct {
		name     string
		path     string
		wantCode int
	}{
		{name: "index is served", path: "/"},
		{name: "file by name", path: "/index.html"},
		{name: "missing file", path: "/missing.html", wantCode: 404},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := probe(context.Background(), newProbeClient(testProbeOptions(), io.Discard), base+tc.path, &out)
			if tc.wantCode == 0 {
				require.NoError(t, err)
				require.Contains(t, out.String(), "probe succeeded")
				require.Contains(t, out.String(), "content_length=11")
				return
			}

			var perr ProbeStatusError
			require.ErrorAs(t, err, &perr)
			require.Equal(t, tc.wantCode, perr.Code)
		})
	}
}

func TestProbe_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	err = probe(context.Background(), newProbeClient(testProbeOptions(), io.Discard), "http://"+addr+"/", io.Discard)
	require.Error(t, err)
}

func TestProbeCmd(t *testing.T) {
	base := startStaticd(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"probe", base + "/", "--retries", "0"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Contains(t, out.String(), "status_code=200")
}
