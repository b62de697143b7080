// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package maskslog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripQuery(t *testing.T) {
	testCases := []struct {
		name string
		in   slog.Value
		want slog.Value
	}{
		{name: "path only", in: slog.StringValue("/index.html"), want: slog.StringValue("/index.html")},
		{name: "query", in: slog.StringValue("/a.txt?sig=1&x=2"), want: slog.StringValue("/a.txt?****")},
		{name: "empty query", in: slog.StringValue("/a.txt?"), want: slog.StringValue("/a.txt?****")},
		{name: "non string", in: slog.IntValue(200), want: slog.IntValue(200)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.want.Equal(StripQuery(tc.in)))
		})
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestHandler(t *testing.T) {
	testCases := []struct {
		name  string
		log   func(*slog.Logger)
		check func(*testing.T, map[string]any)
	}{
		{
			name: "masks record attrs",
			log: func(l *slog.Logger) {
				l.Info("msg", slog.String("secret", "value"), slog.String("other", "kept"))
			},
			check: func(t *testing.T, m map[string]any) {
				require.Equal(t, "****", m["secret"])
				require.Equal(t, "kept", m["other"])
			},
		},
		{
			name: "masks attrs added with With",
			log: func(l *slog.Logger) {
				l.With(slog.String("secret", "value")).Info("msg", slog.String("secret", "again"))
			},
			check: func(t *testing.T, m map[string]any) {
				require.Equal(t, "****", m["secret"])
			},
		},
		{
			name: "keeps masking inside groups",
			log: func(l *slog.Logger) {
				l.WithGroup("req").Info("msg", slog.String("secret", "value"))
			},
			check: func(t *testing.T, m map[string]any) {
				req, ok := m["req"].(map[string]any)
				require.True(t, ok)
				require.Equal(t, "****", req["secret"])
			},
		},
		{
			name: "masks attrs nested in group values",
			log: func(l *slog.Logger) {
				l.Info("msg", slog.Group("req", slog.String("secret", "value"), slog.Int("n", 1)))
			},
			check: func(t *testing.T, m map[string]any) {
				req, ok := m["req"].(map[string]any)
				require.True(t, ok)
				require.Equal(t, "****", req["secret"])
				require.Equal(t, float64(1), req["n"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := NewHandler(slog.NewJSONHandler(&buf, nil), Attr("secret", Redact))

			tc.log(slog.New(h))
			tc.check(t, decode(t, &buf))
		})
	}
}

func TestHandler_Enabled(t *testing.T) {
	h := NewHandler(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	require.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, h.Enabled(context.Background(), slog.LevelError))
}
