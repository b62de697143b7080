// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build !unix

package httpd

import (
	"context"
	"net"
)

// The runtime picks the backlog on these platforms.
func listen(ctx context.Context, addr string, _ int) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}
