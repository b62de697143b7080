// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"context"
	"net"
)

// Listen binds a TCP listener to addr with address reuse enabled and,
// on unix platforms, a listen backlog of backlog pending connections.
func Listen(ctx context.Context, addr string, backlog int) (net.Listener, error) {
	return listen(ctx, addr, backlog)
}
