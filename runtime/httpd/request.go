// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"bytes"
	"errors"
	"io"
	"net"
	"regexp"
	"time"
)

// DefaultMaxHeaderBytes bounds how much [ReadRequest] buffers while
// waiting for the header terminator.
const DefaultMaxHeaderBytes = 64 << 10

var headerTerminator = []byte("\r\n\r\n")

var requestLine = regexp.MustCompile(`^([A-Z]*) (\S+) HTTP/1\.[01]\r\n`)

// Request is the method and resource taken verbatim from a request line.
// Resource is still percent-encoded and may carry a query string.
type Request struct {
	Method   string
	Resource string
}

// ReadRequest reads from conn in chunks of bufSize bytes until the buffered
// bytes contain the header terminator, and returns everything up to and
// including it. The read deadline is re-armed to timeout before every read.
//
// A peer closing the connection early yields [ErrIncompleteRequest] and
// buffering more than maxBytes yields [ErrHeaderTooLarge]. Any other failure,
// including deadline expiry, is returned as a [ReadError].
func ReadRequest(conn net.Conn, bufSize int, timeout time.Duration, maxBytes int) ([]byte, error) {
	var (
		buf   []byte
		chunk = make([]byte, bufSize)
	)
	for {
		if timeout > 0 {
			err := conn.SetReadDeadline(time.Now().Add(timeout))
			if err != nil {
				return nil, ReadError{Cause: err}
			}
		}

		n, err := conn.Read(chunk)

		// the terminator may straddle two chunks
		from := max(0, len(buf)-len(headerTerminator)+1)
		buf = append(buf, chunk[:n]...)
		if i := bytes.Index(buf[from:], headerTerminator); i >= 0 {
			return buf[:from+i+len(headerTerminator)], nil
		}
		if maxBytes > 0 && len(buf) > maxBytes {
			return nil, ErrHeaderTooLarge
		}
		if errors.Is(err, io.EOF) {
			return nil, ErrIncompleteRequest
		}
		if err != nil {
			return nil, ReadError{Cause: err}
		}
	}
}

// ParseRequest extracts the method and resource from a framed request.
// Only the request line is interpreted; header fields are ignored.
func ParseRequest(b []byte) (Request, error) {
	if !bytes.Contains(b, headerTerminator) {
		return Request{}, ErrMalformedRequest
	}

	m := requestLine.FindSubmatch(b)
	if m == nil {
		return Request{}, ErrMalformedRequest
	}
	return Request{
		Method:   string(m[1]),
		Resource: string(m[2]),
	}, nil
}
