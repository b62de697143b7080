// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ServerToken is sent in the Server header of every response.
const ServerToken = "staticd"

// 403 is reserved for an explicit permission check and is never produced today.
var statusLines = map[int]string{
	http.StatusOK:               "HTTP/1.1 200 OK",
	http.StatusForbidden:        "HTTP/1.1 403 Forbidden",
	http.StatusNotFound:         "HTTP/1.1 404 Not Found",
	http.StatusMethodNotAllowed: "HTTP/1.1 405 Method Not Allowed",
}

// StatusLine returns the response status line for code, without the trailing CRLF.
func StatusLine(code int) string {
	if line, ok := statusLines[code]; ok {
		return line
	}
	return fmt.Sprintf("HTTP/1.1 %d %s", code, http.StatusText(code))
}

// Content describes the file carried by a successful response.
type Content struct {
	Length   int64
	MimeType string

	// Body is only read when the response includes a body.
	Body io.Reader
}

// Response fully determines the bytes written back to a client.
type Response struct {
	StatusCode  int
	Date        time.Time
	Content     *Content
	IncludeBody bool
}

// AppendHeader appends the status line and header block, including the
// blank line which ends it, to b.
func (r Response) AppendHeader(b []byte) []byte {
	b = append(b, StatusLine(r.StatusCode)...)
	b = append(b, "\r\nDate: "...)
	b = r.Date.UTC().AppendFormat(b, http.TimeFormat)
	b = append(b, "\r\nServer: "+ServerToken+"\r\nConnection: close\r\n"...)
	if r.Content != nil {
		b = append(b, "Content-Length: "...)
		b = strconv.AppendInt(b, r.Content.Length, 10)
		b = append(b, "\r\n"...)
		if r.Content.MimeType != "" {
			b = append(b, "Content-Type: "...)
			b = append(b, r.Content.MimeType...)
			b = append(b, "\r\n"...)
		}
	}
	return append(b, "\r\n"...)
}

// WriteTo writes the header block followed, if included, by exactly
// Content.Length bytes of the body. Failures are returned as a [WriteError].
func (r Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.AppendHeader(make([]byte, 0, 256)))
	written := int64(n)
	if err != nil {
		return written, WriteError{Cause: err}
	}
	if !r.IncludeBody || r.Content == nil || r.Content.Body == nil {
		return written, nil
	}

	m, err := io.CopyN(w, r.Content.Body, r.Content.Length)
	written += m
	if err != nil {
		return written, WriteError{Cause: err}
	}
	return written, nil
}
