// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".txt":  "text/plain",
	".js":   "text/javascript",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".swf":  "application/x-shockwave-flash",
}

// MimeType returns the content type for the extension of name,
// or an empty string if the extension is unknown.
func MimeType(name string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(name))]
}
