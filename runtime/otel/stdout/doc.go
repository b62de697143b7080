// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package stdout provides builders for OpenTelemetry exporters which write
// to an io.Writer, usually os.Stdout. They are meant for local debugging.
package stdout
