// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otlp provides builders for OpenTelemetry exporters which ship
// spans and metrics to an OTLP collector over gRPC.
package otlp
