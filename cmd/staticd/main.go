// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command staticd serves the files below a document root over HTTP/1.x.
//
//	staticd --root ./public -w 8
//	staticd --config staticd.yaml
//	staticd probe http://localhost:8080/
package main

import (
	"context"
	"os"
)

// version is overridden at link time.
var version = "dev"

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}
