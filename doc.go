// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package staticd provides the small functional core used to assemble and
// run the staticd file server.
//
// The package is built around three abstractions:
//
//   - Builder[T]: constructs a component, such as a listener or a tracer provider
//   - Runtime: a long running component, such as the HTTP server
//   - Runner[T]: builds a Runtime and then runs it
//
// # Functional Composition
//
// Map transforms a builder's output and Bind lets the output of one builder
// pick the next. MemoizeBuilder shares one build result between consumers.
//
//	serverB := httpd.Build(configB, httpd.LogHandler(handler))
//
// # Running
//
// Runners are decorated to add behaviour around a Runtime:
//
//	runner := staticd.RecoverPanics(
//	    staticd.NotifyOnSignal(
//	        staticd.DefaultRunner[staticd.Runtime](),
//	        os.Interrupt,
//	    ),
//	)
//	if err := runner.Run(context.Background(), runtimeB); err != nil {
//	    log.Fatal(err)
//	}
package staticd
