// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/z5labs/staticd"
	"github.com/z5labs/staticd/config"
)

// Exporter names understood by the staticd command.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// UnknownExporterError is returned by [BuildByName] when no builder
// is registered under the requested name.
type UnknownExporterError struct {
	Name  string
	Known []string
}

func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown exporter %q: expected one of %s", e.Name, strings.Join(e.Known, ", "))
}

// BuildByName selects one of choices using the name read from r.
// An unset name selects [ExporterNone].
func BuildByName[T any](r config.Reader[string], choices map[string]staticd.Builder[T]) staticd.Builder[T] {
	return staticd.BuilderFunc[T](func(ctx context.Context) (T, error) {
		name := strings.ToLower(config.MustOr(ctx, ExporterNone, r))

		b, ok := choices[name]
		if !ok {
			var zero T
			known := make([]string, 0, len(choices))
			for k := range choices {
				known = append(known, k)
			}
			slices.Sort(known)
			return zero, UnknownExporterError{Name: name, Known: known}
		}
		return b.Build(ctx)
	})
}
