// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"os"
)

// Env returns a [Reader] for the environment variable named key.
// The value is unset when the variable is not present or empty.
func Env(key string) Reader[string] {
	return ReaderFunc[string](func(_ context.Context) (Value[string], error) {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return Value[string]{}, nil
		}
		return ValueOf(v), nil
	})
}
