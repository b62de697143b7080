// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config reads settings from layered sources such as command line
// flags, environment variables and YAML files.
//
// Every source is a [Reader]. A read yields a [Value] which is either set
// or unset; an unset value is not an error, it just lets the next source
// have a say. [Read] turns a final unset value into [ErrValueNotSet].
//
// # Layering
//
// [Or] returns the first set value and [Default] supplies a fallback:
//
//	port, err := config.Read(ctx, config.Default(8080, config.Or(
//	    config.IntFromString(config.Env("STATICD_PORT")),
//	    config.IntFromString(config.Env("PORT")),
//	)))
//
// [Map] converts a set value and leaves unset values alone. [Bind] lets a
// value choose the next reader, for example a path choosing a file:
//
//	fileB := config.Bind(config.Env("STATICD_CONFIG"), func(_ context.Context, path string) config.Reader[FileConfig] {
//	    return config.YamlFile[FileConfig](path)
//	})
//
// # Files
//
// [ReadFile] reports a missing file as unset. [YamlFile] decodes a YAML
// file into a struct using the "config" field tag. The file is rendered as
// a text/template first, with an "env" function for environment variables:
//
//	root: {{env "STATICD_ROOT"}}
//	read_timeout: 30s
//
// Durations accept Go duration strings and any type implementing
// encoding.TextUnmarshaler, such as slog.Level, accepts its text form.
// Decoding failures are reported as [InvalidYamlError] or wrapped
// [TypeCoercionError] messages.
package config
