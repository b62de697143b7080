// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/z5labs/staticd/config"
	"github.com/z5labs/staticd/runtime/httpd"
	"github.com/z5labs/staticd/runtime/otel"

	"github.com/spf13/pflag"
)

const envPrefix = "STATICD_"

// settings is everything the serve command needs once every source is merged.
type settings struct {
	Server          httpd.Config
	LogLevel        slog.Level
	LogQuery        bool
	TraceExporter   string
	MetricsExporter string
	MetricsInterval time.Duration
	OTLPEndpoint    string
}

func defaultSettings() settings {
	return settings{
		Server:          httpd.DefaultConfig(),
		LogLevel:        slog.LevelInfo,
		TraceExporter:   otel.ExporterNone,
		MetricsExporter: otel.ExporterNone,
		MetricsInterval: time.Minute,
		OTLPEndpoint:    "localhost:4317",
	}
}

// fileSettings mirrors the YAML config file. Pointer fields stay nil
// when a key is missing so lower priority sources still apply.
type fileSettings struct {
	Host        *string        `config:"host"`
	Port        *int           `config:"port"`
	Root        *string        `config:"root"`
	BufferSize  *int           `config:"buffer_size"`
	ReadTimeout *time.Duration `config:"read_timeout"`
	Workers     *int           `config:"workers"`
	LogLevel    *slog.Level    `config:"log_level"`
	LogQuery    *bool          `config:"log_query"`
	Telemetry   struct {
		TraceExporter   *string        `config:"trace_exporter"`
		MetricsExporter *string        `config:"metrics_exporter"`
		MetricsInterval *time.Duration `config:"metrics_interval"`
		OTLPEndpoint    *string        `config:"otlp_endpoint"`
	} `config:"telemetry"`
}

// ConfigFileNotFoundError is returned when an explicitly named config file does not exist.
type ConfigFileNotFoundError struct {
	Path string
}

func (e ConfigFileNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// SettingError names the setting whose source could not be read.
type SettingError struct {
	Name  string
	Cause error
}

func (e SettingError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Name, e.Cause)
}

func (e SettingError) Unwrap() error {
	return e.Cause
}

// loadSettings merges every source. A changed flag wins over the
// environment, which wins over the config file, which wins over defaults.
func loadSettings(ctx context.Context, fs *pflag.FlagSet) (settings, error) {
	fc, err := readFileSettings(ctx, fs)
	if err != nil {
		return settings{}, err
	}

	def := defaultSettings()
	var errs []error
	read := func(name string, err error) {
		if err != nil {
			errs = append(errs, SettingError{Name: name, Cause: err})
		}
	}

	var s settings
	s.Server.Host, err = readSetting(ctx, def.Server.Host,
		flagValue(fs, "host", fs.GetString),
		config.Env(envPrefix+"HOST"),
		ptrValue(fc.Host),
	)
	read("host", err)

	s.Server.Port, err = readSetting(ctx, def.Server.Port,
		flagValue(fs, "port", fs.GetInt),
		config.IntFromString(config.Env(envPrefix+"PORT")),
		ptrValue(fc.Port),
	)
	read("port", err)

	s.Server.Root, err = readSetting(ctx, def.Server.Root,
		flagValue(fs, "root", fs.GetString),
		config.Env(envPrefix+"ROOT"),
		ptrValue(fc.Root),
	)
	read("root", err)

	s.Server.BufferSize, err = readSetting(ctx, def.Server.BufferSize,
		flagValue(fs, "buffer-size", fs.GetInt),
		config.IntFromString(config.Env(envPrefix+"BUFFER_SIZE")),
		ptrValue(fc.BufferSize),
	)
	read("buffer size", err)

	s.Server.ReadTimeout, err = readSetting(ctx, def.Server.ReadTimeout,
		flagValue(fs, "read-timeout", fs.GetDuration),
		config.DurationFromString(config.Env(envPrefix+"READ_TIMEOUT")),
		ptrValue(fc.ReadTimeout),
	)
	read("read timeout", err)

	s.Server.PoolSize, err = readSetting(ctx, def.Server.PoolSize,
		flagValue(fs, "workers", fs.GetInt),
		config.IntFromString(config.Env(envPrefix+"WORKERS")),
		ptrValue(fc.Workers),
	)
	read("workers", err)

	s.LogLevel, err = readSetting(ctx, def.LogLevel,
		levelFromString(flagValue(fs, "log-level", fs.GetString)),
		levelFromString(config.Env(envPrefix+"LOG_LEVEL")),
		ptrValue(fc.LogLevel),
	)
	read("log level", err)

	s.LogQuery, err = readSetting(ctx, def.LogQuery,
		flagValue(fs, "log-query", fs.GetBool),
		boolFromString(config.Env(envPrefix+"LOG_QUERY")),
		ptrValue(fc.LogQuery),
	)
	read("log query", err)

	s.TraceExporter, err = readSetting(ctx, def.TraceExporter,
		flagValue(fs, "trace-exporter", fs.GetString),
		config.Env(envPrefix+"TRACE_EXPORTER"),
		ptrValue(fc.Telemetry.TraceExporter),
	)
	read("trace exporter", err)

	s.MetricsExporter, err = readSetting(ctx, def.MetricsExporter,
		flagValue(fs, "metrics-exporter", fs.GetString),
		config.Env(envPrefix+"METRICS_EXPORTER"),
		ptrValue(fc.Telemetry.MetricsExporter),
	)
	read("metrics exporter", err)

	s.MetricsInterval, err = readSetting(ctx, def.MetricsInterval,
		flagValue(fs, "metrics-interval", fs.GetDuration),
		config.DurationFromString(config.Env(envPrefix+"METRICS_INTERVAL")),
		ptrValue(fc.Telemetry.MetricsInterval),
	)
	read("metrics interval", err)

	s.OTLPEndpoint, err = readSetting(ctx, def.OTLPEndpoint,
		flagValue(fs, "otlp-endpoint", fs.GetString),
		config.Env(envPrefix+"OTLP_ENDPOINT"),
		ptrValue(fc.Telemetry.OTLPEndpoint),
	)
	read("otlp endpoint", err)

	if len(errs) > 0 {
		return settings{}, errors.Join(errs...)
	}
	return s, nil
}

func readFileSettings(ctx context.Context, fs *pflag.FlagSet) (fileSettings, error) {
	path, err := config.Read(ctx, config.Or(
		flagValue(fs, "config", fs.GetString),
		config.Env(envPrefix+"CONFIG"),
	))
	if errors.Is(err, config.ErrValueNotSet) {
		return fileSettings{}, nil
	}
	if err != nil {
		return fileSettings{}, err
	}

	fc, err := config.Read(ctx, config.YamlFile[fileSettings](path))
	if errors.Is(err, config.ErrValueNotSet) {
		return fileSettings{}, ConfigFileNotFoundError{Path: path}
	}
	if err != nil {
		return fileSettings{}, err
	}
	return fc, nil
}

func readSetting[T any](ctx context.Context, def T, rs ...config.Reader[T]) (T, error) {
	return config.Read(ctx, config.Default(def, config.Or(rs...)))
}

// flagValue only reports a value when the flag was given on the command line,
// otherwise pflag defaults would shadow every other source.
func flagValue[T any](fs *pflag.FlagSet, name string, get func(string) (T, error)) config.Reader[T] {
	return config.ReaderFunc[T](func(_ context.Context) (config.Value[T], error) {
		if !fs.Changed(name) {
			return config.Value[T]{}, nil
		}
		v, err := get(name)
		if err != nil {
			return config.Value[T]{}, err
		}
		return config.ValueOf(v), nil
	})
}

func ptrValue[T any](p *T) config.Reader[T] {
	return config.ReaderFunc[T](func(_ context.Context) (config.Value[T], error) {
		if p == nil {
			return config.Value[T]{}, nil
		}
		return config.ValueOf(*p), nil
	})
}

func boolFromString(r config.Reader[string]) config.Reader[bool] {
	return config.Map(r, func(_ context.Context, s string) (bool, error) {
		return strconv.ParseBool(s)
	})
}

func levelFromString(r config.Reader[string]) config.Reader[slog.Level] {
	return config.Map(r, func(_ context.Context, s string) (slog.Level, error) {
		var lvl slog.Level
		err := lvl.UnmarshalText([]byte(s))
		return lvl, err
	})
}
