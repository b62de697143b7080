// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// Config is the immutable configuration record of a [Server].
type Config struct {
	Host        string        `config:"host"`
	Port        int           `config:"port"`
	Root        string        `config:"root"`
	BufferSize  int           `config:"buffer_size"`
	ReadTimeout time.Duration `config:"read_timeout"`
	PoolSize    int           `config:"workers"`
}

// DefaultConfig returns the configuration used when nothing else is supplied.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        8080,
		Root:        "httptest",
		BufferSize:  1024,
		ReadTimeout: 30 * time.Second,
		PoolSize:    20,
	}
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

var (
	errNotPositive = errors.New("must be greater than zero")
	errNotDir      = errors.New("not a directory")
)

// Validate reports the first invalid field as an [InvalidConfigError].
// Port 0 is accepted and asks the OS for an ephemeral port.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return InvalidConfigError{
			Field: "port",
			Cause: fmt.Errorf("%d is out of range", c.Port),
		}
	}
	if c.BufferSize <= 0 {
		return InvalidConfigError{Field: "buffer_size", Cause: errNotPositive}
	}
	if c.ReadTimeout <= 0 {
		return InvalidConfigError{Field: "read_timeout", Cause: errNotPositive}
	}
	if c.PoolSize <= 0 {
		return InvalidConfigError{Field: "workers", Cause: errNotPositive}
	}

	info, err := os.Stat(c.Root)
	if err != nil {
		return InvalidConfigError{Field: "root", Cause: err}
	}
	if !info.IsDir() {
		return InvalidConfigError{Field: "root", Cause: errNotDir}
	}
	return nil
}
