// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type readFunc func([]byte) (int, error)

func (f readFunc) Read(b []byte) (int, error) {
	return f(b)
}

func TestTextTemplateRenderer_Read(t *testing.T) {
	t.Run("will render", func(t *testing.T) {
		t.Run("the env template func", func(t *testing.T) {
			t.Setenv("STATICD_TEST_ROOT", "/srv/www")

			b, err := io.ReadAll(RenderTextTemplate(strings.NewReader(`root: {{ env "STATICD_TEST_ROOT" }}`)))
			require.NoError(t, err)
			require.Equal(t, "root: /srv/www", string(b))
		})

		t.Run("custom template funcs and delims", func(t *testing.T) {
			ttr := RenderTextTemplate(
				strings.NewReader(`workers: <% workers %>`),
				TemplateDelims("<%", "%>"),
				TemplateFunc("workers", func() int { return 4 }),
			)

			b, err := io.ReadAll(ttr)
			require.NoError(t, err)
			require.Equal(t, "workers: 4", string(b))
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying io.Reader fails", func(t *testing.T) {
			readErr := errors.New("failed to read")
			r := readFunc(func(b []byte) (int, error) {
				return 0, readErr
			})

			_, err := io.ReadAll(RenderTextTemplate(r))
			require.ErrorIs(t, err, readErr)
		})

		t.Run("if the underlying io.Reader contains an invalid text/template", func(t *testing.T) {
			_, err := io.ReadAll(RenderTextTemplate(strings.NewReader(`{{ hello`)))

			var perr TextTemplateParseError
			require.ErrorAs(t, err, &perr)
			require.NotEmpty(t, perr.Error())
			require.Error(t, perr.Unwrap())
		})

		t.Run("if the parsed text/template fails to execute", func(t *testing.T) {
			ttr := RenderTextTemplate(
				strings.NewReader(`{{ hello }}`),
				TemplateFunc("hello", func() (string, error) {
					return "", errors.New("no hello for you")
				}),
			)
			_, err := io.ReadAll(ttr)

			var eerr TextTemplateExecError
			require.ErrorAs(t, err, &eerr)
			require.NotEmpty(t, eerr.Error())
			require.Error(t, eerr.Unwrap())
		})
	})
}
