// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/z5labs/staticd/pkg/httpclient"
	"github.com/z5labs/staticd/pkg/slogfield"

	"github.com/spf13/cobra"
)

const defaultProbeURL = "http://localhost:8080/"

// ProbeStatusError is returned when the probed server answers with a non 2xx status.
type ProbeStatusError struct {
	URL  string
	Code int
}

func (e ProbeStatusError) Error() string {
	return fmt.Sprintf("probe %s: unexpected status %d", e.URL, e.Code)
}

type probeOptions struct {
	retries int
	timeout time.Duration
	waitMin time.Duration
	waitMax time.Duration
	verbose bool
}

func newProbeCmd() *cobra.Command {
	var po probeOptions

	cmd := &cobra.Command{
		Use:   "probe [url]",
		Short: "Check that a staticd server answers HEAD requests",
		Long: "Probe sends a HEAD request to url, retrying connection failures and 5xx responses. " +
			"It exits non-zero unless the final response is 2xx, so it can be used as a container health check.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := defaultProbeURL
			if len(args) == 1 {
				target = args[0]
			}
			return probe(cmd.Context(), newProbeClient(po, cmd.ErrOrStderr()), target, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&po.retries, "retries", 3, "retries after the first attempt")
	fs.DurationVar(&po.timeout, "timeout", 2*time.Second, "timeout for each attempt")
	fs.DurationVar(&po.waitMin, "retry-wait-min", 100*time.Millisecond, "minimum wait between attempts")
	fs.DurationVar(&po.waitMax, "retry-wait-max", 2*time.Second, "maximum wait between attempts")
	fs.BoolVarP(&po.verbose, "verbose", "v", false, "log every attempt")

	return cmd
}

func newProbeClient(po probeOptions, errOut io.Writer) *http.Client {
	level := slog.LevelWarn
	if po.verbose {
		level = slog.LevelDebug
	}

	return httpclient.New(
		httpclient.Name("probe"),
		httpclient.Timeout(po.timeout),
		httpclient.LogHandler(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level})),
		httpclient.Retry(po.retries, po.waitMin, po.waitMax),
	)
}

func probe(ctx context.Context, client *http.Client, target string, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ProbeStatusError{URL: target, Code: resp.StatusCode}
	}

	slog.New(slog.NewTextHandler(out, nil)).InfoContext(
		ctx,
		"probe succeeded",
		slogfield.String("url", target),
		slogfield.Int("status_code", resp.StatusCode),
		slogfield.Int64("content_length", resp.ContentLength),
	)
	return nil
}
