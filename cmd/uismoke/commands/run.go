// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"uismoke/internal/testing"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [pattern...]",
		Short: "Run tests matching the patterns (all tests if none)",
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := testing.Select(testing.RegisteredTests(), args)
			if err != nil {
				return err
			}
			if len(tests) == 0 {
				return errors.Errorf("no tests match %q", args)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			ctx = testing.WithLogger(ctx, logger)

			outDir := filepath.Join(cfg.ResolvedOutDir(), time.Now().Format("20060102-150405"))
			logger.Info("Running tests", "count", len(tests), "outdir", outDir)

			results, err := testing.Run(ctx, tests, testing.RunConfig{
				OutDir:    outDir,
				Vars:      cfg.RuntimeVars(),
				LogWriter: cmd.ErrOrStderr(),
				LogLevel:  level,
			})
			if err != nil {
				return err
			}
			return report(cmd, results)
		},
	}
}

// report prints a line per result and fails if any test failed.
func report(cmd *cobra.Command, results []testing.Result) error {
	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s %v\n", r.Name, status, r.End.Sub(r.Start).Round(time.Millisecond))
		for _, e := range r.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s:%d: %s\n", e.File, e.Line, e.Reason)
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d test(s) failed", failed, len(results))
	}
	return nil
}
