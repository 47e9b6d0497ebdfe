// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// exitGracePeriod is how long a test may keep running after its context expired.
const exitGracePeriod = 15 * time.Second

// ResultsFile is the name of the run summary written into RunConfig.OutDir.
const ResultsFile = "results.json"

// RunConfig contains the settings of a single Run.
type RunConfig struct {
	// OutDir is the directory where results.json and per-test directories are written.
	OutDir string
	// Vars holds runtime variables made available to tests and preconditions.
	Vars map[string]string
	// LogWriter receives logs of all tests in addition to the per-test log file.
	// If nil, os.Stderr is used.
	LogWriter io.Writer
	// LogLevel is the minimum level of written log records.
	LogLevel slog.Leveler
}

// Result is the outcome of a single test.
type Result struct {
	Name   string       `json:"name"`
	Errors []ErrorEntry `json:"errors,omitempty"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	OutDir string       `json:"outDir"`
}

// Passed reports whether the test finished without errors.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

type report struct {
	RunID   string   `json:"runId"`
	Results []Result `json:"results"`
}

// runner carries state across the tests of one Run.
type runner struct {
	cfg RunConfig

	pre      Precondition // currently prepared precondition
	preState *PreState

	// logFile is the log of the latest test. It stays open until the next
	// test starts since Precondition.Close logs into it.
	logFile *os.File
}

// Run runs tests sequentially and writes a summary to cfg.OutDir.
func Run(ctx context.Context, tests []*TestInstance, cfg RunConfig) ([]Result, error) {
	if cfg.OutDir == "" {
		return nil, errors.New("output directory not set")
	}
	if cfg.LogWriter == nil {
		cfg.LogWriter = os.Stderr
	}
	if cfg.LogLevel == nil {
		cfg.LogLevel = slog.LevelInfo
	}
	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	r := &runner{cfg: cfg}
	var results []Result
	for _, t := range tests {
		if r.pre != nil && r.pre != t.Pre {
			r.closePre(ctx)
		}
		res, err := r.runTest(ctx, t)
		if err != nil {
			r.closePre(ctx)
			r.closeLog()
			return results, err
		}
		results = append(results, *res)
	}
	r.closePre(ctx)
	r.closeLog()

	rep := report{RunID: uuid.NewString(), Results: results}
	b, err := json.MarshalIndent(&rep, "", "  ")
	if err != nil {
		return results, errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(filepath.Join(cfg.OutDir, ResultsFile), b, 0644); err != nil {
		return results, errors.Wrap(err, "failed to write results")
	}
	return results, nil
}

func (r *runner) newLogger(w io.Writer, name string) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: r.cfg.LogLevel})
	return slog.New(h).With("test", name)
}

func (r *runner) runTest(ctx context.Context, t *TestInstance) (*Result, error) {
	outDir := filepath.Join(r.cfg.OutDir, "tests", t.Name)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory for %s", t.Name)
	}
	r.closeLog()
	f, err := os.Create(filepath.Join(outDir, "log.txt"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create log file for %s", t.Name)
	}
	r.logFile = f

	logger := r.newLogger(io.MultiWriter(r.cfg.LogWriter, f), t.Name)
	ctx = WithLogger(ctx, logger)
	res := &Result{Name: t.Name, Start: time.Now(), OutDir: outDir}
	defer func() { res.End = time.Now() }()

	var preValue interface{}
	if t.Pre != nil {
		ps := &PreState{baseState: baseState{name: t.Name, outDir: outDir, vars: r.cfg.Vars, logger: logger}}
		pctx, cancel := context.WithTimeout(ctx, t.Pre.Timeout())
		finished := runAndWait(pctx, func() { preValue = t.Pre.Prepare(pctx, ps) }, func(p interface{}) {
			ps.Errorf("Panic in precondition %s: %v", t.Pre, p)
		})
		cancel()
		r.pre = t.Pre
		r.preState = ps
		if !finished {
			ps.Errorf("Precondition %s did not return on timeout", t.Pre)
		}
		if ps.HasError() {
			res.Errors = ps.Errors()
			return res, nil
		}
	}

	logger.Info(fmt.Sprintf("Started test %s", t.Name))
	s := &State{baseState: baseState{name: t.Name, outDir: outDir, vars: r.cfg.Vars, logger: logger}, test: t, preValue: preValue}
	tctx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()
	finished := runAndWait(tctx, func() { t.Func(tctx, s) }, func(p interface{}) {
		s.Errorf("Panic: %v", p)
	})
	if !finished {
		s.Errorf("Test did not return on timeout (%v)", t.Timeout)
	}
	res.Errors = s.Errors()
	logger.Info(fmt.Sprintf("Completed test %s (%d error(s))", t.Name, len(res.Errors)))
	return res, nil
}

func (r *runner) closePre(ctx context.Context) {
	if r.pre == nil {
		return
	}
	pre, ps := r.pre, r.preState
	r.pre, r.preState = nil, nil

	ctx = WithLogger(ctx, ps.logger)
	cctx, cancel := context.WithTimeout(ctx, pre.Timeout())
	defer cancel()
	if !runAndWait(cctx, func() { pre.Close(cctx, ps) }, func(p interface{}) {
		ps.Errorf("Panic while closing precondition %s: %v", pre, p)
	}) {
		ps.logger.Error(fmt.Sprintf("Precondition %s did not close on timeout", pre))
	}
}

func (r *runner) closeLog() {
	if r.logFile != nil {
		r.logFile.Close()
		r.logFile = nil
	}
}

// runAndWait runs f on a new goroutine so that State.Fatal can stop it with
// runtime.Goexit. It returns false if f is still running exitGracePeriod
// after ctx is done.
func runAndWait(ctx context.Context, f func(), onPanic func(interface{})) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if p := recover(); p != nil {
				onPanic(p)
			}
		}()
		f()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
	}
	select {
	case <-done:
		return true
	case <-time.After(exitGracePeriod):
		return false
	}
}
