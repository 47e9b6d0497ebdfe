// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Precondition represents a setup shared by tests. Prepare is called before
// every test that declares it; Close is called after the last such test in a
// run, or when the runner switches to a test with a different precondition.
type Precondition interface {
	// Prepare prepares the current state for a test and returns a value that
	// the test can retrieve via State.PreValue.
	// A failure reported on s fails the test without running it.
	Prepare(ctx context.Context, s *PreState) interface{}
	// Close releases resources held by the precondition.
	Close(ctx context.Context, s *PreState)
	// String returns a short name for the precondition.
	String() string
	// Timeout returns the maximum duration of Prepare and Close.
	Timeout() time.Duration
}

// ErrorEntry is an error reported by a test or a precondition.
type ErrorEntry struct {
	Reason string    `json:"reason"`
	File   string    `json:"file"`
	Line   int       `json:"line"`
	Time   time.Time `json:"time"`
}

// baseState holds what State and PreState share.
type baseState struct {
	name   string
	outDir string
	vars   map[string]string
	logger *slog.Logger

	mu   sync.Mutex
	errs []ErrorEntry
}

// Log formats its arguments using default formatting and logs them.
func (s *baseState) Log(args ...interface{}) {
	s.logger.Info(fmt.Sprint(args...))
}

// Logf is similar to Log but formats its arguments using fmt.Sprintf.
func (s *baseState) Logf(format string, args ...interface{}) {
	s.logger.Info(fmt.Sprintf(format, args...))
}

// Error formats its arguments using default formatting and marks the test as having failed.
// The test continues execution.
func (s *baseState) Error(args ...interface{}) {
	s.addError(fmt.Sprint(args...))
}

// Errorf is similar to Error but formats its arguments using fmt.Sprintf.
func (s *baseState) Errorf(format string, args ...interface{}) {
	s.addError(fmt.Sprintf(format, args...))
}

// Fatal is similar to Error but stops the test immediately.
func (s *baseState) Fatal(args ...interface{}) {
	s.addError(fmt.Sprint(args...))
	runtime.Goexit()
}

// Fatalf is similar to Fatal but formats its arguments using fmt.Sprintf.
func (s *baseState) Fatalf(format string, args ...interface{}) {
	s.addError(fmt.Sprintf(format, args...))
	runtime.Goexit()
}

// addError records msg with the location of the caller of the exported method.
func (s *baseState) addError(msg string) {
	_, file, line, _ := runtime.Caller(2)
	e := ErrorEntry{Reason: msg, File: filepath.Base(file), Line: line, Time: time.Now()}
	s.logger.Error(fmt.Sprintf("Error at %s:%d: %s", e.File, e.Line, msg))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, e)
}

// HasError reports whether an error has been reported.
func (s *baseState) HasError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs) > 0
}

// Errors returns the errors reported so far.
func (s *baseState) Errors() []ErrorEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ErrorEntry(nil), s.errs...)
}

// OutDir returns a directory into which output files may be written.
func (s *baseState) OutDir() string {
	return s.outDir
}

// PreState is passed to Precondition.Prepare and Close.
type PreState struct {
	baseState
}

// Var returns the value of a runtime variable. ok is false if it is not set.
func (s *PreState) Var(name string) (val string, ok bool) {
	val, ok = s.vars[name]
	return val, ok
}

// State holds state relevant to the execution of a single test.
type State struct {
	baseState
	test     *TestInstance
	preValue interface{}
}

// TestName returns the name of the running test.
func (s *State) TestName() string {
	return s.test.Name
}

// PreValue returns the value produced by the test's precondition, or nil.
func (s *State) PreValue() interface{} {
	return s.preValue
}

// Param returns Val of the Param the test was instantiated with, or nil.
func (s *State) Param() interface{} {
	return s.test.Val
}

// Var returns the value of a runtime variable. ok is false if it is not set.
// It panics if the test did not declare name in Test.Vars.
func (s *State) Var(name string) (val string, ok bool) {
	declared := false
	for _, v := range s.test.Vars {
		if v == name {
			declared = true
			break
		}
	}
	if !declared {
		panic(fmt.Sprintf("variable %q was not declared in %s", name, s.test.Name))
	}
	val, ok = s.vars[name]
	return val, ok
}

// RequiredVar is similar to Var but fails the test if the variable is unset.
func (s *State) RequiredVar(name string) string {
	val, ok := s.Var(name)
	if !ok {
		s.Fatalf("Required variable %q is not set", name)
	}
	return val
}
