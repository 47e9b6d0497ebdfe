// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package testing provides the test registry, test state, preconditions and
// the sequential runner used by uismoke test bundles.
package testing

import (
	"context"
	"fmt"
	"log/slog"
)

type loggerKey struct{}

// WithLogger returns a context whose ContextLog calls are written to l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// ContextLogger returns the logger attached to ctx, or slog.Default() if there is none.
func ContextLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// ContextLog formats its arguments using default formatting and logs them via ctx.
// It is intended for library code that does not have access to a State.
func ContextLog(ctx context.Context, args ...interface{}) {
	ContextLogger(ctx).InfoContext(ctx, fmt.Sprint(args...))
}

// ContextLogf is similar to ContextLog but formats its arguments using fmt.Sprintf.
func ContextLogf(ctx context.Context, format string, args ...interface{}) {
	ContextLogger(ctx).InfoContext(ctx, fmt.Sprintf(format, args...))
}
