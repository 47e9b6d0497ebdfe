// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ctxutil provides utilities for context.Context.
package ctxutil

import (
	"context"
	"time"
)

// Shorten returns a context whose deadline is d earlier than ctx's, so that
// the caller keeps d for cleanup with the original ctx. If ctx has no
// deadline, the returned context has none either.
func Shorten(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	dl, ok := ctx.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, dl.Add(-d))
}
