// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestShorten(t *testing.T) {
	dl := time.Now().Add(time.Hour)
	ctx, cancel := context.WithDeadline(context.Background(), dl)
	defer cancel()

	sctx, scancel := Shorten(ctx, 10*time.Second)
	defer scancel()
	got, ok := sctx.Deadline()
	if !ok {
		t.Fatal("Shortened context has no deadline")
	}
	if want := dl.Add(-10 * time.Second); !got.Equal(want) {
		t.Errorf("Deadline = %v; want %v", got, want)
	}
}

func TestShortenNoDeadline(t *testing.T) {
	ctx, cancel := Shorten(context.Background(), time.Second)
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Error("Shortened context has a deadline")
	}
}
