// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package owncloud

import (
	"context"
	"time"

	"uismoke/android"
	"uismoke/internal/ctxutil"
	"uismoke/internal/testing"
)

var contacts = []string{"android-qa@owncloud.com"}

func init() {
	vars := append(append([]string(nil), android.Vars...), configVars...)

	testing.AddTest(&testing.Test{
		Func:     CheckPreconditions,
		Desc:     "Checks that a device handle is available",
		Contacts: contacts,
		Attr:     []string{"group:smoke"},
		Pre:      android.Connected(),
		Vars:     vars,
		Timeout:  time.Minute,
	})
	testing.AddTest(&testing.Test{
		Func:     StartAppFromHomeScreen,
		Desc:     "Starts the ownCloud app from the home screen",
		Contacts: contacts,
		Attr:     []string{"group:smoke"},
		Pre:      android.Connected(),
		Vars:     vars,
		Timeout:  2 * time.Minute,
	})
	testing.AddTest(&testing.Test{
		Func:     StartSettingsFromHomeScreen,
		Desc:     "Starts Settings from the home screen and opens Data usage",
		Contacts: contacts,
		Attr:     []string{"group:smoke"},
		Pre:      android.Connected(),
		Vars:     vars,
		Timeout:  2 * time.Minute,
	})
}

// newHarness builds a Harness from the precondition's device handles and
// the owncloud.* runtime variables.
func newHarness(s *testing.State) (*Harness, android.PreData) {
	d, _ := s.PreValue().(android.PreData)
	cfg, err := ConfigFromVars(s.Var)
	if err != nil {
		s.Fatal("Failed to read configuration: ", err)
	}
	h := &Harness{Config: cfg}
	// Typed nil pointers must not end up in the interfaces.
	if d.UIDevice != nil {
		h.UI = d.UIDevice
	}
	if d.Device != nil {
		h.PM = d.Device
	}
	return h, d
}

func CheckPreconditions(ctx context.Context, s *testing.State) {
	h, _ := newHarness(s)
	if err := h.CheckPreconditions(); err != nil {
		s.Fatal("Precondition check failed: ", err)
	}
}

func StartAppFromHomeScreen(ctx context.Context, s *testing.State) {
	h, d := newHarness(s)
	if err := h.CheckPreconditions(); err != nil {
		s.Fatal("Precondition check failed: ", err)
	}

	// Reserve time for saving logs.
	cleanupCtx := ctx
	ctx, cancel := ctxutil.Shorten(ctx, 10*time.Second)
	defer cancel()
	defer android.SaveLogsOnError(cleanupCtx, s, d)

	if err := h.StartAppFromHomeScreen(ctx); err != nil {
		s.Fatal("Failed to start app from home screen: ", err)
	}
}

func StartSettingsFromHomeScreen(ctx context.Context, s *testing.State) {
	h, d := newHarness(s)
	if err := h.CheckPreconditions(); err != nil {
		s.Fatal("Precondition check failed: ", err)
	}

	// Reserve time for saving logs.
	cleanupCtx := ctx
	ctx, cancel := ctxutil.Shorten(ctx, 10*time.Second)
	defer cancel()
	defer android.SaveLogsOnError(cleanupCtx, s, d)

	if err := h.StartSettingsFromHomeScreen(ctx); err != nil {
		s.Fatal("Failed to open Settings entry: ", err)
	}
}
