// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"uismoke/internal/testing"
)

// pressKey presses a named key ("home", "back", ...).
func (d *Device) pressKey(ctx context.Context, key string) error {
	var success bool
	if err := d.call(ctx, "pressKey", &success, key); err != nil {
		return err
	}
	if !success {
		return errors.Errorf("pressKey(%s) failed", key)
	}
	return nil
}

// PressHome simulates a short press on the HOME button.
//
// This method corresponds to UiDevice.pressHome().
func (d *Device) PressHome(ctx context.Context) error {
	return d.pressKey(ctx, "home")
}

// DumpWindowHierarchy returns the current window hierarchy as XML.
func (d *Device) DumpWindowHierarchy(ctx context.Context) (string, error) {
	var xml string
	if err := d.call(ctx, "dumpWindowHierarchy", &xml, false); err != nil {
		return "", err
	}
	return xml, nil
}

// Wait waits up to timeout for c to become true.
//
// Like UiDevice.wait(), an unmet condition is not an error: ok is false and
// err is nil. err is set only when the condition could not be evaluated.
func (d *Device) Wait(ctx context.Context, c Condition, timeout time.Duration) (ok bool, err error) {
	if err := d.call(ctx, c.method, &ok, c.s, timeout.Milliseconds()); err != nil {
		return false, wrapMethodError(c.method, c.s, err)
	}
	if !ok {
		testing.ContextLogf(ctx, "Gave up waiting for %v after %v", c, timeout)
	}
	return ok, nil
}

// ClickAndWaitForNewWindow clicks a view matching opts and waits for a new
// window. See Object.ClickAndWaitForNewWindow.
func (d *Device) ClickAndWaitForNewWindow(ctx context.Context, timeout time.Duration, opts ...SelectorOption) error {
	return d.Object(opts...).ClickAndWaitForNewWindow(ctx, timeout)
}
