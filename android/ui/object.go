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

// Available RPC methods are listed at:
// https://github.com/xiaocong/android-uiautomator-server/blob/master/app/src/androidTest/java/com/github/uiautomator/stub/AutomatorService.java

// DefaultLookupTimeout is how long methods acting on an Object wait for a
// matching view to appear, as UI Automator's default selector timeout.
const DefaultLookupTimeout = 10 * time.Second

// ErrObjectNotFound is returned (wrapped) when no view matches a selector.
// It corresponds to UiObjectNotFoundException.
var ErrObjectNotFound = errors.New("object not found")

var errTimeout = errors.New("timeout")

// Object is a representation of an Android view.
//
// An instantiated Object does NOT uniquely identify an Android view. Instead,
// it holds a selector to locate a matching view when its methods are called.
//
// This object corresponds to UiObject in UI Automator API:
// https://developer.android.com/reference/androidx/test/uiautomator/UiObject
type Object struct {
	d *Device
	s *Selector
}

// Object creates an Object from given selectors.
//
// Example:
//
//	btn := d.Object(ui.ID("foo_button"), ui.Text("bar"))
func (d *Device) Object(opts ...SelectorOption) *Object {
	return &Object{d: d, s: NewSelector(opts...)}
}

// WaitForExists waits for a view matching the selector to appear.
//
// This method corresponds to UiObject.waitForExists().
func (o *Object) WaitForExists(ctx context.Context, timeout time.Duration) error {
	return o.callSimple(ctx, "waitForExists", o.s, timeout.Milliseconds())
}

// ClickAndWaitForNewWindow clicks a view matching the selector and waits up
// to timeout for a new window to appear.
//
// The view must appear within DefaultLookupTimeout, otherwise an error
// wrapping ErrObjectNotFound is returned. A click that does not open a new
// window is logged but is not an error.
//
// This method corresponds to UiObject.clickAndWaitForNewWindow().
func (o *Object) ClickAndWaitForNewWindow(ctx context.Context, timeout time.Duration) error {
	const method = "clickAndWaitForNewWindow"
	if err := o.lookup(ctx, method); err != nil {
		return err
	}
	var changed bool
	if err := o.d.call(ctx, method, &changed, o.s, timeout.Milliseconds()); err != nil {
		return wrapMethodError(method, o.s, err)
	}
	if !changed {
		testing.ContextLogf(ctx, "No new window appeared within %v after clicking %v", timeout, o.s)
	}
	return nil
}

// lookup waits up to DefaultLookupTimeout for the view, the way UiObject
// methods wait for their selector before acting.
func (o *Object) lookup(ctx context.Context, method string) error {
	if err := o.WaitForExists(ctx, DefaultLookupTimeout); err != nil {
		if errors.Is(err, errTimeout) {
			return wrapMethodError(method, o.s, ErrObjectNotFound)
		}
		return err
	}
	return nil
}

// callSimple is a common method to call a RPC method that returns a boolean indicating success.
func (o *Object) callSimple(ctx context.Context, method string, params ...interface{}) error {
	var success bool
	if err := o.d.call(ctx, method, &success, params...); err != nil {
		return wrapMethodError(method, o.s, err)
	}
	if !success {
		return wrapMethodError(method, o.s, errTimeout)
	}
	return nil
}

// wrapMethodError wraps an error returned from an RPC method.
func wrapMethodError(method string, s *Selector, err error) error {
	return errors.Wrapf(err, "%s (selector=%v) failed", method, s)
}
