// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package adb

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"uismoke/internal/testexec"
)

// KeyCodeWakeUp is KEYCODE_WAKEUP from android.view.KeyEvent.
const KeyCodeWakeUp = 224

// PressKeyCode injects a key event with "input keyevent".
func (d *Device) PressKeyCode(ctx context.Context, code int) error {
	if err := d.ShellCommand(ctx, "input", "keyevent", strconv.Itoa(code)).Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrapf(err, "failed to press key code %d", code)
	}
	return nil
}

// WakeUp turns the screen on and dismisses a non-secure keyguard.
func (d *Device) WakeUp(ctx context.Context) error {
	if err := d.PressKeyCode(ctx, KeyCodeWakeUp); err != nil {
		return err
	}
	if err := d.ShellCommand(ctx, "wm", "dismiss-keyguard").Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrap(err, "failed to dismiss keyguard")
	}
	return nil
}
