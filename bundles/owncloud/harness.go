// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package owncloud contains smoke tests launching the ownCloud app and the
// system Settings app from the home screen.
package owncloud

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"uismoke/android/adb"
	"uismoke/android/ui"
	"uismoke/internal/testing"
)

// Defaults of Config.
const (
	TargetPackage   = "com.owncloud.android"
	SettingsPackage = "com.android.settings"
	SettingsLabel   = "Data usage"
	LaunchTimeout   = 5000 * time.Millisecond
)

// Runtime variables overriding Config fields.
const (
	varTargetPackage   = "owncloud.targetPackage"
	varSettingsPackage = "owncloud.settingsPackage"
	varSettingsLabel   = "owncloud.settingsLabel"
	varLaunchTimeout   = "owncloud.launchTimeout"
	varVerifyLaunch    = "owncloud.verifyLaunch"
)

// configVars lists the variables read by ConfigFromVars.
var configVars = []string{varTargetPackage, varSettingsPackage, varSettingsLabel, varLaunchTimeout, varVerifyLaunch}

// newWindowTimeout is how long a click waits for a new window, matching
// UiObject.clickAndWaitForNewWindow() without arguments.
const newWindowTimeout = 5500 * time.Millisecond

// ErrNoDevice is returned by CheckPreconditions when the device handle is missing.
var ErrNoDevice = errors.New("device handle is nil")

// Config holds the names and timeouts used by the scenarios.
type Config struct {
	// TargetPackage is the application launched by StartAppFromHomeScreen.
	TargetPackage string
	// SettingsPackage is the Settings application.
	SettingsPackage string
	// SettingsLabel is the text of the Settings entry tapped after launch.
	SettingsLabel string
	// LaunchTimeout bounds each wait for the launcher and the launched app.
	LaunchTimeout time.Duration
	// VerifyLaunch makes StartAppFromHomeScreen fail when the target app does
	// not show up within LaunchTimeout. Otherwise the wait is best-effort.
	VerifyLaunch bool
}

// DefaultConfig returns the Config used when no variables are set.
func DefaultConfig() Config {
	return Config{
		TargetPackage:   TargetPackage,
		SettingsPackage: SettingsPackage,
		SettingsLabel:   SettingsLabel,
		LaunchTimeout:   LaunchTimeout,
	}
}

// ConfigFromVars returns DefaultConfig with fields overridden by the
// variables that lookup finds.
func ConfigFromVars(lookup func(name string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	if v, ok := lookup(varTargetPackage); ok && v != "" {
		cfg.TargetPackage = v
	}
	if v, ok := lookup(varSettingsPackage); ok && v != "" {
		cfg.SettingsPackage = v
	}
	if v, ok := lookup(varSettingsLabel); ok && v != "" {
		cfg.SettingsLabel = v
	}
	if v, ok := lookup(varLaunchTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, errors.Wrapf(err, "invalid %s", varLaunchTimeout)
		}
		if d <= 0 {
			return cfg, errors.Errorf("%s must be positive, got %v", varLaunchTimeout, d)
		}
		cfg.LaunchTimeout = d
	}
	if v, ok := lookup(varVerifyLaunch); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.Wrapf(err, "invalid %s", varVerifyLaunch)
		}
		cfg.VerifyLaunch = b
	}
	return cfg, nil
}

// Automator is the part of UI Automator the scenarios use. *ui.Device implements it.
type Automator interface {
	PressHome(ctx context.Context) error
	Wait(ctx context.Context, c ui.Condition, timeout time.Duration) (bool, error)
	ClickAndWaitForNewWindow(ctx context.Context, timeout time.Duration, opts ...ui.SelectorOption) error
}

// PackageManager resolves and starts activities. *adb.Device implements it.
type PackageManager interface {
	LauncherPackage(ctx context.Context) (string, error)
	LaunchIntentForPackage(ctx context.Context, pkg string) (*adb.Intent, error)
	StartActivity(ctx context.Context, intent *adb.Intent) error
}

// Harness runs the scenarios against an injected device.
type Harness struct {
	UI     Automator
	PM     PackageManager
	Config Config
}

// CheckPreconditions returns ErrNoDevice unless both device capabilities are set.
func (h *Harness) CheckPreconditions() error {
	if h.UI == nil || h.PM == nil {
		return ErrNoDevice
	}
	return nil
}

// LauncherPackage returns the package rendering the home screen.
func (h *Harness) LauncherPackage(ctx context.Context) (string, error) {
	pkg, err := h.PM.LauncherPackage(ctx)
	if err != nil {
		return "", err
	}
	if pkg == "" {
		return "", errors.New("launcher package is empty")
	}
	return pkg, nil
}

// StartFromHomeScreen presses HOME, waits for the launcher and starts pkg
// on a cleared task.
func (h *Harness) StartFromHomeScreen(ctx context.Context, pkg string) error {
	if err := h.CheckPreconditions(); err != nil {
		return err
	}
	if err := h.UI.PressHome(ctx); err != nil {
		return errors.Wrap(err, "failed to press home")
	}

	launcher, err := h.LauncherPackage(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get launcher package")
	}
	testing.ContextLog(ctx, "Waiting for launcher ", launcher)
	if _, err := h.UI.Wait(ctx, ui.HasObject(ui.PackageName(launcher)), h.Config.LaunchTimeout); err != nil {
		return errors.Wrap(err, "failed to wait for launcher")
	}

	intent, err := h.PM.LaunchIntentForPackage(ctx, pkg)
	if err != nil {
		return errors.Wrapf(err, "failed to get launch intent for %s", pkg)
	}
	intent.AddFlags(adb.FlagActivityClearTask)
	testing.ContextLog(ctx, "Starting ", pkg)
	if err := h.PM.StartActivity(ctx, intent); err != nil {
		return errors.Wrapf(err, "failed to start %s", pkg)
	}
	return nil
}

// StartAppFromHomeScreen starts the target app from the home screen and
// waits for it to appear.
func (h *Harness) StartAppFromHomeScreen(ctx context.Context) error {
	pkg := h.Config.TargetPackage
	if err := h.StartFromHomeScreen(ctx, pkg); err != nil {
		return err
	}
	ok, err := h.UI.Wait(ctx, ui.HasObject(ui.PackageName(pkg)), h.Config.LaunchTimeout)
	if err != nil {
		return errors.Wrapf(err, "failed to wait for %s", pkg)
	}
	if !ok && h.Config.VerifyLaunch {
		return errors.Errorf("%s did not appear within %v", pkg, h.Config.LaunchTimeout)
	}
	return nil
}

// StartSettingsFromHomeScreen starts Settings from the home screen and taps
// the entry labeled Config.SettingsLabel.
func (h *Harness) StartSettingsFromHomeScreen(ctx context.Context) error {
	if err := h.StartFromHomeScreen(ctx, h.Config.SettingsPackage); err != nil {
		return err
	}
	return h.ClickByText(ctx, h.Config.SettingsLabel)
}

// ClickByText taps the view whose text is text and waits for a new window.
// The error wraps ui.ErrObjectNotFound if no such view appears.
func (h *Harness) ClickByText(ctx context.Context, text string) error {
	return h.UI.ClickAndWaitForNewWindow(ctx, newWindowTimeout, ui.Text(text))
}

// ClickByDescription taps the view whose content description is desc and
// waits for a new window. The error wraps ui.ErrObjectNotFound if no such view appears.
func (h *Harness) ClickByDescription(ctx context.Context, desc string) error {
	return h.UI.ClickAndWaitForNewWindow(ctx, newWindowTimeout, ui.Description(desc))
}
