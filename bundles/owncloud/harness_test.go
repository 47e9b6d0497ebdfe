// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package owncloud

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"uismoke/android/adb"
	"uismoke/android/ui"
)

// fakeDevice implements Automator and PackageManager and records calls.
type fakeDevice struct {
	calls []string

	launcher  string
	shown     map[string]bool // packages and texts considered on screen
	started   []*adb.Intent
	startErr  error
	launchErr error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		launcher: "com.android.launcher3",
		shown: map[string]bool{
			"com.android.launcher3": true,
			`text="Data usage"`:     true,
		},
	}
}

func (f *fakeDevice) PressHome(ctx context.Context) error {
	f.calls = append(f.calls, "PressHome")
	return nil
}

func (f *fakeDevice) Wait(ctx context.Context, c ui.Condition, timeout time.Duration) (bool, error) {
	f.calls = append(f.calls, fmt.Sprintf("Wait %v %v", c, timeout))
	for k, v := range f.shown {
		if v && c.String() == fmt.Sprintf("hasObject(%v)", ui.NewSelector(ui.PackageName(k))) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDevice) ClickAndWaitForNewWindow(ctx context.Context, timeout time.Duration, opts ...ui.SelectorOption) error {
	s := ui.NewSelector(opts...).String()
	f.calls = append(f.calls, fmt.Sprintf("Click %s %v", s, timeout))
	if !f.shown[s] {
		return errors.Wrapf(ui.ErrObjectNotFound, "clickAndWaitForNewWindow (selector=%s) failed", s)
	}
	return nil
}

func (f *fakeDevice) LauncherPackage(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "LauncherPackage")
	return f.launcher, nil
}

func (f *fakeDevice) LaunchIntentForPackage(ctx context.Context, pkg string) (*adb.Intent, error) {
	f.calls = append(f.calls, "LaunchIntentForPackage "+pkg)
	if f.launchErr != nil {
		return nil, f.launchErr
	}
	return &adb.Intent{
		Action:     adb.ActionMain,
		Categories: []string{adb.CategoryLauncher},
		Component:  pkg + "/.Main",
		Package:    pkg,
		Flags:      adb.FlagActivityNewTask,
	}, nil
}

func (f *fakeDevice) StartActivity(ctx context.Context, intent *adb.Intent) error {
	f.calls = append(f.calls, "StartActivity "+intent.Component)
	f.started = append(f.started, intent)
	if f.startErr != nil {
		return f.startErr
	}
	f.shown[intent.Package] = true
	return nil
}

func newTestHarness(f *fakeDevice) *Harness {
	return &Harness{UI: f, PM: f, Config: DefaultConfig()}
}

func TestCheckPreconditions(t *testing.T) {
	f := newFakeDevice()
	if err := newTestHarness(f).CheckPreconditions(); err != nil {
		t.Error("CheckPreconditions failed: ", err)
	}
	for _, h := range []*Harness{{PM: f}, {UI: f}, {}} {
		if err := h.CheckPreconditions(); !errors.Is(err, ErrNoDevice) {
			t.Errorf("CheckPreconditions() = %v; want %v", err, ErrNoDevice)
		}
	}
	if got, want := ErrNoDevice.Error(), "device handle is nil"; got != want {
		t.Errorf("ErrNoDevice = %q; want %q", got, want)
	}
}

func TestStartAppFromHomeScreen(t *testing.T) {
	f := newFakeDevice()
	if err := newTestHarness(f).StartAppFromHomeScreen(context.Background()); err != nil {
		t.Fatal("StartAppFromHomeScreen failed: ", err)
	}
	want := []string{
		"PressHome",
		"LauncherPackage",
		`Wait hasObject(packageName="com.android.launcher3") 5s`,
		"LaunchIntentForPackage com.owncloud.android",
		"StartActivity com.owncloud.android/.Main",
		`Wait hasObject(packageName="com.owncloud.android") 5s`,
	}
	if diff := cmp.Diff(f.calls, want); diff != "" {
		t.Errorf("Calls mismatch (-got +want):\n%s", diff)
	}
	if len(f.started) != 1 {
		t.Fatalf("Started %d activities; want 1", len(f.started))
	}
	if got, want := f.started[0].Flags, adb.FlagActivityNewTask|adb.FlagActivityClearTask; got != want {
		t.Errorf("Flags = %#x; want %#x", got, want)
	}
}

func TestStartAppFromHomeScreenNotShown(t *testing.T) {
	f := newFakeDevice()
	f.launcher = "com.example.launcher" // never shown
	f.shown[TargetPackage] = false

	h := newTestHarness(f)
	// The target stays hidden after launch.
	h.PM = &hidingPM{f}
	if err := h.StartAppFromHomeScreen(context.Background()); err != nil {
		t.Errorf("StartAppFromHomeScreen failed with best-effort waits: %v", err)
	}

	h.Config.VerifyLaunch = true
	if err := h.StartAppFromHomeScreen(context.Background()); err == nil {
		t.Error("StartAppFromHomeScreen succeeded with VerifyLaunch although the app never appeared")
	}
}

// hidingPM starts activities without making them visible.
type hidingPM struct{ *fakeDevice }

func (p *hidingPM) StartActivity(ctx context.Context, intent *adb.Intent) error {
	p.calls = append(p.calls, "StartActivity "+intent.Component)
	return nil
}

func TestStartSettingsFromHomeScreen(t *testing.T) {
	f := newFakeDevice()
	if err := newTestHarness(f).StartSettingsFromHomeScreen(context.Background()); err != nil {
		t.Fatal("StartSettingsFromHomeScreen failed: ", err)
	}
	want := []string{
		"PressHome",
		"LauncherPackage",
		`Wait hasObject(packageName="com.android.launcher3") 5s`,
		"LaunchIntentForPackage com.android.settings",
		"StartActivity com.android.settings/.Main",
		`Click text="Data usage" 5.5s`,
	}
	if diff := cmp.Diff(f.calls, want); diff != "" {
		t.Errorf("Calls mismatch (-got +want):\n%s", diff)
	}
}

func TestScenarioOrder(t *testing.T) {
	type scenario struct {
		name string
		run  func(*Harness, context.Context) error
	}
	app := scenario{"app", (*Harness).StartAppFromHomeScreen}
	settings := scenario{"settings", (*Harness).StartSettingsFromHomeScreen}

	// Calls made by each scenario on a fresh device.
	solo := make(map[string][]string)
	for _, sc := range []scenario{app, settings} {
		f := newFakeDevice()
		if err := sc.run(newTestHarness(f), context.Background()); err != nil {
			t.Fatalf("%s failed: %v", sc.name, err)
		}
		solo[sc.name] = f.calls
	}

	for _, order := range [][]scenario{{app, settings}, {settings, app}} {
		f := newFakeDevice()
		h := newTestHarness(f)
		var want []string
		for _, sc := range order {
			if err := sc.run(h, context.Background()); err != nil {
				t.Fatalf("%s failed after %d calls: %v", sc.name, len(f.calls), err)
			}
			want = append(want, solo[sc.name]...)
		}
		if diff := cmp.Diff(f.calls, want); diff != "" {
			t.Errorf("Calls for %s then %s mismatch (-got +want):\n%s", order[0].name, order[1].name, diff)
		}
		if len(f.started) != 2 {
			t.Fatalf("Started %d activities; want 2", len(f.started))
		}
		if f.started[0] == f.started[1] {
			t.Error("The same intent was started twice")
		}
		for _, intent := range f.started {
			if intent.Flags&adb.FlagActivityClearTask == 0 {
				t.Errorf("Intent for %s started without FLAG_ACTIVITY_CLEAR_TASK", intent.Package)
			}
		}
	}
}

func TestStartSettingsFromHomeScreenMissingLabel(t *testing.T) {
	f := newFakeDevice()
	h := newTestHarness(f)
	h.Config.SettingsLabel = "Mobile data"
	err := h.StartSettingsFromHomeScreen(context.Background())
	if !errors.Is(err, ui.ErrObjectNotFound) {
		t.Errorf("StartSettingsFromHomeScreen() = %v; want ErrObjectNotFound", err)
	}
}

func TestStartFromHomeScreenErrors(t *testing.T) {
	f := newFakeDevice()
	f.launcher = ""
	if err := newTestHarness(f).StartFromHomeScreen(context.Background(), SettingsPackage); err == nil {
		t.Error("StartFromHomeScreen succeeded without a launcher")
	}

	f = newFakeDevice()
	f.launchErr = errors.New("no activity found")
	if err := newTestHarness(f).StartFromHomeScreen(context.Background(), "com.example.missing"); err == nil {
		t.Error("StartFromHomeScreen succeeded without a launch intent")
	}

	f = newFakeDevice()
	f.startErr = errors.New("am start failed")
	if err := newTestHarness(f).StartFromHomeScreen(context.Background(), TargetPackage); err == nil {
		t.Error("StartFromHomeScreen succeeded although am start failed")
	}

	if err := (&Harness{Config: DefaultConfig()}).StartAppFromHomeScreen(context.Background()); !errors.Is(err, ErrNoDevice) {
		t.Errorf("StartAppFromHomeScreen without device = %v; want %v", err, ErrNoDevice)
	}
}

func TestClickByDescription(t *testing.T) {
	f := newFakeDevice()
	f.shown[`description="Navigate up"`] = true
	h := newTestHarness(f)
	if err := h.ClickByDescription(context.Background(), "Navigate up"); err != nil {
		t.Error("ClickByDescription failed: ", err)
	}
	if err := h.ClickByDescription(context.Background(), "Data usage"); !errors.Is(err, ui.ErrObjectNotFound) {
		t.Errorf("ClickByDescription() = %v; want ErrObjectNotFound", err)
	}
}

func TestConfigFromVars(t *testing.T) {
	lookup := func(vars map[string]string) func(string) (string, bool) {
		return func(name string) (string, bool) {
			v, ok := vars[name]
			return v, ok
		}
	}

	cfg, err := ConfigFromVars(lookup(nil))
	if err != nil {
		t.Fatal("ConfigFromVars failed: ", err)
	}
	if diff := cmp.Diff(cfg, DefaultConfig()); diff != "" {
		t.Errorf("Default config mismatch (-got +want):\n%s", diff)
	}

	cfg, err = ConfigFromVars(lookup(map[string]string{
		"owncloud.targetPackage": "com.owncloud.android.debug",
		"owncloud.settingsLabel": "Network & internet",
		"owncloud.launchTimeout": "8s",
		"owncloud.verifyLaunch":  "true",
	}))
	if err != nil {
		t.Fatal("ConfigFromVars failed: ", err)
	}
	want := Config{
		TargetPackage:   "com.owncloud.android.debug",
		SettingsPackage: SettingsPackage,
		SettingsLabel:   "Network & internet",
		LaunchTimeout:   8 * time.Second,
		VerifyLaunch:    true,
	}
	if diff := cmp.Diff(cfg, want); diff != "" {
		t.Errorf("Config mismatch (-got +want):\n%s", diff)
	}

	for _, vars := range []map[string]string{
		{"owncloud.launchTimeout": "5000"},
		{"owncloud.launchTimeout": "-1s"},
		{"owncloud.verifyLaunch": "maybe"},
	} {
		if _, err := ConfigFromVars(lookup(vars)); err == nil {
			t.Errorf("ConfigFromVars(%v) succeeded", vars)
		}
	}
}
