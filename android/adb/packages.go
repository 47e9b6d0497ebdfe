// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package adb

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"uismoke/internal/testexec"
)

// Install installs an APK file to the Android system.
func (d *Device) Install(ctx context.Context, path string) error {
	if err := d.ShellCommand(ctx, "settings", "put", "global", "verifier_verify_adb_installs", "0").Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrap(err, "failed disabling verifier_verify_adb_installs")
	}

	out, err := d.Command(ctx, "install", "-r", "-d", "-g", path).Output(testexec.DumpLogOnError)
	if err != nil {
		return errors.Wrapf(err, "failed to install %s", path)
	}
	// "Success" is the only possible positive result.
	if !regexp.MustCompile(`(?m)^Success`).Match(out) {
		return errors.Errorf("failed to install %v %q", path, string(out))
	}
	return nil
}

// InstalledPackages returns a set of currently-installed packages, e.g. "android".
func (d *Device) InstalledPackages(ctx context.Context) (map[string]struct{}, error) {
	out, err := d.ShellCommand(ctx, "pm", "list", "packages").Output(testexec.DumpLogOnError)
	if err != nil {
		return nil, errors.Wrap(err, "listing packages failed")
	}
	return parseInstalledPackages(string(out)), nil
}

func parseInstalledPackages(out string) map[string]struct{} {
	pkgs := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		// "pm list packages" prepends "package:" to installed packages.
		if n := strings.TrimPrefix(strings.TrimSpace(line), "package:"); n != "" {
			pkgs[n] = struct{}{}
		}
	}
	return pkgs
}

// ResolveActivity returns the component ("<package>/<class>") of the activity
// the package manager would start for intent, the way
// PackageManager.resolveActivity with MATCH_DEFAULT_ONLY does.
func (d *Device) ResolveActivity(ctx context.Context, intent *Intent) (string, error) {
	args := append([]string{"package", "resolve-activity", "--brief"}, intent.args()...)
	out, err := d.ShellCommand(ctx, "cmd", args...).Output(testexec.DumpLogOnError)
	if err != nil {
		return "", errors.Wrap(err, "failed to run resolve-activity")
	}
	comp, err := parseResolvedComponent(string(out))
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %s", intent.target())
	}
	return comp, nil
}

// parseResolvedComponent extracts the component from the brief output of
// "cmd package resolve-activity", e.g.
//
//	priority=0 preferredOrder=0 match=0x108000 specificIndex=-1 isDefault=true
//	com.android.launcher3/com.android.launcher3.uioverrides.QuickstepLauncher
func parseResolvedComponent(out string) (string, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		l := strings.TrimSpace(lines[i])
		if l == "No activity found" {
			return "", errors.New("no activity found")
		}
		if strings.Contains(l, "/") && !strings.Contains(l, "=") && !strings.Contains(l, " ") {
			return l, nil
		}
	}
	return "", errors.Errorf("unexpected output %q", out)
}

// PackageOf returns the package part of a component name.
func PackageOf(component string) string {
	pkg, _, _ := strings.Cut(component, "/")
	return pkg
}

// LauncherPackage returns the package of the application rendering the home
// screen, i.e. the one handling MAIN/HOME.
func (d *Device) LauncherPackage(ctx context.Context) (string, error) {
	comp, err := d.ResolveActivity(ctx, &Intent{Action: ActionMain, Categories: []string{CategoryHome}})
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home activity")
	}
	return PackageOf(comp), nil
}

// LaunchIntentForPackage returns an intent starting the main entry activity of
// pkg, in the way PackageManager.getLaunchIntentForPackage builds it: the
// MAIN/LAUNCHER activity is preferred and MAIN/INFO is the fallback.
func (d *Device) LaunchIntentForPackage(ctx context.Context, pkg string) (*Intent, error) {
	var lastErr error
	for _, cat := range []string{CategoryLauncher, CategoryInfo} {
		comp, err := d.ResolveActivity(ctx, &Intent{Action: ActionMain, Categories: []string{cat}, Package: pkg})
		if err != nil {
			lastErr = err
			continue
		}
		return &Intent{
			Action:     ActionMain,
			Categories: []string{cat},
			Component:  comp,
			Package:    pkg,
			Flags:      FlagActivityNewTask,
		}, nil
	}
	return nil, errors.Wrapf(lastErr, "no launch intent for %s", pkg)
}
