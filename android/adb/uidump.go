// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package adb

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"uismoke/internal/testexec"
)

const deviceUIDumpPath = "/sdcard/window_dump.xml"

// DumpUIHierarchyOnError dumps the UI hierarchy to faillog/uidump.xml under
// outDir when hasError returns true.
//
// It runs the uiautomator command, which fails while a UI Automator server is
// connected, so call it after closing UI devices.
func (d *Device) DumpUIHierarchyOnError(ctx context.Context, outDir string, hasError func() bool) error {
	if !hasError() {
		return nil
	}

	if err := d.ShellCommand(ctx, "uiautomator", "dump", deviceUIDumpPath).Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrap(err, "failed to dump UI")
	}

	dir := filepath.Join(outDir, "faillog")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	if err := d.PullFile(ctx, deviceUIDumpPath, filepath.Join(dir, "uidump.xml")); err != nil {
		return errors.Wrap(err, "failed to pull UI dump to outDir")
	}
	return nil
}
