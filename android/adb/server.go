// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package adb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"uismoke/internal/testing"
)

// KillLocalServer kills the local adb server if it is running, so that the
// next adb invocation starts a fresh one.
//
// adb kill-server is not used since it hangs when the server is wedged.
func KillLocalServer(ctx context.Context) error {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list processes")
	}

	for _, p := range ps {
		if name, err := p.NameWithContext(ctx); err != nil || name != "adb" {
			continue
		}
		// The server daemonizes itself and is reparented to init.
		if ppid, err := p.PpidWithContext(ctx); err != nil || ppid != 1 {
			continue
		}

		if err := unix.Kill(int(p.Pid), unix.SIGKILL); err != nil {
			// The server process might be already gone.
			testing.ContextLog(ctx, "Failed to kill adb server process: ", err)
			continue
		}

		if err := testing.Poll(ctx, func(ctx context.Context) error {
			if running, err := process.PidExistsWithContext(ctx, p.Pid); err == nil && running {
				return errors.Errorf("pid %d is still running", p.Pid)
			}
			return nil
		}, &testing.PollOptions{Timeout: 10 * time.Second}); err != nil {
			return errors.Wrap(err, "failed on waiting for adb server process to exit")
		}
	}
	return nil
}
