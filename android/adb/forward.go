// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package adb

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"uismoke/internal/testexec"
)

// Forward forwards a free host TCP port to devicePort on the device and returns the host port.
func (d *Device) Forward(ctx context.Context, devicePort int) (int, error) {
	out, err := d.Command(ctx, "forward", "tcp:0", "tcp:"+strconv.Itoa(devicePort)).Output(testexec.DumpLogOnError)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to forward device port %d", devicePort)
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected forward output %q", string(out))
	}
	return port, nil
}

// RemoveForward removes a forwarding set up by Forward.
func (d *Device) RemoveForward(ctx context.Context, hostPort int) error {
	if err := d.Command(ctx, "forward", "--remove", "tcp:"+strconv.Itoa(hostPort)).Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrapf(err, "failed to remove forwarding of port %d", hostPort)
	}
	return nil
}
