// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package adb

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"uismoke/internal/testexec"
	"uismoke/internal/testing"
)

// Intent actions and categories used to locate entry activities.
const (
	ActionMain       = "android.intent.action.MAIN"
	CategoryHome     = "android.intent.category.HOME"
	CategoryLauncher = "android.intent.category.LAUNCHER"
	CategoryInfo     = "android.intent.category.INFO"
)

// IntentFlag is a set of Intent.FLAG_* values.
type IntentFlag uint32

// Flags from android.content.Intent.
const (
	FlagActivityNewTask   IntentFlag = 0x10000000
	FlagActivityClearTask IntentFlag = 0x00008000
)

// Intent is a request to start an activity.
type Intent struct {
	Action     string
	Categories []string
	// Component is "<package>/<class>". It may be empty when Package is set.
	Component string
	Package   string
	Flags     IntentFlag
}

// AddFlags adds flags to the intent.
func (i *Intent) AddFlags(f IntentFlag) {
	i.Flags |= f
}

// args returns the intent as arguments for am and cmd package.
func (i *Intent) args() []string {
	var args []string
	if i.Action != "" {
		args = append(args, "-a", i.Action)
	}
	for _, c := range i.Categories {
		args = append(args, "-c", c)
	}
	if i.Flags != 0 {
		args = append(args, "-f", fmt.Sprintf("0x%08x", uint32(i.Flags)))
	}
	if i.Component != "" {
		args = append(args, "-n", i.Component)
	} else if i.Package != "" {
		// A trailing argument without ':' or '/' is taken as the package name.
		args = append(args, i.Package)
	}
	return args
}

// "am start" doesn't distinguish between a failed/successful run in its
// exit status. For that we have to parse the output.
var amErrorRegexp = regexp.MustCompile(`(?m)^Error:`)

// StartActivity dispatches intent with "am start" and waits for the launch to complete.
func (d *Device) StartActivity(ctx context.Context, intent *Intent) error {
	args := append([]string{"start", "-W"}, intent.args()...)
	out, err := d.ShellCommand(ctx, "am", args...).Output(testexec.DumpLogOnError)
	if err != nil {
		return errors.Wrap(err, "failed to run am start")
	}
	if amErrorRegexp.Match(out) {
		testing.ContextLog(ctx, "Failed to start activity: ", string(out))
		return errors.Errorf("failed to start activity %s", intent.target())
	}
	return nil
}

func (i *Intent) target() string {
	if i.Component != "" {
		return i.Component
	}
	if i.Package != "" {
		return i.Package
	}
	return strings.Join(append([]string{i.Action}, i.Categories...), " ")
}
