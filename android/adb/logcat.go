// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package adb

import (
	"context"
	"os"
	"regexp"

	"github.com/pkg/errors"

	"uismoke/internal/testexec"
)

// DumpLogcat dumps logcat's output to the specified file.
func (d *Device) DumpLogcat(ctx context.Context, filePath string, opts ...string) error {
	out, err := os.Create(filePath)
	if err != nil {
		return errors.Wrap(err, "failed to create logcat output file")
	}
	defer out.Close()

	cmd := d.Command(ctx, append([]string{"logcat", "-d"}, opts...)...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrap(err, "failed to dump logcat")
	}
	return nil
}

// LogcatTimestamp is a logcat-formatted timestamp string:
// MM-DD hh:mm:ss.xxx ex: 06-15 17:03:00.887
type LogcatTimestamp string

// LogcatTimestampPattern is the regexp for matching a logcat timestamp string.
var LogcatTimestampPattern = regexp.MustCompile(`\d{1,2}-\d{1,2} \d{1,2}:\d{1,2}:\d{1,2}\.\d{1,3}`)

// LatestLogcatTimestamp gets the timestamp of the latest logcat entry.
// This can be used as a marker to dump only entries logged after it.
func (d *Device) LatestLogcatTimestamp(ctx context.Context) (LogcatTimestamp, error) {
	out, err := d.Command(ctx, "logcat", "-d", "-t", "1").Output(testexec.DumpLogOnError)
	if err != nil {
		return "", errors.Wrap(err, "failed to get latest logcat entry")
	}
	return LogcatTimestamp(LogcatTimestampPattern.Find(out)), nil
}

// DumpLogcatFromTimestamp dumps logcat entries logged after timestamp to filePath.
// An empty timestamp dumps everything.
func (d *Device) DumpLogcatFromTimestamp(ctx context.Context, filePath string, timestamp LogcatTimestamp) error {
	if timestamp == "" {
		return d.DumpLogcat(ctx, filePath)
	}
	return d.DumpLogcat(ctx, filePath, "-T", string(timestamp))
}
