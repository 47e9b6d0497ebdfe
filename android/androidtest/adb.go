// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package androidtest provides fakes of adb and android-uiautomator-server
// for unit tests of packages driving Android devices.
package androidtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kballard/go-shellquote"
)

// Serial is the serial number of the only device the fake adb reports.
const Serial = "emulator-5554"

// PulledUIDump is the content of files pulled from the fake device.
const PulledUIDump = `<hierarchy rotation="0" source="uiautomator"/>`

// fakeADB answers the commands issued by uismoke. The first line appends the
// arguments to the call log. The SDK level can be changed with $FAKE_ADB_SDK.
const fakeADB = `#!/bin/sh
echo "$*" >> %s
case "$*" in
"devices -l")
	printf 'List of devices attached\nemulator-5554          device product:sdk_gphone64 model:sdk_gphone64 device:emu64 transport_id:1\n'
	;;
*"getprop ro.build.version.sdk")
	echo "${FAKE_ADB_SDK:-33}"
	;;
*"resolve-activity"*"category.HOME"*)
	printf 'priority=0 preferredOrder=0 match=0x108000 specificIndex=-1 isDefault=true\ncom.android.launcher3/com.android.launcher3.uioverrides.QuickstepLauncher\n'
	;;
*"resolve-activity"*"category.LAUNCHER com.owncloud.android"*)
	printf 'priority=0 preferredOrder=0 match=0x108000 specificIndex=-1 isDefault=true\ncom.owncloud.android/com.owncloud.android.ui.activity.SplashActivity\n'
	;;
*"resolve-activity"*"category.LAUNCHER com.android.settings"*)
	printf 'priority=0 preferredOrder=0 match=0x108000 specificIndex=-1 isDefault=true\ncom.android.settings/.Settings\n'
	;;
*"resolve-activity"*)
	echo 'No activity found'
	;;
*"am start"*)
	printf 'Starting: Intent\nStatus: ok\nLaunchState: COLD\n'
	;;
*"logcat -d -t 1")
	printf '%%s\n' '--------- beginning of main' '06-15 17:03:00.887  1234  1250 I ActivityManager: Start proc'
	;;
*"logcat -d"*)
	echo '06-15 17:03:01.002  1234  1250 I ActivityTaskManager: Displayed com.android.settings/.Settings'
	;;
*"pull "*)
	eval "dst=\${$#}"
	echo '%s' > "$dst"
	;;
esac
`

// ADB is a fake adb executable.
type ADB struct {
	// Path is the executable to pass as the adb path.
	Path string

	t       *testing.T
	logPath string
}

// NewADB writes a fake adb executable into a temporary directory.
func NewADB(t *testing.T) *ADB {
	t.Helper()
	dir := t.TempDir()
	a := &ADB{Path: filepath.Join(dir, "adb"), t: t, logPath: filepath.Join(dir, "calls.log")}
	script := fmt.Sprintf(fakeADB, shellquote.Join(a.logPath), PulledUIDump)
	if err := os.WriteFile(a.Path, []byte(script), 0755); err != nil {
		t.Fatal("Failed to write fake adb: ", err)
	}
	return a
}

// Calls returns the argument lists adb was invoked with, one line per call.
func (a *ADB) Calls() []string {
	a.t.Helper()
	b, err := os.ReadFile(a.logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		a.t.Fatal("Failed to read fake adb log: ", err)
	}
	return strings.Split(strings.TrimSpace(string(b)), "\n")
}

// Called reports whether some call contains sub.
func (a *ADB) Called(sub string) bool {
	for _, c := range a.Calls() {
		if strings.Contains(c, sub) {
			return true
		}
	}
	return false
}
