// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command uismoke runs Android UI smoke tests against a device attached via adb.
package main

import (
	"os"

	"uismoke/cmd/uismoke/commands"

	// Test bundles register their tests in init.
	_ "uismoke/bundles/owncloud"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
