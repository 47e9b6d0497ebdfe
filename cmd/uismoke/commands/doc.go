// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package commands defines the uismoke CLI.
//
// Commands
//
//   - list      Print registered tests matching the given patterns
//   - run       Run tests and write results under the output directory
//   - devices   Print devices known to adb
//
// The root command loads the optional YAML configuration file and applies
// flag overrides before any subcommand runs. Tests see the result as runtime
// variables.
package commands
