// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"uismoke/internal/config"
	ttesting "uismoke/internal/testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, flagCfg, varFlags, verbose, cfg = "", config.Config{}, nil, false, nil
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uismoke.yaml")
	const content = `adb: /opt/android/adb
serial: emulator-5554
vars:
  owncloud.launchTimeout: 8s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "list", "--config", path, "--serial", "R58M123ABC", "--var", "owncloud.verifyLaunch=true"); err != nil {
		t.Fatal("list failed: ", err)
	}
	want := map[string]string{
		config.VarADBPath:        "/opt/android/adb",
		config.VarSerial:         "R58M123ABC",
		"owncloud.launchTimeout": "8s",
		"owncloud.verifyLaunch":  "true",
	}
	if diff := cmp.Diff(cfg.RuntimeVars(), want); diff != "" {
		t.Errorf("Runtime vars mismatch (-got +want):\n%s", diff)
	}
}

func TestBadVar(t *testing.T) {
	if _, err := execute(t, "list", "--var", "novalue"); err == nil {
		t.Error("list succeeded with a malformed --var")
	}
}

func TestRunNoMatch(t *testing.T) {
	if _, err := execute(t, "run", "nosuch.Test"); err == nil {
		t.Error("run succeeded without matching tests")
	}
}

func TestReport(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	results := []ttesting.Result{
		{Name: "owncloud.CheckPreconditions", Start: start, End: start.Add(time.Second)},
		{Name: "owncloud.StartSettingsFromHomeScreen", Start: start, End: start.Add(12 * time.Second), Errors: []ttesting.ErrorEntry{
			{Reason: "Failed to open Settings entry: object not found", File: "initial.go", Line: 104},
		}},
	}
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	err := report(cmd, results)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("report() = %v; want 1 of 2 failures", err)
	}
	for _, s := range []string{
		"owncloud.CheckPreconditions",
		"PASS 1s",
		"FAIL 12s",
		"initial.go:104: Failed to open Settings entry",
	} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("Output does not contain %q:\n%s", s, out.String())
		}
	}
}
