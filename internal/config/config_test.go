// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "uismoke.yaml")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, `
adb: /opt/platform-tools/adb
serial: emulator-5554
outdir: /tmp/out
server_apks:
  - /data/app-uiautomator.apk
  - /data/app-uiautomator-test.apk
vars:
  owncloud.launchTimeout: 8s
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal("Load failed: ", err)
	}
	want := &Config{
		ADB:        "/opt/platform-tools/adb",
		Serial:     "emulator-5554",
		OutDir:     "/tmp/out",
		ServerAPKs: []string{"/data/app-uiautomator.apk", "/data/app-uiautomator-test.apk"},
		Vars:       map[string]string{"owncloud.launchTimeout": "8s"},
	}
	if diff := cmp.Diff(cfg, want); diff != "" {
		t.Errorf("Load mismatch (-got +want):\n%s", diff)
	}
}

func TestLoadUnknownField(t *testing.T) {
	p := writeConfig(t, "adb: adb\nserail: typo\n")
	if _, err := Load(p); err == nil {
		t.Error("Load accepted an unknown field")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal("Load failed: ", err)
	}
	if got := cfg.ResolvedOutDir(); got != DefaultOutDir {
		t.Errorf("ResolvedOutDir() = %q; want %q", got, DefaultOutDir)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	for _, content := range []string{"", "# nothing configured yet\n"} {
		cfg, err := Load(writeConfig(t, content))
		if err != nil {
			t.Errorf("Load(%q) failed: %v", content, err)
			continue
		}
		if diff := cmp.Diff(cfg, &Config{}); diff != "" {
			t.Errorf("Load(%q) mismatch (-got +want):\n%s", content, diff)
		}
	}
}

func TestMergeAndRuntimeVars(t *testing.T) {
	cfg := &Config{
		ADB:    "adb",
		Serial: "file-serial",
		Vars:   map[string]string{"owncloud.settingsLabel": "Data usage", "owncloud.launchTimeout": "5s"},
	}
	cfg.Merge(&Config{
		Serial:     "flag-serial",
		ServerAPKs: []string{"a.apk", "b.apk"},
		UIServer:   "127.0.0.1:9008",
		Vars:       map[string]string{"owncloud.launchTimeout": "9s"},
	})

	want := map[string]string{
		VarADBPath:               "adb",
		VarSerial:                "flag-serial",
		VarServerAPKs:            "a.apk,b.apk",
		VarUIServer:              "127.0.0.1:9008",
		"owncloud.settingsLabel": "Data usage",
		"owncloud.launchTimeout": "9s",
	}
	if diff := cmp.Diff(cfg.RuntimeVars(), want); diff != "" {
		t.Errorf("RuntimeVars mismatch (-got +want):\n%s", diff)
	}
}

func TestParseVars(t *testing.T) {
	got, err := ParseVars([]string{"a=1", "b=x=y", "c="})
	if err != nil {
		t.Fatal("ParseVars failed: ", err)
	}
	if diff := cmp.Diff(got, map[string]string{"a": "1", "b": "x=y", "c": ""}); diff != "" {
		t.Errorf("ParseVars mismatch (-got +want):\n%s", diff)
	}
	for _, bad := range []string{"novalue", "=v"} {
		if _, err := ParseVars([]string{bad}); err == nil {
			t.Errorf("ParseVars(%q) succeeded unexpectedly", bad)
		}
	}
}
