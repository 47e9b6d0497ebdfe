// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package android

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"uismoke/android/adb"
	"uismoke/android/androidtest"
	"uismoke/android/ui"
	"uismoke/internal/config"
	ttesting "uismoke/internal/testing"
)

func TestConnect(t *testing.T) {
	fake := androidtest.NewADB(t)
	a, err := connect(context.Background(), fake.Path, "")
	if err != nil {
		t.Fatal("connect failed: ", err)
	}
	if got, want := a.Serial(), androidtest.Serial; got != want {
		t.Errorf("Serial() = %q; want %q", got, want)
	}
}

func TestConnected(t *testing.T) {
	p := Connected()
	if got, want := p.String(), "android_connected"; got != want {
		t.Errorf("String() = %q; want %q", got, want)
	}
	if p.Timeout() <= ui.StartTimeout {
		t.Errorf("Timeout() = %v; want more than %v", p.Timeout(), ui.StartTimeout)
	}
	if Connected() != p {
		t.Error("Connected() returned a different precondition on the second call")
	}
}

// runConnected runs f as a test using Connected against a fake device.
func runConnected(t *testing.T, fake *androidtest.ADB, srv *androidtest.UIServer, f ttesting.TestFunc) ttesting.Result {
	t.Helper()
	tests := []*ttesting.TestInstance{{
		Name:    "android.Fake",
		Pre:     Connected(),
		Vars:    Vars,
		Timeout: time.Minute,
		Func:    f,
	}}
	vars := map[string]string{
		config.VarADBPath:  fake.Path,
		config.VarUIServer: srv.Addr(),
	}
	res, err := ttesting.Run(context.Background(), tests, ttesting.RunConfig{OutDir: t.TempDir(), Vars: vars, LogWriter: io.Discard})
	if err != nil {
		t.Fatal("Run failed: ", err)
	}
	if len(res) != 1 {
		t.Fatalf("Run returned %d results; want 1", len(res))
	}
	return res[0]
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal("Failed to read file: ", err)
	}
	return string(b)
}

func TestConnectedPrepare(t *testing.T) {
	fake := androidtest.NewADB(t)
	srv := androidtest.NewUIServer(t)

	var d PreData
	res := runConnected(t, fake, srv, func(ctx context.Context, s *ttesting.State) {
		d = s.PreValue().(PreData)
		if err := d.UIDevice.PressHome(ctx); err != nil {
			s.Fatal("Failed to press Home: ", err)
		}
	})
	if !res.Passed() {
		t.Fatalf("Test failed: %+v", res.Errors)
	}
	if d.Device == nil || d.UIDevice == nil {
		t.Fatalf("PreData = %+v; want both devices set", d)
	}
	if got, want := d.LogcatStart, adb.LogcatTimestamp("06-15 17:03:00.887"); got != want {
		t.Errorf("LogcatStart = %q; want %q", got, want)
	}
	if !fake.Called("input keyevent 224") {
		t.Errorf("Device was not woken up; adb calls: %q", fake.Calls())
	}
	if _, err := os.Stat(filepath.Join(res.OutDir, "faillog")); !os.IsNotExist(err) {
		t.Error("faillog was created for a passing test")
	}
}

func TestSaveLogsOnError(t *testing.T) {
	fake := androidtest.NewADB(t)
	srv := androidtest.NewUIServer(t)

	res := runConnected(t, fake, srv, func(ctx context.Context, s *ttesting.State) {
		d := s.PreValue().(PreData)
		defer SaveLogsOnError(ctx, s, d)
		s.Error("Failed to find Settings")
	})
	if res.Passed() {
		t.Fatal("Test passed unexpectedly")
	}
	dir := filepath.Join(res.OutDir, "faillog")
	if got := readFile(t, filepath.Join(dir, "logcat.txt")); !strings.Contains(got, "Displayed com.android.settings/.Settings") {
		t.Errorf("logcat.txt = %q; want the Displayed line", got)
	}
	if !fake.Called("logcat -d -T 06-15 17:03:00.887") {
		t.Errorf("logcat was not dumped from the start timestamp; adb calls: %q", fake.Calls())
	}
	if got, want := readFile(t, filepath.Join(dir, "uidump.xml")), androidtest.WindowHierarchy; got != want {
		t.Errorf("uidump.xml = %q; want %q", got, want)
	}
	if fake.Called("uiautomator dump") {
		t.Error("uiautomator dump was run although the server answered")
	}
}

func TestSaveLogsOnErrorFallsBackToUIAutomatorDump(t *testing.T) {
	fake := androidtest.NewADB(t)
	srv := androidtest.NewUIServer(t)
	srv.Handle("dumpWindowHierarchy", func([]json.RawMessage) (interface{}, *androidtest.RPCError) {
		return nil, &androidtest.RPCError{Code: -32001, Message: "java.lang.IllegalStateException"}
	})

	res := runConnected(t, fake, srv, func(ctx context.Context, s *ttesting.State) {
		d := s.PreValue().(PreData)
		defer SaveLogsOnError(ctx, s, d)
		s.Error("Failed to find Settings")
	})
	if !fake.Called("uiautomator dump") {
		t.Errorf("uiautomator dump was not run; adb calls: %q", fake.Calls())
	}
	if got, want := strings.TrimSpace(readFile(t, filepath.Join(res.OutDir, "faillog", "uidump.xml"))), androidtest.PulledUIDump; got != want {
		t.Errorf("uidump.xml = %q; want %q", got, want)
	}
}

func TestConnectedOldSDK(t *testing.T) {
	t.Setenv("FAKE_ADB_SDK", "17")
	fake := androidtest.NewADB(t)
	srv := androidtest.NewUIServer(t)

	ran := false
	res := runConnected(t, fake, srv, func(ctx context.Context, s *ttesting.State) {
		ran = true
	})
	if ran {
		t.Error("Test ran on an unsupported device")
	}
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0].Reason, "SDK version 17") {
		t.Errorf("Errors = %+v; want an SDK version error", res.Errors)
	}
	if len(srv.Calls()) != 0 {
		t.Errorf("UI Automator server was contacted: %q", srv.Methods())
	}
}
