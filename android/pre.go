// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package android provides the preconditions shared by Android UI tests.
package android

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"uismoke/android/adb"
	"uismoke/android/ui"
	"uismoke/internal/config"
	"uismoke/internal/testing"
)

// Vars lists the runtime variables read by Connected. Tests using it should
// include them in testing.Test.Vars.
var Vars = []string{config.VarADBPath, config.VarSerial, config.VarServerAPKs, config.VarUIServer}

// connectTimeout is the timeout for finding a device and waking it up.
const connectTimeout = 30 * time.Second

// MinSDKVersion is the oldest Android API level UI Automator 2 supports.
const MinSDKVersion = 18

// PreData holds information made available to tests that specify preconditions.
type PreData struct {
	// Device is the adb handle of the device under test.
	Device *adb.Device
	// UIDevice is a UI Automator device object.
	// It cannot be closed by tests.
	UIDevice *ui.Device
	// LogcatStart marks the end of logcat as of Prepare. It is empty if
	// logcat could not be read.
	LogcatStart adb.LogcatTimestamp
}

// Connected returns a precondition that a device is connected and its
// UI Automator server is up when a test is run.
//
// Tests get a PreData from testing.State.PreValue:
//
//	func DoSomething(ctx context.Context, s *testing.State) {
//		d := s.PreValue().(android.PreData)
//		if err := d.UIDevice.PressHome(ctx); err != nil {
//			...
//		}
//	}
func Connected() testing.Precondition { return connectedPre }

var connectedPre = &preImpl{
	name:    "android_connected",
	timeout: connectTimeout + ui.StartTimeout,
}

// preImpl implements testing.Precondition.
type preImpl struct {
	name    string        // testing.Precondition.String
	timeout time.Duration // testing.Precondition.Timeout

	a  *adb.Device
	ud *ui.Device
}

func (p *preImpl) String() string         { return p.name }
func (p *preImpl) Timeout() time.Duration { return p.timeout }

// Prepare is called by the test framework at the beginning of every test using this precondition.
// It returns a PreData containing objects that can be used by the test.
func (p *preImpl) Prepare(ctx context.Context, s *testing.PreState) interface{} {
	if p.ud != nil {
		err := p.ud.Alive(ctx)
		if err == nil {
			s.Log("Reusing existing UI Automator connection")
			if err := p.a.WakeUp(ctx); err != nil {
				s.Log("Failed to wake up device: ", err)
			}
			return p.preData(ctx, s)
		}
		s.Log("Failed to reuse existing UI Automator connection: ", err)
		p.closeInternal(ctx, s)
	}

	// Revert partial initialization.
	shouldClose := true
	defer func() {
		if shouldClose {
			p.closeInternal(ctx, s)
		}
	}()

	adbPath, _ := s.Var(config.VarADBPath)
	serial, _ := s.Var(config.VarSerial)

	func() {
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		var err error
		if p.a, err = connect(ctx, adbPath, serial); err != nil {
			s.Fatal("Failed to connect to device: ", err)
		}
		if err := checkSDKVersion(ctx, p.a); err != nil {
			s.Fatal("Unsupported device: ", err)
		}
		if err := p.a.WakeUp(ctx); err != nil {
			s.Fatal("Failed to wake up device: ", err)
		}
	}()

	var err error
	if addr, ok := s.Var(config.VarUIServer); ok && addr != "" {
		s.Log("Using UI Automator server at ", addr)
		p.ud, err = ui.Dial(ctx, addr)
	} else {
		var opts []ui.DeviceOption
		if apks, ok := s.Var(config.VarServerAPKs); ok && apks != "" {
			opts = append(opts, ui.ServerAPKs(strings.Split(apks, ",")...))
		}
		p.ud, err = ui.NewDevice(ctx, p.a, opts...)
	}
	if err != nil {
		s.Fatal("Failed to initialize UI Automator: ", err)
	}
	if testing.ContextLogger(ctx).Enabled(ctx, slog.LevelDebug) {
		p.ud.EnableDebug()
	}

	shouldClose = false
	return p.preData(ctx, s)
}

func (p *preImpl) preData(ctx context.Context, s *testing.PreState) PreData {
	ts, err := p.a.LatestLogcatTimestamp(ctx)
	if err != nil {
		s.Log("Failed to get logcat timestamp: ", err)
	}
	return PreData{Device: p.a, UIDevice: p.ud, LogcatStart: ts}
}

// Close is called by the test framework after the last test that uses this precondition.
func (p *preImpl) Close(ctx context.Context, s *testing.PreState) {
	p.closeInternal(ctx, s)
}

// closeInternal closes and resets p.ud and forgets p.a.
func (p *preImpl) closeInternal(ctx context.Context, s *testing.PreState) {
	if p.ud != nil {
		if err := p.ud.Close(ctx); err != nil {
			s.Log("Failed to close UI Automator connection: ", err)
		}
		p.ud = nil
	}
	p.a = nil
}

// connect opens the device, restarting a wedged local adb server once.
func connect(ctx context.Context, adbPath, serial string) (*adb.Device, error) {
	a, err := adb.Open(ctx, adbPath, serial)
	if err == nil {
		return a, nil
	}
	testing.ContextLog(ctx, "Failed to open device, restarting adb server: ", err)
	if kerr := adb.KillLocalServer(ctx); kerr != nil {
		return nil, errors.Wrapf(err, "also failed to kill adb server: %v", kerr)
	}
	return adb.Open(ctx, adbPath, serial)
}

// checkSDKVersion fails for devices older than MinSDKVersion.
func checkSDKVersion(ctx context.Context, a *adb.Device) error {
	sdk, err := a.SDKVersion(ctx)
	if err != nil {
		return err
	}
	if sdk < MinSDKVersion {
		return errors.Errorf("SDK version %d is older than %d", sdk, MinSDKVersion)
	}
	return nil
}

// SaveLogsOnError saves logcat and the UI hierarchy to the faillog directory
// under the test's output directory if the test has failed.
// Tests call it in a defer right after taking PreData.
func SaveLogsOnError(ctx context.Context, s *testing.State, d PreData) {
	if !s.HasError() {
		return
	}
	dir := filepath.Join(s.OutDir(), "faillog")
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.Log("Failed to create faillog directory: ", err)
		return
	}

	var g errgroup.Group
	g.Go(func() error {
		return errors.Wrap(d.Device.DumpLogcatFromTimestamp(ctx, filepath.Join(dir, "logcat.txt"), d.LogcatStart), "failed to save logcat")
	})
	g.Go(func() error {
		return errors.Wrap(saveUIHierarchy(ctx, d, dir), "failed to save UI hierarchy")
	})
	if err := g.Wait(); err != nil {
		s.Log("Failed to save logs: ", err)
	}
}

// saveUIHierarchy dumps the window hierarchy over RPC, falling back to
// "uiautomator dump" when there is no server or it does not answer.
func saveUIHierarchy(ctx context.Context, d PreData, dir string) error {
	if d.UIDevice != nil {
		xml, err := d.UIDevice.DumpWindowHierarchy(ctx)
		if err == nil {
			return os.WriteFile(filepath.Join(dir, "uidump.xml"), []byte(xml), 0644)
		}
		testing.ContextLog(ctx, "Failed to dump UI hierarchy over RPC, falling back to uiautomator: ", err)
	}
	return d.Device.DumpUIHierarchyOnError(ctx, filepath.Dir(dir), func() bool { return true })
}
