// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package adb provides access to an Android device through the adb command.
// It plays the role of the on-device instrumentation context: it resolves
// packages through the package manager, dispatches intents and injects input.
package adb

import (
	"context"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"

	"uismoke/internal/testexec"
)

// DefaultPath is the adb executable used when none is given.
const DefaultPath = "adb"

// ErrNoDevice is returned by Open when no usable device is attached.
var ErrNoDevice = errors.New("no online device")

// ConnectionType indicates how a device is connected.
type ConnectionType string

// Connection types reported by Devices.
const (
	USB      ConnectionType = "usb"
	WiFi     ConnectionType = "wifi"
	Emulator ConnectionType = "emulator"
	Unknown  ConnectionType = "unknown"
)

// DeviceInfo is an entry of "adb devices -l".
type DeviceInfo struct {
	Serial      string
	State       string // "device", "offline", "unauthorized", etc.
	ConnType    ConnectionType
	Model       string
	Product     string
	TransportID string
}

// IsOnline returns true if the device is in "device" state (ready).
func (d DeviceInfo) IsOnline() bool {
	return d.State == "device"
}

// Device is a handle to a single Android device reachable by adb.
type Device struct {
	adbPath string
	serial  string
}

// Devices lists devices known to the local adb server.
func Devices(ctx context.Context, adbPath string) ([]DeviceInfo, error) {
	if adbPath == "" {
		adbPath = DefaultPath
	}
	out, err := testexec.CommandContext(ctx, adbPath, "devices", "-l").Output(testexec.DumpLogOnError)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}
	return parseDevices(string(out)), nil
}

func parseDevices(out string) []DeviceInfo {
	var devs []DeviceInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		// Skip the header, daemon messages and blank lines.
		if len(fields) < 2 || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		d := DeviceInfo{Serial: fields[0], State: fields[1], ConnType: Unknown}
		switch {
		case strings.HasPrefix(d.Serial, "emulator-"):
			d.ConnType = Emulator
		case strings.Contains(d.Serial, ":"):
			d.ConnType = WiFi
		}
		for _, f := range fields[2:] {
			k, v, ok := strings.Cut(f, ":")
			if !ok {
				continue
			}
			switch k {
			case "usb":
				d.ConnType = USB
			case "model":
				d.Model = v
			case "product":
				d.Product = v
			case "transport_id":
				d.TransportID = v
			}
		}
		devs = append(devs, d)
	}
	return devs
}

// Open returns a Device for serial. If serial is empty, exactly one device
// must be online.
func Open(ctx context.Context, adbPath, serial string) (*Device, error) {
	if adbPath == "" {
		adbPath = DefaultPath
	}
	devs, err := Devices(ctx, adbPath)
	if err != nil {
		return nil, err
	}

	var online []DeviceInfo
	for _, d := range devs {
		if serial != "" && d.Serial != serial {
			continue
		}
		if d.IsOnline() {
			online = append(online, d)
		} else if serial != "" {
			return nil, errors.Errorf("device %s is %s", serial, d.State)
		}
	}
	switch len(online) {
	case 0:
		if serial != "" {
			return nil, errors.Wrapf(ErrNoDevice, "device %s not found", serial)
		}
		return nil, ErrNoDevice
	case 1:
		return &Device{adbPath: adbPath, serial: online[0].Serial}, nil
	default:
		return nil, errors.Errorf("%d devices are online; specify a serial", len(online))
	}
}

// Serial returns the serial number of the device.
func (d *Device) Serial() string {
	return d.serial
}

// Command returns a command running adb against the device with the given arguments.
func (d *Device) Command(ctx context.Context, arg ...string) *testexec.Cmd {
	return testexec.CommandContext(ctx, d.adbPath, append([]string{"-s", d.serial}, arg...)...)
}

// ShellCommand runs a command on the device.
//
// Be aware of many restrictions of adb: return code is not always propagated,
// stdin is not connected, and stderr may be mixed to stdout.
func (d *Device) ShellCommand(ctx context.Context, name string, arg ...string) *testexec.Cmd {
	// adb exec-out is like adb shell, but skips CR/LF conversion.
	// It always passes the command line to /bin/sh, so arguments are escaped.
	shell := "exec " + shellquote.Join(append([]string{name}, arg...)...)
	return d.Command(ctx, "exec-out", shell)
}

// GetProp returns the value of an Android system property.
func (d *Device) GetProp(ctx context.Context, name string) (string, error) {
	out, err := d.ShellCommand(ctx, "getprop", name).Output(testexec.DumpLogOnError)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get property %s", name)
	}
	return strings.TrimSpace(string(out)), nil
}

// SDKVersion returns the SDK version of the Android system.
func (d *Device) SDKVersion(ctx context.Context) (int, error) {
	v, err := d.GetProp(ctx, "ro.build.version.sdk")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed SDK version %q", v)
	}
	return n, nil
}

// PullFile copies a file from the device to the host.
func (d *Device) PullFile(ctx context.Context, src, dst string) error {
	if err := d.Command(ctx, "pull", src, dst).Run(testexec.DumpLogOnError); err != nil {
		return errors.Wrapf(err, "failed to pull %s", src)
	}
	return nil
}

// New returns a Device for serial without checking that it is attached.
func New(adbPath, serial string) *Device {
	if adbPath == "" {
		adbPath = DefaultPath
	}
	return &Device{adbPath: adbPath, serial: serial}
}
