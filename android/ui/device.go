// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui allows interacting with Android apps by Android UI Automator API.
// We use android-uiautomator-server, a JSON-RPC server running as an Android app,
// to invoke UI Automator methods remotely.
package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"uismoke/android/adb"
	"uismoke/internal/testexec"
	"uismoke/internal/testing"
)

const (
	// StartTimeout is the timeout of NewDevice.
	StartTimeout = 60 * time.Second

	// serverPort is the fixed port of the UI Automator server on the device.
	serverPort = 9008

	serverPackage     = "com.github.uiautomator"
	serverTestPackage = "com.github.uiautomator.test"
	serverActivity    = "androidx.test.runner.AndroidJUnitRunner"
)

// jsonRPCObjectNotFound is the error code the server returns for UiObjectNotFoundException.
const jsonRPCObjectNotFound = -32002

// Device provides access to state information about the Android system.
//
// Close must be called to clean up resources when a test is over.
//
// This object corresponds to UiDevice in UI Automator API:
// https://developer.android.com/reference/androidx/test/uiautomator/UiDevice
type Device struct {
	a        *adb.Device
	sp       *testexec.Cmd // Server process
	hostPort int           // forwarded to serverPort
	host     string
	client   *http.Client
	debug    bool
	nextID   int64
}

// DeviceOption configures NewDevice.
type DeviceOption func(*deviceOptions)

type deviceOptions struct {
	apks []string
}

// ServerAPKs specifies the android-uiautomator-server APKs (app and test
// app) to install when the server is not installed yet.
func ServerAPKs(paths ...string) DeviceOption {
	return func(o *deviceOptions) { o.apks = append(o.apks, paths...) }
}

type jsonRPCRequest struct {
	Version string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	ID      int64         `json:"id"`
	Params  []interface{} `json:"params,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonRPCResponse struct {
	Version string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *jsonRPCError   `json:"error"`
}

// NewDevice creates a Device object by starting and connecting to UI Automator server.
//
// Close must be called to clean up resources when a test is over.
func NewDevice(ctx context.Context, a *adb.Device, opts ...DeviceOption) (*Device, error) {
	var o deviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	ictx, cancel := context.WithTimeout(ctx, StartTimeout)
	defer cancel()

	testing.ContextLog(ctx, "Starting UI Automator server")

	if err := installServer(ictx, a, o.apks); err != nil {
		return nil, err
	}

	hostPort, err := a.Forward(ictx, serverPort)
	if err != nil {
		return nil, err
	}

	// The server outlives ctx, which may be a precondition's Prepare context.
	// Close stops it.
	sp := a.ShellCommand(context.WithoutCancel(ctx), "am", "instrument", "-w", serverTestPackage+"/"+serverActivity)
	if err := sp.Start(); err != nil {
		a.RemoveForward(ctx, hostPort)
		return nil, errors.Wrap(err, "failed starting UI Automator server")
	}

	d := newDevice("127.0.0.1:" + strconv.Itoa(hostPort))
	d.a = a
	d.sp = sp
	d.hostPort = hostPort

	if err := d.waitServer(ictx); err != nil {
		d.Close(ctx)
		return nil, errors.Wrap(err, "UI Automator server did not come up")
	}
	return d, nil
}

// Dial connects to a UI Automator server already listening at addr
// ("host:port"), e.g. one started and forwarded outside of uismoke.
// Close does not stop such a server.
func Dial(ctx context.Context, addr string) (*Device, error) {
	d := newDevice(addr)
	if err := d.Alive(ctx); err != nil {
		return nil, errors.Wrapf(err, "no UI Automator server at %s", addr)
	}
	return d, nil
}

func newDevice(host string) *Device {
	return &Device{host: host, client: &http.Client{}}
}

// installServer installs UI Automator server to Android system unless it is already there.
func installServer(ctx context.Context, a *adb.Device, apks []string) error {
	pkgs, err := a.InstalledPackages(ctx)
	if err != nil {
		return err
	}
	_, hasApp := pkgs[serverPackage]
	_, hasTest := pkgs[serverTestPackage]
	if hasApp && hasTest {
		return nil
	}
	if len(apks) == 0 {
		return errors.Errorf("UI Automator server (%s, %s) is not installed and no APKs were given", serverPackage, serverTestPackage)
	}
	for _, p := range apks {
		if err := a.Install(ctx, p); err != nil {
			return errors.Wrapf(err, "failed installing %s", p)
		}
	}
	return nil
}

// waitServer waits for UI Automator server to come up.
func (d *Device) waitServer(ctx context.Context) error {
	return testing.Poll(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		return d.ping(ctx)
	}, &testing.PollOptions{Interval: 200 * time.Millisecond})
}

func (d *Device) ping(ctx context.Context) error {
	var res string
	if err := d.call(ctx, "ping", &res); err != nil {
		return err
	}
	if res != "pong" {
		return errors.Errorf("ping returned %q", res)
	}
	return nil
}

// Alive returns nil if the server responds to a ping.
func (d *Device) Alive(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.ping(ctx)
}

// EnableDebug enables logging of raw RPC traffic at debug level.
func (d *Device) EnableDebug() {
	d.debug = true
}

// Close releases resources associated with d.
func (d *Device) Close(ctx context.Context) error {
	var firstErr error
	if d.sp != nil {
		if err := d.sp.Kill(); err != nil {
			firstErr = err
		}
		// The exit status of a killed process is meaningless.
		d.sp.Wait()
	}
	if d.a != nil && d.hostPort != 0 {
		if err := d.a.RemoveForward(ctx, d.hostPort); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// call calls a remote server method by JSON-RPC.
// method is a method name.
// out is a variable to store a returned result. If it is nil, results are discarded.
// params is a list of parameters to the remote method.
func (d *Device) call(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	reqBody, err := json.Marshal(&jsonRPCRequest{
		Version: "2.0",
		Method:  method,
		ID:      atomic.AddInt64(&d.nextID, 1),
		Params:  params,
	})
	if err != nil {
		return errors.Wrapf(err, "%s: failed marshaling request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+d.host+"/jsonrpc/0", bytes.NewReader(reqBody))
	if err != nil {
		return errors.Wrapf(err, "%s: failed initializing request", method)
	}
	req.Header.Add("Content-Type", "application/json")

	if d.debug {
		testing.ContextLogger(ctx).DebugContext(ctx, "-> "+string(reqBody))
	}

	res, err := d.client.Do(req)
	if err != nil {
		return errors.Wrap(err, method)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.Errorf("%s: got status %d", method, res.StatusCode)
	}

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "%s: failed reading response", method)
	}

	if d.debug {
		testing.ContextLogger(ctx).DebugContext(ctx, "<- "+string(resBody))
	}

	var resData jsonRPCResponse
	if err := json.Unmarshal(resBody, &resData); err != nil {
		return errors.Wrapf(err, "%s: failed unmarshaling response", method)
	}

	if resData.Error != nil {
		if resData.Error.Code == jsonRPCObjectNotFound {
			return errors.Wrapf(ErrObjectNotFound, "%s: %s", method, resData.Error.Message)
		}
		return errors.Errorf("%s: %s", method, resData.Error.Message)
	}

	// If the caller does not need results, we can return now.
	if out == nil {
		return nil
	}

	if len(resData.Result) == 0 {
		return errors.Errorf("%s: missing result", method)
	}
	if err := json.Unmarshal(resData.Result, out); err != nil {
		testing.ContextLogf(ctx, "Failed unmarshaling to %T: %q", out, string(resData.Result))
		return errors.Wrapf(err, "%s: failed unmarshaling result", method)
	}
	return nil
}
