// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package testexec is a wrapper of the standard os/exec package optimized for
// use cases of uismoke. Commands are bound to a context, their output can be
// logged on failure, and Kill terminates the whole process tree.
package testexec

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"uismoke/internal/testing"
)

// RunOption is enum of options which can be passed to Run, Output,
// CombinedOutput and Wait to control precise behavior of them.
type RunOption int

// DumpLogOnError is an option to dump logs if the command returns a non-zero exit status.
const DumpLogOnError RunOption = iota

// Cmd represents an external command being prepared or run.
//
// This struct embeds Cmd in os/exec.
type Cmd struct {
	*exec.Cmd

	ctx context.Context

	stdout *bytes.Buffer // set by Output
	stderr bytes.Buffer  // collects stderr if the caller did not redirect it
}

// CommandContext prepares to run an external command.
//
// Timeout set in ctx is honored on running the command.
func CommandContext(ctx context.Context, name string, arg ...string) *Cmd {
	return &Cmd{Cmd: exec.CommandContext(ctx, name, arg...), ctx: ctx}
}

func hasOpt(opts []RunOption, opt RunOption) bool {
	for _, o := range opts {
		if o == opt {
			return true
		}
	}
	return false
}

// Run runs an external command and waits for its completion.
//
// See os/exec package for details.
func (c *Cmd) Run(opts ...RunOption) error {
	if err := c.Start(); err != nil {
		return err
	}
	return c.Wait(opts...)
}

// Start starts the command. Unredirected stderr is captured for DumpLogOnError.
func (c *Cmd) Start() error {
	if c.Stderr == nil {
		c.Stderr = &c.stderr
	}
	return c.Cmd.Start()
}

// Wait waits for the command to exit.
func (c *Cmd) Wait(opts ...RunOption) error {
	err := c.Cmd.Wait()
	if err != nil && hasOpt(opts, DumpLogOnError) {
		c.DumpLog(c.ctx)
	}
	return err
}

// Output runs an external command, waits for its completion and returns
// stdout output of the command.
func (c *Cmd) Output(opts ...RunOption) ([]byte, error) {
	if c.Stdout != nil {
		return nil, errors.New("stdout already set")
	}
	c.stdout = &bytes.Buffer{}
	c.Stdout = c.stdout
	err := c.Run(opts...)
	return c.stdout.Bytes(), err
}

// CombinedOutput runs an external command, waits for its completion and
// returns stdout/stderr output of the command.
func (c *Cmd) CombinedOutput(opts ...RunOption) ([]byte, error) {
	if c.Stdout != nil || c.Stderr != nil {
		return nil, errors.New("stdout or stderr already set")
	}
	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out
	err := c.Run(opts...)
	if err != nil && hasOpt(opts, DumpLogOnError) {
		testing.ContextLogf(c.ctx, "Output of %s: %s", shellquote.Join(c.Args...), out.String())
	}
	return out.Bytes(), err
}

// DumpLog logs the command line and the output collected by the command.
// It must not be called while the command is running.
func (c *Cmd) DumpLog(ctx context.Context) {
	testing.ContextLog(ctx, "Command failed: ", shellquote.Join(c.Args...))
	if c.stdout != nil && c.stdout.Len() > 0 {
		testing.ContextLog(ctx, "Stdout: ", c.stdout.String())
	}
	if c.stderr.Len() > 0 {
		testing.ContextLog(ctx, "Stderr: ", c.stderr.String())
	}
}

// Kill sends SIGKILL to the process and all its descendants.
// Descendants are killed first so that none of them is reparented to init.
func (c *Cmd) Kill() error {
	if c.Process == nil {
		return errors.New("process not started")
	}
	if p, err := process.NewProcess(int32(c.Process.Pid)); err == nil {
		killDescendants(p)
	}
	if err := unix.Kill(c.Process.Pid, unix.SIGKILL); err != nil {
		return errors.Wrapf(err, "failed to kill pid %d", c.Process.Pid)
	}
	return nil
}

func killDescendants(p *process.Process) {
	children, err := p.Children()
	if err != nil {
		return
	}
	for _, child := range children {
		killDescendants(child)
		child.Kill()
	}
}
