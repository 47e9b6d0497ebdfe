// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

const defaultPollInterval = 100 * time.Millisecond

// PollOptions may be passed to Poll to configure its behavior.
type PollOptions struct {
	// Timeout specifies the maximum time to poll.
	// Non-positive values indicate no timeout (although ctx may still have a deadline).
	Timeout time.Duration
	// Interval specifies how long to sleep between polling.
	// Non-positive values indicate that a reasonable default should be used.
	Interval time.Duration
}

type pollBreak struct {
	err error
}

func (b *pollBreak) Error() string { return b.err.Error() }

// PollBreak wraps err so that Poll stops immediately and returns err.
func PollBreak(err error) error {
	return &pollBreak{err}
}

// Poll runs f repeatedly until f returns nil and then itself returns nil.
// If ctx returns an error before then or opts.Timeout is reached, the last error returned by f is returned.
// f should use the context passed to it, as it may have an adjusted deadline if opts.Timeout is set.
// If ctx's deadline has already been reached, f will not be invoked.
// If opts is nil, reasonable defaults are used.
func Poll(ctx context.Context, f func(context.Context) error, opts *PollOptions) error {
	var timeout, interval time.Duration
	if opts != nil {
		timeout = opts.Timeout
		interval = opts.Interval
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var lastErr error
	for {
		if ctx.Err() != nil {
			if lastErr != nil {
				return errors.Wrapf(lastErr, "%s; last error follows", ctx.Err())
			}
			return ctx.Err()
		}

		err := f(ctx)
		if err == nil {
			return nil
		}
		var pb *pollBreak
		if errors.As(err, &pb) {
			return pb.err
		}
		lastErr = err

		select {
		case <-time.After(interval):
		case <-ctx.Done():
		}
	}
}

// Sleep pauses the current goroutine for d or until ctx expires.
func Sleep(ctx context.Context, d time.Duration) error {
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-tm.C:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "sleep interrupted")
	}
}
