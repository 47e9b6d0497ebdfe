// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import "fmt"

// Condition is a state of the screen that Device.Wait waits for.
//
// It corresponds to the search conditions of Until in UI Automator API.
type Condition struct {
	method string
	s      *Selector
}

// HasObject is satisfied when a view matching opts is on screen.
// HasObject(PackageName(pkg)) is satisfied once any window of pkg is shown.
func HasObject(opts ...SelectorOption) Condition {
	return Condition{method: "waitForExists", s: NewSelector(opts...)}
}

func (c Condition) String() string {
	return fmt.Sprintf("hasObject(%v)", c.s)
}
