// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"context"
	"path"
	"reflect"
	"regexp"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultTestTimeout is used for tests that do not set Test.Timeout.
const DefaultTestTimeout = 2 * time.Minute

// TestFunc is the code associated with a test.
type TestFunc func(context.Context, *State)

// Test contains information about a test and its code itself.
//
// While this struct can be instantiated by tests, it is usually registered
// through AddTest from an init function of the bundle package.
type Test struct {
	// Func is the function to be executed to perform the test.
	// The test name is derived from it as "<package>.<FuncName>".
	Func TestFunc
	// Desc is a short one-line description of the test.
	Desc string
	// Contacts is a list of email addresses of persons and groups who are familiar with the test.
	Contacts []string
	// Attr contains freeform text attributes describing the test.
	Attr []string
	// Pre is the precondition prepared before every run of the test.
	Pre Precondition
	// Vars lists the names of runtime variables the test may read via State.Var.
	Vars []string
	// Params lists the values and meta data of parameterized tests.
	Params []Param
	// Timeout is the maximum duration for which Func may run.
	Timeout time.Duration
}

// Param defines parameters for a parameterized test case.
type Param struct {
	// Name is the name of this parameterized test.
	// The full name of the test case is "<package>.<FuncName>.<Name>".
	// An empty name is allowed for at most one parameter.
	Name string
	// Val is the value which can be retrieved from State.Param.
	Val interface{}
	// ExtraAttr contains attributes appended to Test.Attr.
	ExtraAttr []string
}

// TestInstance is a runnable test: a Test with at most one of its Params applied.
type TestInstance struct {
	Name     string
	Desc     string
	Contacts []string
	Attr     []string
	Pre      Precondition
	Vars     []string
	Val      interface{}
	Timeout  time.Duration
	Func     TestFunc
}

var testNameRegexp = regexp.MustCompile(`^[a-z][a-z0-9]*\.[A-Z][A-Za-z0-9]*(\.[a-z0-9_]+)?$`)

// funcName returns "<package>.<FuncName>" for a package-level function.
func funcName(f TestFunc) (string, error) {
	if f == nil {
		return "", errors.New("missing test function")
	}
	fn := runtime.FuncForPC(reflect.ValueOf(f).Pointer())
	if fn == nil {
		return "", errors.New("failed to look up test function")
	}
	return path.Base(fn.Name()), nil
}

func (t *Test) instantiate() ([]*TestInstance, error) {
	base, err := funcName(t.Func)
	if err != nil {
		return nil, err
	}
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTestTimeout
	}
	newInstance := func(name string, val interface{}, extraAttr []string) (*TestInstance, error) {
		if !testNameRegexp.MatchString(name) {
			return nil, errors.Errorf("invalid test name %q", name)
		}
		return &TestInstance{
			Name:     name,
			Desc:     t.Desc,
			Contacts: append([]string(nil), t.Contacts...),
			Attr:     append(append([]string(nil), t.Attr...), extraAttr...),
			Pre:      t.Pre,
			Vars:     append([]string(nil), t.Vars...),
			Val:      val,
			Timeout:  timeout,
			Func:     t.Func,
		}, nil
	}

	if len(t.Params) == 0 {
		ti, err := newInstance(base, nil, nil)
		if err != nil {
			return nil, err
		}
		return []*TestInstance{ti}, nil
	}

	var tis []*TestInstance
	for _, p := range t.Params {
		name := base
		if p.Name != "" {
			name += "." + p.Name
		}
		ti, err := newInstance(name, p.Val, p.ExtraAttr)
		if err != nil {
			return nil, err
		}
		tis = append(tis, ti)
	}
	return tis, nil
}

// Registry holds registered tests.
type Registry struct {
	mu    sync.Mutex
	tests map[string]*TestInstance
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tests: make(map[string]*TestInstance)}
}

// AddTest registers t and all its parameterized instances.
func (r *Registry) AddTest(t *Test) error {
	tis, err := t.instantiate()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ti := range tis {
		if _, ok := r.tests[ti.Name]; ok {
			return errors.Errorf("test %q already registered", ti.Name)
		}
	}
	for _, ti := range tis {
		r.tests[ti.Name] = ti
	}
	return nil
}

// AllTests returns registered tests sorted by name.
func (r *Registry) AllTests() []*TestInstance {
	r.mu.Lock()
	defer r.mu.Unlock()
	tis := make([]*TestInstance, 0, len(r.tests))
	for _, ti := range r.tests {
		tis = append(tis, ti)
	}
	sort.Slice(tis, func(i, j int) bool { return tis[i].Name < tis[j].Name })
	return tis
}

var globalRegistry = NewRegistry()

// AddTest adds a test to the global registry.
// It panics on an invalid or duplicated test, and should be called from init functions only.
func AddTest(t *Test) {
	if err := globalRegistry.AddTest(t); err != nil {
		panic(err)
	}
}

// RegisteredTests returns all tests in the global registry, sorted by name.
func RegisteredTests() []*TestInstance {
	return globalRegistry.AllTests()
}

// Select returns the tests whose names match any of patterns.
// Patterns use path.Match syntax. No patterns selects every test.
func Select(tests []*TestInstance, patterns []string) ([]*TestInstance, error) {
	if len(patterns) == 0 {
		return tests, nil
	}
	var sel []*TestInstance
	for _, t := range tests {
		for _, p := range patterns {
			matched, err := path.Match(p, t.Name)
			if err != nil {
				return nil, errors.Wrapf(err, "bad pattern %q", p)
			}
			if matched {
				sel = append(sel, t)
				break
			}
		}
	}
	return sel, nil
}
