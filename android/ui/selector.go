// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"strings"
)

// Selector locates views. It is serialized as the Selector of
// android-uiautomator-server, where mask tells which fields are set.
//
// This object corresponds to UiSelector in UI Automator API:
// https://developer.android.com/reference/androidx/test/uiautomator/UiSelector
type Selector struct {
	Mask                  uint32 `json:"mask"`
	Text                  string `json:"text,omitempty"`
	TextContains          string `json:"textContains,omitempty"`
	TextMatches           string `json:"textMatches,omitempty"`
	TextStartsWith        string `json:"textStartsWith,omitempty"`
	ClassName             string `json:"className,omitempty"`
	Description           string `json:"description,omitempty"`
	DescriptionContains   string `json:"descriptionContains,omitempty"`
	DescriptionMatches    string `json:"descriptionMatches,omitempty"`
	DescriptionStartsWith string `json:"descriptionStartsWith,omitempty"`
	Clickable             bool   `json:"clickable,omitempty"`
	Enabled               bool   `json:"enabled,omitempty"`
	PackageName           string `json:"packageName,omitempty"`
	ResourceID            string `json:"resourceId,omitempty"`
	Index                 int    `json:"index,omitempty"`
	Instance              int    `json:"instance,omitempty"`
}

// Mask bits understood by android-uiautomator-server.
const (
	maskText                  = 0x01
	maskTextContains          = 0x02
	maskTextMatches           = 0x04
	maskTextStartsWith        = 0x08
	maskClassName             = 0x10
	maskDescription           = 0x40
	maskDescriptionContains   = 0x80
	maskDescriptionMatches    = 0x100
	maskDescriptionStartsWith = 0x200
	maskClickable             = 0x1000
	maskEnabled               = 0x8000
	maskPackageName           = 0x80000
	maskResourceID            = 0x200000
	maskIndex                 = 0x800000
	maskInstance              = 0x1000000
)

// SelectorOption sets a condition on a Selector.
type SelectorOption func(*Selector)

// NewSelector returns a Selector with opts applied.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Text matches views whose text equals text exactly.
func Text(text string) SelectorOption {
	return func(s *Selector) { s.Text = text; s.Mask |= maskText }
}

// TextContains matches views whose text contains sub.
func TextContains(sub string) SelectorOption {
	return func(s *Selector) { s.TextContains = sub; s.Mask |= maskTextContains }
}

// TextMatches matches views whose text matches the Java regular expression re.
func TextMatches(re string) SelectorOption {
	return func(s *Selector) { s.TextMatches = re; s.Mask |= maskTextMatches }
}

// TextStartsWith matches views whose text starts with prefix.
func TextStartsWith(prefix string) SelectorOption {
	return func(s *Selector) { s.TextStartsWith = prefix; s.Mask |= maskTextStartsWith }
}

// ClassName matches views of the given class.
func ClassName(name string) SelectorOption {
	return func(s *Selector) { s.ClassName = name; s.Mask |= maskClassName }
}

// Description matches views whose content description equals desc exactly.
func Description(desc string) SelectorOption {
	return func(s *Selector) { s.Description = desc; s.Mask |= maskDescription }
}

// DescriptionContains matches views whose content description contains sub.
func DescriptionContains(sub string) SelectorOption {
	return func(s *Selector) { s.DescriptionContains = sub; s.Mask |= maskDescriptionContains }
}

// DescriptionMatches matches views whose content description matches the Java regular expression re.
func DescriptionMatches(re string) SelectorOption {
	return func(s *Selector) { s.DescriptionMatches = re; s.Mask |= maskDescriptionMatches }
}

// DescriptionStartsWith matches views whose content description starts with prefix.
func DescriptionStartsWith(prefix string) SelectorOption {
	return func(s *Selector) { s.DescriptionStartsWith = prefix; s.Mask |= maskDescriptionStartsWith }
}

// Clickable matches views by clickability.
func Clickable(b bool) SelectorOption {
	return func(s *Selector) { s.Clickable = b; s.Mask |= maskClickable }
}

// Enabled matches views by enabled state.
func Enabled(b bool) SelectorOption {
	return func(s *Selector) { s.Enabled = b; s.Mask |= maskEnabled }
}

// PackageName matches views belonging to pkg.
func PackageName(pkg string) SelectorOption {
	return func(s *Selector) { s.PackageName = pkg; s.Mask |= maskPackageName }
}

// ID matches views by resource ID, e.g. "com.android.settings:id/title".
func ID(id string) SelectorOption {
	return func(s *Selector) { s.ResourceID = id; s.Mask |= maskResourceID }
}

// Index matches the view at index i among its siblings.
func Index(i int) SelectorOption {
	return func(s *Selector) { s.Index = i; s.Mask |= maskIndex }
}

// Instance matches the i-th view (0-based) among all views matching the other conditions.
func Instance(i int) SelectorOption {
	return func(s *Selector) { s.Instance = i; s.Mask |= maskInstance }
}

// String renders the set conditions, e.g. `text="Data usage"`.
func (s *Selector) String() string {
	var parts []string
	add := func(mask uint32, name string, val interface{}) {
		if s.Mask&mask == 0 {
			return
		}
		if str, ok := val.(string); ok {
			parts = append(parts, fmt.Sprintf("%s=%q", name, str))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%v", name, val))
		}
	}
	add(maskText, "text", s.Text)
	add(maskTextContains, "textContains", s.TextContains)
	add(maskTextMatches, "textMatches", s.TextMatches)
	add(maskTextStartsWith, "textStartsWith", s.TextStartsWith)
	add(maskClassName, "className", s.ClassName)
	add(maskDescription, "description", s.Description)
	add(maskDescriptionContains, "descriptionContains", s.DescriptionContains)
	add(maskDescriptionMatches, "descriptionMatches", s.DescriptionMatches)
	add(maskDescriptionStartsWith, "descriptionStartsWith", s.DescriptionStartsWith)
	add(maskClickable, "clickable", s.Clickable)
	add(maskEnabled, "enabled", s.Enabled)
	add(maskPackageName, "packageName", s.PackageName)
	add(maskResourceID, "resourceId", s.ResourceID)
	add(maskIndex, "index", s.Index)
	add(maskInstance, "instance", s.Instance)
	return strings.Join(parts, ", ")
}
