// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config loads uismoke run configuration files.
package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Names of runtime variables derived from Config fields.
const (
	VarADBPath    = "android.adbPath"
	VarSerial     = "android.serial"
	VarServerAPKs = "android.serverAPKs"
	VarUIServer   = "android.uiServer"
)

// DefaultOutDir is used when neither the file nor flags set an output directory.
const DefaultOutDir = "/tmp/uismoke"

// Config is the content of a run configuration file.
type Config struct {
	ADB        string            `yaml:"adb"`
	Serial     string            `yaml:"serial"`
	OutDir     string            `yaml:"outdir"`
	ServerAPKs []string          `yaml:"server_apks"`
	UIServer   string            `yaml:"ui_server"`
	Vars       map[string]string `yaml:"vars"`
}

// Load reads a configuration file. An empty path yields an empty Config.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	// An empty file decodes to io.EOF and means an empty Config.
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return cfg, nil
}

// Merge overrides fields of c with non-empty fields of o. Vars are merged key by key.
func (c *Config) Merge(o *Config) {
	if o.ADB != "" {
		c.ADB = o.ADB
	}
	if o.Serial != "" {
		c.Serial = o.Serial
	}
	if o.OutDir != "" {
		c.OutDir = o.OutDir
	}
	if o.UIServer != "" {
		c.UIServer = o.UIServer
	}
	if len(o.ServerAPKs) > 0 {
		c.ServerAPKs = append([]string(nil), o.ServerAPKs...)
	}
	for k, v := range o.Vars {
		if c.Vars == nil {
			c.Vars = make(map[string]string)
		}
		c.Vars[k] = v
	}
}

// RuntimeVars returns the variables passed to tests and preconditions.
// Explicit vars take precedence over those derived from other fields.
func (c *Config) RuntimeVars() map[string]string {
	vars := make(map[string]string)
	if c.ADB != "" {
		vars[VarADBPath] = c.ADB
	}
	if c.Serial != "" {
		vars[VarSerial] = c.Serial
	}
	if len(c.ServerAPKs) > 0 {
		vars[VarServerAPKs] = strings.Join(c.ServerAPKs, ",")
	}
	if c.UIServer != "" {
		vars[VarUIServer] = c.UIServer
	}
	for k, v := range c.Vars {
		vars[k] = v
	}
	return vars
}

// ResolvedOutDir returns OutDir or DefaultOutDir.
func (c *Config) ResolvedOutDir() string {
	if c.OutDir == "" {
		return DefaultOutDir
	}
	return c.OutDir
}

// ParseVars parses "key=value" strings.
func ParseVars(kvs []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, errors.Errorf("malformed variable %q; want key=value", kv)
		}
		vars[k] = v
	}
	return vars, nil
}
