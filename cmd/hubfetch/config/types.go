// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config persists user preferences for hubfetch between runs.
//
// The file holds exactly two settings, output directory and proxy, and
// is rewritten only after interactive prompting collects new values.
// Pure CLI-argument runs never mutate it. Settings are explicit values
// threaded through the call chain; there is no ambient global.
package config

import "strings"

// Settings are the persisted user preferences.
//
// Zero values mean "not set": an empty OutputDir forces interactive
// prompting or an explicit --output_dir, an empty Proxy means a direct
// connection.
type Settings struct {
	// OutputDir is where promoted downloads land, one subdirectory per
	// model.
	OutputDir string `yaml:"output_dir"`

	// Proxy is applied to the downloader child process as
	// HTTP_PROXY/HTTPS_PROXY. May embed credentials; never logged
	// unredacted.
	Proxy string `yaml:"proxy,omitempty"`
}

// Overrides are the CLI-supplied values layered over stored settings.
type Overrides struct {
	OutputDir string
	Proxy     string
}

// Merge applies CLI overrides on top of stored settings.
//
// A present override always wins; an absent override falls back to the
// stored value; when both are absent the field stays empty.
func (s Settings) Merge(o Overrides) Settings {
	if v := strings.TrimSpace(o.OutputDir); v != "" {
		s.OutputDir = v
	}
	if v := strings.TrimSpace(o.Proxy); v != "" {
		s.Proxy = v
	}
	return s
}

// file is the on-disk document shape: a single settings section.
type file struct {
	Settings Settings `yaml:"settings"`
}
