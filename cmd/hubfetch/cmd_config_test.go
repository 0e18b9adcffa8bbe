// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hubfetch/pkg/ux"
)

// captureStdout redirects os.Stdout for the duration of f.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// =============================================================================
// runConfigShow Tests
// =============================================================================

func TestRunConfigShow_LabelsSettingsFilePath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	orig := ux.GetPersonality()
	defer ux.SetPersonality(orig)
	ux.SetPersonalityLevel(ux.PersonalityMachine)

	output := captureStdout(t, func() {
		if err := runConfigShow(&cobra.Command{}, nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	if !strings.Contains(output, "path:") {
		t.Errorf("expected settings location labeled 'path:', got %q", output)
	}
	if strings.Contains(output, "file:") {
		t.Errorf("settings location should not be labeled 'file:', got %q", output)
	}
	if !strings.Contains(output, "hubfetch.yaml") {
		t.Errorf("expected the settings path in output, got %q", output)
	}
}

func TestRunConfigShow_UnsetDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	orig := ux.GetPersonality()
	defer ux.SetPersonality(orig)
	ux.SetPersonalityLevel(ux.PersonalityMachine)

	output := captureStdout(t, func() {
		if err := runConfigShow(&cobra.Command{}, nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	if !strings.Contains(output, "unset") {
		t.Errorf("expected unset markers for empty settings, got %q", output)
	}
}
