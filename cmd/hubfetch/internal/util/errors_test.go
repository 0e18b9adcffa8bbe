// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package util

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommandError_Error(t *testing.T) {
	tests := []struct {
		name     string
		cmdErr   *CommandError
		contains []string
	}{
		{
			name:     "with stderr",
			cmdErr:   NewCommandError("huggingface-cli download org/model", 1, "401 Unauthorized\n", nil),
			contains: []string{"huggingface-cli download org/model", "exit 1", "401 Unauthorized"},
		},
		{
			name:     "wrapped only",
			cmdErr:   NewCommandError("huggingface-cli download", -1, "", fmt.Errorf("context canceled")),
			contains: []string{"exit -1", "context canceled"},
		},
		{
			name:     "bare",
			cmdErr:   NewCommandError("huggingface-cli", 2, "", nil),
			contains: []string{"huggingface-cli", "exit 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.cmdErr.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}

func TestCommandError_TrimsStderr(t *testing.T) {
	cmdErr := NewCommandError("cmd", 1, "  error text  \n\n", nil)
	if cmdErr.Stderr != "error text" {
		t.Errorf("Stderr = %q, want trimmed", cmdErr.Stderr)
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	cmdErr := NewCommandError("cmd", 1, "", cause)

	if !errors.Is(cmdErr, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}

	var target *CommandError
	if !errors.As(error(cmdErr), &target) {
		t.Error("errors.As() should extract *CommandError")
	}
	if target.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", target.ExitCode)
	}
}

func TestExitCodeOf_NonExitError(t *testing.T) {
	// Plain errors carry no exit status.
	if got := ExitCodeOf(errors.New("not an exec error")); got != -1 {
		t.Errorf("ExitCodeOf() = %d, want -1", got)
	}
	if got := ExitCodeOf(nil); got != -1 {
		t.Errorf("ExitCodeOf(nil) = %d, want -1", got)
	}
}
