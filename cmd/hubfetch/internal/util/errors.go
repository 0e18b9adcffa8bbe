// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package util

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// =============================================================================
// Command Error Type
// =============================================================================

// CommandError wraps a downloader invocation failure with stderr context.
//
// # Description
//
// Provides rich error context for external command failures: the command
// that failed, its exit code, and the tail of its stderr output. The
// downloader's full output streams through to the terminal, so only the
// captured tail is preserved here for the retry log and final summary.
// Implements the error interface and supports errors.Is/As unwrapping.
//
// # Thread Safety
//
// CommandError is immutable after creation and safe for concurrent reads.
//
// # Example
//
//	err := NewCommandError("huggingface-cli download", 1, "401 Unauthorized", cause)
//	var cmdErr *CommandError
//	if errors.As(err, &cmdErr) {
//	    fmt.Println(cmdErr.ExitCode) // 1
//	}
type CommandError struct {
	// Command is the command that was executed.
	Command string

	// ExitCode is the process exit code (-1 if unknown).
	ExitCode int

	// Stderr contains the trailing standard error output (trimmed).
	Stderr string

	// Wrapped is the underlying error (may be nil).
	Wrapped error
}

// NewCommandError creates a CommandError with trimmed stderr.
func NewCommandError(command string, exitCode int, stderr string, wrapped error) *CommandError {
	return &CommandError{
		Command:  command,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Wrapped:  wrapped,
	}
}

// Error returns a formatted error message.
//
// Stderr takes priority over the wrapped error in the message format.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s (exit %d): %s", e.Command, e.ExitCode, e.Stderr)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s (exit %d): %v", e.Command, e.ExitCode, e.Wrapped)
	}
	return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *CommandError) Unwrap() error {
	return e.Wrapped
}

// ExitCodeOf extracts the exit code from an exec error.
//
// Returns -1 when the process never ran or the exit status is unknown
// (killed by signal, context cancelled before start).
func ExitCodeOf(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
