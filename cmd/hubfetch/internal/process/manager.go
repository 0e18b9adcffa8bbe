// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
Package process abstracts external process execution for the hubfetch CLI.

All exec.Command calls go through the ProcessManager interface so that
download invocation, retry behavior, and system checks can be unit tested
without spawning real processes.

# Design Rationale

Direct calls to exec.Command are not testable because they execute real
processes. By abstracting process execution behind an interface, we can:
  - Mock process execution in tests
  - Capture and verify command invocations (argv and environment)
  - Simulate exit codes without a real downloader installed
*/
package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/util"
)

// -----------------------------------------------------------------------------
// Interface Definition
// -----------------------------------------------------------------------------

// Spec describes one external command invocation.
//
// # Description
//
// Spec is the full contract hubfetch hands to a ProcessManager: the
// executable, its arguments, scoped environment overrides, and where the
// child's output streams go. Env entries are appended to the parent
// environment for the child only; the parent environment is never mutated.
type Spec struct {
	// Name is the executable name or path.
	Name string

	// Args are the command arguments.
	Args []string

	// Env holds environment overrides appended to os.Environ() for the
	// child. Nil means no overrides.
	Env *util.EnvVars

	// Stdout receives the child's standard output. Nil means os.Stdout
	// (pass-through: the downloader renders its own progress bars).
	Stdout io.Writer

	// Stderr receives the child's standard error. Nil means os.Stderr.
	Stderr io.Writer
}

// String renders the invocation for error messages and logs.
func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	return s.Name + " " + strings.Join(s.Args, " ")
}

// ProcessManager handles external process operations.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use from multiple goroutines.
//
// # Context Handling
//
// All methods accept a context.Context. Cancelling the context kills the
// child process; the downloader is expected to leave resumable state on
// disk when interrupted.
type ProcessManager interface {
	// Run executes a command synchronously, streaming output per the Spec.
	//
	// # Outputs
	//
	//   - error: nil on exit 0; *util.CommandError wrapping the exit
	//     status otherwise
	Run(ctx context.Context, spec Spec) error

	// Output executes a command synchronously and returns captured stdout.
	//
	// Used for short probes (version checks, accelerator detection)
	// where output is parsed rather than displayed.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath searches PATH for an executable.
	//
	// Returns the resolved path, or an error when the binary is absent.
	LookPath(name string) (string, error)
}

// -----------------------------------------------------------------------------
// Implementation
// -----------------------------------------------------------------------------

// DefaultProcessManager implements ProcessManager using os/exec.
//
// This is the production implementation that executes real processes.
// Use MockProcessManager in tests instead.
type DefaultProcessManager struct{}

// NewDefaultProcessManager creates a ProcessManager backed by os/exec.
func NewDefaultProcessManager() *DefaultProcessManager {
	return &DefaultProcessManager{}
}

// Run executes a command synchronously, streaming output per the Spec.
func (pm *DefaultProcessManager) Run(ctx context.Context, spec Spec) error {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)

	cmd.Stdout = spec.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = spec.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if spec.Env.Len() > 0 {
		cmd.Env = append(os.Environ(), spec.Env.ToSlice()...)
	}

	// Keep a bounded stderr tail for the error without swallowing the
	// pass-through stream.
	tail := util.NewLineTail(stderrTailLines)
	cmd.Stderr = io.MultiWriter(cmd.Stderr, tail)

	if err := cmd.Run(); err != nil {
		return util.NewCommandError(spec.String(), util.ExitCodeOf(err), tail.String(), err)
	}
	return nil
}

// stderrTailLines bounds how much child stderr is retained for errors.
const stderrTailLines = 20

// Output executes a command synchronously and returns captured stdout.
func (pm *DefaultProcessManager) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Include stderr in error for debugging
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// LookPath searches PATH for an executable.
func (pm *DefaultProcessManager) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// -----------------------------------------------------------------------------
// Mock Implementation for Testing
// -----------------------------------------------------------------------------

// MockProcessManager is a test double for ProcessManager.
//
// Configure the mock by setting function fields before use. If a function
// field is nil and the corresponding method is called, it will panic.
//
// # Examples
//
//	mock := &process.MockProcessManager{
//	    RunFunc: func(ctx context.Context, spec process.Spec) error {
//	        if spec.Name == "huggingface-cli" {
//	            return nil
//	        }
//	        return fmt.Errorf("unexpected command: %s", spec.Name)
//	    },
//	}
type MockProcessManager struct {
	// RunFunc is called when Run is invoked.
	RunFunc func(ctx context.Context, spec Spec) error

	// OutputFunc is called when Output is invoked.
	OutputFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPathFunc is called when LookPath is invoked. Nil means every
	// lookup succeeds with the name echoed back.
	LookPathFunc func(name string) (string, error)

	// Calls records all method invocations for verification.
	Calls []Call

	// mu protects Calls for concurrent access.
	mu sync.Mutex
}

// Call records a single method invocation.
type Call struct {
	Method string
	Name   string
	Args   []string
	Env    []string
}

// Run delegates to RunFunc and records the call.
func (m *MockProcessManager) Run(ctx context.Context, spec Spec) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{
		Method: "Run",
		Name:   spec.Name,
		Args:   spec.Args,
		Env:    spec.Env.ToSlice(),
	})
	m.mu.Unlock()
	if m.RunFunc == nil {
		panic("MockProcessManager.RunFunc not set")
	}
	return m.RunFunc(ctx, spec)
}

// Output delegates to OutputFunc and records the call.
func (m *MockProcessManager) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{
		Method: "Output",
		Name:   name,
		Args:   args,
	})
	m.mu.Unlock()
	if m.OutputFunc == nil {
		panic("MockProcessManager.OutputFunc not set")
	}
	return m.OutputFunc(ctx, name, args...)
}

// LookPath delegates to LookPathFunc and records the call.
func (m *MockProcessManager) LookPath(name string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{
		Method: "LookPath",
		Name:   name,
	})
	m.mu.Unlock()
	if m.LookPathFunc == nil {
		return name, nil
	}
	return m.LookPathFunc(name)
}

// Reset clears all recorded calls.
func (m *MockProcessManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// GetCalls returns a copy of all recorded calls.
func (m *MockProcessManager) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Call, len(m.Calls))
	copy(result, m.Calls)
	return result
}

// Ensure both implementations satisfy the interface.
var (
	_ ProcessManager = (*DefaultProcessManager)(nil)
	_ ProcessManager = (*MockProcessManager)(nil)
)
