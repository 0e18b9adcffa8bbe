// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/util"
)

// requireShell skips when no POSIX shell is available.
func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// -----------------------------------------------------------------------------
// Spec Tests
// -----------------------------------------------------------------------------

func TestSpec_String(t *testing.T) {
	tests := []struct {
		name     string
		spec     Spec
		expected string
	}{
		{"no args", Spec{Name: "huggingface-cli"}, "huggingface-cli"},
		{
			"with args",
			Spec{Name: "huggingface-cli", Args: []string{"download", "openai/clip"}},
			"huggingface-cli download openai/clip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// DefaultProcessManager Tests
// -----------------------------------------------------------------------------

func TestDefaultProcessManager_Run_Success(t *testing.T) {
	requireShell(t)
	pm := NewDefaultProcessManager()

	var stdout bytes.Buffer
	err := pm.Run(context.Background(), Spec{
		Name:   "sh",
		Args:   []string{"-c", "echo hello"},
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "hello" {
		t.Errorf("stdout = %q, want hello", got)
	}
}

func TestDefaultProcessManager_Run_Failure(t *testing.T) {
	requireShell(t)
	pm := NewDefaultProcessManager()

	err := pm.Run(context.Background(), Spec{
		Name:   "sh",
		Args:   []string{"-c", "echo oops >&2; exit 3"},
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("Run() expected error for non-zero exit")
	}

	var cmdErr *util.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() error = %T, want *util.CommandError", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	// The stderr tail is captured for diagnostics.
	if !strings.Contains(cmdErr.Stderr, "oops") {
		t.Errorf("Stderr = %q, want captured tail", cmdErr.Stderr)
	}
}

func TestDefaultProcessManager_Run_EnvOverrides(t *testing.T) {
	requireShell(t)
	pm := NewDefaultProcessManager()

	env := util.EmptyEnvVars()
	env.MustAdd("HUBFETCH_TEST_VAR", "42", false)

	var stdout bytes.Buffer
	err := pm.Run(context.Background(), Spec{
		Name:   "sh",
		Args:   []string{"-c", "echo $HUBFETCH_TEST_VAR"},
		Env:    env,
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "42" {
		t.Errorf("child env var = %q, want 42", got)
	}
}

func TestDefaultProcessManager_Run_ContextCancelled(t *testing.T) {
	requireShell(t)
	pm := NewDefaultProcessManager()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pm.Run(ctx, Spec{
		Name:   "sh",
		Args:   []string{"-c", "sleep 10"},
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("Run() expected error for cancelled context")
	}
}

func TestDefaultProcessManager_Output(t *testing.T) {
	requireShell(t)
	pm := NewDefaultProcessManager()

	out, err := pm.Output(context.Background(), "sh", "-c", "echo probe")
	if err != nil {
		t.Fatalf("Output() unexpected error: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "probe" {
		t.Errorf("Output() = %q, want probe", got)
	}
}

func TestDefaultProcessManager_Output_IncludesStderr(t *testing.T) {
	requireShell(t)
	pm := NewDefaultProcessManager()

	_, err := pm.Output(context.Background(), "sh", "-c", "echo broken >&2; exit 1")
	if err == nil {
		t.Fatal("Output() expected error")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("Output() error = %v, want stderr included", err)
	}
}

func TestDefaultProcessManager_LookPath(t *testing.T) {
	requireShell(t)
	pm := NewDefaultProcessManager()

	path, err := pm.LookPath("sh")
	if err != nil {
		t.Fatalf("LookPath() unexpected error: %v", err)
	}
	if path == "" {
		t.Error("LookPath() returned empty path")
	}

	if _, err := pm.LookPath("definitely-not-a-real-binary-xyz"); err == nil {
		t.Error("LookPath() expected error for missing binary")
	}
}

// -----------------------------------------------------------------------------
// MockProcessManager Tests
// -----------------------------------------------------------------------------

func TestMockProcessManager_RecordsCalls(t *testing.T) {
	mock := &MockProcessManager{
		RunFunc: func(ctx context.Context, spec Spec) error { return nil },
		OutputFunc: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("v0.26.0"), nil
		},
	}

	ctx := context.Background()
	env := util.EmptyEnvVars()
	env.MustAdd("HTTPS_PROXY", "http://proxy:8080", true)

	_ = mock.Run(ctx, Spec{Name: "huggingface-cli", Args: []string{"download", "m"}, Env: env})
	_, _ = mock.Output(ctx, "huggingface-cli", "version")
	_, _ = mock.LookPath("huggingface-cli")

	calls := mock.GetCalls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	if calls[0].Method != "Run" || calls[0].Name != "huggingface-cli" {
		t.Errorf("call[0] = %+v", calls[0])
	}
	if len(calls[0].Env) != 1 || calls[0].Env[0] != "HTTPS_PROXY=http://proxy:8080" {
		t.Errorf("call[0].Env = %v", calls[0].Env)
	}
	if calls[1].Method != "Output" || calls[1].Args[0] != "version" {
		t.Errorf("call[1] = %+v", calls[1])
	}
	if calls[2].Method != "LookPath" {
		t.Errorf("call[2] = %+v", calls[2])
	}
}

func TestMockProcessManager_LookPathDefault(t *testing.T) {
	mock := &MockProcessManager{}

	// Nil LookPathFunc echoes the name back as a successful lookup.
	path, err := mock.LookPath("huggingface-cli")
	if err != nil {
		t.Fatalf("LookPath() unexpected error: %v", err)
	}
	if path != "huggingface-cli" {
		t.Errorf("LookPath() = %q, want name echoed", path)
	}
}

func TestMockProcessManager_Reset(t *testing.T) {
	mock := &MockProcessManager{
		RunFunc: func(ctx context.Context, spec Spec) error { return nil },
	}
	_ = mock.Run(context.Background(), Spec{Name: "x"})
	mock.Reset()

	if len(mock.GetCalls()) != 0 {
		t.Error("Reset() should clear recorded calls")
	}
}

func TestMockProcessManager_PanicsOnNilRunFunc(t *testing.T) {
	mock := &MockProcessManager{}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when RunFunc is nil")
		}
	}()
	_ = mock.Run(context.Background(), Spec{Name: "x"})
}
