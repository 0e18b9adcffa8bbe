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
Package main: UserPrompter abstracts user interaction for confirmation
and selection prompts.

# Description

The interactive session needs to ask the user questions (which model,
where to put it, keep these settings?). Scripted runs must never block
on a prompt. UserPrompter separates the two: InteractivePrompter reads
answers from a terminal, NonInteractivePrompter fails fast with
ErrNonInteractive, AutoApprovePrompter takes every default, and
MockPrompter records calls for tests.

# Example

	prompter := NewInteractivePrompter()
	ok, err := prompter.Confirm(ctx, "Save these settings?")

# Limitations

  - InteractivePrompter reads line-oriented input; it does not handle
    raw terminal editing (the huh form path covers rich TTY input).
*/
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNonInteractive is returned when a prompt is attempted in a
	// non-interactive run.
	ErrNonInteractive = errors.New("prompt attempted in non-interactive mode")

	// ErrCancelled is returned when the user aborts a prompt.
	ErrCancelled = errors.New("prompt cancelled by user")

	// ErrInvalidSelection is returned when a selection is out of range.
	ErrInvalidSelection = errors.New("invalid selection")
)

// =============================================================================
// Interface
// =============================================================================

// UserPrompter asks the user questions during an interactive session.
type UserPrompter interface {
	// Confirm asks a yes/no question. The default is no.
	Confirm(ctx context.Context, prompt string) (bool, error)

	// Select asks the user to pick one of options, returning its index.
	Select(ctx context.Context, prompt string, options []string) (int, error)

	// Input asks for a free-form string, returning defaultValue when
	// the user just presses enter.
	Input(ctx context.Context, prompt, defaultValue string) (string, error)

	// IsInteractive reports whether this prompter can actually ask.
	IsInteractive() bool
}

// =============================================================================
// InteractivePrompter
// =============================================================================

// InteractivePrompter reads answers from a reader (stdin in production).
type InteractivePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewInteractivePrompter creates a prompter on stdin/stdout.
func NewInteractivePrompter() *InteractivePrompter {
	return NewInteractivePrompterWithIO(os.Stdin, os.Stdout)
}

// NewInteractivePrompterWithIO creates a prompter with injected streams.
func NewInteractivePrompterWithIO(reader io.Reader, writer io.Writer) *InteractivePrompter {
	return &InteractivePrompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Confirm asks a yes/no question. Only y/yes (any case) count as yes;
// everything else, including EOF, is no.
func (p *InteractivePrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(p.writer, "%s [y/N]: ", prompt)

	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Select displays numbered options and reads a 1-based choice.
func (p *InteractivePrompter) Select(ctx context.Context, prompt string, options []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(options) == 0 {
		return 0, fmt.Errorf("%w: no options", ErrInvalidSelection)
	}

	fmt.Fprintln(p.writer, prompt)
	for i, opt := range options {
		fmt.Fprintf(p.writer, "  %d. %s\n", i+1, opt)
	}
	fmt.Fprintf(p.writer, "Choice [1-%d]: ", len(options))

	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("read selection: %w", err)
	}

	choice, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil || choice < 1 || choice > len(options) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelection, strings.TrimSpace(line))
	}
	return choice - 1, nil
}

// Input reads a line, substituting defaultValue for an empty answer.
func (p *InteractivePrompter) Input(ctx context.Context, prompt, defaultValue string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if defaultValue != "" {
		fmt.Fprintf(p.writer, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(p.writer, "%s: ", prompt)
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read input: %w", err)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// IsInteractive returns true.
func (p *InteractivePrompter) IsInteractive() bool {
	return true
}

// =============================================================================
// NonInteractivePrompter
// =============================================================================

// NonInteractivePrompter rejects every prompt. Used when stdin is not a
// terminal so scripted runs fail loudly instead of hanging.
type NonInteractivePrompter struct{}

// NewNonInteractivePrompter creates a prompter that always refuses.
func NewNonInteractivePrompter() *NonInteractivePrompter {
	return &NonInteractivePrompter{}
}

func (p *NonInteractivePrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	return false, fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
}

func (p *NonInteractivePrompter) Select(ctx context.Context, prompt string, options []string) (int, error) {
	return 0, fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
}

func (p *NonInteractivePrompter) Input(ctx context.Context, prompt, defaultValue string) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
}

// IsInteractive returns false.
func (p *NonInteractivePrompter) IsInteractive() bool {
	return false
}

// =============================================================================
// AutoApprovePrompter
// =============================================================================

// AutoApprovePrompter answers yes to every confirmation and takes the
// first option / default value everywhere else.
type AutoApprovePrompter struct{}

// NewAutoApprovePrompter creates an auto-approving prompter.
func NewAutoApprovePrompter() *AutoApprovePrompter {
	return &AutoApprovePrompter{}
}

func (p *AutoApprovePrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	return true, nil
}

func (p *AutoApprovePrompter) Select(ctx context.Context, prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("%w: no options", ErrInvalidSelection)
	}
	return 0, nil
}

func (p *AutoApprovePrompter) Input(ctx context.Context, prompt, defaultValue string) (string, error) {
	return defaultValue, nil
}

// IsInteractive returns false.
func (p *AutoApprovePrompter) IsInteractive() bool {
	return false
}

// =============================================================================
// MockPrompter
// =============================================================================

// PrompterCall records one prompt for test assertions.
type PrompterCall struct {
	Method  string
	Prompt  string
	Options []string
}

// MockPrompter is a test double with injectable behavior.
type MockPrompter struct {
	ConfirmFunc       func(ctx context.Context, prompt string) (bool, error)
	SelectFunc        func(ctx context.Context, prompt string, options []string) (int, error)
	InputFunc         func(ctx context.Context, prompt, defaultValue string) (string, error)
	IsInteractiveFunc func() bool

	mu    sync.Mutex
	Calls []PrompterCall
}

func (m *MockPrompter) record(call PrompterCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockPrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	m.record(PrompterCall{Method: "Confirm", Prompt: prompt})
	if m.ConfirmFunc == nil {
		panic("MockPrompter.Confirm called without ConfirmFunc")
	}
	return m.ConfirmFunc(ctx, prompt)
}

func (m *MockPrompter) Select(ctx context.Context, prompt string, options []string) (int, error) {
	m.record(PrompterCall{Method: "Select", Prompt: prompt, Options: options})
	if m.SelectFunc == nil {
		panic("MockPrompter.Select called without SelectFunc")
	}
	return m.SelectFunc(ctx, prompt, options)
}

func (m *MockPrompter) Input(ctx context.Context, prompt, defaultValue string) (string, error) {
	m.record(PrompterCall{Method: "Input", Prompt: prompt})
	if m.InputFunc == nil {
		panic("MockPrompter.Input called without InputFunc")
	}
	return m.InputFunc(ctx, prompt, defaultValue)
}

func (m *MockPrompter) IsInteractive() bool {
	if m.IsInteractiveFunc != nil {
		return m.IsInteractiveFunc()
	}
	return true
}

// Reset clears the recorded calls.
func (m *MockPrompter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// Compile-time interface checks.
var (
	_ UserPrompter = (*InteractivePrompter)(nil)
	_ UserPrompter = (*NonInteractivePrompter)(nil)
	_ UserPrompter = (*AutoApprovePrompter)(nil)
	_ UserPrompter = (*MockPrompter)(nil)
)
