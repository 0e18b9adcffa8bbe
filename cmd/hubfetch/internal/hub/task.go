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
Package hub drives downloads of model repositories from the Hugging Face
Hub by shelling out to the huggingface-cli downloader.

The package owns command construction, scoped environment overrides
(proxy, transfer acceleration), and the bounded retry loop around each
download. Disk and network I/O belong entirely to the external process;
hub only tracks its exit status.
*/
package hub

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// =============================================================================
// Error Definitions
// =============================================================================

var (
	// ErrEmptyModel is returned when a task has no model identifier.
	ErrEmptyModel = errors.New("model identifier is empty")

	// ErrInvalidModel is returned when a model identifier contains
	// whitespace or path traversal.
	ErrInvalidModel = errors.New("invalid model identifier")

	// ErrExhausted is returned when a task failed every attempt in the
	// retry budget.
	ErrExhausted = errors.New("retry budget exhausted")
)

// hubBaseURL is the public hub page prefix, reported on failures so the
// operator can troubleshoot gated or renamed repositories manually.
const hubBaseURL = "https://huggingface.co"

// =============================================================================
// Task
// =============================================================================

// Task identifies one download: a model repository and, optionally, a
// single file within it.
//
// Tasks are created per line of a model list or per --model argument and
// consumed once by the Orchestrator. They carry no state of their own.
type Task struct {
	// Model is the repository identifier, usually "namespace/name"
	// ("bert-base-uncased" style bare names are also valid).
	Model string

	// File optionally restricts the download to a single file inside
	// the repository (e.g. "clip_l.safetensors"). Empty means the
	// whole repository.
	File string
}

// NewTask creates a validated Task.
func NewTask(model, file string) (Task, error) {
	t := Task{Model: strings.TrimSpace(model), File: strings.TrimSpace(file)}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Validate checks the model identifier.
//
// The hub accepts bare names and namespace/name pairs; anything with
// interior whitespace or ".." segments is rejected before it can reach
// the command line.
func (t Task) Validate() error {
	if t.Model == "" {
		return ErrEmptyModel
	}
	for _, r := range t.Model {
		if unicode.IsSpace(r) {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidModel, t.Model)
		}
	}
	for _, seg := range strings.Split(t.Model, "/") {
		if seg == "" || seg == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidModel, t.Model)
		}
	}
	return nil
}

// SafeName returns the model id with path separators flattened, used as
// the per-model directory name under both the temp cache and the output
// directory ("openai/clip" -> "openai-clip").
func (t Task) SafeName() string {
	return strings.ReplaceAll(t.Model, "/", "-")
}

// HubURL returns the model's public hub page.
func (t Task) HubURL() string {
	return hubBaseURL + "/" + t.Model
}

// String renders the task for logs and summaries.
func (t Task) String() string {
	if t.File != "" {
		return t.Model + " (" + t.File + ")"
	}
	return t.Model
}

// =============================================================================
// Attempt Tracking
// =============================================================================

// State tracks a task through the retry loop.
//
// Transitions: StatePending -> StateAttempting -> (StateSucceeded |
// StateAttempting | StateExhausted). StateSucceeded and StateExhausted
// are terminal.
type State int

const (
	// StatePending means the task has not been attempted yet.
	StatePending State = iota

	// StateAttempting means an invocation is in flight.
	StateAttempting

	// StateSucceeded means an invocation exited zero.
	StateSucceeded

	// StateExhausted means every attempt in the budget failed.
	StateExhausted
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends the retry loop.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateExhausted
}

// Attempt records one invocation of the downloader for a task.
// Attempts are ephemeral; they exist only inside a TaskResult.
type Attempt struct {
	// Number is the 1-based attempt index.
	Number int

	// Err is the invocation failure, nil on success.
	Err error
}

// TaskResult is the terminal outcome of running one task through the
// retry loop.
type TaskResult struct {
	// Task is the task that was run.
	Task Task

	// State is StateSucceeded or StateExhausted.
	State State

	// Attempts lists every invocation, in order.
	Attempts []Attempt

	// Err is the final failure wrapped with ErrExhausted, nil on success.
	Err error
}

// Succeeded reports whether the task completed.
func (r TaskResult) Succeeded() bool {
	return r.State == StateSucceeded
}
