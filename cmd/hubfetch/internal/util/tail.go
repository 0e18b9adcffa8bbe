// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package util

import (
	"bytes"
	"strings"
	"sync"
)

// =============================================================================
// LineTail Type
// =============================================================================

// LineTail is an io.Writer that retains only the last N lines written.
//
// # Description
//
// The downloader can emit megabytes of progress output on stderr. The
// terminal gets all of it (pass-through), but errors only need the last
// few lines for diagnostics. LineTail keeps a fixed-capacity ring of
// complete lines; when full, the oldest line is dropped.
//
// # Thread Safety
//
// LineTail is safe for concurrent use. exec.Cmd may write from its own
// goroutine while the caller reads String() after Wait returns.
//
// # Example
//
//	tail := NewLineTail(20)
//	cmd.Stderr = io.MultiWriter(os.Stderr, tail)
//	_ = cmd.Run()
//	fmt.Println(tail.String()) // last 20 stderr lines
type LineTail struct {
	mu       sync.Mutex
	capacity int
	lines    []string
	partial  bytes.Buffer
}

// NewLineTail creates a LineTail keeping up to capacity lines.
//
// Panics if capacity <= 0.
func NewLineTail(capacity int) *LineTail {
	if capacity <= 0 {
		panic("line tail capacity must be positive")
	}
	return &LineTail{capacity: capacity}
}

// Write implements io.Writer. It never fails.
func (t *LineTail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.partial.Write(p)
	for {
		raw := t.partial.Bytes()
		idx := bytes.IndexByte(raw, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(raw[:idx]), "\r")
		t.partial.Next(idx + 1)
		t.push(line)
	}
	return len(p), nil
}

// push appends a line, dropping the oldest when at capacity.
func (t *LineTail) push(line string) {
	if len(t.lines) == t.capacity {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.capacity-1]
	}
	t.lines = append(t.lines, line)
}

// Lines returns a copy of the retained lines, oldest first.
// An unterminated trailing line is included.
func (t *LineTail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]string, len(t.lines), len(t.lines)+1)
	copy(result, t.lines)
	if t.partial.Len() > 0 {
		result = append(result, strings.TrimRight(t.partial.String(), "\r"))
	}
	return result
}

// String returns the retained lines joined with newlines.
func (t *LineTail) String() string {
	return strings.Join(t.Lines(), "\n")
}
