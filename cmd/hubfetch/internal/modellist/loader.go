// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package modellist parses batch download lists into ordered tasks.
//
// Two formats are supported: plain text (one model id per non-empty
// line) and structured YAML/JSON (a sequence of model id strings).
// Parse failures are fatal for batch mode, so every error wraps
// ErrParse for the CLI to detect before any download starts.
package modellist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/hub"
)

// ErrParse is returned for an absent, malformed, or empty model list.
var ErrParse = errors.New("model list parse error")

// Load reads a model list file and returns its tasks in file order.
//
// Extension selects the format: .yaml/.yml/.json parse as a sequence of
// strings, everything else (including no extension) as plain text. A
// list that yields zero tasks is an error; batch mode with nothing to
// do is always a mistake.
func Load(path string) ([]hub.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var ids []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		// yaml.v3 parses JSON as well; both formats share the
		// "sequence of strings" shape.
		if err := yaml.Unmarshal(data, &ids); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
		}
	default:
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			ids = append(ids, line)
		}
	}

	tasks := make([]hub.Task, 0, len(ids))
	for i, id := range ids {
		task, err := hub.NewTask(id, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %s entry %d: %v", ErrParse, path, i+1, err)
		}
		tasks = append(tasks, task)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: %s contains no model ids", ErrParse, path)
	}
	return tasks, nil
}
