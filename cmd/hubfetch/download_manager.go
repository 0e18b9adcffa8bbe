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
Package main: DownloadManager drives one model through the full
download pipeline.

# Description

For each task the manager stages the download in a per-model temp
directory, runs the retried downloader invocation, and only on success
promotes the files into the final output directory:

	<output_dir>/
	├── __hf_tmp/                  (staging, removed after the run)
	│   └── org-model/             (downloader writes here)
	└── org-model/                 (appears only after success)

A failed task leaves the output directory untouched.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/cache"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/hub"
	"github.com/AleutianAI/hubfetch/pkg/logging"
)

// DownloadRequest carries the resolved settings for one task.
type DownloadRequest struct {
	Task hub.Task

	// OutputDir is the final destination root. The model lands in
	// OutputDir/<safe-name>.
	OutputDir string

	// Proxy is passed through to the downloader's environment.
	Proxy string

	// Accelerate toggles the hf_transfer fast path.
	Accelerate bool
}

// DownloadOutcome is the terminal state of one task.
type DownloadOutcome struct {
	Result hub.TaskResult

	// Stats describes the promoted directory. Only populated on success.
	Stats cache.Stats

	// FinalDir is where the model was placed. Only populated on success.
	FinalDir string

	// Err is the first error on the failure path: retry exhaustion,
	// staging setup, or promotion.
	Err error
}

// Succeeded reports whether the model is fully in place.
func (o DownloadOutcome) Succeeded() bool {
	return o.Err == nil
}

// DownloadManager composes the retry orchestrator and the cache
// promoter into the per-task pipeline.
type DownloadManager struct {
	orch     *hub.Orchestrator
	promoter *cache.Promoter
	log      *logging.Logger
}

// NewDownloadManager creates a DownloadManager.
func NewDownloadManager(orch *hub.Orchestrator, promoter *cache.Promoter, log *logging.Logger) *DownloadManager {
	if log == nil {
		log = logging.Default()
	}
	return &DownloadManager{orch: orch, promoter: promoter, log: log}
}

// Download drives one task to completion.
func (m *DownloadManager) Download(ctx context.Context, req DownloadRequest) DownloadOutcome {
	outcome := DownloadOutcome{}

	safeName := req.Task.SafeName()
	tempDir := filepath.Join(cache.TempRoot(req.OutputDir), safeName)
	finalDir := filepath.Join(req.OutputDir, safeName)

	if err := os.MkdirAll(tempDir, 0755); err != nil {
		outcome.Err = fmt.Errorf("create staging directory: %w", err)
		outcome.Result = hub.TaskResult{Task: req.Task, State: hub.StateExhausted, Err: outcome.Err}
		return outcome
	}

	outcome.Result = m.orch.Run(ctx, req.Task, hub.InvokeOptions{
		LocalDir:   tempDir,
		Proxy:      req.Proxy,
		Accelerate: req.Accelerate,
	})
	if !outcome.Result.Succeeded() {
		outcome.Err = outcome.Result.Err
		return outcome
	}

	if err := m.promoter.Promote(tempDir, finalDir); err != nil {
		outcome.Err = fmt.Errorf("promote %s: %w", req.Task.Model, err)
		return outcome
	}
	// Staging leftovers for this model are gone after promotion.
	if err := os.RemoveAll(tempDir); err != nil {
		m.log.Warn("could not remove staging directory", "dir", tempDir, "error", err.Error())
	}

	stats, err := cache.Verify(finalDir)
	if err != nil {
		m.log.Warn("could not verify promoted directory", "dir", finalDir, "error", err.Error())
	} else {
		outcome.Stats = stats
		if len(stats.Incomplete) > 0 {
			outcome.Err = fmt.Errorf("%d incomplete file(s) remain in %s", len(stats.Incomplete), finalDir)
			return outcome
		}
	}

	outcome.FinalDir = finalDir
	return outcome
}

// Cleanup removes the shared staging root for an output directory.
func (m *DownloadManager) Cleanup(outputDir string) {
	tmpRoot := cache.TempRoot(outputDir)
	if _, err := os.Stat(tmpRoot); os.IsNotExist(err) {
		return
	}
	if err := m.promoter.Cleanup(tmpRoot); err != nil {
		m.log.Warn("could not clean staging root", "dir", tmpRoot, "error", err.Error())
	}
}
