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
Package infra provides pre-flight system checks for the hubfetch CLI.

# Problem Statement

hubfetch is only a front-end: the actual downloading is done by
huggingface-cli, optionally accelerated by the hf_transfer package.
Without early validation, a missing downloader surfaces as a cryptic
exec error in the middle of a batch.

SystemChecker validates the environment up front:

 1. huggingface-cli must be on PATH (hard requirement)
 2. hf_transfer should be importable (best-effort; its absence only
    means baseline download speed)

The checks back the `hubfetch doctor` command and decide whether the
accelerator environment toggle is set for download invocations.
*/
package infra

import (
	"context"
	"strings"

	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/hub"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/process"
)

// =============================================================================
// Check Results
// =============================================================================

// CheckResult is the outcome of a single system check.
type CheckResult struct {
	// Name identifies the check ("downloader", "accelerator").
	Name string

	// OK is true when the requirement is satisfied.
	OK bool

	// Detail is a human-readable status line (resolved path, version).
	Detail string

	// Remedy suggests a fix when OK is false.
	Remedy string
}

// =============================================================================
// SystemChecker
// =============================================================================

// SystemChecker probes the host for the external downloader and the
// optional transfer accelerator.
type SystemChecker struct {
	proc process.ProcessManager
}

// NewSystemChecker creates a SystemChecker.
func NewSystemChecker(proc process.ProcessManager) *SystemChecker {
	return &SystemChecker{proc: proc}
}

// CheckCLI verifies huggingface-cli is installed.
//
// Detail carries the resolved path and, when the probe answers, the
// reported version.
func (c *SystemChecker) CheckCLI(ctx context.Context) CheckResult {
	result := CheckResult{Name: "downloader"}

	path, err := c.proc.LookPath(hub.DefaultCLI)
	if err != nil {
		result.Detail = hub.DefaultCLI + " not found on PATH"
		result.Remedy = "pip install -U huggingface_hub"
		return result
	}
	result.OK = true
	result.Detail = path

	// Version probe is informational only; older releases without the
	// subcommand still download fine.
	if out, err := c.proc.Output(ctx, hub.DefaultCLI, "version"); err == nil {
		if v := strings.TrimSpace(string(out)); v != "" {
			result.Detail = path + " (" + v + ")"
		}
	}
	return result
}

// CheckAccelerator probes for the hf_transfer package.
//
// hf_transfer lives in the downloader's Python environment, so the
// probe is an import check. Any failure (no python3, package missing)
// just means baseline speed.
func (c *SystemChecker) CheckAccelerator(ctx context.Context) CheckResult {
	result := CheckResult{Name: "accelerator"}

	if _, err := c.proc.Output(ctx, "python3", "-c", "import hf_transfer"); err != nil {
		result.Detail = "hf_transfer not available; downloads run at baseline speed"
		result.Remedy = "pip install hf_transfer"
		return result
	}
	result.OK = true
	result.Detail = "hf_transfer available, accelerated downloads enabled"
	return result
}

// AcceleratorAvailable is a convenience wrapper for download setup.
func (c *SystemChecker) AcceleratorAvailable(ctx context.Context) bool {
	return c.CheckAccelerator(ctx).OK
}

// CheckAll runs every check in order.
func (c *SystemChecker) CheckAll(ctx context.Context) []CheckResult {
	return []CheckResult{
		c.CheckCLI(ctx),
		c.CheckAccelerator(ctx),
	}
}
