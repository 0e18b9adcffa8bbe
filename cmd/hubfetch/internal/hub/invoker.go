// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hub

import (
	"context"
	"io"

	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/process"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/util"
	"github.com/AleutianAI/hubfetch/pkg/logging"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultCLI is the downloader binary invoked for every task.
	DefaultCLI = "huggingface-cli"

	// acceleratorEnvKey enables the hf_transfer accelerated download
	// path inside the downloader. Best-effort: when the accelerator is
	// not installed the variable is simply omitted.
	acceleratorEnvKey = "HF_HUB_ENABLE_HF_TRANSFER"

	httpProxyEnvKey  = "HTTP_PROXY"
	httpsProxyEnvKey = "HTTPS_PROXY"
)

// =============================================================================
// Invoker
// =============================================================================

// InvokeOptions carries the per-invocation settings the Orchestrator
// resolved from config, CLI flags, and system checks.
type InvokeOptions struct {
	// LocalDir is the directory the downloader writes into. Always a
	// per-model subdirectory of the temp cache, never the final output
	// directory.
	LocalDir string

	// Proxy is applied as HTTP_PROXY/HTTPS_PROXY for the child process
	// only. Empty means direct connection.
	Proxy string

	// Accelerate enables the hf_transfer environment toggle. Callers
	// set it from SystemChecker's accelerator probe.
	Accelerate bool

	// CLIPath overrides the downloader binary. Empty means DefaultCLI
	// resolved via PATH.
	CLIPath string

	// Stdout and Stderr override the pass-through streams. Nil means
	// the process inherits the terminal (tests inject buffers).
	Stdout io.Writer
	Stderr io.Writer
}

// Invoker runs the external downloader for a single task.
//
// Implementations block until the external process exits and report
// success or failure from its exit status alone; progress output passes
// through untouched.
type Invoker interface {
	Invoke(ctx context.Context, task Task, opts InvokeOptions) error
}

// CLIInvoker is the production Invoker shelling out to huggingface-cli.
type CLIInvoker struct {
	proc process.ProcessManager
	log  *logging.Logger
}

// NewCLIInvoker creates an Invoker backed by the given process manager.
func NewCLIInvoker(proc process.ProcessManager, log *logging.Logger) *CLIInvoker {
	if log == nil {
		log = logging.Default()
	}
	return &CLIInvoker{proc: proc, log: log}
}

// Invoke builds and runs the download command for one task.
//
// Command shape:
//
//	huggingface-cli download <model> [file] \
//	    --local-dir <tempdir> --local-dir-use-symlinks False --resume-download
//
// The child environment is the parent environment plus the proxy
// variables (when a proxy is configured) and the accelerator toggle
// (when hf_transfer was detected). Proxy values are redacted in logs;
// URLs may embed credentials.
func (i *CLIInvoker) Invoke(ctx context.Context, task Task, opts InvokeOptions) error {
	if err := task.Validate(); err != nil {
		return err
	}

	args := []string{"download", task.Model}
	if task.File != "" {
		args = append(args, task.File)
	}
	args = append(args,
		"--local-dir", opts.LocalDir,
		"--local-dir-use-symlinks", "False",
		"--resume-download",
	)

	env := util.EmptyEnvVars()
	if opts.Accelerate {
		env.MustAdd(acceleratorEnvKey, "1", false)
	}
	if opts.Proxy != "" {
		env.MustAdd(httpProxyEnvKey, opts.Proxy, true)
		env.MustAdd(httpsProxyEnvKey, opts.Proxy, true)
	}

	cli := opts.CLIPath
	if cli == "" {
		cli = DefaultCLI
	}

	i.log.Debug("invoking downloader",
		"model", task.Model,
		"file", task.File,
		"local_dir", opts.LocalDir,
		"env", env.RedactedSlice(),
	)

	return i.proc.Run(ctx, process.Spec{
		Name:   cli,
		Args:   args,
		Env:    env,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
}

var _ Invoker = (*CLIInvoker)(nil)
