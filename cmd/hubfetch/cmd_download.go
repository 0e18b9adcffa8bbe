// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/hubfetch/cmd/hubfetch/config"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/cache"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/hub"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/infra"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/modellist"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/process"
	"github.com/AleutianAI/hubfetch/pkg/logging"
	"github.com/AleutianAI/hubfetch/pkg/ux"
)

// defaultOutputDir is used when neither the stored settings nor the
// flags name a destination.
const defaultOutputDir = "models"

// retryDelay separates attempts on the same model.
const retryDelay = 2 * time.Second

func runDownload(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	settings := store.Load().Merge(config.Overrides{
		OutputDir: outputDir,
		Proxy:     proxyURL,
	})

	log := newRunLogger()
	defer log.Close()

	// One run ID ties together all log lines of a batch.
	runID := uuid.NewString()
	runLog := log.With("run_id", runID)

	proc := process.NewDefaultProcessManager()
	checker := infra.NewSystemChecker(proc)

	// The downloader is mandatory; the accelerator is best effort.
	spin := ux.NewSpinner("Checking downloader")
	spin.Start()
	cliCheck := checker.CheckCLI(ctx)
	if !cliCheck.OK {
		spin.StopWithError(cliCheck.Detail)
		ux.Muted("Remedy: " + cliCheck.Remedy)
		return fmt.Errorf("%s not found", hub.DefaultCLI)
	}
	spin.UpdateMessage("Probing transfer accelerator")
	accelerate := checker.AcceleratorAvailable(ctx)
	spin.Stop()
	if !accelerate && ux.GetPersonality().ShowTips {
		ux.Muted("Tip: pip install hf_transfer for faster downloads")
	}

	// Assemble the task list from the flags or an interactive session.
	var tasks []hub.Task
	switch {
	case modelListPath != "":
		tasks, err = modellist.Load(modelListPath)
		if err != nil {
			return fmt.Errorf("load model list %s: %w", modelListPath, err)
		}
	case modelID != "":
		task, taskErr := hub.NewTask(modelID, fileName)
		if taskErr != nil {
			return taskErr
		}
		tasks = []hub.Task{task}
	default:
		tasks, settings, err = runInteractiveSession(ctx, store, settings)
		if err != nil {
			return err
		}
	}

	if settings.OutputDir == "" {
		settings.OutputDir = defaultOutputDir
	}

	runLog.Info("starting batch",
		"models", len(tasks),
		"output_dir", settings.OutputDir,
		"retries", retries,
		"accelerate", accelerate,
	)
	printPlan(tasks, settings, accelerate)

	orch := hub.NewOrchestrator(
		hub.NewCLIInvoker(proc, runLog),
		hub.Policy{MaxAttempts: retries, Delay: retryDelay},
		runLog,
	)
	manager := NewDownloadManager(orch, cache.NewPromoter(runLog), runLog)
	defer manager.Cleanup(settings.OutputDir)

	succeeded := 0
	for i, task := range tasks {
		if ctx.Err() != nil {
			ux.Warning("interrupted, skipping remaining models")
			break
		}
		ux.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(tasks), task.String()))

		outcome := manager.Download(ctx, DownloadRequest{
			Task:       task,
			OutputDir:  settings.OutputDir,
			Proxy:      settings.Proxy,
			Accelerate: accelerate,
		})
		if outcome.Succeeded() {
			succeeded++
			ux.TaskStatus(task.Model, ux.IconSuccess,
				fmt.Sprintf("%d files, %.1f MB", outcome.Stats.Files, outcome.Stats.TotalMB()))
		} else {
			ux.TaskStatus(task.Model, ux.IconError, outcome.Err.Error())
		}
	}

	failed := len(tasks) - succeeded
	ux.Summary(succeeded, failed, len(tasks))
	runLog.Info("batch finished", "succeeded", succeeded, "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d download(s) failed", failed, len(tasks))
	}
	return nil
}

// openStore resolves the settings file location.
func openStore() (*config.Store, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}
	return config.NewStore(path), nil
}

// newRunLogger builds the file-backed logger for a download run. Log
// files land next to the settings under ~/.hubfetch.
func newRunLogger() *logging.Logger {
	level := logging.LevelInfo
	if os.Getenv("HUBFETCH_DEBUG") != "" {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{
		Level:   level,
		LogDir:  "~/.hubfetch/logs",
		Service: "cli",
		Quiet:   true, // terminal output goes through ux, not slog
	})
}

// printPlan shows the resolved settings before the batch starts.
func printPlan(tasks []hub.Task, settings config.Settings, accelerate bool) {
	var b strings.Builder
	if len(tasks) == 1 {
		fmt.Fprintf(&b, "Model:      %s\n", tasks[0].String())
	} else {
		fmt.Fprintf(&b, "Models:     %d\n", len(tasks))
	}
	fmt.Fprintf(&b, "Output dir: %s\n", settings.OutputDir)
	if settings.Proxy != "" {
		fmt.Fprintf(&b, "Proxy:      configured\n")
	}
	fmt.Fprintf(&b, "Retries:    %d\n", retries)
	fmt.Fprintf(&b, "Accelerated: %v", accelerate)
	ux.Box("Download plan", b.String())
}
