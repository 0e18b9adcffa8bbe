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
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/infra"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/process"
	"github.com/AleutianAI/hubfetch/pkg/ux"
)

func runDoctor(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := infra.NewSystemChecker(process.NewDefaultProcessManager())
	spin := ux.NewSpinner("Probing environment").WithType(ux.SpinnerPulse)
	spin.Start()
	results := checker.CheckAll(ctx)
	spin.Stop()

	ux.Title("hubfetch doctor")
	required := 0
	for _, res := range results {
		if res.OK {
			ux.TaskStatus(res.Name, ux.IconSuccess, res.Detail)
			continue
		}
		// Only the downloader itself is required; the accelerator is
		// an optional speedup.
		if res.Name == "downloader" {
			required++
			ux.TaskStatus(res.Name, ux.IconError, res.Detail)
		} else {
			ux.TaskStatus(res.Name, ux.IconWarning, res.Detail)
		}
		ux.Muted("  remedy: " + res.Remedy)
	}

	if required > 0 {
		return fmt.Errorf("%d required check(s) failed", required)
	}
	return nil
}
