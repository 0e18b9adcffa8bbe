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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hubfetch/pkg/ux"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// --- Global Command Variables ---
var (
	modelID          string // single model to download
	modelListPath    string // path to a batch model list file
	outputDir        string // CLI override for settings.output_dir
	proxyURL         string // CLI override for settings.proxy
	fileName         string // optional single file within the model repo
	retries          int    // attempt budget per task
	personalityLevel string // UX personality level (full/standard/minimal/machine)

	rootCmd = &cobra.Command{
		Use:   "hubfetch",
		Short: "A cli to download models from the Hugging Face hub",
		Long: `hubfetch wraps huggingface-cli with batch lists, bounded retries,
and a temp-cache promotion scheme that keeps partial downloads out
of your model directory.

Run with no arguments for an interactive session; pass --model or
--model_list for scripted use.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize UX personality from flag or environment
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}
		},
		RunE: runDownload, // Defined in cmd_download.go
	}

	// --- Config ---
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the stored hubfetch settings",
	}
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings",
		RunE:  runConfigShow, // Defined in cmd_config.go
	}
	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a stored setting (output_dir or proxy)",
		Args:  cobra.ExactArgs(2),
		RunE:  runConfigSet, // Defined in cmd_config.go
	}
	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the location of the settings file",
		RunE:  runConfigPath, // Defined in cmd_config.go
	}

	// --- Doctor ---
	doctorCmd = &cobra.Command{
		Use:   "doctor",
		Short: "Check that the downloader and optional accelerator are installed",
		RunE:  runDoctor, // Defined in cmd_doctor.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the hubfetch version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("hubfetch", version)
		},
	}
)

// init runs when the Go program starts
func init() {
	// Global UX personality flag
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full (default), standard, minimal, or machine (scripting)")

	rootCmd.Flags().StringVarP(&modelID, "model", "m", "",
		"Model ID to download (e.g. openai/whisper-large-v3)")
	rootCmd.Flags().StringVarP(&modelListPath, "model_list", "l", "",
		"Path to a model list file (one ID per line, or a YAML/JSON array)")
	rootCmd.Flags().StringVarP(&outputDir, "output_dir", "o", "",
		"Directory to place downloaded models in (overrides stored setting)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", "",
		"HTTP(S) proxy URL for the downloader (overrides stored setting)")
	rootCmd.Flags().StringVarP(&fileName, "file", "f", "",
		"Download a single file from the model repo instead of the whole repo")
	rootCmd.Flags().IntVarP(&retries, "retries", "r", 3,
		"Attempt budget per model (minimum 1)")
	rootCmd.MarkFlagsMutuallyExclusive("model", "model_list")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}
