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
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/AleutianAI/hubfetch/cmd/hubfetch/config"
	"github.com/AleutianAI/hubfetch/cmd/hubfetch/internal/hub"
	"github.com/AleutianAI/hubfetch/pkg/ux"
)

// runInteractiveSession collects a download task and settings from the
// user. Stored settings pre-fill the answers; the user decides at the
// end whether the session's answers become the new stored settings.
//
// On a real terminal the session is a huh form; otherwise it falls back
// to plain line prompts so piped input still works.
func runInteractiveSession(ctx context.Context, store *config.Store, settings config.Settings) ([]hub.Task, config.Settings, error) {
	if ux.IsInteractive() {
		return runFormSession(ctx, store, settings)
	}
	prompter := NewInteractivePrompterWithIO(os.Stdin, os.Stdout)
	return runPromptSession(ctx, prompter, store, settings)
}

// runFormSession is the rich-terminal path.
func runFormSession(ctx context.Context, store *config.Store, settings config.Settings) ([]hub.Task, config.Settings, error) {
	model := ""
	file := ""
	outDir := settings.OutputDir
	if outDir == "" {
		outDir = defaultOutputDir
	}
	proxy := settings.Proxy
	save := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Model ID").
				Description("Repository on the hub, e.g. openai/whisper-large-v3").
				Value(&model).
				Validate(validateModelID),
			huh.NewInput().
				Title("Output directory").
				Value(&outDir),
			huh.NewInput().
				Title("Proxy URL (optional)").
				Value(&proxy),
			huh.NewInput().
				Title("Single file (optional)").
				Description("Leave empty to download the whole repository").
				Value(&file),
			huh.NewConfirm().
				Title("Remember output directory and proxy?").
				Value(&save),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return nil, settings, fmt.Errorf("interactive session: %w", err)
	}

	return finishSession(store, settings, model, file, outDir, proxy, save)
}

// runPromptSession is the line-oriented fallback, also used by tests.
func runPromptSession(ctx context.Context, prompter UserPrompter, store *config.Store, settings config.Settings) ([]hub.Task, config.Settings, error) {
	defaultDir := settings.OutputDir
	if defaultDir == "" {
		defaultDir = defaultOutputDir
	}

	model, err := promptModelID(ctx, prompter)
	if err != nil {
		return nil, settings, err
	}
	outDir, err := prompter.Input(ctx, "Output directory", defaultDir)
	if err != nil {
		return nil, settings, err
	}
	proxy, err := prompter.Input(ctx, "Proxy URL (empty for direct)", settings.Proxy)
	if err != nil {
		return nil, settings, err
	}
	file, err := prompter.Input(ctx, "Single file (empty for whole repo)", "")
	if err != nil {
		return nil, settings, err
	}
	save, err := prompter.Confirm(ctx, "Remember output directory and proxy?")
	if err != nil {
		return nil, settings, err
	}

	return finishSession(store, settings, model, file, outDir, proxy, save)
}

// maxModelIDPrompts bounds the re-prompt loop; a closed stdin reads as
// an endless stream of empty answers otherwise.
const maxModelIDPrompts = 3

// promptModelID asks for a model id, asking again on an empty answer.
func promptModelID(ctx context.Context, prompter UserPrompter) (string, error) {
	for i := 0; i < maxModelIDPrompts; i++ {
		answer, err := prompter.Input(ctx, "Model ID", "")
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			ux.Warning("A model ID is required.")
			continue
		}
		if err := validateModelID(answer); err != nil {
			return "", err
		}
		return answer, nil
	}
	return "", hub.ErrEmptyModel
}

// finishSession builds the task and persists the settings if asked.
// Settings are only ever written from an interactive session.
func finishSession(store *config.Store, settings config.Settings, model, file, outDir, proxy string, save bool) ([]hub.Task, config.Settings, error) {
	task, err := hub.NewTask(model, file)
	if err != nil {
		return nil, settings, err
	}

	settings.OutputDir = strings.TrimSpace(outDir)
	settings.Proxy = strings.TrimSpace(proxy)

	if save {
		if err := store.Save(settings); err != nil {
			// Not fatal: the download can still proceed.
			ux.Warning(fmt.Sprintf("could not save settings: %v", err))
		} else {
			ux.Muted("Settings saved to " + store.Path())
		}
	}

	return []hub.Task{task}, settings, nil
}

// validateModelID rejects inputs that can't name a hub repository.
func validateModelID(s string) error {
	_, err := hub.NewTask(s, "")
	return err
}
