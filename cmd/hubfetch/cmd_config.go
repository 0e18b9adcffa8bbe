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

func runConfigShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := openStore()
	if err != nil {
		return err
	}
	settings := store.Load()

	dir := settings.OutputDir
	if dir == "" {
		dir = fmt.Sprintf("(unset, defaults to %q)", defaultOutputDir)
	}
	proxy := settings.Proxy
	if proxy == "" {
		proxy = "(unset, direct connection)"
	}

	ux.Box("Stored settings",
		fmt.Sprintf("output_dir: %s\nproxy:      %s\npath:       %s", dir, proxy, store.Path()))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key, value := args[0], args[1]

	store, err := openStore()
	if err != nil {
		return err
	}
	settings := store.Load()

	switch key {
	case "output_dir":
		settings.OutputDir = value
	case "proxy":
		settings.Proxy = value
	default:
		return fmt.Errorf("unknown setting %q (valid: output_dir, proxy)", key)
	}

	if err := store.Save(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	ux.Success(fmt.Sprintf("%s set", key))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	fmt.Println(store.Path())
	return nil
}
