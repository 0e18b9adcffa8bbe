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
Package cache owns the temporary download cache and its promotion into
the user-facing output directory.

# Invariant

The output directory never contains partial artifacts. Every download
lands in a per-model subdirectory of <output_dir>/__hf_tmp first;
completed files are moved across only after the downloader exits zero,
and anything carrying the incomplete marker is deleted instead of moved.
On failure, promotion is skipped entirely and the output directory is
untouched.
*/
package cache

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/hubfetch/pkg/logging"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// TempRootName is the cache directory created under the output
	// directory, shared by all tasks of a run.
	TempRootName = "__hf_tmp"

	// IncompleteSuffix marks partially downloaded files written by the
	// downloader. Such files are safe to delete and re-fetch.
	IncompleteSuffix = ".incomplete"

	// downloaderMetaDir is the internal bookkeeping directory
	// huggingface-cli maintains inside its --local-dir. It is never
	// promoted.
	downloaderMetaDir = ".cache"
)

// TempRoot returns the shared temp cache root for an output directory.
func TempRoot(outputDir string) string {
	return filepath.Join(outputDir, TempRootName)
}

// =============================================================================
// Promoter
// =============================================================================

// Promoter moves completed downloads from the temp cache to their final
// destination and cleans the cache up afterwards.
type Promoter struct {
	log *logging.Logger
}

// NewPromoter creates a Promoter.
func NewPromoter(log *logging.Logger) *Promoter {
	if log == nil {
		log = logging.Default()
	}
	return &Promoter{log: log}
}

// Promote moves completed files from tempDir into finalDir.
//
// Incomplete-marked files are deleted, the downloader's metadata
// directory is dropped, and everything else is moved preserving its
// relative path. Rename is attempted first; a copy fallback covers temp
// and output directories on different filesystems. Only call Promote
// after a successful invocation.
func (p *Promoter) Promote(tempDir, finalDir string) error {
	entries := 0
	err := filepath.WalkDir(tempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(tempDir, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if d.Name() == downloaderMetaDir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), IncompleteSuffix) {
			p.log.Warn("removing incomplete download", "file", rel)
			return os.Remove(path)
		}

		dest := filepath.Join(finalDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("create destination directory: %w", err)
		}
		if err := moveFile(path, dest); err != nil {
			return fmt.Errorf("promote %s: %w", rel, err)
		}
		entries++
		return nil
	})
	if err != nil {
		return err
	}

	p.log.Info("promoted download", "files", entries, "dest", finalDir)
	return nil
}

// Cleanup removes the shared temp cache root.
//
// Called once after all tasks in a run complete, regardless of
// individual success or failure, so failed batches don't leak disk.
func (p *Promoter) Cleanup(tmpRoot string) error {
	if tmpRoot == "" || filepath.Base(tmpRoot) != TempRootName {
		// Refuse to RemoveAll anything that isn't our own cache dir.
		return fmt.Errorf("refusing to clean %q: not a %s directory", tmpRoot, TempRootName)
	}
	return os.RemoveAll(tmpRoot)
}

// =============================================================================
// Verification
// =============================================================================

// Stats summarizes an on-disk model directory after promotion.
type Stats struct {
	// Files is the count of regular files.
	Files int

	// TotalBytes is the summed file size.
	TotalBytes int64

	// Incomplete lists any files still carrying the incomplete marker.
	// Non-empty means the download should be retried.
	Incomplete []string
}

// TotalMB returns the total size in mebibytes for display.
func (s Stats) TotalMB() float64 {
	return float64(s.TotalBytes) / 1024 / 1024
}

// Verify walks a directory and reports file count, total size, and any
// leftover incomplete markers.
func Verify(dir string) (Stats, error) {
	var stats Stats
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		stats.Files++
		stats.TotalBytes += info.Size()
		if strings.HasSuffix(d.Name(), IncompleteSuffix) {
			rel, _ := filepath.Rel(dir, path)
			stats.Incomplete = append(stats.Incomplete, rel)
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// =============================================================================
// Helpers
// =============================================================================

// moveFile renames src to dest, falling back to copy+remove when the
// rename fails (typically EXDEV: temp cache and output directory on
// different filesystems).
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
