// SPDX-License-Identifier: MIT

//go:build windows

package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kryptoslab/kryptos/internal/store"
)

// WriteReport exports a finished job as <dir>/<id>.json using temp file +
// rename. Windows doesn't support atomic rename with fsync like Unix.
func WriteReport(_ context.Context, dir string, job *store.Job) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, job.ID+".json")

	tmpFile, err := os.CreateTemp(dir, ".kryptos-report-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	enc := json.NewEncoder(tmpFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(job); err != nil {
		return fmt.Errorf("write report data: %w", err)
	}

	// Close before rename (Windows requires this)
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp report file: %w", err)
	}
	tmpFile = nil // Prevent double close in defer

	// Rename temp file to target (best-effort atomic on Windows)
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename report file: %w", err)
	}

	return nil
}
