// SPDX-License-Identifier: MIT

//go:build !windows

package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/kryptoslab/kryptos/internal/log"
	"github.com/kryptoslab/kryptos/internal/store"
)

// WriteReport exports a finished job as <dir>/<id>.json with full durability
// guarantees using renameio: fsync before rename prevents data loss on power
// failure.
func WriteReport(ctx context.Context, dir string, job *store.Job) error {
	logger := log.FromContext(ctx)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, job.ID+".json")

	// renameio handles: temp file creation, fsync, atomic rename, cleanup on error
	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending report file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending report file")
		}
	}()

	enc := json.NewEncoder(pendingFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(job); err != nil {
		return fmt.Errorf("write report data: %w", err)
	}

	// CloseAtomicallyReplace: fsync + rename (durable + atomic)
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace report file: %w", err)
	}

	return nil
}
