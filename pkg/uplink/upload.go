/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package uplink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/store"
)

const defaultChunkSize = 500

// Sink is final storage for readings. Writes must be idempotent so a
// re-sent archive does not duplicate rows.
type Sink interface {
	WriteReadings(ctx context.Context, readings []models.StoredReading) error
}

// Uploader drains staged archives into a Sink.
type Uploader struct {
	rootDir   string
	table     string
	sink      Sink
	chunkSize int
	logger    logger.Logger
}

// NewUploader returns an Uploader reading archives from rootDir/staged.
func NewUploader(rootDir, table string, sink Sink, log logger.Logger) *Uploader {
	return &Uploader{
		rootDir:   rootDir,
		table:     table,
		sink:      sink,
		chunkSize: defaultChunkSize,
		logger:    log,
	}
}

// Pending lists the staged archives not yet uploaded, oldest first.
func (u *Uploader) Pending() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(u.rootDir, StagedDir, "*.db"))
	if err != nil {
		return nil, err
	}

	sort.Strings(files)

	return files, nil
}

// Upload writes every pending archive to the sink and moves it to the
// uploaded directory. It stops at the first failing archive.
func (u *Uploader) Upload(ctx context.Context) error {
	files, err := u.Pending()
	if err != nil {
		return fmt.Errorf("upload: listing archives: %w", err)
	}

	if len(files) == 0 {
		u.logger.Info().Msg("No staged archives to upload")

		return nil
	}

	done := filepath.Join(u.rootDir, StagedDir, UploadedDir)
	if err := os.MkdirAll(done, 0o755); err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	var rows int

	for _, f := range files {
		n, err := u.uploadArchive(ctx, f)
		if err != nil {
			return fmt.Errorf("upload %s: %w", filepath.Base(f), err)
		}

		if err := os.Rename(f, filepath.Join(done, filepath.Base(f))); err != nil {
			return fmt.Errorf("upload: archiving %s: %w", filepath.Base(f), err)
		}

		rows += n
	}

	u.logger.Info().Int("archives", len(files)).Int("rows", rows).Msg("Upload complete")

	return nil
}

func (u *Uploader) uploadArchive(ctx context.Context, path string) (int, error) {
	readings, err := store.ReadArchiveRows(path, u.table)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(readings); start += u.chunkSize {
		end := min(start+u.chunkSize, len(readings))

		if err := u.sink.WriteReadings(ctx, readings[start:end]); err != nil {
			return start, err
		}
	}

	return len(readings), nil
}
