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
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/carverauto/sensornode/pkg/clock"
	"github.com/carverauto/sensornode/pkg/logger"
)

const stampLayout = "20060102T150405Z"

// Publisher ships a staged archive to the on-site collection point.
type Publisher interface {
	Publish(ctx context.Context, name, path string) error
}

// Stager snapshots the node's database files into the staged directory and
// publishes each snapshot.
type Stager struct {
	publisher Publisher
	clock     clock.Clock
	logger    logger.Logger
}

// NewStager returns a Stager. A nil publisher keeps snapshots local only.
func NewStager(publisher Publisher, clk clock.Clock, log logger.Logger) *Stager {
	if clk == nil {
		clk = clock.Real()
	}

	return &Stager{publisher: publisher, clock: clk, logger: log}
}

// Stage copies every *.db file in rootDir to rootDir/staged and publishes
// the copies. It returns an error if any file fails; snapshots that could
// not be published are removed so a retry starts clean.
func (s *Stager) Stage(ctx context.Context, deviceID, rootDir string) error {
	sources, err := filepath.Glob(filepath.Join(rootDir, "*.db"))
	if err != nil {
		return fmt.Errorf("stage: listing %s: %w", rootDir, err)
	}

	sort.Strings(sources)

	if len(sources) == 0 {
		s.logger.Info().Str("dir", rootDir).Msg("Nothing to stage")

		return nil
	}

	dir := filepath.Join(rootDir, StagedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("stage: %w", err)
	}

	stamp := s.clock.Now().UTC().Format(stampLayout)

	for _, src := range sources {
		name := fmt.Sprintf("%s_%s_%s", deviceID, stamp, filepath.Base(src))
		dst := filepath.Join(dir, name)

		if err := copyFileAtomic(src, dst); err != nil {
			return fmt.Errorf("stage %s: %w", src, err)
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, name, dst); err != nil {
				_ = os.Remove(dst)

				return fmt.Errorf("stage: publishing %s: %w", name, err)
			}
		}

		s.logger.Info().Str("archive", name).Msg("Staged archive")
	}

	return nil
}

func copyFileAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)

		return err
	}

	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)

		return err
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)

		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)

		return err
	}

	return nil
}
