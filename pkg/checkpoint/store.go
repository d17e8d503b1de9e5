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

// Package checkpoint persists the dates of the last successful stage and
// upload. The file is a best-effort cache of sync progress: unreadable
// content degrades to "unset" instead of failing the node.
package checkpoint

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
)

// FileName is the checkpoint file created inside the data directory.
const FileName = ".uploads"

const unsetValue = "None"

var (
	// ErrDateRegression is returned when an update would move a field
	// backwards in calendar order.
	ErrDateRegression = errors.New("checkpoint date precedes stored date")
	errInvalidDate    = errors.New("invalid checkpoint date")
)

// legacyKeys maps the key names written by earlier firmware to fields.
var legacyKeys = map[string]models.CheckpointField{
	"LAST_SAVE":   models.FieldLastStaged,
	"LAST_UPLOAD": models.FieldLastUploaded,
}

// Store reads and rewrites the checkpoint file. It has a single writer, the
// main loop, and is not safe for concurrent use.
type Store struct {
	path   string
	logger logger.Logger
}

// New returns a store for FileName inside dir.
func New(dir string, log logger.Logger) *Store {
	return NewAtPath(filepath.Join(dir, FileName), log)
}

// NewAtPath returns a store backed by path.
func NewAtPath(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Store{path: path, logger: log}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored checkpoint. A missing file is created with both
// fields unset; a missing field is appended as unset. Read failures are
// logged and reported as an empty checkpoint.
func (s *Store) Load() models.Checkpoint {
	lines, err := s.readLines()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Checkpoint unreadable, treating both fields as unset")

			return models.Checkpoint{}
		}

		lines = nil
	}

	cp, present := parse(lines)

	missing := false

	for _, field := range []models.CheckpointField{models.FieldLastStaged, models.FieldLastUploaded} {
		if !present[field] {
			lines = append(lines, formatLine(field, ""))
			missing = true
		}
	}

	if missing {
		if err := writeAtomic(s.path, render(lines)); err != nil {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to initialize checkpoint file")
		}
	}

	return cp
}

// Update replaces the value of exactly one field, leaving every other line
// of the file untouched. The file is rewritten as a whole through a
// temporary file and rename, so a crash leaves either the old or the new
// content on disk.
func (s *Store) Update(field models.CheckpointField, date string) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownCheckpointField, field)
	}

	next, err := models.ParseDate(date)
	if err != nil {
		return fmt.Errorf("%w %q: %w", errInvalidDate, date, err)
	}

	lines, err := s.readLines()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Checkpoint unreadable, rewriting from defaults")
		}

		lines = nil
	}

	cp, _ := parse(lines)

	if stored := cp.Get(field); stored != "" {
		if prev, perr := models.ParseDate(stored); perr == nil && next.Before(prev) {
			return fmt.Errorf("%w: %s %s < %s", ErrDateRegression, field, date, stored)
		}
	}

	lines = setField(lines, field, date)

	if _, present := parse(lines); !present[otherField(field)] {
		lines = append(lines, formatLine(otherField(field), ""))
	}

	if err := writeAtomic(s.path, render(lines)); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	s.logger.Debug().Str("field", string(field)).Str("date", date).Msg("Checkpoint updated")

	return nil
}

func (s *Store) readLines() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var lines []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func splitLine(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}

	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

func fieldForKey(key string) (models.CheckpointField, bool) {
	if f := models.CheckpointField(key); f.Valid() {
		return f, true
	}

	f, ok := legacyKeys[key]

	return f, ok
}

// parse returns the checkpoint and which fields had a line. The first line
// for a field wins.
func parse(lines []string) (models.Checkpoint, map[models.CheckpointField]bool) {
	var cp models.Checkpoint

	present := make(map[models.CheckpointField]bool, 2)

	for _, line := range lines {
		key, value, ok := splitLine(line)
		if !ok {
			continue
		}

		field, known := fieldForKey(key)
		if !known || present[field] {
			continue
		}

		present[field] = true

		if value != unsetValue {
			cp = cp.With(field, value)
		}
	}

	return cp, present
}

func setField(lines []string, field models.CheckpointField, date string) []string {
	out := make([]string, 0, len(lines)+1)
	replaced := false

	for _, line := range lines {
		if key, _, ok := splitLine(line); ok && !replaced {
			if f, known := fieldForKey(key); known && f == field {
				out = append(out, formatLine(field, date))
				replaced = true

				continue
			}
		}

		out = append(out, line)
	}

	if !replaced {
		out = append(out, formatLine(field, date))
	}

	return out
}

func otherField(field models.CheckpointField) models.CheckpointField {
	if field == models.FieldLastStaged {
		return models.FieldLastUploaded
	}

	return models.FieldLastStaged
}

func formatLine(field models.CheckpointField, value string) string {
	if value == "" {
		value = unsetValue
	}

	return string(field) + " = " + value
}

func render(lines []string) []byte {
	var b bytes.Buffer

	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.Bytes()
}
