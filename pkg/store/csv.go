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

package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
)

// CSVFileName is the flat file written in CSV mode.
const CSVFileName = "simplesensor.csv"

var csvHeader = []string{
	"SERIAL", "TYPE", "TIME", "LOC", "PM1", "PM3", "PM10", "T", "RH", "BINS", "SP", "RC", "UNIXTIME",
}

// CSVStore appends readings to a flat CSV file. It has a single logical
// table named after the file.
type CSVStore struct {
	path   string
	logger logger.Logger

	mu     sync.Mutex
	file   *os.File
	w      *csv.Writer
	closed bool
}

// OpenCSV opens dir/simplesensor.csv for appending, writing the header when
// the file is new or empty.
func OpenCSV(dir string, log logger.Logger) (*CSVStore, error) {
	path := filepath.Join(dir, CSVFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	s := &CSVStore{path: path, logger: log, file: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("store: stat %s: %w", path, err)
	}

	if info.Size() == 0 {
		if err := s.writeHeader(); err != nil {
			_ = f.Close()

			return nil, err
		}
	}

	log.Info().Str("path", path).Msg("CSV store opened")

	return s, nil
}

func (s *CSVStore) writeHeader() error {
	if err := s.w.Write(csvHeader); err != nil {
		return fmt.Errorf("store: writing header: %w", err)
	}

	s.w.Flush()

	return s.w.Error()
}

// Path returns the CSV file path.
func (s *CSVStore) Path() string {
	return s.path
}

func (s *CSVStore) InsertBatch(_ context.Context, batch *models.Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	for i := range batch.Readings {
		if err := s.w.Write(csvRecord(&batch.Readings[i])); err != nil {
			return fmt.Errorf("store: writing row: %w", err)
		}
	}

	return nil
}

func csvRecord(r *models.Reading) []string {
	bins := make([]string, len(r.Bins))
	for i, b := range r.Bins {
		bins[i] = strconv.FormatFloat(b, 'g', -1, 64)
	}

	return []string{
		r.Serial,
		strconv.Itoa(int(r.Type)),
		r.Time,
		r.Location,
		formatFloat(r.PM1),
		formatFloat(r.PM25),
		formatFloat(r.PM10),
		formatFloat(r.Temperature),
		formatFloat(r.Humidity),
		strings.Join(bins, ";"),
		formatFloat(r.SamplingPeriod),
		strconv.Itoa(r.RejectCount),
		strconv.FormatInt(r.UnixTime, 10),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Commit flushes buffered rows and syncs the file.
func (s *CSVStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commitLocked()
}

func (s *CSVStore) commitLocked() error {
	if s.closed {
		return nil
	}

	s.w.Flush()

	if err := s.w.Error(); err != nil {
		return fmt.Errorf("store: flush: %w", err)
	}

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("store: sync: %w", err)
	}

	return nil
}

func (s *CSVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	err := s.commitLocked()
	s.closed = true

	return errors.Join(err, s.file.Close())
}

func (s *CSVStore) ListTables(context.Context) ([]string, error) {
	return []string{strings.TrimSuffix(CSVFileName, filepath.Ext(CSVFileName))}, nil
}

// DropTable truncates the file back to its header.
func (s *CSVStore) DropTable(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.w.Flush()

	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("store: truncate: %w", err)
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("store: seek: %w", err)
	}

	return s.writeHeader()
}

func (s *CSVStore) RebuildSchema(ctx context.Context) error {
	return s.DropTable(ctx, "")
}

// ReadCSV parses a file written by CSVStore.
func ReadCSV(path string) ([]models.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("store: parsing %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	readings := make([]models.Reading, 0, len(rows)-1)

	for i, row := range rows[1:] {
		r, err := parseCSVRecord(row)
		if err != nil {
			return nil, fmt.Errorf("store: %s row %d: %w", path, i+2, err)
		}

		readings = append(readings, r)
	}

	return readings, nil
}

func parseCSVRecord(row []string) (models.Reading, error) {
	if len(row) != len(csvHeader) {
		return models.Reading{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}

	var (
		r    models.Reading
		errs []error
	)

	pf := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		errs = append(errs, err)

		return v
	}

	typ, err := strconv.Atoi(row[1])
	errs = append(errs, err)

	rc, err := strconv.Atoi(row[11])
	errs = append(errs, err)

	ts, err := strconv.ParseInt(row[12], 10, 64)
	errs = append(errs, err)

	r = models.Reading{
		Serial:         row[0],
		Type:           models.NodeType(typ),
		Time:           row[2],
		Location:       row[3],
		PM1:            pf(row[4]),
		PM25:           pf(row[5]),
		PM10:           pf(row[6]),
		Temperature:    pf(row[7]),
		Humidity:       pf(row[8]),
		SamplingPeriod: pf(row[10]),
		RejectCount:    rc,
		UnixTime:       ts,
	}

	if row[9] != "" {
		for _, b := range strings.Split(row[9], ";") {
			r.Bins = append(r.Bins, pf(b))
		}
	}

	return r, errors.Join(errs...)
}

var _ Engine = (*CSVStore)(nil)
