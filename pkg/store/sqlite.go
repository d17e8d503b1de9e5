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
	"fmt"
	"strings"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
)

// DefaultTable is the active measurements table.
const DefaultTable = "measurements"

// SQLiteStore is an Engine backed by a single SQLite connection. Inserts are
// grouped into one transaction that stays open until Commit, so a power
// cut loses at most the uncommitted cycle.
type SQLiteStore struct {
	path   string
	table  string
	logger logger.Logger

	mu     sync.Mutex
	conn   *sqlite.Conn
	inTx   bool
	closed bool
}

// OpenSQLite opens or creates the database at path and ensures the
// measurements table exists.
func OpenSQLite(path, table string, log logger.Logger) (*SQLiteStore, error) {
	if table == "" {
		table = DefaultTable
	}

	if !ValidTableName(table) {
		return nil, fmt.Errorf("%w: %q", ErrUnsafeTableName, table)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	if err := applyPragmas(conn); err != nil {
		_ = conn.Close()

		return nil, err
	}

	if err := sqlitex.ExecuteScript(conn, schema(table), nil); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("store: creating schema: %w", err)
	}

	log.Info().Str("path", path).Str("table", table).Msg("Measurement store opened")

	return &SQLiteStore{path: path, table: table, logger: log, conn: conn}, nil
}

// applyPragmas favours durability over throughput: the node writes one
// small batch per cycle and may lose power at any moment.
func applyPragmas(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=DELETE",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	return nil
}

func schema(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL,
	serial   TEXT NOT NULL,
	type     INTEGER NOT NULL,
	time     TEXT NOT NULL,
	loc      TEXT NOT NULL,
	pm1      REAL NOT NULL,
	pm3      REAL NOT NULL,
	pm10     REAL NOT NULL,
	t        REAL NOT NULL,
	rh       REAL NOT NULL,
	bins     BLOB,
	sp       REAL NOT NULL,
	rc       INTEGER NOT NULL,
	unixtime INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS %s_unixtime ON %s (unixtime);
`, table, table, table)
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// InsertBatch writes every reading of batch inside the pending transaction.
// The batch is all or nothing: on error none of its rows remain pending.
func (s *SQLiteStore) InsertBatch(_ context.Context, batch *models.Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if !s.inTx {
		if err := sqlitex.ExecuteTransient(s.conn, "BEGIN IMMEDIATE", nil); err != nil {
			return fmt.Errorf("store: begin: %w", err)
		}

		s.inTx = true
	}

	return s.insertLocked(batch)
}

// insertLocked writes batch under its own savepoint so a failing row rolls
// back the whole batch while earlier batches stay pending.
func (s *SQLiteStore) insertLocked(batch *models.Batch) (err error) {
	defer sqlitex.Save(s.conn)(&err)

	query := fmt.Sprintf(`INSERT INTO %s
		(batch_id, serial, type, time, loc, pm1, pm3, pm10, t, rh, bins, sp, rc, unixtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	batchID := batch.ID.String()

	for i := range batch.Readings {
		r := &batch.Readings[i]

		bins, encErr := encodeBins(r.Bins)
		if encErr != nil {
			return encErr
		}

		err = sqlitex.Execute(s.conn, query, &sqlitex.ExecOptions{
			Args: []any{
				batchID,
				r.Serial,
				int(r.Type),
				r.Time,
				r.Location,
				r.PM1,
				r.PM25,
				r.PM10,
				r.Temperature,
				r.Humidity,
				bins,
				r.SamplingPeriod,
				r.RejectCount,
				r.UnixTime,
			},
		})
		if err != nil {
			return fmt.Errorf("store: insert reading %d of batch %s: %w", i, batchID, err)
		}
	}

	return nil
}

// Commit makes pending inserts durable.
func (s *SQLiteStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commitLocked()
}

func (s *SQLiteStore) commitLocked() error {
	if s.closed || !s.inTx {
		return nil
	}

	if err := sqlitex.ExecuteTransient(s.conn, "COMMIT", nil); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}

	s.inTx = false

	return nil
}

// Close commits any pending inserts and releases the connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	commitErr := s.commitLocked()
	s.closed = true

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("store: closing %s: %w", s.path, err)
	}

	s.logger.Info().Str("path", s.path).Msg("Measurement store closed")

	return commitErr
}

// ListTables returns the user tables in the database.
func (s *SQLiteStore) ListTables(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	return listTables(s.conn)
}

func listTables(conn *sqlite.Conn) ([]string, error) {
	var tables []string

	err := sqlitex.Execute(conn,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tables = append(tables, stmt.ColumnText(0))

				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("store: list tables: %w", err)
	}

	return tables, nil
}

// DropTable drops name if it exists.
func (s *SQLiteStore) DropTable(_ context.Context, name string) error {
	if !ValidTableName(name) {
		return fmt.Errorf("%w: %q", ErrUnsafeTableName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if err := sqlitex.ExecuteTransient(s.conn, "DROP TABLE IF EXISTS "+name, nil); err != nil {
		return fmt.Errorf("store: drop %s: %w", name, err)
	}

	return nil
}

// RebuildSchema drops every user table and recreates the measurements
// table. Pending inserts are committed first so they reach any archive
// copy taken before the reset.
func (s *SQLiteStore) RebuildSchema(ctx context.Context) error {
	s.mu.Lock()

	if err := s.commitLocked(); err != nil {
		s.mu.Unlock()

		return err
	}

	s.mu.Unlock()

	tables, err := s.ListTables(ctx)
	if err != nil {
		return err
	}

	for _, table := range tables {
		if !ValidTableName(table) {
			s.logger.Warn().Str("table", table).Msg("Skipping table with unsafe name")

			continue
		}

		s.logger.Debug().Str("table", table).Msg("Dropping table")

		if err := s.DropTable(ctx, table); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := sqlitex.ExecuteScript(s.conn, schema(s.table), nil); err != nil {
		return fmt.Errorf("store: rebuilding schema: %w", err)
	}

	s.logger.Info().Int("dropped", len(tables)).Msg("Measurement store rebuilt")

	return nil
}

// ReadAll returns every stored reading in insertion order.
func (s *SQLiteStore) ReadAll(_ context.Context) ([]models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := readRows(s.conn, s.table)
	if err != nil {
		return nil, err
	}

	return readingsOf(rows), nil
}

// ReadArchive opens a staged database file read-only and returns its
// readings from table.
func ReadArchive(path, table string) ([]models.Reading, error) {
	rows, err := ReadArchiveRows(path, table)
	if err != nil {
		return nil, err
	}

	return readingsOf(rows), nil
}

// ReadArchiveRows is ReadArchive with each reading's batch and row identity.
func ReadArchiveRows(path, table string) ([]models.StoredReading, error) {
	if table == "" {
		table = DefaultTable
	}

	if !ValidTableName(table) {
		return nil, fmt.Errorf("%w: %q", ErrUnsafeTableName, table)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("store: opening archive %s: %w", path, err)
	}
	defer conn.Close()

	tables, err := listTables(conn)
	if err != nil {
		return nil, err
	}

	for _, t := range tables {
		if strings.EqualFold(t, table) {
			return readRows(conn, table)
		}
	}

	return nil, nil
}

func readingsOf(rows []models.StoredReading) []models.Reading {
	if rows == nil {
		return nil
	}

	readings := make([]models.Reading, len(rows))
	for i := range rows {
		readings[i] = rows[i].Reading
	}

	return readings
}

func readRows(conn *sqlite.Conn, table string) ([]models.StoredReading, error) {
	var rows []models.StoredReading

	query := fmt.Sprintf(`SELECT id, batch_id, serial, type, time, loc, pm1, pm3, pm10, t, rh, bins, sp, rc, unixtime
		FROM %s ORDER BY id`, table)

	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			row := models.StoredReading{
				Seq:     stmt.ColumnInt64(0),
				BatchID: stmt.ColumnText(1),
				Reading: models.Reading{
					Serial:         stmt.ColumnText(2),
					Type:           models.NodeType(stmt.ColumnInt(3)),
					Time:           stmt.ColumnText(4),
					Location:       stmt.ColumnText(5),
					PM1:            stmt.ColumnFloat(6),
					PM25:           stmt.ColumnFloat(7),
					PM10:           stmt.ColumnFloat(8),
					Temperature:    stmt.ColumnFloat(9),
					Humidity:       stmt.ColumnFloat(10),
					SamplingPeriod: stmt.ColumnFloat(12),
					RejectCount:    stmt.ColumnInt(13),
					UnixTime:       stmt.ColumnInt64(14),
				},
			}

			if !stmt.ColumnIsNull(11) {
				blob := make([]byte, stmt.ColumnLen(11))
				stmt.ColumnBytes(11, blob)

				bins, err := decodeBins(blob)
				if err != nil {
					return err
				}

				row.Bins = bins
			}

			rows = append(rows, row)

			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", table, err)
	}

	return rows, nil
}

var _ Engine = (*SQLiteStore)(nil)
