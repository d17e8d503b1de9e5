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
	"database/sql"
	"fmt"
	"strings"

	// registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/store"
)

const readingColumns = 15

// PostgresSink writes readings to a Postgres table keyed on
// (serial, batch_id, seq). Readings sharing a Unix second stay distinct.
type PostgresSink struct {
	db    *sql.DB
	table string
}

// OpenPostgres connects to dsn with the pgx driver.
func OpenPostgres(dsn, table string) (*PostgresSink, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	sink, err := NewPostgresSink(db, table)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return sink, nil
}

// NewPostgresSink wraps an open database handle.
func NewPostgresSink(db *sql.DB, table string) (*PostgresSink, error) {
	if table == "" {
		table = store.DefaultTable
	}

	if !store.ValidTableName(table) {
		return nil, fmt.Errorf("%w: %q", store.ErrUnsafeTableName, table)
	}

	return &PostgresSink{db: db, table: table}, nil
}

// EnsureSchema creates the target table if it is missing.
func (p *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	serial   TEXT NOT NULL,
	type     SMALLINT NOT NULL,
	time     TEXT NOT NULL,
	loc      TEXT NOT NULL,
	pm1      DOUBLE PRECISION NOT NULL,
	pm3      DOUBLE PRECISION NOT NULL,
	pm10     DOUBLE PRECISION NOT NULL,
	t        DOUBLE PRECISION NOT NULL,
	rh       DOUBLE PRECISION NOT NULL,
	bins     DOUBLE PRECISION[],
	sp       DOUBLE PRECISION NOT NULL,
	rc       INTEGER NOT NULL,
	unixtime BIGINT NOT NULL,
	batch_id TEXT NOT NULL,
	seq      BIGINT NOT NULL,
	PRIMARY KEY (serial, batch_id, seq)
)`, p.table))

	return err
}

// WriteReadings inserts readings in one statement; rows already present are
// skipped so a re-sent archive is harmless.
func (p *PostgresSink) WriteReadings(ctx context.Context, readings []models.StoredReading) error {
	if len(readings) == 0 {
		return nil
	}

	var b strings.Builder

	b.WriteString("INSERT INTO ")
	b.WriteString(p.table)
	b.WriteString(" (serial, type, time, loc, pm1, pm3, pm10, t, rh, bins, sp, rc, unixtime, batch_id, seq) VALUES ")

	args := make([]any, 0, len(readings)*readingColumns)

	for i := range readings {
		r := &readings[i]

		if i > 0 {
			b.WriteString(",")
		}

		b.WriteString("(")

		for c := 0; c < readingColumns; c++ {
			if c > 0 {
				b.WriteString(",")
			}

			fmt.Fprintf(&b, "$%d", len(args)+c+1)
		}

		b.WriteString(")")

		args = append(args,
			r.Serial,
			int(r.Type),
			r.Time,
			r.Location,
			r.PM1,
			r.PM25,
			r.PM10,
			r.Temperature,
			r.Humidity,
			binsArg(r.Bins),
			r.SamplingPeriod,
			r.RejectCount,
			r.UnixTime,
			r.BatchID,
			r.Seq,
		)
	}

	b.WriteString(" ON CONFLICT (serial, batch_id, seq) DO NOTHING")

	if _, err := p.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("postgres insert: %w", err)
	}

	return nil
}

// binsArg passes a nil histogram as SQL NULL.
func binsArg(bins []float64) any {
	if len(bins) == 0 {
		return nil
	}

	return bins
}

func (p *PostgresSink) Close() error {
	return p.db.Close()
}
