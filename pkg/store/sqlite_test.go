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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
)

func testBatch() models.Batch {
	b := models.NewBatch(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	b.Readings = []models.Reading{
		{
			Serial: "0000abcd", Type: models.NodeTypeStatic, Time: "100001", Location: "tok-1",
			PM1: 5, PM25: 4.25, PM10: 3, Temperature: 18.5, Humidity: 61,
			Bins:           []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
			SamplingPeriod: 1.45, RejectCount: 2, UnixTime: 1717236001,
		},
		{
			Serial: "0000abcd", Type: models.NodeTypeStatic, Time: "100002", Location: "tok-2",
			PM1: 6, PM25: 7, PM10: 9.5, Temperature: 18.4, Humidity: 60.5,
			SamplingPeriod: 1.5, UnixTime: 1717236002,
		},
	}

	return b
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sensor.db")
	batch := testBatch()

	s, err := OpenSQLite(path, "", logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, s.InsertBatch(ctx, &batch))
	require.NoError(t, s.Commit())
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path, "", logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, batch.Readings, got)

	archived, err := ReadArchive(path, DefaultTable)
	require.NoError(t, err)
	assert.Equal(t, batch.Readings, archived)
}

func TestSQLiteCloseCommitsPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sensor.db")
	batch := testBatch()

	s, err := OpenSQLite(path, "", logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, s.InsertBatch(ctx, &batch))
	require.NoError(t, s.Close())

	got, err := ReadArchive(path, "")
	require.NoError(t, err)
	assert.Len(t, got, batch.Len())
}

func TestSQLiteFailedBatchLeavesNothingPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sensor.db")

	s, err := OpenSQLite(path, "", logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, sqlitex.ExecuteScript(s.conn, `CREATE TRIGGER reject_tok2 BEFORE INSERT ON measurements
WHEN NEW.loc = 'tok-2' BEGIN SELECT RAISE(ABORT, 'rejected'); END;`, nil))

	first := testBatch()
	first.Readings = first.Readings[:1]
	require.NoError(t, s.InsertBatch(ctx, &first))

	failing := testBatch()
	require.Error(t, s.InsertBatch(ctx, &failing))

	// teardown path: commit then close
	require.NoError(t, s.Commit())
	require.NoError(t, s.Close())

	got, err := ReadArchive(path, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.Readings[0], got[0])
}

func TestSQLiteClosedHandleIsBenign(t *testing.T) {
	t.Parallel()

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "sensor.db"), "", logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, s.Commit())
	require.NoError(t, s.Close())

	batch := testBatch()
	require.ErrorIs(t, s.InsertBatch(context.Background(), &batch), ErrStoreClosed)
}

func TestSQLiteRebuildSchemaDropsEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	batch := testBatch()

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "sensor.db"), "", logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.InsertBatch(ctx, &batch))

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, DefaultTable)

	require.NoError(t, s.RebuildSchema(ctx))

	tables, err = s.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultTable}, tables)

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.InsertBatch(ctx, &batch))
	require.NoError(t, s.Commit())

	got, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, batch.Len())
}

func TestUnsafeTableNames(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite(filepath.Join(t.TempDir(), "sensor.db"), "x; DROP TABLE y", logger.NewTestLogger())
	require.ErrorIs(t, err, ErrUnsafeTableName)

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "sensor.db"), "", logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	require.ErrorIs(t, s.DropTable(context.Background(), "a b"), ErrUnsafeTableName)
}

func TestReadArchiveMissingTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sensor.db")

	s, err := OpenSQLite(path, "other", logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	got, err := ReadArchive(path, DefaultTable)
	require.NoError(t, err)
	assert.Empty(t, got)
}
