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
	"database/sql/driver"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/store"
)

// passthrough lets float slices reach the mock the way pgx accepts them.
type passthrough struct{}

func (passthrough) ConvertValue(v any) (driver.Value, error) {
	return v, nil
}

func TestPostgresSinkWriteReadings(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthrough{}))
	require.NoError(t, err)

	defer db.Close()

	sink, err := NewPostgresSink(db, "readings")
	require.NoError(t, err)

	// both readings fall in the same Unix second
	readings := []models.StoredReading{
		{BatchID: "b1", Seq: 1, Reading: models.Reading{Serial: "a", Type: models.NodeTypeStatic, Time: "100001",
			Location: "x", PM1: 5, PM25: 4, PM10: 3, Temperature: 18, Humidity: 60, Bins: []float64{1, 2},
			SamplingPeriod: 1.5, RejectCount: 1, UnixTime: 100}},
		{BatchID: "b1", Seq: 2, Reading: models.Reading{Serial: "a", Type: models.NodeTypeStatic, Time: "100001",
			Location: "y", PM1: 6, PM25: 5, PM10: 4, Temperature: 18, Humidity: 61, SamplingPeriod: 1.5,
			UnixTime: 100}},
	}

	placeholders := func(from int) string {
		parts := make([]string, readingColumns)
		for i := range parts {
			parts[i] = "$" + strconv.Itoa(from+i)
		}

		return "(" + strings.Join(parts, ",") + ")"
	}

	expected := regexp.QuoteMeta("INSERT INTO readings (serial, type, time, loc, pm1, pm3, pm10, t, rh, bins, sp, rc, unixtime, batch_id, seq) VALUES " +
		placeholders(1) + "," + placeholders(16) + " ON CONFLICT (serial, batch_id, seq) DO NOTHING")

	mock.ExpectExec(expected).
		WithArgs(
			"a", 1, "100001", "x", 5.0, 4.0, 3.0, 18.0, 60.0, []float64{1, 2}, 1.5, 1, int64(100), "b1", int64(1),
			"a", 1, "100001", "y", 6.0, 5.0, 4.0, 18.0, 61.0, nil, 1.5, 0, int64(100), "b1", int64(2),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, sink.WriteReadings(context.Background(), readings))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkEmpty(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	sink, err := NewPostgresSink(db, "")
	require.NoError(t, err)
	require.NoError(t, sink.WriteReadings(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	sink, err := NewPostgresSink(db, "")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO measurements").WillReturnError(errors.New("connection reset"))

	err = sink.WriteReadings(context.Background(), []models.StoredReading{{BatchID: "b", Seq: 1, Reading: models.Reading{Serial: "a", UnixTime: 1}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPostgresSinkRejectsUnsafeTable(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	_, err = NewPostgresSink(db, "readings; --")
	require.ErrorIs(t, err, store.ErrUnsafeTableName)
}
