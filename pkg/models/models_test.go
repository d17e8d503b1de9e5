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

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseNodeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    NodeType
		wantErr bool
	}{
		{"static", NodeTypeStatic, false},
		{" Mobile ", NodeTypeMobile, false},
		{"3", NodeTypeIsolatedStatic, false},
		{"home_school", NodeTypeHomeSchool, false},
		{"", NodeTypeUnknown, false},
		{"9", NodeTypeUnknown, true},
		{"drone", NodeTypeUnknown, true},
	}

	for _, tt := range tests {
		got, err := ParseNodeType(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidNodeType, tt.in)

			continue
		}

		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNodeTypeDecoding(t *testing.T) {
	t.Parallel()

	var fromNumber, fromName NodeType

	require.NoError(t, json.Unmarshal([]byte(`2`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"isolated_static"`), &fromName))
	assert.Equal(t, NodeTypeMobile, fromNumber)
	assert.Equal(t, NodeTypeIsolatedStatic, fromName)
	assert.True(t, fromNumber.Mobile())
	assert.False(t, fromName.Mobile())

	var fromYAML struct {
		Type NodeType `yaml:"type"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("type: home_school\n"), &fromYAML))
	assert.Equal(t, NodeTypeHomeSchool, fromYAML.Type)

	out, err := json.Marshal(NodeTypeStatic)
	require.NoError(t, err)
	assert.JSONEq(t, `"static"`, string(out))
}

func TestDurationDecoding(t *testing.T) {
	t.Parallel()

	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Std())

	require.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	require.Error(t, json.Unmarshal([]byte(`true`), &d))

	var cfg struct {
		Wait Duration `yaml:"wait"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("wait: 250ms\n"), &cfg))
	assert.Equal(t, 250*time.Millisecond, cfg.Wait.Std())
}

func TestCheckpointFields(t *testing.T) {
	t.Parallel()

	cp := Checkpoint{}.With(FieldLastStaged, "01/06/2024")
	assert.Equal(t, "01/06/2024", cp.Get(FieldLastStaged))
	assert.Empty(t, cp.Get(FieldLastUploaded))
	assert.Empty(t, cp.Get("other"))
	assert.False(t, CheckpointField("LAST_SAVE").Valid())

	day := time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "01/06/2024", FormatDate(day))

	parsed, err := ParseDate("01/06/2024")
	require.NoError(t, err)
	assert.Equal(t, time.June, parsed.Month())
	assert.Equal(t, 1, parsed.Day())
}

func TestSilentSample(t *testing.T) {
	t.Parallel()

	assert.True(t, (&SensorSample{PM25: 4}).Silent())
	assert.False(t, (&SensorSample{PM1: 0.1}).Silent())
	assert.False(t, (&SensorSample{PM10: 7}).Silent())
}

func TestNewBatch(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	a, b := NewBatch(start), NewBatch(start)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, start, a.StartedAt)
}
