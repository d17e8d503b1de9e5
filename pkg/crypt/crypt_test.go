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

package crypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sensornode/pkg/models"
)

func TestSealOpen(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeypair()
	require.NoError(t, err)

	s, err := NewSealer(kp.Recipient)
	require.NoError(t, err)

	pos := models.Position{Lat: 51.50735, Lon: -0.12776, Alt: 35.2}

	token, err := s.Seal(pos)
	require.NoError(t, err)
	assert.NotContains(t, token, "51.50735")

	again, err := s.Seal(pos)
	require.NoError(t, err)
	assert.NotEqual(t, token, again, "age uses a fresh file key per message")

	got, err := Open(token, kp.Identity)
	require.NoError(t, err)
	assert.Equal(t, pos, got)
}

func TestOpenWithWrongIdentity(t *testing.T) {
	t.Parallel()

	a, err := GenerateKeypair()
	require.NoError(t, err)
	b, err := GenerateKeypair()
	require.NoError(t, err)

	s, err := NewSealer(a.Recipient)
	require.NoError(t, err)

	token, err := s.Seal(models.Position{Lat: 1})
	require.NoError(t, err)

	_, err = Open(token, b.Identity)
	require.Error(t, err)
}

func TestNewSealerRejectsBadKeys(t *testing.T) {
	t.Parallel()

	_, err := NewSealer()
	require.Error(t, err)

	_, err = NewSealer("not-a-key")
	require.Error(t, err)
}

func TestPlainAndParse(t *testing.T) {
	t.Parallel()

	tok, err := Plain{}.Seal(models.Position{Lat: 1.5, Lon: -2.25, Alt: 0})
	require.NoError(t, err)
	assert.Equal(t, "1.5_-2.25_0", tok)

	pos, err := ParsePosition(tok)
	require.NoError(t, err)
	assert.Equal(t, models.Position{Lat: 1.5, Lon: -2.25}, pos)

	_, err = ParsePosition("1_2")
	require.Error(t, err)
}
