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

package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/sensor"
)

func TestPollRequiresEnable(t *testing.T) {
	t.Parallel()

	d := New(Config{Seed: 1})

	_, err := d.Poll(context.Background())
	require.ErrorIs(t, err, sensor.ErrNotEnabled)

	require.NoError(t, d.Enable(context.Background()))
	assert.True(t, d.Enabled())

	s, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Silent())
	assert.Len(t, s.Bins, models.BinCount)
	assert.LessOrEqual(t, s.PM1, s.PM25)
	assert.LessOrEqual(t, s.PM25, s.PM10)

	require.NoError(t, d.Disable(context.Background()))

	_, err = d.Poll(context.Background())
	require.ErrorIs(t, err, sensor.ErrNotEnabled)
}

func TestZeroEveryProducesSilentSamples(t *testing.T) {
	t.Parallel()

	d := New(Config{Seed: 7, ZeroEvery: 3})
	require.NoError(t, d.Enable(context.Background()))

	var silent int

	for range 9 {
		s, err := d.Poll(context.Background())
		require.NoError(t, err)

		if s.Silent() {
			silent++
		}
	}

	assert.Equal(t, 3, silent)
}

func TestSameSeedSameReadings(t *testing.T) {
	t.Parallel()

	a, b := New(Config{Seed: 42}), New(Config{Seed: 42})
	require.NoError(t, a.Enable(context.Background()))
	require.NoError(t, b.Enable(context.Background()))

	sa, err := a.Poll(context.Background())
	require.NoError(t, err)
	sb, err := b.Poll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sa, sb)
}

func TestHygrometerStaysInRange(t *testing.T) {
	t.Parallel()

	h := NewHygrometer(7)

	for range 500 {
		rh, temp, err := h.Read(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rh, 0.0)
		assert.LessOrEqual(t, rh, 100.0)
		assert.InDelta(t, 15, temp, 25)
	}
}

func TestSimRegistersItself(t *testing.T) {
	t.Parallel()

	require.True(t, sensor.Registered(Name))

	drv, err := sensor.Open(Name, sensor.Params{Seed: 3, ZeroEvery: 2})
	require.NoError(t, err)

	d, ok := drv.(*Driver)
	require.True(t, ok)
	assert.Equal(t, Config{Seed: 3, ZeroEvery: 2}, d.cfg)

	_, ok = drv.(sensor.Cleaner)
	assert.True(t, ok)
}
