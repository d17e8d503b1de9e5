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

package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sensornode/pkg/config"
	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/scheduler"
	"github.com/carverauto/sensornode/pkg/sensor"
	"github.com/carverauto/sensornode/pkg/store"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10*time.Second, cfg.SampleLength.Std())
	assert.Equal(t, scheduler.DefaultWindow, cfg.Schedule)
	assert.Equal(t, 21, cfg.GPIO.InterruptPin)
	assert.Equal(t, 300*time.Millisecond, cfg.GPIO.Debounce.Std())
	assert.Equal(t, "8.8.8.8", cfg.Network.ProbeAddress)
	assert.Equal(t, store.DefaultTable, cfg.Upload.Table)
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no data dir", func(c *Config) { c.DataDir = "" }},
		{"zero sample length", func(c *Config) { c.SampleLength = 0 }},
		{"poll longer than sample", func(c *Config) { c.PollInterval = models.Duration(time.Minute) }},
		{"inverted window", func(c *Config) { c.Schedule = scheduler.Window{Start: 15, End: 9} }},
		{"unknown driver", func(c *Config) { c.Sensor.Driver = "opcn3" }},
		{"negative pin", func(c *Config) { c.GPIO.InterruptPin = -1 }},
		{"unsafe table", func(c *Config) { c.Upload.Table = "m; DROP TABLE x" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAcceptsRegisteredDrivers(t *testing.T) {
	const name = "agent-test-opc"

	if !sensor.Registered(name) {
		sensor.Register(name, func(sensor.Params) (sensor.Driver, error) {
			return nil, errors.New("not fitted")
		})
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Sensor.Driver = name
	cfg.Sensor.Device = "/dev/ttyACM0"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/dev/ttyACM0", cfg.Sensor.params().Device)

	cfg.Sensor.Driver = "opcn3"
	require.ErrorIs(t, cfg.Validate(), sensor.ErrUnknownDriver)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := filepath.Join(t.TempDir(), "sensornode.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
device_id: "0000abcd"
node_type: home_school
csv_mode: true
sample_length: 30s
schedule:
  start_hour: 8
  end_hour: 16
position:
  lat: 51.45
  lon: -2.58
stage:
  nats_url: nats://collector.local:4222
`), 0o600))

	cfg := DefaultConfig()
	require.NoError(t, config.NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "0000abcd", cfg.DeviceID)
	assert.Equal(t, models.NodeTypeHomeSchool, cfg.NodeType)
	assert.True(t, cfg.CSVMode)
	assert.Equal(t, 30*time.Second, cfg.SampleLength.Std())
	assert.Equal(t, scheduler.Window{Start: 8, End: 16}, cfg.Schedule)
	assert.InDelta(t, 51.45, cfg.Position.Lat, 1e-9)
	assert.Equal(t, "nats://collector.local:4222", cfg.Stage.NATSURL)
	assert.Equal(t, "sensornode-stage", cfg.Stage.Bucket)
	assert.Equal(t, time.Second, cfg.PollInterval.Std())
}
