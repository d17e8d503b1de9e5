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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/sensornode/pkg/gps"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/scheduler"
	"github.com/carverauto/sensornode/pkg/sensor"
	"github.com/carverauto/sensornode/pkg/sensor/sim"
	"github.com/carverauto/sensornode/pkg/store"
)

const (
	// DriverSim selects the simulated particle counter.
	DriverSim = sim.Name

	defaultDataDir         = "/var/lib/sensornode"
	defaultSampleLength    = 10 * time.Second
	defaultInterruptPin    = 21
	defaultLED             = "led1"
	defaultProbeAddress    = "8.8.8.8"
	defaultProbeTimeout    = 3 * time.Second
	defaultStageBucket     = "sensornode-stage"
	defaultStageTimeout    = 30 * time.Second
	defaultRetryDelay      = time.Second
	serialNumberDevicePath = "/sys/firmware/devicetree/base/serial-number"
)

var (
	errMissingDataDir      = errors.New("data_dir is required")
	errInvalidSampleLen    = errors.New("sample_length must be positive")
	errInvalidPoll         = errors.New("poll_interval must not exceed sample_length")
	errInvalidInterruptPin = errors.New("gpio.interrupt_pin must not be negative")
)

// SensorConfig selects the particle counter driver. Driver names a driver
// registered with the sensor package; only the simulator ships in-tree.
type SensorConfig struct {
	Driver    string `json:"driver" yaml:"driver"`
	Device    string `json:"device,omitempty" yaml:"device,omitempty"`
	Seed      uint64 `json:"seed" yaml:"seed"`
	ZeroEvery int    `json:"zero_every" yaml:"zero_every"`
}

func (c SensorConfig) params() sensor.Params {
	return sensor.Params{Seed: c.Seed, ZeroEvery: c.ZeroEvery, Device: c.Device}
}

// HygrometerConfig enables the auxiliary temperature/humidity probe.
type HygrometerConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// GPSConfig controls the positioning feed. When disabled the node type is
// never auto-detected as mobile.
type GPSConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Address string `json:"address" yaml:"address"`
}

// GPIOConfig names the interrupt input and the status LED.
type GPIOConfig struct {
	InterruptPin int             `json:"interrupt_pin" yaml:"interrupt_pin"`
	Debounce     models.Duration `json:"debounce" yaml:"debounce"`
	LED          string          `json:"led" yaml:"led"`
	SysfsRoot    string          `json:"sysfs_root" yaml:"sysfs_root"`
}

// ObfuscationConfig seals positions to an age recipient. An empty
// recipient stores positions in the clear.
type ObfuscationConfig struct {
	Recipient string `json:"recipient" yaml:"recipient"`
}

// StageConfig points staging at a JetStream object store. Without a URL
// staged archives stay on the node.
type StageConfig struct {
	NATSURL string          `json:"nats_url" yaml:"nats_url"`
	Bucket  string          `json:"bucket" yaml:"bucket"`
	Domain  string          `json:"domain" yaml:"domain"`
	Timeout models.Duration `json:"timeout" yaml:"timeout"`

	// NKeySeedFile holds a NATS user nkey seed for staging auth.
	NKeySeedFile string `json:"nkey_seed_file" yaml:"nkey_seed_file"`
}

// UploadConfig points uploading at the final Postgres database.
type UploadConfig struct {
	DSN   string `json:"dsn" yaml:"dsn" sensitive:"true"`
	Table string `json:"table" yaml:"table"`
}

// NetworkConfig configures the reachability probe.
type NetworkConfig struct {
	ProbeAddress string          `json:"probe_address" yaml:"probe_address"`
	Timeout      models.Duration `json:"timeout" yaml:"timeout"`
}

// UpdateConfig enables the off-site time sync and version check.
type UpdateConfig struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	RepoDir         string   `json:"repo_dir" yaml:"repo_dir"`
	TimeSyncCommand []string `json:"time_sync_command" yaml:"time_sync_command"`
}

// MetricsConfig exposes Prometheus metrics when Addr is set.
type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Config is the node configuration.
type Config struct {
	DeviceID     string           `json:"device_id" yaml:"device_id"`
	NodeType     models.NodeType  `json:"node_type" yaml:"node_type"`
	DataDir      string           `json:"data_dir" yaml:"data_dir"`
	CSVMode      bool             `json:"csv_mode" yaml:"csv_mode"`
	SampleLength models.Duration  `json:"sample_length" yaml:"sample_length"`
	PollInterval models.Duration  `json:"poll_interval" yaml:"poll_interval"`
	SpinDown     models.Duration  `json:"spin_down" yaml:"spin_down"`
	Schedule     scheduler.Window `json:"schedule" yaml:"schedule"`
	Position     models.Position  `json:"position" yaml:"position"`

	Sensor      SensorConfig      `json:"sensor" yaml:"sensor"`
	Hygrometer  HygrometerConfig  `json:"hygrometer" yaml:"hygrometer"`
	GPS         GPSConfig         `json:"gps" yaml:"gps"`
	GPIO        GPIOConfig        `json:"gpio" yaml:"gpio"`
	Obfuscation ObfuscationConfig `json:"obfuscation" yaml:"obfuscation"`
	Stage       StageConfig       `json:"stage" yaml:"stage"`
	Upload      UploadConfig      `json:"upload" yaml:"upload"`
	Network     NetworkConfig     `json:"network" yaml:"network"`
	Update      UpdateConfig      `json:"update" yaml:"update"`
	Metrics     MetricsConfig     `json:"metrics" yaml:"metrics"`
	Logging     *logger.Config    `json:"logging" yaml:"logging"`
}

// DefaultConfig returns a config with every default filled in. Loaders
// overwrite only the fields present in their source.
func DefaultConfig() Config {
	return Config{
		DataDir:      defaultDataDir,
		SampleLength: models.Duration(defaultSampleLength),
		PollInterval: models.Duration(time.Second),
		SpinDown:     models.Duration(time.Second),
		Schedule:     scheduler.DefaultWindow,
		Sensor:       SensorConfig{Driver: DriverSim},
		GPS:          GPSConfig{Enabled: true, Address: gps.DefaultAddress},
		GPIO: GPIOConfig{
			InterruptPin: defaultInterruptPin,
			Debounce:     models.Duration(300 * time.Millisecond),
			LED:          defaultLED,
		},
		Stage:   StageConfig{Bucket: defaultStageBucket, Timeout: models.Duration(defaultStageTimeout)},
		Upload:  UploadConfig{Table: store.DefaultTable},
		Network: NetworkConfig{ProbeAddress: defaultProbeAddress, Timeout: models.Duration(defaultProbeTimeout)},
	}
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errMissingDataDir
	}

	if c.SampleLength <= 0 {
		return errInvalidSampleLen
	}

	if c.PollInterval > c.SampleLength {
		return errInvalidPoll
	}

	if err := c.Schedule.Validate(); err != nil {
		return err
	}

	if !sensor.Registered(c.Sensor.Driver) {
		return fmt.Errorf("%w: %q (available: %v)", sensor.ErrUnknownDriver, c.Sensor.Driver, sensor.Drivers())
	}

	if c.GPIO.InterruptPin < 0 {
		return errInvalidInterruptPin
	}

	if c.Upload.Table != "" && !store.ValidTableName(c.Upload.Table) {
		return fmt.Errorf("%w: %q", store.ErrUnsafeTableName, c.Upload.Table)
	}

	return nil
}
