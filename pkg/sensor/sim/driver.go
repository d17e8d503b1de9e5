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

// Package sim provides a simulated particle counter used for bench testing
// nodes without the optical sensor fitted.
package sim

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/sensor"
)

// Name is the driver name the simulator registers under.
const Name = "sim"

func init() {
	sensor.Register(Name, func(p sensor.Params) (sensor.Driver, error) {
		return New(Config{Seed: p.Seed, ZeroEvery: p.ZeroEvery}), nil
	})
}

// Config controls the simulated output.
type Config struct {
	Seed uint64 `json:"seed" yaml:"seed"`
	// ZeroEvery makes every Nth poll report a silent (all-zero) sample.
	ZeroEvery int `json:"zero_every" yaml:"zero_every"`
}

// Driver emits plausible urban PM readings.
type Driver struct {
	cfg Config

	mu      sync.Mutex
	rng     *rand.Rand
	enabled bool
	polls   int
	cleaned int
}

// New returns a simulated driver.
func New(cfg Config) *Driver {
	return &Driver{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

func (d *Driver) Enable(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.enabled = true

	return nil
}

func (d *Driver) Disable(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.enabled = false

	return nil
}

// Enabled reports whether the simulated fan is running.
func (d *Driver) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.enabled
}

func (d *Driver) Clean(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cleaned++

	return nil
}

func (d *Driver) Poll(context.Context) (*models.SensorSample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled {
		return nil, sensor.ErrNotEnabled
	}

	d.polls++

	if d.cfg.ZeroEvery > 0 && d.polls%d.cfg.ZeroEvery == 0 {
		return &models.SensorSample{Bins: make([]float64, models.BinCount)}, nil
	}

	pm1 := 2 + d.rng.Float64()*8
	pm25 := pm1 + d.rng.Float64()*6
	pm10 := pm25 + d.rng.Float64()*10

	bins := make([]float64, models.BinCount)
	for i := range bins {
		bins[i] = float64(d.rng.IntN(200 >> (i / 2)))
	}

	return &models.SensorSample{
		PM1:            pm1,
		PM25:           pm25,
		PM10:           pm10,
		Temperature:    12 + d.rng.Float64()*8,
		Humidity:       55 + d.rng.Float64()*30,
		SamplingPeriod: 1.4 + d.rng.Float64()*0.2,
		RejectCount:    d.rng.IntN(3),
		Bins:           bins,
	}, nil
}

var (
	_ sensor.Driver  = (*Driver)(nil)
	_ sensor.Cleaner = (*Driver)(nil)
)
