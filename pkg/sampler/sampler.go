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

// Package sampler runs bounded-time duty cycles against the particulate
// sensor and assembles accepted samples into batches.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/sensornode/pkg/clock"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/sensor"
)

const (
	defaultPollInterval = time.Second
	defaultSpinDown     = time.Second
	timeOfDayLayout     = "150405"
)

var (
	// ErrPollFailed wraps a sensor poll failure. The cycle ends with the
	// readings collected so far.
	ErrPollFailed = errors.New("sensor poll failed")
	// ErrEnableFailed wraps a failure to bring the sensor up.
	ErrEnableFailed = errors.New("sensor enable failed")
	errNilSample    = errors.New("driver returned no sample")
)

// Config holds the per-node values stamped onto every reading.
type Config struct {
	Serial       string
	NodeType     models.NodeType
	Position     models.Position
	PollInterval time.Duration
	SpinDown     time.Duration
}

// Sampler runs duty cycles. It is driven from the main loop only.
type Sampler struct {
	cfg        Config
	sensor     sensor.Driver
	sealer     Sealer
	stop       StopSignal
	clock      clock.Clock
	positioner Positioner
	hygrometer sensor.Hygrometer
	logger     logger.Logger
}

// Option customizes a Sampler.
type Option func(*Sampler)

// WithPositioner resolves locations from a live fix instead of the static
// position. It only takes effect for mobile node types.
func WithPositioner(p Positioner) Option {
	return func(s *Sampler) {
		s.positioner = p
	}
}

// WithHygrometer overrides temperature and humidity with an auxiliary probe.
func WithHygrometer(h sensor.Hygrometer) Option {
	return func(s *Sampler) {
		s.hygrometer = h
	}
}

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Sampler) {
		s.clock = c
	}
}

// New returns a Sampler.
func New(cfg Config, drv sensor.Driver, sealer Sealer, stop StopSignal, log logger.Logger, opts ...Option) *Sampler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	if cfg.SpinDown <= 0 {
		cfg.SpinDown = defaultSpinDown
	}

	s := &Sampler{
		cfg:    cfg,
		sensor: drv,
		sealer: sealer,
		stop:   stop,
		clock:  clock.Real(),
		logger: log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RunCycle samples for budget, or until the stop signal is raised, and
// returns the accepted readings. On a poll failure the partial batch is
// returned together with an error wrapping ErrPollFailed. The sensor is
// always disabled before RunCycle returns.
func (s *Sampler) RunCycle(ctx context.Context, budget time.Duration) (models.Batch, error) {
	started := s.clock.Now()
	batch := models.NewBatch(started)

	if err := s.sensor.Enable(ctx); err != nil {
		s.shutdownSensor(ctx)

		return batch, fmt.Errorf("%w: %w", ErrEnableFailed, err)
	}

	ticker := s.clock.Ticker(s.cfg.PollInterval)
	defer ticker.Stop()

	var (
		cycleErr  error
		discarded int
	)

	for {
		if s.stop.Stopping() || ctx.Err() != nil {
			s.logger.Debug().Int("readings", batch.Len()).Msg("Cycle interrupted")

			break
		}

		if s.clock.Now().Sub(started) >= budget {
			break
		}

		sample, err := s.sensor.Poll(ctx)
		if err == nil && sample == nil {
			err = errNilSample
		}

		if err != nil {
			cycleErr = fmt.Errorf("%w: %w", ErrPollFailed, err)

			break
		}

		if sample.Silent() {
			discarded++
		} else {
			batch.Readings = append(batch.Readings, s.assemble(ctx, sample))
		}

		select {
		case <-ctx.Done():
		case <-ticker.Chan():
		}
	}

	s.shutdownSensor(ctx)

	s.logger.Info().
		Str("batch", batch.ID.String()).
		Int("readings", batch.Len()).
		Int("discarded", discarded).
		Dur("elapsed", s.clock.Now().Sub(started)).
		Msg("Duty cycle complete")

	return batch, cycleErr
}

// shutdownSensor disables the sensor and holds for the spin-down dwell.
func (s *Sampler) shutdownSensor(ctx context.Context) {
	if err := s.sensor.Disable(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to disable sensor")
	}

	s.clock.Sleep(s.cfg.SpinDown)
}

func (s *Sampler) assemble(ctx context.Context, sample *models.SensorSample) models.Reading {
	now := s.clock.Now()

	pos, timeOfDay := s.locate(ctx, now)

	token, err := s.sealer.Seal(pos)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to seal location")
	}

	r := models.Reading{
		Serial:         s.cfg.Serial,
		Type:           s.cfg.NodeType,
		Time:           timeOfDay,
		Location:       token,
		PM1:            sample.PM1,
		PM25:           sample.PM25,
		PM10:           sample.PM10,
		Temperature:    sample.Temperature,
		Humidity:       sample.Humidity,
		SamplingPeriod: sample.SamplingPeriod,
		RejectCount:    sample.RejectCount,
		UnixTime:       now.Unix(),
	}

	if len(sample.Bins) > 0 {
		r.Bins = append([]float64(nil), sample.Bins...)
	}

	if s.hygrometer != nil {
		rh, t, err := s.hygrometer.Read(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Hygrometer read failed, keeping sensor values")
		} else {
			r.Humidity, r.Temperature = rh, t
		}
	}

	return r
}

// locate resolves the position and time-of-day for a reading. Mobile nodes
// use the last GPS fix and fall back to the static position when none is
// available.
func (s *Sampler) locate(ctx context.Context, now time.Time) (models.Position, string) {
	static := now.Format(timeOfDayLayout)

	if s.positioner == nil || !s.cfg.NodeType.Mobile() {
		return s.cfg.Position, static
	}

	fix, err := s.positioner.LastKnownFix(ctx)
	if err != nil || fix == nil {
		s.logger.Debug().Err(err).Msg("No GPS fix, using static position")

		return s.cfg.Position, static
	}

	tod := fix.Time
	if tod == "" {
		tod = static
	}

	return models.Position{Lat: fix.Lat, Lon: fix.Lon, Alt: fix.Alt}, tod
}
