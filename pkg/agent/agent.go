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

// Package agent wires the node's collaborators together and owns the
// cooperative main loop: sample, persist, then sync.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/sensornode/pkg/clock"
	"github.com/carverauto/sensornode/pkg/indicator"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/sampler"
)

// ErrPersistFailed wraps a failure to write a batch to the local store.
var ErrPersistFailed = errors.New("persisting batch failed")

// Agent runs duty cycles until the stop signal is raised.
type Agent struct {
	budget     time.Duration
	retryDelay time.Duration

	sampler  Sampler
	store    Store
	syncer   Syncer
	health   HealthCollector
	recorder Recorder
	status   indicator.Output
	stop     StopSignal
	clock    clock.Clock
	logger   logger.Logger
}

// Deps are the collaborators of an Agent. Syncer, Health, Recorder and
// Status are optional; a nil Syncer disables staging and uploading. Status
// is switched off while sampling and back on once the batch is committed.
type Deps struct {
	Sampler  Sampler
	Store    Store
	Syncer   Syncer
	Health   HealthCollector
	Recorder Recorder
	Status   indicator.Output
	Stop     StopSignal
	Clock    clock.Clock
}

// New returns an Agent sampling for budget per cycle.
func New(budget time.Duration, deps Deps, log logger.Logger) *Agent {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Agent{
		budget:     budget,
		retryDelay: defaultRetryDelay,
		sampler:    deps.Sampler,
		store:      deps.Store,
		syncer:     deps.Syncer,
		health:     deps.Health,
		recorder:   deps.Recorder,
		status:     deps.Status,
		stop:       deps.Stop,
		clock:      clk,
		logger:     log,
	}
}

// Loop runs cycles until the stop signal is raised or ctx ends. It returns
// an error only when the local store rejects a batch.
func (a *Agent) Loop(ctx context.Context) error {
	for !a.stop.Stopping() && ctx.Err() == nil {
		if err := a.Cycle(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Cycle runs one sample, persist and sync round.
func (a *Agent) Cycle(ctx context.Context) error {
	started := a.clock.Now()

	if a.status != nil {
		a.status.Off()
	}

	batch, sampleErr := a.sampler.RunCycle(ctx, a.budget)
	if sampleErr != nil {
		a.logger.Error().Err(sampleErr).Int("readings", batch.Len()).Msg("Duty cycle aborted")
	}

	if batch.Len() > 0 {
		if err := a.store.InsertBatch(ctx, &batch); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}

		if err := a.store.Commit(); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}
	}

	if a.status != nil {
		a.status.On()
	}

	a.logger.Info().
		Str("batch_id", batch.ID.String()).
		Int("readings", batch.Len()).
		Dur("elapsed", a.clock.Now().Sub(started)).
		Msg("Cycle complete")

	a.observe(ctx, batch.Len(), a.clock.Now().Sub(started), sampleErr != nil)

	if a.syncer != nil && !a.stop.Stopping() {
		out := a.syncer.Tick(ctx)
		a.logger.Debug().
			Str("phase", out.Phase.String()).
			Str("action", out.Action.String()).
			Bool("succeeded", out.Succeeded).
			Msg("Sync tick")
	}

	// An enable failure returns at once; pause so it cannot spin.
	if errors.Is(sampleErr, sampler.ErrEnableFailed) && !a.stop.Stopping() {
		a.clock.Sleep(a.retryDelay)
	}

	return nil
}

func (a *Agent) observe(ctx context.Context, readings int, elapsed time.Duration, failed bool) {
	if a.recorder == nil {
		return
	}

	a.recorder.ObserveCycle(readings, elapsed, failed)

	if a.health == nil {
		return
	}

	snap, err := a.health.Collect(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Health snapshot failed")

		return
	}

	a.recorder.SetHealth(snap)
}
