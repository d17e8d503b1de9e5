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

// Package scheduler decides once per duty cycle whether to stage, upload,
// or do nothing, based on the hour, the date and the checkpoint.
package scheduler

import (
	"context"
	"time"

	"github.com/carverauto/sensornode/pkg/clock"
	"github.com/carverauto/sensornode/pkg/indicator"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/metrics"
	"github.com/carverauto/sensornode/pkg/models"
)

// Action is what a Tick ended up doing.
type Action int

const (
	ActionNone Action = iota
	ActionStage
	ActionUpload
)

func (a Action) String() string {
	switch a {
	case ActionStage:
		return metrics.ActionStage
	case ActionUpload:
		return metrics.ActionUpload
	default:
		return "none"
	}
}

// Outcome summarises one Tick.
type Outcome struct {
	Phase     Phase
	Action    Action
	Succeeded bool
	Reachable bool
	Behind    bool
}

// Config holds the deployment values the scheduler needs.
type Config struct {
	DeviceID string
	RootDir  string
	Window   Window
}

// Scheduler runs the sync decision table. It is driven from the main loop
// only and needs no locking.
type Scheduler struct {
	cfg         Config
	checkpoints Checkpoints
	transfer    Transfer
	storage     Storage
	updater     Updater
	stop        StopRequester
	indicator   *indicator.Indicator
	positioning Positioning
	recorder    Recorder
	clock       clock.Clock
	logger      logger.Logger
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithIndicator blinks the status output while a sync is in progress.
func WithIndicator(ind *indicator.Indicator) Option {
	return func(s *Scheduler) {
		s.indicator = ind
	}
}

// WithPositioning restarts a dropped GPS feed before staging.
func WithPositioning(p Positioning) Option {
	return func(s *Scheduler) {
		s.positioning = p
	}
}

// WithRecorder reports sync outcomes.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		s.recorder = r
	}
}

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithUpdater enables the off-site time sync and version check.
func WithUpdater(u Updater) Option {
	return func(s *Scheduler) {
		s.updater = u
	}
}

// New returns a Scheduler.
func New(cfg Config, cp Checkpoints, transfer Transfer, storage Storage, stop StopRequester,
	log logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:         cfg,
		checkpoints: cp,
		transfer:    transfer,
		storage:     storage,
		stop:        stop,
		clock:       clock.Real(),
		logger:      log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Tick evaluates the decision table for the current time. Failures are
// logged and leave the checkpoint unchanged so the next cycle retries.
func (s *Scheduler) Tick(ctx context.Context) Outcome {
	now := s.clock.Now()
	today := models.FormatDate(now)
	cp := s.checkpoints.Load()

	out := Outcome{Phase: s.cfg.Window.Classify(now.Hour())}

	switch out.Phase {
	case PhaseOnSite:
		if !s.due(cp.LastStaged, now, models.FieldLastStaged) {
			return out
		}

		out.Action = ActionStage
		out.Succeeded = s.stage(ctx, today)
	case PhaseOffSite:
		out.Reachable = s.transfer.IsReachable(ctx)
		s.recordReachable(out.Reachable)

		if !out.Reachable {
			return out
		}

		h := s.startIndicator()
		defer s.stopIndicator(h)

		if s.due(cp.LastUploaded, now, models.FieldLastUploaded) {
			out.Action = ActionUpload
			out.Succeeded = s.upload(ctx, today, h)
		}

		out.Behind = s.maintain(ctx)
	}

	return out
}

// due reports whether the action guarded by stored should run today.
func (s *Scheduler) due(stored string, now time.Time, field models.CheckpointField) bool {
	today := models.FormatDate(now)
	if stored == today {
		return false
	}

	if stored == "" {
		return true
	}

	last, err := models.ParseDate(stored)
	if err != nil {
		s.logger.Warn().Err(err).Str("field", string(field)).Msg("Unparseable checkpoint date, treating as unset")

		return true
	}

	y, m, d := now.Date()
	if last.After(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		s.logger.Warn().
			Str("field", string(field)).
			Str("stored", stored).
			Str("today", today).
			Msg("System clock is behind the checkpoint, skipping")

		return false
	}

	return true
}

func (s *Scheduler) stage(ctx context.Context, today string) bool {
	h := s.startIndicator()
	defer s.stopIndicator(h)

	s.escalate(h)

	if s.positioning != nil && !s.positioning.Alive() {
		if err := s.positioning.Restart(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("GPS restart before staging failed")
		}
	}

	if err := s.storage.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Commit before staging failed")
		s.recordSync(ActionStage, false)

		return false
	}

	if err := s.transfer.Stage(ctx, s.cfg.DeviceID, s.cfg.RootDir); err != nil {
		s.logger.Error().Err(err).Msg("Error in attempting staging upload")
		s.recordSync(ActionStage, false)

		return false
	}

	if err := s.storage.RebuildSchema(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Staged, but rebuilding the local store failed")
		s.recordSync(ActionStage, false)

		return false
	}

	if err := s.checkpoints.Update(models.FieldLastStaged, today); err != nil {
		s.logger.Error().Err(err).Msg("Failed to record staging checkpoint")
		s.recordSync(ActionStage, false)

		return false
	}

	s.recordSync(ActionStage, true)
	s.logger.Info().Str("date", today).Msg("Stage complete")

	return true
}

func (s *Scheduler) upload(ctx context.Context, today string, h *indicator.Handle) bool {
	s.escalate(h)

	if err := s.transfer.Upload(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Upload failed")
		s.recordSync(ActionUpload, false)

		return false
	}

	if err := s.checkpoints.Update(models.FieldLastUploaded, today); err != nil {
		s.logger.Error().Err(err).Msg("Failed to record upload checkpoint")
		s.recordSync(ActionUpload, false)

		return false
	}

	s.recordSync(ActionUpload, true)
	s.logger.Info().Str("date", today).Msg("Upload complete")

	return true
}

// maintain runs the time sync and version check. A node behind its
// upstream requests a stop with reboot.
func (s *Scheduler) maintain(ctx context.Context) bool {
	if s.updater == nil {
		return false
	}

	if err := s.updater.SyncTime(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Time sync failed")
	}

	behind, err := s.updater.Behind(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Version check failed")

		return false
	}

	if behind {
		s.logger.Warn().Msg("Updates available, rebooting")
		s.stop.RequestStop("update available", true)
	}

	return behind
}

func (s *Scheduler) startIndicator() *indicator.Handle {
	if s.indicator == nil {
		return nil
	}

	h, err := s.indicator.Start(indicator.Heartbeat)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Status indicator busy")

		return nil
	}

	return h
}

func (s *Scheduler) escalate(h *indicator.Handle) {
	if h != nil {
		h.Escalate(indicator.Busy)
	}
}

func (s *Scheduler) stopIndicator(h *indicator.Handle) {
	if h != nil {
		h.Stop(indicator.IdleOff)
	}
}

func (s *Scheduler) recordSync(a Action, ok bool) {
	if s.recorder != nil {
		s.recorder.ObserveSync(a.String(), ok)
	}
}

func (s *Scheduler) recordReachable(ok bool) {
	if s.recorder != nil {
		s.recorder.SetReachable(ok)
	}
}
