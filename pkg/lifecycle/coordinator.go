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

// Package lifecycle owns the node's stop condition and guarantees that
// teardown runs exactly once on every exit path.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/sensornode/pkg/logger"
)

var (
	// ErrLoopPanic wraps a panic recovered from the main loop.
	ErrLoopPanic = errors.New("main loop panicked")
	// ErrRebootUnsupported is returned where the platform cannot restart.
	ErrRebootUnsupported = errors.New("reboot not supported on this platform")
	errTeardownPanic     = errors.New("teardown step panicked")
)

const defaultTeardownTimeout = 15 * time.Second

// State is the coordinator's position in RUNNING -> STOPPING -> STOPPED.
type State int32

const (
	StateRunning State = iota
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ExitPath names how the main loop ended.
type ExitPath string

const (
	ExitNatural ExitPath = "natural"
	ExitError   ExitPath = "error"
	ExitSignal  ExitPath = "signal"
)

// Exit describes a finished run.
type Exit struct {
	Path   ExitPath
	Reason string
	Reboot bool
}

// Rebooter restarts the device.
type Rebooter func() error

// TeardownFunc is one best-effort teardown step.
type TeardownFunc func(ctx context.Context) error

type teardownStep struct {
	name string
	fn   TeardownFunc
}

// Coordinator is safe for concurrent use. RequestStop and Interrupt never
// block and may be called from any goroutine.
type Coordinator struct {
	state   atomic.Int32
	reboot  atomic.Bool
	stopped chan struct{}

	mu     sync.Mutex
	reason string
	path   ExitPath
	steps  []teardownStep

	teardownOnce sync.Once
	teardownErr  error

	rebooter        Rebooter
	teardownTimeout time.Duration
	now             func() time.Time
	logger          logger.Logger
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithRebooter replaces the platform restart.
func WithRebooter(r Rebooter) Option {
	return func(c *Coordinator) {
		c.rebooter = r
	}
}

// WithTeardownTimeout bounds the whole teardown sequence.
func WithTeardownTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.teardownTimeout = d
		}
	}
}

// New returns a running Coordinator.
func New(log logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		stopped:         make(chan struct{}),
		rebooter:        platformReboot,
		teardownTimeout: defaultTeardownTimeout,
		now:             time.Now,
		logger:          log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Stopping reports whether a stop has been requested.
func (c *Coordinator) Stopping() bool {
	return c.State() != StateRunning
}

// Done is closed when a stop is first requested.
func (c *Coordinator) Done() <-chan struct{} {
	return c.stopped
}

// RebootRequested reports whether teardown will be followed by a restart.
func (c *Coordinator) RebootRequested() bool {
	return c.reboot.Load()
}

// Reason returns the reason given by the first stop request.
func (c *Coordinator) Reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reason
}

// RequestStop moves RUNNING to STOPPING. Only the first request counts.
func (c *Coordinator) RequestStop(reason string, reboot bool) {
	c.requestStop(reason, reboot, ExitNatural)
}

// Interrupt is the hardware stop-button handler.
func (c *Coordinator) Interrupt() {
	c.requestStop("interrupt", false, ExitSignal)
}

func (c *Coordinator) requestStop(reason string, reboot bool, path ExitPath) {
	if !c.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return
	}

	c.mu.Lock()
	c.reason = reason
	c.path = path
	c.mu.Unlock()

	if reboot {
		c.reboot.Store(true)
	}

	close(c.stopped)

	c.logger.Info().Str("stop_reason", reason).Bool("reboot", reboot).Msg("Stop requested")
}

// AddTeardown registers a step. Steps run in the order they were added.
func (c *Coordinator) AddTeardown(name string, fn TeardownFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.steps = append(c.steps, teardownStep{name: name, fn: fn})
}

// Teardown runs every registered step once. A failing or panicking step is
// logged and does not prevent later steps. Later calls return the first
// result.
func (c *Coordinator) Teardown(ctx context.Context) error {
	c.teardownOnce.Do(func() {
		c.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.teardownTimeout)
		defer cancel()

		c.mu.Lock()
		steps := append([]teardownStep(nil), c.steps...)
		c.mu.Unlock()

		var errs []error

		for _, step := range steps {
			if err := runStep(ctx, step); err != nil {
				c.logger.Warn().Err(err).Str("step", step.name).Msg("Teardown step failed")
				errs = append(errs, err)

				continue
			}

			c.logger.Debug().Str("step", step.name).Msg("Teardown step complete")
		}

		c.teardownErr = errors.Join(errs...)
		c.state.Store(int32(StateStopped))
	})

	return c.teardownErr
}

func runStep(ctx context.Context, step teardownStep) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", errTeardownPanic, step.name, r)
		}
	}()

	if err := step.fn(ctx); err != nil {
		return fmt.Errorf("%s: %w", step.name, err)
	}

	return nil
}

// Run drives loop until it returns, then tears down and restarts the
// device if a reboot was requested. Cancelling ctx counts as a signal
// stop. The returned error is the loop's failure, if any.
func (c *Coordinator) Run(ctx context.Context, loop func(ctx context.Context) error) (Exit, error) {
	started := c.now()
	c.logger.Info().Time("started_at", started).Msg("Node starting")

	unwatch := context.AfterFunc(ctx, func() {
		c.requestStop("signal received", false, ExitSignal)
	})
	defer unwatch()

	loopErr := c.runLoop(ctx, loop)
	if loopErr != nil {
		c.requestStop(fmt.Sprintf("fatal: %v", loopErr), false, ExitError)
		c.logger.Error().Err(loopErr).Str("stop_reason", c.Reason()).Msg("Main loop failed")
	} else {
		c.requestStop("loop finished", false, ExitNatural)
	}

	if err := c.Teardown(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Teardown completed with errors")
	}

	exit := Exit{Path: c.exitPath(loopErr), Reason: c.Reason(), Reboot: c.RebootRequested()}

	c.logger.Info().
		Time("started_at", started).
		Dur("uptime", c.now().Sub(started)).
		Str("exit_path", string(exit.Path)).
		Str("stop_reason", exit.Reason).
		Bool("reboot", exit.Reboot).
		Msg("Node stopped")

	if exit.Reboot {
		c.logger.Warn().Msg("Rebooting device")

		if err := c.rebooter(); err != nil {
			return exit, errors.Join(loopErr, fmt.Errorf("reboot: %w", err))
		}
	}

	return exit, loopErr
}

func (c *Coordinator) runLoop(ctx context.Context, loop func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLoopPanic, r)
		}
	}()

	return loop(ctx)
}

func (c *Coordinator) exitPath(loopErr error) ExitPath {
	if loopErr != nil {
		return ExitError
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.path
}
