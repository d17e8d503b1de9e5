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

// Package indicator drives the status LED from a background goroutine so
// that blinking never perturbs the timing of the sampling loop.
package indicator

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrIndicatorActive is returned by Start while a previous handle is still
// running.
var ErrIndicatorActive = errors.New("status indicator already active")

// Output is the status output hardware: an on/off sink.
type Output interface {
	On()
	Off()
}

// Pattern is one blink period.
type Pattern struct {
	On  time.Duration
	Off time.Duration
}

var (
	// Heartbeat is the idle "alive" pattern.
	Heartbeat = Pattern{On: 500 * time.Millisecond, Off: 500 * time.Millisecond}
	// Busy is the faster pattern shown while a transfer is in progress.
	Busy = Pattern{On: 100 * time.Millisecond, Off: 100 * time.Millisecond}
)

// Idle is the state the output is left in when a handle stops.
type Idle int

const (
	IdleOff Idle = iota
	IdleOn
)

// Indicator owns the output and guarantees at most one active handle.
type Indicator struct {
	out Output

	mu     sync.Mutex
	active *Handle
}

// New returns an Indicator writing to out.
func New(out Output) *Indicator {
	return &Indicator{out: out}
}

// Handle controls one running blink activity.
type Handle struct {
	owner    *Indicator
	cancel   context.CancelFunc
	patterns chan Pattern
	done     chan struct{}
	stopOnce sync.Once
}

// Start begins blinking p in the background and returns immediately.
func (ind *Indicator) Start(p Pattern) (*Handle, error) {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	if ind.active != nil {
		return nil, ErrIndicatorActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		owner:    ind,
		cancel:   cancel,
		patterns: make(chan Pattern, 1),
		done:     make(chan struct{}),
	}
	ind.active = h

	go h.run(ctx, ind.out, p)

	return h, nil
}

// Active reports whether a handle is running.
func (ind *Indicator) Active() bool {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	return ind.active != nil
}

// StopActive stops whichever handle is running, if any.
func (ind *Indicator) StopActive(idle Idle) {
	ind.mu.Lock()
	h := ind.active
	ind.mu.Unlock()

	if h != nil {
		h.Stop(idle)
	}
}

// Escalate switches the running pattern. The new pattern takes effect at
// once, starting a fresh "on" phase; no idle gap is inserted.
func (h *Handle) Escalate(p Pattern) {
	select {
	case <-h.done:
		return
	default:
	}

	// Replace any pattern that has not been picked up yet.
	select {
	case <-h.patterns:
	default:
	}

	select {
	case h.patterns <- p:
	case <-h.done:
	}
}

// Stop cancels the blink activity and blocks until the goroutine has exited,
// then leaves the output in the requested idle state. Stop is safe to call
// more than once; later calls only reapply the idle state.
func (h *Handle) Stop(idle Idle) {
	h.stopOnce.Do(func() {
		h.cancel()
		<-h.done

		h.owner.mu.Lock()
		if h.owner.active == h {
			h.owner.active = nil
		}
		h.owner.mu.Unlock()
	})

	if idle == IdleOn {
		h.owner.out.On()
	} else {
		h.owner.out.Off()
	}
}

func (h *Handle) run(ctx context.Context, out Output, p Pattern) {
	defer close(h.done)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	lit := false

	for {
		var wait time.Duration

		if lit {
			out.Off()
			wait = p.Off
		} else {
			out.On()
			wait = p.On
		}

		lit = !lit

		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case next := <-h.patterns:
			if !timer.Stop() {
				<-timer.C
			}

			p = next
			lit = false
		case <-timer.C:
		}
	}
}
