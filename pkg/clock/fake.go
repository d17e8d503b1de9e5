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

package clock

import (
	"sync"
	"time"
)

// Fake is a deterministic Clock. Time stands still until Advance or Sleep is
// called, or until a tick is taken from one of its tickers: every call to
// Chan on a fake ticker moves the clock forward by one interval and delivers
// that tick immediately. A loop that waits once per iteration therefore
// observes exactly one interval of elapsed time per iteration.
//
// Fake is safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	onTick  []func(time.Time)
}

// NewFake returns a Fake initialized to start.
func NewFake(start time.Time) *Fake {
	return &Fake{current: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.current
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	f.current = f.current.Add(d)
	now := f.current
	hooks := append([]func(time.Time){}, f.onTick...)
	f.mu.Unlock()

	for _, hook := range hooks {
		hook(now)
	}

	return now
}

// Sleep advances the clock by d without blocking.
func (f *Fake) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	f.Advance(d)
}

// OnAdvance registers fn to run after every advance with the new time.
// Tests use it to inject events at a given point of fake time.
func (f *Fake) OnAdvance(fn func(time.Time)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.onTick = append(f.onTick, fn)
}

func (f *Fake) Ticker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for Ticker")
	}

	return &fakeTicker{clock: f, interval: d}
}

type fakeTicker struct {
	clock    *Fake
	interval time.Duration

	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) Chan() <-chan time.Time {
	ch := make(chan time.Time, 1)

	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()

	if stopped {
		return ch
	}

	ch <- t.clock.Advance(t.interval)

	return ch
}

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
}
