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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/sensornode/pkg/crypt"
	"github.com/carverauto/sensornode/pkg/lifecycle"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/sampler"
	"github.com/carverauto/sensornode/pkg/sensor"
)

const interruptPollInterval = 20 * time.Millisecond

type eventLog struct {
	mu     sync.Mutex
	events []string
	at     map[string]time.Time
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.at == nil {
		l.at = make(map[string]time.Time)
	}

	l.events = append(l.events, event)
	l.at[event] = time.Now()
}

func (l *eventLog) snapshot() ([]string, map[string]time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.events...), l.at
}

func (l *eventLog) count(event string) int {
	events, _ := l.snapshot()

	n := 0

	for _, e := range events {
		if e == event {
			n++
		}
	}

	return n
}

func TestInterruptMidCycleStopsWithinOnePoll(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	log := &eventLog{}

	driver := sensor.NewMockDriver(ctrl)
	driver.EXPECT().Enable(gomock.Any()).Return(nil)
	driver.EXPECT().Poll(gomock.Any()).Return(&models.SensorSample{PM1: 3, PM10: 9}, nil).MinTimes(1)
	driver.EXPECT().Disable(gomock.Any()).DoAndReturn(func(context.Context) error {
		log.add("sensor disabled")

		return nil
	}).Times(1)

	store := NewMockStore(ctrl)
	store.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).Return(nil).MaxTimes(1)
	store.EXPECT().Commit().Return(nil).MaxTimes(1)

	reboots := 0
	coord := lifecycle.New(logger.NewTestLogger(), lifecycle.WithRebooter(func() error {
		reboots++

		return nil
	}))

	for _, step := range []string{"sensor", "store", "gps", "status output"} {
		coord.AddTeardown(step, func(context.Context) error {
			log.add("teardown " + step)

			return nil
		})
	}

	smp := sampler.New(sampler.Config{
		Serial:       "0000abcd",
		NodeType:     models.NodeTypeStatic,
		PollInterval: interruptPollInterval,
		SpinDown:     time.Millisecond,
	}, driver, crypt.Plain{}, coord, logger.NewTestLogger())

	a := New(10*time.Second, Deps{Sampler: smp, Store: store, Stop: coord}, logger.NewTestLogger())

	go func() {
		time.Sleep(5 * interruptPollInterval)
		log.add("interrupt")
		coord.Interrupt()
	}()

	started := time.Now()

	exit, err := coord.Run(context.Background(), a.Loop)
	require.NoError(t, err)

	assert.Less(t, time.Since(started), 5*time.Second, "loop must not run out the sampling budget")
	assert.Equal(t, lifecycle.ExitSignal, exit.Path)
	assert.Equal(t, "interrupt", exit.Reason)
	assert.False(t, exit.Reboot)
	assert.Equal(t, 0, reboots)
	assert.Equal(t, lifecycle.StateStopped, coord.State())

	events, at := log.snapshot()
	require.Equal(t, []string{
		"interrupt",
		"sensor disabled",
		"teardown sensor",
		"teardown store",
		"teardown gps",
		"teardown status output",
	}, events)

	// observed on the next poll boundary, with scheduling slack
	assert.Less(t, at["sensor disabled"].Sub(at["interrupt"]), 10*interruptPollInterval)

	for _, step := range []string{"sensor", "store", "gps", "status output"} {
		assert.Equal(t, 1, log.count("teardown "+step), step)
	}

	// a second teardown request is a no-op
	require.NoError(t, coord.Teardown(context.Background()))
	assert.Equal(t, 1, log.count("teardown sensor"))
}
