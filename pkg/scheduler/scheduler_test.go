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

package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/sensornode/pkg/checkpoint"
	"github.com/carverauto/sensornode/pkg/clock"
	"github.com/carverauto/sensornode/pkg/indicator"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
)

var (
	errTestTransfer = errors.New("transfer failed")
	onSiteTime      = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	offSiteTime     = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
)

const testDate = "01/06/2024"

type fixture struct {
	ctrl     *gomock.Controller
	cp       *checkpoint.Store
	transfer *MockTransfer
	storage  *MockStorage
	updater  *MockUpdater
	stop     *MockStopRequester
	clock    *clock.Fake
	out      *ledOutput
	ind      *indicator.Indicator
}

type ledOutput struct {
	mu  sync.Mutex
	lit bool
}

func (o *ledOutput) On() {
	o.mu.Lock()
	o.lit = true
	o.mu.Unlock()
}

func (o *ledOutput) Off() {
	o.mu.Lock()
	o.lit = false
	o.mu.Unlock()
}

func (o *ledOutput) Lit() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.lit
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	out := &ledOutput{}

	return &fixture{
		ctrl:     ctrl,
		cp:       checkpoint.New(t.TempDir(), logger.NewTestLogger()),
		transfer: NewMockTransfer(ctrl),
		storage:  NewMockStorage(ctrl),
		updater:  NewMockUpdater(ctrl),
		stop:     NewMockStopRequester(ctrl),
		clock:    clock.NewFake(now),
		out:      out,
		ind:      indicator.New(out),
	}
}

func (f *fixture) scheduler(opts ...Option) *Scheduler {
	opts = append([]Option{WithClock(f.clock), WithIndicator(f.ind), WithUpdater(f.updater)}, opts...)

	return New(Config{DeviceID: "0000abcd", RootDir: "/data", Window: DefaultWindow},
		f.cp, f.transfer, f.storage, f.stop, logger.NewTestLogger(), opts...)
}

func TestStageOncePerDate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, onSiteTime)

	gomock.InOrder(
		f.storage.EXPECT().Commit().Return(nil),
		f.transfer.EXPECT().Stage(gomock.Any(), "0000abcd", "/data").Return(nil),
		f.storage.EXPECT().RebuildSchema(gomock.Any()).Return(nil),
	)

	s := f.scheduler()

	out := s.Tick(context.Background())
	assert.Equal(t, PhaseOnSite, out.Phase)
	assert.Equal(t, ActionStage, out.Action)
	assert.True(t, out.Succeeded)
	assert.Equal(t, testDate, f.cp.Load().LastStaged)
	assert.Empty(t, f.cp.Load().LastUploaded)

	// same date, same window: no re-stage
	f.clock.Advance(30 * time.Minute)

	out = s.Tick(context.Background())
	assert.Equal(t, ActionNone, out.Action)

	assert.False(t, f.ind.Active())
	assert.False(t, f.out.Lit())
}

func TestStageFailureLeavesCheckpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t, onSiteTime)

	f.storage.EXPECT().Commit().Return(nil).Times(2)
	f.transfer.EXPECT().Stage(gomock.Any(), gomock.Any(), gomock.Any()).Return(errTestTransfer).Times(2)

	s := f.scheduler()

	out := s.Tick(context.Background())
	assert.Equal(t, ActionStage, out.Action)
	assert.False(t, out.Succeeded)
	assert.Empty(t, f.cp.Load().LastStaged)

	// retried naturally on the next cycle
	out = s.Tick(context.Background())
	assert.Equal(t, ActionStage, out.Action)
}

func TestStageRestartsDroppedGPS(t *testing.T) {
	t.Parallel()

	f := newFixture(t, onSiteTime)
	gps := NewMockPositioning(f.ctrl)

	gps.EXPECT().Alive().Return(false)
	gps.EXPECT().Restart(gomock.Any()).Return(nil)
	f.storage.EXPECT().Commit().Return(nil)
	f.transfer.EXPECT().Stage(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.storage.EXPECT().RebuildSchema(gomock.Any()).Return(nil)

	out := f.scheduler(WithPositioning(gps)).Tick(context.Background())
	assert.True(t, out.Succeeded)
}

func TestOffSiteUnreachableIsNoop(t *testing.T) {
	t.Parallel()

	f := newFixture(t, offSiteTime)

	f.transfer.EXPECT().IsReachable(gomock.Any()).Return(false)

	out := f.scheduler().Tick(context.Background())
	assert.Equal(t, PhaseOffSite, out.Phase)
	assert.Equal(t, ActionNone, out.Action)
	assert.False(t, out.Reachable)
	assert.Empty(t, f.cp.Load().LastUploaded)
}

func TestUploadThenMaintenance(t *testing.T) {
	t.Parallel()

	f := newFixture(t, offSiteTime)

	f.transfer.EXPECT().IsReachable(gomock.Any()).Return(true)
	gomock.InOrder(
		f.transfer.EXPECT().Upload(gomock.Any()).Return(nil),
		f.updater.EXPECT().SyncTime(gomock.Any()).Return(nil),
		f.updater.EXPECT().Behind(gomock.Any()).Return(false, nil),
	)

	out := f.scheduler().Tick(context.Background())
	assert.Equal(t, ActionUpload, out.Action)
	assert.True(t, out.Succeeded)
	assert.False(t, out.Behind)
	assert.Equal(t, testDate, f.cp.Load().LastUploaded)
	assert.False(t, f.ind.Active())
}

func TestUploadFailureStillRunsMaintenance(t *testing.T) {
	t.Parallel()

	f := newFixture(t, offSiteTime)

	f.transfer.EXPECT().IsReachable(gomock.Any()).Return(true)
	f.transfer.EXPECT().Upload(gomock.Any()).Return(errTestTransfer)
	f.updater.EXPECT().SyncTime(gomock.Any()).Return(errors.New("timedatectl missing"))
	f.updater.EXPECT().Behind(gomock.Any()).Return(false, nil)

	out := f.scheduler().Tick(context.Background())
	assert.Equal(t, ActionUpload, out.Action)
	assert.False(t, out.Succeeded)
	assert.Empty(t, f.cp.Load().LastUploaded)
}

func TestBehindRequestsRebootWithoutPendingWork(t *testing.T) {
	t.Parallel()

	f := newFixture(t, offSiteTime)
	require.NoError(t, f.cp.Update(models.FieldLastUploaded, testDate))

	f.transfer.EXPECT().IsReachable(gomock.Any()).Return(true)
	f.updater.EXPECT().SyncTime(gomock.Any()).Return(nil)
	f.updater.EXPECT().Behind(gomock.Any()).Return(true, nil)
	f.stop.EXPECT().RequestStop(gomock.Any(), true)

	out := f.scheduler().Tick(context.Background())
	assert.Equal(t, ActionNone, out.Action)
	assert.True(t, out.Behind)
}

func TestClockBehindCheckpointSkips(t *testing.T) {
	t.Parallel()

	f := newFixture(t, onSiteTime)
	require.NoError(t, f.cp.Update(models.FieldLastStaged, "05/06/2024"))

	out := f.scheduler().Tick(context.Background())
	assert.Equal(t, ActionNone, out.Action)
	assert.Equal(t, "05/06/2024", f.cp.Load().LastStaged)
}

func TestBoundaryHoursTakeUploadPath(t *testing.T) {
	t.Parallel()

	for _, hour := range []int{9, 15} {
		f := newFixture(t, time.Date(2024, 6, 1, hour, 0, 0, 0, time.UTC))

		f.transfer.EXPECT().IsReachable(gomock.Any()).Return(false)

		out := f.scheduler().Tick(context.Background())
		assert.Equal(t, PhaseOffSite, out.Phase, "hour %d", hour)
	}
}
