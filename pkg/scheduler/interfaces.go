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

//go:generate mockgen -destination=mock_scheduler.go -package=scheduler github.com/carverauto/sensornode/pkg/scheduler Checkpoints,Transfer,Storage,Updater,StopRequester,Positioning

import (
	"context"

	"github.com/carverauto/sensornode/pkg/models"
)

// Checkpoints is the durable record of sync progress.
type Checkpoints interface {
	Load() models.Checkpoint
	Update(field models.CheckpointField, date string) error
}

// Transfer is the upload/network collaborator.
type Transfer interface {
	IsReachable(ctx context.Context) bool
	Stage(ctx context.Context, deviceID, rootDir string) error
	Upload(ctx context.Context) error
}

// Storage is the part of the batch store the scheduler resets after a
// successful stage.
type Storage interface {
	Commit() error
	RebuildSchema(ctx context.Context) error
}

// Updater runs the off-site maintenance side task.
type Updater interface {
	SyncTime(ctx context.Context) error
	Behind(ctx context.Context) (bool, error)
}

// StopRequester moves the node out of RUNNING.
type StopRequester interface {
	RequestStop(reason string, reboot bool)
}

// Positioning is the GPS feed of a mobile node, restarted before staging
// when it has dropped.
type Positioning interface {
	Alive() bool
	Restart(ctx context.Context) error
}

// Recorder receives sync outcomes for metrics.
type Recorder interface {
	ObserveSync(action string, ok bool)
	SetReachable(ok bool)
}
