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

//go:generate mockgen -destination=mock_agent.go -package=agent github.com/carverauto/sensornode/pkg/agent Sampler,Store,Syncer,HealthCollector

import (
	"context"
	"time"

	"github.com/carverauto/sensornode/pkg/checker/sysmon"
	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/scheduler"
)

// Sampler runs one duty cycle.
type Sampler interface {
	RunCycle(ctx context.Context, budget time.Duration) (models.Batch, error)
}

// Store persists batches locally.
type Store interface {
	InsertBatch(ctx context.Context, batch *models.Batch) error
	Commit() error
	Close() error
}

// Syncer decides and performs staging or uploading.
type Syncer interface {
	Tick(ctx context.Context) scheduler.Outcome
}

// HealthCollector snapshots node health after each cycle.
type HealthCollector interface {
	Collect(ctx context.Context) (*sysmon.Snapshot, error)
}

// Recorder receives per-cycle observations.
type Recorder interface {
	ObserveCycle(readings int, elapsed time.Duration, failed bool)
	SetHealth(s *sysmon.Snapshot)
}

// StopSignal reports whether the node is shutting down.
type StopSignal interface {
	Stopping() bool
}
