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

package sampler

//go:generate mockgen -destination=mock_sampler.go -package=sampler github.com/carverauto/sensornode/pkg/sampler Positioner,Sealer

import (
	"context"

	"github.com/carverauto/sensornode/pkg/models"
)

// Positioner is the live positioning feed of a mobile node.
type Positioner interface {
	LastKnownFix(ctx context.Context) (*models.Fix, error)
}

// Sealer turns a position into the opaque location token stored with a
// reading.
type Sealer interface {
	Seal(pos models.Position) (string, error)
}

// StopSignal is polled once per poll interval. Once it reports true the
// cycle winds down.
type StopSignal interface {
	Stopping() bool
}
