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

// Package sensor defines the contract between the duty cycle and a
// particulate sensor driver.
package sensor

//go:generate mockgen -destination=mock_sensor.go -package=sensor github.com/carverauto/sensornode/pkg/sensor Driver,Hygrometer

import (
	"context"
	"errors"

	"github.com/carverauto/sensornode/pkg/models"
)

// ErrNotEnabled is returned by Poll before Enable or after Disable.
var ErrNotEnabled = errors.New("sensor not enabled")

// Driver is the particulate sensor. Poll performs no retries of its own;
// a failed poll ends the current duty cycle.
type Driver interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	Poll(ctx context.Context) (*models.SensorSample, error)
}

// Cleaner is implemented by drivers that can run a fan-clean cycle before
// the first duty cycle.
type Cleaner interface {
	Clean(ctx context.Context) error
}

// Hygrometer is an auxiliary temperature/humidity probe. When configured it
// replaces the particulate sensor's own temperature and humidity channels.
type Hygrometer interface {
	Read(ctx context.Context) (humidity, temperature float64, err error)
}
