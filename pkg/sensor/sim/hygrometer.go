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

package sim

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/carverauto/sensornode/pkg/sensor"
)

// Hygrometer emits slowly drifting humidity and temperature values.
type Hygrometer struct {
	mu          sync.Mutex
	rng         *rand.Rand
	humidity    float64
	temperature float64
}

// NewHygrometer returns a simulated probe seeded with seed.
func NewHygrometer(seed uint64) *Hygrometer {
	return &Hygrometer{
		rng:         rand.New(rand.NewPCG(seed, seed+1)),
		humidity:    65,
		temperature: 15,
	}
}

func (h *Hygrometer) Read(context.Context) (float64, float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.humidity = clamp(h.humidity+h.rng.NormFloat64()*0.5, 0, 100)
	h.temperature += h.rng.NormFloat64() * 0.1

	return h.humidity, h.temperature, nil
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

var _ sensor.Hygrometer = (*Hygrometer)(nil)
