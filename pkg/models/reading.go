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

package models

import (
	"time"

	"github.com/google/uuid"
)

// BinCount is the number of histogram bins reported by the particle counter.
const BinCount = 16

// SensorSample is one successful poll of the particulate sensor before it is
// assembled into a Reading.
type SensorSample struct {
	PM1            float64
	PM25           float64
	PM10           float64
	Temperature    float64
	Humidity       float64
	SamplingPeriod float64
	RejectCount    int
	Bins           []float64
}

// Silent reports the sensor no-op condition: both reported concentration
// channels are exactly zero. Silent samples are discarded, not retried.
func (s *SensorSample) Silent() bool {
	return s.PM1 == 0 && s.PM10 == 0
}

// Reading is one accepted sample. Readings are immutable once produced.
type Reading struct {
	Serial         string    `json:"serial"`
	Type           NodeType  `json:"type"`
	Time           string    `json:"time"` // HHMMSS
	Location       string    `json:"loc"`
	PM1            float64   `json:"pm1"`
	PM25           float64   `json:"pm3"`
	PM10           float64   `json:"pm10"`
	Temperature    float64   `json:"t"`
	Humidity       float64   `json:"rh"`
	Bins           []float64 `json:"bins,omitempty"`
	SamplingPeriod float64   `json:"sp"`
	RejectCount    int       `json:"rc"`
	UnixTime       int64     `json:"unixtime"`
}

// StoredReading is a Reading as persisted on the node. BatchID and Seq (the
// local row id) keep it unique once it leaves the node, even when several
// readings share a Unix second.
type StoredReading struct {
	BatchID string `json:"batch_id"`
	Seq     int64  `json:"seq"`
	Reading
}

// Batch is the ordered set of readings produced by one duty cycle.
type Batch struct {
	ID        uuid.UUID `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Readings  []Reading `json:"readings"`
}

// NewBatch returns an empty batch stamped with a fresh identifier.
func NewBatch(started time.Time) Batch {
	return Batch{
		ID:        uuid.New(),
		StartedAt: started,
	}
}

func (b *Batch) Len() int {
	return len(b.Readings)
}
