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
	"errors"
	"fmt"
)

var errInvalidWindow = errors.New("invalid schedule window")

// Phase is the half of the day an hour falls in.
type Phase int

const (
	// PhaseOnSite hours allow staging.
	PhaseOnSite Phase = iota + 1
	// PhaseOffSite hours allow uploading.
	PhaseOffSite
)

func (p Phase) String() string {
	switch p {
	case PhaseOnSite:
		return "on-site"
	case PhaseOffSite:
		return "off-site"
	default:
		return "unknown"
	}
}

// Window is the on-site hour range. An hour h is on-site when
// Start < h < End; both boundaries belong to the off-site phase.
type Window struct {
	Start int `json:"start_hour" yaml:"start_hour"`
	End   int `json:"end_hour" yaml:"end_hour"`
}

// DefaultWindow is the school-day window.
var DefaultWindow = Window{Start: 9, End: 15}

// Validate checks that the window lies within a day.
func (w Window) Validate() error {
	if w.Start < 0 || w.End > 24 || w.Start >= w.End {
		return fmt.Errorf("%w: [%d, %d]", errInvalidWindow, w.Start, w.End)
	}

	return nil
}

// Classify returns the phase of hour.
func (w Window) Classify(hour int) Phase {
	if w.Start < hour && hour < w.End {
		return PhaseOnSite
	}

	return PhaseOffSite
}
