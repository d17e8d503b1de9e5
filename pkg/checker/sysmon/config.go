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

package sysmon

import (
	"time"
)

const (
	defaultSampleInterval = 200 * time.Millisecond
	minSampleInterval     = 50 * time.Millisecond
	maxSampleInterval     = 5 * time.Second
)

// Config controls the health snapshot.
type Config struct {
	// DataDir is the filesystem whose free space is reported.
	DataDir        string `json:"data_dir"`
	SampleInterval string `json:"sample_interval,omitempty"`
}

// Normalize returns the CPU sampling window clamped to sane bounds.
func (c *Config) Normalize() (time.Duration, error) {
	if c.DataDir == "" {
		c.DataDir = "/"
	}

	if c.SampleInterval == "" {
		return defaultSampleInterval, nil
	}

	d, err := time.ParseDuration(c.SampleInterval)
	if err != nil {
		return 0, err
	}

	if d < minSampleInterval {
		d = minSampleInterval
	} else if d > maxSampleInterval {
		d = maxSampleInterval
	}

	return d, nil
}
