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

import "time"

// DateLayout is the calendar date format persisted in checkpoints (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// CheckpointField names one of the two persisted sync dates.
type CheckpointField string

const (
	FieldLastStaged   CheckpointField = "last_staged_date"
	FieldLastUploaded CheckpointField = "last_uploaded_date"
)

// Valid reports whether f is one of the known fields.
func (f CheckpointField) Valid() bool {
	return f == FieldLastStaged || f == FieldLastUploaded
}

// Checkpoint records the last dates on which staging and uploading succeeded.
// An empty string means the field is unset.
type Checkpoint struct {
	LastStaged   string `json:"last_staged_date"`
	LastUploaded string `json:"last_uploaded_date"`
}

// Get returns the value stored for field.
func (c Checkpoint) Get(field CheckpointField) string {
	switch field {
	case FieldLastStaged:
		return c.LastStaged
	case FieldLastUploaded:
		return c.LastUploaded
	default:
		return ""
	}
}

// With returns a copy of c with field set to date.
func (c Checkpoint) With(field CheckpointField, date string) Checkpoint {
	switch field {
	case FieldLastStaged:
		c.LastStaged = date
	case FieldLastUploaded:
		c.LastUploaded = date
	}

	return c
}

// FormatDate renders t in the checkpoint date layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a checkpoint date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
