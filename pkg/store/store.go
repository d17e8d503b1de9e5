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

// Package store persists duty-cycle batches on the node.
package store

import (
	"context"
	"errors"
	"regexp"

	"github.com/carverauto/sensornode/pkg/models"
)

var (
	// ErrStoreClosed is returned by InsertBatch once the store has been closed.
	ErrStoreClosed = errors.New("store closed")
	// ErrUnsafeTableName rejects table names that are not plain identifiers.
	ErrUnsafeTableName = errors.New("unsafe table name")
)

var tableNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Engine is the durable batch store used by the node loop. Commit and Close
// on an already closed engine are no-ops.
type Engine interface {
	InsertBatch(ctx context.Context, batch *models.Batch) error
	Commit() error
	Close() error
	ListTables(ctx context.Context) ([]string, error)
	DropTable(ctx context.Context, name string) error
	RebuildSchema(ctx context.Context) error
}

// ValidTableName reports whether name can be interpolated into DDL.
func ValidTableName(name string) bool {
	return tableNameRE.MatchString(name)
}
