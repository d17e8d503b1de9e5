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

// Package uplink moves locally stored batches off the node: staging to the
// on-site collection point and uploading to final storage.
package uplink

import (
	"context"
	"errors"

	"github.com/carverauto/sensornode/pkg/logger"
)

const (
	// StagedDir holds archive copies under the data directory until they
	// have been uploaded.
	StagedDir = "staged"
	// UploadedDir holds archives already written to final storage.
	UploadedDir = "uploaded"
)

var (
	errNoUploader = errors.New("no uploader configured")
	errNoStager   = errors.New("no stager configured")
)

// Client bundles the reachability probe, stager and uploader behind the
// single collaborator the sync scheduler talks to.
type Client struct {
	prober   *Prober
	stager   *Stager
	uploader *Uploader
	logger   logger.Logger
}

// NewClient returns a Client. stager and uploader may be nil, in which case
// the corresponding operation fails and the checkpoint is left untouched.
func NewClient(prober *Prober, stager *Stager, uploader *Uploader, log logger.Logger) *Client {
	return &Client{prober: prober, stager: stager, uploader: uploader, logger: log}
}

func (c *Client) IsReachable(ctx context.Context) bool {
	return c.prober.IsReachable(ctx)
}

func (c *Client) Stage(ctx context.Context, deviceID, rootDir string) error {
	if c.stager == nil {
		return errNoStager
	}

	return c.stager.Stage(ctx, deviceID, rootDir)
}

func (c *Client) Upload(ctx context.Context) error {
	if c.uploader == nil {
		return errNoUploader
	}

	return c.uploader.Upload(ctx)
}
