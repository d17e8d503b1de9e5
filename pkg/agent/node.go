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

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/carverauto/sensornode/pkg/models"
)

var errNoSerial = errors.New("no device serial available")

// ResolveSerial returns the configured device id, falling back to the
// board serial number and then the hostname.
func ResolveSerial(configured, serialPath string) (string, error) {
	if id := strings.TrimSpace(configured); id != "" {
		return id, nil
	}

	if serialPath != "" {
		if raw, err := os.ReadFile(serialPath); err == nil {
			if id := strings.TrimSpace(strings.Trim(string(raw), "\x00")); id != "" {
				return id, nil
			}
		}
	}

	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errNoSerial, err)
	}

	if host == "" {
		return "", errNoSerial
	}

	return host, nil
}

// ResolveNodeType returns the configured node type, or detects one when it
// is unset: a reachable positioning feed means mobile, otherwise static.
func ResolveNodeType(ctx context.Context, configured models.NodeType, gpsEnabled bool,
	probe func(ctx context.Context) bool) models.NodeType {
	if configured != models.NodeTypeUnknown {
		return configured
	}

	if gpsEnabled && probe != nil && probe(ctx) {
		return models.NodeTypeMobile
	}

	return models.NodeTypeStatic
}
