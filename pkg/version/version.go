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

// Package version reports the build version of sensornode.
package version

// Set via -ldflags "-X github.com/carverauto/sensornode/pkg/version.version=..."
//
//nolint:gochecknoglobals // ldflags injection target
var (
	version = "dev"
	buildID = "dev"
)

func GetVersion() string {
	return version
}

func GetBuildID() string {
	return buildID
}

// GetFullVersion returns version with build ID.
func GetFullVersion() string {
	return version + " (build: " + buildID + ")"
}
