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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sensornode/pkg/lifecycle"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/store"
)

func fakeLED(t *testing.T, root string) string {
	t.Helper()

	dir := filepath.Join(root, "class", "leds", "led1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trigger"), []byte("none [mmc0] timer\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte("0"), 0o644))

	return dir
}

func readTrimmed(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.TrimSpace(string(data))
}

func TestRunCSVModeUntilSignal(t *testing.T) {
	t.Parallel()

	sysfs := t.TempDir()
	ledDir := fakeLED(t, sysfs)
	dataDir := filepath.Join(t.TempDir(), "data")

	cfg := DefaultConfig()
	cfg.DeviceID = "test-node"
	cfg.NodeType = models.NodeTypeStatic
	cfg.DataDir = dataDir
	cfg.CSVMode = true
	cfg.SampleLength = models.Duration(time.Second)
	cfg.SpinDown = models.Duration(10 * time.Millisecond)
	cfg.GPS.Enabled = false
	cfg.GPIO.SysfsRoot = sysfs
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	exit, err := Run(ctx, cfg, logger.NewTestLogger(), lifecycle.WithRebooter(func() error {
		t.Error("reboot must not be requested")

		return nil
	}))
	require.NoError(t, err)

	assert.Equal(t, lifecycle.ExitSignal, exit.Path)
	assert.False(t, exit.Reboot)

	readings, err := store.ReadCSV(filepath.Join(dataDir, store.CSVFileName))
	require.NoError(t, err)
	require.NotEmpty(t, readings)
	assert.Equal(t, "test-node", readings[0].Serial)
	assert.Equal(t, models.NodeTypeStatic, readings[0].Type)

	assert.Equal(t, "mmc0", readTrimmed(t, filepath.Join(ledDir, "trigger")))
	assert.Equal(t, "1", readTrimmed(t, filepath.Join(ledDir, "brightness")))

	_, err = os.Stat(filepath.Join(dataDir, ".uploads"))
	assert.True(t, os.IsNotExist(err), "csv mode keeps no checkpoint")
}

func TestRunSQLiteBuildFailureStillTearsDown(t *testing.T) {
	t.Parallel()

	sysfs := t.TempDir()
	ledDir := fakeLED(t, sysfs)

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	cfg := DefaultConfig()
	cfg.DeviceID = "test-node"
	cfg.NodeType = models.NodeTypeStatic
	cfg.DataDir = filepath.Join(blocker, "data")
	cfg.GPS.Enabled = false
	cfg.GPIO.SysfsRoot = sysfs

	exit, err := Run(context.Background(), cfg, logger.NewTestLogger(), lifecycle.WithRebooter(func() error {
		return nil
	}))
	require.Error(t, err)

	assert.Equal(t, lifecycle.ExitError, exit.Path)
	assert.Equal(t, "mmc0", readTrimmed(t, filepath.Join(ledDir, "trigger")))
}
