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

package lifecycle

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sensornode/pkg/logger"
)

func TestInitializeLoggerFollowsConfig(t *testing.T) {
	require.NoError(t, InitializeLogger(&logger.Config{Level: "warn", Output: "stderr"}))
	assert.Equal(t, zerolog.WarnLevel, log.Logger.GetLevel())

	require.NoError(t, InitializeLogger(&logger.Config{Level: "warn", Debug: true}))
	assert.Equal(t, zerolog.DebugLevel, log.Logger.GetLevel())

	require.Error(t, InitializeLogger(&logger.Config{Level: "loud"}))

	require.NoError(t, InitializeLogger(&logger.Config{Level: "info"}))
}

func TestChildKeepsSingleComponentKey(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	parent := &LoggerImpl{logger: zerolog.New(&buf).With().Str("component", "sensornode").Logger()}

	Child(parent, "sampler").Info().Msg("hello")

	line := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"component"`)), line)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, "sensornode", fields["component"])
	assert.Equal(t, "sampler", fields["subcomponent"])
}
