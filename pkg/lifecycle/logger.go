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
	"fmt"

	"github.com/rs/zerolog"

	"github.com/carverauto/sensornode/pkg/logger"
)

// InitializeLogger configures the package-level logger. A nil config uses
// the environment defaults.
func InitializeLogger(config *logger.Config) error {
	if config == nil {
		config = logger.DefaultConfig()
	}

	if err := logger.Init(config); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// LoggerImpl implements logger.Logger on an owned zerolog.Logger.
type LoggerImpl struct {
	logger zerolog.Logger
}

// NewLoggerImpl builds a logger from config without touching global state.
func NewLoggerImpl(config *logger.Config) (*LoggerImpl, error) {
	if config == nil {
		config = logger.DefaultConfig()
	}

	level, err := logger.ParseLevel(config)
	if err != nil {
		return nil, err
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	zlog := zerolog.New(logger.OutputWriter(config)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &LoggerImpl{logger: zlog}, nil
}

func (l *LoggerImpl) Trace() *zerolog.Event {
	return l.logger.Trace()
}

func (l *LoggerImpl) Debug() *zerolog.Event {
	return l.logger.Debug()
}

func (l *LoggerImpl) Info() *zerolog.Event {
	return l.logger.Info()
}

func (l *LoggerImpl) Warn() *zerolog.Event {
	return l.logger.Warn()
}

func (l *LoggerImpl) Error() *zerolog.Event {
	return l.logger.Error()
}

func (l *LoggerImpl) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

func (l *LoggerImpl) Panic() *zerolog.Event {
	return l.logger.Panic()
}

func (l *LoggerImpl) With() zerolog.Context {
	return l.logger.With()
}

func (l *LoggerImpl) WithComponent(component string) zerolog.Logger {
	return l.logger.With().Str("component", component).Logger()
}

func (l *LoggerImpl) WithFields(fields map[string]interface{}) zerolog.Logger {
	ctx := l.logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}

	return ctx.Logger()
}

func (l *LoggerImpl) SetLevel(level zerolog.Level) {
	l.logger = l.logger.Level(level)
}

func (l *LoggerImpl) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)
	} else {
		l.SetLevel(zerolog.InfoLevel)
	}
}

// CreateLogger returns an injectable logger built from config.
func CreateLogger(config *logger.Config) (logger.Logger, error) {
	return NewLoggerImpl(config)
}

// CreateComponentLogger returns a logger tagged with component.
func CreateComponentLogger(component string, config *logger.Config) (logger.Logger, error) {
	impl, err := NewLoggerImpl(config)
	if err != nil {
		return nil, err
	}

	return &LoggerImpl{
		logger: impl.logger.With().Str("component", component).Logger(),
	}, nil
}

// Child derives a logger for one part of the parent's component. The part
// goes under "subcomponent" so each line carries a single "component" key.
func Child(parent logger.Logger, subcomponent string) logger.Logger {
	return &LoggerImpl{logger: parent.With().Str("subcomponent", subcomponent).Logger()}
}
