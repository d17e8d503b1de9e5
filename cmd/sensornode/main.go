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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carverauto/sensornode/pkg/agent"
	"github.com/carverauto/sensornode/pkg/config"
	"github.com/carverauto/sensornode/pkg/lifecycle"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/version"
)

const defaultConfigPath = "/etc/sensornode/sensornode.json"

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "sensornode",
	Short: "Field sensor node runtime",
	Long: `sensornode samples a particulate sensor on a duty cycle, buffers readings
locally and syncs them when the schedule window and network allow.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := logger.InitWithDefaults(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if debug {
			logger.SetDebug(true)
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath,
		"path to the node config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
}

// loadConfig reads the node config on top of the built-in defaults and
// points the process-wide logger at its logging section.
func loadConfig(ctx context.Context) (agent.Config, error) {
	cfg := agent.DefaultConfig()

	if err := config.NewConfig(nil).LoadAndValidate(ctx, configPath, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	if debug {
		if cfg.Logging == nil {
			cfg.Logging = logger.DefaultConfig()
		}

		cfg.Logging.Debug = true
	}

	if err := lifecycle.InitializeLogger(cfg.Logging); err != nil {
		return cfg, err
	}

	logger.Debug().Str("path", configPath).Msg("Configuration loaded")

	return cfg, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error().Err(err).Msg("sensornode failed")
		os.Exit(1)
	}
}
