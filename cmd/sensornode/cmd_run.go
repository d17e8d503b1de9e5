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
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carverauto/sensornode/pkg/agent"
	"github.com/carverauto/sensornode/pkg/lifecycle"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/version"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sampling loop",
	Long: `Run duty cycles until the interrupt input fires, a signal arrives or an
update is detected. Teardown always leaves the sensor off and the status LED
restored.`,
	RunE: runNode,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runNode(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logger.Info().Str("version", version.GetFullVersion()).Str("config", configPath).Msg("Starting sensornode")

	log, err := lifecycle.CreateComponentLogger("sensornode", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	exit, err := agent.Run(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("node stopped (%s): %w", exit.Path, err)
	}

	return nil
}
