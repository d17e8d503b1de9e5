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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carverauto/sensornode/pkg/agent"
	"github.com/carverauto/sensornode/pkg/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file and print the effective settings",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	log := logger.WithFields(map[string]interface{}{
		"path":     configPath,
		"csv_mode": cfg.CSVMode,
		"driver":   cfg.Sensor.Driver,
	})
	log.Debug().Msg("Configuration valid")

	if cfg.Sensor.Driver == agent.DriverSim {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: sensor driver %q produces simulated readings\n", cfg.Sensor.Driver)
	}

	cfg.Upload.DSN = redact(cfg.Upload.DSN)

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}

	return "[redacted]"
}
