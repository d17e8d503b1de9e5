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

	"github.com/carverauto/sensornode/pkg/checkpoint"
	"github.com/carverauto/sensornode/pkg/lifecycle"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect the sync checkpoint",
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the last staged and uploaded dates",
	RunE:  runCheckpointShow,
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
}

func runCheckpointShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	log, err := lifecycle.CreateComponentLogger("checkpoint", cfg.Logging)
	if err != nil {
		return err
	}

	cp := checkpoint.New(cfg.DataDir, log)

	out, err := json.MarshalIndent(cp.Load(), "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}
