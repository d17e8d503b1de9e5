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
	"strings"

	"github.com/spf13/cobra"

	"github.com/carverauto/sensornode/pkg/crypt"
	"github.com/carverauto/sensornode/pkg/logger"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a keypair for location sealing",
	Long: `Generate an X25519 keypair. Put the recipient in obfuscation.recipient on
the node and keep the identity on the collection side.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		kp, err := crypt.GenerateKeypair()
		if err != nil {
			return err
		}

		log := logger.WithComponent("keygen")
		log.Debug().Str("recipient", kp.Recipient).Msg("Keypair generated")

		fmt.Fprintf(cmd.OutOrStdout(), "# recipient: %s\n%s\n", kp.Recipient, kp.Identity)

		return nil
	},
}

var identity string

var revealCmd = &cobra.Command{
	Use:   "reveal <loc>",
	Short: "Decrypt a sealed LOC value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := crypt.Open(strings.TrimSpace(args[0]), identity)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), crypt.FormatPosition(pos))

		return nil
	},
}

func init() {
	revealCmd.Flags().StringVar(&identity, "identity", "", "AGE-SECRET-KEY identity")
	_ = revealCmd.MarkFlagRequired("identity")

	rootCmd.AddCommand(keygenCmd, revealCmd)
}
