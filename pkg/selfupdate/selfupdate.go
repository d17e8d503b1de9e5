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

// Package selfupdate detects when the node's deployed checkout is behind its
// upstream branch and keeps the system clock in sync while online.
package selfupdate

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/carverauto/sensornode/pkg/logger"
)

const defaultCommandTimeout = 2 * time.Minute

// DefaultTimeSyncCommand reports and nudges NTP state on systemd hosts.
var DefaultTimeSyncCommand = []string{"timedatectl", "status"}

// Runner executes an external command and returns its stdout.
type Runner func(ctx context.Context, dir, name string, args ...string) (string, error)

// ExecRunner runs commands with os/exec, folding stderr into the error.
func ExecRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w (stderr: %s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// Config selects the checkout and the time sync command.
type Config struct {
	RepoDir         string
	TimeSyncCommand []string
	Timeout         time.Duration
}

// Checker runs the off-site maintenance side task.
type Checker struct {
	cfg    Config
	run    Runner
	logger logger.Logger
}

// New returns a Checker using ExecRunner.
func New(cfg Config, log logger.Logger) *Checker {
	return NewWithRunner(cfg, ExecRunner, log)
}

// NewWithRunner returns a Checker that executes commands through run.
func NewWithRunner(cfg Config, run Runner, log logger.Logger) *Checker {
	if len(cfg.TimeSyncCommand) == 0 {
		cfg.TimeSyncCommand = DefaultTimeSyncCommand
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCommandTimeout
	}

	return &Checker{cfg: cfg, run: run, logger: log}
}

// SyncTime runs the time sync command and logs its output.
func (c *Checker) SyncTime(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	out, err := c.run(ctx, "", c.cfg.TimeSyncCommand[0], c.cfg.TimeSyncCommand[1:]...)
	if err != nil {
		return fmt.Errorf("time sync: %w", err)
	}

	c.logger.Info().Str("output", strings.TrimSpace(out)).Msg("Time sync")

	return nil
}

// Behind fetches from the remote and reports whether the checkout's branch
// trails its upstream.
func (c *Checker) Behind(ctx context.Context) (bool, error) {
	if c.cfg.RepoDir == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if _, err := c.run(ctx, c.cfg.RepoDir, "git", "fetch", "--quiet"); err != nil {
		return false, err
	}

	out, err := c.run(ctx, c.cfg.RepoDir, "git", "status", "--porcelain", "--branch")
	if err != nil {
		return false, err
	}

	behind := parseBehind(out)

	c.logger.Debug().Bool("behind", behind).Str("repo", c.cfg.RepoDir).Msg("Version check")

	return behind, nil
}

// parseBehind inspects the branch header of `git status --porcelain --branch`,
// e.g. "## main...origin/main [behind 2]".
func parseBehind(status string) bool {
	sc := bufio.NewScanner(strings.NewReader(status))

	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "## ") {
			continue
		}

		open := strings.LastIndex(line, "[")
		if open < 0 || !strings.HasSuffix(line, "]") {
			return false
		}

		for _, part := range strings.Split(line[open+1:len(line)-1], ",") {
			if strings.HasPrefix(strings.TrimSpace(part), "behind ") {
				return true
			}
		}

		return false
	}

	return false
}
