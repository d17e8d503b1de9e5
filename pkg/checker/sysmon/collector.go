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

// Package sysmon takes a small host health snapshot after each duty cycle.
package sysmon

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/carverauto/sensornode/pkg/logger"
)

var errAllCollectorsFailed = errors.New("every health collector failed")

// Snapshot is one health reading of the node.
type Snapshot struct {
	Timestamp        time.Time `json:"timestamp"`
	HostID           string    `json:"host_id"`
	CPUPercent       float64   `json:"cpu_percent"`
	MemoryUsedBytes  uint64    `json:"memory_used_bytes"`
	MemoryTotalBytes uint64    `json:"memory_total_bytes"`
	DiskFreeBytes    uint64    `json:"disk_free_bytes"`
	UptimeSeconds    uint64    `json:"uptime_seconds"`
}

// Collector gathers Snapshots. Individual collector failures are logged and
// reported as zeroes.
type Collector struct {
	log            logger.Logger
	dataDir        string
	sampleInterval time.Duration
	usageCollector func(context.Context, time.Duration, bool) ([]float64, error)
	memCollector   func(context.Context) (*mem.VirtualMemoryStat, error)
	diskCollector  func(context.Context, string) (*disk.UsageStat, error)
	uptime         func(context.Context) (uint64, error)
	hostIdentifier func() string
	now            func() time.Time
}

// NewCollector returns a Collector for cfg.
func NewCollector(cfg Config, log logger.Logger) (*Collector, error) {
	interval, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	return &Collector{
		log:            log,
		dataDir:        cfg.DataDir,
		sampleInterval: interval,
		usageCollector: cpu.PercentWithContext,
		memCollector:   mem.VirtualMemoryWithContext,
		diskCollector:  disk.UsageWithContext,
		uptime:         host.UptimeWithContext,
		hostIdentifier: hostIdentifier,
		now:            time.Now,
	}, nil
}

// Collect takes a snapshot. It only fails when nothing could be read.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Timestamp: c.now().UTC(),
		HostID:    c.hostIdentifier(),
	}

	var failures int

	if usage, err := c.usageCollector(ctx, c.sampleInterval, false); err != nil || len(usage) == 0 {
		c.log.Warn().Err(err).Msg("cpu collection failed; reporting zero")

		failures++
	} else {
		snap.CPUPercent = usage[0]
	}

	if vm, err := c.memCollector(ctx); err != nil {
		c.log.Warn().Err(err).Msg("memory collection failed; reporting zeroes")

		failures++
	} else {
		snap.MemoryUsedBytes = vm.Used
		snap.MemoryTotalBytes = vm.Total
	}

	if du, err := c.diskCollector(ctx, c.dataDir); err != nil {
		c.log.Warn().Err(err).Str("path", c.dataDir).Msg("disk collection failed; reporting zero")

		failures++
	} else {
		snap.DiskFreeBytes = du.Free
	}

	if up, err := c.uptime(ctx); err != nil {
		c.log.Warn().Err(err).Msg("uptime collection failed; reporting zero")

		failures++
	} else {
		snap.UptimeSeconds = up
	}

	if failures == 4 {
		return nil, errAllCollectorsFailed
	}

	return snap, nil
}

func hostIdentifier() string {
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}

	return "unknown"
}
