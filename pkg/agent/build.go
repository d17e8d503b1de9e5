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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/carverauto/sensornode/pkg/checker/sysmon"
	"github.com/carverauto/sensornode/pkg/checkpoint"
	"github.com/carverauto/sensornode/pkg/clock"
	"github.com/carverauto/sensornode/pkg/crypt"
	"github.com/carverauto/sensornode/pkg/gpio"
	"github.com/carverauto/sensornode/pkg/gps"
	"github.com/carverauto/sensornode/pkg/indicator"
	"github.com/carverauto/sensornode/pkg/lifecycle"
	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/metrics"
	"github.com/carverauto/sensornode/pkg/models"
	"github.com/carverauto/sensornode/pkg/sampler"
	"github.com/carverauto/sensornode/pkg/scheduler"
	"github.com/carverauto/sensornode/pkg/selfupdate"
	"github.com/carverauto/sensornode/pkg/sensor"
	"github.com/carverauto/sensornode/pkg/sensor/sim"
	"github.com/carverauto/sensornode/pkg/store"
	"github.com/carverauto/sensornode/pkg/uplink"
)

// DatabaseFile is the local SQLite file under the data directory.
const DatabaseFile = "sensornode.db"

// components tracks what Build has opened so teardown can close exactly
// that. Nil fields were never opened.
type components struct {
	driver      sensor.Driver
	store       store.Engine
	gps         *gps.Client
	led         *gpio.LED
	indicator   *indicator.Indicator
	edge        *gpio.EdgeWatcher
	sink        *uplink.PostgresSink
	stopMetrics context.CancelFunc
}

// registerTeardown adds the shutdown steps in their required order: sensor
// off, store flushed and closed, positioning off, status output restored.
func (c *components) registerTeardown(coord *lifecycle.Coordinator) {
	coord.AddTeardown("sensor", func(ctx context.Context) error {
		if c.driver == nil {
			return nil
		}

		return c.driver.Disable(ctx)
	})

	coord.AddTeardown("store", func(context.Context) error {
		if c.store == nil {
			return nil
		}

		err := errors.Join(c.store.Commit(), c.store.Close())
		if errors.Is(err, store.ErrStoreClosed) {
			return nil
		}

		return err
	})

	coord.AddTeardown("gps", func(context.Context) error {
		if c.gps == nil {
			return nil
		}

		return c.gps.Close()
	})

	coord.AddTeardown("status output", func(context.Context) error {
		if c.indicator != nil {
			c.indicator.StopActive(indicator.IdleOff)
		}

		if c.led == nil {
			return nil
		}

		return c.led.Restore()
	})

	coord.AddTeardown("interrupt", func(context.Context) error {
		if c.edge == nil {
			return nil
		}

		return c.edge.Close()
	})

	coord.AddTeardown("metrics", func(context.Context) error {
		if c.stopMetrics != nil {
			c.stopMetrics()
		}

		return nil
	})

	coord.AddTeardown("upload sink", func(context.Context) error {
		if c.sink == nil {
			return nil
		}

		return c.sink.Close()
	})
}

type discardOutput struct{}

func (discardOutput) On()  {}
func (discardOutput) Off() {}

// schemaSink creates the upload table before the first successful write.
type schemaSink struct {
	*uplink.PostgresSink
	ready bool
}

func (s *schemaSink) WriteReadings(ctx context.Context, readings []models.StoredReading) error {
	if !s.ready {
		if err := s.EnsureSchema(ctx); err != nil {
			return err
		}

		s.ready = true
	}

	return s.PostgresSink.WriteReadings(ctx, readings)
}

// Build opens every collaborator described by cfg and returns a ready
// Agent. Teardown steps are registered on coord before anything is opened,
// so a failure part way through still leaves the hardware safe.
func Build(ctx context.Context, cfg Config, coord *lifecycle.Coordinator, log logger.Logger) (*Agent, error) {
	c := &components{}
	c.registerTeardown(coord)

	serial, err := ResolveSerial(cfg.DeviceID, serialNumberDevicePath)
	if err != nil {
		return nil, err
	}

	status := c.openStatusOutput(cfg, log)
	c.indicator = indicator.New(status)
	c.watchInterrupt(cfg, coord, log)

	driver, err := sensor.Open(cfg.Sensor.Driver, cfg.Sensor.params())
	if err != nil {
		return nil, err
	}

	c.driver = driver

	if cfg.Sensor.Driver == DriverSim {
		log.Warn().Msg("Sensor driver is the simulator, readings are synthetic")
	}

	nodeType := ResolveNodeType(ctx, cfg.NodeType, cfg.GPS.Enabled, func(ctx context.Context) bool {
		return gps.Probe(ctx, cfg.GPS.Address)
	})

	if nodeType.Mobile() {
		c.gps = gps.New(cfg.GPS.Address, lifecycle.Child(log, "gps"))
		if err := c.gps.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("GPS feed unavailable, using static position until it recovers")
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	c.store, err = openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	smp, err := c.newSampler(cfg, serial, nodeType, coord, log)
	if err != nil {
		return nil, err
	}

	c.clean(ctx, driver, log)

	m := metrics.New()
	c.serveMetrics(ctx, cfg, m, log)

	deps := Deps{
		Sampler:  smp,
		Store:    c.store,
		Recorder: m,
		Status:   status,
		Stop:     coord,
	}

	if col, err := sysmon.NewCollector(sysmon.Config{DataDir: cfg.DataDir}, lifecycle.Child(log, "health")); err != nil {
		log.Warn().Err(err).Msg("Health snapshots disabled")
	} else {
		deps.Health = col
	}

	if cfg.CSVMode {
		log.Info().Msg("CSV mode, staging and uploading disabled")
	} else {
		sched, err := c.newScheduler(cfg, serial, coord, m, log)
		if err != nil {
			return nil, err
		}

		deps.Syncer = sched
	}

	log.Info().
		Str("serial", serial).
		Str("node_type", nodeType.String()).
		Bool("csv_mode", cfg.CSVMode).
		Dur("sample_length", cfg.SampleLength.Std()).
		Msg("Node configured")

	return New(cfg.SampleLength.Std(), deps, log), nil
}

// Run builds the agent and drives it under a lifecycle coordinator until a
// stop is requested, ctx ends or the loop fails.
func Run(ctx context.Context, cfg Config, log logger.Logger, opts ...lifecycle.Option) (lifecycle.Exit, error) {
	coord := lifecycle.New(lifecycle.Child(log, "lifecycle"), opts...)

	return coord.Run(ctx, func(ctx context.Context) error {
		a, err := Build(ctx, cfg, coord, log)
		if err != nil {
			return err
		}

		return a.Loop(ctx)
	})
}

func (c *components) openStatusOutput(cfg Config, log logger.Logger) indicator.Output {
	if cfg.GPIO.LED == "" {
		return discardOutput{}
	}

	led, err := gpio.OpenLED(cfg.GPIO.SysfsRoot, cfg.GPIO.LED, lifecycle.Child(log, "led"))
	if err != nil {
		log.Warn().Err(err).Msg("Status LED unavailable")

		return discardOutput{}
	}

	c.led = led

	return led
}

func (c *components) watchInterrupt(cfg Config, coord *lifecycle.Coordinator, log logger.Logger) {
	edge := gpio.NewEdgeWatcher(gpio.EdgeConfig{
		Pin:       cfg.GPIO.InterruptPin,
		Debounce:  cfg.GPIO.Debounce.Std(),
		SysfsRoot: cfg.GPIO.SysfsRoot,
	}, lifecycle.Child(log, "interrupt"))

	if err := edge.Start(coord.Interrupt); err != nil {
		log.Warn().Err(err).Int("pin", cfg.GPIO.InterruptPin).Msg("Interrupt input unavailable")

		return
	}

	c.edge = edge
}

func openStore(cfg Config, log logger.Logger) (store.Engine, error) {
	storeLog := lifecycle.Child(log, "store")

	if cfg.CSVMode {
		s, err := store.OpenCSV(cfg.DataDir, storeLog)
		if err != nil {
			return nil, err
		}

		return s, nil
	}

	s, err := store.OpenSQLite(filepath.Join(cfg.DataDir, DatabaseFile), store.DefaultTable, storeLog)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (c *components) newSampler(cfg Config, serial string, nodeType models.NodeType,
	coord *lifecycle.Coordinator, log logger.Logger) (*sampler.Sampler, error) {
	var sealer sampler.Sealer = crypt.Plain{}

	if cfg.Obfuscation.Recipient != "" {
		s, err := crypt.NewSealer(cfg.Obfuscation.Recipient)
		if err != nil {
			return nil, err
		}

		sealer = s
	}

	var opts []sampler.Option

	if c.gps != nil {
		opts = append(opts, sampler.WithPositioner(c.gps))
	}

	if cfg.Hygrometer.Enabled {
		opts = append(opts, sampler.WithHygrometer(sim.NewHygrometer(cfg.Sensor.Seed)))
	}

	return sampler.New(sampler.Config{
		Serial:       serial,
		NodeType:     nodeType,
		Position:     cfg.Position,
		PollInterval: cfg.PollInterval.Std(),
		SpinDown:     cfg.SpinDown.Std(),
	}, c.driver, sealer, coord, lifecycle.Child(log, "sampler"), opts...), nil
}

// clean runs the fan-clean cycle while the heartbeat blinks.
func (c *components) clean(ctx context.Context, driver sensor.Driver, log logger.Logger) {
	cleaner, ok := driver.(sensor.Cleaner)
	if !ok {
		return
	}

	h, err := c.indicator.Start(indicator.Heartbeat)
	if err == nil {
		defer h.Stop(indicator.IdleOff)
	}

	if err := cleaner.Clean(ctx); err != nil {
		log.Warn().Err(err).Msg("Sensor clean failed")

		return
	}

	log.Info().Msg("Sensor cleaned")
}

func (c *components) serveMetrics(ctx context.Context, cfg Config, m *metrics.Metrics, log logger.Logger) {
	if cfg.Metrics.Addr == "" {
		return
	}

	mctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.stopMetrics = cancel

	go func() {
		if err := m.Serve(mctx, cfg.Metrics.Addr, log); err != nil {
			log.Warn().Err(err).Msg("Metrics endpoint stopped")
		}
	}()
}

func (c *components) newScheduler(cfg Config, serial string, coord *lifecycle.Coordinator,
	m *metrics.Metrics, log logger.Logger) (*scheduler.Scheduler, error) {
	syncLog := lifecycle.Child(log, "sync")

	prober := uplink.NewProber(cfg.Network.ProbeAddress, cfg.Network.Timeout.Std(), syncLog)

	var publisher uplink.Publisher

	if cfg.Stage.NATSURL != "" {
		publisher = uplink.NewNATSPublisher(uplink.NATSConfig{
			URL:     cfg.Stage.NATSURL,
			Bucket:  cfg.Stage.Bucket,
			Domain:  cfg.Stage.Domain,
			Timeout: cfg.Stage.Timeout.Std(),
			Name:    "sensornode-" + serial,

			NKeySeedFile: cfg.Stage.NKeySeedFile,
		}, syncLog)
	}

	stager := uplink.NewStager(publisher, clock.Real(), syncLog)

	var uploader *uplink.Uploader

	if cfg.Upload.DSN != "" {
		sink, err := uplink.OpenPostgres(cfg.Upload.DSN, cfg.Upload.Table)
		if err != nil {
			return nil, err
		}

		c.sink = sink
		uploader = uplink.NewUploader(cfg.DataDir, store.DefaultTable, &schemaSink{PostgresSink: sink}, syncLog)
	}

	opts := []scheduler.Option{
		scheduler.WithIndicator(c.indicator),
		scheduler.WithRecorder(m),
	}

	if c.gps != nil {
		opts = append(opts, scheduler.WithPositioning(c.gps))
	}

	if cfg.Update.Enabled {
		opts = append(opts, scheduler.WithUpdater(selfupdate.New(selfupdate.Config{
			RepoDir:         cfg.Update.RepoDir,
			TimeSyncCommand: cfg.Update.TimeSyncCommand,
		}, lifecycle.Child(log, "update"))))
	}

	return scheduler.New(scheduler.Config{
		DeviceID: serial,
		RootDir:  cfg.DataDir,
		Window:   cfg.Schedule,
	}, checkpoint.New(cfg.DataDir, lifecycle.Child(log, "checkpoint")),
		uplink.NewClient(prober, stager, uploader, syncLog),
		c.store, coord, syncLog, opts...), nil
}
