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

// Package metrics exposes node counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carverauto/sensornode/pkg/checker/sysmon"
	"github.com/carverauto/sensornode/pkg/logger"
)

const (
	namespace       = "sensornode"
	shutdownTimeout = 5 * time.Second
)

// Sync actions and results used as label values.
const (
	ActionStage  = "stage"
	ActionUpload = "upload"
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Metrics holds every collector on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	cycles        prometheus.Counter
	cycleFailures prometheus.Counter
	readings      prometheus.Counter
	lastReadings  prometheus.Gauge
	cycleDuration prometheus.Histogram
	syncs         *prometheus.CounterVec
	reachable     prometheus.Gauge

	cpuPercent    prometheus.Gauge
	memUsedBytes  prometheus.Gauge
	diskFreeBytes prometheus.Gauge
	uptimeSeconds prometheus.Gauge
}

// New registers the node collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Duty cycles run.",
		}),
		cycleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_failures_total",
			Help:      "Duty cycles cut short by a sensor failure.",
		}),
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Readings accepted and stored.",
		}),
		lastReadings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_readings",
			Help:      "Readings accepted in the most recent cycle.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a duty cycle including spin-down.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_attempts_total",
			Help:      "Stage and upload attempts by result.",
		}, []string{"action", "result"}),
		reachable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_reachable",
			Help:      "1 if the last reachability probe succeeded.",
		}),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_percent",
			Help:      "CPU utilisation at the last health snapshot.",
		}),
		memUsedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_used_bytes",
			Help:      "Memory in use at the last health snapshot.",
		}),
		diskFreeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "data_dir_free_bytes",
			Help:      "Free space on the data directory filesystem.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Host uptime.",
		}),
	}

	m.reg.MustRegister(
		m.cycles, m.cycleFailures, m.readings, m.lastReadings, m.cycleDuration,
		m.syncs, m.reachable,
		m.cpuPercent, m.memUsedBytes, m.diskFreeBytes, m.uptimeSeconds,
	)

	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// ObserveCycle records one duty cycle.
func (m *Metrics) ObserveCycle(readings int, elapsed time.Duration, failed bool) {
	m.cycles.Inc()
	m.readings.Add(float64(readings))
	m.lastReadings.Set(float64(readings))
	m.cycleDuration.Observe(elapsed.Seconds())

	if failed {
		m.cycleFailures.Inc()
	}
}

// ObserveSync records a stage or upload attempt.
func (m *Metrics) ObserveSync(action string, ok bool) {
	result := ResultOK
	if !ok {
		result = ResultFailed
	}

	m.syncs.WithLabelValues(action, result).Inc()
}

// SetReachable records the outcome of a reachability probe.
func (m *Metrics) SetReachable(ok bool) {
	if ok {
		m.reachable.Set(1)
	} else {
		m.reachable.Set(0)
	}
}

// SetHealth publishes a health snapshot.
func (m *Metrics) SetHealth(s *sysmon.Snapshot) {
	if s == nil {
		return
	}

	m.cpuPercent.Set(s.CPUPercent)
	m.memUsedBytes.Set(float64(s.MemoryUsedBytes))
	m.diskFreeBytes.Set(float64(s.DiskFreeBytes))
	m.uptimeSeconds.Set(float64(s.UptimeSeconds))
}

// Handler serves the registry and a liveness probe.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

// Serve listens on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", addr).Msg("Metrics endpoint listening")

		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}
}
