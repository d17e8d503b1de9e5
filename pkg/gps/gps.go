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

// Package gps follows a gpsd daemon and keeps the most recent position fix.
package gps

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/carverauto/sensornode/pkg/logger"
	"github.com/carverauto/sensornode/pkg/models"
)

const (
	// DefaultAddress is gpsd's standard listener.
	DefaultAddress = "localhost:2947"

	defaultDialTimeout = 2 * time.Second
	defaultMaxAge      = 30 * time.Second
	watchCommand       = `?WATCH={"enable":true,"json":true};` + "\n"
	fixTimeLayout      = "150405"
)

var (
	// ErrNoFix is returned while no fresh 2D or better fix is held.
	ErrNoFix     = errors.New("no gps fix")
	errNotActive = errors.New("gps client not running")
)

// tpv is the subset of gpsd's time-position-velocity report in use.
type tpv struct {
	Class  string    `json:"class"`
	Mode   int       `json:"mode"`
	Time   time.Time `json:"time"`
	Lat    float64   `json:"lat"`
	Lon    float64   `json:"lon"`
	Alt    float64   `json:"alt"`
	AltHAE float64   `json:"altHAE"`
}

// Client keeps a gpsd WATCH session open in the background.
type Client struct {
	address string
	maxAge  time.Duration
	now     func() time.Time
	logger  logger.Logger

	mu       sync.Mutex
	conn     net.Conn
	done     chan struct{}
	last     *models.Fix
	lastSeen time.Time
}

// New returns a client for the gpsd at address.
func New(address string, log logger.Logger) *Client {
	if address == "" {
		address = DefaultAddress
	}

	return &Client{address: address, maxAge: defaultMaxAge, now: time.Now, logger: log}
}

// Probe reports whether a gpsd is listening at address. Node type
// autodetection treats a reachable gpsd as a mobile node.
func Probe(ctx context.Context, address string) bool {
	if address == "" {
		address = DefaultAddress
	}

	d := net.Dialer{Timeout: defaultDialTimeout}

	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return false
	}

	_ = conn.Close()

	return true
}

// Start connects and begins reading reports.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	d := net.Dialer{Timeout: defaultDialTimeout}

	conn, err := d.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return fmt.Errorf("gpsd dial %s: %w", c.address, err)
	}

	if _, err := conn.Write([]byte(watchCommand)); err != nil {
		_ = conn.Close()

		return fmt.Errorf("gpsd watch: %w", err)
	}

	c.conn = conn
	c.done = make(chan struct{})

	go c.read(conn, c.done)

	c.logger.Info().Str("address", c.address).Msg("GPS watch started")

	return nil
}

func (c *Client) read(conn net.Conn, done chan struct{}) {
	defer close(done)

	sc := bufio.NewScanner(conn)

	for sc.Scan() {
		var report tpv
		if err := json.Unmarshal(sc.Bytes(), &report); err != nil || report.Class != "TPV" {
			continue
		}

		if report.Mode < 2 {
			continue
		}

		alt := report.Alt
		if alt == 0 {
			alt = report.AltHAE
		}

		c.mu.Lock()

		seen := c.now()

		ts := report.Time
		if ts.IsZero() {
			ts = seen
		}

		c.last = &models.Fix{
			Time: ts.UTC().Format(fixTimeLayout),
			Lat:  report.Lat,
			Lon:  report.Lon,
			Alt:  alt,
		}
		c.lastSeen = seen
		c.mu.Unlock()
	}

	if err := sc.Err(); err != nil {
		c.logger.Debug().Err(err).Msg("gpsd stream ended")
	}
}

// LastKnownFix returns the newest fix if it is fresh enough.
func (c *Client) LastKnownFix(context.Context) (*models.Fix, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil || c.now().Sub(c.lastSeen) > c.maxAge {
		return nil, ErrNoFix
	}

	fix := *c.last

	return &fix, nil
}

// Alive reports whether the watch session is still connected.
func (c *Client) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return false
	}

	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Restart tears down the session and opens a new one.
func (c *Client) Restart(ctx context.Context) error {
	if err := c.Close(); err != nil && !errors.Is(err, errNotActive) {
		c.logger.Debug().Err(err).Msg("gpsd close before restart")
	}

	return c.Start(ctx)
}

// Close ends the watch session.
func (c *Client) Close() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close()
	<-done

	c.logger.Info().Msg("GPS watch stopped")

	return err
}
