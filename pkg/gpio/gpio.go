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

// Package gpio talks to the node's GPIO through the sysfs interface: the
// shutdown button edge input and the status LED output.
package gpio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultSysfsRoot is the sysfs mount point.
	DefaultSysfsRoot = "/sys"
	// DefaultDebounce is the minimum spacing between accepted edges.
	DefaultDebounce = 300 * time.Millisecond

	readRetryBase   = 50 * time.Millisecond
	maxReadFailures = 5
)

var (
	// ErrUnsupported is returned by edge watching on platforms without
	// epoll.
	ErrUnsupported = errors.New("gpio edge watch not supported on this platform")
	errWatching    = errors.New("edge watcher already started")
)

// EdgeConfig selects the input pin and debounce window.
type EdgeConfig struct {
	Pin       int
	Debounce  time.Duration
	SysfsRoot string
}

func (c EdgeConfig) withDefaults() EdgeConfig {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}

	if c.SysfsRoot == "" {
		c.SysfsRoot = DefaultSysfsRoot
	}

	return c
}

func (c EdgeConfig) pinDir() string {
	return filepath.Join(c.SysfsRoot, "class", "gpio", "gpio"+strconv.Itoa(c.Pin))
}

// export makes the pin visible in sysfs and configures it as a rising-edge
// input. An already exported pin is reused.
func (c EdgeConfig) export() error {
	if _, err := os.Stat(c.pinDir()); os.IsNotExist(err) {
		exportPath := filepath.Join(c.SysfsRoot, "class", "gpio", "export")
		if err := os.WriteFile(exportPath, []byte(strconv.Itoa(c.Pin)), 0o200); err != nil {
			return fmt.Errorf("gpio export %d: %w", c.Pin, err)
		}
	}

	if err := writeAttr(filepath.Join(c.pinDir(), "direction"), "in"); err != nil {
		return err
	}

	return writeAttr(filepath.Join(c.pinDir(), "edge"), "rising")
}

func writeAttr(path, value string) error {
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("gpio write %s: %w", path, err)
	}

	return nil
}

// debouncer accepts an edge only if the previous accepted edge is at least
// window old.
type debouncer struct {
	window time.Duration

	mu   sync.Mutex
	last time.Time
}

func (d *debouncer) allow(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		return false
	}

	d.last = now

	return true
}

// readBackoff spaces out retries after failed pin reads and gives up after
// max consecutive failures. Delays double from base.
type readBackoff struct {
	base     time.Duration
	max      int
	failures int
}

func (b *readBackoff) fail() (time.Duration, bool) {
	b.failures++

	if b.failures >= b.max {
		return 0, true
	}

	return b.base << (b.failures - 1), false
}

func (b *readBackoff) reset() {
	b.failures = 0
}

// readValue parses a sysfs value attribute ("0\n" or "1\n").
func readValue(data []byte) (bool, error) {
	s := strings.TrimSpace(string(data))

	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("gpio: unexpected value %q", s)
	}
}
