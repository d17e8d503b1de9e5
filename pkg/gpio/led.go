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

package gpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/carverauto/sensornode/pkg/logger"
)

// LED drives a kernel LED class device. While the node owns it the trigger
// is set to "none"; Restore hands it back lit with its original trigger.
type LED struct {
	dir    string
	logger logger.Logger

	mu      sync.Mutex
	trigger string
}

// OpenLED takes control of /sys/class/leds/<name>.
func OpenLED(sysfsRoot, name string, log logger.Logger) (*LED, error) {
	if sysfsRoot == "" {
		sysfsRoot = DefaultSysfsRoot
	}

	l := &LED{dir: filepath.Join(sysfsRoot, "class", "leds", name), logger: log}

	data, err := os.ReadFile(filepath.Join(l.dir, "trigger"))
	if err != nil {
		return nil, fmt.Errorf("led %s: %w", name, err)
	}

	l.trigger = selectedTrigger(string(data))

	if err := writeAttr(filepath.Join(l.dir, "trigger"), "none"); err != nil {
		return nil, err
	}

	return l, nil
}

// selectedTrigger extracts the bracketed entry of a trigger listing such as
// "none [mmc0] timer".
func selectedTrigger(listing string) string {
	for _, f := range strings.Fields(listing) {
		if strings.HasPrefix(f, "[") && strings.HasSuffix(f, "]") {
			return strings.Trim(f, "[]")
		}
	}

	return "none"
}

func (l *LED) On() {
	l.set("1")
}

func (l *LED) Off() {
	l.set("0")
}

func (l *LED) set(v string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := writeAttr(filepath.Join(l.dir, "brightness"), v); err != nil {
		l.logger.Debug().Err(err).Msg("LED write failed")
	}
}

// Restore lights the LED and reinstates the trigger found at open.
func (l *LED) Restore() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := writeAttr(filepath.Join(l.dir, "brightness"), "1"); err != nil {
		return err
	}

	return writeAttr(filepath.Join(l.dir, "trigger"), l.trigger)
}
