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

package sensor

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownDriver is returned by Open for a name nothing registered.
var ErrUnknownDriver = errors.New("unknown sensor driver")

// Params carries the driver settings from the node config. Drivers ignore
// the fields they have no use for.
type Params struct {
	Seed      uint64
	ZeroEvery int

	// Device is the serial or SPI device path of a physical counter.
	Device string
}

// Factory opens a driver from its params.
type Factory func(p Params) (Driver, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a driver available under name. Drivers call it from init;
// registering the same name twice panics.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if f == nil {
		panic("sensor: Register factory is nil")
	}

	if _, dup := factories[name]; dup {
		panic("sensor: Register called twice for driver " + name)
	}

	factories[name] = f
}

// Registered reports whether a driver is available under name.
func Registered(name string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	_, ok := factories[name]

	return ok
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Open builds the driver registered under name.
func Open(name string, p Params) (Driver, error) {
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownDriver, name, Drivers())
	}

	return f(p)
}
