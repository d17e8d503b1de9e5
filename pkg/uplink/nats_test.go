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

package uplink

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sensornode/pkg/logger"
)

type fakeObjectStore struct {
	objects map[string][]byte
	err     error
}

func (f *fakeObjectStore) Put(_ context.Context, meta jetstream.ObjectMeta, r io.Reader) error {
	if f.err != nil {
		return f.err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	f.objects[meta.Name] = data

	return nil
}

func TestNATSPublisherPutsFileAndCloses(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.db")
	require.NoError(t, os.WriteFile(path, []byte("sqlite bytes"), 0o600))

	obs := &fakeObjectStore{objects: map[string][]byte{}}
	closed := 0

	p := NewNATSPublisher(NATSConfig{URL: "nats://unused", Bucket: "stage"}, logger.NewTestLogger())
	p.connect = func(context.Context) (objectPutter, func(), error) {
		return obs, func() { closed++ }, nil
	}

	require.NoError(t, p.Publish(context.Background(), "node_a.db", path))
	assert.Equal(t, []byte("sqlite bytes"), obs.objects["node_a.db"])
	assert.Equal(t, 1, closed)
}

func TestNATSPublisherConnectFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("no route to host")

	p := NewNATSPublisher(NATSConfig{URL: "nats://unused", Bucket: "stage"}, logger.NewTestLogger())
	p.connect = func(context.Context) (objectPutter, func(), error) {
		return nil, nil, boom
	}

	require.ErrorIs(t, p.Publish(context.Background(), "x", "/nonexistent"), boom)
}
