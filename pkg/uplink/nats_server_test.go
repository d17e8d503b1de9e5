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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sensornode/pkg/logger"
)

func runJetStreamServer(t *testing.T, opts *server.Options) *server.Server {
	t.Helper()

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	t.Cleanup(srv.Shutdown)

	return srv
}

func jetStreamOptions(t *testing.T) *server.Options {
	t.Helper()

	return &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	}
}

func writeSeed(t *testing.T, kp nkeys.KeyPair) string {
	t.Helper()

	seed, err := kp.Seed()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "stage.nk")
	require.NoError(t, os.WriteFile(path, append(seed, '\n'), 0o600))

	return path
}

func readObject(t *testing.T, url string, opts []nats.Option, bucket, name string) []byte {
	t.Helper()

	nc, err := nats.Connect(url, opts...)
	require.NoError(t, err)

	defer nc.Close()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	obs, err := js.ObjectStore(ctx, bucket)
	require.NoError(t, err)

	data, err := obs.GetBytes(ctx, name)
	require.NoError(t, err)

	return data
}

func TestNATSPublisherStoresObjectInJetStream(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	srv := runJetStreamServer(t, jetStreamOptions(t))

	path := filepath.Join(t.TempDir(), "a.db")
	require.NoError(t, os.WriteFile(path, []byte("sqlite bytes"), 0o600))

	p := NewNATSPublisher(NATSConfig{URL: srv.ClientURL(), Bucket: "stage", Timeout: 5 * time.Second},
		logger.NewTestLogger())

	require.NoError(t, p.Publish(context.Background(), "node1_a.db", path))
	// the bucket already exists on the second publish
	require.NoError(t, p.Publish(context.Background(), "node1_b.db", path))

	assert.Equal(t, []byte("sqlite bytes"), readObject(t, srv.ClientURL(), nil, "stage", "node1_a.db"))
	assert.Equal(t, []byte("sqlite bytes"), readObject(t, srv.ClientURL(), nil, "stage", "node1_b.db"))
}

func TestNATSPublisherNKeyAuth(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	user, err := nkeys.CreateUser()
	require.NoError(t, err)

	pub, err := user.PublicKey()
	require.NoError(t, err)

	opts := jetStreamOptions(t)
	opts.Nkeys = []*server.NkeyUser{{Nkey: pub}}
	srv := runJetStreamServer(t, opts)

	path := filepath.Join(t.TempDir(), "a.db")
	require.NoError(t, os.WriteFile(path, []byte("sealed"), 0o600))

	cfg := NATSConfig{URL: srv.ClientURL(), Bucket: "stage", Timeout: 5 * time.Second, NKeySeedFile: writeSeed(t, user)}
	require.NoError(t, NewNATSPublisher(cfg, logger.NewTestLogger()).Publish(context.Background(), "n.db", path))

	authOpt, err := nkeyOption(cfg.NKeySeedFile)
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed"), readObject(t, srv.ClientURL(), []nats.Option{authOpt}, "stage", "n.db"))

	stranger, err := nkeys.CreateUser()
	require.NoError(t, err)

	cfg.NKeySeedFile = writeSeed(t, stranger)
	require.Error(t, NewNATSPublisher(cfg, logger.NewTestLogger()).Publish(context.Background(), "m.db", path))

	cfg.NKeySeedFile = ""
	require.Error(t, NewNATSPublisher(cfg, logger.NewTestLogger()).Publish(context.Background(), "m.db", path))
}

func TestNKeyOptionRejectsBadSeeds(t *testing.T) {
	t.Parallel()

	_, err := nkeyOption(filepath.Join(t.TempDir(), "missing.nk"))
	require.Error(t, err)

	account, err := nkeys.CreateAccount()
	require.NoError(t, err)

	_, err = nkeyOption(writeSeed(t, account))
	require.ErrorIs(t, err, errNotUserSeed)

	garbage := filepath.Join(t.TempDir(), "garbage.nk")
	require.NoError(t, os.WriteFile(garbage, []byte("not a seed"), 0o600))

	_, err = nkeyOption(garbage)
	require.Error(t, err)
}
