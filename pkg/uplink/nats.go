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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"

	"github.com/carverauto/sensornode/pkg/logger"
)

const defaultNATSTimeout = 10 * time.Second

var errNotUserSeed = errors.New("nkey seed is not a user seed")

// NATSConfig configures staging to a JetStream object store.
type NATSConfig struct {
	URL     string
	Bucket  string
	Domain  string
	Timeout time.Duration
	Name    string

	// NKeySeedFile authenticates with a user nkey when set.
	NKeySeedFile string
}

type objectPutter interface {
	Put(ctx context.Context, meta jetstream.ObjectMeta, r io.Reader) error
}

type connectFunc func(ctx context.Context) (objectPutter, func(), error)

// NATSPublisher uploads archives to a JetStream object store bucket. It
// connects per Publish call since the node is only on-site briefly.
type NATSPublisher struct {
	cfg     NATSConfig
	connect connectFunc
	logger  logger.Logger
}

// NewNATSPublisher returns a publisher for cfg.
func NewNATSPublisher(cfg NATSConfig, log logger.Logger) *NATSPublisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultNATSTimeout
	}

	if cfg.Name == "" {
		cfg.Name = "sensornode"
	}

	p := &NATSPublisher{cfg: cfg, logger: log}
	p.connect = p.dial

	return p
}

func (p *NATSPublisher) Publish(ctx context.Context, name, path string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	store, closeFn, err := p.connect(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := store.Put(ctx, jetstream.ObjectMeta{Name: name}, f); err != nil {
		return fmt.Errorf("object store put %s: %w", name, err)
	}

	p.logger.Debug().Str("bucket", p.cfg.Bucket).Str("object", name).Msg("Published archive")

	return nil
}

type jsObjectStore struct {
	obs jetstream.ObjectStore
}

func (s jsObjectStore) Put(ctx context.Context, meta jetstream.ObjectMeta, r io.Reader) error {
	_, err := s.obs.Put(ctx, meta, r)

	return err
}

// nkeyOption signs the server nonce with the user seed read from path.
func nkeyOption(path string) (nats.Option, error) {
	seed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nkey seed: %w", err)
	}

	kp, err := nkeys.FromSeed(bytes.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("nkey seed %s: %w", path, err)
	}

	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("nkey seed %s: %w", path, err)
	}

	if !nkeys.IsValidPublicUserKey(pub) {
		return nil, fmt.Errorf("%w: %s", errNotUserSeed, path)
	}

	return nats.Nkey(pub, kp.Sign), nil
}

func (p *NATSPublisher) dial(ctx context.Context) (objectPutter, func(), error) {
	opts := []nats.Option{
		nats.Name(p.cfg.Name),
		nats.Timeout(p.cfg.Timeout),
		nats.MaxReconnects(0),
	}

	if p.cfg.NKeySeedFile != "" {
		opt, err := nkeyOption(p.cfg.NKeySeedFile)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, opt)
	}

	nc, err := nats.Connect(p.cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect %s: %w", p.cfg.URL, err)
	}

	var js jetstream.JetStream

	if p.cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, p.cfg.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		nc.Close()

		return nil, nil, err
	}

	obs, err := js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      p.cfg.Bucket,
		Description: "sensor node staged archives",
	})
	if err != nil {
		nc.Close()

		return nil, nil, fmt.Errorf("object store %s: %w", p.cfg.Bucket, err)
	}

	return jsObjectStore{obs: obs}, nc.Close, nil
}
