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

// Package crypt seals reading locations so that position is only
// recoverable by the holder of the collection key.
//
// A location is rendered as "lat_lon_alt", encrypted with age to one or
// more X25519 recipients, and base64-encoded for storage in the LOC column.
package crypt

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"filippo.io/age"

	"github.com/carverauto/sensornode/pkg/models"
)

var (
	errNoRecipients      = errors.New("at least one recipient is required")
	errMalformedLocation = errors.New("malformed location")
)

// Sealer encrypts positions to a fixed recipient set.
type Sealer struct {
	recipients []age.Recipient
}

// NewSealer parses recipientKeys (age1... strings).
func NewSealer(recipientKeys ...string) (*Sealer, error) {
	if len(recipientKeys) == 0 {
		return nil, errNoRecipients
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))

	for _, key := range recipientKeys {
		r, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}

		recipients = append(recipients, r)
	}

	return &Sealer{recipients: recipients}, nil
}

// Seal returns the location token for pos.
func (s *Sealer) Seal(pos models.Position) (string, error) {
	var buf bytes.Buffer

	w, err := age.Encrypt(&buf, s.recipients...)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}

	if _, err := io.WriteString(w, FormatPosition(pos)); err != nil {
		return "", fmt.Errorf("writing location: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing age encryption: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Open recovers the position from a token produced by Seal.
func Open(token, identity string) (models.Position, error) {
	id, err := age.ParseX25519Identity(strings.TrimSpace(identity))
	if err != nil {
		return models.Position{}, fmt.Errorf("parsing identity: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return models.Position{}, fmt.Errorf("decoding base64 token: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(raw), id)
	if err != nil {
		return models.Position{}, fmt.Errorf("decrypting: %w", err)
	}

	plain, err := io.ReadAll(r)
	if err != nil {
		return models.Position{}, fmt.Errorf("reading decrypted location: %w", err)
	}

	return ParsePosition(string(plain))
}

// Keypair is a freshly generated collection key.
type Keypair struct {
	Identity  string
	Recipient string
}

// GenerateKeypair creates a new X25519 identity for a collection server.
func GenerateKeypair() (Keypair, error) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return Keypair{}, fmt.Errorf("generating age keypair: %w", err)
	}

	return Keypair{Identity: id.String(), Recipient: id.Recipient().String()}, nil
}

// Plain renders positions without encryption. Used on bench nodes that have
// no collection key configured.
type Plain struct{}

func (Plain) Seal(pos models.Position) (string, error) {
	return FormatPosition(pos), nil
}

// FormatPosition renders pos as "lat_lon_alt".
func FormatPosition(pos models.Position) string {
	return strings.Join([]string{
		strconv.FormatFloat(pos.Lat, 'f', -1, 64),
		strconv.FormatFloat(pos.Lon, 'f', -1, 64),
		strconv.FormatFloat(pos.Alt, 'f', -1, 64),
	}, "_")
}

// ParsePosition is the inverse of FormatPosition.
func ParsePosition(s string) (models.Position, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return models.Position{}, fmt.Errorf("%w: %q", errMalformedLocation, s)
	}

	var vals [3]float64

	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return models.Position{}, fmt.Errorf("%w: %q: %w", errMalformedLocation, s, err)
		}

		vals[i] = v
	}

	return models.Position{Lat: vals[0], Lon: vals[1], Alt: vals[2]}, nil
}
