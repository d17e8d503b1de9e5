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

package gps

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sensornode/pkg/logger"
)

// fakeGPSD accepts one client, waits for WATCH and then writes lines.
func fakeGPSD(t *testing.T, lines ...string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}

		for _, l := range lines {
			if _, err := conn.Write([]byte(l + "\n")); err != nil {
				return
			}
		}

		// hold the session open until the client hangs up
		buf := make([]byte, 1)
		_, _ = conn.Read(buf)
	}()

	return ln.Addr().String()
}

func TestClientTracksLatestFix(t *testing.T) {
	t.Parallel()

	addr := fakeGPSD(t,
		`{"class":"VERSION","release":"3.22"}`,
		`{"class":"TPV","mode":1}`,
		`{"class":"TPV","mode":3,"time":"2024-06-01T10:15:30.000Z","lat":51.5,"lon":-0.12,"alt":35.5}`,
		`{"class":"SKY","satellites":[]}`,
	)

	c := New(addr, logger.NewTestLogger())
	require.NoError(t, c.Start(context.Background()))

	t.Cleanup(func() { _ = c.Close() })

	require.Eventually(t, func() bool {
		_, err := c.LastKnownFix(context.Background())

		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	fix, err := c.LastKnownFix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "101530", fix.Time)
	assert.InDelta(t, 51.5, fix.Lat, 0)
	assert.InDelta(t, -0.12, fix.Lon, 0)
	assert.InDelta(t, 35.5, fix.Alt, 0)
	assert.True(t, c.Alive())
}

func TestStaleFixIsRejected(t *testing.T) {
	t.Parallel()

	addr := fakeGPSD(t, `{"class":"TPV","mode":2,"lat":1,"lon":2}`)

	c := New(addr, logger.NewTestLogger())
	require.NoError(t, c.Start(context.Background()))

	t.Cleanup(func() { _ = c.Close() })

	require.Eventually(t, func() bool {
		_, err := c.LastKnownFix(context.Background())

		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	c.mu.Lock()
	c.now = func() time.Time { return time.Now().Add(time.Hour) }
	c.mu.Unlock()

	_, err := c.LastKnownFix(context.Background())
	require.ErrorIs(t, err, ErrNoFix)
}

func TestNoFixBeforeStart(t *testing.T) {
	t.Parallel()

	c := New("127.0.0.1:1", logger.NewTestLogger())

	_, err := c.LastKnownFix(context.Background())
	require.ErrorIs(t, err, ErrNoFix)
	assert.False(t, c.Alive())
	require.NoError(t, c.Close())
}

func TestProbe(t *testing.T) {
	t.Parallel()

	addr := fakeGPSD(t)
	assert.True(t, Probe(context.Background(), addr))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	closed := ln.Addr().String()
	require.NoError(t, ln.Close())

	assert.False(t, Probe(context.Background(), closed))
}
