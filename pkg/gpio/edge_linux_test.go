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

//go:build linux

package gpio

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/carverauto/sensornode/pkg/logger"
)

// startOnPipe runs the watch loop on a pipe that is always readable but
// cannot be read at an offset, so every pin read fails.
func startOnPipe(t *testing.T, backoff readBackoff, edges *atomic.Int32) *EdgeWatcher {
	t.Helper()

	r, wr, err := os.Pipe()
	require.NoError(t, err)

	t.Cleanup(func() { _ = wr.Close() })

	_, err = wr.Write([]byte("1\n"))
	require.NoError(t, err)

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	require.NoError(t, err)

	stopfd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	require.NoError(t, err)

	valueFd := int(r.Fd())

	for _, fd := range []int{valueFd, stopfd} {
		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
		require.NoError(t, unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev))
	}

	w := NewEdgeWatcher(EdgeConfig{Pin: 21}, logger.NewTestLogger())
	w.backoff = backoff
	w.epfd, w.stopfd, w.value = epfd, stopfd, r
	w.done = make(chan struct{})
	w.started = true

	go w.loop(func() { edges.Add(1) }, valueFd)

	return w
}

func TestEdgeLoopGivesUpOnUnreadablePin(t *testing.T) {
	t.Parallel()

	var edges atomic.Int32

	w := startOnPipe(t, readBackoff{base: time.Millisecond, max: 3}, &edges)

	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop kept spinning on a failing pin")
	}

	assert.Equal(t, 3, w.backoff.failures)
	assert.Zero(t, edges.Load())
	require.NoError(t, w.Close())
}

func TestEdgeCloseInterruptsReadBackoff(t *testing.T) {
	t.Parallel()

	var edges atomic.Int32

	w := startOnPipe(t, readBackoff{base: time.Minute, max: 100}, &edges)

	time.Sleep(50 * time.Millisecond)

	closed := make(chan error, 1)

	go func() { closed <- w.Close() }()

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked behind the read backoff")
	}

	assert.Zero(t, edges.Load())
}
