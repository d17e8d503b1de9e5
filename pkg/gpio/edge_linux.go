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
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/carverauto/sensornode/pkg/logger"
)

// EdgeWatcher invokes a callback on debounced rising edges of an input pin.
// The callback runs on the watcher goroutine and must not block.
type EdgeWatcher struct {
	cfg     EdgeConfig
	logger  logger.Logger
	deb     *debouncer
	backoff readBackoff

	mu      sync.Mutex
	epfd    int
	stopfd  int
	value   *os.File
	done    chan struct{}
	started bool
}

// NewEdgeWatcher returns a watcher for cfg. Nothing touches the hardware
// until Start.
func NewEdgeWatcher(cfg EdgeConfig, log logger.Logger) *EdgeWatcher {
	cfg = cfg.withDefaults()

	return &EdgeWatcher{
		cfg:     cfg,
		logger:  log,
		deb:     &debouncer{window: cfg.Debounce},
		backoff: readBackoff{base: readRetryBase, max: maxReadFailures},
		epfd:    -1,
		stopfd:  -1,
	}
}

// Start exports the pin and begins watching. onEdge is called at most once
// per debounce window.
func (w *EdgeWatcher) Start(onEdge func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return errWatching
	}

	if err := w.cfg.export(); err != nil {
		return err
	}

	value, err := os.Open(filepath.Join(w.cfg.pinDir(), "value"))
	if err != nil {
		return fmt.Errorf("gpio open value: %w", err)
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		_ = value.Close()

		return fmt.Errorf("epoll create: %w", err)
	}

	stopfd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		_ = value.Close()

		return fmt.Errorf("eventfd: %w", err)
	}

	valueFd := int(value.Fd())

	events := []struct {
		fd    int
		flags uint32
	}{
		{valueFd, unix.EPOLLPRI | unix.EPOLLERR},
		{stopfd, unix.EPOLLIN},
	}

	for _, ev := range events {
		e := unix.EpollEvent{Events: ev.flags, Fd: int32(ev.fd)}
		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, ev.fd, &e); err != nil {
			_ = unix.Close(stopfd)
			_ = unix.Close(epfd)
			_ = value.Close()

			return fmt.Errorf("epoll ctl: %w", err)
		}
	}

	// consume the level that is pending right after open
	_, _ = readPin(value)

	w.epfd, w.stopfd, w.value = epfd, stopfd, value
	w.done = make(chan struct{})
	w.started = true

	go w.loop(onEdge, valueFd)

	w.logger.Info().Int("pin", w.cfg.Pin).Dur("debounce", w.cfg.Debounce).Msg("Watching interrupt pin")

	return nil
}

func (w *EdgeWatcher) loop(onEdge func(), valueFd int) {
	defer close(w.done)

	events := make([]unix.EpollEvent, 2)

	for {
		n, err := unix.EpollWait(w.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}

			w.logger.Error().Err(err).Msg("epoll wait failed, interrupt pin disabled")

			return
		}

		for i := 0; i < n; i++ {
			switch int(events[i].Fd) {
			case w.stopfd:
				return
			case valueFd:
				high, err := readPin(w.value)
				if err != nil {
					// the edge stays pending until a read succeeds
					wait, giveUp := w.backoff.fail()
					if giveUp {
						w.logger.Error().Err(err).Int("failures", w.backoff.failures).
							Msg("Interrupt pin unreadable, interrupt pin disabled")

						return
					}

					w.logger.Warn().Err(err).Dur("retry_in", wait).Msg("Failed to read interrupt pin")

					if w.stopRequested(wait) {
						return
					}

					continue
				}

				w.backoff.reset()

				if high && w.deb.allow(time.Now()) {
					onEdge()
				}
			}
		}
	}
}

// stopRequested waits up to d and reports whether Close was called
// meanwhile.
func (w *EdgeWatcher) stopRequested(d time.Duration) bool {
	fds := []unix.PollFd{{Fd: int32(w.stopfd), Events: unix.POLLIN}}

	for {
		n, err := unix.Poll(fds, int(d.Milliseconds()))
		if err == unix.EINTR {
			continue
		}

		return err == nil && n > 0
	}
}

func readPin(f *os.File) (bool, error) {
	buf := make([]byte, 8)

	n, err := f.ReadAt(buf, 0)
	if n == 0 && err != nil {
		return false, err
	}

	return readValue(buf[:n])
}

// Close stops the watcher goroutine and releases its descriptors. It is
// safe to call more than once and before Start.
func (w *EdgeWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return nil
	}

	one := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	if _, err := unix.Write(w.stopfd, one); err != nil {
		return fmt.Errorf("eventfd write: %w", err)
	}

	<-w.done

	_ = unix.Close(w.stopfd)
	_ = unix.Close(w.epfd)
	err := w.value.Close()

	w.started = false

	return err
}
