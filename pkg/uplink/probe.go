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
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/carverauto/sensornode/pkg/logger"
)

const (
	defaultProbeTimeout = 3 * time.Second
	fallbackPort        = "53"
	protocolICMP        = 1
)

var errNoEchoReply = errors.New("no echo reply")

// Prober decides whether the node is online. A bare host is pinged with an
// unprivileged ICMP echo; a host:port is probed with a TCP connect.
type Prober struct {
	address string
	timeout time.Duration
	logger  logger.Logger
}

// NewProber returns a Prober for address.
func NewProber(address string, timeout time.Duration, log logger.Logger) *Prober {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	return &Prober{address: address, timeout: timeout, logger: log}
}

// IsReachable reports whether the probe target answered within the timeout.
func (p *Prober) IsReachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var err error

	if _, _, splitErr := net.SplitHostPort(p.address); splitErr == nil {
		err = p.dial(ctx, p.address)
	} else {
		err = p.ping(ctx)
	}

	if err != nil {
		p.logger.Debug().Err(err).Str("address", p.address).Msg("Network probe failed")

		return false
	}

	return true
}

func (p *Prober) dial(ctx context.Context, address string) error {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}

	return conn.Close()
}

func (p *Prober) ping(ctx context.Context) error {
	dst, err := net.ResolveIPAddr("ip4", p.address)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", p.address, err)
	}

	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		// ping_group_range does not cover this user
		p.logger.Debug().Err(err).Msg("ICMP socket unavailable, falling back to TCP")

		return p.dial(ctx, net.JoinHostPort(dst.IP.String(), fallbackPort))
	}
	defer conn.Close()

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: []byte("sensornode"),
		},
	}

	wb, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("marshal echo: %w", err)
	}

	if _, err := conn.WriteTo(wb, &net.UDPAddr{IP: dst.IP}); err != nil {
		return fmt.Errorf("send echo: %w", err)
	}

	deadline, _ := ctx.Deadline()
	if err := conn.SetReadDeadline(deadline); err != nil {
		return err
	}

	rb := make([]byte, 1500)

	for {
		n, _, err := conn.ReadFrom(rb)
		if err != nil {
			return fmt.Errorf("%w: %w", errNoEchoReply, err)
		}

		reply, err := icmp.ParseMessage(protocolICMP, rb[:n])
		if err != nil {
			continue
		}

		if reply.Type == ipv4.ICMPTypeEchoReply {
			return nil
		}
	}
}
