// File: transport/sender.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sender owns the bound UDP socket.

package transport

import (
	"fmt"
	"net"
	"runtime"

	"github.com/sirupsen/logrus"
)

// DefaultLocalAddr binds to any interface on an ephemeral port.
const DefaultLocalAddr = "0.0.0.0:0"

// Sender writes OSC updates through one persistent PacketConn.
type Sender struct {
	conn     net.PacketConn
	lookup   func(dest string) (net.Addr, error)
	lastDest string
	lastAddr net.Addr
	closed   bool
}

// NewSender binds a UDP socket at localAddr. This may block in the kernel.
func NewSender(localAddr string) (*Sender, error) {
	if localAddr == "" {
		localAddr = DefaultLocalAddr
	}
	conn, err := net.ListenPacket("udp", localAddr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "NewSender",
			"local_addr": localAddr,
			"error":      err.Error(),
		}).Debug("Failed to bind OSC sender socket")
		return nil, fmt.Errorf("bind osc sender at %s: %w", localAddr, err)
	}
	logrus.WithFields(logrus.Fields{
		"function":   "NewSender",
		"local_addr": conn.LocalAddr().String(),
	}).Info("OSC sender bound")
	return NewSenderConn(conn), nil
}

// NewSenderConn wraps an existing PacketConn.
func NewSenderConn(conn net.PacketConn) *Sender {
	return &Sender{conn: conn, lookup: resolveUDP}
}

func resolveUDP(dest string) (net.Addr, error) {
	return net.ResolveUDPAddr("udp", dest)
}

// Spawn runs NewSender on a dedicated OS thread and waits for the result.
// The helper goroutine keeps its thread locked, so the runtime discards the
// thread when the goroutine returns.
func Spawn(localAddr string) (*Sender, error) {
	type result struct {
		sender *Sender
		err    error
	}
	done := make(chan result, 1)
	go func() {
		runtime.LockOSThread()
		s, err := NewSender(localAddr)
		done <- result{sender: s, err: err}
	}()
	r := <-done
	return r.sender, r.err
}

// LocalAddr returns the bound local address.
func (s *Sender) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// SendUpdate encodes and writes one update to dest (host:port). The
// destination is resolved here. Only IP literal destinations are cached, so
// host names follow DNS changes.
func (s *Sender) SendUpdate(dest string, index int, value float32) error {
	if s.closed {
		return ErrSenderClosed
	}
	data, err := EncodeUpdate(index, value)
	if err != nil {
		return err
	}
	addr, err := s.resolve(dest)
	if err != nil {
		return err
	}
	if _, err := s.conn.WriteTo(data, addr); err != nil {
		return fmt.Errorf("send %s to %s: %w", AddressFor(index), dest, err)
	}
	return nil
}

func (s *Sender) resolve(dest string) (net.Addr, error) {
	if dest == s.lastDest && s.lastAddr != nil {
		return s.lastAddr, nil
	}
	addr, err := s.lookup(dest)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dest, err)
	}
	if isIPLiteral(dest) {
		s.lastDest, s.lastAddr = dest, addr
	}
	return addr, nil
}

func isIPLiteral(dest string) bool {
	host, _, err := net.SplitHostPort(dest)
	return err == nil && net.ParseIP(host) != nil
}

// Close releases the socket.
func (s *Sender) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
