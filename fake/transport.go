// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the socket and host seams.

package fake

import (
	"errors"
	"net"
	"sync"
	"time"
)

// ErrTransportClosed is returned by a closed PacketConn.
var ErrTransportClosed = errors.New("transport is closed")

// Datagram is one recorded WriteTo call.
type Datagram struct {
	Data []byte
	Addr string
}

// PacketConn is a fake net.PacketConn that records outbound datagrams.
type PacketConn struct {
	mu         sync.Mutex
	sent       []Datagram
	closed     bool
	sendError  error
	closeError error
	local      net.Addr
	block      chan struct{}
}

var _ net.PacketConn = (*PacketConn)(nil)

// NewPacketConn creates a fake socket "bound" to 127.0.0.1:40000.
func NewPacketConn() *PacketConn {
	return &PacketConn{
		sent:  make([]Datagram, 0),
		local: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000},
	}
}

// WriteTo records the datagram.
func (c *PacketConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	block := c.block
	c.mu.Unlock()
	if block != nil {
		<-block
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrTransportClosed
	}
	if c.sendError != nil {
		return 0, c.sendError
	}
	data := make([]byte, len(p))
	copy(data, p)
	c.sent = append(c.sent, Datagram{Data: data, Addr: addr.String()})
	return len(p), nil
}

// ReadFrom always fails; the fake never receives.
func (c *PacketConn) ReadFrom(p []byte) (int, net.Addr, error) {
	return 0, nil, ErrTransportClosed
}

// Close marks the socket closed.
func (c *PacketConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeError != nil {
		return c.closeError
	}
	c.closed = true
	return nil
}

// LocalAddr returns the fake local address.
func (c *PacketConn) LocalAddr() net.Addr { return c.local }

func (c *PacketConn) SetDeadline(time.Time) error      { return nil }
func (c *PacketConn) SetReadDeadline(time.Time) error  { return nil }
func (c *PacketConn) SetWriteDeadline(time.Time) error { return nil }

// SetSendError configures WriteTo to fail with err.
func (c *PacketConn) SetSendError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendError = err
}

// SetCloseError configures Close to fail with err.
func (c *PacketConn) SetCloseError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeError = err
}

// Block makes WriteTo wait until the returned release func is called.
func (c *PacketConn) Block() (release func()) {
	ch := make(chan struct{})
	c.mu.Lock()
	c.block = ch
	c.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.block = nil
			c.mu.Unlock()
			close(ch)
		})
	}
}

// Sent returns every recorded datagram.
func (c *PacketConn) Sent() []Datagram {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Datagram, len(c.sent))
	copy(out, c.sent)
	return out
}

// ClearSent clears the recorded datagrams.
func (c *PacketConn) ClearSent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = c.sent[:0]
}

// Closed reports whether Close succeeded.
func (c *PacketConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
