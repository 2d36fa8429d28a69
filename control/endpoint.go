// control/endpoint.go
// Author: momentics <momentics@gmail.com>
//
// OSC destination endpoint. Address and port are stored together under one
// RWMutex so every reader sees a pair written by a single Store call.

package control

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/momentics/spaceradio/api"
)

// Default destination used until the host restores a saved endpoint.
const (
	DefaultAddress        = "127.0.0.1"
	DefaultPort    uint16 = 9009
)

// Endpoint is an OSC destination.
type Endpoint struct {
	Address string
	Port    uint16
}

// DefaultEndpoint returns 127.0.0.1:9009.
func DefaultEndpoint() Endpoint {
	return Endpoint{Address: DefaultAddress, Port: DefaultPort}
}

// Destination formats the endpoint as host:port, bracketing IPv6 literals.
func (e Endpoint) Destination() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(int(e.Port)))
}

func (e Endpoint) String() string {
	return e.Destination()
}

// Validate checks the endpoint can be formatted into a destination.
func (e Endpoint) Validate() error {
	if e.Address == "" {
		return api.NewError(api.ErrCodeInvalidArgument, "endpoint address is empty")
	}
	return nil
}

// ParseEndpoint parses host:port.
func ParseEndpoint(s string) (Endpoint, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, api.NewError(api.ErrCodeInvalidArgument, "malformed endpoint").
			WithContext("endpoint", s).Wrap(err)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Endpoint{}, api.NewError(api.ErrCodeInvalidArgument, "malformed port").
			WithContext("endpoint", s).Wrap(err)
	}
	e := Endpoint{Address: host, Port: uint16(p)}
	return e, e.Validate()
}

// EndpointStore is the shared, mutable endpoint. Readers take the read lock
// for a single copy; writers never wait on an in-flight send because senders
// hold only their copy.
type EndpointStore struct {
	mu        sync.RWMutex
	endpoint  Endpoint
	listeners []func(Endpoint)
	version   uint64

	notifyMu sync.Mutex
	notified uint64
}

// NewEndpointStore creates a store holding e.
func NewEndpointStore(e Endpoint) *EndpointStore {
	return &EndpointStore{endpoint: e}
}

// Load returns a consistent snapshot.
func (s *EndpointStore) Load() Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// Destination returns the current host:port.
func (s *EndpointStore) Destination() string {
	return s.Load().Destination()
}

// Store replaces address and port together.
func (s *EndpointStore) Store(e Endpoint) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("store endpoint: %w", err)
	}
	s.mu.Lock()
	s.endpoint = e
	s.dispatchChange(e)
	s.mu.Unlock()
	return nil
}

// SetAddress replaces the address, keeping the port.
func (s *EndpointStore) SetAddress(address string) error {
	if address == "" {
		return fmt.Errorf("set address: %w", Endpoint{}.Validate())
	}
	s.mu.Lock()
	s.endpoint.Address = address
	s.dispatchChange(s.endpoint)
	s.mu.Unlock()
	return nil
}

// SetPort replaces the port, keeping the address.
func (s *EndpointStore) SetPort(port uint16) {
	s.mu.Lock()
	s.endpoint.Port = port
	s.dispatchChange(s.endpoint)
	s.mu.Unlock()
}

// OnChange registers a listener called asynchronously after a change.
// Listeners run one at a time and never observe an older endpoint after a
// newer one; a change superseded before delivery may be skipped.
func (s *EndpointStore) OnChange(fn func(Endpoint)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// dispatchChange schedules delivery of e. Caller holds the write lock.
func (s *EndpointStore) dispatchChange(e Endpoint) {
	if len(s.listeners) == 0 {
		return
	}
	s.version++
	go s.notify(s.version, e, s.listeners)
}

func (s *EndpointStore) notify(version uint64, e Endpoint, listeners []func(Endpoint)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if version <= s.notified {
		return
	}
	s.notified = version
	for _, fn := range listeners {
		fn(e)
	}
}
