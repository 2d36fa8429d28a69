// File: transport/slot.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Slot is the shared, optional sender handle. All dispatch tasks go through
// its mutex, which serializes transmissions.

package transport

import "sync"

// Slot holds an optional Sender. The zero value is an empty slot.
type Slot struct {
	mu     sync.Mutex
	sender *Sender
}

// NewSlot returns a slot holding s, which may be nil.
func NewSlot(s *Sender) *Slot {
	return &Slot{sender: s}
}

// Store replaces the sender and returns the previous one for the caller to close.
func (sl *Slot) Store(s *Sender) *Sender {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	old := sl.sender
	sl.sender = s
	return old
}

// Available reports whether a sender is present.
func (sl *Slot) Available() bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.sender != nil
}

// Do runs fn with the sender under the slot lock. It returns ErrNoSender
// without calling fn when the slot is empty.
func (sl *Slot) Do(fn func(s *Sender) error) error {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.sender == nil {
		return ErrNoSender
	}
	return fn(sl.sender)
}

// Close closes and clears the sender.
func (sl *Slot) Close() error {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.sender == nil {
		return nil
	}
	err := sl.sender.Close()
	sl.sender = nil
	return err
}
