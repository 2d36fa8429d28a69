// File: transport/osc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OSC encoding of control updates.

package transport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hypebeast/go-osc/osc"
)

// AddressFor returns the OSC address pattern for a control index.
func AddressFor(index int) string {
	return "/" + strconv.Itoa(index)
}

// NewUpdateMessage builds the OSC message for one control update.
func NewUpdateMessage(index int, value float32) *osc.Message {
	return osc.NewMessage(AddressFor(index), value)
}

// EncodeUpdate serializes one control update.
func EncodeUpdate(index int, value float32) ([]byte, error) {
	data, err := NewUpdateMessage(index, value).MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode /%d: %w", index, err)
	}
	return data, nil
}

// DecodeUpdate parses a datagram produced by EncodeUpdate.
func DecodeUpdate(data []byte) (index int, value float32, err error) {
	packet, err := osc.ParsePacket(string(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedUpdate, err)
	}
	msg, ok := packet.(*osc.Message)
	if !ok {
		return 0, 0, fmt.Errorf("%w: not a message", ErrMalformedUpdate)
	}
	if !strings.HasPrefix(msg.Address, "/") {
		return 0, 0, fmt.Errorf("%w: address %q", ErrMalformedUpdate, msg.Address)
	}
	index, err = strconv.Atoi(msg.Address[1:])
	if err != nil || index < 0 {
		return 0, 0, fmt.Errorf("%w: address %q", ErrMalformedUpdate, msg.Address)
	}
	if len(msg.Arguments) != 1 {
		return 0, 0, fmt.Errorf("%w: %d arguments", ErrMalformedUpdate, len(msg.Arguments))
	}
	value, ok = msg.Arguments[0].(float32)
	if !ok {
		return 0, 0, fmt.Errorf("%w: argument type %T", ErrMalformedUpdate, msg.Arguments[0])
	}
	return index, value, nil
}
