// File: transport/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "errors"

var (
	// ErrNoSender indicates the sender slot is empty (not yet bound or bind failed).
	ErrNoSender = errors.New("osc sender unavailable")

	// ErrSenderClosed indicates the sender socket was closed.
	ErrSenderClosed = errors.New("osc sender closed")

	// ErrMalformedUpdate indicates a datagram is not a single-float control update.
	ErrMalformedUpdate = errors.New("malformed osc update")
)
