// File: transport/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package transport sends control updates as OSC 1.0 messages over UDP.
//
// One datagram carries one message: address pattern "/{index}" and a single
// float32 argument. The socket is bound once to a local ephemeral endpoint
// and reused; the destination is resolved on every send so endpoint changes
// apply to the next message.
//
// Binding may block, so Spawn performs it on a throwaway OS thread and hands
// the result back over a one-shot channel. The resulting Sender is not safe
// for concurrent use; share it through a Slot.
package transport
