// File: internal/dirty/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package dirty tracks which control indices changed since the last block.
// Producers mark indices from the real-time thread; the block driver drains
// the whole set once per block. Both paths are lock-free and allocation-free.
package dirty
