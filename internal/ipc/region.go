// Package ipc implements the shared channel between the controller process
// and the injected payload: a fixed binary layout over a raw memory region,
// carrying a single-producer/single-consumer packet queue, a progress pair
// and a handful of one-shot flags.
//
// No language-level synchronization primitive is usable across the process
// boundary, so every cross-process field is a 4- or 8-byte word accessed
// through sync/atomic, with exactly one writer process per field. The queue
// relies on the classic SPSC discipline: the producer owns the tail, the
// consumer owns the head, and a slot's bytes are published by the atomic
// store of the tail that follows them.
package ipc

import "unsafe"

// Region is the raw memory backing one channel. On Windows it is a named
// file mapping shared between the two processes; tests back it with plain
// heap memory and run both endpoints in one process.
type Region interface {
	// Bytes returns the mapped memory. The slice must be at least RegionSize
	// long, remain valid until Close, and start on an 8-byte boundary.
	Bytes() []byte
	// Close releases the mapping. The controller-side region owns the
	// underlying object; the payload side only unmaps its view.
	Close() error
}

type memoryRegion struct {
	// Backed by a []uint64 so the atomics in layout.go see aligned words.
	words []uint64
	buf   []byte
}

// NewMemoryRegion returns a heap-backed Region for tests and in-process use.
func NewMemoryRegion() Region {
	words := make([]uint64, RegionSize/8)
	return &memoryRegion{
		words: words,
		buf:   unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), RegionSize),
	}
}

func (m *memoryRegion) Bytes() []byte { return m.buf }
func (m *memoryRegion) Close() error  { return nil }
