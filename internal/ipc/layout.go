package ipc

import (
	"sync/atomic"
	"unsafe"

	"github.com/coconutbird/uwpdumper/internal/protocol"
)

// Field offsets into the region. Every 4-byte field sits on a 4-byte
// boundary and the progress pair on an 8-byte boundary, so each is readable
// and writable in a single bus-width operation.
const (
	offMagic    = 0
	offVersion  = 4
	offStart    = 8  // controller -> payload, one-shot
	offFinished = 12 // payload -> controller, one-shot
	offSync     = 16 // payload sets, controller clears
	offProgress = 20 // padding; pair lives at 24
	offPair     = 24 // uint64: current in the low word, total in the high word
	offHead     = 32 // queue consumer index, controller-owned
	offTail     = 36 // queue producer index, payload-owned
	offQueue    = 64

	// QueueCap is the packet queue capacity. The producer drops the newest
	// packet when the queue is full rather than blocking the dump.
	QueueCap = 64

	// RegionSize is the total size of the shared region in bytes.
	RegionSize = offQueue + QueueCap*protocol.SlotSize

	channelMagic   = 0x44505755 // "UWPD", little-endian
	channelVersion = 1
)

// shared provides atomic word access into the mapped region. Both endpoints
// embed it; the SPSC/one-writer discipline lives in Host and Client.
type shared struct {
	region Region
	buf    []byte
}

func (s *shared) word(off uintptr) *uint32 {
	return (*uint32)(unsafe.Pointer(&s.buf[off]))
}

func (s *shared) load(off uintptr) uint32 {
	return atomic.LoadUint32(s.word(off))
}

func (s *shared) store(off uintptr, v uint32) {
	atomic.StoreUint32(s.word(off), v)
}

// loadPair reads the progress pair in one atomic operation, so a sampled
// (current, total) is always a value the payload actually wrote and the
// current <= total invariant cannot be broken by a torn read.
func (s *shared) loadPair() (current, total uint32) {
	v := atomic.LoadUint64((*uint64)(unsafe.Pointer(&s.buf[offPair])))
	return uint32(v), uint32(v >> 32)
}

func (s *shared) storePair(current, total uint32) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(&s.buf[offPair])), uint64(current)|uint64(total)<<32)
}

func (s *shared) slot(i uint32) []byte {
	off := offQueue + int(i%QueueCap)*protocol.SlotSize
	return s.buf[off : off+protocol.SlotSize]
}
