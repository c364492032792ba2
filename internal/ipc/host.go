package ipc

import (
	"errors"
	"fmt"

	"github.com/coconutbird/uwpdumper/internal/protocol"
)

// ErrRegionTooSmall is returned when a Region cannot hold the channel layout.
var ErrRegionTooSmall = errors.New("ipc: region smaller than channel layout")

// Host is the controller-side endpoint. It owns the region: creating a Host
// initializes the layout and closing it releases the backing memory. There
// must be exactly one Host per channel; it is the queue's only consumer and
// the only writer of the start flag and head index.
type Host struct {
	shared
}

// NewHost initializes a channel over a freshly created region. The region
// must be zero-filled, which both the Windows mapping and NewMemoryRegion
// guarantee.
func NewHost(region Region) (*Host, error) {
	buf := region.Bytes()
	if len(buf) < RegionSize {
		return nil, ErrRegionTooSmall
	}
	h := &Host{shared: shared{region: region, buf: buf}}
	h.store(offVersion, channelVersion)
	// The magic is the payload's cue that initialization finished; store it last.
	h.store(offMagic, channelMagic)
	return h, nil
}

// TryRead returns the oldest unread packet, if any. Non-blocking and safe to
// call in a tight poll loop. A slot that fails validation is skipped rather
// than surfaced; with a well-behaved producer this only happens if the
// region was corrupted.
func (h *Host) TryRead() (protocol.Packet, bool) {
	for {
		head := h.load(offHead)
		if head == h.load(offTail) {
			return protocol.Packet{}, false
		}
		pkt, ok := protocol.Decode(h.slot(head))
		h.store(offHead, head+1)
		if ok {
			return pkt, true
		}
	}
}

// Progress returns the latest progress pair written by the payload. A total
// of zero means the total is not yet known, not that there is no work.
func (h *Host) Progress() (current, total uint32) {
	return h.loadPair()
}

// StartDump raises the one-shot start flag the payload is spinning on.
func (h *Host) StartDump() {
	h.store(offStart, 1)
}

// CheckAndAckSync acknowledges a pending sync request, if any, and reports
// whether one was pending. The controller calls this once per poll
// iteration, after draining packets and sampling progress, so an ack
// guarantees the payload that everything enqueued before its Sync call has
// been observed.
func (h *Host) CheckAndAckSync() bool {
	if h.load(offSync) == 0 {
		return false
	}
	h.store(offSync, 0)
	return true
}

// Finished reports whether the payload raised the terminal flag.
func (h *Host) Finished() bool {
	return h.load(offFinished) == 1
}

// Close releases the region. The payload never deletes the backing object;
// teardown is the host's job.
func (h *Host) Close() error {
	if err := h.region.Close(); err != nil {
		return fmt.Errorf("ipc: close host region: %w", err)
	}
	return nil
}
