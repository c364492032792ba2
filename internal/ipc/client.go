package ipc

import (
	"errors"
	"time"

	"github.com/coconutbird/uwpdumper/internal/protocol"
)

// ErrBadChannel is returned when an opened region does not carry the channel
// layout this build understands.
var ErrBadChannel = errors.New("ipc: region is not a channel (bad magic or version)")

// PollInterval is the sleep used by every spin loop on both sides of the
// channel. One shared constant bounds both CPU burn and responsiveness.
const PollInterval = 10 * time.Millisecond

// syncTimeout bounds the payload's wait for a sync acknowledgement. A
// controller that stopped polling must not hang the dump; after the timeout
// the payload proceeds and only loses output interleaving, not data.
const syncTimeout = 5 * time.Second

// Client is the payload-side endpoint. It only maps the region: the queue's
// sole producer and the only writer of the tail index, the progress pair and
// the finished and sync flags.
type Client struct {
	shared
}

// NewClient attaches to a channel the controller already initialized.
func NewClient(region Region) (*Client, error) {
	buf := region.Bytes()
	if len(buf) < RegionSize {
		return nil, ErrRegionTooSmall
	}
	c := &Client{shared: shared{region: region, buf: buf}}
	if c.load(offMagic) != channelMagic || c.load(offVersion) != channelVersion {
		return nil, ErrBadChannel
	}
	return c, nil
}

// PushPacket enqueues a packet without blocking. When the queue is full the
// packet is dropped and false is returned: reporting must never stall the
// dump against a controller that stopped draining.
func (c *Client) PushPacket(p protocol.Packet) bool {
	tail := c.load(offTail)
	if tail-c.load(offHead) >= QueueCap {
		return false
	}
	p.Encode(c.slot(tail))
	// Publishing store: the consumer only looks at the slot after it
	// observes the new tail.
	c.store(offTail, tail+1)
	return true
}

// SetProgress overwrites the progress pair. Intermediate values may be
// skipped by the controller; this is a coalescing indicator, not a log.
func (c *Client) SetProgress(current, total uint32) {
	c.storePair(current, total)
}

// ShouldStart polls the controller's one-shot start flag.
func (c *Client) ShouldStart() bool {
	return c.load(offStart) == 1
}

// WaitStart blocks until the controller signals the dump to begin.
func (c *Client) WaitStart() {
	for !c.ShouldStart() {
		time.Sleep(PollInterval)
	}
}

// Sync blocks until the controller acknowledges that it has drained every
// packet and progress value written before this call. This is the channel's
// only ordering guarantee stronger than "eventually visible"; the pipeline
// uses it so one phase's output cannot race the next phase's. Returns false
// if the controller never acknowledged within the timeout.
func (c *Client) Sync() bool {
	c.store(offSync, 1)
	deadline := time.Now().Add(syncTimeout)
	for c.load(offSync) == 1 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(PollInterval)
	}
	return true
}

// SetFinished raises the terminal flag. Call strictly after pushing the
// terminal packet so the controller's final drain can observe it.
func (c *Client) SetFinished() {
	c.store(offFinished, 1)
}

// Close unmaps the payload's view of the region.
func (c *Client) Close() error {
	return c.region.Close()
}

// Log helpers push Log packets with the respective severity. They deliberately
// ignore queue overflow.

func (c *Client) Info(format string, args ...any) {
	c.PushPacket(protocol.Logf(protocol.LevelInfo, format, args...))
}

func (c *Client) Success(format string, args ...any) {
	c.PushPacket(protocol.Logf(protocol.LevelSuccess, format, args...))
}

func (c *Client) Warn(format string, args ...any) {
	c.PushPacket(protocol.Logf(protocol.LevelWarning, format, args...))
}

func (c *Client) Error(format string, args ...any) {
	c.PushPacket(protocol.Logf(protocol.LevelError, format, args...))
}
