// Package controller drives a dump session from the outside: it waits for
// the injected payload's handshake, releases the pipeline and mirrors the
// payload's packet stream to the terminal until a terminal packet or the
// finished flag ends the session.
package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/coconutbird/uwpdumper/internal/ipc"
	"github.com/coconutbird/uwpdumper/internal/protocol"
)

var (
	// ErrCrashed reports that the target process died mid-session. The
	// payload lives inside the target, so its stream ends with the process.
	ErrCrashed = errors.New("controller: target process exited")

	// ErrNotReady reports that the payload never sent its handshake packet
	// within the ready window.
	ErrNotReady = errors.New("controller: payload did not report ready")
)

// readyAttempts bounds the handshake wait at attempts * ipc.PollInterval,
// five seconds with the default interval.
const readyAttempts = 500

// Channel is the controller-side endpoint surface the loop needs. *ipc.Host
// implements it.
type Channel interface {
	TryRead() (protocol.Packet, bool)
	Progress() (current, total uint32)
	StartDump()
	CheckAndAckSync() bool
	Finished() bool
}

// Process answers liveness queries about the target.
type Process interface {
	IsAlive() bool
}

// Renderer receives everything the loop wants on screen.
type Renderer interface {
	Packet(pkt protocol.Packet)
	Progress(current, total uint32)
}

// Result is what a completed session produced.
type Result struct {
	// DumpPath is the dump root reported by the payload's completion
	// packet. Empty when the payload reported a fatal error.
	DumpPath string
}

// Loop couples a channel, the target process and a renderer for one session.
type Loop struct {
	Channel Channel
	Process Process
	Render  Renderer

	// Poll overrides the iteration sleep; zero means ipc.PollInterval.
	Poll time.Duration
}

func (l *Loop) pollInterval() time.Duration {
	if l.Poll > 0 {
		return l.Poll
	}
	return ipc.PollInterval
}

// WaitReady blocks until the payload's handshake packet arrives. It fails
// fast with ErrCrashed when the target dies while waiting, and with
// ErrNotReady when the window elapses, which usually means the module loaded
// but its worker never started.
func (l *Loop) WaitReady() error {
	for i := 0; i < readyAttempts; i++ {
		if pkt, ok := l.Channel.TryRead(); ok {
			if pkt.ID == protocol.IDReady {
				return nil
			}
			// Pre-handshake packets are unexpected but harmless.
			l.Render.Packet(pkt)
			continue
		}
		if !l.Process.IsAlive() {
			return ErrCrashed
		}
		time.Sleep(l.pollInterval())
	}
	return ErrNotReady
}

// Run releases the pipeline and pumps the session to completion. The stream
// is drained in FIFO order before each progress render, so log lines never
// appear after progress that postdates them. A terminal packet records the
// outcome; the loop still waits for the finished flag so late log lines are
// not lost.
func (l *Loop) Run() (Result, error) {
	l.Channel.StartDump()

	var (
		terminal    *protocol.Packet
		lastCur     uint32
		lastTotal   uint32
		hasRendered bool
	)

	drain := func() {
		for {
			pkt, ok := l.Channel.TryRead()
			if !ok {
				return
			}
			l.Render.Packet(pkt)
			if pkt.Terminal() && terminal == nil {
				p := pkt
				terminal = &p
			}
		}
	}

	finish := func() (Result, error) {
		drain()
		if terminal == nil {
			return Result{}, ErrCrashed
		}
		if terminal.ID == protocol.IDFatal {
			return Result{}, fmt.Errorf("dump failed: %s", terminal.Text)
		}
		return Result{DumpPath: terminal.Text}, nil
	}

	for {
		alive := l.Process.IsAlive()

		drain()

		if cur, total := l.Channel.Progress(); !hasRendered || cur != lastCur || total != lastTotal {
			l.Render.Progress(cur, total)
			lastCur, lastTotal = cur, total
			hasRendered = true
		}

		// Ack only after the drain above, so the payload's sync guarantee
		// ("everything before the sync has been observed") holds.
		l.Channel.CheckAndAckSync()

		if l.Channel.Finished() {
			return finish()
		}
		if !alive {
			// One more drain already happened; whatever made it into the
			// queue before the exit has been rendered.
			if terminal != nil {
				return finish()
			}
			return Result{}, ErrCrashed
		}

		time.Sleep(l.pollInterval())
	}
}
