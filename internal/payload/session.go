// Package payload is the injected side of a dump: it attaches to the shared
// channel the controller created, performs the handshake and runs the dump
// pipeline, reporting everything back through the channel.
package payload

import (
	"time"

	"github.com/coconutbird/uwpdumper/internal/dumper"
	"github.com/coconutbird/uwpdumper/internal/ipc"
	"github.com/coconutbird/uwpdumper/internal/protocol"
)

// exitGrace gives the controller's final drain a moment to observe the
// terminal packet before the channel is unmapped.
const exitGrace = 100 * time.Millisecond

// terminalPushRetries bounds how long the terminal packet is retried into a
// full queue (about a second at the shared poll interval). Log packets are
// droppable; the terminal packet is the one the controller must see, so it
// alone waits for the controller to drain a slot. A controller that stopped
// polling still cannot wedge the session: after the retries the finished
// flag is set regardless.
const terminalPushRetries = 100

// Session is one handshake-dump-report cycle over an attached channel.
type Session struct {
	Client *ipc.Client

	// Resolve produces the package identity and dump root for this process.
	// Split out so the cycle is testable outside a packaged process.
	Resolve func() (dumper.PackageInfo, string, error)

	// Workers is forwarded to the pipeline. Zero means hardware concurrency.
	Workers int
}

// Run performs the whole cycle: handshake, wait for the start signal, dump,
// then exactly one terminal packet followed by the finished flag. It never
// returns an error; every failure becomes the fatal terminal packet, because
// the channel is the only place the user can see it.
func (s *Session) Run() {
	c := s.Client
	defer c.Close()

	c.PushPacket(protocol.Ready())
	c.WaitStart()

	terminal := s.dump()
	pushTerminal(c, terminal)
	c.SetFinished()
	time.Sleep(exitGrace)
}

func pushTerminal(c *ipc.Client, p protocol.Packet) {
	for i := 0; i < terminalPushRetries; i++ {
		if c.PushPacket(p) {
			return
		}
		time.Sleep(ipc.PollInterval)
	}
}

func (s *Session) dump() protocol.Packet {
	pkg, dumpRoot, err := s.Resolve()
	if err != nil {
		return protocol.Fatal("resolve package: %v", err)
	}
	p := &dumper.Pipeline{
		Package:  pkg,
		DumpRoot: dumpRoot,
		Workers:  s.Workers,
	}
	root, err := p.Run(s.Client)
	if err != nil {
		return protocol.Fatal("%v", err)
	}
	return protocol.Complete(root)
}
