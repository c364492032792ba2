package ipc

import (
	"sync"
	"testing"
	"time"

	"github.com/coconutbird/uwpdumper/internal/protocol"
)

func newPair(t *testing.T) (*Host, *Client) {
	t.Helper()
	region := NewMemoryRegion()
	host, err := NewHost(region)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	client, err := NewClient(region)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return host, client
}

func TestClientRejectsUninitializedRegion(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(NewMemoryRegion()); err != ErrBadChannel {
		t.Fatalf("got %v, want ErrBadChannel", err)
	}
}

func TestHostRejectsShortRegion(t *testing.T) {
	t.Parallel()

	short := &memoryRegion{words: make([]uint64, 8)}
	short.buf = make([]byte, 64)
	if _, err := NewHost(short); err != ErrRegionTooSmall {
		t.Fatalf("got %v, want ErrRegionTooSmall", err)
	}
}

func TestQueueFIFO(t *testing.T) {
	t.Parallel()

	host, client := newPair(t)

	if _, ok := host.TryRead(); ok {
		t.Fatal("fresh queue must read empty")
	}

	client.PushPacket(protocol.Ready())
	client.Info("first")
	client.Warn("second")

	want := []protocol.Packet{
		protocol.Ready(),
		protocol.Logf(protocol.LevelInfo, "first"),
		protocol.Logf(protocol.LevelWarning, "second"),
	}
	for i, w := range want {
		got, ok := host.TryRead()
		if !ok {
			t.Fatalf("packet %d missing", i)
		}
		if got != w {
			t.Fatalf("packet %d: got %+v, want %+v", i, got, w)
		}
	}
	if _, ok := host.TryRead(); ok {
		t.Fatal("queue must be empty after drain")
	}
}

func TestQueueDropsNewestWhenFull(t *testing.T) {
	t.Parallel()

	host, client := newPair(t)

	for i := 0; i < QueueCap; i++ {
		if !client.PushPacket(protocol.Logf(protocol.LevelInfo, "packet %d", i)) {
			t.Fatalf("push %d rejected below capacity", i)
		}
	}
	if client.PushPacket(protocol.Logf(protocol.LevelInfo, "overflow")) {
		t.Fatal("push into full queue must be dropped")
	}

	// Drain one slot; the producer can make progress again.
	if _, ok := host.TryRead(); !ok {
		t.Fatal("expected a packet")
	}
	if !client.PushPacket(protocol.Logf(protocol.LevelInfo, "after drain")) {
		t.Fatal("push after drain rejected")
	}
}

func TestQueueAcrossGoroutines(t *testing.T) {
	t.Parallel()

	host, client := newPair(t)
	const n = 500

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for !client.PushPacket(protocol.Logf(protocol.LevelInfo, "msg %d", i)) {
				time.Sleep(time.Millisecond)
			}
		}
	}()

	got := 0
	deadline := time.Now().Add(10 * time.Second)
	for got < n && time.Now().Before(deadline) {
		pkt, ok := host.TryRead()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		want := protocol.Logf(protocol.LevelInfo, "msg %d", got)
		if pkt != want {
			t.Fatalf("out of order: got %+v, want %+v", pkt, want)
		}
		got++
	}
	wg.Wait()
	if got != n {
		t.Fatalf("received %d packets, want %d", got, n)
	}
}

func TestProgressPairIsAtomic(t *testing.T) {
	t.Parallel()

	host, client := newPair(t)

	if cur, total := host.Progress(); cur != 0 || total != 0 {
		t.Fatalf("fresh channel progress = (%d, %d), want (0, 0)", cur, total)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Mimic the pipeline's phase transitions, including a shrinking
		// total (more directories than files).
		for i := uint32(1); i <= 200; i++ {
			client.SetProgress(i, 0) // scan phase, unknown total
		}
		for i := uint32(0); i <= 50; i++ {
			client.SetProgress(i, 50)
		}
		for i := uint32(0); i <= 7; i++ {
			client.SetProgress(i, 7)
		}
	}()

	for {
		cur, total := host.Progress()
		if total > 0 && cur > total {
			t.Fatalf("observed current %d > total %d", cur, total)
		}
		select {
		case <-done:
			if cur, total := host.Progress(); total != 7 || cur != 7 {
				t.Fatalf("final progress = (%d, %d), want (7, 7)", cur, total)
			}
			return
		default:
		}
	}
}

func TestStartAndFinishedFlags(t *testing.T) {
	t.Parallel()

	host, client := newPair(t)

	if client.ShouldStart() {
		t.Fatal("start flag set before StartDump")
	}
	host.StartDump()
	if !client.ShouldStart() {
		t.Fatal("start flag not visible to client")
	}

	if host.Finished() {
		t.Fatal("finished flag set before SetFinished")
	}
	client.SetFinished()
	if !host.Finished() {
		t.Fatal("finished flag not visible to host")
	}
}

func TestSyncRendezvous(t *testing.T) {
	t.Parallel()

	host, client := newPair(t)

	if host.CheckAndAckSync() {
		t.Fatal("ack with no pending sync")
	}

	// Controller loop: drain packets, then ack pending syncs. Record the
	// number of packets observed before the ack so the ordering guarantee
	// is checkable.
	var observedAtAck int
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		seen := 0
		for {
			for {
				if _, ok := host.TryRead(); !ok {
					break
				}
				seen++
			}
			if host.CheckAndAckSync() {
				observedAtAck = seen
			}
			select {
			case <-stop:
				return
			default:
				time.Sleep(time.Millisecond)
			}
		}
	}()

	const before = 5
	for i := 0; i < before; i++ {
		client.Info("pre-sync %d", i)
	}
	if !client.Sync() {
		t.Fatal("sync timed out against a live controller")
	}
	close(stop)
	wg.Wait()

	if observedAtAck < before {
		t.Fatalf("controller acked after observing %d packets, want at least %d", observedAtAck, before)
	}
}

func TestSyncTimesOutWithoutController(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the sync timeout")
	}
	t.Parallel()

	_, client := newPair(t)
	start := time.Now()
	if client.Sync() {
		t.Fatal("sync acknowledged with no controller polling")
	}
	if elapsed := time.Since(start); elapsed < syncTimeout {
		t.Fatalf("sync gave up after %v, before the %v timeout", elapsed, syncTimeout)
	}
}
