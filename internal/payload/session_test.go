package payload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coconutbird/uwpdumper/internal/dumper"
	"github.com/coconutbird/uwpdumper/internal/ipc"
	"github.com/coconutbird/uwpdumper/internal/protocol"
)

// drainSession plays the controller side of a session: ack the handshake,
// release the dump, then pump the channel to the finished flag.
func drainSession(t *testing.T, host *ipc.Host) []protocol.Packet {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	var packets []protocol.Packet
	started := false
	for {
		if time.Now().After(deadline) {
			t.Fatalf("session did not finish; packets so far: %+v", packets)
		}
		for {
			pkt, ok := host.TryRead()
			if !ok {
				break
			}
			packets = append(packets, pkt)
			if !started && pkt.ID == protocol.IDReady {
				host.StartDump()
				started = true
			}
		}
		host.CheckAndAckSync()
		if host.Finished() {
			for {
				pkt, ok := host.TryRead()
				if !ok {
					return packets
				}
				packets = append(packets, pkt)
			}
		}
		time.Sleep(time.Millisecond)
	}
}

func terminalOf(t *testing.T, packets []protocol.Packet) protocol.Packet {
	t.Helper()
	for _, p := range packets {
		if p.Terminal() {
			return p
		}
	}
	t.Fatalf("no terminal packet in %+v", packets)
	return protocol.Packet{}
}

func TestSessionHandshakeDumpReport(t *testing.T) {
	t.Parallel()

	region := ipc.NewMemoryRegion()
	host, err := ipc.NewHost(region)
	if err != nil {
		t.Fatal(err)
	}
	client, err := ipc.NewClient(region)
	if err != nil {
		t.Fatal(err)
	}

	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "asset.bin"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	dumpRoot := filepath.Join(t.TempDir(), "DUMP")

	s := &Session{
		Client: client,
		Resolve: func() (dumper.PackageInfo, string, error) {
			return dumper.PackageInfo{
				FamilyName: "Example_abc",
				FullName:   "Example_1.0_x64__abc",
				Path:       src,
			}, dumpRoot, nil
		},
	}
	go s.Run()

	packets := drainSession(t, host)
	if packets[0].ID != protocol.IDReady {
		t.Fatalf("first packet = %+v, want Ready", packets[0])
	}

	term := terminalOf(t, packets)
	if term.ID != protocol.IDComplete || term.Text != dumpRoot {
		t.Fatalf("terminal = %+v, want Complete(%q)", term, dumpRoot)
	}
	if got, err := os.ReadFile(filepath.Join(dumpRoot, "asset.bin")); err != nil || string(got) != "data" {
		t.Fatalf("dumped file: %q, %v", got, err)
	}
}

func TestTerminalPacketRetriesIntoFullQueue(t *testing.T) {
	t.Parallel()

	region := ipc.NewMemoryRegion()
	host, err := ipc.NewHost(region)
	if err != nil {
		t.Fatal(err)
	}
	client, err := ipc.NewClient(region)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < ipc.QueueCap; i++ {
		if !client.PushPacket(protocol.Logf(protocol.LevelInfo, "filler %d", i)) {
			t.Fatalf("queue unexpectedly full after %d packets", i)
		}
	}
	if client.PushPacket(protocol.Logf(protocol.LevelInfo, "overflow")) {
		t.Fatal("push into a full queue must report a drop")
	}

	dumpRoot := filepath.Join("C:", "dump")
	done := make(chan struct{})
	go func() {
		pushTerminal(client, protocol.Complete(dumpRoot))
		close(done)
	}()

	// Nothing drains for a while, so the first attempts land on a full queue.
	time.Sleep(50 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("terminal push returned while the queue was still full")
	default:
	}

	var last protocol.Packet
	deadline := time.Now().Add(5 * time.Second)
	for !last.Terminal() {
		if time.Now().After(deadline) {
			t.Fatal("terminal packet never observed")
		}
		pkt, ok := host.TryRead()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		last = pkt
	}
	if last.ID != protocol.IDComplete || last.Text != dumpRoot {
		t.Fatalf("terminal = %+v, want Complete(%q)", last, dumpRoot)
	}
	<-done
}

func TestSessionReportsFatalOnResolveFailure(t *testing.T) {
	t.Parallel()

	region := ipc.NewMemoryRegion()
	host, err := ipc.NewHost(region)
	if err != nil {
		t.Fatal(err)
	}
	client, err := ipc.NewClient(region)
	if err != nil {
		t.Fatal(err)
	}

	s := &Session{
		Client: client,
		Resolve: func() (dumper.PackageInfo, string, error) {
			return dumper.PackageInfo{}, "", os.ErrPermission
		},
	}
	go s.Run()

	packets := drainSession(t, host)
	term := terminalOf(t, packets)
	if term.ID != protocol.IDFatal || !strings.Contains(term.Text, "resolve package") {
		t.Fatalf("terminal = %+v, want Fatal with resolve context", term)
	}
}
