package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/coconutbird/uwpdumper/internal/state"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := state.Open(ctx, state.Config{
		Path: filepath.Join(t.TempDir(), "state.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	s, err := NewStore(ctx, db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestAddAndList(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	for i, name := range []string{"First.App", "Second.App", "Third.App"} {
		err := s.Add(ctx, Entry{
			PackageName: name,
			PID:         uint32(1000 + i),
			DumpPath:    `C:\dumps\` + name,
			Copied:      10 * (i + 1),
			Failed:      i,
			Duration:    time.Duration(i+1) * time.Second,
		})
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	entries, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].PackageName != "Third.App" || entries[1].PackageName != "Second.App" {
		t.Fatalf("order wrong: %+v", entries)
	}
	if entries[0].Copied != 30 || entries[0].Failed != 2 || entries[0].Duration != 3*time.Second {
		t.Fatalf("fields wrong: %+v", entries[0])
	}
}

func TestPrune(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Add(ctx, Entry{PackageName: "App", PID: 1, DumpPath: "p"}); err != nil {
			t.Fatal(err)
		}
	}
	removed, err := s.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed %d rows, want 3", removed)
	}
	entries, err := s.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("kept %d entries, want 2", len(entries))
	}
}
