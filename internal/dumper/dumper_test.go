package dumper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/coconutbird/uwpdumper/internal/fsops"
	"github.com/coconutbird/uwpdumper/internal/fsops/mocks"
)

// recorder is an in-memory Reporter safe for the copy pool's concurrent
// progress updates.
type recorder struct {
	mu      sync.Mutex
	lines   []string
	warns   []string
	current uint32
	total   uint32
	syncs   int
}

func (r *recorder) log(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recorder) Info(format string, args ...any)    { r.log(sprintf(format, args...)) }
func (r *recorder) Success(format string, args ...any) { r.log(sprintf(format, args...)) }
func (r *recorder) Error(format string, args ...any)   { r.log(sprintf(format, args...)) }

func (r *recorder) Warn(format string, args ...any) {
	line := sprintf(format, args...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	r.warns = append(r.warns, line)
}

func (r *recorder) SetProgress(current, total uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current, r.total = current, total
}

func (r *recorder) Sync() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncs++
	return true
}

func (r *recorder) contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestPipeline(t *testing.T, src, dst string) *Pipeline {
	t.Helper()
	return &Pipeline{
		Package: PackageInfo{
			FamilyName: "Example.App_abc123",
			FullName:   "Example.App_1.0.0.0_x64__abc123",
			Path:       src,
		},
		DumpRoot:  dst,
		Workers:   2,
		Ops:       fsops.DefaultOps(),
		FreeSpace: func(string) (uint64, error) { return 1 << 40, nil },
	}
}

func TestPipelineDumpsTree(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "DUMP")
	writeFile(t, filepath.Join(src, "AppxManifest.xml"), "<Package/>")
	writeFile(t, filepath.Join(src, "Assets", "logo.png"), "png-bytes")
	writeFile(t, filepath.Join(src, "Assets", "wide", "tile.png"), "more-bytes")

	rep := &recorder{}
	root, err := newTestPipeline(t, src, dst).Run(rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if root != dst {
		t.Fatalf("dump root = %q, want %q", root, dst)
	}

	for rel, want := range map[string]string{
		"AppxManifest.xml":                  "<Package/>",
		filepath.Join("Assets", "logo.png"): "png-bytes",
		filepath.Join("Assets", "wide", "tile.png"): "more-bytes",
	} {
		got, err := os.ReadFile(filepath.Join(dst, rel))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(got) != want {
			t.Fatalf("%s = %q, want %q", rel, got, want)
		}
	}

	if !rep.contains("Dumped 3 files (0 errors)") {
		t.Fatalf("missing summary line, got %v", rep.lines)
	}
	if rep.current != rep.total || rep.total != 3 {
		t.Fatalf("final progress = (%d, %d), want (3, 3)", rep.current, rep.total)
	}
}

func TestPipelineResetsPreviousDump(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "DUMP")
	writeFile(t, filepath.Join(src, "data.bin"), "fresh")
	writeFile(t, filepath.Join(dst, "stale.bin"), "old run")

	rep := &recorder{}
	if _, err := newTestPipeline(t, src, dst).Run(rep); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, "stale.bin")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("stale file survived the reset")
	}
	if !rep.contains("Cleaning up previous dump") {
		t.Fatal("cleanup was not reported")
	}
}

func TestCopyFailureDoesNotStopOtherFiles(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "a")
	writeFile(t, filepath.Join(src, "b.txt"), "b")

	p := newTestPipeline(t, src, dst)
	entries := []fileEntry{
		{path: filepath.Join(src, "a.txt"), size: 1},
		{path: filepath.Join(src, "missing.txt"), size: 1},
		{path: filepath.Join(src, "b.txt"), size: 1},
	}

	rep := &recorder{}
	copied, failed, failures := p.copyFiles(entries, rep)
	if copied != 2 || failed != 1 {
		t.Fatalf("copied=%d failed=%d, want 2 and 1", copied, failed)
	}
	if len(failures) != 1 || !strings.HasSuffix(failures[0].dest, "missing.txt") {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	if rep.current != 3 {
		t.Fatalf("processed %d entries, want 3", rep.current)
	}
}

func TestInsufficientSpaceAborts(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "big.bin"), strings.Repeat("x", 1000))

	p := newTestPipeline(t, src, filepath.Join(t.TempDir(), "DUMP"))
	p.FreeSpace = func(string) (uint64, error) { return 1050, nil }

	_, err := p.Run(&recorder{})
	var spaceErr *InsufficientSpaceError
	if !errors.As(err, &spaceErr) {
		t.Fatalf("got %v, want InsufficientSpaceError", err)
	}
	if spaceErr.Needed != 1100 || spaceErr.Available != 1050 {
		t.Fatalf("needed=%d available=%d, want 1100 and 1050", spaceErr.Needed, spaceErr.Available)
	}
}

func TestFreeSpaceQueryFailureIsAdvisory(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "data.bin"), "payload")

	p := newTestPipeline(t, src, filepath.Join(t.TempDir(), "DUMP"))
	p.FreeSpace = func(string) (uint64, error) { return 0, errors.New("query not supported") }

	rep := &recorder{}
	if _, err := p.Run(rep); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.contains("Could not determine free space") {
		t.Fatal("advisory warning missing")
	}
}

func TestWalkerErrorAbortsRun(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	walkErr := errors.New("access denied")

	osOps := mocks.NewMockOSOps(ctrl)
	osOps.EXPECT().Stat(gomock.Any()).Return(nil, os.ErrNotExist)
	osOps.EXPECT().MkdirAll(gomock.Any(), gomock.Any()).Return(nil)
	walker := mocks.NewMockDirWalker(ctrl)
	walker.EXPECT().WalkDir(gomock.Any(), gomock.Any()).Return(walkErr)

	p := newTestPipeline(t, "C:\\nowhere", "C:\\nowhere\\DUMP")
	p.Ops = fsops.Ops{OS: osOps, Walker: walker}

	_, err := p.Run(&recorder{})
	if !errors.Is(err, walkErr) {
		t.Fatalf("got %v, want wrapped walker error", err)
	}
}
