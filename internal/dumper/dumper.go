// Package dumper implements the payload-side pipeline that copies a sandboxed
// package's files to the sandbox-writable dump location: scan, capacity
// check, directory pre-creation and parallel copy, with progress and partial
// failures reported through a Reporter.
package dumper

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/coconutbird/uwpdumper/internal/fsops"
)

// Reporter receives the pipeline's log lines, progress updates and sync
// rendezvous requests. The payload backs it with the shared channel client;
// tests back it with an in-memory recorder.
type Reporter interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)

	// SetProgress overwrites the coalescing progress pair. A total of zero
	// means "count not yet known".
	SetProgress(current, total uint32)

	// Sync blocks until the consumer has observed everything reported so
	// far, so the next phase's output cannot race the current phase's.
	Sync() bool
}

// PackageInfo identifies the package being dumped. Resolved once before the
// pipeline starts and immutable for the run.
type PackageInfo struct {
	FamilyName string
	FullName   string
	Path       string
}

// maxFailureReports bounds how many per-file copy failures are surfaced
// individually; the rest collapse into a single count.
const maxFailureReports = 10

// Pipeline copies every file under Package.Path into DumpRoot.
type Pipeline struct {
	Package  PackageInfo
	DumpRoot string

	// Workers sizes the copy pool. Zero means available hardware concurrency.
	Workers int

	// Ops supplies the filesystem seams; the zero value is replaced with the
	// standard library implementations.
	Ops fsops.Ops

	// FreeSpace queries available bytes at a path. Nil means the platform
	// default. The check is advisory when the query fails, mandatory when it
	// succeeds.
	FreeSpace func(path string) (uint64, error)
}

// Run executes all pipeline phases and returns the dump root on success.
// Per-file copy failures do not fail the run; any other error aborts it and
// the caller turns it into the fatal terminal packet.
func (p *Pipeline) Run(rep Reporter) (string, error) {
	if p.Ops.OS == nil || p.Ops.Walker == nil {
		p.Ops = fsops.DefaultOps()
	}
	if p.Workers <= 0 {
		p.Workers = runtime.NumCPU()
	}
	if p.FreeSpace == nil {
		p.FreeSpace = defaultFreeSpace
	}

	rep.Info("Family Name: %s", p.Package.FamilyName)
	rep.Info("Full Name: %s", p.Package.FullName)
	rep.Info("Package Path: %s", p.Package.Path)
	rep.Info("Dump Path: %s", p.DumpRoot)

	if err := p.resetDumpRoot(rep); err != nil {
		return "", err
	}

	start := time.Now()

	rep.Info("Scanning package files...")
	files, totalBytes, err := scanTree(p.Package.Path, p.Ops, rep)
	if err != nil {
		return "", fmt.Errorf("scan package files: %w", err)
	}
	total := uint32(len(files))

	// Make sure the scan output is on screen before the summary starts.
	rep.Sync()
	rep.Info("Found %d files to dump (%s)", total, humanize.IBytes(totalBytes))

	if err := p.checkCapacity(totalBytes, rep); err != nil {
		return "", err
	}

	if err := p.precreateDirs(files, rep); err != nil {
		return "", err
	}

	rep.Info("Copying %d files (parallel)...", total)
	rep.SetProgress(0, total)
	copied, failed, failures := p.copyFiles(files, rep)
	rep.SetProgress(total, total)
	rep.Sync()

	elapsed := time.Since(start)
	rep.Success("Dumped %d files (%d errors) in %.1fs", copied, failed, elapsed.Seconds())
	for i, f := range failures {
		if i == maxFailureReports {
			rep.Warn("... and %d more copy failures", len(failures)-maxFailureReports)
			break
		}
		rep.Warn("Failed: %s (%v)", f.dest, f.err)
	}
	rep.Info("Output: %s", p.DumpRoot)

	return p.DumpRoot, nil
}

// resetDumpRoot removes any prior dump at the destination and recreates it
// empty. The destination is the only sandbox-writable location, so a stale
// tree from an earlier run is expected.
func (p *Pipeline) resetDumpRoot(rep Reporter) error {
	if _, err := p.Ops.OS.Stat(p.DumpRoot); err == nil {
		rep.Info("Cleaning up previous dump...")
		if err := p.Ops.OS.RemoveAll(p.DumpRoot); err != nil {
			return fmt.Errorf("remove previous dump: %w", err)
		}
	}
	if err := p.Ops.OS.MkdirAll(p.DumpRoot, 0o755); err != nil {
		return fmt.Errorf("create dump directory: %w", err)
	}
	return nil
}

// checkCapacity aborts the run when the destination volume cannot hold the
// discovered bytes plus the safety margin. A failing free-space query only
// downgrades the check to a warning.
func (p *Pipeline) checkCapacity(totalBytes uint64, rep Reporter) error {
	needed := requiredWithMargin(totalBytes)
	available, err := p.FreeSpace(p.DumpRoot)
	if err != nil {
		rep.Warn("Could not determine free space (%v), assuming enough", err)
		return nil
	}
	if available < needed {
		return &InsufficientSpaceError{Needed: needed, Available: available}
	}
	rep.Info("Disk space: need %s, %s available", humanize.IBytes(needed), humanize.IBytes(available))
	return nil
}

// precreateDirs computes the distinct destination directories implied by the
// discovered files and creates them all before any copy starts, as its own
// bounded progress phase.
func (p *Pipeline) precreateDirs(files []fileEntry, rep Reporter) error {
	seen := make(map[string]struct{})
	var dirs []string
	for _, f := range files {
		parent := filepath.Dir(p.destPath(f.path))
		if _, ok := seen[parent]; !ok {
			seen[parent] = struct{}{}
			dirs = append(dirs, parent)
		}
	}

	total := uint32(len(dirs))
	rep.Info("Creating %d directories...", total)
	rep.SetProgress(0, total)
	rep.Sync()

	for i, dir := range dirs {
		if err := p.Ops.OS.MkdirAll(dir, 0o755); err != nil {
			// The copy phase will report the affected files individually.
			rep.Warn("Failed to create %s (%v)", dir, err)
		}
		rep.SetProgress(uint32(i+1), total)
	}

	rep.SetProgress(total, total)
	rep.Sync()
	return nil
}

// destPath maps a source file to its location under the dump root.
func (p *Pipeline) destPath(src string) string {
	rel, err := filepath.Rel(p.Package.Path, src)
	if err != nil {
		rel = filepath.Base(src)
	}
	return filepath.Join(p.DumpRoot, rel)
}
