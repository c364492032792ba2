// Package relocate moves a finished dump out of the package's TempState
// directory into the user's output location. The payload cannot write
// outside the sandbox, so this runs controller-side after the session ends.
package relocate

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
)

const copyBufSize = 64 * 1024

// Progress is invoked as files land in the destination. done counts
// processed files, failures included.
type Progress func(done, total uint32)

// Mover copies a tree with a bounded worker pool and removes the source
// afterwards.
type Mover struct {
	// Workers sizes the copy pool. Zero means hardware concurrency.
	Workers int

	// OnProgress may be nil.
	OnProgress Progress
}

// Move relocates the tree at src into dst. dst must not already contain a
// conflicting tree; existing files are overwritten. The source is removed
// only when every file copied cleanly, so a partial failure never destroys
// the dump.
func (m *Mover) Move(src, dst string) (int, error) {
	files, err := collectFiles(src)
	if err != nil {
		return 0, fmt.Errorf("relocate: scan %s: %w", src, err)
	}

	if err := precreateDirs(src, dst, files); err != nil {
		return 0, err
	}

	copied, failures := m.copyAll(src, dst, files)
	if len(failures) > 0 {
		return copied, fmt.Errorf("relocate: %d of %d files failed, source kept (first: %w)",
			len(failures), len(files), failures[0])
	}
	if err := os.RemoveAll(src); err != nil {
		return copied, fmt.Errorf("relocate: remove source: %w", err)
	}
	return copied, nil
}

func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func precreateDirs(src, dst string, files []string) error {
	seen := map[string]struct{}{}
	for _, f := range files {
		rel, err := filepath.Rel(src, f)
		if err != nil {
			return err
		}
		dir := filepath.Dir(filepath.Join(dst, rel))
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("relocate: create %s: %w", dir, err)
		}
	}
	return nil
}

func (m *Mover) copyAll(src, dst string, files []string) (int, []error) {
	workers := m.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	total := uint32(len(files))

	jobs := make(chan string)
	var (
		done     atomic.Uint32
		okCount  atomic.Uint32
		mu       sync.Mutex
		failures []error
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, copyBufSize)
			for path := range jobs {
				if err := copyOne(src, dst, path, buf); err != nil {
					mu.Lock()
					failures = append(failures, err)
					mu.Unlock()
				} else {
					okCount.Add(1)
				}
				if m.OnProgress != nil {
					m.OnProgress(done.Add(1), total)
				}
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	return int(okCount.Load()), failures
}

func copyOne(src, dst, path string, buf []byte) error {
	rel, err := filepath.Rel(src, path)
	if err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(dst, rel))
	if err != nil {
		return err
	}
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
