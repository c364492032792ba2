package dumper

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// copyBufSize is the per-worker copy buffer. Package payloads are mostly
// resources in the hundreds of kilobytes, so a modest buffer keeps memory
// flat across the pool.
const copyBufSize = 64 * 1024

type copyFailure struct {
	dest string
	err  error
}

// copyFiles copies every entry into the dump root with a fixed worker pool.
// A failing file is recorded and skipped; it never stops the other workers.
// Progress counts processed files, failures included, so the bar always
// reaches the total.
func (p *Pipeline) copyFiles(files []fileEntry, rep Reporter) (copied, failed uint32, failures []copyFailure) {
	jobs := make(chan fileEntry)
	total := uint32(len(files))

	var (
		processed atomic.Uint32
		okCount   atomic.Uint32
		mu        sync.Mutex
		wg        sync.WaitGroup
	)

	for i := 0; i < p.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, copyBufSize)
			for f := range jobs {
				dest := p.destPath(f.path)
				if err := copyFile(f.path, dest, buf); err != nil {
					mu.Lock()
					failures = append(failures, copyFailure{dest: dest, err: err})
					mu.Unlock()
				} else {
					okCount.Add(1)
				}
				rep.SetProgress(processed.Add(1), total)
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	return okCount.Load(), uint32(len(failures)), failures
}

// copyFile streams src into dst through buf. Paths are rewritten to
// extended-length form when they would exceed the classic path limit.
func copyFile(src, dst string, buf []byte) error {
	in, err := os.Open(maybeExtend(src))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(maybeExtend(dst))
	if err != nil {
		return err
	}

	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
