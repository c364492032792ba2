package dumper

import (
	"io/fs"

	"github.com/coconutbird/uwpdumper/internal/fsops"
)

type fileEntry struct {
	path string
	size uint64
}

// scanTree walks the package root collecting regular files and their byte
// total. Symlinks and irregular entries are skipped outright, which also
// keeps reparse-point cycles from recursing forever. The walk reports
// directories-scanned progress with an unknown total.
func scanTree(root string, ops fsops.Ops, rep Reporter) ([]fileEntry, uint64, error) {
	var (
		files      []fileEntry
		totalBytes uint64
		dirs       uint32
	)
	err := ops.Walker.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			dirs++
			rep.SetProgress(dirs, 0)
			return nil
		}
		if d.Type()&(fs.ModeSymlink|fs.ModeIrregular) != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Entry disappeared between listing and stat; nothing to copy.
			rep.Warn("Skipping %s (%v)", path, err)
			return nil
		}
		files = append(files, fileEntry{path: path, size: uint64(info.Size())})
		totalBytes += uint64(info.Size())
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return files, totalBytes, nil
}
