// Package fsops exposes thin interfaces over os and filepath helpers so the
// dump pipeline can be tested without touching the real filesystem.
package fsops

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSOps abstracts the filesystem mutations and metadata queries the pipeline
// performs outside of plain file copying.
type OSOps interface {
	Stat(name string) (fs.FileInfo, error)
	RemoveAll(path string) error
	MkdirAll(path string, perm fs.FileMode) error
}

// DirWalker abstracts directory walking (e.g., filepath.WalkDir).
type DirWalker interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// Ops groups together the dependencies required by the dump pipeline.
type Ops struct {
	OS     OSOps
	Walker DirWalker
}

// DefaultOps returns an Ops configured with the standard library implementations.
func DefaultOps() Ops {
	return Ops{
		OS:     stdOSOps{},
		Walker: stdDirWalker{},
	}
}

type stdOSOps struct{}

func (stdOSOps) Stat(name string) (fs.FileInfo, error)        { return os.Stat(name) }
func (stdOSOps) RemoveAll(path string) error                  { return os.RemoveAll(path) }
func (stdOSOps) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

type stdDirWalker struct{}

func (stdDirWalker) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/coconutbird/uwpdumper/internal/fsops OSOps,DirWalker
