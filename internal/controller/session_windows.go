//go:build windows

package controller

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/coconutbird/uwpdumper/internal/appx"
	"github.com/coconutbird/uwpdumper/internal/history"
	"github.com/coconutbird/uwpdumper/internal/inject"
	"github.com/coconutbird/uwpdumper/internal/ipc"
	"github.com/coconutbird/uwpdumper/internal/relocate"
	"github.com/coconutbird/uwpdumper/internal/ui"
)

// SessionOptions configures one dump session against a running process.
type SessionOptions struct {
	PID        uint32
	PayloadDLL string

	// OutputDir, when set, receives the dump after the session; empty
	// leaves it in the package's TempState.
	OutputDir string

	// Workers sizes the relocation copy pool.
	Workers int

	// Poll overrides the message loop's poll interval; zero means the
	// channel default.
	Poll time.Duration

	// AfterReady runs once the payload's handshake arrived, before the dump
	// is released. Launch-and-dump resumes the suspended process here.
	AfterReady func() error

	Log *ui.Logger
}

// SessionResult summarizes a finished session.
type SessionResult struct {
	PackageName string
	DumpPath    string
	Files       int
	Duration    time.Duration
}

// RunSession performs a complete dump of the target process: channel setup,
// injection, handshake, message loop, then optional relocation, and records
// the session in the history store.
func RunSession(ctx context.Context, opts SessionOptions) (SessionResult, error) {
	log := opts.Log
	start := time.Now()

	proc, err := inject.Open(opts.PID)
	if err != nil {
		return SessionResult{}, err
	}
	defer proc.Close()

	pkgName, err := proc.PackageFullName()
	if err != nil {
		if errors.Is(err, inject.ErrNotPackaged) {
			return SessionResult{}, fmt.Errorf("pid %d: %w", opts.PID, err)
		}
		return SessionResult{}, err
	}
	log.Info("Target: %s (pid %d)", pkgName, opts.PID)

	host, err := ipc.CreateHost(opts.PID)
	if err != nil {
		return SessionResult{}, err
	}
	defer host.Close()

	log.Info("Injecting payload: %s", opts.PayloadDLL)
	if err := proc.InjectDLL(opts.PayloadDLL); err != nil {
		return SessionResult{}, err
	}

	loop := &Loop{
		Channel: host,
		Process: proc,
		Render:  &ui.SessionRenderer{Log: log},
		Poll:    opts.Poll,
	}
	if err := loop.WaitReady(); err != nil {
		return SessionResult{}, err
	}
	if opts.AfterReady != nil {
		if err := opts.AfterReady(); err != nil {
			return SessionResult{}, err
		}
	}

	res, err := loop.Run()
	log.EndProgress()
	if err != nil {
		return SessionResult{}, err
	}

	result := SessionResult{
		PackageName: pkgName,
		DumpPath:    res.DumpPath,
		Duration:    time.Since(start),
	}
	result.Files = countFiles(res.DumpPath)

	if opts.OutputDir != "" {
		dst := filepath.Join(opts.OutputDir, filepath.Base(res.DumpPath))
		log.Info("Relocating dump to %s ...", dst)
		mover := &relocate.Mover{
			Workers:    opts.Workers,
			OnProgress: log.SetProgress,
		}
		moved, err := mover.Move(res.DumpPath, dst)
		log.EndProgress()
		if err != nil {
			return result, err
		}
		result.DumpPath = dst
		result.Files = moved
		log.Success("Relocated %d files", moved)
	}

	recordSession(ctx, result, opts.PID, log)
	return result, nil
}

// LaunchAndDump activates the package's application, suspends the fresh
// process before its code runs, and dumps it. The process stays suspended
// through injection and is resumed only once the payload's handshake is in,
// so startup code cannot rewrite package state first.
func LaunchAndDump(ctx context.Context, aumid string, opts SessionOptions) (SessionResult, error) {
	pid, err := appx.Launch(aumid)
	if err != nil {
		return SessionResult{}, err
	}
	opts.Log.Info("Launched %s (pid %d)", aumid, pid)

	proc, err := inject.Open(pid)
	if err != nil {
		return SessionResult{}, err
	}
	defer proc.Close()

	guard, err := inject.Suspend(proc)
	if err != nil {
		return SessionResult{}, err
	}
	// A process left suspended after a failure is worse than a dirty dump.
	defer guard.Resume()

	opts.PID = pid
	opts.AfterReady = guard.Resume
	return RunSession(ctx, opts)
}

// recordSession appends the session to the history store. History is a
// convenience; its failures must not fail a dump that already succeeded.
func recordSession(ctx context.Context, res SessionResult, pid uint32, log *ui.Logger) {
	store, err := history.DefaultStore(ctx)
	if err != nil {
		log.Warn("History unavailable: %v", err)
		return
	}
	err = store.Add(ctx, history.Entry{
		PackageName: res.PackageName,
		PID:         pid,
		DumpPath:    res.DumpPath,
		Copied:      res.Files,
		Duration:    res.Duration,
	})
	if err != nil {
		log.Warn("History not recorded: %v", err)
	}
}

func countFiles(root string) int {
	n := 0
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n
}
