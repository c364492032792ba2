//go:build windows

package inject

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	modntdll             = windows.NewLazySystemDLL("ntdll.dll")
	procNtSuspendProcess = modntdll.NewProc("NtSuspendProcess")
	procNtResumeProcess  = modntdll.NewProc("NtResumeProcess")
)

// SuspendGuard holds a process suspended until Resume is called. Used around
// launch-and-dump so the freshly started app cannot mutate its own package
// state before the payload attaches.
type SuspendGuard struct {
	handle  windows.Handle
	resumed bool
}

// Suspend freezes every thread in the target.
func Suspend(p *ProcessHandle) (*SuspendGuard, error) {
	if status, _, _ := procNtSuspendProcess.Call(uintptr(p.handle)); status != 0 {
		return nil, fmt.Errorf("inject: suspend process: NTSTATUS 0x%08x", status)
	}
	return &SuspendGuard{handle: p.handle}, nil
}

// Resume thaws the target. Safe to call more than once; only the first call
// resumes.
func (g *SuspendGuard) Resume() error {
	if g.resumed {
		return nil
	}
	g.resumed = true
	if status, _, _ := procNtResumeProcess.Call(uintptr(g.handle)); status != 0 {
		return fmt.Errorf("inject: resume process: NTSTATUS 0x%08x", status)
	}
	return nil
}
