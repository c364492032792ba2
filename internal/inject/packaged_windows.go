//go:build windows

package inject

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var procGetPackageFullName = modkernel32.NewProc("GetPackageFullName")

// ErrNotPackaged reports that the target has no package identity, so there
// is nothing to dump from it.
var ErrNotPackaged = errors.New("inject: process has no package identity")

// Error code APPMODEL_ERROR_NO_PACKAGE.
const errNoPackage = 15700

// filterPackaged keeps the processes whose package identity is queryable.
// Processes we cannot open are dropped too; injection would fail on them
// anyway.
func filterPackaged(procs []ProcessInfo) []ProcessInfo {
	var out []ProcessInfo
	for _, pi := range procs {
		h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pi.PID)
		if err != nil {
			continue
		}
		var length uint32
		status, _, _ := procGetPackageFullName.Call(uintptr(h), uintptr(unsafe.Pointer(&length)), 0)
		windows.CloseHandle(h)
		if status == uintptr(windows.ERROR_INSUFFICIENT_BUFFER) {
			out = append(out, pi)
		}
	}
	return out
}

// PackageFullName returns the package full name of the target process, or
// ErrNotPackaged for a plain desktop process.
func (p *ProcessHandle) PackageFullName() (string, error) {
	var length uint32
	status, _, _ := procGetPackageFullName.Call(uintptr(p.handle), uintptr(unsafe.Pointer(&length)), 0)
	if status == errNoPackage {
		return "", ErrNotPackaged
	}
	if status != uintptr(windows.ERROR_INSUFFICIENT_BUFFER) {
		return "", fmt.Errorf("inject: query package name length: %w", syscall.Errno(status))
	}

	buf := make([]uint16, length)
	status, _, _ = procGetPackageFullName.Call(uintptr(p.handle),
		uintptr(unsafe.Pointer(&length)), uintptr(unsafe.Pointer(&buf[0])))
	if status != 0 {
		return "", fmt.Errorf("inject: query package name: %w", syscall.Errno(status))
	}
	return windows.UTF16ToString(buf), nil
}
