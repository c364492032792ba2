//go:build windows

package appx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32                     = windows.NewLazySystemDLL("kernel32.dll")
	procGetCurrentPackageFullName   = modkernel32.NewProc("GetCurrentPackageFullName")
	procGetCurrentPackageFamilyName = modkernel32.NewProc("GetCurrentPackageFamilyName")
	procGetCurrentPackagePath       = modkernel32.NewProc("GetCurrentPackagePath")
)

// ErrNoIdentity reports that the calling process has no package identity.
// Inside the payload this means the injection target was not a packaged app
// after all.
var ErrNoIdentity = errors.New("appx: process has no package identity")

// Error code APPMODEL_ERROR_NO_PACKAGE.
const errNoPackage = 15700

// Identity is the calling process's package identity, queried by the
// payload after injection.
type Identity struct {
	FamilyName string
	FullName   string
	Path       string
}

// CurrentIdentity resolves the package identity of the calling process.
func CurrentIdentity() (Identity, error) {
	full, err := currentString(procGetCurrentPackageFullName, "package full name")
	if err != nil {
		return Identity{}, err
	}
	family, err := currentString(procGetCurrentPackageFamilyName, "package family name")
	if err != nil {
		return Identity{}, err
	}
	path, err := currentString(procGetCurrentPackagePath, "package path")
	if err != nil {
		return Identity{}, err
	}
	return Identity{FamilyName: family, FullName: full, Path: path}, nil
}

// TempStatePath is the sandbox-writable per-package state directory. It is
// the only location a packaged process can freely write to, which makes it
// the dump destination.
func TempStatePath(familyName string) (string, error) {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		return "", errors.New("appx: LOCALAPPDATA not set")
	}
	return filepath.Join(localAppData, "Packages", familyName, "TempState"), nil
}

// currentString runs the two-call length-then-fill pattern shared by the
// GetCurrentPackage* APIs.
func currentString(proc *windows.LazyProc, what string) (string, error) {
	var length uint32
	status, _, _ := proc.Call(uintptr(unsafe.Pointer(&length)), 0)
	if status == errNoPackage {
		return "", ErrNoIdentity
	}
	if status != uintptr(windows.ERROR_INSUFFICIENT_BUFFER) {
		return "", fmt.Errorf("appx: query %s length: %w", what, syscall.Errno(status))
	}
	buf := make([]uint16, length)
	status, _, _ = proc.Call(uintptr(unsafe.Pointer(&length)), uintptr(unsafe.Pointer(&buf[0])))
	if status != 0 {
		return "", fmt.Errorf("appx: query %s: %w", what, syscall.Errno(status))
	}
	return windows.UTF16ToString(buf), nil
}
