//go:build windows

package inject

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32       = windows.NewLazySystemDLL("kernel32.dll")
	procLoadLibraryW  = modkernel32.NewProc("LoadLibraryW")
	procVirtualFreeEx = modkernel32.NewProc("VirtualFreeEx")
)

// ErrTarget32Bit rejects WOW64 targets. The payload is a 64-bit module and
// LoadLibraryW in a 32-bit process cannot load it.
var ErrTarget32Bit = errors.New("inject: target process is 32-bit")

// openAccess is the access mask injection needs: memory operations, thread
// creation and exit-code queries.
const openAccess = windows.PROCESS_CREATE_THREAD |
	windows.PROCESS_QUERY_INFORMATION |
	windows.PROCESS_VM_OPERATION |
	windows.PROCESS_VM_READ |
	windows.PROCESS_VM_WRITE

// ProcessHandle is an open handle on the injection target.
type ProcessHandle struct {
	pid    uint32
	handle windows.Handle
}

// Open acquires an injection-capable handle on pid.
func Open(pid uint32) (*ProcessHandle, error) {
	h, err := windows.OpenProcess(openAccess, false, pid)
	if err != nil {
		return nil, stageErr(StageOpenProcess, err)
	}
	return &ProcessHandle{pid: pid, handle: h}, nil
}

func (p *ProcessHandle) PID() uint32 { return p.pid }

func (p *ProcessHandle) Close() error {
	if p.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(p.handle)
	p.handle = 0
	return err
}

// IsAlive reports whether the target is still running.
func (p *ProcessHandle) IsAlive() bool {
	var code uint32
	if err := windows.GetExitCodeProcess(p.handle, &code); err != nil {
		return false
	}
	return code == windows.STILL_ACTIVE
}

// Is32Bit reports whether the target runs under WOW64.
func (p *ProcessHandle) Is32Bit() (bool, error) {
	var wow64 bool
	if err := windows.IsWow64Process(p.handle, &wow64); err != nil {
		return false, fmt.Errorf("inject: query wow64: %w", err)
	}
	return wow64, nil
}

// InjectDLL loads the module at dllPath into the target by writing the
// UTF-16 path into its address space and running LoadLibraryW on a remote
// thread. It blocks until the remote load returns and fails when LoadLibraryW
// reports a null module handle.
func (p *ProcessHandle) InjectDLL(dllPath string) error {
	if wow64, err := p.Is32Bit(); err != nil {
		return err
	} else if wow64 {
		return ErrTarget32Bit
	}

	pathUTF16, err := windows.UTF16FromString(dllPath)
	if err != nil {
		return stageErr(StageRemoteWrite, err)
	}
	size := uintptr(len(pathUTF16) * 2)

	remote, err := windows.VirtualAllocEx(p.handle, 0, size,
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return stageErr(StageRemoteAlloc, err)
	}
	defer procVirtualFreeEx.Call(uintptr(p.handle), remote, 0, windows.MEM_RELEASE)

	var written uintptr
	if err := windows.WriteProcessMemory(p.handle, remote,
		(*byte)(unsafe.Pointer(&pathUTF16[0])), size, &written); err != nil {
		return stageErr(StageRemoteWrite, err)
	}
	if written != size {
		return stageErr(StageRemoteWrite, fmt.Errorf("short write: %d of %d bytes", written, size))
	}

	thread, err := createRemoteThread(p.handle, procLoadLibraryW.Addr(), remote)
	if err != nil {
		return stageErr(StageRemoteThread, err)
	}
	defer windows.CloseHandle(thread)

	if _, err := windows.WaitForSingleObject(thread, loadWaitMillis); err != nil {
		return stageErr(StageModuleLoad, err)
	}
	var moduleHandle uint32
	if err := windows.GetExitCodeThread(thread, &moduleHandle); err != nil {
		return stageErr(StageModuleLoad, err)
	}
	// LoadLibraryW returns the module handle; zero means the load failed in
	// the target (missing file, blocked by the sandbox, or a bad image).
	if moduleHandle == 0 {
		return stageErr(StageModuleLoad, errors.New("LoadLibraryW returned NULL"))
	}
	return nil
}

// loadWaitMillis bounds how long the remote LoadLibraryW may take. The
// payload's worker starts from a goroutine, so the load itself is quick.
const loadWaitMillis = uint32(10 * time.Second / time.Millisecond)

func createRemoteThread(proc windows.Handle, start, param uintptr) (windows.Handle, error) {
	procCreateRemoteThread := modkernel32.NewProc("CreateRemoteThread")
	r, _, err := procCreateRemoteThread.Call(uintptr(proc), 0, 0, start, param, 0, 0)
	if r == 0 {
		return 0, err
	}
	return windows.Handle(r), nil
}
