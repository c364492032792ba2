//go:build windows

package payload

import (
	"reflect"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandleExW       = modkernel32.NewProc("GetModuleHandleExW")
	procFreeLibraryAndExitThread = modkernel32.NewProc("FreeLibraryAndExitThread")
)

const (
	getModuleHandleExFlagFromAddress       = 0x00000004
	getModuleHandleExFlagUnchangedRefcount = 0x00000002
)

// ownModuleHandle resolves the handle of the module containing this code,
// i.e. the injected payload DLL itself. The refcount is left untouched so
// the unload below releases the injection's LoadLibraryW reference.
func ownModuleHandle() (windows.Handle, error) {
	anchor := reflect.ValueOf(SelfUnload).Pointer()
	var h windows.Handle
	r, _, err := procGetModuleHandleExW.Call(
		getModuleHandleExFlagFromAddress|getModuleHandleExFlagUnchangedRefcount,
		anchor,
		uintptr(unsafe.Pointer(&h)))
	if r == 0 {
		return 0, err
	}
	return h, nil
}

// SelfUnload drops the module's load reference and exits the calling thread
// in one step, which is the only way a module can remove itself from its
// host without freeing the code it is still executing. On success this call
// does not return.
func SelfUnload() {
	h, err := ownModuleHandle()
	if err != nil {
		return
	}
	procFreeLibraryAndExitThread.Call(uintptr(h), 0)
}
