//go:build windows

package appx

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

// ApplicationActivationManager coclass and its IApplicationActivationManager
// interface.
var (
	clsidApplicationActivationManager = ole.NewGUID("{45BA127D-10A8-46EA-8AB7-56EA9078943C}")
	iidIApplicationActivationManager  = ole.NewGUID("{2e941141-7f97-4756-ba1d-9decde894a3d}")
)

// AO_NOERRORUI keeps activation failures out of system dialogs; they come
// back as HRESULTs instead.
const aoNoErrorUI = 0x00000002

type iApplicationActivationManager struct {
	ole.IUnknown
}

type iApplicationActivationManagerVtbl struct {
	ole.IUnknownVtbl
	ActivateApplication uintptr
	ActivateForFile     uintptr
	ActivateForProtocol uintptr
}

// Launch activates the package's application and returns the new process id.
// Activation goes through the shell broker, so it works from an unelevated
// controller.
func Launch(aumid string) (uint32, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		oleErr, ok := err.(*ole.OleError)
		// S_FALSE means COM was already initialized on this thread.
		if !ok || oleErr.Code() != 1 {
			return 0, fmt.Errorf("appx: initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := ole.CreateInstance(clsidApplicationActivationManager, iidIApplicationActivationManager)
	if err != nil {
		return 0, fmt.Errorf("appx: create activation manager: %w", err)
	}
	mgr := (*iApplicationActivationManager)(unsafe.Pointer(unknown))
	defer mgr.Release()

	aumidPtr, err := windows.UTF16PtrFromString(aumid)
	if err != nil {
		return 0, err
	}

	var pid uint32
	vtbl := (*iApplicationActivationManagerVtbl)(unsafe.Pointer(mgr.RawVTable))
	hr, _, _ := syscall.SyscallN(vtbl.ActivateApplication,
		uintptr(unsafe.Pointer(mgr)),
		uintptr(unsafe.Pointer(aumidPtr)),
		0, // no activation arguments
		aoNoErrorUI,
		uintptr(unsafe.Pointer(&pid)))
	if hr != 0 {
		return 0, fmt.Errorf("appx: activate %s: %w", aumid, ole.NewError(hr))
	}
	return pid, nil
}
