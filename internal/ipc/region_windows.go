//go:build windows

package ipc

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ErrChannelExists is returned by CreateHost when a channel for the target
// pid already exists, usually a leftover controller attached to the same
// process.
var ErrChannelExists = errors.New("ipc: channel already exists for this process")

// ErrChannelNotFound is returned by OpenClient when no controller created a
// channel for the calling process within the retry window. The payload only
// opens after being injected, so absence means the controller is gone and
// the payload should bail out.
var ErrChannelNotFound = errors.New("ipc: channel not found")

// openRetryWindow bounds how long OpenClient keeps retrying the mapping
// lookup before giving up.
const openRetryWindow = 2 * time.Second

// mappingName derives the channel name from the target process id alone.
// That is all the identifying information the payload has at open time.
func mappingName(pid uint32) string {
	return fmt.Sprintf(`Local\uwpdumper-ipc-%d`, pid)
}

type fileMappingRegion struct {
	handle windows.Handle
	addr   uintptr
	buf    []byte
}

func (r *fileMappingRegion) Bytes() []byte { return r.buf }

func (r *fileMappingRegion) Close() error {
	var first error
	if r.addr != 0 {
		if err := windows.UnmapViewOfFile(r.addr); err != nil {
			first = err
		}
		r.addr = 0
		r.buf = nil
	}
	if r.handle != 0 {
		if err := windows.CloseHandle(r.handle); err != nil && first == nil {
			first = err
		}
		r.handle = 0
	}
	return first
}

func mapView(handle windows.Handle) (*fileMappingRegion, error) {
	addr, err := windows.MapViewOfFile(handle, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, RegionSize)
	if err != nil {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("ipc: map view: %w", err)
	}
	return &fileMappingRegion{
		handle: handle,
		addr:   addr,
		buf:    unsafe.Slice((*byte)(unsafe.Pointer(addr)), RegionSize),
	}, nil
}

// CreateHost allocates the named shared region for the target process and
// returns the controller-side endpoint. The region is freed when the Host is
// closed.
func CreateHost(targetPID uint32) (*Host, error) {
	name, err := windows.UTF16PtrFromString(mappingName(targetPID))
	if err != nil {
		return nil, err
	}
	handle, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, 0, RegionSize, name)
	if err == windows.ERROR_ALREADY_EXISTS {
		windows.CloseHandle(handle)
		return nil, ErrChannelExists
	}
	if err != nil {
		return nil, fmt.Errorf("ipc: create file mapping: %w", err)
	}
	region, err := mapView(handle)
	if err != nil {
		return nil, err
	}
	// A fresh pagefile-backed mapping is zero-filled, as NewHost requires.
	return NewHost(region)
}

// OpenClient maps the region the controller created for the calling
// process. pid must be the caller's own process id.
func OpenClient(pid uint32) (*Client, error) {
	name, err := windows.UTF16PtrFromString(mappingName(pid))
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(openRetryWindow)
	for {
		handle, err := windows.OpenFileMapping(windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, name)
		if err == nil {
			region, err := mapView(handle)
			if err != nil {
				return nil, err
			}
			return NewClient(region)
		}
		if time.Now().After(deadline) {
			return nil, ErrChannelNotFound
		}
		time.Sleep(50 * time.Millisecond)
	}
}
