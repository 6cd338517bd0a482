//go:build windows

package shm

import (
	"context"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const fileMapAllAccess = 0xF001F

var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = modkernel32.NewProc("OpenFileMappingW")
)

// DefaultName returns the file mapping name Mumble creates.
func DefaultName() string {
	return "MumbleLink"
}

func openFileMapping(access uint32, inherit bool, name *uint16) (windows.Handle, error) {
	var inh uintptr
	if inherit {
		inh = 1
	}
	r, _, e := procOpenFileMappingW.Call(uintptr(access), inh, uintptr(unsafe.Pointer(name)))
	if r == 0 {
		if errno, ok := e.(syscall.Errno); ok && errno != 0 {
			return 0, errno
		}
		return 0, syscall.EINVAL
	}
	return windows.Handle(r), nil
}

// MapRegion maps an existing file mapping object (Windows implementation).
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("map %s: %w: %w", opts.Name, ErrUnknown, err)
	}
	if opts.Size <= 0 {
		return nil, fmt.Errorf("map %s: invalid size %d: %w", opts.Name, opts.Size, ErrNoMem)
	}
	name, err := windows.UTF16PtrFromString(opts.Name)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w: %w", opts.Name, ErrUnknown, err)
	}
	handle, err := openFileMapping(fileMapAllAccess, false, name)
	if err != nil {
		return nil, fmt.Errorf("OpenFileMappingW %s: %w: %w", opts.Name, ErrOpenFileMapping, err)
	}
	addr, err := windows.MapViewOfFile(handle, fileMapAllAccess, 0, 0, uintptr(opts.Size))
	if err != nil || addr == 0 {
		_ = windows.CloseHandle(handle)
		return nil, fmt.Errorf("MapViewOfFile %s: %w: %w", opts.Name, ErrMapViewOfFile, err)
	}
	return &MappedRegion{
		Addr:   unsafe.Slice((*byte)(unsafe.Pointer(addr)), opts.Size),
		Name:   opts.Name,
		handle: uintptr(handle),
	}, nil
}

// UnmapRegion unmaps the view and closes the handle (Windows implementation).
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.Addr == nil {
		return nil
	}
	var firstErr error
	if err := windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&region.Addr[0]))); err != nil {
		firstErr = fmt.Errorf("UnmapViewOfFile: %w", err)
	}
	if err := windows.CloseHandle(windows.Handle(region.handle)); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("CloseHandle: %w", err)
	}
	region.Addr = nil
	region.handle = 0
	return firstErr
}
