//go:build linux

package shm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// DevShmDir is where shm_open objects live on Linux.
const DevShmDir = "/dev/shm"

// DefaultName returns the object name Mumble creates for the current user.
func DefaultName() string {
	return "MumbleLink." + strconv.Itoa(os.Getuid())
}

// MapRegion maps an existing shared memory object read/write (Linux implementation).
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("map %s: %w: %w", opts.Name, ErrUnknown, err)
	}
	if opts.Size <= 0 {
		return nil, fmt.Errorf("map %s: invalid size %d: %w", opts.Name, opts.Size, ErrNoMem)
	}
	shmPath := filepath.Join(DevShmDir, opts.Name)
	fd, err := unix.Open(shmPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("shm_open %s: %w: %w", shmPath, ErrShmOpen, err)
	}
	// the mapping outlives the descriptor
	defer func() { _ = unix.Close(fd) }()

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("fstat %s: %w: %w", shmPath, ErrMMap, err)
	}
	if st.Size < int64(opts.Size) {
		return nil, fmt.Errorf("mmap %s: object is %d bytes, need %d: %w", shmPath, st.Size, opts.Size, ErrMMap)
	}
	addr, err := unix.Mmap(fd, 0, opts.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w: %w", shmPath, ErrMMap, err)
	}
	return &MappedRegion{Addr: addr, Name: opts.Name}, nil
}

// UnmapRegion unmaps the shared memory region (Linux implementation). The
// named object itself is left in place.
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.Addr == nil {
		return nil
	}
	if err := unix.Munmap(region.Addr); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	region.Addr = nil
	return nil
}
