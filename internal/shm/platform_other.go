//go:build !linux && !windows

package shm

import (
	"context"
	"errors"
	"fmt"
)

var errUnsupported = errors.New("shared memory link is not supported on this platform")

// DefaultName returns the POSIX object name Mumble would use.
func DefaultName() string {
	return "MumbleLink"
}

// MapRegion always fails: shm_open is not reachable without cgo here.
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	return nil, fmt.Errorf("map %s: %w: %w", opts.Name, ErrUnknown, errUnsupported)
}

// UnmapRegion is a no-op on unsupported platforms.
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	return nil
}
