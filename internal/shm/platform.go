// Package shm contains the platform-specific mapping of the link segment.
package shm

// MappedRegion represents a memory-mapped shared region.
type MappedRegion struct {
	Addr []byte
	Name string
	// platform-specific handle, zero when the platform keeps none
	handle uintptr
}

// MapOptions defines options for mapping shared memory. The region is never
// created: the named object belongs to the application that reads it.
type MapOptions struct {
	Name string
	Size int
}

// Function implementations are provided in platform-specific files
// (platform_linux.go, platform_windows.go, platform_other.go).
