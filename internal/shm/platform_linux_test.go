//go:build linux

package shm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func createDevShmObject(t *testing.T, size int) string {
	t.Helper()
	if _, err := os.Stat(DevShmDir); err != nil {
		t.Skipf("%s not available: %v", DevShmDir, err)
	}
	name := fmt.Sprintf("mumblelink-test-%d-%d", os.Getpid(), time.Now().UnixNano())
	path := filepath.Join(DevShmDir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0600))
	t.Cleanup(func() { _ = os.Remove(path) })
	return name
}

func TestMapRegionWritesThrough(t *testing.T) {
	name := createDevShmObject(t, 128)
	ctx := context.Background()

	region, err := MapRegion(ctx, MapOptions{Name: name, Size: 128})
	require.NoError(t, err)
	require.Len(t, region.Addr, 128)

	copy(region.Addr, "hello world")
	require.NoError(t, UnmapRegion(ctx, region))
	require.Nil(t, region.Addr)

	data, err := os.ReadFile(filepath.Join(DevShmDir, name))
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data[:11]))
}

func TestMapRegionMissingObject(t *testing.T) {
	_, err := MapRegion(context.Background(), MapOptions{Name: "mumblelink-does-not-exist", Size: 64})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrShmOpen))
	require.True(t, errors.Is(err, unix.ENOENT))

	var code ErrorCode
	require.True(t, errors.As(err, &code))
	require.Equal(t, ErrShmOpen, code)
}

func TestMapRegionObjectTooSmall(t *testing.T) {
	name := createDevShmObject(t, 16)
	_, err := MapRegion(context.Background(), MapOptions{Name: name, Size: 64})
	require.ErrorIs(t, err, ErrMMap)
}

func TestMapRegionInvalidSize(t *testing.T) {
	_, err := MapRegion(context.Background(), MapOptions{Name: "x", Size: 0})
	require.ErrorIs(t, err, ErrNoMem)
}

func TestUnmapRegionNil(t *testing.T) {
	require.NoError(t, UnmapRegion(context.Background(), nil))
	require.NoError(t, UnmapRegion(context.Background(), &MappedRegion{}))
}
