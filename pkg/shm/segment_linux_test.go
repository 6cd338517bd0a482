//go:build linux

package shm

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type SegmentTestSuite struct {
	suite.Suite
	name string
	path string
}

func (s *SegmentTestSuite) SetupTest() {
	if _, err := os.Stat("/dev/shm"); err != nil {
		s.T().Skipf("/dev/shm not available: %v", err)
	}
	s.name = fmt.Sprintf("mumblelink-seg-%d-%d", os.Getpid(), time.Now().UnixNano())
	s.path = filepath.Join("/dev/shm", s.name)
	s.Require().NoError(os.WriteFile(s.path, make([]byte, 256), 0600))
}

func (s *SegmentTestSuite) TearDownTest() {
	_ = os.Remove(s.path)
}

func (s *SegmentTestSuite) TestStoreLoad() {
	seg, err := Open(context.Background(), OpenOptions{Name: s.name, Size: 256})
	s.Require().NoError(err)
	defer func() { s.Require().NoError(seg.Close()) }()
	s.Equal(s.name, seg.Name())
	s.Equal(256, seg.Size())

	src := make([]byte, 256)
	binary.NativeEndian.PutUint32(src[0:], 2)
	binary.NativeEndian.PutUint32(src[4:], 9)
	copy(src[8:], "payload")
	seg.Store(src)

	version, tick := seg.Header()
	s.Equal(uint32(2), version)
	s.Equal(uint32(9), tick)

	dst := make([]byte, 256)
	seg.Load(dst)
	s.Equal(src, dst)

	onDisk, err := os.ReadFile(s.path)
	s.Require().NoError(err)
	s.Equal(src, onDisk)
}

func (s *SegmentTestSuite) TestClosedSegment() {
	seg, err := Open(context.Background(), OpenOptions{Name: s.name, Size: 256})
	s.Require().NoError(err)
	s.Require().NoError(seg.Close())
	s.Require().NoError(seg.Close())

	dst := []byte{1, 2, 3}
	seg.Load(dst)
	s.Equal([]byte{0, 0, 0}, dst)
	seg.Store([]byte{9, 9, 9, 9, 9, 9, 9, 9})
	version, tick := seg.Header()
	s.Zero(version)
	s.Zero(tick)
}

func (s *SegmentTestSuite) TestOpenMissing() {
	_, err := Open(context.Background(), OpenOptions{Name: s.name + "-missing", Size: 256})
	s.Require().ErrorIs(err, ErrShmOpen)

	_, err = Open(context.Background(), OpenOptions{Name: s.name, Size: 0})
	s.Require().ErrorIs(err, ErrNoMem)
}

func TestSegmentTestSuite(t *testing.T) {
	suite.Run(t, new(SegmentTestSuite))
}
