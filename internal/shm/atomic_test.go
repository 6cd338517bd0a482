/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreLoadRecord(t *testing.T) {
	mem := make([]byte, 64)
	src := make([]byte, 64)
	binary.NativeEndian.PutUint32(src[VersionOffset:], 2)
	binary.NativeEndian.PutUint32(src[TickOffset:], 77)
	for i := HeaderSize; i < len(src); i++ {
		src[i] = byte(i)
	}

	StoreRecord(mem, src)
	assert.Equal(t, src, mem)

	version, tick := LoadHeader(mem)
	assert.Equal(t, uint32(2), version)
	assert.Equal(t, uint32(77), tick)

	dst := make([]byte, 64)
	LoadRecord(dst, mem)
	assert.Equal(t, mem, dst)
}

func TestLoadHeaderShortRegion(t *testing.T) {
	version, tick := LoadHeader(make([]byte, 4))
	assert.Zero(t, version)
	assert.Zero(t, tick)
}

func TestErrorCodeKinds(t *testing.T) {
	assert.Equal(t, KindNoSuchMapping, ErrShmOpen.Kind())
	assert.Equal(t, KindNoSuchMapping, ErrOpenFileMapping.Kind())
	assert.Equal(t, KindCannotAttach, ErrMMap.Kind())
	assert.Equal(t, KindCannotAttach, ErrMapViewOfFile.Kind())
	assert.Equal(t, KindUninitialized, ErrNoMem.Kind())
	assert.Equal(t, KindUnknown, ErrUnknown.Kind())
	assert.Equal(t, KindNone, Success.Kind())
	assert.Equal(t, "no-such-mapping", ErrShmOpen.Kind().String())
	assert.Equal(t, "unknown error", ErrorCode(99).Error())
}
