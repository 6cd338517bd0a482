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
	"sync/atomic"
	"unsafe"
)

// Offsets of the header words every reader polls. Both are 4-byte aligned
// within a page-aligned mapping.
const (
	VersionOffset = 0
	TickOffset    = 4
	HeaderSize    = 8
)

// AtomicLoadUint32 loads a uint32 from shared memory atomically. off must be
// a multiple of 4.
func AtomicLoadUint32(mem []byte, off int) uint32 {
	_ = mem[off+3]
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&mem[off])))
}

// AtomicStoreUint32 stores a uint32 to shared memory atomically. off must be
// a multiple of 4.
func AtomicStoreUint32(mem []byte, off int, val uint32) {
	_ = mem[off+3]
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&mem[off])), val)
}

// LoadHeader reads the version and tick words of a mapped record.
func LoadHeader(mem []byte) (version, tick uint32) {
	if len(mem) < HeaderSize {
		return 0, 0
	}
	return AtomicLoadUint32(mem, VersionOffset), AtomicLoadUint32(mem, TickOffset)
}

// StoreRecord writes src over mem as one whole record: the payload is copied
// first and the tick and version words are published last.
func StoreRecord(mem, src []byte) {
	if len(mem) < HeaderSize || len(src) < HeaderSize {
		copy(mem, src)
		return
	}
	copy(mem[HeaderSize:], src[HeaderSize:])
	AtomicStoreUint32(mem, TickOffset, binary.NativeEndian.Uint32(src[TickOffset:]))
	AtomicStoreUint32(mem, VersionOffset, binary.NativeEndian.Uint32(src[VersionOffset:]))
}

// LoadRecord copies the mapped record into dst, header words first.
func LoadRecord(dst, mem []byte) {
	if len(mem) < HeaderSize || len(dst) < HeaderSize {
		copy(dst, mem)
		return
	}
	version, tick := LoadHeader(mem)
	binary.NativeEndian.PutUint32(dst[VersionOffset:], version)
	binary.NativeEndian.PutUint32(dst[TickOffset:], tick)
	copy(dst[HeaderSize:], mem[HeaderSize:])
}
