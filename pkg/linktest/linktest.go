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

// Package linktest provides an in-memory stand-in for the Mumble link
// segment, for testing code built on the link package without a running
// Mumble.
//
// A Region is the shared object; each Map call returns an independent view
// onto it, the way two processes would each map the same segment. Headers
// queued with Script are applied one per Load, which models another writer
// advancing its heartbeat between reads.
package linktest

import (
	"encoding/binary"
	"errors"

	"github.com/Workiva/go-datastructures/queue"

	"github.com/srediag/mumble-link/pkg/record"
)

// ErrClosed is returned when closing a view twice.
var ErrClosed = errors.New("linktest: mapping already closed")

// Header is the version and tick pair a scripted writer publishes.
type Header struct {
	Version uint32
	Tick    uint32
}

// Region is a fake shared memory object.
type Region struct {
	mem    []byte
	script *queue.Queue
}

// NewRegion returns a zeroed region sized for one linked record.
func NewRegion() *Region {
	return &Region{
		mem:    make([]byte, record.Size),
		script: queue.New(16),
	}
}

// Script queues headers to appear in the region, one per Load of any view.
func (r *Region) Script(headers ...Header) {
	for _, h := range headers {
		_ = r.script.Put(h)
	}
}

// Pending reports how many scripted headers are still queued.
func (r *Region) Pending() int {
	return int(r.script.Len())
}

// SetHeader overwrites the version and tick words directly.
func (r *Region) SetHeader(version, tick uint32) {
	binary.NativeEndian.PutUint32(r.mem[0:], version)
	binary.NativeEndian.PutUint32(r.mem[4:], tick)
}

// Publish overwrites the region with rec, as another writer would.
func (r *Region) Publish(rec *record.Record) {
	b, err := rec.AppendBinary(nil)
	if err == nil {
		copy(r.mem, b)
	}
}

// Header returns the current version and tick.
func (r *Region) Header() (version, tick uint32) {
	return record.Header(r.mem)
}

// Bytes returns a copy of the region contents.
func (r *Region) Bytes() []byte {
	return append([]byte(nil), r.mem...)
}

// Record decodes the region contents.
func (r *Region) Record() record.Record {
	var rec record.Record
	_ = rec.UnmarshalBinary(r.mem)
	return rec
}

// Map returns a new view of the region.
func (r *Region) Map() *Mapping {
	return &Mapping{region: r}
}

func (r *Region) applyScript() {
	if r.script.Empty() {
		return
	}
	items, err := r.script.Get(1)
	if err != nil || len(items) == 0 {
		return
	}
	if h, ok := items[0].(Header); ok {
		r.SetHeader(h.Version, h.Tick)
	}
}

// Mapping is one view of a Region. It satisfies the link package's Mapping
// interface.
type Mapping struct {
	region *Region
	loads  int
	stores int
	closed bool
}

// Load copies the region into dst after applying the next scripted header.
func (m *Mapping) Load(dst []byte) {
	if m.closed {
		clear(dst)
		return
	}
	m.loads++
	m.region.applyScript()
	copy(dst, m.region.mem)
}

// Store overwrites the region with src.
func (m *Mapping) Store(src []byte) {
	if m.closed {
		return
	}
	m.stores++
	copy(m.region.mem, src)
}

// Close releases the view; the region keeps its contents.
func (m *Mapping) Close() error {
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	return nil
}

// Region returns the region behind the view.
func (m *Mapping) Region() *Region { return m.region }

// Loads counts Load calls on an open view.
func (m *Mapping) Loads() int { return m.loads }

// Stores counts Store calls on an open view.
func (m *Mapping) Stores() int { return m.stores }

// Closed reports whether Close was called.
func (m *Mapping) Closed() bool { return m.closed }
