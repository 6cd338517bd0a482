package link

import (
	"github.com/valyala/bytebufferpool"

	"github.com/srediag/mumble-link/internal/logging"
	"github.com/srediag/mumble-link/pkg/record"
)

const recordSize = record.Size

// Position is re-exported so callers need only this package.
type Position = record.Position

// DefaultPosition is at the origin, facing +Z with +Y up.
func DefaultPosition() Position {
	return record.DefaultPosition()
}

var encodePool bytebufferpool.Pool

// publish writes the whole shadow record to m in one store.
func publish(m Mapping, r *record.Record) bool {
	buf := encodePool.Get()
	defer encodePool.Put(buf)

	b, err := r.AppendBinary(buf.B[:0])
	if err != nil {
		logging.Internal.Errorf("link: encode record: %v", err)
		return false
	}
	buf.B = b
	m.Store(b)
	return true
}

// release zeroes the segment so readers see version 0.
func release(m Mapping) {
	m.Store(record.Zero)
}

// load reads the live record from m into buf and decodes its header.
func load(m Mapping, buf []byte) (version, tick uint32) {
	m.Load(buf)
	return record.Header(buf)
}
