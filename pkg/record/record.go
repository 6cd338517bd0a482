// Package record defines the fixed-layout linked record shared with Mumble
// and the encode/decode rules for its fields.
//
// The layout is fixed by the reading application: native byte order, no
// padding, and 16-bit UTF-16 code units for every string field on every
// platform.
package record

import (
	"encoding/binary"
	"fmt"
)

const (
	NameLen        = 256
	IdentityLen    = 256
	ContextLen     = 256
	DescriptionLen = 2048

	// Version is the protocol version written by this library. A zero
	// version marks the segment as free.
	Version = 2

	// Size is the encoded size of a Record in bytes.
	Size = 4 + 4 + PositionSize + NameLen*2 + PositionSize + IdentityLen*2 + 4 + ContextLen + DescriptionLen*2

	// PositionSize is the encoded size of a Position in bytes.
	PositionSize = 9 * 4
)

// Position is a location and orientation in a left-handed coordinate system:
// X towards the right, Y up, Z to the front. One unit is one meter.
//
// Front and Top should be perpendicular unit vectors; this is not checked.
type Position struct {
	// Position is the location in space.
	Position [3]float32
	// Front points out of the eyes.
	Front [3]float32
	// Top points out of the top of the head.
	Top [3]float32
}

// DefaultPosition is at the origin, facing +Z with +Y up.
func DefaultPosition() Position {
	return Position{
		Front: [3]float32{0, 0, 1},
		Top:   [3]float32{0, 1, 0},
	}
}

// Record is the linked record. Field order and widths are the wire layout.
type Record struct {
	Version     uint32
	Tick        uint32
	Avatar      Position
	Name        [NameLen]uint16
	Camera      Position
	Identity    [IdentityLen]uint16
	ContextLen  uint32
	Context     [ContextLen]byte
	Description [DescriptionLen]uint16
}

// New returns a record announcing the application name and description.
func New(name, description string) Record {
	r := Record{
		Version: Version,
		Avatar:  DefaultPosition(),
		Camera:  DefaultPosition(),
	}
	EncodeUTF16(r.Name[:], name)
	EncodeUTF16(r.Description[:], description)
	return r
}

// IsFree reports whether the record marks the segment unused.
func (r *Record) IsFree() bool {
	return r.Version == 0
}

// SetName replaces the application name.
func (r *Record) SetName(name string) {
	EncodeUTF16(r.Name[:], name)
}

// SetDescription replaces the application description.
func (r *Record) SetDescription(description string) {
	EncodeUTF16(r.Description[:], description)
}

// SetIdentity replaces the player identity, truncated to 255 code units.
func (r *Record) SetIdentity(identity string) {
	EncodeUTF16(r.Identity[:], identity)
}

// SetContext copies at most ContextLen bytes of context and returns how many
// were kept.
func (r *Record) SetContext(context []byte) int {
	n := copy(r.Context[:], context)
	clear(r.Context[n:])
	r.ContextLen = uint32(n)
	return n
}

// Update advances the tick, wrapping at the uint32 limit, and stores the
// positions verbatim. An all-zero avatar disables positional audio.
func (r *Record) Update(avatar, camera Position) {
	r.Tick++
	r.Avatar = avatar
	r.Camera = camera
}

// NameText decodes the application name.
func (r *Record) NameText() string { return DecodeUTF16(r.Name[:]) }

// DescriptionText decodes the application description.
func (r *Record) DescriptionText() string { return DecodeUTF16(r.Description[:]) }

// IdentityText decodes the player identity.
func (r *Record) IdentityText() string { return DecodeUTF16(r.Identity[:]) }

// ContextBytes returns the valid part of the context.
func (r *Record) ContextBytes() []byte {
	n := min(int(r.ContextLen), ContextLen)
	return r.Context[:n]
}

// AppendBinary appends the wire encoding of r to b.
func (r *Record) AppendBinary(b []byte) ([]byte, error) {
	return binary.Append(b, binary.NativeEndian, r)
}

// UnmarshalBinary decodes a wire record. b must hold at least Size bytes.
func (r *Record) UnmarshalBinary(b []byte) error {
	if len(b) < Size {
		return fmt.Errorf("record: short buffer: %d < %d", len(b), Size)
	}
	_, err := binary.Decode(b[:Size], binary.NativeEndian, r)
	return err
}

// Header extracts version and tick from an encoded record.
func Header(b []byte) (version, tick uint32) {
	if len(b) < 8 {
		return 0, 0
	}
	return binary.NativeEndian.Uint32(b[0:]), binary.NativeEndian.Uint32(b[4:])
}

// Zero is the encoded all-zero record that releases the segment.
var Zero = make([]byte, Size)
