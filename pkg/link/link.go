package link

import (
	"errors"
	"fmt"

	"github.com/srediag/mumble-link/internal/logging"
	"github.com/srediag/mumble-link/pkg/record"
)

// Link is an exclusive connection to the Mumble link segment. It writes on
// every Update whether or not another application also uses the segment; use
// SharedLink to cooperate with other writers.
type Link struct {
	cfg     *Config
	mapping Mapping
	local   record.Record
	claimed bool
	closed  bool
}

// Open maps the link segment and announces the application name and
// description. It fails with an ErrorCode, typically ErrShmOpen or
// ErrOpenFileMapping when Mumble is not running.
func Open(name, description string, opts ...Option) (*Link, error) {
	cfg := newConfig(opts)
	if err := VerifyConfig(cfg); err != nil {
		return nil, err
	}
	l := &Link{cfg: cfg, local: record.New(name, description)}
	if !claim(cfg.SegmentName, l) {
		cfg.Metrics.openFailed(ErrAlreadyOpen)
		return nil, fmt.Errorf("link: open %s: %w", cfg.SegmentName, ErrAlreadyOpen)
	}
	m, err := cfg.open()
	if err != nil {
		unclaim(cfg.SegmentName, l)
		cfg.Metrics.openFailed(err)
		logging.Internal.Infof("link: open %s failed: %v", cfg.SegmentName, err)
		return nil, err
	}
	l.mapping = m
	l.claimed = true
	logging.Internal.Debugf("link: opened %s for %q", cfg.SegmentName, name)
	return l, nil
}

// OpenMapping builds a Link over an already mapped segment. The Link takes
// ownership of m and is not entered in the process-wide owner registry.
func OpenMapping(m Mapping, name, description string, opts ...Option) (*Link, error) {
	if m == nil {
		return nil, ErrNoMem
	}
	cfg := newConfig(opts)
	return &Link{cfg: cfg, mapping: m, local: record.New(name, description)}, nil
}

// SetContext sets the context that decides which users hear each other
// positionally. Only the first 256 bytes are kept. The change is published
// with the next Update; it should change at most a few times per second.
func (l *Link) SetContext(context []byte) {
	l.local.SetContext(context)
}

// SetIdentity sets the text identifying the player within the context,
// truncated to 255 UTF-16 code units. The change is published with the next
// Update; it should change at most a few times per second.
func (l *Link) SetIdentity(identity string) {
	l.local.SetIdentity(identity)
}

// Update advances the tick, records the positions and writes the whole record
// to the segment. Call it once per frame. An all-zero avatar disables
// positional audio; camera may equal avatar. Front and top must be
// perpendicular unit vectors; they are written as given.
func (l *Link) Update(avatar, camera Position) {
	l.local.Update(avatar, camera)
	if l.closed {
		return
	}
	if publish(l.mapping, &l.local) {
		l.cfg.Metrics.published()
	}
}

// Shadow returns a copy of the record the next Update will build on.
func (l *Link) Shadow() record.Record {
	return l.local
}

// Close zeroes the segment, so readers see it as free, and releases the
// mapping. Closing twice is a no-op.
func (l *Link) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	release(l.mapping)
	err := l.mapping.Close()
	if l.claimed {
		unclaim(l.cfg.SegmentName, l)
	}
	if err != nil {
		return errors.Join(ErrUnknown, err)
	}
	return nil
}
