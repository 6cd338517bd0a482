package link

import (
	"fmt"

	"github.com/srediag/mumble-link/internal/logging"
	"github.com/srediag/mumble-link/pkg/record"
)

// State is the ownership state of a SharedLink.
type State int

const (
	// StateClosed: the segment is not mapped, because Mumble is not running,
	// mapping failed, or Deactivate was called.
	StateClosed State = iota
	// StateInUse: the segment is mapped but another application writes it.
	StateInUse
	// StateActive: this link writes the segment.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateInUse:
		return "in-use"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// connection is the tagged state of a SharedLink; exactly one of the
// concrete types below.
type connection interface {
	state() State
	mapping() Mapping
}

type closedConn struct {
	err error
}

type inUseConn struct {
	m            Mapping
	observedTick uint32
}

type activeConn struct {
	m Mapping
}

func (*closedConn) state() State       { return StateClosed }
func (*closedConn) mapping() Mapping   { return nil }
func (*inUseConn) state() State        { return StateInUse }
func (c *inUseConn) mapping() Mapping  { return c.m }
func (*activeConn) state() State       { return StateActive }
func (c *activeConn) mapping() Mapping { return c.m }

// SharedLink is a weak connection to the Mumble link segment.
//
// Opening a SharedLink always succeeds, even if Mumble is not running or
// another application writes the segment. Every RecheckEvery calls to Update
// it retries: a missing segment is reopened, and a segment whose owner
// released it or stopped advancing its tick is taken over. Two shared links
// may briefly both write; the cost is a glitched audio update.
type SharedLink struct {
	cfg     *Config
	conn    connection
	local   record.Record
	scratch []byte
	// cfgErr keeps an invalid configuration closed for good.
	cfgErr error
}

// OpenShared creates a SharedLink announcing the application name and
// description. The initial state is available through Status.
func OpenShared(name, description string, opts ...Option) *SharedLink {
	cfg := newConfig(opts)
	s := &SharedLink{
		cfg:     cfg,
		local:   record.New(name, description),
		scratch: make([]byte, recordSize),
	}
	if err := VerifyConfig(cfg); err != nil {
		logging.Internal.Warnf("link: shared link config: %v", err)
		s.cfgErr = err
		if cfg.RecheckEvery == 0 {
			cfg.RecheckEvery = defaultRecheckEvery
		}
	}
	s.setConn(s.open())
	return s
}

func (s *SharedLink) open() connection {
	if s.cfgErr != nil {
		return &closedConn{err: s.cfgErr}
	}
	m, err := s.cfg.open()
	if err != nil {
		s.cfg.Metrics.openFailed(err)
		logging.Internal.Debugf("link: shared open %s failed: %v", s.cfg.SegmentName, err)
		return &closedConn{err: err}
	}
	version, tick := load(m, s.scratch)
	if version != 0 {
		return &inUseConn{m: m, observedTick: tick}
	}
	return &activeConn{m: m}
}

// recheck decides the next state from the current one.
func (s *SharedLink) recheck() connection {
	switch c := s.conn.(type) {
	case *closedConn:
		return s.open()
	case *inUseConn:
		version, tick := load(c.m, s.scratch)
		if version == 0 || tick == c.observedTick {
			s.cfg.Metrics.tookOver()
			logging.Internal.Infof("link: taking over %s (version %d, tick %d)", s.cfg.SegmentName, version, tick)
			return &activeConn{m: c.m}
		}
		return &inUseConn{m: c.m, observedTick: tick}
	default:
		return c
	}
}

// setConn installs next and releases a mapping the old state held that next
// does not keep.
func (s *SharedLink) setConn(next connection) {
	prev := s.conn
	s.conn = next
	if prev != nil && prev.state() != next.state() {
		logging.Internal.Debugf("link: shared %s -> %s", prev.state(), next.state())
	}
	if prev != nil {
		if old := prev.mapping(); old != nil && old != next.mapping() {
			if err := old.Close(); err != nil {
				logging.Internal.Warnf("link: release mapping: %v", err)
			}
		}
	}
	s.cfg.Metrics.setState(next.state())
}

// SetContext sets the context that decides which users hear each other
// positionally. Only the first 256 bytes are kept; the change is written with
// the next Update while active.
func (s *SharedLink) SetContext(context []byte) {
	s.local.SetContext(context)
}

// SetIdentity sets the text identifying the player within the context,
// truncated to 255 UTF-16 code units.
func (s *SharedLink) SetIdentity(identity string) {
	s.local.SetIdentity(identity)
}

// Update advances the tick and records the positions. Every RecheckEvery
// calls it re-evaluates ownership, then writes the record if the link is
// active. Call it once per frame.
func (s *SharedLink) Update(avatar, camera Position) {
	s.local.Update(avatar, camera)

	if s.local.Tick%s.cfg.RecheckEvery == 0 {
		s.setConn(s.recheck())
	}

	if c, ok := s.conn.(*activeConn); ok {
		if publish(c.m, &s.local) {
			s.cfg.Metrics.published()
		}
	}
}

// Status reports the link state. For StateInUse the other application's name
// and description are read from the segment. Status never writes.
func (s *SharedLink) Status() Status {
	switch c := s.conn.(type) {
	case *closedConn:
		return Status{State: StateClosed, Err: c.err}
	case *inUseConn:
		buf := make([]byte, recordSize)
		c.m.Load(buf)
		var other record.Record
		if err := other.UnmarshalBinary(buf); err != nil {
			return Status{State: StateInUse}
		}
		return Status{
			State:       StateInUse,
			Name:        other.NameText(),
			Description: other.DescriptionText(),
		}
	default:
		return Status{State: StateActive}
	}
}

// Deactivate releases the segment immediately instead of letting another
// writer wait out a stale tick. Call it when Update will not be called for a
// while, such as when the player leaves the game. The next re-evaluation in
// Update tries to open the segment again.
func (s *SharedLink) Deactivate() {
	if c, ok := s.conn.(*activeConn); ok {
		release(c.m)
	}
	s.setConn(&closedConn{err: ErrManuallyClosed})
}

// Close deactivates the link.
func (s *SharedLink) Close() error {
	s.Deactivate()
	return nil
}

// Shadow returns a copy of the record the next Update will build on.
func (s *SharedLink) Shadow() record.Record {
	return s.local
}
