// Package health exposes a shared link's state as liveness and readiness checks.
package health

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/heptiolabs/healthcheck"

	"github.com/srediag/mumble-link/pkg/link"
)

// StatusReporter is satisfied by *link.SharedLink.
type StatusReporter interface {
	Status() link.Status
}

// Heartbeat records when the frame loop last called Update.
type Heartbeat struct {
	last atomic.Int64
	now  func() time.Time
}

// NewHeartbeat returns a heartbeat that has not beaten yet.
func NewHeartbeat() *Heartbeat {
	return &Heartbeat{now: time.Now}
}

// Beat marks the frame loop alive.
func (h *Heartbeat) Beat() {
	h.last.Store(h.now().UnixNano())
}

// Check fails when no beat happened within maxAge.
func (h *Heartbeat) Check(maxAge time.Duration) healthcheck.Check {
	return func() error {
		last := h.last.Load()
		if last == 0 {
			return errors.New("frame loop has not started")
		}
		if age := h.now().Sub(time.Unix(0, last)); age > maxAge {
			return fmt.Errorf("last update %s ago (max %s)", age.Truncate(time.Millisecond), maxAge)
		}
		return nil
	}
}

// ActiveCheck fails unless the link is writing the segment. mu must be the
// lock that serializes the link's Update calls.
func ActiveCheck(s StatusReporter, mu sync.Locker) healthcheck.Check {
	return func() error {
		mu.Lock()
		st := s.Status()
		mu.Unlock()
		if st.State != link.StateActive {
			return fmt.Errorf("link %s", st)
		}
		return nil
	}
}

// NewHandler serves /live from the heartbeat and /ready from the link state.
func NewHandler(s StatusReporter, mu sync.Locker, hb *Heartbeat, maxAge time.Duration) healthcheck.Handler {
	h := healthcheck.NewHandler()
	h.AddLivenessCheck("frame-loop", hb.Check(maxAge))
	h.AddReadinessCheck("link-active", ActiveCheck(s, mu))
	return h
}
