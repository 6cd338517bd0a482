package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/mumble-link/pkg/link"
)

type fixedStatus struct {
	st link.Status
}

func (f *fixedStatus) Status() link.Status { return f.st }

func TestHeartbeatCheck(t *testing.T) {
	now := time.Unix(1000, 0)
	hb := &Heartbeat{now: func() time.Time { return now }}
	check := hb.Check(time.Second)

	require.Error(t, check())
	hb.Beat()
	require.NoError(t, check())

	now = now.Add(2 * time.Second)
	err := check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last update 2s ago")
}

func TestActiveCheck(t *testing.T) {
	var mu sync.Mutex
	s := &fixedStatus{st: link.Status{State: link.StateActive}}
	require.NoError(t, ActiveCheck(s, &mu)())

	s.st = link.Status{State: link.StateClosed, Err: errors.New("no mumble")}
	err := ActiveCheck(s, &mu)()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no mumble")
}

func TestHandlerEndpoints(t *testing.T) {
	var mu sync.Mutex
	s := &fixedStatus{st: link.Status{State: link.StateInUse, Name: "Other"}}
	hb := NewHeartbeat()
	h := NewHandler(s, &mu, hb, time.Minute)

	get := func(path string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusServiceUnavailable, get("/live"))
	hb.Beat()
	assert.Equal(t, http.StatusOK, get("/live"))
	assert.Equal(t, http.StatusServiceUnavailable, get("/ready"))

	s.st = link.Status{State: link.StateActive}
	assert.Equal(t, http.StatusOK, get("/ready"))
}
