package link

import (
	"context"
	"fmt"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srediag/mumble-link/pkg/linktest"
)

// fakeOpener maps views of region and remembers each one. While failures is
// positive each call fails with code instead.
type fakeOpener struct {
	region   *linktest.Region
	views    []*linktest.Mapping
	failures int
	code     ErrorCode
	calls    int
}

func (f *fakeOpener) open(_ context.Context, name string, size int) (Mapping, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, fmt.Errorf("shm_open %s: %w", name, f.code)
	}
	v := f.region.Map()
	f.views = append(f.views, v)
	return v, nil
}

func (f *fakeOpener) last() *linktest.Mapping {
	if len(f.views) == 0 {
		return nil
	}
	return f.views[len(f.views)-1]
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	_ = c.Write(m)
	return m.GetCounter().GetValue()
}

func gaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	_ = g.Write(m)
	return m.GetGauge().GetValue()
}

func zeroPosition() Position {
	return Position{}
}
