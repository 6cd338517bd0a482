package link

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts link activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Publishes    prometheus.Counter
	Takeovers    prometheus.Counter
	OpenFailures *prometheus.CounterVec
	State        *prometheus.GaugeVec
}

// NewMetrics creates the link collectors and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Publishes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mumblelink",
			Name:      "publishes_total",
			Help:      "Total number of records written to the link segment.",
		}),
		Takeovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mumblelink",
			Name:      "takeovers_total",
			Help:      "Total number of times a shared link took over a free or stalled segment.",
		}),
		OpenFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mumblelink",
			Name:      "open_failures_total",
			Help:      "Total number of failed attempts to map the link segment, by error kind.",
		}, []string{"kind"}),
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mumblelink",
			Name:      "shared_link_state",
			Help:      "1 for the current state of the shared link, 0 otherwise.",
		}, []string{"state"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.Publishes, m.Takeovers, m.OpenFailures, m.State} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) published() {
	if m == nil {
		return
	}
	m.Publishes.Inc()
}

func (m *Metrics) tookOver() {
	if m == nil {
		return
	}
	m.Takeovers.Inc()
}

func (m *Metrics) openFailed(err error) {
	if m == nil {
		return
	}
	m.OpenFailures.WithLabelValues(CodeOf(err).Kind().String()).Inc()
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	for _, st := range []State{StateClosed, StateInUse, StateActive} {
		v := 0.0
		if st == s {
			v = 1
		}
		m.State.WithLabelValues(st.String()).Set(v)
	}
}
