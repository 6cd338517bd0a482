package link

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/mumble-link/pkg/shm"
)

const defaultRecheckEvery = 100

// Mapping is a whole-record view of the link segment. Load and Store always
// move the full record; Close releases the view without touching the
// contents. *shm.Segment and *linktest.Mapping implement it.
type Mapping interface {
	Load(dst []byte)
	Store(src []byte)
	Close() error
}

// Opener maps the named segment with at least size bytes.
type Opener func(ctx context.Context, name string, size int) (Mapping, error)

// Config tunes how links reach the segment.
type Config struct {
	// SegmentName is the shared memory object; empty selects the platform default.
	SegmentName string
	// RecheckEvery is how many Update calls a SharedLink waits between
	// ownership checks. It must be positive.
	RecheckEvery uint32
	// Opener maps the segment. Nil uses shm.Open.
	Opener Opener
	// Metrics receives link counters; nil disables them.
	Metrics *Metrics
	// Meter and Tracer instrument the default opener.
	Meter  metric.Meter
	Tracer trace.Tracer
}

// DefaultConfig is used when no Option is given.
func DefaultConfig() *Config {
	return &Config{
		SegmentName:  shm.DefaultName(),
		RecheckEvery: defaultRecheckEvery,
	}
}

// VerifyConfig checks c for values that cannot work.
func VerifyConfig(c *Config) error {
	if c == nil {
		return errors.New("link: nil config")
	}
	if c.RecheckEvery == 0 {
		return errors.New("link: RecheckEvery must be positive")
	}
	if c.SegmentName == "" {
		return errors.New("link: empty segment name")
	}
	if strings.ContainsRune(c.SegmentName, '/') {
		return fmt.Errorf("link: segment name %q must not contain '/'", c.SegmentName)
	}
	return nil
}

// Option overrides a Config field.
type Option func(*Config)

// WithSegmentName selects a non-default shared memory object.
func WithSegmentName(name string) Option {
	return func(c *Config) { c.SegmentName = name }
}

// WithRecheckEvery sets the SharedLink re-evaluation cadence in Update calls.
func WithRecheckEvery(n uint32) Option {
	return func(c *Config) { c.RecheckEvery = n }
}

// WithOpener replaces how the segment is mapped.
func WithOpener(o Opener) Option {
	return func(c *Config) { c.Opener = o }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithTelemetry instruments the default opener with OpenTelemetry.
func WithTelemetry(meter metric.Meter, tracer trace.Tracer) Option {
	return func(c *Config) {
		c.Meter = meter
		c.Tracer = tracer
	}
}

func newConfig(opts []Option) *Config {
	c := DefaultConfig()
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Config) open() (Mapping, error) {
	if c.Opener != nil {
		return c.Opener(context.Background(), c.SegmentName, recordSize)
	}
	seg, err := shm.Open(context.Background(), shm.OpenOptions{
		Name:   c.SegmentName,
		Size:   recordSize,
		Meter:  c.Meter,
		Tracer: c.Tracer,
	})
	if err != nil {
		return nil, err
	}
	return seg, nil
}
