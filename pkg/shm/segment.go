package shm

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	internalshm "github.com/srediag/mumble-link/internal/shm"
	"github.com/srediag/mumble-link/internal/logging"
)

const instrumentationName = "github.com/srediag/mumble-link/pkg/shm"

// ErrorCode and its values are re-exported from the platform layer.
type ErrorCode = internalshm.ErrorCode

const (
	ErrOpenFileMapping = internalshm.ErrOpenFileMapping
	ErrMapViewOfFile   = internalshm.ErrMapViewOfFile
	ErrShmOpen         = internalshm.ErrShmOpen
	ErrMMap            = internalshm.ErrMMap
	ErrNoMem           = internalshm.ErrNoMem
	ErrUnknown         = internalshm.ErrUnknown
)

// DefaultName returns the platform's well-known link object name.
func DefaultName() string {
	return internalshm.DefaultName()
}

// Segment is a read/write view of one shared memory object.
type Segment struct {
	region *internalshm.MappedRegion
	name   string
	size   int

	loads  metric.Int64Counter
	stores metric.Int64Counter
}

// OpenOptions defines options for opening the shared memory segment.
type OpenOptions struct {
	// Name is the identifier of the shared memory object.
	Name string
	// Size is the number of bytes to map; the object must be at least this large.
	Size   int
	Meter  metric.Meter
	Tracer trace.Tracer
}

// Open maps the existing segment described by opts.
func Open(ctx context.Context, opts OpenOptions) (*Segment, error) {
	if opts.Size <= 0 {
		return nil, ErrNoMem
	}
	if opts.Name == "" {
		opts.Name = DefaultName()
	}
	meter := opts.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}

	ctx, span := tracer.Start(ctx, "shm.Open", trace.WithAttributes(
		attribute.String("shm.name", opts.Name),
		attribute.Int("shm.size", opts.Size),
	))
	defer span.End()

	region, err := internalshm.MapRegion(ctx, internalshm.MapOptions{
		Name: opts.Name,
		Size: opts.Size,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	loads, err := meter.Int64Counter("mumblelink.shm.loads",
		metric.WithDescription("Whole-record reads of the link segment."))
	if err != nil {
		logging.Internal.Warnf("shm: create loads counter: %v", err)
	}
	stores, err := meter.Int64Counter("mumblelink.shm.stores",
		metric.WithDescription("Whole-record writes to the link segment."))
	if err != nil {
		logging.Internal.Warnf("shm: create stores counter: %v", err)
	}
	logging.Internal.Debugf("shm: mapped %s (%d bytes)", opts.Name, opts.Size)
	return &Segment{
		region: region,
		name:   opts.Name,
		size:   opts.Size,
		loads:  loads,
		stores: stores,
	}, nil
}

// Name returns the shared memory object name.
func (s *Segment) Name() string { return s.name }

// Size returns the number of mapped bytes.
func (s *Segment) Size() int { return s.size }

// Load copies the whole mapped record into dst. A closed segment reads as zero.
func (s *Segment) Load(dst []byte) {
	if s.region == nil || s.region.Addr == nil {
		clear(dst)
		return
	}
	internalshm.LoadRecord(dst, s.region.Addr)
	if s.loads != nil {
		s.loads.Add(context.Background(), 1)
	}
}

// Store writes src over the mapped record. Stores to a closed segment are dropped.
func (s *Segment) Store(src []byte) {
	if s.region == nil || s.region.Addr == nil {
		return
	}
	internalshm.StoreRecord(s.region.Addr, src)
	if s.stores != nil {
		s.stores.Add(context.Background(), 1)
	}
}

// Header reads the live version and tick words.
func (s *Segment) Header() (version, tick uint32) {
	if s.region == nil {
		return 0, 0
	}
	return internalshm.LoadHeader(s.region.Addr)
}

// Close unmaps the segment. The named object is not removed.
func (s *Segment) Close() error {
	if s.region == nil {
		return nil
	}
	err := internalshm.UnmapRegion(context.Background(), s.region)
	s.region = nil
	if err != nil {
		return errors.Join(ErrUnknown, err)
	}
	return nil
}
