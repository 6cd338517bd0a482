// Package shm provides the portable, lock-free view of the Mumble link segment.
//
// A Segment maps an existing named shared memory object and exposes
// whole-record loads and stores. It never takes a lock and never creates or
// removes the object: Mumble owns its existence. Segments are instrumented
// with OpenTelemetry metrics and tracing; without a Meter or Tracer the
// no-op providers are used.
//
// Example usage:
//
//	seg, err := shm.Open(ctx, shm.OpenOptions{
//	  Name: shm.DefaultName(),
//	  Size: record.Size,
//	})
//	if err != nil {
//	  // errors.Is(err, shm.ErrShmOpen): Mumble is not running
//	}
//	defer seg.Close()
//	seg.Store(buf)
//
// Platform-specific helpers are in internal/shm.
package shm
