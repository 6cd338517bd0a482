package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/srediag/mumble-link/internal/health"
	"github.com/srediag/mumble-link/internal/logging"
	"github.com/srediag/mumble-link/pkg/link"
	"github.com/srediag/mumble-link/pkg/record"
	"github.com/srediag/mumble-link/pkg/shm"
)

// testOpener replaces the platform mapping in tests.
var testOpener link.Opener

// newBackOff builds the retry schedule of the wait command.
var newBackOff = func(cfg *Config) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = cfg.Timeout
	return b
}

func openSegment(ctx context.Context, cfg *Config) (link.Mapping, error) {
	if testOpener != nil {
		return testOpener(ctx, cfg.Segment, record.Size)
	}
	seg, err := shm.Open(ctx, shm.OpenOptions{Name: cfg.Segment, Size: record.Size})
	if err != nil {
		return nil, err
	}
	return seg, nil
}

func linkOptions(cfg *Config) []link.Option {
	opts := []link.Option{
		link.WithSegmentName(cfg.Segment),
		link.WithRecheckEvery(cfg.RecheckEvery),
	}
	if testOpener != nil {
		opts = append(opts, link.WithOpener(testOpener))
	}
	return opts
}

func runStatus(_ context.Context, cfg *Config, out io.Writer) error {
	l := link.OpenShared(cfg.Name, cfg.Description, linkOptions(cfg)...)
	defer l.Close()
	st := l.Status()
	fmt.Fprintf(out, "%s: %s\n", cfg.Segment, st)
	if st.State == link.StateClosed {
		return st.Err
	}
	return nil
}

func runDump(ctx context.Context, cfg *Config, out io.Writer) error {
	m, err := openSegment(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			logging.Internal.Warnf("dump: close segment: %v", cerr)
		}
	}()

	buf := make([]byte, record.Size)
	m.Load(buf)
	var rec record.Record
	if err := rec.UnmarshalBinary(buf); err != nil {
		return err
	}
	writeRecord(out, cfg.Segment, &rec)
	return nil
}

func writeRecord(out io.Writer, segment string, rec *record.Record) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "segment\t%s\n", segment)
	fmt.Fprintf(tw, "version\t%d\n", rec.Version)
	fmt.Fprintf(tw, "tick\t%d\n", rec.Tick)
	fmt.Fprintf(tw, "name\t%s\n", rec.NameText())
	fmt.Fprintf(tw, "description\t%s\n", rec.DescriptionText())
	fmt.Fprintf(tw, "identity\t%s\n", rec.IdentityText())
	fmt.Fprintf(tw, "context\t%s\n", hex.EncodeToString(rec.ContextBytes()))
	fmt.Fprintf(tw, "avatar\t%s\n", formatPosition(rec.Avatar))
	fmt.Fprintf(tw, "camera\t%s\n", formatPosition(rec.Camera))
	_ = tw.Flush()
}

func formatPosition(p record.Position) string {
	return fmt.Sprintf("pos=%v front=%v top=%v", p.Position, p.Front, p.Top)
}

func runPublish(ctx context.Context, cfg *Config, out io.Writer) error {
	avatar, err := cfg.AvatarPosition()
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	metrics, err := link.NewMetrics(reg)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	l := link.OpenShared(cfg.Name, cfg.Description, append(linkOptions(cfg), link.WithMetrics(metrics))...)
	l.SetContext([]byte(cfg.Context))
	l.SetIdentity(cfg.Identity)
	defer func() {
		mu.Lock()
		_ = l.Close()
		mu.Unlock()
	}()

	period := time.Duration(float64(time.Second) / cfg.Rate)
	hb := health.NewHeartbeat()
	if cfg.Listen != "" {
		maxAge := max(10*period, time.Second)
		checks := health.NewHandler(l, &mu, hb, maxAge)
		mux := http.NewServeMux()
		mux.Handle("/live", checks)
		mux.Handle("/ready", checks)
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Internal.Errorf("publish: serve %s: %v", cfg.Listen, err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	frames := 0
	for cfg.Frames == 0 || frames < cfg.Frames {
		select {
		case <-ctx.Done():
			fmt.Fprintf(out, "interrupted after %d frames\n", frames)
			return nil
		case <-ticker.C:
		}
		mu.Lock()
		l.Update(avatar, avatar)
		mu.Unlock()
		hb.Beat()
		frames++
	}

	mu.Lock()
	st := l.Status()
	mu.Unlock()
	fmt.Fprintf(out, "published %d frames, link %s\n", frames, st)
	return nil
}

func runWait(ctx context.Context, cfg *Config, out io.Writer) error {
	attempts := 0
	op := func() error {
		attempts++
		m, err := openSegment(ctx, cfg)
		if err != nil {
			if link.CodeOf(err).Kind() == link.KindNoSuchMapping {
				logging.Internal.Debugf("wait: attempt %d: %v", attempts, err)
				return err
			}
			return backoff.Permanent(err)
		}
		return m.Close()
	}
	if err := backoff.Retry(op, backoff.WithContext(newBackOff(cfg), ctx)); err != nil {
		return fmt.Errorf("wait for %s: %w", cfg.Segment, err)
	}
	fmt.Fprintf(out, "%s is available after %d attempts\n", cfg.Segment, attempts)
	return nil
}

func runDoctor(ctx context.Context, cfg *Config, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	fmt.Fprintf(tw, "platform\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(tw, "segment\t%s\n", cfg.Segment)

	m, err := openSegment(ctx, cfg)
	if err != nil {
		fmt.Fprintf(tw, "mapping\t%s: %v\n", link.CodeOf(err).Kind(), err)
	} else {
		buf := make([]byte, record.Size)
		m.Load(buf)
		version, tick := record.Header(buf)
		fmt.Fprintf(tw, "mapping\tok, version %d, tick %d\n", version, tick)
		if cerr := m.Close(); cerr != nil {
			logging.Internal.Warnf("doctor: close segment: %v", cerr)
		}
	}

	procs, err := mumbleProcesses(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(tw, "mumble\tcannot list processes: %v\n", err)
	case len(procs) == 0:
		fmt.Fprintf(tw, "mumble\tno running process found\n")
	default:
		fmt.Fprintf(tw, "mumble\t%s\n", strings.Join(procs, ", "))
	}

	if runtime.GOOS == "linux" {
		usage, err := disk.UsageWithContext(ctx, "/dev/shm")
		if err != nil {
			fmt.Fprintf(tw, "/dev/shm\t%v\n", err)
		} else {
			fmt.Fprintf(tw, "/dev/shm\t%d bytes free of %d\n", usage.Free, usage.Total)
		}
	}
	return nil
}

func mumbleProcesses(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	var found []string
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "mumble") && !strings.HasPrefix(lower, "mumblelink") {
			found = append(found, fmt.Sprintf("%s (pid %d)", name, p.Pid))
		}
	}
	return found, nil
}
