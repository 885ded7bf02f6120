package probe

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/czerwonk/pinggraph/graph"
	"github.com/czerwonk/pinggraph/history"
	log "github.com/sirupsen/logrus"
)

// Options control the probe timing.
type Options struct {
	Interval   time.Duration
	Timeout    time.Duration
	DNSRefresh time.Duration
}

// Scheduler probes every target once per interval and appends the results
// to the target's history. It is the only writer of the histories.
type Scheduler struct {
	pinger    Pinger
	targets   []*Target
	histories *history.Set
	scaler    *graph.Scaler
	opts      Options
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewScheduler creates a scheduler. Every target needs a history in histories.
// The timeout is cut to end before the next tick, so every tick of a target
// which does not answer yields one lost sample.
func NewScheduler(pinger Pinger, targets []*Target, histories *history.Set, scaler *graph.Scaler, opts Options) *Scheduler {
	opts.Timeout = effectiveTimeout(opts.Interval, opts.Timeout)

	return &Scheduler{
		pinger:    pinger,
		targets:   targets,
		histories: histories,
		scaler:    scaler,
		opts:      opts,
		now:       time.Now,
	}
}

// effectiveTimeout limits timeout to 90% of interval.
func effectiveTimeout(interval, timeout time.Duration) time.Duration {
	if interval <= 0 {
		return timeout
	}
	if limit := interval - interval/10; timeout <= 0 || timeout > limit {
		return limit
	}
	return timeout
}

// Targets returns the probed targets.
func (s *Scheduler) Targets() []*Target {
	return s.targets
}

// Run resolves the targets and probes them until ctx is done. It waits for
// probes in flight before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Infof("Starting prober (interval=%s, timeout=%s, targets=%d)", s.opts.Interval, s.opts.Timeout, len(s.targets))

	s.refreshDNS(ctx)
	go s.startDNSAutoRefresh(ctx)

	tick := time.NewTicker(s.opts.Interval)
	defer tick.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.Wait()
			return nil
		case <-tick.C:
			s.Tick(ctx)
		}
	}
}

// Tick updates the axis scale from the samples collected so far and starts
// one probe per target. A target whose previous probe has not finished yet
// is skipped for this tick.
func (s *Scheduler) Tick(ctx context.Context) {
	s.observeScale()

	for _, t := range s.targets {
		if !t.inFlight.CompareAndSwap(false, true) {
			t.skipped.Add(1)
			log.Debugf("skipping probe of %s, previous probe still running", t.host)
			continue
		}

		s.wg.Add(1)
		go s.probe(ctx, t)
	}
}

// Wait blocks until all started probes are done.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) probe(ctx context.Context, t *Target) {
	defer s.wg.Done()
	defer t.inFlight.Store(false)

	h, found := s.histories.Get(t.host)
	if !found {
		log.Errorf("no history for target %s", t.host)
		return
	}

	at := s.now()
	addr := t.Addr()
	if addr == nil {
		t.sent.Add(1)
		t.lost.Add(1)
		h.Add(history.Missing(at))
		return
	}

	pctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	rtt, err := s.pinger.Ping(pctx, addr)
	if ctx.Err() != nil {
		// shutting down, the result is meaningless
		return
	}

	t.sent.Add(1)
	if err != nil {
		t.lost.Add(1)
		log.Debugf("ping %s: %v", t.nameForIP(*addr), err)
	}
	h.AddResult(rtt, err, at)
}

func (s *Scheduler) observeScale() {
	if s.scaler == nil {
		return
	}

	max := math.NaN()
	if m, ok := s.histories.Max(); ok {
		max = float64(m) / float64(time.Millisecond)
	}
	s.scaler.Observe(max)
}

func (s *Scheduler) startDNSAutoRefresh(ctx context.Context) {
	if s.opts.DNSRefresh <= 0 {
		return
	}

	tick := time.NewTicker(s.opts.DNSRefresh)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.refreshDNS(ctx)
		}
	}
}

func (s *Scheduler) refreshDNS(ctx context.Context) {
	log.Debugln("Refreshing DNS")

	var wg sync.WaitGroup
	for _, t := range s.targets {
		wg.Add(1)
		go func(ta *Target) {
			defer wg.Done()
			if err := ta.Resolve(ctx); err != nil {
				log.Errorf("could not refresh dns: %v", err)
			}
		}(t)
	}
	wg.Wait()
}
