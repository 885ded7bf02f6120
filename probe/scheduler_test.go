package probe

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/czerwonk/pinggraph/graph"
	"github.com/czerwonk/pinggraph/history"
)

type staticResolver map[string][]net.IPAddr

func (r staticResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	addrs, found := r[host]
	if !found {
		return nil, errors.New("no such host")
	}
	return addrs, nil
}

type pingResult struct {
	rtt time.Duration
	err error
}

// fakePinger answers with a fixed result per IP. When block is set, every
// ping waits for it to be closed or for the context to end.
type fakePinger struct {
	results map[string]pingResult
	block   chan struct{}

	mu    sync.Mutex
	calls int
}

func (p *fakePinger) Ping(ctx context.Context, addr *net.IPAddr) (time.Duration, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	r, found := p.results[addr.IP.String()]
	if !found {
		return 0, ErrNoReply
	}
	return r.rtt, r.err
}

func (p *fakePinger) Close() {}

func (p *fakePinger) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var testResolver = staticResolver{
	"1.1.1.1":     {{IP: net.ParseIP("1.1.1.1")}},
	"8.8.4.4":     {{IP: net.ParseIP("8.8.4.4")}},
	"dns.example": {{IP: net.ParseIP("2001:db8::1")}, {IP: net.ParseIP("192.0.2.1")}},
}

func newTestScheduler(t *testing.T, pinger Pinger, hosts ...string) (*Scheduler, *history.Set) {
	t.Helper()

	targets := make([]*Target, len(hosts))
	for i, h := range hosts {
		targets[i] = NewTarget(h, testResolver)
	}
	histories := history.NewSet(5, hosts...)
	s := NewScheduler(pinger, targets, histories, graph.NewScaler(1, 0.95, 1), Options{
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
	})
	s.refreshDNS(context.Background())

	return s, histories
}

func snapshotOf(t *testing.T, set *history.Set, host string) []history.Sample {
	t.Helper()

	h, found := set.Get(host)
	if !found {
		t.Fatalf("no history for %s", host)
	}
	return h.Snapshot()
}

func TestSchedulerRecordsSamples(t *testing.T) {
	pinger := &fakePinger{results: map[string]pingResult{
		"1.1.1.1":   {rtt: 10 * time.Millisecond},
		"8.8.4.4":   {err: ErrNoReply},
		"192.0.2.1": {rtt: 30 * time.Millisecond},
	}}
	s, histories := newTestScheduler(t, pinger, "1.1.1.1", "8.8.4.4", "dns.example")

	s.Tick(context.Background())
	s.Wait()

	if got := snapshotOf(t, histories, "1.1.1.1"); len(got) != 1 || got[0].Lost || got[0].RTT != 10*time.Millisecond {
		t.Errorf("unexpected samples for 1.1.1.1: %+v", got)
	}
	if got := snapshotOf(t, histories, "8.8.4.4"); len(got) != 1 || !got[0].Lost {
		t.Errorf("expected lost sample for 8.8.4.4, got %+v", got)
	}
	if got := snapshotOf(t, histories, "dns.example"); len(got) != 1 || got[0].RTT != 30*time.Millisecond {
		t.Errorf("expected IPv4 address to be probed for dns.example, got %+v", got)
	}

	expected := Counters{Sent: 1, Lost: 1}
	if got := s.Targets()[1].Counters(); got != expected {
		t.Errorf("expected counters %+v, got %+v", expected, got)
	}
}

func TestSchedulerUnresolvedTarget(t *testing.T) {
	pinger := &fakePinger{}
	s, histories := newTestScheduler(t, pinger, "unknown.example")

	s.Tick(context.Background())
	s.Wait()

	if got := snapshotOf(t, histories, "unknown.example"); len(got) != 1 || !got[0].Lost {
		t.Errorf("expected lost sample for unresolved target, got %+v", got)
	}
	if pinger.callCount() != 0 {
		t.Errorf("expected no ping for unresolved target, got %d", pinger.callCount())
	}
}

func TestSchedulerSkipsTargetInFlight(t *testing.T) {
	pinger := &fakePinger{
		results: map[string]pingResult{"1.1.1.1": {rtt: time.Millisecond}},
		block:   make(chan struct{}),
	}
	s, histories := newTestScheduler(t, pinger, "1.1.1.1")

	s.Tick(context.Background())
	s.Tick(context.Background())
	close(pinger.block)
	s.Wait()

	if got := snapshotOf(t, histories, "1.1.1.1"); len(got) != 1 {
		t.Errorf("expected a single sample, got %+v", got)
	}
	if got := s.Targets()[0].Counters(); got.Skipped != 1 || got.Sent != 1 {
		t.Errorf("expected 1 sent / 1 skipped, got %+v", got)
	}
}

func TestSchedulerObservesScale(t *testing.T) {
	pinger := &fakePinger{}
	s, histories := newTestScheduler(t, pinger, "1.1.1.1")

	h, _ := histories.Get("1.1.1.1")
	h.Add(history.Sample{RTT: 100 * time.Millisecond})

	s.Tick(context.Background())
	s.Wait()

	if got := s.scaler.Value(); got != 100 {
		t.Errorf("expected scale 100, got %v", got)
	}
}

func TestSchedulerShutdownDiscardsProbe(t *testing.T) {
	pinger := &fakePinger{block: make(chan struct{})}
	s, histories := newTestScheduler(t, pinger, "1.1.1.1")

	ctx, cancel := context.WithCancel(context.Background())
	s.Tick(ctx)
	cancel()
	s.Wait()

	if got := snapshotOf(t, histories, "1.1.1.1"); len(got) != 0 {
		t.Errorf("expected no sample after shutdown, got %+v", got)
	}
}

func TestSchedulerRun(t *testing.T) {
	pinger := &fakePinger{results: map[string]pingResult{
		"1.1.1.1": {rtt: 5 * time.Millisecond},
	}}
	s, histories := newTestScheduler(t, pinger, "1.1.1.1")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := snapshotOf(t, histories, "1.1.1.1")
	if len(got) < 2 {
		t.Errorf("expected several samples, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].At.Before(got[i-1].At) {
			t.Errorf("samples out of order at %d", i)
		}
	}
}

func TestSchedulerTimeoutEqualToInterval(t *testing.T) {
	// never answers, every ping ends with its context
	pinger := &fakePinger{block: make(chan struct{})}

	targets := []*Target{NewTarget("1.1.1.1", testResolver)}
	histories := history.NewSet(100, "1.1.1.1")
	s := NewScheduler(pinger, targets, histories, nil, Options{
		Interval: 100 * time.Millisecond,
		Timeout:  100 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 1050*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := snapshotOf(t, histories, "1.1.1.1")
	c := targets[0].Counters()
	if c.Skipped != 0 {
		t.Errorf("expected no skipped ticks, got %+v", c)
	}
	if len(got) < 5 || uint64(len(got)) != c.Sent {
		t.Errorf("expected one sample per ping, got %d samples for %+v", len(got), c)
	}
	for i, sample := range got {
		if !sample.Lost {
			t.Errorf("sample %d: expected lost sample, got %+v", i, sample)
		}
	}

	// the ping of the last tick is discarded on shutdown
	if calls := pinger.callCount(); calls != len(got) && calls != len(got)+1 {
		t.Errorf("expected one sample per tick, got %d samples for %d ticks", len(got), calls)
	}
}

func TestEffectiveTimeout(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		timeout  time.Duration
		want     time.Duration
	}{
		{"shorter than interval", time.Second, 500 * time.Millisecond, 500 * time.Millisecond},
		{"equal to interval", time.Second, time.Second, 900 * time.Millisecond},
		{"longer than interval", time.Second, 3 * time.Second, 900 * time.Millisecond},
		{"unset", time.Second, 0, 900 * time.Millisecond},
		{"no interval", 0, time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := effectiveTimeout(tt.interval, tt.timeout); got != tt.want {
				t.Errorf("effectiveTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}
