package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/graph"
	"github.com/czerwonk/pinggraph/history"
	"github.com/czerwonk/pinggraph/probe"
	log "github.com/sirupsen/logrus"
)

const (
	startupNoticeTTL = 10 * time.Second
	discoveryTimeout = 10 * time.Second
)

// app wires histories, scaler and prober for the enabled servers.
type app struct {
	cfg       *config.Config
	servers   []config.ServerConfig
	histories *history.Set
	scaler    *graph.Scaler
	pinger    probe.Pinger
	scheduler *probe.Scheduler
	source    *graphSource
}

func newApp(cfg *config.Config) (*app, error) {
	servers := cfg.EnabledServers()
	addresses := make([]string, len(servers))
	for i, s := range servers {
		addresses[i] = s.Address
	}

	histories := history.NewSet(cfg.Visual.MaxPoints, addresses...)
	scaler := graph.NewScaler(cfg.ScaleFloor(), cfg.Visual.ScaleDecayRate, cfg.Visual.ScaleHeadroom)

	pinger, err := newPinger(cfg.Probe)
	if err != nil {
		return nil, fmt.Errorf("cannot start probing: %w", err)
	}

	resolver := probe.NewResolver(cfg.Probe.Nameserver)
	targets := make([]*probe.Target, len(addresses))
	for i, addr := range addresses {
		targets[i] = probe.NewTarget(addr, resolver)
	}

	scheduler := probe.NewScheduler(pinger, targets, histories, scaler, probe.Options{
		Interval:   cfg.Visual.PingInterval.Duration(),
		Timeout:    cfg.Visual.PingTimeout.Duration(),
		DNSRefresh: cfg.Probe.DNSRefresh.Duration(),
	})

	return &app{
		cfg:       cfg,
		servers:   servers,
		histories: histories,
		scaler:    scaler,
		pinger:    pinger,
		scheduler: scheduler,
		source:    newGraphSource(histories, scaler),
	}, nil
}

// newPinger creates the configured pinger. Raw sockets usually need
// privileges, so the digineo backend falls back to unprivileged pro-bing.
func newPinger(cfg config.ProbeConfig) (probe.Pinger, error) {
	p, err := probe.NewPinger(cfg)
	if err == nil || cfg.Backend == config.BackendProbing {
		return p, err
	}

	log.Warnf("cannot create %s pinger (%v), falling back to unprivileged %s", cfg.Backend, err, config.BackendProbing)
	cfg.Backend = config.BackendProbing
	cfg.Privileged = false
	return probe.NewPinger(cfg)
}

func (a *app) Close() {
	a.pinger.Close()
}

// graphSource is the read side shared by renderers.
type graphSource struct {
	histories *history.Set
	scaler    *graph.Scaler
	now       func() time.Time

	mu      sync.Mutex
	notice  string
	expires time.Time
}

func newGraphSource(histories *history.Set, scaler *graph.Scaler) *graphSource {
	return &graphSource{
		histories: histories,
		scaler:    scaler,
		now:       time.Now,
	}
}

func (s *graphSource) Snapshot() map[string][]history.Sample {
	return s.histories.Snapshot()
}

func (s *graphSource) Scale() float64 {
	return s.scaler.Value()
}

func (s *graphSource) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expires.IsZero() && s.now().After(s.expires) {
		s.notice = ""
		s.expires = time.Time{}
	}
	return s.notice
}

// setNotice shows msg for ttl, or until replaced if ttl is 0.
func (s *graphSource) setNotice(msg string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notice = msg
	s.expires = time.Time{}
	if ttl > 0 {
		s.expires = s.now().Add(ttl)
	}
}

func (s *graphSource) configChanged() {
	log.Infoln("Config file changed, restart to apply")
	s.setNotice("config changed, restart to apply", 0)
}
