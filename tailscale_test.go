package main

import (
	"testing"

	"github.com/czerwonk/pinggraph/config"
	"tailscale.com/client/tailscale"
)

func TestMergeDevices(t *testing.T) {
	servers := []config.ServerConfig{
		{Address: "1.1.1.1", Enabled: true},
		{Address: "nas", Enabled: true},
	}
	devices := []*tailscale.Device{
		{Hostname: "laptop", Addresses: []string{"100.64.0.1", "fd7a:115c:a1e0::1"}},
		{Hostname: "nas", Addresses: []string{"100.64.0.2"}},
		{Hostname: "offline"},
		{Hostname: "dup", Addresses: []string{"1.1.1.1"}},
		nil,
	}

	got := mergeDevices(servers, devices)
	if len(got) != 3 {
		t.Fatalf("expected one device to be added, got %v", got)
	}

	s := got[2]
	if s.Address != "100.64.0.1" || !s.Enabled || s.LineThickness < 1 {
		t.Errorf("unexpected server %+v", s)
	}

	cfg := config.Default()
	cfg.Servers = got
	cfg.Normalize()
	if cfg.Servers[2].Color != config.Palette[2] {
		t.Errorf("expected palette color, got %v", cfg.Servers[2].Color)
	}
}
