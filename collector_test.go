package main

import (
	"testing"
	"time"

	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/history"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func testApp(t *testing.T) *app {
	t.Helper()

	cfg := config.Default()
	cfg.Probe.Backend = config.BackendProbing
	cfg.Probe.Privileged = false
	cfg.Servers = []config.ServerConfig{
		{Address: "192.0.2.1", LineThickness: 1, Enabled: true, Labels: map[string]string{"site": "home"}},
		{Address: "192.0.2.2", LineThickness: 1, Enabled: true},
		{Address: "192.0.2.3", LineThickness: 1, Enabled: false},
	}

	a, err := newApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Close)
	return a
}

func gather(t *testing.T, c prometheus.Collector) map[string]*dto.MetricFamily {
	t.Helper()

	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	result := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		result[mf.GetName()] = mf
	}
	return result
}

func metricFor(mf *dto.MetricFamily, target string) *dto.Metric {
	for _, m := range mf.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "target" && l.GetValue() == target {
				return m
			}
		}
	}
	return nil
}

func labelValue(m *dto.Metric, name string) (string, bool) {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue(), true
		}
	}
	return "", false
}

func TestCollector(t *testing.T) {
	a := testApp(t)

	h, _ := a.histories.Get("192.0.2.1")
	h.Add(history.Sample{RTT: 20 * time.Millisecond, At: time.Now()})
	h.Add(history.Sample{RTT: 25 * time.Millisecond, At: time.Now()})
	h, _ = a.histories.Get("192.0.2.2")
	h.Add(history.Sample{RTT: 30 * time.Millisecond, At: time.Now()})
	h.Add(history.Missing(time.Now()))

	mfs := gather(t, newPingCollector(a, rttBoth))

	for _, name := range []string{
		"pinggraph_rtt_ms",
		"pinggraph_rtt_seconds",
		"pinggraph_loss_ratio",
		"pinggraph_probes_sent_total",
		"pinggraph_probes_lost_total",
		"pinggraph_probes_skipped_total",
		"pinggraph_axis_scale_ms",
	} {
		if _, found := mfs[name]; !found {
			t.Errorf("expected metric %s", name)
		}
	}

	rtt := mfs["pinggraph_rtt_ms"]
	if n := len(rtt.GetMetric()); n != 1 {
		t.Fatalf("expected rtt only for the server with a reply, got %d", n)
	}
	m := metricFor(rtt, "192.0.2.1")
	if m == nil || m.GetGauge().GetValue() != 25 {
		t.Errorf("expected newest rtt of 25ms, got %v", m)
	}
	if v, _ := labelValue(m, "site"); v != "home" {
		t.Errorf("expected custom label, got %q", v)
	}

	if m := metricFor(mfs["pinggraph_rtt_seconds"], "192.0.2.1"); m.GetGauge().GetValue() != 0.025 {
		t.Errorf("expected rtt in seconds, got %v", m.GetGauge().GetValue())
	}

	loss := metricFor(mfs["pinggraph_loss_ratio"], "192.0.2.2")
	if loss.GetGauge().GetValue() != 0.5 {
		t.Errorf("expected loss ratio 0.5, got %v", loss.GetGauge().GetValue())
	}
	if v, _ := labelValue(loss, "site"); v != "" {
		t.Errorf("expected empty custom label, got %q", v)
	}

	if metricFor(mfs["pinggraph_probes_sent_total"], "192.0.2.3") != nil {
		t.Error("disabled server should not be exported")
	}

	scale := mfs["pinggraph_axis_scale_ms"].GetMetric()[0].GetGauge().GetValue()
	if scale != a.scaler.Value() {
		t.Errorf("expected axis scale %v, got %v", a.scaler.Value(), scale)
	}
}

func TestCollectorRTTUnit(t *testing.T) {
	tests := []struct {
		name    string
		unit    rttUnit
		millis  bool
		seconds bool
	}{
		{"millis", rttInMills, true, false},
		{"seconds", rttInSeconds, false, true},
		{"both", rttBoth, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testApp(t)
			h, _ := a.histories.Get("192.0.2.1")
			h.Add(history.Sample{RTT: 10 * time.Millisecond, At: time.Now()})

			mfs := gather(t, newPingCollector(a, tt.unit))
			if _, found := mfs["pinggraph_rtt_ms"]; found != tt.millis {
				t.Errorf("pinggraph_rtt_ms exported = %v, want %v", found, tt.millis)
			}
			if _, found := mfs["pinggraph_rtt_seconds"]; found != tt.seconds {
				t.Errorf("pinggraph_rtt_seconds exported = %v, want %v", found, tt.seconds)
			}
		})
	}
}

func TestRTTUnitFromString(t *testing.T) {
	tests := []struct {
		in   string
		want rttUnit
	}{
		{"ms", rttInMills},
		{"s", rttInSeconds},
		{"both", rttBoth},
		{"us", rttInvalid},
		{"", rttInvalid},
	}

	for _, tt := range tests {
		if got := rttUnitFromString(tt.in); got != tt.want {
			t.Errorf("rttUnitFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
