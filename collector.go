package main

import (
	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/history"
	"github.com/czerwonk/pinggraph/probe"
	"github.com/prometheus/client_golang/prometheus"
)

const prefix = "pinggraph_"

var labelNames = []string{"target", "ip", "ip_version"}

func newDesc(name, help string, variableLabels []string, constLabels prometheus.Labels) *prometheus.Desc {
	return prometheus.NewDesc(prefix+name, help, variableLabels, constLabels)
}

type pingCollector struct {
	targets   []*probe.Target
	servers   map[string]config.ServerConfig
	histories *history.Set
	source    *graphSource
	custom    *customLabelSet

	rttDesc     scaledMetrics
	lossDesc    *prometheus.Desc
	sentDesc    *prometheus.Desc
	lostDesc    *prometheus.Desc
	skippedDesc *prometheus.Desc
	scaleDesc   *prometheus.Desc
}

func newPingCollector(a *app, scale rttUnit) *pingCollector {
	servers := make(map[string]config.ServerConfig, len(a.servers))
	for _, s := range a.servers {
		servers[s.Address] = s
	}

	custom := newCustomLabelSet(a.servers)
	names := append(append([]string(nil), labelNames...), custom.labelNames()...)

	return &pingCollector{
		targets:     a.scheduler.Targets(),
		servers:     servers,
		histories:   a.histories,
		source:      a.source,
		custom:      custom,
		rttDesc:     newScaledDesc("rtt", "Round trip time of the newest reply", scale, names),
		lossDesc:    newDesc("loss_ratio", "Share of lost probes in the graph window", names, nil),
		sentDesc:    newDesc("probes_sent_total", "Number of probes sent", names, nil),
		lostDesc:    newDesc("probes_lost_total", "Number of probes without reply", names, nil),
		skippedDesc: newDesc("probes_skipped_total", "Number of probes skipped since the previous one was still running", names, nil),
		scaleDesc:   newDesc("axis_scale_ms", "Upper bound of the latency axis in millis", nil, nil),
	}
}

func (p *pingCollector) Describe(ch chan<- *prometheus.Desc) {
	p.rttDesc.Describe(ch)
	ch <- p.lossDesc
	ch <- p.sentDesc
	ch <- p.lostDesc
	ch <- p.skippedDesc
	ch <- p.scaleDesc
}

func (p *pingCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(p.scaleDesc, prometheus.GaugeValue, p.source.Scale())

	for _, t := range p.targets {
		h, found := p.histories.Get(t.Host())
		if !found {
			continue
		}

		ip, version := t.IPLabels()
		l := append([]string{t.Host(), ip, version}, p.custom.labelValues(p.servers[t.Host()])...)

		st := h.Stats()
		if st.Sent > 0 && !st.Last.Lost {
			p.rttDesc.Collect(ch, float32(st.Last.Millis()), l...)
		}
		ch <- prometheus.MustNewConstMetric(p.lossDesc, prometheus.GaugeValue, st.LossRatio(), l...)

		c := t.Counters()
		ch <- prometheus.MustNewConstMetric(p.sentDesc, prometheus.CounterValue, float64(c.Sent), l...)
		ch <- prometheus.MustNewConstMetric(p.lostDesc, prometheus.CounterValue, float64(c.Lost), l...)
		ch <- prometheus.MustNewConstMetric(p.skippedDesc, prometheus.CounterValue, float64(c.Skipped), l...)
	}
}
