package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/buger/goterm"
	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/graph"
	"github.com/czerwonk/pinggraph/history"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
)

// Terminal is the output of the plain renderer.
type Terminal interface {
	io.Writer
	Clear()
	MoveCursor(x, y int)
	Flush()
	Width() int
}

type gotermTerminal struct{}

// NewTerminal returns the process terminal driven by goterm.
func NewTerminal() Terminal {
	return gotermTerminal{}
}

func (gotermTerminal) Write(p []byte) (int, error) { return goterm.Print(string(p)) }
func (gotermTerminal) Clear()                      { goterm.Clear() }
func (gotermTerminal) MoveCursor(x, y int)         { goterm.MoveCursor(x, y) }
func (gotermTerminal) Flush()                      { goterm.Flush() }
func (gotermTerminal) Width() int                  { return goterm.Width() }

const (
	plainGraphHeight = 8
	// columns taken by the y axis labels of a chart
	plainAxisMargin = 12
)

// Plain prints one ASCII chart per server, redrawn once per ping interval.
type Plain struct {
	term     Terminal
	servers  []config.ServerConfig
	source   Source
	interval time.Duration
}

// NewPlain creates a plain renderer writing to term.
func NewPlain(term Terminal, cfg *config.Config, source Source) *Plain {
	return &Plain{
		term:     term,
		servers:  cfg.EnabledServers(),
		source:   source,
		interval: cfg.Visual.PingInterval.Duration(),
	}
}

// Run redraws until ctx is done.
func (p *Plain) Run(ctx context.Context) error {
	interval := p.interval
	if interval <= 0 {
		interval = time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	p.term.Clear()
	p.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			p.Draw()
		}
	}
}

// Draw prints one frame.
func (p *Plain) Draw() {
	frame := renderFrame(p.servers, p.source.Snapshot(), p.source.Scale(), p.source.Notice(), p.term.Width())

	p.term.MoveCursor(1, 1)
	fmt.Fprint(p.term, frame)
	p.term.Flush()
}

// renderFrame draws every chart no wider than width columns; width <= 0 does
// not limit the charts.
func renderFrame(servers []config.ServerConfig, snapshot map[string][]history.Sample, scale float64, notice string, width int) string {
	var b strings.Builder

	addresses := make([]string, len(servers))
	for i, s := range servers {
		addresses[i] = s.Address
	}
	fmt.Fprintf(&b, "Ping latency: %s\n", strings.Join(addresses, " vs "))
	if notice != "" {
		fmt.Fprintf(&b, "%s\n", notice)
	}
	b.WriteString("\n")

	for _, s := range servers {
		samples := snapshot[s.Address]
		b.WriteString(goterm.Color(plot(s.Address, samples, scale, width), nearestColor(s.Color)))
		b.WriteString("\n\n")
	}

	for _, s := range servers {
		b.WriteString(summary(s.Address, snapshot[s.Address]))
		b.WriteString("\n")
	}
	b.WriteString("Press Control-C to exit\n")

	return b.String()
}

func plot(address string, samples []history.Sample, scale float64, width int) string {
	caption := fmt.Sprintf("PING %s: waiting", address)
	if len(samples) > 0 {
		caption = fmt.Sprintf("PING %s: %s", address, graph.Label(samples[len(samples)-1]))
	}

	data := make([]float64, len(samples))
	present := false
	for i, s := range samples {
		data[i] = s.Millis()
		present = present || !s.Lost
	}
	if !present {
		return caption
	}

	opts := []asciigraph.Option{
		asciigraph.Height(plainGraphHeight),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(scale),
		asciigraph.Caption(caption),
	}
	if available := width - plainAxisMargin; width > 0 && available > 0 && len(data) > available {
		opts = append(opts, asciigraph.Width(available))
	}
	return asciigraph.Plot(data, opts...)
}

func summary(address string, samples []history.Sample) string {
	st := history.Compute(samples)
	line := fmt.Sprintf("%s: sent %s, lost %s (%.1f%%)", address,
		humanize.Comma(int64(st.Sent)), humanize.Comma(int64(st.Lost)), st.LossRatio()*100)
	if st.Sent > st.Lost {
		line += fmt.Sprintf(", best %s, mean %s, worst %s",
			st.Best.Round(time.Millisecond), st.Mean.Round(time.Millisecond), st.Worst.Round(time.Millisecond))
	}
	return line
}

// nearestColor maps a RGB color onto the 8 basic terminal colors.
func nearestColor(c config.Color) int {
	bit := func(v uint8) int {
		if v >= 128 {
			return 1
		}
		return 0
	}

	switch bit(c.R) | bit(c.G)<<1 | bit(c.B)<<2 {
	case 1:
		return goterm.RED
	case 2:
		return goterm.GREEN
	case 3:
		return goterm.YELLOW
	case 4:
		return goterm.BLUE
	case 5:
		return goterm.MAGENTA
	case 6:
		return goterm.CYAN
	case 7:
		return goterm.WHITE
	default:
		return goterm.BLACK
	}
}
