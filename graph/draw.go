package graph

import (
	"fmt"
	"strconv"

	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/history"
)

// Canvas is a drawing surface addressed in dots.
type Canvas interface {
	Fill(c config.Color)
	Line(a, b Point, thickness int, c config.Color)
	Text(p Point, s string, c config.Color)
	TextWidth(s string) int
}

// Series is the read-only view of one server's history for a single frame.
type Series struct {
	Address   string
	Color     config.Color
	Thickness int
	Samples   []history.Sample
}

// Guides describes the horizontal reference marks.
type Guides struct {
	Show       bool
	ShowLabels bool
	Levels     []int
	Color      config.Color
	Thickness  int
	Length     int
}

// Frame holds everything needed to draw the graph once.
type Frame struct {
	Layout      Layout
	Scale       float64
	Background  config.Color
	Transparent bool
	TextColor   config.Color
	TextOffset  config.Offset
	Guides      Guides
	Series      []Series
	Notice      string
}

// labelGap is the distance between a point and a label flipped to its left.
const labelGap = 5

// NewFrame prepares a frame of the given size in dots from cfg. Series,
// scale and notice are filled in per frame by the caller.
func NewFrame(cfg *config.Config, width, height int) Frame {
	return Frame{
		Layout: Layout{
			Width:     width,
			Height:    height,
			PadLeft:   cfg.Window.PaddingLeft,
			PadRight:  cfg.Window.PaddingRight,
			PadTop:    cfg.Window.PaddingTop,
			PadBottom: cfg.Window.PaddingBottom,
			MaxPoints: cfg.Visual.MaxPoints,
		},
		Background:  cfg.Window.BackgroundColor,
		Transparent: cfg.Window.Transparent,
		TextColor:   cfg.Visual.TextColor,
		TextOffset:  cfg.Visual.PingTextOffset,
		Guides: Guides{
			Show:       cfg.Visual.ShowGuides,
			ShowLabels: cfg.Visual.ShowGuideLabels,
			Levels:     cfg.Visual.GuideLevels,
			Color:      cfg.Visual.GuideLinesColor,
			Thickness:  cfg.Visual.GuideLinesThickness,
			Length:     cfg.Visual.GuideLinesLength,
		},
	}
}

// Draw renders f onto c.
func Draw(c Canvas, f Frame) {
	if !f.Transparent {
		c.Fill(f.Background)
	}

	drawGuides(c, f)

	for _, s := range f.Series {
		drawSeries(c, f, s)
	}
	for _, s := range f.Series {
		drawLabel(c, f, s)
	}

	if f.Notice != "" {
		c.Text(Point{}, f.Notice, f.TextColor)
	}
}

func drawGuides(c Canvas, f Frame) {
	g := f.Guides
	if !g.Show {
		return
	}

	l := f.Layout
	half := g.Length / 2
	for _, level := range g.Levels {
		y := l.Y(float64(level), f.Scale)
		for _, x := range []int{l.left(), l.Width / 2, l.right()} {
			c.Line(Point{X: x - half, Y: y}, Point{X: x + half, Y: y}, g.Thickness, g.Color)
		}

		if g.ShowLabels {
			c.Text(Point{X: l.left() + half + 2, Y: y - 2}, strconv.Itoa(level), g.Color)
		}
	}
}

func drawSeries(c Canvas, f Frame, s Series) {
	for _, segment := range Segments(s.Samples, f.Layout, f.Scale) {
		if len(segment) == 1 {
			c.Line(segment[0], segment[0], s.Thickness, s.Color)
			continue
		}
		for i := 1; i < len(segment); i++ {
			c.Line(segment[i-1], segment[i], s.Thickness, s.Color)
		}
	}
}

func drawLabel(c Canvas, f Frame, s Series) {
	anchor, ok := Anchor(s.Samples, f.Layout, f.Scale)
	if !ok {
		return
	}

	text := Label(s.Samples[len(s.Samples)-1])
	width := c.TextWidth(text)
	pos := Point{X: anchor.X + f.TextOffset.X, Y: anchor.Y + f.TextOffset.Y}
	if pos.X+width > f.Layout.Width {
		pos.X = anchor.X - width - labelGap
	}

	c.Text(pos, text, s.Color)
}

// Label formats a sample the way the newest value is shown next to its line.
func Label(s history.Sample) string {
	if s.Lost {
		return "timeout"
	}
	return fmt.Sprintf("%dms", s.RTT.Milliseconds())
}
