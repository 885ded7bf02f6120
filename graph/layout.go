package graph

import (
	"math"

	"github.com/czerwonk/pinggraph/history"
)

// Point is a position on the canvas in dots, origin top left.
type Point struct {
	X, Y int
}

// Layout maps sample indexes and latencies onto the canvas.
type Layout struct {
	Width     int
	Height    int
	PadLeft   int
	PadRight  int
	PadTop    int
	PadBottom int
	MaxPoints int
}

func (l Layout) left() int {
	return l.PadLeft
}

func (l Layout) right() int {
	return l.Width - 1 - l.PadRight
}

func (l Layout) top() int {
	return l.PadTop
}

// Bottom returns the y coordinate of zero latency.
func (l Layout) Bottom() int {
	return l.Height - 1 - l.PadBottom
}

func (l Layout) step() float64 {
	if l.MaxPoints < 2 {
		return 0
	}
	return float64(l.right()-l.left()) / float64(l.MaxPoints-1)
}

// X returns the x coordinate of sample i out of n. The newest sample sits at
// the right padding and older ones are spread to the left, so a history
// that is not yet full grows from the right edge.
func (l Layout) X(i, n int) int {
	x := float64(l.right()) - float64(n-i-1)*l.step()
	return int(math.Round(x))
}

// Y returns the y coordinate of a latency in millis, clamped to the canvas.
func (l Layout) Y(millis, scale float64) int {
	bottom, top := l.Bottom(), l.top()
	if scale <= 0 {
		return bottom
	}

	y := float64(bottom) - millis/scale*float64(bottom-top)
	return clamp(int(math.Round(y)), 0, l.Height-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// visible drops samples which would be placed left of the graph.
func (l Layout) visible(samples []history.Sample) []history.Sample {
	if l.MaxPoints > 0 && len(samples) > l.MaxPoints {
		return samples[len(samples)-l.MaxPoints:]
	}
	return samples
}

// Segments maps samples onto polylines. A lost sample ends the current
// polyline, so a gap is drawn as an interruption and never as zero.
func Segments(samples []history.Sample, l Layout, scale float64) [][]Point {
	samples = l.visible(samples)

	var segments [][]Point
	var current []Point
	for i, s := range samples {
		if s.Lost {
			if len(current) > 0 {
				segments = append(segments, current)
				current = nil
			}
			continue
		}
		current = append(current, Point{X: l.X(i, len(samples)), Y: l.Y(s.Millis(), scale)})
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}

	return segments
}

// Anchor returns the point the newest value label is attached to: the
// newest sample's column at the height of the newest latency which was not
// lost, or the zero line when there is none.
func Anchor(samples []history.Sample, l Layout, scale float64) (Point, bool) {
	samples = l.visible(samples)
	if len(samples) == 0 {
		return Point{}, false
	}

	p := Point{X: l.X(len(samples)-1, len(samples)), Y: l.Bottom()}
	for i := len(samples) - 1; i >= 0; i-- {
		if !samples[i].Lost {
			p.Y = l.Y(samples[i].Millis(), scale)
			break
		}
	}
	return p, true
}
