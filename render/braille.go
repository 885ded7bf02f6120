package render

import (
	"unicode/utf8"

	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/graph"
	"github.com/gdamore/tcell/v2"
)

const (
	dotsPerCellX = 2
	dotsPerCellY = 4
	brailleBase  = 0x2800
)

// brailleBits maps the dot position inside a cell to its bit in the braille
// pattern, indexed [x][y].
var brailleBits = [dotsPerCellX][dotsPerCellY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type cell struct {
	dots  uint8
	color config.Color
	text  rune
	tc    config.Color
}

// BrailleCanvas is a graph.Canvas which renders 2x4 dots per terminal cell.
// A cell shows one color, the last one drawn into it. Text replaces the dots
// of the cells it covers.
type BrailleCanvas struct {
	cols, rows int
	cells      []cell
	background *config.Color
}

// NewBrailleCanvas creates a canvas of cols x rows cells.
func NewBrailleCanvas(cols, rows int) *BrailleCanvas {
	c := &BrailleCanvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the size and clears the canvas.
func (c *BrailleCanvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	if cols != c.cols || rows != c.rows {
		c.cols, c.rows = cols, rows
		c.cells = make([]cell, cols*rows)
	}
	c.Clear()
}

// Clear removes everything including the background.
func (c *BrailleCanvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{}
	}
	c.background = nil
}

// Size returns the canvas size in dots.
func (c *BrailleCanvas) Size() (width, height int) {
	return c.cols * dotsPerCellX, c.rows * dotsPerCellY
}

// Fill sets the background color of every cell.
func (c *BrailleCanvas) Fill(col config.Color) {
	c.background = &col
}

// Set turns on the dot at x, y.
func (c *BrailleCanvas) Set(x, y int, col config.Color) {
	if x < 0 || y < 0 {
		return
	}
	cx, cy := x/dotsPerCellX, y/dotsPerCellY
	if cx >= c.cols || cy >= c.rows {
		return
	}

	ce := &c.cells[cy*c.cols+cx]
	ce.dots |= brailleBits[x%dotsPerCellX][y%dotsPerCellY]
	ce.color = col
}

// Line draws from a to b with Bresenham's algorithm. Thickness extends the
// line vertically around its center.
func (c *BrailleCanvas) Line(a, b graph.Point, thickness int, col config.Color) {
	if thickness < 1 {
		thickness = 1
	}
	offset := thickness / 2

	plot := func(x, y int) {
		for t := 0; t < thickness; t++ {
			c.Set(x, y-offset+t, col)
		}
	}

	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	e := dx + dy

	x, y := a.X, a.Y
	for {
		plot(x, y)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

// Text writes s starting in the cell containing p.
func (c *BrailleCanvas) Text(p graph.Point, s string, col config.Color) {
	cx, cy := floorDiv(p.X, dotsPerCellX), floorDiv(p.Y, dotsPerCellY)
	if cy < 0 || cy >= c.rows {
		return
	}

	for _, r := range s {
		if cx >= 0 && cx < c.cols {
			ce := &c.cells[cy*c.cols+cx]
			ce.text = r
			ce.tc = col
		}
		cx++
	}
}

// TextWidth returns the width of s in dots.
func (c *BrailleCanvas) TextWidth(s string) int {
	return utf8.RuneCountInString(s) * dotsPerCellX
}

// Rune returns what is shown in a cell.
func (c *BrailleCanvas) Rune(cx, cy int) rune {
	ce := c.cells[cy*c.cols+cx]
	switch {
	case ce.text != 0:
		return ce.text
	case ce.dots != 0:
		return rune(brailleBase + int(ce.dots))
	default:
		return ' '
	}
}

// Flush copies the canvas onto the screen at the top left corner.
func (c *BrailleCanvas) Flush(screen tcell.Screen) {
	base := tcell.StyleDefault
	if c.background != nil {
		base = base.Background(tcellColor(*c.background))
	}

	for cy := 0; cy < c.rows; cy++ {
		for cx := 0; cx < c.cols; cx++ {
			ce := c.cells[cy*c.cols+cx]
			style := base
			switch {
			case ce.text != 0:
				style = style.Foreground(tcellColor(ce.tc))
			case ce.dots != 0:
				style = style.Foreground(tcellColor(ce.color))
			}
			screen.SetContent(cx, cy, c.Rune(cx, cy), nil, style)
		}
	}
}

func tcellColor(c config.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
