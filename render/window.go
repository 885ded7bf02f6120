package render

import (
	"context"
	"fmt"
	"time"

	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/graph"
	"github.com/czerwonk/pinggraph/history"
	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"
)

// Source provides the state shown by a renderer. Snapshot must return copies
// which are not modified afterwards.
type Source interface {
	Snapshot() map[string][]history.Sample
	Scale() float64
	Notice() string
}

// Window draws the graph on a terminal screen at a fixed frame rate.
type Window struct {
	screen  tcell.Screen
	cfg     *config.Config
	servers []config.ServerConfig
	source  Source
	canvas  *BrailleCanvas
}

// NewWindow creates a window on screen. Only enabled servers are drawn.
func NewWindow(screen tcell.Screen, cfg *config.Config, source Source) *Window {
	return &Window{
		screen:  screen,
		cfg:     cfg,
		servers: cfg.EnabledServers(),
		source:  source,
		canvas:  NewBrailleCanvas(0, 0),
	}
}

// Run initializes the screen and draws until ctx is done or the user quits
// with Escape, q or Ctrl-C. A screen which cannot be initialized is an error.
func (w *Window) Run(ctx context.Context) error {
	if err := w.screen.Init(); err != nil {
		return fmt.Errorf("cannot create window: %w", err)
	}
	defer w.screen.Fini()
	w.screen.HideCursor()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 16)
	go w.pollEvents(ctx, events)

	fps := w.cfg.Visual.FPS
	if fps <= 0 {
		fps = 1
	}
	tick := time.NewTicker(time.Second / time.Duration(fps))
	defer tick.Stop()

	log.Infof("Starting window (fps=%d)", fps)
	w.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuitKey(ev) {
					log.Infoln("Window closed")
					return nil
				}
			case *tcell.EventResize:
				w.screen.Sync()
				w.Draw()
			}
		case <-tick.C:
			w.Draw()
		}
	}
}

func (w *Window) pollEvents(ctx context.Context, events chan<- tcell.Event) {
	defer close(events)
	for {
		ev := w.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	default:
		return false
	}
}

// Draw renders one frame from the current state of the source.
func (w *Window) Draw() {
	cols, rows := w.screen.Size()
	width, height := w.size(cols, rows)

	w.canvas.Resize((width+dotsPerCellX-1)/dotsPerCellX, (height+dotsPerCellY-1)/dotsPerCellY)
	graph.Draw(w.canvas, w.frame(width, height))

	w.screen.Clear()
	w.canvas.Flush(w.screen)
	w.screen.Show()
}

// size returns the graph size in dots; unset dimensions follow the terminal.
func (w *Window) size(cols, rows int) (width, height int) {
	width, height = w.cfg.Window.Width, w.cfg.Window.Height
	if width <= 0 {
		width = cols * dotsPerCellX
	}
	if height <= 0 {
		height = rows * dotsPerCellY
	}
	return width, height
}

func (w *Window) frame(width, height int) graph.Frame {
	f := graph.NewFrame(w.cfg, width, height)
	f.Scale = w.source.Scale()
	f.Notice = w.source.Notice()

	snapshot := w.source.Snapshot()
	f.Series = make([]graph.Series, 0, len(w.servers))
	for _, s := range w.servers {
		f.Series = append(f.Series, graph.Series{
			Address:   s.Address,
			Color:     s.Color,
			Thickness: s.LineThickness,
			Samples:   snapshot[s.Address],
		})
	}
	return f
}
