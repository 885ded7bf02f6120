package render

import (
	"context"
	"testing"
	"time"

	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/history"
	"github.com/gdamore/tcell/v2"
)

type fakeSource struct {
	snapshot map[string][]history.Sample
	scale    float64
	notice   string
}

func (s *fakeSource) Snapshot() map[string][]history.Sample { return s.snapshot }
func (s *fakeSource) Scale() float64                         { return s.scale }
func (s *fakeSource) Notice() string                         { return s.notice }

func reply(ms int) history.Sample {
	return history.Sample{RTT: time.Duration(ms) * time.Millisecond, At: time.Now()}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Window.Width = 40
	cfg.Window.Height = 20
	cfg.Window.PaddingLeft = 0
	cfg.Window.PaddingRight = 0
	cfg.Window.PaddingTop = 0
	cfg.Window.PaddingBottom = 0
	cfg.Visual.MaxPoints = 3
	cfg.Visual.ShowGuides = false
	cfg.Visual.PingTextOffset = config.Offset{}
	cfg.Servers = []config.ServerConfig{
		{Address: "1.1.1.1", Color: config.Color{R: 255, G: 255}, LineThickness: 1, Enabled: true},
		{Address: "8.8.4.4", Color: config.Color{G: 255, B: 255}, LineThickness: 1, Enabled: false},
	}
	return cfg
}

func TestWindowDraw(t *testing.T) {
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Fini()
	s.SetSize(30, 10)

	src := &fakeSource{
		snapshot: map[string][]history.Sample{
			"1.1.1.1": {reply(50), history.Missing(time.Now()), reply(50)},
			"8.8.4.4": {reply(5)},
		},
		scale: 100,
	}
	w := NewWindow(s, testConfig(), src)
	w.Draw()

	cells, width, _ := s.GetContents()
	at := func(x, y int) rune {
		return cells[y*width+x].Runes[0]
	}

	if got := at(0, 2); got != 0x2804 {
		t.Errorf("expected oldest point at the left edge, got %U", got)
	}
	if got := at(19, 2); got != 0x2820 {
		t.Errorf("expected newest point at the right edge, got %U", got)
	}
	if got := at(8, 2); got != ' ' {
		t.Errorf("expected no line across the lost sample, got %U", got)
	}

	label := string([]rune{at(13, 2), at(14, 2), at(15, 2), at(16, 2)})
	if label != "50ms" {
		t.Errorf("expected label left of the newest point, got %q", label)
	}
}

func TestWindowDrawNotice(t *testing.T) {
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Fini()
	s.SetSize(30, 10)

	src := &fakeSource{scale: 100, notice: "restart"}
	NewWindow(s, testConfig(), src).Draw()

	cells, _, _ := s.GetContents()
	got := string([]rune{cells[0].Runes[0], cells[1].Runes[0], cells[2].Runes[0]})
	if got != "res" {
		t.Errorf("expected notice in the top left corner, got %q", got)
	}
}

func TestWindowSize(t *testing.T) {
	cfg := testConfig()
	cfg.Window.Width = 0
	cfg.Window.Height = -1
	w := NewWindow(tcell.NewSimulationScreen(""), cfg, &fakeSource{})

	width, height := w.size(30, 10)
	if width != 60 || height != 40 {
		t.Errorf("expected terminal size in dots, got %dx%d", width, height)
	}

	cfg.Window.Width = 24
	if width, _ := w.size(30, 10); width != 24 {
		t.Errorf("expected configured width, got %d", width)
	}
}

func TestWindowRunStopsOnCancel(t *testing.T) {
	s := tcell.NewSimulationScreen("")
	w := NewWindow(s, testConfig(), &fakeSource{scale: 100})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("window did not stop")
	}
}

func TestIsQuitKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want bool
	}{
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), true},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), true},
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), true},
		{"Q", tcell.NewEventKey(tcell.KeyRune, 'Q', tcell.ModNone), true},
		{"x", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), false},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isQuitKey(tt.ev); got != tt.want {
				t.Errorf("isQuitKey() = %v, want %v", got, tt.want)
			}
		})
	}
}
