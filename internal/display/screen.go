package display

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/kinetix/internal/gameplay/telekinesis"
)

// Screen adapts a tcell screen to the telekinesis Display and Input ports.
//
// Mouse: left button pulls, right button pushes while held. Keys: j and k
// toggle pull and push for terminals without mouse reporting; Esc, q and
// Ctrl-C quit.
type Screen struct {
	screen tcell.Screen

	mu        sync.Mutex
	mousePull bool
	mousePush bool
	keyPull   bool
	keyPush   bool

	quit     chan struct{}
	quitOnce sync.Once
}

var (
	_ telekinesis.Display = (*Screen)(nil)
	_ telekinesis.Input   = (*Screen)(nil)
)

// Open initialises the terminal with mouse reporting enabled.
func Open() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	s.EnableMouse()
	s.HideCursor()
	s.Clear()
	return New(s), nil
}

// New wraps an initialised screen.
func New(s tcell.Screen) *Screen {
	return &Screen{screen: s, quit: make(chan struct{})}
}

func (s *Screen) Size() (int, int) { return s.screen.Size() }

func (s *Screen) DrawMarker(x, y, w, h int, c color.RGBA) {
	style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			s.screen.SetContent(x+dx, y+dy, ' ', nil, style)
		}
	}
}

func (s *Screen) PullHeld() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mousePull || s.keyPull
}

func (s *Screen) PushHeld() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mousePush || s.keyPush
}

// HandleEvent updates the input state. It returns false when the event
// asks to quit.
func (s *Screen) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune:
			s.mu.Lock()
			defer s.mu.Unlock()
			switch ev.Rune() {
			case 'q':
				return false
			case 'j':
				s.keyPull = !s.keyPull
			case 'k':
				s.keyPush = !s.keyPush
			}
		}
	case *tcell.EventMouse:
		buttons := ev.Buttons()
		s.mu.Lock()
		s.mousePull = buttons&tcell.Button1 != 0
		s.mousePush = buttons&tcell.Button2 != 0
		s.mu.Unlock()
	case *tcell.EventResize:
		s.screen.Sync()
	}
	return true
}

// Run polls terminal events until ctx is done or the user quits. Quitting
// closes the channel returned by Quit.
func (s *Screen) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	go func() {
		defer close(events)
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.quit:
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !s.HandleEvent(ev) {
				s.Quit()
				return nil
			}
		}
	}
}

// Quit closes the quit channel. Multiple calls are safe.
func (s *Screen) Quit() { s.quitOnce.Do(func() { close(s.quit) }) }

// Done is closed when the user quits.
func (s *Screen) Done() <-chan struct{} { return s.quit }

func (s *Screen) Close() { s.screen.Fini() }
