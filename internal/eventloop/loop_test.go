package eventloop

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type fakeTerminal struct {
	keys chan tea.KeyMsg

	mu        sync.Mutex
	width     int
	height    int
	views     []string
	renderErr error
	restored  int
}

func newFakeTerminal() *fakeTerminal {
	return &fakeTerminal{keys: make(chan tea.KeyMsg, 16), width: 80, height: 24}
}

func (f *fakeTerminal) ReadKey() (tea.KeyMsg, error) {
	k, ok := <-f.keys
	if !ok {
		return tea.KeyMsg{}, io.EOF
	}
	return k, nil
}

func (f *fakeTerminal) Size() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height, nil
}

func (f *fakeTerminal) resize(w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = w, h
}

func (f *fakeTerminal) Render(view string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, view)
	return f.renderErr
}

func (f *fakeTerminal) Restore() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restored++
	return nil
}

func (f *fakeTerminal) lastView() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.views) == 0 {
		return ""
	}
	return f.views[len(f.views)-1]
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// scriptScreen records what it sees and reacts per key.
type scriptScreen struct {
	name     string
	interval time.Duration
	onKey    func(tea.KeyMsg) Reaction

	keys  []string
	ticks atomic.Int32
	width int
}

func (s *scriptScreen) TickInterval() (time.Duration, bool) {
	return s.interval, s.interval > 0
}

func (s *scriptScreen) OnKey(k tea.KeyMsg) Reaction {
	s.keys = append(s.keys, k.String())
	if s.onKey != nil {
		return s.onKey(k)
	}
	return nil
}

func (s *scriptScreen) OnTick() Reaction {
	s.ticks.Add(1)
	return nil
}

func (s *scriptScreen) Draw(f *Frame) {
	s.width = f.Width
	f.View = s.name + ":" + string(rune('0'+len(s.keys)))
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func runLoop(t *testing.T, term *fakeTerminal, opts Options, screen Screen) <-chan error {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	done := make(chan error, 1)
	go func() { done <- New(term, opts).Run(context.Background(), screen) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("loop did not exit")
		return nil
	}
}

func TestRun_KeysInOrderThenExit(t *testing.T) {
	term := newFakeTerminal()
	screen := &scriptScreen{name: "a", onKey: func(k tea.KeyMsg) Reaction {
		if k.String() == "q" {
			return Exit
		}
		return nil
	}}

	for _, k := range []string{"j", "j", "k", "q"} {
		term.keys <- keyMsg(k)
	}
	if err := waitDone(t, runLoop(t, term, Options{}, screen)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"j", "j", "k", "q"}
	if len(screen.keys) != len(want) {
		t.Fatalf("keys: expected %v, got %v", want, screen.keys)
	}
	for i := range want {
		if screen.keys[i] != want[i] {
			t.Errorf("key %d: expected %q, got %q", i, want[i], screen.keys[i])
		}
	}
	// Initial draw plus one per non-exit key.
	if got := len(term.views); got != 4 {
		t.Errorf("expected 4 renders, got %d", got)
	}
	if term.restored != 1 {
		t.Errorf("expected terminal restored once, got %d", term.restored)
	}
	if screen.width != 80 {
		t.Errorf("expected frame width 80, got %d", screen.width)
	}
}

func TestRun_SwitchRestartsTicker(t *testing.T) {
	term := newFakeTerminal()
	second := &scriptScreen{name: "b", interval: 5 * time.Millisecond, onKey: func(tea.KeyMsg) Reaction { return Exit }}
	first := &scriptScreen{name: "a", onKey: func(tea.KeyMsg) Reaction { return Switch{Screen: second} }}

	term.keys <- keyMsg("s")
	done := runLoop(t, term, Options{}, first)

	deadline := time.Now().Add(2 * time.Second)
	for second.ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if second.ticks.Load() < 3 {
		t.Fatalf("expected the new screen to tick, got %d ticks", second.ticks.Load())
	}
	if first.ticks.Load() != 0 {
		t.Errorf("non-ticking screen got %d ticks", first.ticks.Load())
	}

	term.keys <- keyMsg("q")
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_TickingScreenTicksImmediately(t *testing.T) {
	term := newFakeTerminal()
	screen := &scriptScreen{name: "a", interval: time.Hour, onKey: func(tea.KeyMsg) Reaction { return Exit }}

	term.keys <- keyMsg("q")
	if err := waitDone(t, runLoop(t, term, Options{}, screen)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := screen.ticks.Load(); got != 1 {
		t.Errorf("expected exactly the activation tick, got %d", got)
	}
}

func TestRun_ResizeDeliversTick(t *testing.T) {
	term := newFakeTerminal()
	screen := &scriptScreen{name: "a", onKey: func(tea.KeyMsg) Reaction { return Exit }}

	done := runLoop(t, term, Options{ResizePoll: 5 * time.Millisecond}, screen)
	time.Sleep(20 * time.Millisecond)
	term.resize(120, 40)

	deadline := time.Now().Add(2 * time.Second)
	for screen.ticks.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if screen.ticks.Load() == 0 {
		t.Fatal("expected a tick after resize")
	}

	term.keys <- keyMsg("q")
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if screen.width != 120 {
		t.Errorf("expected redraw at new width, got %d", screen.width)
	}
}

func TestRun_RenderErrorIsNotFatal(t *testing.T) {
	term := newFakeTerminal()
	term.renderErr = errors.New("broken pipe")
	screen := &scriptScreen{name: "a", onKey: func(k tea.KeyMsg) Reaction {
		if k.String() == "q" {
			return Exit
		}
		return nil
	}}

	term.keys <- keyMsg("x")
	term.keys <- keyMsg("q")
	if err := waitDone(t, runLoop(t, term, Options{}, screen)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(screen.keys) != 2 {
		t.Errorf("expected both keys handled, got %v", screen.keys)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	term := newFakeTerminal()
	screen := &scriptScreen{name: "a"}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- New(term, Options{Logger: quietLogger()}).Run(ctx, screen)
	}()
	cancel()

	if err := waitDone(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if term.restored != 1 {
		t.Errorf("expected terminal restored, got %d", term.restored)
	}
}

func TestRun_ReaderErrorKeepsLoopAlive(t *testing.T) {
	term := newFakeTerminal()
	close(term.keys)
	screen := &scriptScreen{name: "a", interval: 5 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- New(term, Options{Logger: quietLogger()}).Run(ctx, screen)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for screen.ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if screen.ticks.Load() < 3 {
		t.Fatalf("expected ticks after reader stopped, got %d", screen.ticks.Load())
	}
	cancel()
	waitDone(t, done)
}

func TestRun_SwitchDropsStaleTicks(t *testing.T) {
	term := newFakeTerminal()
	second := &scriptScreen{name: "b", onKey: func(tea.KeyMsg) Reaction { return Exit }}
	first := &scriptScreen{name: "a", interval: 100 * time.Microsecond, onKey: func(tea.KeyMsg) Reaction {
		// Let the ticker fill the queue before switching.
		time.Sleep(20 * time.Millisecond)
		return Switch{Screen: second}
	}}

	term.keys <- keyMsg("s")
	done := runLoop(t, term, Options{ResizePoll: time.Hour}, first)

	time.Sleep(100 * time.Millisecond)
	term.keys <- keyMsg("q")
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first.ticks.Load() == 0 {
		t.Fatal("expected the first screen to tick before the switch")
	}
	if got := second.ticks.Load(); got != 0 {
		t.Errorf("non-ticking screen received %d ticks after the switch", got)
	}
}
