package eventloop

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// Terminal is what the loop reads keys from and renders frames to.
type Terminal interface {
	// ReadKey blocks until a key is pressed. Restore must make a blocked
	// ReadKey return an error.
	ReadKey() (tea.KeyMsg, error)
	Size() (width, height int, err error)
	Render(view string) error
	Restore() error
}

// Defaults for Options fields left zero.
const (
	DefaultQueueSize  = 10
	DefaultResizePoll = 200 * time.Millisecond
)

// Options tunes a Loop.
type Options struct {
	QueueSize  int
	ResizePoll time.Duration
	Logger     *log.Logger
}

// Loop drives Screens against a Terminal.
type Loop struct {
	term Terminal
	opts Options
}

// New returns a Loop for term, filling unset options with defaults.
func New(term Terminal, opts Options) *Loop {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.ResizePoll <= 0 {
		opts.ResizePoll = DefaultResizePoll
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Loop{term: term, opts: opts}
}

type eventKind int

const (
	keyEvent eventKind = iota
	tickEvent
)

type event struct {
	kind eventKind
	key  tea.KeyMsg
	// gen is the activation that started the ticker, or 0 for resize ticks.
	gen uint64
}

// Run drives screen until a reaction is Exit or ctx is cancelled, then
// restores the terminal. It returns ctx.Err() on cancellation, or the
// restore error if that fails.
func (l *Loop) Run(ctx context.Context, screen Screen) (err error) {
	defer func() {
		if rerr := l.term.Restore(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan event, l.opts.QueueSize)
	go l.readKeys(ctx, queue)
	go l.pollResize(ctx, queue)

	s := &session{loop: l, ctx: ctx, queue: queue}

	if !s.activate(screen) {
		return nil
	}
	l.draw(s.screen)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-queue:
			var r Reaction
			switch ev.kind {
			case keyEvent:
				r = s.screen.OnKey(ev.key)
			case tickEvent:
				if ev.gen != 0 && ev.gen != s.gen {
					// Queued by the ticker of a screen that is no longer active.
					continue
				}
				r = s.screen.OnTick()
			}
			if !s.apply(r) {
				return nil
			}
			l.draw(s.screen)
		}
	}
}

// session is the state of one Run: the active screen and its ticker.
type session struct {
	loop       *Loop
	ctx        context.Context
	queue      chan event
	screen     Screen
	gen        uint64
	stopTicker context.CancelFunc
}

// apply acts on r and reports whether the loop should keep running.
func (s *session) apply(r Reaction) bool {
	switch r := r.(type) {
	case exitReaction:
		return false
	case Switch:
		if r.Screen == nil {
			return true
		}
		return s.activate(r.Screen)
	}
	return true
}

// activate makes screen current, restarting the ticker for its interval.
// A ticking screen gets its first tick immediately.
func (s *session) activate(screen Screen) bool {
	if s.stopTicker != nil {
		s.stopTicker()
	}
	tickCtx, stop := context.WithCancel(s.ctx)
	s.stopTicker = stop
	s.screen = screen
	s.gen++

	d, ok := screen.TickInterval()
	if !ok {
		return true
	}
	go s.loop.tick(tickCtx, d, s.gen, s.queue)
	return s.apply(screen.OnTick())
}

func (l *Loop) draw(screen Screen) {
	w, h, err := l.term.Size()
	if err != nil {
		l.opts.Logger.Debug("terminal size unavailable", "err", err)
	}
	f := Frame{Width: w, Height: h}
	screen.Draw(&f)
	if err := l.term.Render(f.View); err != nil {
		l.opts.Logger.Warn("render failed", "err", err)
	}
}

func (l *Loop) tick(ctx context.Context, d time.Duration, gen uint64, queue chan<- event) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			select {
			case queue <- event{kind: tickEvent, gen: gen}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// pollResize emits a tick whenever the terminal size changes.
func (l *Loop) pollResize(ctx context.Context, queue chan<- event) {
	lastW, lastH, _ := l.term.Size()
	t := time.NewTicker(l.opts.ResizePoll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		w, h, err := l.term.Size()
		if err != nil || (w == lastW && h == lastH) {
			continue
		}
		lastW, lastH = w, h
		select {
		case queue <- event{kind: tickEvent}:
		case <-ctx.Done():
			return
		}
	}
}

// readKeys forwards key presses until a read fails or the loop is gone.
// Restoring the terminal ends a blocked read.
func (l *Loop) readKeys(ctx context.Context, queue chan<- event) {
	for {
		key, err := l.term.ReadKey()
		if err != nil {
			l.opts.Logger.Debug("key reader stopped", "err", err)
			return
		}
		select {
		case queue <- event{kind: keyEvent, key: key}:
		case <-ctx.Done():
			return
		}
	}
}
