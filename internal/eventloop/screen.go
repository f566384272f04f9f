// Package eventloop runs interactive screens on a single consumer goroutine.
//
// Key presses, periodic ticks and terminal resizes are produced on their own
// goroutines and funneled through one bounded queue. The loop handles one
// event at a time, so a Screen never sees concurrent calls and needs no
// locking of its own.
package eventloop

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen is a pluggable unit of interaction driven by a Loop.
type Screen interface {
	// TickInterval reports whether the screen wants periodic OnTick calls,
	// and how often.
	TickInterval() (time.Duration, bool)
	OnKey(key tea.KeyMsg) Reaction
	// OnTick is called for timer ticks and after terminal resizes.
	OnTick() Reaction
	// Draw renders the screen into f. It is called after every event.
	Draw(f *Frame)
}

// Reaction is what a Screen asks of the loop after handling an event. A nil
// Reaction means carry on.
type Reaction interface {
	reaction()
}

type exitReaction struct{}

func (exitReaction) reaction() {}

// Exit stops the loop.
var Exit Reaction = exitReaction{}

// Switch replaces the active screen.
type Switch struct {
	Screen Screen
}

func (Switch) reaction() {}

// Frame is the drawing surface handed to Screen.Draw.
type Frame struct {
	Width  int
	Height int
	View   string
}
