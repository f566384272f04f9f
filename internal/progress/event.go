// Package progress carries transient replication progress from copy
// workers to whatever is displaying it.
package progress

import "time"

// Status indicates the state of the entry or run an Event describes.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Event reports one unit of copy work.
type Event struct {
	Path      string // relative to the source root
	Status    Status
	Timestamp time.Time
	Err       error // set with StatusError and StatusSkipped
}

// Emitter receives progress events. Implementations must not block.
type Emitter interface {
	Emit(Event)
}

// Discard drops every event.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(Event) {}

// ChanEmitter emits events to a channel.
type ChanEmitter struct {
	Ch chan<- Event
}

// Emit sends the event to the channel (non-blocking; drops if full).
func (e *ChanEmitter) Emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case e.Ch <- ev:
	default:
		// Channel full; drop rather than stall a copy worker.
	}
}
