package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"boyl/internal/ui/textutil"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/muesli/termenv"
)

// Braille is the glyph cycle shown next to the path being copied.
var Braille = spinner.Spinner{
	Frames: []string{"⠉", "⠋", "⠍", "⠎", "⡅", "⡇", "⡆", "⣄", "⣠", "⣈", "⣘", "⢱"},
	FPS:    time.Second / 12,
}

// Indicator draws a single status line: a rotating glyph and the most
// recent path, cut from the left to fit the terminal.
type Indicator struct {
	out     *termenv.Output
	width   func() int
	spinner spinner.Spinner
	frame   int
	path    string
}

// NewIndicator returns an Indicator writing to out. width reports the
// current terminal width; a nil width or a non-positive result means 80.
func NewIndicator(out io.Writer, width func() int) *Indicator {
	return &Indicator{out: termenv.NewOutput(out), width: width, spinner: Braille}
}

// Run redraws the line on every glyph tick until events is closed or ctx is
// cancelled, then clears it.
func (ind *Indicator) Run(ctx context.Context, events <-chan Event) {
	ticker := time.NewTicker(ind.spinner.FPS)
	defer ticker.Stop()
	defer ind.clear()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Path != "" {
				ind.path = ev.Path
			}
		case <-ticker.C:
			ind.frame = (ind.frame + 1) % len(ind.spinner.Frames)
			ind.draw()
		}
	}
}

// Line returns what the indicator currently displays.
func (ind *Indicator) Line() string {
	w := 80
	if ind.width != nil {
		if got := ind.width(); got > 0 {
			w = got
		}
	}
	glyph := ind.spinner.Frames[ind.frame]
	// Keep one spare column so the cursor never wraps.
	return glyph + " " + textutil.TruncateLeft(ind.path, w-textutil.VisualWidth(glyph)-2)
}

func (ind *Indicator) draw() {
	ind.clear()
	fmt.Fprint(ind.out, ind.Line())
}

func (ind *Indicator) clear() {
	ind.out.ClearLine()
	fmt.Fprint(ind.out, "\r")
}
