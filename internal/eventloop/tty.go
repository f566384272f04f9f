package eventloop

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/cancelreader"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// escDelay is how long a possible escape sequence prefix waits for the
// rest of the sequence before it is decoded as is.
const escDelay = 50 * time.Millisecond

// TTY is the production Terminal: raw-mode input, alternate-screen output.
type TTY struct {
	in     *os.File
	out    *os.File
	state  *term.State
	reader cancelreader.CancelReader

	chunks  chan []byte
	done    chan struct{}
	readErr error // set before chunks is closed
	pending []byte

	restoreOnce sync.Once
	restoreErr  error
}

// OpenTTY puts in into raw mode and switches out to the alternate screen
// with a hidden cursor. Callers must Restore.
func OpenTTY(in, out *os.File) (*TTY, error) {
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		return nil, err
	}
	state, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		reader.Close()
		return nil, err
	}
	o := termenv.NewOutput(out)
	o.AltScreen()
	o.HideCursor()
	o.ClearScreen()
	t := &TTY{
		in:     in,
		out:    out,
		state:  state,
		reader: reader,
		chunks: make(chan []byte),
		done:   make(chan struct{}),
	}
	go t.readInput()
	return t, nil
}

// readInput forwards raw input to ReadKey until a read fails or the
// terminal is restored.
func (t *TTY) readInput() {
	defer close(t.chunks)
	for {
		buf := make([]byte, 256)
		n, err := t.reader.Read(buf)
		if n > 0 {
			select {
			case t.chunks <- buf[:n]:
			case <-t.done:
				t.readErr = cancelreader.ErrCanceled
				return
			}
		}
		if err != nil {
			t.readErr = err
			return
		}
		if n == 0 {
			t.readErr = io.EOF
			return
		}
	}
}

// ReadKey implements Terminal. After Restore it fails with
// cancelreader.ErrCanceled.
func (t *TTY) ReadKey() (tea.KeyMsg, error) {
	waited := false
	for {
		if len(t.pending) > 0 && (waited || !partialEscape(t.pending)) {
			key, n, ok := decodeKey(t.pending)
			if n > 0 {
				t.pending = t.pending[n:]
				waited = false
				if ok {
					return key, nil
				}
				continue
			}
		}

		var timeout <-chan time.Time
		if len(t.pending) > 0 && partialEscape(t.pending) {
			timeout = time.After(escDelay)
		}
		select {
		case chunk, ok := <-t.chunks:
			if !ok {
				if len(t.pending) > 0 && !waited {
					waited = true
					continue
				}
				return tea.KeyMsg{}, t.readErr
			}
			t.pending = append(t.pending, chunk...)
		case <-timeout:
			waited = true
		}
	}
}

// Size implements Terminal.
func (t *TTY) Size() (int, int, error) {
	return term.GetSize(int(t.out.Fd()))
}

// Render implements Terminal. The frame is assembled in memory and written
// in one call to limit flicker.
func (t *TTY) Render(view string) error {
	var b bytes.Buffer
	o := termenv.NewOutput(&b)
	o.ClearScreen()
	// Raw mode disables output post-processing, so lines need explicit
	// carriage returns.
	b.WriteString(strings.ReplaceAll(view, "\n", "\r\n"))
	_, err := t.out.Write(b.Bytes())
	return err
}

// Restore implements Terminal. It also unblocks a pending ReadKey so no
// input meant for the shell is consumed. It is safe to call more than once.
func (t *TTY) Restore() error {
	t.restoreOnce.Do(func() {
		close(t.done)
		t.reader.Cancel()
		o := termenv.NewOutput(t.out)
		o.ClearScreen()
		o.ShowCursor()
		o.ExitAltScreen()
		t.restoreErr = errors.Join(
			term.Restore(int(t.in.Fd()), t.state),
			t.reader.Close(),
		)
	})
	return t.restoreErr
}
