// Package logging builds the process logger and lets the console sink be
// held back while a full-screen view owns the terminal.
package logging

import (
	"bytes"
	"io"
	"sync"
	"time"

	charmLog "github.com/charmbracelet/log"
)

// Console is an io.Writer over the terminal's error stream. While held,
// writes are buffered instead of reaching the terminal.
type Console struct {
	mu   sync.Mutex
	out  io.Writer
	held bool
	buf  bytes.Buffer
}

// NewConsole wraps out.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = io.Discard
	}
	return &Console{out: out}
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held {
		return c.buf.Write(p)
	}
	return c.out.Write(p)
}

// Hold starts buffering output.
func (c *Console) Hold() {
	c.mu.Lock()
	c.held = true
	c.mu.Unlock()
}

// Release stops buffering and writes out whatever was held.
func (c *Console) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = false
	if c.buf.Len() == 0 {
		return nil
	}
	_, err := c.buf.WriteTo(c.out)
	c.buf.Reset()
	return err
}

// Held reports whether output is currently buffered.
func (c *Console) Held() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held
}

// New returns a text logger writing to console at level, prefixed with
// appName.
func New(console *Console, appName string, level charmLog.Level) *charmLog.Logger {
	return charmLog.NewWithOptions(console, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})
}

// Muted runs fn with console held and releases it afterwards, whatever fn
// returns.
func Muted(console *Console, fn func() error) error {
	console.Hold()
	err := fn()
	if relErr := console.Release(); err == nil {
		err = relErr
	}
	return err
}
