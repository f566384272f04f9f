package ui

import (
	"strings"

	"boyl/internal/layout"
	"boyl/internal/ui/textutil"

	"github.com/charmbracelet/bubbles/key"
)

// treeKeys are the bindings shared by the file picker and tree viewer.
var treeKeys = struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Exclude key.Binding
	Pattern key.Binding
	Reset   key.Binding
	Finish  key.Binding
	Abort   key.Binding
}{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open/close")),
	Exclude: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "exclude/include")),
	Pattern: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "exclude pattern")),
	Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Finish:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "finish")),
	Abort:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "abort")),
}

// renderHelpBar lays the bindings' help out over as many lines of width
// cells as needed and returns the text and its line count.
func renderHelpBar(width int, bindings []key.Binding) (string, int) {
	labels := make([]string, 0, len(bindings))
	boxes := make([]layout.Box, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		label := Styles.Key.Render(h.Key) + " " + Styles.Hint.Render(h.Desc)
		labels = append(labels, label)
		boxes = append(boxes, layout.Box{Width: textutil.VisualWidthStyled(label), Height: 1})
	}
	positions := layout.Distribute(width, boxes)
	n := layout.Lines(positions)
	if n == 0 {
		return "", 0
	}

	lines := make([]strings.Builder, n)
	cols := make([]int, n)
	for i, p := range positions {
		line := &lines[p.Y]
		line.WriteString(strings.Repeat(" ", max(0, p.X-cols[p.Y])))
		line.WriteString(labels[i])
		cols[p.Y] = p.X + boxes[i].Width
	}
	out := make([]string, n)
	for i := range lines {
		out[i] = lines[i].String()
	}
	return strings.Join(out, "\n"), n
}

// scrollWindow keeps cursor within a window of height rows over length
// rows, starting from offset. It returns the new offset and the window end.
func scrollWindow(cursor, length, height, offset int) (int, int) {
	height = max(height, 1)
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+height {
		offset = cursor - height + 1
	}
	offset = max(0, min(offset, length-height))
	return offset, min(length, offset+height)
}
