package ui

import (
	"strings"
	"time"

	"boyl/internal/eventloop"
	"boyl/internal/filetree"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

var quitKey = key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit"))

// TreeViewer browses a stored template read-only.
type TreeViewer struct {
	title string
	tree  *filetree.Tree
	list  treeList
	err   error
}

// Ensure TreeViewer implements eventloop.Screen.
var _ eventloop.Screen = (*TreeViewer)(nil)

// NewTreeViewer returns a viewer over tree.
func NewTreeViewer(title string, tree *filetree.Tree) *TreeViewer {
	return &TreeViewer{title: title, tree: tree, list: treeList{tree: tree}}
}

// TickInterval implements eventloop.Screen.
func (v *TreeViewer) TickInterval() (time.Duration, bool) { return 0, false }

// OnTick implements eventloop.Screen.
func (v *TreeViewer) OnTick() eventloop.Reaction { return nil }

// OnKey implements eventloop.Screen.
func (v *TreeViewer) OnKey(msg tea.KeyMsg) eventloop.Reaction {
	v.err = nil
	switch {
	case key.Matches(msg, treeKeys.Up):
		v.tree.Up()
	case key.Matches(msg, treeKeys.Down):
		v.tree.Down()
	case key.Matches(msg, treeKeys.Toggle):
		v.err = v.tree.ToggleFolder()
	case key.Matches(msg, treeKeys.Finish), key.Matches(msg, treeKeys.Abort), key.Matches(msg, quitKey):
		return eventloop.Exit
	}
	return nil
}

// Draw implements eventloop.Screen.
func (v *TreeViewer) Draw(f *eventloop.Frame) {
	width := max(f.Width, 20)
	help, helpLines := renderHelpBar(width, []key.Binding{
		treeKeys.Up, treeKeys.Down, treeKeys.Toggle, quitKey,
	})

	var b strings.Builder
	b.WriteString(Styles.Title.Render(v.title))
	b.WriteString("\n")
	b.WriteString(v.list.view(width, max(f.Height-helpLines-2, 3)))
	b.WriteString("\n")
	if v.err != nil {
		b.WriteString(Styles.TitleWarning.Render(v.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(help)
	f.View = b.String()
}
