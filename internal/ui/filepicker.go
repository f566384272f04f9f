package ui

import (
	"fmt"
	"strings"
	"time"

	"boyl/internal/eventloop"
	"boyl/internal/filetree"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type pickerMode int

const (
	pickerList pickerMode = iota
	pickerPrompt
	pickerError
)

// FilePicker lets the user choose which entries of a directory become part
// of a template.
type FilePicker struct {
	title   string
	tree    *filetree.Tree
	list    treeList
	input   textinput.Model
	mode    pickerMode
	err     error
	aborted bool
}

// Ensure FilePicker implements eventloop.Screen.
var _ eventloop.Screen = (*FilePicker)(nil)

// NewFilePicker returns a picker over tree, shown under title.
func NewFilePicker(title string, tree *filetree.Tree) *FilePicker {
	return &FilePicker{
		title: title,
		tree:  tree,
		list:  treeList{tree: tree, showInclusion: true},
		input: newPrompt("Exclude pattern: ", patternPlaceholder),
	}
}

// Patterns only decide for entries that have been listed; unopened
// directories keep their own answer for everything inside them.
const patternPlaceholder = "e.g. *.log (matches listed entries)"

func newPrompt(prompt, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// Tree returns the model being edited.
func (p *FilePicker) Tree() *filetree.Tree { return p.tree }

// Aborted reports whether the user left with Ctrl-C instead of finishing.
func (p *FilePicker) Aborted() bool { return p.aborted }

// TickInterval implements eventloop.Screen. The picker only redraws on input
// and resizes.
func (p *FilePicker) TickInterval() (time.Duration, bool) { return 0, false }

// OnTick implements eventloop.Screen.
func (p *FilePicker) OnTick() eventloop.Reaction { return nil }

// OnKey implements eventloop.Screen.
func (p *FilePicker) OnKey(msg tea.KeyMsg) eventloop.Reaction {
	switch p.mode {
	case pickerPrompt:
		return p.onPromptKey(msg)
	case pickerError:
		p.mode = pickerList
		p.err = nil
		return nil
	}

	switch {
	case key.Matches(msg, treeKeys.Up):
		p.tree.Up()
	case key.Matches(msg, treeKeys.Down):
		p.tree.Down()
	case key.Matches(msg, treeKeys.Toggle):
		if err := p.tree.ToggleFolder(); err != nil {
			p.showError(err)
		}
	case key.Matches(msg, treeKeys.Exclude):
		p.tree.ToggleExclude()
	case key.Matches(msg, treeKeys.Pattern):
		p.mode = pickerPrompt
		p.input.Reset()
		p.input.Focus()
	case key.Matches(msg, treeKeys.Reset):
		if err := p.tree.Reset(); err != nil {
			p.showError(err)
		}
		p.list.offset = 0
	case key.Matches(msg, treeKeys.Finish):
		return eventloop.Exit
	case key.Matches(msg, treeKeys.Abort):
		p.aborted = true
		return eventloop.Exit
	}
	return nil
}

func (p *FilePicker) onPromptKey(msg tea.KeyMsg) eventloop.Reaction {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		p.closePrompt()
		return nil
	case tea.KeyEnter:
		text := p.input.Value()
		p.closePrompt()
		if strings.TrimSpace(text) == "" {
			return nil
		}
		if err := p.tree.ExcludePattern(text); err != nil {
			p.showError(err)
		}
		return nil
	}
	p.input, _ = p.input.Update(msg)
	return nil
}

func (p *FilePicker) closePrompt() {
	p.input.Blur()
	p.mode = pickerList
}

func (p *FilePicker) showError(err error) {
	p.err = err
	p.mode = pickerError
}

// Draw implements eventloop.Screen.
func (p *FilePicker) Draw(f *eventloop.Frame) {
	width := max(f.Width, 20)
	help, helpLines := renderHelpBar(width, []key.Binding{
		treeKeys.Up, treeKeys.Down, treeKeys.Toggle, treeKeys.Exclude,
		treeKeys.Pattern, treeKeys.Reset, treeKeys.Finish, treeKeys.Abort,
	})

	var footer string
	switch p.mode {
	case pickerPrompt:
		footer = Styles.BoxPrompt.Render(p.input.View())
	case pickerError:
		footer = Styles.BoxDanger.Render(
			Styles.TitleWarning.Render("Error") + "\n" + p.err.Error() + "\n" +
				Styles.Hint.Render("press any key to continue"))
	default:
		footer = help
	}
	footerLines := strings.Count(footer, "\n") + 1
	if p.mode == pickerList {
		footerLines = helpLines
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render(p.title))
	if pats := p.tree.Patterns(); len(pats) > 0 {
		b.WriteString(Styles.Muted.Render(fmt.Sprintf("  excluding %s", strings.Join(pats, ", "))))
	}
	b.WriteString("\n")
	b.WriteString(p.list.view(width, max(f.Height-footerLines-2, 3)))
	b.WriteString("\n")
	b.WriteString(footer)
	f.View = b.String()
}
