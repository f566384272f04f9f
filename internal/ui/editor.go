package ui

import (
	"fmt"
	"strings"
	"time"

	"boyl/internal/eventloop"
	"boyl/internal/registry"
	"boyl/internal/ui/textutil"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

// flashTTL is how long a status message stays on screen.
const flashTTL = 2 * time.Second

// Registry is the part of the template registry the editor changes.
type Registry interface {
	List() []registry.Template
	Remove(name string) error
	SetDescription(name, description string) error
}

type editorMode int

const (
	editorList editorMode = iota
	editorFilter
	editorConfirm
	editorDescribe
)

var editorKeys = struct {
	Up       key.Binding
	Down     key.Binding
	Delete   key.Binding
	Describe key.Binding
	Filter   key.Binding
	Done     key.Binding
}{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Delete:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Describe: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit description")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Done:     key.NewBinding(key.WithKeys("enter", "ctrl+c"), key.WithHelp("enter", "done")),
}

// templateSource implements fuzzy.Source over template names and
// descriptions.
type templateSource []registry.Template

func (s templateSource) String(i int) string { return s[i].Name + " " + s[i].Description }
func (s templateSource) Len() int            { return len(s) }

// TemplateEditor lists registered templates and lets the user delete them
// or change their descriptions.
type TemplateEditor struct {
	reg      Registry
	all      []registry.Template
	visible  []registry.Template
	cursor   int
	offset   int
	mode     editorMode
	filter   textinput.Model
	describe textinput.Model
	flash    string
	flashAt  time.Time
	changed  bool
	now      func() time.Time
}

// Ensure TemplateEditor implements eventloop.Screen.
var _ eventloop.Screen = (*TemplateEditor)(nil)

// NewTemplateEditor returns an editor over reg.
func NewTemplateEditor(reg Registry) *TemplateEditor {
	e := &TemplateEditor{
		reg:      reg,
		filter:   newPrompt("/", "type to filter"),
		describe: newPrompt("Description: ", "(leave empty for none)"),
		now:      time.Now,
	}
	e.reload()
	return e
}

// Changed reports whether any template was deleted or edited.
func (e *TemplateEditor) Changed() bool { return e.changed }

func (e *TemplateEditor) reload() {
	e.all = e.reg.List()
	e.applyFilter()
}

func (e *TemplateEditor) applyFilter() {
	q := strings.TrimSpace(e.filter.Value())
	if q == "" {
		e.visible = e.all
	} else {
		e.visible = nil
		for _, m := range fuzzy.FindFrom(q, templateSource(e.all)) {
			e.visible = append(e.visible, e.all[m.Index])
		}
	}
	e.cursor = max(0, min(e.cursor, len(e.visible)-1))
}

func (e *TemplateEditor) selected() (registry.Template, bool) {
	if e.cursor < 0 || e.cursor >= len(e.visible) {
		return registry.Template{}, false
	}
	return e.visible[e.cursor], true
}

func (e *TemplateEditor) setFlash(format string, args ...any) {
	e.flash = fmt.Sprintf(format, args...)
	e.flashAt = e.now()
}

// TickInterval implements eventloop.Screen. Ticks expire flash messages.
func (e *TemplateEditor) TickInterval() (time.Duration, bool) {
	return 500 * time.Millisecond, true
}

// OnTick implements eventloop.Screen.
func (e *TemplateEditor) OnTick() eventloop.Reaction {
	if e.flash != "" && e.now().Sub(e.flashAt) >= flashTTL {
		e.flash = ""
	}
	return nil
}

// OnKey implements eventloop.Screen.
func (e *TemplateEditor) OnKey(msg tea.KeyMsg) eventloop.Reaction {
	switch e.mode {
	case editorFilter:
		return e.onFilterKey(msg)
	case editorConfirm:
		return e.onConfirmKey(msg)
	case editorDescribe:
		return e.onDescribeKey(msg)
	}

	switch {
	case key.Matches(msg, editorKeys.Up):
		e.cursor = max(0, e.cursor-1)
	case key.Matches(msg, editorKeys.Down):
		e.cursor = max(0, min(e.cursor+1, len(e.visible)-1))
	case key.Matches(msg, editorKeys.Delete):
		if _, ok := e.selected(); ok {
			e.mode = editorConfirm
		}
	case key.Matches(msg, editorKeys.Describe):
		if t, ok := e.selected(); ok {
			e.mode = editorDescribe
			e.describe.SetValue(t.Description)
			e.describe.CursorEnd()
			e.describe.Focus()
		}
	case key.Matches(msg, editorKeys.Filter):
		e.mode = editorFilter
		e.filter.Focus()
	case key.Matches(msg, editorKeys.Done), key.Matches(msg, quitKey):
		return eventloop.Exit
	}
	return nil
}

func (e *TemplateEditor) onFilterKey(msg tea.KeyMsg) eventloop.Reaction {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		e.filter.Reset()
		e.filter.Blur()
		e.mode = editorList
		e.applyFilter()
		return nil
	case tea.KeyEnter, tea.KeyUp, tea.KeyDown:
		e.filter.Blur()
		e.mode = editorList
		if msg.Type != tea.KeyEnter {
			return e.OnKey(msg)
		}
		return nil
	}
	e.filter, _ = e.filter.Update(msg)
	e.applyFilter()
	return nil
}

func (e *TemplateEditor) onConfirmKey(msg tea.KeyMsg) eventloop.Reaction {
	e.mode = editorList
	if msg.String() != "y" && msg.String() != "Y" {
		return nil
	}
	t, ok := e.selected()
	if !ok {
		return nil
	}
	if err := e.reg.Remove(t.Name); err != nil {
		e.setFlash("could not delete %s: %v", t.Name, err)
		return nil
	}
	e.changed = true
	e.setFlash("deleted %s", t.Name)
	e.reload()
	return nil
}

func (e *TemplateEditor) onDescribeKey(msg tea.KeyMsg) eventloop.Reaction {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		e.describe.Blur()
		e.mode = editorList
		return nil
	case tea.KeyEnter:
		e.describe.Blur()
		e.mode = editorList
		t, ok := e.selected()
		if !ok {
			return nil
		}
		if err := e.reg.SetDescription(t.Name, e.describe.Value()); err != nil {
			e.setFlash("could not update %s: %v", t.Name, err)
			return nil
		}
		e.changed = true
		e.setFlash("updated %s", t.Name)
		e.reload()
		return nil
	}
	e.describe, _ = e.describe.Update(msg)
	return nil
}

// Draw implements eventloop.Screen.
func (e *TemplateEditor) Draw(f *eventloop.Frame) {
	width := max(f.Width, 20)

	var footer string
	switch e.mode {
	case editorConfirm:
		t, _ := e.selected()
		footer = Styles.BoxDanger.Render(
			Styles.TitleWarning.Render("Delete "+t.Name+"?") + "\n" +
				"The stored copy will be removed.\n" +
				Styles.Hint.Render("y: delete  any other key: cancel"))
	case editorDescribe:
		footer = Styles.BoxPrompt.Render(e.describe.View())
	default:
		footer, _ = renderHelpBar(width, []key.Binding{
			editorKeys.Up, editorKeys.Down, editorKeys.Delete,
			editorKeys.Describe, editorKeys.Filter, editorKeys.Done,
		})
	}
	if e.mode == editorFilter || strings.TrimSpace(e.filter.Value()) != "" {
		footer = e.filter.View() + "\n" + footer
	}
	if e.flash != "" {
		footer = Styles.Flash.Render(e.flash) + "\n" + footer
	}
	footerLines := strings.Count(footer, "\n") + 1

	var b strings.Builder
	b.WriteString(Styles.Title.Render("Templates"))
	b.WriteString(Styles.Muted.Render(fmt.Sprintf("  %d of %d", len(e.visible), len(e.all))))
	b.WriteString("\n")
	b.WriteString(e.listView(width, max(f.Height-footerLines-2, 3)))
	b.WriteString("\n")
	b.WriteString(footer)
	f.View = b.String()
}

func (e *TemplateEditor) listView(width, height int) string {
	if len(e.visible) == 0 {
		if len(e.all) == 0 {
			return Styles.Empty.Render("No templates yet. Create one with boyl make.")
		}
		return Styles.Empty.Render("No templates match the filter.")
	}

	var end int
	e.offset, end = scrollWindow(e.cursor, len(e.visible), height, e.offset)
	nameWidth := 0
	for _, t := range e.visible[e.offset:end] {
		nameWidth = max(nameWidth, textutil.VisualWidth(t.Name))
	}
	nameWidth = min(nameWidth, width/2)

	var b strings.Builder
	for i := e.offset; i < end; i++ {
		t := e.visible[i]
		marker, style := "  ", Styles.Normal
		if i == e.cursor {
			marker, style = "> ", Styles.Selected
		}
		name := textutil.PadRightVisual(textutil.Truncate(t.Name, nameWidth), nameWidth)
		line := marker + style.Render(name)
		if t.Description != "" {
			rest := width - nameWidth - 4
			if rest > 0 {
				line += "  " + Styles.Muted.Render(textutil.Truncate(t.Description, rest))
			}
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
