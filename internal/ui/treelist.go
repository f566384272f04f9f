package ui

import (
	"fmt"
	"path"
	"strings"

	"boyl/internal/filetree"
	"boyl/internal/ui/textutil"
)

// treeList renders a scrolling window over a filetree.Tree.
type treeList struct {
	tree   *filetree.Tree
	offset int
	// showInclusion marks excluded rows; the viewer of a stored template
	// has nothing excluded and leaves it off.
	showInclusion bool
}

// view renders at most height rows (including the ▲/▼ indicator lines) at
// the given width.
func (l *treeList) view(width, height int) string {
	if l.tree.Len() == 0 {
		return Styles.Empty.Render("(empty directory)")
	}

	rows := max(height-2, 1)
	var end int
	l.offset, end = scrollWindow(l.tree.Cursor(), l.tree.Len(), rows, l.offset)

	var b strings.Builder
	if l.offset > 0 {
		b.WriteString(Styles.Muted.Render(fmt.Sprintf("▲ %d more", l.offset)))
	}
	b.WriteString("\n")
	for row := range l.tree.Rows(l.offset, end) {
		b.WriteString(l.renderRow(row, width))
		b.WriteString("\n")
	}
	if rest := l.tree.Len() - end; rest > 0 {
		b.WriteString(Styles.Muted.Render(fmt.Sprintf("▼ %d more", rest)))
	}
	return b.String()
}

func (l *treeList) renderRow(row filetree.Row, width int) string {
	marker := "  "
	if row.Selected {
		marker = "> "
	}
	if l.showInclusion {
		if row.Included {
			marker += "✓ "
		} else {
			marker += "✗ "
		}
	}
	icon := "  "
	if row.Dir {
		icon = "▸ "
		if row.Open {
			icon = "▾ "
		}
	}
	name := path.Base(row.Path)
	if row.Dir {
		name += "/"
	}
	text := strings.Repeat("  ", row.Depth) + icon + name
	text = textutil.Truncate(text, max(width-textutil.VisualWidth(marker), 1))

	style := Styles.Normal
	switch {
	case row.Selected:
		style = Styles.Selected
	case l.showInclusion && !row.Included:
		style = Styles.Excluded
	case row.Dir:
		style = Styles.Dir
	}
	if l.showInclusion && !row.Included && row.Selected {
		style = style.Strikethrough(true)
	}
	return marker + style.Render(text)
}
