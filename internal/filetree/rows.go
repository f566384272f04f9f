package filetree

import "iter"

// Row is one rendered line of the tree.
type Row struct {
	ID       ID
	Path     string // slash-separated, relative to the base
	Included bool
	Depth    int
	Dir      bool
	Open     bool
	Selected bool
}

// Rows yields the visible rows in [start, end), clamped to the list.
func (t *Tree) Rows(start, end int) iter.Seq[Row] {
	start = max(start, 0)
	end = min(end, len(t.visible))
	return func(yield func(Row) bool) {
		for i := start; i < end; i++ {
			id := t.visible[i]
			n := t.nodes[id]
			row := Row{
				ID:       id,
				Path:     n.rel,
				Included: t.Included(id),
				Depth:    n.depth,
				Dir:      n.dir,
				Open:     n.open,
				Selected: i == t.cursor,
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Selected returns the row under the cursor.
func (t *Tree) Selected() (Row, bool) {
	for row := range t.Rows(t.cursor, t.cursor+1) {
		return row, true
	}
	return Row{}, false
}
