// Package filetree models a directory as a lazily indexed, navigable tree
// whose entries can be individually or pattern-wise excluded from capture.
//
// Nodes live in an arena keyed by ID. Relations (parent, siblings, first
// child) are IDs into that arena, so the model holds no pointer cycles and
// read-only queries are safe to run from many goroutines once interactive
// editing has finished.
package filetree

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
)

// ID identifies a node within one Tree. IDs are never reused.
type ID uuid.UUID

func (id ID) String() string { return uuid.UUID(id).String() }

// noID marks an absent relation: a root child's parent, the end of a
// sibling chain, or a directory with no children.
var noID ID

func newID() ID { return ID(uuid.New()) }

type node struct {
	path       string // absolute
	rel        string // slash-separated, relative to the base
	parent     ID
	prev       ID
	next       ID
	firstChild ID
	dir        bool
	open       bool
	depth      int
	exclusion  exclusion
}

// Tree is the in-memory model behind the file picker.
//
// Mutating methods must be called from a single goroutine. Read-only
// methods (Included, IncludedForPath, Rows) may run concurrently with each
// other but not with mutations.
type Tree struct {
	base      string
	nodes     map[ID]*node
	pathIndex map[string]ID
	visible   []ID
	indexed   map[ID]struct{}
	patterns  []string
	cursor    int
}

// New reads the direct children of base and returns a tree showing them at
// depth 0 in directory read order.
func New(base string) (*Tree, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve base %s: %w", base, err)
	}
	t := &Tree{base: abs}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) load() error {
	children, err := t.readChildren(noID, t.base, 0)
	if err != nil {
		return err
	}
	t.nodes = make(map[ID]*node)
	t.pathIndex = make(map[string]ID)
	t.indexed = make(map[ID]struct{})
	t.patterns = nil
	t.cursor = 0
	t.visible = t.adopt(children)
	return nil
}

// Reset re-reads the base directory and drops every expansion, exclusion
// and pattern.
func (t *Tree) Reset() error {
	return t.load()
}

// Base returns the absolute directory the tree was built from.
func (t *Tree) Base() string { return t.base }

// Len returns the number of visible rows.
func (t *Tree) Len() int { return len(t.visible) }

// Cursor returns the index of the highlighted row.
func (t *Tree) Cursor() int { return t.cursor }

// Patterns returns the registered exclusion patterns in insertion order.
func (t *Tree) Patterns() []string { return slices.Clone(t.patterns) }

// MoveCursor shifts the cursor by delta rows, saturating at both ends.
func (t *Tree) MoveCursor(delta int) {
	if len(t.visible) == 0 {
		return
	}
	t.cursor = min(max(t.cursor+delta, 0), len(t.visible)-1)
}

// Up moves the cursor one row up.
func (t *Tree) Up() { t.MoveCursor(-1) }

// Down moves the cursor one row down.
func (t *Tree) Down() { t.MoveCursor(1) }

func (t *Tree) cursorID() (ID, bool) {
	if len(t.visible) == 0 {
		return noID, false
	}
	return t.visible[t.cursor], true
}

// ToggleFolder expands or collapses the directory under the cursor. It is a
// no-op on files. The first expansion of a directory reads it from disk; if
// that read fails the tree is left unchanged and the error is returned.
func (t *Tree) ToggleFolder() error {
	id, ok := t.cursorID()
	if !ok {
		return nil
	}
	n := t.nodes[id]
	if !n.dir {
		return nil
	}

	if n.open {
		n.open = false
		t.collapse(id)
		return nil
	}

	if _, ok := t.indexed[id]; !ok {
		children, err := t.readChildren(id, n.path, n.depth+1)
		if err != nil {
			return err
		}
		ids := t.adopt(children)
		if len(ids) > 0 {
			n.firstChild = ids[0]
		}
		t.indexed[id] = struct{}{}
	}
	n.open = true
	t.visible = slices.Insert(t.visible, t.cursor+1, t.flatten(n.firstChild, nil)...)
	return nil
}

// flatten appends the sibling chain starting at first, descending into every
// open directory, in display order.
func (t *Tree) flatten(first ID, out []ID) []ID {
	for id := first; id != noID; id = t.nodes[id].next {
		out = append(out, id)
		if n := t.nodes[id]; n.open {
			out = t.flatten(n.firstChild, out)
		}
	}
	return out
}

// collapse removes the run of rows after the cursor that descend from id.
func (t *Tree) collapse(id ID) {
	end := t.cursor + 1
	for end < len(t.visible) && t.descendsFrom(t.visible[end], id) {
		end++
	}
	t.visible = slices.Delete(t.visible, t.cursor+1, end)
}

func (t *Tree) descendsFrom(id, ancestor ID) bool {
	for p := t.nodes[id].parent; p != noID; p = t.nodes[p].parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

type child struct {
	id   ID
	node *node
}

// readChildren lists dir in read order without touching the tree.
func (t *Tree) readChildren(parent ID, dir string, depth int) ([]child, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	children := make([]child, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		rel, err := filepath.Rel(t.base, path)
		if err != nil {
			return nil, fmt.Errorf("relative path of %s: %w", path, err)
		}
		children = append(children, child{
			id: newID(),
			node: &node{
				path:   path,
				rel:    filepath.ToSlash(rel),
				parent: parent,
				dir:    e.IsDir(),
				depth:  depth,
			},
		})
	}
	return children, nil
}

// adopt links children into a sibling chain, registers them in the arena and
// path index, and returns their IDs in order.
func (t *Tree) adopt(children []child) []ID {
	ids := make([]ID, len(children))
	for i, c := range children {
		if i > 0 {
			c.node.prev = children[i-1].id
		}
		if i+1 < len(children) {
			c.node.next = children[i+1].id
		}
		t.nodes[c.id] = c.node
		t.pathIndex[c.node.path] = c.id
		ids[i] = c.id
	}
	return ids
}
