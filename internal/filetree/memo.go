package filetree

import (
	"path/filepath"
	"strings"
	"sync"
)

// Memo caches inclusion answers for directories discovered while copying.
// It is safe for concurrent use.
type Memo struct {
	mu   sync.RWMutex
	dirs map[string]bool
}

// NewMemo returns an empty cache.
func NewMemo() *Memo {
	return &Memo{dirs: make(map[string]bool)}
}

func (m *Memo) get(path string) (bool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.dirs[path]
	return v, ok
}

func (m *Memo) put(path string, included bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = included
}

// Len returns the number of cached directories.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dirs)
}

// IncludedForPath answers Included for an absolute path that may never have
// been indexed. Unknown paths take the answer of their nearest known
// ancestor; the base itself and paths outside it are included. Directory
// answers are cached in memo, which may be nil.
func (t *Tree) IncludedForPath(path string, isDir bool, memo *Memo) bool {
	path = filepath.Clean(path)
	if memo != nil {
		if v, ok := memo.get(path); ok {
			return v
		}
	}

	var included bool
	if id, ok := t.pathIndex[path]; ok {
		included = t.Included(id)
	} else if !t.contains(path) {
		included = true
	} else {
		included = t.IncludedForPath(filepath.Dir(path), true, memo)
	}

	if isDir && memo != nil {
		memo.put(path, included)
	}
	return included
}

// contains reports whether path lies strictly below the base.
func (t *Tree) contains(path string) bool {
	rel, err := filepath.Rel(t.base, path)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// PathFilter adapts a Tree to the copier's inclusion predicate.
type PathFilter struct {
	Tree *Tree
	Memo *Memo
}

// Filter returns a PathFilter over t with a fresh cache.
func (t *Tree) Filter() PathFilter {
	return PathFilter{Tree: t, Memo: NewMemo()}
}

// Include reports whether path should be replicated.
func (f PathFilter) Include(path string, isDir bool) bool {
	return f.Tree.IncludedForPath(path, isDir, f.Memo)
}
