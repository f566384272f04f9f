package filetree

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// exclusion is the explicit inclusion state a user attached to one node.
type exclusion uint8

const (
	exclusionDefault   exclusion = iota // inherits from patterns and ancestors
	exclusionExcluded                   // forced out
	exclusionException                  // forced in, over any exclusion
)

var errEmptyPattern = errors.New("empty pattern")

// InvalidPatternError reports a glob that could not be parsed. The tree is
// unchanged when it is returned.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }

// ToggleExclude flips the inclusion of the node under the cursor.
//
// Removing a mark is preferred over adding the opposite one: an included
// node held in only by an exception loses the exception, and an excluded
// node held out only by an explicit exclusion loses that mark.
func (t *Tree) ToggleExclude() {
	id, ok := t.cursorID()
	if !ok {
		return
	}
	n := t.nodes[id]
	if t.Included(id) {
		if n.exclusion == exclusionException {
			n.exclusion = exclusionDefault
		} else {
			n.exclusion = exclusionExcluded
		}
		return
	}
	if n.exclusion == exclusionExcluded {
		n.exclusion = exclusionDefault
	} else {
		n.exclusion = exclusionException
	}
}

// ExcludePattern registers a glob matched against paths relative to the
// base. Explicit marks on nodes the pattern matches are dropped since the
// pattern now decides for them. Registering a pattern twice is a no-op.
func (t *Tree) ExcludePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return &InvalidPatternError{Pattern: pattern, Err: errEmptyPattern}
	}
	if !doublestar.ValidatePattern(pattern) {
		return &InvalidPatternError{Pattern: pattern, Err: doublestar.ErrBadPattern}
	}

	for _, n := range t.nodes {
		if n.exclusion != exclusionDefault && match(pattern, n.rel) {
			n.exclusion = exclusionDefault
		}
	}
	if !slices.Contains(t.patterns, pattern) {
		t.patterns = append(t.patterns, pattern)
	}
	return nil
}

// Included reports whether the node is to be captured.
//
// An exception includes a node outright, even below an excluded
// directory. Otherwise an explicit exclusion or any matching pattern
// excludes it, and failing both the node inherits its parent's answer.
// Root children are included by default.
func (t *Tree) Included(id ID) bool {
	for id != noID {
		n, ok := t.nodes[id]
		if !ok {
			return true
		}
		switch {
		case n.exclusion == exclusionException:
			return true
		case n.exclusion == exclusionExcluded, t.matchesAny(n.rel):
			return false
		}
		id = n.parent
	}
	return true
}

func (t *Tree) matchesAny(rel string) bool {
	for _, p := range t.patterns {
		if match(p, rel) {
			return true
		}
	}
	return false
}

// match reports whether a validated pattern matches rel.
func match(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}
