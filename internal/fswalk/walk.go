// Package fswalk discovers the entries of a directory tree asynchronously.
package fswalk

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// Entry is one discovered path below the walk root.
type Entry struct {
	Path    string // absolute, or joined onto the root as given
	Rel     string // relative to the root, OS separators
	Dir     bool
	Symlink bool
	// Err is set when Path could not be read. For a directory the entry is
	// still delivered, but its contents were not.
	Err error
}

// Walk streams every entry below root, parents before their children. Each
// directory is listed as it is popped from a LIFO stack, so discovery runs
// depth-first. Symlinks are reported but never followed. Unreadable
// directories are reported through Entry.Err and the walk continues.
//
// The channel is closed when the walk completes or ctx is cancelled.
func Walk(ctx context.Context, root string) <-chan Entry {
	out := make(chan Entry, 64)
	go func() {
		defer close(out)
		walk(ctx, root, out)
	}()
	return out
}

func walk(ctx context.Context, root string, out chan<- Entry) {
	send := func(e Entry) bool {
		select {
		case out <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if !send(Entry{Path: dir, Rel: rel(root, dir), Dir: true, Err: err}) {
				return
			}
			continue
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			entry := Entry{
				Path:    path,
				Rel:     rel(root, path),
				Dir:     e.IsDir(),
				Symlink: e.Type()&fs.ModeSymlink != 0,
			}
			if !send(entry) {
				return
			}
			if entry.Dir && !entry.Symlink {
				stack = append(stack, path)
			}
		}
	}
}

func rel(root, path string) string {
	r, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return r
}
