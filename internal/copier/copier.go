// Package copier replicates a directory tree with bounded parallelism and
// all-or-nothing semantics: if any entry fails to copy, the destination
// root is removed before the error is returned.
package copier

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"boyl/internal/fswalk"
	"boyl/internal/progress"
	"boyl/internal/telemetry"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the size of the worker pool when WithWorkers is not given.
const DefaultWorkers = 20

// Filter decides which discovered paths are replicated.
type Filter interface {
	Include(path string, isDir bool) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(path string, isDir bool) bool

// Include implements Filter.
func (f FilterFunc) Include(path string, isDir bool) bool { return f(path, isDir) }

// IncludeAll replicates everything.
var IncludeAll Filter = FilterFunc(func(string, bool) bool { return true })

// Task is one entry waiting to be replicated.
type Task struct {
	Source      string
	Destination string
	Rel         string
	Dir         bool
	Symlink     bool
}

// CopyFunc materializes one task at its destination.
type CopyFunc func(Task) error

// FatalCopyError reports the entry whose replication aborted the run.
type FatalCopyError struct {
	Source      string
	Destination string
	Err         error
}

func (e *FatalCopyError) Error() string {
	return fmt.Sprintf("copy %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *FatalCopyError) Unwrap() error { return e.Err }

// Stats counts what one Replicate run did.
type Stats struct {
	Dirs     int64
	Files    int64
	Links    int64
	Excluded int64
	Skipped  int64 // unreadable during discovery
}

type counters struct {
	dirs, files, links, excluded, skipped atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Dirs:     c.dirs.Load(),
		Files:    c.files.Load(),
		Links:    c.links.Load(),
		Excluded: c.excluded.Load(),
		Skipped:  c.skipped.Load(),
	}
}

// Engine replicates trees. The zero value is not usable; call New.
type Engine struct {
	workers  int
	logger   *log.Logger
	progress progress.Emitter
	copy     CopyFunc
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of concurrent copy workers (minimum 1).
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = max(n, 1) }
}

// WithLogger sets the logger used for skipped entries and cleanup failures.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithProgress sets where per-entry progress is reported.
func WithProgress(p progress.Emitter) Option {
	return func(e *Engine) { e.progress = p }
}

// WithCopyFunc replaces how a single task is materialized.
func WithCopyFunc(fn CopyFunc) Option {
	return func(e *Engine) { e.copy = fn }
}

// WithTracer sets the tracer for the per-run span.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// New returns an Engine with DefaultWorkers workers and the default copy.
func New(opts ...Option) *Engine {
	e := &Engine{
		workers:  DefaultWorkers,
		logger:   log.Default(),
		progress: progress.Discard,
		copy:     CopyTask,
		tracer:   telemetry.Tracer("boyl/copier"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Replicate copies every entry below src that filter includes to the same
// relative location below dst, creating dst first.
//
// Discovery and copying overlap: a walker pushes included entries onto a
// LIFO stack drained by the worker pool. Entries that cannot be read during
// discovery are logged and skipped. The first failed copy stops new tasks
// from starting; once in-flight tasks finish, dst is removed and a
// *FatalCopyError is returned.
func (e *Engine) Replicate(ctx context.Context, src, dst string, filter Filter) (err error) {
	ctx, span := e.tracer.Start(ctx, "copier.Replicate", trace.WithAttributes(
		attribute.String("boyl.copy.source", src),
		attribute.String("boyl.copy.destination", dst),
		attribute.Int("boyl.copy.workers", e.workers),
	))
	var c counters
	defer func() {
		st := c.snapshot()
		span.SetAttributes(
			attribute.Int64("boyl.copy.dirs", st.Dirs),
			attribute.Int64("boyl.copy.files", st.Files),
			attribute.Int64("boyl.copy.links", st.Links),
			attribute.Int64("boyl.copy.excluded", st.Excluded),
			attribute.Int64("boyl.copy.skipped", st.Skipped),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return &FatalCopyError{Source: src, Destination: dst, Err: err}
	}

	work := newStack()
	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, work.abort)
	defer stop()

	for range e.workers {
		g.Go(func() error {
			for {
				task, ok := work.pop()
				if !ok {
					return nil
				}
				e.progress.Emit(progress.Event{Path: task.Rel, Status: progress.StatusRunning})
				if err := e.copy(task); err != nil {
					e.progress.Emit(progress.Event{Path: task.Rel, Status: progress.StatusError, Err: err})
					return &FatalCopyError{Source: task.Source, Destination: task.Destination, Err: err}
				}
				switch {
				case task.Symlink:
					c.links.Add(1)
				case task.Dir:
					c.dirs.Add(1)
				default:
					c.files.Add(1)
				}
			}
		})
	}

	g.Go(func() error {
		defer work.close()
		for entry := range fswalk.Walk(gctx, src) {
			if entry.Err != nil {
				c.skipped.Add(1)
				e.logger.Warn("skipping unreadable entry", "path", entry.Path, "err", entry.Err)
				e.progress.Emit(progress.Event{Path: entry.Rel, Status: progress.StatusSkipped, Err: entry.Err})
				continue
			}
			isDir := entry.Dir && !entry.Symlink
			if !filter.Include(entry.Path, isDir) {
				c.excluded.Add(1)
				continue
			}
			task := Task{
				Source:      entry.Path,
				Destination: filepath.Join(dst, entry.Rel),
				Rel:         entry.Rel,
				Dir:         isDir,
				Symlink:     entry.Symlink,
			}
			if !work.push(task) {
				return nil
			}
		}
		return nil
	})

	err = g.Wait()
	if err == nil {
		// Workers and walker exit quietly on cancellation.
		err = ctx.Err()
	}
	if err != nil {
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			e.logger.Error("failed to remove partial destination", "path", dst, "err", rmErr)
		}
		return err
	}

	st := c.snapshot()
	e.logger.Debug("replicated tree", "source", src, "destination", dst,
		"dirs", st.Dirs, "files", st.Files, "links", st.Links, "excluded", st.Excluded, "skipped", st.Skipped)
	return nil
}

// CopyTask is the default CopyFunc. Directories are created with mode 0755
// (an existing directory is fine), symlinks are recreated with the same
// target, and regular files are copied byte for byte with their permission
// bits after making sure the parent directory exists.
func CopyTask(t Task) error {
	switch {
	case t.Dir:
		// A child may be popped before its parent, so create the whole chain.
		return os.MkdirAll(t.Destination, 0o755)
	case t.Symlink:
		target, err := os.Readlink(t.Source)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(t.Destination), 0o755); err != nil {
			return err
		}
		return os.Symlink(target, t.Destination)
	default:
		return copyFile(t.Source, t.Destination)
	}
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	perm := info.Mode().Perm()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile's mode is filtered by the umask.
	return os.Chmod(dst, perm)
}
