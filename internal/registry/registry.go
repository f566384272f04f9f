// Package registry records the templates boyl knows about and where their
// captured copies live on disk.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"boyl/internal/jsonutil"
)

// FileName is the name of the registry document inside the data directory.
const FileName = "registry.json"

const formatVersion = 1

var (
	// ErrExists is returned by Add when the name is already registered.
	ErrExists = errors.New("template already exists")
	// ErrNotFound is returned for names that are not registered.
	ErrNotFound = errors.New("template not found")
)

// Template is one captured directory.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
}

// Key returns the normalized registry key for a template name: lowercase,
// surrounding space trimmed, inner spaces replaced with hyphens.
func Key(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

// Store owns the directory under which template copies are kept.
// Layout: <base>/<key>/...
type Store struct {
	baseDir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{baseDir: dir}
}

// BaseDir returns the root of the store.
func (s *Store) BaseDir() string { return s.baseDir }

// TemplateDir returns the directory a template of the given name is kept in.
func (s *Store) TemplateDir(name string) string {
	return filepath.Join(s.baseDir, Key(name))
}

type document struct {
	Version   int                 `json:"version"`
	Templates map[string]Template `json:"templates"`
}

// Registry is the in-memory view of registry.json. Mutations are kept in
// memory until Save.
type Registry struct {
	path  string
	store *Store

	mu  sync.RWMutex
	doc document
}

// Load reads the registry at path. A missing file yields an empty registry.
func Load(path string, store *Store) (*Registry, error) {
	r := &Registry{
		path:  path,
		store: store,
		doc:   document{Version: formatVersion, Templates: map[string]Template{}},
	}
	if _, err := jsonutil.ReadFile(path, &r.doc); err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	if r.doc.Version > formatVersion {
		return nil, fmt.Errorf("load registry: %s has format version %d, this build understands %d",
			path, r.doc.Version, formatVersion)
	}
	if r.doc.Templates == nil {
		r.doc.Templates = map[string]Template{}
	}
	r.doc.Version = formatVersion
	return r, nil
}

// Path returns the location of the registry document.
func (r *Registry) Path() string { return r.path }

// Store returns the template store.
func (r *Registry) Store() *Store { return r.store }

// TemplateDir returns where a template of the given name is, or would be,
// stored.
func (r *Registry) TemplateDir(name string) string {
	return r.store.TemplateDir(name)
}

// Save writes the registry back to disk.
func (r *Registry) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := jsonutil.WriteFile(r.path, r.doc); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

// Exists reports whether name is registered.
func (r *Registry) Exists(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Get returns the template registered under name.
func (r *Registry) Get(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.doc.Templates[Key(name)]
	return t, ok
}

// Add registers t. Path defaults to the store's directory for t.Name.
func (r *Registry) Add(t Template) error {
	key := Key(t.Name)
	if key == "" {
		return errors.New("template name must not be empty")
	}
	if t.Path == "" {
		t.Path = r.store.TemplateDir(t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doc.Templates[key]; ok {
		return fmt.Errorf("%q: %w", t.Name, ErrExists)
	}
	r.doc.Templates[key] = t
	return nil
}

// Remove unregisters name and deletes its stored copy.
func (r *Registry) Remove(name string) error {
	key := Key(name)

	r.mu.Lock()
	t, ok := r.doc.Templates[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	delete(r.doc.Templates, key)
	r.mu.Unlock()

	if err := os.RemoveAll(t.Path); err != nil {
		return fmt.Errorf("remove %s: %w", t.Path, err)
	}
	return nil
}

// SetDescription replaces the description of name.
func (r *Registry) SetDescription(name, description string) error {
	key := Key(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.doc.Templates[key]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	t.Description = strings.TrimSpace(description)
	r.doc.Templates[key] = t
	return nil
}

// List returns all templates ordered by key.
func (r *Registry) List() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.doc.Templates))
	for _, t := range r.doc.Templates {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Template) int {
		return strings.Compare(Key(a.Name), Key(b.Name))
	})
	return out
}
