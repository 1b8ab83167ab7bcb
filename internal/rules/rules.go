// Package rules persists the ordered filter list as YAML.
package rules

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

// RelPath is the location of the filter file inside a workspace.
var RelPath = filepath.Join("rules", "filters.yaml")

// ErrFilterNotFound is returned when no filter has the requested ID.
var ErrFilterNotFound = errors.New("filter not found")

type document struct {
	Filters []model.Filter `yaml:"filters"`
}

// Store reads and writes rules/filters.yaml. Filter order is significant:
// the first matching filter classifies a transaction.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a Store for the workspace at root.
func NewStore(root string) *Store {
	return &Store{path: filepath.Join(root, RelPath)}
}

// List returns the filters in evaluation order. A missing file is an empty
// list.
func (s *Store) List() ([]model.Filter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Filters implements dashboard.Source.
func (s *Store) Filters(context.Context) ([]model.Filter, error) {
	return s.List()
}

// Add validates f, gives it an ID when it has none, and inserts it at
// position. A position outside the list appends.
func (s *Store) Add(f model.Filter, position int) (model.Filter, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if err := Validate(f); err != nil {
		return model.Filter{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	filters, err := s.read()
	if err != nil {
		return model.Filter{}, err
	}
	for _, existing := range filters {
		if existing.ID == f.ID {
			return model.Filter{}, fmt.Errorf("filter %s already exists", f.ID)
		}
	}

	if position < 0 || position > len(filters) {
		position = len(filters)
	}
	filters = append(filters[:position], append([]model.Filter{f}, filters[position:]...)...)
	if err := s.write(filters); err != nil {
		return model.Filter{}, err
	}
	return f, nil
}

// Remove deletes the filter with id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	filters, err := s.read()
	if err != nil {
		return err
	}
	i := indexOf(filters, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFilterNotFound, id)
	}
	return s.write(append(filters[:i], filters[i+1:]...))
}

// Move places the filter with id at position, shifting the others.
func (s *Store) Move(id string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	filters, err := s.read()
	if err != nil {
		return err
	}
	i := indexOf(filters, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFilterNotFound, id)
	}
	f := filters[i]
	filters = append(filters[:i], filters[i+1:]...)
	if position < 0 || position > len(filters) {
		position = len(filters)
	}
	filters = append(filters[:position], append([]model.Filter{f}, filters[position:]...)...)
	return s.write(filters)
}

// Save replaces the whole filter list.
func (s *Store) Save(filters []model.Filter) error {
	for _, f := range filters {
		if err := Validate(f); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(filters)
}

// Validate checks that f has an ID, a category, known matcher properties
// and comparators, and a known variability.
func Validate(f model.Filter) error {
	if f.ID == "" {
		return fmt.Errorf("filter has no id")
	}
	if !f.Category.Valid() {
		return fmt.Errorf("filter %s: invalid category %q", f.ID, f.Category)
	}
	if !f.Variability.Valid() {
		return fmt.Errorf("filter %s: invalid variability %q", f.ID, f.Variability)
	}
	for i, m := range f.Matchers {
		if _, ok := (model.CoreTransaction{}).Value(m.Property); !ok {
			return fmt.Errorf("filter %s: matcher %d: unknown property %q", f.ID, i, m.Property)
		}
		switch m.Comparator.Normalize() {
		case "", model.ComparatorEquals, model.ComparatorGreaterThan, model.ComparatorLessThan:
		default:
			return fmt.Errorf("filter %s: matcher %d: unknown comparator %q", f.ID, i, m.Comparator)
		}
	}
	return nil
}

func indexOf(filters []model.Filter, id string) int {
	for i, f := range filters {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) read() ([]model.Filter, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading filters: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing filters: %w", err)
	}
	return doc.Filters, nil
}

func (s *Store) write(filters []model.Filter) error {
	if filters == nil {
		filters = []model.Filter{}
	}
	data, err := yaml.Marshal(document{Filters: filters})
	if err != nil {
		return fmt.Errorf("marshaling filters: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing filters: %w", err)
	}
	return nil
}
