package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/doorman-ac/doorman/internal/core"
)

var _ core.ControlStore = (*InMemoryControlStore)(nil)

// controlSet is one immutable snapshot of all control definitions. Readers
// load the whole set atomically, so an evaluation always sees a consistent
// control graph even while a sync replaces it.
type controlSet struct {
	byKey map[core.ResourceKey]*core.AccessControl
	all   []*core.AccessControl
}

// InMemoryControlStore keeps validated control definitions in memory and
// swaps them wholesale on administrator edits or source syncs. It doubles as
// the read-through cache of compiled definitions: validation (including expr
// compilation) happens before a set is stored, never per evaluation.
type InMemoryControlStore struct {
	current atomic.Pointer[controlSet]
	mu      sync.Mutex // serializes writers
}

func NewInMemoryControlStore(initial []*core.AccessControl) *InMemoryControlStore {
	s := &InMemoryControlStore{}
	s.current.Store(buildSet(initial))
	return s
}

func buildSet(controls []*core.AccessControl) *controlSet {
	set := &controlSet{
		byKey: make(map[core.ResourceKey]*core.AccessControl, len(controls)),
		all:   make([]*core.AccessControl, 0, len(controls)),
	}
	for _, control := range controls {
		set.byKey[control.Key()] = control
		set.all = append(set.all, control)
	}
	// stable listing order for the admin API, independent of input order
	sort.SliceStable(set.all, func(i, j int) bool {
		if set.all[i].ResourceType != set.all[j].ResourceType {
			return set.all[i].ResourceType < set.all[j].ResourceType
		}
		return set.all[i].ResourceID < set.all[j].ResourceID
	})
	return set
}

func (s *InMemoryControlStore) Get(_ context.Context, resourceType, resourceID string) (*core.AccessControl, error) {
	set := s.current.Load()
	control, ok := set.byKey[core.ResourceKey{Type: resourceType, ID: resourceID}]
	if !ok {
		return nil, core.ErrControlNotFound
	}
	return control, nil
}

func (s *InMemoryControlStore) List(_ context.Context, opts core.ListOptions) ([]*core.AccessControl, int, error) {
	set := s.current.Load()

	filtered := make([]*core.AccessControl, 0, len(set.all))
	for _, control := range set.all {
		if opts.ResourceType != "" && control.ResourceType != opts.ResourceType {
			continue
		}
		if opts.Search != "" && !matchesSearch(control, opts.Search) {
			continue
		}
		filtered = append(filtered, control)
	}

	total := len(filtered)

	offset := opts.Offset
	if offset > total {
		offset = total
	}
	filtered = filtered[offset:]

	if opts.Limit > 0 && opts.Limit < len(filtered) {
		filtered = filtered[:opts.Limit]
	}

	return filtered, total, nil
}

func (s *InMemoryControlStore) ReplaceAll(_ context.Context, controls []*core.AccessControl) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Store(buildSet(controls))
	return nil
}

func matchesSearch(control *core.AccessControl, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(control.Name), needle) ||
		strings.Contains(strings.ToLower(control.ResourceType), needle) ||
		strings.Contains(strings.ToLower(control.ResourceID), needle)
}
