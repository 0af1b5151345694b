package level

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownLevel is returned when a level ID or ordinal is not registered.
var ErrUnknownLevel = errors.New("level: unknown level")

// Info contains metadata about a registered level.
type Info struct {
	ID      string
	Title   string
	Ordinal int
	Mode    string
}

// Registry holds the playable levels. It is safe for concurrent use; the
// watcher replaces its contents while sessions look levels up.
type Registry struct {
	mu     sync.RWMutex
	levels map[string]Level
	order  []string // IDs by ordinal
}

// NewRegistry creates a registry holding levels.
func NewRegistry(levels []Level) (*Registry, error) {
	r := &Registry{}
	if err := r.Replace(levels); err != nil {
		return nil, err
	}
	return r, nil
}

// Replace swaps the registry contents atomically.
// IDs and ordinals must be unique; on error the registry is unchanged.
func (r *Registry) Replace(levels []Level) error {
	byID := make(map[string]Level, len(levels))
	ordinals := make(map[int]string, len(levels))
	for _, lvl := range levels {
		if _, exists := byID[lvl.ID()]; exists {
			return fmt.Errorf("level: %q registered twice", lvl.ID())
		}
		if other, exists := ordinals[lvl.Ordinal()]; exists {
			return fmt.Errorf("level: %q and %q share ordinal %d", other, lvl.ID(), lvl.Ordinal())
		}
		byID[lvl.ID()] = lvl
		ordinals[lvl.Ordinal()] = lvl.ID()
	}

	order := make([]string, 0, len(byID))
	for id := range byID {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		return byID[order[i]].Ordinal() < byID[order[j]].Ordinal()
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = byID
	r.order = order
	return nil
}

// List returns information about all registered levels, sorted by ordinal.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		lvl := r.levels[id]
		result = append(result, Info{
			ID:      id,
			Title:   lvl.Title(),
			Ordinal: lvl.Ordinal(),
			Mode:    string(lvl.Spec.Mode),
		})
	}
	return result
}

// Get returns a level by ID.
func (r *Registry) Get(id string) (Level, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lvl, ok := r.levels[id]
	if !ok {
		return Level{}, fmt.Errorf("%w %q", ErrUnknownLevel, id)
	}
	return lvl, nil
}

// ByOrdinal returns the level at the given position in the unlock order.
func (r *Registry) ByOrdinal(n int) (Level, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, lvl := range r.levels {
		if lvl.Ordinal() == n {
			return lvl, nil
		}
	}
	return Level{}, fmt.Errorf("%w at ordinal %d", ErrUnknownLevel, n)
}

// Exists checks if a level with the given ID is registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.levels[id]
	return ok
}

// Len returns the number of registered levels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.levels)
}
