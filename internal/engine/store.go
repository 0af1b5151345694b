package engine

// Store owns every entity of one session.
// IDs come from a monotonic counter and are never reused within the store.
type Store struct {
	next  int
	items []*Entity
	index map[int]*Entity
}

// NewStore creates an empty entity store.
func NewStore() *Store {
	return &Store{
		items: make([]*Entity, 0, 32),
		index: make(map[int]*Entity),
	}
}

// Add assigns the entity a fresh ID and stores it.
func (s *Store) Add(e *Entity) *Entity {
	s.next++
	e.ID = s.next
	e.dead = false
	s.items = append(s.items, e)
	s.index[e.ID] = e
	return e
}

// Get returns a live entity by ID.
func (s *Store) Get(id int) (*Entity, bool) {
	e, ok := s.index[id]
	if !ok || e.dead {
		return nil, false
	}
	return e, true
}

// Kill marks an entity dead. It returns false if the entity was already dead
// or unknown, so callers can use it as a once-only claim.
func (s *Store) Kill(id int) bool {
	e, ok := s.index[id]
	if !ok || e.dead {
		return false
	}
	e.dead = true
	return true
}

// Sweep removes dead entities and returns how many were removed.
func (s *Store) Sweep() int {
	kept := s.items[:0]
	removed := 0
	for _, e := range s.items {
		if e.dead {
			delete(s.index, e.ID)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Clear the tail so removed entities can be collected
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = nil
	}
	s.items = kept
	return removed
}

// Live returns a snapshot of the live entities in insertion order.
func (s *Store) Live() []*Entity {
	out := make([]*Entity, 0, len(s.items))
	for _, e := range s.items {
		if !e.dead {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of live entities with the given tag.
func (s *Store) Count(tag string) int {
	n := 0
	for _, e := range s.items {
		if !e.dead && e.Tag == tag {
			n++
		}
	}
	return n
}

// CountKind returns the number of live entities of the given kind.
func (s *Store) CountKind(k Kind) int {
	n := 0
	for _, e := range s.items {
		if !e.dead && e.Kind == k {
			n++
		}
	}
	return n
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	n := 0
	for _, e := range s.items {
		if !e.dead {
			n++
		}
	}
	return n
}
