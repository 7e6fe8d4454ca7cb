package ecs

// SparseSet is a cache-friendly storage for values keyed by entity id.
type SparseSet[T any] struct {
	denseEntities []Entity
	denseValues   []T
	sparse        []int
}

// Has returns true if e has a value in the set.
func (s *SparseSet[T]) Has(e Entity) bool {
	if s == nil {
		return false
	}
	idx, ok := s.index(e)
	return ok && s.denseEntities[idx] == e
}

func (s *SparseSet[T]) index(e Entity) (int, bool) {
	id := int(e.id())
	if id <= 0 || id-1 >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id-1]
	return idx, idx >= 0 && idx < len(s.denseEntities)
}

// Get returns a pointer to the value for e, or nil. The pointer is invalidated
// by the next Set or Remove.
func (s *SparseSet[T]) Get(e Entity) *T {
	if !s.Has(e) {
		return nil
	}
	return &s.denseValues[s.sparse[e.id()-1]]
}

// Set inserts or updates the value for e.
func (s *SparseSet[T]) Set(e Entity, v T) {
	if s == nil || !e.Valid() {
		return
	}
	id := int(e.id())
	for len(s.sparse) < id {
		s.sparse = append(s.sparse, -1)
	}
	if idx, ok := s.index(e); ok {
		// a stale handle for the same slot is replaced
		s.denseEntities[idx] = e
		s.denseValues[idx] = v
		return
	}
	s.denseEntities = append(s.denseEntities, e)
	s.denseValues = append(s.denseValues, v)
	s.sparse[id-1] = len(s.denseEntities) - 1
}

// Remove deletes the value for e if present.
func (s *SparseSet[T]) Remove(e Entity) bool {
	if s == nil {
		return false
	}
	idx, ok := s.index(e)
	if !ok || s.denseEntities[idx] != e {
		return false
	}
	last := len(s.denseEntities) - 1
	lastEnt := s.denseEntities[last]

	s.denseEntities[idx] = lastEnt
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[lastEnt.id()-1] = idx

	var zero T
	s.denseValues[last] = zero
	s.denseEntities = s.denseEntities[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[e.id()-1] = -1
	return true
}

func (s *SparseSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseEntities)
}

// Entities returns the dense entity list.
func (s *SparseSet[T]) Entities() []Entity {
	if s == nil {
		return nil
	}
	return s.denseEntities
}

// Values returns the dense value list, parallel to Entities.
func (s *SparseSet[T]) Values() []T {
	if s == nil {
		return nil
	}
	return s.denseValues
}

func (s *SparseSet[T]) remove(id entityID) {
	if s == nil || id == 0 || int(id) > len(s.sparse) {
		return
	}
	idx := s.sparse[id-1]
	if idx < 0 || idx >= len(s.denseEntities) {
		return
	}
	s.Remove(s.denseEntities[idx])
}
