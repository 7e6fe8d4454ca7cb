package ecs

import "errors"

var ErrEntityNotAlive = errors.New("ecs: entity not alive")

type remover interface {
	remove(id entityID)
}

// World owns entities, their component stores and the event queue.
type World struct {
	entities entityStore
	stores   []remover
	events   EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{}
}

// NewStore registers a component store whose values are dropped when their
// entity is destroyed.
func NewStore[T any](w *World) *SparseSet[T] {
	s := &SparseSet[T]{}
	w.stores = append(w.stores, s)
	return s
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	e := w.entities.create()
	w.events.Push(Event{Kind: EventSpawned, Entity: e})
	return e
}

// DestroyEntity frees e and removes its components from every store.
func DestroyEntity(w *World, e Entity) bool {
	if !w.entities.destroy(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e.id())
	}
	w.events.Push(Event{Kind: EventDestroyed, Entity: e})
	return true
}

// IsAlive reports whether an entity handle is still valid.
func IsAlive(w *World, e Entity) bool {
	return w.entities.isAlive(e)
}

// Add sets the component for a live entity.
func Add[T any](w *World, s *SparseSet[T], e Entity, v T) error {
	if !IsAlive(w, e) {
		return ErrEntityNotAlive
	}
	s.Set(e, v)
	return nil
}

// ForEach visits every value in s. fn may mutate through the pointer but
// must not add or remove components of s.
func ForEach[T any](s *SparseSet[T], fn func(Entity, *T)) {
	for i := range s.Entities() {
		fn(s.denseEntities[i], &s.denseValues[i])
	}
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}
