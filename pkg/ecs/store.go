package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

// componentArray is the one place where stores of different value types are
// handled uniformly: the world tells every store that an entity died.
type componentArray interface {
	NotifyEntityDestroyed(e Entity)
}

// A ComponentStore keeps every value of one component type in a dense slice.
// sparse maps an entity to its dense index and dense maps the index back, so
// insert, remove and lookup are O(1). Removal moves the last value into the
// freed slot.
type ComponentStore[T any] struct {
	typ    reflect.Type
	sparse map[Entity]int
	dense  []Entity
	data   []T
}

func newComponentStore[T any]() *ComponentStore[T] {
	return &ComponentStore[T]{
		typ:    reflect.TypeFor[T](),
		sparse: make(map[Entity]int),
	}
}

// Insert stores value for e. Inserting twice for the same entity panics.
func (s *ComponentStore[T]) Insert(e Entity, value T) {
	if _, ok := s.sparse[e]; ok {
		panic(fmt.Sprintf("ecs: component %v added to entity %d more than once", s.typ, e))
	}

	s.sparse[e] = len(s.data)
	s.dense = append(s.dense, e)
	s.data = append(s.data, value)
}

// Remove deletes e's value. Removing a value e does not have panics.
func (s *ComponentStore[T]) Remove(e Entity) {
	idx, ok := s.sparse[e]
	if !ok {
		panic(fmt.Sprintf("ecs: removing component %v from entity %d which does not have it", s.typ, e))
	}

	lastIndex := len(s.data) - 1
	if idx != lastIndex {
		lastEntity := s.dense[lastIndex]
		s.data[idx] = s.data[lastIndex]
		s.dense[idx] = lastEntity
		s.sparse[lastEntity] = idx
	}

	var zero T
	s.data[lastIndex] = zero
	s.data = s.data[:lastIndex]
	s.dense = s.dense[:lastIndex]

	delete(s.sparse, e)
}

// Get returns a pointer into the dense slice. The pointer is valid only until
// the next Insert or Remove on this store; copy the value out to keep it.
func (s *ComponentStore[T]) Get(e Entity) *T {
	idx, ok := s.sparse[e]
	if !ok {
		panic(fmt.Sprintf("ecs: entity %d has no component %v", e, s.typ))
	}
	return &s.data[idx]
}

// Lookup is Get without the panic.
func (s *ComponentStore[T]) Lookup(e Entity) (*T, bool) {
	idx, ok := s.sparse[e]
	if !ok {
		return nil, false
	}
	return &s.data[idx], true
}

func (s *ComponentStore[T]) Has(e Entity) bool {
	_, ok := s.sparse[e]
	return ok
}

// Len returns the number of stored values.
func (s *ComponentStore[T]) Len() int {
	return len(s.data)
}

// NotifyEntityDestroyed drops e's value if it has one.
func (s *ComponentStore[T]) NotifyEntityDestroyed(e Entity) {
	if s.Has(e) {
		s.Remove(e)
	}
}

// All iterates the store in dense order. The store must not be mutated while
// iterating.
func (s *ComponentStore[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i, e := range s.dense {
			if !yield(e, &s.data[i]) {
				return
			}
		}
	}
}
