package ecs

import (
	"fmt"
	"reflect"
)

// World owns entities, component stores and systems. It is not safe for
// concurrent use; all mutation is expected to happen on the tick goroutine.
type World struct {
	entities *entityAllocator

	componentTypes map[reflect.Type]ComponentType
	stores         map[reflect.Type]componentArray
	storeOrder     []componentArray

	systems       []*systemEntry
	systemsByType map[reflect.Type]*systemEntry
	runBuf        []*systemEntry
}

func NewWorld() *World {
	return &World{
		entities:       newEntityAllocator(),
		componentTypes: make(map[reflect.Type]ComponentType),
		stores:         make(map[reflect.Type]componentArray),
		systemsByType:  make(map[reflect.Type]*systemEntry),
	}
}

// ==================================================================
// Entities
// ==================================================================

// CreateEntity allocates an entity id. It panics when MaxEntities entities
// are alive; use TryCreateEntity where running out is expected.
func (w *World) CreateEntity() Entity {
	e, err := w.TryCreateEntity()
	if err != nil {
		panic("ecs: " + err.Error())
	}
	return e
}

// TryCreateEntity allocates an entity id or returns ErrEntityPoolFull.
func (w *World) TryCreateEntity() (Entity, error) {
	e, err := w.entities.create()
	if err != nil {
		return 0, err
	}
	w.signatureChanged(e, 0)
	return e, nil
}

// DestroyEntity drops every component of e, removes it from every system and
// returns its id to the pool.
func (w *World) DestroyEntity(e Entity) {
	w.entities.mustBeAlive(e)

	for _, store := range w.storeOrder {
		store.NotifyEntityDestroyed(e)
	}
	for _, entry := range w.systems {
		entry.base.remove(e)
	}

	w.entities.destroy(e)
}

// Alive reports whether e is currently allocated.
func (w *World) Alive(e Entity) bool {
	return w.entities.isAlive(e)
}

// Living returns the number of allocated entities.
func (w *World) Living() int {
	return w.entities.living
}

// Signature returns the set of component types e holds.
func (w *World) Signature(e Entity) Signature {
	return w.entities.signature(e)
}

// ==================================================================
// Components
// ==================================================================

// RegisterComponent assigns T the next free signature bit. Registering the
// same type twice, or more than MaxComponents types, panics.
func RegisterComponent[T any](w *World) ComponentType {
	t := reflect.TypeFor[T]()

	if _, ok := w.componentTypes[t]; ok {
		panic(fmt.Sprintf("ecs: component %v registered more than once", t))
	}
	if len(w.componentTypes) >= MaxComponents {
		panic(fmt.Sprintf("ecs: cannot register %v, all %d component types are in use", t, MaxComponents))
	}

	ct := ComponentType(len(w.componentTypes))
	store := newComponentStore[T]()

	w.componentTypes[t] = ct
	w.stores[t] = store
	w.storeOrder = append(w.storeOrder, store)

	return ct
}

// ComponentTypeOf returns the signature bit of T.
func ComponentTypeOf[T any](w *World) ComponentType {
	t := reflect.TypeFor[T]()
	ct, ok := w.componentTypes[t]
	if !ok {
		panic(fmt.Sprintf("ecs: component %v used before registration", t))
	}
	return ct
}

// StoreOf returns the store holding every T.
func StoreOf[T any](w *World) *ComponentStore[T] {
	t := reflect.TypeFor[T]()
	s, ok := w.stores[t]
	if !ok {
		panic(fmt.Sprintf("ecs: component %v used before registration", t))
	}
	return s.(*ComponentStore[T])
}

// AddComponent attaches value to e and updates system membership.
func AddComponent[T any](w *World, e Entity, value T) {
	w.entities.mustBeAlive(e)

	StoreOf[T](w).Insert(e, value)

	sig := w.entities.signature(e).With(ComponentTypeOf[T](w))
	w.entities.setSignature(e, sig)
	w.signatureChanged(e, sig)
}

// RemoveComponent detaches T from e and updates system membership.
func RemoveComponent[T any](w *World, e Entity) {
	w.entities.mustBeAlive(e)

	StoreOf[T](w).Remove(e)

	sig := w.entities.signature(e).Without(ComponentTypeOf[T](w))
	w.entities.setSignature(e, sig)
	w.signatureChanged(e, sig)
}

// GetComponent returns e's T. See ComponentStore.Get for how long the
// pointer stays valid.
func GetComponent[T any](w *World, e Entity) *T {
	mustBeInRange(e)
	return StoreOf[T](w).Get(e)
}

// LookupComponent returns e's T if it has one.
func LookupComponent[T any](w *World, e Entity) (*T, bool) {
	mustBeInRange(e)
	return StoreOf[T](w).Lookup(e)
}

func HasComponent[T any](w *World, e Entity) bool {
	mustBeInRange(e)
	return StoreOf[T](w).Has(e)
}
