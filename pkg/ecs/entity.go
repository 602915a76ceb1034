package ecs

import "fmt"

// Entity identifies a game object. It carries no data of its own; an entity
// exists by virtue of having a signature and zero or more components.
type Entity uint32

// MaxEntities is the size of the entity id universe.
const MaxEntities = 5000

// entityAllocator hands out ids from a FIFO of free ids. Recycling in FIFO
// order spreads reuse over the whole universe, which makes stale ids surface
// sooner than stack-style reuse would.
type entityAllocator struct {
	free       [MaxEntities]Entity
	head       int
	available  int
	alive      [MaxEntities]bool
	signatures [MaxEntities]Signature
	living     int
}

func newEntityAllocator() *entityAllocator {
	a := &entityAllocator{available: MaxEntities}
	for i := range a.free {
		a.free[i] = Entity(i)
	}
	return a
}

func (a *entityAllocator) create() (Entity, error) {
	if a.living >= MaxEntities {
		return 0, ErrEntityPoolFull
	}

	e := a.free[a.head]
	a.head = (a.head + 1) % MaxEntities
	a.available--

	a.alive[e] = true
	a.living++
	return e, nil
}

func (a *entityAllocator) destroy(e Entity) {
	a.mustBeAlive(e)

	a.signatures[e] = 0
	a.alive[e] = false

	tail := (a.head + a.available) % MaxEntities
	a.free[tail] = e
	a.available++
	a.living--
}

func (a *entityAllocator) signature(e Entity) Signature {
	mustBeInRange(e)
	return a.signatures[e]
}

func (a *entityAllocator) setSignature(e Entity, sig Signature) {
	mustBeInRange(e)
	a.signatures[e] = sig
}

func (a *entityAllocator) isAlive(e Entity) bool {
	return e < MaxEntities && a.alive[e]
}

func (a *entityAllocator) mustBeAlive(e Entity) {
	mustBeInRange(e)
	if !a.alive[e] {
		panic(fmt.Sprintf("ecs: entity %d is not alive", e))
	}
}

func mustBeInRange(e Entity) {
	if e >= MaxEntities {
		panic(fmt.Sprintf("ecs: entity %d out of range [0, %d)", e, MaxEntities))
	}
}
