package ecs

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

// Phase groups systems that run together. Update systems advance the
// simulation once per tick, render systems draw once per frame.
type Phase int

const (
	PhaseUpdate Phase = iota
	PhaseRender
)

// A System operates on every entity whose signature contains the system's
// required signature. Implementations embed SystemBase.
type System interface {
	Update(w *World)
	systemBase() *SystemBase
}

// SystemBase holds the live entity set of a system plus its scheduling
// fields. Order and Phase are read each time the world runs its systems.
type SystemBase struct {
	Order int
	Phase Phase

	entities []Entity
}

func (b *SystemBase) systemBase() *SystemBase {
	return b
}

// Entities returns a snapshot of the member entities in ascending order. The
// world may be mutated while ranging over it.
func (b *SystemBase) Entities() []Entity {
	return slices.Clone(b.entities)
}

func (b *SystemBase) Contains(e Entity) bool {
	_, ok := slices.BinarySearch(b.entities, e)
	return ok
}

func (b *SystemBase) Len() int {
	return len(b.entities)
}

func (b *SystemBase) insert(e Entity) {
	i, ok := slices.BinarySearch(b.entities, e)
	if !ok {
		b.entities = slices.Insert(b.entities, i, e)
	}
}

func (b *SystemBase) remove(e Entity) {
	i, ok := slices.BinarySearch(b.entities, e)
	if ok {
		b.entities = slices.Delete(b.entities, i, i+1)
	}
}

type systemEntry struct {
	typ       reflect.Type
	system    System
	base      *SystemBase
	signature Signature
}

// RegisterSystem stores sys under its type and returns it. Registering the
// same type twice panics.
func RegisterSystem[S System](w *World, sys S) S {
	t := reflect.TypeFor[S]()

	if _, ok := w.systemsByType[t]; ok {
		panic(fmt.Sprintf("ecs: system %v registered more than once", t))
	}

	entry := &systemEntry{
		typ:    t,
		system: sys,
		base:   sys.systemBase(),
	}
	w.systems = append(w.systems, entry)
	w.systemsByType[t] = entry

	w.refreshMembership(entry)
	return sys
}

// SetSystemSignature records the component set S requires and recomputes its
// membership.
func SetSystemSignature[S System](w *World, sig Signature) {
	entry := w.systemEntry(reflect.TypeFor[S]())
	entry.signature = sig
	w.refreshMembership(entry)
}

// SystemOf returns the registered instance of S.
func SystemOf[S System](w *World) S {
	return w.systemEntry(reflect.TypeFor[S]()).system.(S)
}

func (w *World) systemEntry(t reflect.Type) *systemEntry {
	entry, ok := w.systemsByType[t]
	if !ok {
		panic(fmt.Sprintf("ecs: system %v used before registration", t))
	}
	return entry
}

// UpdateAllSystems runs every update-phase system once.
func (w *World) UpdateAllSystems() {
	w.RunPhase(PhaseUpdate)
}

// RunPhase runs the systems of phase p ordered by Order ascending; systems
// with equal Order run in registration order.
func (w *World) RunPhase(p Phase) {
	run := w.runBuf[:0]
	for _, entry := range w.systems {
		if entry.base.Phase == p {
			run = append(run, entry)
		}
	}

	slices.SortStableFunc(run, func(a, b *systemEntry) int {
		return cmp.Compare(a.base.Order, b.base.Order)
	})

	for _, entry := range run {
		entry.system.Update(w)
	}

	clear(run)
	w.runBuf = run[:0]
}

func (w *World) signatureChanged(e Entity, sig Signature) {
	for _, entry := range w.systems {
		if sig.Contains(entry.signature) {
			entry.base.insert(e)
		} else {
			entry.base.remove(e)
		}
	}
}

func (w *World) refreshMembership(entry *systemEntry) {
	entry.base.entities = entry.base.entities[:0]
	for i := range MaxEntities {
		e := Entity(i)
		if w.entities.isAlive(e) && w.entities.signature(e).Contains(entry.signature) {
			entry.base.entities = append(entry.base.entities, e)
		}
	}
}
