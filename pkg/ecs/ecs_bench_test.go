package ecs

import "testing"

func BenchmarkCreateDestroy(b *testing.B) {
	w := NewWorld()
	RegisterComponent[testPosition](w)

	for b.Loop() {
		e := w.CreateEntity()
		AddComponent(w, e, testPosition{X: 1})
		w.DestroyEntity(e)
	}
}

func BenchmarkMovementSystem(b *testing.B) {
	w := NewWorld()
	posType := RegisterComponent[testPosition](w)
	velType := RegisterComponent[testVelocity](w)
	RegisterSystem(w, &movementSystem{})
	SetSystemSignature[*movementSystem](w, NewSignature(posType, velType))

	for range 1000 {
		e := w.CreateEntity()
		AddComponent(w, e, testPosition{})
		AddComponent(w, e, testVelocity{X: 1, Y: 1})
	}

	for b.Loop() {
		w.UpdateAllSystems()
	}
}

func BenchmarkAddRemoveComponent(b *testing.B) {
	w := NewWorld()
	posType := RegisterComponent[testPosition](w)
	velType := RegisterComponent[testVelocity](w)
	RegisterSystem(w, &movementSystem{})
	SetSystemSignature[*movementSystem](w, NewSignature(posType, velType))

	e := w.CreateEntity()
	AddComponent(w, e, testPosition{})

	for b.Loop() {
		AddComponent(w, e, testVelocity{})
		RemoveComponent[testVelocity](w, e)
	}
}
