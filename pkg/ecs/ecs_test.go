package ecs

import (
	"errors"
	"slices"
	"testing"
)

type testPosition struct{ X, Y float32 }
type testVelocity struct{ X, Y float32 }
type testTag struct{}

type movementSystem struct {
	SystemBase
	updates int
}

func (s *movementSystem) Update(w *World) {
	s.updates++
	for _, e := range s.Entities() {
		pos := GetComponent[testPosition](w, e)
		vel := GetComponent[testVelocity](w, e)
		pos.X += vel.X
		pos.Y += vel.Y
	}
}

type tagSystem struct {
	SystemBase
}

func (s *tagSystem) Update(*World) {}

type recordingSystem struct {
	SystemBase
	name string
	log  *[]string
}

func (s *recordingSystem) Update(*World) {
	*s.log = append(*s.log, s.name)
}

type firstRecorder struct{ recordingSystem }
type secondRecorder struct{ recordingSystem }
type thirdRecorder struct{ recordingSystem }

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

// TestEntityIdsAreFifo tests that ids come out in order and destroyed ids are
// reused only after every never-used id.
func TestEntityIdsAreFifo(t *testing.T) {
	w := NewWorld()

	e0 := w.CreateEntity()
	e1 := w.CreateEntity()
	if e0 != 0 || e1 != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", e0, e1)
	}

	w.DestroyEntity(e0)

	if e := w.CreateEntity(); e != 2 {
		t.Errorf("expected fresh id 2 before reuse, got %d", e)
	}
	if w.Living() != 2 {
		t.Errorf("expected 2 living entities, got %d", w.Living())
	}
}

// TestEntityPoolExhaustion tests the full pool and reuse of the oldest free id.
func TestEntityPoolExhaustion(t *testing.T) {
	w := NewWorld()

	for i := range MaxEntities {
		if e := w.CreateEntity(); e != Entity(i) {
			t.Fatalf("expected id %d, got %d", i, e)
		}
	}

	if _, err := w.TryCreateEntity(); !errors.Is(err, ErrEntityPoolFull) {
		t.Errorf("expected ErrEntityPoolFull, got %v", err)
	}
	expectPanic(t, "CreateEntity on full pool", func() { w.CreateEntity() })

	w.DestroyEntity(7)
	w.DestroyEntity(3)

	if e := w.CreateEntity(); e != 7 {
		t.Errorf("expected first freed id 7, got %d", e)
	}
	if e := w.CreateEntity(); e != 3 {
		t.Errorf("expected second freed id 3, got %d", e)
	}
}

// TestDestroyedEntityMisuse tests that stale and out of range ids panic.
func TestDestroyedEntityMisuse(t *testing.T) {
	w := NewWorld()
	RegisterComponent[testPosition](w)

	e := w.CreateEntity()
	w.DestroyEntity(e)

	if w.Alive(e) {
		t.Error("destroyed entity reported alive")
	}

	expectPanic(t, "double destroy", func() { w.DestroyEntity(e) })
	expectPanic(t, "add to dead entity", func() { AddComponent(w, e, testPosition{}) })
	expectPanic(t, "out of range", func() { HasComponent[testPosition](w, MaxEntities) })
}

// TestComponentRegistration tests bit assignment and registration limits.
func TestComponentRegistration(t *testing.T) {
	w := NewWorld()

	if ct := RegisterComponent[testPosition](w); ct != 0 {
		t.Errorf("expected first type 0, got %d", ct)
	}
	if ct := RegisterComponent[testVelocity](w); ct != 1 {
		t.Errorf("expected second type 1, got %d", ct)
	}
	if ComponentTypeOf[testVelocity](w) != 1 {
		t.Error("ComponentTypeOf disagrees with registration")
	}

	expectPanic(t, "duplicate registration", func() { RegisterComponent[testPosition](w) })
	expectPanic(t, "unregistered type", func() { ComponentTypeOf[testTag](w) })
}

// TestComponentRegistrationLimit tests that the 33rd component type panics.
func TestComponentRegistrationLimit(t *testing.T) {
	w := NewWorld()

	register := []func(){
		func() { RegisterComponent[[1]byte](w) }, func() { RegisterComponent[[2]byte](w) },
		func() { RegisterComponent[[3]byte](w) }, func() { RegisterComponent[[4]byte](w) },
		func() { RegisterComponent[[5]byte](w) }, func() { RegisterComponent[[6]byte](w) },
		func() { RegisterComponent[[7]byte](w) }, func() { RegisterComponent[[8]byte](w) },
		func() { RegisterComponent[[9]byte](w) }, func() { RegisterComponent[[10]byte](w) },
		func() { RegisterComponent[[11]byte](w) }, func() { RegisterComponent[[12]byte](w) },
		func() { RegisterComponent[[13]byte](w) }, func() { RegisterComponent[[14]byte](w) },
		func() { RegisterComponent[[15]byte](w) }, func() { RegisterComponent[[16]byte](w) },
		func() { RegisterComponent[[17]byte](w) }, func() { RegisterComponent[[18]byte](w) },
		func() { RegisterComponent[[19]byte](w) }, func() { RegisterComponent[[20]byte](w) },
		func() { RegisterComponent[[21]byte](w) }, func() { RegisterComponent[[22]byte](w) },
		func() { RegisterComponent[[23]byte](w) }, func() { RegisterComponent[[24]byte](w) },
		func() { RegisterComponent[[25]byte](w) }, func() { RegisterComponent[[26]byte](w) },
		func() { RegisterComponent[[27]byte](w) }, func() { RegisterComponent[[28]byte](w) },
		func() { RegisterComponent[[29]byte](w) }, func() { RegisterComponent[[30]byte](w) },
		func() { RegisterComponent[[31]byte](w) }, func() { RegisterComponent[[32]byte](w) },
	}
	for _, fn := range register {
		fn()
	}

	expectPanic(t, "33rd component", func() { RegisterComponent[[33]byte](w) })
}

// TestComponentAddRemove tests signature bookkeeping around add and remove.
func TestComponentAddRemove(t *testing.T) {
	w := NewWorld()
	posType := RegisterComponent[testPosition](w)
	velType := RegisterComponent[testVelocity](w)

	e := w.CreateEntity()
	AddComponent(w, e, testPosition{X: 10, Y: 20})
	AddComponent(w, e, testVelocity{X: 1})

	if want := NewSignature(posType, velType); w.Signature(e) != want {
		t.Errorf("expected signature %v, got %v", want, w.Signature(e))
	}
	if pos := GetComponent[testPosition](w, e); pos.X != 10 || pos.Y != 20 {
		t.Errorf("unexpected position %+v", *pos)
	}

	expectPanic(t, "duplicate add", func() { AddComponent(w, e, testPosition{}) })

	RemoveComponent[testVelocity](w, e)

	if HasComponent[testVelocity](w, e) {
		t.Error("velocity still present after remove")
	}
	if w.Signature(e).Has(velType) {
		t.Error("velocity bit still set after remove")
	}

	expectPanic(t, "remove missing", func() { RemoveComponent[testVelocity](w, e) })
	expectPanic(t, "get missing", func() { GetComponent[testVelocity](w, e) })
}

// TestStoreSwapRemove tests that removing from the middle keeps the rest
// reachable by entity.
func TestStoreSwapRemove(t *testing.T) {
	w := NewWorld()
	RegisterComponent[testPosition](w)

	a, b, c := w.CreateEntity(), w.CreateEntity(), w.CreateEntity()
	AddComponent(w, a, testPosition{X: 1})
	AddComponent(w, b, testPosition{X: 2})
	AddComponent(w, c, testPosition{X: 3})

	RemoveComponent[testPosition](w, a)

	store := StoreOf[testPosition](w)
	if store.Len() != 2 {
		t.Fatalf("expected 2 stored values, got %d", store.Len())
	}
	if GetComponent[testPosition](w, b).X != 2 || GetComponent[testPosition](w, c).X != 3 {
		t.Error("values moved to the wrong entity after swap remove")
	}

	seen := map[Entity]float32{}
	for e, pos := range store.All() {
		seen[e] = pos.X
	}
	if len(seen) != 2 || seen[b] != 2 || seen[c] != 3 {
		t.Errorf("unexpected iteration result %v", seen)
	}
}

// TestDestroyDropsComponents tests that destroying an entity clears its
// stores and system memberships before the id is reused.
func TestDestroyDropsComponents(t *testing.T) {
	w := NewWorld()
	posType := RegisterComponent[testPosition](w)
	sys := RegisterSystem(w, &tagSystem{})
	SetSystemSignature[*tagSystem](w, NewSignature(posType))

	e := w.CreateEntity()
	AddComponent(w, e, testPosition{X: 5})
	w.DestroyEntity(e)

	if StoreOf[testPosition](w).Len() != 0 {
		t.Error("store still holds destroyed entity's value")
	}
	if sys.Contains(e) {
		t.Error("system still holds destroyed entity")
	}
	if w.Signature(e) != 0 {
		t.Error("signature not reset on destroy")
	}
}

// TestSystemMembership tests two systems with overlapping signatures.
func TestSystemMembership(t *testing.T) {
	w := NewWorld()
	posType := RegisterComponent[testPosition](w)
	velType := RegisterComponent[testVelocity](w)

	movement := RegisterSystem(w, &movementSystem{})
	SetSystemSignature[*movementSystem](w, NewSignature(posType, velType))
	tagged := RegisterSystem(w, &tagSystem{})
	SetSystemSignature[*tagSystem](w, NewSignature(posType))

	e1 := w.CreateEntity()
	AddComponent(w, e1, testPosition{})
	AddComponent(w, e1, testVelocity{X: 2, Y: 1})

	e2 := w.CreateEntity()
	AddComponent(w, e2, testPosition{})

	if got := movement.Entities(); !slices.Equal(got, []Entity{e1}) {
		t.Errorf("movement members: expected [%d], got %v", e1, got)
	}
	if got := tagged.Entities(); !slices.Equal(got, []Entity{e1, e2}) {
		t.Errorf("tag members: expected [%d %d], got %v", e1, e2, got)
	}

	RemoveComponent[testVelocity](w, e1)

	if movement.Len() != 0 {
		t.Errorf("movement should be empty, got %v", movement.Entities())
	}
	if !tagged.Contains(e1) {
		t.Error("tag system lost e1 after unrelated remove")
	}
}

// TestSetSystemSignatureLate tests that a signature set after entities exist
// recomputes membership.
func TestSetSystemSignatureLate(t *testing.T) {
	w := NewWorld()
	posType := RegisterComponent[testPosition](w)
	RegisterComponent[testVelocity](w)

	e1 := w.CreateEntity()
	AddComponent(w, e1, testPosition{})
	e2 := w.CreateEntity()
	AddComponent(w, e2, testVelocity{})

	sys := RegisterSystem(w, &tagSystem{})
	if sys.Len() != 2 {
		t.Errorf("empty signature should match all entities, got %v", sys.Entities())
	}

	SetSystemSignature[*tagSystem](w, NewSignature(posType))
	if got := sys.Entities(); !slices.Equal(got, []Entity{e1}) {
		t.Errorf("expected [%d], got %v", e1, got)
	}

	expectPanic(t, "duplicate system", func() { RegisterSystem(w, &tagSystem{}) })
	expectPanic(t, "unregistered system", func() { SetSystemSignature[*movementSystem](w, 0) })
}

// TestUpdateAllSystems tests that systems run in Order, ties by registration.
func TestUpdateAllSystems(t *testing.T) {
	w := NewWorld()
	var log []string

	first := &firstRecorder{recordingSystem{name: "first", log: &log}}
	second := &secondRecorder{recordingSystem{name: "second", log: &log}}
	third := &thirdRecorder{recordingSystem{name: "third", log: &log}}

	first.Order = 10
	second.Order = 0
	third.Order = 0
	third.Phase = PhaseRender

	RegisterSystem(w, first)
	RegisterSystem(w, second)
	RegisterSystem(w, third)

	w.UpdateAllSystems()
	if !slices.Equal(log, []string{"second", "first"}) {
		t.Errorf("unexpected update order %v", log)
	}

	log = log[:0]
	w.RunPhase(PhaseRender)
	if !slices.Equal(log, []string{"third"}) {
		t.Errorf("unexpected render order %v", log)
	}
}

// TestMovementSystem tests a system mutating components through pointers.
func TestMovementSystem(t *testing.T) {
	w := NewWorld()
	posType := RegisterComponent[testPosition](w)
	velType := RegisterComponent[testVelocity](w)
	sys := RegisterSystem(w, &movementSystem{})
	SetSystemSignature[*movementSystem](w, NewSignature(posType, velType))

	e := w.CreateEntity()
	AddComponent(w, e, testPosition{X: 1, Y: 1})
	AddComponent(w, e, testVelocity{X: 2, Y: 3})

	for range 3 {
		w.UpdateAllSystems()
	}

	if sys.updates != 3 {
		t.Errorf("expected 3 updates, got %d", sys.updates)
	}
	if pos := GetComponent[testPosition](w, e); pos.X != 7 || pos.Y != 10 {
		t.Errorf("expected (7, 10), got (%v, %v)", pos.X, pos.Y)
	}
	if SystemOf[*movementSystem](w) != sys {
		t.Error("SystemOf returned a different instance")
	}
}

// TestSignature tests the bitset helpers.
func TestSignature(t *testing.T) {
	s := NewSignature(0, 3)
	if !s.Has(0) || !s.Has(3) || s.Has(1) {
		t.Errorf("unexpected bits %v", s)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 bits, got %d", s.Len())
	}
	if !s.Contains(NewSignature(3)) || s.Contains(NewSignature(1)) {
		t.Error("Contains gave the wrong answer")
	}
	if s.Without(0) != NewSignature(3) {
		t.Error("Without did not clear the bit")
	}
	expectPanic(t, "bit out of range", func() { s.With(MaxComponents) })
}
