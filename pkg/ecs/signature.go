package ecs

import (
	"fmt"
	"math/bits"
)

// ComponentType is the bit index a registered component type occupies in a
// Signature.
type ComponentType uint8

// MaxComponents is the width of a Signature.
const MaxComponents = 32

// Signature is a bitset over registered component types.
type Signature uint32

// NewSignature builds a signature with the given bits set.
func NewSignature(types ...ComponentType) Signature {
	var s Signature
	for _, t := range types {
		s = s.With(t)
	}
	return s
}

// With returns s with bit t set.
func (s Signature) With(t ComponentType) Signature {
	mustBeComponentType(t)
	return s | 1<<t
}

// Without returns s with bit t cleared.
func (s Signature) Without(t ComponentType) Signature {
	mustBeComponentType(t)
	return s &^ (1 << t)
}

// Has reports whether bit t is set.
func (s Signature) Has(t ComponentType) bool {
	return t < MaxComponents && s&(1<<t) != 0
}

// Contains reports whether every bit of required is also set in s.
func (s Signature) Contains(required Signature) bool {
	return s&required == required
}

// Len returns the number of bits set.
func (s Signature) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s Signature) String() string {
	return fmt.Sprintf("%032b", uint32(s))
}

func mustBeComponentType(t ComponentType) {
	if t >= MaxComponents {
		panic(fmt.Sprintf("ecs: component type %d out of range [0, %d)", t, MaxComponents))
	}
}
