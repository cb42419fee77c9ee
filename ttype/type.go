// Package ttype holds the semantic view of types the supertype solver reasons about,
// and the binding interfaces through which an AST collaborator hands types to it.
package ttype

// Type is a resolved semantic type.
//
// Two types are the same type if and only if their keys are equal
type Type interface {
	Key() string
	Name() string
	// Erasure returns the type with generic arguments removed
	Erasure() Type
	IsNull() bool
	// IsObject reports whether this is the universal object type every reference type can be assigned to
	IsObject() bool
	IsPrimitive() bool
	CanAssignTo(other Type) bool
}

// Equal compares types by key. Two nil types are equal
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Key() == b.Key()
}

// IsErased reports whether t is its own erasure, ie a raw or non-generic type
func IsErased(t Type) bool {
	return Equal(t, t.Erasure())
}

// SameErasure reports whether a and b erase to the same type
func SameErasure(a, b Type) bool {
	return Equal(a.Erasure(), b.Erasure())
}
