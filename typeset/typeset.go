// Package typeset implements the type-set lattice of the supertype solver.
//
// A TypeSet is the set of types a constraint variable may still resolve to. Only four
// shapes are ever needed, because a single solve only decides between one subtype and
// one supertype:
//
//   - Universe: nothing is known yet
//   - Empty: no type satisfies the constraints
//   - Singleton(t): exactly t
//   - Tuple(sub, sup): either the subtype or the supertype, resolved to the supertype
package typeset

import (
	"fmt"
	"github.com/phasereditor2d/supertype/ttype"
)

type TypeSet interface {
	// RestrictedTo is the meet of the receiver, the descendant, with other, the ancestor
	RestrictedTo(other TypeSet) TypeSet
	// ChooseSingleType picks the type a variable with this estimate resolves to
	ChooseSingleType() (ttype.Type, bool)
	String() string

	isTypeSet()
}

// InvariantError is raised, as a panic, when two sets cannot be combined under the
// assumption that one solve only ever involves one (subtype, supertype) pair
type InvariantError struct {
	Receiver TypeSet
	Other    TypeSet
	Reason   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("typeset: cannot restrict %s to %s: %s", e.Receiver, e.Other, e.Reason)
}

type emptySet struct{}
type universeSet struct{}

type singletonSet struct {
	t ttype.Type
}

type tupleSet struct {
	sub ttype.Type
	sup ttype.Type
}

var (
	empty    TypeSet = emptySet{}
	universe TypeSet = universeSet{}
)

func Empty() TypeSet    { return empty }
func Universe() TypeSet { return universe }

func Singleton(t ttype.Type) TypeSet {
	if t == nil {
		panic("typeset: singleton of nil type")
	}
	return singletonSet{t: t}
}

func Tuple(sub, sup ttype.Type) TypeSet {
	if sub == nil || sup == nil {
		panic("typeset: tuple with nil type")
	}
	return tupleSet{sub: sub, sup: sup}
}

func IsEmpty(s TypeSet) bool {
	_, ok := s.(emptySet)
	return ok
}

func IsUniverse(s TypeSet) bool {
	_, ok := s.(universeSet)
	return ok
}

// Equal compares two sets by value
func Equal(a, b TypeSet) bool {
	switch a := a.(type) {
	case emptySet:
		return IsEmpty(b)
	case universeSet:
		return IsUniverse(b)
	case singletonSet:
		b, ok := b.(singletonSet)
		return ok && ttype.Equal(a.t, b.t)
	case tupleSet:
		b, ok := b.(tupleSet)
		return ok && a.sameTypes(b)
	}
	return false
}

// Assignable reports whether a value of type a may be stored where b is expected,
// as far as the solver is concerned
func Assignable(a, b ttype.Type) bool {
	if ttype.Equal(a, b) || a.IsNull() || b.Erasure().IsObject() {
		return true
	}
	if a.CanAssignTo(b) {
		return true
	}
	// raw targets accept anything whose erasure is assignable to them
	return ttype.IsErased(b) && a.Erasure().CanAssignTo(b)
}

func (emptySet) isTypeSet()     {}
func (universeSet) isTypeSet()  {}
func (singletonSet) isTypeSet() {}
func (tupleSet) isTypeSet()     {}

func (emptySet) String() string    { return "{}" }
func (universeSet) String() string { return "{*}" }
func (s singletonSet) String() string {
	return fmt.Sprintf("{%s}", s.t.Name())
}
func (s tupleSet) String() string {
	return fmt.Sprintf("{%s, %s}", s.sub.Name(), s.sup.Name())
}

func (emptySet) ChooseSingleType() (ttype.Type, bool)    { return nil, false }
func (universeSet) ChooseSingleType() (ttype.Type, bool) { return nil, false }
func (s singletonSet) ChooseSingleType() (ttype.Type, bool) {
	return s.t, true
}

// ChooseSingleType prefers the supertype, which is the point of the refactoring
func (s tupleSet) ChooseSingleType() (ttype.Type, bool) {
	return s.sup, true
}

func (e emptySet) RestrictedTo(other TypeSet) TypeSet {
	return e
}

func (universeSet) RestrictedTo(other TypeSet) TypeSet {
	return other
}

func (s singletonSet) RestrictedTo(other TypeSet) TypeSet {
	switch other := other.(type) {
	case universeSet:
		return s
	case emptySet:
		return other
	case singletonSet:
		if ttype.Equal(s.t, other.t) || Assignable(s.t, other.t) {
			return s
		}
		return empty
	case tupleSet:
		if s.t.IsNull() || Assignable(s.t.Erasure(), other.sup.Erasure()) {
			return s
		}
		return Singleton(other.sub)
	}
	panic(&InvariantError{Receiver: s, Other: other, Reason: fmt.Sprintf("unknown set %T", other)})
}

func (s tupleSet) RestrictedTo(other TypeSet) TypeSet {
	switch other := other.(type) {
	case universeSet:
		return s
	case emptySet:
		return other
	case singletonSet:
		if Assignable(s.sub, other.t) && Assignable(s.sup, other.t) {
			return s
		}
		target := other.t.Erasure()
		if Assignable(s.sub.Erasure(), target) && Assignable(s.sup.Erasure(), target) {
			return s
		}
		return Singleton(s.sub)
	case tupleSet:
		if !s.sameTypes(other) {
			panic(&InvariantError{Receiver: s, Other: other, Reason: "tuples over different subtype/supertype pairs"})
		}
		return s
	}
	panic(&InvariantError{Receiver: s, Other: other, Reason: fmt.Sprintf("unknown set %T", other)})
}

func (s tupleSet) sameTypes(other tupleSet) bool {
	return ttype.Equal(s.sub, other.sub) && ttype.Equal(s.sup, other.sup)
}
