// Package hierarchy implements a small nominal type universe: classes, interfaces,
// library types, primitives, arrays and parameterized types.
//
// Its types are at the same time ttype.Type and ttype.Binding, and Hierarchy is a
// ttype.Environment, so it can stand in for a compiler's binding resolver.
package hierarchy

import (
	"fmt"
	"github.com/phasereditor2d/supertype/ttype"
	"strings"
)

const (
	ObjectName = "Object"
	NullName   = "null"
)

var primitiveNames = []string{"boolean", "byte", "char", "short", "int", "long", "float", "double", "void"}

type kind uint8

const (
	kindClass kind = iota
	kindInterface
	kindPrimitive
	kindNull
	kindArray
	kindParameterized
)

// Hierarchy owns every type it hands out. It is not safe for concurrent mutation
type Hierarchy struct {
	named  map[string]*Named
	object *Named
	null   *Named

	creations int
}

func New() *Hierarchy {
	h := &Hierarchy{named: make(map[string]*Named)}
	h.object = h.register(&Named{kind: kindClass, name: ObjectName, library: true})
	h.null = h.register(&Named{kind: kindNull, name: NullName, library: true})
	for _, name := range primitiveNames {
		h.register(&Named{kind: kindPrimitive, name: name, library: true})
	}
	return h
}

func (h *Hierarchy) register(n *Named) *Named {
	n.h = h
	n.key = n.computeKey()
	if existing, ok := h.named[n.key]; ok {
		return existing
	}
	h.named[n.key] = n
	return n
}

func (h *Hierarchy) declare(n *Named) *Named {
	if _, ok := h.named[n.name]; ok {
		panic(fmt.Sprintf("hierarchy: type %s is already declared", n.name))
	}
	return h.register(n)
}

func (h *Hierarchy) Object() *Named { return h.object }
func (h *Hierarchy) Null() *Named   { return h.null }

// Primitive returns the primitive type called name, or nil
func (h *Hierarchy) Primitive(name string) *Named {
	n, ok := h.named[name]
	if !ok || n.kind != kindPrimitive {
		return nil
	}
	return n
}

// Class declares a class. A class without supertypes extends Object
func (h *Hierarchy) Class(name string, supers ...*Named) *Named {
	return h.declare(&Named{kind: kindClass, name: name, supers: supers})
}

func (h *Hierarchy) Interface(name string, supers ...*Named) *Named {
	return h.declare(&Named{kind: kindInterface, name: name, supers: supers})
}

// ArrayOf returns the array type of elem
func (h *Hierarchy) ArrayOf(elem *Named) *Named {
	return h.register(&Named{kind: kindArray, elem: elem, library: elem.library})
}

// Parameterized returns generic applied to args
func (h *Hierarchy) Parameterized(generic *Named, args ...*Named) *Named {
	if !generic.IsParameterizable() {
		panic(fmt.Sprintf("hierarchy: cannot parameterize %s", generic))
	}
	return h.register(&Named{kind: kindParameterized, generic: generic, args: args, library: generic.library})
}

func (h *Hierarchy) Lookup(key string) (*Named, bool) {
	n, ok := h.named[key]
	return n, ok
}

var _ ttype.Environment = &Hierarchy{}

// Create resolves a binding to the type registered under the same key
func (h *Hierarchy) Create(binding ttype.Binding) ttype.Type {
	h.creations++
	n, ok := h.named[binding.Key()]
	if !ok {
		panic(fmt.Sprintf("hierarchy: binding %s does not belong to this hierarchy", binding.Key()))
	}
	return n
}

// Creations counts calls to Create
func (h *Hierarchy) Creations() int {
	return h.creations
}

// Named is a type of a Hierarchy
type Named struct {
	h       *Hierarchy
	key     string
	kind    kind
	name    string
	supers  []*Named
	elem    *Named
	generic *Named
	args    []*Named
	library bool
}

var (
	_ ttype.Type    = &Named{}
	_ ttype.Binding = &Named{}
)

func (n *Named) computeKey() string {
	switch n.kind {
	case kindArray:
		return n.elem.Key() + "[]"
	case kindParameterized:
		args := make([]string, len(n.args))
		for i, arg := range n.args {
			args[i] = arg.Key()
		}
		return n.generic.Key() + "<" + strings.Join(args, ",") + ">"
	default:
		return n.name
	}
}

// Library marks a declared type as coming from a library the refactoring cannot change
func (n *Named) Library() *Named {
	n.library = true
	return n
}

func (n *Named) Key() string    { return n.key }
func (n *Named) Name() string   { return n.key }
func (n *Named) String() string { return n.key }

func (n *Named) IsNull() bool      { return n.kind == kindNull }
func (n *Named) IsObject() bool    { return n == n.h.object }
func (n *Named) IsPrimitive() bool { return n.kind == kindPrimitive }
func (n *Named) IsArray() bool     { return n.kind == kindArray }
func (n *Named) IsInterface() bool { return n.kind == kindInterface }

// IsParameterizable reports whether n can take type arguments
func (n *Named) IsParameterizable() bool {
	return n.kind == kindClass || n.kind == kindInterface
}

func (n *Named) Erasure() ttype.Type {
	return n.erasure()
}

func (n *Named) erasure() *Named {
	switch n.kind {
	case kindParameterized:
		return n.generic
	case kindArray:
		return n.h.ArrayOf(n.elem.erasure())
	default:
		return n
	}
}

func (n *Named) ElementType() ttype.Binding {
	elem := n
	for elem.kind == kindArray {
		elem = elem.elem
	}
	return elem
}

func (n *Named) Declaration() ttype.Binding {
	if n.kind == kindParameterized {
		return n.generic
	}
	return n
}

func (n *Named) FromSource() bool {
	return !n.library && n.kind != kindPrimitive && n.kind != kindNull
}

// Supertypes returns the direct supertypes, Object for a class declared without any
func (n *Named) Supertypes() []*Named {
	switch n.kind {
	case kindParameterized:
		return n.generic.Supertypes()
	case kindClass, kindInterface:
		if len(n.supers) == 0 && n != n.h.object {
			return []*Named{n.h.object}
		}
		return n.supers
	default:
		return nil
	}
}

func (n *Named) CanAssignTo(other ttype.Type) bool {
	if ttype.Equal(n, other) {
		return true
	}
	if n.kind == kindPrimitive || other.IsPrimitive() {
		return false
	}
	if n.kind == kindNull || other.IsObject() {
		return true
	}
	switch n.kind {
	case kindArray:
		o, ok := other.(*Named)
		if !ok || o.kind != kindArray || n.elem.kind == kindPrimitive {
			return false
		}
		return n.elem.CanAssignTo(o.elem)
	case kindParameterized:
		// arguments are invariant, so only raw targets are reachable from here
		if !ttype.IsErased(other) {
			return false
		}
		return n.generic.CanAssignTo(other)
	default:
		for _, super := range n.Supertypes() {
			if super.CanAssignTo(other) {
				return true
			}
		}
		return false
	}
}
