package hierarchy

import (
	"github.com/phasereditor2d/supertype/ttype"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestKeysAndErasure(t *testing.T) {
	h := New()
	list := h.Interface("List")
	box := h.Class("Box")
	boxOfList := h.Parameterized(box, list)

	testCases := []struct {
		name    string
		typ     *Named
		key     string
		erasure string
	}{
		{name: "class", typ: box, key: "Box", erasure: "Box"},
		{name: "array", typ: h.ArrayOf(list), key: "List[]", erasure: "List[]"},
		{name: "nested array", typ: h.ArrayOf(h.ArrayOf(list)), key: "List[][]", erasure: "List[][]"},
		{name: "parameterized", typ: boxOfList, key: "Box<List>", erasure: "Box"},
		{name: "array of parameterized", typ: h.ArrayOf(boxOfList), key: "Box<List>[]", erasure: "Box[]"},
		{name: "primitive", typ: h.Primitive("int"), key: "int", erasure: "int"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.key, tc.typ.Key())
			assert.Equal(t, tc.erasure, tc.typ.Erasure().Key())
		})
	}
}

func TestParameterizable(t *testing.T) {
	h := New()
	list := h.Interface("List")
	testCases := []struct {
		name string
		typ  *Named
		want bool
	}{
		{name: "class", typ: h.Class("Box"), want: true},
		{name: "interface", typ: list, want: true},
		{name: "object", typ: h.Object(), want: true},
		{name: "primitive", typ: h.Primitive("int")},
		{name: "array", typ: h.ArrayOf(list)},
		{name: "null", typ: h.Null()},
		{name: "parameterized", typ: h.Parameterized(list, list)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.typ.IsParameterizable())
		})
	}
	assert.Panics(t, func() { h.Parameterized(h.Primitive("int"), list) })
}

func TestTypesAreInterned(t *testing.T) {
	h := New()
	list := h.Interface("List")
	assert.Same(t, h.ArrayOf(list), h.ArrayOf(list))
	assert.Same(t, h.Parameterized(list, list), h.Parameterized(list, list))

	found, ok := h.Lookup("List")
	assert.True(t, ok)
	assert.Same(t, list, found)

	assert.Panics(t, func() { h.Class("List") })
}

func TestCanAssignTo(t *testing.T) {
	h := New()
	collection := h.Interface("Collection")
	list := h.Interface("List", collection)
	arrayList := h.Class("ArrayList", list)
	unrelated := h.Class("Unrelated")
	box := h.Class("Box")
	intType := h.Primitive("int")

	testCases := []struct {
		name     string
		from     *Named
		to       *Named
		expected bool
	}{
		{name: "itself", from: list, to: list, expected: true},
		{name: "direct supertype", from: arrayList, to: list, expected: true},
		{name: "transitive supertype", from: arrayList, to: collection, expected: true},
		{name: "subtype", from: collection, to: arrayList, expected: false},
		{name: "unrelated", from: arrayList, to: unrelated, expected: false},
		{name: "object", from: unrelated, to: h.Object(), expected: true},
		{name: "interface to object", from: list, to: h.Object(), expected: true},
		{name: "null to class", from: h.Null(), to: arrayList, expected: true},
		{name: "null to primitive", from: h.Null(), to: intType, expected: false},
		{name: "primitive to object", from: intType, to: h.Object(), expected: false},
		{name: "covariant array", from: h.ArrayOf(arrayList), to: h.ArrayOf(collection), expected: true},
		{name: "array to object", from: h.ArrayOf(intType), to: h.Object(), expected: true},
		{name: "primitive arrays", from: h.ArrayOf(intType), to: h.ArrayOf(h.Primitive("long")), expected: false},
		{name: "array to element", from: h.ArrayOf(list), to: list, expected: false},
		{name: "parameterized to raw", from: h.Parameterized(box, list), to: box, expected: true},
		{name: "invariant arguments", from: h.Parameterized(box, arrayList), to: h.Parameterized(box, list), expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.from.CanAssignTo(tc.to))
		})
	}
}

func TestFromSource(t *testing.T) {
	h := New()
	printer := h.Class("Printer").Library()
	list := h.Interface("List")

	assert.True(t, list.FromSource())
	assert.False(t, printer.FromSource())
	assert.False(t, h.ArrayOf(printer).FromSource())
	assert.False(t, h.Object().FromSource())
	assert.False(t, h.Primitive("int").FromSource())
	assert.False(t, h.Null().FromSource())
}

func TestCreate(t *testing.T) {
	h := New()
	list := h.Interface("List")
	boxOfList := h.Parameterized(h.Class("Box"), list)

	var env ttype.Environment = h
	assert.Same(t, list, env.Create(list))
	assert.Equal(t, "Box", env.Create(boxOfList.Declaration()).Key())
	assert.Equal(t, "List", env.Create(h.ArrayOf(list).ElementType()).Key())
	assert.Equal(t, 3, h.Creations())

	other := New()
	assert.Panics(t, func() { env.Create(other.Class("Foreign")) })
}

func TestMemberKeys(t *testing.T) {
	h := New()
	list := h.Interface("List")
	factory := h.Class("Factory")

	method := &Method{Name: "make", Declaring: factory, Return: list, Params: []*Named{list, h.Primitive("int")}}
	assert.Equal(t, "Factory.make(List,int)", method.Key())
	assert.Nil(t, (&Method{Name: "top"}).DeclaringType())
	assert.Nil(t, (&Method{Name: "init", Return: list, Constructor: true}).ReturnType())

	field := &Var{Name: "items", T: list, Field: true, Declaring: factory}
	local := &Var{Name: "tmp", T: list, Member: method}
	assert.Equal(t, "Factory#items", field.Key())
	assert.Equal(t, "Factory.make(List,int)/tmp", local.Key())
	assert.Nil(t, local.DeclaringType())
	assert.Nil(t, field.DeclaringMember())
}
