package problem

import (
	"github.com/phasereditor2d/supertype/constraints"
	"github.com/phasereditor2d/supertype/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestLoadFile(t *testing.T) {
	p, err := LoadFile("testdata/lists.yaml")
	require.NoError(t, err)

	assert.True(t, p.Model.Sealed())
	assert.Equal(t, "ArrayList", p.Model.SubType().Key())
	assert.Equal(t, "List", p.Model.SuperType().Key())
	assert.Equal(t, constraints.ComplianceModern, p.Model.Compliance())
	assert.Equal(t, 2, p.Model.NumConstraints())

	require.Contains(t, p.Variables, "count")
	assert.Nil(t, p.Variable("count"))
	assert.Equal(t, constraints.KindImmutable, p.Variable("sortParam").Kind())
	assert.Equal(t, constraints.KindReturnType, p.Variable("made").Kind())
	assert.Equal(t, constraints.KindCast, p.Variable("cast").Kind())
	assert.Same(t, p.Variable("items"), p.Variable("cast").Expression())
	assert.Equal(t, "ArrayList", p.Variable("arrays").Type().Key())

	list, ok := p.Hierarchy.Lookup("List")
	require.True(t, ok)
	collection, _ := p.Hierarchy.Lookup("Collection")
	assert.True(t, list.CanAssignTo(collection))
}

func TestSolveLoadedProblem(t *testing.T) {
	p, err := LoadFile("testdata/lists.yaml")
	require.NoError(t, err)

	r := solver.New(p.Model).Solve()

	var offsets []int
	for _, occurrence := range r.TypeOccurrences["Main.java"] {
		offsets = append(offsets, occurrence.Range.Offset)
	}
	// sorted flows into Sorter.sort, which only takes an ArrayList
	assert.Equal(t, []int{12, 30, 150}, offsets)
	resolved, ok := r.Type(p.Variable("sorted"))
	require.True(t, ok)
	assert.Equal(t, "ArrayList", resolved.Key())

	require.Len(t, r.ObsoleteCasts["Main.java"], 1)
	assert.Same(t, p.Variable("cast"), r.ObsoleteCasts["Main.java"][0])
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		err   string
	}{
		{
			name:  "malformed yaml",
			input: "subtype: [",
			err:   "could not decode problem",
		},
		{
			name:  "unknown subtype",
			input: "subtype: Missing\nsupertype: Object",
			err:   "unknown type Missing",
		},
		{
			name: "cyclic hierarchy",
			input: `
subtype: A
supertype: B
types:
  - {name: A, extends: [B]}
  - {name: B, extends: [A]}`,
			err: "extends itself",
		},
		{
			name: "built in type",
			input: `
subtype: Object
supertype: Object
types:
  - {name: Object}`,
			err: "type Object is built in",
		},
		{
			name: "unknown variable kind",
			input: `
subtype: Object
supertype: Object
variables:
  - {id: v, kind: lambda, type: Object}`,
			err: `unknown kind "lambda"`,
		},
		{
			name: "bad range",
			input: `
subtype: Object
supertype: Object
variables:
  - {id: v, kind: type, type: Object, at: "Main.java:12"}`,
			err: "is not file:offset:length",
		},
		{
			name: "unknown method",
			input: `
subtype: Object
supertype: Object
variables:
  - {id: v, kind: return, method: missing}`,
			err: `unknown method "missing"`,
		},
		{
			name: "unknown constraint endpoint",
			input: `
subtype: Object
supertype: Object
variables:
  - {id: v, kind: type, type: Object, at: "Main.java:1:6"}
constraints:
  - subtype: [v, w]`,
			err: `unknown variable "w"`,
		},
		{
			name: "ambiguous constraint",
			input: `
subtype: Object
supertype: Object
variables:
  - {id: v, kind: type, type: Object, at: "Main.java:1:6"}
constraints:
  - {subtype: [v, v], equal: [v, v]}`,
			err: "exactly one of",
		},
		{
			name: "wrong arity",
			input: `
subtype: Object
supertype: Object
variables:
  - {id: v, kind: type, type: Object, at: "Main.java:1:6"}
constraints:
  - conditional: [v, v]`,
			err: "expected 3 variables, got 2",
		},
		{
			name: "primitive generic",
			input: `
subtype: A
supertype: Object
types:
  - {name: A}
variables:
  - {id: v, kind: type, type: "int<A>", at: "Main.java:1:6"}`,
			err: "type int<A> cannot be parameterized",
		},
		{
			name: "array generic",
			input: `
subtype: A
supertype: Object
types:
  - {name: A}
variables:
  - {id: v, kind: type, type: "A[]<A>", at: "Main.java:1:6"}`,
			err: "type A[]<A> cannot be parameterized",
		},
		{
			name: "null generic",
			input: `
subtype: A
supertype: Object
types:
  - {name: A}
variables:
  - {id: v, kind: type, type: "null<A>", at: "Main.java:1:6"}`,
			err: "type null<A> cannot be parameterized",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestTypeReferences(t *testing.T) {
	p, err := Parse([]byte(`
subtype: ArrayList
supertype: List
types:
  - {name: List, interface: true}
  - {name: ArrayList, extends: [List]}
  - {name: Map, interface: true}
variables:
  - {id: nested, kind: independent, type: "Map<List<ArrayList>,ArrayList[]>"}
  - {id: matrix, kind: immutable, type: "List[][]"}
`))
	require.NoError(t, err)

	nested, ok := p.Hierarchy.Lookup("Map<List<ArrayList>,ArrayList[]>")
	require.True(t, ok)
	assert.Equal(t, "Map", nested.Erasure().Key())
	assert.Equal(t, nested.Key(), p.Variable("nested").Type().Key())
	assert.Equal(t, "List", p.Variable("matrix").Type().Key())
}
