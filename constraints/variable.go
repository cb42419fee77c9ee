package constraints

import (
	"fmt"
	"github.com/phasereditor2d/supertype/ttype"
	"hash/fnv"
)

// Handle is the index of a Variable in its Model
type Handle int

type Kind uint8

const (
	// KindImmutable is a fixed type from outside the source, which can never change
	KindImmutable Kind = iota
	// KindIndependent is an arbitrary type, such as an array element or a conditional's result
	KindIndependent
	// KindTypeAt is the type written at a source location
	KindTypeAt
	// KindDeclaringType is the type declaring a member. It is immutable
	KindDeclaringType
	KindReturnType
	KindParameterType
	// KindVariable is a field or local variable declared in source
	KindVariable
	KindException
	KindCast
)

var kindNames = [...]string{
	KindImmutable:     "immutable",
	KindIndependent:   "independent",
	KindTypeAt:        "type",
	KindDeclaringType: "declaring",
	KindReturnType:    "return",
	KindParameterType: "parameter",
	KindVariable:      "variable",
	KindException:     "exception",
	KindCast:          "cast",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Immutable reports whether variables of this kind stand for a type the refactoring cannot change
func (k Kind) Immutable() bool {
	return k == KindImmutable || k == KindDeclaringType
}

// Variable is a typed slot standing for the type of one syntactic position.
//
// Variables are created and deduplicated by a Model; two structurally identical
// requests return the same *Variable
type Variable struct {
	handle Handle
	kind   Kind
	typ    ttype.Type
	// locationKey tells apart variables of the same kind and type
	locationKey string
	at          ttype.Range
	// member is the key of the member or declaration this variable belongs to
	member string
	index  int
	// expression is the operand of a cast
	expression *Variable

	usage []*Constraint
}

func (v *Variable) Handle() Handle     { return v.handle }
func (v *Variable) Kind() Kind         { return v.kind }
func (v *Variable) Type() ttype.Type   { return v.typ }
func (v *Variable) Range() ttype.Range { return v.at }

// HasRange reports whether the variable carries a source location
func (v *Variable) HasRange() bool { return !v.at.IsZero() }

// Expression returns the operand variable of a cast, nil for every other kind
func (v *Variable) Expression() *Variable { return v.expression }

// Index returns the parameter index of a KindParameterType variable
func (v *Variable) Index() int { return v.index }

func (v *Variable) String() string {
	return Format(v)
}

// Format renders a variable for diagnostics
func Format(v *Variable) string {
	if v == nil {
		return "<none>"
	}
	name := v.typ.Name()
	switch v.kind {
	case KindImmutable:
		return fmt.Sprintf("Immutable[%s]", name)
	case KindIndependent:
		return fmt.Sprintf("Independent[%s]", name)
	case KindDeclaringType:
		return fmt.Sprintf("Declaring[%s]", name)
	case KindTypeAt:
		return fmt.Sprintf("[%s]@%s", name, v.at)
	case KindException:
		return fmt.Sprintf("Exception[%s]@%s", name, v.at)
	case KindReturnType:
		return fmt.Sprintf("[%s]", v.member)
	case KindParameterType:
		return fmt.Sprintf("[Parameter(%d,%s)]", v.index, v.member)
	case KindVariable:
		return fmt.Sprintf("[%s:%s]", v.member, name)
	case KindCast:
		return fmt.Sprintf("(%s)%s@%s", name, Format(v.expression), v.at)
	}
	return fmt.Sprintf("%s[%s]", v.kind, name)
}

// variableHasher identifies variables by kind, type and location key
type variableHasher struct{}

func (variableHasher) Hash(v *Variable) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte{byte(v.kind)})
	_, _ = h.Write([]byte(v.typ.Key()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(v.locationKey))
	return h.Sum32()
}

func (variableHasher) Equal(a, b *Variable) bool {
	return a.kind == b.kind && a.locationKey == b.locationKey && ttype.Equal(a.typ, b.typ)
}

func rangeKey(r ttype.Range) string {
	return fmt.Sprintf("%s:%d:%d", r.File, r.Offset, r.Length)
}
