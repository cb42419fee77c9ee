package ttype

import "fmt"

// FileID identifies a source file. The rewrite collaborator decides what it means
type FileID string

// Range is a span of source text. The zero Range carries no location
type Range struct {
	File   FileID
	Offset int
	Length int
}

func (r Range) IsZero() bool {
	return r.File == ""
}

func (r Range) String() string {
	if r.IsZero() {
		return "<no location>"
	}
	return fmt.Sprintf("%s[%d+%d]", r.File, r.Offset, r.Length)
}

// Binding is a type as resolved by the AST collaborator
type Binding interface {
	Key() string
	IsPrimitive() bool
	IsArray() bool
	// ElementType returns the innermost element type of an array binding
	ElementType() Binding
	// Declaration returns the generic declaration of a parameterized binding, or the binding itself
	Declaration() Binding
	// FromSource reports whether the type is declared in code the refactoring may change
	FromSource() bool
}

// MemberBinding is a method or constructor
type MemberBinding interface {
	Key() string
	Declaration() MemberBinding
	DeclaringType() Binding
	IsConstructor() bool
	// ReturnType is nil for constructors and for members returning nothing
	ReturnType() Binding
	ParameterTypes() []Binding
	ReturnTypeRange() Range
	ParameterTypeRange(index int) Range
}

// VariableBinding is a field, a local variable or a parameter
type VariableBinding interface {
	Key() string
	Type() Binding
	Declaration() VariableBinding
	IsField() bool
	// DeclaringType is the type declaring a field, nil otherwise
	DeclaringType() Binding
	// DeclaringMember is the member declaring a local variable or parameter, nil for fields and top-level variables
	DeclaringMember() MemberBinding
	TypeRange() Range
}

// Environment turns bindings into semantic types
type Environment interface {
	Create(binding Binding) Type
}
