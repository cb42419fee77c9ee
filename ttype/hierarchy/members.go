package hierarchy

import (
	"github.com/phasereditor2d/supertype/ttype"
	"strings"
)

// Method is a method or constructor declared by a Named type
type Method struct {
	Name        string
	Declaring   *Named
	Return      *Named
	Params      []*Named
	Constructor bool

	ReturnAt ttype.Range
	ParamsAt []ttype.Range

	// Decl is the generic declaration this method was instantiated from, if any
	Decl *Method
}

var _ ttype.MemberBinding = &Method{}

func (m *Method) Key() string {
	sb := &strings.Builder{}
	if m.Declaring != nil {
		sb.WriteString(m.Declaring.Key())
		sb.WriteString(".")
	}
	sb.WriteString(m.Name)
	sb.WriteString("(")
	for i, param := range m.Params {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(param.Key())
	}
	sb.WriteString(")")
	return sb.String()
}

func (m *Method) String() string { return m.Key() }

func (m *Method) Declaration() ttype.MemberBinding {
	if m.Decl != nil {
		return m.Decl
	}
	return m
}

func (m *Method) DeclaringType() ttype.Binding {
	if m.Declaring == nil {
		return nil
	}
	return m.Declaring
}

func (m *Method) IsConstructor() bool { return m.Constructor }

func (m *Method) ReturnType() ttype.Binding {
	if m.Constructor || m.Return == nil {
		return nil
	}
	return m.Return
}

func (m *Method) ParameterTypes() []ttype.Binding {
	params := make([]ttype.Binding, len(m.Params))
	for i, param := range m.Params {
		params[i] = param
	}
	return params
}

func (m *Method) ReturnTypeRange() ttype.Range { return m.ReturnAt }

func (m *Method) ParameterTypeRange(index int) ttype.Range {
	if index < 0 || index >= len(m.ParamsAt) {
		return ttype.Range{}
	}
	return m.ParamsAt[index]
}

// Var is a field, a local variable or a parameter
type Var struct {
	Name  string
	T     *Named
	Field bool
	// Declaring is the type declaring a field
	Declaring *Named
	// Member is the method declaring a local variable or parameter
	Member *Method
	At     ttype.Range

	Decl *Var
}

var _ ttype.VariableBinding = &Var{}

func (v *Var) Key() string {
	switch {
	case v.Field && v.Declaring != nil:
		return v.Declaring.Key() + "#" + v.Name
	case v.Member != nil:
		return v.Member.Key() + "/" + v.Name
	default:
		return v.Name
	}
}

func (v *Var) String() string { return v.Key() }

func (v *Var) Type() ttype.Binding { return v.T }

func (v *Var) Declaration() ttype.VariableBinding {
	if v.Decl != nil {
		return v.Decl
	}
	return v
}

func (v *Var) IsField() bool { return v.Field }

func (v *Var) DeclaringType() ttype.Binding {
	if v.Declaring == nil {
		return nil
	}
	return v.Declaring
}

func (v *Var) DeclaringMember() ttype.MemberBinding {
	if v.Member == nil {
		return nil
	}
	return v.Member
}

func (v *Var) TypeRange() ttype.Range { return v.At }
