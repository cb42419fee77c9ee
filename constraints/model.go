// Package constraints holds the constraint model of the supertype refactoring:
// deduplicated constraint variables, the equivalence classes between them and the
// subtype, covariant and conditional constraints connecting them.
//
// A Model is filled by a single writer walking the source, sealed with EndCreation,
// and then only read by the solver.
package constraints

import (
	"fmt"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/phasereditor2d/supertype/internal/log"
	"github.com/phasereditor2d/supertype/ttype"
	"github.com/phasereditor2d/supertype/util/hset"
	"iter"
	"slices"
	"strconv"
)

var logger = log.DefaultLogger.With("section", "constraints")

// Compliance is the language level of the code being refactored
type Compliance int

const (
	// ComplianceLegacy has no covariant return types
	ComplianceLegacy Compliance = 2
	// ComplianceModern allows a method to narrow the return type it overrides
	ComplianceModern Compliance = 3
)

func (c Compliance) AllowsCovariantReturns() bool {
	return c >= ComplianceModern
}

// MaxTypeCache is the number of binding keys whose types a Model remembers
const MaxTypeCache = 64

type Model struct {
	subType   ttype.Type
	superType ttype.Type

	env       ttype.Environment
	typeCache *lru.Cache[string, ttype.Type]

	compliance  Compliance
	variables   *registry
	constraints *hset.HSet[*Constraint]
	// ordered holds constraints in creation order
	ordered     []*Constraint
	covariant   []*Constraint
	casts       []*Variable
	equivalence *Equivalence

	sealed bool
}

// NewModel starts a model deciding whether subType can be replaced by superType
func NewModel(env ttype.Environment, subType, superType ttype.Type) *Model {
	cache, err := lru.New[string, ttype.Type](MaxTypeCache)
	if err != nil {
		panic(fmt.Sprintf("constraints: could not create type cache: %v", err))
	}
	return &Model{
		subType:     subType,
		superType:   superType,
		env:         env,
		typeCache:   cache,
		compliance:  ComplianceModern,
		variables:   newRegistry(),
		constraints: hset.Empty[*Constraint](constraintHasher{}),
		equivalence: NewEquivalence(),
	}
}

func (m *Model) SubType() ttype.Type   { return m.subType }
func (m *Model) SuperType() ttype.Type { return m.superType }

func (m *Model) Compliance() Compliance { return m.compliance }

func (m *Model) SetCompliance(level Compliance) {
	m.checkBuilding()
	m.compliance = level
}

func (m *Model) Sealed() bool { return m.sealed }

// EndCreation drops the state only needed while building and makes the model read-only
func (m *Model) EndCreation() {
	m.env = nil
	m.typeCache = nil
	m.sealed = true
	logger.Info("model sealed",
		"variables", m.variables.len(),
		"constraints", len(m.ordered),
		"casts", len(m.casts),
		"subType", m.subType.Name(),
		"superType", m.superType.Name(),
	)
}

func (m *Model) checkBuilding() {
	if m.sealed {
		panic("constraints: model is sealed, it cannot change after EndCreation")
	}
}

// CreateTType returns the type of binding, remembering the most recently used ones
func (m *Model) CreateTType(binding ttype.Binding) ttype.Type {
	m.checkBuilding()
	key := binding.Key()
	if cached, ok := m.typeCache.Get(key); ok {
		return cached
	}
	t := m.env.Create(binding)
	m.typeCache.Add(key, t)
	return t
}

// TypeCacheLen is the number of types currently cached, 0 once sealed
func (m *Model) TypeCacheLen() int {
	if m.typeCache == nil {
		return 0
	}
	return m.typeCache.Len()
}

func isConstrainedType(binding ttype.Binding) bool {
	return binding != nil && !binding.IsPrimitive()
}

func elementOf(binding ttype.Binding) ttype.Binding {
	if binding != nil && binding.IsArray() {
		return binding.ElementType()
	}
	return binding
}

func (m *Model) add(candidate *Variable) *Variable {
	m.checkBuilding()
	v := m.variables.getOrCreate(candidate)
	if v == candidate {
		logger.Debug("created variable", "variable", v, "handle", v.handle)
	}
	return v
}

func (m *Model) immutable(binding ttype.Binding) *Variable {
	return m.add(&Variable{kind: KindImmutable, typ: m.CreateTType(binding)})
}

// ImmutableTypeVariable stands for a type that cannot change, such as a library type
func (m *Model) ImmutableTypeVariable(binding ttype.Binding) *Variable {
	binding = elementOf(binding)
	if !isConstrainedType(binding) {
		return nil
	}
	return m.immutable(binding)
}

// IndependentTypeVariable stands for an arbitrary type, such as an array element
func (m *Model) IndependentTypeVariable(binding ttype.Binding) *Variable {
	binding = elementOf(binding)
	if !isConstrainedType(binding) {
		return nil
	}
	return m.add(&Variable{kind: KindIndependent, typ: m.CreateTType(binding)})
}

// DeclaringTypeVariable stands for the type where something has been declared
func (m *Model) DeclaringTypeVariable(binding ttype.Binding) *Variable {
	binding = elementOf(binding)
	if binding == nil {
		return nil
	}
	return m.add(&Variable{kind: KindDeclaringType, typ: m.CreateTType(binding.Declaration())})
}

// TypeVariable stands for the type written at a source location
func (m *Model) TypeVariable(binding ttype.Binding, at ttype.Range) *Variable {
	binding = elementOf(binding)
	if !isConstrainedType(binding) {
		return nil
	}
	return m.add(&Variable{kind: KindTypeAt, typ: m.CreateTType(binding), locationKey: rangeKey(at), at: at})
}

// ExceptionVariable stands for a thrown exception type named at a source location
func (m *Model) ExceptionVariable(binding ttype.Binding, at ttype.Range) *Variable {
	if !isConstrainedType(binding) {
		return nil
	}
	return m.add(&Variable{kind: KindException, typ: m.CreateTType(binding), locationKey: rangeKey(at), at: at})
}

// fromSource treats members without a declaring type as top-level source declarations
func fromSource(member ttype.MemberBinding) bool {
	declaring := member.DeclaringType()
	return declaring == nil || declaring.FromSource()
}

// ReturnTypeVariable stands for the return type of a member. Constructors have none
func (m *Model) ReturnTypeVariable(member ttype.MemberBinding) *Variable {
	if member.IsConstructor() {
		return nil
	}
	binding := elementOf(member.ReturnType())
	if !isConstrainedType(binding) {
		return nil
	}
	if !fromSource(member) {
		return m.immutable(binding)
	}
	declaration := member.Declaration()
	return m.add(&Variable{
		kind:        KindReturnType,
		typ:         m.CreateTType(binding),
		locationKey: declaration.Key(),
		member:      declaration.Key(),
		at:          declaration.ReturnTypeRange(),
	})
}

// ParameterTypeVariable stands for the type of a member's parameter.
// Indices past the last parameter refer to the last one, which is variable arity
func (m *Model) ParameterTypeVariable(member ttype.MemberBinding, index int) *Variable {
	parameters := member.ParameterTypes()
	if len(parameters) == 0 || index < 0 {
		return nil
	}
	index = min(index, len(parameters)-1)
	binding := elementOf(parameters[index])
	if !isConstrainedType(binding) {
		return nil
	}
	if !fromSource(member) {
		return m.immutable(binding)
	}
	declaration := member.Declaration()
	return m.add(&Variable{
		kind:        KindParameterType,
		typ:         m.CreateTType(binding),
		locationKey: declaration.Key() + "#" + strconv.Itoa(index),
		member:      declaration.Key(),
		index:       index,
		at:          declaration.ParameterTypeRange(index),
	})
}

// VariableVariable stands for the type of a field or local variable
func (m *Model) VariableVariable(binding ttype.VariableBinding) *Variable {
	typ := elementOf(binding.Type())
	if !isConstrainedType(typ) {
		return nil
	}
	declaration := binding.Declaration()
	if declaration.IsField() {
		if declaring := declaration.DeclaringType(); declaring != nil && !declaring.FromSource() {
			return m.immutable(typ)
		}
	} else if member := declaration.DeclaringMember(); member != nil && !fromSource(member) {
		return m.immutable(typ)
	}
	return m.add(&Variable{
		kind:        KindVariable,
		typ:         m.CreateTType(typ),
		locationKey: declaration.Key(),
		member:      declaration.Key(),
		at:          declaration.TypeRange(),
	})
}

// CastVariable stands for a cast of expression to target, written at a source location
func (m *Model) CastVariable(expression *Variable, target ttype.Binding, at ttype.Range) *Variable {
	target = elementOf(target)
	if expression == nil || !isConstrainedType(target) {
		return nil
	}
	candidate := &Variable{
		kind:        KindCast,
		typ:         m.CreateTType(target),
		locationKey: rangeKey(at) + "/" + strconv.Itoa(int(expression.handle)),
		at:          at,
		expression:  expression,
	}
	v := m.add(candidate)
	if v == candidate {
		m.casts = append(m.casts, v)
	}
	return v
}

// CreateSubtypeConstraint requires the descendant's type to stay assignable to the ancestor's
func (m *Model) CreateSubtypeConstraint(descendant, ancestor *Variable) *Constraint {
	return m.addConstraint(&Constraint{kind: Subtype, left: descendant, right: ancestor})
}

// CreateCovariantTypeConstraint relates an overriding return type to the one it overrides
func (m *Model) CreateCovariantTypeConstraint(descendant, ancestor *Variable) *Constraint {
	return m.addConstraint(&Constraint{kind: Covariant, left: descendant, right: ancestor})
}

// CreateConditionalTypeConstraint ties a conditional expression to its branches
func (m *Model) CreateConditionalTypeConstraint(expression, then, otherwise *Variable) *Constraint {
	if expression == nil {
		return nil
	}
	return m.addConstraint(&Constraint{kind: Conditional, left: then, right: otherwise, expression: expression})
}

// CreateEqualityConstraint puts both variables in the same equivalence class.
// Equalities are not kept as edges
func (m *Model) CreateEqualityConstraint(left, right *Variable) {
	if left == nil || right == nil {
		return
	}
	m.checkBuilding()
	set := m.equivalence.Union(left.handle, right.handle)
	logger.Debug("merged variables", "left", left, "right", right, "classSize", set.Len())
}

func (m *Model) addConstraint(candidate *Constraint) *Constraint {
	if candidate.left == nil || candidate.right == nil {
		return nil
	}
	m.checkBuilding()
	c, added := m.constraints.AddExisting(candidate)
	if !added {
		return c
	}
	m.ordered = append(m.ordered, c)
	if c.kind == Covariant {
		m.covariant = append(m.covariant, c)
	}
	for _, endpoint := range []*Variable{c.left, c.right, c.expression} {
		if endpoint != nil && !slices.Contains(endpoint.usage, c) {
			endpoint.usage = append(endpoint.usage, c)
		}
	}
	logger.Debug("created constraint", "constraint", c)
	return c
}

// Variable returns the variable with handle h
func (m *Model) Variable(h Handle) *Variable {
	return m.variables.get(h)
}

func (m *Model) NumVariables() int   { return m.variables.len() }
func (m *Model) NumConstraints() int { return len(m.ordered) }

// ConstraintVariables iterates every variable in handle order
func (m *Model) ConstraintVariables() iter.Seq[*Variable] {
	return m.variables.all()
}

// TypeConstraints iterates every constraint in creation order
func (m *Model) TypeConstraints() iter.Seq[*Constraint] {
	return slices.Values(m.ordered)
}

func (m *Model) CovariantConstraints() iter.Seq[*Constraint] {
	return slices.Values(m.covariant)
}

func (m *Model) CastVariables() iter.Seq[*Variable] {
	return slices.Values(m.casts)
}

// Usage iterates the constraints v is an endpoint of
func (m *Model) Usage(v *Variable) iter.Seq[*Constraint] {
	return slices.Values(v.usage)
}

// Equivalence returns a copy of the classes created by equality constraints so far
func (m *Model) Equivalence() *Equivalence {
	return m.equivalence.Clone()
}
