package constraints

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

type ConstraintKind uint8

const (
	// Subtype keeps the descendant's estimate within the ancestor's
	Subtype ConstraintKind = iota
	// Covariant is a Subtype between return types, which collapses to an equality
	// where the compliance level has no covariant returns
	Covariant
	// Conditional ties a conditional expression to its two branches
	Conditional
)

func (k ConstraintKind) String() string {
	switch k {
	case Subtype:
		return "subtype"
	case Covariant:
		return "covariant"
	case Conditional:
		return "conditional"
	}
	return fmt.Sprintf("ConstraintKind(%d)", k)
}

// Constraint is an edge of the constraint graph.
//
// For Subtype and Covariant, Left is the descendant and Right the ancestor.
// For Conditional, Expression is the conditional expression and Left/Right its
// then and else branches
type Constraint struct {
	kind       ConstraintKind
	left       *Variable
	right      *Variable
	expression *Variable
}

func (c *Constraint) Kind() ConstraintKind  { return c.kind }
func (c *Constraint) Left() *Variable       { return c.left }
func (c *Constraint) Right() *Variable      { return c.right }
func (c *Constraint) Expression() *Variable { return c.expression }

// Hash identifies a constraint by kind and endpoints, as go-set's HashSet requires
func (c *Constraint) Hash() string {
	expression := -1
	if c.expression != nil {
		expression = int(c.expression.handle)
	}
	return strconv.Itoa(int(c.kind)) + ":" +
		strconv.Itoa(int(c.left.handle)) + ":" +
		strconv.Itoa(int(c.right.handle)) + ":" +
		strconv.Itoa(expression)
}

// Touches reports whether v is one of the endpoints
func (c *Constraint) Touches(v *Variable) bool {
	return c.left == v || c.right == v || c.expression == v
}

func (c *Constraint) String() string {
	switch c.kind {
	case Subtype:
		return fmt.Sprintf("%s <= %s", c.left, c.right)
	case Covariant:
		return fmt.Sprintf("%s =^= %s", c.left, c.right)
	case Conditional:
		return fmt.Sprintf("%s <?= %s : %s", c.expression, c.left, c.right)
	}
	return fmt.Sprintf("%s(%s, %s)", c.kind, c.left, c.right)
}

type constraintHasher struct{}

func (constraintHasher) Hash(c *Constraint) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(c.Hash()))
	return h.Sum32()
}

func (constraintHasher) Equal(a, b *Constraint) bool {
	return a.kind == b.kind && a.left == b.left && a.right == b.right && a.expression == b.expression
}
