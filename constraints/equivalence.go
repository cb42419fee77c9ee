package constraints

import (
	"github.com/phasereditor2d/supertype/typeset"
	"iter"
	"maps"
	"slices"
)

const noSet Handle = -1

// EquivalenceSet is a class of variables that must resolve to the same type.
// The estimate is shared by every member
type EquivalenceSet struct {
	root     Handle
	members  []Handle
	estimate typeset.TypeSet
}

func (s *EquivalenceSet) Root() Handle { return s.root }
func (s *EquivalenceSet) Len() int     { return len(s.members) }

func (s *EquivalenceSet) Members() iter.Seq[Handle] {
	return slices.Values(s.members)
}

// Estimate is nil until the solver seeds the set
func (s *EquivalenceSet) Estimate() typeset.TypeSet { return s.estimate }

func (s *EquivalenceSet) SetEstimate(estimate typeset.TypeSet) {
	s.estimate = estimate
}

// Equivalence is a union-find over variable handles.
//
// Unions merge the smaller class into the larger one and re-stamp every moved member,
// so finding the class of a handle is a single lookup
type Equivalence struct {
	root []Handle
	sets map[Handle]*EquivalenceSet
}

func NewEquivalence() *Equivalence {
	return &Equivalence{sets: make(map[Handle]*EquivalenceSet)}
}

func (e *Equivalence) ensure(h Handle) {
	for Handle(len(e.root)) <= h {
		e.root = append(e.root, noSet)
	}
}

// Find returns the class of h, if h has been equivalenced or seeded
func (e *Equivalence) Find(h Handle) (*EquivalenceSet, bool) {
	if h < 0 || int(h) >= len(e.root) || e.root[h] == noSet {
		return nil, false
	}
	return e.sets[e.root[h]], true
}

// Singleton returns the class of h, creating one holding only h if needed
func (e *Equivalence) Singleton(h Handle) *EquivalenceSet {
	if set, ok := e.Find(h); ok {
		return set
	}
	e.ensure(h)
	set := &EquivalenceSet{root: h, members: []Handle{h}}
	e.root[h] = h
	e.sets[h] = set
	return set
}

// Union merges the classes of a and b and returns the surviving class.
// It is idempotent and commutative as far as the resulting partition goes
func (e *Equivalence) Union(a, b Handle) *EquivalenceSet {
	e.ensure(max(a, b))
	first, okFirst := e.Find(a)
	second, okSecond := e.Find(b)
	switch {
	case !okFirst && !okSecond:
		set := e.Singleton(a)
		if a != b {
			e.add(set, b)
		}
		return set
	case !okFirst:
		e.add(second, a)
		return second
	case !okSecond:
		e.add(first, b)
		return first
	case first == second:
		return first
	}

	larger, smaller := first, second
	if len(smaller.members) > len(larger.members) {
		larger, smaller = smaller, larger
	}
	switch {
	case larger.estimate == nil:
		larger.estimate = smaller.estimate
	case smaller.estimate != nil:
		// keep both restrictions rather than dropping the smaller class's
		larger.estimate = larger.estimate.RestrictedTo(smaller.estimate)
	}
	for _, member := range smaller.members {
		e.root[member] = larger.root
	}
	larger.members = append(larger.members, smaller.members...)
	delete(e.sets, smaller.root)
	return larger
}

func (e *Equivalence) add(set *EquivalenceSet, h Handle) {
	e.root[h] = set.root
	set.members = append(set.members, h)
}

// Same reports whether a and b belong to the same class
func (e *Equivalence) Same(a, b Handle) bool {
	first, ok := e.Find(a)
	if !ok {
		return false
	}
	second, ok := e.Find(b)
	return ok && first == second
}

// Sets iterates the classes in order of their root handle
func (e *Equivalence) Sets() iter.Seq[*EquivalenceSet] {
	return func(yield func(*EquivalenceSet) bool) {
		for _, root := range slices.Sorted(maps.Keys(e.sets)) {
			if !yield(e.sets[root]) {
				return
			}
		}
	}
}

// Clone returns an independent copy, estimates included
func (e *Equivalence) Clone() *Equivalence {
	cloned := &Equivalence{
		root: slices.Clone(e.root),
		sets: make(map[Handle]*EquivalenceSet, len(e.sets)),
	}
	for root, set := range e.sets {
		cloned.sets[root] = &EquivalenceSet{
			root:     set.root,
			members:  slices.Clone(set.members),
			estimate: set.estimate,
		}
	}
	return cloned
}
