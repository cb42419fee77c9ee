// Package solver computes, for a sealed constraints.Model, the type every constraint
// variable resolves to, and from that the type occurrences that can be rewritten to the
// supertype and the casts that become obsolete.
package solver

import (
	"fmt"
	"github.com/hashicorp/go-set/v3"
	"github.com/phasereditor2d/supertype/constraints"
	"github.com/phasereditor2d/supertype/internal/log"
	"github.com/phasereditor2d/supertype/ttype"
	"github.com/phasereditor2d/supertype/typeset"
	"github.com/phasereditor2d/supertype/util"
	"slices"
)

var logger = log.DefaultLogger.With("section", "solver")

// Stats describes the work done by one Solve
type Stats struct {
	// Pops is the number of variables taken off the worklist
	Pops int
	// Updates is the number of times a class estimate was narrowed
	Updates int
	// Normalized is the number of covariant and conditional constraints turned into equalities
	Normalized int
}

// MaxPops bounds the worklist pops of a solve over the given number of variables and constraints.
// Every class estimate narrows at most twice (tuple, singleton, empty), and each narrowing
// re-queues the members of the class once
func MaxPops(variables, constraints int) int {
	return 3 * variables * (constraints + 1)
}

// Solver is single-use state over one model. Solving does not modify the model,
// so any number of solvers may read the same sealed model
type Solver struct {
	model *constraints.Model

	equivalence *constraints.Equivalence
	resolved    []ttype.Type
	stats       Stats
}

func New(model *constraints.Model) *Solver {
	if !model.Sealed() {
		panic("solver: model must be sealed with EndCreation before solving")
	}
	return &Solver{model: model}
}

// Solve runs the whole algorithm: normalization, seeding, propagation and finalization
func (s *Solver) Solve() *Result {
	s.equivalence = s.model.Equivalence()
	s.resolved = make([]ttype.Type, s.model.NumVariables())
	s.stats = Stats{}

	s.normalize()
	s.computeTypeEstimates()
	s.propagate()
	s.resolve()

	result := s.result()
	logger.Info("solved supertype constraints",
		"variables", s.model.NumVariables(),
		"constraints", s.model.NumConstraints(),
		"pops", s.stats.Pops,
		"updates", s.stats.Updates,
		"occurrences", result.NumTypeOccurrences(),
		"obsoleteCasts", result.NumObsoleteCasts(),
	)
	return result
}

func (s *Solver) allowsCovariance() bool {
	return s.model.Compliance().AllowsCovariantReturns()
}

// normalize turns the constraints the propagation does not handle into equalities
func (s *Solver) normalize() {
	covariance := s.allowsCovariance()
	for c := range s.model.TypeConstraints() {
		switch c.Kind() {
		case constraints.Covariant:
			if covariance {
				continue
			}
			s.equivalence.Union(c.Left().Handle(), c.Right().Handle())
		case constraints.Conditional:
			// equating the branches approximates their least common supertype
			then, otherwise, expression := c.Left().Handle(), c.Right().Handle(), c.Expression().Handle()
			s.equivalence.Union(then, otherwise)
			s.equivalence.Union(expression, then)
			s.equivalence.Union(expression, otherwise)
		default:
			continue
		}
		s.stats.Normalized++
		logger.Debug("normalized constraint into equalities", "constraint", c)
	}
}

// typeEstimate is the estimate of v on its own
func (s *Solver) typeEstimate(v *constraints.Variable) typeset.TypeSet {
	subType := s.model.SubType()
	if v.Kind().Immutable() || !ttype.SameErasure(v.Type(), subType) {
		return typeset.Singleton(v.Type())
	}
	return typeset.Tuple(subType, s.model.SuperType())
}

func (s *Solver) computeTypeEstimates() {
	for v := range s.model.ConstraintVariables() {
		class := s.equivalence.Singleton(v.Handle())
		if class.Estimate() != nil {
			continue
		}
		estimate := typeset.Universe()
		for _, member := range slices.Sorted(class.Members()) {
			estimate = estimate.RestrictedTo(s.typeEstimate(s.model.Variable(member)))
		}
		class.SetEstimate(estimate)
	}
}

func (s *Solver) class(v *constraints.Variable) *constraints.EquivalenceSet {
	class, ok := s.equivalence.Find(v.Handle())
	if !ok {
		panic(fmt.Sprintf("solver: variable %s was never seeded", v))
	}
	return class
}

// propagates reports whether c narrows its descendant during propagation
func (s *Solver) propagates(c *constraints.Constraint) bool {
	switch c.Kind() {
	case constraints.Subtype:
		return true
	case constraints.Covariant:
		return s.allowsCovariance()
	default:
		return false
	}
}

func (s *Solver) propagate() {
	numVariables := s.model.NumVariables()
	fuel := MaxPops(numVariables, s.model.NumConstraints())

	worklist := &util.Queue[constraints.Handle]{}
	pending := set.New[constraints.Handle](numVariables)
	push := func(h constraints.Handle) {
		if pending.Insert(h) {
			worklist.Push(h)
		}
	}
	for v := range s.model.ConstraintVariables() {
		push(v.Handle())
	}

	for {
		h, ok := worklist.Pop()
		if !ok {
			return
		}
		pending.Remove(h)
		s.stats.Pops++
		if s.stats.Pops > fuel {
			panic(fmt.Sprintf("solver: worklist did not settle after %d pops", fuel))
		}

		for c := range s.model.Usage(s.model.Variable(h)) {
			if !s.propagates(c) {
				continue
			}
			descendant := s.class(c.Left())
			current := descendant.Estimate()
			next := current.RestrictedTo(s.class(c.Right()).Estimate())
			if typeset.Equal(current, next) {
				continue
			}
			logger.Debug("narrowed estimate", "constraint", c, "from", current, "to", next)
			descendant.SetEstimate(next)
			s.stats.Updates++
			for member := range descendant.Members() {
				push(member)
			}
		}
	}
}

func (s *Solver) resolve() {
	for v := range s.model.ConstraintVariables() {
		if t, ok := s.class(v).Estimate().ChooseSingleType(); ok {
			s.resolved[v.Handle()] = t
		}
	}
}

func (s *Solver) result() *Result {
	r := &Result{
		TypeOccurrences: make(map[ttype.FileID][]Occurrence),
		ObsoleteCasts:   make(map[ttype.FileID][]*constraints.Variable),
		Stats:           s.stats,
		estimates:       make([]typeset.TypeSet, s.model.NumVariables()),
		resolved:        s.resolved,
	}
	superType := s.model.SuperType()
	for v := range s.model.ConstraintVariables() {
		r.estimates[v.Handle()] = s.class(v).Estimate()

		if v.Kind() == constraints.KindCast || !v.HasRange() {
			continue
		}
		resolved := s.resolved[v.Handle()]
		if resolved == nil {
			continue
		}
		if !ttype.SameErasure(v.Type(), resolved) && ttype.SameErasure(resolved, superType) {
			file := v.Range().File
			r.TypeOccurrences[file] = append(r.TypeOccurrences[file], Occurrence{
				Range:    v.Range(),
				Type:     resolved,
				Variable: v,
			})
		}
	}
	for cast := range s.model.CastVariables() {
		resolved := s.resolved[cast.Expression().Handle()]
		if resolved != nil && typeset.Assignable(resolved, cast.Type()) {
			file := cast.Range().File
			r.ObsoleteCasts[file] = append(r.ObsoleteCasts[file], cast)
		}
	}
	r.normalize()
	return r
}
