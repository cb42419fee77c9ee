package constraints

import (
	"github.com/phasereditor2d/supertype/util/hset"
	"iter"
	"slices"
)

// registry is the arena of a Model's variables.
// A variable's Handle is its index in the arena
type registry struct {
	arena []*Variable
	index *hset.HSet[*Variable]
}

func newRegistry() *registry {
	return &registry{
		index: hset.Empty[*Variable](variableHasher{}),
	}
}

// getOrCreate returns the variable structurally equal to candidate,
// registering candidate under a fresh handle if there is none
func (r *registry) getOrCreate(candidate *Variable) *Variable {
	existing, added := r.index.AddExisting(candidate)
	if !added {
		return existing
	}
	candidate.handle = Handle(len(r.arena))
	r.arena = append(r.arena, candidate)
	return candidate
}

func (r *registry) get(h Handle) *Variable {
	return r.arena[h]
}

func (r *registry) len() int {
	return len(r.arena)
}

// all iterates variables in handle order
func (r *registry) all() iter.Seq[*Variable] {
	return slices.Values(r.arena)
}
