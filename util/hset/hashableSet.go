// Package hset implements a set of hashable elements, JVM style
package hset

import (
	"github.com/benbjohnson/immutable"
)

// HSet is a shallow wrapper around a map of hash buckets.
// Elements with the same hash are told apart with the hasher's Equal
type HSet[A any] struct {
	hasher     immutable.Hasher[A]
	underlying map[uint32][]A
	size       int
}

func Empty[A any](hasher immutable.Hasher[A]) *HSet[A] {
	return &HSet[A]{
		hasher:     hasher,
		underlying: make(map[uint32][]A),
	}
}

// AddExisting returns the element already in the set that is equal to elem,
// or adds elem and returns it
func (s *HSet[A]) AddExisting(elem A) (existing A, added bool) {
	h := s.hasher.Hash(elem)
	for _, candidate := range s.underlying[h] {
		if s.hasher.Equal(candidate, elem) {
			return candidate, false
		}
	}
	s.underlying[h] = append(s.underlying[h], elem)
	s.size++
	return elem, true
}

func (s *HSet[A]) Len() int {
	return s.size
}
