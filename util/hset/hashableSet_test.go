package hset

import (
	"github.com/stretchr/testify/assert"
	"strings"
	"testing"
)

// caseless collides every word with the same length, and equates words up to case
type caseless struct{}

func (caseless) Hash(s string) uint32 { return uint32(len(s)) }
func (caseless) Equal(a, b string) bool { return strings.EqualFold(a, b) }

func TestHSet(t *testing.T) {
	s := Empty[string](caseless{})
	assert.Equal(t, 0, s.Len())

	testCases := []struct {
		elem     string
		existing string
		added    bool
	}{
		{elem: "List", existing: "List", added: true},
		{elem: "Set", existing: "Set", added: true},
		{elem: "list", existing: "List"},
		{elem: "LIST", existing: "List"},
		{elem: "Map", existing: "Map", added: true},
		{elem: "set", existing: "Set"},
	}
	for _, tc := range testCases {
		t.Run(tc.elem, func(t *testing.T) {
			existing, added := s.AddExisting(tc.elem)
			assert.Equal(t, tc.added, added)
			assert.Equal(t, tc.existing, existing)
		})
	}
	assert.Equal(t, 3, s.Len())
}
