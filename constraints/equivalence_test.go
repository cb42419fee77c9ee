package constraints

import (
	"github.com/phasereditor2d/supertype/typeset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/rand"
	"slices"
	"testing"
)

func TestUnion(t *testing.T) {
	e := NewEquivalence()
	ab := e.Union(0, 1)
	assert.Same(t, ab, e.Union(1, 0))
	assert.Equal(t, 2, ab.Len())

	abc := e.Union(1, 2)
	assert.Same(t, ab, abc)
	for _, pair := range [][2]Handle{{0, 1}, {1, 2}, {0, 2}} {
		assert.True(t, e.Same(pair[0], pair[1]))
	}
	assert.False(t, e.Same(0, 3))

	self := e.Union(5, 5)
	assert.Equal(t, 1, self.Len())
	assert.Equal(t, Handle(5), self.Root())

	_, ok := e.Find(4)
	assert.False(t, ok)
	assert.Len(t, slices.Collect(e.Sets()), 2)
}

func TestUnionMergesSmallerIntoLarger(t *testing.T) {
	e := NewEquivalence()
	e.Union(0, 1)
	e.Union(1, 2)
	e.Union(3, 4)

	merged := e.Union(4, 0)
	assert.Equal(t, Handle(0), merged.Root())
	assert.Equal(t, 5, merged.Len())
	assert.ElementsMatch(t, []Handle{0, 1, 2, 3, 4}, slices.Collect(merged.Members()))
	for h := range Handle(5) {
		found, ok := e.Find(h)
		require.True(t, ok)
		assert.Same(t, merged, found)
	}
}

// partition returns the classes of handles 0..n-1 as sorted slices, sorted by first element
func partition(e *Equivalence) [][]Handle {
	var classes [][]Handle
	for set := range e.Sets() {
		classes = append(classes, slices.Sorted(set.Members()))
	}
	slices.SortFunc(classes, func(a, b []Handle) int { return int(a[0] - b[0]) })
	return classes
}

func TestUnionOrderDoesNotMatter(t *testing.T) {
	pairs := [][2]Handle{{0, 1}, {1, 2}, {3, 4}, {5, 6}, {6, 7}, {7, 5}, {2, 8}, {9, 9}}
	expected := [][]Handle{{0, 1, 2, 8}, {3, 4}, {5, 6, 7}, {9}}

	random := rand.New(rand.NewSource(42))
	for range 50 {
		random.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
		e := NewEquivalence()
		for _, pair := range pairs {
			if random.Intn(2) == 0 {
				e.Union(pair[0], pair[1])
			} else {
				e.Union(pair[1], pair[0])
			}
		}
		require.Equal(t, expected, partition(e), "pairs %v", pairs)
	}
}

func TestUnionCombinesEstimates(t *testing.T) {
	f := newFixture()
	unrelated := f.h.Class("Unrelated")
	tuple := typeset.Tuple(f.arrayList, f.list)

	testCases := []struct {
		name     string
		larger   typeset.TypeSet
		smaller  typeset.TypeSet
		expected typeset.TypeSet
	}{
		{name: "both unseeded", expected: nil},
		{name: "larger unseeded", smaller: tuple, expected: tuple},
		{name: "smaller unseeded", larger: tuple, expected: tuple},
		{name: "larger restricted to smaller", larger: tuple, smaller: typeset.Singleton(unrelated), expected: typeset.Singleton(f.arrayList)},
		{name: "empty wins", larger: typeset.Singleton(f.arrayList), smaller: typeset.Empty(), expected: typeset.Empty()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEquivalence()
			larger := e.Union(0, 1)
			larger.SetEstimate(tc.larger)
			e.Singleton(2).SetEstimate(tc.smaller)

			merged := e.Union(2, 0)
			assert.Same(t, larger, merged)
			if tc.expected == nil {
				assert.Nil(t, merged.Estimate())
				return
			}
			require.NotNil(t, merged.Estimate())
			assert.True(t, typeset.Equal(tc.expected, merged.Estimate()), "got %s", merged.Estimate())
		})
	}
}

func TestClone(t *testing.T) {
	f := newFixture()
	e := NewEquivalence()
	e.Union(0, 1).SetEstimate(typeset.Universe())

	cloned := e.Clone()
	cloned.Union(1, 2)
	class, ok := cloned.Find(0)
	require.True(t, ok)
	class.SetEstimate(typeset.Singleton(f.list))

	assert.False(t, e.Same(0, 2))
	original, _ := e.Find(0)
	assert.True(t, typeset.IsUniverse(original.Estimate()))
	assert.Equal(t, 2, original.Len())
}
