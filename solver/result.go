package solver

import (
	"cmp"
	"github.com/phasereditor2d/supertype/constraints"
	"github.com/phasereditor2d/supertype/ttype"
	"github.com/phasereditor2d/supertype/typeset"
	"github.com/xtgo/set"
	"maps"
	"slices"
	"sort"
)

// Occurrence is a source location whose type can be rewritten to the supertype
type Occurrence struct {
	Range ttype.Range
	// Type is the type the location resolved to
	Type     ttype.Type
	Variable *constraints.Variable
}

// Result is the outcome of a solve. An empty result is a normal outcome:
// nothing can be rewritten
type Result struct {
	// TypeOccurrences holds, per file, the rewritable locations sorted by offset
	TypeOccurrences map[ttype.FileID][]Occurrence
	// ObsoleteCasts holds, per file, the casts made redundant sorted by offset
	ObsoleteCasts map[ttype.FileID][]*constraints.Variable
	Stats         Stats

	estimates []typeset.TypeSet
	resolved  []ttype.Type
}

// Estimate returns the final type set of v's equivalence class
func (r *Result) Estimate(v *constraints.Variable) typeset.TypeSet {
	return r.estimates[v.Handle()]
}

// Type returns the single type v resolved to, if any
func (r *Result) Type(v *constraints.Variable) (ttype.Type, bool) {
	t := r.resolved[v.Handle()]
	return t, t != nil
}

func (r *Result) NumTypeOccurrences() int {
	n := 0
	for _, occurrences := range r.TypeOccurrences {
		n += len(occurrences)
	}
	return n
}

func (r *Result) NumObsoleteCasts() int {
	n := 0
	for _, casts := range r.ObsoleteCasts {
		n += len(casts)
	}
	return n
}

// Files returns every file with an occurrence or an obsolete cast, sorted
func (r *Result) Files() []ttype.FileID {
	files := slices.Collect(maps.Keys(r.TypeOccurrences))
	files = append(files, slices.Collect(maps.Keys(r.ObsoleteCasts))...)
	slices.Sort(files)
	return slices.Compact(files)
}

func (r *Result) IsEmpty() bool {
	return len(r.TypeOccurrences) == 0 && len(r.ObsoleteCasts) == 0
}

// normalize sorts every list by range and keeps one entry per range
func (r *Result) normalize() {
	for file, occurrences := range r.TypeOccurrences {
		data := occurrencesByRange(occurrences)
		sort.Stable(data)
		r.TypeOccurrences[file] = occurrences[:set.Uniq(data)]
	}
	for file, casts := range r.ObsoleteCasts {
		data := castsByRange(casts)
		sort.Stable(data)
		r.ObsoleteCasts[file] = casts[:set.Uniq(data)]
	}
}

func compareRanges(a, b ttype.Range) int {
	return cmp.Or(cmp.Compare(a.Offset, b.Offset), cmp.Compare(a.Length, b.Length))
}

type occurrencesByRange []Occurrence

func (o occurrencesByRange) Len() int      { return len(o) }
func (o occurrencesByRange) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o occurrencesByRange) Less(i, j int) bool {
	return compareRanges(o[i].Range, o[j].Range) < 0
}

type castsByRange []*constraints.Variable

func (c castsByRange) Len() int      { return len(c) }
func (c castsByRange) Swap(i, j int) { c[i], c[j] = c[j], c[i] }
func (c castsByRange) Less(i, j int) bool {
	return compareRanges(c[i].Range(), c[j].Range()) < 0
}
