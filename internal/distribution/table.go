package distribution

import (
	"github.com/solsword/anarchy/internal/shuffle"
)

// SumTable holds the prefix sum of an empirical distribution vector,
// scaled by a multiplier, plus the data needed to invert a position back
// to the slice that produced it. It keeps only the prefix-sum slice
// and inverts it with a binary search: the slice is monotonic by
// construction, so the search runs in O(log N) without needing a
// separate packed inverse-search tree (see DESIGN.md).
type SumTable struct {
	prefix     []Id
	multiplier Id
}

// NewSumTable builds a SumTable from a raw distribution vector. Each
// entry of dist is a non-negative relative weight; the resulting slice
// sizes are proportional to those weights and sum to Total().
func NewSumTable(dist []float64, multiplier Id) *SumTable {
	prefix := make([]Id, len(dist)+1)
	var acc float64
	for i, w := range dist {
		acc += w
		prefix[i+1] = Id(acc * float64(multiplier))
	}
	return &SumTable{prefix: prefix, multiplier: multiplier}
}

// Sections reports how many distribution entries the table was built
// from.
func (t *SumTable) Sections() Id {
	return Id(len(t.prefix) - 1)
}

// Total is the table-distributed span of ids: one full pass over all
// slices.
func (t *SumTable) Total() Id {
	return t.prefix[len(t.prefix)-1]
}

// search returns the largest index i with prefix[i] <= x.
func (t *SumTable) search(x Id) Id {
	lo, hi := 0, len(t.prefix)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.prefix[mid] <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Id(lo)
}

// TabulatedCohortAndInner assigns outer to a table-weighted cohort the
// same way MultipolyCohortAndInner does, with the table's empirical
// weights in place of the quadsum boundaries. Each region of
// Sections()*cohortSize ids holds Sections() sections of cohortSize ids;
// every section is sliced identically by the scaled prefix sum, and
// output cohort c collects its jth slice from section (c+j) mod
// Sections(). Inner ids span [0, cohortSize) densely. cohortSize must be
// a multiple of Total().
func (t *SumTable) TabulatedCohortAndInner(outer, cohortSize, seed Id) (c, inner Id) {
	sections := t.Sections()
	scale := cohortSize / t.Total()
	regionSize := sections * cohortSize

	region := outer / regionSize
	rest := outer % regionSize
	section := rest / cohortSize
	within := rest % cohortSize

	j := t.search(within / scale)
	sliceBase := t.prefix[j] * scale
	sliceSize := (t.prefix[j+1] - t.prefix[j]) * scale

	shuf := shuffle.CohortShuffle(within-sliceBase, sliceSize, seed+section)

	return region*sections + (section+sections-j)%sections, sliceBase + shuf
}

// TabulatedCohortOuter is the exact two-sided inverse of
// TabulatedCohortAndInner: it is defined for every inner in
// [0, cohortSize) and round-trips through TabulatedCohortAndInner for
// every such (c, inner) pair, not only for pairs some outer produced.
func (t *SumTable) TabulatedCohortOuter(c, inner, cohortSize, seed Id) Id {
	sections := t.Sections()
	scale := cohortSize / t.Total()
	regionSize := sections * cohortSize

	region := c / sections

	j := t.search(inner / scale)
	sliceBase := t.prefix[j] * scale
	sliceSize := (t.prefix[j+1] - t.prefix[j]) * scale

	section := (c%sections + j) % sections
	unshuf := shuffle.RevCohortShuffle(inner-sliceBase, sliceSize, seed+section)

	return region*regionSize + section*cohortSize + sliceBase + unshuf
}

// TabulatedOuterMin returns the smallest outer id that maps into the
// given output cohort, needed by age-gap offset math. The shuffle only
// permutes within a slice, so the minimum is the lowest slice start
// across the cohort's sections.
func (t *SumTable) TabulatedOuterMin(c, cohortSize Id) Id {
	sections := t.Sections()
	scale := cohortSize / t.Total()
	regionSize := sections * cohortSize

	region := c / sections
	cw := c % sections

	min := Id(0)
	for j := Id(0); j < sections; j++ {
		section := (cw + j) % sections
		candidate := region*regionSize + section*cohortSize + t.prefix[j]*scale
		if j == 0 || candidate < min {
			min = candidate
		}
	}
	return min
}
