package distribution

import (
	"math"

	"github.com/solsword/anarchy/internal/shuffle"
)

// Quadsum is the closed-form triangular sum shape·n·(n+1)/2, used as the
// cumulative boundary function for the polynomial (telescoping) cohort
// scheme: slice n has size shape·(n+1), so quadsum(n,shape) is the
// position where slice n begins.
func Quadsum(n, shape Id) Id {
	return shape * n * (n + 1) / 2
}

// InvQuadsum returns the largest n such that Quadsum(n,shape) <= y. It
// seeds a closed-form estimate from the quadratic formula and corrects by
// at most a couple of integer steps to absorb floating-point error.
func InvQuadsum(y, shape Id) Id {
	if shape == 0 {
		return 0
	}
	approx := math.Sqrt(0.25+2*float64(y)/float64(shape)) - 0.5
	n := Id(0)
	if approx > 0 {
		n = Id(approx)
	}
	for Quadsum(n+1, shape) <= y {
		n++
	}
	for n > 0 && Quadsum(n, shape) > y {
		n--
	}
	return n
}

// MultipolyNearestCohortSize returns the (size, base) pair where
// size = Quadsum(base, shape) and size is the closest admissible
// telescoping total to desired.
func MultipolyNearestCohortSize(shape, desired Id) (size, base Id) {
	base = InvQuadsum(desired, shape)
	low := Quadsum(base, shape)
	high := Quadsum(base+1, shape)

	var lowDist, highDist Id
	if desired >= low {
		lowDist = desired - low
	} else {
		lowDist = low - desired
	}
	if high >= desired {
		highDist = high - desired
	} else {
		highDist = desired - high
	}

	if highDist < lowDist {
		return high, base + 1
	}
	return low, base
}

// MultipolyCohortAndInner assigns outer to a telescoping cohort. Each
// region of base*cohortSize ids holds base sections of cohortSize ids;
// every section is sliced identically by the quadsum boundaries (slice j
// covers shape*(j+1) of every Quadsum(base, shape) ids), and output
// cohort c collects its jth slice from section (c+j) mod base. Every
// output cohort therefore draws exactly cohortSize members whose inner
// ids span [0, cohortSize) densely, which is what lets the selection
// layer shuffle and subdivide the result. cohortSize must be a multiple
// of Quadsum(base, shape).
func MultipolyCohortAndInner(outer, base, shape, cohortSize, seed Id) (c, inner Id) {
	scale := cohortSize / Quadsum(base, shape)
	regionSize := base * cohortSize

	region := outer / regionSize
	rest := outer % regionSize
	section := rest / cohortSize
	within := rest % cohortSize

	j := InvQuadsum(within/scale, shape)
	sliceBase := Quadsum(j, shape) * scale
	sliceSize := shape * (j + 1) * scale

	shuf := shuffle.CohortShuffle(within-sliceBase, sliceSize, seed+section)

	return region*base + (section+base-j)%base, sliceBase + shuf
}

// MultipolyCohortOuter is the exact two-sided inverse of
// MultipolyCohortAndInner: it is defined for every inner in
// [0, cohortSize) and round-trips through MultipolyCohortAndInner for
// every such (c, inner) pair, not only for pairs some outer produced.
func MultipolyCohortOuter(c, inner, base, shape, cohortSize, seed Id) Id {
	scale := cohortSize / Quadsum(base, shape)
	regionSize := base * cohortSize

	region := c / base

	j := InvQuadsum(inner/scale, shape)
	sliceBase := Quadsum(j, shape) * scale
	sliceSize := shape * (j + 1) * scale

	section := (c%base + j) % base
	unshuf := shuffle.RevCohortShuffle(inner-sliceBase, sliceSize, seed+section)

	return region*regionSize + section*cohortSize + sliceBase + unshuf
}
