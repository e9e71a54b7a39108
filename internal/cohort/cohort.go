// Package cohort implements uniform, mixed, and biased partitioning of the
// identifier space into fixed-size cohorts, built on top of the shuffle
// layer's reversible permutations.
package cohort

import (
	"github.com/solsword/anarchy/internal/shuffle"
	"github.com/solsword/anarchy/internal/unit"
)

type Id = unit.Id

// MaxBias and MidBias bound the bias parameter accepted by BiasedCohort.
// MidBias reproduces an unbiased 50/50 split.
const (
	MaxBias Id = 32
	MidBias Id = 16
)

// Cohort returns which fixed-size cohort outer falls into.
func Cohort(outer, cohortSize Id) Id {
	return outer / cohortSize
}

// CohortInner returns outer's position within its cohort.
func CohortInner(outer, cohortSize Id) Id {
	return outer % cohortSize
}

// CohortAndInner combines Cohort and CohortInner.
func CohortAndInner(outer, cohortSize Id) (cohort, inner Id) {
	return Cohort(outer, cohortSize), CohortInner(outer, cohortSize)
}

// CohortOuter recovers the absolute identifier from a cohort and inner id.
func CohortOuter(cohort, inner, cohortSize Id) Id {
	return cohort*cohortSize + inner
}

// MixedCohortAndInner assigns outer to a cohort that draws 50% of its
// members from each of two adjacent strict cohorts. The returned inner id
// is the shuffle result itself, which carries the positional information
// needed to invert the assignment (values below cohortSize/2 came from the
// strict cohort below the returned cohort).
func MixedCohortAndInner(outer, cohortSize, seed Id) (cohort, inner Id) {
	strictCohort, strictInner := CohortAndInner(outer, cohortSize)
	shuf := shuffle.CohortShuffle(strictInner, cohortSize, seed+strictCohort)

	if shuf < cohortSize/2 {
		return strictCohort + 1, shuf
	}
	return strictCohort, shuf
}

// MixedCohort is MixedCohortAndInner's cohort half.
func MixedCohort(outer, cohortSize, seed Id) Id {
	cohort, _ := MixedCohortAndInner(outer, cohortSize, seed)
	return cohort
}

// MixedCohortInner is MixedCohortAndInner's inner half.
func MixedCohortInner(outer, cohortSize, seed Id) Id {
	_, inner := MixedCohortAndInner(outer, cohortSize, seed)
	return inner
}

// MixedCohortOuter is the inverse of MixedCohortAndInner.
func MixedCohortOuter(cohort, inner, cohortSize, seed Id) Id {
	var strictCohort Id
	if inner < cohortSize/2 {
		strictCohort = cohort - 1
	} else {
		strictCohort = cohort
	}

	unshuf := shuffle.RevCohortShuffle(inner, cohortSize, seed+strictCohort)
	return CohortOuter(strictCohort, unshuf, cohortSize)
}

// BiasedCohortAndInner works like MixedCohortAndInner but the split point
// between "stays" and "promotes to the next cohort" is controlled by bias,
// which must be in [1, MaxBias).
func BiasedCohortAndInner(outer, bias, cohortSize, seed Id) (cohort, inner Id) {
	strictCohort, strictInner := CohortAndInner(outer, cohortSize)
	shuf := shuffle.CohortShuffle(strictInner, cohortSize, seed+strictCohort)
	split := (cohortSize * (MaxBias - bias)) / MaxBias

	if shuf < split {
		return strictCohort + 1, shuf
	}
	return strictCohort, shuf
}

// BiasedCohortOuter is the inverse of BiasedCohortAndInner.
func BiasedCohortOuter(cohort, inner, bias, cohortSize, seed Id) Id {
	split := (cohortSize * (MaxBias - bias)) / MaxBias

	var strictCohort Id
	if inner < split {
		strictCohort = cohort - 1
	} else {
		strictCohort = cohort
	}

	unshuf := shuffle.RevCohortShuffle(inner, cohortSize, seed+strictCohort)
	return CohortOuter(strictCohort, unshuf, cohortSize)
}

// NearestBias snaps a fractional bias in [0,1] to the nearest valid bias
// value accepted by BiasedCohortAndInner.
func NearestBias(f float64) Id {
	result := Id(float64(MaxBias)*f + 0.5)
	if result < 1 {
		return 1
	}
	if result >= MaxBias {
		return MaxBias - 1
	}
	return result
}
