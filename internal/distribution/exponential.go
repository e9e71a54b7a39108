// Package distribution implements the three non-uniform cohort-weighting
// schemes used above the cohort layer: exponential (and multi-exponential),
// polynomial/telescoping, and table-driven. All three remain bijections
// between an absolute identifier and a (cohort, inner) pair; only the
// cohort-size distribution differs.
package distribution

import (
	"math"

	"github.com/solsword/anarchy/internal/cohort"
	"github.com/solsword/anarchy/internal/shuffle"
	"github.com/solsword/anarchy/internal/unit"
)

type Id = unit.Id

// None is the out-of-band sentinel identifier, re-exported for callers
// that only import this package.
const None = unit.None

// Resolution floors controlling how an exponential cohort is sliced into
// sections before the split curve is applied.
const (
	ExpSectionResolution Id = 32
	MinSectionCount      Id = 8
	MinSectionResolution Id = 4
)

func expSections(cohortSize Id) (resolution, sectionCount Id) {
	resolution = ExpSectionResolution
	sectionCount = cohortSize / resolution
	if sectionCount < MinSectionCount {
		resolution = cohortSize / MinSectionCount
		if resolution < MinSectionResolution {
			resolution = MinSectionResolution
		}
		sectionCount = cohortSize / resolution
	}
	return resolution, sectionCount
}

// ExpSplit computes the cutoff within section `which` (of `sections` total,
// each `sectionWidth` wide) below which items stay in the current cohort
// and above which they cross into the next one. Negative shape mirrors the
// section index, producing a curve symmetric to the positive-shape case.
func ExpSplit(shape float64, sections, sectionWidth, which Id) Id {
	if shape < 0 {
		which = sections - which - 1
		shape = -shape
	}
	x := float64(which) / float64(sections)
	return Id(float64(sectionWidth) * math.Exp(-x*-math.Log(shape)))
}

// ExpCohortAndInner assigns outer to an exponentially weighted cohort:
// within each section of the strict cohort, a split index decides whether
// items stay or cross to the adjacent cohort (direction depends on the
// sign of shape).
func ExpCohortAndInner(outer Id, shape float64, cohortSize, seed Id) (c, inner Id) {
	resolution, sectionCount := expSections(cohortSize)

	strictCohort, strictInner := cohort.CohortAndInner(outer, cohortSize)
	section := strictInner / resolution
	inSection := strictInner % resolution

	shuf := shuffle.CohortShuffle(inSection, resolution, seed+section)
	split := ExpSplit(shape, sectionCount, resolution, section)

	adjust := Id(0)
	if shuf >= split {
		if shape > 0 {
			adjust = 1
		} else {
			adjust = ^Id(0) // -1 in two's complement
		}
	}

	return strictCohort + adjust, shuf + section*resolution
}

// ExpCohortOuter is the inverse of ExpCohortAndInner.
func ExpCohortOuter(c, inner Id, shape float64, cohortSize, seed Id) Id {
	resolution, sectionCount := expSections(cohortSize)

	inSection := inner % resolution
	section := inner / resolution

	split := ExpSplit(shape, sectionCount, resolution, section)

	adjust := Id(0)
	if inSection >= split {
		if shape > 0 {
			adjust = 1
		} else {
			adjust = ^Id(0)
		}
	}

	strictCohort := c - adjust
	unshuf := shuffle.RevCohortShuffle(inSection, resolution, seed+section)
	strictInner := section*resolution + unshuf

	return cohort.CohortOuter(strictCohort, strictInner, cohortSize)
}
