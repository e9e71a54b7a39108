// Package selection assigns each child in a child cohort to exactly one
// parent in a smaller parent cohort (and back again), by recursively
// halving a parent range against a correspondingly halved child range
// using a smoothed, irreversible random cut point at each step; both
// directions recompute the same sequence of cut points.
package selection

import (
	"github.com/solsword/anarchy/internal/cohort"
	"github.com/solsword/anarchy/internal/distribution"
	"github.com/solsword/anarchy/internal/shuffle"
	"github.com/solsword/anarchy/internal/unit"
)

type Id = unit.Id

// None is the out-of-band sentinel identifier.
const None = unit.None

func min2(parentsLeft Id) Id {
	if parentsLeft < 2 {
		return parentsLeft
	}
	return 2
}

// descent holds the state of the recursive binary split shared by every
// selection variant's forward and inverse traversal.
type descent struct {
	fromUpper, toUpper, parentsLeft  Id
	fromLower, toLower, childrenLeft Id
	divideAt                         Id
}

// newDescent initializes the parent/child windows for a fresh traversal.
// Callers must set d.divideAt (the initial cut point) themselves before
// stepping, since it is seeded from a cohort index that differs per
// variant.
func newDescent(upperCohortSize, maxArity Id) *descent {
	return &descent{
		fromUpper: 0, toUpper: upperCohortSize, parentsLeft: upperCohortSize,
		fromLower: 0, toLower: maxArity, childrenLeft: maxArity,
	}
}

// stepFromChild advances the descent given a (possibly already-offset)
// shuffled child position, returning the updated position.
func (d *descent) stepFromChild(shuf, seed Id) Id {
	halfRemaining := d.parentsLeft / 2
	d.divideAt = unit.IrrevSmoothPrng(d.divideAt, d.childrenLeft, min2(d.parentsLeft), seed)

	if shuf >= d.divideAt {
		shuf -= d.divideAt
		d.fromLower += d.divideAt
		d.fromUpper += halfRemaining
	} else {
		d.toLower -= d.childrenLeft - d.divideAt
		d.toUpper -= d.parentsLeft - halfRemaining
	}
	d.parentsLeft = d.toUpper - d.fromUpper
	d.childrenLeft = d.toLower - d.fromLower
	return shuf
}

// stepFromParent advances the descent given a shuffled parent position,
// returning the updated position. The inequality test differs from
// stepFromChild's (against half_remaining rather than divide_at), which
// is why nth-child descent must be driven separately from
// parent-and-index descent rather than sharing one method.
func (d *descent) stepFromParent(shuf, seed Id) Id {
	halfRemaining := d.parentsLeft / 2
	d.divideAt = unit.IrrevSmoothPrng(d.divideAt, d.childrenLeft, min2(d.parentsLeft), seed)

	if shuf >= halfRemaining {
		shuf -= halfRemaining
		d.fromLower += d.divideAt
		d.fromUpper += halfRemaining
	} else {
		d.toLower -= d.childrenLeft - d.divideAt
		d.toUpper -= d.parentsLeft - halfRemaining
	}
	d.parentsLeft = d.toUpper - d.fromUpper
	d.childrenLeft = d.toLower - d.fromLower
	return shuf
}

// SelectParentAndIndex maps an absolute child id to its parent and its
// index among that parent's children. Child ids are expected to carry the
// max_arity offset applied by SelectNthChild; child == None maps to
// (None, None).
func SelectParentAndIndex(child, avgArity, maxArity, seed Id) (parent, index Id) {
	if child == None {
		return None, None
	}
	adjusted := child - maxArity
	if adjusted > child { // underflow: ids below maxArity are nobody's children
		return None, None
	}
	child = adjusted

	upperCohortSize := maxArity / avgArity

	c, inner := cohort.MixedCohortAndInner(child, maxArity, seed)
	shuf := shuffle.CohortShuffle(inner, maxArity, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = c + seed

	for d.parentsLeft > 1 {
		shuf = d.stepFromChild(shuf, seed)
	}

	index = shuf
	unshuf := shuffle.RevCohortShuffle(d.fromUpper, upperCohortSize, seed)
	parent = cohort.MixedCohortOuter(c, unshuf, upperCohortSize, seed)
	return parent, index
}

// SelectNthChild is the inverse traversal: given a parent and a desired
// child index, it returns the absolute child id, or None if the parent
// has fewer than nth+1 children.
func SelectNthChild(parent, nth, avgArity, maxArity, seed Id) Id {
	upperCohortSize := maxArity / avgArity

	c, inner := cohort.MixedCohortAndInner(parent, upperCohortSize, seed)
	shuf := shuffle.CohortShuffle(inner, upperCohortSize, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = c + seed

	for d.parentsLeft > 1 && d.childrenLeft > 0 {
		shuf = d.stepFromParent(shuf, seed)
	}

	if nth >= d.childrenLeft {
		return None
	}

	unshuf := shuffle.RevCohortShuffle(d.fromLower+nth, maxArity, seed)
	child := cohort.MixedCohortOuter(c, unshuf, maxArity, seed)
	adjusted := child + maxArity
	if adjusted < child { // overflow at the mixed-cohort wraparound boundary
		return None
	}
	return adjusted
}

// CountSelectChildren runs the same descent as SelectNthChild and returns
// how many children the parent actually has.
func CountSelectChildren(parent, avgArity, maxArity, seed Id) Id {
	upperCohortSize := maxArity / avgArity

	c, inner := cohort.MixedCohortAndInner(parent, upperCohortSize, seed)
	shuf := shuffle.CohortShuffle(inner, upperCohortSize, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = c + seed

	for d.parentsLeft > 1 && d.childrenLeft > 0 {
		shuf = d.stepFromParent(shuf, seed)
	}

	return d.childrenLeft
}

// SelectExpParentAndIndex works like SelectParentAndIndex, but children
// are drawn from an exponentially-distributed super-cohort of size
// maxArity*expCohortSize rather than a flat maxArity-wide cohort, so that
// the number of children per super-cohort varies exponentially across
// parent cohorts (see internal/distribution's multi-exponential scheme).
func SelectExpParentAndIndex(
	child, avgArity, maxArity Id,
	shape float64, expCohortSize, expCohortLayers, seed Id,
) (parent, index Id) {
	if child == None {
		return None, None
	}

	upperCohortSize := maxArity / avgArity
	lowerCohortSize := maxArity * expCohortSize

	superCohort, inner := distribution.MultiExpCohortAndInner(child, shape, lowerCohortSize, expCohortLayers, seed)
	if superCohort == None {
		return None, None
	}
	inner = shuffle.CohortShuffle(inner, lowerCohortSize, seed)

	subCohort, innerFinal := cohort.CohortAndInner(inner, maxArity)
	parentCohort := superCohort*expCohortSize + subCohort

	shuf := shuffle.CohortShuffle(innerFinal, maxArity, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = parentCohort + seed

	for d.parentsLeft > 1 {
		shuf = d.stepFromChild(shuf, seed)
	}

	index = shuf
	unshuf := shuffle.RevCohortShuffle(d.fromUpper, upperCohortSize, seed)
	parent = cohort.CohortOuter(parentCohort, unshuf, upperCohortSize)
	return parent, index
}

// SelectExpNthChild is the inverse of SelectExpParentAndIndex.
func SelectExpNthChild(
	parent, nth, avgArity, maxArity Id,
	shape float64, expCohortSize, expCohortLayers, seed Id,
) Id {
	upperCohortSize := maxArity / avgArity
	lowerCohortSize := maxArity * expCohortSize

	parentCohort, inner := cohort.CohortAndInner(parent, upperCohortSize)
	shuf := shuffle.CohortShuffle(inner, upperCohortSize, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = parentCohort + seed

	for d.parentsLeft > 1 && d.childrenLeft > 0 {
		shuf = d.stepFromParent(shuf, seed)
	}

	if nth >= d.childrenLeft {
		return None
	}

	unshuf := shuffle.RevCohortShuffle(d.fromLower+nth, maxArity, seed)
	outer := cohort.CohortOuter(parentCohort%expCohortSize, unshuf, maxArity)
	unshuf = shuffle.RevCohortShuffle(outer, lowerCohortSize, seed)

	return distribution.MultiExpCohortOuter(parentCohort/expCohortSize, unshuf, shape, lowerCohortSize, expCohortLayers, seed)
}

// SelectPolyParentAndIndex works like SelectExpParentAndIndex, but draws
// the child super-cohort from the polynomial (telescoping) distribution
// instead of the exponential one. The telescoping repack keeps inner ids
// dense over the whole super-cohort and its outer map is a two-sided
// inverse, which is what makes this composition exactly invertible.
func SelectPolyParentAndIndex(
	child, avgArity, maxArity Id,
	polyBase, polyShape, seed Id,
) (parent, index Id) {
	if child == None {
		return None, None
	}

	upperCohortSize := maxArity / avgArity
	polyCohortSize := distribution.Quadsum(polyBase, polyShape)
	lowerCohortSize := maxArity * polyCohortSize

	superCohort, inner := distribution.MultipolyCohortAndInner(child, polyBase, polyShape, lowerCohortSize, seed)
	inner = shuffle.CohortShuffle(inner, lowerCohortSize, seed)

	subCohort, innerFinal := cohort.CohortAndInner(inner, maxArity)
	parentCohort := superCohort*polyCohortSize + subCohort

	shuf := shuffle.CohortShuffle(innerFinal, maxArity, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = parentCohort + seed

	for d.parentsLeft > 1 {
		shuf = d.stepFromChild(shuf, seed)
	}

	index = shuf
	unshuf := shuffle.RevCohortShuffle(d.fromUpper, upperCohortSize, seed)
	parent = cohort.CohortOuter(parentCohort, unshuf, upperCohortSize)
	return parent, index
}

// SelectPolyNthChild is the inverse of SelectPolyParentAndIndex.
func SelectPolyNthChild(
	parent, nth, avgArity, maxArity Id,
	polyBase, polyShape, seed Id,
) Id {
	upperCohortSize := maxArity / avgArity
	polyCohortSize := distribution.Quadsum(polyBase, polyShape)
	lowerCohortSize := maxArity * polyCohortSize

	parentCohort, inner := cohort.CohortAndInner(parent, upperCohortSize)
	shuf := shuffle.CohortShuffle(inner, upperCohortSize, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = parentCohort + seed

	for d.parentsLeft > 1 && d.childrenLeft > 0 {
		shuf = d.stepFromParent(shuf, seed)
	}

	if nth >= d.childrenLeft {
		return None
	}

	unshuf := shuffle.RevCohortShuffle(d.fromLower+nth, maxArity, seed)
	outer := cohort.CohortOuter(parentCohort%polyCohortSize, unshuf, maxArity)
	unshuf = shuffle.RevCohortShuffle(outer, lowerCohortSize, seed)

	return distribution.MultipolyCohortOuter(parentCohort/polyCohortSize, unshuf, polyBase, polyShape, lowerCohortSize, seed)
}

// SelectTableParentAndIndex works like SelectExpParentAndIndex, but draws
// the child super-cohort's weighting from an empirical table (such as an
// age-of-mother distribution) instead of an exponential curve.
func SelectTableParentAndIndex(
	child, avgArity, maxArity Id, table *distribution.SumTable, seed Id,
) (parent, index Id) {
	if child == None {
		return None, None
	}

	upperCohortSize := maxArity / avgArity
	tableTotal := table.Total()
	lowerCohortSize := maxArity * tableTotal

	superCohort, inner := table.TabulatedCohortAndInner(child, lowerCohortSize, seed)
	inner = shuffle.CohortShuffle(inner, lowerCohortSize, seed)

	subCohort, innerFinal := cohort.CohortAndInner(inner, maxArity)
	parentCohort := superCohort*tableTotal + subCohort

	shuf := shuffle.CohortShuffle(innerFinal, maxArity, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = parentCohort + seed

	for d.parentsLeft > 1 {
		shuf = d.stepFromChild(shuf, seed)
	}

	index = shuf
	unshuf := shuffle.RevCohortShuffle(d.fromUpper, upperCohortSize, seed)
	parent = cohort.CohortOuter(parentCohort, unshuf, upperCohortSize)
	return parent, index
}

// SelectTableNthChild is the inverse of SelectTableParentAndIndex.
func SelectTableNthChild(
	parent, nth, avgArity, maxArity Id, table *distribution.SumTable, seed Id,
) Id {
	upperCohortSize := maxArity / avgArity
	tableTotal := table.Total()
	lowerCohortSize := maxArity * tableTotal

	parentCohort, inner := cohort.CohortAndInner(parent, upperCohortSize)
	shuf := shuffle.CohortShuffle(inner, upperCohortSize, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = parentCohort + seed

	for d.parentsLeft > 1 && d.childrenLeft > 0 {
		shuf = d.stepFromParent(shuf, seed)
	}

	if nth >= d.childrenLeft {
		return None
	}

	unshuf := shuffle.RevCohortShuffle(d.fromLower+nth, maxArity, seed)
	outer := cohort.CohortOuter(parentCohort%tableTotal, unshuf, maxArity)
	unshuf = shuffle.RevCohortShuffle(outer, lowerCohortSize, seed)

	return table.TabulatedCohortOuter(parentCohort/tableTotal, unshuf, lowerCohortSize, seed)
}

// CountSelectTableChildren runs the same descent as SelectTableNthChild and
// returns how many children the parent actually has.
func CountSelectTableChildren(parent, avgArity, maxArity Id, table *distribution.SumTable, seed Id) Id {
	upperCohortSize := maxArity / avgArity

	parentCohort, inner := cohort.CohortAndInner(parent, upperCohortSize)
	shuf := shuffle.CohortShuffle(inner, upperCohortSize, seed)

	d := newDescent(upperCohortSize, maxArity)
	d.divideAt = parentCohort + seed

	for d.parentsLeft > 1 && d.childrenLeft > 0 {
		shuf = d.stepFromParent(shuf, seed)
	}

	return d.childrenLeft
}
