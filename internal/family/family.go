// Package family composes the unit, shuffle, cohort, distribution, and
// selection layers into genealogical relationships: birthdates, mothers,
// children, and partners, all computed without any persistent state.
package family

import (
	"fmt"

	"github.com/solsword/anarchy/internal/cohort"
	"github.com/solsword/anarchy/internal/distribution"
	"github.com/solsword/anarchy/internal/selection"
	"github.com/solsword/anarchy/internal/shuffle"
	"github.com/solsword/anarchy/internal/unit"
)

type Id = unit.Id

// None is the out-of-band sentinel identifier.
const None = unit.None

// OneEarthYear is the number of days used to convert year-denominated
// ages into day-denominated ones.
const OneEarthYear Id = 365

// PartnerSearchPolicy controls what NthPartner does when even the
// SHIFTED cohort case fails to produce an adequately aged candidate.
type PartnerSearchPolicy int

const (
	// PartnerPolicyNone returns None on exhaustion (the default).
	PartnerPolicyNone PartnerSearchPolicy = iota
	// PartnerPolicyRetry re-seeds once and retries the full cohort-case
	// scan before giving up.
	PartnerPolicyRetry
)

// FamilyInfo bundles every parameter needed to answer genealogical
// queries. Construct one with NewFamilyInfo or DefaultFamilyInfo; its
// fields are read-only in practice even though Go does not enforce that.
type FamilyInfo struct {
	Seed Id

	BirthRatePerDay          Id
	MinChildbearingAge       Id
	MaxChildbearingAge       Id
	AverageChildrenPerMother Id
	MaxChildrenPerMother     Id

	// AgeOfMotherTable holds the empirical age-of-mother distribution
	// (child's age at birth, weighted) used by table-driven selection.
	AgeOfMotherTable *distribution.SumTable

	MaxPartnersPerMother      Id
	LikelyPartnerAgeGap       Id
	UnlikelyPartnerAgeGap     Id
	MinPartnerAge             Id
	MaxPartnerAge             Id
	LikelyPartnerLikelihood   Id
	UnlikelyPartnerLikelihood Id
	MultiplePartnersPercent   Id

	PartnerSearchPolicy PartnerSearchPolicy
}

// NewFamilyInfo validates and constructs a FamilyInfo. dist is a raw
// relative-weight distribution vector for age-of-mother; multiplier
// scales its prefix sum into an absolute cohort size and is floor-rounded
// to a multiple of the distribution's total weight so that cohort sizes
// come out clean in both the forward and inverse directions.
func NewFamilyInfo(
	seed, birthRatePerDay, minChildbearingAge, maxChildbearingAge Id,
	averageChildrenPerMother, maxChildrenPerMother Id,
	dist []float64, multiplier Id,
	maxPartnersPerMother, likelyPartnerAgeGap, unlikelyPartnerAgeGap Id,
	minPartnerAge, maxPartnerAge Id,
	likelyPartnerLikelihood, unlikelyPartnerLikelihood, multiplePartnersPercent Id,
	policy PartnerSearchPolicy,
) (FamilyInfo, error) {
	if averageChildrenPerMother == 0 {
		return FamilyInfo{}, fmt.Errorf("family: average_children_per_mother must be at least 1")
	}
	if averageChildrenPerMother >= maxChildrenPerMother/2 {
		return FamilyInfo{}, fmt.Errorf(
			"family: average_children_per_mother (%d) must be less than max_children_per_mother/2 (%d)",
			averageChildrenPerMother, maxChildrenPerMother/2,
		)
	}
	if maxPartnersPerMother >= maxChildrenPerMother {
		return FamilyInfo{}, fmt.Errorf(
			"family: max_partners_per_mother (%d) must be strictly less than max_children_per_mother (%d)",
			maxPartnersPerMother, maxChildrenPerMother,
		)
	}
	if len(dist) == 0 {
		return FamilyInfo{}, fmt.Errorf("family: age-of-mother distribution must be non-empty")
	}
	if birthRatePerDay == 0 {
		return FamilyInfo{}, fmt.Errorf("family: birth_rate_per_day must be at least 1")
	}
	if minChildbearingAge >= maxChildbearingAge {
		return FamilyInfo{}, fmt.Errorf(
			"family: min_childbearing_age (%d) must be less than max_childbearing_age (%d)",
			minChildbearingAge, maxChildbearingAge,
		)
	}
	if likelyPartnerLikelihood == 0 || unlikelyPartnerLikelihood == 0 {
		return FamilyInfo{}, fmt.Errorf("family: partner likelihood denominators must be at least 1")
	}
	if multiplePartnersPercent > 100 {
		return FamilyInfo{}, fmt.Errorf(
			"family: multiple_partners_percent (%d) must be at most 100", multiplePartnersPercent,
		)
	}

	rawTotal := Id(0)
	for _, w := range dist {
		rawTotal += Id(w)
	}
	if rawTotal == 0 {
		rawTotal = 1
	}
	roundedMultiplier := (multiplier / rawTotal) * rawTotal
	if roundedMultiplier == 0 {
		roundedMultiplier = rawTotal
	}

	table := distribution.NewSumTable(dist, roundedMultiplier)

	return FamilyInfo{
		Seed:                      seed,
		BirthRatePerDay:           birthRatePerDay,
		MinChildbearingAge:        minChildbearingAge,
		MaxChildbearingAge:        maxChildbearingAge,
		AverageChildrenPerMother:  averageChildrenPerMother,
		MaxChildrenPerMother:      maxChildrenPerMother,
		AgeOfMotherTable:          table,
		MaxPartnersPerMother:      maxPartnersPerMother,
		LikelyPartnerAgeGap:       likelyPartnerAgeGap,
		UnlikelyPartnerAgeGap:     unlikelyPartnerAgeGap,
		MinPartnerAge:             minPartnerAge,
		MaxPartnerAge:             maxPartnerAge,
		LikelyPartnerLikelihood:   likelyPartnerLikelihood,
		UnlikelyPartnerLikelihood: unlikelyPartnerLikelihood,
		MultiplePartnersPercent:   multiplePartnersPercent,
		PartnerSearchPolicy:       policy,
	}, nil
}

// defaultAgeOfMotherDistribution is a rough bell-shaped stand-in for an
// empirical age-of-motherhood weighting, heaviest in the middle of the
// childbearing years.
var defaultAgeOfMotherDistribution = []float64{
	1, 2, 4, 7, 10, 13, 15, 15, 13, 10, 7, 4, 2, 1,
}

// DefaultFamilyInfo mirrors the source's built-in parameter set: modern
// birth rate, childbearing ages 15-40 years, average one child per
// mother, and the usual partner-age-gap defaults.
func DefaultFamilyInfo() FamilyInfo {
	info, err := NewFamilyInfo(
		9728182391,
		9984,
		15*OneEarthYear,
		40*OneEarthYear,
		1,
		32,
		defaultAgeOfMotherDistribution,
		320,
		16,
		3*OneEarthYear,
		7*OneEarthYear,
		20*OneEarthYear,
		40*OneEarthYear,
		6,
		4,
		21,
		PartnerPolicyNone,
	)
	if err != nil {
		// The default parameters are fixed and known-valid; if this ever
		// fires it means the defaults above were edited inconsistently.
		panic(err)
	}
	return info
}

// ChildIdAdjust is the fixed offset between a parent's Id and the lowest
// Id any of their children may have, so that children are always
// numerically downstream of their parents.
func ChildIdAdjust(info FamilyInfo) Id {
	return info.BirthRatePerDay * info.MinChildbearingAge
}

// IsChildBearer reports whether person is on the child-bearing half of
// the population (even Id).
func IsChildBearer(person Id) bool {
	return person%2 == 0
}

// ChildBearer forces person to the child-bearing member of its duo.
func ChildBearer(person Id) Id {
	return person - person%2
}

// NonChildBearer forces person to the non-child-bearing member of its
// duo.
func NonChildBearer(person Id) Id {
	return person - person%2 + 1
}

// Separated returns the duo index shared by person and its partner.
func Separated(person Id) Id {
	return person / 2
}

// DuoChildBearer recovers the child-bearing person from a duo index.
func DuoChildBearer(duo Id) Id {
	return duo * 2
}

// DuoNonChildBearer recovers the non-child-bearing person from a duo
// index.
func DuoNonChildBearer(duo Id) Id {
	return duo*2 + 1
}

// Birthdate returns the day person was born on.
func Birthdate(info FamilyInfo, person Id) Id {
	return cohort.MixedCohort(person, info.BirthRatePerDay, info.Seed+17)
}

// FirstBornOn is the inverse of Birthdate restricted to the earliest
// person born on the given day. The leading slot of every birth cohort
// is drawn from the preceding strict cohort, so the epoch day's first
// born predates the id space and is reported as None.
func FirstBornOn(info FamilyInfo, day Id) Id {
	if day == 0 {
		return None
	}
	return cohort.MixedCohortOuter(day, 0, info.BirthRatePerDay, info.Seed+17)
}

// Mother returns person's mother (always a child-bearer), or None if
// person is None.
func Mother(info FamilyInfo, person Id) Id {
	mother, _ := MotherAndIndex(info, person)
	return mother
}

// MotherAndIndex returns both person's mother and person's index among
// that mother's direct children.
func MotherAndIndex(info FamilyInfo, person Id) (mother, index Id) {
	if person == None {
		return None, 0
	}

	adjust := ChildIdAdjust(info)
	adjusted := person - adjust
	if adjusted > person { // underflow
		return None, 0
	}

	rawMother, rawIndex := selection.SelectTableParentAndIndex(
		adjusted, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
	)
	if rawMother == None {
		return None, 0
	}

	mother = ChildBearer(rawMother)
	index = rawIndex
	if rawMother != mother {
		index += selection.CountSelectTableChildren(
			mother, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
		)
	}
	return mother, index
}

// DirectChild returns the nth child directly attributed to person's duo
// (person must be a child-bearer; the non-child-bearing successor's
// children are folded in after the child-bearer's own).
func DirectChild(info FamilyInfo, person, nth Id) Id {
	if !IsChildBearer(person) {
		return None
	}

	firstCount := selection.CountSelectTableChildren(
		person, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
	)

	var child Id
	if nth < firstCount {
		child = selection.SelectTableNthChild(
			person, nth, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
		)
	} else {
		child = selection.SelectTableNthChild(
			person+1, nth-firstCount, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
		)
	}
	if child == None {
		return None
	}

	adjust := ChildIdAdjust(info)
	adjusted := child + adjust
	if adjusted < child { // overflow
		return None
	}
	return adjusted
}

// NumDirectChildren sums the children attributed to both members of
// person's duo.
func NumDirectChildren(info FamilyInfo, person Id) Id {
	if person == None || !IsChildBearer(person) {
		return 0
	}
	return selection.CountSelectTableChildren(
		person, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
	) + selection.CountSelectTableChildren(
		person+1, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
	)
}

// cohortCase enumerates the four candidate pools NthPartner and
// NthPotentialPartnerAndIndex search through in order.
type cohortCase int

const (
	cohortCaseLikely cohortCase = iota
	cohortCaseUnlikely
	cohortCaseFull
	cohortCaseShifted
	cohortCaseMax
)

func partnerLikelyCohortSize(info FamilyInfo) Id {
	return info.LikelyPartnerAgeGap * info.BirthRatePerDay / 4
}

func partnerUnlikelyCohortSize(info FamilyInfo) Id {
	return info.UnlikelyPartnerAgeGap * info.BirthRatePerDay / 4
}

func partnerFullCohortSize(info FamilyInfo) Id {
	return (info.MaxPartnerAge - info.MinPartnerAge) * info.BirthRatePerDay / 4
}

func cohortCaseParameters(c cohortCase, info FamilyInfo) (size, adjust, fraction Id) {
	likely := partnerLikelyCohortSize(info)
	unlikely := partnerUnlikelyCohortSize(info)
	full := partnerFullCohortSize(info)

	switch c {
	case cohortCaseLikely:
		return likely, 0, likely / info.LikelyPartnerLikelihood
	case cohortCaseUnlikely:
		return unlikely, 0, unlikely / info.UnlikelyPartnerLikelihood
	case cohortCaseFull:
		return full, 0, full
	case cohortCaseShifted:
		return likely, 1, 0
	default:
		return 0, 0, 0
	}
}

func numPotentialPartners(info FamilyInfo) Id {
	return 4 * info.MaxPartnersPerMother
}

// nthPotentialPartnerAndIndex derives the nth candidate child-bearing
// partner for a non-child-bearer, and the index that candidate would
// need to list person at in order for the match to be mutual. Returns
// (None, 0) when the candidate slot is vacant (fractionated out, or
// person is itself a child-bearer).
func nthPotentialPartnerAndIndex(info FamilyInfo, person, nth Id) (partner, index Id) {
	if IsChildBearer(person) {
		return None, 0
	}

	c := cohortCase(nth / info.MaxPartnersPerMother)
	whichPartner := nth % info.MaxPartnersPerMother

	size, adjust, fraction := cohortCaseParameters(c, info)

	cohortIdx, inner := cohort.MixedCohortAndInner(Separated(person), size, info.Seed+83923*whichPartner)
	if inner < fraction {
		return None, 0
	}
	cohortIdx -= adjust

	unshuffled := shuffle.RevCohortShuffle(inner, size, info.Seed+28999*whichPartner)
	candidate := cohort.MixedCohortOuter(cohortIdx, unshuffled, size, info.Seed+1827*whichPartner)

	unsep := DuoChildBearer(candidate)
	numActual := NumPartners(info, unsep)
	if whichPartner >= numActual {
		return None, 0
	}

	start := (unsep + info.Seed) % numActual
	adjWhich := (whichPartner + numActual - start) % numActual

	return unsep, adjWhich
}

// NumPartners returns how many partners person has. For a child-bearer,
// this is drawn from a capped geometric distribution; for a
// non-child-bearer, it is the count of candidates that mutually list
// person among their partners.
func NumPartners(info FamilyInfo, person Id) Id {
	if person == None {
		return 0
	}

	if IsChildBearer(person) {
		childCount := NumDirectChildren(info, person)
		numPartners := Id(1)
		random := unit.Prng(person, info.Seed+48935729874918238)
		for random%100 < info.MultiplePartnersPercent && numPartners < childCount {
			numPartners++
			random = unit.Prng(random, info.Seed+48935729874918238+numPartners)
		}
		return numPartners
	}

	numPotential := numPotentialPartners(info)
	count := Id(0)
	for nth := Id(0); nth < numPotential; nth++ {
		candidate, index := nthPotentialPartnerAndIndex(info, person, nth)
		if candidate == None {
			continue
		}
		if NthPartner(info, candidate, index) == person {
			count++
		}
	}
	return count
}

// nthPartnerChildBearer scans the four cohort cases in order looking for
// an adequately aged partner candidate, using seed (rather than
// info.Seed directly) so that a retry pass can perturb the search
// without touching any other computation.
func nthPartnerChildBearer(info FamilyInfo, person, nth, seed Id) Id {
	childCount := NumDirectChildren(info, person)
	if nth >= childCount {
		return None
	}
	numPartners := NumPartners(info, person)
	if nth >= numPartners {
		return None
	}
	whichPartner := (nth + person + seed) % numPartners

	for c := cohortCaseLikely; c < cohortCaseMax; c++ {
		size, adjust, fraction := cohortCaseParameters(c, info)

		cohortIdx, inner := cohort.MixedCohortAndInner(Separated(person), size, seed+1827*whichPartner)
		shuf := shuffle.CohortShuffle(inner, size, seed+28999*whichPartner)
		if shuf < fraction {
			continue
		}
		cohortIdx += adjust

		start := (person + seed) % childCount
		sepMatch := cohort.MixedCohortOuter(cohortIdx, shuf, size, seed+83923*whichPartner)
		candidate := DuoNonChildBearer(sepMatch)

		ageOK := true
		for childIndex := start; childIndex < childCount; childIndex += numPartners {
			child := DirectChild(info, person, childIndex)
			if child == None {
				continue
			}
			// The subtraction wraps for candidates born before the child,
			// which always clears the bound; only candidates born within
			// MinPartnerAge days after the child are too young.
			if Birthdate(info, candidate)-Birthdate(info, child) < info.MinPartnerAge {
				ageOK = false
				break
			}
		}
		if ageOK {
			return candidate
		}
	}
	return None
}

// NthPartner returns person's nth partner (0-indexed), or None if person
// has fewer than nth+1 partners.
func NthPartner(info FamilyInfo, person, nth Id) Id {
	if person == None {
		return None
	}

	if IsChildBearer(person) {
		result := nthPartnerChildBearer(info, person, nth, info.Seed)
		if result == None && info.PartnerSearchPolicy == PartnerPolicyRetry {
			result = nthPartnerChildBearer(info, person, nth, info.Seed+999331)
		}
		return result
	}

	numPotential := numPotentialPartners(info)
	for any := Id(0); any < numPotential; any++ {
		candidate, index := nthPotentialPartnerAndIndex(info, person, any)
		if candidate == None {
			continue
		}
		if NthPartner(info, candidate, index) == person {
			if nth == 0 {
				return candidate
			}
			nth--
		}
	}
	return None
}

// Child returns person's nth child overall: direct children if person is
// a child-bearer, or children allocated to person through each partner
// (round-robin by partner count, with leftovers going to the
// lowest-indexed partners) otherwise.
func Child(info FamilyInfo, person, nth Id) Id {
	if IsChildBearer(person) {
		return DirectChild(info, person, nth)
	}

	numPotential := numPotentialPartners(info)
	for any := Id(0); any < numPotential; any++ {
		candidate, index := nthPotentialPartnerAndIndex(info, person, any)
		if candidate == None {
			continue
		}
		if NthPartner(info, candidate, index) != person {
			continue
		}

		numPartners := NumPartners(info, candidate)
		childCount := NumDirectChildren(info, candidate)
		childrenWithThisPartner := childCount / numPartners
		leftovers := childCount - numPartners*childrenWithThisPartner
		if index < leftovers {
			childrenWithThisPartner++
		}

		if nth < childrenWithThisPartner {
			return DirectChild(info, candidate, numPartners*nth+index)
		}
		nth -= childrenWithThisPartner
	}
	return None
}

// NumChildren returns how many children person has in total, direct or
// through a partner.
func NumChildren(info FamilyInfo, person Id) Id {
	if IsChildBearer(person) {
		return NumDirectChildren(info, person)
	}

	total := Id(0)
	numPotential := numPotentialPartners(info)
	for any := Id(0); any < numPotential; any++ {
		candidate, index := nthPotentialPartnerAndIndex(info, person, any)
		if candidate == None {
			continue
		}
		if NthPartner(info, candidate, index) != person {
			continue
		}

		childCount := NumDirectChildren(info, candidate)
		numPartners := NumPartners(info, candidate)
		childrenWithThisPartner := childCount / numPartners
		leftovers := childCount - numPartners*childrenWithThisPartner
		if index < leftovers {
			childrenWithThisPartner++
		}
		total += childrenWithThisPartner
	}
	return total
}
