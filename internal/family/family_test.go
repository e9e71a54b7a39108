package family

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solsword/anarchy/internal/cohort"
	"github.com/solsword/anarchy/internal/selection"
)

// TestBirthdateRoundTrip checks that birthdate(first_born_on(day)) =
// day for every day after the epoch; day 0's leading cohort slot
// predates the id space and surfaces as None.
func TestBirthdateRoundTrip(t *testing.T) {
	require := require.New(t)
	info := DefaultFamilyInfo()

	require.Equal(None, FirstBornOn(info, 0))
	for day := Id(1); day < 500; day++ {
		person := FirstBornOn(info, day)
		require.NotEqualf(None, person, "day=%d", day)
		require.Equalf(day, Birthdate(info, person), "day=%d person=%d", day, person)
	}
}

// TestBirthdateMatchesDefaultFormula pins down the concrete worked
// example: birthdate(P) under any FamilyInfo is exactly
// mixed_cohort(P, birth_rate_per_day, seed+17), computed here directly
// against the cohort layer rather than through Birthdate itself.
func TestBirthdateMatchesDefaultFormula(t *testing.T) {
	info := DefaultFamilyInfo()
	for _, person := range []Id{0, 1, 2, 1000, 9999999} {
		want := cohort.MixedCohort(person, info.BirthRatePerDay, info.Seed+17)
		got := Birthdate(info, person)
		if got != want {
			t.Fatalf("Birthdate(%d) = %d, want %d", person, got, want)
		}
	}
}

func TestChildBearerParity(t *testing.T) {
	require := require.New(t)

	require.True(IsChildBearer(0))
	require.True(IsChildBearer(2))
	require.False(IsChildBearer(1))
	require.False(IsChildBearer(3))

	require.Equal(Id(4), ChildBearer(5))
	require.Equal(Id(5), NonChildBearer(4))
	require.Equal(Id(2), Separated(5))
	require.Equal(Id(4), DuoChildBearer(2))
	require.Equal(Id(5), DuoNonChildBearer(2))
}

// TestMotherChildRoundTrip checks that mother(child(P,k)) = P whenever
// child(P,k) != None, exercised over direct children of a sample of
// child-bearing persons.
func TestMotherChildRoundTrip(t *testing.T) {
	info := DefaultFamilyInfo()

	checked := 0
	for p := Id(0); p < 4000 && checked < 200; p += 2 {
		count := NumDirectChildren(info, p)
		for k := Id(0); k < count; k++ {
			child := DirectChild(info, p, k)
			if child == None {
				continue
			}
			mother := Mother(info, child)
			if mother != p {
				t.Fatalf("DirectChild(%d, %d) = %d, but Mother(%d) = %d", p, k, child, child, mother)
			}
			checked++
		}
	}
	if checked == 0 {
		t.Fatal("no direct children were found to check; sample range may be too small")
	}
}

// TestTableSelectionRoundTripUnderDefaultParameters drives the
// table-driven selection layer directly with the production
// age-of-mother table, arity, and seed — the exact wrapping
// MotherAndIndex, DirectChild, and NumDirectChildren sit on.
func TestTableSelectionRoundTripUnderDefaultParameters(t *testing.T) {
	require := require.New(t)
	info := DefaultFamilyInfo()

	checked := 0
	for parent := Id(0); parent < 2000 && checked < 300; parent++ {
		count := selection.CountSelectTableChildren(
			parent, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
		)
		for k := Id(0); k < count; k++ {
			child := selection.SelectTableNthChild(
				parent, k, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
			)
			if child == None {
				continue
			}
			gotParent, gotIndex := selection.SelectTableParentAndIndex(
				child, info.AverageChildrenPerMother, info.MaxChildrenPerMother, info.AgeOfMotherTable, info.Seed,
			)
			require.Equalf(parent, gotParent, "parent=%d k=%d child=%d", parent, k, child)
			require.Equalf(k, gotIndex, "parent=%d k=%d child=%d", parent, k, child)
			checked++
		}
	}
	require.Greater(checked, 200, "the sampled parents should yield plenty of children to round-trip")
}

// TestMotherAndIndexAgreesWithDirectChild checks that
// mother_and_index(child) locates the same (mother, index) pair that
// produced child via direct_child.
func TestMotherAndIndexAgreesWithDirectChild(t *testing.T) {
	info := DefaultFamilyInfo()

	checked := 0
	for p := Id(0); p < 4000 && checked < 200; p += 2 {
		count := NumDirectChildren(info, p)
		for k := Id(0); k < count; k++ {
			child := DirectChild(info, p, k)
			if child == None {
				continue
			}
			mother, index := MotherAndIndex(info, child)
			if mother != p || index != k {
				t.Fatalf("DirectChild(%d, %d) = %d, but MotherAndIndex = (%d, %d)", p, k, child, mother, index)
			}
			checked++
		}
	}
}

func TestMotherAndIndexNoneIsNone(t *testing.T) {
	info := DefaultFamilyInfo()
	mother, index := MotherAndIndex(info, None)
	if mother != None || index != 0 {
		t.Fatalf("MotherAndIndex(None) = (%d, %d), want (None, 0)", mother, index)
	}
}

// TestNumDirectChildrenMeanIsInTheRightBallpark is a coarse sanity check
// on the distributional property that num_direct_children averages close
// to AverageChildrenPerMother across a sample of child-bearers; it uses a
// loose tolerance since a handful of thousand samples is far short of the
// 10^5-10^7 range a real distributional audit would use.
func TestNumDirectChildrenMeanIsInTheRightBallpark(t *testing.T) {
	info := DefaultFamilyInfo()

	const sampleCount = 4000
	var total Id
	for i := Id(0); i < sampleCount; i++ {
		total += NumDirectChildren(info, i*2)
	}
	mean := float64(total) / float64(sampleCount)
	target := float64(info.AverageChildrenPerMother)

	if mean < target*0.25 || mean > target*4 {
		t.Fatalf("mean num_direct_children = %.3f, want within 0.25x to 4x of %.3f", mean, target)
	}
}

func TestNewFamilyInfoRejectsBadRatios(t *testing.T) {
	require := require.New(t)

	_, err := NewFamilyInfo(
		1, 10000, 15*OneEarthYear, 40*OneEarthYear,
		20, 32, // avg too close to max
		defaultAgeOfMotherDistribution, 320,
		16, 3*OneEarthYear, 7*OneEarthYear,
		20*OneEarthYear, 40*OneEarthYear,
		6, 4, 21, PartnerPolicyNone,
	)
	require.Error(err)

	_, err = NewFamilyInfo(
		1, 10000, 15*OneEarthYear, 40*OneEarthYear,
		1, 32,
		defaultAgeOfMotherDistribution, 320,
		40, 3*OneEarthYear, 7*OneEarthYear, // max_partners >= max_children
		20*OneEarthYear, 40*OneEarthYear,
		6, 4, 21, PartnerPolicyNone,
	)
	require.Error(err)

	_, err = NewFamilyInfo(
		1, 0, 15*OneEarthYear, 40*OneEarthYear, // zero birth rate
		1, 32,
		defaultAgeOfMotherDistribution, 320,
		16, 3*OneEarthYear, 7*OneEarthYear,
		20*OneEarthYear, 40*OneEarthYear,
		6, 4, 21, PartnerPolicyNone,
	)
	require.Error(err)

	_, err = NewFamilyInfo(
		1, 10000, 15*OneEarthYear, 40*OneEarthYear,
		1, 32,
		defaultAgeOfMotherDistribution, 320,
		16, 3*OneEarthYear, 7*OneEarthYear,
		20*OneEarthYear, 40*OneEarthYear,
		0, 4, 21, PartnerPolicyNone, // zero likelihood denominator
	)
	require.Error(err)
}

// TestMotherAndIndexUnderflowReturnsNone exercises the monotonicity guard
// on the age-gap offset subtraction: persons whose Id is below
// child_id_adjust cannot have been born to anyone in the id space.
func TestMotherAndIndexUnderflowReturnsNone(t *testing.T) {
	info := DefaultFamilyInfo()
	adjust := ChildIdAdjust(info)

	for _, person := range []Id{1, 2, adjust / 2, adjust - 1} {
		mother, index := MotherAndIndex(info, person)
		if mother != None || index != 0 {
			t.Fatalf("MotherAndIndex(%d) = (%d, %d), want (None, 0) below the offset", person, mother, index)
		}
	}
}

// TestDirectChildNearIdExhaustion exercises the overflow guard on the
// age-gap offset addition: near the top of the id space a child slot may
// not exist, but any child returned has survived the monotonicity check
// and so sits at or above the offset.
func TestDirectChildNearIdExhaustion(t *testing.T) {
	info := DefaultFamilyInfo()
	adjust := ChildIdAdjust(info)

	top := ^Id(0) - 1 - (^Id(0)-1)%2
	for _, person := range []Id{top, top - 1024, top - 65536} {
		p := ChildBearer(person)
		count := NumDirectChildren(info, p)
		for k := Id(0); k < count; k++ {
			child := DirectChild(info, p, k)
			if child != None && child < adjust {
				t.Fatalf("DirectChild(%d, %d) = %d sits below the age-gap offset %d", p, k, child, adjust)
			}
		}
	}
}

// TestPartnerPolicyRetryOnlyChangesExhaustedSearches checks the policy
// knob's contract: the retry pass can only fire where the plain search
// already came up empty, so every non-None answer is identical across the
// two policies.
func TestPartnerPolicyRetryOnlyChangesExhaustedSearches(t *testing.T) {
	require := require.New(t)

	plain := DefaultFamilyInfo()
	retry := plain
	retry.PartnerSearchPolicy = PartnerPolicyRetry

	for p := Id(0); p < 400; p += 2 {
		numPartners := NumPartners(plain, p)
		for k := Id(0); k < numPartners; k++ {
			got := NthPartner(plain, p, k)
			if got == None {
				continue
			}
			require.Equalf(got, NthPartner(retry, p, k), "person=%d k=%d", p, k)
		}
	}
}

// TestNonChildBearerPartnersAreMutual checks the odd side of the partner
// graph: any partner a non-child-bearer finds must list that
// non-child-bearer back among its own partners.
func TestNonChildBearerPartnersAreMutual(t *testing.T) {
	info := DefaultFamilyInfo()

	for n := Id(1); n < 2001; n += 2 {
		count := NumPartners(info, n)
		for k := Id(0); k < count; k++ {
			m := NthPartner(info, n, k)
			if m == None {
				t.Fatalf("NumPartners(%d) = %d but NthPartner(%d, %d) = None", n, count, n, k)
			}
			if !IsChildBearer(m) {
				t.Fatalf("NthPartner(%d, %d) = %d is not a child-bearer", n, k, m)
			}
			listed := false
			for j := Id(0); j < NumPartners(info, m); j++ {
				if NthPartner(info, m, j) == n {
					listed = true
					break
				}
			}
			if !listed {
				t.Fatalf("NthPartner(%d, %d) = %d does not list %d back", n, k, m, n)
			}
		}
	}
}

// TestNumPartnersIsAtLeastOneForChildBearers exercises the geometric
// partner-count draw's lower bound.
func TestNumPartnersIsAtLeastOneForChildBearers(t *testing.T) {
	info := DefaultFamilyInfo()
	for p := Id(2); p < 500; p += 2 {
		if NumPartners(info, p) < 1 {
			t.Fatalf("NumPartners(%d) = %d, want >= 1", p, NumPartners(info, p))
		}
	}
}

// TestNthPartnerParityAndChildAllocation exercises the partner graph
// from the child-bearer side: any partner NthPartner finds for a
// child-bearer is a non-child-bearer, and the child counts allocated
// across the found partners never exceed NumDirectChildren.
func TestNthPartnerParityAndChildAllocation(t *testing.T) {
	info := DefaultFamilyInfo()

	checkedAny := false
	for p := Id(0); p < 1000; p += 2 {
		numPartners := NumPartners(info, p)
		childCount := NumDirectChildren(info, p)
		var total Id
		for k := Id(0); k < numPartners; k++ {
			partner := NthPartner(info, p, k)
			if partner == None {
				continue
			}
			checkedAny = true
			if IsChildBearer(partner) {
				t.Fatalf("NthPartner(%d, %d) = %d is itself a child-bearer", p, k, partner)
			}
			childrenWithThisPartner := childCount / numPartners
			leftovers := childCount - numPartners*childrenWithThisPartner
			if k < leftovers {
				childrenWithThisPartner++
			}
			total += childrenWithThisPartner
		}
		if total > childCount {
			t.Fatalf("person=%d: allocated %d children across partners but only has %d", p, total, childCount)
		}
	}
	if !checkedAny {
		t.Fatal("no partner relationships were found to check; sample range may be too small")
	}
}
