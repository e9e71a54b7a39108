// Package shuffle implements reversible permutations of [0, n) for
// arbitrary n >= 1. Each primitive shuffle has an explicit (or
// self-referential) inverse; CohortShuffle composes all of them into a
// single permutation used by the cohort and distribution layers above.
package shuffle

import "github.com/solsword/anarchy/internal/unit"

type Id = unit.Id

const minRegionSize Id = 2
const maxRegionCount Id = 16

// Interleave folds the top half of a cohort into the bottom half by
// alternating: even output slots come from the low half in order, odd
// output slots come from the high half in reverse order.
func Interleave(inner, cohortSize Id) Id {
	if inner < (cohortSize+1)/2 {
		return inner * 2
	}
	return (cohortSize-1-inner)*2 + 1
}

// RevInterleave is the inverse of Interleave.
func RevInterleave(shuffled, cohortSize Id) Id {
	if shuffled%2 == 1 {
		return cohortSize - 1 - shuffled/2
	}
	return shuffled / 2
}

// FoldPerm picks a split point in [cohortSize/2, cohortSize), adjusted so
// that the tail past it has odd length (which makes the split point odd
// for even cohort sizes and even for odd ones), and swings that tail into
// the middle of the cohort.
func FoldPerm(inner, cohortSize, seed Id) Id {
	half := cohortSize >> 1
	split := (seed % half) + half
	after := cohortSize - split
	split += (after + 1) % 2 // force an odd tail length
	after = cohortSize - split

	switch {
	case inner < half-after/2:
		return inner
	case inner >= split:
		return (half - after/2) + (inner - split)
	default:
		return inner + after
	}
}

// RevFoldPerm is the inverse of FoldPerm.
func RevFoldPerm(folded, cohortSize, seed Id) Id {
	half := cohortSize >> 1
	split := (seed % half) + half
	after := cohortSize - split
	split += (after + 1) % 2
	after = cohortSize - split

	switch {
	case folded < half-after/2:
		return folded
	case folded > half+after/2:
		return folded - after
	default:
		return split + (folded - (half - after/2))
	}
}

// Spin offsets cohort members circularly by seed.
func Spin(inner, cohortSize, seed Id) Id {
	return (inner + seed) % cohortSize
}

// RevSpin is the inverse of Spin.
func RevSpin(spun, cohortSize, seed Id) Id {
	return (spun + (cohortSize - (seed % cohortSize))) % cohortSize
}

// FlopPerm partitions the cohort into blocks of size (seed mod
// (cohortSize/8+4)) + 2 and swaps adjacent block pairs where both fall
// inside the cohort. FlopPerm is its own inverse.
func FlopPerm(inner, cohortSize, seed Id) Id {
	limit := (cohortSize >> 3) + 4
	size := (seed % limit) + 2

	which := inner / size
	local := inner % size

	var result Id
	if which%2 == 0 {
		result = (which+1)*size + local
	} else {
		result = (which-1)*size + local
	}

	if result >= cohortSize {
		return inner
	}
	return result
}

// Mix applies a different Spin to even and odd positions.
func Mix(inner, cohortSize, seed Id) Id {
	even := inner - inner%2
	if inner%2 == 1 {
		target := Spin(even/2, (cohortSize+(1-cohortSize%2))/2, seed+464185)
		return 2*target + 1
	}
	target := Spin(even/2, (cohortSize+1)/2, seed+1048239)
	return 2 * target
}

// RevMix is the inverse of Mix.
func RevMix(mixed, cohortSize, seed Id) Id {
	even := mixed - mixed%2
	if mixed%2 == 1 {
		target := RevSpin(even/2, (cohortSize+(1-cohortSize%2))/2, seed+464185)
		return 2*target + 1
	}
	target := RevSpin(even/2, (cohortSize+1)/2, seed+1048239)
	return 2 * target
}

func regionCount(cohortSize, seed Id) Id {
	minRegions := Id(2)
	if cohortSize < 2*minRegionSize {
		minRegions = 1
	}
	maxRegions := 1 + cohortSize/minRegionSize
	return minRegions + ((seed % (1 + (maxRegions - minRegions))) % maxRegionCount)
}

// Spread deals items out between a number of regions round-robin, placing
// leftovers first.
func Spread(inner, cohortSize, seed Id) Id {
	regions := regionCount(cohortSize, seed)
	regionSize := cohortSize / regions
	leftovers := cohortSize - regions*regionSize

	region := inner % regions
	index := inner / regions
	if index < regionSize {
		return region*regionSize + index + leftovers
	}
	return inner - regions*regionSize
}

// RevSpread is the inverse of Spread.
func RevSpread(spread, cohortSize, seed Id) Id {
	regions := regionCount(cohortSize, seed)
	regionSize := cohortSize / regions
	leftovers := cohortSize - regions*regionSize

	if spread < leftovers {
		return regions*regionSize + spread
	}
	index := (spread - leftovers) / regionSize
	region := (spread - leftovers) % regionSize
	return region*regions + index
}

// Upend reverses the ordering of items within each of several fragments.
// Upend is its own inverse.
func Upend(inner, cohortSize, seed Id) Id {
	regions := regionCount(cohortSize, seed)
	regionSize := cohortSize / regions

	region := inner / regionSize
	index := inner % regionSize
	result := region*regionSize + (regionSize - 1 - index)
	if result >= cohortSize {
		return inner
	}
	return result
}

// CohortShuffle composes the primitives above into a single permutation of
// [0, cohortSize). The composition order and seed offsets are fixed; the
// exact reverse composition is RevCohortShuffle.
func CohortShuffle(inner, cohortSize, seed Id) Id {
	if cohortSize < 2 {
		return inner
	}
	seed ^= cohortSize / 3
	r := inner
	r = Spread(r, cohortSize, seed+453)
	r = Mix(r, cohortSize, seed+2891)
	r = Interleave(r, cohortSize)
	r = Spin(r, cohortSize, seed+1982)
	r = Upend(r, cohortSize, seed+47)
	r = FoldPerm(r, cohortSize, seed+837)
	r = Interleave(r, cohortSize)
	r = FlopPerm(r, cohortSize, seed+53)
	r = FoldPerm(r, cohortSize, seed+201)
	r = Mix(r, cohortSize, seed+728)
	r = Spread(r, cohortSize, seed+881)
	r = Interleave(r, cohortSize)
	r = FlopPerm(r, cohortSize, seed+192)
	r = Upend(r, cohortSize, seed+794614)
	r = Spin(r, cohortSize, seed+19)
	return r
}

// RevCohortShuffle is the exact inverse of CohortShuffle.
func RevCohortShuffle(shuffled, cohortSize, seed Id) Id {
	if cohortSize < 2 {
		return shuffled
	}
	seed ^= cohortSize / 3
	r := shuffled
	r = RevSpin(r, cohortSize, seed+19)
	r = Upend(r, cohortSize, seed+794614)
	r = FlopPerm(r, cohortSize, seed+192)
	r = RevInterleave(r, cohortSize)
	r = RevSpread(r, cohortSize, seed+881)
	r = RevMix(r, cohortSize, seed+728)
	r = RevFoldPerm(r, cohortSize, seed+201)
	r = FlopPerm(r, cohortSize, seed+53)
	r = RevInterleave(r, cohortSize)
	r = RevFoldPerm(r, cohortSize, seed+837)
	r = Upend(r, cohortSize, seed+47)
	r = RevSpin(r, cohortSize, seed+1982)
	r = RevInterleave(r, cohortSize)
	r = RevMix(r, cohortSize, seed+2891)
	r = RevSpread(r, cohortSize, seed+453)
	return r
}
