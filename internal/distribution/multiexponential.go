package distribution

import (
	"github.com/solsword/anarchy/internal/cohort"
	"github.com/solsword/anarchy/internal/shuffle"
)

// MultiExpSplit works like ExpSplit but computes one of several nested
// splits, selected by layer out of n_layers total layers.
func MultiExpSplit(shape float64, sections, sectionWidth, which, layer, nLayers Id) Id {
	layerWidth := sections / nLayers
	var adjust int64
	if shape > 0 {
		adjust = int64(sections) - int64(layer*layerWidth)
	} else {
		adjust = -int64(sections) + int64(layer*layerWidth)
	}
	return ExpSplit(shape, sections, sectionWidth, Id(int64(which)+adjust))
}

// MultiExpLimits returns the bottom (inclusive) and top (exclusive)
// in-section indices occupied by the given layer, clamped to the section
// width. Layer 2*nLayers is the catch-all above the last split.
func MultiExpLimits(shape float64, sections, sectionWidth, which, layer, nLayers Id) (bottom, top Id) {
	if layer > 0 {
		bottom = MultiExpSplit(shape, sections, sectionWidth, which, layer-1, nLayers)
		if bottom > sectionWidth {
			bottom = sectionWidth
		}
	}
	top = sectionWidth
	if layer < nLayers*2 {
		top = MultiExpSplit(shape, sections, sectionWidth, which, layer, nLayers)
		if top > sectionWidth {
			top = sectionWidth
		}
	}
	if top < bottom {
		top = bottom
	}
	return bottom, top
}

// MultiExpMaxPerSection returns the largest occupancy any single layer
// reaches in any section, an upper bound callers can size buffers by.
func MultiExpMaxPerSection(shape float64, sections, sectionWidth, nLayers Id) Id {
	max := Id(0)
	for which := Id(0); which < sections; which++ {
		for layer := Id(0); layer <= nLayers*2; layer++ {
			bottom, top := MultiExpLimits(shape, sections, sectionWidth, which, layer, nLayers)
			if top-bottom > max {
				max = top - bottom
			}
		}
	}
	return max
}

// MultiExpGetLayer finds which of the 0..2*nLayers+1 layers inSection
// falls into.
func MultiExpGetLayer(inSection Id, shape float64, sections, sectionWidth, which, nLayers Id) Id {
	layer := Id(0)
	lastSplit := Id(0)
	for {
		split := MultiExpSplit(shape, sections, sectionWidth, which, layer, nLayers)
		if split < lastSplit {
			layer++
			break
		}
		lastSplit = split
		layer++
		if !(inSection >= split && layer < nLayers*2+1) {
			break
		}
	}
	return layer - 1
}

// MultiExpCohortAndInner works like ExpCohortAndInner but slices each
// cohort into nLayers nested parts rather than a single split, smearing
// contributions across a neighborhood of cohorts for a smoother empirical
// distribution. Returns (None, None) on overflow of the adjusted cohort.
func MultiExpCohortAndInner(outer Id, shape float64, cohortSize, nLayers, seed Id) (c, inner Id) {
	resolution, sectionCount := expSections(cohortSize)
	leftovers := cohortSize - sectionCount*resolution

	strictCohort, strictInner := cohort.CohortAndInner(outer, cohortSize)
	section := strictInner / resolution
	inSection := strictInner % resolution

	var shuf Id
	if section < sectionCount {
		shuf = shuffle.CohortShuffle(inSection, resolution, seed+section)
	} else {
		shuf = shuffle.CohortShuffle(inSection, leftovers, seed+section)
	}

	layer := MultiExpGetLayer(shuf, shape, sectionCount, resolution, section, nLayers)

	adjusted := strictCohort*nLayers + layer
	if adjusted < strictCohort { // overflow
		return None, None
	}

	return adjusted, shuf + section*resolution
}

// MultiExpCohortOuter is the inverse of MultiExpCohortAndInner. Returns
// None on underflow of the cohort index.
func MultiExpCohortOuter(c, inner Id, shape float64, cohortSize, nLayers, seed Id) Id {
	resolution, sectionCount := expSections(cohortSize)
	leftovers := cohortSize - sectionCount*resolution

	inSection := inner % resolution
	section := inner / resolution

	layer := MultiExpGetLayer(inSection, shape, sectionCount, resolution, section, nLayers)

	if c < layer { // underflow
		return None
	}
	strictCohort := (c - layer) / nLayers

	var unshuf Id
	if section < sectionCount {
		unshuf = shuffle.RevCohortShuffle(inSection, resolution, seed+section)
	} else {
		unshuf = shuffle.RevCohortShuffle(inSection, leftovers, seed+section)
	}

	strictInner := section*resolution + unshuf

	return cohort.CohortOuter(strictCohort, strictInner, cohortSize)
}
