package distribution

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestQuadsumWorkedExample pins down the concrete worked example: quadsum
// and inv_quadsum agree at the boundary between sections 9 and 10.
func TestQuadsumWorkedExample(t *testing.T) {
	require := require.New(t)

	require.Equal(Id(165), Quadsum(10, 3))
	require.Equal(Id(10), InvQuadsum(165, 3))
	require.Equal(Id(9), InvQuadsum(164, 3))
}

// TestQuadsumInvQuadsumBracket checks that quadsum(inv_quadsum(y,
// shape), shape) <= y < quadsum(inv_quadsum(y, shape)+1, shape).
func TestQuadsumInvQuadsumBracket(t *testing.T) {
	require := require.New(t)

	for _, shape := range []Id{1, 3, 7, 20} {
		for y := Id(0); y < 2000; y++ {
			n := InvQuadsum(y, shape)
			require.LessOrEqualf(Quadsum(n, shape), y, "shape=%d y=%d n=%d", shape, y, n)
			require.Lessf(y, Quadsum(n+1, shape), "shape=%d y=%d n=%d", shape, y, n)
		}
	}
}

func TestMultipolyNearestCohortSize(t *testing.T) {
	require := require.New(t)

	for _, shape := range []Id{1, 3, 5} {
		for _, desired := range []Id{10, 100, 1000} {
			size, base := MultipolyNearestCohortSize(shape, desired)
			require.Equal(size, Quadsum(base, shape))
		}
	}
}

func TestMultipolyCohortRoundTrip(t *testing.T) {
	require := require.New(t)

	for _, shape := range []Id{1, 3} {
		for _, base := range []Id{4, 10} {
			total := Quadsum(base, shape)
			for _, scale := range []Id{1, 16} {
				cohortSize := total * scale
				for outer := Id(0); outer < cohortSize*base*2; outer++ {
					c, inner := MultipolyCohortAndInner(outer, base, shape, cohortSize, 23)
					require.Lessf(inner, cohortSize, "shape=%d base=%d scale=%d outer=%d", shape, base, scale, outer)
					back := MultipolyCohortOuter(c, inner, base, shape, cohortSize, 23)
					require.Equalf(outer, back, "shape=%d base=%d scale=%d outer=%d", shape, base, scale, outer)
				}
			}
		}
	}
}

// TestMultipolyCohortOuterIsTwoSided checks the stronger property the
// selection layer depends on: every (cohort, inner) pair with inner in
// [0, cohortSize) maps to an outer that maps straight back, not just the
// pairs some outer produced.
func TestMultipolyCohortOuterIsTwoSided(t *testing.T) {
	require := require.New(t)

	const shape, base = 3, 4
	const scale = 8
	cohortSize := Quadsum(base, shape) * scale

	for c := Id(0); c < base*3; c++ {
		for inner := Id(0); inner < cohortSize; inner++ {
			outer := MultipolyCohortOuter(c, inner, base, shape, cohortSize, 23)
			gotC, gotInner := MultipolyCohortAndInner(outer, base, shape, cohortSize, 23)
			require.Equalf(c, gotC, "c=%d inner=%d outer=%d", c, inner, outer)
			require.Equalf(inner, gotInner, "c=%d inner=%d outer=%d", c, inner, outer)
		}
	}
}
