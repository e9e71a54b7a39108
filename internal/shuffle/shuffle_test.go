package shuffle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterleaveRoundTrip(t *testing.T) {
	for _, n := range []Id{2, 3, 8, 17, 100} {
		t.Run("", func(t *testing.T) {
			for i := Id(0); i < n; i++ {
				got := RevInterleave(Interleave(i, n), n)
				if got != i {
					t.Fatalf("n=%d i=%d: round trip got %d", n, i, got)
				}
			}
		})
	}
}

func TestSpinRoundTrip(t *testing.T) {
	for _, n := range []Id{2, 5, 64} {
		for _, seed := range []Id{0, 1, 999} {
			for i := Id(0); i < n; i++ {
				got := RevSpin(Spin(i, n, seed), n, seed)
				if got != i {
					t.Fatalf("n=%d seed=%d i=%d: round trip got %d", n, seed, i, got)
				}
			}
		}
	}
}

func TestMixRoundTrip(t *testing.T) {
	for _, n := range []Id{2, 9, 50} {
		for i := Id(0); i < n; i++ {
			got := RevMix(Mix(i, n, 42), n, 42)
			if got != i {
				t.Fatalf("n=%d i=%d: round trip got %d", n, i, got)
			}
		}
	}
}

func TestSpreadRoundTrip(t *testing.T) {
	for _, n := range []Id{4, 16, 100} {
		for i := Id(0); i < n; i++ {
			got := RevSpread(Spread(i, n, 7), n, 7)
			if got != i {
				t.Fatalf("n=%d i=%d: round trip got %d", n, i, got)
			}
		}
	}
}

func TestUpendIsSelfInverse(t *testing.T) {
	for _, n := range []Id{4, 16, 33} {
		for i := Id(0); i < n; i++ {
			got := Upend(Upend(i, n, 13), n, 13)
			if got != i {
				t.Fatalf("n=%d i=%d: not self-inverse, got %d", n, i, got)
			}
		}
	}
}

func TestFoldPermRoundTrip(t *testing.T) {
	for _, n := range []Id{4, 16, 101} {
		for _, seed := range []Id{0, 5, 1000} {
			for i := Id(0); i < n; i++ {
				got := RevFoldPerm(FoldPerm(i, n, seed), n, seed)
				if got != i {
					t.Fatalf("n=%d seed=%d i=%d: round trip got %d", n, seed, i, got)
				}
			}
		}
	}
}

// TestCohortShuffleIsAPermutation pins down a concrete worked example:
// cohort_shuffle(i, 8, 0) for i in [0,8) is a permutation of {0,...,7}.
func TestCohortShuffleIsAPermutation(t *testing.T) {
	const n = 8
	seen := make(map[Id]bool, n)
	for i := Id(0); i < n; i++ {
		out := CohortShuffle(i, n, 0)
		if out >= n {
			t.Fatalf("CohortShuffle(%d, %d, 0) = %d out of range", i, n, out)
		}
		if seen[out] {
			t.Fatalf("CohortShuffle(%d, %d, 0) = %d is a duplicate", i, n, out)
		}
		seen[out] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct outputs, got %d", n, len(seen))
	}
}

// TestCohortShuffleRoundTrip checks that
// rev_cohort_shuffle(cohort_shuffle(i, n, s), n, s) = i for all i in
// [0,n), n >= 2.
func TestCohortShuffleRoundTrip(t *testing.T) {
	require := require.New(t)

	for _, n := range []Id{2, 3, 8, 16, 64, 1000} {
		for _, seed := range []Id{0, 1, 9728182391} {
			for i := Id(0); i < n; i++ {
				shuffled := CohortShuffle(i, n, seed)
				require.Lessf(shuffled, n, "n=%d seed=%d i=%d", n, seed, i)
				back := RevCohortShuffle(shuffled, n, seed)
				require.Equalf(i, back, "n=%d seed=%d i=%d shuffled=%d", n, seed, i, shuffled)
			}
		}
	}
}

func TestCohortShuffleIsPermutationAcrossSizes(t *testing.T) {
	tests := []struct {
		name string
		n    Id
		seed Id
	}{
		{"small_even", 16, 0},
		{"small_odd", 17, 0},
		{"large", 1024, 12345},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[Id]bool, tt.n)
			for i := Id(0); i < tt.n; i++ {
				out := CohortShuffle(i, tt.n, tt.seed)
				if out >= tt.n {
					t.Fatalf("out of range output %d for n=%d", out, tt.n)
				}
				if seen[out] {
					t.Fatalf("duplicate output %d for n=%d", out, tt.n)
				}
				seen[out] = true
			}
		})
	}
}
