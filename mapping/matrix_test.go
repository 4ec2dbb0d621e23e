package mapping

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatrix_IsCompleteOver180Cells(t *testing.T) {
	t.Parallel()

	require.Len(t, matrix, len(AllDialects())*len(AllDialects())*len(AllFeatures()))
	for _, source := range AllDialects() {
		for _, target := range AllDialects() {
			for _, feature := range AllFeatures() {
				f := Lookup(source, target, feature)
				require.NotEmpty(t, f.Kind, "cell (%s,%s,%s) must not be empty", source, target, feature)
			}
		}
	}
}

func TestMatrix_DiagonalIsAlwaysLossless(t *testing.T) {
	t.Parallel()

	for _, d := range AllDialects() {
		for _, f := range AllFeatures() {
			require.Equal(t, Lossless, Lookup(d, d, f).Kind, "(%s,%s,%s) must be lossless", d, d, f)
		}
	}
}

func TestMatrix_UnsupportedIsSymmetric(t *testing.T) {
	t.Parallel()

	for _, a := range AllDialects() {
		for _, b := range AllDialects() {
			for _, f := range AllFeatures() {
				if Lookup(a, b, f).Kind == Unsupported {
					require.Equal(t, Unsupported, Lookup(b, a, f).Kind,
						"(%s,%s,%s) unsupported but reverse is not", a, b, f)
				}
			}
		}
	}
}

func TestMatrix_LosslessIsTransitive(t *testing.T) {
	t.Parallel()

	for _, a := range AllDialects() {
		for _, b := range AllDialects() {
			for _, c := range AllDialects() {
				for _, f := range AllFeatures() {
					if Lookup(a, b, f).Kind == Lossless && Lookup(b, c, f).Kind == Lossless {
						require.Equal(t, Lossless, Lookup(a, c, f).Kind,
							"lossless(%s,%s,%s) and lossless(%s,%s,%s) but not lossless(%s,%s,%s)",
							a, b, f, b, c, f, a, c, f)
					}
				}
			}
		}
	}
}

func TestRankTargets_ExcludesSourceAndOrdersDescending(t *testing.T) {
	t.Parallel()

	ranked := RankTargets(DialectClaude, AllFeatures())
	require.Len(t, ranked, len(AllDialects())-1)
	require.NotContains(t, ranked, DialectClaude)

	scoreOf := func(d Dialect) int {
		count := 0
		for _, f := range AllFeatures() {
			if Lookup(DialectClaude, d, f).Kind == Lossless {
				count++
			}
		}
		return count
	}
	for i := 1; i < len(ranked); i++ {
		require.GreaterOrEqual(t, scoreOf(ranked[i-1]), scoreOf(ranked[i]))
	}
}
