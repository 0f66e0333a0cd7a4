package morphology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/binmorph/binimg"
	"github.com/MeKo-Tech/binmorph/internal/testutil"
	"github.com/MeKo-Tech/binmorph/morphology"
)

// isSubset reports whether every foreground pixel of a is foreground in b.
func isSubset(t *testing.T, a, b *binimg.Image) bool {
	t.Helper()
	diff, err := binimg.New(binimg.Binary, a.Sizes()...)
	require.NoError(t, err)
	require.NoError(t, diff.CopyFrom(a))
	require.NoError(t, diff.And(b))
	return diff.Equal(a)
}

func TestConditionalThinningKeepsThinLines(t *testing.T) {
	in := testutil.FromRows(t, []string{
		".......",
		".......",
		".#####.",
		".......",
		".......",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.ConditionalThinning2D(in, binimg.Raw(), out, 0, "keep", "background"))
	testutil.RequireEqualImages(t, in, out)
}

func TestConditionalThinningLoseShrinksToPoint(t *testing.T) {
	in := testutil.FromRows(t, []string{
		".......",
		".......",
		".#####.",
		".......",
		".......",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.ConditionalThinning2D(in, binimg.Raw(), out, 0, "lose", "background"))
	assert.Equal(t, 1, out.Count())
	assert.True(t, isSubset(t, out, in))
}

func TestConditionalThinningSkeleton(t *testing.T) {
	in := testutil.GlyphImage(t, "O", 4)
	skel := binimg.Raw()
	require.NoError(t, morphology.ConditionalThinning2D(in, binimg.Raw(), skel, 0, "keep", "background"))

	assert.True(t, isSubset(t, skel, in))
	assert.Positive(t, skel.Count())

	// The letter O has a hole, and homotopic thinning must not close it.
	filled := binimg.Raw()
	require.NoError(t, morphology.FillHoles(skel, filled, 1))
	assert.Greater(t, filled.Count(), skel.Count())

	// A second thinning pass cannot grow the skeleton or close its hole.
	again := binimg.Raw()
	require.NoError(t, morphology.ConditionalThinning2D(skel, binimg.Raw(), again, 0, "keep", "background"))
	assert.True(t, isSubset(t, again, skel))
	refilled := binimg.Raw()
	require.NoError(t, morphology.FillHoles(again, refilled, 1))
	assert.Greater(t, refilled.Count(), again.Count())
}

func TestConditionalThinningHonorsMask(t *testing.T) {
	in := testutil.FromRows(t, []string{
		".........",
		".........",
		".#######.",
		".........",
		".........",
	})
	mask := testutil.FromRows(t, []string{
		".........",
		".........",
		"#####....",
		".........",
		".........",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.ConditionalThinning2D(in, mask, out, 0, "lose", "background"))
	// The masked part of the line erodes from its free end, the rest stays.
	want := testutil.FromRows(t, []string{
		".........",
		".........",
		".....###.",
		".........",
		".........",
	})
	testutil.RequireEqualImages(t, want, out)
}

func TestConditionalThickeningStaysInMaskAndSeparate(t *testing.T) {
	mask := testutil.FromRows(t, []string{
		".........",
		".#######.",
		".#######.",
		".#######.",
		".#######.",
		".#######.",
		".........",
	})
	seed := testutil.FromRows(t, []string{
		".........",
		".........",
		"..#......",
		".........",
		"......#..",
		".........",
		".........",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.ConditionalThickening2D(seed, mask, out, 0, "keep", "background"))

	assert.True(t, isSubset(t, seed, out))
	assert.True(t, isSubset(t, out, mask))

	// The two seeds must not merge: the influence zone of the first seed
	// never reaches the second one.
	first := testutil.FromRows(t, []string{
		".........",
		".........",
		"..#......",
		".........",
		".........",
		".........",
		".........",
	})
	zone := binimg.Raw()
	require.NoError(t, morphology.BinaryPropagation(first, out, zone, 2, 0, "background"))
	assert.False(t, zone.Bit(6, 4))
}

func TestConditionalThinningParameterErrors(t *testing.T) {
	in := testutil.FromRows(t, []string{"...", "...", "..."})
	cube := testutil.Cube(t, []int{3, 3, 3}, []int{1, 1, 1}, []int{1, 1, 1})
	tests := []struct {
		name string
		call func() error
	}{
		{"not 2D", func() error {
			return morphology.ConditionalThinning2D(cube, binimg.Raw(), binimg.Raw(), 0, "keep", "background")
		}},
		{"negative iterations", func() error {
			return morphology.ConditionalThinning2D(in, binimg.Raw(), binimg.Raw(), -1, "keep", "background")
		}},
		{"bad end pixel condition", func() error {
			return morphology.ConditionalThinning2D(in, binimg.Raw(), binimg.Raw(), 0, "maybe", "background")
		}},
		{"mask size mismatch", func() error {
			small := testutil.FromRows(t, []string{".."})
			return morphology.ConditionalThickening2D(in, small, binimg.Raw(), 0, "keep", "background")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.call())
		})
	}
}
