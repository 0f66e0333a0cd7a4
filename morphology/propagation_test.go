package morphology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/binmorph/binimg"
	"github.com/MeKo-Tech/binmorph/internal/testutil"
	"github.com/MeKo-Tech/binmorph/morphology"
)

func TestBinaryPropagationReconstructsComponent(t *testing.T) {
	mask := testutil.FromRows(t, []string{
		"###....",
		"###....",
		".......",
		"....###",
		"....###",
	})
	seed := testutil.FromRows(t, []string{
		".......",
		".#.....",
		".......",
		".......",
		".......",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.BinaryPropagation(seed, mask, out, 1, 0, "background"))
	want := testutil.FromRows(t, []string{
		"###....",
		"###....",
		".......",
		".......",
		".......",
	})
	testutil.RequireEqualImages(t, want, out)
}

func TestBinaryPropagationLimitedIterations(t *testing.T) {
	mask := testutil.FromRows(t, []string{
		"#####",
		"#####",
		"#####",
		"#####",
		"#####",
	})
	seed := testutil.FromRows(t, []string{
		"#....",
		".....",
		".....",
		".....",
		".....",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.BinaryPropagation(seed, mask, out, 1, 2, "background"))
	// Two steps of city-block growth from the corner.
	want := testutil.FromRows(t, []string{
		"###..",
		"##...",
		"#....",
		".....",
		".....",
	})
	testutil.RequireEqualImages(t, want, out)
}

func TestBinaryPropagationRawSeedFromEdge(t *testing.T) {
	mask := testutil.FromRows(t, []string{
		"##....",
		"##....",
		"......",
		"...#..",
		"......",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.BinaryPropagation(binimg.Raw(), mask, out, 1, 0, "object"))
	// Only the component touching the image edge gets reconstructed.
	want := testutil.FromRows(t, []string{
		"##....",
		"##....",
		"......",
		"......",
		"......",
	})
	testutil.RequireEqualImages(t, want, out)
}

func TestBinaryPropagationOutAliasesMask(t *testing.T) {
	mask := testutil.FromRows(t, []string{
		"###..",
		".....",
		"..###",
	})
	seed := testutil.FromRows(t, []string{
		"#....",
		".....",
		".....",
	})
	want := testutil.FromRows(t, []string{
		"###..",
		".....",
		".....",
	})
	require.NoError(t, morphology.BinaryPropagation(seed, mask, mask, 1, 0, "background"))
	testutil.RequireEqualImages(t, want, mask)
}

func TestBinaryPropagationParameterErrors(t *testing.T) {
	mask := testutil.FromRows(t, []string{"###", "###"})
	smallSeed := testutil.FromRows(t, []string{"#"})
	tests := []struct {
		name string
		call func() error
	}{
		{"mask not forged", func() error {
			return morphology.BinaryPropagation(binimg.Raw(), binimg.Raw(), binimg.Raw(), 1, 0, "background")
		}},
		{"seed size mismatch", func() error {
			return morphology.BinaryPropagation(smallSeed, mask, binimg.Raw(), 1, 0, "background")
		}},
		{"negative iterations", func() error {
			return morphology.BinaryPropagation(binimg.Raw(), mask, binimg.Raw(), 1, -1, "background")
		}},
		{"connectivity too large", func() error {
			return morphology.BinaryPropagation(binimg.Raw(), mask, binimg.Raw(), 5, 0, "background")
		}},
		{"bad edge condition", func() error {
			return morphology.BinaryPropagation(binimg.Raw(), mask, binimg.Raw(), 1, 0, "edge of town")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.call())
		})
	}
}

func TestEdgeObjectsRemoveInPlace(t *testing.T) {
	im := testutil.FromRows(t, []string{
		"#..#..",
		"#.....",
		"......",
		"..##..",
		"..##..",
		"....##",
	})
	want := testutil.FromRows(t, []string{
		"......",
		"......",
		"......",
		"..##..",
		"..##..",
		"......",
	})
	require.NoError(t, morphology.EdgeObjectsRemove(im, im, 2))
	testutil.RequireEqualImages(t, want, im)
}

func TestFillHolesKeepsOpenCavities(t *testing.T) {
	// The left object has a closed hole, the right cavity opens to the edge.
	in := testutil.FromRows(t, []string{
		"........#.#",
		".####...#.#",
		".#..#...#.#",
		".####...###",
		"...........",
	})
	want := testutil.FromRows(t, []string{
		"........#.#",
		".####...#.#",
		".####...#.#",
		".####...###",
		"...........",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.FillHoles(in, out, 1))
	testutil.RequireEqualImages(t, want, out)
}

func TestFillHolesDiagonalLeak(t *testing.T) {
	// With city-block connectivity for the background, a diagonal gap in the
	// ring does not let the hole leak out. With chess connectivity it does.
	in := testutil.FromRows(t, []string{
		".....",
		".##..",
		".#.#.",
		".###.",
		".....",
	})
	filled := testutil.FromRows(t, []string{
		".....",
		".##..",
		".###.",
		".###.",
		".....",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.FillHoles(in, out, 1))
	testutil.RequireEqualImages(t, filled, out)
	require.NoError(t, morphology.FillHoles(in, out, 2))
	testutil.RequireEqualImages(t, in, out)
}
