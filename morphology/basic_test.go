package morphology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/binmorph/binimg"
	"github.com/MeKo-Tech/binmorph/internal/testutil"
	"github.com/MeKo-Tech/binmorph/morphology"
)

// singlePixel forges a 64x41 image with one foreground pixel at (32, 20),
// far enough from the border that seven dilation steps stay inside.
func singlePixel(t *testing.T) *binimg.Image {
	t.Helper()
	im, err := binimg.New(binimg.Binary, 64, 41)
	require.NoError(t, err)
	im.SetBit(true, 32, 20)
	return im
}

func TestBinaryDilationBallSizes(t *testing.T) {
	tests := []struct {
		name         string
		connectivity int
		wantCount    int
	}{
		// Seven steps of chess connectivity give a 15x15 square.
		{"chess", 2, 225},
		// City-block gives the diamond 2*7*7 + 2*7 + 1.
		{"city-block", 1, 113},
		// Alternating connectivities give octagons in between.
		{"alternating from city-block", -1, 185},
		{"alternating from chess", -2, 201},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := singlePixel(t)
			out := binimg.Raw()
			require.NoError(t, morphology.BinaryDilation(in, out, tt.connectivity, 7, "background"))
			assert.Equal(t, tt.wantCount, out.Count())
		})
	}
}

func TestBinaryErosionInvertsDilation(t *testing.T) {
	for _, connectivity := range []int{1, 2, -1, -2} {
		in := singlePixel(t)
		dilated := binimg.Raw()
		require.NoError(t, morphology.BinaryDilation(in, dilated, connectivity, 7, "background"))
		eroded := binimg.Raw()
		require.NoError(t, morphology.BinaryErosion(dilated, eroded, connectivity, 7, "object"))
		assert.True(t, in.Equal(eroded), "connectivity %d", connectivity)
	}
}

func TestBinaryDilationInPlace(t *testing.T) {
	im := testutil.FromRows(t, []string{
		".....",
		".....",
		"..#..",
		".....",
		".....",
	})
	want := testutil.FromRows(t, []string{
		".....",
		"..#..",
		".###.",
		"..#..",
		".....",
	})
	require.NoError(t, morphology.BinaryDilation(im, im, 1, 1, "background"))
	testutil.RequireEqualImages(t, want, im)
}

func TestBinaryDilationEdgeObject(t *testing.T) {
	in := testutil.FromRows(t, []string{
		"...",
		"...",
		"...",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.BinaryDilation(in, out, 1, 1, "object"))
	// Outside counts as foreground, so the border grows inwards.
	want := testutil.FromRows(t, []string{
		"###",
		"#.#",
		"###",
	})
	testutil.RequireEqualImages(t, want, out)
}

func TestBinaryDilation3D(t *testing.T) {
	in := testutil.Cube(t, []int{9, 9, 9}, []int{4, 4, 4}, []int{4, 4, 4})
	out := binimg.Raw()
	require.NoError(t, morphology.BinaryDilation(in, out, 3, 1, "background"))
	assert.Equal(t, 27, out.Count())
	require.NoError(t, morphology.BinaryDilation(in, out, 1, 1, "background"))
	assert.Equal(t, 7, out.Count())
}

func TestBinaryOpeningRemovesSpecks(t *testing.T) {
	in := testutil.FromRows(t, []string{
		".......",
		".###...",
		".###..#",
		".###...",
		".......",
		"#......",
		".......",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.BinaryOpening(in, out, 1, 1, "special"))
	// The 3x3 block opens to a plus sign, the isolated pixels vanish.
	want := testutil.FromRows(t, []string{
		".......",
		"..#....",
		".###...",
		"..#....",
		".......",
		".......",
		".......",
	})
	testutil.RequireEqualImages(t, want, out)
}

func TestBinaryClosingFillsGaps(t *testing.T) {
	in := testutil.FromRows(t, []string{
		".......",
		".......",
		"..###..",
		"..#.#..",
		"..###..",
		".......",
		".......",
	})
	out := binimg.Raw()
	require.NoError(t, morphology.BinaryClosing(in, out, 2, 1, "special"))
	want := testutil.FromRows(t, []string{
		".......",
		".......",
		"..###..",
		"..###..",
		"..###..",
		".......",
		".......",
	})
	testutil.RequireEqualImages(t, want, out)
}

func TestBinaryDilationParameterErrors(t *testing.T) {
	in := testutil.FromRows(t, []string{"...", "...", "..."})
	tests := []struct {
		name string
		call func(out *binimg.Image) error
	}{
		{"not forged", func(out *binimg.Image) error {
			return morphology.BinaryDilation(binimg.Raw(), out, 1, 1, "background")
		}},
		{"zero iterations", func(out *binimg.Image) error {
			return morphology.BinaryDilation(in, out, 1, 0, "background")
		}},
		{"connectivity too large", func(out *binimg.Image) error {
			return morphology.BinaryDilation(in, out, 3, 1, "background")
		}},
		{"alternating beyond 3D", func(out *binimg.Image) error {
			return morphology.BinaryDilation(in, out, -3, 1, "background")
		}},
		{"bad edge condition", func(out *binimg.Image) error {
			return morphology.BinaryDilation(in, out, 1, 1, "outer space")
		}},
		{"opening with bad edge condition", func(out *binimg.Image) error {
			return morphology.BinaryOpening(in, out, 1, 1, "mirror")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.call(binimg.Raw()))
		})
	}
}
