// Package testutil provides helpers for building and comparing small binary
// images in tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/binmorph/binimg"
)

// FromRows builds a 2D binary image from string art. Each string is one row
// (y), each character one pixel (x). '#' and 'X' are foreground, everything
// else background. All rows must have equal length.
func FromRows(t *testing.T, rows []string) *binimg.Image {
	t.Helper()
	require.NotEmpty(t, rows)
	w := len(rows[0])
	im, err := binimg.New(binimg.Binary, w, len(rows))
	require.NoError(t, err)
	for y, row := range rows {
		require.Len(t, row, w, "row %d", y)
		for x := 0; x < w; x++ {
			if row[x] == '#' || row[x] == 'X' {
				im.SetBit(true, x, y)
			}
		}
	}
	return im
}

// Rows renders a 2D binary image as string art, the inverse of FromRows.
func Rows(t *testing.T, im *binimg.Image) []string {
	t.Helper()
	require.Equal(t, 2, im.Dimensionality())
	rows := make([]string, im.Size(1))
	var sb strings.Builder
	for y := 0; y < im.Size(1); y++ {
		sb.Reset()
		for x := 0; x < im.Size(0); x++ {
			if im.Bit(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// RequireEqualImages fails the test with a rendered diff when the two
// binary images differ.
func RequireEqualImages(t *testing.T, want, got *binimg.Image) {
	t.Helper()
	if want.Equal(got) {
		return
	}
	if want.Dimensionality() == 2 && got.Dimensionality() == 2 {
		require.Equal(t, Rows(t, want), Rows(t, got))
	}
	require.Fail(t, "images differ")
}

// Cube builds a 3D binary image with a filled axis-aligned box of
// foreground from lo (inclusive) to hi (exclusive).
func Cube(t *testing.T, sizes, lo, hi []int) *binimg.Image {
	t.Helper()
	im, err := binimg.New(binimg.Binary, sizes...)
	require.NoError(t, err)
	for z := lo[2]; z < hi[2]; z++ {
		for y := lo[1]; y < hi[1]; y++ {
			for x := lo[0]; x < hi[0]; x++ {
				im.SetBit(true, x, y, z)
			}
		}
	}
	return im
}
