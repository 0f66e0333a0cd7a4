package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/binmorph/binimg"
)

// GlyphImage renders text with the 7x13 basic font into a binary image with
// a margin pixels wide background frame. It gives tests realistically
// irregular shapes with known topology (e.g. "o" has one hole, "B" two).
func GlyphImage(t *testing.T, text string, margin int) *binimg.Image {
	t.Helper()
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil() + 2*margin
	h := face.Metrics().Height.Ceil() + 2*margin

	img := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(margin, margin+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)

	bin, err := binimg.FromImage(img, 128)
	require.NoError(t, err)
	return bin
}
