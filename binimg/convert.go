package binimg

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// FromImage thresholds a standard library image into a 2D binary image.
// Pixels whose grayscale intensity is at least threshold become foreground.
// Dimension 0 is x, dimension 1 is y.
func FromImage(img image.Image, threshold uint8) (*Image, error) {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	out, err := New(Binary, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4] >= threshold {
				out.data[out.strides[1]*y+x] = 1
			}
		}
	}
	return out, nil
}

// ToGray renders a 2D binary image as an 8-bit grayscale image with
// foreground white and background black.
func (im *Image) ToGray() (*image.Gray, error) {
	if err := CheckBinary(im); err != nil {
		return nil, err
	}
	if im.Dimensionality() != 2 {
		return nil, fmt.Errorf("%w: ToGray needs a 2D image, got %dD", ErrDimensionality, im.Dimensionality())
	}
	w, h := im.sizes[0], im.sizes[1]
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if im.data[im.Offset([]int{x, y})]&1 != 0 {
				gray.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return gray, nil
}
