// Package binimg provides the strided n-dimensional image container used by
// the morphology engine and its consumers. Binary images store one sample per
// byte; bit 0 carries the pixel value and bits 1-7 are scratch planes that
// algorithms may use internally but must clear before returning a result.
package binimg

import (
	"fmt"
	"sort"
)

// DataType enumerates the sample types the container supports.
type DataType int

const (
	// Binary samples are one byte each, with the pixel value in bit 0.
	Binary DataType = iota
	// Uint8 samples are plain unsigned 8-bit values.
	Uint8
)

func (dt DataType) String() string {
	switch dt {
	case Binary:
		return "binary"
	case Uint8:
		return "uint8"
	}
	return fmt.Sprintf("DataType(%d)", int(dt))
}

// PhysicalQuantity pairs a magnitude with a unit string, used for per-axis
// pixel sizes.
type PhysicalQuantity struct {
	Magnitude float64
	Units     string
}

// Image is a strided n-dimensional sample buffer. The zero value is a raw
// (unforged) image; Forge or ReForge allocates storage. Strides are expressed
// in samples, not bytes, with dimension 0 the fastest-varying one in the
// default layout.
type Image struct {
	dtype     DataType
	sizes     []int
	strides   []int
	tensor    int
	data      []uint8
	forged    bool
	pixelSize []PhysicalQuantity
}

// New returns a forged scalar image of the given type and sizes, with the
// default (normal) stride layout. All samples are zero.
func New(dtype DataType, sizes ...int) (*Image, error) {
	im := &Image{}
	if err := im.ReForge(sizes, dtype); err != nil {
		return nil, err
	}
	return im, nil
}

// NewTensor returns a forged image with elems tensor elements per pixel.
// Tensor elements are interleaved at stride 1.
func NewTensor(dtype DataType, elems int, sizes ...int) (*Image, error) {
	if elems < 1 {
		return nil, fmt.Errorf("tensor elements must be positive, got %d", elems)
	}
	im := &Image{tensor: elems}
	if err := im.ReForge(sizes, dtype); err != nil {
		return nil, err
	}
	return im, nil
}

// Raw returns an unforged image; passing it as a seed to BinaryPropagation
// means "start empty".
func Raw() *Image {
	return &Image{}
}

// IsForged reports whether the image has sample storage.
func (im *Image) IsForged() bool { return im.forged }

// Dimensionality returns the number of spatial dimensions.
func (im *Image) Dimensionality() int { return len(im.sizes) }

// Sizes returns the per-dimension sizes. The slice is shared with the image;
// callers must not modify it.
func (im *Image) Sizes() []int { return im.sizes }

// Size returns the extent along dimension d.
func (im *Image) Size(d int) int { return im.sizes[d] }

// Strides returns the per-dimension strides in samples. The slice is shared
// with the image; callers must not modify it.
func (im *Image) Strides() []int { return im.strides }

// Stride returns the stride along dimension d, in samples.
func (im *Image) Stride(d int) int { return im.strides[d] }

// DataType returns the sample type.
func (im *Image) DataType() DataType { return im.dtype }

// IsBinary reports whether the samples are binary.
func (im *Image) IsBinary() bool { return im.dtype == Binary }

// TensorElements returns the number of tensor elements per pixel.
func (im *Image) TensorElements() int {
	if im.tensor == 0 {
		return 1
	}
	return im.tensor
}

// IsScalar reports whether the image has a single tensor element per pixel.
func (im *Image) IsScalar() bool { return im.TensorElements() == 1 }

// PixelSize returns the per-axis physical pixel size, or nil when none is set.
func (im *Image) PixelSize() []PhysicalQuantity { return im.pixelSize }

// SetPixelSize records the per-axis physical pixel size.
func (im *Image) SetPixelSize(ps []PhysicalQuantity) { im.pixelSize = ps }

// NumberOfPixels returns the product of the sizes, or 0 for a raw image.
func (im *Image) NumberOfPixels() int {
	if !im.forged {
		return 0
	}
	n := 1
	for _, s := range im.sizes {
		n *= s
	}
	return n
}

// Samples exposes the raw sample buffer. For images forged by this package
// the buffer is dense and the flat index of a pixel equals its stride offset.
func (im *Image) Samples() []uint8 { return im.data }

// SharesData reports whether the two images are backed by the same buffer.
func (im *Image) SharesData(other *Image) bool {
	if im == nil || other == nil || !im.forged || !other.forged {
		return false
	}
	return &im.data[0] == &other.data[0]
}

// ReForge gives the image the requested sizes and data type, allocating new
// storage unless the current storage already matches. Existing sample values
// are kept when storage is reused; otherwise the buffer starts zeroed.
func (im *Image) ReForge(sizes []int, dtype DataType) error {
	if len(sizes) < 1 {
		return fmt.Errorf("%w: image needs at least one dimension", ErrDimensionality)
	}
	n := im.TensorElements()
	for _, s := range sizes {
		if s < 1 {
			return fmt.Errorf("reforge to size %v: all sizes must be positive", sizes)
		}
		n *= s
	}
	if im.forged && im.dtype == dtype && equalInts(im.sizes, sizes) {
		return nil
	}
	im.dtype = dtype
	im.sizes = append([]int(nil), sizes...)
	im.strides = make([]int, len(sizes))
	stride := im.TensorElements()
	for d := range sizes {
		im.strides[d] = stride
		stride *= sizes[d]
	}
	im.data = make([]uint8, n)
	im.forged = true
	return nil
}

// Forge allocates storage for the current sizes and data type.
func (im *Image) Forge() error {
	if im.forged {
		return nil
	}
	if len(im.sizes) == 0 {
		return fmt.Errorf("%w: no sizes set", ErrDimensionality)
	}
	return im.ReForge(im.sizes, im.dtype)
}

// Strip releases the sample storage, leaving a raw image.
func (im *Image) Strip() {
	im.data = nil
	im.forged = false
}

// Offset returns the flat sample offset of the pixel at the given
// coordinates. The coordinates are not bounds-checked.
func (im *Image) Offset(coords []int) int {
	off := 0
	for d, c := range coords {
		off += c * im.strides[d]
	}
	return off
}

// OffsetToCoords inverts Offset for images with non-negative, nested strides
// (any image forged by this package qualifies). The result is written into
// coords, which must have length Dimensionality().
func (im *Image) OffsetToCoords(off int, coords []int) {
	order := im.strideOrder()
	for _, d := range order {
		s := im.strides[d]
		c := off / s
		off -= c * s
		coords[d] = c
	}
}

// strideOrder returns the dimensions sorted by decreasing stride.
func (im *Image) strideOrder() []int {
	order := make([]int, len(im.strides))
	for d := range order {
		order[d] = d
	}
	sort.Slice(order, func(i, j int) bool {
		return im.strides[order[i]] > im.strides[order[j]]
	})
	return order
}

// At returns the sample at the given coordinates.
func (im *Image) At(coords ...int) uint8 {
	return im.data[im.Offset(coords)]
}

// Set stores a sample at the given coordinates.
func (im *Image) Set(v uint8, coords ...int) {
	im.data[im.Offset(coords)] = v
}

// Bit returns the data bit of the pixel at the given coordinates.
func (im *Image) Bit(coords ...int) bool {
	return im.data[im.Offset(coords)]&1 != 0
}

// SetBit stores the data bit of the pixel at the given coordinates.
func (im *Image) SetBit(v bool, coords ...int) {
	off := im.Offset(coords)
	if v {
		im.data[off] |= 1
	} else {
		im.data[off] &^= 1
	}
}

// CopyFrom copies the sample values of src into the image. Both images must
// be forged with identical sizes. Copying an image onto itself is a no-op.
func (im *Image) CopyFrom(src *Image) error {
	if !im.forged || !src.forged {
		return ErrNotForged
	}
	if !equalInts(im.sizes, src.sizes) {
		return ErrSizesDontMatch
	}
	if im.SharesData(src) {
		return nil
	}
	if equalInts(im.strides, src.strides) {
		copy(im.data, src.data)
		return nil
	}
	// Different layouts: walk coordinates.
	coords := make([]int, len(im.sizes))
	for {
		im.data[im.Offset(coords)] = src.data[src.Offset(coords)]
		if !im.nextCoords(coords) {
			return nil
		}
	}
}

// nextCoords advances an n-dimensional counter in raster order, dimension 0
// fastest. It returns false after the last coordinate.
func (im *Image) nextCoords(coords []int) bool {
	for d := range coords {
		coords[d]++
		if coords[d] < im.sizes[d] {
			return true
		}
		coords[d] = 0
	}
	return false
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
