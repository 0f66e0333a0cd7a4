package binimg

// Fill sets every sample to v.
func (im *Image) Fill(v uint8) {
	for i := range im.data {
		im.data[i] = v
	}
}

// Invert flips the data bit of every pixel of a binary image.
func (im *Image) Invert() error {
	if err := CheckBinary(im); err != nil {
		return err
	}
	for i := range im.data {
		im.data[i] ^= 1
	}
	return nil
}

// Xor stores the exclusive or of the two binary images into im.
func (im *Image) Xor(other *Image) error {
	return im.combine(other, func(a, b uint8) uint8 { return (a ^ b) & 1 })
}

// And stores the conjunction of the two binary images into im.
func (im *Image) And(other *Image) error {
	return im.combine(other, func(a, b uint8) uint8 { return a & b & 1 })
}

// Or stores the disjunction of the two binary images into im.
func (im *Image) Or(other *Image) error {
	return im.combine(other, func(a, b uint8) uint8 { return (a | b) & 1 })
}

func (im *Image) combine(other *Image, op func(a, b uint8) uint8) error {
	if err := CheckBinary(im); err != nil {
		return err
	}
	if err := CheckBinary(other); err != nil {
		return err
	}
	if !equalInts(im.sizes, other.sizes) {
		return ErrSizesDontMatch
	}
	if equalInts(im.strides, other.strides) {
		for i := range im.data {
			im.data[i] = op(im.data[i], other.data[i])
		}
		return nil
	}
	coords := make([]int, len(im.sizes))
	for {
		off := im.Offset(coords)
		im.data[off] = op(im.data[off], other.data[other.Offset(coords)])
		if !im.nextCoords(coords) {
			return nil
		}
	}
}

// Count returns the number of set pixels of a binary image, or the number of
// non-zero samples otherwise.
func (im *Image) Count() int {
	n := 0
	if im.IsBinary() {
		for _, b := range im.data {
			n += int(b & 1)
		}
		return n
	}
	for _, b := range im.data {
		if b != 0 {
			n++
		}
	}
	return n
}

// Equal reports whether the two images have the same sizes and sample values.
// Binary images compare only their data bits.
func (im *Image) Equal(other *Image) bool {
	if im.forged != other.forged {
		return false
	}
	if !im.forged {
		return true
	}
	if im.dtype != other.dtype || !equalInts(im.sizes, other.sizes) {
		return false
	}
	mask := uint8(0xff)
	if im.IsBinary() {
		mask = 1
	}
	coords := make([]int, len(im.sizes))
	for {
		if im.data[im.Offset(coords)]&mask != other.data[other.Offset(coords)]&mask {
			return false
		}
		if !im.nextCoords(coords) {
			return true
		}
	}
}
