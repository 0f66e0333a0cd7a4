package morphology

import (
	"github.com/MeKo-Tech/binmorph/binimg"
)

// processBorders walks the image line by line along its longest dimension,
// so the interior fast path covers as many samples per line as possible. It
// calls onBorder for every sample within width pixels of the image edge, and
// onInterior (when non-nil) for every other sample. Each sample is visited
// exactly once.
func processBorders(im *binimg.Image, width int, onBorder, onInterior func(data []uint8, off int)) {
	data := im.Samples()
	sizes := im.Sizes()
	nDims := im.Dimensionality()
	procDim := 0
	for d := 1; d < nDims; d++ {
		if sizes[d] > sizes[procDim] {
			procDim = d
		}
	}
	lineLength := sizes[procDim]
	lineStride := im.Stride(procDim)

	coords := make([]int, nDims)
	for {
		off := im.Offset(coords)
		// A line whose other coordinates fall within the border band is
		// border in its entirety, as are lines too short to have an interior.
		wholeLine := 2*width >= lineLength
		for d := 0; d < nDims && !wholeLine; d++ {
			if d == procDim {
				continue
			}
			if coords[d] < width || coords[d] >= sizes[d]-width {
				wholeLine = true
			}
		}
		if wholeLine {
			for i := 0; i < lineLength; i++ {
				onBorder(data, off)
				off += lineStride
			}
		} else {
			for i := 0; i < width; i++ {
				onBorder(data, off)
				off += lineStride
			}
			if onInterior != nil {
				for i := width; i < lineLength-width; i++ {
					onInterior(data, off)
					off += lineStride
				}
			} else {
				off += (lineLength - 2*width) * lineStride
			}
			for i := lineLength - width; i < lineLength; i++ {
				onBorder(data, off)
				off += lineStride
			}
		}
		if !nextLine(coords, sizes, procDim) {
			return
		}
	}
}

// nextLine advances a line origin to the next line, skipping the processing
// dimension. It returns false after the last line.
func nextLine(coords, sizes []int, procDim int) bool {
	for d := 0; d < len(coords); d++ {
		if d == procDim {
			continue
		}
		coords[d]++
		if coords[d] < sizes[d] {
			return true
		}
		coords[d] = 0
	}
	return false
}

// applyBorderMask sets mask on the byte of every pixel in the 1-wide edge
// band and clears it on every interior pixel.
func applyBorderMask(out *binimg.Image, mask uint8) {
	processBorders(out, 1,
		func(data []uint8, off int) { data[off] |= mask },
		func(data []uint8, off int) { data[off] &^= mask })
}

// clearBorderMask clears mask on the edge band, leaving the interior alone.
func clearBorderMask(out *binimg.Image, mask uint8) {
	processBorders(out, 1,
		func(data []uint8, off int) { data[off] &^= mask },
		nil)
}
