package morphology

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/binmorph/binimg"
)

// BinaryPropagation propagates inSeed within inMask: foreground grows from
// the seed pixels, step by step, but never outside the mask. With zero
// iterations the propagation runs until it stabilizes, which reconstructs
// every mask component that contains a seed pixel. inSeed may be a raw
// image, meaning "no seed, start empty"; combined with the "object" edge
// condition that reconstructs the components touching the image edge.
func BinaryPropagation(inSeed, inMask, out *binimg.Image, connectivity, iterations int, edgeCondition string) error {
	if err := binimg.CheckBinary(inMask); err != nil {
		return err
	}
	if inSeed.IsForged() {
		if err := binimg.CheckBinary(inSeed); err != nil {
			return err
		}
		if !sameSizes(inSeed, inMask) {
			return binimg.ErrSizesDontMatch
		}
	}
	nDims := inMask.Dimensionality()
	if connectivity > nDims {
		return fmt.Errorf("%w: connectivity %d for a %dD image", binimg.ErrParameterOutOfRange, connectivity, nDims)
	}
	if iterations < 0 {
		return fmt.Errorf("%w: iterations must not be negative", binimg.ErrParameterOutOfRange)
	}
	outsideIsObject, err := parseEdgeCondition(edgeCondition)
	if err != nil {
		return err
	}

	pixelSize := inSeed.PixelSize()
	if pixelSize == nil {
		pixelSize = inMask.PixelSize()
	}

	// Do not overwrite the mask when out aliases it.
	mask := inMask
	if out.SharesData(inMask) {
		mask, err = binimg.New(binimg.Binary, inMask.Sizes()...)
		if err != nil {
			return err
		}
		if err := mask.CopyFrom(inMask); err != nil {
			return err
		}
	}

	seed := inSeed
	if out.SharesData(inSeed) {
		seed = nil // reforge keeps the buffer, the seed is already in place
	}
	if err := out.ReForge(inMask.Sizes(), binimg.Binary); err != nil {
		return err
	}
	if seed != nil {
		if seed.IsForged() {
			if err := out.CopyFrom(seed); err != nil {
				return err
			}
		} else {
			out.Fill(0)
		}
	}
	out.SetPixelSize(pixelSize)

	if iterations == 0 {
		// Until stability there is no alternation to finish on a specific
		// parity, so a negative connectivity degenerates to the full one.
		if connectivity < 0 {
			connectivity = 0
		}
		iterations = math.MaxInt
	}

	lists, offsets, err := iterationLists(out, connectivity)
	if err != nil {
		return err
	}

	applyBorderMask(out, borderBit)
	copyMaskPlane(out, mask)

	q := newFifo(out.NumberOfPixels() / 4)
	defer q.release()
	findEdgePixels(out, false, lists[0], offsets[0], outsideIsObject, q)

	data := out.Samples()
	sizes := out.Sizes()
	coords := make([]int, nDims)

	// First iteration: queued pixels inside the mask become seed, and go
	// back on the queue to propagate from.
	for count := q.len(); count > 0; count-- {
		off := q.pop()
		if data[off]&(maskBit|dataBit) == maskBit {
			data[off] |= dataBit
			q.push(off)
		}
	}

	for iter := 1; iter < iterations && q.len() > 0; iter++ {
		nl := lists[iter&1]
		noffs := offsets[iter&1]
		for count := q.len(); count > 0; count-- {
			off := q.pop()
			isBorder := data[off]&borderBit != 0
			if isBorder {
				out.OffsetToCoords(off, coords)
			}
			for i, noff := range noffs {
				if isBorder && !nl.IsInImage(i, coords, sizes) {
					continue
				}
				n := off + noff
				// Mask bit set means propagation allowed, data bit clear
				// means not yet reached.
				if data[n]&(maskBit|dataBit) == maskBit {
					data[n] |= dataBit
					q.push(n)
				}
			}
		}
	}

	// Collapse: foreground iff both reached and inside the mask. This also
	// drops the border and mask scratch bits.
	for i := range data {
		if data[i]&(maskBit|dataBit) == maskBit|dataBit {
			data[i] = 1
		} else {
			data[i] = 0
		}
	}
	return nil
}

// copyMaskPlane sets the mask bit of out wherever mask has a foreground
// pixel. A raw mask means everything is reachable.
func copyMaskPlane(out, mask *binimg.Image) {
	data := out.Samples()
	if !mask.IsForged() {
		for i := range data {
			data[i] |= maskBit
		}
		return
	}
	if sameStrides(out, mask) {
		src := mask.Samples()
		for i := range data {
			if src[i]&dataBit != 0 {
				data[i] |= maskBit
			}
		}
		return
	}
	coords := make([]int, out.Dimensionality())
	for {
		if mask.Samples()[mask.Offset(coords)]&dataBit != 0 {
			data[out.Offset(coords)] |= maskBit
		}
		if !nextCoords(coords, out.Sizes()) {
			return
		}
	}
}

// EdgeObjectsRemove removes every foreground component connected to the
// image edge.
func EdgeObjectsRemove(in, out *binimg.Image, connectivity int) error {
	if err := binimg.CheckBinary(in); err != nil {
		return err
	}
	// Propagating an empty seed with the "object" edge condition
	// reconstructs exactly the components that touch the edge.
	edgeObjects, err := binimg.New(binimg.Binary, in.Sizes()...)
	if err != nil {
		return err
	}
	if err := BinaryPropagation(binimg.Raw(), in, edgeObjects, connectivity, 0, EdgeObject); err != nil {
		return err
	}
	if err := prepareOutput(in, out); err != nil {
		return err
	}
	return out.Xor(edgeObjects)
}

// FillHoles makes foreground out of every background component that does
// not touch the image edge.
func FillHoles(in, out *binimg.Image, connectivity int) error {
	if err := binimg.CheckBinary(in); err != nil {
		return err
	}
	background, err := binimg.New(binimg.Binary, in.Sizes()...)
	if err != nil {
		return err
	}
	if err := background.CopyFrom(in); err != nil {
		return err
	}
	if err := background.Invert(); err != nil {
		return err
	}
	// The edge-connected part of the background is everything but the holes.
	if err := BinaryPropagation(binimg.Raw(), background, out, connectivity, 0, EdgeObject); err != nil {
		return err
	}
	return out.Invert()
}

func sameSizes(a, b *binimg.Image) bool {
	as, bs := a.Sizes(), b.Sizes()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func sameStrides(a, b *binimg.Image) bool {
	as, bs := a.Strides(), b.Strides()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func nextCoords(coords, sizes []int) bool {
	for d := range coords {
		coords[d]++
		if coords[d] < sizes[d] {
			return true
		}
		coords[d] = 0
	}
	return false
}
