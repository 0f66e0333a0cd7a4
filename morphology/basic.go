package morphology

import (
	"fmt"

	"github.com/MeKo-Tech/binmorph/binimg"
	"github.com/MeKo-Tech/binmorph/neighborhood"
)

// iterationLists builds the neighbor lists and offset tables for even and
// odd iterations of a signed connectivity.
func iterationLists(out *binimg.Image, connectivity int) (lists [2]*neighborhood.NeighborList, offsets [2][]int, err error) {
	nDims := out.Dimensionality()
	for parity := 0; parity < 2; parity++ {
		conn, err := absConnectivity(nDims, connectivity, parity)
		if err != nil {
			return lists, offsets, err
		}
		lists[parity], err = neighborhood.New(neighborhood.ConnectedMetric(conn), nDims)
		if err != nil {
			return lists, offsets, err
		}
		offsets[parity], err = lists[parity].ComputeOffsets(out.Strides())
		if err != nil {
			return lists, offsets, err
		}
	}
	return lists, offsets, nil
}

// prepareOutput reforges out to the shape of in, copies in into it and
// carries over the pixel size.
func prepareOutput(in, out *binimg.Image) error {
	src := in
	if out.SharesData(in) {
		src = nil // reforge keeps the buffer, the data is already in place
	}
	if err := out.ReForge(in.Sizes(), binimg.Binary); err != nil {
		return err
	}
	if src != nil {
		if err := out.CopyFrom(src); err != nil {
			return err
		}
	}
	if ps := in.PixelSize(); ps != nil {
		out.SetPixelSize(ps)
	}
	return nil
}

// dilationErosion is the engine shared by dilation and erosion. The
// operations differ only in which polarity of pixel they change and in the
// direction the data bit is toggled.
func dilationErosion(
	in, out *binimg.Image,
	connectivity, iterations int,
	edgeCondition string,
	findForeground bool,
	relax func(data []uint8, off int),
) error {
	if err := binimg.CheckBinary(in); err != nil {
		return err
	}
	nDims := in.Dimensionality()
	if connectivity > nDims {
		return fmt.Errorf("%w: connectivity %d for a %dD image", binimg.ErrParameterOutOfRange, connectivity, nDims)
	}
	if iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1", binimg.ErrParameterOutOfRange)
	}
	outsideIsObject, err := parseEdgeCondition(edgeCondition)
	if err != nil {
		return err
	}
	if err := prepareOutput(in, out); err != nil {
		return err
	}
	lists, offsets, err := iterationLists(out, connectivity)
	if err != nil {
		return err
	}

	applyBorderMask(out, borderBit)

	q := newFifo(out.NumberOfPixels() / 4)
	defer q.release()
	findEdgePixels(out, findForeground, lists[0], offsets[0], outsideIsObject, q)

	data := out.Samples()
	sizes := out.Sizes()
	coords := make([]int, nDims)

	// First iteration: every queued pixel changes.
	for _, off := range q.pending() {
		relax(data, off)
	}

	for iter := 1; iter < iterations; iter++ {
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
				if (data[n]&dataBit != 0) == findForeground {
					relax(data, n)
					q.push(n)
				}
			}
		}
	}

	clearBorderMask(out, borderBit)
	return nil
}

// BinaryDilation grows the foreground of in by iterations steps of the given
// connectivity and stores the result in out. A negative connectivity
// alternates between two connectivities to better approximate a Euclidean
// disc. The edge condition decides the value of pixels outside the image.
func BinaryDilation(in, out *binimg.Image, connectivity, iterations int, edgeCondition string) error {
	// Dilation changes background pixels into foreground.
	return dilationErosion(in, out, connectivity, iterations, edgeCondition, false,
		func(data []uint8, off int) { data[off] |= dataBit })
}

// BinaryErosion shrinks the foreground of in by iterations steps of the
// given connectivity and stores the result in out.
func BinaryErosion(in, out *binimg.Image, connectivity, iterations int, edgeCondition string) error {
	// Erosion changes foreground pixels into background.
	return dilationErosion(in, out, connectivity, iterations, edgeCondition, true,
		func(data []uint8, off int) { data[off] &^= dataBit })
}

// BinaryOpening erodes and then dilates. The "special" edge condition uses
// "object" for the erosion and "background" for the dilation, which keeps
// the operation from eating into objects touching the image edge.
func BinaryOpening(in, out *binimg.Image, connectivity, iterations int, edgeCondition string) error {
	if edgeCondition == EdgeObject || edgeCondition == EdgeBackground {
		if err := BinaryErosion(in, out, connectivity, iterations, edgeCondition); err != nil {
			return err
		}
		return BinaryDilation(out, out, connectivity, iterations, edgeCondition)
	}
	if edgeCondition != EdgeSpecial {
		return fmt.Errorf("%w: edge condition %q", binimg.ErrInvalidFlag, edgeCondition)
	}
	if err := BinaryErosion(in, out, connectivity, iterations, EdgeObject); err != nil {
		return err
	}
	return BinaryDilation(out, out, connectivity, iterations, EdgeBackground)
}

// BinaryClosing dilates and then erodes. The "special" edge condition uses
// "background" for the dilation and "object" for the erosion.
func BinaryClosing(in, out *binimg.Image, connectivity, iterations int, edgeCondition string) error {
	if edgeCondition == EdgeObject || edgeCondition == EdgeBackground {
		if err := BinaryDilation(in, out, connectivity, iterations, edgeCondition); err != nil {
			return err
		}
		return BinaryErosion(out, out, connectivity, iterations, edgeCondition)
	}
	if edgeCondition != EdgeSpecial {
		return fmt.Errorf("%w: edge condition %q", binimg.ErrInvalidFlag, edgeCondition)
	}
	if err := BinaryDilation(in, out, connectivity, iterations, EdgeBackground); err != nil {
		return err
	}
	return BinaryErosion(out, out, connectivity, iterations, EdgeObject)
}
