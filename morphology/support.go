// Package morphology implements queue-driven binary morphology on
// n-dimensional images: dilation, erosion, opening, closing, conditional
// propagation, edge-object removal, hole filling, 2D homotopic thickening
// and thinning, and neighbor counting.
//
// During an operation the engine multiplexes its state into the scratch bits
// of each binary sample byte, so a single load answers every predicate the
// inner loop asks. The scratch bits are cleared before a result is returned.
package morphology

import (
	"fmt"

	"github.com/MeKo-Tech/binmorph/binimg"
	"github.com/MeKo-Tech/binmorph/internal/mempool"
	"github.com/MeKo-Tech/binmorph/neighborhood"
)

// Bit planes used by the propagation engine.
const (
	dataBit   uint8 = 1      // pixel value, and seed marker during propagation
	borderBit uint8 = 1 << 2 // pixel lies in the 1-wide image edge band
	maskBit   uint8 = 1 << 3 // propagation may reach this pixel
)

// Edge conditions.
const (
	EdgeObject     = "object"
	EdgeBackground = "background"
	EdgeSpecial    = "special"
)

// End pixel conditions for 2D thinning and thickening.
const (
	EndPixelKeep = "keep"
	EndPixelLose = "lose"
)

// parseEdgeCondition maps "object" to true and "background" to false.
func parseEdgeCondition(s string) (bool, error) {
	switch s {
	case EdgeObject:
		return true, nil
	case EdgeBackground:
		return false, nil
	}
	return false, fmt.Errorf("%w: edge condition %q", binimg.ErrInvalidFlag, s)
}

// absConnectivity resolves a signed connectivity for the given iteration.
// Negative values alternate between two connectivities on iteration parity;
// alternation is only defined for 2D and 3D images.
func absConnectivity(dims, connectivity, iteration int) (int, error) {
	if dims == 2 {
		switch connectivity {
		case -1:
			if iteration%2 == 0 {
				return 1, nil
			}
			return 2, nil
		case -2:
			if iteration%2 == 0 {
				return 2, nil
			}
			return 1, nil
		}
	} else if dims == 3 {
		switch connectivity {
		case -1:
			if iteration%2 == 0 {
				return 1, nil
			}
			return 3, nil
		case -2, -3:
			if iteration%2 == 0 {
				return 3, nil
			}
			return 1, nil
		}
	}
	if connectivity < 0 {
		return 0, fmt.Errorf("%w: connectivity can only be negative for 2D and 3D images", binimg.ErrParameterOutOfRange)
	}
	return connectivity, nil
}

// fifo is a first-in first-out queue of sample offsets into the output
// image. Pushes during a drain land behind the recorded length, which is how
// the engine delimits iterations.
type fifo struct {
	buf  []int
	head int
}

func newFifo(hint int) *fifo {
	return &fifo{buf: mempool.GetInt(hint)[:0]}
}

func (q *fifo) release() {
	mempool.PutInt(q.buf)
	q.buf = nil
}

func (q *fifo) push(off int) {
	q.buf = append(q.buf, off)
}

func (q *fifo) pop() int {
	off := q.buf[q.head]
	q.head++
	if q.head == len(q.buf) {
		// Drained: rewind so the backing array gets reused.
		q.buf = q.buf[:0]
		q.head = 0
	}
	return off
}

func (q *fifo) len() int {
	return len(q.buf) - q.head
}

// pending returns the queued offsets without consuming them.
func (q *fifo) pending() []int {
	return q.buf[q.head:]
}

// isEdgePixel reports whether the pixel at off has a neighbor with a
// differing data bit. Bounds are only checked when checkBounds is set, which
// the callers reserve for border pixels.
func isEdgePixel(
	data []uint8,
	off int,
	nl *neighborhood.NeighborList,
	offsets []int,
	sizes []int,
	checkBounds bool,
	coords []int,
) bool {
	pixelIsObject := data[off]&dataBit != 0
	for i, noff := range offsets {
		if !checkBounds || nl.IsInImage(i, coords, sizes) {
			if (data[off+noff]&dataBit != 0) != pixelIsObject {
				return true
			}
		}
	}
	return false
}

// findEdgePixels enqueues every pixel whose data bit matches findForeground
// and that is adjacent to a pixel of the opposite polarity. Border pixels
// whose value differs from the edge condition count as adjacent to the
// outside.
func findEdgePixels(
	out *binimg.Image,
	findForeground bool,
	nl *neighborhood.NeighborList,
	offsets []int,
	outsideIsObject bool,
	q *fifo,
) {
	data := out.Samples()
	sizes := out.Sizes()
	coords := make([]int, out.Dimensionality())
	for off := range data {
		b := data[off]
		isObject := b&dataBit != 0
		if isObject != findForeground {
			continue
		}
		isBorder := b&borderBit != 0
		if isBorder {
			out.OffsetToCoords(off, coords)
			if isObject != outsideIsObject {
				q.push(off)
				continue
			}
		}
		if isEdgePixel(data, off, nl, offsets, sizes, isBorder, coords) {
			q.push(off)
		}
	}
}
