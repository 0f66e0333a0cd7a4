package morphology

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/binmorph/binimg"
)

// Hilditch topology tables, indexed by the 8-connected neighborhood of a
// candidate pixel (bit 0 = east, then counterclockwise through bit 7 =
// southeast). An entry of 1 means toggling the pixel would change the
// topology. Table 0 removes all end pixels, table 1 keeps pixels with a
// single neighbor.
var hilditch = [2][256]uint8{
	{
		1, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0,
		0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0,
		0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1,
		0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1,
		0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0,
		0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1,
		0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1,
	}, {
		1, 1, 1, 0, 1, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0,
		1, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1,
		0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1,
		1, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0,
		0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1,
		0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1,
	},
}

// Bit planes of the 2D thickening and thinning routine. The multi-iteration
// border trick is not needed here, so bits 1 and 2 take different roles.
const (
	ttMaskBit     uint8 = 1 << 1 // pixel may be changed
	ttEnqueuedBit uint8 = 1 << 2 // pixel currently sits in the queue
)

// neighborhoodCode packs the data bits of the 8 neighbors of the pixel at
// off into a table index. For thickening the complemented pattern is used.
func neighborhoodCode(data []uint8, off, sx, sy int, complement bool) int {
	code := 0
	test := func(o int, bit int) {
		if (data[off+o]&dataBit != 0) != complement {
			code |= bit
		}
	}
	test(sx, 1)       // E
	test(sx-sy, 2)    // NE
	test(-sy, 4)      // N
	test(-sx-sy, 8)   // NW
	test(-sx, 16)     // W
	test(-sx+sy, 32)  // SW
	test(sy, 64)      // S
	test(sx+sy, 128)  // SE
	return code
}

func setBorders(out *binimg.Image, bit uint8) {
	processBorders(out, 1,
		func(data []uint8, off int) { data[off] |= bit },
		nil)
}

func resetBorders(out *binimg.Image, bit uint8) {
	processBorders(out, 1,
		func(data []uint8, off int) { data[off] &^= bit },
		nil)
}

// enqueueEdges2D queues every pixel whose byte equals expected and that has
// a 4-neighbor of the opposite polarity. Candidates carry the mask bit and
// so never lie on the image border, which keeps neighbor access in bounds.
func enqueueEdges2D(out *binimg.Image, findForeground bool, expected uint8, q *fifo) {
	data := out.Samples()
	sx := out.Stride(0)
	sy := out.Stride(1)
	for off := range data {
		if data[off] != expected {
			continue
		}
		if (data[off-sy]&dataBit != 0) != findForeground ||
			(data[off-sx]&dataBit != 0) != findForeground ||
			(data[off+sx]&dataBit != 0) != findForeground ||
			(data[off+sy]&dataBit != 0) != findForeground {
			q.push(off)
			data[off] |= ttEnqueuedBit
		}
	}
}

func conditionalThickeningThinning2D(
	in, mask, out *binimg.Image,
	iterations int,
	endPixelCondition, edgeCondition string,
	thicken bool,
) error {
	if err := binimg.CheckBinary(in); err != nil {
		return err
	}
	if in.Dimensionality() != 2 {
		return fmt.Errorf("%w: thickening and thinning are 2D only", binimg.ErrDimensionality)
	}
	if mask.IsForged() {
		if err := binimg.CheckBinary(mask); err != nil {
			return err
		}
		if !sameSizes(mask, in) {
			return binimg.ErrSizesDontMatch
		}
	}
	if iterations < 0 {
		return fmt.Errorf("%w: iterations must not be negative", binimg.ErrParameterOutOfRange)
	}
	if iterations == 0 {
		iterations = math.MaxInt
	}
	var lut *[256]uint8
	switch endPixelCondition {
	case EndPixelKeep:
		lut = &hilditch[1]
	case EndPixelLose:
		lut = &hilditch[0]
	default:
		return fmt.Errorf("%w: end pixel condition %q", binimg.ErrInvalidFlag, endPixelCondition)
	}
	edge, err := parseEdgeCondition(edgeCondition)
	if err != nil {
		return err
	}

	if out.SharesData(mask) {
		clone, err := binimg.New(binimg.Binary, mask.Sizes()...)
		if err != nil {
			return err
		}
		if err := clone.CopyFrom(mask); err != nil {
			return err
		}
		mask = clone
	}
	if err := prepareOutput(in, out); err != nil {
		return err
	}
	if out.PixelSize() == nil && mask.IsForged() {
		out.SetPixelSize(mask.PixelSize())
	}

	// Add the mask plane. A raw mask means the whole image may change.
	data := out.Samples()
	if mask.IsForged() {
		src := mask.Samples()
		for i := range data {
			if src[i]&dataBit != 0 {
				data[i] |= ttMaskBit
			}
		}
	} else {
		for i := range data {
			data[i] |= ttMaskBit
		}
	}

	// Fix the border to the edge condition and bar it from changing, so the
	// inner loop never needs a bounds check.
	if edge {
		setBorders(out, dataBit)
	} else {
		resetBorders(out, dataBit)
	}
	resetBorders(out, ttMaskBit)

	// The byte value of a pixel that may still be enqueued.
	expected := ttMaskBit
	if !thicken {
		expected |= dataBit
	}

	q := newFifo(out.NumberOfPixels() / 4)
	defer q.release()
	enqueueEdges2D(out, !thicken, expected, q)

	sx := out.Stride(0)
	sy := out.Stride(1)
	for iter := 0; iter < iterations && q.len() > 0; iter++ {
		for count := q.len(); count > 0; count-- {
			off := q.pop()
			data[off] &^= ttEnqueuedBit
			if hilditchCode := neighborhoodCode(data, off, sx, sy, thicken); lut[hilditchCode] != 0 {
				// Toggling would change topology. The pixel is tested again
				// if one of its neighbors changes later.
				continue
			}
			if thicken {
				data[off] |= dataBit
			} else {
				data[off] &^= dataBit
			}
			// Enqueue the 4-neighbors that can still change; diagonal
			// neighbors only when no edge-neighbor qualified.
			none := true
			for _, noff := range [4]int{-sy, -sx, sx, sy} {
				n := off + noff
				if data[n] == expected {
					q.push(n)
					data[n] |= ttEnqueuedBit
					none = false
				}
			}
			if none {
				for _, noff := range [4]int{-sy - sx, -sy + sx, sy - sx, sy + sx} {
					n := off + noff
					if data[n] == expected {
						q.push(n)
						data[n] |= ttEnqueuedBit
					}
				}
			}
		}
	}

	// Keep only the data bit.
	for i := range data {
		data[i] &= dataBit
	}
	return nil
}

// ConditionalThickening2D grows the foreground of in inside mask without
// changing its topology: no two objects merge and no hole closes. With zero
// iterations the thickening runs until idempotence. The end pixel condition
// ("keep" or "lose") decides whether one-pixel branches survive.
func ConditionalThickening2D(in, mask, out *binimg.Image, iterations int, endPixelCondition, edgeCondition string) error {
	return conditionalThickeningThinning2D(in, mask, out, iterations, endPixelCondition, edgeCondition, true)
}

// ConditionalThinning2D shrinks the foreground of in inside mask without
// changing its topology. With mask raw and zero iterations this computes a
// homotopic skeleton of in.
func ConditionalThinning2D(in, mask, out *binimg.Image, iterations int, endPixelCondition, edgeCondition string) error {
	return conditionalThickeningThinning2D(in, mask, out, iterations, endPixelCondition, edgeCondition, false)
}
