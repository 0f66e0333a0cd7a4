package neighborhood

import (
	"fmt"
	"math"
	"sort"

	"github.com/MeKo-Tech/binmorph/binimg"
)

// Neighbor is one entry of a NeighborList: a coordinate offset and the
// distance to it.
type Neighbor struct {
	Coords   []int
	Distance float64
}

// NeighborList lists all neighbors in some neighborhood of a pixel, in the
// raster-scan order of their coordinates (dimension 0 varies fastest).
type NeighborList struct {
	neighbors []Neighbor
	dims      int
}

// New creates a NeighborList for the given metric and image dimensionality.
func New(m Metric, dims int) (*NeighborList, error) {
	if dims < 1 {
		return nil, fmt.Errorf("%w: neighborhood needs at least one dimension", binimg.ErrDimensionality)
	}
	nl := &NeighborList{dims: dims}
	var err error
	switch m.kind {
	case ImageKind:
		err = nl.constructImage(m.image)
	case ChamferKind:
		err = nl.constructChamfer(m.param, m.pixelSize)
	default:
		err = nl.constructConnectivity(m.param, m.pixelSize)
	}
	if err != nil {
		return nil, err
	}
	return nl, nil
}

// fixUpPixelSize brings a pixel size array to dims elements: the last element
// is replicated when too short, ones are used when empty.
func fixUpPixelSize(pixelSize []float64, dims int) []float64 {
	out := make([]float64, dims)
	for d := range out {
		switch {
		case d < len(pixelSize):
			out[d] = pixelSize[d]
		case len(pixelSize) > 0:
			out[d] = pixelSize[len(pixelSize)-1]
		default:
			out[d] = 1.0
		}
	}
	return out
}

func (nl *NeighborList) constructConnectivity(connectivity int, pixelSize []float64) error {
	if connectivity < 0 || connectivity > nl.dims {
		return fmt.Errorf("%w: connectivity %d for %d dimensions", binimg.ErrParameterOutOfRange, connectivity, nl.dims)
	}
	if connectivity == 0 {
		connectivity = nl.dims
	}
	ps2 := fixUpPixelSize(pixelSize, nl.dims)
	for d := range ps2 {
		ps2[d] *= ps2[d]
	}
	coords := make([]int, nl.dims)
	for d := range coords {
		coords[d] = -1
	}
	for {
		steps := 0
		dist2 := 0.0
		for d, c := range coords {
			if c != 0 {
				steps++
				dist2 += ps2[d]
			}
		}
		if steps > 0 && steps <= connectivity {
			nl.push(coords, math.Sqrt(dist2))
		}
		if !nextCoord(coords, 1) {
			return nil
		}
	}
}

func (nl *NeighborList) constructChamfer(maxDistance int, pixelSize []float64) error {
	if maxDistance < 1 {
		return fmt.Errorf("%w: chamfer distance %d", binimg.ErrParameterOutOfRange, maxDistance)
	}
	ps := fixUpPixelSize(pixelSize, nl.dims)
	switch {
	case nl.dims == 1:
		// Larger values for maxDistance make no sense in 1D.
		nl.push([]int{-1}, ps[0])
		nl.push([]int{1}, ps[0])
		return nil
	case nl.dims == 2 && maxDistance <= 2:
		nl.chamfer2D(maxDistance, ps)
		return nil
	case nl.dims == 3 && maxDistance <= 2:
		nl.chamfer3D(maxDistance, ps)
		return nil
	}
	return nl.chamferGeneric(maxDistance, ps)
}

// chamfer2D fills in the 3x3 or 5x5 chamfer neighborhood with the optimized
// weights of Verwer (1991), which keep chamfer distance transforms unbiased.
func (nl *NeighborList) chamfer2D(maxDistance int, ps []float64) {
	dx := ps[0]
	dy := ps[1]
	dxy := math.Hypot(dx, dy)
	if maxDistance == 1 {
		dx *= 0.9481
		dy *= 0.9481
		dxy *= 1.3408 / math.Sqrt2
		nl.push([]int{-1, -1}, dxy)
		nl.push([]int{0, -1}, dy)
		nl.push([]int{1, -1}, dxy)
		nl.push([]int{-1, 0}, dx)
		nl.push([]int{1, 0}, dx)
		nl.push([]int{-1, 1}, dxy)
		nl.push([]int{0, 1}, dy)
		nl.push([]int{1, 1}, dxy)
		return
	}
	dxxy := math.Hypot(2*dx, dy)
	dxyy := math.Hypot(dx, 2*dy)
	dx *= 0.9801
	dy *= 0.9801
	dxy *= 1.4060 / math.Sqrt2
	dxxy *= 2.2044 / math.Sqrt(5)
	dxyy *= 2.2044 / math.Sqrt(5)
	nl.push([]int{-1, -2}, dxyy)
	nl.push([]int{1, -2}, dxyy)
	nl.push([]int{-2, -1}, dxxy)
	nl.push([]int{-1, -1}, dxy)
	nl.push([]int{0, -1}, dy)
	nl.push([]int{1, -1}, dxy)
	nl.push([]int{2, -1}, dxxy)
	nl.push([]int{-1, 0}, dx)
	nl.push([]int{1, 0}, dx)
	nl.push([]int{-2, 1}, dxxy)
	nl.push([]int{-1, 1}, dxy)
	nl.push([]int{0, 1}, dy)
	nl.push([]int{1, 1}, dxy)
	nl.push([]int{2, 1}, dxxy)
	nl.push([]int{-1, 2}, dxyy)
	nl.push([]int{1, 2}, dxyy)
}

func (nl *NeighborList) chamfer3D(maxDistance int, ps []float64) {
	dx := ps[0]
	dy := ps[1]
	dz := ps[2]
	dxy := math.Hypot(dx, dy)
	dxz := math.Hypot(dx, dz)
	dyz := math.Hypot(dy, dz)
	dxyz := math.Hypot(dx, dyz)
	if maxDistance == 1 {
		dx *= 0.8939539326
		dy *= 0.8939539326
		dz *= 0.8939539326
		dxy *= 1.340863402 / math.Sqrt2
		dxz *= 1.340863402 / math.Sqrt2
		dyz *= 1.340863402 / math.Sqrt2
		dxyz *= 1.587920248 / math.Sqrt(3)
		for z := -1; z <= 1; z++ {
			for y := -1; y <= 1; y++ {
				for x := -1; x <= 1; x++ {
					if x == 0 && y == 0 && z == 0 {
						continue
					}
					var d float64
					switch numNonZero(x, y, z) {
					case 3:
						d = dxyz
					case 2:
						switch {
						case z == 0:
							d = dxy
						case y == 0:
							d = dxz
						default:
							d = dyz
						}
					default:
						switch {
						case x != 0:
							d = dx
						case y != 0:
							d = dy
						default:
							d = dz
						}
					}
					nl.push([]int{x, y, z}, d)
				}
			}
		}
		return
	}
	dxyy := math.Hypot(dx, 2*dy)
	dxzz := math.Hypot(dx, 2*dz)
	dxxy := math.Hypot(dy, 2*dx)
	dyzz := math.Hypot(dy, 2*dz)
	dxxz := math.Hypot(dz, 2*dx)
	dyyz := math.Hypot(dz, 2*dy)
	dxxyz := math.Hypot(2*dx, dyz)
	dxyyz := math.Hypot(2*dy, dxz)
	dxyzz := math.Hypot(2*dz, dxy)
	dxxyyz := math.Hypot(2*dx, dyyz)
	dxxyzz := math.Hypot(2*dx, dyzz)
	dxyyzz := math.Hypot(2*dz, dxyy)
	dx *= 0.9556
	dy *= 0.9556
	dz *= 0.9556
	dxy *= 1.3956 / math.Sqrt2
	dxz *= 1.3956 / math.Sqrt2
	dyz *= 1.3956 / math.Sqrt2
	dxyz *= 1.7257 / math.Sqrt(3)
	dxyy *= 2.1830 / math.Sqrt(5)
	dxzz *= 2.1830 / math.Sqrt(5)
	dxxy *= 2.1830 / math.Sqrt(5)
	dyzz *= 2.1830 / math.Sqrt(5)
	dxxz *= 2.1830 / math.Sqrt(5)
	dyyz *= 2.1830 / math.Sqrt(5)
	dxxyz *= 2.3885 / math.Sqrt(6)
	dxyyz *= 2.3885 / math.Sqrt(6)
	dxyzz *= 2.3885 / math.Sqrt(6)
	dxxyyz *= 2.9540 / math.Sqrt(9)
	dxxyzz *= 2.9540 / math.Sqrt(9)
	dxyyzz *= 2.9540 / math.Sqrt(9)
	for z := -2; z <= 2; z++ {
		for y := -2; y <= 2; y++ {
			for x := -2; x <= 2; x++ {
				ax, ay, az := abs(x), abs(y), abs(z)
				if ax != 1 && ay != 1 && az != 1 {
					// Offsets without a unit step are multiples of shorter
					// ones and add no accuracy to the chamfer.
					continue
				}
				var d float64
				switch {
				case ax == 1 && ay == 2 && az == 2:
					d = dxyyzz
				case ax == 2 && ay == 1 && az == 2:
					d = dxxyzz
				case ax == 2 && ay == 2 && az == 1:
					d = dxxyyz
				case ax == 1 && ay == 1 && az == 2:
					d = dxyzz
				case ax == 1 && ay == 2 && az == 1:
					d = dxyyz
				case ax == 2 && ay == 1 && az == 1:
					d = dxxyz
				case ax == 0 && ay == 1 && az == 2:
					d = dyzz
				case ax == 1 && ay == 0 && az == 2:
					d = dxzz
				case ax == 0 && ay == 2 && az == 1:
					d = dyyz
				case ax == 2 && ay == 0 && az == 1:
					d = dxxz
				case ax == 1 && ay == 2 && az == 0:
					d = dxyy
				case ax == 2 && ay == 1 && az == 0:
					d = dxxy
				case ax == 1 && ay == 1 && az == 1:
					d = dxyz
				case ax == 0 && ay == 1 && az == 1:
					d = dyz
				case ax == 1 && ay == 0 && az == 1:
					d = dxz
				case ax == 1 && ay == 1 && az == 0:
					d = dxy
				case ax == 1:
					d = dx
				case ay == 1:
					d = dy
				default:
					d = dz
				}
				nl.push([]int{x, y, z}, d)
			}
		}
	}
}

// chamferGeneric covers dimensionalities and distances without optimized
// weights: every offset with at least one unit step, at Euclidean distance.
func (nl *NeighborList) chamferGeneric(maxDistance int, ps []float64) error {
	coords := make([]int, nl.dims)
	for d := range coords {
		coords[d] = -maxDistance
	}
	for {
		use := false
		for _, c := range coords {
			if abs(c) == 1 {
				use = true
				break
			}
		}
		if use {
			dist2 := 0.0
			for d, c := range coords {
				t := float64(c) * ps[d]
				dist2 += t * t
			}
			nl.push(coords, math.Sqrt(dist2))
		}
		if !nextCoord(coords, maxDistance) {
			return nil
		}
	}
}

func (nl *NeighborList) constructImage(metric *binimg.Image) error {
	if metric.Dimensionality() > nl.dims {
		return fmt.Errorf("%w: metric image has %d dimensions for a %dD list", binimg.ErrDimensionality, metric.Dimensionality(), nl.dims)
	}
	// Expand trailing singleton dimensions up to the target dimensionality.
	sizes := make([]int, nl.dims)
	center := make([]int, nl.dims)
	for d := 0; d < nl.dims; d++ {
		sizes[d] = 1
		if d < metric.Dimensionality() {
			sizes[d] = metric.Size(d)
		}
		if sizes[d]&1 == 0 {
			return fmt.Errorf("metric image must be odd in size along dimension %d", d)
		}
		center[d] = sizes[d] / 2
	}
	coords := make([]int, nl.dims)
	rel := make([]int, nl.dims)
	for {
		v := metric.Samples()[metric.Offset(coords[:metric.Dimensionality()])]
		if v > 0 {
			atCenter := true
			for d := range coords {
				rel[d] = coords[d] - center[d]
				if rel[d] != 0 {
					atCenter = false
				}
			}
			if atCenter {
				return fmt.Errorf("metric image must have a distance of 0 in the middle")
			}
			nl.push(rel, float64(v))
		}
		done := true
		for d := range coords {
			coords[d]++
			if coords[d] < sizes[d] {
				done = false
				break
			}
			coords[d] = 0
		}
		if done {
			return nil
		}
	}
}

func (nl *NeighborList) push(coords []int, distance float64) {
	nl.neighbors = append(nl.neighbors, Neighbor{
		Coords:   append([]int(nil), coords...),
		Distance: distance,
	})
}

// nextCoord advances an n-dimensional counter over [-lim,lim] per dimension,
// dimension 0 fastest. It returns false after the last combination.
func nextCoord(coords []int, lim int) bool {
	for d := range coords {
		coords[d]++
		if coords[d] <= lim {
			return true
		}
		coords[d] = -lim
	}
	return false
}

// Size returns the number of neighbors.
func (nl *NeighborList) Size() int { return len(nl.neighbors) }

// Dimensionality returns the neighborhood dimensionality.
func (nl *NeighborList) Dimensionality() int { return nl.dims }

// Neighbor returns the i-th neighbor.
func (nl *NeighborList) Neighbor(i int) Neighbor { return nl.neighbors[i] }

// ComputeOffsets returns the flat sample offset of each neighbor for an
// image with the given strides.
func (nl *NeighborList) ComputeOffsets(strides []int) ([]int, error) {
	if len(strides) != nl.dims {
		return nil, fmt.Errorf("%w: %d strides for a %dD neighborhood", binimg.ErrDimensionality, len(strides), nl.dims)
	}
	out := make([]int, len(nl.neighbors))
	for i, nb := range nl.neighbors {
		off := 0
		for d, c := range nb.Coords {
			off += c * strides[d]
		}
		out[i] = off
	}
	return out, nil
}

// Distances returns the distance to each neighbor.
func (nl *NeighborList) Distances() []float64 {
	out := make([]float64, len(nl.neighbors))
	for i, nb := range nl.neighbors {
		out[i] = nb.Distance
	}
	return out
}

// Border returns, per dimension, how far the neighborhood extends from its
// central pixel.
func (nl *NeighborList) Border() []int {
	border := make([]int, nl.dims)
	for _, nb := range nl.neighbors {
		for d, c := range nb.Coords {
			if a := abs(c); a > border[d] {
				border[d] = a
			}
		}
	}
	return border
}

// MaxBorder returns the largest element of Border.
func (nl *NeighborList) MaxBorder() int {
	m := 0
	for _, b := range nl.Border() {
		if b > m {
			m = b
		}
	}
	return m
}

// IsInImage reports whether neighbor i of the pixel at coords falls inside
// an image of the given sizes. Neighbor offsets are assumed small relative
// to the image, so unsigned wraparound catches both sides.
func (nl *NeighborList) IsInImage(i int, coords, sizes []int) bool {
	for d, c := range nl.neighbors[i].Coords {
		if uint(coords[d]+c) >= uint(sizes[d]) {
			return false
		}
	}
	return true
}

// isProcessed reports whether a neighbor at the given offset has already
// been visited when the image is scanned in raster order along procDim.
func isProcessed(coords []int, procDim int) bool {
	for d := len(coords) - 1; d >= 0; d-- {
		if d == procDim {
			continue
		}
		if coords[d] > 0 {
			return false
		}
		if coords[d] < 0 {
			return true
		}
	}
	// The origin is never part of the neighborhood, so this never sees zero.
	return coords[procDim] < 0
}

// SelectBackward returns the neighbors that a raster scan along procDim has
// already processed when it reaches the central pixel.
func (nl *NeighborList) SelectBackward(procDim int) *NeighborList {
	return nl.filter(procDim, true)
}

// SelectForward returns the neighbors that a raster scan along procDim has
// not yet processed when it reaches the central pixel.
func (nl *NeighborList) SelectForward(procDim int) *NeighborList {
	return nl.filter(procDim, false)
}

func (nl *NeighborList) filter(procDim int, processed bool) *NeighborList {
	if procDim >= nl.dims {
		procDim = 0
	}
	out := &NeighborList{dims: nl.dims}
	for _, nb := range nl.neighbors {
		if isProcessed(nb.Coords, procDim) == processed {
			out.neighbors = append(out.neighbors, nb)
		}
	}
	return out
}

// SortByDistance orders the neighbors by increasing distance, keeping the
// raster order among equals.
func (nl *NeighborList) SortByDistance() {
	sort.SliceStable(nl.neighbors, func(i, j int) bool {
		return nl.neighbors[i].Distance < nl.neighbors[j].Distance
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func numNonZero(vs ...int) int {
	n := 0
	for _, v := range vs {
		if v != 0 {
			n++
		}
	}
	return n
}
