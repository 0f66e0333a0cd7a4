package morphology

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/binmorph/binimg"
	"github.com/MeKo-Tech/binmorph/neighborhood"
)

// Count modes.
const (
	ModeForeground = "foreground"
	ModeBackground = "background"
	ModeAll        = "all"
)

type countScan struct {
	in, out   *binimg.Image
	nl        *neighborhood.NeighborList
	offsets   []int
	all       bool     // tally every pixel, not just those of the polarity
	polarity  bool     // count foreground (true) or background (false) pixels
	outside   bool     // pixels outside the image count toward the tally
	majority  bool     // write count > threshold instead of the count
	threshold uint8
}

// value reports whether the sample at off matches the polarity being
// counted.
func (s *countScan) value(data []uint8, off int) bool {
	return (data[off]&dataBit != 0) == s.polarity
}

// tally counts the pixel at off plus its matching neighbors, consulting the
// bounds checker. Used for pixels whose neighborhood may stick out of the
// image.
func (s *countScan) tally(data []uint8, off int, coords []int) uint8 {
	count := uint8(0)
	if s.value(data, off) {
		count = 1
	}
	for i, noff := range s.offsets {
		if s.nl.IsInImage(i, coords, s.in.Sizes()) {
			if s.value(data, off+noff) {
				count++
			}
		} else if s.outside {
			count++
		}
	}
	return count
}

// tallyInterior is tally without bounds checks, for pixels whose whole
// neighborhood is inside the image.
func (s *countScan) tallyInterior(data []uint8, off int) uint8 {
	count := uint8(0)
	if s.value(data, off) {
		count = 1
	}
	for _, noff := range s.offsets {
		if s.value(data, off+noff) {
			count++
		}
	}
	return count
}

func (s *countScan) store(out []uint8, off int, count uint8) {
	if s.majority {
		if count > s.threshold {
			out[off] = 1
		} else {
			out[off] = 0
		}
	} else {
		out[off] = count
	}
}

// scanLine processes one line along dimension 0, starting at the given
// coordinates. Lines abutting the image edge bounds-check every pixel;
// interior lines only their two end pixels.
func (s *countScan) scanLine(lineCoords []int) {
	in := s.in.Samples()
	out := s.out.Samples()
	sizes := s.in.Sizes()
	length := sizes[0]
	inStride := s.in.Stride(0)
	outStride := s.out.Stride(0)

	coords := make([]int, len(lineCoords))
	copy(coords, lineCoords)
	inOff := s.in.Offset(coords)
	outOff := s.out.Offset(coords)

	onEdge := false
	for d := 1; d < len(sizes); d++ {
		if coords[d] == 0 || coords[d] == sizes[d]-1 {
			onEdge = true
			break
		}
	}

	if onEdge || length < 3 {
		for i := 0; i < length; i++ {
			coords[0] = i
			if s.all || s.value(in, inOff) {
				s.store(out, outOff, s.tally(in, inOff, coords))
			} else {
				out[outOff] = 0
			}
			inOff += inStride
			outOff += outStride
		}
		return
	}

	// First and last pixel of an interior line still reach outside along
	// dimension 0.
	coords[0] = 0
	if s.all || s.value(in, inOff) {
		s.store(out, outOff, s.tally(in, inOff, coords))
	} else {
		out[outOff] = 0
	}
	inOff += inStride
	outOff += outStride
	for i := 1; i < length-1; i++ {
		if s.all || s.value(in, inOff) {
			s.store(out, outOff, s.tallyInterior(in, inOff))
		} else {
			out[outOff] = 0
		}
		inOff += inStride
		outOff += outStride
	}
	coords[0] = length - 1
	if s.all || s.value(in, inOff) {
		s.store(out, outOff, s.tally(in, inOff, coords))
	} else {
		out[outOff] = 0
	}
}

// run fans the lines of the image out over a small worker pool. Lines write
// to disjoint ranges of the output, so no synchronization is needed beyond
// the wait.
func (s *countScan) run() {
	sizes := s.in.Sizes()
	nLines := 1
	for d := 1; d < len(sizes); d++ {
		nLines *= sizes[d]
	}
	workers := runtime.NumCPU()
	if workers > nLines {
		workers = nLines
	}
	if workers <= 1 {
		coords := make([]int, len(sizes))
		for line := 0; line < nLines; line++ {
			lineToCoords(line, sizes, coords)
			s.scanLine(coords)
		}
		return
	}

	jobs := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			coords := make([]int, len(sizes))
			for line := range jobs {
				lineToCoords(line, sizes, coords)
				s.scanLine(coords)
			}
		}()
	}
	for line := 0; line < nLines; line++ {
		jobs <- line
	}
	close(jobs)
	wg.Wait()
}

// lineToCoords expands a flat line index into the start coordinates of that
// line (dimension 0 is the scan direction and stays 0).
func lineToCoords(line int, sizes, coords []int) {
	coords[0] = 0
	for d := 1; d < len(sizes); d++ {
		coords[d] = line % sizes[d]
		line /= sizes[d]
	}
}

func newCountScan(in, out *binimg.Image, connectivity int, all, polarity bool, edgeCondition string, majority bool) (*countScan, error) {
	if err := binimg.CheckBinary(in); err != nil {
		return nil, err
	}
	// The scan reads the input while filling the output, so an aliased
	// output needs a snapshot of the input.
	if in == out || out.SharesData(in) {
		clone, err := binimg.New(binimg.Binary, in.Sizes()...)
		if err != nil {
			return nil, err
		}
		if err := clone.CopyFrom(in); err != nil {
			return nil, err
		}
		in = clone
	}
	if connectivity < 0 || connectivity > in.Dimensionality() {
		return nil, fmt.Errorf("%w: connectivity %d for a %dD image", binimg.ErrParameterOutOfRange, connectivity, in.Dimensionality())
	}
	outsideIsObject, err := parseEdgeCondition(edgeCondition)
	if err != nil {
		return nil, err
	}
	nl, err := neighborhood.New(neighborhood.ConnectedMetric(connectivity), in.Dimensionality())
	if err != nil {
		return nil, err
	}
	offsets, err := nl.ComputeOffsets(in.Strides())
	if err != nil {
		return nil, err
	}
	return &countScan{
		in:        in,
		out:       out,
		nl:        nl,
		offsets:   offsets,
		all:       all,
		polarity:  polarity,
		outside:   outsideIsObject == polarity,
		majority:  majority,
		threshold: uint8(nl.Size() / 2),
	}, nil
}

// CountNeighbors writes, for every pixel that matches the mode's polarity,
// one plus the number of neighbors of that polarity under the given
// connectivity; other pixels get zero. Mode "foreground" counts foreground
// around foreground pixels, "background" the reverse, and "all" tallies
// foreground around every pixel. Conceptual pixels outside the image take
// the value of the edge condition. The output is an 8-bit image.
func CountNeighbors(in, out *binimg.Image, connectivity int, mode, edgeCondition string) error {
	var all, polarity bool
	switch mode {
	case ModeForeground:
		all, polarity = false, true
	case ModeBackground:
		all, polarity = false, false
	case ModeAll:
		all, polarity = true, true
	default:
		return fmt.Errorf("%w: count mode %q", binimg.ErrInvalidFlag, mode)
	}
	scan, err := newCountScan(in, out, connectivity, all, polarity, edgeCondition, false)
	if err != nil {
		return err
	}
	if err := out.ReForge(in.Sizes(), binimg.Uint8); err != nil {
		return err
	}
	scan.run()
	return nil
}

// MajorityVote sets each output pixel to the value of the majority of the
// pixel's neighborhood, itself included.
func MajorityVote(in, out *binimg.Image, connectivity int, edgeCondition string) error {
	scan, err := newCountScan(in, out, connectivity, true, true, edgeCondition, true)
	if err != nil {
		return err
	}
	if err := out.ReForge(in.Sizes(), binimg.Binary); err != nil {
		return err
	}
	scan.run()
	return nil
}

// compareNeighborCounts runs a foreground neighbor count and keeps the
// pixels whose count satisfies keep.
func compareNeighborCounts(in, out *binimg.Image, connectivity int, edgeCondition string, keep func(uint8) bool) error {
	counts, err := binimg.New(binimg.Uint8, in.Sizes()...)
	if err != nil {
		return err
	}
	if err := CountNeighbors(in, counts, connectivity, ModeForeground, edgeCondition); err != nil {
		return err
	}
	if err := out.ReForge(in.Sizes(), binimg.Binary); err != nil {
		return err
	}
	src := counts.Samples()
	dst := out.Samples()
	for i := range dst {
		if keep(src[i]) {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
	return nil
}

// GetSinglePixels returns the foreground pixels with no foreground neighbor.
func GetSinglePixels(in, out *binimg.Image, connectivity int, edgeCondition string) error {
	return compareNeighborCounts(in, out, connectivity, edgeCondition, func(c uint8) bool { return c == 1 })
}

// GetEndPixels returns the foreground pixels with exactly one foreground
// neighbor.
func GetEndPixels(in, out *binimg.Image, connectivity int, edgeCondition string) error {
	return compareNeighborCounts(in, out, connectivity, edgeCondition, func(c uint8) bool { return c == 2 })
}

// GetLinkPixels returns the foreground pixels with exactly two foreground
// neighbors, the interior pixels of a skeleton branch.
func GetLinkPixels(in, out *binimg.Image, connectivity int, edgeCondition string) error {
	return compareNeighborCounts(in, out, connectivity, edgeCondition, func(c uint8) bool { return c == 3 })
}

// GetBranchPixels returns the foreground pixels with more than two
// foreground neighbors.
func GetBranchPixels(in, out *binimg.Image, connectivity int, edgeCondition string) error {
	return compareNeighborCounts(in, out, connectivity, edgeCondition, func(c uint8) bool { return c > 3 })
}
