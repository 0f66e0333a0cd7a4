// Package neighborhood provides a dimensionality-independent description of
// the neighbors of a pixel, as a list of coordinate offsets with their
// distances. The list drives the queue-based morphology engine as well as
// distance propagation.
package neighborhood

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/binmorph/binimg"
)

// ErrPixelSizeUnits indicates a pixel size whose units differ between
// dimensions; distances in such an image have no single unit.
var ErrPixelSizeUnits = errors.New("neighborhood: pixel size has different units along different dimensions")

// MetricKind selects how a neighborhood is generated from a Metric.
type MetricKind int

const (
	// ConnectedKind generates the neighborhood of a given connectivity.
	ConnectedKind MetricKind = iota
	// ChamferKind generates a chamfer neighborhood with optimized weights.
	ChamferKind
	// ImageKind reads neighbor distances from a small kernel image.
	ImageKind
)

// Metric describes the distance between a pixel and its neighbors, and
// implicitly the neighborhood size needed to propagate distances in that
// metric.
type Metric struct {
	kind      MetricKind
	param     int
	image     *binimg.Image
	pixelSize []float64
}

// ConnectedMetric returns a connectivity metric. A connectivity of 1 is the
// city-block metric; 0 requests a connectivity equal to the image
// dimensionality, the chess-board metric.
func ConnectedMetric(connectivity int) Metric {
	return Metric{kind: ConnectedKind, param: connectivity}
}

// ChamferMetric returns a chamfer metric. maxDistance 1 gives the full 3x3
// (3x3x3, ...) neighborhood; 2 adds the knight's-move pixels.
func ChamferMetric(maxDistance int) Metric {
	return Metric{kind: ChamferKind, param: maxDistance}
}

// ImageMetric returns a metric whose neighbor distances are the positive
// samples of the given kernel image. The image must be odd in size along
// every dimension, and the center sample must be zero.
func ImageMetric(im *binimg.Image) (Metric, error) {
	if !im.IsForged() {
		return Metric{}, binimg.ErrNotForged
	}
	if !im.IsScalar() {
		return Metric{}, binimg.ErrNotScalar
	}
	return Metric{kind: ImageKind, image: im}, nil
}

// ParseMetric builds a metric from its string spelling. Valid spellings are
// "connected" (param is the connectivity), "chamfer" (param is the maximum
// neighbor distance), "city", "chess", "4-connected", "8-connected",
// "6-connected", "18-connected", "26-connected" and "28-connected". A pixel
// size, when
// given, scales the neighbor distances; its units must be identical along
// all dimensions.
func ParseMetric(name string, param int, pixelSize []binimg.PhysicalQuantity) (Metric, error) {
	var m Metric
	switch name {
	case "chamfer":
		if param < 1 {
			return Metric{}, fmt.Errorf("%w: chamfer metric needs param >= 1, got %d", binimg.ErrParameterOutOfRange, param)
		}
		m = Metric{kind: ChamferKind, param: param}
	case "connected":
		m = Metric{kind: ConnectedKind, param: param}
	case "city", "4-connected", "6-connected":
		m = Metric{kind: ConnectedKind, param: 1}
	case "chess":
		m = Metric{kind: ConnectedKind, param: 0}
	case "8-connected", "18-connected":
		m = Metric{kind: ConnectedKind, param: 2}
	case "26-connected", "28-connected":
		m = Metric{kind: ConnectedKind, param: 3}
	default:
		return Metric{}, fmt.Errorf("%w: unknown metric %q", binimg.ErrInvalidFlag, name)
	}
	if len(pixelSize) > 0 {
		m.pixelSize = make([]float64, len(pixelSize))
		units := pixelSize[0].Units
		for i, pq := range pixelSize {
			if pq.Units != units {
				return Metric{}, fmt.Errorf("%w: %q vs %q", ErrPixelSizeUnits, units, pq.Units)
			}
			m.pixelSize[i] = pq.Magnitude
		}
	}
	return m, nil
}

// Kind returns the metric kind.
func (m Metric) Kind() MetricKind { return m.kind }

// Param returns the metric parameter.
func (m Metric) Param() int { return m.param }

// Image returns the kernel image of an ImageKind metric.
func (m Metric) Image() *binimg.Image { return m.image }

// PixelSize returns the pixel size magnitudes, or nil when none were given.
func (m Metric) PixelSize() []float64 { return m.pixelSize }
