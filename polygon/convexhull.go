package polygon

import (
	"errors"
	"math"
)

var (
	// ErrSelfIntersecting indicates the input polygon crosses itself.
	ErrSelfIntersecting = errors.New("polygon: self-intersecting polygon")
	// ErrAllCollinear indicates all input vertices lie on a single line.
	ErrAllCollinear = errors.New("polygon: all vertices are collinear")
)

// ConvexHull is the convex hull of a polygon. It is itself a polygon, so
// all polygon measures apply.
type ConvexHull struct {
	Polygon
}

// NewConvexHull computes the convex hull of a simple polygon using
// Melkman's algorithm, which runs in linear time because it relies on the
// vertices forming a non-crossing chain.
func NewConvexHull(p Polygon) (ConvexHull, error) {
	if len(p) <= 3 {
		return ConvexHull{p.Clone()}, nil
	}

	// The collinearity tolerance scales with the shortest edge, so chain
	// codes and floating-point outlines behave the same.
	minLength := Distance(p[len(p)-1], p[0])
	for i := 1; i < len(p); i++ {
		minLength = math.Min(minLength, Distance(p[i-1], p[i]))
	}
	eps := 1e-9 * minLength

	v1, v2, v3 := 0, 1, 2
	for math.Abs(ParallelogramSignedArea(p[v1], p[v2], p[v3])) < eps {
		// Discard the middle one of three collinear vertices.
		v2 = v3
		v3++
		if v3 == len(p) {
			return ConvexHull{}, ErrAllCollinear
		}
	}

	// The deque holds the hull with the current extreme vertex duplicated
	// at both ends. Melkman needs at most one push per input vertex on
	// each end, so a fixed buffer with head and tail cursors suffices.
	buf := make([]Vertex, 2*len(p)+1)
	head := len(p) + 1
	tail := len(p)
	pushBack := func(v Vertex) { tail++; buf[tail] = v }
	pushFront := func(v Vertex) { head--; buf[head] = v }

	if ParallelogramSignedArea(p[v1], p[v2], p[v3]) > 0 {
		pushBack(p[v1])
		pushBack(p[v2])
	} else {
		pushBack(p[v2])
		pushBack(p[v1])
	}
	pushBack(p[v3])
	pushFront(p[v3])

outer:
	for {
		v3++
		if v3 == len(p) {
			break
		}
		// Skip vertices inside the current hull.
		for ParallelogramSignedArea(p[v3], buf[head], buf[head+1]) > -eps &&
			ParallelogramSignedArea(buf[tail-1], buf[tail], p[v3]) > -eps {
			v3++
			if v3 == len(p) {
				break outer
			}
		}
		for ParallelogramSignedArea(buf[tail-1], buf[tail], p[v3]) < eps {
			tail--
			if tail-head+1 < 2 {
				return ConvexHull{}, ErrSelfIntersecting
			}
		}
		pushBack(p[v3])
		for ParallelogramSignedArea(p[v3], buf[head], buf[head+1]) < eps {
			head++
			if tail-head+1 < 2 {
				return ConvexHull{}, ErrSelfIntersecting
			}
		}
		pushFront(p[v3])
	}

	// The front and back hold the same vertex.
	head++
	hull := make(Polygon, tail-head+1)
	copy(hull, buf[head:tail+1])
	return ConvexHull{hull}, nil
}

// FeretValues holds the Feret diameters of an object: the longest and
// shortest projection lengths over all rotations, plus the longest
// projection perpendicular to the shortest one. Angles are measured from
// the x axis.
type FeretValues struct {
	MaxDiameter      float64
	MinDiameter      float64
	MaxPerpendicular float64
	MaxAngle         float64
	MinAngle         float64
}

// Feret computes the Feret diameters of the convex hull with the rotating
// calipers algorithm.
func (h ConvexHull) Feret() FeretValues {
	p := h.Polygon
	var feret FeretValues
	switch len(p) {
	case 0:
		return feret
	case 1:
		feret.MaxDiameter = 1
		feret.MinDiameter = 1
		feret.MaxPerpendicular = 1
		return feret
	case 2:
		feret.MaxDiameter = Distance(p[0], p[1])
		feret.MinDiameter = 1
		feret.MaxPerpendicular = feret.MaxDiameter
		return feret
	}

	n := len(p)
	next := func(i int) int { return (i + 1) % n }

	feret.MinDiameter = math.Inf(1)
	pp := 0
	q := 1
	// Move q to the vertex farthest from the first edge.
	for ParallelogramSignedArea(p[pp], p[next(pp)], p[next(q)]) >
		ParallelogramSignedArea(p[pp], p[next(pp)], p[q]) {
		q = next(q)
	}
	for pp != n-1 {
		pp++
		// p and q are antipodal.
		if d := Distance(p[pp], p[q]); d > feret.MaxDiameter {
			feret.MaxDiameter = d
			feret.MaxAngle = Angle(p[pp], p[q])
		}
		for ParallelogramSignedArea(p[pp], p[next(pp)], p[next(q)]) >
			ParallelogramSignedArea(p[pp], p[next(pp)], p[q]) {
			// The edge from q is parallel to or rotates with the caliper;
			// its height against p is a candidate width.
			if d := TriangleHeight(p[q], p[next(q)], p[pp]); d < feret.MinDiameter {
				feret.MinDiameter = d
				feret.MinAngle = Angle(p[q], p[next(q)])
			}
			q = next(q)
			if d := Distance(p[pp], p[q]); d > feret.MaxDiameter {
				feret.MaxDiameter = d
				feret.MaxAngle = Angle(p[pp], p[q])
			}
		}
		if ParallelogramSignedArea(p[pp], p[next(pp)], p[next(q)]) ==
			ParallelogramSignedArea(p[pp], p[next(pp)], p[q]) {
			// Parallel edges, both pairs are antipodal.
			if d := TriangleHeight(p[q], p[next(q)], p[pp]); d < feret.MinDiameter {
				feret.MinDiameter = d
				feret.MinAngle = Angle(p[q], p[next(q)])
			}
			if d := Distance(p[pp], p[next(q)]); d > feret.MaxDiameter {
				feret.MaxDiameter = d
				feret.MaxAngle = Angle(p[pp], p[next(q)])
			}
		}
	}

	// The longest projection perpendicular to the minimum diameter is the
	// spread along the edge that realizes the minimum.
	cos, sin := math.Cos(feret.MinAngle), math.Sin(feret.MinAngle)
	minProj, maxProj := math.Inf(1), math.Inf(-1)
	for _, v := range p {
		proj := v.X*cos + v.Y*sin
		minProj = math.Min(minProj, proj)
		maxProj = math.Max(maxProj, proj)
	}
	feret.MaxPerpendicular = maxProj - minProj

	// Report the direction in which the minimum is measured.
	feret.MinAngle += math.Pi / 2
	return feret
}
