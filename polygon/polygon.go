package polygon

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Polygon is an ordered sequence of vertices interpreted as a closed loop:
// the last vertex connects back to the first. Polygons that outline an
// object in an image run clockwise in the usual image coordinate system
// (y down).
type Polygon []Vertex

// Clone returns a deep copy of the polygon.
func (p Polygon) Clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// BoundingBox returns the bounding box of the polygon.
func (p Polygon) BoundingBox() BoundingBox {
	if len(p) == 0 {
		return BoundingBox{}
	}
	bb := BoundingBox{p[0], p[0]}
	for _, v := range p[1:] {
		bb.Expand(v)
	}
	return bb
}

// IsClockWise determines the orientation of the polygon. It assumes the
// polygon is simple; non-simple polygons do not have a single orientation.
func (p Polygon) IsClockWise() bool {
	if len(p) < 3 {
		return true
	}
	// Find the topmost vertex and compute the cross product of its two
	// incident edges. This avoids computing the signed area of the full
	// polygon.
	minIndex := 0
	for i := 1; i < len(p); i++ {
		if p[i].Y < p[minIndex].Y || (p[i].Y == p[minIndex].Y && p[i].X > p[minIndex].X) {
			minIndex = i
		}
	}
	prev := (minIndex + len(p) - 1) % len(p)
	next := (minIndex + 1) % len(p)
	return ParallelogramSignedArea(p[minIndex], p[next], p[prev]) >= 0
}

// Area computes the signed area of the polygon using the shoelace formula.
// Clockwise polygons have a positive area.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	sum := CrossProduct(p[len(p)-1], p[0])
	for i := 1; i < len(p); i++ {
		sum += CrossProduct(p[i-1], p[i])
	}
	return sum / 2.0
}

// Centroid computes the centroid of the solid shape outlined by the polygon.
func (p Polygon) Centroid() Vertex {
	if len(p) < 3 {
		return Vertex{}
	}
	v := CrossProduct(p[len(p)-1], p[0])
	sum := v
	xsum := (p[len(p)-1].X + p[0].X) * v
	ysum := (p[len(p)-1].Y + p[0].Y) * v
	for i := 1; i < len(p); i++ {
		v = CrossProduct(p[i-1], p[i])
		sum += v
		xsum += (p[i-1].X + p[i].X) * v
		ysum += (p[i-1].Y + p[i].Y) * v
	}
	if sum == 0.0 {
		return Vertex{}
	}
	return Vertex{xsum, ysum}.Scale(1.0 / (3.0 * sum))
}

// CovarianceMatrixVerticesAt returns the covariance matrix of the polygon
// vertices around the point g.
func (p Polygon) CovarianceMatrixVerticesAt(g Vertex) CovarianceMatrix {
	var c CovarianceMatrix
	if len(p) < 3 {
		return c
	}
	for _, v := range p {
		c = c.Add(OuterProduct(v.Sub(g)))
	}
	return c.Scale(1.0 / float64(len(p)))
}

// CovarianceMatrixVertices returns the covariance matrix of the polygon
// vertices around their centroid.
func (p Polygon) CovarianceMatrixVertices() CovarianceMatrix {
	return p.CovarianceMatrixVerticesAt(p.Centroid())
}

// greenIntegralCovariance is the contribution of one edge to the covariance
// integral over the solid polygon.
func greenIntegralCovariance(v0, v1 Vertex) CovarianceMatrix {
	v := CrossProduct(v0, v1)
	return NewCovarianceMatrix(
		v/12.0*(v0.X*(v0.X+v1.X)+v1.X*v1.X),
		v/12.0*(v0.Y*(v0.Y+v1.Y)+v1.Y*v1.Y),
		v/24.0*(v0.X*(2*v0.Y+v1.Y)+v1.X*(v0.Y+2*v1.Y)),
	)
}

// CovarianceMatrixSolidAt returns the covariance matrix of the solid shape
// outlined by the polygon, around the point g.
func (p Polygon) CovarianceMatrixSolidAt(g Vertex) CovarianceMatrix {
	if len(p) < 3 {
		return CovarianceMatrix{}
	}
	c := greenIntegralCovariance(p[len(p)-1].Sub(g), p[0].Sub(g))
	for i := 1; i < len(p); i++ {
		c = c.Add(greenIntegralCovariance(p[i-1].Sub(g), p[i].Sub(g)))
	}
	return c.Scale(1.0 / p.Area())
}

// CovarianceMatrixSolid returns the covariance matrix of the solid shape
// outlined by the polygon, around its centroid.
func (p Polygon) CovarianceMatrixSolid() CovarianceMatrix {
	return p.CovarianceMatrixSolidAt(p.Centroid())
}

// Length computes the perimeter of the polygon, including the closing edge.
// For a polygon outlining pixels this overestimates the object's perimeter.
func (p Polygon) Length() float64 {
	if len(p) < 2 {
		return 0
	}
	sum := Distance(p[len(p)-1], p[0])
	for i := 1; i < len(p); i++ {
		sum += Distance(p[i-1], p[i])
	}
	return sum
}

// Perimeter is an alias for Length.
func (p Polygon) Perimeter() float64 { return p.Length() }

// RadiusValues holds statistics on the radii of a polygon, the distances
// between a center point and each vertex.
type RadiusValues struct {
	Mean              float64
	StandardDeviation float64
	Variance          float64
	Minimum           float64
	Maximum           float64
}

// Circularity is the coefficient of variation of the radii.
func (r RadiusValues) Circularity() float64 {
	if r.Mean == 0.0 {
		return 0.0
	}
	return r.StandardDeviation / r.Mean
}

// RadiusStatisticsAt returns statistics on the distances between g and each
// of the vertices.
func (p Polygon) RadiusStatisticsAt(g Vertex) RadiusValues {
	if len(p) < 3 {
		return RadiusValues{}
	}
	radii := make([]float64, len(p))
	minR, maxR := math.Inf(1), math.Inf(-1)
	for i, v := range p {
		r := Distance(g, v)
		radii[i] = r
		minR = math.Min(minR, r)
		maxR = math.Max(maxR, r)
	}
	mean, variance := stat.MeanVariance(radii, nil)
	return RadiusValues{
		Mean:              mean,
		StandardDeviation: math.Sqrt(variance),
		Variance:          variance,
		Minimum:           minR,
		Maximum:           maxR,
	}
}

// RadiusStatistics returns statistics on the distances between the centroid
// and each of the vertices.
func (p Polygon) RadiusStatistics() RadiusValues {
	return p.RadiusStatisticsAt(p.Centroid())
}

// EllipseVarianceAt compares the polygon to the ellipse described by the
// given centroid and covariance matrix, returning the coefficient of
// variation of the distance of the vertices to the ellipse.
func (p Polygon) EllipseVarianceAt(g Vertex, c CovarianceMatrix) float64 {
	u := c.Inv()
	dists := make([]float64, len(p))
	for i, v := range p {
		dists[i] = math.Sqrt(u.Project(v.Sub(g)))
	}
	mean, stddev := stat.MeanStdDev(dists, nil)
	if mean == 0.0 {
		return 0.0
	}
	return stddev / mean
}

// EllipseVariance compares the polygon to the ellipse with the same
// covariance matrix as its vertices.
func (p Polygon) EllipseVariance() float64 {
	g := p.Centroid()
	return p.EllipseVarianceAt(g, p.CovarianceMatrixVerticesAt(g))
}

// FractalDimension computes the fractal dimension of the polygon, the slope
// of the polygon length as a function of smoothing scale in a log-log plot.
// The polygon should be densely sampled, use Augment if necessary. The
// length parameter determines the range of scales; pass zero to have it
// computed.
func (p Polygon) FractalDimension(length float64) float64 {
	if length <= 0 {
		length = p.Length()
	}
	sigmaMax := length / 16
	if sigmaMax <= 2 {
		// Guarantees at least three scales and a positive log2(sigmaMax).
		return 1.0
	}
	nScales := int(math.Ceil(math.Log2(sigmaMax))) + 1

	scales := make([]float64, nScales)
	perimeters := make([]float64, nScales)
	q := p.Clone()
	sigma := 1.0
	prevSigma := 0.0
	for i := 0; i < nScales; i++ {
		q = q.Smooth(math.Sqrt(sigma*sigma - prevSigma*prevSigma))
		scales[i] = math.Log(sigma)
		perimeters[i] = math.Log(q.Length())
		prevSigma = sigma
		sigma *= 2.0
	}

	_, slope := stat.LinearRegression(scales, perimeters, nil, false)
	if math.IsNaN(slope) {
		return 1.0
	}
	d := 1.0 - slope
	return math.Min(math.Max(d, 1.0), 2.0)
}

func angleDifference(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff
}

// BendingEnergy computes the integral along the contour of the square of
// the curvature. Curvature is approximated at each vertex by the difference
// in angle of the two incident edges divided by half their total length, so
// the polygon should be densely and evenly sampled; see Augment and Smooth.
func (p Polygon) BendingEnergy() float64 {
	be := 0.0
	if len(p) <= 2 {
		return be
	}
	prev := Angle(p[0], p[1])
	i := 1
	for ; i < len(p)-1; i++ {
		a := Angle(p[i], p[i+1])
		diff := angleDifference(a, prev)
		be += diff * diff * 2.0 / Distance(p[i-1], p[i+1])
		prev = a
	}
	// The two vertices whose neighborhoods straddle the closing edge.
	a := Angle(p[i], p[0])
	diff := angleDifference(a, prev)
	be += diff * diff * 2.0 / Distance(p[i-1], p[0])
	prev = a
	a = Angle(p[0], p[1])
	diff = angleDifference(a, prev)
	be += diff * diff * 2.0 / Distance(p[i], p[1])
	return be
}

// FitCircle fits a circle to the polygon vertices in the least-squares
// sense, by linearizing the circle equation to a*x + b*y + c = x^2 + y^2.
// The fit always succeeds but is only meaningful for polygons that are
// close to a circle.
func (p Polygon) FitCircle() CircleParameters {
	n := len(p)
	if n < 3 {
		return CircleParameters{}
	}
	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i, v := range p {
		a.SetRow(i, []float64{v.X, v.Y, 1.0})
		b.SetVec(i, v.X*v.X+v.Y*v.Y)
	}
	var qr mat.QR
	qr.Factorize(a)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return CircleParameters{}
	}
	cx := sol.AtVec(0) / 2
	cy := sol.AtVec(1) / 2
	r := math.Sqrt(sol.AtVec(2) + cx*cx + cy*cy)
	return CircleParameters{Vertex{cx, cy}, 2 * r}
}

// FitEllipse fits the polygon vertices to the general ellipse equation
// a*x^2 + b*xy + c*y^2 + d*x + e*y = 1 in the least-squares sense. When the
// fitted conic is not an ellipse the zero value is returned. Use
// CovarianceMatrix.Ellipse for a fit that is always meaningful.
func (p Polygon) FitEllipse() EllipseParameters {
	n := len(p)
	if n < 5 {
		return EllipseParameters{}
	}
	m := mat.NewDense(n, 5, nil)
	rhs := mat.NewVecDense(n, nil)
	for i, v := range p {
		m.SetRow(i, []float64{v.X * v.X, v.X * v.Y, v.Y * v.Y, v.X, v.Y})
		rhs.SetVec(i, 1.0)
	}
	var qr mat.QR
	qr.Factorize(m)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, rhs); err != nil {
		return EllipseParameters{}
	}
	a := sol.AtVec(0)
	b := sol.AtVec(1)
	c := sol.AtVec(2)
	d := sol.AtVec(3)
	e := sol.AtVec(4)
	denom := b*b - 4*a*c
	if denom >= 0 {
		// The fitted conic is not an ellipse.
		return EllipseParameters{}
	}
	pt1 := 2 * (a*e*e + c*d*d - b*d*e - denom)
	pt2 := a + c
	pt3 := math.Sqrt((a-c)*(a-c) + b*b)
	majorAxis := -math.Sqrt(pt1*(pt2+pt3)) / denom
	minorAxis := -math.Sqrt(pt1*(pt2-pt3)) / denom
	return EllipseParameters{
		Center:       Vertex{(2*c*d - b*e) / denom, (2*a*e - b*d) / denom},
		MajorAxis:    2 * majorAxis,
		MinorAxis:    2 * minorAxis,
		Orientation:  math.Atan2(-b, c-a) / 2,
		Eccentricity: math.Sqrt(1.0 - minorAxis*minorAxis/(majorAxis*majorAxis)),
	}
}

// mostDistant returns the index of the vertex farthest from the one at
// index.
func mostDistant(p Polygon, index int) int {
	maxDistSq := 0.0
	maxIndex := index
	for i := range p {
		if d := DistanceSquare(p[index], p[i]); d > maxDistSq {
			maxDistSq = d
			maxIndex = i
		}
	}
	return maxIndex
}

func simplifySection(p Polygon, out Polygon, start, end int, toleranceSquare float64) Polygon {
	n := len(p)
	if end == start {
		return out
	}
	// Find the vertex farthest from the straight line between start and
	// end. Only the cross product matters for the comparison; the actual
	// distance is computed once, for the maximum.
	maxDistSq := 0.0
	maxIndex := 0
	baseVector := p[end].Sub(p[start])
	for i := (start + 1) % n; i != end; i = (i + 1) % n {
		if d2 := math.Abs(CrossProduct(baseVector, p[i].Sub(p[start]))); d2 > maxDistSq {
			maxDistSq = d2
			maxIndex = i
		}
	}
	maxDistSq = maxDistSq * maxDistSq / NormSquare(baseVector)
	if maxDistSq > toleranceSquare {
		out = simplifySection(p, out, start, maxIndex, toleranceSquare)
		out = append(out, p[maxIndex])
		out = simplifySection(p, out, maxIndex, end, toleranceSquare)
	}
	return out
}

// Simplify reduces the polygon using the Douglas-Peucker algorithm,
// dropping every vertex that lies within tolerance of the straight segment
// between its kept neighbors. For a polygon derived from a chain code, a
// tolerance of 0.5 yields a maximum-length digital straight segment
// representation of the object.
func (p Polygon) Simplify(tolerance float64) Polygon {
	if tolerance <= 0 || len(p) <= 4 {
		return p
	}
	// Split at two extreme points, which are always kept, and process each
	// half independently.
	pt1 := mostDistant(p, 0)
	pt2 := mostDistant(p, pt1)
	toleranceSquare := tolerance * tolerance
	out := Polygon{p[pt1]}
	out = simplifySection(p, out, pt1, pt2, toleranceSquare)
	out = append(out, p[pt2])
	out = simplifySection(p, out, pt2, pt1, toleranceSquare)
	return out
}

func insertPoints(out Polygon, start, end Vertex, distance float64) Polygon {
	line := end.Sub(start)
	length := Norm(line)
	n := math.Ceil(length / distance)
	inc := line.Scale(1.0 / n)
	for i := 0; i < int(n); i++ {
		out = append(out, start)
		start = start.Add(inc)
	}
	return out
}

// Augment adds vertices along each edge of the polygon such that the
// distance between two consecutive vertices never exceeds distance.
func (p Polygon) Augment(distance float64) Polygon {
	if len(p) == 0 {
		return p
	}
	out := make(Polygon, 0, len(p))
	for i := 1; i < len(p); i++ {
		out = insertPoints(out, p[i-1], p[i], distance)
	}
	return insertPoints(out, p[len(p)-1], p[0], distance)
}

// Smooth locally averages the vertex locations with a Gaussian of the given
// sigma, measured in number of vertices along the contour rather than in
// physical distance. The contour is periodic, so the filter wraps around.
// Vertices should be approximately equally spaced; Augment takes care of
// that.
func (p Polygon) Smooth(sigma float64) Polygon {
	n := len(p)
	if n == 0 || sigma <= 0 {
		return p
	}
	half := int(math.Ceil(3 * sigma))
	weights := make([]float64, 2*half+1)
	sum := 0.0
	for i := -half; i <= half; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		weights[i+half] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	out := make(Polygon, n)
	for i := range p {
		var acc Vertex
		for j := -half; j <= half; j++ {
			k := ((i+j)%n + n) % n
			acc = acc.Add(p[k].Scale(weights[j+half]))
		}
		out[i] = acc
	}
	return out
}

// Reverse flips the orientation of the polygon in place, turning a
// clockwise polygon into a counter-clockwise one and vice versa.
func (p Polygon) Reverse() {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

// Rotate rotates the polygon in place around the origin, positive angles
// rotating clockwise in the image coordinate system.
func (p Polygon) Rotate(angle float64) {
	cos, sin := math.Cos(angle), math.Sin(angle)
	for i, v := range p {
		p[i] = Vertex{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
	}
}

// Scale scales the polygon isotropically, in place.
func (p Polygon) Scale(scale float64) {
	for i := range p {
		p[i] = p[i].Scale(scale)
	}
}

// ScaleXY scales the polygon anisotropically, in place.
func (p Polygon) ScaleXY(scaleX, scaleY float64) {
	for i := range p {
		p[i] = p[i].ScaleXY(scaleX, scaleY)
	}
}

// Translate shifts the polygon in place.
func (p Polygon) Translate(shift Vertex) {
	for i := range p {
		p[i] = p[i].Add(shift)
	}
}

// Contains tests whether the point lies inside the polygon, using even-odd
// ray casting along the negative x axis. Points on a vertex or edge, within
// numerical precision, count as contained.
func (p Polygon) Contains(point Vertex) bool {
	if len(p) == 0 {
		return false
	}
	// Each edge can cross the ray only once. An edge whose bottom vertex
	// lies on the ray does not count as a crossing, its top vertex does.
	count := 0
	prev := p[len(p)-1]
	for _, cur := range p {
		if cur.X == point.X && cur.Y == point.Y {
			return true
		}
		if (prev.Y <= point.Y && cur.Y > point.Y) || (cur.Y <= point.Y && prev.Y > point.Y) {
			switch {
			case cur.X <= point.X && prev.X <= point.X:
				count++
			case cur.X > point.X && prev.X > point.X:
				// The edge lies entirely to the right of the ray.
			default:
				edge := cur.Sub(prev)
				edge = prev.Add(edge.Scale((point.Y - prev.Y) / edge.Y))
				if edge.X == point.X {
					return true
				}
				if edge.X < point.X {
					count++
				}
			}
		}
		prev = cur
	}
	return count&1 != 0
}
