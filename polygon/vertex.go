// Package polygon represents 2D object outlines as vertex lists and computes
// shape measurements on them: area, centroid, covariance, convex hull, Feret
// diameters and curve statistics. Everything in this package is 2D.
package polygon

import "math"

// Vertex is a location in a 2D image.
type Vertex struct {
	X, Y float64
}

// Add returns v + o.
func (v Vertex) Add(o Vertex) Vertex { return Vertex{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vertex) Sub(o Vertex) Vertex { return Vertex{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled isotropically by s.
func (v Vertex) Scale(s float64) Vertex { return Vertex{v.X * s, v.Y * s} }

// ScaleXY returns v scaled anisotropically.
func (v Vertex) ScaleXY(sx, sy float64) Vertex { return Vertex{v.X * sx, v.Y * sy} }

// Round returns v with both coordinates rounded to the nearest integer.
func (v Vertex) Round() Vertex { return Vertex{math.Round(v.X), math.Round(v.Y)} }

// Permute returns v with the x and y coordinates swapped.
func (v Vertex) Permute() Vertex { return Vertex{v.Y, v.X} }

// Norm returns the norm of the vector v.
func Norm(v Vertex) float64 { return math.Hypot(v.X, v.Y) }

// NormSquare returns the square of the norm of the vector v.
func NormSquare(v Vertex) float64 { return v.X*v.X + v.Y*v.Y }

// Distance returns the norm of v2 - v1.
func Distance(v1, v2 Vertex) float64 { return Norm(v2.Sub(v1)) }

// DistanceSquare returns the square norm of v2 - v1.
func DistanceSquare(v1, v2 Vertex) float64 { return NormSquare(v2.Sub(v1)) }

// Angle returns the angle of the vector v2 - v1.
func Angle(v1, v2 Vertex) float64 {
	v := v2.Sub(v1)
	return math.Atan2(v.Y, v.X)
}

// CrossProduct returns the z component of the cross product of v1 and v2.
func CrossProduct(v1, v2 Vertex) float64 { return v1.X*v2.Y - v1.Y*v2.X }

// ParallelogramSignedArea returns the z component of the cross product of
// v2 - v1 and v3 - v1.
func ParallelogramSignedArea(v1, v2, v3 Vertex) float64 {
	return CrossProduct(v2.Sub(v1), v3.Sub(v1))
}

// TriangleArea returns the area of the triangle formed by the three vertices.
func TriangleArea(v1, v2, v3 Vertex) float64 {
	return math.Abs(ParallelogramSignedArea(v1, v2, v3) / 2.0)
}

// TriangleHeight returns the height of the triangle formed by the three
// vertices, with v3 the tip.
func TriangleHeight(v1, v2, v3 Vertex) float64 {
	return math.Abs(ParallelogramSignedArea(v1, v2, v3) / Distance(v1, v2))
}

// BoundingBox is an axis-aligned box given by its top-left and bottom-right
// corners, both included.
type BoundingBox struct {
	TopLeft     Vertex
	BottomRight Vertex
}

// NewBoundingBox returns the bounding box with a and b as two of its corners.
func NewBoundingBox(a, b Vertex) BoundingBox {
	bb := BoundingBox{a, a}
	bb.Expand(b)
	return bb
}

// Expand grows the box to include pt.
func (bb *BoundingBox) Expand(pt Vertex) {
	if pt.X < bb.TopLeft.X {
		bb.TopLeft.X = pt.X
	} else if pt.X > bb.BottomRight.X {
		bb.BottomRight.X = pt.X
	}
	if pt.Y < bb.TopLeft.Y {
		bb.TopLeft.Y = pt.Y
	} else if pt.Y > bb.BottomRight.Y {
		bb.BottomRight.Y = pt.Y
	}
}

// Contains reports whether pt lies inside the box.
func (bb BoundingBox) Contains(pt Vertex) bool {
	return pt.X >= bb.TopLeft.X && pt.X <= bb.BottomRight.X &&
		pt.Y >= bb.TopLeft.Y && pt.Y <= bb.BottomRight.Y
}

// Size returns the width and height of the box.
func (bb BoundingBox) Size() (width, height float64) {
	return bb.BottomRight.X - bb.TopLeft.X, bb.BottomRight.Y - bb.TopLeft.Y
}
