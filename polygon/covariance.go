package polygon

import "math"

// EllipseParameters describes an ellipse by its center, axis lengths,
// orientation of the major axis in radian, and eccentricity.
type EllipseParameters struct {
	Center       Vertex
	MajorAxis    float64
	MinorAxis    float64
	Orientation  float64
	Eccentricity float64
}

// CircleParameters describes a circle, returned by Polygon.FitCircle.
type CircleParameters struct {
	Center   Vertex
	Diameter float64
}

// CovarianceMatrix is a real, symmetric, positive semidefinite 2x2 matrix
// for computation with 2D vertices. The two off-diagonal elements are equal
// by definition, so only three values are stored.
type CovarianceMatrix struct {
	xx, xy, yy float64
}

// OuterProduct returns the covariance matrix formed by the outer product of
// v with itself.
func OuterProduct(v Vertex) CovarianceMatrix {
	return CovarianceMatrix{v.X * v.X, v.X * v.Y, v.Y * v.Y}
}

// NewCovarianceMatrix builds a covariance matrix out of its three elements.
func NewCovarianceMatrix(xx, yy, xy float64) CovarianceMatrix {
	return CovarianceMatrix{xx, xy, yy}
}

// XX returns the top-left matrix element.
func (c CovarianceMatrix) XX() float64 { return c.xx }

// XY returns the off-diagonal matrix element.
func (c CovarianceMatrix) XY() float64 { return c.xy }

// YY returns the bottom-right matrix element.
func (c CovarianceMatrix) YY() float64 { return c.yy }

// Det returns the determinant of the matrix.
func (c CovarianceMatrix) Det() float64 { return c.xx*c.yy - c.xy*c.xy }

// Inv returns the inverse of the matrix, or the zero matrix when the
// determinant is zero.
func (c CovarianceMatrix) Inv() CovarianceMatrix {
	d := c.Det()
	if d == 0.0 {
		return CovarianceMatrix{}
	}
	return CovarianceMatrix{c.yy / d, -c.xy / d, c.xx / d}
}

// Add returns the element-wise sum of the two matrices.
func (c CovarianceMatrix) Add(o CovarianceMatrix) CovarianceMatrix {
	return CovarianceMatrix{c.xx + o.xx, c.xy + o.xy, c.yy + o.yy}
}

// Scale returns the matrix scaled by d.
func (c CovarianceMatrix) Scale(d float64) CovarianceMatrix {
	return CovarianceMatrix{c.xx * d, c.xy * d, c.yy * d}
}

// Project computes v' * C * v, with v' the transpose of v. This is a
// positive scalar for non-zero v because the matrix is positive
// semidefinite.
func (c CovarianceMatrix) Project(v Vertex) float64 {
	return v.X*v.X*c.xx + 2*v.X*v.Y*c.xy + v.Y*v.Y*c.yy
}

// Eigenvalues holds the two eigenvalues of a covariance matrix.
type Eigenvalues struct {
	Largest  float64
	Smallest float64
}

// Eccentricity computes the eccentricity of the ellipse with these
// eigenvalues. The largest eigenvalue cannot be negative; when it is zero
// the smallest is zero too.
func (e Eigenvalues) Eccentricity() float64 {
	if e.Largest <= 0.0 {
		return 0.0
	}
	return math.Sqrt(1.0 - e.Smallest/e.Largest)
}

// Eig computes the eigenvalues of the matrix.
func (c CovarianceMatrix) Eig() Eigenvalues {
	mmu2 := (c.xx + c.yy) / 2.0
	dmu2 := (c.xx - c.yy) / 2.0
	sqroot := math.Sqrt(c.xy*c.xy + dmu2*dmu2)
	return Eigenvalues{mmu2 + sqroot, mmu2 - sqroot}
}

// Ellipse computes the parameters of the ellipse with this covariance
// matrix. With solid false the matrix is taken to describe an ellipse shell,
// as produced by Polygon.CovarianceMatrixVertices; with solid true a filled
// ellipse, as produced by Polygon.CovarianceMatrixSolid. The center is not
// known here and is returned as the origin.
func (c CovarianceMatrix) Ellipse(solid bool) EllipseParameters {
	lambda := c.Eig()
	scale := 8.0
	if solid {
		scale = 16.0
	}
	return EllipseParameters{
		Center:    Vertex{0.0, 0.0},
		MajorAxis: math.Sqrt(scale * lambda.Largest),
		MinorAxis: math.Sqrt(scale * lambda.Smallest),
		// The eigenvector is {xy, largest - xx}, its angle always lies in
		// [0, pi).
		Orientation:  math.Atan2(lambda.Largest-c.xx, c.xy),
		Eccentricity: lambda.Eccentricity(),
	}
}
