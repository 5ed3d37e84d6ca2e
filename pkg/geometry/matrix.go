package geometry

// Matrix is a 2D affine transform:
//
//	⎡ A  C  E ⎤
//	⎢ B  D  F ⎥
//	⎣ 0  0  1 ⎦
type Matrix struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

// Identity is the transform that leaves points unchanged.
var Identity = Matrix{
	A: 1, C: 0, E: 0,
	B: 0, D: 1, F: 0,
}

// Translate moves points by (dx, dy).
func Translate(dx, dy float64) Matrix {
	return Matrix{A: 1, D: 1, E: dx, F: dy}
}

// Scale stretches points about the origin. A negative factor reflects.
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Multiply returns the transform that applies other first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

func (m Matrix) transformX(x, y float64) float64 {
	return m.A*x + m.C*y + m.E
}

func (m Matrix) transformY(x, y float64) float64 {
	return m.B*x + m.D*y + m.F
}

// TransformPoint applies the transform to the planar coordinates of p.
// Z is carried through unchanged.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{X: m.transformX(p.X, p.Y), Y: m.transformY(p.X, p.Y), Z: p.Z}
}

// Determinant is negative for transforms that reverse orientation, such
// as reflections.
func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}
