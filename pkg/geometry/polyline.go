package geometry

// Polyline is an open chain of points. A closed contour repeats its
// first point at the end.
type Polyline []Point

// Simplify removes points that lie within epsilon of the chord between
// their neighbors, using the Douglas-Peucker algorithm. The first and
// last points are always kept.
func (points Polyline) Simplify(epsilon float64) Polyline {
	if len(points) < 2 {
		return points
	}

	firstPoint, lastPoint := points[0], points[len(points)-1]
	if len(points) == 2 {
		return Polyline{firstPoint, lastPoint}
	}
	chord := LineSegment{A: firstPoint, B: lastPoint}

	// find the point with the max distance from the chord
	dmax := 0.0
	index := 0
	for i := 1; i < len(points)-1; i++ {
		d := chord.Distance(points[i])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if index == 0 || dmax <= epsilon {
		return Polyline{firstPoint, lastPoint}
	}

	// note: both halves share points[index], and each has at least 2 points
	left := Polyline(points[:index+1]).Simplify(epsilon)
	right := Polyline(points[index:]).Simplify(epsilon)

	result := make(Polyline, 0, len(left)+len(right)-1)
	result = append(result, left[:len(left)-1]...)
	return append(result, right...)
}
