// Package mirror reflects board geometry for double-sided milling.
//
// Axis X reflects across the horizontal line y = reference, Axis Y
// across the vertical line x = reference. Every function returns a new
// value and leaves its input untouched.
package mirror

import (
	"fmt"
	"strings"

	"pcbcam/pkg/geometry"
)

type Axis int

const (
	None Axis = iota
	X
	Y
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	default:
		return "none"
	}
}

// ParseAxis accepts "x", "y" and "none" (or an empty string), in any case.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return X, nil
	case "y":
		return Y, nil
	case "", "none":
		return None, nil
	}
	return None, fmt.Errorf("unknown mirror axis %q", s)
}

// Matrix returns the reflection as an affine transform.
func Matrix(axis Axis, reference float64) geometry.Matrix {
	switch axis {
	case X:
		return about(geometry.Scale(1, -1), 0, reference)
	case Y:
		return about(geometry.Scale(-1, 1), reference, 0)
	}
	return geometry.Identity
}

// about applies m with (x, y) as its origin.
func about(m geometry.Matrix, x, y float64) geometry.Matrix {
	return geometry.Translate(x, y).Multiply(m).Multiply(geometry.Translate(-x, -y))
}

// Reference is the center of the box on the coordinate the axis reflects.
func Reference(min, max geometry.Point, axis Axis) float64 {
	if axis == Y {
		return (min.X + max.X) / 2
	}
	return (min.Y + max.Y) / 2
}

func Point(p geometry.Point, axis Axis, reference float64) geometry.Point {
	return Matrix(axis, reference).TransformPoint(p)
}

// Geometry reflects every primitive. Arcs also change direction.
func Geometry(g *geometry.Geometry, axis Axis, reference float64) *geometry.Geometry {
	m := Matrix(axis, reference)
	flip := m.Determinant() < 0

	out := &geometry.Geometry{}
	for _, l := range g.Lines {
		out.AddLine(m.TransformPoint(l.Start), m.TransformPoint(l.End))
	}
	for _, a := range g.Arcs {
		clockwise := a.Clockwise
		if flip {
			clockwise = !clockwise
		}
		out.AddArc(m.TransformPoint(a.Start), m.TransformPoint(a.End), m.TransformPoint(a.Center), clockwise)
	}
	for _, c := range g.Circles {
		out.AddCircle(m.TransformPoint(c.Center), c.Radius)
	}
	for _, p := range g.Polygons {
		points := make([]geometry.Point, len(p.Points))
		for i, pt := range p.Points {
			points[i] = m.TransformPoint(pt)
		}
		out.AddPolygon(points)
	}
	return out
}

func DrillData(d *geometry.DrillData, axis Axis, reference float64) *geometry.DrillData {
	m := Matrix(axis, reference)
	out := &geometry.DrillData{}
	for _, h := range d.Holes {
		out.AddHole(m.TransformPoint(h.Position), h.Diameter)
	}
	return out
}

// GeometryAboutCenter reflects g about the center of its own bounds.
func GeometryAboutCenter(g *geometry.Geometry, axis Axis) *geometry.Geometry {
	min, max := g.Bounds()
	return Geometry(g, axis, Reference(min, max, axis))
}

// DrillDataAboutCenter reflects d about the center of its own bounds.
func DrillDataAboutCenter(d *geometry.DrillData, axis Axis) *geometry.DrillData {
	min, max := d.Bounds()
	return DrillData(d, axis, Reference(min, max, axis))
}
