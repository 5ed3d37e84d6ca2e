// Package geometry holds the normalized, millimeter-denominated model
// produced by the Gerber and Excellon parsers.
package geometry

import (
	"fmt"
	"math"
)

// Point is a position in millimeters. Z is zero for board geometry.
type Point struct {
	X float64
	Y float64
	Z float64
}

func (p Point) String() string {
	if p.Z == 0 {
		return fmt.Sprintf("Point(%.3f, %.3f)", p.X, p.Y)
	}
	return fmt.Sprintf("Point(%.3f, %.3f, %.3f)", p.X, p.Y, p.Z)
}

type Line struct {
	Start Point
	End   Point
}

type Arc struct {
	Start     Point
	End       Point
	Center    Point
	Clockwise bool
}

type Circle struct {
	Center Point
	Radius float64
}

// Polygon is a closed outline; the last point connects back to the first.
type Polygon struct {
	Points []Point
}

// Geometry is the container for everything read from a Gerber layer.
// Insertion order is kept and is the machining order when no optimizer
// pass is run.
type Geometry struct {
	Lines    []Line
	Arcs     []Arc
	Circles  []Circle
	Polygons []Polygon
}

func (g *Geometry) AddLine(start, end Point) {
	g.Lines = append(g.Lines, Line{Start: start, End: end})
}

func (g *Geometry) AddArc(start, end, center Point, clockwise bool) {
	g.Arcs = append(g.Arcs, Arc{Start: start, End: end, Center: center, Clockwise: clockwise})
}

func (g *Geometry) AddCircle(center Point, radius float64) {
	g.Circles = append(g.Circles, Circle{Center: center, Radius: radius})
}

func (g *Geometry) AddPolygon(points []Point) {
	g.Polygons = append(g.Polygons, Polygon{Points: points})
}

// Empty reports whether the geometry holds no primitives.
func (g *Geometry) Empty() bool {
	return len(g.Lines) == 0 && len(g.Arcs) == 0 && len(g.Circles) == 0 && len(g.Polygons) == 0
}

// Bounds returns the axis-aligned box enclosing every primitive. Circles
// contribute their full extent and arcs their start, end and center.
// An empty geometry has zero bounds.
func (g *Geometry) Bounds() (min, max Point) {
	var b bounds
	for _, l := range g.Lines {
		b.add(l.Start.X, l.Start.Y)
		b.add(l.End.X, l.End.Y)
	}
	for _, a := range g.Arcs {
		b.add(a.Start.X, a.Start.Y)
		b.add(a.End.X, a.End.Y)
		b.add(a.Center.X, a.Center.Y)
	}
	for _, c := range g.Circles {
		b.add(c.Center.X-c.Radius, c.Center.Y-c.Radius)
		b.add(c.Center.X+c.Radius, c.Center.Y+c.Radius)
	}
	for _, p := range g.Polygons {
		for _, pt := range p.Points {
			b.add(pt.X, pt.Y)
		}
	}
	return b.result()
}

func (g *Geometry) String() string {
	return fmt.Sprintf("Geometry(lines=%d, arcs=%d, circles=%d, polygons=%d)",
		len(g.Lines), len(g.Arcs), len(g.Circles), len(g.Polygons))
}

type DrillHole struct {
	Position Point
	Diameter float64
}

// DrillData is the ordered list of holes read from an Excellon file.
type DrillData struct {
	Holes []DrillHole
}

func (d *DrillData) AddHole(position Point, diameter float64) {
	d.Holes = append(d.Holes, DrillHole{Position: position, Diameter: diameter})
}

// Bounds returns the box enclosing every hole position, or zero bounds
// when there are no holes.
func (d *DrillData) Bounds() (min, max Point) {
	var b bounds
	for _, h := range d.Holes {
		b.add(h.Position.X, h.Position.Y)
	}
	return b.result()
}

func (d *DrillData) String() string {
	return fmt.Sprintf("DrillData(%d holes)", len(d.Holes))
}

// Union returns the box enclosing both boxes. Zero-sized boxes at the
// origin are what Bounds returns for empty inputs, so callers should
// only pass boxes of non-empty inputs.
func Union(minA, maxA, minB, maxB Point) (min, max Point) {
	return Point{X: math.Min(minA.X, minB.X), Y: math.Min(minA.Y, minB.Y)},
		Point{X: math.Max(maxA.X, maxB.X), Y: math.Max(maxA.Y, maxB.Y)}
}

type bounds struct {
	minX, minY, maxX, maxY float64
	seen                   bool
}

func (b *bounds) add(x, y float64) {
	if !b.seen {
		b.minX, b.maxX = x, x
		b.minY, b.maxY = y, y
		b.seen = true
		return
	}
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

func (b *bounds) result() (Point, Point) {
	if !b.seen {
		return Point{}, Point{}
	}
	return Point{X: b.minX, Y: b.minY}, Point{X: b.maxX, Y: b.maxY}
}
