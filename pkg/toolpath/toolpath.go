// Package toolpath turns parsed board geometry into cutter motion:
// isolation passes around copper traces and pads, the board outline and
// the drill hit list.
//
// Isolation is an approximation. Each trace gets one pass on either side
// at half the tool diameter; overlapping features are not merged.
package toolpath

import (
	"math"

	"pcbcam/pkg/geometry"
	"pcbcam/pkg/optimize"

	"github.com/go-gl/mathgl/mgl64"
)

const DefaultToolDiameter = 0.5

// Path is a chain of straight cuts.
type Path []geometry.Point

// Ring is a full circle cut around a pad.
type Ring struct {
	Center geometry.Point
	Radius float64
}

type DrillPoint struct {
	Position geometry.Point
	Diameter float64
}

type Generator struct {
	ToolDiameter float64
}

func New() *Generator {
	return &Generator{ToolDiameter: DefaultToolDiameter}
}

func vec(p geometry.Point) mgl64.Vec2 {
	return mgl64.Vec2{p.X, p.Y}
}

func point(v mgl64.Vec2) geometry.Point {
	return geometry.Point{X: v[0], Y: v[1]}
}

// IsolationRouting returns two passes per line, offset by half the tool
// diameter along the line normal, left side first. Zero-length lines are
// skipped.
func (g *Generator) IsolationRouting(geo *geometry.Geometry) []Path {
	offset := g.ToolDiameter / 2
	var paths []Path
	for _, line := range geo.Lines {
		start, end := vec(line.Start), vec(line.End)
		d := end.Sub(start)
		length := d.Len()
		if length == 0 {
			continue
		}
		unit := mgl64.Vec2{d[0] / length, d[1] / length}
		normal := mgl64.Vec2{-unit[1], unit[0]}.Mul(offset)

		paths = append(paths,
			Path{point(start.Add(normal)), point(end.Add(normal))},
			Path{point(start.Sub(normal)), point(end.Sub(normal))},
		)
	}
	return paths
}

// PadRings returns one ring per flashed pad, clear of the copper by half
// the tool diameter.
func (g *Generator) PadRings(geo *geometry.Geometry) []Ring {
	var rings []Ring
	for _, c := range geo.Circles {
		rings = append(rings, Ring{Center: c.Center, Radius: c.Radius + g.ToolDiameter/2})
	}
	return rings
}

// BoardCutout joins outline lines that share endpoints into contours and
// drops points that do not change direction. The cut follows the outline
// itself; no outward offset is applied.
func (g *Generator) BoardCutout(geo *geometry.Geometry) []Path {
	var paths []Path
	for _, p := range chain(geo.Lines) {
		paths = append(paths, Path(geometry.Polyline(p).Simplify(0)))
	}
	return paths
}

// Drills lists the holes, in file order or in greedy nearest-neighbor
// order starting from the origin.
func (g *Generator) Drills(d *geometry.DrillData, order bool, strategy optimize.Strategy) []DrillPoint {
	holes := d.Holes
	points := make([]DrillPoint, 0, len(holes))
	if !order {
		for _, h := range holes {
			points = append(points, DrillPoint{Position: h.Position, Diameter: h.Diameter})
		}
		return points
	}

	result := optimize.New(strategy).Drills(holes, geometry.Point{})
	for _, i := range result.Order {
		points = append(points, DrillPoint{Position: holes[i].Position, Diameter: holes[i].Diameter})
	}
	return points
}

// OrderPaths reorders paths to shorten the rapids between them.
func OrderPaths(paths []Path, strategy optimize.Strategy) ([]Path, optimize.Result) {
	points := make([][]geometry.Point, len(paths))
	for i, p := range paths {
		points[i] = p
	}
	result := optimize.New(strategy).Paths(points, geometry.Point{})

	ordered := make([]Path, 0, len(result.Order))
	for _, i := range result.Order {
		ordered = append(ordered, paths[i])
	}
	return ordered, result
}

type endpointKey [2]int64

// keyOf snaps a point to a micrometer grid so that endpoints written with
// slightly different rounding still meet.
func keyOf(p geometry.Point) endpointKey {
	return endpointKey{int64(math.Round(p.X * 1e6)), int64(math.Round(p.Y * 1e6))}
}

// chain links lines end to end, reversing them where needed. Each line is
// used once. A contour that closes ends on its first point.
func chain(lines []geometry.Line) []Path {
	var segments []geometry.Line
	ends := map[endpointKey][]int{}
	for _, l := range lines {
		if keyOf(l.Start) == keyOf(l.End) {
			continue
		}
		i := len(segments)
		segments = append(segments, l)
		ends[keyOf(l.Start)] = append(ends[keyOf(l.Start)], i)
		ends[keyOf(l.End)] = append(ends[keyOf(l.End)], i)
	}

	used := make([]bool, len(segments))
	next := func(p geometry.Point) (geometry.Point, bool) {
		k := keyOf(p)
		for _, i := range ends[k] {
			if used[i] {
				continue
			}
			used[i] = true
			if keyOf(segments[i].Start) == k {
				return segments[i].End, true
			}
			return segments[i].Start, true
		}
		return geometry.Point{}, false
	}

	var paths []Path
	for i, s := range segments {
		if used[i] {
			continue
		}
		used[i] = true

		forward := Path{s.Start, s.End}
		for keyOf(forward[0]) != keyOf(forward[len(forward)-1]) {
			p, ok := next(forward[len(forward)-1])
			if !ok {
				break
			}
			forward = append(forward, p)
		}

		var backward Path
		if keyOf(forward[0]) != keyOf(forward[len(forward)-1]) {
			for cur := forward[0]; ; {
				p, ok := next(cur)
				if !ok {
					break
				}
				backward = append(backward, p)
				cur = p
			}
		}

		path := make(Path, 0, len(backward)+len(forward))
		for j := len(backward) - 1; j >= 0; j-- {
			path = append(path, backward[j])
		}
		paths = append(paths, append(path, forward...))
	}
	return paths
}
