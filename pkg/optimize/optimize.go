// Package optimize orders machining features with a greedy
// nearest-neighbor walk to cut down rapid travel between them.
package optimize

import (
	"fmt"
	"strings"

	"pcbcam/pkg/geometry"
)

// Result is a visiting order over the input indices and the rapid travel
// it needs, measured from the start point.
type Result struct {
	Order    []int
	Distance float64
}

// Strategy finds the greedy order over a set of sites. A site is entered
// at entries[i] and left at exits[i]. Every strategy must return the same
// order: the nearest unvisited entry, ties going to the lowest index.
type Strategy interface {
	Order(entries, exits []geometry.Point, start geometry.Point) Result
}

// ParseStrategy accepts "exhaustive" and "indexed". An empty name selects
// Exhaustive.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exhaustive":
		return Exhaustive{}, nil
	case "indexed":
		return Indexed{}, nil
	}
	return nil, fmt.Errorf("unknown optimizer strategy %q", name)
}

// Optimizer runs the orderings with a chosen strategy.
type Optimizer struct {
	Strategy Strategy
}

// New returns an optimizer using s, or Exhaustive when s is nil.
func New(s Strategy) *Optimizer {
	if s == nil {
		s = Exhaustive{}
	}
	return &Optimizer{Strategy: s}
}

// Drills orders holes by their positions.
func (o *Optimizer) Drills(holes []geometry.DrillHole, start geometry.Point) Result {
	if len(holes) == 0 {
		return Result{Order: []int{}}
	}
	positions := make([]geometry.Point, len(holes))
	for i, h := range holes {
		positions[i] = h.Position
	}
	return o.Strategy.Order(positions, positions, start)
}

// Paths orders paths by their first point; the walk continues from each
// path's last point. Paths are never reversed. Empty paths are left out
// of the order.
func (o *Optimizer) Paths(paths [][]geometry.Point, start geometry.Point) Result {
	var entries, exits []geometry.Point
	var index []int
	for i, path := range paths {
		if len(path) == 0 {
			continue
		}
		entries = append(entries, path[0])
		exits = append(exits, path[len(path)-1])
		index = append(index, i)
	}
	if len(entries) == 0 {
		return Result{Order: []int{}}
	}

	result := o.Strategy.Order(entries, exits, start)
	for i, j := range result.Order {
		result.Order[i] = index[j]
	}
	return result
}

// Comparison reports the travel of the file order against the optimized
// order, both walked from the same start point.
type Comparison struct {
	OriginalDistance   float64 `yaml:"original_distance"`
	OptimizedDistance  float64 `yaml:"optimized_distance"`
	ImprovementPercent float64 `yaml:"improvement_percent"`
	Order              []int   `yaml:"-"`
}

func (o *Optimizer) Compare(holes []geometry.DrillHole, start geometry.Point) Comparison {
	if len(holes) == 0 {
		return Comparison{Order: []int{}}
	}

	points := make([]geometry.Point, 0, len(holes)+1)
	points = append(points, start)
	for _, h := range holes {
		points = append(points, h.Position)
	}
	original := PathLength(points)

	optimized := o.Drills(holes, start)
	c := Comparison{
		OriginalDistance:  original,
		OptimizedDistance: optimized.Distance,
		Order:             optimized.Order,
	}
	if original > 0 {
		c.ImprovementPercent = (original - optimized.Distance) / original * 100
	}
	return c
}

var defaultOptimizer = New(Exhaustive{})

// Drills orders holes with the Exhaustive strategy.
func Drills(holes []geometry.DrillHole, start geometry.Point) Result {
	return defaultOptimizer.Drills(holes, start)
}

// Paths orders paths with the Exhaustive strategy.
func Paths(paths [][]geometry.Point, start geometry.Point) Result {
	return defaultOptimizer.Paths(paths, start)
}

// Compare measures holes with the Exhaustive strategy.
func Compare(holes []geometry.DrillHole, start geometry.Point) Comparison {
	return defaultOptimizer.Compare(holes, start)
}

// PathLength is the total length of the polyline through points.
func PathLength(points []geometry.Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].Distance(points[i])
	}
	return total
}

// Exhaustive scans every unvisited site at each step.
type Exhaustive struct{}

func (Exhaustive) Order(entries, exits []geometry.Point, start geometry.Point) Result {
	n := len(entries)
	visited := make([]bool, n)
	result := Result{Order: make([]int, 0, n)}

	current := start
	for len(result.Order) < n {
		nearest, nearestDist := -1, 0.0
		for i, p := range entries {
			if visited[i] {
				continue
			}
			d := current.Distance(p)
			if nearest == -1 || d < nearestDist {
				nearest, nearestDist = i, d
			}
		}
		visited[nearest] = true
		result.Order = append(result.Order, nearest)
		result.Distance += nearestDist
		current = exits[nearest]
	}
	return result
}
