package toolpath_test

import (
	"math"
	"testing"

	"pcbcam/pkg/geometry"
	"pcbcam/pkg/optimize"
	"pcbcam/pkg/toolpath"

	"github.com/google/go-cmp/cmp"
)

type P = geometry.Point

var approx = cmp.Comparer(func(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
})

func TestIsolationRouting(t *testing.T) {
	geo := &geometry.Geometry{}
	geo.AddLine(P{X: 0, Y: 0}, P{X: 10, Y: 0})
	geo.AddLine(P{X: 3, Y: 3}, P{X: 3, Y: 3})
	geo.AddLine(P{X: 0, Y: 0}, P{X: 0, Y: 4})
	geo.AddLine(P{X: 0, Y: 0}, P{X: 3, Y: 4})

	g := toolpath.New()
	actual := g.IsolationRouting(geo)
	expected := []toolpath.Path{
		{{X: 0, Y: 0.25}, {X: 10, Y: 0.25}},
		{{X: 0, Y: -0.25}, {X: 10, Y: -0.25}},
		{{X: -0.25, Y: 0}, {X: -0.25, Y: 4}},
		{{X: 0.25, Y: 0}, {X: 0.25, Y: 4}},
		{{X: -0.2, Y: 0.15}, {X: 2.8, Y: 4.15}},
		{{X: 0.2, Y: -0.15}, {X: 3.2, Y: 3.85}},
	}
	if diff := cmp.Diff(expected, actual, approx); diff != "" {
		t.Errorf("IsolationRouting() incorrect output: %s", diff)
	}

	g.ToolDiameter = 1
	actual = g.IsolationRouting(geo)
	if diff := cmp.Diff(P{X: 0, Y: 0.5}, actual[0][0], approx); diff != "" {
		t.Errorf("IsolationRouting() ignored the tool diameter: %s", diff)
	}
}

func TestPadRings(t *testing.T) {
	geo := &geometry.Geometry{}
	geo.AddCircle(P{X: 1, Y: 2}, 0.4)
	actual := toolpath.New().PadRings(geo)
	expected := []toolpath.Ring{{Center: P{X: 1, Y: 2}, Radius: 0.65}}
	if diff := cmp.Diff(expected, actual, approx); diff != "" {
		t.Errorf("PadRings() incorrect output: %s", diff)
	}
}

func TestBoardCutout(t *testing.T) {
	geo := &geometry.Geometry{}
	// A rectangle given out of order, with one edge reversed and one
	// split in two.
	geo.AddLine(P{X: 10, Y: 0}, P{X: 10, Y: 5})
	geo.AddLine(P{X: 0, Y: 0}, P{X: 5, Y: 0})
	geo.AddLine(P{X: 0, Y: 5}, P{X: 10, Y: 5})
	geo.AddLine(P{X: 5, Y: 0}, P{X: 10, Y: 0})
	geo.AddLine(P{X: 0, Y: 0}, P{X: 0, Y: 5})
	// An open corner elsewhere.
	geo.AddLine(P{X: 20, Y: 0}, P{X: 30, Y: 0})
	geo.AddLine(P{X: 20, Y: 10}, P{X: 20, Y: 0})

	actual := toolpath.New().BoardCutout(geo)
	expected := []toolpath.Path{
		{{X: 10, Y: 0}, {X: 10, Y: 5}, {X: 0, Y: 5}, {X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 20, Y: 10}, {X: 20, Y: 0}, {X: 30, Y: 0}},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("BoardCutout() incorrect output: %s", diff)
	}
}

func TestDrills(t *testing.T) {
	d := &geometry.DrillData{}
	d.AddHole(P{X: 10}, 1.0)
	d.AddHole(P{X: 1}, 0.8)
	g := toolpath.New()

	fileOrder := []toolpath.DrillPoint{
		{Position: P{X: 10}, Diameter: 1.0},
		{Position: P{X: 1}, Diameter: 0.8},
	}
	if diff := cmp.Diff(fileOrder, g.Drills(d, false, nil)); diff != "" {
		t.Errorf("Drills() incorrect file order: %s", diff)
	}

	optimized := []toolpath.DrillPoint{
		{Position: P{X: 1}, Diameter: 0.8},
		{Position: P{X: 10}, Diameter: 1.0},
	}
	for _, s := range []optimize.Strategy{nil, optimize.Exhaustive{}, optimize.Indexed{}} {
		if diff := cmp.Diff(optimized, g.Drills(d, true, s)); diff != "" {
			t.Errorf("Drills(%T) incorrect optimized order: %s", s, diff)
		}
	}

	if len(g.Drills(&geometry.DrillData{}, true, nil)) != 0 {
		t.Errorf("Drills() expected no points for empty drill data")
	}
}

func TestOrderPaths(t *testing.T) {
	paths := []toolpath.Path{
		{{X: 10}, {X: 20}},
		{{X: 1}, {X: 9}},
	}
	ordered, result := toolpath.OrderPaths(paths, nil)
	expected := []toolpath.Path{paths[1], paths[0]}
	if diff := cmp.Diff(expected, ordered); diff != "" {
		t.Errorf("OrderPaths() incorrect output: %s", diff)
	}
	if diff := cmp.Diff([]int{1, 0}, result.Order); diff != "" {
		t.Errorf("OrderPaths() incorrect order: %s", diff)
	}
}
