package mirror_test

import (
	"math"
	"testing"

	"pcbcam/pkg/geometry"
	"pcbcam/pkg/mirror"

	"github.com/google/go-cmp/cmp"
)

type P = geometry.Point

var approx = cmp.Comparer(func(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
})

func TestPoint(t *testing.T) {
	tests := []struct {
		p         P
		axis      mirror.Axis
		reference float64
		expected  P
	}{
		{P{X: 1, Y: 2}, mirror.X, 0, P{X: 1, Y: -2}},
		{P{X: 1, Y: 2}, mirror.X, 5, P{X: 1, Y: 8}},
		{P{X: 1, Y: 2}, mirror.Y, 0, P{X: -1, Y: 2}},
		{P{X: 1, Y: 2}, mirror.Y, 10, P{X: 19, Y: 2}},
		{P{X: 1, Y: 2, Z: -0.1}, mirror.Y, 10, P{X: 19, Y: 2, Z: -0.1}},
		{P{X: 1, Y: 2}, mirror.None, 10, P{X: 1, Y: 2}},
	}

	for i, test := range tests {
		actual := mirror.Point(test.p, test.axis, test.reference)
		if diff := cmp.Diff(test.expected, actual); diff != "" {
			t.Errorf("Test %d - Point() incorrect output: %s", i, diff)
		}
	}
}

func TestMatrix(t *testing.T) {
	tests := []struct {
		axis      mirror.Axis
		reference float64
		expected  geometry.Matrix
	}{
		{mirror.X, 5, geometry.Matrix{A: 1, D: -1, F: 10}},
		{mirror.Y, 2.5, geometry.Matrix{A: -1, D: 1, E: 5}},
		{mirror.None, 7, geometry.Identity},
	}

	for i, test := range tests {
		actual := mirror.Matrix(test.axis, test.reference)
		if diff := cmp.Diff(test.expected, actual); diff != "" {
			t.Errorf("Test %d - Matrix() incorrect output: %s", i, diff)
		}
		if diff := cmp.Diff(geometry.Identity, actual.Multiply(actual), approx); diff != "" {
			t.Errorf("Test %d - Matrix() applied twice is not identity: %s", i, diff)
		}
	}
}

func sample() *geometry.Geometry {
	g := &geometry.Geometry{}
	g.AddLine(P{X: 0, Y: 0}, P{X: 10, Y: 0})
	g.AddLine(P{X: 10, Y: 0}, P{X: 10, Y: 4})
	g.AddArc(P{X: 2, Y: 1}, P{X: 4, Y: 1}, P{X: 3, Y: 1}, true)
	g.AddCircle(P{X: 7.25, Y: 3.5}, 0.4)
	g.AddPolygon([]P{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}})
	return g
}

func TestGeometry(t *testing.T) {
	g := sample()
	actual := mirror.Geometry(g, mirror.Y, 5)

	expected := &geometry.Geometry{}
	expected.AddLine(P{X: 10, Y: 0}, P{X: 0, Y: 0})
	expected.AddLine(P{X: 0, Y: 0}, P{X: 0, Y: 4})
	expected.AddArc(P{X: 8, Y: 1}, P{X: 6, Y: 1}, P{X: 7, Y: 1}, false)
	expected.AddCircle(P{X: 2.75, Y: 3.5}, 0.4)
	expected.AddPolygon([]P{{X: 9, Y: 1}, {X: 8, Y: 1}, {X: 8, Y: 2}})

	if diff := cmp.Diff(expected, actual, approx); diff != "" {
		t.Errorf("Geometry() incorrect output: %s", diff)
	}
	if diff := cmp.Diff(sample(), g); diff != "" {
		t.Errorf("Geometry() modified its input: %s", diff)
	}
}

func TestInvolution(t *testing.T) {
	for _, axis := range []mirror.Axis{mirror.X, mirror.Y} {
		for _, reference := range []float64{0, 2.5, -13.7} {
			g := sample()
			once := mirror.Geometry(g, axis, reference)
			twice := mirror.Geometry(once, axis, reference)

			if once.Arcs[0].Clockwise == g.Arcs[0].Clockwise {
				t.Errorf("Geometry(%v, %v) did not flip the arc direction", axis, reference)
			}
			if diff := cmp.Diff(g, twice, approx); diff != "" {
				t.Errorf("Geometry(%v, %v) twice is not the identity: %s", axis, reference, diff)
			}

			d := &geometry.DrillData{}
			d.AddHole(P{X: 1.1, Y: 2.2}, 0.8)
			d.AddHole(P{X: -3, Y: 7}, 1.0)
			back := mirror.DrillData(mirror.DrillData(d, axis, reference), axis, reference)
			if diff := cmp.Diff(d, back, approx); diff != "" {
				t.Errorf("DrillData(%v, %v) twice is not the identity: %s", axis, reference, diff)
			}
		}
	}
}

func TestAboutCenter(t *testing.T) {
	g := &geometry.Geometry{}
	g.AddLine(P{X: 0, Y: 0}, P{X: 10, Y: 2})
	g.AddCircle(P{X: 4, Y: 1}, 0.5)

	// Bounds are (0,0)-(10,2); the center line is y = 1.
	actual := mirror.GeometryAboutCenter(g, mirror.X)
	expected := &geometry.Geometry{}
	expected.AddLine(P{X: 0, Y: 2}, P{X: 10, Y: 0})
	expected.AddCircle(P{X: 4, Y: 1}, 0.5)
	if diff := cmp.Diff(expected, actual, approx); diff != "" {
		t.Errorf("GeometryAboutCenter() incorrect output: %s", diff)
	}
	min, max := actual.Bounds()
	if diff := cmp.Diff([2]P{{}, {X: 10, Y: 2}}, [2]P{min, max}, approx); diff != "" {
		t.Errorf("GeometryAboutCenter() moved the bounds: %s", diff)
	}

	d := &geometry.DrillData{}
	d.AddHole(P{X: 2, Y: 5}, 0.8)
	d.AddHole(P{X: 6, Y: 9}, 0.8)
	// Center line is x = 4.
	actualDrills := mirror.DrillDataAboutCenter(d, mirror.Y)
	expectedDrills := &geometry.DrillData{}
	expectedDrills.AddHole(P{X: 6, Y: 5}, 0.8)
	expectedDrills.AddHole(P{X: 2, Y: 9}, 0.8)
	if diff := cmp.Diff(expectedDrills, actualDrills, approx); diff != "" {
		t.Errorf("DrillDataAboutCenter() incorrect output: %s", diff)
	}
}

func TestParseAxis(t *testing.T) {
	tests := []struct {
		input    string
		expected mirror.Axis
		err      bool
	}{
		{"x", mirror.X, false},
		{"Y", mirror.Y, false},
		{"none", mirror.None, false},
		{"", mirror.None, false},
		{"z", mirror.None, true},
	}
	for i, test := range tests {
		actual, err := mirror.ParseAxis(test.input)
		if (err != nil) != test.err {
			t.Errorf("Test %d - ParseAxis(%q) unexpected error: %v", i, test.input, err)
		}
		if actual != test.expected {
			t.Errorf("Test %d - ParseAxis(%q) = %v, expected %v", i, test.input, actual, test.expected)
		}
	}
}
