package excellon_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pcbcam/pkg/coord"
	"pcbcam/pkg/excellon"
	"pcbcam/pkg/geometry"

	"github.com/google/go-cmp/cmp"
)

type P = geometry.Point

var approx = cmp.Comparer(func(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
})

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		holes []geometry.DrillHole
		tools map[string]float64
	}{
		{
			input: "M48\nMETRIC\nT01C0.800\n%\nT01\nX012345Y067890\nM30\n",
			holes: []geometry.DrillHole{
				{Position: P{X: 12.345, Y: 67.89}, Diameter: 0.8},
			},
			tools: map[string]float64{"1": 0.8},
		},
		{
			// Decimal coordinates, omitted axes and tool changes.
			input: "M48\n; KiCad drill file\nFMAT,2\nMETRIC,TZ\nT1C0.400\nT2C1.000\n%\nT1\nX22.606Y65.532\nY70.0\nT2\nX1.5\nM30\n",
			holes: []geometry.DrillHole{
				{Position: P{X: 22.606, Y: 65.532}, Diameter: 0.4},
				{Position: P{X: 22.606, Y: 70}, Diameter: 0.4},
				{Position: P{X: 1.5, Y: 70}, Diameter: 1},
			},
			tools: map[string]float64{"1": 0.4, "2": 1},
		},
		{
			// Inch tools and coordinates are converted.
			input: "M48\nINCH\nT01C0.0394\n%\nT01\nX001000Y-002000\nM30\n",
			holes: []geometry.DrillHole{
				{Position: P{X: 25.4, Y: -50.8}, Diameter: 0.0394 * 25.4},
			},
			tools: map[string]float64{"1": 0.0394 * 25.4},
		},
		{
			// Nothing after M30 is read.
			input: "T1C0.8\nT1\nX1.0Y1.0\nM30\nX2.0Y2.0\n",
			holes: []geometry.DrillHole{
				{Position: P{X: 1, Y: 1}, Diameter: 0.8},
			},
			tools: map[string]float64{"1": 0.8},
		},
	}

	for i, test := range tests {
		result, err := excellon.Parse(test.input)
		if err != nil {
			t.Errorf("Test %d - Parse() unexpected error: %v", i, err)
			continue
		}
		if diff := cmp.Diff(test.holes, result.Drills.Holes, approx); diff != "" {
			t.Errorf("Test %d - Parse() incorrect holes: %s", i, diff)
		}
		if diff := cmp.Diff(test.tools, result.Tools, approx); diff != "" {
			t.Errorf("Test %d - Parse() incorrect tools: %s", i, diff)
		}
	}
}

func TestUndefinedTool(t *testing.T) {
	input := "M48\nMETRIC\nT01C0.800\n%\nX1.0Y1.0\nT02\nX2.0Y2.0\nG05\nT01\nX3.0Y3.0\nM30\n"
	result, err := excellon.Parse(input)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	expectedHoles := []geometry.DrillHole{
		{Position: P{X: 3, Y: 3}, Diameter: 0.8},
	}
	if diff := cmp.Diff(expectedHoles, result.Drills.Holes, approx); diff != "" {
		t.Errorf("Parse() incorrect holes: %s", diff)
	}

	expectedSkipped := []excellon.Skipped{
		{Line: 5, Text: "X1.0Y1.0", Reason: excellon.ReasonUndefinedTool},
		{Line: 7, Text: "X2.0Y2.0", Reason: excellon.ReasonUndefinedTool},
		{Line: 8, Text: "G05", Reason: excellon.ReasonUnrecognized},
	}
	if diff := cmp.Diff(expectedSkipped, result.Skipped); diff != "" {
		t.Errorf("Parse() incorrect skipped lines: %s", diff)
	}
}

func TestStepDoesNotMutate(t *testing.T) {
	s := excellon.NewState()
	next, _, err := excellon.Step(s, "T03C0.6")
	if err != nil {
		t.Fatalf("Step() unexpected error: %v", err)
	}
	if len(s.Tools) != 0 {
		t.Errorf("Step() modified the input tool table: %v", s.Tools)
	}
	if diff := cmp.Diff(map[string]float64{"3": 0.6}, next.Tools); diff != "" {
		t.Errorf("Step() incorrect tool table: %s", diff)
	}
}

func TestMalformedCoordinate(t *testing.T) {
	result, err := excellon.Parse("T1C0.8\nT1\nX1.0Y1.0\nX1.2.3Y4.0\n")
	if !errors.Is(err, coord.ErrMalformedCoordinate) {
		t.Fatalf("Parse() expected a malformed coordinate error, got %v", err)
	}
	if len(result.Drills.Holes) != 1 {
		t.Errorf("Parse() expected the hole before the error, got %s", result.Drills)
	}
}

func TestLongCommentLine(t *testing.T) {
	input := "M48\nMETRIC\nT1C0.8\n%\n;" + strings.Repeat("x", 70*1024) + "\nT1\nX1.0Y1.0\nM30\n"
	result, err := excellon.Parse(input)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	expectedHoles := []geometry.DrillHole{
		{Position: P{X: 1, Y: 1}, Diameter: 0.8},
	}
	if diff := cmp.Diff(expectedHoles, result.Drills.Holes, approx); diff != "" {
		t.Errorf("Parse() incorrect holes: %s", diff)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.drl")
	if err := os.WriteFile(path, []byte("M48\r\nMETRIC\r\nT01C0.800\r\n%\r\nT01\r\nX012345Y067890\r\nM30\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err := excellon.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() unexpected error: %v", err)
	}
	expected := []geometry.DrillHole{
		{Position: P{X: 12.345, Y: 67.89}, Diameter: 0.8},
	}
	if diff := cmp.Diff(expected, result.Drills.Holes, approx); diff != "" {
		t.Errorf("ParseFile() incorrect holes: %s", diff)
	}
}
