// Package job runs a complete board: it loads every layer, mirrors them
// about one shared reference so the sides stay aligned, and writes one
// G-code program per layer plus a YAML report.
package job

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"pcbcam/pkg/cadio"
	"pcbcam/pkg/excellon"
	"pcbcam/pkg/gcode"
	"pcbcam/pkg/geometry"
	"pcbcam/pkg/gerber"
	"pcbcam/pkg/logger"
	"pcbcam/pkg/mirror"
	"pcbcam/pkg/optimize"
	"pcbcam/pkg/toolpath"

	"gopkg.in/yaml.v2"
)

// loaded is a parsed layer before mirroring.
type loaded struct {
	layer   Layer
	axis    mirror.Axis
	geo     *geometry.Geometry
	drills  *geometry.DrillData
	skipped int
}

func (l *loaded) empty() bool {
	if l.drills != nil {
		return len(l.drills.Holes) == 0
	}
	return l.geo.Empty()
}

func (l *loaded) bounds() (geometry.Point, geometry.Point) {
	if l.drills != nil {
		return l.drills.Bounds()
	}
	return l.geo.Bounds()
}

func load(layer Layer, axis mirror.Axis) (*loaded, error) {
	l := &loaded{layer: layer, axis: axis}
	if layer.Kind == Drill {
		result, err := excellon.ParseFile(layer.Path)
		if err != nil {
			return nil, err
		}
		l.drills = result.Drills
		l.skipped = len(result.Skipped)
		return l, nil
	}

	result, err := gerber.ParseFile(layer.Path)
	if err != nil {
		return nil, err
	}
	l.geo = result.Geometry
	l.skipped = len(result.Skipped)
	return l, nil
}

// LayerReport summarizes what was done with one layer.
type LayerReport struct {
	Name      string  `yaml:"name"`
	Kind      Kind    `yaml:"kind"`
	Source    string  `yaml:"source"`
	Output    string  `yaml:"output,omitempty"`
	Mirror    string  `yaml:"mirror"`
	Reference float64 `yaml:"reference,omitempty"`
	Lines     int     `yaml:"lines,omitempty"`
	Circles   int     `yaml:"circles,omitempty"`
	Holes     int     `yaml:"holes,omitempty"`
	Skipped   int     `yaml:"skipped_lines"`
	Toolpaths int     `yaml:"toolpaths"`

	// Travel is the rapid distance between toolpaths in machining order.
	Travel       float64              `yaml:"travel"`
	GCodeLines   int                  `yaml:"gcode_lines"`
	Optimization *optimize.Comparison `yaml:"optimization,omitempty"`
}

type XY struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type Report struct {
	// BoundsMin and BoundsMax enclose every non-empty layer before
	// mirroring.
	BoundsMin XY            `yaml:"bounds_min"`
	BoundsMax XY            `yaml:"bounds_max"`
	Layers    []LayerReport `yaml:"layers"`
}

// Program is the G-code for one layer.
type Program struct {
	Layer string
	Lines []string
}

type Output struct {
	Programs []Program
	Report   Report
}

// WriteReport marshals the report as YAML.
func (o *Output) WriteReport(w io.Writer) error {
	data, err := yaml.Marshal(o.Report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// FileName is the program file name for a layer, e.g. "b_cu.nc".
func FileName(layer string) string {
	return strings.ToLower(strings.ReplaceAll(layer, " ", "_")) + ".nc"
}

// Run loads, transforms and emits every layer. Programs are written to
// c.OutputDir when it is set.
func Run(c Config) (*Output, error) {
	log := logger.Logger()

	strategy, err := optimize.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}

	var layers []*loaded
	for i, raw := range c.Layers {
		layer, axis, err := raw.withDefaults(c.FeedRate)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
		log.Info("loading layer", "layer", layer.Name, "kind", layer.Kind, "path", layer.Path)
		l, err := load(layer, axis)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer.Name, err)
		}
		if l.empty() {
			log.Warn("layer is empty", "layer", layer.Name, "path", layer.Path)
		}
		layers = append(layers, l)
	}

	// One reference for every layer keeps mirrored sides registered.
	var min, max geometry.Point
	first := true
	for _, l := range layers {
		if l.empty() {
			continue
		}
		lmin, lmax := l.bounds()
		if first {
			min, max = lmin, lmax
			first = false
			continue
		}
		min, max = geometry.Union(min, max, lmin, lmax)
	}
	log.Info("board bounds", "min", min, "max", max)

	out := &Output{Report: Report{
		BoundsMin: XY{X: min.X, Y: min.Y},
		BoundsMax: XY{X: max.X, Y: max.Y},
	}}
	for _, l := range layers {
		program, report := emit(c, l, min, max, strategy)

		if c.OutputDir != "" {
			report.Output = filepath.Join(c.OutputDir, FileName(l.layer.Name))
			if err := gcode.Save(program.Lines, report.Output); err != nil {
				return nil, fmt.Errorf("layer %s: %w", l.layer.Name, err)
			}
			log.Info("wrote program", "layer", l.layer.Name, "path", report.Output, "lines", len(program.Lines))
		}
		out.Programs = append(out.Programs, program)
		out.Report.Layers = append(out.Report.Layers, report)
	}

	if c.OutputDir != "" && c.Report != "" {
		var sb strings.Builder
		if err := out.WriteReport(&sb); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		if err := cadio.WriteText(filepath.Join(c.OutputDir, c.Report), sb.String()); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
	}
	return out, nil
}

// emit mirrors one layer about the shared bounds and renders its program.
func emit(c Config, l *loaded, min, max geometry.Point, strategy optimize.Strategy) (Program, LayerReport) {
	layer := l.layer
	e := &gcode.Emitter{
		FeedRate:     layer.FeedRate,
		TravelZ:      c.TravelZ,
		CutZ:         *layer.CutZ,
		SpindleSpeed: c.SpindleSpeed,
	}
	g := &toolpath.Generator{ToolDiameter: layer.ToolDiameter}
	report := LayerReport{
		Name:    layer.Name,
		Kind:    layer.Kind,
		Source:  layer.Path,
		Mirror:  l.axis.String(),
		Skipped: l.skipped,
	}
	reference := 0.0
	if l.axis != mirror.None {
		reference = mirror.Reference(min, max, l.axis)
		report.Reference = reference
	}

	var body []string
	if l.drills != nil {
		drills := mirror.DrillData(l.drills, l.axis, reference)
		report.Holes = len(drills.Holes)
		if layer.Optimize {
			comparison := optimize.New(strategy).Compare(drills.Holes, geometry.Point{})
			report.Optimization = &comparison
			logger.Logger().Info("optimized drill order", "layer", layer.Name,
				"original", comparison.OriginalDistance,
				"optimized", comparison.OptimizedDistance,
				"improvement_percent", comparison.ImprovementPercent)
		}
		points := g.Drills(drills, layer.Optimize, strategy)
		report.Toolpaths = len(points)
		positions := make([]geometry.Point, 0, len(points)+1)
		positions = append(positions, geometry.Point{})
		for _, p := range points {
			positions = append(positions, p.Position)
		}
		report.Travel = optimize.PathLength(positions)
		body = e.DrillPath(points)
	} else {
		geo := mirror.Geometry(l.geo, l.axis, reference)
		report.Lines = len(geo.Lines)
		report.Circles = len(geo.Circles)

		var paths []toolpath.Path
		var rings []toolpath.Ring
		if layer.Kind == Edge {
			paths = g.BoardCutout(geo)
		} else {
			paths = g.IsolationRouting(geo)
			rings = g.PadRings(geo)
		}
		if layer.Optimize {
			paths, _ = toolpath.OrderPaths(paths, strategy)
		}
		report.Toolpaths = len(paths) + len(rings)
		report.Travel = travel(paths)

		for _, p := range paths {
			body = append(body, e.LinePath(p)...)
		}
		for _, r := range rings {
			body = append(body, e.RingPath(r)...)
		}
	}

	program := Program{Layer: layer.Name, Lines: e.Program(body)}
	report.GCodeLines = len(program.Lines)
	return program, report
}

// travel is the rapid distance from the origin through the paths in
// order.
func travel(paths []toolpath.Path) float64 {
	total := 0.0
	current := geometry.Point{}
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		total += current.Distance(p[0])
		current = p[len(p)-1]
	}
	return total
}
