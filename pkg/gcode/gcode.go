// Package gcode renders toolpaths as G-code for a three axis mill.
//
// Output is metric and absolute. Positions are printed with three
// decimals and feed rates with one.
package gcode

import (
	"fmt"
	"io"
	"strings"

	"pcbcam/pkg/cadio"
	"pcbcam/pkg/geometry"
	"pcbcam/pkg/toolpath"
)

const (
	DefaultFeedRate     = 100.0
	DefaultTravelZ      = 2.0
	DefaultCutZ         = -0.1
	DefaultSpindleSpeed = 10000
)

// Emitter formats moves with a fixed set of machining parameters. It
// keeps no state between calls.
type Emitter struct {
	// FeedRate is the cutting feed in mm/min.
	FeedRate float64
	// TravelZ is the safe height for rapids.
	TravelZ float64
	// CutZ is the cutting depth, negative below the board surface.
	CutZ         float64
	SpindleSpeed int
}

func New() *Emitter {
	return &Emitter{
		FeedRate:     DefaultFeedRate,
		TravelZ:      DefaultTravelZ,
		CutZ:         DefaultCutZ,
		SpindleSpeed: DefaultSpindleSpeed,
	}
}

func (e *Emitter) Header() []string {
	return []string{
		"(pcbcam generated G-code)",
		"G21 (Metric units)",
		"G90 (Absolute positioning)",
		fmt.Sprintf("M3 S%d (Start spindle)", e.SpindleSpeed),
		fmt.Sprintf("G0 Z%.3f (Move to safe height)", e.TravelZ),
		"",
	}
}

func (e *Emitter) Footer() []string {
	return []string{
		"",
		fmt.Sprintf("G0 Z%.3f (Move to safe height)", e.TravelZ),
		"M5 (Stop spindle)",
		"M2 (End program)",
		"",
	}
}

// Move is a rapid (G0) or, when feed is set, a feed move (G1) with the
// feed rate. A nil z leaves the height out of the command.
func (e *Emitter) Move(x, y float64, z *float64, feed bool) string {
	var sb strings.Builder
	if feed {
		sb.WriteString("G1")
	} else {
		sb.WriteString("G0")
	}
	fmt.Fprintf(&sb, " X%.3f Y%.3f", x, y)
	if z != nil {
		fmt.Fprintf(&sb, " Z%.3f", *z)
	}
	if feed {
		fmt.Fprintf(&sb, " F%.1f", e.FeedRate)
	}
	return sb.String()
}

func (e *Emitter) Rapid(x, y, z float64) string {
	return e.Move(x, y, &z, false)
}

func (e *Emitter) Feed(x, y, z float64) string {
	return e.Move(x, y, &z, true)
}

// DrillPath plunges and retracts once per hole, in the given order.
func (e *Emitter) DrillPath(holes []toolpath.DrillPoint) []string {
	lines := []string{"(Drill holes)"}
	for _, h := range holes {
		x, y := h.Position.X, h.Position.Y
		lines = append(lines,
			e.Rapid(x, y, e.TravelZ),
			e.Feed(x, y, e.CutZ),
			e.Rapid(x, y, e.TravelZ),
		)
	}
	return lines
}

// LinePath cuts through points at CutZ, entering and leaving at TravelZ.
func (e *Emitter) LinePath(points []geometry.Point) []string {
	if len(points) == 0 {
		return nil
	}
	first, last := points[0], points[len(points)-1]

	lines := []string{
		e.Rapid(first.X, first.Y, e.TravelZ),
		e.Feed(first.X, first.Y, e.CutZ),
	}
	for _, p := range points[1:] {
		lines = append(lines, e.Feed(p.X, p.Y, e.CutZ))
	}
	return append(lines, e.Rapid(last.X, last.Y, e.TravelZ))
}

// Arc is a G2 (clockwise) or G3 move from a.Start to a.End, with the
// center given relative to the start.
func (e *Emitter) Arc(a geometry.Arc) string {
	i := a.Center.X - a.Start.X
	j := a.Center.Y - a.Start.Y
	command := "G3"
	if a.Clockwise {
		command = "G2"
	}
	return fmt.Sprintf("%s X%.3f Y%.3f I%.3f J%.3f F%.1f", command, a.End.X, a.End.Y, i, j, e.FeedRate)
}

// RingPath cuts a full circle as two clockwise half arcs, starting on the
// +X side of the center.
func (e *Emitter) RingPath(r toolpath.Ring) []string {
	c := r.Center
	east := geometry.Point{X: c.X + r.Radius, Y: c.Y}
	west := geometry.Point{X: c.X - r.Radius, Y: c.Y}
	return []string{
		e.Rapid(east.X, east.Y, e.TravelZ),
		e.Feed(east.X, east.Y, e.CutZ),
		e.Arc(geometry.Arc{Start: east, End: west, Center: c, Clockwise: true}),
		e.Arc(geometry.Arc{Start: west, End: east, Center: c, Clockwise: true}),
		e.Rapid(east.X, east.Y, e.TravelZ),
	}
}

// Program wraps the body sections in the header and footer.
func (e *Emitter) Program(sections ...[]string) []string {
	lines := e.Header()
	for _, s := range sections {
		lines = append(lines, s...)
	}
	return append(lines, e.Footer()...)
}

// Write joins lines with newlines. No newline is added after the last
// line.
func Write(w io.Writer, lines []string) error {
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func Save(lines []string, path string) error {
	return cadio.WriteText(path, strings.Join(lines, "\n"))
}
