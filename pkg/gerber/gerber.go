// Package gerber reads the subset of RS-274X needed for isolation
// milling: format and unit headers, standard aperture definitions,
// linear draws, moves and circular flashes.
//
// The parser is deliberately permissive. Lines it does not understand
// are skipped and reported in Result.Skipped instead of failing the
// whole file.
package gerber

import (
	"fmt"
	"io"
	"maps"
	"regexp"
	"strings"

	"pcbcam/pkg/cadio"
	"pcbcam/pkg/coord"
	"pcbcam/pkg/geometry"
	"pcbcam/pkg/logger"
)

// Skip reasons reported in Result.Skipped.
const (
	ReasonUnrecognized        = "unrecognized"
	ReasonUnsupportedExtended = "unsupported extended command"
	ReasonUndefinedAperture   = "undefined aperture"
	ReasonUnsupportedAperture = "unsupported aperture"
)

var (
	formatRE       = regexp.MustCompile(`X(\d)(\d)Y(\d)(\d)`)
	apertureDefRE  = regexp.MustCompile(`^%ADD(\d+)([A-Za-z_$][A-Za-z0-9_.$]*),?([^*]*)\*%`)
	apertureSelRE  = regexp.MustCompile(`^D(\d+)\*?$`)
	coordinateXRE  = regexp.MustCompile(`X([+-]?\d+)`)
	coordinateYRE  = regexp.MustCompile(`Y([+-]?\d+)`)
	endOfProgramRE = regexp.MustCompile(`^M0?2\*?$`)
)

// State is the parser session state between two lines.
type State struct {
	X, Y      float64
	Format    coord.Format
	Unit      coord.Unit
	Aperture  string
	Apertures map[string]Aperture
	Drawing   bool
	Done      bool
}

// NewState returns the state at the start of a file.
func NewState() State {
	return State{
		Format:    coord.GerberFormat,
		Unit:      coord.MM,
		Apertures: map[string]Aperture{},
	}
}

func (s State) position() geometry.Point {
	return geometry.Point{X: s.X, Y: s.Y}
}

// Effect is what a single line contributes to the result. At most one of
// Line and Circle is set. Skip is non-empty when the line was ignored.
type Effect struct {
	Line   *geometry.Line
	Circle *geometry.Circle
	Skip   string
}

// Step advances the state by one line. It never modifies s; aperture
// definitions copy the table.
func Step(s State, line string) (State, Effect, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return s, Effect{}, nil
	case strings.HasPrefix(line, "G04"):
		return s, Effect{}, nil
	case strings.HasPrefix(line, "%"):
		return extended(s, line)
	case endOfProgramRE.MatchString(line):
		s.Done = true
		return s, Effect{}, nil
	}

	// Linear interpolation is the only mode, so G01 is dropped and
	// whatever follows it on the line is processed normally.
	if strings.HasPrefix(line, "G01") {
		line = strings.TrimPrefix(line, "G01")
		if line == "" || line == "*" {
			return s, Effect{}, nil
		}
	}

	if m := apertureSelRE.FindStringSubmatch(line); m != nil {
		s.Aperture = apertureCode(m[1])
		return s, Effect{}, nil
	}

	if strings.ContainsAny(line, "XY") || strings.Contains(line, "D0") {
		return operation(s, line)
	}

	return s, Effect{Skip: ReasonUnrecognized}, nil
}

func extended(s State, line string) (State, Effect, error) {
	switch {
	case strings.Contains(line, "FS"):
		if m := formatRE.FindStringSubmatch(line); m != nil {
			// Only the X pair is used; Y is assumed to match.
			s.Format = coord.Format{Integer: int(m[1][0] - '0'), Decimal: int(m[2][0] - '0')}
		}
	case strings.Contains(line, "MO"):
		if strings.Contains(line, "MM") {
			s.Unit = coord.MM
		} else if strings.Contains(line, "IN") {
			s.Unit = coord.Inch
		}
	case strings.Contains(line, "ADD"):
		m := apertureDefRE.FindStringSubmatch(line)
		if m == nil {
			return s, Effect{Skip: ReasonUnrecognized}, nil
		}
		apertures := maps.Clone(s.Apertures)
		if apertures == nil {
			apertures = map[string]Aperture{}
		}
		apertures[apertureCode(m[1])] = newAperture(m[2], m[3], s.Unit)
		s.Apertures = apertures
	default:
		return s, Effect{Skip: ReasonUnsupportedExtended}, nil
	}
	return s, Effect{}, nil
}

func operation(s State, line string) (State, Effect, error) {
	prev := s.position()

	if m := coordinateXRE.FindStringSubmatch(line); m != nil {
		x, err := coord.Decode(m[1], s.Format, s.Unit)
		if err != nil {
			return s, Effect{}, err
		}
		s.X = x
	}
	if m := coordinateYRE.FindStringSubmatch(line); m != nil {
		y, err := coord.Decode(m[1], s.Format, s.Unit)
		if err != nil {
			return s, Effect{}, err
		}
		s.Y = y
	}

	var effect Effect
	switch {
	case strings.Contains(line, "D01"):
		if s.Drawing {
			effect.Line = &geometry.Line{Start: prev, End: s.position()}
		}
		s.Drawing = true
	case strings.Contains(line, "D02"):
		s.Drawing = false
	case strings.Contains(line, "D03"):
		aperture, ok := s.Apertures[s.Aperture]
		if !ok {
			effect.Skip = ReasonUndefinedAperture
			break
		}
		circle, ok := aperture.(CircleAperture)
		if !ok {
			effect.Skip = ReasonUnsupportedAperture
			break
		}
		effect.Circle = &geometry.Circle{Center: s.position(), Radius: circle.Diameter / 2}
	}
	return s, effect, nil
}

// Skipped records an input line that produced nothing.
type Skipped struct {
	Line   int
	Text   string
	Reason string
}

// Result is the outcome of parsing one Gerber file.
type Result struct {
	Geometry *geometry.Geometry
	Skipped  []Skipped
	// Final is the state after the last line read.
	Final State
}

// Parser holds the settings a parse starts from.
type Parser struct {
	Format coord.Format
	Unit   coord.Unit
}

// New returns a parser with the RS-274X defaults: 4.6 format, mm.
func New() *Parser {
	return &Parser{Format: coord.GerberFormat, Unit: coord.MM}
}

// ParseReader reads lines from r until it is exhausted or an end of
// program marker is found. A coordinate that cannot be decoded stops the
// parse; the partial result is returned with the error.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	s := NewState()
	s.Format = p.Format
	s.Unit = p.Unit

	result := &Result{Geometry: &geometry.Geometry{}}
	log := logger.Logger()

	lines := cadio.NewLineReader(r)
	lineNumber := 0
	for lines.Next() {
		lineNumber++
		text := lines.Text()

		var effect Effect
		var err error
		s, effect, err = Step(s, text)
		if err != nil {
			result.Final = s
			return result, fmt.Errorf("gerber line %d: %w", lineNumber, err)
		}
		switch {
		case effect.Line != nil:
			result.Geometry.AddLine(effect.Line.Start, effect.Line.End)
		case effect.Circle != nil:
			result.Geometry.AddCircle(effect.Circle.Center, effect.Circle.Radius)
		case effect.Skip != "":
			result.Skipped = append(result.Skipped, Skipped{
				Line:   lineNumber,
				Text:   strings.TrimSpace(text),
				Reason: effect.Skip,
			})
			log.Debug("gerber: skipped line", "line", lineNumber, "text", text, "reason", effect.Skip)
		}
		if s.Done {
			break
		}
	}
	result.Final = s
	if err := lines.Err(); err != nil {
		return result, fmt.Errorf("gerber: %w", err)
	}
	return result, nil
}

func (p *Parser) Parse(text string) (*Result, error) {
	return p.ParseReader(strings.NewReader(text))
}

func (p *Parser) ParseFile(path string) (*Result, error) {
	text, err := cadio.ReadText(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(text)
}

// Parse parses Gerber text with the default settings.
func Parse(text string) (*Result, error) {
	return New().Parse(text)
}

// ParseFile parses the Gerber file at path with the default settings.
func ParseFile(path string) (*Result, error) {
	return New().ParseFile(path)
}
