// Package excellon reads Excellon drill files: the tool table from the
// header and the hole positions from the body.
package excellon

import (
	"fmt"
	"io"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"pcbcam/pkg/cadio"
	"pcbcam/pkg/coord"
	"pcbcam/pkg/geometry"
	"pcbcam/pkg/logger"
)

// Skip reasons reported in Result.Skipped.
const (
	ReasonUnrecognized  = "unrecognized"
	ReasonUndefinedTool = "undefined tool"
)

var (
	toolDefRE     = regexp.MustCompile(`^T(\d+)[^C]*C([\d.]+)`)
	toolSelRE     = regexp.MustCompile(`^T(\d+)`)
	coordinateXRE = regexp.MustCompile(`X([+-]?[\d.]+)`)
	coordinateYRE = regexp.MustCompile(`Y([+-]?[\d.]+)`)
)

// State is the parser session state between two lines.
type State struct {
	X, Y   float64
	Format coord.Format
	Unit   coord.Unit
	// Tool is the selected tool number, empty before the first selection.
	Tool  string
	Tools map[string]float64
	Done  bool
}

// NewState returns the state at the start of a file.
func NewState() State {
	return State{
		Format: coord.ExcellonFormat,
		Unit:   coord.MM,
		Tools:  map[string]float64{},
	}
}

// Effect is what a single line contributes to the result.
type Effect struct {
	Hole *geometry.DrillHole
	Skip string
}

// Step advances the state by one line. It never modifies s; tool
// definitions copy the table.
func Step(s State, line string) (State, Effect, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "", strings.HasPrefix(line, ";"):
	case line == "M48", line == "%":
	case strings.HasPrefix(line, "METRIC"), line == "M71":
		s.Unit = coord.MM
	case strings.HasPrefix(line, "INCH"), line == "M72":
		s.Unit = coord.Inch
	case strings.HasPrefix(line, "FMAT"):
	case strings.HasPrefix(line, "T") && strings.Contains(line, "C"):
		m := toolDefRE.FindStringSubmatch(line)
		if m == nil {
			return s, Effect{Skip: ReasonUnrecognized}, nil
		}
		diameter, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return s, Effect{Skip: ReasonUnrecognized}, nil
		}
		tools := maps.Clone(s.Tools)
		if tools == nil {
			tools = map[string]float64{}
		}
		tools[toolNumber(m[1])] = s.Unit.ToMM(diameter)
		s.Tools = tools
	case strings.HasPrefix(line, "T"):
		m := toolSelRE.FindStringSubmatch(line)
		if m == nil {
			return s, Effect{Skip: ReasonUnrecognized}, nil
		}
		s.Tool = toolNumber(m[1])
	case strings.HasPrefix(line, "X"), strings.HasPrefix(line, "Y"):
		return hole(s, line)
	case line == "M30":
		s.Done = true
	default:
		return s, Effect{Skip: ReasonUnrecognized}, nil
	}
	return s, Effect{}, nil
}

func hole(s State, line string) (State, Effect, error) {
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

	diameter, ok := s.Tools[s.Tool]
	if s.Tool == "" || !ok {
		return s, Effect{Skip: ReasonUndefinedTool}, nil
	}
	return s, Effect{Hole: &geometry.DrillHole{
		Position: geometry.Point{X: s.X, Y: s.Y},
		Diameter: diameter,
	}}, nil
}

// toolNumber normalizes "T01" and "T1" to the same key.
func toolNumber(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return digits
	}
	return strconv.Itoa(n)
}

// Skipped records an input line that produced nothing.
type Skipped struct {
	Line   int
	Text   string
	Reason string
}

// Result is the outcome of parsing one drill file.
type Result struct {
	Drills *geometry.DrillData
	// Tools maps tool numbers to diameters in mm.
	Tools   map[string]float64
	Skipped []Skipped
}

// Parser holds the settings a parse starts from.
type Parser struct {
	Format coord.Format
	Unit   coord.Unit
}

// New returns a parser with the Excellon defaults: 3.3 format, mm.
func New() *Parser {
	return &Parser{Format: coord.ExcellonFormat, Unit: coord.MM}
}

// ParseReader reads lines from r until it is exhausted or M30 is found.
// A coordinate that cannot be decoded stops the parse; the partial
// result is returned with the error.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	s := NewState()
	s.Format = p.Format
	s.Unit = p.Unit

	result := &Result{Drills: &geometry.DrillData{}}
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
			result.Tools = s.Tools
			return result, fmt.Errorf("excellon line %d: %w", lineNumber, err)
		}
		if effect.Hole != nil {
			result.Drills.AddHole(effect.Hole.Position, effect.Hole.Diameter)
		} else if effect.Skip != "" {
			result.Skipped = append(result.Skipped, Skipped{
				Line:   lineNumber,
				Text:   strings.TrimSpace(text),
				Reason: effect.Skip,
			})
			log.Debug("excellon: skipped line", "line", lineNumber, "text", text, "reason", effect.Skip)
		}
		if s.Done {
			break
		}
	}
	result.Tools = s.Tools
	if err := lines.Err(); err != nil {
		return result, fmt.Errorf("excellon: %w", err)
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

// Parse parses drill text with the default settings.
func Parse(text string) (*Result, error) {
	return New().Parse(text)
}

// ParseFile parses the drill file at path with the default settings.
func ParseFile(path string) (*Result, error) {
	return New().ParseFile(path)
}
