package gerber

import (
	"strconv"
	"strings"

	"pcbcam/pkg/coord"
)

// Aperture is a tool shape defined by an %ADD statement. Only circles
// are interpreted; every other shape is kept as UnsupportedAperture so
// that flashes with it can be reported.
type Aperture interface {
	aperture()
}

// CircleAperture is a standard "C" aperture with a single diameter,
// already converted to millimeters.
type CircleAperture struct {
	Diameter float64
}

func (CircleAperture) aperture() {}

// UnsupportedAperture is any aperture whose shape or parameters are not
// interpreted: rectangles, obrounds, polygons, macros and circles with a
// hole.
type UnsupportedAperture struct {
	Shape  string
	Params string
}

func (UnsupportedAperture) aperture() {}

// newAperture builds the aperture variant for a shape name and its raw
// parameter string. Sizes are given in the file unit at definition time.
func newAperture(shape, params string, unit coord.Unit) Aperture {
	if shape == "C" {
		diameter, err := strconv.ParseFloat(strings.TrimSpace(params), 64)
		if err == nil {
			return CircleAperture{Diameter: unit.ToMM(diameter)}
		}
	}
	return UnsupportedAperture{Shape: shape, Params: params}
}

// apertureCode normalizes "D010" and "D10" to the same key.
func apertureCode(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "D" + digits
	}
	return "D" + strconv.Itoa(n)
}
