// Package coord decodes the implied-decimal coordinate encodings shared
// by Gerber and Excellon files into millimeters.
package coord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// InchToMM converts inches to millimeters.
const InchToMM = 25.4

// ErrMalformedCoordinate is returned when a coordinate token's digit
// payload is not numeric.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

type Unit int

const (
	MM Unit = iota
	Inch
)

func (u Unit) String() string {
	switch u {
	case MM:
		return "mm"
	case Inch:
		return "inch"
	}
	return "unknown unit"
}

// ToMM scales a value expressed in u to millimeters.
func (u Unit) ToMM(value float64) float64 {
	if u == Inch {
		return value * InchToMM
	}
	return value
}

// ParseUnit accepts the unit spellings found in CAM files and configs.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mm", "metric":
		return MM, nil
	case "in", "inch", "inches":
		return Inch, nil
	}
	return MM, fmt.Errorf("unknown unit %q", s)
}

// Format is the number of integer and decimal digits in a fixed-point
// coordinate token.
type Format struct {
	Integer int
	Decimal int
}

var (
	ExcellonFormat = Format{Integer: 3, Decimal: 3}
	GerberFormat   = Format{Integer: 4, Decimal: 6}
)

func (f Format) String() string {
	return fmt.Sprintf("%d.%d", f.Integer, f.Decimal)
}

// Decode converts a raw coordinate token to millimeters.
//
// A token with a decimal point is read as a plain number. Otherwise it is
// a leading-zero-suppressed fixed-point value: the digits are left padded
// to Integer+Decimal places and split after Integer digits.
func Decode(raw string, f Format, u Unit) (float64, error) {
	if strings.Contains(raw, ".") {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedCoordinate, raw)
		}
		return u.ToMM(value), nil
	}

	digits := raw
	sign := 1.0
	if strings.HasPrefix(digits, "+") || strings.HasPrefix(digits, "-") {
		if digits[0] == '-' {
			sign = -1
		}
		digits = digits[1:]
	}
	if !isDigits(digits) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCoordinate, raw)
	}

	total := f.Integer + f.Decimal
	if len(digits) < total {
		digits = strings.Repeat("0", total-len(digits)) + digits
	}
	intPart := digits[:f.Integer]
	decPart := digits[f.Integer:total]
	if intPart == "" {
		intPart = "0"
	}

	value, err := strconv.ParseFloat(intPart+"."+decPart, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCoordinate, raw)
	}
	return u.ToMM(sign * value), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
