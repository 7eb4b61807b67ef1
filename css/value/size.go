// Package value holds typed scalar values produced by stylesheet parsing and
// the converters that turn parsed values into their final form.
package value

import (
	"math"
	"strconv"
)

const (
	pointsPerInch = 72.0
	dotsPerInch   = 96.0
	cmPerInch     = 2.54
	mmPerInch     = 25.4
	pointsPerPica = 12.0
)

// SizeUnit is a unit of a numeric value.
type SizeUnit int

const (
	SizeUnitPx SizeUnit = iota
	SizeUnitPt
	SizeUnitPc
	SizeUnitIn
	SizeUnitCm
	SizeUnitMm
	SizeUnitEm
	SizeUnitEx
	SizeUnitPercent
	SizeUnitDeg
	SizeUnitRad
	SizeUnitGrad
	SizeUnitTurn
	SizeUnitS
	SizeUnitMs
)

var sizeUnitSuffix = [...]string{"px", "pt", "pc", "in", "cm", "mm", "em", "ex", "%", "deg", "rad", "grad", "turn", "s", "ms"}

// Suffix returns unit as written in a stylesheet.
func (u SizeUnit) Suffix() string {
	if u >= 0 && int(u) < len(sizeUnitSuffix) {
		return sizeUnitSuffix[u]
	}
	return "?"
}

func (u SizeUnit) String() string {
	if u == SizeUnitPercent {
		return "percent"
	}
	return u.Suffix()
}

// IsAbsolute reports whether unit does not depend on font or on the size of
// something else.
func (u SizeUnit) IsAbsolute() bool {
	switch u {
	case SizeUnitEm, SizeUnitEx, SizeUnitPercent:
		return false
	}
	return true
}

// IsAngle reports whether unit measures angles.
func (u SizeUnit) IsAngle() bool {
	return u >= SizeUnitDeg && u <= SizeUnitTurn
}

// IsTime reports whether unit measures time.
func (u SizeUnit) IsTime() bool {
	return u == SizeUnitS || u == SizeUnitMs
}

// Font is a metric context for relative units.
type Font struct {
	Family string
	Size   float64 // in points
}

// DefaultFont is used when no font is given for relative units.
var DefaultFont = Font{Family: "System", Size: 12}

func fontPoints(font *Font) float64 {
	if font == nil || font.Size <= 0 {
		return DefaultFont.Size
	}
	return font.Size
}

// Points converts value of unit u to points. Angles are converted to degrees
// and times to milliseconds.
func (u SizeUnit) Points(v, multiplier float64, font *Font) float64 {
	switch u {
	case SizeUnitPx:
		return v * multiplier * pointsPerInch / dotsPerInch
	case SizeUnitPt:
		return v * multiplier
	case SizeUnitPc:
		return v * multiplier * pointsPerPica
	case SizeUnitIn:
		return v * multiplier * pointsPerInch
	case SizeUnitCm:
		return v * multiplier / cmPerInch * pointsPerInch
	case SizeUnitMm:
		return v * multiplier / mmPerInch * pointsPerInch
	case SizeUnitEm:
		return v * multiplier * fontPoints(font)
	case SizeUnitEx:
		return v * multiplier * fontPoints(font) / 2
	case SizeUnitPercent:
		return v / 100 * multiplier
	}
	return u.nonLength(v, multiplier)
}

// Pixels converts value of unit u to pixels. Angles are converted to degrees
// and times to milliseconds.
func (u SizeUnit) Pixels(v, multiplier float64, font *Font) float64 {
	switch u {
	case SizeUnitPx:
		return v * multiplier
	case SizeUnitPercent:
		return v / 100 * multiplier
	case SizeUnitPt, SizeUnitPc, SizeUnitIn, SizeUnitCm, SizeUnitMm, SizeUnitEm, SizeUnitEx:
		return u.Points(v, multiplier, font) * dotsPerInch / pointsPerInch
	}
	return u.nonLength(v, multiplier)
}

func (u SizeUnit) nonLength(v, multiplier float64) float64 {
	switch u {
	case SizeUnitDeg:
		return v * multiplier
	case SizeUnitRad:
		return v * multiplier * 180 / math.Pi
	case SizeUnitGrad:
		return v * multiplier * 9 / 10
	case SizeUnitTurn:
		return v * multiplier * 360
	case SizeUnitS:
		return v * multiplier * 1000
	case SizeUnitMs:
		return v * multiplier
	}
	return v * multiplier
}

// Size is a number with a unit.
type Size struct {
	Value float64
	Unit  SizeUnit
}

// Px is a shortcut to make pixel size.
func Px(v float64) Size { return Size{Value: v, Unit: SizeUnitPx} }

// Percent is a shortcut to make percentage.
func Percent(v float64) Size { return Size{Value: v, Unit: SizeUnitPercent} }

func (s Size) IsAbsolute() bool { return s.Unit.IsAbsolute() }

func (s Size) Points(multiplier float64, font *Font) float64 {
	return s.Unit.Points(s.Value, multiplier, font)
}

func (s Size) Pixels(multiplier float64, font *Font) float64 {
	return s.Unit.Pixels(s.Value, multiplier, font)
}

// IsZero reports whether value is exactly zero, unit does not matter.
func (s Size) IsZero() bool { return s.Value == 0 }

func (s Size) String() string {
	return strconv.FormatFloat(s.Value, 'f', -1, 64) + s.Unit.Suffix()
}
