package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Converter names the conversion which turns raw parsed value into its final
// typed form.
type Converter int

const (
	ConverterNone Converter = iota
	ConverterList
	ConverterLayers
	ConverterSize
	ConverterSequence
	ConverterInsets
	ConverterMargins
	ConverterDuration
	ConverterBoolean
	ConverterString
	ConverterURL
	ConverterEnum
	ConverterColor
	ConverterDeriveColor
	ConverterLadder
	ConverterStop
	ConverterPoint
	ConverterLinearGradient
	ConverterRadialGradient
	ConverterImagePattern
	ConverterRepeatingImagePattern
	ConverterInnerShadow
	ConverterDropShadow
	ConverterBackgroundPosition
	ConverterRepeatStyle
	ConverterBackgroundSize
	ConverterCornerRadii
	ConverterBorderImageSlice
	ConverterBorderStrokeStyle
	ConverterFont
	ConverterFontSize
	ConverterFontWeight
	ConverterFontPosture
	ConverterFontFamily
)

var converterNames = [...]string{
	ConverterNone:                  "none",
	ConverterList:                  "list",
	ConverterLayers:                "layers",
	ConverterSize:                  "size",
	ConverterSequence:              "sequence",
	ConverterInsets:                "insets",
	ConverterMargins:               "margins",
	ConverterDuration:              "duration",
	ConverterBoolean:               "boolean",
	ConverterString:                "string",
	ConverterURL:                   "url",
	ConverterEnum:                  "enum",
	ConverterColor:                 "color",
	ConverterDeriveColor:           "derive",
	ConverterLadder:                "ladder",
	ConverterStop:                  "stop",
	ConverterPoint:                 "point",
	ConverterLinearGradient:        "linear-gradient",
	ConverterRadialGradient:        "radial-gradient",
	ConverterImagePattern:          "image-pattern",
	ConverterRepeatingImagePattern: "repeating-image-pattern",
	ConverterInnerShadow:           "innershadow",
	ConverterDropShadow:            "dropshadow",
	ConverterBackgroundPosition:    "background-position",
	ConverterRepeatStyle:           "repeat-style",
	ConverterBackgroundSize:        "background-size",
	ConverterCornerRadii:           "corner-radii",
	ConverterBorderImageSlice:      "border-image-slice",
	ConverterBorderStrokeStyle:     "border-stroke-style",
	ConverterFont:                  "font",
	ConverterFontSize:              "font-size",
	ConverterFontWeight:            "font-weight",
	ConverterFontPosture:           "font-style",
	ConverterFontFamily:            "font-family",
}

func (c Converter) String() string {
	if c >= 0 && int(c) < len(converterNames) {
		return converterNames[c]
	}
	return "Converter(" + strconv.Itoa(int(c)) + ")"
}

// ParsedValue is the result of interpreting a property value. Raw holds either
// a scalar (Size, Color, string, bool, Enum) or a []*ParsedValue, entries of
// the slice may be nil for omitted optional parts. Parsed values are not
// changed after construction with a single exception: URL placeholders get
// their base filled once stylesheet location is known.
type ParsedValue struct {
	Raw       any
	Converter Converter
	// Lookup marks a reference to another property (looked-up color) which
	// has to be resolved by whoever applies the value
	Lookup bool
}

func New(raw any, conv Converter) *ParsedValue {
	return &ParsedValue{Raw: raw, Converter: conv}
}

// List makes composite value from parts.
func List(conv Converter, parts ...*ParsedValue) *ParsedValue {
	return &ParsedValue{Raw: parts, Converter: conv}
}

func SizeValue(s Size) *ParsedValue { return New(s, ConverterSize) }

func ColorValue(c Color) *ParsedValue { return New(c, ConverterColor) }

func StringValue(s string) *ParsedValue { return New(s, ConverterString) }

func BoolValue(b bool) *ParsedValue { return New(b, ConverterBoolean) }

func EnumValue(e Enum) *ParsedValue { return New(e, ConverterEnum) }

func LookupValue(name string) *ParsedValue {
	return &ParsedValue{Raw: name, Converter: ConverterNone, Lookup: true}
}

// URLValue makes url placeholder: raw url and base which is unknown until
// stylesheet location is known.
func URLValue(raw string) *ParsedValue {
	return List(ConverterURL, StringValue(raw), nil)
}

// Values returns parts of composite value or nil.
func (p *ParsedValue) Values() []*ParsedValue {
	if p == nil {
		return nil
	}
	v, _ := p.Raw.([]*ParsedValue)
	return v
}

func (p *ParsedValue) raw() any {
	if p == nil {
		return nil
	}
	return p.Raw
}

// Part returns i-th part of composite value or nil.
func (p *ParsedValue) Part(i int) *ParsedValue {
	vals := p.Values()
	if i < 0 || i >= len(vals) {
		return nil
	}
	return vals[i]
}

// Size returns raw size, ok is false when value is not a size.
func (p *ParsedValue) Size() (Size, bool) {
	if p == nil {
		return Size{}, false
	}
	s, ok := p.Raw.(Size)
	return s, ok
}

// Text returns raw string, ok is false when value is not a string.
func (p *ParsedValue) Text() (string, bool) {
	if p == nil {
		return "", false
	}
	s, ok := p.Raw.(string)
	return s, ok
}

// IsURL reports whether value is an url placeholder.
func (p *ParsedValue) IsURL() bool {
	return p != nil && p.Converter == ConverterURL && len(p.Values()) == 2
}

// Walk visits value and all nested values depth first. Stops early when fn
// returns false.
func (p *ParsedValue) Walk(fn func(*ParsedValue) bool) bool {
	if p == nil {
		return true
	}
	if !fn(p) {
		return false
	}
	for _, v := range p.Values() {
		if !v.Walk(fn) {
			return false
		}
	}
	return true
}

// ContainsURL reports whether value has any url placeholder inside.
func (p *ParsedValue) ContainsURL() bool {
	found := false
	p.Walk(func(v *ParsedValue) bool {
		found = v.IsURL()
		return !found
	})
	return found
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "infinity"
	case math.IsInf(f, -1):
		return "-infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (p *ParsedValue) write(sb *strings.Builder, fingerprint bool) {
	if p == nil {
		sb.WriteString("null")
		return
	}
	if fingerprint {
		sb.WriteString(p.Converter.String())
		if p.Lookup {
			sb.WriteString("@lookup")
		}
		sb.WriteByte('(')
	}
	switch raw := p.Raw.(type) {
	case []*ParsedValue:
		sep := " "
		if p.Converter == ConverterLayers || fingerprint {
			sep = ", "
		}
		open := !fingerprint && p.Converter != ConverterList && p.Converter != ConverterLayers && p.Converter != ConverterNone &&
			p.Converter != ConverterSequence
		if open {
			sb.WriteString(p.Converter.String())
			sb.WriteByte('(')
			sep = ", "
		}
		for i, v := range raw {
			if i > 0 {
				sb.WriteString(sep)
			}
			v.write(sb, fingerprint)
		}
		if open {
			sb.WriteByte(')')
		}
	case string:
		if fingerprint || p.Lookup || p.Converter != ConverterString {
			sb.WriteString(raw)
		} else {
			sb.WriteString(strconv.Quote(raw))
		}
	case float64:
		sb.WriteString(formatFloat(raw))
	case Size:
		if math.IsInf(raw.Value, 0) {
			sb.WriteString(formatFloat(raw.Value))
		} else {
			sb.WriteString(raw.String())
		}
	case nil:
		sb.WriteString("null")
	default:
		fmt.Fprint(sb, raw)
	}
	if fingerprint {
		sb.WriteByte(')')
	}
}

// String returns readable representation of the value.
func (p *ParsedValue) String() string {
	var sb strings.Builder
	p.write(&sb, false)
	return sb.String()
}

// Fingerprint returns text which is equal for equal parsed values.
func (p *ParsedValue) Fingerprint() string {
	var sb strings.Builder
	p.write(&sb, true)
	return sb.String()
}
