package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color with all components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	Transparent = Color{}
	Black       = Color{A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
)

var ErrInvalidColor = errors.New("invalid color specification")

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// NewColor makes color clamping every component.
func NewColor(r, g, b, a float64) Color {
	return Color{R: clamp(r), G: clamp(g), B: clamp(b), A: clamp(a)}
}

func rgb24(v uint32, a float64) Color {
	return Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
		A: a,
	}
}

// ParseColor understands web color names and hexadecimal notation with either
// "#" or "0x" prefix: 3, 4, 6 or 8 digits, the last digit(s) being alpha for
// 4 and 8 digit forms.
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "transparent" {
		return Transparent, nil
	}
	if v, ok := namedColors[name]; ok {
		return rgb24(v, 1), nil
	}

	var digits string
	switch {
	case strings.HasPrefix(name, "#"):
		digits = name[1:]
	case strings.HasPrefix(name, "0x"):
		digits = name[2:]
	default:
		return Color{}, fmt.Errorf("%w: '%s'", ErrInvalidColor, s)
	}

	hex := func(from, n int) (float64, bool) {
		v, err := strconv.ParseUint(digits[from:from+n], 16, 8)
		return float64(v), err == nil
	}

	var parts []float64
	var scale float64
	switch len(digits) {
	case 3, 4:
		scale = 15
		for i := range len(digits) {
			v, ok := hex(i, 1)
			if !ok {
				return Color{}, fmt.Errorf("%w: '%s'", ErrInvalidColor, s)
			}
			parts = append(parts, v)
		}
	case 6, 8:
		scale = 255
		for i := 0; i < len(digits); i += 2 {
			v, ok := hex(i, 2)
			if !ok {
				return Color{}, fmt.Errorf("%w: '%s'", ErrInvalidColor, s)
			}
			parts = append(parts, v)
		}
	default:
		return Color{}, fmt.Errorf("%w: '%s'", ErrInvalidColor, s)
	}

	c := Color{R: parts[0] / scale, G: parts[1] / scale, B: parts[2] / scale, A: 1}
	if len(parts) == 4 {
		c.A = parts[3] / scale
	}
	return c, nil
}

// IsNamedColor reports whether name is a known web color.
func IsNamedColor(name string) bool {
	name = strings.ToLower(name)
	_, ok := namedColors[name]
	return ok || name == "transparent"
}

// HSB makes color from hue (degrees, any value), saturation and brightness.
func HSB(hue, saturation, brightness, alpha float64) Color {
	r, g, b := hsbToRGB(hue, clamp(saturation), clamp(brightness))
	return Color{R: r, G: g, B: b, A: clamp(alpha)}
}

func hsbToRGB(hue, saturation, brightness float64) (r, g, b float64) {
	hue = math.Mod(math.Mod(hue, 360)+360, 360)
	h := hue / 360
	if saturation == 0 {
		return brightness, brightness, brightness
	}
	h6 := (h - math.Floor(h)) * 6
	f := h6 - math.Floor(h6)
	p := brightness * (1 - saturation)
	q := brightness * (1 - saturation*f)
	t := brightness * (1 - saturation*(1-f))
	switch int(h6) {
	case 0:
		return brightness, t, p
	case 1:
		return q, brightness, p
	case 2:
		return p, brightness, t
	case 3:
		return p, q, brightness
	case 4:
		return t, p, brightness
	default:
		return brightness, p, q
	}
}

// HSB returns hue in degrees, saturation and brightness.
func (c Color) HSB() (hue, saturation, brightness float64) {
	cmax := math.Max(c.R, math.Max(c.G, c.B))
	cmin := math.Min(c.R, math.Min(c.G, c.B))
	brightness = cmax
	if cmax != 0 {
		saturation = (cmax - cmin) / cmax
	}
	if saturation == 0 {
		return 0, saturation, brightness
	}
	rc := (cmax - c.R) / (cmax - cmin)
	gc := (cmax - c.G) / (cmax - cmin)
	bc := (cmax - c.B) / (cmax - cmin)
	switch {
	case c.R == cmax:
		hue = bc - gc
	case c.G == cmax:
		hue = 2 + rc - bc
	default:
		hue = 4 + gc - rc
	}
	hue /= 6
	if hue < 0 {
		hue++
	}
	return hue * 360, saturation, brightness
}

// DeriveColor shifts hue and scales saturation, brightness and opacity.
func (c Color) DeriveColor(hueShift, saturationFactor, brightnessFactor, opacityFactor float64) Color {
	h, s, b := c.HSB()
	if b == 0 && brightnessFactor > 1 {
		b = 0.05
	}
	h = math.Mod(math.Mod(h+hueShift, 360)+360, 360)
	return HSB(h, clamp(s*saturationFactor), clamp(b*brightnessFactor), clamp(c.A*opacityFactor))
}

// Brightness is perceived brightness of the color.
func (c Color) Brightness() float64 {
	return math.Sqrt(c.R*c.R*0.241 + c.G*c.G*0.691 + c.B*c.B*0.068)
}

// Derive makes color brighter (positive) or darker (negative), brightness is
// a fraction in [-1, 1]. The shift is adjusted by the apparent brightness of
// the color so that results look similar for light and dark colors.
func (c Color) Derive(brightness float64) Color {
	base := c.Brightness()
	calc := brightness
	if brightness > 0 {
		switch {
		case base > 0.85:
			calc *= 1.6
		case base > 0.6:
		case base > 0.5:
			calc *= 0.9
		case base > 0.4:
			calc *= 0.8
		case base > 0.3:
			calc *= 0.7
		default:
			calc *= 0.6
		}
	} else if base < 0.2 {
		calc *= 0.6
	}
	calc = math.Max(-1, math.Min(1, calc))

	h, s, b := c.HSB()
	if calc > 0 {
		s *= 1 - calc
		b += (1 - b) * calc
	} else {
		b *= calc + 1
	}
	return HSB(math.Trunc(h), clamp(s), clamp(b), c.A)
}

// Interpolate returns color at position t in [0, 1] between c and to.
func (c Color) Interpolate(to Color, t float64) Color {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return to
	}
	return Color{
		R: c.R + (to.R-c.R)*t,
		G: c.G + (to.G-c.G)*t,
		B: c.B + (to.B-c.B)*t,
		A: c.A + (to.A-c.A)*t,
	}
}

// Stop is a color stop with offset as fraction of the gradient length.
type Stop struct {
	Offset float64
	Color  Color
}

// Ladder picks a color from stops based on the brightness of c.
func Ladder(c Color, stops []Stop) Color {
	_, _, b := c.HSB()
	var prev *Stop
	for i := range stops {
		stop := &stops[i]
		if b <= stop.Offset {
			if prev == nil {
				return stop.Color
			}
			return prev.Color.Interpolate(stop.Color, (b-prev.Offset)/(stop.Offset-prev.Offset))
		}
		prev = stop
	}
	if prev == nil {
		return c
	}
	return prev.Color
}

func component(v float64) int {
	return int(math.Round(clamp(v) * 255))
}

// String formats color as "#rrggbb" or "#rrggbbaa" when not opaque.
func (c Color) String() string {
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", component(c.R), component(c.G), component(c.B))
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", component(c.R), component(c.G), component(c.B), component(c.A))
}
