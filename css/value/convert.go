package value

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"
)

var (
	ErrUnresolvedLookup = errors.New("lookup has not been resolved")
	ErrMalformedValue   = errors.New("malformed parsed value")
)

// URLResolver turns url found in a stylesheet into absolute reference.
type URLResolver interface {
	ResolveURL(raw, base string) (string, error)
}

// URLResolverFunc adapts function to URLResolver.
type URLResolverFunc func(raw, base string) (string, error)

func (f URLResolverFunc) ResolveURL(raw, base string) (string, error) { return f(raw, base) }

// DefaultResolver resolves references as RFC 3986 does.
var DefaultResolver URLResolver = URLResolverFunc(func(raw, base string) (string, error) {
	if base == "" {
		return raw, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("bad base url '%s': %w", base, err)
	}
	r, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("bad url '%s': %w", raw, err)
	}
	return b.ResolveReference(r).String(), nil
})

// Context carries everything conversion may depend on.
type Context struct {
	Font     *Font
	Resolver URLResolver
}

func (c *Context) font() *Font {
	if c == nil {
		return nil
	}
	return c.Font
}

func (c *Context) resolver() URLResolver {
	if c == nil || c.Resolver == nil {
		return DefaultResolver
	}
	return c.Resolver
}

// Insets are distances from the four sides of a box.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Margins are insets which may be proportional.
type Margins struct {
	Insets
	Proportional bool
}

type Point struct {
	X, Y float64
}

type LinearGradient struct {
	StartX, StartY, EndX, EndY float64
	Proportional               bool
	Cycle                      CycleMethod
	Stops                      []Stop
}

type RadialGradient struct {
	FocusAngle, FocusDistance float64
	CenterX, CenterY, Radius  float64
	Proportional              bool
	Cycle                     CycleMethod
	Stops                     []Stop
}

type ImagePattern struct {
	URL                 string
	X, Y, Width, Height float64
	Proportional        bool
	Repeating           bool
}

type Shadow struct {
	Inner   bool
	Blur    BlurType
	Color   Color
	Radius  float64
	Spread  float64 // choke for inner shadow
	OffsetX float64
	OffsetY float64
}

type BackgroundPosition struct {
	HorizontalSide         Side
	Horizontal             float64
	HorizontalProportional bool
	VerticalSide           Side
	Vertical               float64
	VerticalProportional   bool
}

type RepeatStyle struct {
	X, Y BackgroundRepeat
}

// Auto is the width or height of background size computed from the image.
const Auto = -1.0

type BackgroundSize struct {
	Width, Height                         float64
	WidthProportional, HeightProportional bool
	Cover, Contain                        bool
}

// CornerRadii are horizontal and vertical radii of the four corners in order
// top-left, top-right, bottom-right, bottom-left.
type CornerRadii struct {
	Horizontal             [4]float64
	Vertical               [4]float64
	HorizontalProportional [4]bool
	VerticalProportional   [4]bool
}

type BorderImageSlice struct {
	Widths       Insets
	Proportional bool
	Filled       bool
}

type BorderStrokeStyle struct {
	Style      BorderStyle
	DashArray  []float64
	DashOffset float64
	Type       StrokeType
	LineJoin   StrokeLineJoin
	MiterLimit float64
	LineCap    StrokeLineCap
}

type FontSpec struct {
	Family  string
	Size    float64 // points
	Weight  FontWeight
	Posture FontPosture
}

func malformed(p *ParsedValue) error {
	return fmt.Errorf("%w: %s", ErrMalformedValue, p.Fingerprint())
}

// Convert produces final typed value.
func (p *ParsedValue) Convert(ctx *Context) (any, error) {
	if p == nil {
		return nil, nil
	}
	if p.Lookup {
		return nil, fmt.Errorf("%w: '%v'", ErrUnresolvedLookup, p.Raw)
	}

	switch p.Converter {
	case ConverterNone, ConverterList, ConverterLayers:
		vals, ok := p.Raw.([]*ParsedValue)
		if !ok {
			return p.Raw, nil
		}
		out := make([]any, len(vals))
		for i, v := range vals {
			var err error
			if out[i], err = v.Convert(ctx); err != nil {
				return nil, err
			}
		}
		return out, nil
	case ConverterSize:
		return p.pixels(ctx)
	case ConverterSequence:
		out := make([]float64, len(p.Values()))
		for i, v := range p.Values() {
			var err error
			if out[i], err = v.pixels(ctx); err != nil {
				return nil, err
			}
		}
		return out, nil
	case ConverterInsets:
		ins, _, err := p.insets(ctx)
		return ins, err
	case ConverterMargins:
		ins, prop, err := p.insets(ctx)
		return Margins{Insets: ins, Proportional: prop}, err
	case ConverterDuration:
		s, ok := p.Size()
		if !ok {
			return nil, malformed(p)
		}
		ms := s.Pixels(1, nil)
		if math.IsInf(ms, 1) {
			return time.Duration(math.MaxInt64), nil
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	case ConverterBoolean, ConverterString, ConverterEnum, ConverterFontFamily, ConverterFontWeight, ConverterFontPosture:
		return p.Raw, nil
	case ConverterURL:
		return p.url(ctx)
	case ConverterColor, ConverterDeriveColor, ConverterLadder:
		return p.color(ctx)
	case ConverterStop:
		return p.stop(ctx)
	case ConverterPoint:
		x, err := p.Part(0).pixels(ctx)
		if err != nil {
			return nil, err
		}
		y, err := p.Part(1).pixels(ctx)
		return Point{X: x, Y: y}, err
	case ConverterLinearGradient:
		return p.linearGradient(ctx)
	case ConverterRadialGradient:
		return p.radialGradient(ctx)
	case ConverterImagePattern, ConverterRepeatingImagePattern:
		return p.imagePattern(ctx)
	case ConverterInnerShadow, ConverterDropShadow:
		return p.shadow(ctx)
	case ConverterBackgroundPosition:
		return p.backgroundPosition(ctx)
	case ConverterRepeatStyle:
		x, ok1 := p.Part(0).raw().(BackgroundRepeat)
		y, ok2 := p.Part(1).raw().(BackgroundRepeat)
		if !ok1 || !ok2 {
			return nil, malformed(p)
		}
		return RepeatStyle{X: x, Y: y}, nil
	case ConverterBackgroundSize:
		return p.backgroundSize(ctx)
	case ConverterCornerRadii:
		return p.cornerRadii(ctx)
	case ConverterBorderImageSlice:
		ins, prop, err := p.Part(0).insets(ctx)
		if err != nil {
			return nil, err
		}
		fill, _ := p.Part(1).raw().(bool)
		return BorderImageSlice{Widths: ins, Proportional: prop, Filled: fill}, nil
	case ConverterBorderStrokeStyle:
		return p.borderStrokeStyle(ctx)
	case ConverterFont:
		return p.font(ctx)
	case ConverterFontSize:
		return p.fontSize(ctx)
	}
	return nil, malformed(p)
}

func (p *ParsedValue) pixels(ctx *Context) (float64, error) {
	s, ok := p.Size()
	if !ok {
		if p != nil && p.Lookup {
			return 0, fmt.Errorf("%w: '%v'", ErrUnresolvedLookup, p.Raw)
		}
		return 0, malformed(p)
	}
	return s.Pixels(1, ctx.font()), nil
}

func (p *ParsedValue) insets(ctx *Context) (Insets, bool, error) {
	vals := p.Values()
	if len(vals) != 4 {
		return Insets{}, false, malformed(p)
	}
	var out [4]float64
	prop := false
	for i, v := range vals {
		px, err := v.pixels(ctx)
		if err != nil {
			return Insets{}, false, err
		}
		if s, _ := v.Size(); s.Unit == SizeUnitPercent {
			prop = true
		}
		out[i] = px
	}
	return Insets{Top: out[0], Right: out[1], Bottom: out[2], Left: out[3]}, prop, nil
}

func (p *ParsedValue) url(ctx *Context) (string, error) {
	raw, ok := p.Part(0).Text()
	if !ok {
		return "", malformed(p)
	}
	base, _ := p.Part(1).Text()
	return ctx.resolver().ResolveURL(raw, base)
}

func (p *ParsedValue) color(ctx *Context) (Color, error) {
	if p == nil {
		return Color{}, malformed(p)
	}
	if p.Lookup {
		return Color{}, fmt.Errorf("%w: '%v'", ErrUnresolvedLookup, p.Raw)
	}
	switch p.Converter {
	case ConverterColor:
		c, ok := p.Raw.(Color)
		if !ok {
			return Color{}, malformed(p)
		}
		return c, nil
	case ConverterDeriveColor:
		c, err := p.Part(0).color(ctx)
		if err != nil {
			return Color{}, err
		}
		s, ok := p.Part(1).Size()
		if !ok {
			return Color{}, malformed(p)
		}
		return c.Derive(s.Pixels(1, ctx.font())), nil
	case ConverterLadder:
		c, err := p.Part(0).color(ctx)
		if err != nil {
			return Color{}, err
		}
		stops, err := stops(ctx, p.Values()[1:])
		if err != nil {
			return Color{}, err
		}
		return Ladder(c, stops), nil
	}
	return Color{}, malformed(p)
}

func (p *ParsedValue) stop(ctx *Context) (Stop, error) {
	offset, err := p.Part(0).pixels(ctx)
	if err != nil {
		return Stop{}, err
	}
	c, err := p.Part(1).color(ctx)
	if err != nil {
		return Stop{}, err
	}
	return Stop{Offset: offset, Color: c}, nil
}

func stops(ctx *Context, vals []*ParsedValue) ([]Stop, error) {
	out := make([]Stop, 0, len(vals))
	for _, v := range vals {
		s, err := v.stop(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func allPercent(vals ...*ParsedValue) bool {
	for _, v := range vals {
		if s, ok := v.Size(); !ok || s.Unit != SizeUnitPercent {
			return false
		}
	}
	return true
}

func (p *ParsedValue) floats(ctx *Context, n int) ([]float64, error) {
	vals := p.Values()
	if len(vals) < n {
		return nil, malformed(p)
	}
	out := make([]float64, n)
	for i := range n {
		var err error
		if out[i], err = vals[i].pixels(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *ParsedValue) cycle(i int) CycleMethod {
	c, _ := p.Part(i).raw().(CycleMethod)
	return c
}

func (p *ParsedValue) linearGradient(ctx *Context) (LinearGradient, error) {
	f, err := p.floats(ctx, 4)
	if err != nil {
		return LinearGradient{}, err
	}
	st, err := stops(ctx, p.Values()[5:])
	if err != nil {
		return LinearGradient{}, err
	}
	return LinearGradient{
		StartX: f[0], StartY: f[1], EndX: f[2], EndY: f[3],
		Proportional: allPercent(p.Values()[:4]...),
		Cycle:        p.cycle(4),
		Stops:        st,
	}, nil
}

func (p *ParsedValue) radialGradient(ctx *Context) (RadialGradient, error) {
	vals := p.Values()
	if len(vals) < 6 {
		return RadialGradient{}, malformed(p)
	}
	g := RadialGradient{Cycle: p.cycle(5), Proportional: allPercent(vals[2], vals[3], vals[4])}
	var err error
	if vals[0] != nil {
		if g.FocusAngle, err = vals[0].pixels(ctx); err != nil {
			return g, err
		}
	}
	if vals[1] != nil {
		if g.FocusDistance, err = vals[1].pixels(ctx); err != nil {
			return g, err
		}
	}
	// omitted center is the middle of the shape
	g.CenterX, g.CenterY = 0.5, 0.5
	if vals[2] != nil {
		if g.CenterX, err = vals[2].pixels(ctx); err != nil {
			return g, err
		}
	}
	if vals[3] != nil {
		if g.CenterY, err = vals[3].pixels(ctx); err != nil {
			return g, err
		}
	}
	if vals[4] != nil {
		if g.Radius, err = vals[4].pixels(ctx); err != nil {
			return g, err
		}
	}
	g.Stops, err = stops(ctx, vals[6:])
	return g, err
}

func (p *ParsedValue) imagePattern(ctx *Context) (ImagePattern, error) {
	u, err := p.Part(0).url(ctx)
	if err != nil {
		return ImagePattern{}, err
	}
	ip := ImagePattern{URL: u, Width: 1, Height: 1, Proportional: true, Repeating: p.Converter == ConverterRepeatingImagePattern}
	if len(p.Values()) < 5 {
		return ip, nil
	}
	f := make([]float64, 4)
	for i := range f {
		if f[i], err = p.Part(i + 1).pixels(ctx); err != nil {
			return ip, err
		}
	}
	ip.X, ip.Y, ip.Width, ip.Height = f[0], f[1], f[2], f[3]
	if prop, ok := p.Part(5).raw().(bool); ok {
		ip.Proportional = prop
	}
	return ip, nil
}

func (p *ParsedValue) shadow(ctx *Context) (Shadow, error) {
	blur, ok := p.Part(0).raw().(BlurType)
	if !ok {
		return Shadow{}, malformed(p)
	}
	c, err := p.Part(1).color(ctx)
	if err != nil {
		return Shadow{}, err
	}
	f := make([]float64, 4)
	for i := range f {
		if f[i], err = p.Part(i + 2).pixels(ctx); err != nil {
			return Shadow{}, err
		}
	}
	return Shadow{
		Inner:   p.Converter == ConverterInnerShadow,
		Blur:    blur,
		Color:   c,
		Radius:  f[0],
		Spread:  f[1],
		OffsetX: f[2],
		OffsetY: f[3],
	}, nil
}

func (p *ParsedValue) backgroundPosition(ctx *Context) (BackgroundPosition, error) {
	vals := p.Values()
	if len(vals) != 4 {
		return BackgroundPosition{}, malformed(p)
	}
	var f [4]float64
	var pct [4]bool
	for i, v := range vals {
		var err error
		if f[i], err = v.pixels(ctx); err != nil {
			return BackgroundPosition{}, err
		}
		s, _ := v.Size()
		pct[i] = s.Unit == SizeUnitPercent
	}
	top, right, bottom, left := f[0], f[1], f[2], f[3]

	bp := BackgroundPosition{HorizontalSide: SideLeft, Horizontal: left, HorizontalProportional: pct[3],
		VerticalSide: SideTop, Vertical: top, VerticalProportional: pct[0]}
	if left == 0 && right != 0 {
		bp.HorizontalSide, bp.Horizontal, bp.HorizontalProportional = SideRight, right, pct[1]
	}
	if top == 0 && bottom != 0 {
		bp.VerticalSide, bp.Vertical, bp.VerticalProportional = SideBottom, bottom, pct[2]
	}
	return bp, nil
}

func (p *ParsedValue) backgroundSize(ctx *Context) (BackgroundSize, error) {
	vals := p.Values()
	if len(vals) != 4 {
		return BackgroundSize{}, malformed(p)
	}
	bs := BackgroundSize{Width: Auto, Height: Auto}
	var err error
	if vals[0] != nil {
		if bs.Width, err = vals[0].pixels(ctx); err != nil {
			return bs, err
		}
		bs.WidthProportional = allPercent(vals[0])
	}
	if vals[1] != nil {
		if bs.Height, err = vals[1].pixels(ctx); err != nil {
			return bs, err
		}
		bs.HeightProportional = allPercent(vals[1])
	}
	bs.Cover, _ = vals[2].raw().(bool)
	bs.Contain, _ = vals[3].raw().(bool)
	return bs, nil
}

func (p *ParsedValue) cornerRadii(ctx *Context) (CornerRadii, error) {
	var cr CornerRadii
	h, v := p.Part(0).Values(), p.Part(1).Values()
	if len(h) != 4 || len(v) != 4 {
		return cr, malformed(p)
	}
	for i := range 4 {
		var err error
		if cr.Horizontal[i], err = h[i].pixels(ctx); err != nil {
			return cr, err
		}
		if cr.Vertical[i], err = v[i].pixels(ctx); err != nil {
			return cr, err
		}
		cr.HorizontalProportional[i] = allPercent(h[i])
		cr.VerticalProportional[i] = allPercent(v[i])
	}
	return cr, nil
}

func (p *ParsedValue) borderStrokeStyle(ctx *Context) (BorderStrokeStyle, error) {
	vals := p.Values()
	if len(vals) != 6 {
		return BorderStrokeStyle{}, malformed(p)
	}
	bs := BorderStrokeStyle{Style: BorderStyleSolid, Type: StrokeTypeInside, MiterLimit: 10}
	switch dash := vals[0]; {
	case dash == nil:
	case dash.Converter == ConverterSequence:
		seq, err := dash.Convert(ctx)
		if err != nil {
			return bs, err
		}
		bs.Style, bs.DashArray = BorderStyleDashed, seq.([]float64)
	default:
		st, ok := dash.Raw.(BorderStyle)
		if !ok {
			return bs, malformed(p)
		}
		bs.Style = st
	}
	var err error
	if vals[1] != nil {
		if bs.DashOffset, err = vals[1].pixels(ctx); err != nil {
			return bs, err
		}
	}
	if vals[2] != nil {
		bs.Type, _ = vals[2].Raw.(StrokeType)
	}
	if vals[3] != nil {
		bs.LineJoin, _ = vals[3].Raw.(StrokeLineJoin)
	}
	if vals[4] != nil {
		if bs.MiterLimit, err = vals[4].pixels(ctx); err != nil {
			return bs, err
		}
	}
	if vals[5] != nil {
		bs.LineCap, _ = vals[5].Raw.(StrokeLineCap)
	}
	return bs, nil
}

func (p *ParsedValue) fontSize(ctx *Context) (float64, error) {
	s, ok := p.Size()
	if !ok {
		return 0, malformed(p)
	}
	if s.Unit == SizeUnitPercent {
		return fontPoints(ctx.font()) * s.Value / 100, nil
	}
	return s.Points(1, ctx.font()), nil
}

func (p *ParsedValue) font(ctx *Context) (FontSpec, error) {
	vals := p.Values()
	if len(vals) != 4 {
		return FontSpec{}, malformed(p)
	}
	fs := FontSpec{Family: DefaultFont.Family, Size: fontPoints(ctx.font()), Weight: FontWeightNormal}
	if ctx.font() != nil && ctx.font().Family != "" {
		fs.Family = ctx.font().Family
	}
	if fam, ok := vals[0].Text(); ok {
		fs.Family = fam
	}
	if vals[1] != nil {
		var err error
		if fs.Size, err = vals[1].fontSize(ctx); err != nil {
			return fs, err
		}
	}
	if vals[2] != nil {
		fs.Weight, _ = vals[2].Raw.(FontWeight)
	}
	if vals[3] != nil {
		fs.Posture, _ = vals[3].Raw.(FontPosture)
	}
	return fs, nil
}
