package grammar

import (
	"math"
	"strconv"
	"strings"

	"fxcss/css/lexer"
	"fxcss/css/term"
	"fxcss/css/value"
)

var units = map[lexer.Kind]struct {
	unit value.SizeUnit
	trim int
}{
	lexer.NumberToken:     {value.SizeUnitPx, 0},
	lexer.PercentageToken: {value.SizeUnitPercent, 1},
	lexer.EmsToken:        {value.SizeUnitEm, 2},
	lexer.ExsToken:        {value.SizeUnitEx, 2},
	lexer.PxToken:         {value.SizeUnitPx, 2},
	lexer.CmToken:         {value.SizeUnitCm, 2},
	lexer.MmToken:         {value.SizeUnitMm, 2},
	lexer.InToken:         {value.SizeUnitIn, 2},
	lexer.PtToken:         {value.SizeUnitPt, 2},
	lexer.PcToken:         {value.SizeUnitPc, 2},
	lexer.DegToken:        {value.SizeUnitDeg, 3},
	lexer.GradToken:       {value.SizeUnitGrad, 4},
	lexer.RadToken:        {value.SizeUnitRad, 3},
	lexer.TurnToken:       {value.SizeUnitTurn, 4},
	lexer.SToken:          {value.SizeUnitS, 1},
	lexer.MsToken:         {value.SizeUnitMs, 2},
}

// size converts numeric token to size.
func (r *run) size(i term.Index) (value.Size, error) {
	tok := r.a.Token(i)
	u, ok := units[tok.Kind]
	if !ok || len(tok.Text) <= u.trim {
		return value.Size{}, r.errorf(i, "Expected '<number>'")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(tok.Text[:len(tok.Text)-u.trim]), 64)
	if err != nil {
		return value.Size{}, r.errorf(i, "Expected '<number>'")
	}
	return value.Size{Value: f, Unit: u.unit}, nil
}

// parseSize takes size or identifier, the latter is a lookup.
func (r *run) parseSize(i term.Index) (*value.ParsedValue, error) {
	if !r.isSize(i) {
		return nil, r.errorf(i, "Expected '<size>'")
	}
	if r.a.Kind(i) == lexer.IdentToken {
		return value.LookupValue(r.a.Token(i).Value), nil
	}
	s, err := r.size(i)
	if err != nil {
		return nil, err
	}
	return value.SizeValue(s), nil
}

func (r *run) sizeSeries(root term.Index) (*value.ParsedValue, error) {
	var sizes []*value.ParsedValue
	for t := root; t != term.Nil; t = r.a.Series(t) {
		if !r.a.Kind(t).IsSize() {
			return nil, r.errorf(root, "expected series of <size>")
		}
		s, err := r.size(t)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, value.SizeValue(s))
	}
	return value.List(value.ConverterSequence, sizes...), nil
}

func (r *run) parseColor(i term.Index) (*value.ParsedValue, error) {
	switch r.a.Kind(i) {
	case lexer.IdentToken, lexer.HashToken, lexer.FunctionToken:
		return r.parse(i)
	}
	return nil, r.errorf(i, "Expected '<color>'")
}

// parse is the generic grammar shared by all properties.
func (r *run) parse(root term.Index) (*value.ParsedValue, error) {
	tok := r.a.Token(root)
	switch k := tok.Kind; {
	case k.IsSize():
		if r.a.Series(root) != term.Nil {
			return r.sizeSeries(root)
		}
		s, err := r.size(root)
		if err != nil {
			return nil, err
		}
		return value.SizeValue(s), nil
	case k.IsTime():
		s, err := r.size(root)
		if err != nil {
			return nil, err
		}
		return value.New(s, value.ConverterDuration), nil
	case k == lexer.StringToken, k == lexer.IdentToken:
		return r.word(root)
	case k == lexer.HashToken:
		c, err := value.ParseColor(tok.Text)
		if err != nil {
			return nil, r.errorf(root, "%v", err)
		}
		return value.ColorValue(c), nil
	case k == lexer.FunctionToken:
		return r.function(root)
	case k == lexer.URLToken:
		return r.uri(root)
	}
	return nil, r.errorf(root, "Unknown token type: '%s'", tok.Kind)
}

func (r *run) word(root term.Index) (*value.ParsedValue, error) {
	tok := r.a.Token(root)
	isIdent := tok.Kind == lexer.IdentToken
	text := strings.ToLower(tok.Value)
	switch {
	case text == "ladder":
		return r.ladderDeprecated(root)
	case text == "linear" && r.a.Series(root) != term.Nil:
		return r.linearDeprecated(root)
	case text == "radial" && r.a.Series(root) != term.Nil:
		return r.radialDeprecated(root)
	case text == "infinity":
		return value.SizeValue(value.Px(math.MaxFloat64)), nil
	case text == "indefinite":
		return value.New(value.Px(math.Inf(1)), value.ConverterDuration), nil
	case text == "true":
		return value.BoolValue(true), nil
	case text == "false":
		return value.BoolValue(false), nil
	}
	if isIdent && r.in.Known(text) {
		return value.LookupValue(text), nil
	}
	if c, err := value.ParseColor(tok.Value); err == nil {
		return value.ColorValue(c), nil
	}
	if isIdent {
		return value.LookupValue(tok.Value), nil
	}
	return value.StringValue(tok.Value), nil
}

// function dispatches by the name prefix, so rgba goes to rgb and so on.
func (r *run) function(root term.Index) (*value.ParsedValue, error) {
	fn := r.text(root)
	switch {
	case strings.HasPrefix(fn, "rgb"):
		return r.rgb(root)
	case strings.HasPrefix(fn, "hsb"):
		return r.hsb(root)
	case strings.HasPrefix(fn, "derive"):
		return r.derive(root)
	case strings.HasPrefix(fn, "innershadow"):
		return r.shadow(root, value.ConverterInnerShadow)
	case strings.HasPrefix(fn, "dropshadow"):
		return r.shadow(root, value.ConverterDropShadow)
	case strings.HasPrefix(fn, "linear-gradient"):
		return r.linearGradient(root)
	case strings.HasPrefix(fn, "radial-gradient"):
		return r.radialGradient(root)
	case strings.HasPrefix(fn, "image-pattern"):
		return r.imagePattern(root)
	case strings.HasPrefix(fn, "repeating-image-pattern"):
		return r.repeatingImagePattern(root)
	case strings.HasPrefix(fn, "ladder"):
		return r.ladder(root)
	case strings.HasPrefix(fn, "region"):
		return r.region(root)
	}
	return nil, r.errorf(root, "Unexpected function '%s'", r.a.Token(root).Text)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

// rgb handles rgb(r, g, b) and rgba(r, g, b, a), channels are either all
// numbers in 0..255 or all percentages.
func (r *run) rgb(root term.Index) (*value.ParsedValue, error) {
	var ch [3]term.Index
	prev, arg := root, r.a.FirstArg(root)
	for n := range ch {
		if arg == term.Nil {
			return nil, r.errorf(prev, "Expected '<number>' or '<percentage>'")
		}
		if k := r.a.Kind(arg); k != lexer.NumberToken && k != lexer.PercentageToken {
			return nil, r.errorf(arg, "Expected '<number>' or '<percentage>'")
		}
		ch[n] = arg
		prev, arg = arg, r.a.NextArgOf(arg)
	}
	alpha := 1.0
	if arg != term.Nil {
		if r.a.Kind(arg) != lexer.NumberToken {
			return nil, r.errorf(arg, "Expected '<number>'")
		}
		s, err := r.size(arg)
		if err != nil {
			return nil, err
		}
		alpha = clamp(s.Value)
	}

	kind := r.a.Kind(ch[0])
	if r.a.Kind(ch[1]) != kind || r.a.Kind(ch[2]) != kind {
		return nil, r.errorf(prev, "Argument type mistmatch")
	}
	div := 255.0
	if kind == lexer.PercentageToken {
		div = 100
	}
	var rgb [3]float64
	for n, i := range ch {
		s, err := r.size(i)
		if err != nil {
			return nil, err
		}
		rgb[n] = clamp(s.Value / div)
	}
	return value.ColorValue(value.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}), nil
}

// hsb handles hsb(h, s%, b%) and hsba(h, s%, b%, a).
func (r *run) hsb(root term.Index) (*value.ParsedValue, error) {
	h := r.a.FirstArg(root)
	if h == term.Nil || r.a.Kind(h) != lexer.NumberToken {
		return nil, r.errorf(pick(h, root), "Expected '<number>'")
	}
	s := r.a.NextArgOf(h)
	if s == term.Nil || r.a.Kind(s) != lexer.PercentageToken {
		return nil, r.errorf(pick(s, h), "Expected '<percent>'")
	}
	b := r.a.NextArgOf(s)
	if b == term.Nil || r.a.Kind(b) != lexer.PercentageToken {
		return nil, r.errorf(pick(b, s), "Expected '<percent>'")
	}
	alpha := 1.0
	if a := r.a.NextArgOf(b); a != term.Nil {
		if r.a.Kind(a) != lexer.NumberToken {
			return nil, r.errorf(a, "Expected '<number>'")
		}
		av, err := r.size(a)
		if err != nil {
			return nil, err
		}
		alpha = clamp(av.Value)
	}
	hv, err := r.size(h)
	if err != nil {
		return nil, err
	}
	sv, err := r.size(s)
	if err != nil {
		return nil, err
	}
	bv, err := r.size(b)
	if err != nil {
		return nil, err
	}
	return value.ColorValue(value.HSB(hv.Value, clamp(sv.Value/100), clamp(bv.Value/100), alpha)), nil
}

// pick returns i unless it is Nil.
func pick(i, fallback term.Index) term.Index {
	if i == term.Nil {
		return fallback
	}
	return i
}

func (r *run) derive(root term.Index) (*value.ParsedValue, error) {
	arg := r.a.FirstArg(root)
	if arg == term.Nil {
		return nil, r.errorf(root, "Expected '<color>'")
	}
	c, err := r.parseColor(arg)
	if err != nil {
		return nil, err
	}
	next := r.a.NextArgOf(arg)
	if next == term.Nil {
		return nil, r.errorf(arg, "Expected '<percent>'")
	}
	brightness, err := r.parseSize(next)
	if err != nil {
		return nil, err
	}
	return value.List(value.ConverterDeriveColor, c, brightness), nil
}

func (r *run) blurType(i term.Index) (*value.ParsedValue, error) {
	bt, ok := value.ParseBlurType(r.keyword(i))
	if !ok {
		return nil, r.errorf(i, "Expected 'gaussian', 'one-pass-box', 'two-pass-box', or 'three-pass-box'")
	}
	return value.EnumValue(bt), nil
}

// shadow handles innershadow(blur, color, radius, choke, x, y) and
// dropshadow(blur, color, radius, spread, x, y).
func (r *run) shadow(root term.Index, conv value.Converter) (*value.ParsedValue, error) {
	arg := r.a.FirstArg(root)
	if arg == term.Nil {
		return nil, r.errorf(root, "Expected '<blur-type>'")
	}
	blur, err := r.blurType(arg)
	if err != nil {
		return nil, err
	}
	prev := arg
	if arg = r.a.NextArgOf(arg); arg == term.Nil {
		return nil, r.errorf(prev, "Expected '<color>'")
	}
	c, err := r.parseColor(arg)
	if err != nil {
		return nil, err
	}
	values := []*value.ParsedValue{blur, c}
	for range 4 {
		prev = arg
		if arg = r.a.NextArgOf(arg); arg == term.Nil {
			return nil, r.errorf(prev, "Expected '<number>'")
		}
		v, err := r.parseSize(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return value.List(conv, values...), nil
}

func (r *run) region(root term.Index) (*value.ParsedValue, error) {
	arg := r.a.FirstArg(root)
	if arg == term.Nil || r.a.Kind(arg) != lexer.StringToken || r.a.Token(arg).Value == "" {
		return nil, r.errorf(root, `Expected 'region("<styleclass-or-id-string>")'`)
	}
	return value.StringValue(RegionURLPrefix + r.a.Token(arg).Value), nil
}

// RegionURLPrefix marks url strings which name another region by style class
// or id instead of an image.
const RegionURLPrefix = "SPECIAL-REGION-URL:"

func (r *run) uri(i term.Index) (*value.ParsedValue, error) {
	tok := r.a.Token(i)
	if tok.Kind != lexer.URLToken || tok.Value == "" {
		return nil, r.errorf(i, `Expected 'url("<uri-string>")'`)
	}
	return value.URLValue(tok.Value), nil
}

func (r *run) uriLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, (*run).uri)
}

// layers applies fn to every layer.
func (r *run) layers(root term.Index, fn func(*run, term.Index) (*value.ParsedValue, error)) (*value.ParsedValue, error) {
	var out []*value.ParsedValue
	for l := root; l != term.Nil; l = r.a.NextLayer(l) {
		v, err := fn(r, l)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return value.List(value.ConverterLayers, out...), nil
}

func (r *run) paintLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, func(r *run, l term.Index) (*value.ParsedValue, error) {
		if r.a.Token(l).Text == "" {
			return nil, r.errorf(l, "Expected '<paint>'")
		}
		return r.parse(l)
	})
}
