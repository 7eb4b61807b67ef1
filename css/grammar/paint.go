package grammar

import (
	"strings"

	"fxcss/css/lexer"
	"fxcss/css/term"
	"fxcss/css/value"
)

// ladder handles ladder(color, stop, stop...).
func (r *run) ladder(root term.Index) (*value.ParsedValue, error) {
	arg := r.a.FirstArg(root)
	if arg == term.Nil {
		return nil, r.errorf(root, "Expected '<color>'")
	}
	c, err := r.parse(arg)
	if err != nil {
		return nil, err
	}
	next := r.a.NextArgOf(arg)
	if next == term.Nil {
		return nil, r.errorf(arg, "Expected '<color-stop>[, <color-stop>]+'")
	}
	stops, err := r.colorStops(next)
	if err != nil {
		return nil, err
	}
	return value.List(value.ConverterLadder, append([]*value.ParsedValue{c}, stops...)...), nil
}

// ladderDeprecated handles "ladder color stops (n, color)+".
func (r *run) ladderDeprecated(root term.Index) (*value.ParsedValue, error) {
	r.deprecated(root, "ladder")

	t := r.a.Series(root)
	if t == term.Nil {
		return nil, r.errorf(root, "Expected '<color>'")
	}
	c, err := r.parse(t)
	if err != nil {
		return nil, err
	}
	t, err = r.expectKeyword(t, "stops")
	if err != nil {
		return nil, err
	}
	stops, last, rest, err := r.stopSeries(t)
	if err != nil {
		return nil, err
	}
	r.patch(root, last, rest)
	return value.List(value.ConverterLadder, append([]*value.ParsedValue{c}, stops...)...), nil
}

// expectKeyword checks that series term after prev is the keyword and returns
// the term following it.
func (r *run) expectKeyword(prev term.Index, kw string) (term.Index, error) {
	t := r.a.Series(prev)
	if t == term.Nil {
		return term.Nil, r.errorf(prev, "Expected '%s'", kw)
	}
	if r.keyword(t) != kw {
		return term.Nil, r.errorf(t, "Expected '%s'", kw)
	}
	next := r.a.Series(t)
	if next == term.Nil {
		return term.Nil, r.errorf(t, "Expected '(<number>, <number>)'")
	}
	return next, nil
}

// stopSeries parses parenthesized stops starting at t. It returns the last
// stop and the term following the stops, if any.
func (r *run) stopSeries(t term.Index) (stops []*value.ParsedValue, last, rest term.Index, err error) {
	for ; t != term.Nil && r.a.Kind(t) == lexer.LParenToken; t = r.a.Series(t) {
		s, err := r.stop(t)
		if err != nil {
			return nil, term.Nil, term.Nil, err
		}
		stops = append(stops, s)
		last = t
	}
	if len(stops) == 0 {
		return nil, term.Nil, term.Nil, r.errorf(t, "Expected '('")
	}
	return stops, last, t, nil
}

// patch re-points root past the terms consumed by a deprecated paint so
// layered parsing continues after them.
func (r *run) patch(root, last, rest term.Index) {
	if rest != term.Nil {
		r.a.SetSeries(root, rest)
		return
	}
	r.a.SetSeries(root, term.Nil)
	r.a.SetLayer(root, r.a.Layer(last))
}

// patchCycle is patch for deprecated gradients which may end with a cycle
// method keyword.
func (r *run) patchCycle(root, last, rest term.Index) *value.ParsedValue {
	if cm := r.cycleMethod(rest); cm != nil {
		r.a.SetSeries(root, r.a.Series(rest))
		r.a.SetLayer(root, r.a.Layer(rest))
		return cm
	}
	r.patch(root, last, rest)
	return value.EnumValue(value.CycleMethodNoCycle)
}

func (r *run) cycleMethod(i term.Index) *value.ParsedValue {
	if cm, ok := value.ParseCycleMethod(r.keyword(i)); ok {
		return value.EnumValue(cm)
	}
	return nil
}

// stop parses "(size, color)".
func (r *run) stop(root term.Index) (*value.ParsedValue, error) {
	if r.a.Kind(root) != lexer.LParenToken {
		return nil, r.errorf(root, "Expected '('")
	}
	arg := r.a.FirstArg(root)
	if arg == term.Nil {
		return nil, r.errorf(root, "Expected '<number>'")
	}
	size, err := r.parseSize(arg)
	if err != nil {
		return nil, err
	}
	next := r.a.NextArgOf(arg)
	if next == term.Nil {
		return nil, r.errorf(arg, "Expected '<color>'")
	}
	c, err := r.parseColor(next)
	if err != nil {
		return nil, err
	}
	return value.List(value.ConverterStop, size, c), nil
}

// point parses "(x, y)".
func (r *run) point(root term.Index) (x, y *value.ParsedValue, err error) {
	if r.a.Kind(root) != lexer.LParenToken {
		return nil, nil, r.errorf(root, "Expected '(<number>, <number>)'")
	}
	arg := r.a.FirstArg(root)
	if arg == term.Nil {
		return nil, nil, r.errorf(root, "Expected '<number>'")
	}
	if x, err = r.parseSize(arg); err != nil {
		return nil, nil, err
	}
	next := r.a.NextArgOf(arg)
	if next == term.Nil {
		return nil, nil, r.errorf(arg, "Expected '<number>'")
	}
	if y, err = r.parseSize(next); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// colorStops parses "color [position], color [position]..." argument chain
// and normalizes positions: missing first and last ones default to 0% and
// 100%, positions never decrease and runs of missing positions are spread
// evenly between their neighbours.
func (r *run) colorStops(root term.Index) ([]*value.ParsedValue, error) {
	var (
		colors    []*value.ParsedValue
		positions []*value.Size
	)
	// 0 until first explicit position, then 1 for percent, 2 for length
	units := 0
	for arg := root; arg != term.Nil; arg = r.a.NextArgOf(arg) {
		c, err := r.parseColor(arg)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)

		pos := r.a.Series(arg)
		if pos == term.Nil {
			positions = append(positions, nil)
			continue
		}
		if !r.a.Kind(pos).IsSize() {
			return nil, r.errorf(arg, "Expected '<percent>' or '<length>'")
		}
		s, err := r.size(pos)
		if err != nil {
			return nil, err
		}
		class := 1
		if s.Unit != value.SizeUnitPercent {
			class = 2
		}
		if units == 0 {
			units = class
		} else if units != class {
			return nil, r.errorf(pos, "Mixed units in color stops")
		}
		positions = append(positions, &s)
	}
	if len(colors) < 2 {
		return nil, r.errorf(root, "Expected '<color-stop>'")
	}

	n := len(positions)
	if positions[0] == nil {
		p := value.Percent(0)
		positions[0] = &p
	}
	if positions[n-1] == nil {
		p := value.Percent(100)
		positions[n-1] = &p
	}

	// explicit positions are raised to the maximum of all earlier ones
	maxPos := positions[0]
	for i := 1; i < n; i++ {
		cur := positions[i]
		if cur == nil {
			continue
		}
		if cur.Value < maxPos.Value {
			positions[i] = maxPos
		} else {
			maxPos = cur
		}
	}

	var preceding *value.Size
	without := -1
	for i, pos := range positions {
		if pos == nil {
			if without == -1 {
				without = i
			}
			continue
		}
		if without > -1 {
			v := preceding.Value
			delta := (pos.Value - v) / float64(i-without+1)
			for ; without < i; without++ {
				v += delta
				positions[without] = &value.Size{Value: v, Unit: pos.Unit}
			}
			without = -1
		}
		preceding = pos
	}

	stops := make([]*value.ParsedValue, n)
	for i := range stops {
		stops[i] = value.List(value.ConverterStop, value.SizeValue(*positions[i]), colors[i])
	}
	return stops, nil
}

func percents(vals ...float64) []*value.ParsedValue {
	out := make([]*value.ParsedValue, len(vals))
	for i, v := range vals {
		out[i] = value.SizeValue(value.Percent(v))
	}
	return out
}

// linearGradient handles
//
//	linear-gradient([from <point> to <point> | to <side-or-corner>,]
//	    [repeat | reflect,] <color-stop>[, <color-stop>]+)
func (r *run) linearGradient(root term.Index) (*value.ParsedValue, error) {
	arg := r.a.FirstArg(root)
	if arg == term.Nil || r.a.Token(arg).Text == "" {
		return nil, r.errorf(root, "Expected 'from <point> to <point>' or 'to <side-or-corner>' or '<cycle-method>' or '<color-stop>'")
	}

	var points []*value.ParsedValue
	prev := arg
	switch r.text(arg) {
	case "from":
		t := arg
		for n := range 5 {
			prev = t
			if t = r.a.Series(t); t == term.Nil {
				if n == 2 {
					return nil, r.errorf(prev, "Expected 'to'")
				}
				return nil, r.errorf(prev, "Expected '<point>'")
			}
			if n == 2 {
				if r.keyword(t) != "to" {
					return nil, r.errorf(prev, "Expected 'to'")
				}
				continue
			}
			v, err := r.parseSize(t)
			if err != nil {
				return nil, err
			}
			points = append(points, v)
		}
		prev, arg = t, r.a.NextArg(t)
	case "to":
		var start, end [2]float64
		var set [2]bool
		t := arg
		for n := 0; ; n++ {
			prev = t
			t = r.a.Series(t)
			if t == term.Nil {
				if n == 0 {
					return nil, r.errorf(prev, "Expected '<side-or-corner>'")
				}
				t = prev
				break
			}
			if r.keyword(t) == "" || n > 1 {
				return nil, r.errorf(prev, "Expected '<side-or-corner>'")
			}
			axis, from, to := 0, 0.0, 100.0
			switch r.keyword(t) {
			case "top":
				axis, from, to = 1, 100, 0
			case "bottom":
				axis = 1
			case "right":
			case "left":
				from, to = 100, 0
			default:
				return nil, r.errorf(t, "Invalid '<side-or-corner>'")
			}
			if set[axis] {
				return nil, r.errorf(t, "Invalid '<side-or-corner>'")
			}
			set[axis] = true
			start[axis], end[axis] = from, to
		}
		points = percents(start[0], start[1], end[0], end[1])
		prev, arg = t, r.a.NextArg(t)
	}
	if points == nil {
		points = percents(0, 0, 0, 100)
	}

	cycle, arg, err := r.gradientCycle(prev, arg)
	if err != nil {
		return nil, err
	}
	stops, err := r.colorStops(arg)
	if err != nil {
		return nil, err
	}
	values := append(points, cycle)
	return value.List(value.ConverterLinearGradient, append(values, stops...)...), nil
}

// gradientCycle parses optional "repeat" or "reflect" argument and returns
// the argument which starts color stops.
func (r *run) gradientCycle(prev, arg term.Index) (*value.ParsedValue, term.Index, error) {
	if arg == term.Nil || r.a.Token(arg).Text == "" {
		return nil, term.Nil, r.errorf(prev, "Expected '<cycle-method>' or '<color-stop>'")
	}
	cycle := value.CycleMethodNoCycle
	switch r.text(arg) {
	case "reflect":
		cycle = value.CycleMethodReflect
	case "repeat":
		cycle = value.CycleMethodRepeat
	}
	if cycle != value.CycleMethodNoCycle {
		prev, arg = arg, r.a.NextArgOf(arg)
	}
	if arg == term.Nil || r.a.Token(arg).Text == "" {
		return nil, term.Nil, r.errorf(prev, "Expected '<color-stop>'")
	}
	return value.EnumValue(cycle), arg, nil
}

// radialGradient handles
//
//	radial-gradient([focus-angle <angle>,] [focus-distance <percentage>,]
//	    [center <point>,] radius <length>, [repeat | reflect,]
//	    <color-stop>[, <color-stop>]+)
func (r *run) radialGradient(root term.Index) (*value.ParsedValue, error) {
	arg := r.a.FirstArg(root)
	if arg == term.Nil || r.a.Token(arg).Text == "" {
		return nil, r.errorf(root, "Expected 'focus-angle <angle>' or 'focus-distance <percentage>' or 'center <point>' or 'radius [<length> | <percentage>]'")
	}
	prev := arg
	var focusAngle, focusDistance, centerX, centerY, radius *value.ParsedValue

	if r.text(arg) == "focus-angle" {
		t := r.a.Series(arg)
		if t == term.Nil || !r.a.Kind(t).IsSize() {
			return nil, r.errorf(arg, "Expected '<angle>'")
		}
		s, err := r.size(t)
		if err != nil {
			return nil, err
		}
		if !s.Unit.IsAngle() && s.Unit != value.SizeUnitPx {
			return nil, r.errorf(t, "Expected [deg | rad | grad | turn ]")
		}
		focusAngle = value.SizeValue(s)
		if prev, arg = t, r.a.NextArg(t); arg == term.Nil {
			return nil, r.errorf(prev, "Expected 'focus-distance <percentage>' or 'center <point>' or 'radius [<length> | <percentage>]'")
		}
	}

	if r.text(arg) == "focus-distance" {
		t := r.a.Series(arg)
		if t == term.Nil || !r.a.Kind(t).IsSize() {
			return nil, r.errorf(arg, "Expected '<percentage>'")
		}
		s, err := r.size(t)
		if err != nil {
			return nil, err
		}
		if s.Unit != value.SizeUnitPercent {
			return nil, r.errorf(t, "Expected '%%'")
		}
		focusDistance = value.SizeValue(s)
		if prev, arg = t, r.a.NextArg(t); arg == term.Nil {
			return nil, r.errorf(prev, "Expected 'center <center>' or 'radius <length>'")
		}
	}

	if r.text(arg) == "center" {
		x := r.a.Series(arg)
		if x == term.Nil {
			return nil, r.errorf(arg, "Expected '<point>'")
		}
		var err error
		if centerX, err = r.parseSize(x); err != nil {
			return nil, err
		}
		y := r.a.Series(x)
		if y == term.Nil {
			return nil, r.errorf(x, "Expected '<point>'")
		}
		if centerY, err = r.parseSize(y); err != nil {
			return nil, err
		}
		if prev, arg = y, r.a.NextArg(y); arg == term.Nil {
			return nil, r.errorf(prev, "Expected 'radius [<length> | <percentage>]'")
		}
	}

	if r.text(arg) == "radius" {
		t := r.a.Series(arg)
		if t == term.Nil || !r.isSize(t) {
			return nil, r.errorf(arg, "Expected '[<length> | <percentage>]'")
		}
		var err error
		if radius, err = r.parseSize(t); err != nil {
			return nil, err
		}
		if prev, arg = t, r.a.NextArg(t); arg == term.Nil {
			return nil, r.errorf(prev, "Expected 'radius [<length> | <percentage>]'")
		}
	}

	cycle, arg, err := r.gradientCycle(prev, arg)
	if err != nil {
		return nil, err
	}
	stops, err := r.colorStops(arg)
	if err != nil {
		return nil, err
	}
	values := []*value.ParsedValue{focusAngle, focusDistance, centerX, centerY, radius, cycle}
	return value.List(value.ConverterRadialGradient, append(values, stops...)...), nil
}

// linearDeprecated handles "linear (x, y) to (x, y) stops (n, color)+ [cycle]".
func (r *run) linearDeprecated(root term.Index) (*value.ParsedValue, error) {
	r.deprecated(root, "linear gradient")

	t := r.a.Series(root)
	sx, sy, err := r.point(t)
	if err != nil {
		return nil, err
	}
	to := r.a.Series(t)
	if to == term.Nil || r.keyword(to) != "to" {
		return nil, r.errorf(pick(to, t), "Expected 'to'")
	}
	t = r.a.Series(to)
	if t == term.Nil {
		return nil, r.errorf(to, "Expected '(<number>, <number>)'")
	}
	ex, ey, err := r.point(t)
	if err != nil {
		return nil, err
	}
	t, err = r.expectKeyword(t, "stops")
	if err != nil {
		return nil, err
	}
	stops, last, rest, err := r.stopSeries(t)
	if err != nil {
		return nil, err
	}
	cycle := r.patchCycle(root, last, rest)
	values := []*value.ParsedValue{sx, sy, ex, ey, cycle}
	return value.List(value.ConverterLinearGradient, append(values, stops...)...), nil
}

// radialDeprecated handles "radial [focus-angle a] [focus-distance d]
// [center (x, y)] radius stops (n, color)+ [cycle]".
func (r *run) radialDeprecated(root term.Index) (*value.ParsedValue, error) {
	r.deprecated(root, "radial gradient")

	var focusAngle, focusDistance, centerX, centerY *value.ParsedValue
	t := r.a.Series(root)
	for _, kw := range []string{"focus-angle", "focus-distance"} {
		if r.keyword(t) != kw {
			continue
		}
		prev := t
		if t = r.a.Series(t); t == term.Nil {
			return nil, r.errorf(prev, "Expected '<number>'")
		}
		v, err := r.parseSize(t)
		if err != nil {
			return nil, err
		}
		if kw == "focus-angle" {
			focusAngle = v
		} else {
			focusDistance = v
		}
		prev = t
		if t = r.a.Series(t); t == term.Nil {
			return nil, r.errorf(prev, "Expected '<size>'")
		}
	}
	if r.keyword(t) == "center" {
		prev := t
		if t = r.a.Series(t); t == term.Nil {
			return nil, r.errorf(prev, "Expected '(<number>,<number>)'")
		}
		var err error
		if centerX, centerY, err = r.point(t); err != nil {
			return nil, err
		}
		prev = t
		if t = r.a.Series(t); t == term.Nil {
			return nil, r.errorf(prev, "Expected '<size>'")
		}
	}
	if t == term.Nil {
		return nil, r.errorf(root, "Expected 'focus-angle <number>', 'focus-distance <number>', 'center (<number>,<number>)' or '<size>'")
	}
	radius, err := r.parseSize(t)
	if err != nil {
		return nil, err
	}
	t, err = r.expectKeyword(t, "stops")
	if err != nil {
		return nil, err
	}
	stops, last, rest, err := r.stopSeries(t)
	if err != nil {
		return nil, err
	}
	cycle := r.patchCycle(root, last, rest)
	values := []*value.ParsedValue{focusAngle, focusDistance, centerX, centerY, radius, cycle}
	return value.List(value.ConverterRadialGradient, append(values, stops...)...), nil
}

// imagePattern handles image-pattern(uri[, x, y, w, h[, proportional]]).
func (r *run) imagePattern(root term.Index) (*value.ParsedValue, error) {
	arg := r.a.FirstArg(root)
	if arg == term.Nil || r.a.Token(arg).Value == "" {
		return nil, r.errorf(root, "Expected '<uri-string>'")
	}
	values := []*value.ParsedValue{value.URLValue(r.a.Token(arg).Value)}
	if r.a.NextArgOf(arg) == term.Nil {
		return value.List(value.ConverterImagePattern, values...), nil
	}
	for range 4 {
		prev := arg
		if arg = r.a.NextArgOf(arg); arg == term.Nil {
			return nil, r.errorf(prev, "Expected '<size>'")
		}
		v, err := r.parseSize(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if next := r.a.NextArgOf(arg); next != term.Nil {
		values = append(values, value.BoolValue(strings.EqualFold(r.a.Token(next).Value, "true")))
	}
	return value.List(value.ConverterImagePattern, values...), nil
}

func (r *run) repeatingImagePattern(root term.Index) (*value.ParsedValue, error) {
	arg := r.a.FirstArg(root)
	if arg == term.Nil || r.a.Token(arg).Value == "" {
		return nil, r.errorf(root, "Expected '<uri-string>'")
	}
	return value.List(value.ConverterRepeatingImagePattern, value.URLValue(r.a.Token(arg).Value)), nil
}
