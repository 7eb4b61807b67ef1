package grammar

import (
	"fxcss/css/lexer"
	"fxcss/css/term"
	"fxcss/css/value"
)

// expand fills missing sides: right = top, bottom = top, left = right.
func expand(sides []*value.ParsedValue) []*value.ParsedValue {
	out := make([]*value.ParsedValue, 4)
	copy(out, sides)
	n := len(sides)
	if n < 2 {
		out[1] = out[0]
	}
	if n < 3 {
		out[2] = out[0]
	}
	if n < 4 {
		out[3] = out[1]
	}
	return out
}

// size1to4 reads one to four sizes of a series, extra terms are ignored.
func (r *run) size1to4(root term.Index) ([]*value.ParsedValue, error) {
	var sides []*value.ParsedValue
	for t := root; t != term.Nil && len(sides) < 4; t = r.a.Series(t) {
		s, err := r.parseSize(t)
		if err != nil {
			return nil, err
		}
		sides = append(sides, s)
	}
	return expand(sides), nil
}

func (r *run) insetsLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, func(r *run, l term.Index) (*value.ParsedValue, error) {
		return r.padding(l)
	})
}

// insetsLayer is insets where only the last layer counts.
func (r *run) insetsLayer(root term.Index) (*value.ParsedValue, error) {
	var last *value.ParsedValue
	for l := root; l != term.Nil; l = r.a.NextLayer(l) {
		v, err := r.padding(l)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (r *run) marginsLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, func(r *run, l term.Index) (*value.ParsedValue, error) {
		sides, err := r.size1to4(l)
		if err != nil {
			return nil, err
		}
		return value.List(value.ConverterMargins, sides...), nil
	})
}

const radiusSyntax = "expected [<length>|<percentage>]{1,4} [/ [<length>|<percentage>]{1,4}]?"

// cornerRadius handles "h{1,4} [/ v{1,4}]" layers. Vertical radii default
// to horizontal ones, a corner where either radius is zero gets no rounding.
func (r *run) cornerRadius(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, func(r *run, l term.Index) (*value.ParsedValue, error) {
		var h, v []*value.ParsedValue
		vertical := false
		for t := l; t != term.Nil; t = r.a.Series(t) {
			if r.a.Kind(t) == lexer.SolidusToken {
				if vertical {
					return nil, r.errorf(t, "unexpected SOLIDUS")
				}
				vertical = true
				continue
			}
			s, err := r.parseSize(t)
			if err != nil {
				return nil, err
			}
			if vertical {
				v = append(v, s)
			} else {
				h = append(h, s)
			}
		}
		if len(h) == 0 || len(h) > 4 || len(v) > 4 || (vertical && len(v) == 0) {
			return nil, r.errorf(l, radiusSyntax)
		}
		h = expand(h)
		if len(v) == 0 {
			v = h
		} else {
			v = expand(v)
		}
		hr, vr := make([]*value.ParsedValue, 4), make([]*value.ParsedValue, 4)
		for i := range 4 {
			hr[i], vr[i] = h[i], v[i]
			if isZero(h[i]) || isZero(v[i]) {
				hr[i], vr[i] = value.SizeValue(value.Px(0)), value.SizeValue(value.Px(0))
			}
		}
		return value.List(value.ConverterCornerRadii,
			value.List(value.ConverterList, hr...),
			value.List(value.ConverterList, vr...)), nil
	})
}

func isZero(v *value.ParsedValue) bool {
	s, ok := v.Size()
	return ok && s.Value == 0
}

var (
	zeroPercent    = value.Percent(0)
	fiftyPercent   = value.Percent(50)
	hundredPercent = value.Percent(100)
)

func isPositionKeyword(s string) bool {
	switch s {
	case "center", "top", "bottom", "left", "right":
		return true
	}
	return false
}

func (r *run) backgroundPositionLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, (*run).backgroundPosition)
}

// backgroundPosition handles
//
//	[top | bottom]
//	| [<size> | left | center | right] [<size> | top | center | bottom]?
//	| [center | [left | right] <size>?] && [center | [top | bottom] <size>?]
//
// Result is [top, right, bottom, left] offsets.
func (r *run) backgroundPosition(root term.Index) (*value.ParsedValue, error) {
	if r.a.Token(root).Text == "" {
		return nil, r.errorf(root, "Expected '<bg-position>'")
	}
	var t []term.Index
	for i := root; i != term.Nil && len(t) < 4; i = r.a.Series(i) {
		t = append(t, i)
	}
	v := make([]string, len(t))
	for i := range t {
		v[i] = r.text(t[i])
	}
	vertical := func(s string) bool { return s == "top" || s == "bottom" }
	horizontal := func(s string) bool { return s == "left" || s == "right" }

	// vertical part written first
	switch len(t) {
	case 2:
		if vertical(v[0]) && (horizontal(v[1]) || v[1] == "center") {
			t[0], t[1] = t[1], t[0]
			v[0], v[1] = v[1], v[0]
		}
	case 3:
		if vertical(v[0]) {
			if horizontal(v[1]) {
				// top left 50
				t, v = []term.Index{t[1], t[2], t[0]}, []string{v[1], v[2], v[0]}
			} else {
				// top 50 left
				t, v = []term.Index{t[2], t[0], t[1]}, []string{v[2], v[0], v[1]}
			}
		}
	case 4:
		if vertical(v[0]) && horizontal(v[2]) {
			t, v = []term.Index{t[2], t[3], t[0], t[1]}, []string{v[2], v[3], v[0], v[1]}
		}
	}

	top, right, bottom, left := value.SizeValue(zeroPercent), value.SizeValue(zeroPercent), value.SizeValue(zeroPercent), value.SizeValue(zeroPercent)
	var err error
	// verticalKeyword sets top from top, bottom or center
	verticalKeyword := func(s string) bool {
		switch s {
		case "top":
			top = value.SizeValue(zeroPercent)
		case "bottom":
			top = value.SizeValue(hundredPercent)
		case "center":
			top = value.SizeValue(fiftyPercent)
		default:
			return false
		}
		return true
	}

	switch len(t) {
	case 1:
		switch v[0] {
		case "center":
			left, top = value.SizeValue(fiftyPercent), value.SizeValue(fiftyPercent)
		case "left":
			top = value.SizeValue(fiftyPercent)
		case "right":
			left, top = value.SizeValue(hundredPercent), value.SizeValue(fiftyPercent)
		case "top":
			left = value.SizeValue(fiftyPercent)
		case "bottom":
			left, top = value.SizeValue(fiftyPercent), value.SizeValue(hundredPercent)
		default:
			if left, err = r.parseSize(t[0]); err != nil {
				return nil, err
			}
		}
	case 2:
		switch {
		case !isPositionKeyword(v[0]):
			if left, err = r.parseSize(t[0]); err != nil {
				return nil, err
			}
		case horizontal(v[0]):
			if v[0] == "right" {
				left = value.SizeValue(hundredPercent)
			}
		case v[0] == "center":
			left = value.SizeValue(fiftyPercent)
		default:
			return nil, r.errorf(t[0], "Expected 'left', 'right', 'center' or <size>")
		}
		switch {
		case !isPositionKeyword(v[1]):
			if top, err = r.parseSize(t[1]); err != nil {
				return nil, err
			}
		case verticalKeyword(v[1]):
		default:
			return nil, r.errorf(t[1], "Expected 'top', 'bottom', 'center' or <size>")
		}
	case 3:
		switch {
		case !isPositionKeyword(v[0]) || v[0] == "center":
			// first is horizontal, second and third are vertical
			if v[0] == "center" {
				left = value.SizeValue(fiftyPercent)
			} else if left, err = r.parseSize(t[0]); err != nil {
				return nil, err
			}
			if top, bottom, err = r.verticalOffset(t[1], t[2], v[1], v[2]); err != nil {
				return nil, err
			}
		case horizontal(v[0]) && !isPositionKeyword(v[1]):
			// first and second are horizontal, third is vertical
			side := &left
			if v[0] == "right" {
				side = &right
			}
			if *side, err = r.parseSize(t[1]); err != nil {
				return nil, err
			}
			if !verticalKeyword(v[2]) {
				return nil, r.errorf(t[2], "Expected 'top', 'bottom' or 'center'")
			}
		case horizontal(v[0]):
			if v[0] == "right" {
				left = value.SizeValue(hundredPercent)
			}
			if top, bottom, err = r.verticalOffset(t[1], t[2], v[1], v[2]); err != nil {
				return nil, err
			}
		default:
			return nil, r.errorf(t[0], "Expected 'left', 'right', 'center' or <size>")
		}
	case 4:
		if !horizontal(v[0]) || !vertical(v[2]) || isPositionKeyword(v[1]) || isPositionKeyword(v[3]) {
			return nil, r.errorf(root, "Expected 'left' or 'right' followed by <size> followed by 'top' or 'bottom' followed by <size>")
		}
		hs, vs := &left, &top
		if v[0] == "right" {
			hs = &right
		}
		if v[2] == "bottom" {
			vs = &bottom
		}
		if *hs, err = r.parseSize(t[1]); err != nil {
			return nil, err
		}
		if *vs, err = r.parseSize(t[3]); err != nil {
			return nil, err
		}
	}
	return value.List(value.ConverterBackgroundPosition, top, right, bottom, left), nil
}

// verticalOffset handles "top <size>" and "bottom <size>" pairs.
func (r *run) verticalOffset(kw, size term.Index, kwText, sizeText string) (top, bottom *value.ParsedValue, err error) {
	if isPositionKeyword(sizeText) {
		return nil, nil, r.errorf(size, "Expected <size>")
	}
	s, err := r.parseSize(size)
	if err != nil {
		return nil, nil, err
	}
	switch kwText {
	case "top":
		return s, value.SizeValue(zeroPercent), nil
	case "bottom":
		return value.SizeValue(zeroPercent), s, nil
	}
	return nil, nil, r.errorf(kw, "Expected 'top' or 'bottom'")
}

func (r *run) repeatStyleLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, (*run).repeatStyle)
}

// repeatStyle handles "repeat-x | repeat-y | [repeat | space | round |
// no-repeat | stretch]{1,2}".
func (r *run) repeatStyle(root term.Index) (*value.ParsedValue, error) {
	if r.a.Kind(root) != lexer.IdentToken || r.a.Token(root).Value == "" {
		return nil, r.errorf(root, "Expected '<repeat-style>'")
	}
	var x, y value.BackgroundRepeat
	switch kw := r.keyword(root); kw {
	case "repeat-x":
		x, y = value.BackgroundRepeatRepeat, value.BackgroundRepeatNoRepeat
	case "repeat-y":
		x, y = value.BackgroundRepeatNoRepeat, value.BackgroundRepeatRepeat
	case "stretch":
		x, y = value.BackgroundRepeatNoRepeat, value.BackgroundRepeatNoRepeat
	default:
		br, ok := value.ParseBackgroundRepeat(kw)
		if !ok {
			return nil, r.errorf(root, "Expected  '<repeat-style>' %s", kw)
		}
		x, y = br, br
	}
	if next := r.a.Series(root); next != term.Nil && r.keyword(next) != "" {
		switch kw := r.keyword(next); kw {
		case "repeat-x", "repeat-y":
			return nil, r.errorf(next, "Unexpected '%s'", kw)
		case "stretch":
			y = value.BackgroundRepeatNoRepeat
		default:
			br, ok := value.ParseBackgroundRepeat(kw)
			if !ok {
				return nil, r.errorf(next, "Expected  '<repeat-style>'")
			}
			y = br
		}
	}
	return value.List(value.ConverterRepeatStyle, value.EnumValue(x), value.EnumValue(y)), nil
}

func (r *run) backgroundSizeLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, (*run).backgroundSize)
}

// backgroundSize handles "[<size> | auto]{1,2} | cover | contain | stretch".
func (r *run) backgroundSize(root term.Index) (*value.ParsedValue, error) {
	var (
		width, height  *value.ParsedValue
		cover, contain bool
		err            error
	)
	switch {
	case r.a.Kind(root) == lexer.IdentToken:
		switch r.keyword(root) {
		case "auto":
		case "cover":
			cover = true
		case "contain":
			contain = true
		case "stretch":
			width, height = value.SizeValue(hundredPercent), value.SizeValue(hundredPercent)
		default:
			return nil, r.errorf(root, "Expected 'auto', 'cover', 'contain', or  'stretch'")
		}
	case r.a.Kind(root).IsSize():
		if width, err = r.parseSize(root); err != nil {
			return nil, err
		}
	default:
		return nil, r.errorf(root, "Expected '<bg-size>'")
	}

	if next := r.a.Series(root); next != term.Nil {
		if cover || contain {
			return nil, r.errorf(next, "Unexpected '<bg-size>'")
		}
		switch {
		case r.a.Kind(next) == lexer.IdentToken:
			switch kw := r.keyword(next); kw {
			case "auto":
				height = nil
			case "cover", "contain":
				return nil, r.errorf(next, "Unexpected '%s'", kw)
			case "stretch":
				height = value.SizeValue(hundredPercent)
			default:
				return nil, r.errorf(next, "Expected 'auto' or 'stretch'")
			}
		case r.a.Kind(next).IsSize():
			if height, err = r.parseSize(next); err != nil {
				return nil, err
			}
		default:
			return nil, r.errorf(next, "Expected '<bg-size>'")
		}
	}
	return value.List(value.ConverterBackgroundSize, width, height, value.BoolValue(cover), value.BoolValue(contain)), nil
}

func (r *run) borderPaintLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, func(r *run, l term.Index) (*value.ParsedValue, error) {
		var paints []*value.ParsedValue
		for t := l; t != term.Nil; t = r.a.Series(t) {
			if len(paints) == 4 {
				return nil, r.errorf(t, "Expected '<paint>'")
			}
			p, err := r.parse(t)
			if err != nil {
				return nil, err
			}
			paints = append(paints, p)
		}
		return value.List(value.ConverterList, expand(paints)...), nil
	})
}

// borderStyleLayers reads layers of one to four border styles.
func (r *run) borderStyleLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, func(r *run, l term.Index) (*value.ParsedValue, error) {
		var styles []*value.ParsedValue
		for t := l; t != term.Nil; t = r.a.Series(t) {
			if len(styles) == 4 {
				return nil, r.errorf(t, "Expected '<dash-style>'")
			}
			s, err := r.borderStyle(t)
			if err != nil {
				return nil, err
			}
			styles = append(styles, s)
		}
		return value.List(value.ConverterList, expand(styles)...), nil
	})
}

// borderStyle handles
//
//	<dash-style> [phase <size>]? [centered | inside | outside]?
//	    [line-join [miter <size>? | bevel | round]]? [line-cap [square | butt | round]]?
//
// Consumed terms are unlinked: root is re-pointed to the next style.
func (r *run) borderStyle(root term.Index) (*value.ParsedValue, error) {
	dash, err := r.dashStyle(root)
	if err != nil {
		return nil, err
	}
	var phase, strokeType, join, miterLimit, lineCap *value.ParsedValue

	prev, t := root, r.a.Series(root)
	if r.keyword(t) == "phase" {
		next := r.a.Series(t)
		if next == term.Nil || !r.a.Kind(next).IsSize() {
			return nil, r.errorf(pick(next, t), "Expected '<size>'")
		}
		if phase, err = r.parseSize(next); err != nil {
			return nil, err
		}
		prev, t = next, r.a.Series(next)
	}
	if strokeType = r.strokeType(t); strokeType != nil {
		prev, t = t, r.a.Series(t)
	}
	if r.keyword(t) == "line-join" {
		next := r.a.Series(t)
		if join, miterLimit = r.strokeLineJoin(next); join == nil {
			return nil, r.errorf(pick(next, t), "Expected 'miter <size>?', 'bevel' or 'round'")
		}
		prev, t = next, r.a.Series(next)
	}
	if r.keyword(t) == "line-cap" {
		next := r.a.Series(t)
		if lineCap = r.strokeLineCap(next); lineCap == nil {
			return nil, r.errorf(pick(next, t), "Expected 'square', 'butt' or 'round'")
		}
		prev, t = next, r.a.Series(next)
	}

	if t != term.Nil {
		r.a.SetSeries(root, t)
	} else {
		r.a.SetSeries(root, term.Nil)
		r.a.SetLayer(root, r.a.Layer(prev))
	}
	return value.List(value.ConverterBorderStrokeStyle, dash, phase, strokeType, join, miterLimit, lineCap), nil
}

// dashStyle is either a border style keyword or segments(size, ...).
func (r *run) dashStyle(root term.Index) (*value.ParsedValue, error) {
	switch r.a.Kind(root) {
	case lexer.IdentToken:
		switch kw := r.keyword(root); kw {
		case "hidden":
			return value.EnumValue(value.BorderStyleNone), nil
		default:
			bs, ok := value.ParseBorderStyle(kw)
			if !ok {
				return nil, r.errorf(root, "Unsupported <border-style> '%s'", kw)
			}
			return value.EnumValue(bs), nil
		}
	case lexer.FunctionToken:
		if r.text(root) != "segments" {
			return nil, r.errorf(root, "Expected 'segments'")
		}
		arg := r.a.FirstArg(root)
		if arg == term.Nil {
			return nil, r.errorf(root, "Expected '<size>'")
		}
		var segments []*value.ParsedValue
		for ; arg != term.Nil; arg = r.a.NextArgOf(arg) {
			s, err := r.parseSize(arg)
			if err != nil {
				return nil, err
			}
			segments = append(segments, s)
		}
		return value.List(value.ConverterSequence, segments...), nil
	}
	return nil, r.errorf(root, "Expected '<dash-style>'")
}

func (r *run) borderImageSliceLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, func(r *run, l term.Index) (*value.ParsedValue, error) {
		if !r.a.Kind(l).IsSize() {
			return nil, r.errorf(l, "Expected '<size>'")
		}
		var sides []*value.ParsedValue
		fill := false
		for t := l; t != term.Nil && len(sides) < 4; t = r.a.Series(t) {
			if r.keyword(t) == "fill" {
				fill = true
				break
			}
			s, err := r.parseSize(t)
			if err != nil {
				return nil, err
			}
			sides = append(sides, s)
		}
		return value.List(value.ConverterBorderImageSlice,
			value.List(value.ConverterInsets, expand(sides)...), value.BoolValue(fill)), nil
	})
}

func (r *run) borderImageWidthLayers(root term.Index) (*value.ParsedValue, error) {
	return r.layers(root, func(r *run, l term.Index) (*value.ParsedValue, error) {
		if !r.isSize(l) {
			return nil, r.errorf(l, "Expected '<size>'")
		}
		sides, err := r.size1to4(l)
		if err != nil {
			return nil, err
		}
		return value.List(value.ConverterMargins, sides...), nil
	})
}
