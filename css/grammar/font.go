package grammar

import (
	"strings"

	"fxcss/css/lexer"
	"fxcss/css/term"
	"fxcss/css/value"
)

// font size keywords in percent of the inherited size; "inherit" here is only
// reached from inside the font shorthand, a leading one is taken by Interpret
var fontSizeKeywords = map[string]float64{
	"inherit":  100,
	"xx-small": 60,
	"x-small":  75,
	"small":    80,
	"medium":   100,
	"large":    120,
	"x-large":  150,
	"xx-large": 200,
	"smaller":  80,
	"larger":   120,
}

var fontWeightKeywords = map[string]value.FontWeight{
	"inherit": value.FontWeightNormal,
	"normal":  value.FontWeightNormal,
	"bold":    value.FontWeightBold,
	"bolder":  value.FontWeightBold,
	"lighter": value.FontWeightLight,
	"100":     value.FontWeightThin,
	"200":     value.FontWeightExtraLight,
	"300":     value.FontWeightLight,
	"400":     value.FontWeightNormal,
	"500":     value.FontWeightMedium,
	"600":     value.FontWeightSemiBold,
	"700":     value.FontWeightBold,
	"800":     value.FontWeightExtraBold,
	"900":     value.FontWeightBlack,
}

var genericFamilies = map[string]bool{
	"serif":      true,
	"sans-serif": true,
	"cursive":    true,
	"fantasy":    true,
	"monospace":  true,
}

func (r *run) fontSize(i term.Index) (*value.ParsedValue, error) {
	if !r.isSize(i) {
		return nil, r.errorf(i, "Expected '<font-size>'")
	}
	if r.a.Kind(i) == lexer.IdentToken {
		pct, ok := fontSizeKeywords[r.keyword(i)]
		if !ok {
			return nil, r.errorf(i, "Expected '<font-size>'")
		}
		return value.New(value.Percent(pct), value.ConverterFontSize), nil
	}
	s, err := r.size(i)
	if err != nil {
		return nil, err
	}
	return value.New(s, value.ConverterFontSize), nil
}

// fontStyle returns nil when term is not a font style keyword.
func (r *run) fontStyle(i term.Index) *value.ParsedValue {
	switch r.keyword(i) {
	case "normal":
		return value.New(value.FontPostureRegular, value.ConverterFontPosture)
	case "italic", "oblique":
		return value.New(value.FontPostureItalic, value.ConverterFontPosture)
	case "inherit":
		return value.New("inherit", value.ConverterFontPosture)
	}
	return nil
}

// fontWeight returns nil when term is not a font weight.
func (r *run) fontWeight(i term.Index) *value.ParsedValue {
	if w, ok := fontWeightKeywords[r.text(i)]; ok {
		return value.New(w, value.ConverterFontWeight)
	}
	return nil
}

func (r *run) fontFamily(i term.Index) (*value.ParsedValue, error) {
	tok := r.a.Token(i)
	if (tok.Kind != lexer.IdentToken && tok.Kind != lexer.StringToken) || tok.Value == "" {
		return nil, r.errorf(i, "Expected '<font-family>'")
	}
	fam := strings.ToLower(tok.Value)
	if fam == "inherit" || genericFamilies[fam] {
		return value.StringValue(fam), nil
	}
	return value.StringValue(tok.Value), nil
}

func (r *run) fontFamilyProperty(root term.Index) (*value.ParsedValue, error) {
	return r.fontFamily(root)
}

func (r *run) fontSizeProperty(root term.Index) (*value.ParsedValue, error) {
	return r.fontSize(root)
}

func (r *run) fontStyleProperty(root term.Index) (*value.ParsedValue, error) {
	if v := r.fontStyle(root); v != nil {
		return v, nil
	}
	return nil, r.errorf(root, "Expected '<font-style>'")
}

func (r *run) fontWeightProperty(root term.Index) (*value.ParsedValue, error) {
	if v := r.fontWeight(root); v != nil {
		return v, nil
	}
	return nil, r.errorf(root, "Expected '<font-weight>'")
}

// font handles the shorthand
//
//	[<font-style> || <font-variant> || <font-weight>]? <font-size> [/ <line-height>]? <font-family>
//
// It is read from the end since everything in front of the size is optional.
func (r *run) font(root term.Index) (*value.ParsedValue, error) {
	var terms []term.Index
	for t := root; t != term.Nil; t = r.a.Series(t) {
		terms = append(terms, t)
	}
	n := len(terms) - 1

	family := terms[n]
	if k := r.a.Kind(family); k != lexer.IdentToken && k != lexer.StringToken {
		return nil, r.errorf(family, "Expected '<font-family>'")
	}
	fam, err := r.fontFamily(family)
	if err != nil {
		return nil, err
	}

	n--
	if n < 0 || !r.isSize(terms[n]) {
		return nil, r.errorf(terms[max(n, 0)], "Expected '<size>'")
	}
	// "size / line-height" reads backwards as line-height, solidus, size
	if n > 0 && r.a.Kind(terms[n-1]) == lexer.SolidusToken {
		n -= 2
		if n < 0 || !r.isSize(terms[n]) {
			return nil, r.errorf(terms[max(n, 0)], "Expected '<size>'")
		}
	}
	size, err := r.fontSize(terms[n])
	if err != nil {
		return nil, err
	}

	var style, weight *value.ParsedValue
	variant := false
	for n--; n >= 0; n-- {
		t := terms[n]
		if r.keyword(t) == "" && r.a.Kind(t) != lexer.NumberToken {
			return nil, r.errorf(t, "Expected '<font-weight>', '<font-style>' or '<font-variant>'")
		}
		switch {
		case style == nil && r.fontStyle(t) != nil:
			style = r.fontStyle(t)
		case !variant && r.keyword(t) == "small-caps":
			variant = true
		case weight == nil && r.fontWeight(t) != nil:
			weight = r.fontWeight(t)
		default:
			return nil, r.errorf(t, "Expected '<font-weight>', '<font-style>' or '<font-variant>'")
		}
	}
	return value.List(value.ConverterFont, fam, size, weight, style), nil
}
