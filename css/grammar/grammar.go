// Package grammar interprets term trees of individual properties. Most
// properties share the generic term grammar, the rest have their own small
// grammars (layers of paints, corner radii, fonts and so on) selected by
// property name.
package grammar

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"fxcss/css/lexer"
	"fxcss/css/term"
	"fxcss/css/value"
)

// VendorPrefix is the prefix of all routed property names.
const VendorPrefix = "-fx-"

// Error is a semantic error: term tree is well formed but does not match
// the grammar of a property. Token is the offending token, it may be zero.
type Error struct {
	Msg   string
	Token lexer.Token
}

func (e *Error) Error() string {
	return e.Msg
}

type routine func(r *run, root term.Index) (*value.ParsedValue, error)

// routes maps lower-cased property names to their grammars, anything not
// here and not matched by a suffix goes to the generic grammar.
var routes = map[string]routine{
	"-fx-fill":                (*run).fill,
	"-fx-effect":              (*run).parse,
	"-fx-background-color":    (*run).paintLayers,
	"-fx-background-image":    (*run).uriLayers,
	"-fx-background-insets":   (*run).insetsLayers,
	"-fx-opaque-insets":       (*run).insetsLayer,
	"-fx-background-position": (*run).backgroundPositionLayers,
	"-fx-background-radius":   (*run).cornerRadius,
	"-fx-background-repeat":   (*run).repeatStyleLayers,
	"-fx-background-size":     (*run).backgroundSizeLayers,
	"-fx-border-color":        (*run).borderPaintLayers,
	"-fx-border-insets":       (*run).insetsLayers,
	"-fx-border-radius":       (*run).cornerRadius,
	"-fx-border-style":        (*run).borderStyleLayers,
	"-fx-border-width":        (*run).marginsLayers,
	"-fx-border-image-insets": (*run).insetsLayers,
	"-fx-border-image-repeat": (*run).repeatStyleLayers,
	"-fx-border-image-slice":  (*run).borderImageSliceLayers,
	"-fx-border-image-source": (*run).uriLayers,
	"-fx-border-image-width":  (*run).borderImageWidthLayers,
	"-fx-padding":             (*run).padding,
	"-fx-label-padding":       (*run).padding,
	"-fx-stroke-dash-array":   (*run).strokeDashArray,
	"-fx-stroke-line-join":    (*run).strokeLineJoinProperty,
	"-fx-stroke-line-cap":     (*run).strokeLineCapProperty,
	"-fx-stroke-type":         (*run).strokeTypeProperty,
	"-fx-font-smoothing-type": (*run).keywordString,
	"-fx-blend-mode":          (*run).keywordString,
}

// suffixes are checked in order, "font" has to be the last one.
var suffixes = []struct {
	suffix string
	fn     routine
}{
	{"font-family", (*run).fontFamilyProperty},
	{"font-size", (*run).fontSizeProperty},
	{"font-style", (*run).fontStyleProperty},
	{"font-weight", (*run).fontWeightProperty},
	{"font", (*run).font},
}

// Properties returns names of all properties which have their own grammar.
// Suffix routed families are listed with their vendor prefixed name.
func Properties() []string {
	out := make([]string, 0, len(routes)+len(suffixes))
	for name := range routes {
		out = append(out, name)
	}
	for _, s := range suffixes {
		out = append(out, VendorPrefix+s.suffix)
	}
	slices.Sort(out)
	return out
}

// Routed reports whether property has its own grammar.
func Routed(property string) bool {
	return lookupRoute(strings.ToLower(property)) != nil
}

func lookupRoute(prop string) routine {
	if fn, ok := routes[prop]; ok {
		return fn
	}
	if !strings.HasPrefix(prop, "-") {
		if fn, ok := routes[VendorPrefix+prop]; ok {
			return fn
		}
	}
	for _, s := range suffixes {
		if strings.HasSuffix(prop, s.suffix) {
			return s.fn
		}
	}
	return nil
}

// Interpreter turns term trees into parsed values. It remembers names of
// every property it has seen so identifiers naming them are taken as
// lookups. Interpreter is not safe for concurrent use.
type Interpreter struct {
	log        *zap.Logger
	properties map[string]struct{}
}

func New(log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{log: log, properties: make(map[string]struct{})}
}

// Known reports whether property has been seen by interpreter.
func (in *Interpreter) Known(property string) bool {
	_, ok := in.properties[strings.ToLower(property)]
	return ok
}

// Interpret parses value of property. Terms in arena may be re-linked in the
// process. Returned error is always *Error.
func (in *Interpreter) Interpret(property string, a *term.Arena, root term.Index) (*value.ParsedValue, error) {
	prop := strings.ToLower(property)
	in.properties[prop] = struct{}{}

	r := &run{in: in, a: a, prop: prop}
	if a.At(root) == nil {
		return nil, r.errorf(root, "Expected value for property '%s'", prop)
	}
	if a.Kind(root) == lexer.IdentToken {
		switch strings.ToLower(a.Token(root).Value) {
		case "inherit":
			return value.StringValue("inherit"), nil
		case "null", "none":
			return value.StringValue("null"), nil
		}
	}
	if fn := lookupRoute(prop); fn != nil {
		return fn(r, root)
	}
	return r.parse(root)
}

// run is the state of a single Interpret call.
type run struct {
	in   *Interpreter
	a    *term.Arena
	prop string
}

func (r *run) errorf(i term.Index, format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Token: r.a.Token(i)}
}

func (r *run) deprecated(i term.Index, syntax string) {
	tok := r.a.Token(i)
	r.in.log.Warn("Using deprecated syntax, refer to the CSS reference guide",
		zap.String("syntax", syntax), zap.String("property", r.prop),
		zap.Int("line", tok.Line), zap.Int("offset", tok.Offset))
}

// keyword returns lower-cased identifier text or empty string when term is
// not an identifier.
func (r *run) keyword(i term.Index) string {
	if r.a.Kind(i) != lexer.IdentToken {
		return ""
	}
	return strings.ToLower(r.a.Token(i).Value)
}

// text returns lower-cased interpreted text of a term.
func (r *run) text(i term.Index) string {
	return strings.ToLower(r.a.Token(i).Value)
}

func (r *run) isSize(i term.Index) bool {
	k := r.a.Kind(i)
	return k.IsSize() || k == lexer.IdentToken
}

func (r *run) fill(root term.Index) (*value.ParsedValue, error) {
	v, err := r.parse(root)
	if err != nil {
		return nil, err
	}
	if v.IsURL() {
		v = value.List(value.ConverterImagePattern, v)
	}
	return v, nil
}

func (r *run) padding(root term.Index) (*value.ParsedValue, error) {
	sides, err := r.size1to4(root)
	if err != nil {
		return nil, err
	}
	return value.List(value.ConverterInsets, sides...), nil
}

func (r *run) strokeDashArray(root term.Index) (*value.ParsedValue, error) {
	var segments []*value.ParsedValue
	for t := root; t != term.Nil; t = r.a.Series(t) {
		s, err := r.parseSize(t)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return value.List(value.ConverterSequence, segments...), nil
}

func (r *run) strokeLineJoinProperty(root term.Index) (*value.ParsedValue, error) {
	join, _ := r.strokeLineJoin(root)
	if join == nil {
		return nil, r.errorf(root, "Expected 'miter', 'bevel' or 'round'")
	}
	return join, nil
}

func (r *run) strokeLineCapProperty(root term.Index) (*value.ParsedValue, error) {
	if v := r.strokeLineCap(root); v != nil {
		return v, nil
	}
	return nil, r.errorf(root, "Expected 'square', 'butt' or 'round'")
}

func (r *run) strokeTypeProperty(root term.Index) (*value.ParsedValue, error) {
	if v := r.strokeType(root); v != nil {
		return v, nil
	}
	return nil, r.errorf(root, "Expected 'centered', 'inside' or 'outside'")
}

func (r *run) keywordString(root term.Index) (*value.ParsedValue, error) {
	tok := r.a.Token(root)
	if (tok.Kind != lexer.StringToken && tok.Kind != lexer.IdentToken) || tok.Value == "" {
		return nil, r.errorf(root, "Expected STRING or IDENT")
	}
	return value.StringValue(tok.Value), nil
}

func (r *run) strokeType(i term.Index) *value.ParsedValue {
	if st, ok := value.ParseStrokeType(r.keyword(i)); ok {
		return value.EnumValue(st)
	}
	return nil
}

// strokeLineJoin parses join keyword, miter may be followed by the miter
// limit which is then unlinked from the series.
func (r *run) strokeLineJoin(i term.Index) (join, miterLimit *value.ParsedValue) {
	j, ok := value.ParseStrokeLineJoin(r.keyword(i))
	if !ok {
		return nil, nil
	}
	if j == value.StrokeLineJoinMiter {
		if next := r.a.Series(i); next != term.Nil && r.isSize(next) {
			if limit, err := r.parseSize(next); err == nil {
				r.a.SetSeries(i, r.a.Series(next))
				miterLimit = limit
			}
		}
	}
	return value.EnumValue(j), miterLimit
}

func (r *run) strokeLineCap(i term.Index) *value.ParsedValue {
	if c, ok := value.ParseStrokeLineCap(r.keyword(i)); ok {
		return value.EnumValue(c)
	}
	return nil
}
