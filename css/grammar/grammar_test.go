package grammar

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"fxcss/css/lexer"
	"fxcss/css/term"
	"fxcss/css/value"
)

func interpret(t *testing.T, in *Interpreter, prop, src string) (*value.ParsedValue, error) {
	t.Helper()
	b := term.NewBuilder(lexer.NewString(src), nil, func(_ lexer.Token, msg string) {
		t.Fatalf("malformed value %q: %s", src, msg)
	})
	b.Next()
	root := b.Expr()
	return in.Interpret(prop, b.Arena(), root)
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name string
		prop string
		src  string
		want string
	}{
		{"padding one", "-fx-padding", "3em", "insets(3em, 3em, 3em, 3em)"},
		{"padding two", "-fx-padding", "1px 2px", "insets(1px, 2px, 1px, 2px)"},
		{"padding three", "-fx-padding", "1 2 3", "insets(1px, 2px, 3px, 2px)"},
		{"unprefixed route", "padding", "4", "insets(4px, 4px, 4px, 4px)"},
		{"paint layers", "-fx-background-color", "red, #00f", "#ff0000, #0000ff"},
		{"inherit", "-fx-background-color", "inherit", `"inherit"`},
		{"none", "-fx-border-style", "none", `"null"`},
		{"number", "-fx-opacity", "0.5", "0.5px"},
		{"size series", "-fx-something", "1px 2em", "1px 2em"},
		{"duration", "-fx-duration", "250ms", "250ms"},
		{"boolean", "-fx-visible", "TRUE", "true"},
		{"string", "-fx-text", `"hello"`, `"hello"`},
		{"hex color", "-fx-fill", "#abc", "#aabbcc"},
		{"rgb", "-fx-fill", "rgb(255, 0, 0)", "#ff0000"},
		{"rgb percent", "-fx-fill", "rgb(100%, 50%, 0%)", "#ff8000"},
		{"rgb clamps", "-fx-fill", "rgb(300, -5, 0)", "#ff0000"},
		{"hsb", "-fx-fill", "hsb(120, 100%, 100%)", "#00ff00"},
		{"derive", "-fx-fill", "derive(red, 20%)", "derive(#ff0000, 20%)"},
		{"url fill", "-fx-fill", `url("a.png")`, `image-pattern(url("a.png", null))`},
		{"region", "-fx-shape", `region(".button")`, `"SPECIAL-REGION-URL:.button"`},
		{"effect", "-fx-effect", "dropshadow(gaussian, black, 10, 0, 2, 2)",
			"dropshadow(gaussian, #000000, 10px, 0px, 2px, 2px)"},
		{"linear to right", "-fx-background-color", "linear-gradient(to right, red, blue 80%, green)",
			"linear-gradient(0%, 0%, 100%, 0%, no-cycle, stop(0%, #ff0000), stop(80%, #0000ff), stop(100%, #008000))"},
		{"linear to top left", "-fx-fill", "linear-gradient(to top left, red, blue)",
			"linear-gradient(100%, 100%, 0%, 0%, no-cycle, stop(0%, #ff0000), stop(100%, #0000ff))"},
		{"linear from to", "-fx-fill", "linear-gradient(from 0px 0px to 10px 20px, repeat, red, blue)",
			"linear-gradient(0px, 0px, 10px, 20px, repeat, stop(0%, #ff0000), stop(100%, #0000ff))"},
		{"radial", "-fx-fill", "radial-gradient(focus-angle 45deg, center 50% 50%, radius 10px, reflect, red, blue)",
			"radial-gradient(45deg, null, 50%, 50%, 10px, reflect, stop(0%, #ff0000), stop(100%, #0000ff))"},
		{"ladder", "-fx-text-fill", "ladder(gray, white 49%, black 50%)",
			"ladder(#808080, stop(49%, #ffffff), stop(50%, #000000))"},
		{"image pattern", "-fx-fill", `image-pattern("a.png", 0, 0, 1, 1, false)`,
			`image-pattern(url("a.png", null), 0px, 0px, 1px, 1px, false)`},
		{"repeating image pattern", "-fx-fill", `repeating-image-pattern("a.png")`,
			`repeating-image-pattern(url("a.png", null))`},
		{"background image", "-fx-background-image", `url(a.png), url("b.png")`,
			`url("a.png", null), url("b.png", null)`},
		{"margins", "-fx-border-width", "1 2, 3", "margins(1px, 2px, 1px, 2px), margins(3px, 3px, 3px, 3px)"},
		{"opaque insets last layer", "-fx-opaque-insets", "1, 2", "insets(2px, 2px, 2px, 2px)"},
		{"radius", "-fx-background-radius", "5", "corner-radii(5px 5px 5px 5px, 5px 5px 5px 5px)"},
		{"radius vertical", "-fx-border-radius", "5 10 / 2",
			"corner-radii(5px 10px 5px 10px, 2px 2px 2px 2px)"},
		{"radius zero corner", "-fx-background-radius", "5 0 / 10",
			"corner-radii(5px 0px 5px 0px, 10px 0px 10px 0px)"},
		{"position center", "-fx-background-position", "center", "background-position(50%, 0%, 0%, 50%)"},
		{"position swapped", "-fx-background-position", "top right", "background-position(0%, 0%, 0%, 100%)"},
		{"position offset", "-fx-background-position", "right 10px top", "background-position(0%, 10px, 0%, 0%)"},
		{"position four", "-fx-background-position", "left 5px bottom 10px", "background-position(0%, 0%, 10px, 5px)"},
		{"repeat x", "-fx-background-repeat", "repeat-x", "repeat-style(repeat, no-repeat)"},
		{"repeat two", "-fx-border-image-repeat", "space round", "repeat-style(space, round)"},
		{"bg size cover", "-fx-background-size", "cover", "background-size(null, null, true, false)"},
		{"bg size auto height", "-fx-background-size", "50% auto", "background-size(50%, null, false, false)"},
		{"bg size stretch", "-fx-background-size", "stretch", "background-size(100%, 100%, false, false)"},
		{"border color", "-fx-border-color", "red blue", "#ff0000 #0000ff #ff0000 #0000ff"},
		{"border slice", "-fx-border-image-slice", "10 20 fill", "border-image-slice(insets(10px, 20px, 10px, 20px), true)"},
		{"border image width", "-fx-border-image-width", "1", "margins(1px, 1px, 1px, 1px)"},
		{"dash array", "-fx-stroke-dash-array", "5 3", "5px 3px"},
		{"line join", "-fx-stroke-line-join", "bevel", "bevel"},
		{"line cap", "-fx-stroke-line-cap", "butt", "butt"},
		{"stroke type", "-fx-stroke-type", "outside", "outside"},
		{"blend mode", "-fx-blend-mode", "multiply", `"multiply"`},
		{"font family", "-fx-font-family", `"Open Sans"`, `"Open Sans"`},
		{"generic family", "-fx-font-family", "Serif", `"serif"`},
		{"font size keyword", "-fx-font-size", "x-large", "150%"},
		{"font weight", "-fx-font-weight", "600", "semi-bold"},
		{"font style", "-fx-font-style", "oblique", "italic"},
		{"font", "-fx-font", "italic bold 12px/1.5 Arial", `font("Arial", 12px, bold, italic)`},
		{"font short", "font", `10pt "Some Font"`, `font("Some Font", 10pt, null, null)`},
		{"font inherit size", "-fx-font", "bold inherit Arial", `font("Arial", 100%, bold, null)`},
		{"font inherit weight", "-fx-font", "small-caps inherit italic 12px Arial", `font("Arial", 12px, normal, italic)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(zaptest.NewLogger(t))
			v, err := interpret(t, in, tt.prop, tt.src)
			if err != nil {
				t.Fatalf("Interpret(%q) error: %v", tt.src, err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("Interpret(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestInterpretErrors(t *testing.T) {
	tests := []struct {
		name string
		prop string
		src  string
		want string
		at   string
	}{
		{"rgb mixed", "-fx-fill", "rgb(255, 50%, 0)", "Argument type mistmatch", ""},
		{"rgb arg", "-fx-fill", "rgb(red, 0, 0)", "Expected '<number>' or '<percentage>'", "red"},
		{"hsb saturation", "-fx-fill", "hsb(10, 5, 5%)", "Expected '<percent>'", "5"},
		{"derive brightness", "-fx-fill", "derive(red)", "Expected '<percent>'", "red"},
		{"mixed stops", "-fx-fill", "linear-gradient(red 10px, blue 50%)", "Mixed units in color stops", "50%"},
		{"one stop", "-fx-fill", "linear-gradient(red)", "Expected '<color-stop>'", ""},
		{"side", "-fx-fill", "linear-gradient(to left right, red, blue)", "Invalid '<side-or-corner>'", "right"},
		{"focus distance", "-fx-fill", "radial-gradient(focus-distance 10px, radius 5, red, blue)", "Expected '%'", "10px"},
		{"unknown function", "-fx-fill", "foo(1)", "Unexpected function 'foo('", "foo("},
		{"blur type", "-fx-effect", "innershadow(fuzzy, red, 1, 1, 1, 1)",
			"Expected 'gaussian', 'one-pass-box', 'two-pass-box', or 'three-pass-box'", "fuzzy"},
		{"shadow args", "-fx-effect", "dropshadow(gaussian, red, 1)", "Expected '<number>'", "1"},
		{"url", "-fx-background-image", "red", `Expected 'url("<uri-string>")'`, "red"},
		{"radius slashes", "-fx-background-radius", "1 / 2 / 3", "unexpected SOLIDUS", "/"},
		{"radius too many", "-fx-background-radius", "1 2 3 4 5", radiusSyntax, "1"},
		{"repeat", "-fx-background-repeat", "repeat repeat-x", "Unexpected 'repeat-x'", "repeat-x"},
		{"repeat unknown", "-fx-background-repeat", "tile", "Expected  '<repeat-style>' tile", "tile"},
		{"bg size", "-fx-background-size", "cover auto", "Unexpected '<bg-size>'", "auto"},
		{"border style", "-fx-border-style", "double", "Unsupported <border-style> 'double'", "double"},
		{"line join", "-fx-border-style", "solid line-join sharp", "Expected 'miter <size>?', 'bevel' or 'round'", "sharp"},
		{"font family", "-fx-font", "12px 14px", "Expected '<font-family>'", "14px"},
		{"font size", "-fx-font", "bold Arial", "Expected '<font-size>'", "bold"},
		{"font keyword twice", "-fx-font", "italic italic 12px Arial", "Expected '<font-weight>', '<font-style>' or '<font-variant>'", "italic"},
		{"font weight", "-fx-font-weight", "heavy", "Expected '<font-weight>'", "heavy"},
		{"keyword string", "-fx-blend-mode", "12px", "Expected STRING or IDENT", "12px"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(zaptest.NewLogger(t))
			_, err := interpret(t, in, tt.prop, tt.src)
			var ge *Error
			if !errors.As(err, &ge) {
				t.Fatalf("Interpret(%q) error = %v, want *Error", tt.src, err)
			}
			if ge.Msg != tt.want {
				t.Errorf("Interpret(%q) error = %q, want %q", tt.src, ge.Msg, tt.want)
			}
			if tt.at != "" && ge.Token.Text != tt.at {
				t.Errorf("Interpret(%q) error at %q, want %q", tt.src, ge.Token.Text, tt.at)
			}
		})
	}
}

func TestEmptyValue(t *testing.T) {
	_, err := New(nil).Interpret("-fx-fill", &term.Arena{}, term.Nil)
	if err == nil || err.Error() != "Expected value for property '-fx-fill'" {
		t.Errorf("Interpret() error = %v", err)
	}
}

func stopPositions(t *testing.T, v *value.ParsedValue, from int) []float64 {
	t.Helper()
	var out []float64
	for _, stop := range v.Values()[from:] {
		s, ok := stop.Part(0).Size()
		if !ok || s.Unit != value.SizeUnitPercent {
			t.Fatalf("stop %s has no percent position", stop)
		}
		out = append(out, s.Value)
	}
	return out
}

func TestColorStopNormalization(t *testing.T) {
	tests := []struct {
		src  string
		want []float64
	}{
		{"linear-gradient(red, blue, green 100%)", []float64{0, 50, 100}},
		{"linear-gradient(red 80%, blue 20%)", []float64{80, 80}},
		{"linear-gradient(red, blue, green, white)", []float64{0, 100.0 / 3, 200.0 / 3, 100}},
		{"linear-gradient(red 10%, blue, green 40%, white 30%, black)", []float64{10, 25, 40, 40, 100}},
		{"linear-gradient(red 50%, blue, green 20%, white)", []float64{50, 50, 50, 100}},
		{"linear-gradient(red 60%, blue, green, black 30%, white 70%)", []float64{60, 60, 60, 60, 70}},
	}
	for _, tt := range tests {
		v, err := interpret(t, New(zaptest.NewLogger(t)), "-fx-fill", tt.src)
		if err != nil {
			t.Fatalf("Interpret(%q) error: %v", tt.src, err)
		}
		got := stopPositions(t, v, 5)
		if len(got) != len(tt.want) {
			t.Fatalf("%q positions = %v, want %v", tt.src, got, tt.want)
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-9 {
				t.Errorf("%q positions = %v, want %v", tt.src, got, tt.want)
				break
			}
		}
	}
}

func TestRGBAlpha(t *testing.T) {
	v, err := interpret(t, New(zaptest.NewLogger(t)), "-fx-fill", "rgba(0, 0, 255, 1.5)")
	if err != nil {
		t.Fatal(err)
	}
	c, ok := v.Raw.(value.Color)
	if !ok || c.A != 1 || c.B != 1 {
		t.Errorf("rgba() = %v", v.Raw)
	}
	v, err = interpret(t, New(zaptest.NewLogger(t)), "-fx-fill", "hsba(0, 0%, 0%, 0.25)")
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := v.Raw.(value.Color); c.A != 0.25 {
		t.Errorf("hsba() alpha = %v", c.A)
	}
}

func TestSpecialIdentifiers(t *testing.T) {
	in := New(zaptest.NewLogger(t))
	v, err := interpret(t, in, "-fx-max-width", "infinity")
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := v.Size(); !ok || s.Value != math.MaxFloat64 {
		t.Errorf("infinity = %v", v)
	}
	v, err = interpret(t, in, "-fx-cycle", "indefinite")
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := v.Size(); v.Converter != value.ConverterDuration || !math.IsInf(s.Value, 1) {
		t.Errorf("indefinite = %s", v.Fingerprint())
	}
}

func TestLookups(t *testing.T) {
	in := New(zaptest.NewLogger(t))
	if _, err := interpret(t, in, "-FX-Base", "#336699"); err != nil {
		t.Fatal(err)
	}
	if !in.Known("-fx-base") {
		t.Fatalf("property not remembered")
	}
	v, err := interpret(t, in, "-fx-text-fill", "-fx-base")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Lookup || v.Raw != "-fx-base" {
		t.Errorf("known property = %s, want lookup", v.Fingerprint())
	}
	// unknown identifiers which are not colors are lookups too
	v, err = interpret(t, in, "-fx-text-fill", "accent-color")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Lookup {
		t.Errorf("unknown identifier = %s, want lookup", v.Fingerprint())
	}
	v, err = interpret(t, in, "-fx-text-fill", "red")
	if err != nil || v.Lookup {
		t.Errorf("color = %v, %v", v, err)
	}
}

func TestDeprecatedSyntax(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	in := New(zap.New(core))

	v, err := interpret(t, in, "-fx-background-color", "ladder red stops (0, black) (1, white), blue")
	if err != nil {
		t.Fatal(err)
	}
	want := "ladder(#ff0000, stop(0px, #000000), stop(1px, #ffffff)), #0000ff"
	if got := v.String(); got != want {
		t.Errorf("ladder = %s, want %s", got, want)
	}

	v, err = interpret(t, in, "-fx-background-color", "linear (0%, 0%) to (0%, 100%) stops (0%, red) (100%, blue) reflect, green")
	if err != nil {
		t.Fatal(err)
	}
	want = "linear-gradient(0%, 0%, 0%, 100%, reflect, stop(0%, #ff0000), stop(100%, #0000ff)), #008000"
	if got := v.String(); got != want {
		t.Errorf("linear = %s, want %s", got, want)
	}

	v, err = interpret(t, in, "-fx-fill", "radial center (50%, 50%) 10px stops (0, red) (1, blue)")
	if err != nil {
		t.Fatal(err)
	}
	want = "radial-gradient(null, null, 50%, 50%, 10px, no-cycle, stop(0px, #ff0000), stop(1px, #0000ff))"
	if got := v.String(); got != want {
		t.Errorf("radial = %s, want %s", got, want)
	}

	if n := logs.FilterMessageSnippet("deprecated").Len(); n != 3 {
		t.Errorf("logged %d deprecation warnings, want 3", n)
	}
}

func TestBorderStyle(t *testing.T) {
	in := New(zaptest.NewLogger(t))
	v, err := interpret(t, in, "-fx-border-style",
		"dashed phase 2 centered line-join miter 4 line-cap round solid, segments(1, 2) inside")
	if err != nil {
		t.Fatal(err)
	}
	layers := v.Values()
	if len(layers) != 2 {
		t.Fatalf("got %d layers: %s", len(layers), v)
	}
	first := layers[0].Values()
	if len(first) != 4 {
		t.Fatalf("first layer = %s", layers[0])
	}
	want := "border-stroke-style(dashed, 2px, centered, miter, 4px, round)"
	if got := first[0].String(); got != want {
		t.Errorf("top = %s, want %s", got, want)
	}
	if got := first[1].String(); got != "border-stroke-style(solid, null, null, null, null, null)" {
		t.Errorf("right = %s", got)
	}
	if first[2] != first[0] || first[3] != first[1] {
		t.Errorf("sides are not expanded")
	}
	if got := layers[1].Values()[0].String(); got != "border-stroke-style(1px 2px, null, inside, null, null, null)" {
		t.Errorf("second layer = %s", got)
	}
}

func TestProperties(t *testing.T) {
	props := Properties()
	if !slices.IsSorted(props) {
		t.Errorf("Properties() is not sorted")
	}
	for _, want := range []string{"-fx-padding", "-fx-background-color", "-fx-font", "-fx-font-size"} {
		if !slices.Contains(props, want) {
			t.Errorf("Properties() has no %s", want)
		}
	}
	for _, p := range props {
		if !strings.HasPrefix(p, VendorPrefix) {
			t.Errorf("property %s has no vendor prefix", p)
		}
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		src  string
		want value.Size
	}{
		{"12", value.Px(12)},
		{"12.5%", value.Percent(12.5)},
		{"2em", value.Size{Value: 2, Unit: value.SizeUnitEm}},
		{"1.5ex", value.Size{Value: 1.5, Unit: value.SizeUnitEx}},
		{"3cm", value.Size{Value: 3, Unit: value.SizeUnitCm}},
		{"4mm", value.Size{Value: 4, Unit: value.SizeUnitMm}},
		{"1in", value.Size{Value: 1, Unit: value.SizeUnitIn}},
		{"10pt", value.Size{Value: 10, Unit: value.SizeUnitPt}},
		{"2pc", value.Size{Value: 2, Unit: value.SizeUnitPc}},
		{"90deg", value.Size{Value: 90, Unit: value.SizeUnitDeg}},
		{"100grad", value.Size{Value: 100, Unit: value.SizeUnitGrad}},
		{"1rad", value.Size{Value: 1, Unit: value.SizeUnitRad}},
		{"0.5turn", value.Size{Value: 0.5, Unit: value.SizeUnitTurn}},
		{"-3px", value.Px(-3)},
	}
	for _, tt := range tests {
		v, err := interpret(t, New(nil), "-fx-size", tt.src)
		if err != nil {
			t.Fatalf("%q: %v", tt.src, err)
		}
		if s, ok := v.Size(); !ok || s != tt.want {
			t.Errorf("%q = %v, want %v", tt.src, v.Raw, tt.want)
		}
	}
}
