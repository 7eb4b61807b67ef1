package css_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"fxcss/css"
	"fxcss/css/value"
)

func messages(p *css.Parser) []string {
	var out []string
	for _, e := range p.Errors().Errors() {
		out = append(out, e.Message)
	}
	return out
}

func mapLoader(files map[string]string) css.Loader {
	return css.LoaderFunc(func(_ context.Context, url string) (io.ReadCloser, error) {
		text, ok := files[url]
		if !ok {
			return nil, fmt.Errorf("file not found: %s", url)
		}
		return io.NopCloser(strings.NewReader(text)), nil
	})
}

func TestParser_Selectors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"type", "Button { -fx-fill: red; }", []string{"Button"}},
		{"qualified", "Button.primary#ok:hover { -fx-fill: red; }", []string{"Button#ok.primary:hover"}},
		{"group", "a, b.c { -fx-fill: red; }", []string{"a", "b.c"}},
		{"child and descendant", "VBox > .label Text { -fx-fill: red; }", []string{"VBox > .label Text"}},
		{"newline is descendant", "VBox\n.label { -fx-fill: red; }", []string{"VBox .label"}},
		{"universal", "* { -fx-fill: red; }", []string{"*"}},
		{"direction", ".x:dir(rtl) { -fx-fill: red; }", []string{".x:dir(rtl)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := css.NewParser(zaptest.NewLogger(t))
			sheet := p.Parse(context.Background(), tt.src)
			if n := p.Errors().Len(); n != 0 {
				t.Fatalf("unexpected errors: %v", messages(p))
			}
			if len(sheet.Rules) != 1 {
				t.Fatalf("got %d rules, want 1", len(sheet.Rules))
			}
			var got []string
			for _, sel := range sheet.Rules[0].Selectors {
				got = append(got, sel.String())
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("selectors = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParser_CompoundSelector(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	sheet := p.Parse(context.Background(), "VBox > .label Text:focused { -fx-fill: red; }")
	if len(sheet.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(sheet.Rules))
	}
	cs, ok := sheet.Rules[0].Selectors[0].(*css.CompoundSelector)
	if !ok {
		t.Fatalf("selector is %T, want *css.CompoundSelector", sheet.Rules[0].Selectors[0])
	}
	if len(cs.Selectors) != 3 || len(cs.Relations) != 2 {
		t.Fatalf("got %d selectors and %d relations", len(cs.Selectors), len(cs.Relations))
	}
	if cs.Relations[0] != css.Child || cs.Relations[1] != css.Descendant {
		t.Errorf("relations = %v", cs.Relations)
	}
	last := cs.Simple()[2]
	if last.Name != "Text" || len(last.PseudoClasses) != 1 || last.PseudoClasses[0] != "focused" {
		t.Errorf("last selector = %+v", last)
	}
	if !cs.Selectors[1].HasClass("label") || cs.Selectors[1].Name != "*" {
		t.Errorf("middle selector = %+v", cs.Selectors[1])
	}
}

func TestParser_Direction(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	sheet := p.Parse(context.Background(), ".x:dir(ltr) { -fx-fill: red; } .y:lang(en) { -fx-fill: red; }")
	if len(sheet.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(sheet.Rules))
	}
	s := sheet.Rules[0].Selectors[0].(*css.SimpleSelector)
	if s.Direction != css.DirectionLTR || len(s.PseudoClasses) != 0 {
		t.Errorf("dir selector = %+v", s)
	}
	s = sheet.Rules[1].Selectors[0].(*css.SimpleSelector)
	if len(s.PseudoClasses) != 1 || s.PseudoClasses[0] != "lang(en)" {
		t.Errorf("lang selector = %+v", s)
	}
}

func TestParser_Declarations(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	sheet := p.Parse(context.Background(), `
.button {
	-fx-padding: 1px 2px;
	;;
	-FX-Background-Color: red, #00f;
	-fx-text-fill: red !important;
	-fx-text-fill: blue;
}`)
	if n := p.Errors().Len(); n != 0 {
		t.Fatalf("unexpected errors: %v", messages(p))
	}
	if len(sheet.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(sheet.Rules))
	}
	rule := sheet.Rules[0]
	if len(rule.Declarations) != 4 {
		t.Fatalf("got %d declarations, want 4", len(rule.Declarations))
	}

	tests := []struct {
		property  string
		text      string
		value     string
		important bool
		line      int
	}{
		{"-fx-padding", "1px 2px", "insets(1px, 2px, 1px, 2px)", false, 3},
		{"-fx-background-color", "red, #00f", "#ff0000, #0000ff", false, 5},
		{"-fx-text-fill", "red", "#ff0000", true, 6},
		{"-fx-text-fill", "blue", "#0000ff", false, 7},
	}
	for i, tt := range tests {
		d := rule.Declarations[i]
		if d.Property != tt.property || d.Text != tt.text || d.Important != tt.important || d.Line != tt.line {
			t.Errorf("declaration %d = {%s %q %v line %d}, want {%s %q %v line %d}",
				i, d.Property, d.Text, d.Important, d.Line, tt.property, tt.text, tt.important, tt.line)
		}
		if got := d.Value.String(); got != tt.value {
			t.Errorf("declaration %d value = %q, want %q", i, got, tt.value)
		}
		if d.Rule != rule {
			t.Errorf("declaration %d does not point to its rule", i)
		}
	}

	if d := rule.Declaration("-fx-text-fill"); d == nil || !d.Important {
		t.Errorf("Declaration() should prefer important declaration, got %+v", d)
	}
	if d := rule.Declaration("-fx-font"); d != nil {
		t.Errorf("Declaration() = %+v, want nil", d)
	}
}

func TestParser_Recovery(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		rules    int
		decls    []int
		messages []string
	}{
		{
			name:     "bad selector skips rule",
			src:      "a[x] { -fx-fill: red; } b { -fx-fill: blue; }",
			rules:    1,
			decls:    []int{1},
			messages: []string{"Unexpected token '[' in selector at [1,1]"},
		},
		{
			name:     "missing colon",
			src:      "a { -fx-fill red; -fx-padding: 1; }",
			rules:    1,
			decls:    []int{1},
			messages: []string{"Expected COLON at [1,13]"},
		},
		{
			name:     "semantic error",
			src:      "a { -fx-background-image: red; -fx-padding: 1; }",
			rules:    1,
			decls:    []int{1},
			messages: []string{`Expected 'url("<uri-string>")' while parsing '-fx-background-image' at [1,26]`},
		},
		{
			name:     "broken value",
			src:      "a { -fx-padding: 1px 12e; -fx-fill: red; }",
			rules:    1,
			decls:    []int{1},
			messages: []string{"Unexpected token '12e' at [1,21]"},
		},
		{
			name:     "important near miss",
			src:      "a { -fx-padding: 1px !imprtant; -fx-fill: red; }",
			rules:    1,
			decls:    []int{1},
			messages: []string{"Unexpected token '!imp' at [1,21]"},
		},
		{
			name:     "missing lbrace",
			src:      "a",
			rules:    0,
			messages: []string{"Expected LBRACE at [1,1]"},
		},
		{
			name:     "missing rbrace",
			src:      "a { -fx-fill: red; } b { -fx-fill: red;",
			rules:    1,
			decls:    []int{1},
			messages: []string{"Expected RBRACE at [1,39]"},
		},
		{
			name:     "missing lbrace before next rule",
			src:      "a ) { -fx-fill: red; } b { -fx-fill: blue; }",
			rules:    1,
			decls:    []int{1},
			messages: []string{"Expected LBRACE at [1,2]"},
		},
		{
			name:     "missing rbrace before next rule",
			src:      "a { -fx-fill: red; 5px } b { -fx-fill: blue; }",
			rules:    1,
			decls:    []int{1},
			messages: []string{"Expected RBRACE at [1,19]"},
		},
		{
			name:     "unknown at-rule",
			src:      "@media screen { a { -fx-fill: red; } } b { -fx-fill: blue; }",
			rules:    1,
			decls:    []int{1},
			messages: nil,
		},
		{
			name:     "lone at",
			src:      "@ ; b { -fx-fill: blue; }",
			rules:    1,
			decls:    []int{1},
			messages: []string{"Expected IDENT at [1,0]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := css.NewParser(zaptest.NewLogger(t))
			sheet := p.Parse(context.Background(), tt.src)
			if len(sheet.Rules) != tt.rules {
				t.Fatalf("got %d rules, want %d", len(sheet.Rules), tt.rules)
			}
			for i, n := range tt.decls {
				if got := len(sheet.Rules[i].Declarations); got != n {
					t.Errorf("rule %d has %d declarations, want %d", i, got, n)
				}
			}
			got := messages(p)
			if strings.Join(got, "|") != strings.Join(tt.messages, "|") {
				t.Errorf("messages = %q, want %q", got, tt.messages)
			}
		})
	}
}

func TestParser_ErrorFormat(t *testing.T) {
	var reported []*css.ParseError
	p := css.NewParser(zaptest.NewLogger(t), css.WithReporter(css.ReporterFunc(func(err *css.ParseError) {
		reported = append(reported, err)
	})))

	p.Parse(context.Background(), "a { -fx-fill red; }")
	p.ParseWithBase(context.Background(), "file:///styles/app.css", "a { -fx-fill red; }")
	p.ParseInlineStyle("#node", "-fx-fill red")

	want := []string{
		"CSS Error parsing 'a { -fx-fill red; }: Expected COLON at [1,13]",
		"CSS Error parsing file:///styles/app.css: Expected COLON at [1,13]",
		"CSS Error parsing in-line style '-fx-fill red' from #node: Expected COLON at [1,9]",
	}
	if len(reported) != len(want) {
		t.Fatalf("got %d errors, want %d", len(reported), len(want))
	}
	for i, err := range reported {
		if err.Error() != want[i] {
			t.Errorf("error %d = %q, want %q", i, err.Error(), want[i])
		}
	}
	if p.Errors().Len() != 0 {
		t.Errorf("default error list should not be used when reporter is set")
	}
}

func TestParser_ErrorList(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	p.Parse(context.Background(), "a { -fx-fill red; -fx-padding: x y z w v; } b[")
	if p.Errors().Err() == nil {
		t.Fatal("expected combined error")
	}
	if got, want := len(multierr.Errors(p.Errors().Err())), p.Errors().Len(); got != want {
		t.Errorf("combined error has %d errors, list has %d", got, want)
	}
	var pe *css.ParseError
	if !errors.As(p.Errors().Err(), &pe) {
		t.Errorf("combined error does not unwrap to *css.ParseError")
	}
	p.Errors().Reset()
	if p.Errors().Err() != nil {
		t.Errorf("Err() after Reset() = %v", p.Errors().Err())
	}
}

func TestParser_FontFace(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	sheet := p.ParseWithBase(context.Background(), "http://example.com/css/main.css", `
@font-face {
	font-family: "My Font";
	font-weight: bold;
	src: url("fonts/a.ttf") format("truetype"), local("Arial Bold"), Fallback;
}
.label { -fx-font-family: "My Font"; }
`)
	if n := p.Errors().Len(); n != 0 {
		t.Fatalf("unexpected errors: %v", messages(p))
	}
	if len(sheet.FontFaces) != 1 || len(sheet.Rules) != 1 {
		t.Fatalf("got %d font faces and %d rules", len(sheet.FontFaces), len(sheet.Rules))
	}
	ff := sheet.FontFaces[0]
	if ff.Family() != "My Font" {
		t.Errorf("Family() = %q", ff.Family())
	}
	if ff.Descriptors["font-weight"] != "bold" {
		t.Errorf("font-weight = %q", ff.Descriptors["font-weight"])
	}
	want := []css.FontFaceSource{
		{Kind: css.FontSourceURL, Value: "http://example.com/css/fonts/a.ttf", Format: "truetype"},
		{Kind: css.FontSourceLocal, Value: "Arial Bold"},
		{Kind: css.FontSourceReference, Value: "Fallback"},
	}
	if len(ff.Sources) != len(want) {
		t.Fatalf("got %d sources: %+v", len(ff.Sources), ff.Sources)
	}
	for i := range want {
		if ff.Sources[i] != want[i] {
			t.Errorf("source %d = %+v, want %+v", i, ff.Sources[i], want[i])
		}
	}
}

func TestParser_FontFaceBadSource(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	sheet := p.Parse(context.Background(), `@font-face { src: svg(x), local(Arial); }`)
	if len(sheet.FontFaces) != 1 {
		t.Fatalf("got %d font faces", len(sheet.FontFaces))
	}
	if got := sheet.FontFaces[0].Sources; len(got) != 1 || got[0].Kind != css.FontSourceLocal {
		t.Errorf("sources = %+v", got)
	}
	if got := messages(p); len(got) != 1 || !strings.HasPrefix(got[0], "Unknown @font-face src type [svg()]") {
		t.Errorf("messages = %q", got)
	}
}

func TestParser_Import(t *testing.T) {
	files := map[string]string{
		"main.css": `@import "base.css";
@import url(missing.css);
a { -fx-fill: red; }`,
		"base.css": `@font-face { font-family: Base; src: local(Base); }
b { -fx-padding: 1px; }`,
	}
	p := css.NewParser(zaptest.NewLogger(t), css.WithLoader(mapLoader(files)))
	sheet, err := p.ParseURL(context.Background(), "main.css")
	if err != nil {
		t.Fatalf("ParseURL() error = %v", err)
	}
	var sels []string
	for _, r := range sheet.Rules {
		sels = append(sels, r.Selectors[0].String())
	}
	if strings.Join(sels, ",") != "b,a" {
		t.Errorf("rules = %v, want imported rules first", sels)
	}
	if len(sheet.FontFaces) != 1 || sheet.FontFaces[0].Family() != "Base" {
		t.Errorf("font faces were not imported: %+v", sheet.FontFaces)
	}
	if len(sheet.Imports) != 1 || sheet.Imports[0] != "base.css" {
		t.Errorf("imports = %v", sheet.Imports)
	}
	got := messages(p)
	if len(got) != 1 || got[0] != "Could not import missing.css" {
		t.Errorf("messages = %q", got)
	}
	if errs := p.Errors().Errors(); len(errs) == 1 && errs[0].Location != "main.css" {
		t.Errorf("error location = %q", errs[0].Location)
	}
}

func TestParser_RecursiveImport(t *testing.T) {
	files := map[string]string{
		"a.css": `@import "b.css"; a { -fx-fill: red; }`,
		"b.css": `@import "a.css"; b { -fx-fill: red; }`,
	}
	p := css.NewParser(zaptest.NewLogger(t), css.WithLoader(mapLoader(files)))
	sheet, err := p.ParseURL(context.Background(), "a.css")
	if err != nil {
		t.Fatalf("ParseURL() error = %v", err)
	}
	if len(sheet.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(sheet.Rules))
	}
	errs := p.Errors().Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), messages(p))
	}
	if errs[0].Location != "b.css" || !strings.HasPrefix(errs[0].Message, "Recursive @import at b.css") {
		t.Errorf("error = %+v", errs[0])
	}
}

func TestParser_SelfImport(t *testing.T) {
	files := map[string]string{"a.css": `@import "a.css"; a { -fx-fill: red; }`}
	p := css.NewParser(zaptest.NewLogger(t), css.WithLoader(mapLoader(files)))
	sheet, err := p.ParseURL(context.Background(), "a.css")
	if err != nil {
		t.Fatalf("ParseURL() error = %v", err)
	}
	if len(sheet.Rules) != 1 || len(sheet.Imports) != 0 {
		t.Errorf("got %d rules and imports %v", len(sheet.Rules), sheet.Imports)
	}
	if p.Errors().Len() != 1 {
		t.Errorf("messages = %q", messages(p))
	}
}

func TestParser_ImportDepth(t *testing.T) {
	files := map[string]string{
		"1.css": `@import "2.css"; a { -fx-fill: red; }`,
		"2.css": `@import "3.css"; b { -fx-fill: red; }`,
		"3.css": `c { -fx-fill: red; }`,
	}
	p := css.NewParser(zaptest.NewLogger(t), css.WithLoader(mapLoader(files)), css.WithMaxImportDepth(2))
	sheet, err := p.ParseURL(context.Background(), "1.css")
	if err != nil {
		t.Fatalf("ParseURL() error = %v", err)
	}
	if len(sheet.Rules) != 2 {
		t.Errorf("got %d rules, want 2", len(sheet.Rules))
	}
	if got := messages(p); len(got) != 1 || got[0] != "Could not import 3.css" {
		t.Errorf("messages = %q", got)
	}
}

func TestParser_ParseURLErrors(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	if _, err := p.ParseURL(context.Background(), "a.css"); !errors.Is(err, css.ErrNoLoader) {
		t.Errorf("ParseURL() without loader error = %v", err)
	}

	p = css.NewParser(zaptest.NewLogger(t), css.WithLoader(mapLoader(nil)))
	if _, err := p.ParseURL(context.Background(), "a.css"); err == nil {
		t.Error("ParseURL() of missing file should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p = css.NewParser(zaptest.NewLogger(t), css.WithLoader(mapLoader(map[string]string{"a.css": ""})))
	if _, err := p.ParseURL(ctx, "a.css"); !errors.Is(err, context.Canceled) {
		t.Errorf("ParseURL() with canceled context error = %v", err)
	}
}

func TestParser_SessionInContext(t *testing.T) {
	sess := css.NewSession()
	ctx := css.WithSession(context.Background(), sess)
	if css.SessionFrom(ctx) != sess {
		t.Fatal("SessionFrom() did not return stored session")
	}
	p := css.NewParser(zaptest.NewLogger(t))
	if _, err := p.ParseReader(ctx, "x.css", strings.NewReader("a { -fx-fill: red; }")); err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if sess.Depth() != 0 || sess.Active("x.css") {
		t.Errorf("session was not unwound, depth %d", sess.Depth())
	}
}

func TestParser_InlineStyle(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t), css.WithOrigin(css.OriginUser))
	sheet := p.ParseInlineStyle("#node", "-fx-fill: red; -fx-padding: 2px")
	if sheet.Origin != css.OriginInline {
		t.Errorf("origin = %v", sheet.Origin)
	}
	if len(sheet.Rules) != 1 {
		t.Fatalf("got %d rules", len(sheet.Rules))
	}
	r := sheet.Rules[0]
	if len(r.Selectors) != 1 || r.Selectors[0].String() != "*" {
		t.Errorf("selectors = %v", r.Selectors)
	}
	if len(r.Declarations) != 2 {
		t.Errorf("got %d declarations", len(r.Declarations))
	}

	if sheet := p.ParseInlineStyle("#node", "   "); len(sheet.Rules) != 0 {
		t.Errorf("empty style produced rules")
	}
}

func TestParser_ParseExpr(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	v, err := p.ParseExpr("-fx-padding", "1px 2px 3px")
	if err != nil {
		t.Fatalf("ParseExpr() error = %v", err)
	}
	got, err := v.Convert(nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if want := (value.Insets{Top: 1, Right: 2, Bottom: 3, Left: 2}); got != want {
		t.Errorf("Convert() = %+v, want %+v", got, want)
	}

	_, err = p.ParseExpr("-fx-background-image", "red")
	var pe *css.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("ParseExpr() error = %v, want *css.ParseError", err)
	}
	if want := `Expected 'url("<uri-string>")' while parsing '-fx-background-image' at [1,0]`; pe.Message != want {
		t.Errorf("message = %q, want %q", pe.Message, want)
	}

	if _, err := p.ParseExpr("-fx-padding", "1px ["); err == nil {
		t.Error("ParseExpr() of broken value should fail")
	}
	if p.Errors().Len() != 0 {
		t.Errorf("ParseExpr() should not report errors: %v", messages(p))
	}
}

func TestParser_URLs(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	src := `a { -fx-background-image: url("img/x.png"), url(y.png); } b { -fx-fill: url(z.png); }`

	sheet := p.Parse(context.Background(), src)
	if n := css.FixupURLs(sheet, "http://h/css/s.css"); n != 3 {
		t.Errorf("FixupURLs() = %d, want 3", n)
	}
	if n := css.FixupURLs(sheet, "http://other/"); n != 0 {
		t.Errorf("second FixupURLs() = %d, want 0", n)
	}

	var got []string
	err := css.ResolveURLs(sheet, value.DefaultResolver, func(property, url string) {
		got = append(got, property+"="+url)
	})
	if err != nil {
		t.Fatalf("ResolveURLs() error = %v", err)
	}
	want := []string{
		"-fx-background-image=http://h/css/img/x.png",
		"-fx-background-image=http://h/css/y.png",
		"-fx-fill=http://h/css/z.png",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("urls = %q, want %q", got, want)
	}

	based := p.ParseWithBase(context.Background(), "http://h/css/s.css", src)
	if n := css.FixupURLs(based, "http://other/"); n != 0 {
		t.Errorf("ParseWithBase() left %d placeholders without base", n)
	}
}

func TestParser_SharedValues(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	sheet := p.Parse(context.Background(), "a { -fx-padding: 1px; } b { -fx-padding: 1px; }")
	if len(sheet.Rules) != 2 {
		t.Fatalf("got %d rules", len(sheet.Rules))
	}
	if sheet.Rules[0].Declarations[0].Value != sheet.Rules[1].Declarations[0].Value {
		t.Errorf("equal values are not shared")
	}
}

func TestStylesheet_WriteTo(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	sheet := p.Parse(context.Background(), `@font-face { font-family: "A"; src: url(a.ttf) format("truetype"), local(A); }
a, b.c { -fx-fill: red; -fx-padding:1px   2px !important }`)

	want := `@font-face {
  font-family: "A";
  src: url("a.ttf") format("truetype"), local("A");
}

a, b.c {
  -fx-fill: red;
  -fx-padding: 1px 2px !important;
}
`
	if got := sheet.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestStylesheet_MarshalYAML(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	sheet := p.ParseWithBase(context.Background(), "s.css", "a { -fx-padding: 1px; -fx-text-fill: accent !important; }")

	out, err := yaml.Marshal(sheet)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	var back struct {
		URL    string `yaml:"url"`
		Origin string `yaml:"origin"`
		Rules  []struct {
			Selectors    []string `yaml:"selectors"`
			Declarations []struct {
				Property  string `yaml:"property"`
				Converter string `yaml:"converter"`
				Important bool   `yaml:"important"`
				Lookup    bool   `yaml:"lookup"`
			} `yaml:"declarations"`
		} `yaml:"rules"`
	}
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v\n%s", err, out)
	}
	if back.URL != "s.css" || back.Origin != "author" || len(back.Rules) != 1 {
		t.Fatalf("unexpected dump:\n%s", out)
	}
	decls := back.Rules[0].Declarations
	if len(decls) != 2 || decls[0].Converter != "insets" || !decls[1].Important || !decls[1].Lookup {
		t.Errorf("unexpected declarations:\n%s", out)
	}
}

func TestStylesheet_RulesBySelector(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	sheet := p.Parse(context.Background(), ".a { -fx-fill: red; } .b, .a { -fx-fill: blue; } .c { -fx-fill: red; }")
	if got := len(sheet.RulesBySelector(".a")); got != 2 {
		t.Errorf("RulesBySelector(.a) = %d rules, want 2", got)
	}
	if got := len(sheet.RulesBySelector(".d")); got != 0 {
		t.Errorf("RulesBySelector(.d) = %d rules, want 0", got)
	}
}

func TestParser_EmptyInput(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))
	for _, src := range []string{"", "  \n\t", "/* nothing */"} {
		sheet := p.Parse(context.Background(), src)
		if len(sheet.Rules) != 0 || p.Errors().Len() != 0 {
			t.Errorf("Parse(%q) = %d rules, errors %v", src, len(sheet.Rules), messages(p))
		}
	}
}
