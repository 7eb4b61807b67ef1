package lexer

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func collect(src string) []Token {
	l := NewString(src)
	var out []Token
	for {
		t := l.NextToken()
		if t.Kind == EOFToken {
			return out
		}
		out = append(out, t)
	}
}

type kt struct {
	kind Kind
	text string
}

func TestNextToken(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []kt
	}{
		{"ident", "red", []kt{{IdentToken, "red"}}},
		{"vendor ident", "-fx-padding", []kt{{IdentToken, "-fx-padding"}}},
		{"non ascii ident", "цвет", []kt{{IdentToken, "цвет"}}},
		{"number", "12.5", []kt{{NumberToken, "12.5"}}},
		{"signed numbers", "-5px +.5", []kt{{PxToken, "-5px"}, {WSToken, " "}, {NumberToken, "+.5"}}},
		{"percentage", "50%", []kt{{PercentageToken, "50%"}}},
		{"lengths", "1em 2ex 3cm 4mm 5in 6pt 7pc", []kt{
			{EmsToken, "1em"}, {WSToken, " "}, {ExsToken, "2ex"}, {WSToken, " "}, {CmToken, "3cm"}, {WSToken, " "},
			{MmToken, "4mm"}, {WSToken, " "}, {InToken, "5in"}, {WSToken, " "}, {PtToken, "6pt"}, {WSToken, " "}, {PcToken, "7pc"}}},
		{"angles", "1deg 2grad 3rad .5turn", []kt{
			{DegToken, "1deg"}, {WSToken, " "}, {GradToken, "2grad"}, {WSToken, " "}, {RadToken, "3rad"}, {WSToken, " "}, {TurnToken, ".5turn"}}},
		{"times", "1s 200ms", []kt{{SToken, "1s"}, {WSToken, " "}, {MsToken, "200ms"}}},
		{"unit case", "10PX", []kt{{PxToken, "10PX"}}},
		{"unit followed by ident", "12pxa", []kt{{PxToken, "12px"}, {IdentToken, "a"}}},
		{"incomplete unit", "12e", []kt{{InvalidToken, "12e"}}},
		{"number then dot", "5.a", []kt{{NumberToken, "5"}, {DotToken, "."}, {IdentToken, "a"}}},
		{"lone minus", "-", []kt{{InvalidToken, "-"}}},
		{"hash", "#fff", []kt{{HashToken, "#fff"}}},
		{"lone hash", "#", []kt{{InvalidToken, "#"}}},
		{"function", "rgb(1,2)", []kt{
			{FunctionToken, "rgb("}, {NumberToken, "1"}, {CommaToken, ","}, {NumberToken, "2"}, {RParenToken, ")"}}},
		{"at keyword", "@font-face", []kt{{AtKeywordToken, "@font-face"}}},
		{"punctuation", "{}()[]:;,.*>/", []kt{
			{LBraceToken, "{"}, {RBraceToken, "}"}, {LParenToken, "("}, {RParenToken, ")"}, {LBracketToken, "["},
			{RBracketToken, "]"}, {ColonToken, ":"}, {SemiToken, ";"}, {CommaToken, ","}, {DotToken, "."},
			{StarToken, "*"}, {GreaterToken, ">"}, {SolidusToken, "/"}}},
		{"whitespace and newlines", "a \t\r\nb", []kt{{IdentToken, "a"}, {WSToken, " \t"}, {NLToken, "\r\n"}, {IdentToken, "b"}}},
		{"block comment", "a/* c */b", []kt{{IdentToken, "a"}, {IdentToken, "b"}}},
		{"line comment", "a // c\nb", []kt{{IdentToken, "a"}, {WSToken, " "}, {NLToken, "\n"}, {IdentToken, "b"}}},
		{"unterminated comment", "a /* c", []kt{{IdentToken, "a"}, {WSToken, " "}, {InvalidToken, "/* c"}}},
		{"string", `"a b"`, []kt{{StringToken, `"a b"`}}},
		{"single quoted string", `'a'`, []kt{{StringToken, `'a'`}}},
		{"unterminated string", "\"abc\nx", []kt{{InvalidToken, `"abc`}, {NLToken, "\n"}, {IdentToken, "x"}}},
		{"important", "!important", []kt{{ImportantToken, "!important"}}},
		{"important with spaces", "! /* x */ IMPORTANT", []kt{{ImportantToken, "! /* x */ IMPORTANT"}}},
		{"important near miss", "!imprtant", []kt{{SkipToken, "!imp"}, {IdentToken, "rtant"}}},
		{"url", "url(a.png)", []kt{{URLToken, "url(a.png)"}}},
		{"broken url", `url(a"b) x`, []kt{{InvalidToken, `url(a"b)`}, {WSToken, " "}, {IdentToken, "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(tt.src)
			if len(got) != len(tt.want) {
				t.Fatalf("collect(%q) = %v, want %d tokens", tt.src, got, len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].Kind != w.kind || got[i].Text != w.text {
					t.Errorf("token %d = %s %q, want %s %q", i, got[i].Kind, got[i].Text, w.kind, w.text)
				}
			}
		})
	}
}

func TestTokenValues(t *testing.T) {
	tests := []struct {
		src   string
		kind  Kind
		value string
	}{
		{`"a\"b"`, StringToken, `a"b`},
		{"\"a\\\nb\"", StringToken, "ab"},
		{`"\41 B"`, StringToken, "AB"},
		{`url( "x y.png" )`, URLToken, "x y.png"},
		{`url(a\)b.png)`, URLToken, "a)b.png"},
		{`URL(http://host/a.css)`, URLToken, "http://host/a.css"},
		{"#abc", HashToken, "abc"},
		{"@import", AtKeywordToken, "import"},
		{"linear-gradient(", FunctionToken, "linear-gradient"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := NewString(tt.src).NextToken()
			if got.Kind != tt.kind {
				t.Fatalf("NextToken(%q).Kind = %s, want %s", tt.src, got.Kind, tt.kind)
			}
			if got.Value != tt.value {
				t.Errorf("NextToken(%q).Value = %q, want %q", tt.src, got.Value, tt.value)
			}
		})
	}
}

func TestPositions(t *testing.T) {
	got := collect("a\n  b {\r\nc")
	want := []struct {
		kind         Kind
		line, offset int
	}{
		{IdentToken, 1, 0},
		{NLToken, 1, 1},
		{WSToken, 2, 0},
		{IdentToken, 2, 2},
		{WSToken, 2, 3},
		{LBraceToken, 2, 4},
		{NLToken, 2, 5},
		{IdentToken, 3, 0},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Line != w.line || got[i].Offset != w.offset {
			t.Errorf("token %d = %s, want %s[%d,%d]", i, got[i], w.kind, w.line, w.offset)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	src := `@import "base.css";
.root > .button:hover, #id {
	-fx-font: italic bold 12px/1.5 "Arial";
	-fx-background-color: #ff0000, rgb(10%, 20%, 30%) !important;
	-fx-background-image: url( img.png );
	x: 1.5em -2px +3 .5in 10deg 2grad 1rad 0.5turn 1s 200ms 4cm 5mm 6pt 7pc 8ex 50%;
	y: ! important;
	z: !imprtant;
}
* { }`

	for _, tok := range collect(src) {
		if tok.Kind == InvalidToken {
			continue
		}
		again := NewString(tok.Text).NextToken()
		if again.Kind != tok.Kind || again.Text != tok.Text {
			t.Errorf("re-lexing %s gave %s %q", tok, again.Kind, again.Text)
		}
	}
}

func TestEOFRepeats(t *testing.T) {
	l := NewString("a")
	l.NextToken()
	for range 3 {
		if tok := l.NextToken(); tok.Kind != EOFToken {
			t.Fatalf("NextToken() after end = %s, want EOF", tok)
		}
	}
}

func TestReaderError(t *testing.T) {
	boom := errors.New("boom")
	l := New(iotest.ErrReader(boom))
	if tok := l.NextToken(); tok.Kind != EOFToken {
		t.Errorf("NextToken() = %s, want EOF", tok)
	}
	if err := l.Err(); !errors.Is(err, boom) {
		t.Errorf("Err() = %v, want %v", err, boom)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, "plain"},
		{`a\"b`, `a"b`},
		{`\000041`, "A"},
		{`\41 x`, "Ax"},
		{"a\\\nb", "ab"},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		if got := Unescape(tt.in); got != tt.want {
			t.Errorf("Unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := ImportantToken.String(); got != "IMPORTANT_SYM" {
		t.Errorf("ImportantToken.String() = %q", got)
	}
	if got := Kind(1000).String(); !strings.HasPrefix(got, "Kind(") {
		t.Errorf("Kind(1000).String() = %q", got)
	}
	if !PxToken.IsSize() || SToken.IsSize() || !MsToken.IsTime() || IdentToken.IsNumeric() {
		t.Error("kind classification is broken")
	}
}
