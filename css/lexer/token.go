// Package lexer turns stylesheet text into a flat stream of typed tokens.
package lexer

import "strconv"

// Kind is the type of a token.
type Kind int

// Token kinds. Order of the numeric kinds matters, see IsSize.
const (
	InvalidToken Kind = iota
	NumberToken
	PercentageToken
	EmsToken
	ExsToken
	PxToken
	CmToken
	MmToken
	InToken
	PtToken
	PcToken
	DegToken
	GradToken
	RadToken
	TurnToken
	SToken
	MsToken
	IdentToken
	StringToken
	HashToken
	FunctionToken
	URLToken
	LBraceToken
	RBraceToken
	LParenToken
	RParenToken
	LBracketToken
	RBracketToken
	ColonToken
	SemiToken
	CommaToken
	DotToken
	StarToken
	GreaterToken
	SolidusToken
	WSToken
	NLToken
	ImportantToken
	AtKeywordToken
	EOFToken
	SkipToken
)

var kindNames = [...]string{
	InvalidToken:    "INVALID",
	NumberToken:     "NUMBER",
	PercentageToken: "PERCENTAGE",
	EmsToken:        "EMS",
	ExsToken:        "EXS",
	PxToken:         "PX",
	CmToken:         "CM",
	MmToken:         "MM",
	InToken:         "IN",
	PtToken:         "PT",
	PcToken:         "PC",
	DegToken:        "DEG",
	GradToken:       "GRAD",
	RadToken:        "RAD",
	TurnToken:       "TURN",
	SToken:          "S",
	MsToken:         "MS",
	IdentToken:      "IDENT",
	StringToken:     "STRING",
	HashToken:       "HASH",
	FunctionToken:   "FUNCTION",
	URLToken:        "URL",
	LBraceToken:     "LBRACE",
	RBraceToken:     "RBRACE",
	LParenToken:     "LPAREN",
	RParenToken:     "RPAREN",
	LBracketToken:   "LBRACKET",
	RBracketToken:   "RBRACKET",
	ColonToken:      "COLON",
	SemiToken:       "SEMI",
	CommaToken:      "COMMA",
	DotToken:        "DOT",
	StarToken:       "STAR",
	GreaterToken:    "GREATER",
	SolidusToken:    "SOLIDUS",
	WSToken:         "WS",
	NLToken:         "NL",
	ImportantToken:  "IMPORTANT_SYM",
	AtKeywordToken:  "AT_KEYWORD",
	EOFToken:        "EOF",
	SkipToken:       "SKIP",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsSize reports whether token of this kind is a plain number, a percentage,
// a length or an angle.
func (k Kind) IsSize() bool {
	return k >= NumberToken && k <= TurnToken
}

// IsTime reports whether token of this kind is a duration.
func (k Kind) IsTime() bool {
	return k == SToken || k == MsToken
}

// IsNumeric reports whether token of this kind carries a number.
func (k Kind) IsNumeric() bool {
	return k.IsSize() || k.IsTime()
}

// Token is a single lexical unit. Text is exactly what was read from the
// source, Value is the interpreted text: unquoted and unescaped for strings
// and urls, without the leading marker for hashes and at-keywords and without
// the opening parenthesis for functions.
type Token struct {
	Kind   Kind
	Text   string
	Value  string
	Line   int // 1-based
	Offset int // 0-based, in characters
}

// EOF is returned by a lexer with nothing left to read.
var EOF = Token{Kind: EOFToken}

func (t Token) String() string {
	return t.Kind.String() + "[" + strconv.Itoa(t.Line) + "," + strconv.Itoa(t.Offset) + "] " + strconv.Quote(t.Text)
}

// Position formats token location the way error messages expect it.
func (t Token) Position() string {
	return "[" + strconv.Itoa(t.Line) + "," + strconv.Itoa(t.Offset) + "]"
}
