package lexer

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2"
)

// Lexer is a scanner over a single source. It never fails: anything it
// cannot make sense of comes out as InvalidToken (or SkipToken for a broken
// "!important"). Whitespace and newlines are tokens.
type Lexer struct {
	r *parse.Input

	line, col int
	newline   bool // line is advanced when the character after newline is read

	startLine, startCol int

	state    state
	unitMask uint16
	unitPos  int
}

// New creates lexer reading everything from r.
func New(r io.Reader) *Lexer {
	l := &Lexer{}
	l.SetSource(parse.NewInput(r))
	return l
}

// NewString creates lexer over text.
func NewString(text string) *Lexer {
	l := &Lexer{}
	l.SetSource(parse.NewInputString(text))
	return l
}

// SetSource resets lexer to the beginning of input.
func (l *Lexer) SetSource(in *parse.Input) {
	*l = Lexer{r: in, line: 1}
}

// Err returns input read error if any, end of input is not an error.
func (l *Lexer) Err() error {
	if err := l.r.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// mark remembers scanner position so it could be restored.
type mark struct {
	pos       int
	line, col int
	newline   bool
}

func (l *Lexer) mark() mark {
	return mark{pos: l.r.Pos(), line: l.line, col: l.col, newline: l.newline}
}

func (l *Lexer) rewind(m mark) {
	l.r.Rewind(m.pos)
	l.line, l.col, l.newline = m.line, m.col, m.newline
}

// move consumes n bytes keeping track of lines and columns.
func (l *Lexer) move(n int) {
	for i := range n {
		c := l.r.Peek(i)
		if l.newline {
			l.line++
			l.col = 0
			l.newline = false
		}
		switch {
		case c == '\n' || c == '\f':
			l.newline = true
		case c == '\r':
			l.newline = l.r.Peek(i+1) != '\n'
		}
		if !utf8.RuneStart(c) {
			continue
		}
		l.col++
	}
	l.r.Move(n)
}

func (l *Lexer) atEOF(pos int) bool {
	return l.r.Peek(pos) == 0 && l.r.PeekErr(pos) != nil
}

func (l *Lexer) emit(kind Kind) Token {
	text := string(l.r.Shift())
	t := Token{Kind: kind, Text: text, Value: text, Line: l.startLine, Offset: l.startCol}
	switch kind {
	case HashToken:
		t.Value = text[1:]
	case AtKeywordToken:
		t.Value = text[1:]
	case FunctionToken:
		t.Value = text[:len(text)-1]
	case StringToken:
		t.Value = Unquote(text)
	}
	return t
}

// NextToken returns next token from the source. After the end of input it
// keeps returning EOFToken.
func (l *Lexer) NextToken() Token {
	for {
		l.r.Skip()
		l.startLine, l.startCol = l.line, l.col
		if l.newline {
			l.startLine, l.startCol = l.line+1, 0
		}

		c := l.r.Peek(0)
		switch c {
		case 0:
			if l.atEOF(0) {
				return l.emit(EOFToken)
			}
			l.move(1)
			return l.emit(InvalidToken)
		case ' ', '\t':
			for c := l.r.Peek(0); c == ' ' || c == '\t'; c = l.r.Peek(0) {
				l.move(1)
			}
			return l.emit(WSToken)
		case '\r':
			if l.r.Peek(1) == '\n' {
				l.move(2)
			} else {
				l.move(1)
			}
			return l.emit(NLToken)
		case '\n', '\f':
			l.move(1)
			return l.emit(NLToken)
		case '"', '\'':
			if !l.scanString() {
				return l.emit(InvalidToken)
			}
			return l.emit(StringToken)
		case '/':
			switch l.r.Peek(1) {
			case '*':
				if !l.skipBlockComment() {
					return l.emit(InvalidToken)
				}
				continue
			case '/':
				for !isNewline(l.r.Peek(0)) && !l.atEOF(0) {
					l.move(1)
				}
				continue
			}
			l.move(1)
			return l.emit(SolidusToken)
		case '!':
			return l.scanImportant()
		}
		if kind, ok := punctuation[c]; ok {
			l.move(1)
			return l.emit(kind)
		}
		return l.scan()
	}
}

var punctuation = map[byte]Kind{
	'{': LBraceToken,
	'}': RBraceToken,
	'(': LParenToken,
	')': RParenToken,
	'[': LBracketToken,
	']': RBracketToken,
	':': ColonToken,
	';': SemiToken,
	',': CommaToken,
	'*': StarToken,
	'>': GreaterToken,
}

// scan runs the automaton with maximal munch: every step tries reachable
// states in order and takes the first one accepting the lookahead, when none
// does the token ends at the last position where a final state was seen.
func (l *Lexer) scan() Token {
	l.state = stInitial
	last, lastState := l.mark(), stInitial
	for {
		next := stInitial
		for _, s := range states[l.state].next {
			if n := states[s].accept(l); n > 0 {
				l.move(n)
				next = s
				break
			}
		}
		if next == stInitial {
			break
		}
		l.state = next
		if states[next].final != InvalidToken {
			last, lastState = l.mark(), next
		}
	}

	if lastState == stInitial {
		// not a single character was recognized
		l.rewind(last)
		_, n := l.r.PeekRune(0)
		l.move(max(n, 1))
		return l.emit(InvalidToken)
	}
	if l.state != lastState {
		l.rewind(last)
	}

	switch lastState {
	case stUnits:
		return l.emit(l.unitKind())
	case stIdentStart, stIdent:
		if l.r.Peek(0) == '(' {
			if strings.EqualFold(string(l.r.Lexeme()), "url") {
				l.move(1)
				return l.scanURL()
			}
			l.move(1)
			return l.emit(FunctionToken)
		}
	}
	return l.emit(states[lastState].final)
}

// scanString consumes quoted string including both quotes.
func (l *Lexer) scanString() bool {
	quote := l.r.Peek(0)
	l.move(1)
	for {
		c := l.r.Peek(0)
		switch {
		case c == quote:
			l.move(1)
			return true
		case l.atEOF(0) || isNewline(c):
			return false
		case c == '\\':
			next := l.r.Peek(1)
			switch {
			case next == '\r' && l.r.Peek(2) == '\n':
				l.move(3)
			case isNewline(next):
				l.move(2)
			case l.atEOF(1):
				l.move(1)
			default:
				l.move(l.escape(0))
			}
		default:
			_, n := l.r.PeekRune(0)
			l.move(n)
		}
	}
}

func (l *Lexer) skipBlockComment() bool {
	l.move(2)
	for {
		if l.atEOF(0) {
			return false
		}
		if l.r.Peek(0) == '*' && l.r.Peek(1) == '/' {
			l.move(2)
			return true
		}
		l.move(1)
	}
}

// skipTrivia skips whitespace, newlines and comments, used only inside
// "!important".
func (l *Lexer) skipTrivia() {
	for {
		switch c := l.r.Peek(0); {
		case c == ' ' || c == '\t' || isNewline(c):
			l.move(1)
		case c == '/' && l.r.Peek(1) == '*':
			if !l.skipBlockComment() {
				return
			}
		default:
			return
		}
	}
}

const important = "important"

// scanImportant matches "!important" symbol by symbol. When match fails the
// consumed part is returned as SkipToken so parser could recover.
func (l *Lexer) scanImportant() Token {
	l.move(1)
	l.skipTrivia()
	for i := 0; i < len(important); i++ {
		if lower(l.r.Peek(0)) != important[i] {
			return l.emit(SkipToken)
		}
		l.move(1)
	}
	return l.emit(ImportantToken)
}

func isURLChar(c byte) bool {
	return c > ' ' && c != '"' && c != '\'' && c != '(' && c != ')' && c != '\\' && c != 0x7f
}

// scanURL is called after "url(" has been consumed.
func (l *Lexer) scanURL() Token {
	for c := l.r.Peek(0); c == ' ' || c == '\t' || isNewline(c); c = l.r.Peek(0) {
		l.move(1)
	}

	var value string
	if c := l.r.Peek(0); c == '"' || c == '\'' {
		start := l.r.Pos()
		if !l.scanString() {
			return l.badURL()
		}
		value = Unquote(string(l.r.Lexeme()[start:]))
	} else {
		var sb strings.Builder
		for {
			c := l.r.Peek(0)
			if c == ')' || c == ' ' || c == '\t' || isNewline(c) || l.atEOF(0) {
				break
			}
			if c == '\\' {
				n := l.escape(0)
				if n == 0 {
					return l.badURL()
				}
				esc := make([]byte, n)
				for i := range esc {
					esc[i] = l.r.Peek(i)
				}
				sb.WriteString(Unescape(string(esc)))
				l.move(n)
				continue
			}
			if !isURLChar(c) && c < 0x80 {
				return l.badURL()
			}
			r, n := l.r.PeekRune(0)
			sb.WriteRune(r)
			l.move(n)
		}
		value = sb.String()
	}

	for c := l.r.Peek(0); c == ' ' || c == '\t' || isNewline(c); c = l.r.Peek(0) {
		l.move(1)
	}
	if l.r.Peek(0) != ')' {
		if l.atEOF(0) {
			// unterminated at the very end is still a url
			t := l.emit(URLToken)
			t.Value = value
			return t
		}
		return l.badURL()
	}
	l.move(1)
	t := l.emit(URLToken)
	t.Value = value
	return t
}

// badURL consumes the remnants of a broken url up to closing parenthesis.
func (l *Lexer) badURL() Token {
	for c := l.r.Peek(0); c != ')' && !l.atEOF(0); c = l.r.Peek(0) {
		if n := l.escape(0); n > 0 {
			l.move(n)
			continue
		}
		l.move(1)
	}
	if l.r.Peek(0) == ')' {
		l.move(1)
	}
	return l.emit(InvalidToken)
}

// Unquote strips quotes from a string token text and resolves escapes.
func Unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	} else if len(s) >= 1 && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	return Unescape(s)
}

// Unescape resolves CSS escapes: hexadecimal code points (optionally followed
// by a single whitespace), escaped characters and escaped newlines which are
// dropped.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch c = s[i]; {
		case c == '\r' && i+1 < len(s) && s[i+1] == '\n':
			i++
		case isNewline(c):
		case isHex(c):
			j := i
			for j < len(s) && j-i < 6 && isHex(s[j]) {
				j++
			}
			cp, _ := strconv.ParseUint(s[i:j], 16, 32)
			r := rune(cp)
			if r == 0 || r > utf8.MaxRune || 0xD800 <= r && r <= 0xDFFF {
				r = utf8.RuneError
			}
			sb.WriteRune(r)
			if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
				j++
			}
			i = j - 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
