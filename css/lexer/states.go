package lexer

// state is a node of the scanner automaton used for numbers, identifiers,
// hashes and at-keywords. Everything else is recognized by dedicated scanners.
type state int

const (
	stInitial state = iota
	stPlus
	stMinus
	stDigits
	stPoint // '.' after digits
	stDot   // leading '.'
	stFraction
	stUnits
	stIdentStart
	stIdent
	stHash
	stHashName
	stAt
	stAtStart
	stAtName
	numStates
)

type stateDef struct {
	// accept returns number of bytes consumed at the current position, 0 means
	// the character is not accepted
	accept func(l *Lexer) int
	// reachable states in priority order
	next []state
	// kind of the token when scanning stops in this state, InvalidToken for
	// states that must not end a token
	final Kind
}

var states = [numStates]stateDef{
	stInitial:    {next: []state{stPlus, stMinus, stDigits, stDot, stIdentStart, stHash, stAt}},
	stPlus:       {accept: acceptByte('+'), next: []state{stDigits, stDot}},
	stMinus:      {accept: acceptByte('-'), next: []state{stDigits, stDot, stIdentStart}},
	stDigits:     {accept: acceptDigit, next: []state{stDigits, stPoint, stUnits}, final: NumberToken},
	stPoint:      {accept: acceptByte('.'), next: []state{stFraction}},
	stDot:        {accept: acceptByte('.'), next: []state{stFraction}, final: DotToken},
	stFraction:   {accept: acceptDigit, next: []state{stFraction, stUnits}, final: NumberToken},
	stUnits:      {accept: acceptUnit, next: []state{stUnits}, final: PercentageToken},
	stIdentStart: {accept: acceptNameStart, next: []state{stIdent}, final: IdentToken},
	stIdent:      {accept: acceptName, next: []state{stIdent}, final: IdentToken},
	stHash:       {accept: acceptByte('#'), next: []state{stHashName}},
	stHashName:   {accept: acceptName, next: []state{stHashName}, final: HashToken},
	stAt:         {accept: acceptByte('@'), next: []state{stAtStart}},
	stAtStart:    {accept: acceptAtStart, next: []state{stAtName}, final: AtKeywordToken},
	stAtName:     {accept: acceptName, next: []state{stAtName}, final: AtKeywordToken},
}

func acceptByte(b byte) func(l *Lexer) int {
	return func(l *Lexer) int {
		if l.r.Peek(0) == b {
			return 1
		}
		return 0
	}
}

func acceptDigit(l *Lexer) int {
	if c := l.r.Peek(0); '0' <= c && c <= '9' {
		return 1
	}
	return 0
}

func isNameStart(r rune) bool {
	return r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || 0x80 <= r && r <= 0xFFFF
}

func isName(r rune) bool {
	return isNameStart(r) || r == '-' || '0' <= r && r <= '9'
}

func isNewline(c byte) bool {
	return c == '\n' || c == '\r' || c == '\f'
}

// escape returns length of a valid escape sequence at pos or 0.
func (l *Lexer) escape(pos int) int {
	if l.r.Peek(pos) != '\\' {
		return 0
	}
	c := l.r.Peek(pos + 1)
	if isNewline(c) || c == 0 && l.r.PeekErr(pos+1) != nil {
		return 0
	}
	_, n := l.r.PeekRune(pos + 1)
	return 1 + n
}

func acceptNameStart(l *Lexer) int {
	if n := l.escape(0); n > 0 {
		return n
	}
	if r, n := l.r.PeekRune(0); isNameStart(r) {
		return n
	}
	return 0
}

func acceptAtStart(l *Lexer) int {
	if l.r.Peek(0) == '-' {
		return 1
	}
	return acceptNameStart(l)
}

func acceptName(l *Lexer) int {
	if n := l.escape(0); n > 0 {
		return n
	}
	if r, n := l.r.PeekRune(0); isName(r) {
		return n
	}
	return 0
}

// unit suffixes, bit i of the live mask corresponds to units[i]
var units = [...]struct {
	text string
	kind Kind
}{
	{"%", PercentageToken},
	{"em", EmsToken},
	{"ex", ExsToken},
	{"px", PxToken},
	{"cm", CmToken},
	{"mm", MmToken},
	{"in", InToken},
	{"pt", PtToken},
	{"pc", PcToken},
	{"deg", DegToken},
	{"grad", GradToken},
	{"rad", RadToken},
	{"turn", TurnToken},
	{"s", SToken},
	{"ms", MsToken},
}

const allUnits = uint16(1)<<len(units) - 1

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// acceptUnit advances unit sub-automaton. Mask is reset every time the
// automaton is entered from another state.
func acceptUnit(l *Lexer) int {
	if l.state != stUnits {
		l.unitMask, l.unitPos = allUnits, 0
	}
	c := lower(l.r.Peek(0))
	var mask uint16
	for i, u := range units {
		if l.unitMask&(1<<i) != 0 && l.unitPos < len(u.text) && u.text[l.unitPos] == c {
			mask |= 1 << i
		}
	}
	if mask == 0 {
		return 0
	}
	l.unitMask = mask
	l.unitPos++
	return 1
}

// unitKind collapses live candidates to a single unit spelled completely.
func (l *Lexer) unitKind() Kind {
	kind, found := InvalidToken, 0
	for i, u := range units {
		if l.unitMask&(1<<i) != 0 && len(u.text) == l.unitPos {
			kind = u.kind
			found++
		}
	}
	if found != 1 {
		return InvalidToken
	}
	return kind
}
