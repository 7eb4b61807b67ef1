package css

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"fxcss/css/grammar"
	"fxcss/css/lexer"
	"fxcss/css/term"
	"fxcss/css/value"
)

var (
	ErrNoLoader        = errors.New("no stylesheet loader configured")
	ErrRecursiveImport = errors.New("recursive import")
)

// Parser parses stylesheets, inline styles and single property values. It
// keeps no state between calls except for the error list, but it is not safe
// to use the same parser from several goroutines at once.
type Parser struct {
	log      *zap.Logger
	loader   Loader
	resolver value.URLResolver
	reporter Reporter
	errs     *ErrorList
	origin   Origin
	maxDepth int
}

// Option configures parser.
type Option func(*Parser)

// WithLoader sets loader used by ParseURL and @import.
func WithLoader(l Loader) Option {
	return func(p *Parser) { p.loader = l }
}

// WithResolver sets resolver for @import targets and @font-face urls.
func WithResolver(r value.URLResolver) Option {
	return func(p *Parser) {
		if r != nil {
			p.resolver = r
		}
	}
}

// WithReporter replaces default error list.
func WithReporter(r Reporter) Option {
	return func(p *Parser) { p.reporter = r }
}

// WithOrigin sets origin of produced stylesheets, inline styles always get
// OriginInline.
func WithOrigin(o Origin) Option {
	return func(p *Parser) { p.origin = o }
}

// WithMaxImportDepth limits nesting of @import, 0 means no limit.
func WithMaxImportDepth(n int) Option {
	return func(p *Parser) { p.maxDepth = n }
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger, opts ...Option) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Parser{
		log:      log.Named("css-parser"),
		resolver: value.DefaultResolver,
		errs:     &ErrorList{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.reporter == nil {
		p.reporter = p.errs
	}
	return p
}

// Errors returns list collecting parse errors unless different reporter was
// configured.
func (p *Parser) Errors() *ErrorList {
	return p.errs
}

// Parse parses stylesheet text which has no location. Relative urls in it are
// left unresolved.
func (p *Parser) Parse(ctx context.Context, text string) *Stylesheet {
	sheet := &Stylesheet{Origin: p.origin}
	if strings.TrimSpace(text) == "" {
		return sheet
	}
	ctx, sess := session(ctx)
	r := p.newRun(ctx, sess, sheet, lexer.NewString(text))
	r.src, r.text = SourceString, text
	r.stylesheet()
	return sheet
}

// ParseWithBase parses stylesheet text as if it was loaded from docbase.
func (p *Parser) ParseWithBase(ctx context.Context, docbase, text string) *Stylesheet {
	sheet := &Stylesheet{URL: docbase, Origin: p.origin}
	if strings.TrimSpace(text) == "" {
		return sheet
	}
	ctx, sess := session(ctx)
	if !sess.enter(docbase) {
		p.log.Warn("Stylesheet is already being parsed", zap.String("source", docbase))
		return sheet
	}
	defer sess.leave()

	r := p.newRun(ctx, sess, sheet, lexer.NewString(text))
	r.src, r.location = SourceStylesheet, docbase
	r.stylesheet()
	FixupURLs(sheet, docbase)
	return sheet
}

// ParseURL loads and parses stylesheet. Only failure to load or read it is
// returned as error, everything else is reported and recovered from.
func (p *Parser) ParseURL(ctx context.Context, url string) (*Stylesheet, error) {
	if p.loader == nil {
		return nil, ErrNoLoader
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := p.loader.Load(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to load stylesheet '%s': %w", url, err)
	}
	defer rc.Close()
	return p.ParseReader(ctx, url, rc)
}

// ParseReader parses stylesheet read from rd, url is its location.
func (p *Parser) ParseReader(ctx context.Context, url string, rd io.Reader) (*Stylesheet, error) {
	sheet := &Stylesheet{URL: url, Origin: p.origin}

	ctx, sess := session(ctx)
	if !sess.enter(url) {
		return sheet, fmt.Errorf("%w: %s", ErrRecursiveImport, url)
	}
	defer sess.leave()

	lx := lexer.New(rd)
	if err := lx.Err(); err != nil {
		return sheet, fmt.Errorf("unable to read stylesheet '%s': %w", url, err)
	}
	r := p.newRun(ctx, sess, sheet, lx)
	r.src, r.location = SourceStylesheet, url
	r.stylesheet()
	FixupURLs(sheet, url)
	return sheet, nil
}

// ParseInlineStyle parses declarations of style attribute. Owner names the
// element style belongs to and is used in error messages. Declarations are
// put in a single rule with universal selector.
func (p *Parser) ParseInlineStyle(owner, text string) *Stylesheet {
	sheet := &Stylesheet{Origin: OriginInline}
	if strings.TrimSpace(text) == "" {
		return sheet
	}
	ctx, sess := session(context.Background())
	r := p.newRun(ctx, sess, sheet, lexer.NewString(text))
	r.src, r.location, r.text = SourceInlineStyle, owner, text

	r.next()
	if decls := r.declarations(); len(decls) > 0 {
		sheet.Rules = append(sheet.Rules, newRule([]Selector{Universal()}, decls))
	}
	return sheet
}

// ParseExpr parses value of a single property. Errors are returned rather
// than reported.
func (p *Parser) ParseExpr(property, expr string) (*value.ParsedValue, error) {
	ctx, sess := session(context.Background())
	r := p.newRun(ctx, sess, &Stylesheet{}, lexer.NewString(expr+";"))
	r.src, r.text = SourceString, property+": "+expr

	var first error
	r.onError = func(err *ParseError) {
		if first == nil {
			first = err
		}
	}

	r.next()
	d := r.value(strings.ToLower(property), lexer.Token{Kind: lexer.IdentToken, Text: property, Value: property, Line: -1, Offset: -1})
	if first == nil && d == nil {
		first = &ParseError{Source: SourceString, Text: r.text, Message: "Parse error", Line: -1, Offset: -1}
	}
	if first != nil {
		p.log.Warn("Unable to parse expression", zap.String("expr", r.text), zap.Error(first))
		return nil, first
	}
	return d.Value, nil
}

// run is the state of one parse call.
type run struct {
	p     *Parser
	ctx   context.Context
	sess  *Session
	log   *zap.Logger
	sheet *Stylesheet

	src      SourceKind
	location string
	text     string

	b      *term.Builder
	in     *grammar.Interpreter
	shared map[string]*value.ParsedValue

	onError func(*ParseError)
}

func (p *Parser) newRun(ctx context.Context, sess *Session, sheet *Stylesheet, src term.TokenSource) *run {
	r := &run{
		p:      p,
		ctx:    ctx,
		sess:   sess,
		sheet:  sheet,
		shared: make(map[string]*value.ParsedValue),
	}
	r.log = p.log.With(zap.String("session", sess.ID.String()))
	if sheet.URL != "" {
		r.log = r.log.With(zap.String("source", sheet.URL))
	}
	r.in = grammar.New(r.log)
	r.b = term.NewBuilder(src, nil, func(tok lexer.Token, msg string) {
		r.report(tok.Line, tok.Offset, msg)
	})
	return r
}

func (r *run) report(line, offset int, msg string) {
	err := &ParseError{
		Source:   r.src,
		Location: r.location,
		Text:     r.text,
		Message:  msg,
		Line:     line,
		Offset:   offset,
	}
	if r.onError != nil {
		r.onError(err)
		return
	}
	r.log.Warn("CSS parse error", zap.String("error", err.Error()), zap.Int("line", line), zap.Int("offset", offset))
	r.p.reporter.Report(err)
}

// errorAt reports error at token, format has a single verb for token
// position.
func (r *run) errorAt(tok lexer.Token, format string) {
	r.report(tok.Line, tok.Offset, fmt.Sprintf(format, tok.Position()))
}

func (r *run) cur() lexer.Token { return r.b.Current }

// next skips whitespace and newlines.
func (r *run) next() lexer.Token { return r.b.Next() }

// raw does not skip anything, selectors need to see whitespace.
func (r *run) raw() lexer.Token { return r.b.Raw() }

// share returns previously produced equal value if there is one. Values
// with urls are never shared since their base is filled later.
func (r *run) share(v *value.ParsedValue) *value.ParsedValue {
	if v == nil || v.ContainsURL() {
		return v
	}
	fp := v.Fingerprint()
	if s, ok := r.shared[fp]; ok {
		return s
	}
	r.shared[fp] = v
	return v
}

func (r *run) stylesheet() {
	r.next()
	for r.cur().Kind != lexer.EOFToken {
		if tok := r.cur(); tok.Kind == lexer.AtKeywordToken || (tok.Kind == lexer.InvalidToken && strings.HasPrefix(tok.Text, "@")) {
			r.atRule()
			continue
		}

		selectors, ok := r.selectors()
		if !ok {
			continue
		}
		if r.cur().Kind != lexer.LBraceToken {
			r.errorAt(r.cur(), "Expected LBRACE at %s")
			r.skipRule()
			continue
		}
		r.next()

		decls := r.declarations()
		if r.cur().Kind != lexer.RBraceToken {
			r.errorAt(r.cur(), "Expected RBRACE at %s")
			r.skipRule()
			continue
		}
		r.sheet.Rules = append(r.sheet.Rules, newRule(selectors, decls))
		r.next()
	}
}

// skipRule drops the rest of a broken rule up to and including its closing
// brace.
func (r *run) skipRule() {
	r.b.SkipTo(lexer.RBraceToken)
	if r.cur().Kind == lexer.RBraceToken {
		r.next()
	}
}

// selectors reads comma separated selector group. When any of selectors is
// malformed the whole rule is skipped and ok is false.
func (r *run) selectors() (selectors []Selector, ok bool) {
	for {
		sel := r.selector()
		if sel == nil {
			tok := r.cur()
			r.report(tok.Line, tok.Offset, fmt.Sprintf("Unexpected token '%s' in selector at %s", tok.Text, tok.Position()))
			r.skipRule()
			return nil, false
		}
		selectors = append(selectors, sel)

		if r.cur().Kind != lexer.CommaToken {
			return selectors, true
		}
		r.next()
	}
}

func (r *run) selector() Selector {
	first := r.simpleSelector()
	if first == nil {
		return nil
	}

	var compound *CompoundSelector
	for {
		comb, ok := r.combinator()
		if !ok {
			break
		}
		sel := r.simpleSelector()
		if sel == nil {
			return nil
		}
		if compound == nil {
			compound = &CompoundSelector{Selectors: []*SimpleSelector{first}}
		}
		compound.Selectors = append(compound.Selectors, sel)
		compound.Relations = append(compound.Relations, comb)
	}

	if k := r.cur().Kind; k == lexer.WSToken || k == lexer.NLToken {
		r.next()
	}
	if compound == nil {
		return first
	}
	return compound
}

func (r *run) simpleSelector() *SimpleSelector {
	s := Universal()
	for {
		tok := r.cur()
		switch tok.Kind {
		case lexer.StarToken, lexer.IdentToken:
			s.Name = tok.Text
		case lexer.DotToken:
			if r.next().Kind != lexer.IdentToken {
				return nil
			}
			s.Classes = appendUnique(s.Classes, r.cur().Value)
		case lexer.HashToken:
			s.ID = tok.Value
		case lexer.ColonToken:
			if !r.pseudoClass(s) {
				return nil
			}
		case lexer.WSToken, lexer.NLToken, lexer.CommaToken, lexer.GreaterToken, lexer.LBraceToken, lexer.EOFToken:
			return s
		default:
			return nil
		}
		r.raw()
	}
}

// pseudoClass reads pseudo-class after colon. ":dir(ltr|rtl)" sets selector
// direction instead of being kept as pseudo-class.
func (r *run) pseudoClass(s *SimpleSelector) bool {
	tok := r.next()
	switch tok.Kind {
	case lexer.IdentToken:
		s.PseudoClasses = appendUnique(s.PseudoClasses, tok.Value)
		return true
	case lexer.FunctionToken:
	default:
		return false
	}

	var args []string
	for done := false; !done; {
		switch t := r.next(); t.Kind {
		case lexer.IdentToken, lexer.StringToken:
			args = append(args, t.Value)
		case lexer.RParenToken:
			done = true
		default:
			return false
		}
	}

	name := strings.ToLower(tok.Value)
	if name == "dir" && len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "ltr":
			s.Direction = DirectionLTR
			return true
		case "rtl":
			s.Direction = DirectionRTL
			return true
		}
	}
	s.PseudoClasses = appendUnique(s.PseudoClasses, name+"("+strings.Join(args, "")+")")
	return true
}

// combinator reads whitespace and '>' between simple selectors. ok is false
// when there is no next simple selector.
func (r *run) combinator() (comb Combinator, ok bool) {
	for {
		switch r.cur().Kind {
		case lexer.WSToken, lexer.NLToken:
			ok = true
		case lexer.GreaterToken:
			comb, ok = Child, true
		case lexer.StarToken, lexer.IdentToken, lexer.DotToken, lexer.HashToken, lexer.ColonToken:
			return comb, ok
		default:
			return comb, false
		}
		r.raw()
	}
}

func (r *run) declarations() []*Declaration {
	var decls []*Declaration
	for {
		if d := r.declaration(); d != nil {
			decls = append(decls, d)
		} else {
			r.b.SkipTo(lexer.SemiToken, lexer.RBraceToken)
		}
		// empty declarations are allowed
		for r.cur().Kind == lexer.SemiToken {
			r.next()
		}
		if r.cur().Kind != lexer.IdentToken {
			return decls
		}
	}
}

func (r *run) declaration() *Declaration {
	tok := r.cur()
	if tok.Kind != lexer.IdentToken {
		return nil
	}
	if r.next().Kind != lexer.ColonToken {
		r.errorAt(r.cur(), "Expected COLON at %s")
		return nil
	}
	r.next()
	return r.value(strings.ToLower(tok.Value), tok)
}

func endOfValue(k lexer.Kind) bool {
	return k == lexer.SemiToken || k == lexer.RBraceToken || k == lexer.EOFToken || k == lexer.ImportantToken
}

// value reads and interprets declaration value, cursor is at its first
// token.
func (r *run) value(property string, at lexer.Token) *Declaration {
	a := r.b.Arena()
	a.Reset()

	root := term.Nil
	if !endOfValue(r.cur().Kind) {
		if root = r.b.Expr(); root == term.Nil {
			return nil
		}
	}
	text := exprText(a, root)

	v, err := r.in.Interpret(property, a, root)
	if err != nil {
		line, offset := -1, -1
		var ge *grammar.Error
		if errors.As(err, &ge) && ge.Token.Line > 0 {
			line, offset = ge.Token.Line, ge.Token.Offset
		}
		r.report(line, offset, fmt.Sprintf("%s while parsing '%s' at %s", err.Error(), property, position(line, offset)))
		return nil
	}

	important := r.cur().Kind == lexer.ImportantToken
	if important {
		r.next()
	}
	return &Declaration{
		Property:  property,
		Value:     r.share(v),
		Important: important,
		Text:      text,
		Line:      at.Line,
	}
}

// exprText renders term tree back to text with normalized spacing.
func exprText(a *term.Arena, root term.Index) string {
	var sb strings.Builder
	for n, layer := range a.Layers(root) {
		if n > 0 {
			sb.WriteString(", ")
		}
		for t := layer; t != term.Nil; t = a.Series(t) {
			if t != layer {
				sb.WriteByte(' ')
			}
			sb.WriteString(a.Text(t))
		}
	}
	return sb.String()
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
