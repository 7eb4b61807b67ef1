package css

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fxcss/css/lexer"
)

func (r *run) atRule() {
	tok := r.cur()
	if tok.Kind != lexer.AtKeywordToken {
		r.errorAt(tok, "Expected IDENT at %s")
		r.skipAtRule()
		return
	}
	switch strings.ToLower(tok.Value) {
	case "font-face":
		r.fontFace()
	case "import":
		r.importRule()
	default:
		// @charset is taken care of by loader
		r.log.Debug("Skipping @-rule", zap.String("rule", tok.Text), zap.Int("line", tok.Line))
		r.skipAtRule()
	}
}

// skipAtRule moves past the end of at-rule: its semicolon or its block.
func (r *run) skipAtRule() {
	depth := 0
	for {
		switch r.next().Kind {
		case lexer.EOFToken:
			return
		case lexer.SemiToken:
			if depth == 0 {
				r.next()
				return
			}
		case lexer.LBraceToken:
			depth++
		case lexer.RBraceToken:
			if depth--; depth <= 0 {
				r.next()
				return
			}
		}
	}
}

func (r *run) fontFace() {
	if r.next().Kind != lexer.LBraceToken {
		r.errorAt(r.cur(), "Expected LBRACE at %s")
		r.b.SkipTo(lexer.SemiToken, lexer.RBraceToken)
		r.next()
		return
	}

	ff := &FontFace{Descriptors: make(map[string]string)}
	r.next()
	for {
		tok := r.cur()
		switch tok.Kind {
		case lexer.RBraceToken:
			r.next()
			r.sheet.FontFaces = append(r.sheet.FontFaces, ff)
			return
		case lexer.EOFToken:
			r.errorAt(tok, "Expected RBRACE at %s")
			r.sheet.FontFaces = append(r.sheet.FontFaces, ff)
			return
		case lexer.SemiToken:
			r.next()
		case lexer.IdentToken:
			key := strings.ToLower(tok.Value)
			if r.next().Kind != lexer.ColonToken {
				r.errorAt(r.cur(), "Expected COLON at %s")
				r.b.SkipTo(lexer.SemiToken, lexer.RBraceToken)
				continue
			}
			r.next()
			if key == "src" {
				r.fontFaceSources(ff)
			} else {
				ff.Descriptors[key] = r.descriptorText()
			}
		default:
			r.report(tok.Line, tok.Offset, fmt.Sprintf("Unexpected TOKEN [%s] at %s", tok.Text, tok.Position()))
			r.next()
		}
	}
}

// descriptorText collects descriptor value up to ';' or '}' with whitespace
// collapsed.
func (r *run) descriptorText() string {
	var sb strings.Builder
	space := false
	for tok := r.cur(); tok.Kind != lexer.SemiToken && tok.Kind != lexer.RBraceToken && tok.Kind != lexer.EOFToken; tok = r.raw() {
		if tok.Kind == lexer.WSToken || tok.Kind == lexer.NLToken {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

func (r *run) fontFaceSources(ff *FontFace) {
	for {
		tok := r.cur()
		switch tok.Kind {
		case lexer.SemiToken, lexer.RBraceToken, lexer.EOFToken:
			return
		case lexer.IdentToken, lexer.StringToken:
			// reference to another font family
			ff.Sources = append(ff.Sources, FontFaceSource{Kind: FontSourceReference, Value: tok.Value})
			r.next()
		case lexer.URLToken:
			u, err := r.p.resolver.ResolveURL(tok.Value, r.sheet.URL)
			if err != nil {
				r.report(tok.Line, tok.Offset, fmt.Sprintf("Could not resolve @font-face url [%s] at %s", tok.Value, tok.Position()))
				r.next()
				continue
			}
			r.next()
			ff.Sources = append(ff.Sources, FontFaceSource{Kind: FontSourceURL, Value: u, Format: r.fontFormat()})
		case lexer.FunctionToken:
			if !strings.EqualFold(tok.Value, "local") {
				r.report(tok.Line, tok.Offset, fmt.Sprintf("Unknown @font-face src type [%s)] at %s", tok.Text, tok.Position()))
				r.skipCall()
				continue
			}
			var parts []string
			for t := r.next(); t.Kind != lexer.RParenToken && t.Kind != lexer.EOFToken; t = r.next() {
				parts = append(parts, t.Value)
			}
			r.next()
			ff.Sources = append(ff.Sources, FontFaceSource{Kind: FontSourceLocal, Value: strings.Join(parts, " ")})
		case lexer.CommaToken:
			r.next()
		default:
			r.report(tok.Line, tok.Offset, fmt.Sprintf("Unexpected TOKEN [%s] at %s", tok.Text, tok.Position()))
			r.next()
		}
	}
}

// fontFormat reads optional "format(...)" following font url.
func (r *run) fontFormat() string {
	tok := r.cur()
	if tok.Kind != lexer.FunctionToken || !strings.EqualFold(tok.Value, "format") {
		return ""
	}
	format := ""
	for t := r.next(); t.Kind != lexer.RParenToken && t.Kind != lexer.EOFToken; t = r.next() {
		if format == "" && (t.Kind == lexer.StringToken || t.Kind == lexer.IdentToken) {
			format = t.Value
		}
	}
	r.next()
	return format
}

// skipCall moves past closing parenthesis of a function.
func (r *run) skipCall() {
	depth := 1
	for depth > 0 {
		switch r.next().Kind {
		case lexer.EOFToken, lexer.SemiToken, lexer.RBraceToken:
			return
		case lexer.FunctionToken, lexer.LParenToken:
			depth++
		case lexer.RParenToken:
			depth--
		}
	}
	r.next()
}

func (r *run) importRule() {
	at := r.cur()
	tok := r.next()
	if tok.Kind == lexer.StringToken || tok.Kind == lexer.URLToken {
		r.importStylesheet(at, tok.Value)
		r.next()
	} else {
		r.report(tok.Line, tok.Offset, fmt.Sprintf("Could not import %s", tok.Text))
	}
	// media queries and the like are not supported
	for k := r.cur().Kind; k != lexer.SemiToken && k != lexer.LBraceToken && k != lexer.RBraceToken && k != lexer.EOFToken; k = r.cur().Kind {
		r.next()
	}
	for r.cur().Kind == lexer.SemiToken {
		r.next()
	}
}

func (r *run) importStylesheet(at lexer.Token, target string) {
	fail := func(reason error) {
		r.log.Warn("Unable to import stylesheet", zap.String("target", target), zap.Error(reason))
		r.report(at.Line, at.Offset, "Could not import "+target)
	}

	url, err := r.p.resolver.ResolveURL(target, r.sheet.URL)
	if err != nil {
		fail(err)
		return
	}
	if r.sess.Active(url) {
		r.report(at.Line, at.Offset, fmt.Sprintf("Recursive @import at %s %s", r.sess.top(), at.Position()))
		return
	}
	if r.p.maxDepth > 0 && r.sess.Depth() >= r.p.maxDepth {
		fail(fmt.Errorf("import depth limit %d reached", r.p.maxDepth))
		return
	}

	imported, err := r.p.ParseURL(r.ctx, url)
	if err != nil {
		fail(err)
		return
	}
	r.log.Debug("Imported stylesheet", zap.String("url", url), zap.Int("rules", len(imported.Rules)))
	r.sheet.Imports = append(r.sheet.Imports, url)
	ImportRulesInto(r.sheet, imported)
}
