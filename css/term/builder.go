package term

import (
	"fmt"

	"fxcss/css/lexer"
)

// TokenSource is anything producing tokens, normally *lexer.Lexer.
type TokenSource interface {
	NextToken() lexer.Token
}

// ReportFunc receives structural errors found while building terms.
type ReportFunc func(tok lexer.Token, msg string)

// Builder reads term trees. Its Current token is the cursor shared with the
// caller: the caller positions it at the first token of a value, Expr leaves
// it at the token which ended the value. Builder is not re-entrant.
type Builder struct {
	src     TokenSource
	arena   *Arena
	report  ReportFunc
	Current lexer.Token
}

func NewBuilder(src TokenSource, arena *Arena, report ReportFunc) *Builder {
	if arena == nil {
		arena = &Arena{}
	}
	return &Builder{src: src, arena: arena, report: report}
}

func (b *Builder) Arena() *Arena {
	return b.arena
}

// Raw advances cursor by exactly one token.
func (b *Builder) Raw() lexer.Token {
	b.Current = b.src.NextToken()
	return b.Current
}

// Next advances cursor to the next token which is not whitespace or newline.
func (b *Builder) Next() lexer.Token {
	for {
		b.Current = b.src.NextToken()
		if b.Current.Kind != lexer.WSToken && b.Current.Kind != lexer.NLToken {
			return b.Current
		}
	}
}

// SkipTo advances cursor until it is at token of one of the kinds (or EOF).
func (b *Builder) SkipTo(kinds ...lexer.Kind) {
	for {
		if b.Current.Kind == lexer.EOFToken {
			return
		}
		for _, k := range kinds {
			if b.Current.Kind == k {
				return
			}
		}
		b.Raw()
	}
}

// Expr reads comma separated layers of space separated series. Returns Nil
// when value is broken, in which case cursor is moved to the end of the
// declaration.
func (b *Builder) Expr() Index {
	root := b.Term()
	current := root
	for {
		if current == Nil || b.Current.Kind == lexer.InvalidToken {
			if current != Nil && b.report != nil {
				b.report(b.Current, fmt.Sprintf("Unexpected token '%s' at %s", b.Current.Text, b.Current.Position()))
			}
			b.SkipTo(lexer.SemiToken, lexer.RBraceToken)
			return Nil
		}
		switch b.Current.Kind {
		case lexer.SemiToken, lexer.ImportantToken, lexer.RBraceToken, lexer.EOFToken:
			return root
		case lexer.CommaToken:
			b.Next()
			next := b.Term()
			b.arena.SetLayer(current, next)
			current = next
		default:
			next := b.Term()
			b.arena.SetSeries(current, next)
			current = next
		}
	}
}

// Term reads single term, function calls with all of their arguments.
func (b *Builder) Term() Index {
	tok := b.Current
	switch {
	case tok.Kind.IsNumeric(),
		tok.Kind == lexer.StringToken,
		tok.Kind == lexer.IdentToken,
		tok.Kind == lexer.HashToken,
		tok.Kind == lexer.URLToken,
		tok.Kind == lexer.SolidusToken:
		i := b.arena.Add(tok)
		b.Next()
		return i
	case tok.Kind == lexer.FunctionToken, tok.Kind == lexer.LParenToken:
		return b.call()
	}
	if b.report != nil {
		b.report(tok, fmt.Sprintf("Unexpected token '%s' at %s", tok.Text, tok.Position()))
	}
	return Nil
}

func (b *Builder) call() Index {
	fn := b.arena.Add(b.Current)
	if b.Next().Kind == lexer.RParenToken {
		b.Next()
		return fn
	}
	arg := b.Term()
	b.arena.At(fn).FirstArg = arg
	for arg != Nil {
		switch b.Current.Kind {
		case lexer.RParenToken:
			b.Next()
			return fn
		case lexer.CommaToken:
			b.Next()
			next := b.Term()
			b.arena.At(arg).NextArg = next
			arg = next
		default:
			next := b.Term()
			b.arena.SetSeries(arg, next)
			arg = next
		}
	}
	return Nil
}
