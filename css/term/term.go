// Package term builds term trees out of a token stream. A term tree is the
// structural shape of a property value before it is interpreted: terms are
// linked into space separated series, comma separated layers and function
// argument chains.
package term

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"fxcss/css/lexer"
)

// Index addresses term in the arena.
type Index int

// Nil is the absent link.
const Nil Index = -1

// Term is a single token with its structural links. Links are arena indexes
// so interpreting routines can re-point them by plain assignment.
type Term struct {
	Token        lexer.Token
	NextInSeries Index
	NextLayer    Index
	FirstArg     Index
	NextArg      Index
}

// Arena owns all terms of one declaration value.
type Arena struct {
	terms []Term
}

// Reset drops all terms keeping allocated memory.
func (a *Arena) Reset() {
	a.terms = a.terms[:0]
}

// Len returns number of terms in arena.
func (a *Arena) Len() int {
	return len(a.terms)
}

// Add appends new unlinked term for token.
func (a *Arena) Add(tok lexer.Token) Index {
	a.terms = append(a.terms, Term{Token: tok, NextInSeries: Nil, NextLayer: Nil, FirstArg: Nil, NextArg: Nil})
	return Index(len(a.terms) - 1)
}

// At returns term at i, nil for Nil or out of range index. Pointer is valid
// until next Add.
func (a *Arena) At(i Index) *Term {
	if i < 0 || int(i) >= len(a.terms) {
		return nil
	}
	return &a.terms[i]
}

// Kind returns token kind of term at i, InvalidToken for Nil.
func (a *Arena) Kind(i Index) lexer.Kind {
	if t := a.At(i); t != nil {
		return t.Token.Kind
	}
	return lexer.InvalidToken
}

// Token returns token of term at i.
func (a *Arena) Token(i Index) lexer.Token {
	if t := a.At(i); t != nil {
		return t.Token
	}
	return lexer.Token{}
}

// Series returns next term in the series of i.
func (a *Arena) Series(i Index) Index {
	if t := a.At(i); t != nil {
		return t.NextInSeries
	}
	return Nil
}

// Layer returns first term of the layer following i.
func (a *Arena) Layer(i Index) Index {
	if t := a.At(i); t != nil {
		return t.NextLayer
	}
	return Nil
}

// FirstArg returns first argument of function term i.
func (a *Arena) FirstArg(i Index) Index {
	if t := a.At(i); t != nil {
		return t.FirstArg
	}
	return Nil
}

// NextArg returns argument following i.
func (a *Arena) NextArg(i Index) Index {
	if t := a.At(i); t != nil {
		return t.NextArg
	}
	return Nil
}

// SetSeries re-points series link of i.
func (a *Arena) SetSeries(i, next Index) {
	if t := a.At(i); t != nil {
		t.NextInSeries = next
	}
}

// SetLayer re-points layer link of i.
func (a *Arena) SetLayer(i, next Index) {
	if t := a.At(i); t != nil {
		t.NextLayer = next
	}
}

// Tail walks series starting at i to its last term.
func (a *Arena) Tail(i Index) Index {
	for t := a.At(i); t != nil && t.NextInSeries != Nil; t = a.At(i) {
		i = t.NextInSeries
	}
	return i
}

// NextLayer returns the layer which follows series starting at i. Layers are
// threaded from the tail of a series.
func (a *Arena) NextLayer(i Index) Index {
	return a.Layer(a.Tail(i))
}

// Count returns number of terms in series starting at i.
func (a *Arena) Count(i Index) int {
	n := 0
	for ; i != Nil; i = a.Series(i) {
		n++
	}
	return n
}

// NextArgOf returns the argument which follows argument series starting at
// i. Like layers, arguments are threaded from the tail of a series.
func (a *Arena) NextArgOf(i Index) Index {
	return a.NextArg(a.Tail(i))
}

// Args returns first terms of every function argument.
func (a *Arena) Args(fn Index) []Index {
	var out []Index
	for arg := a.FirstArg(fn); arg != Nil; arg = a.NextArgOf(arg) {
		out = append(out, arg)
	}
	return out
}

// Layers returns first terms of every layer starting at root.
func (a *Arena) Layers(root Index) []Index {
	var out []Index
	for l := root; l != Nil; l = a.NextLayer(l) {
		out = append(out, l)
	}
	return out
}

// Text returns term as written, function calls include their arguments.
func (a *Arena) Text(i Index) string {
	var sb strings.Builder
	a.write(&sb, i)
	return sb.String()
}

func (a *Arena) write(sb *strings.Builder, i Index) {
	t := a.At(i)
	if t == nil {
		return
	}
	sb.WriteString(t.Token.Text)
	if t.Token.Kind != lexer.FunctionToken && t.Token.Kind != lexer.LParenToken {
		return
	}
	for n, arg := range a.Args(i) {
		if n > 0 {
			sb.WriteString(", ")
		}
		for s := arg; s != Nil; s = a.Series(s) {
			if s != arg {
				sb.WriteByte(' ')
			}
			a.write(sb, s)
		}
	}
	sb.WriteByte(')')
}

// Tree renders term tree starting at root.
func (a *Arena) Tree(root Index) treeprint.Tree {
	tree := treeprint.NewWithRoot("expr")
	for n, layer := range a.Layers(root) {
		branch := tree.AddMetaBranch(fmt.Sprintf("layer %d", n), "")
		a.addSeries(branch, layer)
	}
	return tree
}

func (a *Arena) addSeries(tree treeprint.Tree, i Index) {
	for ; i != Nil; i = a.Series(i) {
		tok := a.Token(i)
		if tok.Kind != lexer.FunctionToken && tok.Kind != lexer.LParenToken {
			tree.AddMetaNode(tok.Kind, tok.Text)
			continue
		}
		fn := tree.AddMetaBranch(tok.Kind, tok.Text)
		for n, arg := range a.Args(i) {
			a.addSeries(fn.AddMetaBranch(fmt.Sprintf("arg %d", n), ""), arg)
		}
	}
}
