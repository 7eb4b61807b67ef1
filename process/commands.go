package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"fxcss/css/grammar"
	"fxcss/css/lexer"
	"fxcss/css/term"
	"fxcss/css/value"
	"fxcss/dump"
	"fxcss/state"
)

// Inline implements "inline" command: parses style attribute text.
func Inline(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inline")

	style := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(style) == "" {
		return errors.New("no style has been specified")
	}
	opts := OptionsFromCommand(cmd, env.Cfg, log)

	p, err := env.NewParser(nil)
	if err != nil {
		return err
	}
	sheet := p.ParseInlineStyle(cmd.String("owner"), style)
	errs := p.Errors()
	if err := dump.Write(os.Stdout, "inline", sheet, errs.Errors(), opts.Dump); err != nil {
		return err
	}
	if opts.Strict && errs.Len() > 0 {
		return fmt.Errorf("%d parse error(s) in strict mode: %w", errs.Len(), errs.Err())
	}
	return nil
}

// Expr implements "expr" command: shows how single property value is seen
// by the parser.
func Expr(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() < 2 {
		return errors.New("property name and value are required")
	}
	property := cmd.Args().First()
	expr := strings.Join(cmd.Args().Tail(), " ")

	p, err := env.NewParser(nil)
	if err != nil {
		return err
	}
	return WriteExpr(os.Stdout, env.Log.Named("expr"), p, property, expr)
}

// ExprParser is the part of parser WriteExpr needs.
type ExprParser interface {
	ParseExpr(property, expr string) (*value.ParsedValue, error)
}

// WriteExpr prints term tree of expr followed by value tree produced for
// property.
func WriteExpr(w io.Writer, log *zap.Logger, p ExprParser, property, expr string) error {
	b := term.NewBuilder(lexer.NewString(expr), nil, func(tok lexer.Token, msg string) {
		log.Debug("Term problem", zap.String("token", tok.Text), zap.String("problem", msg))
	})
	b.Next()
	root := b.Expr()
	if _, err := fmt.Fprintf(w, "terms\n%s", b.Arena().Tree(root).String()); err != nil {
		return err
	}

	if !grammar.Routed(property) {
		log.Warn("Property has no grammar, value is taken as is", zap.String("property", property))
	}
	v, err := p.ParseExpr(property, expr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "value\n%s", dump.ValueTree(v).String())
	return err
}

// Properties implements "properties" command.
func Properties(_ context.Context, _ *cli.Command) error {
	return WriteProperties(os.Stdout)
}

func WriteProperties(w io.Writer) error {
	for _, name := range dump.Properties(grammar.Properties()) {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
