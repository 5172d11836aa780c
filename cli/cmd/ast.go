package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/yard/grammar"
)

// Output formats accepted by the --format flag.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// AST prints the syntax tree of an expression.
type AST struct {
	Expr   string   `arg:""                           help:"Expression to parse."                          name:"expr"`
	Lang   string   `default:"arith"  enum:"arith,filter"    help:"Expression language (${enum})."                short:"l"`
	Format string   `default:"text"   enum:"text,json,yaml"  help:"Output format (${enum})."                      short:"o"`
	Define []string `                                 help:"Bind NAME to the tree of EXPR (repeatable)." placeholder:"NAME=EXPR" short:"D"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	switch a.Lang {
	case langArith, "":
		lang, err := arithLanguage()
		if err != nil {
			return err
		}

		return printTree(ctx, a, lang)

	case langFilter:
		lang, err := filterLanguage()
		if err != nil {
			return err
		}

		return printTree(ctx, a, lang)
	}

	return ErrLanguage.With(slog.String("lang", a.Lang))
}

func printTree[N fmt.Stringer](ctx context.Context, a *AST, lang *grammar.Language[N]) error {
	n, err := parse(ctx, lang, a.Expr, a.Define)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	if a.Format == formatText || a.Format == "" {
		_, err = fmt.Fprintln(w, n.String())

		return err
	}

	out, err := marshal(n, a.Format)
	if err != nil {
		return err
	}

	_, err = w.Write(out)

	return err
}

// marshal encodes v as YAML or, in JSON format, as a single line of JSON.
func marshal(v any, format string) ([]byte, error) {
	var opts []yaml.EncodeOption
	if format == formatJSON {
		opts = append(opts, yaml.JSON())
	}

	out, err := yaml.MarshalWithOptions(v, opts...)
	if err != nil {
		return nil, ErrMarshal.With(slog.String("format", format)).Wrap(err)
	}

	return out, nil
}
