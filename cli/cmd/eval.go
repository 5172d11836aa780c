package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ardnew/yard/lang/arith"
	"github.com/ardnew/yard/log"
)

// Eval evaluates an arithmetic expression.
type Eval struct {
	Expr    string   `arg:"" help:"Arithmetic expression to evaluate."                name:"expr"`
	Define  []string `       help:"Bind NAME to the value of EXPR (repeatable)." placeholder:"NAME=EXPR" short:"D"`
	Compile bool     `       help:"Print the compiled program instead of its value."          short:"c"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	lang, err := arithLanguage()
	if err != nil {
		return err
	}

	n, err := parse(ctx, lang, e.Expr, e.Define)
	if err != nil {
		return err
	}

	p, err := arith.Compile(n)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	if e.Compile {
		_, err = fmt.Fprintln(w, p.Source())

		return err
	}

	v, err := p.Run()
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "evaluated",
		slog.String("tree", n.String()),
		slog.Float64("value", v),
	)

	_, err = fmt.Fprintln(w, FormatNumber(v))

	return err
}

// FormatNumber renders v in the shortest form that parses back to v.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
