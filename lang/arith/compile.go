package arith

import (
	"context"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/yard/grammar"
)

// Errors reported when running an expression tree.
var (
	ErrCompile  = grammar.NewError("expression compilation failed")
	ErrEvaluate = grammar.NewError("expression evaluation failed")
)

// Program is a compiled expression tree.
// A Program is safe for concurrent use.
type Program struct {
	program *vm.Program
	source  string
}

// Source returns the expr-lang source of the tree rooted at n.
func Source(n Node) string {
	var b strings.Builder

	n.source(&b)

	return b.String()
}

// Compile compiles the tree rooted at n into a [Program] returning float64.
func Compile(n Node) (*Program, error) {
	source := Source(n)

	program, err := expr.Compile(source, expr.AsFloat64())
	if err != nil {
		return nil, ErrCompile.Wrap(err).
			With(slog.String("source", source))
	}

	return &Program{program: program, source: source}, nil
}

// Source returns the expr-lang source p was compiled from.
func (p *Program) Source() string { return p.source }

// Run evaluates p.
func (p *Program) Run() (float64, error) {
	out, err := vm.Run(p.program, nil)
	if err != nil {
		return 0, ErrEvaluate.Wrap(err).
			With(slog.String("source", p.source))
	}

	v, _ := out.(float64)

	return v, nil
}

// Evaluate compiles and runs the tree rooted at n.
func Evaluate(n Node) (float64, error) {
	p, err := Compile(n)
	if err != nil {
		return 0, err
	}

	return p.Run()
}

// Eval parses text with lang and evaluates the result.
func Eval(
	ctx context.Context,
	lang *grammar.Language[Node],
	text string,
	params *grammar.Params[Node],
) (float64, error) {
	n, err := lang.Parse(ctx, text, params)
	if err != nil {
		return 0, err
	}

	return Evaluate(n)
}
