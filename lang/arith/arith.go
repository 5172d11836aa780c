package arith

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/yard/grammar"
	"github.com/ardnew/yard/span"
)

// Errors reported by the builders of an arithmetic language.
var (
	ErrUndefined  = grammar.NewError("undefined parameter")
	ErrNotInteger = errors.New("not an integer constant")
)

// Argument types of builtin functions.
const (
	TypeNumber  = "number"
	TypeInteger = "integer"
)

// functions lists the builtin functions and their argument types.
var functions = map[string][]string{
	"abs":   {TypeNumber},
	"ceil":  {TypeNumber},
	"floor": {TypeNumber},
	"round": {TypeNumber},
	"min":   {TypeNumber, TypeNumber},
	"max":   {TypeNumber, TypeNumber},
	"root":  {TypeNumber, TypeInteger},
}

// Functions returns the names of the builtin functions in sorted order.
func Functions() []string {
	return slices.Sorted(maps.Keys(functions))
}

// Signature returns the argument types of the named builtin function.
func Signature(name string) ([]string, bool) {
	args, ok := functions[name]

	return slices.Clone(args), ok
}

// New returns the arithmetic language. From loosest to tightest binding:
//
//	add, sub       "+" and "-", precedence 2
//	mul, div       "*" and "/", precedence 1
//	pow            "^", precedence 0
//	percent        postfix "%", precedence 0
//	sqrt           prefix "√", precedence 0
//	paren, rparen  "(" and ")" grouping
//	functions      f(a, ...) builtin call, named after f
//
// Identifiers are resolved from the parameters given to each parse.
func New(opts ...grammar.Option) (*grammar.Language[Node], error) {
	return grammar.New(Definitions(), opts...)
}

// Definitions returns the definitions of the arithmetic language in
// priority order.
func Definitions() []grammar.Definition[Node] {
	return slices.Clone(definitions())
}

var definitions = sync.OnceValue(func() []grammar.Definition[Node] {
	var (
		comma = grammar.NewDelimiter[Node]("comma", `,`)
		paren = grammar.NewOpen[Node]("paren", `\(`)
		defs  = []grammar.Definition[Node]{
			grammar.NewPlain[Node]("space", `\s+`, true),
			grammar.NewOperand[Node]("number", `\d+(?:\.\d+)?`, number),
		}
		opens = []grammar.Opener[Node]{paren}
	)

	for _, name := range Functions() {
		call := grammar.NewCall(name, name+`\s*\(`, apply(name),
			grammar.WithArgs[Node](functions[name]...),
			grammar.WithConverter[Node](convert),
			grammar.WithTypeOf[Node](typeOf),
		)

		defs = append(defs, call)
		opens = append(opens, call)
	}

	return append(defs,
		grammar.NewOperand[Node]("ident", `[A-Za-z_][A-Za-z0-9_]*`, ident),
		grammar.NewBinary("add", `\+`, 2, binary("+")),
		grammar.NewBinary("sub", `-`, 2, binary("-")),
		grammar.NewBinary("mul", `\*`, 1, binary("*")),
		grammar.NewBinary("div", `/`, 1, binary("/")),
		grammar.NewBinary("pow", `\^`, 0, binary("^")),
		grammar.NewPostfix("percent", `%`, 0, unary("%", true)),
		grammar.NewPrefix("sqrt", `√`, 0, unary("√", false)),
		paren,
		grammar.NewClose("rparen", `\)`, comma, opens...),
		comma,
	)
})

func number(sp span.Span, _ *grammar.Params[Node]) (Node, error) {
	v, err := strconv.ParseFloat(sp.String(), 64)
	if err != nil {
		return nil, err
	}

	return &Number{Value: v, Text: sp.String(), at: sp}, nil
}

func ident(sp span.Span, params *grammar.Params[Node]) (Node, error) {
	name := sp.String()

	if v, ok := params.Get(name); ok {
		return &Ident{Name: name, Value: v, at: sp}, nil
	}

	err := ErrUndefined.With(slog.String("name", name))

	if best, ok := Suggest(name, params.Names()); ok {
		return nil, err.With(slog.String("suggest", best)).
			Wrap(errors.New(name + " (did you mean " + best + "?)"))
	}

	return nil, err.Wrap(errors.New(name))
}

// Suggest returns the candidate that best fuzzy-matches name. When no
// candidate contains name as a subsequence, a candidate spelled with the
// same letters is accepted, so transposed letters still find a match.
func Suggest(name string, candidates []string) (string, bool) {
	if matches := fuzzy.Find(name, candidates); len(matches) > 0 {
		return matches[0].Str, true
	}

	key := letters(name)
	for _, c := range candidates {
		if letters(c) == key {
			return c, true
		}
	}

	return "", false
}

// letters returns the lowercase runes of s in sorted order.
func letters(s string) string {
	r := []rune(strings.ToLower(s))
	slices.Sort(r)

	return string(r)
}

func binary(op string) grammar.Builder[Node] {
	return func(args []Node, _ *grammar.Params[Node], spans []span.Span) (Node, error) {
		return &Binary{Op: op, X: args[0], Y: args[1], at: union(spans)}, nil
	}
}

func unary(op string, postfix bool) grammar.Builder[Node] {
	return func(args []Node, _ *grammar.Params[Node], spans []span.Span) (Node, error) {
		return &Unary{Op: op, X: args[0], Postfix: postfix, at: union(spans)}, nil
	}
}

func apply(name string) grammar.Builder[Node] {
	return func(args []Node, _ *grammar.Params[Node], spans []span.Span) (Node, error) {
		return &Call{Func: name, Args: args, at: union(spans)}, nil
	}
}

func convert(n Node, want string) (Node, error) {
	if want == TypeInteger && !integral(n) {
		return nil, ErrNotInteger
	}

	return n, nil
}

func typeOf(n Node) string {
	if integral(n) {
		return TypeInteger
	}

	return TypeNumber
}

func union(spans []span.Span) span.Span {
	sp, _ := span.Union(spans...)

	return sp
}
