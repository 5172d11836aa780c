package filter

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ardnew/yard/grammar"
	"github.com/ardnew/yard/span"
)

// Operator spellings used in canonical output.
const (
	OpEq       = "="
	OpNe       = "!="
	OpLt       = "<"
	OpLe       = "<="
	OpGt       = ">"
	OpGe       = ">="
	OpContains = "CONTAINS"
	OpIn       = "IN"
	OpExists   = "EXISTS"
	OpNot      = "NOT"
	OpAnd      = "AND"
	OpOr       = "OR"
)

// Value types of nodes and function arguments.
const (
	TypeAny    = "any"
	TypeString = "string"
	TypeNumber = "number"
	TypeBool   = "bool"
	TypeList   = "list"
)

// Errors reported by the builders of a filter language.
var (
	ErrUndefined = grammar.NewError("undefined parameter")
	ErrType      = errors.New("incompatible type")
)

type function struct {
	args   []string
	result string
}

var functions = map[string]function{
	"lower":   {args: []string{TypeString}, result: TypeString},
	"upper":   {args: []string{TypeString}, result: TypeString},
	"len":     {args: []string{TypeAny}, result: TypeNumber},
	"prepend": {args: []string{TypeString, TypeString}, result: TypeString},
}

// Functions returns the names of the builtin functions in sorted order.
func Functions() []string {
	return slices.Sorted(maps.Keys(functions))
}

// New returns the filter language:
//
//	= != < <= > >= CONTAINS IN   binary, precedence 1
//	EXISTS                       postfix, precedence 1
//	NOT                          prefix, precedence 2
//	AND                          binary, precedence 3
//	OR                           binary, precedence 4
//	( )                          grouping
//	[a, b]                       list literal
//	f(a, ...)                    builtin function call
//
// Keywords are case-insensitive. Parameters are written $name and resolved
// from the parameters given to each parse.
func New(opts ...grammar.Option) (*grammar.Language[Node], error) {
	return grammar.New(Definitions(), opts...)
}

// Definitions returns the definitions of the filter language in priority
// order.
func Definitions() []grammar.Definition[Node] {
	return slices.Clone(definitions())
}

var definitions = sync.OnceValue(func() []grammar.Definition[Node] {
	var (
		comma = grammar.NewDelimiter[Node]("comma", `,`)
		paren = grammar.NewOpen[Node]("paren", `\(`)
		list  = grammar.NewList[Node]("list", `\[`, makeList)
		defs  = []grammar.Definition[Node]{
			grammar.NewPlain[Node]("space", `\s+`, true),
			grammar.NewOperand[Node]("string", `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`, str),
			grammar.NewOperand[Node]("number", `-?\d+(?:\.\d+)?`, number),
			grammar.NewOperand[Node]("param", `\$[A-Za-z_][A-Za-z0-9_]*`, param),
			grammar.NewOperand[Node]("bool", `(?i:true|false)\b`, boolean),
			grammar.NewBinary("and", `(?i:and)\b`, 3, binary(OpAnd)),
			grammar.NewBinary("or", `(?i:or)\b`, 4, binary(OpOr)),
			grammar.NewPrefix("not", `(?i:not)\b`, 2, unary(OpNot)),
			grammar.NewPostfix("exists", `(?i:exists)\b`, 1, unary(OpExists)),
			grammar.NewBinary("contains", `(?i:contains)\b`, 1, binary(OpContains)),
			grammar.NewBinary("in", `(?i:in)\b`, 1, binary(OpIn)),
		}
		opens = []grammar.Opener[Node]{paren}
	)

	for _, name := range Functions() {
		call := grammar.NewCall(name, name+`\s*\(`, apply(name),
			grammar.WithArgs[Node](functions[name].args...),
			grammar.WithConverter[Node](convert),
			grammar.WithTypeOf[Node](TypeOf),
		)

		defs = append(defs, call)
		opens = append(opens, call)
	}

	return append(defs,
		grammar.NewOperand[Node]("field", `[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*`, field),
		grammar.NewBinary("ne", `!=`, 1, binary(OpNe)),
		grammar.NewBinary("le", `<=`, 1, binary(OpLe)),
		grammar.NewBinary("ge", `>=`, 1, binary(OpGe)),
		grammar.NewBinary("lt", `<`, 1, binary(OpLt)),
		grammar.NewBinary("gt", `>`, 1, binary(OpGt)),
		grammar.NewBinary("eq", `==?`, 1, binary(OpEq)),
		paren,
		list,
		grammar.NewClose("rparen", `\)`, comma, opens...),
		grammar.NewClose("rbracket", `\]`, comma, list),
		comma,
	)
})

func str(sp span.Span, _ *grammar.Params[Node]) (Node, error) {
	s, err := unquote(sp.String())
	if err != nil {
		return nil, err
	}

	return &String{Value: s, at: sp}, nil
}

// unquote decodes a single- or double-quoted literal with Go escapes.
func unquote(lit string) (string, error) {
	var (
		b     strings.Builder
		quote = lit[0]
		s     = lit[1 : len(lit)-1]
	)

	for len(s) > 0 {
		r, _, tail, err := strconv.UnquoteChar(s, quote)
		if err != nil {
			return "", err
		}

		b.WriteRune(r)
		s = tail
	}

	return b.String(), nil
}

func number(sp span.Span, _ *grammar.Params[Node]) (Node, error) {
	v, err := strconv.ParseFloat(sp.String(), 64)
	if err != nil {
		return nil, err
	}

	return &Number{Value: v, Text: sp.String(), at: sp}, nil
}

func boolean(sp span.Span, _ *grammar.Params[Node]) (Node, error) {
	return &Bool{Value: strings.EqualFold(sp.String(), "true"), at: sp}, nil
}

func field(sp span.Span, _ *grammar.Params[Node]) (Node, error) {
	return &Field{Path: strings.Split(sp.String(), "."), at: sp}, nil
}

func param(sp span.Span, params *grammar.Params[Node]) (Node, error) {
	name := strings.TrimPrefix(sp.String(), "$")

	if v, ok := params.Get(name); ok {
		return &Param{Name: name, Value: v, at: sp}, nil
	}

	err := ErrUndefined.With(slog.String("name", name))

	if best, ok := suggest(name, params.Names()); ok {
		return nil, err.With(slog.String("suggest", best)).
			Wrap(errors.New("$" + name + " (did you mean $" + best + "?)"))
	}

	return nil, err.Wrap(errors.New("$" + name))
}

func makeList(args []Node, _ *grammar.Params[Node], spans []span.Span) (Node, error) {
	return &List{Items: args, at: union(spans)}, nil
}

func binary(op string) grammar.Builder[Node] {
	return func(args []Node, _ *grammar.Params[Node], spans []span.Span) (Node, error) {
		if op == OpIn && TypeOf(args[1]) != TypeList && TypeOf(args[1]) != TypeAny {
			return nil, ErrType
		}

		return &Binary{Op: op, X: args[0], Y: args[1], at: union(spans)}, nil
	}
}

func unary(op string) grammar.Builder[Node] {
	return func(args []Node, _ *grammar.Params[Node], spans []span.Span) (Node, error) {
		return &Unary{Op: op, X: args[0], at: union(spans)}, nil
	}
}

func apply(name string) grammar.Builder[Node] {
	return func(args []Node, _ *grammar.Params[Node], spans []span.Span) (Node, error) {
		return &Call{Func: name, Args: args, at: union(spans)}, nil
	}
}

// TypeOf returns the static type of n, or [TypeAny] if it is only known
// when matching a record.
func TypeOf(n Node) string {
	switch x := n.(type) {
	case *String:
		return TypeString

	case *Number:
		return TypeNumber

	case *Bool, *Unary, *Binary:
		return TypeBool

	case *List:
		return TypeList

	case *Param:
		return TypeOf(x.Value)

	case *Call:
		return functions[x.Func].result
	}

	return TypeAny
}

// convert coerces n to the type want. Numbers are accepted as strings.
func convert(n Node, want string) (Node, error) {
	got := TypeOf(n)

	switch {
	case want == TypeAny, got == TypeAny, got == want:
		return n, nil

	case want == TypeString && got == TypeNumber:
		return &String{Value: literal(n).String(), at: n.Span()}, nil
	}

	return nil, ErrType
}

// literal returns the node bound to a parameter, or n itself.
func literal(n Node) Node {
	for {
		p, ok := n.(*Param)
		if !ok {
			return n
		}

		n = p.Value
	}
}

func union(spans []span.Span) span.Span {
	sp, _ := span.Union(spans...)

	return sp
}
