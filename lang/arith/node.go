package arith

import (
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/yard/span"
)

// Node is an element of an arithmetic expression tree.
//
// Nodes marshal to JSON and YAML as nested objects keyed by their fields.
// Source spans are not marshaled.
type Node interface {
	// Span returns the source text the node was parsed from.
	// Nodes bound from Go values have the zero span.
	Span() span.Span

	// String returns the node in canonical, fully parenthesized form.
	String() string

	// source writes the expr-lang rendition of the node.
	source(b *strings.Builder)
}

// Number is a numeric literal.
type Number struct {
	Value float64 `json:"number" yaml:"number"`
	Text  string  `json:"-"      yaml:"-"`
	at    span.Span
}

// Ident is a named parameter reference along with the node bound to it.
type Ident struct {
	Value Node   `json:"value" yaml:"value"`
	Name  string `json:"ident" yaml:"ident"`
	at    span.Span
}

// Unary is a prefix or postfix operation.
type Unary struct {
	X       Node   `json:"x"       yaml:"x"`
	Op      string `json:"op"      yaml:"op"`
	Postfix bool   `json:"postfix" yaml:"postfix"`
	at      span.Span
}

// Binary is an infix operation.
type Binary struct {
	X  Node   `json:"x"  yaml:"x"`
	Y  Node   `json:"y"  yaml:"y"`
	Op string `json:"op" yaml:"op"`
	at span.Span
}

// Call is a builtin function application.
type Call struct {
	Func string `json:"func" yaml:"func"`
	Args []Node `json:"args" yaml:"args"`
	at   span.Span
}

// Value returns a [Number] holding v with no source span.
func Value(v float64) *Number { return &Number{Value: v} }

func (n *Number) Span() span.Span { return n.at }
func (n *Ident) Span() span.Span  { return n.at }
func (n *Unary) Span() span.Span  { return n.at }
func (n *Binary) Span() span.Span { return n.at }
func (n *Call) Span() span.Span   { return n.at }

func (n *Number) String() string {
	if n.Text != "" {
		return n.Text
	}

	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *Ident) String() string { return n.Name }

func (n *Unary) String() string {
	if n.Postfix {
		return n.X.String() + n.Op
	}

	return n.Op + n.X.String()
}

func (n *Binary) String() string {
	return "(" + n.X.String() + " " + n.Op + " " + n.Y.String() + ")"
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}

	return n.Func + "(" + strings.Join(args, ", ") + ")"
}

// Numbers are always written as floating-point literals so that integer
// overflow and integer division never occur in the compiled program.
func (n *Number) source(b *strings.Builder) {
	switch v := n.Value; {
	case math.IsNaN(v):
		b.WriteString("(0.0 / 0.0)")

	case math.IsInf(v, 1):
		b.WriteString("(1.0 / 0.0)")

	case math.IsInf(v, -1):
		b.WriteString("(-1.0 / 0.0)")

	default:
		lit := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(lit, ".") {
			lit += ".0"
		}

		if v < 0 {
			lit = "(" + lit + ")"
		}

		b.WriteString(lit)
	}
}

func (n *Ident) source(b *strings.Builder) {
	b.WriteByte('(')
	n.Value.source(b)
	b.WriteByte(')')
}

func (n *Unary) source(b *strings.Builder) {
	b.WriteByte('(')

	switch n.Op {
	case "%":
		n.X.source(b)
		b.WriteString(" / 100.0")

	case "√":
		n.X.source(b)
		b.WriteString(" ** 0.5")
	}

	b.WriteByte(')')
}

func (n *Binary) source(b *strings.Builder) {
	op := n.Op
	if op == "^" {
		op = "**"
	}

	b.WriteByte('(')
	n.X.source(b)
	b.WriteString(" " + op + " ")
	n.Y.source(b)
	b.WriteByte(')')
}

func (n *Call) source(b *strings.Builder) {
	if n.Func == "root" && len(n.Args) == 2 {
		b.WriteByte('(')
		n.Args[0].source(b)
		b.WriteString(" ** (1.0 / ")
		n.Args[1].source(b)
		b.WriteString("))")

		return
	}

	b.WriteString(n.Func)
	b.WriteByte('(')

	for i, a := range n.Args {
		if i > 0 {
			b.WriteString(", ")
		}

		a.source(b)
	}

	b.WriteByte(')')
}

// integral reports whether n is a constant with no fractional part.
func integral(n Node) bool {
	switch x := n.(type) {
	case *Number:
		return x.Value == math.Trunc(x.Value) && !math.IsInf(x.Value, 0)

	case *Ident:
		return integral(x.Value)
	}

	return false
}
