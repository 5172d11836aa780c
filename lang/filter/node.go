package filter

import (
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/yard/span"
)

// Node is an element of a filter expression tree.
type Node interface {
	// Span returns the source text the node was parsed from.
	Span() span.Span

	// String returns the node in canonical form with upper-case keywords
	// and fully parenthesized operations.
	String() string

	children() []Node
	source(b *strings.Builder)
}

// Field refers to a value of the record being matched by its dotted path.
type Field struct {
	Path []string `json:"field" yaml:"field"`
	at   span.Span
}

// String is a string literal.
type String struct {
	Value string `json:"string" yaml:"string"`
	at    span.Span
}

// Number is a numeric literal.
type Number struct {
	Value float64 `json:"number" yaml:"number"`
	Text  string  `json:"-"      yaml:"-"`
	at    span.Span
}

// Bool is a boolean literal.
type Bool struct {
	Value bool `json:"bool" yaml:"bool"`
	at    span.Span
}

// Param is a named parameter reference along with the node bound to it.
type Param struct {
	Value Node   `json:"value" yaml:"value"`
	Name  string `json:"param" yaml:"param"`
	at    span.Span
}

// List is a bracketed list literal.
type List struct {
	Items []Node `json:"list" yaml:"list"`
	at    span.Span
}

// Unary is a NOT or EXISTS test.
type Unary struct {
	X  Node   `json:"x"  yaml:"x"`
	Op string `json:"op" yaml:"op"`
	at span.Span
}

// Binary is a comparison or logical connective.
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

// Text returns a [String] holding s with no source span.
func Text(s string) *String { return &String{Value: s} }

// Value returns a [Number] holding v with no source span.
func Value(v float64) *Number { return &Number{Value: v} }

// Flag returns a [Bool] holding v with no source span.
func Flag(v bool) *Bool { return &Bool{Value: v} }

func (n *Field) Span() span.Span  { return n.at }
func (n *String) Span() span.Span { return n.at }
func (n *Number) Span() span.Span { return n.at }
func (n *Bool) Span() span.Span   { return n.at }
func (n *Param) Span() span.Span  { return n.at }
func (n *List) Span() span.Span   { return n.at }
func (n *Unary) Span() span.Span  { return n.at }
func (n *Binary) Span() span.Span { return n.at }
func (n *Call) Span() span.Span   { return n.at }

func (n *Field) String() string  { return strings.Join(n.Path, ".") }
func (n *String) String() string { return strconv.Quote(n.Value) }
func (n *Bool) String() string   { return strconv.FormatBool(n.Value) }
func (n *Param) String() string  { return "$" + n.Name }

func (n *Number) String() string {
	if n.Text != "" {
		return n.Text
	}

	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *List) String() string { return "[" + joinNodes(n.Items) + "]" }

func (n *Unary) String() string {
	if n.Op == OpExists {
		return "(" + n.X.String() + " " + n.Op + ")"
	}

	return "(" + n.Op + " " + n.X.String() + ")"
}

func (n *Binary) String() string {
	return "(" + n.X.String() + " " + n.Op + " " + n.Y.String() + ")"
}

func (n *Call) String() string { return n.Func + "(" + joinNodes(n.Args) + ")" }

func joinNodes(nodes []Node) string {
	s := make([]string, len(nodes))
	for i, n := range nodes {
		s[i] = n.String()
	}

	return strings.Join(s, ", ")
}

func (*Field) children() []Node    { return nil }
func (*String) children() []Node   { return nil }
func (*Number) children() []Node   { return nil }
func (*Bool) children() []Node     { return nil }
func (n *Param) children() []Node  { return []Node{n.Value} }
func (n *List) children() []Node   { return n.Items }
func (n *Unary) children() []Node  { return []Node{n.X} }
func (n *Binary) children() []Node { return []Node{n.X, n.Y} }
func (n *Call) children() []Node   { return n.Args }

// Walk calls fn for n and each of its descendants in depth-first order.
// Children of a node are skipped if fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}

	for _, c := range n.children() {
		Walk(c, fn)
	}
}

func (n *Field) source(b *strings.Builder) {
	b.WriteString(fieldFunc + "(")

	for i, p := range n.Path {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(strconv.Quote(p))
	}

	b.WriteByte(')')
}

func (n *String) source(b *strings.Builder) { b.WriteString(strconv.Quote(n.Value)) }
func (n *Bool) source(b *strings.Builder)   { b.WriteString(strconv.FormatBool(n.Value)) }
func (n *Param) source(b *strings.Builder)  { n.Value.source(b) }

func (n *Number) source(b *strings.Builder) {
	switch v := n.Value; {
	case math.IsNaN(v):
		b.WriteString("(0.0 / 0.0)")

	case math.IsInf(v, 0):
		b.WriteString("(" + strconv.Itoa(int(math.Copysign(1, v))) + ".0 / 0.0)")

	default:
		lit := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(lit, ".") {
			lit += ".0"
		}

		b.WriteString("(" + lit + ")")
	}
}

func (n *List) source(b *strings.Builder) {
	b.WriteByte('[')

	for i, item := range n.Items {
		if i > 0 {
			b.WriteString(", ")
		}

		item.source(b)
	}

	b.WriteByte(']')
}

func (n *Unary) source(b *strings.Builder) {
	b.WriteByte('(')

	if n.Op == OpExists {
		n.X.source(b)
		b.WriteString(" != nil")
	} else {
		b.WriteString("not ")
		n.X.source(b)
	}

	b.WriteByte(')')
}

// operators maps connectives and comparisons to their expr-lang spelling.
var operators = map[string]string{
	OpEq:       "==",
	OpNe:       "!=",
	OpLt:       "<",
	OpLe:       "<=",
	OpGt:       ">",
	OpGe:       ">=",
	OpIn:       "in",
	OpAnd:      "and",
	OpOr:       "or",
}

func (n *Binary) source(b *strings.Builder) {
	if n.Op == OpContains {
		b.WriteString(includesFunc + "(")
		n.X.source(b)
		b.WriteString(", ")
		n.Y.source(b)
		b.WriteByte(')')

		return
	}

	b.WriteByte('(')
	n.X.source(b)
	b.WriteString(" " + operators[n.Op] + " ")
	n.Y.source(b)
	b.WriteByte(')')
}

func (n *Call) source(b *strings.Builder) {
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
