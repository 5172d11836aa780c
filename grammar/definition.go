package grammar

import (
	"log/slog"
	"regexp"
	"slices"

	"github.com/ardnew/yard/span"
)

// OperandBuilder constructs a node from the text matched by an [Operand].
type OperandBuilder[N any] func(sp span.Span, params *Params[N]) (N, error)

// Builder constructs a node from the nodes consumed by an [Operator], a
// list-building [Open], or a [Call].
//
// The spans slice begins with the span of the token that triggered the build
// (the operator, or the opening bracket), followed by the span of each
// argument in args. Brackets append the span of the closing token last.
type Builder[N any] func(args []N, params *Params[N], spans []span.Span) (N, error)

// Converter coerces an argument node to the named type expected by a [Call].
type Converter[N any] func(node N, want string) (N, error)

// Definition is one token kind of a language.
//
// The set of implementations is closed: [Plain], [Operand], [Operator],
// [Open], [Call], [Close], and [Delimiter].
// Definitions are immutable once constructed and may be shared by any number
// of languages and concurrent parses.
type Definition[N any] interface {
	// Name identifies the definition within its language.
	Name() string
	// Pattern is the regular expression matching the definition's tokens.
	Pattern() string
	// Ignored reports whether matched tokens are discarded by the tokenizer.
	Ignored() bool
	// Kind reports which variant the definition is.
	Kind() Kind

	definition(N)
}

// Opener is a [Definition] that begins a bracketed region: an [Open] or a
// [Call].
type Opener[N any] interface {
	Definition[N]

	opener(N)
}

type base struct {
	name    string
	pattern string
	ignore  bool
}

func (b base) Name() string    { return b.name }
func (b base) Pattern() string { return b.pattern }
func (b base) Ignored() bool   { return b.ignore }

// Plain is a token with no behavior of its own, such as white space or a
// comment.
type Plain[N any] struct{ base }

// NewPlain returns a Plain definition. Ignored plain tokens consume input
// without ever reaching the parser.
func NewPlain[N any](name, pattern string, ignore bool) *Plain[N] {
	return &Plain[N]{base{name: name, pattern: pattern, ignore: ignore}}
}

func (*Plain[N]) Kind() Kind   { return KindPlain }
func (*Plain[N]) definition(N) {}

// Operand is a token that produces a node by itself: a literal or a name.
type Operand[N any] struct {
	base

	build OperandBuilder[N]
}

// NewOperand returns an Operand definition.
func NewOperand[N any](name, pattern string, build OperandBuilder[N]) *Operand[N] {
	return &Operand[N]{base: base{name: name, pattern: pattern}, build: build}
}

func (*Operand[N]) Kind() Kind   { return KindOperand }
func (*Operand[N]) definition(N) {}

// Operator is a token that consumes operands on either side of it.
//
// Operators with a lower precedence value are evaluated first.
// The ordered positions determine both how many operands are consumed from
// each side and the order in which they are passed to the builder.
type Operator[N any] struct {
	base

	build      Builder[N]
	positions  []Position
	precedence int
	left       int
	right      int
}

// NewOperator returns an Operator taking one argument per position.
func NewOperator[N any](
	name, pattern string,
	precedence int,
	positions []Position,
	build Builder[N],
) *Operator[N] {
	op := &Operator[N]{
		base:       base{name: name, pattern: pattern},
		build:      build,
		positions:  slices.Clone(positions),
		precedence: precedence,
	}

	for _, p := range op.positions {
		if p == Left {
			op.left++
		} else {
			op.right++
		}
	}

	return op
}

// NewPrefix returns a unary Operator taking its operand from the right.
func NewPrefix[N any](name, pattern string, precedence int, build Builder[N]) *Operator[N] {
	return NewOperator(name, pattern, precedence, []Position{Right}, build)
}

// NewPostfix returns a unary Operator taking its operand from the left.
func NewPostfix[N any](name, pattern string, precedence int, build Builder[N]) *Operator[N] {
	return NewOperator(name, pattern, precedence, []Position{Left}, build)
}

// NewBinary returns an infix Operator with one operand on each side.
func NewBinary[N any](name, pattern string, precedence int, build Builder[N]) *Operator[N] {
	return NewOperator(name, pattern, precedence, []Position{Left, Right}, build)
}

func (*Operator[N]) Kind() Kind   { return KindOperator }
func (*Operator[N]) definition(N) {}

// Precedence returns the operator's evaluation priority.
func (o *Operator[N]) Precedence() int { return o.precedence }

// Positions returns the operator's argument positions in builder order.
func (o *Operator[N]) Positions() []Position { return slices.Clone(o.positions) }

// Arity returns the number of operands taken from each side.
func (o *Operator[N]) Arity() (left, right int) { return o.left, o.right }

// Open is an opening bracket.
//
// Without a builder, an Open groups exactly one operand, and the grouped
// operand's span grows to include both brackets. With a builder, it collects
// any number of delimited operands into a single node, as in a list literal.
type Open[N any] struct {
	base

	build Builder[N]
}

// NewOpen returns a grouping Open definition.
func NewOpen[N any](name, pattern string) *Open[N] {
	return &Open[N]{base: base{name: name, pattern: pattern}}
}

// NewList returns an Open definition that builds a node from every operand
// found before its matching [Close].
func NewList[N any](name, pattern string, build Builder[N]) *Open[N] {
	return &Open[N]{base: base{name: name, pattern: pattern}, build: build}
}

func (*Open[N]) Kind() Kind   { return KindOpen }
func (*Open[N]) definition(N) {}
func (*Open[N]) opener(N)     {}

// Call is an opening bracket that invokes a function on its operands,
// typically matched together with the function name, as in `max\(`.
type Call[N any] struct {
	base

	build   Builder[N]
	convert Converter[N]
	typeOf  func(N) string
	args    []string
	checked bool
}

// CallOption configures a [Call].
type CallOption[N any] func(*Call[N])

// WithArgs declares the exact number of arguments a [Call] accepts and the
// type name each argument is converted to.
func WithArgs[N any](types ...string) CallOption[N] {
	return func(c *Call[N]) {
		c.args = slices.Clone(types)
		c.checked = true
	}
}

// WithConverter sets the hook used to coerce arguments to their declared
// types.
func WithConverter[N any](fn Converter[N]) CallOption[N] {
	return func(c *Call[N]) { c.convert = fn }
}

// WithTypeOf sets the function naming a node's type in argument type errors.
func WithTypeOf[N any](fn func(N) string) CallOption[N] {
	return func(c *Call[N]) { c.typeOf = fn }
}

// NewCall returns a Call definition.
func NewCall[N any](
	name, pattern string,
	build Builder[N],
	opts ...CallOption[N],
) *Call[N] {
	c := &Call[N]{base: base{name: name, pattern: pattern}, build: build}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (*Call[N]) Kind() Kind   { return KindCall }
func (*Call[N]) definition(N) {}
func (*Call[N]) opener(N)     {}

// Args returns the declared argument types and whether the argument count
// is checked at all.
func (c *Call[N]) Args() ([]string, bool) { return slices.Clone(c.args), c.checked }

// Close is a closing bracket. It resolves the nearest pending [Opener] among
// those it is permitted to close, optionally splitting the enclosed operands
// at each occurrence of its [Delimiter].
//
// Brackets of different kinds never interleave: if the nearest pending
// bracket is one c may not close, as the "[" in "([1)", the parse fails
// with [ErrUnmatchedBracket] rather than looking past it.
type Close[N any] struct {
	base

	delimiter *Delimiter[N]
	opens     []Opener[N]
}

// NewClose returns a Close definition matching any of opens.
// The delimiter may be nil if the brackets never enclose a list.
func NewClose[N any](
	name, pattern string,
	delimiter *Delimiter[N],
	opens ...Opener[N],
) *Close[N] {
	return &Close[N]{
		base:      base{name: name, pattern: pattern},
		delimiter: delimiter,
		opens:     slices.Clone(opens),
	}
}

func (*Close[N]) Kind() Kind   { return KindClose }
func (*Close[N]) definition(N) {}

// Delimiter returns the list delimiter recognized inside the brackets.
func (c *Close[N]) Delimiter() *Delimiter[N] { return c.delimiter }

// Closes reports whether c may close an open bracket of definition o.
func (c *Close[N]) Closes(o Definition[N]) bool {
	for _, open := range c.opens {
		if Definition[N](open) == o {
			return true
		}
	}

	return false
}

// Delimiter separates sibling operands inside brackets.
type Delimiter[N any] struct{ base }

// NewDelimiter returns a Delimiter definition.
func NewDelimiter[N any](name, pattern string) *Delimiter[N] {
	return &Delimiter[N]{base{name: name, pattern: pattern}}
}

func (*Delimiter[N]) Kind() Kind   { return KindDelimiter }
func (*Delimiter[N]) definition(N) {}

// validName matches the permitted definition names.
var validName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// validate checks the names of defs for syntax and uniqueness.
func validate[N any](defs []Definition[N]) error {
	seen := make(map[string]struct{}, len(defs))

	for i, def := range defs {
		if def == nil {
			return ErrInvalidDefinition.With(slog.Int("index", i))
		}

		name := def.Name()
		at := span.NewSource("definition", name).Span()

		if !validName.MatchString(name) {
			return ErrInvalidDefinitionName.At(at).
				With(slog.String("name", name))
		}

		if _, dup := seen[name]; dup {
			return ErrDuplicateDefinitionName.At(at).
				With(slog.String("name", name))
		}

		seen[name] = struct{}{}

		if !buildable(def) {
			return ErrInvalidDefinition.At(at).
				With(slog.String("name", name), slog.String("reason", "nil builder"))
		}
	}

	return nil
}

// buildable reports whether def has every callback its kind requires.
func buildable[N any](def Definition[N]) bool {
	switch d := def.(type) {
	case *Operand[N]:
		return d.build != nil

	case *Operator[N]:
		return d.build != nil

	case *Call[N]:
		return d.build != nil
	}

	return true
}
