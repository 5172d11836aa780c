package grammar

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ardnew/yard/log"
	"github.com/ardnew/yard/span"
)

// value is a completed sub-result awaiting consumption by an operator.
type value[N any] struct {
	node N
	span span.Span
}

// pending is a deferred operator or a bracket marker on the operator stack.
type pending[N any] struct {
	def  Definition[N]
	span span.Span
}

// state is the mutable context of a single parse.
// It is owned by exactly one goroutine for the duration of the parse.
type state[N any] struct {
	ctx       context.Context
	logger    log.Logger
	src       *span.Source
	params    *Params[N]
	operands  []value[N]
	operators []pending[N]
}

func newState[N any](
	ctx context.Context,
	logger log.Logger,
	src *span.Source,
	params *Params[N],
) *state[N] {
	return &state[N]{
		ctx:       ctx,
		logger:    logger,
		src:       src,
		params:    params,
		operands:  make([]value[N], 0, 8),
		operators: make([]pending[N], 0, 8),
	}
}

// apply advances the parse by one token.
func (s *state[N]) apply(tok Token[N]) error {
	switch def := tok.Def.(type) {
	case *Plain[N]:
		return nil

	case *Operand[N]:
		return s.operand(def, tok.Span)

	case *Operator[N]:
		return s.operator(def, tok.Span)

	case *Open[N], *Call[N]:
		s.operators = append(s.operators, pending[N]{def: tok.Def, span: tok.Span})

		return nil

	case *Delimiter[N]:
		return s.delimiter(def, tok.Span)

	case *Close[N]:
		return s.close(def, tok.Span)

	default:
		return ErrInvalidDefinition.At(tok.Span).
			With(slog.String("name", tok.Def.Name()))
	}
}

// drain executes every remaining operator and returns the sole result.
func (s *state[N]) drain() (N, error) {
	var zero N

	end := s.src.EndSpan()

	for len(s.operators) > 0 {
		top := s.pop()

		op, ok := top.def.(*Operator[N])
		if !ok {
			return zero, ErrUnmatchedBracket.At(end, top.span).
				With(slog.String("name", top.def.Name()))
		}

		if err := s.execute(op, top.span, end); err != nil {
			return zero, err
		}
	}

	switch len(s.operands) {
	case 0:
		return zero, ErrExpectedOperand.At(s.src.Span())

	case 1:
		return s.operands[0].node, nil

	default:
		return zero, ErrUnexpectedOperand.At(join(s.operands[1:]...))
	}
}

func (s *state[N]) operand(def *Operand[N], sp span.Span) error {
	node, err := def.build(sp, s.params)
	if err != nil {
		return ErrOperationInvalid.At(sp).
			With(slog.String("name", def.Name())).
			Wrap(err)
	}

	s.push(node, sp)

	return nil
}

func (s *state[N]) operator(def *Operator[N], sp span.Span) error {
	// Equal precedence folds left, but only for operators that take an
	// operand from the left. Stacked prefix operators stay pending.
	if def.left > 0 {
		for len(s.operators) > 0 {
			top := s.operators[len(s.operators)-1]

			prev, ok := top.def.(*Operator[N])
			if !ok || prev.right == 0 || prev.precedence > def.precedence {
				break
			}

			s.pop()

			if err := s.execute(prev, top.span, sp); err != nil {
				return err
			}
		}
	}

	if def.right == 0 {
		return s.execute(def, sp, sp)
	}

	s.operators = append(s.operators, pending[N]{def: def, span: sp})

	return nil
}

func (s *state[N]) delimiter(def *Delimiter[N], sp span.Span) error {
	for len(s.operators) > 0 {
		top := s.operators[len(s.operators)-1]

		op, ok := top.def.(*Operator[N])
		if !ok {
			break
		}

		s.pop()

		if err := s.execute(op, top.span, sp); err != nil {
			return err
		}
	}

	s.operators = append(s.operators, pending[N]{def: def, span: sp})

	return nil
}

func (s *state[N]) close(def *Close[N], sp span.Span) error {
	var (
		args      []value[N] // collected right to left
		bound     = sp
		delimited bool
	)

	for {
		if len(s.operators) == 0 {
			return ErrUnmatchedBracket.At(sp).
				With(slog.String("name", def.Name()))
		}

		top := s.pop()

		switch d := top.def.(type) {
		case *Operator[N]:
			if err := s.execute(d, top.span, bound); err != nil {
				return err
			}

		case *Delimiter[N]:
			if d != def.delimiter {
				return ErrUnmatchedBracket.At(sp, top.span).
					With(slog.String("name", def.Name()))
			}

			vals, err := s.slot(top.span, bound, true)
			if err != nil {
				return err
			}

			args = append(args, vals...)
			bound = top.span
			delimited = true

		default:
			if !def.Closes(top.def) {
				return ErrUnmatchedBracket.At(sp, top.span).
					With(slog.String("name", def.Name()))
			}

			vals, err := s.slot(top.span, bound, delimited)
			if err != nil {
				return err
			}

			args = append(args, vals...)
			slices.Reverse(args)

			return s.resolve(top, args, sp)
		}
	}
}

// slot pops the operand between marker and bound. At most one operand may
// occupy a slot, and exactly one if required.
func (s *state[N]) slot(marker, bound span.Span, required bool) ([]value[N], error) {
	n := s.countAfter(len(s.operands), marker)
	top := len(s.operands)

	switch {
	case n == 0 && required:
		gap, _ := span.Between(marker, bound)

		return nil, ErrExpectedOperand.At(gap)

	case n > 1:
		return nil, ErrUnexpectedOperand.At(join(s.operands[top-n+1:]...))
	}

	vals := slices.Clone(s.operands[top-n:])
	s.operands = s.operands[:top-n]

	return vals, nil
}

// resolve builds the node for a closed bracket from its arguments in source
// order.
func (s *state[N]) resolve(open pending[N], args []value[N], end span.Span) error {
	whole, _ := span.Union(open.span, end)

	switch d := open.def.(type) {
	case *Open[N]:
		if d.build == nil {
			switch {
			case len(args) == 0:
				gap, _ := span.Between(open.span, end)

				return ErrExpectedOperand.At(gap)

			case len(args) > 1:
				return ErrUnexpectedOperand.At(join(args[1:]...))
			}

			s.push(args[0].node, whole)

			return nil
		}

		return s.build(d.Name(), d.build, args, open.span, end, whole)

	case *Call[N]:
		if d.checked && len(args) != len(d.args) {
			at, _ := span.Between(open.span, end)
			if len(args) > 0 {
				at = join(args...)
			}

			return ErrArgumentCount.At(at).With(
				slog.String("name", d.Name()),
				slog.Int("expected", len(d.args)),
				slog.Int("actual", len(args)),
			)
		}

		if d.checked && d.convert != nil {
			for i, arg := range args {
				node, err := d.convert(arg.node, d.args[i])
				if err != nil {
					return ErrArgumentType.At(arg.span).With(
						slog.String("name", d.Name()),
						slog.Int("index", i),
						slog.String("expected", d.args[i]),
						slog.String("actual", d.typeName(arg.node)),
					).Wrap(err)
				}

				args[i].node = node
			}
		}

		return s.build(d.Name(), d.build, args, open.span, end, whole)
	}

	return ErrUnmatchedBracket.At(end, open.span)
}

// build invokes a bracket builder with spans [open, args..., close].
func (s *state[N]) build(
	name string,
	fn Builder[N],
	args []value[N],
	open, end, whole span.Span,
) error {
	nodes := make([]N, len(args))
	spans := make([]span.Span, 0, len(args)+2)
	spans = append(spans, open)

	for i, arg := range args {
		nodes[i] = arg.node
		spans = append(spans, arg.span)
	}

	spans = append(spans, end)

	node, err := fn(nodes, s.params, spans)
	if err != nil {
		return ErrOperationInvalid.At(whole).
			With(slog.String("name", name)).
			Wrap(err)
	}

	s.push(node, whole)

	return nil
}

// execute applies op at span at to the operands around it.
// The op must already be removed from the operator stack. Missing operands
// are reported in the region between the operator and limit.
func (s *state[N]) execute(op *Operator[N], at, limit span.Span) error {
	top := len(s.operands)

	// Right operands lie after the operator itself.
	nr := s.countAfter(top, at)

	switch {
	case nr > op.right:
		return ErrUnexpectedOperand.At(join(s.operands[top-nr+op.right:]...)).
			With(slog.String("name", op.Name()))

	case nr < op.right:
		anchor := at
		if nr > 0 {
			anchor = s.operands[top-1].span
		}

		gap, _ := span.Between(anchor, limit)

		return ErrExpectedOperand.At(gap).
			With(slog.String("name", op.Name()))
	}

	// Left operands lie after the next pending entry, if any.
	rest := top - nr
	nl := rest

	if n := len(s.operators); n > 0 {
		nl = s.countAfter(rest, s.operators[n-1].span)
	}

	switch {
	case nl > op.left:
		return ErrUnexpectedOperand.At(join(s.operands[rest-nl : rest-op.left]...)).
			With(slog.String("name", op.Name()))

	case nl < op.left:
		boundary := s.src.Span().Sub(0, 0)
		if n := len(s.operators); n > 0 {
			boundary = s.operators[n-1].span
		}

		first := at
		if nl > 0 {
			first = s.operands[rest-nl].span
		}

		gap, _ := span.Between(boundary, first)

		return ErrExpectedOperand.At(gap).
			With(slog.String("name", op.Name()))
	}

	var (
		lhs   = s.operands[rest-op.left : rest]
		rhs   = s.operands[rest:top]
		nodes = make([]N, 0, len(op.positions))
		spans = make([]span.Span, 0, len(op.positions)+1)
		whole = at
	)

	spans = append(spans, at)

	for _, pos := range op.positions {
		var arg value[N]
		if pos == Left {
			arg, lhs = lhs[0], lhs[1:]
		} else {
			arg, rhs = rhs[0], rhs[1:]
		}

		nodes = append(nodes, arg.node)
		spans = append(spans, arg.span)
		whole, _ = span.Union(whole, arg.span)
	}

	s.logger.TraceContext(s.ctx, "execute",
		slog.String("operator", op.Name()),
		slog.Int("args", len(nodes)),
		slog.Any("span", whole),
	)

	node, err := op.build(nodes, s.params, spans)
	if err != nil {
		return ErrOperationInvalid.At(whole).
			With(slog.String("name", op.Name())).
			Wrap(err)
	}

	s.operands = s.operands[:rest-op.left]
	s.push(node, whole)

	return nil
}

// countAfter returns how many of the first n operands, counting down from
// operand n-1, lie right of boundary.
func (s *state[N]) countAfter(n int, boundary span.Span) int {
	count := 0

	for count < n {
		ok, err := s.operands[n-1-count].span.IsRightOf(boundary)
		if err != nil || !ok {
			break
		}

		count++
	}

	return count
}

func (s *state[N]) push(node N, sp span.Span) {
	s.operands = append(s.operands, value[N]{node: node, span: sp})
}

func (s *state[N]) pop() pending[N] {
	top := s.operators[len(s.operators)-1]
	s.operators = s.operators[:len(s.operators)-1]

	return top
}

// join returns the span encompassing every value.
func join[N any](vals ...value[N]) span.Span {
	sp := vals[0].span

	for _, v := range vals[1:] {
		sp, _ = span.Union(sp, v.span)
	}

	return sp
}

// typeName names the type of node for error reporting.
func (c *Call[N]) typeName(node N) string {
	if c.typeOf != nil {
		return c.typeOf(node)
	}

	return fmt.Sprintf("%T", node)
}
