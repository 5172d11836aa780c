package grammar

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/ardnew/yard/span"
)

var (
	errDivZero  = errors.New("division by zero")
	errNegative = errors.New("negative argument")
	errOverflow = errors.New("overflow")
)

// recorder captures the builder invocations of a parse in call order.
// A nil recorder captures nothing.
type recorder struct {
	calls []string
	spans [][]string
}

func (r *recorder) op(name string, fn func(...int) (int, error)) Builder[int] {
	return func(args []int, _ *Params[int], spans []span.Span) (int, error) {
		if r == nil {
			return fn(args...)
		}

		text := make([]string, len(spans))
		for i, sp := range spans {
			text[i] = sp.String()
		}

		r.calls = append(r.calls, name+fmt.Sprint(args))
		r.spans = append(r.spans, text)

		return fn(args...)
	}
}

func sum(args ...int) (int, error) {
	n := 0
	for _, a := range args {
		n += a
	}

	return n, nil
}

// newCalc returns a small integer calculator. Addition and subtraction bind
// loosest (precedence 2), then multiplication and division (1), then prefix
// negation "~" and postfix factorial "!" (0). Parentheses group, brackets
// build a list that sums its elements, and max(a, b), f(a, b) and sqrt(n)
// are calls.
func newCalc(tb testing.TB, rec *recorder, opts ...Option) *Language[int] {
	tb.Helper()

	var (
		comma = NewDelimiter[int]("comma", `,`)
		paren = NewOpen[int]("paren", `\(`)
		list  = NewList[int]("list", `\[`, rec.op("list", sum))
		maxf  = NewCall[int]("max", `max\(`,
			rec.op("max", func(a ...int) (int, error) { return max(a[0], a[1]), nil }),
			WithArgs[int]("int", "int"),
		)
		f = NewCall[int]("f", `f\(`,
			rec.op("f", sum),
			WithArgs[int]("int", "int"),
		)
		sqrt = NewCall[int]("sqrt", `sqrt\(`,
			rec.op("sqrt", func(a ...int) (int, error) {
				if a[0] > 1<<20 {
					return 0, errOverflow
				}

				r := 0
				for (r+1)*(r+1) <= a[0] {
					r++
				}

				return r, nil
			}),
			WithArgs[int]("nonneg"),
			WithConverter[int](func(n int, _ string) (int, error) {
				if n < 0 {
					return 0, errNegative
				}

				return n, nil
			}),
			WithTypeOf[int](func(n int) string {
				if n < 0 {
					return "negative"
				}

				return "nonneg"
			}),
		)
	)

	defs := []Definition[int]{
		NewPlain[int]("space", `\s+`, true),
		NewOperand[int]("number", `\d+`, func(sp span.Span, _ *Params[int]) (int, error) {
			return strconv.Atoi(sp.String())
		}),
		maxf,
		f,
		sqrt,
		NewOperand[int]("ident", `[a-z_]+`, func(sp span.Span, p *Params[int]) (int, error) {
			if n, ok := p.Get(sp.String()); ok {
				return n, nil
			}

			return 0, fmt.Errorf("undefined: %s", sp)
		}),
		NewBinary[int]("add", `\+`, 2, rec.op("+", sum)),
		NewBinary[int]("sub", `-`, 2, rec.op("-", func(a ...int) (int, error) {
			return a[0] - a[1], nil
		})),
		NewBinary[int]("mul", `\*`, 1, rec.op("*", func(a ...int) (int, error) {
			return a[0] * a[1], nil
		})),
		NewBinary[int]("div", `/`, 1, rec.op("/", func(a ...int) (int, error) {
			if a[1] == 0 {
				return 0, errDivZero
			}

			return a[0] / a[1], nil
		})),
		NewPrefix[int]("neg", `~`, 0, rec.op("~", func(a ...int) (int, error) {
			return -a[0], nil
		})),
		NewPostfix[int]("fact", `!`, 0, rec.op("!", func(a ...int) (int, error) {
			if a[0] > 20 {
				return 0, errOverflow
			}

			n := 1
			for i := 2; i <= a[0]; i++ {
				n *= i
			}

			return n, nil
		})),
		paren,
		list,
		NewClose[int]("rparen", `\)`, comma, paren, maxf, f, sqrt),
		NewClose[int]("rbracket", `\]`, comma, list),
		comma,
	}

	lang, err := New(defs, opts...)
	if err != nil {
		tb.Fatalf("New: %v", err)
	}

	return lang
}
