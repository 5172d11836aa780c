package filter

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/yard/grammar"
)

// Errors reported when compiling or matching a filter.
var (
	ErrUnknownField = grammar.NewError("unknown field")
	ErrCompile      = grammar.NewError("filter compilation failed")
	ErrMatch        = grammar.NewError("filter evaluation failed")
)

// Names of the functions provided to compiled programs.
const (
	fieldFunc    = "field"    // resolves a path against the matched record
	includesFunc = "includes" // CONTAINS on strings and lists
)

// Record is a value matched by a [Predicate]. Nested maps are traversed by
// the dotted paths of fields.
type Record = map[string]any

// Predicate is a compiled filter expression.
// A Predicate is safe for concurrent use.
type Predicate struct {
	program *vm.Program
	source  string
}

// Source returns the expr-lang source of the tree rooted at n.
func Source(n Node) string {
	var b strings.Builder

	n.source(&b)

	return b.String()
}

// Fields returns the distinct dotted paths of every field referenced by n,
// in order of first appearance.
func Fields(n Node) []string {
	var paths []string

	Walk(n, func(n Node) bool {
		if f, ok := n.(*Field); ok {
			if path := f.String(); !slices.Contains(paths, path) {
				paths = append(paths, path)
			}
		}

		return true
	})

	return paths
}

// Check verifies that the first element of every field path referenced by n
// is one of known. Unknown fields are reported at their location with the
// closest known name, if any.
func Check(n Node, known []string) error {
	var err error

	Walk(n, func(n Node) bool {
		f, ok := n.(*Field)
		if !ok || err != nil {
			return err == nil
		}

		if slices.Contains(known, f.Path[0]) {
			return true
		}

		e := ErrUnknownField.At(f.Span()).With(slog.String("name", f.Path[0]))

		if best, ok := suggest(f.Path[0], known); ok {
			e = e.With(slog.String("suggest", best))
		}

		err = e

		return false
	})

	return err
}

// Compile compiles the tree rooted at n into a [Predicate].
func Compile(n Node) (*Predicate, error) {
	source := Source(n)

	program, err := expr.Compile(source,
		expr.Env(Record{fieldFunc: (func(...string) any)(nil)}),
		expr.AsBool(),
		expr.Function("prepend", prepend, new(func(string, string) string)),
		expr.Function(includesFunc, includes, new(func(any, any) bool)),
	)
	if err != nil {
		return nil, ErrCompile.Wrap(err).
			With(slog.String("source", source))
	}

	return &Predicate{program: program, source: source}, nil
}

// Source returns the expr-lang source p was compiled from.
func (p *Predicate) Source() string { return p.source }

// Match reports whether record satisfies p. A filter that yields nil, such
// as a lone missing field, does not match.
func (p *Predicate) Match(record Record) (bool, error) {
	env := Record{
		fieldFunc: func(path ...string) any { return lookup(record, path) },
	}

	out, err := vm.Run(p.program, env)
	if err != nil {
		return false, ErrMatch.Wrap(err).
			With(slog.String("source", p.source))
	}

	switch v := out.(type) {
	case bool:
		return v, nil

	case nil:
		return false, nil
	}

	return false, ErrMatch.With(
		slog.String("source", p.source),
		slog.String("result", fmt.Sprintf("%T", out)),
	)
}

// Select returns the records matching p. Records that cannot be evaluated
// are passed to skip, if non-nil, and excluded.
func (p *Predicate) Select(records []Record, skip func(Record, error)) []Record {
	var out []Record

	for _, r := range records {
		ok, err := p.Match(r)
		if err != nil {
			if skip != nil {
				skip(r, err)
			}

			continue
		}

		if ok {
			out = append(out, r)
		}
	}

	return out
}

// lookup resolves path against nested maps, returning nil if any element is
// missing.
func lookup(record Record, path []string) any {
	var v any = record

	for _, key := range path {
		switch m := v.(type) {
		case map[string]any:
			v = m[key]

		case map[any]any:
			v = m[key]

		default:
			return nil
		}
	}

	return v
}

// prepend adds the path-list items in prefix to the front of the path-list
// subject, removing duplicates.
func prepend(params ...any) (any, error) {
	subject, _ := params[0].(string)
	prefix, _ := params[1].(string)

	sep := string(os.PathListSeparator)

	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(sep),
		mung.WithPrefixItems(strings.Split(prefix, sep)...),
	).String(), nil
}

// includes reports whether the string or list haystack contains needle.
func includes(params ...any) (any, error) {
	switch h := params[0].(type) {
	case string:
		s, ok := params[1].(string)

		return ok && strings.Contains(h, s), nil

	case []any:
		return slices.ContainsFunc(h, func(v any) bool { return equal(v, params[1]) }), nil
	}

	return false, nil
}

// equal compares a and b, treating every numeric type as float64.
func equal(a, b any) bool {
	x, xok := toFloat(a)
	y, yok := toFloat(b)

	if xok && yok {
		return x == y
	}

	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}

	return 0, false
}

func suggest(name string, candidates []string) (string, bool) {
	m := fuzzy.Find(name, candidates)
	if len(m) == 0 {
		return "", false
	}

	return m[0].Str, true
}
