package repl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/yard/grammar"
	"github.com/ardnew/yard/lang/arith"
	"github.com/ardnew/yard/log"
	"github.com/ardnew/yard/span"
)

// Answer is the name bound to the value of the last evaluated expression.
const Answer = "ans"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Session evaluates expressions against a growing set of named bindings.
// A Session is not safe for concurrent use.
type Session struct {
	lang   *grammar.Language[arith.Node]
	params *grammar.Params[arith.Node]
	logger log.Logger
}

// NewSession returns a Session with a copy of params as its initial
// bindings.
func NewSession(
	lang *grammar.Language[arith.Node],
	params *grammar.Params[arith.Node],
	logger log.Logger,
) *Session {
	s := &Session{lang: lang, params: grammar.NewParams[arith.Node](), logger: logger}

	for name, node := range params.All() {
		s.params.Set(name, node)
	}

	return s
}

// Eval evaluates text and binds the result to [Answer].
func (s *Session) Eval(ctx context.Context, text string) (float64, error) {
	v, err := s.eval(ctx, span.NewSource("", text))
	if err != nil {
		return 0, err
	}

	s.params.Set(Answer, arith.Value(v))

	return v, nil
}

// Let evaluates text and binds the result to name.
func (s *Session) Let(ctx context.Context, name, text string) (float64, error) {
	if !identifier.MatchString(name) {
		return 0, fmt.Errorf("%w: %q", ErrBinding, name)
	}

	v, err := s.eval(ctx, span.NewSource(name, text))
	if err != nil {
		return 0, err
	}

	s.params.Set(name, arith.Value(v))

	s.logger.DebugContext(ctx, "bound", slog.String("name", name), slog.Float64("value", v))

	return v, nil
}

func (s *Session) eval(ctx context.Context, src *span.Source) (float64, error) {
	if s.lang == nil {
		return 0, ErrNoLanguage
	}

	n, err := s.lang.ParseSource(ctx, src, s.params)
	if err != nil {
		return 0, err
	}

	return arith.Evaluate(n)
}

// Names returns the bound names in binding order.
func (s *Session) Names() []string { return s.params.Names() }

// Binding returns the canonical form of the tree bound to name.
func (s *Session) Binding(name string) (string, bool) {
	n, ok := s.params.Get(name)
	if !ok {
		return "", false
	}

	return expression(n), true
}

// expression renders n as text that parses back to an equal tree. Computed
// numbers are written in positional notation, and negative ones as a
// subtraction from zero.
func expression(n arith.Node) string {
	num, ok := n.(*arith.Number)
	if !ok || num.Text != "" {
		return n.String()
	}

	lit := strconv.FormatFloat(math.Abs(num.Value), 'f', -1, 64)
	if num.Value < 0 {
		return "(0 - " + lit + ")"
	}

	return lit
}

// Dump renders the bindings as a YAML mapping of names to expressions.
func (s *Session) Dump() ([]byte, error) {
	var doc yaml.MapSlice

	for name, n := range s.params.All() {
		doc = append(doc, yaml.MapItem{Key: name, Value: expression(n)})
	}

	if len(doc) == 0 {
		return nil, nil
	}

	return yaml.Marshal(doc)
}

// Load replaces the bindings with those of a YAML mapping of names to
// expressions, as written by [Session.Dump]. Each expression may refer to the
// names before it. The bindings are unchanged if any entry fails.
func (s *Session) Load(ctx context.Context, data []byte) error {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	params := grammar.NewParams[arith.Node]()

	for _, item := range doc {
		name := fmt.Sprint(item.Key)
		if !identifier.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrBinding, name)
		}

		text := strings.TrimSpace(fmt.Sprint(item.Value))

		n, err := s.lang.ParseSource(ctx, span.NewSource(name, text), params)
		if err != nil {
			return err
		}

		params.Set(name, n)
	}

	s.params = params

	return nil
}
