package grammar

import (
	"context"
	"iter"
	"log/slog"

	"github.com/ardnew/yard/log"
	"github.com/ardnew/yard/span"
)

// Language parses text into nodes of type N according to an ordered list of
// definitions.
//
// A Language is immutable once constructed. Any number of goroutines may
// parse with the same Language concurrently.
type Language[N any] struct {
	config

	tok    *Tokenizer[N]
	byName map[string]Definition[N]
}

// New returns a Language recognizing the given definitions.
// Definitions listed earlier take priority when patterns overlap.
func New[N any](defs []Definition[N], opts ...Option) (*Language[N], error) {
	tok, err := NewTokenizer(defs...)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Definition[N], len(defs))
	for _, def := range defs {
		byName[def.Name()] = def
	}

	return &Language[N]{
		config: apply(config{}, opts...),
		tok:    tok,
		byName: byName,
	}, nil
}

// Name returns the name used for sources created by [Language.Parse].
func (l *Language[N]) Name() string { return l.name }

// Parse parses text into a single node.
// The params are visible to every builder invoked during the parse and may
// be nil.
func (l *Language[N]) Parse(ctx context.Context, text string, params *Params[N]) (N, error) {
	return l.ParseSource(ctx, span.NewSource(l.name, text), params)
}

// ParseSource parses src into a single node.
// Every error returned is an [*Error] located within src.
func (l *Language[N]) ParseSource(
	ctx context.Context,
	src *span.Source,
	params *Params[N],
) (N, error) {
	var zero N

	logger := l.logger.With(slog.String("source", src.Name()))
	s := newState(ctx, logger, src, params)

	for tok, err := range l.tok.Tokenize(src) {
		if err != nil {
			logger.DebugContext(ctx, "tokenize failed", slog.Any("error", err))

			return zero, err
		}

		logger.TraceContext(ctx, "apply", slog.Any("token", tok))

		if err := s.apply(tok); err != nil {
			logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

			return zero, err
		}
	}

	node, err := s.drain()
	if err != nil {
		logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return zero, err
	}

	return node, nil
}

// Tokens returns the token sequence of text without parsing it.
func (l *Language[N]) Tokens(text string) iter.Seq2[Token[N], error] {
	return l.tok.Tokenize(span.NewSource(l.name, text))
}

// Definitions iterates the language's definitions in priority order.
func (l *Language[N]) Definitions() iter.Seq[Definition[N]] {
	return l.tok.Definitions()
}

// Lookup returns the definition with the given name.
func (l *Language[N]) Lookup(name string) (Definition[N], bool) {
	def, ok := l.byName[name]

	return def, ok
}

// Option configures a [Language].
type Option func(config) config

type config struct {
	logger log.Logger
	name   string
}

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// WithLogger sets the logger receiving trace output of each parse.
// The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}

// WithName sets the source name reported in error locations.
func WithName(name string) Option {
	return func(c config) config {
		c.name = name

		return c
	}
}
