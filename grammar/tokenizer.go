package grammar

import (
	"iter"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/yard/span"
)

// Token is one match of a [Definition] in the source text.
type Token[N any] struct {
	Def  Definition[N]
	Span span.Span
}

// LogValue implements [slog.LogValuer].
func (t Token[N]) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("def", t.Def.Name()),
		slog.String("kind", t.Def.Kind().String()),
		slog.Any("span", t.Span),
	)
}

// Tokenizer splits source text into tokens using the patterns of an ordered
// list of definitions. When several patterns match at the same position, the
// earliest definition wins.
//
// A Tokenizer is immutable and safe for concurrent use.
type Tokenizer[N any] struct {
	defs  []Definition[N]
	group []int // capture group index of each definition
	re    *regexp.Regexp
}

// NewTokenizer compiles the patterns of defs into a single matcher.
// The Tokenizer keeps its own copy of defs.
func NewTokenizer[N any](defs ...Definition[N]) (*Tokenizer[N], error) {
	defs = slices.Clone(defs)

	if err := validate(defs); err != nil {
		return nil, err
	}

	var (
		alt   = make([]string, len(defs))
		group = make([]int, len(defs))
		next  = 1
	)

	for i, def := range defs {
		re, err := regexp.Compile(def.Pattern())
		if err != nil {
			return nil, ErrInvalidPattern.
				At(span.NewSource("pattern", def.Pattern()).Span()).
				With(slog.String("name", def.Name())).
				Wrap(err)
		}

		alt[i] = "(?P<" + def.Name() + ">" + def.Pattern() + ")"
		group[i] = next
		next += 1 + re.NumSubexp()
	}

	re, err := regexp.Compile(strings.Join(alt, "|"))
	if err != nil {
		return nil, ErrInvalidPattern.Wrap(err)
	}

	return &Tokenizer[N]{defs: defs, group: group, re: re}, nil
}

// Tokenize returns the sequence of tokens in src.
//
// The sequence yields each non-ignored token in source order. If some input
// matches no definition, or a definition matches the empty string, the
// sequence yields a single error located at the offending input and stops.
// Each call starts a fresh scan.
func (t *Tokenizer[N]) Tokenize(src *span.Source) iter.Seq2[Token[N], error] {
	return func(yield func(Token[N], error) bool) {
		text := src.Text()

		for pos := 0; pos < len(text); {
			loc := t.re.FindStringSubmatchIndex(text[pos:])

			switch {
			case loc == nil:
				yield(Token[N]{}, ErrUnrecognizedInput.At(src.Slice(pos, len(text))))

				return

			case loc[0] > 0:
				yield(Token[N]{}, ErrUnrecognizedInput.At(src.Slice(pos, pos+loc[0])))

				return

			case loc[1] == 0:
				_, n := utf8.DecodeRuneInString(text[pos:])
				yield(Token[N]{}, ErrUnrecognizedInput.At(src.Slice(pos, pos+n)))

				return
			}

			def := t.matched(loc)
			tok := Token[N]{Def: def, Span: src.Slice(pos, pos+loc[1])}
			pos += loc[1]

			if def.Ignored() {
				continue
			}

			if !yield(tok, nil) {
				return
			}
		}
	}
}

// matched returns the definition whose capture group participated in loc.
func (t *Tokenizer[N]) matched(loc []int) Definition[N] {
	for i, g := range t.group {
		if loc[2*g] >= 0 {
			return t.defs[i]
		}
	}

	// Unreachable: a non-nil match always sets one top-level group.
	return t.defs[len(t.defs)-1]
}

// Definitions returns the tokenizer's definitions in priority order.
func (t *Tokenizer[N]) Definitions() iter.Seq[Definition[N]] {
	return func(yield func(Definition[N]) bool) {
		for _, def := range t.defs {
			if !yield(def) {
				return
			}
		}
	}
}
