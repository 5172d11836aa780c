package cmd

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ardnew/yard/grammar"
	"github.com/ardnew/yard/lang/arith"
	"github.com/ardnew/yard/lang/filter"
	"github.com/ardnew/yard/log"
	"github.com/ardnew/yard/span"
)

// Names accepted by the --lang flag.
const (
	langArith  = "arith"
	langFilter = "filter"
)

func arithLanguage() (*grammar.Language[arith.Node], error) {
	return arith.New(grammar.WithLogger(log.With(slog.String("lang", langArith))))
}

func filterLanguage() (*grammar.Language[filter.Node], error) {
	return filter.New(grammar.WithLogger(log.With(slog.String("lang", langFilter))))
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// define parses each NAME=EXPR of defs with lang and binds the result to
// NAME. Each expression may refer to the names defined before it.
func define[N any](
	ctx context.Context,
	lang *grammar.Language[N],
	defs []string,
) (*grammar.Params[N], error) {
	params := grammar.NewParams[N]()

	for _, def := range defs {
		name, text, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)

		if !ok || !identifier.MatchString(name) {
			return nil, ErrDefine.With(slog.String("define", def))
		}

		node, err := lang.ParseSource(ctx, span.NewSource(name, text), params)
		if err != nil {
			return nil, ErrDefine.With(slog.String("name", name)).Wrap(err)
		}

		log.DebugContext(ctx, "defined parameter", slog.String("name", name))

		params.Set(name, node)
	}

	return params, nil
}

// parse binds defs and parses text with lang.
func parse[N any](
	ctx context.Context,
	lang *grammar.Language[N],
	text string,
	defs []string,
) (N, error) {
	params, err := define(ctx, lang, defs)
	if err != nil {
		var zero N

		return zero, err
	}

	return lang.Parse(ctx, text, params)
}
