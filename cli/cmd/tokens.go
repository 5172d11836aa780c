package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ardnew/yard/grammar"
)

// Tokens prints the tokens of an expression without parsing it.
type Tokens struct {
	Expr string `arg:""                         help:"Expression to tokenize."        name:"expr"`
	Lang string `default:"arith" enum:"arith,filter" help:"Expression language (${enum})." short:"l"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	switch t.Lang {
	case langArith, "":
		lang, err := arithLanguage()
		if err != nil {
			return err
		}

		return printTokens(ctx, t.Expr, lang)

	case langFilter:
		lang, err := filterLanguage()
		if err != nil {
			return err
		}

		return printTokens(ctx, t.Expr, lang)
	}

	return ErrLanguage.With(slog.String("lang", t.Lang))
}

func printTokens[N any](ctx context.Context, text string, lang *grammar.Language[N]) error {
	w := outputFrom(ctx)
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).PaddingRight(2)
	cell := r.NewStyle().PaddingRight(2)

	tab := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers("AT", "NAME", "KIND", "TEXT").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}

			return cell
		})

	for tok, err := range lang.Tokens(text) {
		if err != nil {
			return err
		}

		tab.Row(
			tok.Span.Location(),
			tok.Def.Name(),
			tok.Def.Kind().String(),
			strconv.Quote(tok.Span.String()),
		)
	}

	_, err := fmt.Fprintln(w, tab.String())

	return err
}
