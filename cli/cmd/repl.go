package cmd

import (
	"context"
	"path/filepath"

	"github.com/ardnew/yard/cli/cmd/repl"
	"github.com/ardnew/yard/log"
)

// Repl starts an interactive arithmetic session.
type Repl struct {
	Define  []string `help:"Bind NAME to the value of EXPR (repeatable)." placeholder:"NAME=EXPR" short:"D"`
	History bool     `default:"true" help:"Persist input history in the cache directory." negatable:""`
	Editor  string   `help:"Command used by the edit command (default $$EDITOR, then vi)."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	lang, err := arithLanguage()
	if err != nil {
		return err
	}

	params, err := define(ctx, lang, r.Define)
	if err != nil {
		return err
	}

	var history string

	if ktx := kongContextFrom(ctx); r.History && ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok {
			history = filepath.Join(dir, repl.HistoryFile)
		}
	}

	return repl.Run(ctx, repl.Config{
		Lang:    lang,
		Params:  params,
		History: history,
		Editor:  r.Editor,
		Logger:  log.Default(),
	})
}
