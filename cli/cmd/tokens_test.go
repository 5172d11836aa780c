package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/yard/grammar"
)

func TestTokensRun(t *testing.T) {
	tests := []struct {
		name string
		tok  Tokens
		want []string
	}{
		{
			"arith",
			Tokens{Expr: "max(1, x)", Lang: langArith},
			[]string{"AT", "NAME", "KIND", "TEXT", "max", "call", "number", `"1"`, "comma", "ident", "rparen", "close"},
		},
		{
			"default_lang",
			Tokens{Expr: "2 ^ 3"},
			[]string{"pow", `"^"`, `"3"`},
		},
		{
			"filter",
			Tokens{Expr: `age >= 30`, Lang: langFilter},
			[]string{"operand", "operator", `"30"`, `">="`},
		},
		{
			// Tokens are listed even where the expression would not parse.
			"unbalanced",
			Tokens{Expr: "1 + + )", Lang: langArith},
			[]string{"add", "rparen"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if err := tt.tok.Run(WithOutput(context.Background(), &buf)); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("Run() output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestTokensRun_Errors(t *testing.T) {
	var buf bytes.Buffer

	tok := Tokens{Expr: "1 # 2", Lang: langArith}
	if err := tok.Run(WithOutput(context.Background(), &buf)); !errors.Is(err, grammar.ErrUnrecognizedInput) {
		t.Errorf("Run() error = %v, want %v", err, grammar.ErrUnrecognizedInput)
	}

	tok = Tokens{Expr: "1", Lang: "lisp"}
	if err := tok.Run(WithOutput(context.Background(), &buf)); !errors.Is(err, ErrLanguage) {
		t.Errorf("Run() error = %v, want %v", err, ErrLanguage)
	}
}
