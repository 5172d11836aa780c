package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/yard/span"
)

func noop(span.Span, *Params[int]) (int, error) { return 0, nil }

func TestNewTokenizer_Validation(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition[int]
		want *Error
	}{
		{
			name: "duplicate name",
			defs: []Definition[int]{
				NewPlain[int]("ws", ` `, true),
				NewPlain[int]("ws", `\t`, true),
			},
			want: ErrDuplicateDefinitionName,
		},
		{
			name: "name with hyphen",
			defs: []Definition[int]{NewPlain[int]("white-space", ` `, true)},
			want: ErrInvalidDefinitionName,
		},
		{
			name: "empty name",
			defs: []Definition[int]{NewPlain[int]("", ` `, true)},
			want: ErrInvalidDefinitionName,
		},
		{
			name: "nil definition",
			defs: []Definition[int]{nil},
			want: ErrInvalidDefinition,
		},
		{
			name: "nil builder",
			defs: []Definition[int]{NewOperand[int]("num", `\d+`, nil)},
			want: ErrInvalidDefinition,
		},
		{
			name: "bad pattern",
			defs: []Definition[int]{NewOperand[int]("num", `(\d+`, noop)},
			want: ErrInvalidPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenizer(tt.defs...)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewTokenizer error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewTokenizer_NameErrorSpan(t *testing.T) {
	_, err := NewTokenizer[int](
		NewOperand[int]("num", `\d+`, noop),
		NewOperand[int]("num", `\w+`, noop),
	)

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *Error", err)
	}

	if got := perr.Span().String(); got != "num" {
		t.Errorf("error span = %q, want the offending name", got)
	}
}

// collect drains a token sequence into "name:text" pairs.
func collect(tk *Tokenizer[int], text string) ([]string, error) {
	var out []string

	for tok, err := range tk.Tokenize(span.NewSource("", text)) {
		if err != nil {
			return out, err
		}

		out = append(out, tok.Def.Name()+":"+tok.Span.String())
	}

	return out, nil
}

func TestTokenize(t *testing.T) {
	tk, err := NewTokenizer[int](
		NewPlain[int]("ws", `\s+`, true),
		NewPlain[int]("kw", `if`, false),
		NewOperand[int]("ident", `[a-z]+`, noop),
		// Capture groups inside a pattern must not shift later definitions.
		NewOperand[int]("hex", `0(x)([0-9a-f]+)`, noop),
		NewOperand[int]("num", `\d+`, noop),
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"if x", []string{"kw:if", "ident:x"}},
		{"iffy", []string{"kw:if", "ident:fy"}},
		{"0xff 12", []string{"hex:0xff", "num:12"}},
		{"a\n\tb", []string{"ident:a", "ident:b"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := collect(tk, tt.input)
			if err != nil {
				t.Fatal(err)
			}

			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("tokens = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenize_Unrecognized(t *testing.T) {
	tk, err := NewTokenizer[int](
		NewPlain[int]("ws", ` +`, true),
		NewOperand[int]("num", `\d+`, noop),
		NewOperand[int]("opt", `a*`, noop),
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		input string
		gap   string
		start int
		seen  int // tokens yielded before the error
	}{
		{"1 ?? 2", "?", 2, 1}, // zero-width match of opt
		{"1 2 #", "#", 4, 2},
		{"é", "é", 0, 0},
		{"12 b", "b", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := collect(tk, tt.input)
			if !errors.Is(err, ErrUnrecognizedInput) {
				t.Fatalf("error = %v, want unrecognized input", err)
			}

			var perr *Error

			errors.As(err, &perr)

			if sp := perr.Span(); sp.String() != tt.gap || sp.Start() != tt.start {
				t.Errorf("gap = %q at %d, want %q at %d", sp.String(), sp.Start(), tt.gap, tt.start)
			}

			if len(got) != tt.seen {
				t.Errorf("yielded %d tokens before error, want %d", len(got), tt.seen)
			}
		})
	}
}

func TestTokenize_GapSpan(t *testing.T) {
	tk, err := NewTokenizer[int](
		NewPlain[int]("ws", ` +`, true),
		NewOperand[int]("num", `\d+`, noop),
	)
	if err != nil {
		t.Fatal(err)
	}

	for input, want := range map[string]string{
		"1 ?? 2": "??",
		"1 2 #!": "#!",
		"x":      "x",
	} {
		_, err := collect(tk, input)

		var perr *Error
		if !errors.As(err, &perr) || !errors.Is(err, ErrUnrecognizedInput) {
			t.Fatalf("%q: error = %v, want unrecognized input", input, err)
		}

		if got := perr.Span().String(); got != want {
			t.Errorf("%q: gap = %q, want %q", input, got, want)
		}
	}
}

func TestTokenize_StopEarly(t *testing.T) {
	tk, err := NewTokenizer[int](
		NewPlain[int]("ws", ` `, true),
		NewOperand[int]("num", `\d`, noop),
	)
	if err != nil {
		t.Fatal(err)
	}

	n := 0

	for range tk.Tokenize(span.NewSource("", "1 2 3 4")) {
		n++
		if n == 2 {
			break
		}
	}

	if n != 2 {
		t.Errorf("iterated %d tokens, want 2", n)
	}
}

func TestTokenize_Coverage(t *testing.T) {
	tk, err := NewTokenizer[int](
		NewPlain[int]("ws", `\s+`, true),
		NewOperand[int]("word", `\w+`, noop),
		NewPlain[int]("punct", `[[:punct:]]`, false),
	)
	if err != nil {
		t.Fatal(err)
	}

	text := "Hello, world! (x+y) = z_1;\n"
	src := span.NewSource("", text)
	end := 0

	for tok, err := range tk.Tokenize(src) {
		if err != nil {
			t.Fatal(err)
		}

		if tok.Span.Start() < end {
			t.Fatalf("token %q overlaps previous token", tok.Span)
		}

		// Anything skipped must have been consumed by an ignored definition.
		if skipped := text[end:tok.Span.Start()]; strings.TrimSpace(skipped) != "" {
			t.Errorf("input %q was skipped", skipped)
		}

		end = tok.Span.End()
	}

	if strings.TrimSpace(text[end:]) != "" {
		t.Errorf("trailing input %q was skipped", text[end:])
	}
}
