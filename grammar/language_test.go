package grammar

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/yard/log"
	"github.com/ardnew/yard/span"
)

func TestLanguage_Lookup(t *testing.T) {
	lang := newCalc(t, nil)

	def, ok := lang.Lookup("max")
	if !ok {
		t.Fatal("Lookup(max) not found")
	}

	call, ok := def.(*Call[int])
	if !ok {
		t.Fatalf("Lookup(max) = %T, want *Call[int]", def)
	}

	if args, checked := call.Args(); !checked || len(args) != 2 {
		t.Errorf("max args = %v, %v", args, checked)
	}

	if _, ok := lang.Lookup("nope"); ok {
		t.Error("Lookup(nope) found a definition")
	}

	add, _ := lang.Lookup("add")
	if op := add.(*Operator[int]); op.Precedence() != 2 {
		t.Errorf("add precedence = %d, want 2", op.Precedence())
	}

	rparen, _ := lang.Lookup("rparen")
	if c := rparen.(*Close[int]); !c.Closes(def) || c.Closes(add) {
		t.Error("rparen closes the wrong definitions")
	}
}

func TestLanguage_Definitions(t *testing.T) {
	lang := newCalc(t, nil)

	var names []string
	for def := range lang.Definitions() {
		names = append(names, def.Name())
	}

	if len(names) == 0 || names[0] != "space" || names[len(names)-1] != "comma" {
		t.Errorf("Definitions() out of order: %v", names)
	}

	kinds := map[Kind]int{}
	for def := range lang.Definitions() {
		kinds[def.Kind()]++
	}

	want := map[Kind]int{
		KindPlain:     1,
		KindOperand:   2,
		KindOperator:  6,
		KindOpen:      2,
		KindCall:      3,
		KindClose:     2,
		KindDelimiter: 1,
	}

	for k, n := range want {
		if kinds[k] != n {
			t.Errorf("%d definitions of kind %s, want %d", kinds[k], k, n)
		}
	}
}

func TestLanguage_DefinitionsCopied(t *testing.T) {
	num := NewOperand("num", `[0-9]+`, func(sp span.Span, _ *Params[int]) (int, error) {
		return len(sp.String()), nil
	})
	other := NewOperand("other", `[0-9]+`, func(span.Span, *Params[int]) (int, error) {
		return -1, nil
	})

	defs := []Definition[int]{num}

	lang, err := New(defs)
	if err != nil {
		t.Fatal(err)
	}

	defs[0] = other

	got, err := lang.Parse(context.Background(), "7", nil)
	if err != nil || got != 1 {
		t.Errorf("Parse(7) = %d, %v; want 1, <nil>", got, err)
	}

	if def, _ := lang.Lookup("num"); def != Definition[int](num) {
		t.Errorf("Lookup(num) = %v, want the original definition", def)
	}

	for def := range lang.Definitions() {
		if def.Name() != "num" {
			t.Errorf("Definitions() yielded %q after the caller's slice changed", def.Name())
		}
	}
}

func TestLanguage_Tokens(t *testing.T) {
	lang := newCalc(t, nil)

	var got []string

	for tok, err := range lang.Tokens("max(1, x) * 2") {
		if err != nil {
			t.Fatal(err)
		}

		got = append(got, tok.Def.Kind().String()+":"+tok.Span.String())
	}

	want := []string{
		"call:max(", "operand:1", "delimiter:,", "operand:x",
		"close:)", "operator:*", "operand:2",
	}

	if !slices.Equal(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}

func TestLanguage_WithName(t *testing.T) {
	lang := newCalc(t, nil, WithName("calc"))

	_, err := lang.Parse(context.Background(), "1 +\n  ?", nil)
	if !errors.Is(err, ErrUnrecognizedInput) {
		t.Fatalf("error = %v", err)
	}

	if got, want := err.Error(), "unrecognized input at calc:2:3"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLanguage_WithLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithPretty(false),
	)

	lang := newCalc(t, nil, WithLogger(logger))

	if _, err := lang.Parse(context.Background(), "1 + 2", nil); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, msg := range []string{`"msg":"apply"`, `"msg":"execute"`, `"operator":"add"`} {
		if !strings.Contains(out, msg) {
			t.Errorf("trace output missing %s:\n%s", msg, out)
		}
	}
}

func TestLanguage_ZeroLoggerIsSilent(t *testing.T) {
	lang := newCalc(t, nil, WithLogger(log.Logger{}))

	if got, err := lang.Parse(context.Background(), "2+2", nil); err != nil || got != 4 {
		t.Errorf("Parse = %d, %v", got, err)
	}
}
