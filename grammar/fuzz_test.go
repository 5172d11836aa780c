package grammar

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/ardnew/yard/span"
)

// FuzzTokenize checks that every token lies within the source, in order,
// and that any error is located within the source.
func FuzzTokenize(f *testing.F) {
	f.Add("2+3*4")
	f.Add("max(1, 2)")
	f.Add("  [1,2,,3] ")
	f.Add("é$%")
	f.Add("")

	lang := newCalc(f, nil)

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		end := 0

		for tok, err := range lang.Tokens(input) {
			if err != nil {
				var perr *Error
				if !errors.As(err, &perr) {
					t.Fatalf("error %T is not *Error", err)
				}

				if sp := perr.Span(); sp.Start() < end || sp.End() > len(input) || sp.IsEmpty() {
					t.Fatalf("error span [%d,%d) invalid for %q", sp.Start(), sp.End(), input)
				}

				return
			}

			if tok.Span.Start() < end || tok.Span.IsEmpty() {
				t.Fatalf("token %q at %d out of order", tok.Span, tok.Span.Start())
			}

			end = tok.Span.End()
		}
	})
}

// FuzzParse checks that parsing never panics and that every failure is a
// located *Error.
func FuzzParse(f *testing.F) {
	f.Add("2+3*4")
	f.Add("(2+3)*4")
	f.Add("max(")
	f.Add("1,2")
	f.Add("f(1)")
	f.Add("~~3!")
	f.Add("[1,[2,3]]")
	f.Add(")(")

	lang := newCalc(f, nil)

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		_, err := lang.Parse(context.Background(), input, nil)
		if err == nil {
			return
		}

		var perr *Error
		if !errors.As(err, &perr) {
			t.Fatalf("Parse(%q) error %T is not *Error", input, err)
		}

		for _, sp := range perr.Spans() {
			if sp.Start() < 0 || sp.End() > len(input) {
				t.Fatalf("Parse(%q) error span [%d,%d) out of range", input, sp.Start(), sp.End())
			}
		}
	})
}

func BenchmarkParse(b *testing.B) {
	lang := newCalc(b, nil)
	params := NewParams[int]().Set("x", 7)
	src := span.NewSource("", "max(x * (3 + 4), [1, 2, 3] * 2) - ~(x + 1)!")

	b.ReportAllocs()

	for b.Loop() {
		if _, err := lang.ParseSource(context.Background(), src, params); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	lang := newCalc(b, nil)
	text := "max(x * (3 + 4), [1, 2, 3] * 2) - ~(x + 1)!"

	b.ReportAllocs()

	for b.Loop() {
		for _, err := range lang.Tokens(text) {
			if err != nil {
				b.Fatal(err)
			}
		}
	}
}
