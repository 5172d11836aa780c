package filter

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/yard/grammar"
)

var people = []Record{
	{
		"name":    "Alice",
		"age":     34,
		"role":    "admin",
		"tags":    []any{"beta", "ops"},
		"address": Record{"city": "Oslo"},
		"path":    "/usr/bin",
	},
	{"name": "Bob", "age": 27, "role": "dev", "tags": []any{"ops", 7}},
	{"name": "Carol", "age": 41, "role": "owner", "email": "carol@example.com"},
}

func newLang(tb testing.TB) *grammar.Language[Node] {
	tb.Helper()

	lang, err := New()
	if err != nil {
		tb.Fatalf("New: %v", err)
	}

	return lang
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i], _ = r["name"].(string)
	}

	return out
}

func TestPredicate_Select(t *testing.T) {
	lang := newLang(t)
	params := grammar.NewParams[Node]().
		Set("min", Value(30)).
		Set("who", Text("bob"))

	tests := []struct {
		query string
		want  []string
	}{
		{`age >= 30`, []string{"Alice", "Carol"}},
		{`age < 30`, []string{"Bob"}},
		{`age = 27`, []string{"Bob"}},
		{`age == 27`, []string{"Bob"}},
		{`role != "dev"`, []string{"Alice", "Carol"}},
		{`role = "admin" OR role = 'owner'`, []string{"Alice", "Carol"}},
		{`role IN ["admin", "dev"]`, []string{"Alice", "Bob"}},
		{`tags CONTAINS "beta"`, []string{"Alice"}},
		{`tags CONTAINS 7`, []string{"Bob"}},
		{`NOT tags CONTAINS "beta"`, []string{"Bob", "Carol"}},
		{`name CONTAINS "o"`, []string{"Bob", "Carol"}},
		{`email EXISTS`, []string{"Carol"}},
		{`NOT email EXISTS`, []string{"Alice", "Bob"}},
		{`address.city = "Oslo"`, []string{"Alice"}},
		{`lower(name) = $who`, []string{"Bob"}},
		{`upper(role) = 'DEV'`, []string{"Bob"}},
		{`len(name) > 3`, []string{"Alice", "Carol"}},
		{`age > $min AND role != "dev"`, []string{"Alice", "Carol"}},
		{`(age > 40 OR age < 30) and not role = "dev"`, []string{"Carol"}},
		{`path EXISTS AND prepend(path, "/opt/bin") CONTAINS "/usr/bin"`, []string{"Alice"}},
		{`true`, []string{"Alice", "Bob", "Carol"}},
		{`FALSE`, []string{}},
		{`nickname`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			n, err := lang.Parse(context.Background(), tt.query, params)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			p, err := Compile(n)
			if err != nil {
				t.Fatalf("Compile(%s): %v", Source(n), err)
			}

			got := names(p.Select(people, func(r Record, err error) {
				t.Errorf("record %v: %v", r["name"], err)
			}))

			if !slices.Equal(got, tt.want) {
				t.Errorf("Select = %v, want %v (source %s)", got, tt.want, p.Source())
			}
		})
	}
}

func TestParse_Canonical(t *testing.T) {
	lang := newLang(t)

	tests := []struct {
		query string
		want  string
	}{
		{`a = 1 OR b = 2 AND c = 3`, `((a = 1) OR ((b = 2) AND (c = 3)))`},
		{`a = 1 AND b = 2 OR c = 3`, `(((a = 1) AND (b = 2)) OR (c = 3))`},
		{`not a exists`, `(NOT (a EXISTS))`},
		{`NOT a = 1 AND b`, `((NOT (a = 1)) AND b)`},
		{`x in [1, 'a']`, `(x IN [1, "a"])`},
		{`a.b >= -2.5`, `(a.b >= -2.5)`},
		{`android = order`, `(android = order)`},
		{`upper(1) = "1"`, `(upper("1") = "1")`},
		{`'it\'s' = "say \"hi\""`, `("it's" = "say \"hi\"")`},
		{`x IN []`, `(x IN [])`},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			n, err := lang.Parse(context.Background(), tt.query, nil)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			if got := n.String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	lang := newLang(t)
	params := grammar.NewParams[Node]().Set("min", Value(30))

	tests := []struct {
		query string
		want  error
		text  string
	}{
		{`age >`, grammar.ErrExpectedOperand, ""},
		{`age 3`, grammar.ErrUnexpectedOperand, "3"},
		{`$nope = 1`, ErrUndefined, "$nope"},
		{`age IN 3`, ErrType, "age IN 3"},
		{`upper(true)`, grammar.ErrArgumentType, "true"},
		{`lower()`, grammar.ErrArgumentCount, ""},
		{`prepend("a")`, grammar.ErrArgumentCount, `"a"`},
		{`x IN [1, 2`, grammar.ErrUnmatchedBracket, ""},
		{`(a = 1]`, grammar.ErrUnmatchedBracket, ""},
		{`a = "unterminated`, grammar.ErrUnrecognizedInput, `"`},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := lang.Parse(context.Background(), tt.query, params)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			var ge *grammar.Error
			if !errors.As(err, &ge) {
				t.Fatalf("error %T is not a *grammar.Error", err)
			}

			if tt.text != "" && ge.Span().String() != tt.text {
				t.Errorf("span = %q, want %q", ge.Span().String(), tt.text)
			}
		})
	}
}

func TestParse_ParamSuggestion(t *testing.T) {
	lang := newLang(t)
	params := grammar.NewParams[Node]().Set("min", Value(30))

	_, err := lang.Parse(context.Background(), `age > $mn`, params)
	if err == nil || !strings.Contains(err.Error(), "did you mean $min?") {
		t.Errorf("error %v lacks suggestion", err)
	}
}

func TestCompile_Errors(t *testing.T) {
	lang := newLang(t)

	n, err := lang.Parse(context.Background(), `"text"`, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Compile(n); !errors.Is(err, ErrCompile) {
		t.Errorf("Compile(string) error = %v, want %v", err, ErrCompile)
	}
}

func TestPredicate_MatchNonBool(t *testing.T) {
	lang := newLang(t)

	n, err := lang.Parse(context.Background(), `age`, nil)
	if err != nil {
		t.Fatal(err)
	}

	p, err := Compile(n)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Match(people[0]); !errors.Is(err, ErrMatch) {
		t.Errorf("Match error = %v, want %v", err, ErrMatch)
	}

	var skipped int

	got := p.Select(people, func(Record, error) { skipped++ })
	if len(got) != 0 || skipped != len(people) {
		t.Errorf("Select kept %d, skipped %d", len(got), skipped)
	}
}

func TestCheck(t *testing.T) {
	lang := newLang(t)
	known := []string{"name", "age", "address"}

	tests := []struct {
		query   string
		unknown string
		suggest string
	}{
		{`name = "x" AND address.city = "Oslo"`, "", ""},
		{`nme = "x"`, "nme", "name"},
		{`age > 1 OR zzz EXISTS`, "zzz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			n, err := lang.Parse(context.Background(), tt.query, nil)
			if err != nil {
				t.Fatal(err)
			}

			err = Check(n, known)
			if tt.unknown == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				return
			}

			var ge *grammar.Error
			if !errors.As(err, &ge) || !errors.Is(err, ErrUnknownField) {
				t.Fatalf("error = %v, want %v", err, ErrUnknownField)
			}

			if ge.Span().String() != tt.unknown {
				t.Errorf("span = %q, want %q", ge.Span().String(), tt.unknown)
			}

			v, ok := ge.Attr("suggest")
			if got := v.String(); ok != (tt.suggest != "") || (ok && got != tt.suggest) {
				t.Errorf("suggest = %q (%v), want %q", got, ok, tt.suggest)
			}
		})
	}
}

func TestFields(t *testing.T) {
	lang := newLang(t)

	n, err := lang.Parse(context.Background(), `a = 1 OR a.b = 2 AND lower(c) IN [a, d]`, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := Fields(n), []string{"a", "a.b", "c", "d"}; !slices.Equal(got, want) {
		t.Errorf("Fields = %v, want %v", got, want)
	}
}

func TestIncludes(t *testing.T) {
	tests := []struct {
		haystack, needle any
		want             bool
	}{
		{"hello", "ell", true},
		{"hello", 1, false},
		{[]any{1, "a"}, 1.0, true},
		{[]any{uint64(3)}, 3.0, true},
		{[]any{Record{"k": 1}}, Record{"k": 1}, true},
		{[]any{"a"}, "b", false},
		{nil, "a", false},
	}

	for _, tt := range tests {
		got, err := includes(tt.haystack, tt.needle)
		if err != nil || got != tt.want {
			t.Errorf("includes(%v, %v) = %v, %v; want %v", tt.haystack, tt.needle, got, err, tt.want)
		}
	}
}
