package cli

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/alecthomas/kong"
)

func flag(name string) *kong.Flag {
	return &kong.Flag{Value: &kong.Value{Name: name}}
}

func TestResolve(t *testing.T) {
	const doc = `
log_level: debug
log:
  format: text
  pretty: false
pprof-dir: /tmp/prof
depth: 3
ratio: 0.5
tags: [a, 2, true]
`

	r, err := resolve(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-format", "text"},
		{"log-pretty", false},
		{"pprof-dir", "/tmp/prof"},
		{"depth", "3"},
		{"ratio", "0.5"},
		{"tags", []any{"a", "2", true}},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := r.Resolve(nil, nil, flag(tt.flag))
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}

			if list, ok := tt.want.([]any); ok {
				if gotList, ok := got.([]any); !ok || !slices.Equal(gotList, list) {
					t.Errorf("Resolve() = %#v, want %#v", got, tt.want)
				}

				return
			}

			if got != tt.want {
				t.Errorf("Resolve() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestResolve_Empty(t *testing.T) {
	for _, doc := range []string{"", "  \n\n"} {
		r, err := resolve(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("resolve(%q) error = %v", doc, err)
		}

		if got, _ := r.Resolve(nil, nil, flag("log-level")); got != nil {
			t.Errorf("Resolve() = %v, want nil", got)
		}

		if err := r.Validate(nil); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	if _, err := resolve(strings.NewReader("log-level: [unclosed")); err == nil {
		t.Error("resolve() accepted malformed YAML")
	}

	readErr := errors.New("boom")
	if _, err := resolve(iotest.ErrReader(readErr)); !errors.Is(err, readErr) {
		t.Errorf("resolve() error = %v, want %v", err, readErr)
	}
}

func TestResolve_Kong(t *testing.T) {
	var cli struct {
		Log   logConfig `embed:"" prefix:"log-"`
		Depth int       `default:"1"`
	}

	r, err := resolve(strings.NewReader("log:\n  time_layout: kitchen\ndepth: 7\n"))
	if err != nil {
		t.Fatal(err)
	}

	parser, err := kong.New(&cli, kong.Resolvers(r), cli.Log.vars())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--depth=9"}); err != nil {
		t.Fatal(err)
	}

	if cli.Log.TimeLayout != "kitchen" {
		t.Errorf("TimeLayout = %q, want %q", cli.Log.TimeLayout, "kitchen")
	}

	if cli.Depth != 9 {
		t.Errorf("Depth = %d, want flag value 9", cli.Depth)
	}
}
