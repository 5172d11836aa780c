package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func sourceNames(srcs []source) []string {
	names := make([]string, len(srcs))
	for i, src := range srcs {
		names[i] = src.name
	}

	return names
}

func TestOpenSources(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "a: 1\n")
	b := writeFile(t, dir, "b.yaml", "b: 2\n")

	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"single", []string{a}, []string{a}},
		{"distinct", []string{b, a}, []string{b, a}},
		{"duplicate", []string{a, a}, []string{a}},
		{"symlink", []string{a, link, b}, []string{a, b}},
		{"relative", []string{a, filepath.Join(dir, ".", "a.yaml")}, []string{a}},
		{"stdin_last", []string{stdinSource, a, stdinSource}, []string{a, stdinSource}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcs, err := openSources(tt.paths)
			if err != nil {
				t.Fatalf("openSources() error = %v", err)
			}
			defer closeSources(srcs)

			if got := sourceNames(srcs); !slices.Equal(got, tt.want) {
				t.Errorf("openSources() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpenSources_Contents(t *testing.T) {
	path := writeFile(t, t.TempDir(), "r.yaml", "name: x\n")

	srcs, err := openSources([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	defer closeSources(srcs)

	data, err := io.ReadAll(srcs[0])
	if err != nil || string(data) != "name: x\n" {
		t.Errorf("ReadAll() = (%q, %v), want (%q, nil)", data, err, "name: x\n")
	}
}

func TestOpenSources_Missing(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "")

	srcs, err := openSources([]string{a, filepath.Join(dir, "missing.yaml")})
	if !errors.Is(err, ErrReadSource) {
		t.Errorf("openSources() error = %v, want %v", err, ErrReadSource)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("openSources() error = %v, want it to wrap %v", err, os.ErrNotExist)
	}

	if srcs != nil {
		t.Errorf("openSources() = %v on error, want nil", sourceNames(srcs))
	}
}

func TestOutput(t *testing.T) {
	ctx := context.Background()

	if got := outputFrom(ctx); got != os.Stdout {
		t.Errorf("outputFrom(empty) = %v, want os.Stdout", got)
	}

	var buf bytes.Buffer
	if got := outputFrom(WithOutput(ctx, &buf)); got != &buf {
		t.Errorf("outputFrom() = %v, want the buffer", got)
	}

	if ktx := kongContextFrom(ctx); ktx != nil {
		t.Errorf("kongContextFrom(empty) = %v, want nil", ktx)
	}
}
