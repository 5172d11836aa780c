package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/yard/log"
)

type initTestCLI struct {
	Level  string `default:"info"`
	Format log.Format
	Depth  int
	Tags   []string
	Empty  string
	Secret string `hidden:""`
}

func newInitContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initTestCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ctx := newInitContext(t, confPath, "--level=debug", "--depth=3", "--tags=a,b", "--format=text")

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				content, _ := os.ReadFile(confPath)
				if string(content) != "existing: true\n" {
					t.Errorf("Init.Run() modified the existing file: %q", content)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not YAML: %v\n%s", err, content)
			}

			want := map[string]any{
				"level":  "debug",
				"format": "text",
				"depth":  uint64(3),
				"tags":   []any{"a", "b"},
			}

			if len(got) != len(want) {
				t.Errorf("config = %v, want %v", got, want)
			}

			for key, value := range want {
				if yamlString(t, got[key]) != yamlString(t, value) {
					t.Errorf("config[%q] = %v, want %v", key, got[key], value)
				}
			}
		})
	}
}

func TestConfigValues_Order(t *testing.T) {
	ctx := newInitContext(t, filepath.Join(t.TempDir(), "config.yaml"))

	values := configValues(kongContextFrom(ctx))

	var keys []string
	for _, item := range values {
		keys = append(keys, item.Key.(string))
	}

	// help and hidden flags are skipped, as are empty values.
	want := []string{"level", "format", "depth"}
	if len(keys) != len(want) {
		t.Fatalf("configValues() keys = %v, want %v", keys, want)
	}

	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("configValues() keys = %v, want %v", keys, want)
		}
	}
}

func yamlString(t *testing.T, v any) string {
	t.Helper()

	out, err := yaml.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}

	return string(out)
}
