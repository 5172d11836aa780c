package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for editing the session bindings
// as YAML in an external editor. The file is reloaded after the editor
// exits; on error the user is asked whether to edit again, and declining
// leaves the bindings unchanged.
type editCommand struct {
	session *Session
	ctxFunc func() context.Context
	editor  string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	changed bool
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-load-retry loop. An emptied file cancels the edit.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := c.session.Dump()
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "yard-repl-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	input := bufio.NewScanner(c.stdin)

	for {
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return err
		}

		if err := c.runEditor(ctx, path); err != nil {
			return err
		}

		content, err = os.ReadFile(path)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(content)) == 0 {
			return nil
		}

		loadErr := c.session.Load(ctx, content)

		c.session.logger.TraceContext(ctx, "editor load attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", loadErr == nil),
		)

		if loadErr == nil {
			c.changed = true

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n%s", errorStyle.Render("error: "+loadErr.Error()), snippet(loadErr))
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		if !input.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(input.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor opens path in the configured editor, $EDITOR, or vi.
func (c *editCommand) runEditor(ctx context.Context, path string) error {
	editor := c.editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	args := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	return cmd.Run()
}
