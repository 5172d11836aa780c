package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/yard/grammar"
)

// Report writes the source snippet of a parse error to w, with the marker
// line highlighted when w is a terminal. Errors without a source location
// are not reported.
func Report(w io.Writer, err error) {
	var gerr *grammar.Error
	if !errors.As(err, &gerr) {
		return
	}

	text := strings.TrimSuffix(gerr.Snippet(), "\n")
	if text == "" {
		return
	}

	r := lipgloss.NewRenderer(w)
	head := r.NewStyle().Bold(true)
	mark := r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" && strings.Trim(line, " ^") == "" {
			lines[i] = mark.Render(line)
		}
	}

	fmt.Fprintln(w, head.Render(gerr.Error()))
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}
