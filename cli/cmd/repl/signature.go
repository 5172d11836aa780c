package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/yard/lang/arith"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	currentParamStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// functionCall describes the innermost call whose argument list contains
// the cursor.
type functionCall struct {
	name     string
	argIndex int // 0-based
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed "name(" before cursor and
// the index of the argument being typed.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	depth, argIndex, open := 0, 0, -1

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++

		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}

		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	name, _, _ := wordBounds(strings.TrimRight(input[:open], " \t"), open)
	if name == "" {
		return functionCall{}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// renderSignatureHint renders the signature of the named builtin with the
// argument at index emphasized. It returns "" for unknown functions.
func renderSignatureHint(name string, index int) string {
	args, ok := arith.Signature(name)
	if !ok {
		return ""
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, arg := range args {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == index {
			b.WriteString(currentParamStyle.Render(arg))
		} else {
			b.WriteString(signatureStyle.Render(arg))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
