package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/yard/lang/arith"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "let", "edit", "clear", "quit"}

// isWordRune reports whether r may appear in an identifier.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the identifier under the cursor and its byte offsets in
// input. The word is empty when the cursor does not touch an identifier.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completion candidates of the given mode: the
// builtin functions and bound names in eval mode, or the control commands.
func candidates(mode inputMode, names []string) []string {
	if mode == modeCtrl {
		return ctrlCommands
	}

	return slices.Concat(arith.Functions(), names)
}

// isFunction reports whether name is a builtin function.
func isFunction(name string) bool {
	_, ok := arith.Signature(name)

	return ok
}

// computeMatches ranks the candidates against the word under the cursor.
// An empty word or number matches nothing, so that the hint line stays
// visible. Only the first word of a control command completes to a command
// name; the rest are expressions.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())
	if word == "" || unicode.IsDigit(rune(word[0])) {
		return nil, start, end
	}

	mode := m.mode
	if mode == modeCtrl && strings.TrimSpace(input[:start]) != "" {
		mode = modeEval
	}

	return fuzzy.Find(word, candidates(mode, m.session.Names())), start, end
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate is highlighted while cycling.
func renderCandidateBar(matches fuzzy.Matches, selected int, cycling bool, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	limit := width - lipgloss.Width(sep+"...")

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, cycling && i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && i < len(matches)-1 && used+w > limit {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// emphasized. Functions are suffixed with "()".
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, emphasis := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, emphasis = selectedStyle, selectedStyle.Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(emphasis.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if isFunction(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
