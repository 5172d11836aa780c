package span

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrSourceMismatch is returned when a positional comparison is attempted
// between spans that do not view the same [Source].
var ErrSourceMismatch = errors.New("spans refer to different sources")

// ErrNoSpans is returned by [Union] when called without any spans.
var ErrNoSpans = errors.New("no spans to join")

// Source is the shared, read-only text viewed by a [Span].
type Source struct {
	name  string
	text  string
	lines []int // byte offset of each line start
}

// NewSource returns a Source holding text.
// The name is only used when rendering locations.
func NewSource(name, text string) *Source {
	lines := make([]int, 1, strings.Count(text, "\n")+1)

	for i := range len(text) {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}

	return &Source{name: name, text: text, lines: lines}
}

// Name returns the name given to [NewSource].
func (s *Source) Name() string { return s.name }

// Text returns the complete source text.
func (s *Source) Text() string { return s.text }

// Len returns the length of the source text in bytes.
func (s *Source) Len() int { return len(s.text) }

// Span returns a span covering the entire source.
func (s *Source) Span() Span { return Span{src: s, start: 0, length: len(s.text)} }

// EndSpan returns the zero-length span positioned at end of input.
func (s *Source) EndSpan() Span { return Span{src: s, start: len(s.text)} }

// Slice returns the span covering bytes [start, end) of the source.
// Offsets are clamped into the valid range.
func (s *Source) Slice(start, end int) Span {
	start = min(max(start, 0), len(s.text))
	end = min(max(end, start), len(s.text))

	return Span{src: s, start: start, length: end - start}
}

// LineCol returns the 1-based line and rune column of byte offset off.
func (s *Source) LineCol(off int) (line, col int) {
	off = min(max(off, 0), len(s.text))

	// Index of the last line starting at or before off.
	idx, found := slices.BinarySearch(s.lines, off)
	if !found {
		idx--
	}

	return idx + 1, utf8.RuneCountInString(s.text[s.lines[idx]:off]) + 1
}

// Line returns the text of the given 1-based line without its terminator.
func (s *Source) Line(n int) string {
	if n < 1 || n > len(s.lines) {
		return ""
	}

	start := s.lines[n-1]
	end := len(s.text)

	if n < len(s.lines) {
		end = s.lines[n] - 1
	}

	return strings.TrimSuffix(s.text[start:end], "\r")
}

// Span is an immutable view of a region of a [Source].
// The zero Span views nothing and has no source.
type Span struct {
	src    *Source
	start  int
	length int
}

// Source returns the source viewed by s.
func (s Span) Source() *Source { return s.src }

// Start returns the byte offset of the first byte in s.
func (s Span) Start() int { return s.start }

// End returns the byte offset one past the last byte in s.
func (s Span) End() int { return s.start + s.length }

// Len returns the number of bytes in s.
func (s Span) Len() int { return s.length }

// IsEmpty reports whether s covers no bytes.
func (s Span) IsEmpty() bool { return s.length == 0 }

// IsZero reports whether s is the zero Span.
func (s Span) IsZero() bool { return s.src == nil }

// String returns the text covered by s.
func (s Span) String() string {
	if s.src == nil {
		return ""
	}

	return s.src.text[s.start : s.start+s.length]
}

// Equal reports whether s and o cover identical text, regardless of where
// that text is located.
func (s Span) Equal(o Span) bool { return s.String() == o.String() }

// Same reports whether s and o cover the same region of the same source.
func (s Span) Same(o Span) bool { return s == o }

// Sub returns the span covering bytes [start, end) relative to s.
func (s Span) Sub(start, end int) Span {
	start = min(max(start, 0), s.length)
	end = min(max(end, start), s.length)

	return Span{src: s.src, start: s.start + start, length: end - start}
}

// IsRightOf reports whether s begins at or after the end of o.
func (s Span) IsRightOf(o Span) (bool, error) {
	if s.src != o.src {
		return false, ErrSourceMismatch
	}

	return s.start >= o.End(), nil
}

// IsLeftOf reports whether s ends at or before the start of o.
func (s Span) IsLeftOf(o Span) (bool, error) {
	if s.src != o.src {
		return false, ErrSourceMismatch
	}

	return s.End() <= o.start, nil
}

// IsBetween reports whether s lies right of left and left of right.
func (s Span) IsBetween(left, right Span) (bool, error) {
	r, err := s.IsRightOf(left)
	if err != nil || !r {
		return false, err
	}

	return s.IsLeftOf(right)
}

// Union returns the smallest span encompassing every given span.
func Union(spans ...Span) (Span, error) {
	if len(spans) == 0 {
		return Span{}, ErrNoSpans
	}

	lo, hi := spans[0].start, spans[0].End()

	for _, sp := range spans[1:] {
		if sp.src != spans[0].src {
			return Span{}, ErrSourceMismatch
		}

		lo = min(lo, sp.start)
		hi = max(hi, sp.End())
	}

	return Span{src: spans[0].src, start: lo, length: hi - lo}, nil
}

// Between returns the span covering the bytes from the end of left up to the
// start of right. The result is empty if the spans touch or overlap.
func Between(left, right Span) (Span, error) {
	if left.src != right.src {
		return Span{}, ErrSourceMismatch
	}

	return left.src.Slice(left.End(), max(left.End(), right.start)), nil
}

// Split divides s at every occurrence of any separator rune.
// Separators are excluded from the result, so n separators always yield n+1
// spans, some of which may be empty.
func (s Span) Split(seps ...rune) []Span {
	if len(seps) == 0 {
		return []Span{s}
	}

	var (
		text  = s.String()
		parts = make([]Span, 0, 4)
		last  = 0
	)

	for i, r := range text {
		if slices.Contains(seps, r) {
			parts = append(parts, s.Sub(last, i))
			last = i + utf8.RuneLen(r)
		}
	}

	return append(parts, s.Sub(last, len(text)))
}

// Trim returns s without leading and trailing white space.
func (s Span) Trim() Span {
	text := s.String()
	head := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	tail := len(strings.TrimRightFunc(text, unicode.IsSpace))

	return s.Sub(head, max(head, tail))
}

// LineCol returns the 1-based line and column of the start of s.
func (s Span) LineCol() (line, col int) {
	if s.src == nil {
		return 0, 0
	}

	return s.src.LineCol(s.start)
}

// Location formats the start of s as "name:line:col", omitting the name if
// the source has none.
func (s Span) Location() string {
	line, col := s.LineCol()
	loc := strconv.Itoa(line) + ":" + strconv.Itoa(col)

	if s.src != nil && s.src.name != "" {
		return s.src.name + ":" + loc
	}

	return loc
}

// Snippet renders the source line containing the start of s followed by a
// marker line underlining the covered text.
//
//	1 | 2 + * 4
//	        ^
func (s Span) Snippet() string {
	if s.src == nil {
		return ""
	}

	line, col := s.LineCol()
	text := s.src.Line(line)
	num := strconv.Itoa(line)

	// Underline at most to the end of the first line.
	width := utf8.RuneCountInString(s.String())
	if rest := utf8.RuneCountInString(text) - col + 1; width > rest {
		width = rest
	}

	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(text)
	b.WriteByte('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	b.WriteString(strings.Repeat(" ", len(num)+5+col-1))
	b.WriteString(strings.Repeat("^", max(width, 1)))
	b.WriteByte('\n')

	return b.String()
}

// LogValue implements [slog.LogValuer].
func (s Span) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("at", s.Location()),
		slog.Int("offset", s.start),
		slog.Int("length", s.length),
		slog.String("text", s.String()),
	)
}
