// Package span provides zero-copy views into source text.
//
// A [Source] owns the text of one input and an index of its line starts.
// A [Span] is a (source, offset, length) triple referring into a Source; it
// never copies the text it views. Spans compare equal by content with
// [Span.Equal] and by position with [Span.Same]. Positional predicates such
// as [Span.IsRightOf] are only meaningful between spans of the same Source
// and return [ErrSourceMismatch] otherwise.
//
// Spans are used to locate tokens and operands during parsing and to render
// exact error markers with [Span.Snippet]:
//
//	src := span.NewSource("input", "2 + * 4")
//	fmt.Print(src.Slice(4, 5).Snippet())
//	// Output:
//	//   1 | 2 + * 4
//	//           ^
package span
