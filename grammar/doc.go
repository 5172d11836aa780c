// Package grammar implements a table-driven shunting-yard parser that is
// generic over the node type it produces.
//
// A language is an ordered list of definitions. Each definition pairs a
// name with a regular expression and one of a closed set of behaviors:
//
//   - [Plain] tokens are structural or ignored (white space, comments).
//   - [Operand] tokens build a node by themselves.
//   - [Operator] tokens consume operands to their left and right.
//   - [Open], [Call], [Close], and [Delimiter] tokens delimit groups,
//     function calls, and list literals.
//
// [New] compiles the definitions into a [Language]. [Language.Parse]
// tokenizes its input and feeds each token to a two-stack machine: completed
// operands are kept in source order, and pending operators are kept in
// discovery order. Operators with a lower precedence value run first, and an
// operator taking a left operand first runs every pending operator of equal
// or lower value. After the last token, pending operators run in LIFO order
// and exactly one operand must remain.
//
// The engine never inspects nodes. All semantics live in the builder
// callbacks supplied with each definition, which receive the nodes being
// combined, the caller's named [Params], and the source spans of every
// token and operand involved.
//
// # Errors
//
// Every failure aborts the parse and is returned as an [*Error] derived from
// one of the sentinel values such as [ErrExpectedOperand] or
// [ErrUnmatchedBracket]. Use [errors.Is] to classify it and [Error.Snippet]
// to render the offending input:
//
//	_, err := lang.Parse(ctx, "2 + * 4", nil)
//	// err: expected operand at 1:4
//	//   1 | 2 + * 4
//	//          ^
//
// # Concurrency
//
// Definitions and languages are immutable once constructed. A [Language] may
// be shared by any number of goroutines; each parse owns its own state.
package grammar
