// Package arith defines a small arithmetic language on top of [grammar].
//
// Expressions are parsed into a tree of [Node] values, which can be printed
// in canonical form, marshaled to JSON or YAML, or compiled with
// [github.com/expr-lang/expr] and evaluated:
//
//	lang, _ := arith.New()
//	params := grammar.NewParams[arith.Node]().Set("rate", arith.Value(0.07))
//	n, _ := lang.Parse(ctx, "round(1200 * rate)", params)
//	v, _ := arith.Evaluate(n) // 84
//
// All arithmetic is performed in float64. Identifiers must be bound in the
// parameters of the parse; an unbound identifier fails with [ErrUndefined]
// and suggests the closest bound name.
package arith
