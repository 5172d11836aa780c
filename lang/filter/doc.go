// Package filter defines a record filter-query language on top of
// [grammar].
//
// A filter is a boolean expression over the fields of a record:
//
//	status = "active" AND (age >= $min OR role IN ["admin", "owner"])
//	NOT tags CONTAINS "beta" AND email EXISTS
//	lower(name) = 'alice'
//
// Fields are dotted paths into nested maps. Literals are single- or
// double-quoted strings, numbers, and true or false. Parameters are written
// $name and bound in the [grammar.Params] of each parse.
//
// [Compile] turns a tree into a [Predicate] backed by
// [github.com/expr-lang/expr]. [Check] reports fields absent from a known
// set, suggesting the closest known name.
package filter
