package grammar

//go:generate go tool stringer --linecomment --type Kind,Position --output kind_string.go

// Kind identifies which variant of [Definition] a value is.
type Kind int

const (
	KindPlain     Kind = iota // plain
	KindOperand               // operand
	KindOperator              // operator
	KindOpen                  // open
	KindCall                  // call
	KindClose                 // close
	KindDelimiter             // delimiter
)

// Position is the side of an operator on which an argument appears.
type Position int

const (
	Left  Position = iota // left
	Right                 // right
)
