// Package parse builds and drives the two table-driven parser engines: an
// LL(1) predictive parser and an LR(0)/SLR shift-reduce parser, both over
// the flat grammar representation the grammar package produces.
package parse

// Status is the outcome of one parse/reduce step.
type Status int

const (
	// SyntaxError means the input does not belong to the grammar's
	// language; the session's error accessors describe the failure.
	SyntaxError Status = iota
	// Good means a reduction is pending; the host should inspect the
	// current lhs/production/rhs values and call Reduce.
	Good
	// Done means the input was fully consumed and reduced to the start
	// symbol.
	Done
)

func (s Status) String() string {
	switch s {
	case Good:
		return "GOOD"
	case Done:
		return "DONE"
	case SyntaxError:
		return "SYNTAXERROR"
	default:
		return "UNKNOWN"
	}
}

// Session is the driver surface LL1Session and LRSession both implement:
// advance a parse one reduction at a time, and inspect the pending
// reduction or the failure that stopped it. Host code that wants to be
// agnostic to which engine built it should depend on this interface rather
// than either concrete session type.
type Session interface {
	// Parse resets the session over a new input buffer and advances to the
	// first pending reduction, completion, or failure.
	Parse(input []byte) Status
	// Reduce completes the pending reduction with value, then resumes
	// toward the next reduction, completion, or failure.
	Reduce(value interface{}, owned bool) Status

	// LHSNum returns the 0-based nonterminal index of the pending
	// reduction.
	LHSNum() int
	// ProdNum returns the 0-based production index, within LHSNum's
	// nonterminal, of the pending reduction.
	ProdNum() int
	// RHSValue returns the i-th rhs value (0-indexed, in grammar order) of
	// the pending reduction.
	RHSValue(i int) interface{}

	// CurrentToken returns the token id the lexer is positioned on.
	CurrentToken() int
	// Line returns the 1-indexed line of the current token.
	Line() int
	// Column returns the 1-indexed column of the current token.
	Column() int
	// ExpectedTokens returns, after a SyntaxError, the set of token ids
	// that would have been accepted in its place.
	ExpectedTokens() []int
}

// valueCell is one entry of a parse-value stack: a host-supplied value and
// whether the engine is responsible for it. Go's garbage collector makes
// the owned bit unnecessary for memory safety, but it is still tracked and
// exposed so the API shape matches hosts that may wrap non-memory
// resources (file handles, native buffers) in parse values.
type valueCell struct {
	value interface{}
	owned bool
}

var (
	_ Session = (*LL1Session)(nil)
	_ Session = (*LRSession)(nil)
)
