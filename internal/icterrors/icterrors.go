// Package icterrors defines the error kinds raised by the regex compiler and
// the grammar loader. Both are fatal at build time (spec §7): callers learn
// about them via error, not via a Status as the per-parse syntax errors are.
package icterrors

import "fmt"

// regexSyntaxError is raised by the pattern compiler. It carries the
// zero-based byte offset in the pattern string at which the fault was
// detected.
type regexSyntaxError struct {
	msg    string
	offset int
}

func (e *regexSyntaxError) Error() string {
	return e.msg
}

// Offset returns the zero-based byte offset into the pattern at which the
// parser detected the problem.
func (e *regexSyntaxError) Offset() int {
	return e.offset
}

// RegexSyntax returns a new regex syntax error at the given byte offset.
func RegexSyntax(offset int, format string, a ...interface{}) error {
	return &regexSyntaxError{
		msg:    fmt.Sprintf("regex syntax error at byte %d: %s", offset, fmt.Sprintf(format, a...)),
		offset: offset,
	}
}

// ConfigErrorKind distinguishes the varieties of grammar configuration error
// named in spec §7.
type ConfigErrorKind int

const (
	// ConfigUnexpectedToken means the grammar lexer produced a token other
	// than the one the grammar parser required next.
	ConfigUnexpectedToken ConfigErrorKind = iota
	// ConfigDuplicateLHS means a nonterminal was declared as a rule's lhs
	// more than once, or a token name appears twice in the token block.
	ConfigDuplicateLHS
	// ConfigUnknownTerminal means a rhs symbol looked like an uppercase
	// terminal but was never declared in the token block.
	ConfigUnknownTerminal
	// ConfigUndefinedNonTerminal means a placeholder symbol was never
	// resolved to a real nonterminal by the end of loading.
	ConfigUndefinedNonTerminal
	// ConfigMalformedToken means the grammar lexer met a character that none
	// of its token patterns recognize. A missing ':'/';'/'}' is reported as
	// ConfigUnexpectedToken instead.
	ConfigMalformedToken
	// ConfigConflictLL1 means the LL(1) table constructor found a second
	// write to the same (nonterminal, lookahead) cell, or a second
	// epsilon-production for the same nonterminal.
	ConfigConflictLL1
	// ConfigConflictReduceReduce means the LR table constructor found two
	// reducible items in the same state (spec §9(b)).
	ConfigConflictReduceReduce
)

// grammarConfigError is raised by the grammar loader or a parser table
// constructor. It carries a line and column (1-based, from the grammar
// lexer; a table constructor has no source position and reports 0:0) and a
// Kind describing what went wrong.
type grammarConfigError struct {
	msg  string
	line int
	col  int
	kind ConfigErrorKind
}

func (e *grammarConfigError) Error() string {
	return e.msg
}

// Line returns the 1-based line number the error was detected on.
func (e *grammarConfigError) Line() int {
	return e.line
}

// Column returns the 1-based column the error was detected on.
func (e *grammarConfigError) Column() int {
	return e.col
}

// Kind returns which of the named grammar-configuration faults this is.
func (e *grammarConfigError) Kind() ConfigErrorKind {
	return e.kind
}

// GrammarConfig returns a new grammar configuration error of the given kind,
// detected at line/col.
func GrammarConfig(kind ConfigErrorKind, line, col int, format string, a ...interface{}) error {
	return &grammarConfigError{
		msg:  fmt.Sprintf("grammar config error at %d:%d: %s", line, col, fmt.Sprintf(format, a...)),
		line: line,
		col:  col,
		kind: kind,
	}
}

// GrammarConfigKind returns the Kind of err if it is a grammar configuration
// error produced by this package, and ok=false otherwise.
func GrammarConfigKind(err error) (kind ConfigErrorKind, ok bool) {
	gce, ok := err.(*grammarConfigError)
	if !ok {
		return 0, false
	}
	return gce.kind, true
}
