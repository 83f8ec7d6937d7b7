// Package lex composes a list of regex patterns into a single NFA with many
// independent accept states, and simulates it with maximal munch to turn a
// byte buffer into a stream of tokens.
package lex

import (
	"fmt"

	"github.com/dekarrin/parsegen/internal/ictiobus/regex"
)

// Pattern is one entry in a Lexer's ordered pattern list. Patterns are
// matched in declaration order for tie-breaking: at equal match length, the
// lowest-indexed pattern that matched wins (spec's "pattern order dominates
// at equal match length").
type Pattern struct {
	// Source is the pattern text, compiled per the regex package's syntax.
	Source string
	// Newline marks this pattern as one whose matches should advance the
	// line counter and reset the column, rather than advance the column.
	Newline bool
}

// Lexer is an immutable, compiled set of patterns. FirstTokenID is added to
// a matching pattern's index to produce the token id returned by lexing,
// matching the flat symbol numbering where declared tokens start at C; it is
// normally grammar.FirstTokenID.
type Lexer struct {
	prog         *regex.Prog
	newline      []bool
	firstTokenID int
	numPatterns  int
}

// New compiles patterns into a combined Lexer. firstTokenID is the id that
// pattern 0 should map to (every other pattern i maps to firstTokenID+i).
func New(patterns []Pattern, firstTokenID int) (*Lexer, error) {
	b := regex.NewBuilder()

	starts := make([]int, len(patterns))
	newline := make([]bool, len(patterns))
	for i, pat := range patterns {
		start, end, err := regex.CompileFragment(b, pat.Source)
		if err != nil {
			return nil, fmt.Errorf("pattern %d (%q): %w", i, pat.Source, err)
		}
		regex.FinishFragment(b, end, i)
		starts[i] = start
		newline[i] = pat.Newline
	}

	combinedStart := wireBranches(b, starts)

	return &Lexer{
		prog:         regex.ToProg(b, combinedStart),
		newline:      newline,
		firstTokenID: firstTokenID,
		numPatterns:  len(patterns),
	}, nil
}

// NumPatterns returns the number of patterns this Lexer was built from.
func (lx *Lexer) NumPatterns() int { return lx.numPatterns }

// FirstTokenID returns the id pattern 0 maps to.
func (lx *Lexer) FirstTokenID() int { return lx.firstTokenID }

// wireBranches builds a chain of states, one per pattern, each with an
// epsilon edge to its pattern's start and an epsilon edge to the next
// branch state in the chain. Traversing eps1-before-eps2 (as the regex
// simulator's closure does) visits patterns in declaration order, which is
// what gives the lexer its pattern-index tie-breaking.
func wireBranches(b *regex.Builder, starts []int) int {
	if len(starts) == 0 {
		return b.NewState()
	}

	branch := make([]int, len(starts))
	for i := len(starts) - 1; i >= 0; i-- {
		s := b.NewState()
		b.SetEpsilon1(s, starts[i])
		if i+1 < len(starts) {
			b.SetEpsilon2(s, branch[i+1])
		}
		branch[i] = s
	}
	return branch[0]
}
