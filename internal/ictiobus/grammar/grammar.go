// Package grammar parses a YACC-like grammar-configuration string into the
// flat integer representation productions are stored in: a single buffer of
// right-hand sides (G), a rule-start index, and a token ignore map.
package grammar

import (
	"fmt"
	"strings"
)

// FirstTokenID is C: the first id reserved for a declared token. Ids below
// it, starting at 1, are literal byte characters; 0 is end-of-input.
const FirstTokenID = 128

// Grammar is an immutable, loaded grammar: productions, a token table, and
// the ignore flags the parser driver consults to discard whitespace-like
// tokens before they reach the parse stack.
type Grammar struct {
	// G is the flat production buffer: each production is a length header k
	// followed by k rhs symbol ids, productions of one nonterminal laid out
	// contiguously.
	G []int

	// RuleStart[i] is the offset into G of nonterminal i's first
	// production; RuleStart[len(RuleStart)-1] is the trailing sentinel,
	// equal to len(G).
	RuleStart []int

	// Ignore[i] reports whether matches of token FirstTokenID+i should be
	// discarded by the parser driver rather than shifted.
	Ignore []bool

	// TokenNames[i] is the declared name of token FirstTokenID+i, or "" for
	// an anonymous token declared with '*' in the token block (it still
	// occupies a slot in Ignore and in the pattern list the lexer is built
	// from, but no grammar rule can reference it by name).
	TokenNames []string

	// NonterminalNames[i] is the declared name of nonterminal
	// firstNonterminalID+i, in declaration order; index 0 is the start
	// symbol.
	NonterminalNames []string

	firstNonterminalID int
}

// FromParts reconstructs a Grammar from previously-loaded components,
// such as ones restored from a compiled-grammar cache. firstNonterminalID
// is not among them: it is always FirstTokenID+len(tokenNames), exactly as
// Load computes it, so callers never need to store or supply it themselves.
func FromParts(g, ruleStart []int, ignore []bool, tokenNames, nonterminalNames []string) *Grammar {
	return &Grammar{
		G:                  g,
		RuleStart:          ruleStart,
		Ignore:             ignore,
		TokenNames:         tokenNames,
		NonterminalNames:   nonterminalNames,
		firstNonterminalID: FirstTokenID + len(tokenNames),
	}
}

// NumTokens returns the number of declared token slots, named and anonymous.
func (g *Grammar) NumTokens() int { return len(g.TokenNames) }

// NumNonterminals returns the number of declared nonterminals.
func (g *Grammar) NumNonterminals() int { return len(g.NonterminalNames) }

// FirstNonterminalID returns T: the first id reserved for a nonterminal.
func (g *Grammar) FirstNonterminalID() int { return g.firstNonterminalID }

// LastSymbolID returns R: one past the last nonterminal id in use.
func (g *Grammar) LastSymbolID() int { return g.firstNonterminalID + len(g.NonterminalNames) }

// StartSymbol returns the id of the first rule's lhs, the grammar's start
// symbol.
func (g *Grammar) StartSymbol() int { return g.firstNonterminalID }

// IsTerminal reports whether symbol is a literal byte or a declared token,
// as opposed to a nonterminal.
func (g *Grammar) IsTerminal(symbol int) bool { return symbol < g.firstNonterminalID }

// RuleIndex converts a nonterminal symbol id to its 0-based declaration
// index (into RuleStart and NonterminalNames).
func (g *Grammar) RuleIndex(symbol int) int { return symbol - g.firstNonterminalID }

// SymbolID converts a nonterminal declaration index back to its symbol id.
func (g *Grammar) SymbolID(ruleIndex int) int { return ruleIndex + g.firstNonterminalID }

// RuleRange returns the half-open range of positions in G occupied by
// ruleIndex's productions.
func (g *Grammar) RuleRange(ruleIndex int) (start, end int) {
	return g.RuleStart[ruleIndex], g.RuleStart[ruleIndex+1]
}

// NextProduction returns the position of the production immediately
// following the one starting at pos.
func (g *Grammar) NextProduction(pos int) int {
	return pos + 1 + g.G[pos]
}

// ProdLen returns the rhs symbol count of the production at pos.
func (g *Grammar) ProdLen(pos int) int { return g.G[pos] }

// ProdRHS returns the rhs symbol ids of the production at pos, in order.
func (g *Grammar) ProdRHS(pos int) []int { return g.G[pos+1 : pos+1+g.G[pos]] }

// ProdNum returns the 0-based index of the production at pos among
// ruleIndex's productions.
func (g *Grammar) ProdNum(ruleIndex, pos int) int {
	n := 0
	for p := g.RuleStart[ruleIndex]; p < pos; p = g.NextProduction(p) {
		n++
	}
	return n
}

// LHSForProd returns the rule index owning the production at pos.
func (g *Grammar) LHSForProd(pos int) int {
	for i := 0; i < len(g.RuleStart)-1; i++ {
		if pos < g.RuleStart[i+1] {
			return i
		}
	}
	return len(g.RuleStart) - 2
}

// TokenName returns the declared name of tokenID, or "" if it was declared
// anonymously with '*'.
func (g *Grammar) TokenName(tokenID int) string { return g.TokenNames[tokenID-FirstTokenID] }

// NonterminalName returns the declared name of the nonterminal at ruleIndex.
func (g *Grammar) NonterminalName(ruleIndex int) string { return g.NonterminalNames[ruleIndex] }

// SymbolName renders any symbol id (literal byte, token, or nonterminal) as
// a human-readable name, for diagnostics and String.
func (g *Grammar) SymbolName(symbol int) string {
	switch {
	case symbol == 0:
		return "$"
	case symbol < FirstTokenID:
		return fmt.Sprintf("'%c'", byte(symbol))
	case symbol < g.firstNonterminalID:
		if name := g.TokenName(symbol); name != "" {
			return name
		}
		return fmt.Sprintf("<token %d>", symbol)
	default:
		return g.NonterminalName(g.RuleIndex(symbol))
	}
}

// String renders the grammar's productions in a form close to the surface
// syntax it was loaded from, one production per line.
func (g *Grammar) String() string {
	var sb strings.Builder
	for i := 0; i < len(g.RuleStart)-1; i++ {
		for p := g.RuleStart[i]; p < g.RuleStart[i+1]; p = g.NextProduction(p) {
			sb.WriteString(g.NonterminalName(i))
			sb.WriteString(" : ")
			rhs := g.ProdRHS(p)
			for j, sym := range rhs {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(g.SymbolName(sym))
			}
			sb.WriteString(" ;\n")
		}
	}
	return sb.String()
}
