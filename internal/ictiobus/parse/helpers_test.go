package parse

import (
	"fmt"

	"github.com/dekarrin/parsegen/internal/ictiobus/grammar"
	"github.com/dekarrin/parsegen/internal/ictiobus/lex"
)

// testTokenPatterns maps the token names used across this package's test
// grammars to the regex source that recognizes them. A real caller supplies
// these from wherever it keeps token definitions; grammar.Grammar itself
// only records names and ignore flags.
var testTokenPatterns = map[string]string{
	"NUM": `[0-9]+`,
}

// lexFromGrammar builds the Lexer a grammar's own token declarations
// describe, in declaration order, for use in tests.
func lexFromGrammar(g *grammar.Grammar) (*lex.Lexer, error) {
	patterns := make([]lex.Pattern, g.NumTokens())
	for i := 0; i < g.NumTokens(); i++ {
		name := g.TokenName(grammar.FirstTokenID + i)
		if name == "" {
			patterns[i] = lex.Pattern{Source: `[\x00-\xff]`}
			continue
		}
		src, ok := testTokenPatterns[name]
		if !ok {
			return nil, fmt.Errorf("no test pattern registered for token %q", name)
		}
		patterns[i] = lex.Pattern{Source: src}
	}
	return lex.New(patterns, grammar.FirstTokenID)
}
