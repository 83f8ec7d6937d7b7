// Package parsegen builds table-driven LL(1) or LR(0)/SLR parsers from a
// YACC-like grammar configuration and a caller-supplied set of token
// patterns, and drives them over input a reduction at a time.
package parsegen

import (
	"fmt"

	"github.com/dekarrin/parsegen/internal/ictiobus/cache"
	"github.com/dekarrin/parsegen/internal/ictiobus/grammar"
	"github.com/dekarrin/parsegen/internal/ictiobus/lex"
	"github.com/dekarrin/parsegen/internal/ictiobus/parse"
)

// Pattern is one token's regex source and whether matching it should
// advance the line counter, in the same declaration order as the grammar
// configuration's token block.
type Pattern = lex.Pattern

// Session drives one parse, a reduction at a time. LL(1) and LR(0)/SLR
// sessions are interchangeable behind this interface.
type Session = parse.Session

// Status is the outcome of one Session.Parse or Session.Reduce call.
type Status = parse.Status

const (
	SyntaxError = parse.SyntaxError
	Good        = parse.Good
	Done        = parse.Done
)

// EngineKind selects which parsing algorithm Build compiles the grammar
// for.
type EngineKind int

const (
	// LL1 builds a predictive top-down parser; rejects ambiguous and
	// left-recursive grammars at Build time.
	LL1 EngineKind = iota
	// LR0 builds a canonical LR(0)/SLR shift-reduce parser; rejects
	// grammars with a reduce/reduce conflict at Build time.
	LR0
)

// Parser is a compiled, immutable grammar plus its token lexer, ready to
// start sessions from. Build it once per grammar and reuse it across many
// parses.
type Parser struct {
	g          *grammar.Grammar
	newSession func() Session
}

// NewSession starts a fresh, reusable driver session.
func (p *Parser) NewSession() Session {
	return p.newSession()
}

// Describe renders the compiled grammar's productions, one per line, in a
// form close to the surface syntax it was loaded from.
func (p *Parser) Describe() string {
	return p.g.String()
}

// NumTokens returns the number of declared tokens the compiled grammar's
// lexer recognizes.
func (p *Parser) NumTokens() int {
	return p.g.NumTokens()
}

// NumNonterminals returns the number of nonterminals the compiled grammar
// declares.
func (p *Parser) NumNonterminals() int {
	return p.g.NumNonterminals()
}

// TokenName returns the declared name of a token id, or the id itself
// printed as a string if it is out of the declared token range (EOI, for
// instance, has no surface name).
func (p *Parser) TokenName(tokenID int) string {
	if tokenID < grammar.FirstTokenID || tokenID >= p.g.FirstNonterminalID() {
		return fmt.Sprintf("%d", tokenID)
	}
	return p.g.TokenName(tokenID)
}

// Build loads grammarConfig, compiles tokenPatterns into a lexer over its
// declared tokens (in declaration order), and constructs the requested
// engine's parse table. Token ids line up automatically: tokenPatterns[i]
// must recognize the i-th token the configuration declares.
func Build(kind EngineKind, grammarConfig string, tokenPatterns []Pattern) (*Parser, error) {
	g, err := grammar.Load(grammarConfig)
	if err != nil {
		return nil, err
	}
	return buildFrom(kind, g, tokenPatterns)
}

// BuildCached behaves like Build, but loads grammarConfig through a cache
// directory keyed by its content hash: a cache hit skips re-tokenizing and
// re-parsing the configuration text entirely. A cache miss falls back to
// Load and then populates the cache for next time.
func BuildCached(kind EngineKind, grammarConfig string, tokenPatterns []Pattern, cacheDir string) (*Parser, error) {
	dir := cache.NewDir(cacheDir)

	g, hit, err := dir.Load(grammarConfig)
	if err != nil {
		return nil, err
	}
	if !hit {
		g, err = grammar.Load(grammarConfig)
		if err != nil {
			return nil, err
		}
		if err := dir.Store(grammarConfig, g); err != nil {
			return nil, err
		}
	}

	return buildFrom(kind, g, tokenPatterns)
}

func buildFrom(kind EngineKind, g *grammar.Grammar, tokenPatterns []Pattern) (*Parser, error) {
	lx, err := lex.New(tokenPatterns, grammar.FirstTokenID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case LL1:
		p, err := parse.NewLL1(g, lx)
		if err != nil {
			return nil, err
		}
		return &Parser{g: g, newSession: func() Session { return p.NewSession() }}, nil
	case LR0:
		p, err := parse.NewLR(g, lx)
		if err != nil {
			return nil, err
		}
		return &Parser{g: g, newSession: func() Session { return p.NewSession() }}, nil
	default:
		return nil, fmt.Errorf("unknown engine kind %d", kind)
	}
}
