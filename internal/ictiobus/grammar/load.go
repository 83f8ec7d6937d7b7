package grammar

import (
	"fmt"

	"github.com/dekarrin/parsegen/internal/icterrors"
	"github.com/dekarrin/parsegen/internal/ictiobus/lex"
)

// Token ids produced by configLexer, the fixed lexer used to tokenize
// grammar-configuration strings themselves (distinct from any Lexer a
// loaded Grammar's own tokens go on to build). Id 0 (lex.EOITokenID) is
// end-of-input.
const (
	gtokNewline = 1
	gtokSpaces  = 2
	gtokNTRML   = 3
	gtokTRML    = 4
	gtokLBRACE  = 5
	gtokRBRACE  = 6
	gtokCHR     = 7
	gtokCOLON   = 8
	gtokPIPE    = 9
	gtokSCOLON  = 10
	gtokSTAR    = 11
)

// configPatterns mirror the fixed regex list a grammar-configuration
// tokenizer is built from. '|' and a bare '*' are both operators at the top
// level of this engine's own pattern syntax, so literal pipe is expressed as
// a one-element character class; literal '*' needs no such trick, since a
// postfix operator can never appear as the first atom of a pattern. The
// newline and blank patterns hold the literal bytes, since the pattern
// syntax has no escape for them.
var configPatterns = []lex.Pattern{
	{Source: "\n", Newline: true},
	{Source: "[ \t]+"},
	{Source: `[a-z]+`},
	{Source: `[A-Z]+`},
	{Source: `{`},
	{Source: `}`},
	{Source: `'.'`},
	{Source: `:`},
	{Source: `[|]`},
	{Source: `;`},
	{Source: `*`},
}

var configLexer = mustBuildConfigLexer()

func mustBuildConfigLexer() *lex.Lexer {
	lx, err := lex.New(configPatterns, 1)
	if err != nil {
		panic(fmt.Sprintf("grammar config pattern set failed to compile: %v", err))
	}
	return lx
}

// loader holds the mutable state of one grammar-configuration parse.
type loader struct {
	sess *lex.Session

	id     int
	lexeme []byte
	line   int
	col    int

	// symbols maps a declared or referenced name to its id: non-negative
	// for a resolved terminal or nonterminal, negative for a nonterminal
	// referenced on some rhs before its own rule has been parsed.
	symbols         map[string]int
	nextPlaceholder int

	tokenNames []string
	ignore     []bool

	g                []int
	ruleStart        []int
	nonterminalNames []string

	// ruleNum is the id the rule currently being parsed will receive.
	ruleNum int
}

// Load parses a grammar-configuration string (an optional `{ ... }` token
// block followed by `lhs : rhs | rhs ;` rules) into a Grammar, or returns a
// grammar configuration error.
func Load(config string) (*Grammar, error) {
	l := &loader{
		sess:            configLexer.NewSession([]byte(config)),
		symbols:         make(map[string]int),
		nextPlaceholder: -1,
	}
	l.advance()

	if err := l.parseTokens(); err != nil {
		return nil, err
	}

	firstNonterminalID := FirstTokenID + len(l.tokenNames)
	l.ruleNum = firstNonterminalID

	for l.id != lex.EOITokenID {
		if err := l.parseRule(); err != nil {
			return nil, err
		}
		l.advance()
	}

	if l.ruleNum == firstNonterminalID {
		return nil, l.err(icterrors.ConfigUnexpectedToken, "grammar declares no rules")
	}

	for name, id := range l.symbols {
		if id < 0 {
			return nil, l.err(icterrors.ConfigUndefinedNonTerminal, "undefined nonterminal %q", name)
		}
	}

	l.ruleStart = append(l.ruleStart, len(l.g))

	return &Grammar{
		G:                  l.g,
		RuleStart:          l.ruleStart,
		Ignore:             l.ignore,
		TokenNames:         l.tokenNames,
		NonterminalNames:   l.nonterminalNames,
		firstNonterminalID: firstNonterminalID,
	}, nil
}

// advance loads the next significant token, silently skipping newlines and
// runs of spaces and tabs.
func (l *loader) advance() {
	for {
		id, lexeme, line, col := l.sess.Next()
		if id == gtokNewline || id == gtokSpaces {
			continue
		}
		l.id, l.lexeme, l.line, l.col = id, lexeme, line, col
		return
	}
}

func (l *loader) err(kind icterrors.ConfigErrorKind, format string, a ...interface{}) error {
	return icterrors.GrammarConfig(kind, l.line, l.col, format, a...)
}

// unexpected builds an error for the current token, distinguishing a
// genuinely malformed character (one none of the fixed patterns recognized,
// surfaced as its raw byte value by the lexer's fallback) from a
// recognized-but-out-of-place token.
func (l *loader) unexpected(wantDesc string) error {
	if l.id != lex.EOITokenID && l.id > gtokSTAR {
		return l.err(icterrors.ConfigMalformedToken, "unrecognized character %q", l.lexeme)
	}
	return l.err(icterrors.ConfigUnexpectedToken, "expected %s, found %s", wantDesc, l.tokenDesc())
}

func (l *loader) tokenDesc() string {
	if l.id == lex.EOITokenID {
		return "end of input"
	}
	return fmt.Sprintf("%q", l.lexeme)
}

// parseTokens parses the optional leading token-declaration block. If one
// isn't present, it returns immediately without consuming the current
// token, leaving it for parseRule.
func (l *loader) parseTokens() error {
	if l.id != gtokLBRACE {
		return nil
	}
	for {
		l.advance()
		switch l.id {
		case gtokTRML:
			name := string(l.lexeme)
			if _, exists := l.symbols[name]; exists {
				return l.err(icterrors.ConfigDuplicateLHS, "token %q already declared", name)
			}
			l.symbols[name] = FirstTokenID + len(l.tokenNames)
			l.tokenNames = append(l.tokenNames, name)
			l.ignore = append(l.ignore, false)
		case gtokSTAR:
			l.tokenNames = append(l.tokenNames, "")
			l.ignore = append(l.ignore, true)
		default:
			if l.id != gtokRBRACE {
				return l.unexpected("a token name, '*', or '}'")
			}
			l.advance()
			return nil
		}
	}
}

// parseRule parses one `lhs : production ('|' production)* ';'` rule,
// appending its productions to g and patching any placeholder id that a
// preceding rule's rhs assigned to this lhs name.
func (l *loader) parseRule() error {
	if l.id != gtokNTRML {
		return l.unexpected("a nonterminal name")
	}
	lhs := string(l.lexeme)

	if existing, declared := l.symbols[lhs]; declared {
		if existing >= 0 {
			return l.err(icterrors.ConfigDuplicateLHS, "nonterminal %q already declared", lhs)
		}
		l.patchPlaceholder(existing, l.ruleNum)
	}

	l.ruleStart = append(l.ruleStart, len(l.g))
	l.symbols[lhs] = l.ruleNum
	l.nonterminalNames = append(l.nonterminalNames, lhs)

	l.advance()
	if l.id != gtokCOLON {
		return l.unexpected("':'")
	}

	for {
		if err := l.parseProduction(); err != nil {
			return err
		}
		if l.id != gtokPIPE {
			break
		}
	}
	if l.id != gtokSCOLON {
		return l.unexpected("'|' or ';'")
	}

	l.ruleNum++
	return nil
}

// patchPlaceholder overwrites every occurrence of a placeholder id in g
// with its now-known replacement. Called once a forward-referenced
// nonterminal's own rule is finally parsed.
func (l *loader) patchPlaceholder(old, replacement int) {
	for i, v := range l.g {
		if v == old {
			l.g[i] = replacement
		}
	}
}

// parseProduction parses one pipe-separated production: zero or more rhs
// symbols (literal chars, terminals, or nonterminals) up to the next '|' or
// ';'. It leaves the current token at whichever of those ended it.
func (l *loader) parseProduction() error {
	l.g = append(l.g, 0)
	countIdx := len(l.g) - 1

	l.advance()
	for {
		switch l.id {
		case gtokCHR:
			l.g = append(l.g, int(l.lexeme[1]))
		case gtokTRML:
			name := string(l.lexeme)
			id, ok := l.symbols[name]
			if !ok {
				return l.err(icterrors.ConfigUnknownTerminal, "unknown terminal %q", name)
			}
			l.g = append(l.g, id)
		case gtokNTRML:
			name := string(l.lexeme)
			id, ok := l.symbols[name]
			if !ok {
				id = l.nextPlaceholder
				l.symbols[name] = id
				l.nextPlaceholder--
			}
			l.g = append(l.g, id)
		default:
			return nil
		}
		l.g[countIdx]++
		l.advance()
	}
}
