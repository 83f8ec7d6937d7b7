package parse

import (
	"github.com/dekarrin/parsegen/internal/icterrors"
	"github.com/dekarrin/parsegen/internal/ictiobus/grammar"
	"github.com/dekarrin/parsegen/internal/ictiobus/lex"
	"github.com/dekarrin/parsegen/internal/util"
)

// derivesEpsilon tracks, per nonterminal, the position of the production
// that derives epsilon, or one of the two sentinels below. unseenEpsilon
// marks one whose FIRST set hasn't been computed at all; inProgressEpsilon
// marks one currently being computed further up the call stack. Seeing
// inProgressEpsilon again while recursing means the nonterminal reaches
// itself (directly or through other nonterminals) before any terminal,
// i.e. left recursion, which a predictive table can never encode.
const (
	unseenEpsilon     = -3
	inProgressEpsilon = -2
	noEpsilon         = -1
)

// LL1 is an immutable, compiled LL(1) predictive parse table.
type LL1 struct {
	g  *grammar.Grammar
	lx *lex.Lexer

	// table[[lhs rule index, lookahead symbol]] = production position.
	table map[[2]int]int

	// derivesEpsilon[ruleIndex] is the position of the production that
	// derives epsilon for that nonterminal, or noEpsilon.
	derivesEpsilon []int

	// firstSets[ruleIndex] is the fully-computed FIRST set for that
	// nonterminal, cached once derivesEpsilon[ruleIndex] leaves
	// inProgressEpsilon so a second reference to an already-resolved
	// nonterminal (from a different lhs) can still merge its terminals
	// into the caller instead of short-circuiting on the memo alone.
	firstSets []map[int]bool
}

// NewLL1 computes FIRST sets and builds the predictive table for g. lx must
// tokenize input using g's token declarations in order (its FirstTokenID
// must be grammar.FirstTokenID). It returns a GrammarConfigError if the
// grammar is not LL(1): a lookahead cell or an epsilon-production would be
// written more than once, or some nonterminal is left-recursive.
func NewLL1(g *grammar.Grammar, lx *lex.Lexer) (*LL1, error) {
	p := &LL1{
		g:              g,
		lx:             lx,
		table:          make(map[[2]int]int),
		derivesEpsilon: make([]int, g.NumNonterminals()),
		firstSets:      make([]map[int]bool, g.NumNonterminals()),
	}
	for i := range p.derivesEpsilon {
		p.derivesEpsilon[i] = unseenEpsilon
	}
	for i := 0; i < g.NumNonterminals(); i++ {
		if err := p.populate(i, make(map[int]bool)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// populate computes FIRST(lhs) into firstSet and fills in the table cells
// it implies, recursing (memoized via derivesEpsilon) into nonterminals
// that appear in lhs's productions before a non-epsilon-deriving symbol. A
// nonterminal already resolved by an earlier call still has its cached
// firstSets entry merged into the caller's firstSet: the memo only guards
// against redoing the table-fill work, not against a second reference
// needing the same FIRST set.
func (p *LL1) populate(lhs int, firstSet map[int]bool) error {
	switch p.derivesEpsilon[lhs] {
	case unseenEpsilon:
		// fall through and compute it
	case inProgressEpsilon:
		return icterrors.GrammarConfig(icterrors.ConfigConflictLL1, 0, 0,
			"nonterminal %q is left-recursive, which cannot be LL(1)",
			p.g.NonterminalName(lhs))
	default:
		for t := range p.firstSets[lhs] {
			firstSet[t] = true
		}
		return nil
	}
	p.derivesEpsilon[lhs] = inProgressEpsilon
	p.firstSets[lhs] = make(map[int]bool)

	start, end := p.g.RuleRange(lhs)
	for prodPos := start; prodPos < end; prodPos = p.g.NextProduction(prodPos) {
		descendant := make(map[int]bool)
		rhs := p.g.ProdRHS(prodPos)

		j := 0
		for ; j < len(rhs); j++ {
			sym := rhs[j]
			if p.g.IsTerminal(sym) {
				if err := p.setTable(lhs, sym, prodPos); err != nil {
					return err
				}
				firstSet[sym] = true
				p.firstSets[lhs][sym] = true
				break
			}

			subIdx := p.g.RuleIndex(sym)
			if err := p.populate(subIdx, descendant); err != nil {
				return err
			}
			if p.derivesEpsilon[subIdx] < 0 {
				break
			}
		}

		for t := range descendant {
			if err := p.setTable(lhs, t, prodPos); err != nil {
				return err
			}
			firstSet[t] = true
			p.firstSets[lhs][t] = true
		}

		if j == len(rhs) {
			if p.derivesEpsilon[lhs] >= 0 {
				return icterrors.GrammarConfig(icterrors.ConfigConflictLL1, 0, 0,
					"nonterminal %q has more than one production deriving the empty string",
					p.g.NonterminalName(lhs))
			}
			p.derivesEpsilon[lhs] = prodPos
		}
	}

	if p.derivesEpsilon[lhs] == inProgressEpsilon {
		p.derivesEpsilon[lhs] = noEpsilon
	}
	return nil
}

func (p *LL1) setTable(lhs, token, prodPos int) error {
	key := [2]int{lhs, token}
	if _, exists := p.table[key]; exists {
		return icterrors.GrammarConfig(icterrors.ConfigConflictLL1, 0, 0,
			"nonterminal %q is not LL(1): more than one production applies on lookahead %s",
			p.g.NonterminalName(lhs), p.g.SymbolName(token))
	}
	p.table[key] = prodPos
	return nil
}

// LL1Session is the mutable state of one run of an LL1 parser over one
// input. Create it once with NewSession and reuse it across inputs with
// Parse; the compiled table is never rebuilt.
type LL1Session struct {
	p     *LL1
	lsess *lex.Session

	symbols util.Stack[int]
	values  util.Stack[valueCell]

	curToken  int
	curLexeme []byte
	line, col int

	expectedSymbol int

	lhs, prodNum, symbolCount int
}

// NewSession creates a reusable driver session for p.
func (p *LL1) NewSession() *LL1Session {
	return &LL1Session{p: p}
}

// Parse resets the session over a new input buffer, tokenizes up to the
// first pending reduction (or immediate completion/failure), and returns
// the resulting Status.
func (s *LL1Session) Parse(input []byte) Status {
	s.lsess = s.p.lx.NewSession(input)
	s.symbols = util.Stack[int]{}
	s.values = util.Stack[valueCell]{}
	s.expectedSymbol = 0

	s.symbols.Push(s.p.g.StartSymbol())
	s.advanceToken()
	return s.shift()
}

// advanceToken pulls the next token from the lexer, silently discarding any
// whose id is marked ignored in the grammar's token table.
func (s *LL1Session) advanceToken() {
	for {
		id, lexeme, line, col := s.lsess.Next()
		if id >= grammar.FirstTokenID && s.p.g.Ignore[id-grammar.FirstTokenID] {
			continue
		}
		s.curToken, s.curLexeme, s.line, s.col = id, lexeme, line, col
		return
	}
}

// shift expands the symbol stack, matching terminals against the input and
// expanding nonterminals via the predictive table, until it reaches a
// reduction marker or the parse concludes.
func (s *LL1Session) shift() Status {
	for {
		if s.symbols.Empty() {
			if s.curToken == lex.EOITokenID {
				return Done
			}
			s.expectedSymbol = 0
			return SyntaxError
		}

		top := s.symbols.Peek()
		if top <= 0 {
			break
		}
		s.symbols.Pop()

		if s.p.g.IsTerminal(top) {
			if top != s.curToken {
				s.expectedSymbol = top
				return SyntaxError
			}
			s.values.Push(valueCell{value: s.curLexeme, owned: false})
			s.advanceToken()
			continue
		}

		ruleIdx := s.p.g.RuleIndex(top)
		prodPos, ok := s.p.table[[2]int{ruleIdx, s.curToken}]
		if !ok {
			eps := s.p.derivesEpsilon[ruleIdx]
			if eps < 0 {
				s.expectedSymbol = top
				return SyntaxError
			}
			prodPos = eps
		}

		s.symbols.Push(-prodPos)
		rhs := s.p.g.ProdRHS(prodPos)
		for i := len(rhs) - 1; i >= 0; i-- {
			s.symbols.Push(rhs[i])
		}
	}

	s.updateReductionInfo(-s.symbols.Peek())
	return Good
}

func (s *LL1Session) updateReductionInfo(prodPos int) {
	s.lhs = s.p.g.LHSForProd(prodPos)
	s.prodNum = s.p.g.ProdNum(s.lhs, prodPos)
	s.symbolCount = s.p.g.ProdLen(prodPos)
}

// Reduce completes the pending reduction with value, then resumes shifting
// toward the next reduction, completion, or failure.
func (s *LL1Session) Reduce(value interface{}, owned bool) Status {
	if s.symbols.Empty() {
		if s.curToken == lex.EOITokenID {
			return Done
		}
		s.expectedSymbol = 0
		return SyntaxError
	}

	s.symbols.Pop()
	if s.symbolCount > 0 {
		s.values.PopN(s.symbolCount)
	}
	s.values.Push(valueCell{value: value, owned: owned})

	return s.shift()
}

// LHSNum returns the 0-based nonterminal index of the pending reduction.
func (s *LL1Session) LHSNum() int { return s.lhs }

// ProdNum returns the 0-based production index, within LHSNum's
// nonterminal, of the pending reduction.
func (s *LL1Session) ProdNum() int { return s.prodNum }

// RHSValue returns the i-th rhs value (0-indexed, in grammar order) of the
// pending reduction.
func (s *LL1Session) RHSValue(i int) interface{} {
	cells := s.values.Of
	return cells[len(cells)-s.symbolCount+i].value
}

// CurrentToken returns the token id the lexer is positioned on.
func (s *LL1Session) CurrentToken() int { return s.curToken }

// Line returns the 1-indexed line of the current token.
func (s *LL1Session) Line() int { return s.line }

// Column returns the 1-indexed column of the current token.
func (s *LL1Session) Column() int { return s.col }

// ExpectedTokens returns, after a SyntaxError, the set of token ids that
// would have been accepted in its place.
func (s *LL1Session) ExpectedTokens() []int {
	if s.p.g.IsTerminal(s.expectedSymbol) {
		return []int{s.expectedSymbol}
	}
	ruleIdx := s.p.g.RuleIndex(s.expectedSymbol)
	var expected []int
	for t := 1; t < s.p.g.FirstNonterminalID(); t++ {
		if _, ok := s.p.table[[2]int{ruleIdx, t}]; ok {
			expected = append(expected, t)
		}
	}
	return expected
}
