package parse

import (
	"fmt"

	"github.com/dekarrin/parsegen/internal/icterrors"
	"github.com/dekarrin/parsegen/internal/ictiobus/grammar"
	"github.com/dekarrin/parsegen/internal/ictiobus/lex"
	"github.com/dekarrin/parsegen/internal/util"
)

// Action table cell sentinels. Non-negative cells are shift/goto targets.
const (
	actNone   = -1
	actReduce = -2
	actAccept = -3
)

// augmentedProdPos marks the single synthetic item S' -> . S that seeds
// state 0, S being the grammar's real start symbol. It is never a position
// in g.G. Keeping it a distinct production (rather than flagging one of S's
// own productions as the start item) means a derivation that re-derives S
// through ordinary recursion never gets confused with the one true accept
// item: without this, a left-recursive start symbol would seed state 0's
// kernel with one isStart item per production of S, and closure would add
// non-start duplicates of those same productions, so completing any one of
// them looks like two distinct items reducing in the same state, a
// reduce/reduce conflict that isn't really there.
const augmentedProdPos = -1

// lrItem is one LR(0) item: a production position, how far the dot has
// advanced into it, and the production's lhs. prodPos == augmentedProdPos
// is the synthetic accept item; its lhs is meaningless and left zero.
// Equality and hashing (as a Go map key) use all three fields, matching the
// kernel-equality rule states are deduplicated by.
type lrItem struct {
	prodPos int
	dotPos  int
	lhs     int
}

func (it lrItem) isStart() bool { return it.prodPos == augmentedProdPos }

func (it lrItem) advance() lrItem {
	it.dotPos++
	return it
}

// lrState is one canonical LR(0) state: a kernel (seeded by GOTO, deduped
// on equality) and a closure (expanded from the kernel, one item per
// production of each not-yet-closed nonterminal found after a dot).
type lrState struct {
	kernel  map[lrItem]bool
	closure []lrItem
}

// lrBuilder constructs the canonical collection of LR(0) states and the
// resulting ACTION/GOTO table for a grammar.
type lrBuilder struct {
	g      *grammar.Grammar
	states []*lrState
}

func (b *lrBuilder) curSymbol(it lrItem) int {
	if it.prodPos == augmentedProdPos {
		if it.dotPos == 0 {
			return b.g.StartSymbol()
		}
		return -1
	}
	length := b.g.ProdLen(it.prodPos)
	if it.dotPos >= length {
		return -1
	}
	return b.g.ProdRHS(it.prodPos)[it.dotPos]
}

func (b *lrBuilder) newState() *lrState {
	st := &lrState{kernel: make(map[lrItem]bool)}
	b.states = append(b.states, st)
	return st
}

// closureOf expands st's closure to a fixpoint: every nonterminal that
// appears after a dot in the kernel, or in a closure item added along the
// way, is expanded exactly once.
func (b *lrBuilder) closureOf(st *lrState) {
	closed := make(map[int]bool)
	var worklist []lrItem
	for it := range st.kernel {
		worklist = append(worklist, it)
	}

	for len(worklist) > 0 {
		it := worklist[0]
		worklist = worklist[1:]

		sym := b.curSymbol(it)
		if sym < 0 || b.g.IsTerminal(sym) || closed[sym] {
			continue
		}
		closed[sym] = true

		ruleIdx := b.g.RuleIndex(sym)
		start, end := b.g.RuleRange(ruleIdx)
		for pos := start; pos < end; pos = b.g.NextProduction(pos) {
			newItem := lrItem{prodPos: pos, dotPos: 0, lhs: sym}
			st.closure = append(st.closure, newItem)
			worklist = append(worklist, newItem)
		}
	}
}

func kernelEqual(a, b map[lrItem]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for it := range a {
		if !b[it] {
			return false
		}
	}
	return true
}

// gotoState computes the GOTO(from, symbol) kernel and returns its state
// index, reusing an existing state if one has an identical kernel.
func (b *lrBuilder) gotoState(from *lrState, symbol int) int {
	kernel := make(map[lrItem]bool)
	for it := range from.kernel {
		if b.curSymbol(it) == symbol {
			kernel[it.advance()] = true
		}
	}
	for _, it := range from.closure {
		if b.curSymbol(it) == symbol {
			kernel[it.advance()] = true
		}
	}

	for i, st := range b.states {
		if kernelEqual(st.kernel, kernel) {
			return i
		}
	}

	ns := b.newState()
	ns.kernel = kernel
	return len(b.states) - 1
}

// allItems returns a state's kernel and closure items as one slice, used
// for the table-fill pass where kernel/closure origin no longer matters.
func (st *lrState) allItems() []lrItem {
	items := make([]lrItem, 0, len(st.kernel)+len(st.closure))
	for it := range st.kernel {
		items = append(items, it)
	}
	items = append(items, st.closure...)
	return items
}

// lrTableRow is one ACTION/GOTO row plus the reduction metadata for states
// that reduce (prodPos == -1 means the state never reduces).
type lrTableRow struct {
	action  []int
	prodPos int
	lhs     int
	prodNum int
}

func (b *lrBuilder) build() ([]lrTableRow, error) {
	width := b.g.LastSymbolID()

	s0 := b.newState()
	s0.kernel[lrItem{prodPos: augmentedProdPos, dotPos: 0}] = true

	var rows []lrTableRow

	for curIdx := 0; curIdx < len(b.states); curIdx++ {
		st := b.states[curIdx]
		b.closureOf(st)

		row := make([]int, width)
		for i := range row {
			row[i] = actNone
		}

		items := st.allItems()
		shifted := make(map[int]bool)
		var reduceItem *lrItem

		for i := range items {
			it := items[i]
			sym := b.curSymbol(it)
			if sym < 0 {
				if reduceItem != nil {
					return nil, b.reduceReduceError(*reduceItem, it)
				}
				itCopy := it
				reduceItem = &itCopy
				continue
			}
			if shifted[sym] {
				continue
			}
			shifted[sym] = true
			row[sym] = b.gotoState(st, sym)
		}

		tr := lrTableRow{action: row, prodPos: -1, lhs: -1, prodNum: -1}
		if reduceItem != nil {
			fillVal := actReduce
			if reduceItem.isStart() {
				fillVal = actAccept
			}
			for sym := 0; sym < width; sym++ {
				if row[sym] == actNone {
					row[sym] = fillVal
				}
			}
			if !reduceItem.isStart() {
				tr.prodPos = reduceItem.prodPos
				tr.lhs = reduceItem.lhs
				tr.prodNum = b.g.ProdNum(b.g.RuleIndex(reduceItem.lhs), reduceItem.prodPos)
			}
		}
		rows = append(rows, tr)
	}

	return rows, nil
}

func (b *lrBuilder) reduceReduceError(a, c lrItem) error {
	return icterrors.GrammarConfig(icterrors.ConfigConflictReduceReduce, 0, 0,
		"reduce/reduce conflict between %s and %s",
		b.describeItem(a), b.describeItem(c))
}

func (b *lrBuilder) describeItem(it lrItem) string {
	if it.isStart() {
		return "completion of the start symbol"
	}
	ruleIdx := b.g.RuleIndex(it.lhs)
	return fmt.Sprintf("%q production %d", b.g.NonterminalName(ruleIdx), b.g.ProdNum(ruleIdx, it.prodPos))
}

// LR is an immutable, compiled LR(0)/SLR ACTION/GOTO table. Shift/reduce
// conflicts resolve in favor of the shift; reduce/reduce conflicts are
// reported as a grammar configuration error at construction time.
type LR struct {
	g    *grammar.Grammar
	lx   *lex.Lexer
	rows []lrTableRow
}

// NewLR constructs the canonical LR(0) item sets for g and builds its
// ACTION/GOTO table. lx must tokenize input using g's token declarations in
// order (its FirstTokenID must be grammar.FirstTokenID).
func NewLR(g *grammar.Grammar, lx *lex.Lexer) (*LR, error) {
	b := &lrBuilder{g: g}
	rows, err := b.build()
	if err != nil {
		return nil, err
	}
	return &LR{g: g, lx: lx, rows: rows}, nil
}

// LRSession is the mutable state of one run of an LR parser over one input.
type LRSession struct {
	p     *LR
	lsess *lex.Session

	states util.Stack[int]
	values util.Stack[valueCell]

	curToken  int
	curLexeme []byte
	line, col int

	expectedState int

	lhs, prodNum, symbolCount int
}

// NewSession creates a reusable driver session for p.
func (p *LR) NewSession() *LRSession {
	return &LRSession{p: p}
}

// Parse resets the session over a new input buffer and advances to the
// first pending reduction, completion, or failure.
func (s *LRSession) Parse(input []byte) Status {
	s.lsess = s.p.lx.NewSession(input)
	s.states = util.Stack[int]{}
	s.values = util.Stack[valueCell]{}

	s.states.Push(0)
	s.advanceToken()
	return s.step()
}

func (s *LRSession) advanceToken() {
	for {
		id, lexeme, line, col := s.lsess.Next()
		if id >= grammar.FirstTokenID && s.p.g.Ignore[id-grammar.FirstTokenID] {
			continue
		}
		s.curToken, s.curLexeme, s.line, s.col = id, lexeme, line, col
		return
	}
}

// step shifts tokens and states until a reduce, accept, or error action is
// reached for the current state/token pair.
func (s *LRSession) step() Status {
	for {
		row := s.p.rows[s.states.Peek()]
		action := row.action[s.curToken]

		switch {
		case action >= 0:
			s.states.Push(action)
			s.values.Push(valueCell{value: s.curLexeme, owned: false})
			s.advanceToken()

		case action == actReduce:
			s.lhs = row.lhs
			s.prodNum = row.prodNum
			s.symbolCount = s.p.g.ProdLen(row.prodPos)
			return Good

		case action == actAccept:
			if s.curToken == lex.EOITokenID {
				return Done
			}
			s.expectedState = -1
			return SyntaxError

		default:
			s.expectedState = s.states.Peek()
			return SyntaxError
		}
	}
}

// Reduce completes the pending reduction with value, then resumes stepping
// toward the next reduction, completion, or failure.
func (s *LRSession) Reduce(value interface{}, owned bool) Status {
	if s.symbolCount > 0 {
		s.states.PopN(s.symbolCount)
		s.values.PopN(s.symbolCount)
	}

	gotoState := s.p.rows[s.states.Peek()].action[s.lhs]
	s.states.Push(gotoState)
	s.values.Push(valueCell{value: value, owned: owned})

	return s.step()
}

// LHSNum returns the 0-based nonterminal index of the pending reduction.
func (s *LRSession) LHSNum() int { return s.p.g.RuleIndex(s.lhs) }

// ProdNum returns the 0-based production index, within LHSNum's
// nonterminal, of the pending reduction.
func (s *LRSession) ProdNum() int { return s.prodNum }

// RHSValue returns the i-th rhs value (0-indexed, in grammar order) of the
// pending reduction.
func (s *LRSession) RHSValue(i int) interface{} {
	cells := s.values.Of
	return cells[len(cells)-s.symbolCount+i].value
}

// CurrentToken returns the token id the lexer is positioned on.
func (s *LRSession) CurrentToken() int { return s.curToken }

// Line returns the 1-indexed line of the current token.
func (s *LRSession) Line() int { return s.line }

// Column returns the 1-indexed column of the current token.
func (s *LRSession) Column() int { return s.col }

// ExpectedTokens returns, after a SyntaxError, the set of token ids whose
// ACTION in the failing state would have been a shift. If the parse had
// already reached accept and was only waiting on end-of-input, the set is
// just end-of-input.
func (s *LRSession) ExpectedTokens() []int {
	if s.expectedState < 0 {
		return []int{lex.EOITokenID}
	}
	row := s.p.rows[s.expectedState]
	var expected []int
	for t := 1; t < s.p.g.FirstNonterminalID(); t++ {
		if row.action[t] >= 0 {
			expected = append(expected, t)
		}
	}
	return expected
}
