package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/parsegen/internal/icterrors"
	"github.com/dekarrin/parsegen/internal/ictiobus/grammar"
)

func mustLoadGrammar(t *testing.T, config string) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Load(config)
	if err != nil {
		t.Fatalf("loading grammar: %v", err)
	}
	return g
}

// runLL1 drives p over input, feeding a placeholder value on every
// reduction, and returns the final status plus the reduction trace as
// (nonterminal name, production number) pairs.
func runLL1(p *LL1, input []byte) (Status, [][2]interface{}) {
	sess := p.NewSession()
	var trace [][2]interface{}

	status := sess.Parse(input)
	for status == Good {
		name := sess.p.g.NonterminalName(sess.LHSNum())
		trace = append(trace, [2]interface{}{name, sess.ProdNum()})
		status = sess.Reduce(nil, false)
	}
	return status, trace
}

func Test_LL1_LeftRecursionIsRejected(t *testing.T) {
	assert := assert.New(t)

	g := mustLoadGrammar(t, `{ NUM }
		e : e '+' t | t ;
		t : NUM ;
	`)

	lx, err := lexFromGrammar(g)
	if !assert.NoError(err) {
		return
	}

	_, err = NewLL1(g, lx)
	if !assert.Error(err) {
		return
	}
	kind, ok := icterrors.GrammarConfigKind(err)
	if !assert.True(ok) {
		return
	}
	assert.Equal(icterrors.ConfigConflictLL1, kind)
}

func Test_LL1_EpsilonProductionReductionSequence(t *testing.T) {
	assert := assert.New(t)

	g := mustLoadGrammar(t, `{ NUM }
		e : t ep ;
		ep : '+' t ep | ;
		t : NUM ;
	`)

	lx, err := lexFromGrammar(g)
	if !assert.NoError(err) {
		return
	}

	p, err := NewLL1(g, lx)
	if !assert.NoError(err) {
		return
	}

	status, trace := runLL1(p, []byte("1+1+1"))
	assert.Equal(Done, status)
	// Reductions happen bottom-up, in the post-order a stack-based
	// predictive parser completes each subtree: all three operands reduce
	// (left to right) before any "+ t ep" layer does, innermost first.
	assert.Equal([][2]interface{}{
		{"t", 0},
		{"t", 0},
		{"t", 0},
		{"ep", 1}, // innermost: ep : ;
		{"ep", 0}, // ep : '+' t ep ;
		{"ep", 0},
		{"e", 0},
	}, trace)
}

func Test_LL1_SecondReferenceToResolvedNonterminalFillsTable(t *testing.T) {
	assert := assert.New(t)

	// t is reached from both a and b; by the time populate(b, ...) runs,
	// t's FIRST set is already cached from resolving a. The cached set
	// still has to be merged into b's own FIRST set and table row, not
	// just reused to skip recomputation.
	g := mustLoadGrammar(t, `{ NUM }
		a : t ;
		b : t ;
		t : NUM ;
	`)

	lx, err := lexFromGrammar(g)
	if !assert.NoError(err) {
		return
	}

	p, err := NewLL1(g, lx)
	if !assert.NoError(err) {
		return
	}

	const bRuleIndex = 1 // declared second, after a
	_, ok := p.table[[2]int{bRuleIndex, grammar.FirstTokenID}]
	assert.True(ok, "Table[b, NUM] should be set even though t was already resolved via a")
}

func Test_LL1_RejectsMalformedInput(t *testing.T) {
	assert := assert.New(t)

	g := mustLoadGrammar(t, `{ NUM }
		e : t ep ;
		ep : '+' t ep | ;
		t : NUM ;
	`)
	lx, err := lexFromGrammar(g)
	if !assert.NoError(err) {
		return
	}
	p, err := NewLL1(g, lx)
	if !assert.NoError(err) {
		return
	}

	status, _ := runLL1(p, []byte("1+"))
	assert.Equal(SyntaxError, status)
}
