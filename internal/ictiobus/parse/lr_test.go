package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/parsegen/internal/icterrors"
)

// runLR drives p over input, feeding a placeholder value on every
// reduction, and returns the final status plus the reduction trace as
// (nonterminal name, production number) pairs.
func runLR(p *LR, input []byte) (Status, [][2]interface{}) {
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

const leftRecursiveSum = `{ NUM }
	e : e '+' t | t ;
	t : NUM ;
`

func Test_LR_AcceptsLeftRecursiveSum(t *testing.T) {
	assert := assert.New(t)

	g := mustLoadGrammar(t, leftRecursiveSum)
	lx, err := lexFromGrammar(g)
	if !assert.NoError(err) {
		return
	}
	p, err := NewLR(g, lx)
	if !assert.NoError(err) {
		return
	}

	status, trace := runLR(p, []byte("1+1"))
	assert.Equal(Done, status)
	assert.Equal([][2]interface{}{
		{"t", 0}, // t : NUM ;        (first operand)
		{"e", 1}, // e : t ;          (base case)
		{"t", 0}, // t : NUM ;        (second operand)
		{"e", 0}, // e : e '+' t ;    (combine)
	}, trace)
}

func Test_LR_SyntaxErrorAtEOFExpectsNum(t *testing.T) {
	assert := assert.New(t)

	g := mustLoadGrammar(t, leftRecursiveSum)
	lx, err := lexFromGrammar(g)
	if !assert.NoError(err) {
		return
	}
	p, err := NewLR(g, lx)
	if !assert.NoError(err) {
		return
	}

	sess := p.NewSession()
	status := sess.Parse([]byte("1+"))
	for status == Good {
		status = sess.Reduce(nil, false)
	}

	if !assert.Equal(SyntaxError, status) {
		return
	}
	expected := sess.ExpectedTokens()
	if !assert.Len(expected, 1) {
		return
	}
	assert.Equal(g.TokenName(expected[0]), "NUM")
}

func Test_LR_ReduceReduceConflictIsRejected(t *testing.T) {
	assert := assert.New(t)

	// Both rules can produce a bare NUM with nothing to disambiguate by,
	// so the same state reduces by two different productions.
	g := mustLoadGrammar(t, `{ NUM }
		s : a | b ;
		a : NUM ;
		b : NUM ;
	`)
	lx, err := lexFromGrammar(g)
	if !assert.NoError(err) {
		return
	}

	_, err = NewLR(g, lx)
	if !assert.Error(err) {
		return
	}
	kind, ok := icterrors.GrammarConfigKind(err)
	if !assert.True(ok) {
		return
	}
	assert.Equal(icterrors.ConfigConflictReduceReduce, kind)
}

func Test_LR_KernelDedupReusesStates(t *testing.T) {
	assert := assert.New(t)

	g := mustLoadGrammar(t, leftRecursiveSum)
	b := &lrBuilder{g: g}
	rows, err := b.build()
	if !assert.NoError(err) {
		return
	}
	assert.Equal(len(b.states), len(rows))

	// No two canonical states share a kernel: gotoState must have reused an
	// existing state rather than creating a duplicate for any kernel it
	// already produced.
	for i := 0; i < len(b.states); i++ {
		for j := i + 1; j < len(b.states); j++ {
			assert.False(kernelEqual(b.states[i].kernel, b.states[j].kernel),
				"states %d and %d have identical kernels", i, j)
		}
	}
}
