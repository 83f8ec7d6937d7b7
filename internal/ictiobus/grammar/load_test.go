package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/parsegen/internal/icterrors"
)

func Test_Load_TokensAndRules(t *testing.T) {
	assert := assert.New(t)

	g, err := Load(`{ NUM }
		e : e '+' t | t ;
		t : NUM ;
	`)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{"NUM"}, g.TokenNames)
	assert.Equal([]bool{false}, g.Ignore)
	assert.Equal([]string{"e", "t"}, g.NonterminalNames)
	assert.Equal(FirstTokenID+1, g.StartSymbol())

	// e : e '+' t | t ;  -> [3, e, '+', t], [1, t]
	// t : NUM ;          -> [1, NUM]
	numID := FirstTokenID
	eID := g.FirstNonterminalID()
	tID := eID + 1

	assert.Equal([]int{
		3, eID, int('+'), tID,
		1, tID,
		1, numID,
	}, g.G)
	assert.Equal([]int{0, 6, 8}, g.RuleStart)
}

func Test_Load_AnonymousIgnoredToken(t *testing.T) {
	assert := assert.New(t)

	g, err := Load(`{ NAME NUM CHAR BRAC * }
		exp : NUM BRAC 'a' | CHAR CHAR abc exp abc ;
		abc : BRAC exp | ;
	`)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{"NAME", "NUM", "CHAR", "BRAC", ""}, g.TokenNames)
	assert.Equal([]bool{false, false, false, false, true}, g.Ignore)
	assert.Equal(2, g.NumNonterminals())

	// abc's second production is empty.
	abcIdx := g.RuleIndex(g.StartSymbol() + 1)
	start, end := g.RuleRange(abcIdx)
	var lens []int
	for p := start; p < end; p = g.NextProduction(p) {
		lens = append(lens, g.ProdLen(p))
	}
	assert.Equal([]int{2, 0}, lens)
}

func Test_Load_ForwardReferencePatched(t *testing.T) {
	assert := assert.New(t)

	// abc is referenced in exp's production before abc's own rule appears.
	g, err := Load(`{ NUM }
		exp : abc NUM ;
		abc : NUM ;
	`)
	if !assert.NoError(err) {
		return
	}

	for _, v := range g.G {
		assert.GreaterOrEqual(v, 0, "no placeholder should survive loading")
	}
}

func Test_Load_RoundTripString(t *testing.T) {
	assert := assert.New(t)

	g, err := Load(`{ NUM }
		e : e '+' t | t ;
		t : NUM ;
	`)
	if !assert.NoError(err) {
		return
	}

	out := g.String()
	assert.Contains(out, "e : e '+' t ;")
	assert.Contains(out, "e : t ;")
	assert.Contains(out, "t : NUM ;")
}

func Test_Load_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		config   string
		wantKind icterrors.ConfigErrorKind
	}{
		{
			name:     "unknown terminal",
			config:   "{ NUM } e : NUM | UNDECLARED ;",
			wantKind: icterrors.ConfigUnknownTerminal,
		},
		{
			name:     "duplicate lhs",
			config:   "{ NUM } e : NUM ; e : NUM ;",
			wantKind: icterrors.ConfigDuplicateLHS,
		},
		{
			name:     "duplicate token",
			config:   "{ NUM NUM } e : NUM ;",
			wantKind: icterrors.ConfigDuplicateLHS,
		},
		{
			name:     "missing semicolon",
			config:   "{ NUM } e : NUM",
			wantKind: icterrors.ConfigUnexpectedToken,
		},
		{
			name:     "undefined nonterminal",
			config:   "{ NUM } e : NUM abc ;",
			wantKind: icterrors.ConfigUndefinedNonTerminal,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := Load(tc.config)
			if !assert.Error(err) {
				return
			}
			kind, ok := icterrors.GrammarConfigKind(err)
			if !assert.True(ok) {
				return
			}
			assert.Equal(tc.wantKind, kind)
		})
	}
}
