package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/parsegen/internal/ictiobus/grammar"
)

const sumGrammar = `{ NUM }
	e : e '+' t | t ;
	t : NUM ;
`

func Test_Dir_StoreThenLoad(t *testing.T) {
	assert := assert.New(t)

	want, err := grammar.Load(sumGrammar)
	if !assert.NoError(err) {
		return
	}

	dir := NewDir(filepath.Join(t.TempDir(), "parsegen-cache"))

	if err := dir.Store(sumGrammar, want); !assert.NoError(err) {
		return
	}

	got, hit, err := dir.Load(sumGrammar)
	if !assert.NoError(err) {
		return
	}
	if !assert.True(hit) {
		return
	}

	assert.Equal(want.G, got.G)
	assert.Equal(want.RuleStart, got.RuleStart)
	assert.Equal(want.Ignore, got.Ignore)
	assert.Equal(want.TokenNames, got.TokenNames)
	assert.Equal(want.NonterminalNames, got.NonterminalNames)
	assert.Equal(want.FirstNonterminalID(), got.FirstNonterminalID())
}

func Test_Dir_LoadMissIsNotError(t *testing.T) {
	assert := assert.New(t)

	dir := NewDir(filepath.Join(t.TempDir(), "parsegen-cache"))

	got, hit, err := dir.Load(sumGrammar)
	assert.NoError(err)
	assert.False(hit)
	assert.Nil(got)
}

func Test_Dir_DifferentSourceDifferentKey(t *testing.T) {
	assert := assert.New(t)

	other := `{ NUM } e : NUM ;`
	assert.NotEqual(KeyFor(sumGrammar), KeyFor(other))
}
