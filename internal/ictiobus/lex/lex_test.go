package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const firstTokenID = 128

func testLexer(t *testing.T) *Lexer {
	t.Helper()

	lx, err := New([]Pattern{
		{Source: "\n", Newline: true},
		{Source: ` +`},
		{Source: `[a-z]+`},
		{Source: `[A-Z]+`},
	}, firstTokenID)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return lx
}

func Test_Lexer_TokenizesByPatternOrder(t *testing.T) {
	assert := assert.New(t)

	lx := testLexer(t)
	sess := lx.NewSession([]byte("abc DEF\nghi"))

	type got struct {
		id     int
		lexeme string
		line   int
		col    int
	}
	var results []got

	for {
		id, lexeme, line, col := sess.Next()
		if id == EOITokenID {
			break
		}
		results = append(results, got{id, string(lexeme), line, col})
	}

	expect := []got{
		{firstTokenID + 2, "abc", 1, 1},
		{firstTokenID + 1, " ", 1, 4},
		{firstTokenID + 3, "DEF", 1, 5},
		{firstTokenID, "\n", 1, 8},
		{firstTokenID + 2, "ghi", 2, 1},
	}
	assert.Equal(expect, results)
}

func Test_Lexer_RawByteFallback(t *testing.T) {
	assert := assert.New(t)

	lx := testLexer(t)
	sess := lx.NewSession([]byte("a!b"))

	id, lexeme, _, _ := sess.Next()
	assert.Equal(firstTokenID+2, id)
	assert.Equal("a", string(lexeme))

	id, lexeme, _, _ = sess.Next()
	assert.Equal(int('!'), id)
	assert.Equal("!", string(lexeme))

	id, lexeme, _, _ = sess.Next()
	assert.Equal(firstTokenID+2, id)
	assert.Equal("b", string(lexeme))
}

func Test_Lexer_EOIIsStable(t *testing.T) {
	assert := assert.New(t)

	lx := testLexer(t)
	sess := lx.NewSession([]byte(""))

	id1, _, _, _ := sess.Next()
	id2, _, _, _ := sess.Next()
	assert.Equal(EOITokenID, id1)
	assert.Equal(EOITokenID, id2)
}

func Test_Lexer_PatternOrderBreaksTies(t *testing.T) {
	assert := assert.New(t)

	// Two patterns both matching "ab" for the same length: the first
	// declared pattern must win.
	lx, err := New([]Pattern{
		{Source: "ab"},
		{Source: "a[a-z]"},
	}, firstTokenID)
	if !assert.NoError(err) {
		return
	}

	sess := lx.NewSession([]byte("ab"))
	id, lexeme, _, _ := sess.Next()
	assert.Equal(firstTokenID, id)
	assert.Equal("ab", string(lexeme))
}

func Test_Lexer_Reset(t *testing.T) {
	assert := assert.New(t)

	lx := testLexer(t)
	sess := lx.NewSession([]byte("abc"))
	sess.Next()

	sess.Reset([]byte("DEF"))
	assert.Equal(1, sess.Line())
	assert.Equal(1, sess.Col())

	id, lexeme, _, _ := sess.Next()
	assert.Equal(firstTokenID+3, id)
	assert.Equal("DEF", string(lexeme))
}
