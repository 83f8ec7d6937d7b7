package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Compile_Match(t *testing.T) {
	testCases := []struct {
		name    string
		pattern string
		input   string
		wantN   int
		wantOK  bool
	}{
		{"literal exact", "abc", "abc", 3, true},
		{"literal prefix only", "abc", "abcdef", 3, true},
		{"literal no match", "abc", "xyz", 0, false},
		{"alternation picks left branch", "cat|dog", "cat", 3, true},
		{"alternation picks right branch", "cat|dog", "dog", 3, true},
		{"star matches zero", "ab*c", "ac", 2, true},
		{"star matches many", "ab*c", "abbbbc", 6, true},
		{"plus requires one", "ab+c", "ac", 0, false},
		{"plus matches many", "ab+c", "abbbc", 5, true},
		{"optional present", "colou?r", "colour", 6, true},
		{"optional absent", "colou?r", "color", 5, true},
		{"wildcard matches any non-newline", "a.c", "abc", 3, true},
		{"wildcard excludes newline", "a.c", "a\nc", 0, false},
		{"digit class", `\d+`, "123abc", 3, true},
		{"char class range", "[a-c]+", "cba!", 3, true},
		{"negated char class", "[^abc]+", "xyzabc", 3, true},
		{"grouped repetition", "a(bc)*d", "abcbcbcd", 8, true},
		{"example from spec", "a(b|c)*d", "abbcd", 5, true},
		{"example from spec, minimal", "a(b|c)*d", "ad", 2, true},
		{"example from spec, no match", "a(b|c)*d", "aXd", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			prog, err := Compile(tc.pattern)
			if !assert.NoError(err) {
				return
			}

			gotN, gotOK := prog.Match([]byte(tc.input))
			assert.Equal(tc.wantOK, gotOK, "match ok")
			if tc.wantOK {
				assert.Equal(tc.wantN, gotN, "match length")
			}
		})
	}
}

func Test_Compile_Match_MaximalMunch(t *testing.T) {
	assert := assert.New(t)

	// a* is greedy: against "aaa" it should consume all three a's, not stop
	// early, even though every prefix is also a valid match.
	prog, err := Compile("a*")
	if !assert.NoError(err) {
		return
	}

	n, ok := prog.Match([]byte("aaa"))
	assert.True(ok)
	assert.Equal(3, n)
}

func Test_Compile_Search(t *testing.T) {
	assert := assert.New(t)

	prog, err := Compile("a(b|c)*d")
	if !assert.NoError(err) {
		return
	}

	offset, ok := prog.Search([]byte("xxad"))
	assert.True(ok)
	assert.Equal(2, offset)

	_, ok = prog.Search([]byte("xxxx"))
	assert.False(ok)
}

func Test_Compile_SyntaxErrors(t *testing.T) {
	testCases := []struct {
		name    string
		pattern string
	}{
		{"unbalanced open paren", "(ab"},
		{"unbalanced close paren", "ab)"},
		{"dangling escape", `ab\`},
		{"unrecognized escape", `\q`},
		{"unclosed char class", "[abc"},
		{"inverted range", "[z-a]"},
		{"bare metacharacter", "a]b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			_, err := Compile(tc.pattern)
			assert.Error(err)
		})
	}
}
