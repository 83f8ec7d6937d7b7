package regex

import (
	"github.com/dekarrin/parsegen/internal/icterrors"
)

// parser is a recursive-descent parser over pattern bytes that builds NFA
// fragments into an attached Builder as it goes. Grammar (see spec):
//
//	regexp  := concat ('|' concat)*
//	concat  := unary*
//	unary   := value ('*' | '+' | '?')?
//	value   := '(' regexp ')' | '[' set ']' | char
//	char    := escape | '.' | any byte except \ . [ ] ( )
type parser struct {
	pattern []byte
	pos     int
	b       *Builder
}

// Compile parses pattern and returns a standalone Prog for it: a freshly
// allocated NFA with a single accept state, id 0.
func Compile(pattern string) (*Prog, error) {
	b := NewBuilder()
	p := &parser{pattern: []byte(pattern), b: b}

	f, err := p.parseRegexp()
	if err != nil {
		return nil, err
	}
	if p.notEnd() {
		return nil, icterrors.RegexSyntax(p.pos, "unexpected %q", p.pattern[p.pos])
	}

	accept := b.push()
	b.concatenate(f.end, accept)
	b.MarkAccept(accept, 0)

	return &Prog{states: b.states, start: f.start}, nil
}

// CompileFragment parses pattern into the shared builder b without
// finalizing it into a Prog: it returns the fragment's start and end state.
// The caller (the lex package, composing many patterns into one NFA) is
// responsible for wiring the end state to an accept.
func CompileFragment(b *Builder, pattern string) (start, end int, err error) {
	p := &parser{pattern: []byte(pattern), b: b}
	f, err := p.parseRegexp()
	if err != nil {
		return 0, 0, err
	}
	if p.notEnd() {
		return 0, 0, icterrors.RegexSyntax(p.pos, "unexpected %q", p.pattern[p.pos])
	}
	return f.start, f.end, nil
}

// FinishFragment wires a fragment's dangling end to a fresh accept state
// with the given id, and returns that state's index.
func FinishFragment(b *Builder, end, id int) int {
	accept := b.push()
	b.concatenate(end, accept)
	b.MarkAccept(accept, id)
	return accept
}

// ToProg finalizes a builder with the given start state into a Prog. Used
// by the lex package once all pattern fragments have been wired together.
func ToProg(b *Builder, start int) *Prog {
	return &Prog{states: b.states, start: start}
}

func (p *parser) notEnd() bool {
	return p.pos < len(p.pattern)
}

func (p *parser) peek() (byte, bool) {
	if !p.notEnd() {
		return 0, false
	}
	return p.pattern[p.pos], true
}

// eat consumes and returns the current byte if it equals c.
func (p *parser) eat(c byte) bool {
	if b, ok := p.peek(); ok && b == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) err(format string, a ...interface{}) error {
	return icterrors.RegexSyntax(p.pos, format, a...)
}

func (p *parser) parseRegexp() (frag, error) {
	left, err := p.parseConcat()
	if err != nil {
		return frag{}, err
	}
	for p.eat('|') {
		right, err := p.parseConcat()
		if err != nil {
			return frag{}, err
		}
		left = p.b.alternateFrag(left, right)
	}
	return left, nil
}

// atConcatBoundary reports whether the parser is at a position where a
// concatenation (or the whole pattern) ends: end of input, '|', or ')'.
func (p *parser) atConcatBoundary() bool {
	c, ok := p.peek()
	return !ok || c == '|' || c == ')'
}

func (p *parser) parseConcat() (frag, error) {
	if p.atConcatBoundary() {
		// Empty alternative: produces an epsilon fragment.
		return p.b.epsilonFrag(), nil
	}

	left, err := p.parseUnary()
	if err != nil {
		return frag{}, err
	}
	for !p.atConcatBoundary() {
		right, err := p.parseUnary()
		if err != nil {
			return frag{}, err
		}
		left = p.b.concatFrag(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (frag, error) {
	f, err := p.parseValue()
	if err != nil {
		return frag{}, err
	}
	switch {
	case p.eat('*'):
		return p.b.kleeneFrag(f), nil
	case p.eat('+'):
		return p.b.repeatingFrag(f), nil
	case p.eat('?'):
		return p.b.optionalFrag(f), nil
	}
	return f, nil
}

func (p *parser) parseValue() (frag, error) {
	if p.eat('(') {
		f, err := p.parseRegexp()
		if err != nil {
			return frag{}, err
		}
		if !p.eat(')') {
			return frag{}, p.err("unbalanced parenthesis")
		}
		return f, nil
	}

	if p.eat('[') {
		mask, err := p.parseSet()
		if err != nil {
			return frag{}, err
		}
		return p.b.singleByteFrag(mask), nil
	}

	mask, err := p.parseChar()
	if err != nil {
		return frag{}, err
	}
	return p.b.singleByteFrag(mask), nil
}

// parseChar parses one character-position atom: an escape, the wildcard, or
// a literal byte. It never consumes '|' '(' ')' '[' as those are handled by
// higher-precedence rules, and raises a syntax error if one appears
// unescaped here.
func (p *parser) parseChar() (bitset256, error) {
	var mask bitset256

	if p.eat('\\') {
		return p.parseEscape()
	}
	if p.eat('.') {
		mask.setRange(0, '\n'-1)
		mask.setRange('\n'+1, 255)
		return mask, nil
	}

	c, ok := p.peek()
	if !ok {
		return mask, p.err("unexpected end of pattern")
	}
	if isMetachar(c) {
		return mask, p.err("unescaped metacharacter %q", c)
	}
	p.pos++
	mask.set(c)
	return mask, nil
}

func isMetachar(c byte) bool {
	switch c {
	case '\\', '.', '[', ']', '(', ')':
		return true
	}
	return false
}

// parseEscape parses the character(s) after a consumed '\'.
func (p *parser) parseEscape() (bitset256, error) {
	var mask bitset256

	c, ok := p.peek()
	if !ok {
		return mask, p.err("truncated escape sequence")
	}
	p.pos++

	switch c {
	case 'd':
		mask.setRange('0', '9')
	case 'D':
		mask.setRange(0, '0'-1)
		mask.setRange('9'+1, 255)
	case 's':
		mask.set(' ')
	case 'S':
		mask.setRange(0, ' '-1)
		mask.setRange(' '+1, 255)
	case '\\', '.', '[', ']', '(', ')':
		mask.set(c)
	default:
		return mask, p.err("unrecognized escape %q", c)
	}
	return mask, nil
}

// parseSet parses the contents of a character class after the leading '['
// has been consumed, up to and including the closing ']'.
func (p *parser) parseSet() (bitset256, error) {
	var mask bitset256

	negate := p.eat('^')

	if err := p.parseSetElem(&mask); err != nil {
		return mask, err
	}
	for !p.eat(']') {
		if !p.notEnd() {
			return mask, p.err("unclosed character class")
		}
		if err := p.parseSetElem(&mask); err != nil {
			return mask, err
		}
	}

	if negate {
		mask.negate()
	}
	return mask, nil
}

// parseSetElem parses one element of a character class: an escape, the
// wildcard, or a literal byte optionally starting an a-b range.
func (p *parser) parseSetElem(mask *bitset256) error {
	if p.eat('\\') {
		escMask, err := p.parseEscape()
		if err != nil {
			return err
		}
		for i := range mask {
			mask[i] |= escMask[i]
		}
		return nil
	}
	if p.eat('.') {
		mask.setRange(0, '\n'-1)
		mask.setRange('\n'+1, 255)
		return nil
	}

	c, err := p.parseSetChar()
	if err != nil {
		return err
	}
	if p.eat('-') {
		hi, err := p.parseSetChar()
		if err != nil {
			return err
		}
		if hi < c {
			return p.err("invalid range %q-%q", c, hi)
		}
		mask.setRange(c, hi)
		return nil
	}
	mask.set(c)
	return nil
}

// parseSetChar parses a single literal byte inside a character class; only
// ']' and '\' are special there (and a trailing, unescaped '\' is a syntax
// error, same as elsewhere).
func (p *parser) parseSetChar() (byte, error) {
	c, ok := p.peek()
	if !ok || c == ']' {
		return 0, p.err("unclosed character class")
	}
	if c == '\\' {
		return 0, p.err("unescaped metacharacter %q", c)
	}
	p.pos++
	return c, nil
}
