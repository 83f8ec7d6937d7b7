package lex

// Session is the mutable state of one run of a Lexer over one input buffer:
// the read position and the line/column the next token starts at. A Lexer is
// immutable and compiled once; a Session is cheap and disposable, created
// per input.
type Session struct {
	lx    *Lexer
	input []byte

	pos  int
	line int
	col  int

	// lastID is the id of the most recently returned token, or EOITokenID
	// before the first call to Next and after input is exhausted.
	lastID int
}

// EOITokenID is the id Next returns once the input is exhausted, matching
// the flat numbering's reserved end-of-input symbol 0.
const EOITokenID = 0

// NewSession begins lexing input from the start.
func (lx *Lexer) NewSession(input []byte) *Session {
	s := &Session{lx: lx}
	s.Reset(input)
	return s
}

// Reset rewinds the session to the start of a (possibly new) input buffer,
// without recompiling the Lexer.
func (s *Session) Reset(input []byte) {
	s.input = input
	s.pos = 0
	s.line = 1
	s.col = 1
	s.lastID = EOITokenID
}

// Pos returns the current byte offset into the input.
func (s *Session) Pos() int { return s.pos }

// Line returns the 1-indexed line the next token will start at.
func (s *Session) Line() int { return s.line }

// Col returns the 1-indexed column the next token will start at.
func (s *Session) Col() int { return s.col }

// LastID returns the id most recently returned by Next.
func (s *Session) LastID() int { return s.lastID }

// Next performs one lexing step: it finds the longest prefix of the
// remaining input matched by any pattern (ties broken toward the
// lowest-indexed pattern), advances past it, and returns the pattern's
// token id (FirstTokenID + pattern index), the matched lexeme, and the
// line/column the lexeme started at.
//
// A pattern match of zero length is treated the same as no match at all: it
// would never consume input and would loop forever, so Next instead falls
// back to emitting the single next raw byte as its own token, with id equal
// to the byte's value. This is always possible for non-empty remaining
// input, since the flat numbering reserves [1,firstTokenID) for raw bytes.
//
// Once the input is exhausted, Next returns (EOITokenID, nil, line, col)
// on every subsequent call.
func (s *Session) Next() (id int, lexeme []byte, line, col int) {
	line, col = s.line, s.col

	if s.pos >= len(s.input) {
		s.lastID = EOITokenID
		return EOITokenID, nil, line, col
	}

	n, patID, ok := s.lx.prog.MatchID(s.input[s.pos:])
	if ok && n > 0 {
		id = s.lx.firstTokenID + patID
	} else {
		n, patID = 1, -1
		id = int(s.input[s.pos])
	}

	lexeme = s.input[s.pos : s.pos+n]

	newline := patID >= 0 && s.lx.newline[patID]
	if newline {
		s.line++
		s.col = 1
	} else {
		s.col += n
	}
	s.pos += n
	s.lastID = id

	return id, lexeme, line, col
}
