package regex

// Match returns the length of the longest prefix of s matched by p, and
// true. If no prefix matches, it returns (0, false).
func (p *Prog) Match(s []byte) (int, bool) {
	res := p.run(s)
	if !res.ok {
		return 0, false
	}
	return res.length, true
}

// MatchID is Match plus the accept id recorded for the longest match. For
// a Prog composed from several patterns, that id is the index of the
// pattern that matched.
func (p *Prog) MatchID(s []byte) (length, id int, ok bool) {
	res := p.run(s)
	return res.length, res.id, res.ok
}

// Search tries Match at successive starting offsets into s and returns the
// first offset at which it succeeds, and true. If no offset matches, it
// returns (0, false).
func (p *Prog) Search(s []byte) (int, bool) {
	for i := 0; i <= len(s); i++ {
		if _, ok := p.Match(s[i:]); ok {
			return i, true
		}
	}
	return 0, false
}
