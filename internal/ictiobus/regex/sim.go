package regex

// Prog is a compiled, immutable NFA ready for simulation. It may have more
// than one accept id if it was built by composing multiple patterns (see the
// lex package); a standalone Compile result always has exactly one, id 0.
type Prog struct {
	states []state
	start  int
}

// listTracker prevents a state from being added to a work set more than
// once within the same simulation step, per spec's "a per-iteration list id
// per NFA state".
type listTracker struct {
	listID []int
	cur    int
}

func newListTracker(n int) *listTracker {
	return &listTracker{listID: make([]int, n)}
}

func (lt *listTracker) reset() {
	lt.cur++
}

func (lt *listTracker) seen(s int) bool {
	if lt.listID[s] == lt.cur {
		return true
	}
	lt.listID[s] = lt.cur
	return false
}

// addClosure pushes s and every state reachable from it by epsilon edges
// onto set, recording any accepting state visited along the way via record.
// Traversal order is eps1 before eps2, which the lexer composition relies on
// to keep earlier-declared patterns visited before later ones.
func (p *Prog) addClosure(s int, set *[]int, lt *listTracker, record func(stateID int)) {
	if lt.seen(s) {
		return
	}
	*set = append(*set, s)
	st := &p.states[s]
	if st.acceptID != noTarget {
		record(st.acceptID)
	}
	if st.eps1 != noTarget {
		p.addClosure(st.eps1, set, lt, record)
	}
	if st.eps2 != noTarget {
		p.addClosure(st.eps2, set, lt, record)
	}
}

// simResult carries the outcome of one run of the simulator: the length of
// input consumed by the longest match, and the accept id recorded at that
// position. ok is false if no accept was ever recorded.
type simResult struct {
	length    int
	id        int
	ok        bool
	tieLocked bool // whether id at length has already been claimed this position
}

// record considers one accept visited at input position pos. Maximal munch:
// a later position always wins. At equal position, only the first accept
// recorded wins (earliest pattern, by the traversal-order guarantee above).
func (res *simResult) record(pos, id int) {
	switch {
	case !res.ok || pos > res.length:
		res.length, res.id, res.ok, res.tieLocked = pos, id, true, true
	case pos == res.length && !res.tieLocked:
		res.id, res.tieLocked = id, true
	}
}

// run simulates the NFA starting at state p.start over s, implementing
// maximal munch: it keeps going after recording an accept, and returns the
// longest match found (ties broken toward the earlier pattern).
func (p *Prog) run(s []byte) simResult {
	lt := newListTracker(len(p.states))

	var current, next []int
	var res simResult
	res.id = noTarget

	lt.reset()
	p.addClosure(p.start, &current, lt, func(id int) { res.record(0, id) })

	pos := 0
	for len(current) > 0 && pos < len(s) {
		c := s[pos]
		lt.reset()
		next = next[:0]
		res.tieLocked = false

		for _, s0 := range current {
			st := &p.states[s0]
			if !st.mask.empty() && st.mask.test(c) && st.edge != noTarget {
				nextPos := pos + 1
				p.addClosure(st.edge, &next, lt, func(id int) { res.record(nextPos, id) })
			}
		}

		current, next = next, current
		pos++
	}

	return res
}
