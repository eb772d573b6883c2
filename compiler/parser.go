// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package compiler

import (
	"strconv"
)

// modScope records the half-open [from,to) source-location range a scoped
// modifier such as (?i:...) applies to.
type modScope struct {
	from, to Location
}

// lookaheadScope records a trailing-context X/Y boundary via a pair of
// zero-width marker positions: headLoc appears in the state reached
// right at the X/Y join (before any of Y is consumed), tailLoc in the
// state reached right after the last character of Y. Both markers carry
// an empty Chars set, so they never split the alphabet in
// splitMoves — they ride along in followpos purely as tags for
// markLookaheads to find.
type lookaheadScope struct {
	id      int
	headLoc Location
	tailLoc Location
}

// fragment is the synthesized-attribute bundle each of the four parse
// levels returns for the regex fragment it just consumed.
type fragment struct {
	first    Positions
	last     Positions
	nullable bool
}

// parser holds the mutable state threaded through parse1..parse4: the
// source, the followpos table under construction, the per-leaf character
// sets (the practical stand-in for reflex's "re-read rex_ at p.loc()"
// trick — see DESIGN.md, Position bit layout), modifier scopes, lookahead
// regions, and the running iteration counter for bounded-repetition
// unrolling.
type parser struct {
	opt Option
	rex []rune

	pos Location // current parse cursor, as a rune index into rex

	charsOf mapT[Location, Chars]
	follow  Follow

	lazypos  Positions
	modRanges map[rune][]modScope
	lookaheads []lookaheadScope
	nextLookaheadID int
	modes modeStack

	iter uint16 // next iteration tag to hand out for {n,m} unrolling

	starts []Location // location of each top-level alternative's first rune
	end    []Location // end_: location of each top-level alternative's terminator
	acc    []bool     // acc_: reachability per alternative, filled by the subset constructor

	nextSynthetic Location // allocator for synthetic (non-source) locations: accepts, metas without a source char
}

func newParser(regex string, opt Option) *parser {
	return &parser{
		opt:             opt,
		rex:             []rune(regex),
		charsOf:         newMapT[Location, Chars](),
		follow:          NewFollow(),
		modRanges:       map[rune][]modScope{},
		nextSynthetic:   1 << 15, // keep clear of real source offsets; loc is only 16 bits wide (posLocMask)
	}
}

func (p *parser) eof() bool { return int(p.pos) >= len(p.rex) }

func (p *parser) at(loc Location) rune {
	if int(loc) < 0 || int(loc) >= len(p.rex) {
		return 0
	}
	return p.rex[loc]
}

func (p *parser) cur() rune { return p.at(p.pos) }

func (p *parser) advance() rune {
	r := p.cur()
	p.pos++
	return r
}

func (p *parser) eqAt(loc Location, s string) bool {
	rs := []rune(s)
	for i, r := range rs {
		if p.at(loc+Location(i)) != r {
			return false
		}
	}
	return true
}

func (p *parser) syntaxErr(loc Location, format string, args ...any) error {
	return newError(RegexSyntax, loc, string(p.rex), format, args...)
}

func (p *parser) rangeErr(loc Location, format string, args ...any) error {
	return newError(RegexRange, loc, string(p.rex), format, args...)
}

func (p *parser) listErr(loc Location, format string, args ...any) error {
	return newError(RegexList, loc, string(p.rex), format, args...)
}

// newSyntheticLoc allocates a fresh location for a position that has no
// direct source character (an injected accept position, or a meta
// position synthesized without consuming an explicit escape).
func (p *parser) newSyntheticLoc() Location {
	p.nextSynthetic++
	return p.nextSynthetic
}

// leaf creates a new position at loc consuming the character set cs,
// wires it into charsOf, and returns the singleton {first,last} fragment
// for it (nullable=false, since every leaf here consumes exactly one
// input position; zero-width meta leaves are "nullable" in the sense
// that they don't advance the cursor, but for followpos purposes they
// still occupy exactly one position slot).
func (p *parser) leaf(loc Location, cs Chars) fragment {
	pos := NewPosition(loc, 0)
	p.charsOf[loc] = cs
	return fragment{first: Positions{pos}, last: Positions{pos}, nullable: false}
}

// metaLeaf creates a leaf position carrying a single meta boundary code;
// these are zero-width (nullable) since they never consume an input byte.
func (p *parser) metaLeaf(meta Char) fragment {
	loc := p.newSyntheticLoc()
	pos := NewPosition(loc, 0)
	p.charsOf[loc] = CharsOf(meta)
	return fragment{first: Positions{pos}, last: Positions{pos}, nullable: true}
}

// metaLeafAnchored is metaLeaf plus the anchor bit: it marks a position as
// only ever live in a state reachable at the start of the match, which is
// true of '^' (and '\A') leaves. subset.go collects these into each
// dfaState's anchors set as states are discovered.
func (p *parser) metaLeafAnchored(meta Char) fragment {
	frag := p.metaLeaf(meta)
	tagged := frag.first[0].withAnchor(true)
	frag.first[0] = tagged
	frag.last[0] = tagged
	return frag
}

// parseRegex is the top-level entry point: parse1 over the whole source,
// producing startpos/followpos/lookahead and the accept tables.
func (p *parser) parseRegex() (Positions, Follow, error) {
	altIndex := 1
	var startpos Positions

	for {
		altStart := p.pos
		frag, err := p.parse2()
		if err != nil {
			return nil, nil, err
		}
		// Each top-level alternative gets its own accept position,
		// carrying the 1-based sub-pattern index in Loc(): loc doubles
		// as accept-index when accept is set.
		acceptLoc := Location(altIndex)
		acceptPos := NewPosition(acceptLoc, 0).withAccept(true)
		for _, l := range frag.last {
			p.follow.Add(l, acceptPos)
		}
		if frag.nullable {
			startpos.AddAll(frag.first)
			startpos.Add(acceptPos)
		} else {
			startpos.AddAll(frag.first)
		}
		p.starts = append(p.starts, altStart)

		if p.eof() {
			p.end = append(p.end, p.pos)
			altIndex++
			break
		}
		if p.cur() == '|' {
			p.end = append(p.end, p.pos)
			p.advance()
			altIndex++
			continue
		}
		return nil, nil, p.syntaxErr(p.pos, "unexpected character %q", p.cur())
	}
	p.acc = make([]bool, altIndex-1)
	return startpos, p.follow, nil
}

// parse2 is concatenation: parse3 parse3 ...
func (p *parser) parse2() (fragment, error) {
	frag, err := p.parse3()
	if err != nil {
		return fragment{}, err
	}
	for !p.eof() && p.cur() != '|' && p.cur() != ')' {
		if p.opt.Lex && p.cur() == '|' {
			break
		}
		next, err := p.parse3()
		if err != nil {
			return fragment{}, err
		}
		for _, l := range frag.last {
			p.follow.AddAll(l, next.first)
		}
		if frag.nullable {
			frag.first = unionPositions(frag.first, next.first)
		}
		if next.nullable {
			frag.last = unionPositions(frag.last, next.last)
		} else {
			frag.last = next.last
		}
		frag.nullable = frag.nullable && next.nullable
	}
	return frag, nil
}

func unionPositions(a, b Positions) Positions {
	out := a.Clone()
	out.AddAll(b)
	return out
}

// parse3 is the quantified atom: atom, then an optional */+/?/{n,m}, then
// an optional trailing '?' marking the quantifier lazy.
func (p *parser) parse3() (fragment, error) {
	frag, err := p.parse4()
	if err != nil {
		return fragment{}, err
	}
	if p.eof() {
		return frag, nil
	}
	var min, max int
	hasQuant := true
	switch p.cur() {
	case '*':
		min, max = 0, -1
		p.advance()
	case '+':
		min, max = 1, -1
		p.advance()
	case '?':
		min, max = 0, 1
		p.advance()
	case '{':
		save := p.pos
		n, m, ok, err := p.tryParseBound()
		if err != nil {
			return fragment{}, err
		}
		if !ok {
			p.pos = save
			hasQuant = false
		} else {
			min, max = n, m
		}
	default:
		hasQuant = false
	}
	if !hasQuant {
		return frag, nil
	}

	lazy := false
	lazyLoc := p.pos
	if !p.eof() && p.cur() == '?' {
		lazy = true
		p.advance()
	}

	return p.unrollQuantifier(frag, min, max, lazy, lazyLoc)
}

// tryParseBound parses "{n}", "{n,}", "{n,m}" starting at '{'. Returns
// ok=false (without error) if the braces don't contain a well-formed
// bound, so the caller can treat '{' as a literal rather than reject
// questionable but unambiguous constructs.
func (p *parser) tryParseBound() (min, max int, ok bool, err error) {
	start := p.pos
	if p.cur() != '{' {
		return 0, 0, false, nil
	}
	p.advance()
	digits1 := p.readDigits()
	if digits1 == "" {
		if p.opt.Raise {
			return 0, 0, false, p.syntaxErr(start, "malformed {n,m} repetition")
		}
		return 0, 0, false, nil
	}
	n, convErr := strconv.Atoi(digits1)
	if convErr != nil {
		return 0, 0, false, p.rangeErr(start, "repetition count overflow")
	}
	m := n
	if !p.eof() && p.cur() == ',' {
		p.advance()
		digits2 := p.readDigits()
		if digits2 == "" {
			m = -1 // unbounded
		} else {
			m, convErr = strconv.Atoi(digits2)
			if convErr != nil {
				return 0, 0, false, p.rangeErr(start, "repetition count overflow")
			}
		}
	}
	if p.eof() || p.cur() != '}' {
		if p.opt.Raise {
			return 0, 0, false, p.syntaxErr(start, "missing '}' in repetition")
		}
		return 0, 0, false, nil
	}
	p.advance()
	if n > 255 || (m > 255) {
		return 0, 0, false, p.rangeErr(start, "repetition bound exceeds 255")
	}
	if m != -1 && n > m {
		return 0, 0, false, p.rangeErr(start, "repetition min %d exceeds max %d", n, m)
	}
	return n, m, true, nil
}

func (p *parser) readDigits() string {
	start := p.pos
	for !p.eof() && p.cur() >= '0' && p.cur() <= '9' {
		p.advance()
	}
	return string(p.rex[start:p.pos])
}

// unrollQuantifier expands {min,max} by unrolling the underlying fragment
// min times mandatorily, then either one optional copy chained with a
// self-loop (max == -1, i.e. unbounded) or (max-min) additional optional
// copies — each unrolled copy's positions get a fresh `iter` tag so they
// never collide with another unrolling's positions in the followpos
// table or in DFA state identity.
//
// The atom's source is parsed only once; each unrolled copy is made by
// retagFragment, which copies the atom's positions under fresh synthetic
// locations and carries over the followpos edges among them.
func (p *parser) unrollQuantifier(atomSrc fragment, min, max int, lazy bool, lazyLoc Location) (fragment, error) {
	if max == 0 {
		return fragment{nullable: true}, nil
	}

	tagged := func() fragment { return retagFragment(atomSrc, p.nextIter(), lazy, lazyLoc, p) }

	concat := func(a, b fragment) fragment {
		for _, l := range a.last {
			p.follow.AddAll(l, b.first)
		}
		var out fragment
		if a.nullable {
			out.first = unionPositions(a.first, b.first)
		} else {
			out.first = a.first
		}
		if b.nullable {
			out.last = unionPositions(a.last, b.last)
		} else {
			out.last = b.last
		}
		out.nullable = a.nullable && b.nullable
		return out
	}

	var result fragment
	have := false
	for i := 0; i < min; i++ {
		c := tagged()
		if !have {
			result, have = c, true
		} else {
			result = concat(result, c)
		}
	}

	switch {
	case max == -1:
		// One more copy, self-looped into a Kleene star, appended after
		// the mandatory copies (a{2,} == a a a*).
		star := tagged()
		for _, l := range star.last {
			p.follow.AddAll(l, star.first)
		}
		star.nullable = true
		if have {
			result = concat(result, star)
		} else {
			result = star
		}
	case max > min:
		extra := max - min
		var tail fragment
		haveTail := false
		for i := 0; i < extra; i++ {
			c := tagged()
			c.nullable = true
			if !haveTail {
				tail, haveTail = c, true
			} else {
				tail = concat(tail, c)
			}
		}
		if haveTail {
			if have {
				result = concat(result, tail)
			} else {
				result = tail
			}
		}
	}
	return result, nil
}

func (p *parser) nextIter() uint16 {
	p.iter++
	return p.iter
}

// retagFragment returns a copy of src whose positions carry iter instead
// of 0, re-registering their character sets under fresh synthetic
// locations (so distinct unrollings never alias the same followpos
// entry) and, when lazy is set, marking every position with the lazy
// operator's source location.
func retagFragment(src fragment, iter uint16, lazy bool, lazyLoc Location, p *parser) fragment {
	remap := map[Position]Position{}
	remapOne := func(old Position) Position {
		if np, ok := remap[old]; ok {
			return np
		}
		loc := old.Loc()
		newLoc := p.newSyntheticLoc()
		p.charsOf[newLoc] = p.charsOf.at(loc)
		np := old.withLoc(newLoc).withIter(iter)
		if lazy {
			np = np.withLazy(lazyLoc)
		} else {
			np = np.withGreedy(true)
		}
		remap[old] = np
		return np
	}

	var out fragment
	out.nullable = src.nullable
	for _, f := range src.first {
		out.first.Add(remapOne(f))
	}
	for _, l := range src.last {
		out.last.Add(remapOne(l))
	}
	// propagate followpos edges among the copied positions: for every
	// edge p->q recorded while parsing the original atom, add the
	// corresponding edge between the remapped copies. The atom's position
	// set isn't just src.first ∪ src.last — a concatenation like "abc"
	// has an interior position ('b') that is neither first nor last but
	// still needs its a->b and b->c edges carried into the unrolled copy,
	// so walk the followpos graph from src.first/src.last to discover it.
	all := closurePositions(unionPositions(src.first, src.last), p.follow)
	for _, from := range all {
		for _, to := range p.follow.Of(from) {
			nf, okf := remap[from]
			if !okf {
				nf = remapOne(from)
			}
			nt, okt := remap[to]
			if !okt {
				nt = remapOne(to)
			}
			p.follow.Add(nf, nt)
		}
	}
	return out
}

// closurePositions returns every position reachable from start by
// following followpos edges forward, including start itself.
func closurePositions(start Positions, follow Follow) Positions {
	seen := start.Clone()
	queue := append(Positions{}, start...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range follow.Of(cur) {
			if !seen.Contains(next) {
				seen.Add(next)
				queue = append(queue, next)
			}
		}
	}
	return seen
}
