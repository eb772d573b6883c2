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
	"sort"

	"github.com/dchest/siphash"
)

// dfaState is one node of the automaton built by subset construction:
// the set of positions it represents (its identity), the
// character-range transitions out of it, and the bookkeeping the lazy/
// greedy and trailing-context passes (lazygreedy.go) annotate it with
// before compact.go and encode.go turn it into an Opcode block.
type dfaState struct {
	index     Index
	positions Positions
	moves     []stateMove

	accept  Index // 1-based sub-pattern index, 0 if this state doesn't accept
	redo    bool  // accept, but the match is provisional (governed by a lazy op not yet satisfied)
	anchors Positions

	headIDs []int // trailing-context regions whose X/Y join (start of Y) is at this state
	tailIDs []int // trailing-context regions whose Y-side ends at this state
}

// stateMove is a resolved (Chars, target state index) transition, the
// per-state edge list compact.go merges and encode.go turns into goto
// opcodes.
type stateMove struct {
	Chars  Chars
	Target Index
}

// Automaton is the subset-construction result: a numbered list of states,
// state 0 is always the start state.
type Automaton struct {
	States []*dfaState
}

// siphash key: fixed, arbitrary. State dedup only needs a stable,
// well-distributed fingerprint within one compilation; it is never
// persisted or compared across processes, so a constant key (rather
// than a random one) keeps compilation deterministic, which the test
// suite and golden-output comparisons rely on.
const (
	siphashK0 = 0x70617474_65726e30
	siphashK1 = 0x636f7265_6b657931
)

func fingerprint(ps Positions) uint64 {
	buf := make([]byte, 8*len(ps))
	for i, p := range ps {
		v := uint64(p)
		for b := 0; b < 8; b++ {
			buf[i*8+b] = byte(v >> (8 * b))
		}
	}
	return siphash.Hash(siphashK0, siphashK1, buf)
}

// buildAutomaton performs subset construction (Aho-Sethi-Ullman /
// "Dragon Book" algorithm 3.36) over the followpos table the parser
// built, using a siphash-keyed hash map for O(1) amortized dedup of
// already-seen position sets. acc is the parser's acc_ table (reachable
// alternatives), indexed by 0-based sub-pattern index; buildAutomaton
// marks acc[k] true for every sub-pattern k whose accept position turns
// up in some reachable state.
func buildAutomaton(startpos Positions, follow Follow, charsOf map[Location]Chars, acc []bool) (*Automaton, error) {
	dedup := map[uint64][]*dfaState{}
	var states []*dfaState

	lookup := func(ps Positions) (*dfaState, bool) {
		h := fingerprint(ps)
		for _, s := range dedup[h] {
			if positionsEqual(s.positions, ps) {
				return s, true
			}
		}
		return nil, false
	}

	intern := func(ps Positions) (*dfaState, bool) {
		if s, ok := lookup(ps); ok {
			return s, false
		}
		s := &dfaState{index: Index(len(states)), positions: ps}
		states = append(states, s)
		dedup[fingerprint(ps)] = append(dedup[fingerprint(ps)], s)
		return s, true
	}

	start, _ := intern(startpos)
	queue := []*dfaState{start}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		for _, p := range s.positions {
			if p.Accept() {
				idx := Index(p.Loc())
				if i := int(idx) - 1; i >= 0 && i < len(acc) {
					acc[i] = true
				}
				if s.accept == 0 || idx < s.accept {
					s.accept = idx
				}
			}
			if p.Anchor() {
				s.anchors.Add(p)
			}
		}

		moves := splitMoves(s.positions, charsOf, follow)
		for _, mv := range moves {
			target, isNew := intern(mv.Positions)
			s.moves = append(s.moves, stateMove{Chars: mv.Chars, Target: target.index})
			if isNew {
				queue = append(queue, target)
			}
		}
	}

	if len(states) > int(IMax)-1 {
		return nil, newError(CodeOverflow, 0, "", "automaton has %d states, exceeds the %d-state limit", len(states), int(IMax)-1)
	}
	return &Automaton{States: states}, nil
}

func positionsEqual(a, b Positions) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// splitMoves partitions the alphabet (bytes 0x00-0xff plus meta codes
// 0x100+) into elementary, non-overlapping ranges such that every
// position in ps agrees on which ranges it covers, then unions
// followpos over the positions active in each range — the classic
// position-set-splitting step of subset construction.
func splitMoves(ps Positions, charsOf map[Location]Chars, follow Follow) []Move {
	type boundary struct {
		at    Char
		delta int // +1 at a range start, -1 just past a range end
	}
	var bs []boundary
	ranges := map[Position][]charRange{}
	for _, p := range ps {
		if p.Accept() {
			continue
		}
		cs := charsOf[p.Loc()]
		rs := cs.Ranges()
		ranges[p] = rs
		for _, r := range rs {
			bs = append(bs, boundary{r.Lo, 1}, boundary{r.Hi + 1, -1})
		}
	}
	if len(bs) == 0 {
		return nil
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].at < bs[j].at })

	var moves []Move
	depth := 0
	i := 0
	for i < len(bs) {
		at := bs[i].at
		for i < len(bs) && bs[i].at == at {
			depth += bs[i].delta
			i++
		}
		if i >= len(bs) {
			break
		}
		hi := bs[i].at - 1
		if depth > 0 {
			var next Positions
			for _, p := range ps {
				if p.Accept() {
					continue
				}
				if rangesContain(ranges[p], at) {
					next.AddAll(follow.Of(p))
				}
			}
			if len(next) > 0 {
				var mc Chars
				mc.AddRange(at, hi)
				moves = append(moves, Move{Chars: mc, Positions: next})
			}
		}
	}
	return moves
}

func rangesContain(rs []charRange, c Char) bool {
	for _, r := range rs {
		if c >= r.Lo && c <= r.Hi {
			return true
		}
	}
	return false
}
