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

import "sort"

// compactMoves sorts each state's edges — meta-code ranges first, then
// byte ranges, ascending within each group — and merges any that are
// adjacent and share a target into a single edge, shrinking the opcode
// count before encode.go lays out the final array. Meta codes must come
// first within a block: encode.go emits a state's gotos in the order left
// here (after its tail/head/take markers), and meta-code gotos have to
// precede the byte-range gotos in a block.
func compactMoves(a *Automaton) {
	for _, s := range a.States {
		if len(s.moves) < 2 {
			continue
		}
		sort.Slice(s.moves, func(i, j int) bool {
			li, lj := s.moves[i].Chars.Ranges()[0].Lo, s.moves[j].Chars.Ranges()[0].Lo
			mi, mj := IsMeta(li), IsMeta(lj)
			if mi != mj {
				return mi
			}
			return li < lj
		})
		merged := s.moves[:1]
		for _, m := range s.moves[1:] {
			last := &merged[len(merged)-1]
			lr := last.Chars.Ranges()
			mr := m.Chars.Ranges()
			if last.Target == m.Target && len(lr) == 1 && len(mr) == 1 &&
				lr[0].Hi+1 == mr[0].Lo && IsMeta(lr[0].Hi) == IsMeta(mr[0].Lo) {
				last.Chars.AddRange(mr[0].Lo, mr[0].Hi)
				continue
			}
			merged = append(merged, m)
		}
		s.moves = merged
	}
}

// minimize runs a Hopcroft-style partition refinement over the automaton,
// merging states that are indistinguishable by any input: same accept
// class, same redo/lookahead tagging, and identical per-partition move
// signature. Gated by Option.Minimize (off by default, see option.go).
func minimize(a *Automaton) *Automaton {
	n := len(a.States)
	if n == 0 {
		return a
	}
	class := make([]int, n)
	sig := func(s *dfaState) [4]int {
		var hid, tid int
		for _, h := range s.headIDs {
			hid += h + 1
		}
		for _, t := range s.tailIDs {
			tid += t + 1
		}
		redo := 0
		if s.redo {
			redo = 1
		}
		return [4]int{int(s.accept), redo, hid, tid}
	}
	groups := map[[4]int][]int{}
	for i, s := range a.States {
		groups[sig(s)] = append(groups[sig(s)], i)
	}
	nextClass := 0
	for _, idxs := range groups {
		for _, i := range idxs {
			class[i] = nextClass
		}
		nextClass++
	}

	changed := true
	for changed {
		changed = false
		refine := map[string][]int{}
		for i, s := range a.States {
			c := class[i]
			key := string([]byte{byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24)}) + partitionKey(s, class)
			refine[key] = append(refine[key], i)
		}
		newClass := make([]int, n)
		next := 0
		for _, idxs := range refine {
			for _, i := range idxs {
				newClass[i] = next
			}
			next++
		}
		if next != numDistinct(class) {
			changed = true
		} else {
			for i := range class {
				if class[i] != newClass[i] {
					changed = true
					break
				}
			}
		}
		class = newClass
	}

	// Build the minimized automaton: one state per class, keeping the
	// lowest-indexed original state's metadata and start state. Classes
	// are renumbered in order of first appearance, so the start state's
	// class becomes state 0.
	renum := map[int]int{}
	for i, c := range class {
		if _, ok := renum[c]; !ok {
			renum[c] = len(renum)
		}
		class[i] = renum[c]
	}
	rep := make([]int, numDistinct(class))
	seen := make([]bool, len(rep))
	for i, c := range class {
		if !seen[c] {
			rep[c] = i
			seen[c] = true
		}
	}
	out := &Automaton{States: make([]*dfaState, len(rep))}
	for c, orig := range rep {
		src := a.States[orig]
		ns := &dfaState{
			index:   Index(c),
			accept:  src.accept,
			redo:    src.redo,
			headIDs: src.headIDs,
			tailIDs: src.tailIDs,
		}
		for _, m := range src.moves {
			ns.moves = append(ns.moves, stateMove{Chars: m.Chars, Target: Index(class[m.Target])})
		}
		out.States[c] = ns
	}
	return out
}

func partitionKey(s *dfaState, class []int) string {
	sig := make([]byte, 0, 8*len(s.moves))
	type edge struct {
		lo, hi int32
		target int
	}
	var edges []edge
	for _, m := range s.moves {
		for _, r := range m.Chars.Ranges() {
			edges = append(edges, edge{int32(r.Lo), int32(r.Hi), class[m.Target]})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].lo != edges[j].lo {
			return edges[i].lo < edges[j].lo
		}
		return edges[i].hi < edges[j].hi
	})
	for _, e := range edges {
		sig = append(sig, byte(e.lo), byte(e.lo>>8), byte(e.hi), byte(e.hi>>8),
			byte(e.target), byte(e.target>>8), byte(e.target>>16), byte(e.target>>24))
	}
	return string(sig)
}

func numDistinct(class []int) int {
	seen := map[int]bool{}
	for _, c := range class {
		seen[c] = true
	}
	return len(seen)
}
