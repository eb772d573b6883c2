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

// resolveLazyGreedy walks every state of the automaton and decides,
// for states that both accept and still have outgoing moves, whether
// the accept is final (emit a take) or provisional and should prefer
// to keep matching (emit a redo).
//
// The rule this module applies: the positions still live in the state
// besides the accept marker are what would extend the match further.
// If any of them is governed by a lazy quantifier (Position.Lazy() !=
// 0), that extension is optional and disfavored, so the accept is
// final even though the state has other outgoing moves — a lazy '?' or
// '*' always prefers the shortest match. The synthetic accept position
// itself never carries a lazy tag (it's produced once per alternative
// in parseRegex, not through retagFragment), so the decision has to
// read the other live positions, not the accept marker. With no lazy
// continuation in play, a state only becomes a final take once it has
// no outgoing moves left; otherwise it's a redo — the engine keeps
// trying to extend before giving up and taking the shorter match.
func resolveLazyGreedy(a *Automaton) {
	for _, s := range a.States {
		if s.accept == 0 {
			continue
		}
		if len(s.moves) == 0 {
			s.redo = false
			continue
		}
		s.redo = !anyLazyContinuation(s.positions)
	}
}

// anyLazyContinuation reports whether any non-accept position in ps is
// governed by a lazy quantifier, in which case the state's accept
// should be taken immediately rather than extending the match further.
func anyLazyContinuation(ps Positions) bool {
	for _, p := range ps {
		if !p.Accept() && p.Lazy() != 0 {
			return true
		}
	}
	return false
}

// markLookaheads tags the DFA states at the boundary of each trailing
// context X/Y region with head/tail ids, so encode.go can emit the
// opcode_head/opcode_tail markers the runtime uses to reset/commit the
// match length at the X/Y join.
func markLookaheads(a *Automaton, lookaheads []lookaheadScope) {
	if len(lookaheads) == 0 {
		return
	}
	for _, s := range a.States {
		for _, p := range s.positions {
			for _, scope := range lookaheads {
				switch p.Loc() {
				case scope.headLoc:
					s.headIDs = append(s.headIDs, scope.id)
				case scope.tailLoc:
					s.tailIDs = append(s.tailIDs, scope.id)
				}
			}
		}
	}
}
