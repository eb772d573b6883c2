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

// encode lays the automaton out as a flat Opcode array: each state
// becomes a contiguous block of
//
//	[tail markers] [head markers] [take/redo if accepting] [goto edges] [halt]
//
// Two passes are required because a goto's target field holds the
// target state's block offset, which isn't known until every earlier
// block's size has been fixed.
func encode(a *Automaton) ([]Opcode, error) {
	offsets := make([]Index, len(a.States))
	var total int
	for i, s := range a.States {
		if total > int(IMax)-1 {
			return nil, newError(CodeOverflow, 0, "", "compiled pattern exceeds %d opcodes", IMax)
		}
		offsets[i] = Index(total)
		total += blockSize(s)
	}
	if total > int(IMax)-1 {
		return nil, newError(CodeOverflow, 0, "", "compiled pattern exceeds %d opcodes", IMax)
	}

	code := make([]Opcode, 0, total)
	for _, s := range a.States {
		for _, id := range s.tailIDs {
			code = append(code, opcodeTail(Index(id)))
		}
		for _, id := range s.headIDs {
			code = append(code, opcodeHead(Index(id)))
		}
		if s.accept != 0 {
			if s.redo {
				code = append(code, opcodeRedo())
			} else {
				code = append(code, opcodeTake(s.accept))
			}
		}
		for _, m := range s.moves {
			target := offsets[m.Target]
			for _, r := range m.Chars.Ranges() {
				code = append(code, opcodeGoto(r.Lo, r.Hi, target))
			}
		}
		code = append(code, opcodeHalt())
	}
	return code, nil
}

func blockSize(s *dfaState) int {
	n := len(s.tailIDs) + len(s.headIDs) + 1 // +1 for the halt sentinel
	if s.accept != 0 {
		n++
	}
	for _, m := range s.moves {
		n += len(m.Chars.Ranges())
	}
	return n
}
