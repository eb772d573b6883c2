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
	"fmt"
	"sort"

	"golang.org/x/exp/slices"
)

// Position is a 64-bit packed value identifying a leaf of the regex
// syntax tree, carrying the bookkeeping subset construction needs to
// compose DFA states from sets of positions. The bit layout is preserved
// exactly per the data model: it serves as the canonical ordering key for
// position-set identity (and therefore for DFA state deduplication), so
// changing it changes which states compare equal.
//
//	bits 0-15:  loc     (source location; doubles as accept index)
//	bits 16-31: iter    (bounded-repetition unrolling counter)
//	bit 44:     ticked  (tail side of a trailing-context X/Y)
//	bit 45:     greedy
//	bit 46:     anchor  (only live right at a '^'/'\A' match start)
//	bit 47:     accept  (loc carries the sub-pattern index)
//	bits 48-63: lazy    (source location of the governing lazy '?', 0 if none)
type Position uint64

const (
	posLocShift    = 0
	posLocMask     = 0xffff
	posIterShift   = 16
	posIterMask    = 0xffff
	posTickedBit   = 1 << 44
	posGreedyBit   = 1 << 45
	posAnchorBit   = 1 << 46
	posAcceptBit   = 1 << 47
	posLazyShift   = 48
	posLazyMask    = 0xffff
)

// NewPosition builds a Position from its fields.
func NewPosition(loc Location, iter uint16) Position {
	return Position(uint64(loc)&posLocMask) | Position(uint64(iter)&posIterMask)<<posIterShift
}

func (p Position) Loc() Location   { return Location(uint64(p) & posLocMask) }
func (p Position) Iter() uint16    { return uint16(uint64(p)>>posIterShift) & posIterMask }
func (p Position) Ticked() bool    { return p&posTickedBit != 0 }
func (p Position) Greedy() bool    { return p&posGreedyBit != 0 }
func (p Position) Anchor() bool    { return p&posAnchorBit != 0 }
func (p Position) Accept() bool    { return p&posAcceptBit != 0 }
func (p Position) Lazy() Location  { return Location(uint64(p)>>posLazyShift) & posLazyMask }

func (p Position) withTicked(v bool) Position { return setBit(p, posTickedBit, v) }
func (p Position) withGreedy(v bool) Position { return setBit(p, posGreedyBit, v) }
func (p Position) withAnchor(v bool) Position { return setBit(p, posAnchorBit, v) }
func (p Position) withAccept(v bool) Position { return setBit(p, posAcceptBit, v) }

func (p Position) withLazy(loc Location) Position {
	cleared := p &^ (Position(posLazyMask) << posLazyShift)
	return cleared | (Position(uint64(loc)&posLazyMask) << posLazyShift)
}

func (p Position) withLoc(loc Location) Position {
	cleared := p &^ Position(posLocMask)
	return cleared | Position(uint64(loc)&posLocMask)
}

func (p Position) withIter(iter uint16) Position {
	cleared := p &^ (Position(posIterMask) << posIterShift)
	return cleared | (Position(uint64(iter)&posIterMask) << posIterShift)
}

func setBit(p Position, bit Position, v bool) Position {
	if v {
		return p | bit
	}
	return p &^ bit
}

func (p Position) String() string {
	s := fmt.Sprintf("loc=%d", p.Loc())
	if p.Iter() != 0 {
		s += fmt.Sprintf(" iter=%d", p.Iter())
	}
	if p.Accept() {
		s += " accept"
	}
	if p.Anchor() {
		s += " anchor"
	}
	if p.Greedy() {
		s += " greedy"
	}
	if p.Ticked() {
		s += " ticked"
	}
	if p.Lazy() != 0 {
		s += fmt.Sprintf(" lazy@%d", p.Lazy())
	}
	return s
}

// Positions is an ordered set of Position values. Positions are totally
// ordered by their packed uint64 value, which is used as the canonical
// key for position-set comparison (and, via the siphash fingerprint in
// subset.go, for DFA state deduplication).
type Positions []Position

// NewPositions returns an empty, ordered position set.
func NewPositions() Positions { return nil }

// Add inserts p, keeping the slice sorted and deduplicated.
func (ps *Positions) Add(p Position) {
	i := sort.Search(len(*ps), func(i int) bool { return (*ps)[i] >= p })
	if i < len(*ps) && (*ps)[i] == p {
		return
	}
	*ps = slices.Insert(*ps, i, p)
}

// AddAll inserts every position of other into ps.
func (ps *Positions) AddAll(other Positions) {
	for _, p := range other {
		ps.Add(p)
	}
}

// Clone returns an independent copy.
func (ps Positions) Clone() Positions {
	return append(Positions{}, ps...)
}

// Contains reports whether p is a member.
func (ps Positions) Contains(p Position) bool {
	i := sort.Search(len(ps), func(i int) bool { return ps[i] >= p })
	return i < len(ps) && ps[i] == p
}

// Follow maps a Position to the set of positions that may immediately
// follow it in the regex's linearization (followpos, Aho-Sethi-Ullman).
type Follow map[Position]*Positions

// NewFollow returns an empty followpos table.
func NewFollow() Follow { return Follow{} }

// Add inserts q into followpos(p), creating the entry if necessary.
func (f Follow) Add(p Position, q Position) {
	set, ok := f[p]
	if !ok {
		set = &Positions{}
		f[p] = set
	}
	set.Add(q)
}

// AddAll inserts every position of qs into followpos(p).
func (f Follow) AddAll(p Position, qs Positions) {
	for _, q := range qs {
		f.Add(p, q)
	}
}

// Of returns followpos(p), or nil if p has no recorded successors.
func (f Follow) Of(p Position) Positions {
	if set, ok := f[p]; ok {
		return *set
	}
	return nil
}

// Move is a (Chars, Positions) pair: on any character in Chars, the DFA
// under construction transitions to the union of Positions.
type Move struct {
	Chars     Chars
	Positions Positions
}
