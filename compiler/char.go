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
)

// Char is an integer character code covering 0x00-0xFF plus a meta range
// starting at MetaMin. The ordering of the Meta* constants is observable:
// it defines the meta-opcode encoding offsets (Opcode.MetaOf/LoOf/HiOf).
type Char int32

// Location is an index into the regex source string.
type Location int32

const (
	// MetaMin is the first meta code; codes below it are literal bytes.
	MetaMin Char = 0x100

	MetaNWB Char = 0x101 // non-word at begin,      `\Bx`
	MetaNWE Char = 0x102 // non-word at end,        `x\B`
	MetaBWB Char = 0x103 // begin-of-word at begin, `\<x`
	MetaEWB Char = 0x104 // end-of-word at begin,   `\>x`
	MetaBWE Char = 0x105 // begin-of-word at end,   `x\<`
	MetaEWE Char = 0x106 // end-of-word at end,     `x\>`
	MetaBOL Char = 0x107 // begin-of-line,          `^`
	MetaEOL Char = 0x108 // end-of-line,            `$`
	MetaBOB Char = 0x109 // begin-of-buffer,        `\A`
	MetaEOB Char = 0x10a // end-of-buffer,          `\Z`
	MetaInd Char = 0x10b // indent boundary,        `\i`
	MetaDed Char = 0x10c // dedent boundary,        `\j` (must be the largest meta code)

	// MetaMax is one past the largest defined meta code.
	MetaMax Char = MetaDed + 1
)

// IsMeta reports whether c is a synthetic boundary code rather than a
// literal byte value.
func IsMeta(c Char) bool {
	return c >= MetaMin
}

var metaNames = map[Char]string{
	MetaNWB: `\B(begin)`, MetaNWE: `\B(end)`,
	MetaBWB: `\<(begin)`, MetaEWB: `\>(begin)`,
	MetaBWE: `\<(end)`, MetaEWE: `\>(end)`,
	MetaBOL: "^", MetaEOL: "$",
	MetaBOB: `\A`, MetaEOB: `\Z`,
	MetaInd: `\i`, MetaDed: `\j`,
}

func (c Char) String() string {
	if IsMeta(c) {
		if n, ok := metaNames[c]; ok {
			return n
		}
		return fmt.Sprintf("<meta 0x%x>", int32(c))
	}
	if c >= 0x20 && c < 0x7f {
		return fmt.Sprintf("%q", byte(c))[1:2]
	}
	return fmt.Sprintf("0x%02x", int32(c))
}

// charRange is an inclusive [Lo,Hi] range of Char values. Chars.AddRange
// merges adjacent ranges without regard to MetaMin (0xff and MetaMin in one
// set become a single range); compactMoves is what keeps byte and meta
// edges apart when it merges moves.
type charRange struct {
	Lo, Hi Char
}

// Chars is a set of Char values, represented as a sorted list of disjoint,
// non-adjacent inclusive ranges — the "range-set over wide chars"
// representation the data model allows implementers to expose. Bytes
// (0x00-0xFF) and metas (>=0x100) are both stored this way; since there
// are only a handful of meta codes, range-set overhead for them is
// negligible and a single representation keeps the transition/compaction
// code (§4.3, §4.4) simple.
type Chars struct {
	ranges []charRange
}

// NewChars returns an empty character set.
func NewChars() Chars {
	return Chars{}
}

// CharsOf returns a Chars set containing exactly the given single chars.
func CharsOf(cs ...Char) Chars {
	var c Chars
	for _, x := range cs {
		c.AddRange(x, x)
	}
	return c
}

// AddRange adds the inclusive range [lo,hi] to the set, merging with any
// overlapping or adjacent existing ranges.
func (c *Chars) AddRange(lo, hi Char) {
	if lo > hi {
		return
	}
	merged := charRange{lo, hi}
	out := make([]charRange, 0, len(c.ranges)+1)
	inserted := false
	for _, r := range c.ranges {
		if r.Hi+1 < merged.Lo || merged.Hi+1 < r.Lo {
			// disjoint and non-adjacent
			if !inserted && r.Lo > merged.Hi {
				out = append(out, merged)
				inserted = true
			}
			out = append(out, r)
			continue
		}
		// overlapping or adjacent: absorb into merged
		if r.Lo < merged.Lo {
			merged.Lo = r.Lo
		}
		if r.Hi > merged.Hi {
			merged.Hi = r.Hi
		}
	}
	if !inserted {
		out = append(out, merged)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })
	c.ranges = out
}

// Add adds a single char to the set.
func (c *Chars) Add(ch Char) {
	c.AddRange(ch, ch)
}

// Union returns the union of c and other as a new set.
func (c Chars) Union(other Chars) Chars {
	result := Chars{ranges: append([]charRange{}, c.ranges...)}
	for _, r := range other.ranges {
		result.AddRange(r.Lo, r.Hi)
	}
	return result
}

// Intersect returns the intersection of c and other.
func (c Chars) Intersect(other Chars) Chars {
	var result Chars
	for _, a := range c.ranges {
		for _, b := range other.ranges {
			lo, hi := maxChar(a.Lo, b.Lo), minChar(a.Hi, b.Hi)
			if lo <= hi {
				result.AddRange(lo, hi)
			}
		}
	}
	return result
}

// Subtract returns c with every char in other removed.
func (c Chars) Subtract(other Chars) Chars {
	result := Chars{}
	for _, a := range c.ranges {
		pieces := []charRange{a}
		for _, b := range other.ranges {
			var next []charRange
			for _, p := range pieces {
				next = append(next, subtractRange(p, b)...)
			}
			pieces = next
		}
		for _, p := range pieces {
			result.AddRange(p.Lo, p.Hi)
		}
	}
	return result
}

func subtractRange(a, b charRange) []charRange {
	if b.Hi < a.Lo || b.Lo > a.Hi {
		return []charRange{a}
	}
	var out []charRange
	if a.Lo < b.Lo {
		out = append(out, charRange{a.Lo, b.Lo - 1})
	}
	if a.Hi > b.Hi {
		out = append(out, charRange{b.Hi + 1, a.Hi})
	}
	return out
}

// Contains reports whether ch is a member of the set.
func (c Chars) Contains(ch Char) bool {
	for _, r := range c.ranges {
		if ch >= r.Lo && ch <= r.Hi {
			return true
		}
		if ch < r.Lo {
			break
		}
	}
	return false
}

// Empty reports whether the set has no members.
func (c Chars) Empty() bool {
	return len(c.ranges) == 0
}

// Ranges returns the ordered, disjoint, non-adjacent half-open[by
// convention inclusive] ranges making up the set, for enumeration by the
// subset constructor and encoder.
func (c Chars) Ranges() []charRange {
	return c.ranges
}

func minChar(a, b Char) Char {
	if a < b {
		return a
	}
	return b
}

func maxChar(a, b Char) Char {
	if a > b {
		return a
	}
	return b
}
