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
	"testing"

	"gotest.tools/v3/assert"
)

func bracketChars(t *testing.T, src string, opt Option) Chars {
	t.Helper()
	p := newParser(src, opt)
	frag, err := p.parse4()
	assert.NilError(t, err)
	assert.Equal(t, len(frag.first), 1)
	return p.charsOf.at(frag.first[0].Loc())
}

func TestParseBracketRange(t *testing.T) {
	cs := bracketChars(t, "[a-z]", DefaultOption())
	assert.Equal(t, cs.Contains('a'), true)
	assert.Equal(t, cs.Contains('m'), true)
	assert.Equal(t, cs.Contains('z'), true)
	assert.Equal(t, cs.Contains('A'), false)
}

func TestParseBracketNegation(t *testing.T) {
	cs := bracketChars(t, "[^a-z]", DefaultOption())
	assert.Equal(t, cs.Contains('a'), false)
	assert.Equal(t, cs.Contains('A'), true)
}

func TestParseBracketPosixClass(t *testing.T) {
	cs := bracketChars(t, "[[:digit:]]", DefaultOption())
	assert.Equal(t, cs.Contains('5'), true)
	assert.Equal(t, cs.Contains('a'), false)
}

func TestParseBracketUnknownPosixClass(t *testing.T) {
	p := newParser("[[:bogus:]]", DefaultOption())
	_, err := p.parse4()
	assert.ErrorContains(t, err, "unknown POSIX class")
}

func TestParseBracketLeadingCaretLiteralWhenNotFirst(t *testing.T) {
	cs := bracketChars(t, "[a^]", DefaultOption())
	assert.Equal(t, cs.Contains('a'), true)
	assert.Equal(t, cs.Contains('^'), true)
}

func TestParseBracketRangeOutOfOrder(t *testing.T) {
	p := newParser("[z-a]", DefaultOption())
	_, err := p.parse4()
	assert.ErrorContains(t, err, "out of order")
}

func TestParseBracketUnterminated(t *testing.T) {
	p := newParser("[abc", DefaultOption())
	_, err := p.parse4()
	assert.ErrorContains(t, err, "unterminated")
}

func TestParseBracketEmptyNegatedFullIsRejected(t *testing.T) {
	p := newParser(`[^\x00-\xff]`, DefaultOption())
	_, err := p.parse4()
	assert.ErrorContains(t, err, "empty bracket list")
}

func TestParseBracketNoEscapesOption(t *testing.T) {
	cs := bracketChars(t, `[\n]`, Option{Escape: '\\', NoBracketEscapes: true})
	assert.Equal(t, cs.Contains('\\'), true)
	assert.Equal(t, cs.Contains('n'), true)
	assert.Equal(t, cs.Contains('\n'), false)
}
