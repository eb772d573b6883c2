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

func TestParseEscapeWordBoundaryMetas(t *testing.T) {
	cases := map[string]Char{
		`\b`: MetaNWB,
		`\B`: MetaNWE,
		`\<`: MetaBWB,
		`\>`: MetaEWB,
		`\A`: MetaBOB,
		`\Z`: MetaEOB,
		`\i`: MetaInd,
		`\j`: MetaDed,
	}
	for src, want := range cases {
		p := newParser(src, DefaultOption())
		frag, err := p.parse4()
		assert.NilError(t, err, src)
		assert.Equal(t, len(frag.first), 1, src)
		cs := p.charsOf.at(frag.first[0].Loc())
		assert.Equal(t, cs.Contains(want), true, src)
		assert.Equal(t, frag.nullable, true, src)
	}
}

func TestParseEscapeShorthandClasses(t *testing.T) {
	p := newParser(`\d`, DefaultOption())
	frag, err := p.parse4()
	assert.NilError(t, err)
	cs := p.charsOf.at(frag.first[0].Loc())
	assert.Equal(t, cs.Contains('5'), true)
	assert.Equal(t, cs.Contains('a'), false)
}

func TestParseEscapeNegatedShorthand(t *testing.T) {
	p := newParser(`\W`, DefaultOption())
	frag, err := p.parse4()
	assert.NilError(t, err)
	cs := p.charsOf.at(frag.first[0].Loc())
	assert.Equal(t, cs.Contains('_'), false)
	assert.Equal(t, cs.Contains('!'), true)
}

func TestParseEscapeNamedControlChars(t *testing.T) {
	cases := map[string]Char{
		`\n`: '\n',
		`\t`: '\t',
		`\r`: '\r',
	}
	for src, want := range cases {
		p := newParser(src, DefaultOption())
		frag, err := p.parse4()
		assert.NilError(t, err, src)
		cs := p.charsOf.at(frag.first[0].Loc())
		assert.Equal(t, cs.Contains(want), true, src)
	}
}

func TestParseEscapeHexByte(t *testing.T) {
	p := newParser(`\x41`, DefaultOption())
	frag, err := p.parse4()
	assert.NilError(t, err)
	cs := p.charsOf.at(frag.first[0].Loc())
	assert.Equal(t, cs.Contains('A'), true)
}

func TestParseEscapeHexBraced(t *testing.T) {
	p := newParser(`\x{41}`, DefaultOption())
	frag, err := p.parse4()
	assert.NilError(t, err)
	cs := p.charsOf.at(frag.first[0].Loc())
	assert.Equal(t, cs.Contains('A'), true)
}

func TestParseEscapeOctal(t *testing.T) {
	p := newParser(`\101`, DefaultOption())
	frag, err := p.parse4()
	assert.NilError(t, err)
	cs := p.charsOf.at(frag.first[0].Loc())
	assert.Equal(t, cs.Contains('A'), true)
}

func TestParseEscapeControlChar(t *testing.T) {
	p := newParser(`\cA`, DefaultOption())
	frag, err := p.parse4()
	assert.NilError(t, err)
	cs := p.charsOf.at(frag.first[0].Loc())
	assert.Equal(t, cs.Contains(Char(1)), true)
}

func TestParseEscapeDanglingAtEOF(t *testing.T) {
	p := newParser(`\`, DefaultOption())
	_, err := p.parse4()
	assert.ErrorContains(t, err, "dangling escape")
}

func TestParseEscapeUnterminatedBracedHex(t *testing.T) {
	p := newParser(`\x{41`, DefaultOption())
	_, err := p.parse4()
	assert.ErrorContains(t, err, "unterminated")
}
