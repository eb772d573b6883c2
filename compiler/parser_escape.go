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

// parseEscape parses a backslash escape outside a bracket list: the word
// and buffer anchors \A \Z \b \B \< \>, the indent/dedent boundaries \i \j,
// a character class shorthand \d \D \w \W \s \S, or a single escaped
// character (control, octal, hex, or literal).
func (p *parser) parseEscape() (fragment, error) {
	start := p.pos
	p.advance() // consume escape rune
	if p.eof() {
		return fragment{}, p.syntaxErr(start, "dangling escape at end of pattern")
	}
	r := p.cur()
	switch r {
	case 'A':
		p.advance()
		return p.metaLeafAnchored(MetaBOB), nil
	case 'Z':
		p.advance()
		return p.metaLeaf(MetaEOB), nil
	case 'b':
		p.advance()
		return p.metaLeaf(MetaNWB), nil
	case 'B':
		p.advance()
		return p.metaLeaf(MetaNWE), nil
	case '<':
		p.advance()
		return p.metaLeaf(MetaBWB), nil
	case '>':
		p.advance()
		return p.metaLeaf(MetaEWB), nil
	case 'i':
		p.advance()
		return p.metaLeaf(MetaInd), nil
	case 'j':
		p.advance()
		return p.metaLeaf(MetaDed), nil
	case 'd', 'D', 'w', 'W', 's', 'S':
		p.advance()
		return p.leaf(start, classShorthand(r)), nil
	default:
		c, err := p.readEscapedChar(start)
		if err != nil {
			return fragment{}, err
		}
		return p.literalFragment(c), nil
	}
}

// classShorthand returns the byte-range Chars set for a \d\D\w\W\s\S
// shorthand class.
func classShorthand(r rune) Chars {
	var digits, word, space Chars
	digits.AddRange('0', '9')
	word.AddRange('0', '9')
	word.AddRange('A', 'Z')
	word.AddRange('a', 'z')
	word.Add('_')
	space.Add(' ')
	space.Add('\t')
	space.Add('\n')
	space.Add('\r')
	space.Add('\f')
	space.Add('\v')

	var all Chars
	all.AddRange(0, 0xff)

	switch r {
	case 'd':
		return digits
	case 'D':
		return all.Subtract(digits)
	case 'w':
		return word
	case 'W':
		return all.Subtract(word)
	case 's':
		return space
	case 'S':
		return all.Subtract(space)
	}
	return Chars{}
}

// readEscapedChar decodes a single escaped character: a named control
// escape (\n \t \r \f \v \a \e \0), a hex escape (\xHH or \x{H...}), an
// octal escape (\NNN, up to 3 octal digits), a \cX control-char escape,
// or — for anything else — the escaped character taken literally.
func (p *parser) readEscapedChar(start Location) (Char, error) {
	r := p.cur()
	switch r {
	case 'n':
		p.advance()
		return '\n', nil
	case 't':
		p.advance()
		return '\t', nil
	case 'r':
		p.advance()
		return '\r', nil
	case 'f':
		p.advance()
		return '\f', nil
	case 'v':
		p.advance()
		return '\v', nil
	case 'a':
		p.advance()
		return 0x07, nil
	case 'e':
		p.advance()
		return 0x1b, nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		digits := p.readUpTo(3, isOctalDigit)
		v, ok := decodeOct(digits)
		if !ok {
			return 0, p.rangeErr(start, "invalid octal escape")
		}
		return Char(v), nil
	case 'x':
		p.advance()
		if !p.eof() && p.cur() == '{' {
			p.advance()
			digits := p.readUpTo(6, isHexDigit)
			if p.eof() || p.cur() != '}' {
				return 0, p.syntaxErr(start, "unterminated \\x{...} escape")
			}
			p.advance()
			v, ok := decodeHex(digits)
			if !ok {
				return 0, p.rangeErr(start, "invalid hex escape")
			}
			return Char(v), nil
		}
		digits := p.readUpTo(2, isHexDigit)
		if digits == "" {
			return 0, p.syntaxErr(start, "invalid \\x escape")
		}
		v, ok := decodeHex(digits)
		if !ok {
			return 0, p.rangeErr(start, "invalid hex escape")
		}
		return Char(v), nil
	case 'c':
		p.advance()
		if p.eof() {
			return 0, p.syntaxErr(start, "dangling \\c control escape")
		}
		ctl := p.advance()
		return Char(ctl & 0x1f), nil
	default:
		return Char(p.advance()), nil
	}
}

func (p *parser) readUpTo(n int, pred func(rune) bool) string {
	start := p.pos
	for i := 0; i < n && !p.eof() && pred(p.cur()); i++ {
		p.advance()
	}
	return string(p.rex[start:p.pos])
}

func isOctalDigit(r rune) bool { return r >= '0' && r <= '7' }

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
