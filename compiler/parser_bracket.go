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

// posixClasses maps a POSIX bracket-class name ([[:name:]]) to its byte
// range set, ported from the customary ASCII definitions reflex's
// lexer-generator compatibility mode uses.
var posixClasses = map[string]func() Chars{
	"alpha": func() Chars {
		var c Chars
		c.AddRange('A', 'Z')
		c.AddRange('a', 'z')
		return c
	},
	"digit": func() Chars {
		var c Chars
		c.AddRange('0', '9')
		return c
	},
	"alnum": func() Chars {
		var c Chars
		c.AddRange('0', '9')
		c.AddRange('A', 'Z')
		c.AddRange('a', 'z')
		return c
	},
	"upper": func() Chars {
		var c Chars
		c.AddRange('A', 'Z')
		return c
	},
	"lower": func() Chars {
		var c Chars
		c.AddRange('a', 'z')
		return c
	},
	"space": func() Chars {
		var c Chars
		c.Add(' ')
		c.Add('\t')
		c.Add('\n')
		c.Add('\r')
		c.Add('\f')
		c.Add('\v')
		return c
	},
	"blank": func() Chars {
		var c Chars
		c.Add(' ')
		c.Add('\t')
		return c
	},
	"punct": func() Chars {
		var c Chars
		for _, r := range "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" {
			c.Add(Char(r))
		}
		return c
	},
	"cntrl": func() Chars {
		var c Chars
		c.AddRange(0, 0x1f)
		c.Add(0x7f)
		return c
	},
	"print": func() Chars {
		var c Chars
		c.AddRange(0x20, 0x7e)
		return c
	},
	"graph": func() Chars {
		var c Chars
		c.AddRange(0x21, 0x7e)
		return c
	},
	"xdigit": func() Chars {
		var c Chars
		c.AddRange('0', '9')
		c.AddRange('A', 'F')
		c.AddRange('a', 'f')
		return c
	},
}

// parseBracket parses a "[...]" bracket list: an optional leading '^'
// negation, then a sequence of single characters, a-z style ranges, and
// [:name:] POSIX classes, each possibly escaped unless opt.NoBracketEscapes
// is set. Under case-insensitive mode ASCII letters in the list are folded
// to include both cases before any negation is applied.
func (p *parser) parseBracket() (fragment, error) {
	start := p.pos
	p.advance() // '['
	negate := false
	if !p.eof() && p.cur() == '^' {
		negate = true
		p.advance()
	}

	var set Chars
	first := true
	for {
		if p.eof() {
			return fragment{}, p.listErr(start, "unterminated bracket list")
		}
		if p.cur() == ']' && !first {
			break
		}
		first = false

		if p.cur() == '[' && p.eqAt(p.pos+1, ":") {
			name, ok, err := p.tryParsePosixClass()
			if err != nil {
				return fragment{}, err
			}
			if ok {
				fn, known := posixClasses[name]
				if !known {
					return fragment{}, p.listErr(start, "unknown POSIX class [:%s:]", name)
				}
				set = set.Union(fn())
				continue
			}
		}

		lo, err := p.readBracketChar()
		if err != nil {
			return fragment{}, err
		}
		if !p.eof() && p.cur() == '-' && !p.eqAt(p.pos+1, "]") && int(p.pos+1) < len(p.rex) {
			p.advance() // '-'
			hi, err := p.readBracketChar()
			if err != nil {
				return fragment{}, err
			}
			if hi < lo {
				return fragment{}, p.listErr(start, "bracket range %s-%s out of order", Char(lo), Char(hi))
			}
			set.AddRange(lo, hi)
		} else {
			set.Add(lo)
		}
	}
	p.advance() // ']'

	if p.effIgnoreCase() {
		for c := Char('A'); c <= 'Z'; c++ {
			if set.Contains(c) || set.Contains(c+32) {
				set.Add(c)
				set.Add(c + 32)
			}
		}
	}
	if negate {
		var all Chars
		all.AddRange(0, 0xff)
		set = all.Subtract(set)
	}
	if set.Empty() {
		return fragment{}, p.listErr(start, "empty bracket list")
	}
	return p.leaf(start, set), nil
}

// readBracketChar reads one element of a bracket list: an escape (unless
// disabled) or a literal rune.
func (p *parser) readBracketChar() (Char, error) {
	start := p.pos
	if !p.opt.NoBracketEscapes && p.cur() == escapeRune(p.opt) {
		p.advance()
		if p.eof() {
			return 0, p.syntaxErr(start, "dangling escape in bracket list")
		}
		return p.readEscapedChar(start)
	}
	return Char(p.advance()), nil
}

// tryParsePosixClass attempts to parse "[:name:]" at the cursor (which is
// positioned at the opening '['). Returns ok=false, no error, if the text
// doesn't look like a POSIX class spelling, so the caller can fall back to
// treating '[' as a literal bracket member.
func (p *parser) tryParsePosixClass() (name string, ok bool, err error) {
	save := p.pos
	p.advance() // '['
	p.advance() // ':'
	nameStart := p.pos
	for !p.eof() && p.cur() != ':' {
		p.advance()
	}
	if p.eof() || !p.eqAt(p.pos, ":]") {
		p.pos = save
		return "", false, nil
	}
	name = string(p.rex[nameStart:p.pos])
	p.advance() // ':'
	p.advance() // ']'
	return name, true, nil
}
