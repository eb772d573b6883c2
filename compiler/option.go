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
	"strings"
)

// Option is the decoded form of a mode string. The option string parser
// is a thin adapter over this struct; callers that build options
// programmatically can skip ParseOptions entirely.
type Option struct {
	NoBracketEscapes bool   // b: disable escape sequences inside bracket lists
	Escape           rune   // e=C: escape character, 0 if escapes are disabled
	CodeFile         string // f=FILE: emit generated code to FILE after a successful compile
	IgnoreCase       bool   // i: case-insensitive
	Lex              bool   // l: lex mode, {name} macros and top-level '|'
	Multiline        bool   // m: ^/$ match around any \n
	Name             string // n=NAME: identifier for generated artifacts
	Quotation        bool   // q: enable "..." verbatim quotation
	Raise            bool   // r: raise syntax errors even where lenient parsing would apply
	DotAll           bool   // s: dotall, '.' matches \n
	WriteStderr      bool   // w: write error messages to stderr on failure
	FreeSpacing      bool   // x: free-spacing, unescaped whitespace ignored, '#' starts a comment

	// Minimize enables the optional Hopcroft-style DFA minimization pass.
	// Off by default: the subset constructor's own hash-keyed dedup is
	// usually sufficient and most callers don't need post-hoc state
	// merging.
	Minimize bool

	// Macros resolves {name} references when Lex is set. Populated by
	// the caller; the option string itself carries no macro bodies, only
	// the 'l' flag that turns on {name} syntax.
	Macros map[string]string
}

// DefaultOption returns the zero-value option set plus the one field that
// isn't a sane zero value: the default escape character.
func DefaultOption() Option {
	return Option{Escape: '\\'}
}

// ParseOptions decodes a semicolon/space-separated "name=value"/short-flag
// option string. Unknown options raise RegexSyntax.
func ParseOptions(s string) (Option, error) {
	opt := DefaultOption()
	for _, tok := range splitOptionTokens(s) {
		if tok == "" {
			continue
		}
		name, value, hasValue := cutOption(tok)
		switch name {
		case "b":
			opt.NoBracketEscapes = true
		case "e":
			if !hasValue || value == "" {
				opt.Escape = 0
			} else {
				r := []rune(value)
				if len(r) != 1 {
					return Option{}, newError(RegexSyntax, 0, s, "option e= expects a single character, got %q", value)
				}
				opt.Escape = r[0]
			}
		case "f":
			if !hasValue {
				return Option{}, newError(RegexSyntax, 0, s, "option f requires =FILE")
			}
			opt.CodeFile = value
		case "i":
			opt.IgnoreCase = true
		case "l":
			opt.Lex = true
		case "m":
			opt.Multiline = true
		case "n":
			if !hasValue {
				return Option{}, newError(RegexSyntax, 0, s, "option n requires =NAME")
			}
			opt.Name = value
		case "q":
			opt.Quotation = true
		case "r":
			opt.Raise = true
		case "s":
			opt.DotAll = true
		case "w":
			opt.WriteStderr = true
		case "x":
			opt.FreeSpacing = true
		default:
			return Option{}, newError(RegexSyntax, 0, s, "unknown option %q", tok)
		}
	}
	return opt, nil
}

// splitOptionTokens splits an option string on ';' and whitespace into
// individual "name=value" or short-flag tokens.
func splitOptionTokens(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t' || r == '\n'
	}) {
		out = append(out, part)
	}
	return out
}

func cutOption(tok string) (name, value string, hasValue bool) {
	if i := strings.IndexByte(tok, '='); i >= 0 {
		return tok[:i], tok[i+1:], true
	}
	return tok, "", false
}

// String renders the option record back into a canonical option string
// in the form ParseOptions reads. Minimize and Macros have no
// option-string form and are left out.
func (o Option) String() string {
	var b strings.Builder
	flag := func(set bool, c byte) {
		if set {
			if b.Len() > 0 {
				b.WriteByte(';')
			}
			b.WriteByte(c)
		}
	}
	flag(o.NoBracketEscapes, 'b')
	if o.Escape != '\\' {
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		if o.Escape == 0 {
			b.WriteString("e=")
		} else {
			fmt.Fprintf(&b, "e=%c", o.Escape)
		}
	}
	if o.CodeFile != "" {
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString("f=" + o.CodeFile)
	}
	flag(o.IgnoreCase, 'i')
	flag(o.Lex, 'l')
	flag(o.Multiline, 'm')
	if o.Name != "" {
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString("n=" + o.Name)
	}
	flag(o.Quotation, 'q')
	flag(o.Raise, 'r')
	flag(o.DotAll, 's')
	flag(o.WriteStderr, 'w')
	flag(o.FreeSpacing, 'x')
	return b.String()
}
