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

// Package utf8range generates a regex fragment matching the UTF-8
// encodings of every code point in a [lo,hi] range. The pattern
// compiler core (package compiler) treats a pattern's character classes
// as byte ranges; Expand is the bridge a caller uses to turn a Unicode
// code point range into the byte-range alternation the compiler expects,
// without baking UTF-8 awareness into the compiler itself.
package utf8range

import (
	"fmt"
	"strings"
)

var minUTF8Strict = [6]string{
	"\x00",
	"\xc2\x80",
	"\xe0\xa0\x80",
	"\xf0\x90\x80\x80",
	"\xf8\x88\x80\x80\x80",
	"\xfc\x84\x80\x80\x80\x80",
}

var minUTF8Lean = [6]string{
	"\x00",
	"\xc2\x80",
	"\xe0\x80\x80",
	"\xf0\x80\x80\x80",
	"\xf8\x80\x80\x80\x80",
	"\xfc\x80\x80\x80\x80\x80",
}

var maxUTF8 = [6]string{
	"\x7f",
	"\xdf\xbf",
	"\xef\xbf\xbf",
	"\xf7\xbf\xbf\xbf",
	"\xfb\xbf\xbf\xbf\xbf",
	"\xfd\xbf\xbf\xbf\xbf\xbf",
}

// encode converts a code point to its (possibly legacy 5/6-byte) UTF-8
// encoding, matching reflex's permissive encoder rather than the stricter
// 4-byte-max RFC 3629 form — the original spec's property tests exercise
// code points across the full legacy 31-bit UTF-8 range.
func encode(cp int64) []byte {
	switch {
	case cp < 0x80:
		return []byte{byte(cp)}
	case cp < 0x800:
		return []byte{
			byte(0xc0 | cp>>6),
			byte(0x80 | cp&0x3f),
		}
	case cp < 0x10000:
		return []byte{
			byte(0xe0 | cp>>12),
			byte(0x80 | (cp>>6)&0x3f),
			byte(0x80 | cp&0x3f),
		}
	case cp < 0x200000:
		return []byte{
			byte(0xf0 | cp>>18),
			byte(0x80 | (cp>>12)&0x3f),
			byte(0x80 | (cp>>6)&0x3f),
			byte(0x80 | cp&0x3f),
		}
	case cp < 0x4000000:
		return []byte{
			byte(0xf8 | cp>>24),
			byte(0x80 | (cp>>18)&0x3f),
			byte(0x80 | (cp>>12)&0x3f),
			byte(0x80 | (cp>>6)&0x3f),
			byte(0x80 | cp&0x3f),
		}
	default:
		return []byte{
			byte(0xfc | cp>>30),
			byte(0x80 | (cp>>24)&0x3f),
			byte(0x80 | (cp>>18)&0x3f),
			byte(0x80 | (cp>>12)&0x3f),
			byte(0x80 | (cp>>6)&0x3f),
			byte(0x80 | cp&0x3f),
		}
	}
}

func hex1(v byte, esc string) string {
	return fmt.Sprintf("%sx%02x", esc, v)
}

func hexR(a, b byte, esc string) string {
	if a == b {
		return hex1(a, esc)
	}
	return fmt.Sprintf("[%sx%02x-%sx%02x]", esc, a, esc, b)
}

// Expand returns a regex fragment matching the UTF-8 encodings of every
// code point in [a,b] (a>b is corrected to [a,a]). strict emits a regex
// that only matches well-formed UTF-8 continuation bytes (0x80-0xbf) for
// the "any trailing byte" case; the lean form uses '.' instead, matching
// any byte — faster to compile but not itself a UTF-8 validator. esc is
// the escape-sequence prefix to use for hex byte literals (e.g. `\`); if
// empty or longer than 3 bytes it defaults to `\`, mirroring reflex's own
// fallback.
func Expand(a, b rune, strict bool, esc string) string {
	if len(esc) == 0 || len(esc) > 3 {
		esc = `\`
	}
	if a < 0 {
		return hex1(0x80, esc) // undefined
	}
	if a > b {
		b = a
	}
	minUTF8 := minUTF8Lean
	if strict {
		minUTF8 = minUTF8Strict
	}

	any := "."
	if strict {
		any = hexR(0x80, 0xbf, esc)
	}

	at := encode(int64(a))
	bt := encode(int64(b))
	n := len(at)
	m := len(bt)

	var regex strings.Builder
	as := at
	for n <= m {
		var bs []byte
		if n < m {
			bs = []byte(maxUTF8[n-1])
		} else {
			bs = bt
		}

		i := 0
		for i < n && as[i] == bs[i] {
			regex.WriteString(hex1(as[i], esc))
			i++
		}

		l := false
		for k := i + 1; k < n && !l; k++ {
			if as[k] != 0x80 {
				l = true
			}
		}
		h := false
		for k := i + 1; k < n && !h; k++ {
			if bs[k] != 0xbf {
				h = true
			}
		}

		switch {
		case i+1 < n:
			j := i
			if i != 0 {
				regex.WriteString("(")
			}
			if l {
				p := 0
				regex.WriteString(hex1(as[i], esc))
				i++
				for i+1 < n {
					if as[i+1] == 0x80 {
						regex.WriteString(hexR(as[i], 0xbf, esc))
						i++
						for i < n && as[i] == 0x80 {
							regex.WriteString(any)
							i++
						}
					} else {
						if as[i] != 0xbf {
							p++
							regex.WriteString("(")
							regex.WriteString(hexR(as[i]+1, 0xbf, esc))
							for k := i + 1; k < n; k++ {
								regex.WriteString(any)
							}
							regex.WriteString("|")
						}
						regex.WriteString(hex1(as[i], esc))
						i++
					}
				}
				if i < n {
					regex.WriteString(hexR(as[i], 0xbf, esc))
				}
				for k := 0; k < p; k++ {
					regex.WriteString(")")
				}
				i = j
			}
			lo, hi := as[i], bs[i]
			if l {
				lo++
			}
			if h {
				hi--
			}
			if i+1 < n && lo <= hi {
				if l {
					regex.WriteString("|")
				}
				regex.WriteString(hexR(lo, hi, esc))
				for k := i + 1; k < n; k++ {
					regex.WriteString(any)
				}
			}
			if h {
				p := 0
				regex.WriteString("|")
				regex.WriteString(hex1(bs[i], esc))
				i++
				for i+1 < n {
					if bs[i+1] == 0xbf {
						regex.WriteString(hexR(0x80, bs[i], esc))
						i++
						for i < n && bs[i] == 0xbf {
							regex.WriteString(any)
							i++
						}
					} else {
						if bs[i] != 0x80 {
							p++
							regex.WriteString("(")
							regex.WriteString(hexR(0x80, bs[i]-1, esc))
							for k := i + 1; k < n; k++ {
								regex.WriteString(any)
							}
							regex.WriteString("|")
						}
						regex.WriteString(hex1(bs[i], esc))
						i++
					}
				}
				if i < n {
					regex.WriteString(hexR(0x80, bs[i], esc))
				}
				for k := 0; k < p; k++ {
					regex.WriteString(")")
				}
			}
			if j != 0 {
				regex.WriteString(")")
			}
		case i < n:
			regex.WriteString(hexR(as[i], bs[i], esc))
		}

		if n < m {
			as = []byte(minUTF8[n])
			regex.WriteString("|")
		}
		n++
	}
	return regex.String()
}
