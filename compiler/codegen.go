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
	"bufio"
	"fmt"
	"os"
)

// WriteCode writes the compiled opcode array to filename as a Go source
// file in package patterns declaring a single []uint32 variable named
// <Name>Code (PatternCode when Option.Name is empty), so a generated lexer/matcher
// can embed a pattern compiled ahead of time instead of calling Compile at
// startup.
func (p *Pattern) WriteCode(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("writing compiled code to %s: %w", filename, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	name := p.opt.Name
	if name == "" {
		name = "Pattern"
	}
	fmt.Fprintf(w, "// Code generated from %q; do not edit.\n\n", p.source)
	fmt.Fprintf(w, "package patterns\n\n")
	fmt.Fprintf(w, "var %sCode = []uint32{\n", name)
	for i, op := range p.code {
		if i%8 == 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprintf(w, "0x%08x, ", uint32(op))
		if i%8 == 7 {
			fmt.Fprint(w, "\n")
		}
	}
	if len(p.code)%8 != 0 {
		fmt.Fprint(w, "\n")
	}
	fmt.Fprint(w, "}\n")
	return w.Flush()
}
