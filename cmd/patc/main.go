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

// Command patc compiles one or more regex patterns into opcode arrays,
// either from the command line or from a YAML batch file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/patterncore/patterncompiler/compiler"
)

var (
	dashOpt   string
	dashBatch string
	dashDot   string
	dashSize  bool
)

func init() {
	flag.StringVar(&dashOpt, "o", "", "option string passed to compiler.ParseOptions (e.g. \"i;m;n=foo\")")
	flag.StringVar(&dashBatch, "b", "", "YAML batch file of {name,regex,options} entries to compile")
	flag.StringVar(&dashDot, "g", "", "write a Graphviz .dot dump of the first compiled pattern to this file")
	flag.BoolVar(&dashSize, "s", false, "print opcode/state counts instead of the opcode array")
}

func main() {
	log.SetFlags(0)
	flag.Parse()

	var patterns []batchEntry
	if dashBatch != "" {
		loaded, err := loadBatch(dashBatch)
		if err != nil {
			log.Fatal(err)
		}
		patterns = loaded
	} else {
		if flag.NArg() != 1 {
			log.Fatal("usage: patc [-o opts] [-s] [-g out.dot] 'regex'  (or -b batch.yaml)")
		}
		patterns = []batchEntry{{Name: "main", Regex: flag.Arg(0), Options: dashOpt}}
	}

	for i, entry := range patterns {
		opt, err := compiler.ParseOptions(entry.Options)
		if err != nil {
			log.Fatalf("%s: %v", entry.Name, err)
		}
		if opt.Name == "" {
			opt.Name = entry.Name
		}

		pat, err := compiler.Compile(entry.Regex, opt)
		if err != nil {
			log.Fatalf("%s: %v", entry.Name, err)
		}

		if dashSize {
			fmt.Printf("%s: %d opcodes, %d states, %d subpatterns\n",
				entry.Name, pat.Size(), pat.Nodes(), pat.Subpatterns())
		} else {
			dumpCode(os.Stdout, entry.Name, pat)
		}

		if i == 0 && dashDot != "" {
			if err := pat.WriteDot(dashDot); err != nil {
				log.Fatal(err)
			}
		}
	}
}

func dumpCode(w *os.File, name string, pat *compiler.Pattern) {
	fmt.Fprintf(w, "%s:\n", name)
	for i, op := range pat.Code() {
		fmt.Fprintf(w, "  %4d: 0x%08x\n", i, uint32(op))
	}
}
