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
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slices"
)

// graphviz accumulates the node/edge statements of a dot-language graph,
// sorting each bucket before emission so output is stable across runs.
type graphviz struct {
	nodes vectorT[string]
	edges vectorT[string]
}

func (g *graphviz) addNode(id Index, start, accept bool) {
	switch {
	case accept && start:
		g.nodes.pushBack(fmt.Sprintf("\ts%d [shape=doubleoctagon]; #start;accept\n", id))
	case accept:
		g.nodes.pushBack(fmt.Sprintf("\ts%d [shape=doublecircle];\n", id))
	case start:
		g.nodes.pushBack(fmt.Sprintf("\ts%d [shape=octagon]; #start\n", id))
	default:
		g.nodes.pushBack(fmt.Sprintf("\ts%d [shape=ellipse];\n", id))
	}
}

func (g *graphviz) addEdge(from, to Index, label string) {
	g.edges.pushBack(fmt.Sprintf("\ts%d -> s%d [label=%q];\n", from, to, label))
}

func (g *graphviz) dotContent(dst io.Writer, graphName, graphTitle string) error {
	if _, err := fmt.Fprintf(dst, "digraph %s {\n\trankdir=LR;\n", graphName); err != nil {
		return err
	}
	slices.Sort(g.nodes)
	for _, s := range g.nodes {
		if _, err := fmt.Fprint(dst, s); err != nil {
			return err
		}
	}
	slices.Sort(g.edges)
	for _, s := range g.edges {
		if _, err := fmt.Fprint(dst, s); err != nil {
			return err
		}
	}
	graphTitle = strings.ReplaceAll(graphTitle, `\`, `\\`)
	_, err := fmt.Fprintf(dst, "\tlabelloc=\"t\";\n\tlabel=\"%s: %s\";\n}\n", graphName, graphTitle)
	return err
}

// WriteDot renders the compiled pattern's automaton as a Graphviz dot
// file, decoding the opcode array block-by-block rather than keeping the
// pre-encode Automaton around. Patterns come only from Compile; there is
// no way to load one back from a previously-written f=FILE array.
func (p *Pattern) WriteDot(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("writing graph to %s: %w", filename, err)
	}
	defer f.Close()

	g := &graphviz{}
	blocks := blockStarts(p.code)
	for bi, start := range blocks {
		accept := false
		i := int(start)
		for i < len(p.code) && !p.code[i].IsHalt() {
			if p.code[i].IsTake() {
				accept = true
			}
			i++
		}
		g.addNode(Index(bi), bi == 0, accept)

		i = int(start)
		for i < len(p.code) && !p.code[i].IsHalt() {
			op := p.code[i]
			if !op.IsTake() && !op.IsHead() && !op.IsTail() {
				target := blockIndex(blocks, op.IndexOf())
				label := fmt.Sprintf("%s-%s", op.LoOf(), op.HiOf())
				g.addEdge(Index(bi), Index(target), label)
			}
			i++
		}
	}
	name := p.opt.Name
	if name == "" {
		name = "pattern"
	}
	return g.dotContent(f, name, p.source)
}

func blockStarts(code []Opcode) []Index {
	var starts []Index
	starts = append(starts, 0)
	for i, op := range code {
		if op.IsHalt() && i+1 < len(code) {
			starts = append(starts, Index(i+1))
		}
	}
	return starts
}

func blockIndex(blocks []Index, offset Index) int {
	for i, b := range blocks {
		if b == offset {
			return i
		}
	}
	return -1
}
