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
	"os"
)

// Pattern is a compiled regex: an opcode array plus the bookkeeping
// needed to answer queries about it without re-running the pipeline.
type Pattern struct {
	source string
	opt    Option
	code   []Opcode
	nedges int // number of goto edges in the opcode array

	nsub   int        // number of top-level alternatives/subpatterns
	acc    []bool     // acc_: which sub-patterns are reachable as an accept
	starts []Location // source offset of the first rune of sub-pattern k
	ends   []Location // end_: source offset just past sub-pattern k

	anchoredStart bool // the start state contains at least one '^'/'\A'-governed position
}

// Compile runs the full pipeline — parse, subset-construct, resolve
// lazy/greedy and trailing-context, compact, encode — over regex under
// opt, producing a Pattern or an *Error.
func Compile(regex string, opt Option) (*Pattern, error) {
	p, err := compile(regex, opt)
	if err != nil {
		if opt.WriteStderr {
			fmt.Fprintln(os.Stderr, err)
		}
		return nil, err
	}
	if opt.CodeFile != "" {
		if err := p.WriteCode(opt.CodeFile); err != nil {
			if opt.WriteStderr {
				fmt.Fprintln(os.Stderr, err)
			}
			return nil, err
		}
	}
	return p, nil
}

func compile(regex string, opt Option) (*Pattern, error) {
	ps := newParser(regex, opt)
	startpos, follow, err := ps.parseRegex()
	if err != nil {
		return nil, err
	}

	auto, err := buildAutomaton(startpos, follow, ps.charsOf, ps.acc)
	if err != nil {
		return nil, err
	}
	// captured before minimize renumbers/discards states: state 0 is
	// always the start state coming out of buildAutomaton.
	anchoredStart := len(auto.States[0].anchors) > 0

	resolveLazyGreedy(auto)
	markLookaheads(auto, ps.lookaheads)
	compactMoves(auto)
	if opt.Minimize {
		auto = minimize(auto)
	}

	nedges := 0
	for _, s := range auto.States {
		nedges += len(s.moves)
	}

	code, err := encode(auto)
	if err != nil {
		return nil, err
	}

	return &Pattern{
		source:        regex,
		opt:           opt,
		code:          code,
		nedges:        nedges,
		nsub:          len(ps.acc),
		acc:           ps.acc,
		starts:        ps.starts,
		ends:          ps.end,
		anchoredStart: anchoredStart,
	}, nil
}

// Size returns the number of opcodes in the compiled pattern.
func (p *Pattern) Size() int { return len(p.code) }

// Code returns the compiled opcode array. The slice is owned by p and
// must not be modified.
func (p *Pattern) Code() []Opcode { return p.code }

// Source returns the regex text the pattern was compiled from.
func (p *Pattern) Source() string { return p.source }

// Option returns the option set the pattern was compiled with.
func (p *Pattern) Option() Option { return p.opt }

// Subpatterns returns the number of top-level '|'-separated alternatives
// (sub-patterns), each of which can independently accept.
func (p *Pattern) Subpatterns() int { return p.nsub }

// Nodes returns the number of DFA states encoded (one per opcode block
// terminated by a halt opcode).
func (p *Pattern) Nodes() int {
	n := 0
	for _, op := range p.code {
		if op.IsHalt() {
			n++
		}
	}
	return n
}

// Words returns the number of opcodes in the compiled pattern.
func (p *Pattern) Words() int { return len(p.code) }

// Edges returns the number of goto edges in the compiled pattern's DFA,
// counted when the automaton was encoded (the Automaton itself isn't
// kept around after Compile returns).
func (p *Pattern) Edges() int { return p.nedges }

// HasWordBoundaries reports whether the pattern's opcode stream
// references any word-boundary meta codes (\b \B \< \>), information a
// lexer generator uses to decide whether it needs to track word-char
// state at all.
func (p *Pattern) HasWordBoundaries() bool {
	for _, op := range p.code {
		if op.IsHead() || op.IsTail() || op.IsTake() || op.IsHalt() {
			continue
		}
		if op.IsMetaOpcode() {
			switch op.MetaOf() {
			case MetaNWB, MetaNWE, MetaBWB, MetaEWB, MetaBWE, MetaEWE:
				return true
			}
		}
	}
	return false
}

// Reachable reports whether sub-pattern k (1-based, per Subpatterns)
// was ever constructed as an accept state: whether some input causes
// the DFA to reach an accept with sub-pattern index k.
func (p *Pattern) Reachable(k int) bool {
	i := k - 1
	if i < 0 || i >= len(p.acc) {
		return false
	}
	return p.acc[i]
}

// Subpattern returns the source substring of the k-th (1-based)
// top-level alternative. It returns an error if the pattern has no
// retained source text (an empty regex) or if k is out of range. Patterns
// come only from Compile; this package has no constructor that adopts a
// pre-compiled opcode array.
func (p *Pattern) Subpattern(k int) (string, error) {
	if p.source == "" {
		return "", newError(RegexSyntax, 0, "", "pattern has no retained source")
	}
	i := k - 1
	if i < 0 || i >= len(p.starts) {
		return "", newError(RegexSyntax, 0, p.source, "sub-pattern %d out of range [1,%d]", k, len(p.starts))
	}
	runes := []rune(p.source)
	from, to := int(p.starts[i]), int(p.ends[i])
	if from < 0 || to > len(runes) || from > to {
		return "", newError(RegexSyntax, 0, p.source, "sub-pattern %d has an invalid source range", k)
	}
	return string(runes[from:to]), nil
}

// AnchoredStart reports whether at least one way of starting a match
// requires being positioned at a '^' or '\A' anchor — true for "^foo" and
// for "^foo|bar" (the first alternative is anchored even though the
// second isn't), false for "foo". A caller that also checks Subpatterns/
// Reachable per-alternative can use this together with those to learn
// which specific alternatives are anchored.
func (p *Pattern) AnchoredStart() bool { return p.anchoredStart }

// BlockReachable reports whether opcode block offset loc is reachable
// from the start state, by a simple forward scan of goto targets —
// useful for sanity-checking a hand-edited or minimized opcode array.
func (p *Pattern) BlockReachable(loc Index) bool {
	seen := newSet[Index]()
	seen.insert(0)
	queue := vectorT[Index]{0}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == loc {
			return true
		}
		i := int(cur)
		for i < len(p.code) && !p.code[i].IsHalt() {
			op := p.code[i]
			if !op.IsTake() && !op.IsHead() && !op.IsTail() {
				t := op.IndexOf()
				if !seen.contains(t) {
					seen.insert(t)
					queue.pushBack(t)
				}
			}
			i++
		}
	}
	return seen.contains(loc)
}
