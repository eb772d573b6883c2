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

func parseOK(t *testing.T, regex string, opt Option) (Positions, Follow) {
	t.Helper()
	p := newParser(regex, opt)
	startpos, follow, err := p.parseRegex()
	assert.NilError(t, err)
	return startpos, follow
}

func TestParseLiteralConcatenation(t *testing.T) {
	startpos, follow := parseOK(t, "ab", DefaultOption())
	assert.Equal(t, len(startpos), 1)
	next := follow.Of(startpos[0])
	assert.Equal(t, len(next), 1)
	assert.Equal(t, len(follow.Of(next[0])), 1, "second leaf should follow into the accept position")
}

func TestParseAlternationUnionsStartpos(t *testing.T) {
	startpos, _ := parseOK(t, "a|b", DefaultOption())
	assert.Equal(t, len(startpos), 2)
}

func TestParseStarIsNullableAtStart(t *testing.T) {
	startpos, _ := parseOK(t, "a*", DefaultOption())
	accepting := 0
	for _, p := range startpos {
		if p.Accept() {
			accepting++
		}
	}
	assert.Equal(t, accepting, 1, "a* must accept the empty string, so startpos includes the accept position")
}

func TestParsePlusIsNotNullableAtStart(t *testing.T) {
	startpos, _ := parseOK(t, "a+", DefaultOption())
	for _, p := range startpos {
		assert.Equal(t, p.Accept(), false, "a+ must not accept the empty string")
	}
}

func TestParseQuestionMark(t *testing.T) {
	startpos, _ := parseOK(t, "a?b", DefaultOption())
	assert.Equal(t, len(startpos) >= 1, true)
}

func TestParseBoundedRepetitionUnrollsDistinctLocations(t *testing.T) {
	p := newParser("a{3}", DefaultOption())
	_, follow, err := p.parseRegex()
	assert.NilError(t, err)
	// three mandatory copies means the accept position is reached only
	// after three distinct leaf positions are crossed.
	seen := map[Location]bool{}
	for pos := range follow {
		seen[pos.Loc()] = true
	}
	assert.Equal(t, len(seen) >= 3, true)
}

func TestParseBoundedRepetitionUnrolledCopyKeepsInteriorChain(t *testing.T) {
	// (abc){2} must re-tag the interior position ('b', neither first nor
	// last in the atom) in both unrolled copies, or the a->b->c chain
	// breaks and the automaton can't actually consume "abc" twice.
	p := newParser("(abc){2}", DefaultOption())
	startpos, follow, err := p.parseRegex()
	assert.NilError(t, err)
	auto, err := buildAutomaton(startpos, follow, p.charsOf, p.acc)
	assert.NilError(t, err)

	cur := auto.States[0]
	for _, r := range []byte("abcabc") {
		var next *dfaState
		for _, mv := range cur.moves {
			if mv.Chars.Contains(Char(r)) {
				next = auto.States[mv.Target]
				break
			}
		}
		assert.Assert(t, next != nil, "no transition for %q from state %d", string(r), cur.index)
		cur = next
	}
	assert.Equal(t, cur.accept != 0, true, "after consuming \"abcabc\" the automaton should be in an accepting state")
}

func TestParseBoundedRepetitionRangeRejectsMinGreaterThanMax(t *testing.T) {
	p := newParser("a{5,2}", Option{Escape: '\\', Raise: true})
	_, _, err := p.parseRegex()
	assert.ErrorContains(t, err, "exceeds")
	rerr, ok := err.(*Error)
	assert.Equal(t, ok, true)
	assert.Equal(t, rerr.Kind, RegexRange)
}

func TestParseUnbalancedGroupIsSyntaxError(t *testing.T) {
	p := newParser("(ab", DefaultOption())
	_, _, err := p.parseRegex()
	assert.ErrorContains(t, err, "unbalanced")
}

func TestParseIgnoreCaseFoldsLiteral(t *testing.T) {
	p := newParser("a", Option{Escape: '\\', IgnoreCase: true})
	_, _, err := p.parseRegex()
	assert.NilError(t, err)
	var cs Chars
	for _, c := range p.charsOf {
		cs = c
		break
	}
	assert.Equal(t, cs.Contains('a'), true)
	assert.Equal(t, cs.Contains('A'), true)
}

func TestParseDotExcludesNewlineByDefault(t *testing.T) {
	p := newParser(".", DefaultOption())
	_, _, err := p.parseRegex()
	assert.NilError(t, err)
	var cs Chars
	for _, c := range p.charsOf {
		cs = c
		break
	}
	assert.Equal(t, cs.Contains('\n'), false)
}

func TestParseDotAllIncludesNewline(t *testing.T) {
	p := newParser(".", Option{Escape: '\\', DotAll: true})
	_, _, err := p.parseRegex()
	assert.NilError(t, err)
	var cs Chars
	for _, c := range p.charsOf {
		cs = c
		break
	}
	assert.Equal(t, cs.Contains('\n'), true)
}

func TestParseScopedModifierRestoresOuterMode(t *testing.T) {
	// (?i:a)b: 'a' is folded, 'b' is not.
	p := newParser(`(?i:a)b`, DefaultOption())
	_, _, err := p.parseRegex()
	assert.NilError(t, err)
	var foldedA, plainB bool
	for loc, cs := range p.charsOf {
		switch p.at(loc) {
		case 'a':
			foldedA = cs.Contains('A')
		case 'b':
			plainB = !cs.Contains('B')
		}
	}
	assert.Equal(t, foldedA, true)
	assert.Equal(t, plainB, true)
}

func TestParseTrailingContextRecordsLookaheadScope(t *testing.T) {
	p := newParser("ab/cd", DefaultOption())
	_, _, err := p.parseRegex()
	assert.NilError(t, err)
	assert.Equal(t, len(p.lookaheads), 1)
}

func TestParseMacroRefExpandsBody(t *testing.T) {
	opt := Option{Escape: '\\', Lex: true, Macros: map[string]string{"DIGIT": "[0-9]"}}
	startpos, _ := parseOK(t, "{DIGIT}", opt)
	assert.Equal(t, len(startpos), 1)
}

func TestParseUndefinedMacroIsSyntaxError(t *testing.T) {
	opt := Option{Escape: '\\', Lex: true, Macros: map[string]string{}}
	p := newParser("{NOPE}", opt)
	_, _, err := p.parseRegex()
	assert.ErrorContains(t, err, "undefined macro")
}

