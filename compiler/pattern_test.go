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

func TestCompileSimplePatternProducesHaltTerminatedCode(t *testing.T) {
	pat, err := Compile("ab", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.Size() > 0, true)
	assert.Equal(t, pat.Code()[pat.Size()-1].IsHalt(), true)
}

func TestCompileAlternationSubpatternCount(t *testing.T) {
	pat, err := Compile("foo|bar|baz", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.Subpatterns(), 3)
}

func TestCompileInvalidRegexReturnsError(t *testing.T) {
	_, err := Compile("(unterminated", DefaultOption())
	assert.ErrorContains(t, err, "unbalanced")
}

func TestCompileWordBoundaryReportsWords(t *testing.T) {
	pat, err := Compile(`\bfoo\b`, DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.HasWordBoundaries(), true)
}

func TestCompileNoWordBoundary(t *testing.T) {
	pat, err := Compile("foo", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.HasWordBoundaries(), false)
}

func TestCompileWordsIsOpcodeCount(t *testing.T) {
	pat, err := Compile("abc", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.Words(), pat.Size())
}

func TestCompileEdgesCountsGotoTransitions(t *testing.T) {
	pat, err := Compile("a|b", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.Edges() > 0, true)
}

func TestCompileSourceAndOptionPreserved(t *testing.T) {
	opt := DefaultOption()
	opt.IgnoreCase = true
	pat, err := Compile("abc", opt)
	assert.NilError(t, err)
	assert.Equal(t, pat.Source(), "abc")
	assert.Equal(t, pat.Option().IgnoreCase, true)
}

func TestCompileNodesCountsDistinctStates(t *testing.T) {
	pat, err := Compile("a", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.Nodes(), 2, "start state plus the accepting state after 'a'")
}

func TestCompileBlockReachableFromStart(t *testing.T) {
	pat, err := Compile("ab", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.BlockReachable(0), true)
}

func TestCompileBlockUnreachableOffsetIsFalse(t *testing.T) {
	pat, err := Compile("a", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.BlockReachable(Index(pat.Size()+100)), false)
}

func TestCompileReachableSubpatternBothAlternativesReachable(t *testing.T) {
	pat, err := Compile("a|b", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.Reachable(1), true)
	assert.Equal(t, pat.Reachable(2), true)
}

func TestCompileReachableSubpatternOutOfRangeIsFalse(t *testing.T) {
	pat, err := Compile("a|b", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.Reachable(3), false)
	assert.Equal(t, pat.Reachable(0), false)
}

func TestCompileSubpatternReturnsSourceSubstring(t *testing.T) {
	pat, err := Compile("abc|xyz", DefaultOption())
	assert.NilError(t, err)
	s1, err := pat.Subpattern(1)
	assert.NilError(t, err)
	assert.Equal(t, s1, "abc")
	s2, err := pat.Subpattern(2)
	assert.NilError(t, err)
	assert.Equal(t, s2, "xyz")
}

func TestCompileSubpatternOutOfRangeIsError(t *testing.T) {
	pat, err := Compile("abc|xyz", DefaultOption())
	assert.NilError(t, err)
	_, err = pat.Subpattern(3)
	assert.ErrorContains(t, err, "out of range")
}

func TestCompileAnchoredStartTrueForCaretPrefix(t *testing.T) {
	pat, err := Compile("^foo", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.AnchoredStart(), true)
}

func TestCompileAnchoredStartFalseWithoutAnchor(t *testing.T) {
	pat, err := Compile("foo", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.AnchoredStart(), false)
}

func TestCompileAnchoredStartTrueForPartiallyAnchoredAlternation(t *testing.T) {
	pat, err := Compile("^foo|bar", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.AnchoredStart(), true)
}

func TestCompileWithMinimizeOption(t *testing.T) {
	opt := DefaultOption()
	opt.Minimize = true
	pat, err := Compile("(ab|ac)", opt)
	assert.NilError(t, err)
	assert.Equal(t, pat.Size() > 0, true)
}

func TestCompileTrailingContextCompiles(t *testing.T) {
	pat, err := Compile("ab/cd", DefaultOption())
	assert.NilError(t, err)
	foundHead, foundTail := false, false
	for _, op := range pat.Code() {
		if op.IsHead() {
			foundHead = true
		}
		if op.IsTail() {
			foundTail = true
		}
	}
	assert.Equal(t, foundHead, true)
	assert.Equal(t, foundTail, true)
}

func TestCompileBoundedRepetition(t *testing.T) {
	pat, err := Compile("a{2,4}", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.Size() > 0, true)
}

func TestCompileStarQuantifier(t *testing.T) {
	pat, err := Compile("a*b", DefaultOption())
	assert.NilError(t, err)
	assert.Equal(t, pat.Nodes() >= 2, true)
}

func TestCompileWriteStderrOnFailureDoesNotPanic(t *testing.T) {
	opt := DefaultOption()
	opt.WriteStderr = true
	_, err := Compile("[z-a]", opt)
	assert.ErrorContains(t, err, "out of order")
}
