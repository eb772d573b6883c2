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
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// setT is a generic unordered set, used for the visited set in
// Pattern.BlockReachable.
type setT[T comparable] map[T]struct{}

func newSet[T comparable]() setT[T] {
	return map[T]struct{}{}
}

func (s setT[T]) contains(e T) bool {
	_, present := s[e]
	return present
}

func (s setT[T]) insert(e T) {
	s[e] = struct{}{}
}

func (s setT[T]) erase(e T) {
	delete(s, e)
}

func (s setT[T]) toSlice() []T {
	return maps.Keys(s)
}

// vectorT is a generic ordered slice with a handful of the convenience
// methods the corresponding reflex/sneller vector types carry.
type vectorT[T comparable] []T

func (v *vectorT[T]) pushBack(e T) {
	*v = append(*v, e)
}

func (v vectorT[T]) contains(e T) bool {
	return slices.Contains(v, e)
}

// mapT is a generic map with an `at` accessor that panics on a missing
// key: a miss here means the compiler itself is broken, not that the
// regex is malformed.
type mapT[K comparable, V any] map[K]V

func newMapT[K comparable, V any]() mapT[K, V] {
	return map[K]V{}
}

func (m mapT[K, V]) at(k K) V {
	if v, present := m[k]; present {
		return v
	}
	panic(internalError("c4a1f0de", "key not present in map", k))
}
