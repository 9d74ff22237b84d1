// Copyright 2026 sparsepoly Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package poly

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// SymbolSet is an ordered, duplicate-free sequence of symbol names.
// Polynomial, Monomial.MergeSymbols, and the multipliers all consume it
// only through Size, Symbols, IndexOf, Equal, and MergeSymbolSets.
type SymbolSet struct {
	names []string
	index map[string]int
}

// NewSymbolSet builds a symbol set from an ordered list of names. It
// fails with ErrInvalidArgument if any name repeats.
func NewSymbolSet(names []string) (SymbolSet, error) {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := idx[n]; dup {
			return SymbolSet{}, fmt.Errorf("%w: duplicate symbol %q", ErrInvalidArgument, n)
		}
		idx[n] = i
	}
	return SymbolSet{names: append([]string(nil), names...), index: idx}, nil
}

// Size is the arity this symbol set imposes on any monomial over it.
func (s SymbolSet) Size() int { return len(s.names) }

// Symbols returns the ordered names, safe for the caller to mutate.
func (s SymbolSet) Symbols() []string { return append([]string(nil), s.names...) }

// IndexOf reports the position of name, if present.
func (s SymbolSet) IndexOf(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Equal reports whether s and o carry the same names in the same order.
func (s SymbolSet) Equal(o SymbolSet) bool {
	if len(s.names) != len(o.names) {
		return false
	}
	for i, n := range s.names {
		if o.names[i] != n {
			return false
		}
	}
	return true
}

// InsertionMap describes how to extend a symbol set to a superset: for
// each index i in the source set, the ordered run of new symbols
// inserted immediately before that index. An entry keyed at the
// source's own Size() means the symbols are appended at the end.
type InsertionMap map[int][]string

// MergeSymbolSets computes the smallest common superset of a and b
// preserving both operands' orders, together with the insertion maps
// needed to reshape a monomial from a, or from b, into one over the
// merged set.
//
// Symbols common to both a and b must appear in the same relative order
// in each; this holds for the consistent variable universes the
// multiplier is used with in practice, and is checked here rather than
// assumed — a violation reports ErrInvalidArgument instead of silently
// producing a merge that would corrupt monomials under it.
func MergeSymbolSets(a, b SymbolSet) (merged SymbolSet, insA, insB InsertionMap, err error) {
	commonA := lo.Filter(a.names, func(n string, _ int) bool {
		_, ok := b.index[n]
		return ok
	})
	commonB := lo.Filter(b.names, func(n string, _ int) bool {
		_, ok := a.index[n]
		return ok
	})
	if !slices.Equal(commonA, commonB) {
		return SymbolSet{}, nil, nil, fmt.Errorf(
			"%w: shared symbols appear in different orders between merge operands", ErrInvalidArgument)
	}

	// Two-pointer ordered merge. Symbols unique to one operand become
	// insertion-map entries for the other, keyed by how far that
	// operand's cursor has advanced when the symbol is emitted.
	insA, insB = InsertionMap{}, InsertionMap{}
	names := make([]string, 0, len(a.names)+len(b.names))
	i, j := 0, 0
	for i < len(a.names) || j < len(b.names) {
		switch {
		case i < len(a.names) && !inSet(b, a.names[i]):
			insB[j] = append(insB[j], a.names[i])
			names = append(names, a.names[i])
			i++
		case j < len(b.names) && !inSet(a, b.names[j]):
			insA[i] = append(insA[i], b.names[j])
			names = append(names, b.names[j])
			j++
		default:
			names = append(names, a.names[i])
			i++
			j++
		}
	}

	merged, err = NewSymbolSet(names)
	if err != nil {
		return SymbolSet{}, nil, nil, err
	}
	return merged, insA, insB, nil
}

func inSet(s SymbolSet, name string) bool {
	_, ok := s.index[name]
	return ok
}
