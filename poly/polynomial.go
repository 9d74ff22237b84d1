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

import "fmt"

// Polynomial is an unordered collection of (monomial, coefficient)
// entries sharing one symbol set, grouped into 2^n segments.
type Polynomial[T NativeInt, C any] struct {
	symbols SymbolSet
	ring    CoefficientRing[C]
	logSegs int
	segs    []*segment[T, C]
}

// NewPolynomial creates an empty polynomial over symbols, with one
// segment, using ring for coefficient arithmetic.
func NewPolynomial[T NativeInt, C any](ring CoefficientRing[C], symbols SymbolSet) *Polynomial[T, C] {
	p := &Polynomial[T, C]{ring: ring, symbols: symbols}
	p.allocSegments(0)
	return p
}

// SymbolSet returns the polynomial's associated symbol set.
func (p *Polynomial[T, C]) SymbolSet() SymbolSet { return p.symbols }

// Ring returns the coefficient ring this polynomial was built with.
func (p *Polynomial[T, C]) Ring() CoefficientRing[C] { return p.ring }

// SetSymbolSet is only valid on an empty polynomial.
func (p *Polynomial[T, C]) SetSymbolSet(s SymbolSet) error {
	if p.Size() != 0 {
		return fmt.Errorf("%w: cannot change symbol set of a non-empty polynomial", ErrInvalidArgument)
	}
	p.symbols = s
	return nil
}

// SetNSegments configures 2^n segments for subsequent allocation. Only
// valid on an empty polynomial. n == 0 is also the value the caller is
// expected to reset to after ClearTerms so the parallel multiplier's
// segment-selection heuristic can reselect.
func (p *Polynomial[T, C]) SetNSegments(n int) error {
	if p.Size() != 0 {
		return fmt.Errorf("%w: cannot change segment count of a non-empty polynomial", ErrInvalidArgument)
	}
	if n < 0 {
		return fmt.Errorf("%w: negative segment exponent %d", ErrInvalidArgument, n)
	}
	p.allocSegments(n)
	return nil
}

// NSegments reports the configured n, where the polynomial holds 2^n
// segments. A value of 0 means the multiplier is free to reselect it.
func (p *Polynomial[T, C]) NSegments() int { return p.logSegs }

func (p *Polynomial[T, C]) allocSegments(logSegs int) {
	p.logSegs = logSegs
	segs := make([]*segment[T, C], 1<<logSegs)
	for i := range segs {
		segs[i] = newSegment[T, C](p.ring, 0)
	}
	p.segs = segs
}

// ClearTerms drops all entries but keeps the symbol set and segment
// configuration.
func (p *Polynomial[T, C]) ClearTerms() {
	p.allocSegments(p.logSegs)
}

func (p *Polynomial[T, C]) segmentFor(word T) int {
	return int(hashWordBits(word) % uint64(len(p.segs)))
}

// InsertOrAccumulate combines c with any existing entry for m, removing
// the entry if the sum is zero in the ring; otherwise it inserts (m, c),
// unless c is itself zero.
func (p *Polynomial[T, C]) InsertOrAccumulate(m Monomial[T], c C) error {
	if m.Arity() != p.symbols.Size() {
		return fmt.Errorf("%w: monomial arity %d does not match symbol set size %d",
			ErrInvalidArgument, m.Arity(), p.symbols.Size())
	}
	return p.segs[p.segmentFor(m.Word)].insertOrAccumulate(m.Word, c)
}

// Size is the number of non-zero terms.
func (p *Polynomial[T, C]) Size() int {
	total := 0
	for _, s := range p.segs {
		total += s.size()
	}
	return total
}

// Each visits every non-zero (monomial, coefficient) entry in
// unspecified order.
func (p *Polynomial[T, C]) Each(fn func(m Monomial[T], c C)) {
	arity := p.symbols.Size()
	for _, s := range p.segs {
		s.each(func(word T, c C) {
			fn(NewMonomial(word, arity), c)
		})
	}
}

// Equal is set-equality of non-zero entries, independent of segment
// layout or iteration order.
func (p *Polynomial[T, C]) Equal(o *Polynomial[T, C]) bool {
	if !p.symbols.Equal(o.symbols) {
		return false
	}
	if p.Size() != o.Size() {
		return false
	}
	terms := make(map[T]C, p.Size())
	p.Each(func(m Monomial[T], c C) { terms[m.Word] = c })

	equal := true
	o.Each(func(m Monomial[T], c C) {
		if !equal {
			return
		}
		other, ok := terms[m.Word]
		if !ok {
			equal = false
			return
		}
		diff, err := p.ring.Add(c, p.ring.Neg(other))
		if err != nil || !p.ring.IsZero(diff) {
			equal = false
		}
	})
	return equal
}
