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
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"math/big"
)

// wordHashSeed is generated once per process. maphash hashes are stable
// within one process and unpredictable across runs, which is all the
// segment partition and equality machinery require.
var wordHashSeed = maphash.MakeSeed()

// Monomial is a packed monomial value: a packed word plus the arity it
// was packed at. The arity is ordinarily
// implied by the owning polynomial's symbol set; it is kept on the value
// itself here so a Monomial is self-describing and safe to pass and
// compare independent of any particular Polynomial.
type Monomial[T NativeInt] struct {
	Word  T
	arity int
}

// NewMonomial wraps an already-packed word with its arity. Callers that
// have a raw exponent vector should use PackMonomial instead.
func NewMonomial[T NativeInt](word T, arity int) Monomial[T] {
	return Monomial[T]{Word: word, arity: arity}
}

// PackMonomial packs an exponent vector into a monomial, failing with
// ErrOverflow if any exponent falls outside the per-slot range for
// len(xs).
func PackMonomial[T NativeInt](xs []T) (Monomial[T], error) {
	w, err := PackAll(xs)
	if err != nil {
		return Monomial[T]{}, err
	}
	return Monomial[T]{Word: w, arity: len(xs)}, nil
}

// Arity is the number of exponent slots this monomial was packed at.
func (m Monomial[T]) Arity() int { return m.arity }

// Exponents unpacks the monomial back into its exponent vector.
func (m Monomial[T]) Exponents() ([]T, error) {
	return UnpackAll(m.Word, m.arity)
}

// Equal reports whether two monomials of the same arity carry an
// identical packed word.
func (m Monomial[T]) Equal(o Monomial[T]) bool {
	return m.arity == o.arity && m.Word == o.Word
}

// Hash returns a deterministic hash of the packed word, stable within
// one process. Equal packed words always hash equal.
func (m Monomial[T]) Hash() uint64 {
	var h maphash.Hash
	h.SetSeed(wordHashSeed)
	var buf [8]byte
	bits := wordBits(m.Word)
	binary.LittleEndian.PutUint64(buf[:], bits)
	switch nbitsOf[T]() {
	case 32:
		h.Write(buf[:4])
	default:
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Multiply adds the two monomials' exponent vectors element-wise,
// signaling ErrOverflow if any slot sum escapes the per-slot range for
// this arity, and ErrInvalidArgument if the arities differ.
func (m Monomial[T]) Multiply(o Monomial[T]) (Monomial[T], error) {
	if m.arity != o.arity {
		return Monomial[T]{}, fmt.Errorf("%w: monomial arities %d and %d differ", ErrInvalidArgument, m.arity, o.arity)
	}
	xs, err := m.Exponents()
	if err != nil {
		return Monomial[T]{}, err
	}
	ys, err := o.Exponents()
	if err != nil {
		return Monomial[T]{}, err
	}

	lay, err := layoutFor(nbitsOf[T](), m.arity, isSignedT[T]())
	if err != nil {
		return Monomial[T]{}, err
	}

	sums := make([]T, m.arity)
	for i := range sums {
		sum := new(big.Int).Add(bigFromT(xs[i]), bigFromT(ys[i]))
		if sum.Cmp(lay.lo) < 0 || sum.Cmp(lay.hi) > 0 {
			return Monomial[T]{}, fmt.Errorf("%w: exponent sum %s outside [%s, %s] at slot %d",
				ErrOverflow, sum, lay.lo, lay.hi, i)
		}
		sums[i] = bigToT[T](sum)
	}
	return PackMonomial(sums)
}

// Degree returns the sum of the unpacked exponents as an arbitrary-
// precision integer, so repeated multiplication cannot overflow it even
// once the packed representation itself would.
func (m Monomial[T]) Degree() (*big.Int, error) {
	xs, err := m.Exponents()
	if err != nil {
		return nil, err
	}
	sum := new(big.Int)
	for _, x := range xs {
		sum.Add(sum, bigFromT(x))
	}
	return sum, nil
}

// PartialDegree sums the exponents at the given slot indices.
func (m Monomial[T]) PartialDegree(idx []int) (*big.Int, error) {
	xs, err := m.Exponents()
	if err != nil {
		return nil, err
	}
	sum := new(big.Int)
	for _, i := range idx {
		if i < 0 || i >= len(xs) {
			return nil, fmt.Errorf("%w: index %d out of range for arity %d", ErrInvalidArgument, i, m.arity)
		}
		sum.Add(sum, bigFromT(xs[i]))
	}
	return sum, nil
}

// MergeSymbols produces the monomial over a merged symbol set of size
// newArity, unpacking m at its current arity, interleaving zero
// exponents at the positions ins dictates, and repacking.
func (m Monomial[T]) MergeSymbols(ins InsertionMap, newArity int) (Monomial[T], error) {
	xs, err := m.Exponents()
	if err != nil {
		return Monomial[T]{}, err
	}
	out := make([]T, 0, newArity)
	for i := 0; i <= m.arity; i++ {
		if extra, ok := ins[i]; ok {
			out = append(out, make([]T, len(extra))...)
		}
		if i < m.arity {
			out = append(out, xs[i])
		}
	}
	if len(out) != newArity {
		return Monomial[T]{}, fmt.Errorf("%w: insertion map yields arity %d, want %d",
			ErrInvalidArgument, len(out), newArity)
	}
	return PackMonomial(out)
}
