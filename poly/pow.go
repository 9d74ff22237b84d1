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

	"github.com/ajroetker/sparsepoly/internal/workerpool"
)

// Pow raises f to the n-th power into h via repeated squaring built on
// MulMT. Any ErrOverflow (or other error) surfaced by an underlying
// MulMT call is returned unchanged, and h is left empty — Pow never
// writes a partial result to h, matching MulMT's own failure contract.
//
// When every exponent of f at the bound's indices is non-negative, the
// truncation bound is applied inside every underlying multiplication,
// which keeps intermediate blowup bounded: a discarded intermediate term
// can only produce descendants above the bound. With a negative exponent
// at a bound index that reasoning fails — a later factor can pull a
// discarded term back under the bound — so Pow then computes the full
// power and filters the result instead.
func Pow[T NativeInt, C any](pool *workerpool.Pool, h, f *Polynomial[T, C], n uint64, trunc *Truncation) error {
	if !h.SymbolSet().Equal(f.SymbolSet()) {
		return fmt.Errorf("%w: h and f must share a symbol set", ErrInvalidArgument)
	}
	if h.Size() != 0 {
		return fmt.Errorf("%w: destination polynomial must be empty", ErrInvalidArgument)
	}
	if trunc != nil && trunc.D.Sign() < 0 {
		return nil
	}

	innerTrunc := trunc
	if trunc != nil {
		safe, err := exponentsNonNegativeAt(f, trunc.Indices)
		if err != nil {
			return err
		}
		if !safe {
			innerTrunc = nil
		}
	}

	if pool == nil {
		pool = workerpool.New(0)
		defer pool.Close()
	}

	symbols := f.SymbolSet()
	ring := f.Ring()

	one, err := oneExponentMonomial[T](symbols.Size())
	if err != nil {
		return err
	}

	result := NewPolynomial[T, C](ring, symbols)
	if err := result.InsertOrAccumulate(one, ring.One()); err != nil {
		return err
	}

	base := f
	for exp := n; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			next := NewPolynomial[T, C](ring, symbols)
			if err := MulMT(pool, next, result, base, innerTrunc); err != nil {
				return err
			}
			result = next
		}
		if exp>>1 == 0 {
			break
		}
		sq := NewPolynomial[T, C](ring, symbols)
		if err := MulMT(pool, sq, base, base, innerTrunc); err != nil {
			return err
		}
		base = sq
	}

	if innerTrunc == nil && trunc != nil {
		result, err = filterByTruncation(result, trunc)
		if err != nil {
			return err
		}
	}

	h.segs = result.segs
	h.logSegs = result.logSegs
	return nil
}

// exponentsNonNegativeAt reports whether every term of p has a
// non-negative exponent at each of the given slot indices.
func exponentsNonNegativeAt[T NativeInt, C any](p *Polynomial[T, C], idx []int) (bool, error) {
	allNonNeg := true
	var iterErr error
	p.Each(func(m Monomial[T], _ C) {
		if iterErr != nil || !allNonNeg {
			return
		}
		xs, err := m.Exponents()
		if err != nil {
			iterErr = err
			return
		}
		for _, i := range idx {
			if i < 0 || i >= len(xs) {
				iterErr = fmt.Errorf("%w: index %d out of range for arity %d", ErrInvalidArgument, i, len(xs))
				return
			}
			if bigFromT(xs[i]).Sign() < 0 {
				allNonNeg = false
				return
			}
		}
	})
	if iterErr != nil {
		return false, iterErr
	}
	return allNonNeg, nil
}

// filterByTruncation rebuilds p keeping only the terms within tr's
// bound.
func filterByTruncation[T NativeInt, C any](p *Polynomial[T, C], tr *Truncation) (*Polynomial[T, C], error) {
	out := NewPolynomial[T, C](p.Ring(), p.SymbolSet())
	var iterErr error
	p.Each(func(m Monomial[T], c C) {
		if iterErr != nil {
			return
		}
		ok, err := truncationAllows(tr, m)
		if err != nil {
			iterErr = err
			return
		}
		if !ok {
			return
		}
		if err := out.InsertOrAccumulate(m, c); err != nil {
			iterErr = err
		}
	})
	if iterErr != nil {
		return nil, iterErr
	}
	return out, nil
}

// oneExponentMonomial packs the all-zero exponent vector of arity k: the
// multiplicative identity monomial.
func oneExponentMonomial[T NativeInt](k int) (Monomial[T], error) {
	return PackMonomial(make([]T, k))
}
