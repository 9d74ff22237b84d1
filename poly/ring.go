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
	"hash/maphash"
	"math/big"

	"modernc.org/mathutil"
)

// CoefficientRing is the contract the polynomial machinery demands of
// its coefficients: zero, zero test, (possibly failing) addition,
// multiplication, negation, and a hashable/printable surface over some
// coefficient value type C. The core polynomial and multiplier types
// are parameterized over this interface rather than over a concrete
// numeric type, so callers can supply their own rings alongside the
// IntRing and RatRing shipped here.
type CoefficientRing[C any] interface {
	Zero() C
	One() C
	IsZero(C) bool
	Add(a, b C) (C, error)
	Mul(a, b C) C
	Neg(a C) C
	Hash(a C) uint64
	String(a C) string
}

var coeffHashSeed = maphash.MakeSeed()

// IntRing is the exact-integer coefficient ring, backed by *big.Int.
type IntRing struct{}

func (IntRing) Zero() *big.Int { return new(big.Int) }

func (IntRing) One() *big.Int { return big.NewInt(1) }

func (IntRing) IsZero(a *big.Int) bool { return a.Sign() == 0 }

func (IntRing) Add(a, b *big.Int) (*big.Int, error) {
	return new(big.Int).Add(a, b), nil
}

func (IntRing) Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

func (IntRing) Neg(a *big.Int) *big.Int {
	return new(big.Int).Neg(a)
}

func (IntRing) Hash(a *big.Int) uint64 {
	var h maphash.Hash
	h.SetSeed(coeffHashSeed)
	if a.Sign() < 0 {
		h.WriteByte(1)
	} else {
		h.WriteByte(0)
	}
	h.Write(a.Bytes())
	return h.Sum64()
}

func (IntRing) String(a *big.Int) string { return a.String() }

// Rational is an exact reduced fraction: Den is always positive, Num and
// Den share no common factor, and zero is represented as 0/1. Values come
// from NewRational or RatRing; the Go zero value Rational{} has nil
// fields and is not a valid coefficient.
type Rational struct {
	Num, Den *big.Int
}

// NewRational builds a reduced fraction num/den, failing with
// ErrInvalidArgument if den is zero.
func NewRational(num, den *big.Int) (Rational, error) {
	if den.Sign() == 0 {
		return Rational{}, fmt.Errorf("%w: rational with zero denominator", ErrInvalidArgument)
	}
	return reduceRational(num, den), nil
}

func reduceRational(num, den *big.Int) Rational {
	n := new(big.Int).Set(num)
	d := new(big.Int).Set(den)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	if n.Sign() == 0 {
		return Rational{Num: big.NewInt(0), Den: big.NewInt(1)}
	}
	g := gcd(n, d)
	if g.Cmp(big.NewInt(1)) > 0 {
		n.Quo(n, g)
		d.Quo(d, g)
	}
	return Rational{Num: n, Den: d}
}

// gcd takes the machine-word fast path through mathutil.GCDUint64
// whenever both magnitudes fit in a word, falling back to (*big.Int).GCD
// for arbitrary precision — the same small-vs-arbitrary-precision split
// the packed-word layer uses, applied here to coefficient reduction.
func gcd(a, b *big.Int) *big.Int {
	if a.BitLen() <= 63 && b.BitLen() <= 63 {
		g := mathutil.GCDUint64(new(big.Int).Abs(a).Uint64(), new(big.Int).Abs(b).Uint64())
		return new(big.Int).SetUint64(g)
	}
	absA := new(big.Int).Abs(a)
	absB := new(big.Int).Abs(b)
	return new(big.Int).GCD(nil, nil, absA, absB)
}

// RatRing is the exact-rational coefficient ring, backed by Rational.
type RatRing struct{}

func (RatRing) Zero() Rational { return Rational{Num: big.NewInt(0), Den: big.NewInt(1)} }

func (RatRing) One() Rational { return Rational{Num: big.NewInt(1), Den: big.NewInt(1)} }

func (RatRing) IsZero(a Rational) bool { return a.Num.Sign() == 0 }

func (RatRing) Add(a, b Rational) (Rational, error) {
	num := new(big.Int).Add(
		new(big.Int).Mul(a.Num, b.Den),
		new(big.Int).Mul(b.Num, a.Den),
	)
	den := new(big.Int).Mul(a.Den, b.Den)
	return reduceRational(num, den), nil
}

func (RatRing) Mul(a, b Rational) Rational {
	num := new(big.Int).Mul(a.Num, b.Num)
	den := new(big.Int).Mul(a.Den, b.Den)
	return reduceRational(num, den)
}

func (RatRing) Neg(a Rational) Rational {
	return Rational{Num: new(big.Int).Neg(a.Num), Den: a.Den}
}

func (RatRing) Hash(a Rational) uint64 {
	var h maphash.Hash
	h.SetSeed(coeffHashSeed)
	h.Write(a.Num.Bytes())
	if a.Num.Sign() < 0 {
		h.WriteByte(1)
	} else {
		h.WriteByte(0)
	}
	h.Write(a.Den.Bytes())
	return h.Sum64()
}

func (RatRing) String(a Rational) string {
	if a.Den.Cmp(big.NewInt(1)) == 0 {
		return a.Num.String()
	}
	return fmt.Sprintf("%s/%s", a.Num, a.Den)
}
