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

// Packer is the bit packer state machine for the four native packed-word
// widths. It accepts exactly k signed or unsigned exponents, each within
// the per-slot range derived from k and T's width, and folds them into a
// single word of type T.
type Packer[T NativeInt] struct {
	k      int
	p      int
	lo, hi T
	v      T
	s      int
	i      int
}

// NewPacker constructs a packer for k exponent slots of type T. It fails
// with ErrOverflow if k is out of range for T's width and signedness
// (k > nbits(T) unsigned, k >= nbits(T) signed).
func NewPacker[T NativeInt](k int) (*Packer[T], error) {
	lay, err := layoutFor(nbitsOf[T](), k, isSignedT[T]())
	if err != nil {
		return nil, err
	}
	return &Packer[T]{
		k:  k,
		p:  lay.p,
		lo: bigToT[T](lay.lo),
		hi: bigToT[T](lay.hi),
	}, nil
}

// Arity reports the configured number of slots.
func (pk *Packer[T]) Arity() int { return pk.k }

// Push appends the next exponent. It fails with ErrOutOfRange once k
// values have already been pushed, and with ErrOverflow if n falls
// outside this packer's per-slot range; in both failure cases the
// packer's state is left unchanged.
func (pk *Packer[T]) Push(n T) error {
	if pk.i >= pk.k {
		return fmt.Errorf("%w: packer already holds %d of %d values", ErrOutOfRange, pk.i, pk.k)
	}
	if n < pk.lo || n > pk.hi {
		return fmt.Errorf("%w: value %d outside [%d, %d] for arity %d", ErrOverflow, n, pk.lo, pk.hi, pk.k)
	}
	// Go defines shift operators for every integer type and any shift
	// count, so n << s needs no unsigned-intermediate laundering.
	pk.v += n << uint(pk.s)
	pk.i++
	pk.s += pk.p
	return nil
}

// Get finalizes the packer, returning the packed word. It fails with
// ErrOutOfRange if fewer than k values have been pushed.
func (pk *Packer[T]) Get() (T, error) {
	if pk.i < pk.k {
		return 0, fmt.Errorf("%w: only %d of %d values pushed", ErrOutOfRange, pk.i, pk.k)
	}
	return pk.v, nil
}

// Unpacker is the decoding half of the bit packer state machine. It
// decodes through a shifted unsigned view of the word — the word minus
// the packed minimum for its arity — because a negative exponent in a
// low slot sign-extends through the raw two's-complement word and would
// otherwise corrupt every slot above it.
type Unpacker[T NativeInt] struct {
	k        int
	p        int
	bits     uint64
	loBits   uint64
	slotMask uint64
	popped   int
}

// NewUnpacker constructs an unpacker for a packed word n known to carry
// k exponents. It fails with ErrOverflow if k is out of range for T, with
// ErrInvalidArgument if k is 0 and n is non-zero, and with ErrOverflow if
// n lies outside the minimum/maximum packed word achievable for arity k.
func NewUnpacker[T NativeInt](n T, k int) (*Unpacker[T], error) {
	nbits := nbitsOf[T]()
	signed := isSignedT[T]()
	lay, err := layoutFor(nbits, k, signed)
	if err != nil {
		return nil, err
	}
	if k == 0 {
		if n != 0 {
			return nil, fmt.Errorf("%w: arity 0 requires a zero word, got %d", ErrInvalidArgument, n)
		}
		return &Unpacker[T]{k: 0}, nil
	}

	nBig := bigFromT(n)
	if nBig.Cmp(lay.packedMin) < 0 || nBig.Cmp(lay.packedMax) > 0 {
		return nil, fmt.Errorf("%w: packed word %d outside [%s, %s] for arity %d",
			ErrOverflow, n, lay.packedMin, lay.packedMax, k)
	}

	// The shifted view n - packedMin is non-negative and fits in nbits
	// bits, so two's-complement subtraction computes it directly; the
	// 32-bit widths just need the borrow truncated away.
	bits := wordBits(n) - wordBits(bigToT[T](lay.packedMin))
	if nbits == 32 {
		bits &= 0xFFFFFFFF
	}

	return &Unpacker[T]{
		k:        k,
		p:        lay.p,
		bits:     bits,
		loBits:   wordBits(bigToT[T](lay.lo)),
		slotMask: (uint64(1) << uint(lay.p)) - 1,
	}, nil
}

// Arity reports the configured number of slots.
func (u *Unpacker[T]) Arity() int { return u.k }

// Pop extracts the next exponent, in the order originally pushed. It
// fails with ErrOutOfRange once all k slots have been consumed.
func (u *Unpacker[T]) Pop() (T, error) {
	if u.popped >= u.k {
		return 0, fmt.Errorf("%w: all %d slots already popped", ErrOutOfRange, u.k)
	}
	shift := uint(u.popped * u.p)
	raw := (u.bits >> shift) & u.slotMask
	u.popped++

	// raw is the slot's offset above the per-slot minimum; adding the
	// minimum back in wrapping arithmetic lands on the true value for
	// signed and unsigned widths alike (loBits is zero when unsigned).
	return T(raw + u.loBits), nil
}

// UnpackAll drains the unpacker, returning all k exponents in push
// order. It is a convenience wrapper; the underlying state machine is
// still exposed via Pop for callers that want to interleave decoding.
func UnpackAll[T NativeInt](n T, k int) ([]T, error) {
	u, err := NewUnpacker(n, k)
	if err != nil {
		return nil, err
	}
	out := make([]T, k)
	for i := 0; i < k; i++ {
		v, err := u.Pop()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// PackAll is a convenience wrapper around Packer for callers that
// already have the whole exponent vector in hand.
func PackAll[T NativeInt](xs []T) (T, error) {
	pk, err := NewPacker[T](len(xs))
	if err != nil {
		return 0, err
	}
	for _, x := range xs {
		if err := pk.Push(x); err != nil {
			return 0, err
		}
	}
	return pk.Get()
}
