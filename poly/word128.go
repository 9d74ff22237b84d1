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
	"math/big"
)

// Uint128 and Int128 are Go's stand-ins for the two 128-bit packed-word
// widths offered alongside the native 32/64-bit ones.
// Go has no built-in 128-bit integer kind, so unlike Packer[T]/
// Unpacker[T] these get a small, mechanically parallel, non-generic
// implementation: Packer128/Unpacker128 do their bit arithmetic in
// math/big (which already implements two's-complement bitwise
// operations on arbitrary, including negative, values) and only convert
// to the fixed 16-byte Hi/Lo representation at the construction/result
// boundary.
type Uint128 struct {
	Hi, Lo uint64
}

// Int128 stores the same two's-complement bit pattern as Uint128; the
// sign is carried implicitly in the top bit of Hi.
type Int128 struct {
	Hi, Lo uint64
}

// BigInt returns the unsigned numeric value of u.
func (u Uint128) BigInt() *big.Int {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], u.Hi)
	binary.BigEndian.PutUint64(buf[8:16], u.Lo)
	return new(big.Int).SetBytes(buf[:])
}

// BigInt returns the signed numeric value of v, decoding its two's
// complement bit pattern.
func (v Int128) BigInt() *big.Int {
	b := Uint128{Hi: v.Hi, Lo: v.Lo}.BigInt()
	if v.Hi&0x8000000000000000 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		b.Sub(b, mod)
	}
	return b
}

func (u Uint128) String() string { return u.BigInt().String() }
func (v Int128) String() string  { return v.BigInt().String() }

// bigToUint128 converts a big.Int known to lie in [0, 2^128) to its
// fixed 16-byte representation.
func bigToUint128(b *big.Int) Uint128 {
	var buf [16]byte
	b.FillBytes(buf[:])
	return Uint128{
		Hi: binary.BigEndian.Uint64(buf[0:8]),
		Lo: binary.BigEndian.Uint64(buf[8:16]),
	}
}

// bigToInt128 converts a big.Int known to lie in [-2^127, 2^127) to its
// two's-complement 16-byte representation.
func bigToInt128(b *big.Int) Int128 {
	v := new(big.Int).Set(b)
	if v.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		v.Add(v, mod)
	}
	u := bigToUint128(v)
	return Int128{Hi: u.Hi, Lo: u.Lo}
}

// Packer128 is the bit packer state machine for the 128-bit widths.
// Exponents and the accumulator are carried as
// math/big values; Get converts the result to Uint128 or Int128
// depending on how the packer was constructed.
type Packer128 struct {
	k      int
	p      int
	signed bool
	lo, hi *big.Int
	v      *big.Int
	s      int
	i      int
}

// NewPacker128 constructs a 128-bit packer for k slots, signed or
// unsigned per the signed argument.
func NewPacker128(k int, signed bool) (*Packer128, error) {
	lay, err := layoutFor(128, k, signed)
	if err != nil {
		return nil, err
	}
	return &Packer128{
		k:      k,
		p:      lay.p,
		signed: signed,
		lo:     lay.lo,
		hi:     lay.hi,
		v:      new(big.Int),
	}, nil
}

func (pk *Packer128) Arity() int { return pk.k }

// Push appends the next exponent. See Packer.Push for the failure
// semantics; they carry over unchanged.
func (pk *Packer128) Push(n *big.Int) error {
	if pk.i >= pk.k {
		return fmt.Errorf("%w: packer already holds %d of %d values", ErrOutOfRange, pk.i, pk.k)
	}
	if n.Cmp(pk.lo) < 0 || n.Cmp(pk.hi) > 0 {
		return fmt.Errorf("%w: value %s outside [%s, %s] for arity %d", ErrOverflow, n, pk.lo, pk.hi, pk.k)
	}
	term := new(big.Int).Lsh(n, uint(pk.s))
	pk.v.Add(pk.v, term)
	pk.i++
	pk.s += pk.p
	return nil
}

// Get finalizes the packer and returns the packed word as a big.Int
// (its true numeric value, negative for a non-negative-overflowing
// signed word). Use Uint128/Int128 (via GetUint128/GetInt128) for the
// fixed-width representation.
func (pk *Packer128) Get() (*big.Int, error) {
	if pk.i < pk.k {
		return nil, fmt.Errorf("%w: only %d of %d values pushed", ErrOutOfRange, pk.i, pk.k)
	}
	return new(big.Int).Set(pk.v), nil
}

// GetUint128 finalizes an unsigned 128-bit packer.
func (pk *Packer128) GetUint128() (Uint128, error) {
	v, err := pk.Get()
	if err != nil {
		return Uint128{}, err
	}
	return bigToUint128(v), nil
}

// GetInt128 finalizes a signed 128-bit packer.
func (pk *Packer128) GetInt128() (Int128, error) {
	v, err := pk.Get()
	if err != nil {
		return Int128{}, err
	}
	return bigToInt128(v), nil
}

// Unpacker128 is the decoding half of the 128-bit bit packer state
// machine. Like Unpacker, it decodes through the shifted view
// n - packedMin so a negative exponent in a low slot cannot bleed its
// sign extension into the slots above it.
type Unpacker128 struct {
	k      int
	p      int
	u      *big.Int
	lo     *big.Int
	mask   *big.Int
	popped int
}

// NewUnpacker128 constructs an unpacker for a 128-bit packed word n
// known to carry k exponents. Failure semantics mirror NewUnpacker.
func NewUnpacker128(n *big.Int, k int, signed bool) (*Unpacker128, error) {
	lay, err := layoutFor(128, k, signed)
	if err != nil {
		return nil, err
	}
	if k == 0 {
		if n.Sign() != 0 {
			return nil, fmt.Errorf("%w: arity 0 requires a zero word, got %s", ErrInvalidArgument, n)
		}
		return &Unpacker128{k: 0}, nil
	}
	if n.Cmp(lay.packedMin) < 0 || n.Cmp(lay.packedMax) > 0 {
		return nil, fmt.Errorf("%w: packed word %s outside [%s, %s] for arity %d",
			ErrOverflow, n, lay.packedMin, lay.packedMax, k)
	}
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(lay.p)), big.NewInt(1))
	return &Unpacker128{
		k:    k,
		p:    lay.p,
		u:    new(big.Int).Sub(n, lay.packedMin),
		lo:   lay.lo,
		mask: mask,
	}, nil
}

func (u *Unpacker128) Arity() int { return u.k }

// Pop extracts the next exponent as a big.Int: the slot's offset above
// the per-slot minimum out of the shifted view, plus the minimum.
func (u *Unpacker128) Pop() (*big.Int, error) {
	if u.popped >= u.k {
		return nil, fmt.Errorf("%w: all %d slots already popped", ErrOutOfRange, u.k)
	}
	shift := uint(u.popped * u.p)
	raw := new(big.Int).Rsh(u.u, shift)
	raw.And(raw, u.mask)
	u.popped++

	return raw.Add(raw, u.lo), nil
}
