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

import "math/big"

// NativeInt is the set of machine integer widths the packer and packed
// monomial operate over directly using Go's own arithmetic and shift
// operators, which are fully defined for every integer type regardless
// of sign or shift count.
//
// The 128-bit widths (Int128, Uint128) are supported at the packer layer
// through a separate, non-generic pair of types in word128.go: Go has no
// native 128-bit integer kind to parameterize a generic type over, so
// they get their own small, mechanically parallel implementation rather
// than forcing an interface-based abstraction over every width.
type NativeInt interface {
	~int32 | ~uint32 | ~int64 | ~uint64
}

// nbitsOf returns the number of value bits of a native width T. This is
// the type's bit size whether T is signed or unsigned (the sign bit
// counts as a value bit).
func nbitsOf[T NativeInt]() int {
	switch any(T(0)).(type) {
	case int32, uint32:
		return 32
	case int64, uint64:
		return 64
	}
	panic("poly: unreachable native width")
}

func isSignedT[T NativeInt]() bool {
	switch any(T(0)).(type) {
	case int32, int64:
		return true
	default:
		return false
	}
}

// bigFromT converts a native word to its true numeric value, used when
// comparing a candidate packed word against the big.Int packed-word
// bounds table.
func bigFromT[T NativeInt](v T) *big.Int {
	switch x := any(v).(type) {
	case int32:
		return big.NewInt(int64(x))
	case uint32:
		return new(big.Int).SetUint64(uint64(x))
	case int64:
		return big.NewInt(x)
	case uint64:
		return new(big.Int).SetUint64(x)
	}
	panic("poly: unreachable native width")
}

// bigToT converts a big.Int known to fit within T's range (by
// construction, since it comes from this word's own layout bounds) to a
// native word of type T.
func bigToT[T NativeInt](b *big.Int) T {
	if b.Sign() < 0 {
		return T(b.Int64())
	}
	return T(b.Uint64())
}

// wordBits returns the raw two's-complement bit pattern of v widened
// into a uint64, independent of T's signedness. Go's integer conversions
// are defined to reinterpret bits this way, so no masking is needed
// beyond the natural width of T.
func wordBits[T NativeInt](v T) uint64 {
	switch x := any(v).(type) {
	case int32:
		return uint64(uint32(x))
	case uint32:
		return uint64(x)
	case int64:
		return uint64(x)
	case uint64:
		return x
	}
	panic("poly: unreachable native width")
}
