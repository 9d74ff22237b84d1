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
	"math/big"
	"sync"
)

// wordLayout is the per-(nbits, arity, signedness) slot geometry: the
// per-slot bit width p, the inclusive per-slot value range [lo, hi], and
// the packed-word range [packedMin, packedMax] achievable by packing k
// copies of lo (resp. hi). Entries are computed once per key, cached in
// a process-wide table, and never mutated afterward. The packed-word
// bounds are not an optimization: the unpacker uses them to validate
// incoming words.
type wordLayout struct {
	p                    int
	lo, hi               *big.Int
	packedMin, packedMax *big.Int
}

type layoutKey struct {
	nbits  int
	k      int
	signed bool
}

var layoutCache sync.Map // layoutKey -> *wordLayout

// layoutFor returns the cached (or freshly computed) slot geometry for a
// word of nbits value bits, packing arity k, with the given signedness.
func layoutFor(nbits, k int, signed bool) (*wordLayout, error) {
	key := layoutKey{nbits, k, signed}
	if v, ok := layoutCache.Load(key); ok {
		return v.(*wordLayout), nil
	}

	p, lo, hi, err := slotLayout(nbits, k, signed)
	if err != nil {
		return nil, err
	}

	lay := &wordLayout{p: p, lo: lo, hi: hi}
	if k > 0 {
		lay.packedMin = packExtremeWord(p, k, lo)
		lay.packedMax = packExtremeWord(p, k, hi)
	} else {
		lay.packedMin = big.NewInt(0)
		lay.packedMax = big.NewInt(0)
	}

	actual, _ := layoutCache.LoadOrStore(key, lay)
	return actual.(*wordLayout), nil
}

// slotLayout derives p, lo, hi from nbits and k. Unsigned words split
// evenly: p = nbits/k. Signed words at arity 1 get the full width; at
// arity 2 and up p = nbits/k, minus one when nbits divides evenly by k —
// the reserved bit keeps slot sums from colliding with their neighbors
// while packing. It does not touch the cache; callers go through
// layoutFor.
func slotLayout(nbits, k int, signed bool) (p int, lo, hi *big.Int, err error) {
	if k < 0 {
		return 0, nil, nil, fmt.Errorf("%w: arity %d is negative", ErrInvalidArgument, k)
	}
	if signed {
		if k >= nbits {
			return 0, nil, nil, fmt.Errorf("%w: arity %d too large for a %d-bit signed word", ErrOverflow, k, nbits)
		}
	} else {
		if k > nbits {
			return 0, nil, nil, fmt.Errorf("%w: arity %d too large for a %d-bit unsigned word", ErrOverflow, k, nbits)
		}
	}
	if k == 0 {
		return 0, big.NewInt(0), big.NewInt(0), nil
	}

	one := big.NewInt(1)
	if !signed {
		p = nbits / k
		hi = new(big.Int).Sub(new(big.Int).Lsh(one, uint(p)), one)
		lo = big.NewInt(0)
		return p, lo, hi, nil
	}

	if k == 1 {
		p = nbits
	} else {
		p = nbits / k
		if nbits%k == 0 {
			p--
		}
	}
	if p <= 0 {
		return 0, nil, nil, fmt.Errorf("%w: arity %d leaves no usable bits in a %d-bit signed word", ErrOverflow, k, nbits)
	}
	hi = new(big.Int).Sub(new(big.Int).Lsh(one, uint(p-1)), one)
	lo = new(big.Int).Neg(new(big.Int).Lsh(one, uint(p-1)))
	return p, lo, hi, nil
}

// packExtremeWord computes the packed word obtained by packing k copies
// of extreme (either the per-slot lo or hi) at slot width p: the sum of
// extreme * 2^(i*p) for i in [0, k). This is how the per-arity packed
// min/max bounds used by the unpacker's range check are derived.
func packExtremeWord(p, k int, extreme *big.Int) *big.Int {
	acc := new(big.Int)
	for i := 0; i < k; i++ {
		term := new(big.Int).Lsh(extreme, uint(i*p))
		acc.Add(acc, term)
	}
	return acc
}
