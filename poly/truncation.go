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
)

// Truncation is an optional bound on the multipliers' output: a product
// term survives only if its partial degree over the symbol indices in
// Indices does not exceed D.
type Truncation struct {
	D       *big.Int
	Indices []int
}

// NewTruncation builds a Truncation bound measured over the named
// symbols in subset, which must all be present in full. A nil subset
// means the bound is measured over the full symbol set.
func NewTruncation(d *big.Int, full SymbolSet, subset []string) (*Truncation, error) {
	if subset == nil {
		idx := make([]int, full.Size())
		for i := range idx {
			idx[i] = i
		}
		return &Truncation{D: d, Indices: idx}, nil
	}
	idx := make([]int, 0, len(subset))
	for _, name := range subset {
		i, ok := full.IndexOf(name)
		if !ok {
			return nil, fmt.Errorf("%w: truncation symbol %q not in symbol set", ErrInvalidArgument, name)
		}
		idx = append(idx, i)
	}
	return &Truncation{D: d, Indices: idx}, nil
}

// truncationAllows reports whether m's partial degree over tr's indices
// satisfies tr's bound. Callers must have already excluded tr.D < 0,
// which always produces an empty result rather than something this
// per-term check needs to special-case.
func truncationAllows[T NativeInt](tr *Truncation, m Monomial[T]) (bool, error) {
	pd, err := m.PartialDegree(tr.Indices)
	if err != nil {
		return false, err
	}
	return pd.Cmp(tr.D) <= 0, nil
}
