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

// MulSimple is the single-threaded reference multiplier. h must be
// empty and share f's and g's symbol set; on return h holds exactly the
// non-zero terms of f*g.
//
// Any failure — a mismatched symbol set, a monomial-multiply overflow,
// or a coefficient-ring error — leaves h empty, equivalent to its state
// before the call.
func MulSimple[T NativeInt, C any](h, f, g *Polynomial[T, C]) error {
	return mulSimpleTrunc(h, f, g, nil)
}

// MulSimpleTruncated is MulSimple restricted to product terms within
// trunc's partial-degree bound. A nil trunc means no truncation.
func MulSimpleTruncated[T NativeInt, C any](h, f, g *Polynomial[T, C], trunc *Truncation) error {
	return mulSimpleTrunc(h, f, g, trunc)
}

func mulSimpleTrunc[T NativeInt, C any](h, f, g *Polynomial[T, C], trunc *Truncation) error {
	if !h.SymbolSet().Equal(f.SymbolSet()) || !f.SymbolSet().Equal(g.SymbolSet()) {
		return fmt.Errorf("%w: h, f, and g must share a symbol set", ErrInvalidArgument)
	}
	if h.Size() != 0 {
		return fmt.Errorf("%w: destination polynomial must be empty", ErrInvalidArgument)
	}
	if trunc != nil && trunc.D.Sign() < 0 {
		return nil
	}

	ring := h.Ring()
	var failErr error
	f.Each(func(mf Monomial[T], cf C) {
		if failErr != nil {
			return
		}
		g.Each(func(mg Monomial[T], cg C) {
			if failErr != nil {
				return
			}
			m, err := mf.Multiply(mg)
			if err != nil {
				failErr = err
				return
			}
			if trunc != nil {
				ok, err := truncationAllows(trunc, m)
				if err != nil {
					failErr = err
					return
				}
				if !ok {
					return
				}
			}
			c := ring.Mul(cf, cg)
			if err := h.InsertOrAccumulate(m, c); err != nil {
				failErr = err
			}
		})
	})
	if failErr != nil {
		h.ClearTerms()
		return failErr
	}
	return nil
}
