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
	"errors"
	"math/big"
	"math/rand"
	"testing"

	"github.com/ajroetker/sparsepoly/internal/workerpool"
)

// randomPoly builds a deterministic pseudo-random polynomial with
// nTerms distinct monomials and small exponents.
func randomPoly(t *testing.T, rng *rand.Rand, ss SymbolSet, nTerms int, maxExp int64) *Polynomial[int64, *big.Int] {
	t.Helper()
	p := intPoly(t, ss)
	for p.Size() < nTerms {
		exps := make([]int64, ss.Size())
		for i := range exps {
			exps[i] = rng.Int63n(maxExp + 1)
		}
		coeff := rng.Int63n(19) - 9
		if coeff == 0 {
			coeff = 1
		}
		addTerm(t, p, coeff, exps...)
	}
	return p
}

func TestMulMTMatchesMulSimple(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	ss := mustSymbolSet(t, "x", "y", "z")
	rng := rand.New(rand.NewSource(1))

	for iter := 0; iter < 10; iter++ {
		f := randomPoly(t, rng, ss, 12, 6)
		g := randomPoly(t, rng, ss, 9, 6)

		want := intPoly(t, ss)
		if err := MulSimple(want, f, g); err != nil {
			t.Fatalf("MulSimple error: %v", err)
		}
		got := intPoly(t, ss)
		if err := MulMT(pool, got, f, g, nil); err != nil {
			t.Fatalf("MulMT error: %v", err)
		}
		if !got.Equal(want) {
			t.Fatalf("iteration %d: MulMT disagrees with MulSimple:\n got: %s\nwant: %s",
				iter, dumpPoly(got), dumpPoly(want))
		}
	}
}

func TestMulMTMatchesMulSimpleTruncated(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	ss := mustSymbolSet(t, "x", "y", "z")
	rng := rand.New(rand.NewSource(2))
	f := randomPoly(t, rng, ss, 15, 5)
	g := randomPoly(t, rng, ss, 15, 5)

	for _, d := range []int64{0, 1, 3, 7, 100} {
		for _, subset := range [][]string{nil, {"x"}, {"x", "z"}} {
			tr, err := NewTruncation(big.NewInt(d), ss, subset)
			if err != nil {
				t.Fatal(err)
			}
			want := intPoly(t, ss)
			if err := MulSimpleTruncated(want, f, g, tr); err != nil {
				t.Fatalf("MulSimpleTruncated error: %v", err)
			}
			got := intPoly(t, ss)
			if err := MulMT(pool, got, f, g, tr); err != nil {
				t.Fatalf("MulMT error: %v", err)
			}
			if !got.Equal(want) {
				t.Fatalf("d=%d over %v: MulMT disagrees with MulSimpleTruncated", d, subset)
			}
		}
	}
}

func TestMulMTTruncationScenarios(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Close()

	ss := mustSymbolSet(t, "x", "y", "z")
	f := buildPoly(t, ss, []term{{1, []int64{1, 0, 1}}, {1, []int64{0, 1, 0}}}) // zx + y
	g := buildPoly(t, ss, []term{
		{1, []int64{1, 0, 0}},
		{-1, []int64{0, 1, 0}},
		{-1, []int64{0, 0, 0}},
	}) // x - y - 1

	h := intPoly(t, ss)
	if err := MulMT(pool, h, f, g, trunc(t, 2, ss)); err != nil {
		t.Fatalf("MulMT error: %v", err)
	}
	wantPoly(t, h, []term{
		{-1, []int64{1, 0, 1}},
		{1, []int64{1, 1, 0}},
		{-1, []int64{0, 2, 0}},
		{-1, []int64{0, 1, 0}},
	})
}

func TestMulMTNegativeBound(t *testing.T) {
	ss := mustSymbolSet(t, "x")
	f := buildPoly(t, ss, []term{{1, []int64{1}}})
	h := intPoly(t, ss)
	if err := MulMT(nil, h, f, f, trunc(t, -5, ss)); err != nil {
		t.Fatalf("MulMT error: %v", err)
	}
	if h.Size() != 0 {
		t.Errorf("negative bound must yield an empty product, got %d terms", h.Size())
	}
}

func TestMulMTHonorsExplicitSegments(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	ss := mustSymbolSet(t, "x", "y")
	rng := rand.New(rand.NewSource(3))
	f := randomPoly(t, rng, ss, 10, 8)
	g := randomPoly(t, rng, ss, 10, 8)

	want := intPoly(t, ss)
	if err := MulSimple(want, f, g); err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{1, 2, 4} {
		h := intPoly(t, ss)
		if err := h.SetNSegments(n); err != nil {
			t.Fatal(err)
		}
		if err := MulMT(pool, h, f, g, nil); err != nil {
			t.Fatalf("MulMT with %d segment exponent error: %v", n, err)
		}
		if h.NSegments() != n {
			t.Errorf("NSegments() = %d, want %d (explicit setting honored)", h.NSegments(), n)
		}
		if !h.Equal(want) {
			t.Errorf("result with 2^%d segments disagrees with reference", n)
		}
	}
}

func TestMulMTSingleSegmentDegenerate(t *testing.T) {
	// A one-worker pool with tiny operands selects a single segment;
	// the result must still match the reference multiplier.
	pool := workerpool.New(1)
	defer pool.Close()

	ss := mustSymbolSet(t, "x", "y")
	f := buildPoly(t, ss, []term{{2, []int64{1, 0}}, {3, []int64{0, 1}}})
	g := buildPoly(t, ss, []term{{1, []int64{1, 0}}, {-1, []int64{0, 0}}})

	want := intPoly(t, ss)
	if err := MulSimple(want, f, g); err != nil {
		t.Fatal(err)
	}
	h := intPoly(t, ss)
	if err := MulMT(pool, h, f, g, nil); err != nil {
		t.Fatalf("MulMT error: %v", err)
	}
	if h.NSegments() != 0 {
		t.Errorf("NSegments() = %d, want 0 (single segment)", h.NSegments())
	}
	if !h.Equal(want) {
		t.Error("single-segment result disagrees with reference")
	}
}

func TestMulMTOverflowPrecheck(t *testing.T) {
	// Arity 2 over int64 bounds slots to [-2^30, 2^30-1]. Both operands
	// carry 2^29 in slot x, so the slot's product maximum 2^30 exceeds the
	// bound and the pre-check must reject the multiplication before any
	// term is produced.
	ss := mustSymbolSet(t, "x", "y")
	f := buildPoly(t, ss, []term{{1, []int64{1 << 29, 0}}, {1, []int64{0, 1}}})
	g := buildPoly(t, ss, []term{{1, []int64{1 << 29, 0}}})

	h := intPoly(t, ss)
	err := MulMT(nil, h, f, g, nil)
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("MulMT error = %v, want ErrOverflow", err)
	}
	if h.Size() != 0 {
		t.Errorf("failed multiplication left %d terms in destination", h.Size())
	}
}

func TestMulMTPrecheckAllowsTightFit(t *testing.T) {
	// Sums that land exactly on the per-slot bounds are representable
	// and must pass the pre-check.
	ss := mustSymbolSet(t, "x", "y")
	f := buildPoly(t, ss, []term{{1, []int64{1 << 29, -(1 << 29)}}})
	g := buildPoly(t, ss, []term{{1, []int64{1<<29 - 1, -(1 << 29)}}})

	h := intPoly(t, ss)
	if err := MulMT(nil, h, f, g, nil); err != nil {
		t.Fatalf("MulMT error: %v", err)
	}
	wantPoly(t, h, []term{{1, []int64{1<<30 - 1, -(1 << 30)}}})
}

func TestMulMTEmptyOperands(t *testing.T) {
	ss := mustSymbolSet(t, "x")
	f := buildPoly(t, ss, []term{{1, []int64{1}}})
	empty := intPoly(t, ss)

	h := intPoly(t, ss)
	if err := MulMT(nil, h, f, empty, nil); err != nil {
		t.Fatalf("MulMT with empty operand error: %v", err)
	}
	if h.Size() != 0 {
		t.Errorf("product with empty operand has %d terms, want 0", h.Size())
	}
}

func TestMulMTPreconditions(t *testing.T) {
	ss := mustSymbolSet(t, "x")
	other := mustSymbolSet(t, "y")
	f := buildPoly(t, ss, []term{{1, []int64{1}}})
	g := buildPoly(t, other, []term{{1, []int64{1}}})

	h := intPoly(t, ss)
	if err := MulMT(nil, h, f, g, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("mismatched symbol sets error = %v, want ErrInvalidArgument", err)
	}

	h2 := buildPoly(t, ss, []term{{1, []int64{0}}})
	if err := MulMT(nil, h2, f, f, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("non-empty destination error = %v, want ErrInvalidArgument", err)
	}
}

func TestMulMTLargeTruncated(t *testing.T) {
	if testing.Short() {
		t.Skip("large multiplication")
	}
	pool := workerpool.New(0)
	defer pool.Close()

	// f = (x + y + 2z^2 + 3t^3 + 5u^5 + 1)^8 and
	// g = (u + t + 2z^2 + 3y^3 + 5x^5 + 1)^8, truncated at partial
	// degree 40 over {x, t, u}: the truncated product's partial degree
	// over those symbols is exactly 40.
	ss := mustSymbolSet(t, "x", "y", "z", "t", "u")
	fBase := buildPoly(t, ss, []term{
		{1, []int64{1, 0, 0, 0, 0}},
		{1, []int64{0, 1, 0, 0, 0}},
		{2, []int64{0, 0, 2, 0, 0}},
		{3, []int64{0, 0, 0, 3, 0}},
		{5, []int64{0, 0, 0, 0, 5}},
		{1, []int64{0, 0, 0, 0, 0}},
	})
	gBase := buildPoly(t, ss, []term{
		{1, []int64{0, 0, 0, 0, 1}},
		{1, []int64{0, 0, 0, 1, 0}},
		{2, []int64{0, 0, 2, 0, 0}},
		{3, []int64{0, 3, 0, 0, 0}},
		{5, []int64{5, 0, 0, 0, 0}},
		{1, []int64{0, 0, 0, 0, 0}},
	})

	f := intPoly(t, ss)
	if err := Pow(pool, f, fBase, 8, nil); err != nil {
		t.Fatalf("Pow(f) error: %v", err)
	}
	g := intPoly(t, ss)
	if err := Pow(pool, g, gBase, 8, nil); err != nil {
		t.Fatalf("Pow(g) error: %v", err)
	}

	tr := trunc(t, 40, ss, "x", "t", "u")
	h := intPoly(t, ss)
	if err := MulMT(pool, h, f, g, tr); err != nil {
		t.Fatalf("MulMT error: %v", err)
	}

	maxPD := big.NewInt(-1)
	h.Each(func(m Monomial[int64], _ *big.Int) {
		pd, err := m.PartialDegree(tr.Indices)
		if err != nil {
			t.Fatal(err)
		}
		if pd.Cmp(big.NewInt(40)) > 0 {
			t.Fatalf("term with partial degree %s exceeds the bound", pd)
		}
		if pd.Cmp(maxPD) > 0 {
			maxPD = pd
		}
	})
	if maxPD.Cmp(big.NewInt(40)) != 0 {
		t.Errorf("maximum partial degree over {x,t,u} = %s, want 40", maxPD)
	}
}
