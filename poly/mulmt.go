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
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/sparsepoly/internal/workerpool"
)

// targetSegmentLoad is the estimated-terms-per-segment figure the
// segment-selection heuristic divides by: 2^n approximates
// min(cores, estimated terms / targetSegmentLoad).
const targetSegmentLoad = 256

// MulMT is the parallel segmented multiplier: h must be empty and share
// f's and g's symbol set; on return h holds exactly the non-zero terms
// of f*g (optionally truncated), produced by partitioning the output
// space into 2^n segments and accumulating each segment, in parallel,
// in its own open-addressed hash table.
//
// pool supplies the worker pool driving the Accumulate phase; a nil
// pool gets a private one sized to GOMAXPROCS for the
// duration of this call. Passing a pool the caller keeps alive across
// many multiplications amortizes worker spawn cost, matching
// internal/workerpool's own "create once, reuse" usage pattern.
//
// The state machine of a single invocation — Idle -> PreCheck ->
// Partition -> Accumulate(parallel) -> Merge -> Idle — is implemented
// directly by this function's control flow: h is never written to until
// every phase through Accumulate has succeeded, so a failure at any
// point leaves h exactly as it was on entry (empty).
func MulMT[T NativeInt, C any](pool *workerpool.Pool, h, f, g *Polynomial[T, C], trunc *Truncation) error {
	if !h.SymbolSet().Equal(f.SymbolSet()) || !f.SymbolSet().Equal(g.SymbolSet()) {
		return fmt.Errorf("%w: h, f, and g must share a symbol set", ErrInvalidArgument)
	}
	if h.Size() != 0 {
		return fmt.Errorf("%w: destination polynomial must be empty", ErrInvalidArgument)
	}
	if trunc != nil && trunc.D.Sign() < 0 {
		return nil
	}

	if pool == nil {
		pool = workerpool.New(0)
		defer pool.Close()
	}

	// PreCheck.
	if err := mulMTPrecheck(f, g); err != nil {
		return err
	}
	if f.Size() == 0 || g.Size() == 0 {
		return nil
	}

	// Partition: snapshot both operands' terms once so every worker reads
	// the same read-only slices without synchronization.
	type term struct {
		m Monomial[T]
		c C
	}
	fTerms := make([]term, 0, f.Size())
	f.Each(func(m Monomial[T], c C) { fTerms = append(fTerms, term{m, c}) })
	gTerms := make([]term, 0, g.Size())
	g.Each(func(m Monomial[T], c C) { gTerms = append(gTerms, term{m, c}) })

	logSegs := selectSegmentLog2(h, pool, f, g)
	numSegs := 1 << logSegs
	ring := h.Ring()

	// Accumulate: each worker owns exactly one output segment for the
	// duration of this phase, scanning the full cross product and
	// keeping only the pairs whose destination is its own segment. No
	// per-segment locking is needed as a result.
	segResults := make([]*segment[T, C], numSegs)
	err := pool.ParallelForErr(context.Background(), numSegs, func(_ context.Context, segIdx int) error {
		local := newSegment[T, C](ring, 0)
		for _, tf := range fTerms {
			for _, tg := range gTerms {
				m, err := tf.m.Multiply(tg.m)
				if err != nil {
					return err
				}
				if int(hashWordBits(m.Word)%uint64(numSegs)) != segIdx {
					continue
				}
				if trunc != nil {
					ok, err := truncationAllows(trunc, m)
					if err != nil {
						return err
					}
					if !ok {
						continue
					}
				}
				c := ring.Mul(tf.c, tg.c)
				if err := local.insertOrAccumulate(m.Word, c); err != nil {
					return err
				}
			}
		}
		segResults[segIdx] = local
		return nil
	})
	if err != nil {
		// Accumulate failed partway through one segment; h must surface
		// empty. It was never touched, so there is nothing to unwind.
		return err
	}

	// Merge: stitch the segments into h without further rehashing. This
	// is the only point at which h is mutated, and it happens only after
	// every phase above has succeeded.
	h.segs = segResults
	h.logSegs = logSegs
	return nil
}

// selectSegmentLog2 picks n such that h holds 2^n segments, honoring a
// non-zero count from an explicit SetNSegments call on h and otherwise
// choosing n so 2^n approximates
// min(cores, estimated terms/targetSegmentLoad).
func selectSegmentLog2[T NativeInt, C any](h *Polynomial[T, C], pool *workerpool.Pool, f, g *Polynomial[T, C]) int {
	if h.logSegs != 0 {
		return h.logSegs
	}

	cores := pool.NumWorkers()
	want := cores
	estimate := f.Size() * g.Size()
	if estimate > 0 {
		byLoad := (estimate + targetSegmentLoad - 1) / targetSegmentLoad
		if byLoad < want {
			want = byLoad
		}
	}
	if want < 1 {
		want = 1
	}

	n := 0
	for (1 << n) < want {
		n++
	}
	return n
}

// mulMTPrecheck is the eager overflow pre-check: for every slot
// position, sum the maxima and minima of f's and g's unpacked exponents
// and verify the per-slot [lo, hi] bound at the operand arity is
// respected for any pairwise product. A violation is signaled as
// ErrOverflow before Accumulate starts any work, so Pow can fail before
// producing partial output.
//
// The two operand scans are independent read-only passes, so they run
// concurrently; for large operands each scan unpacks every term.
func mulMTPrecheck[T NativeInt, C any](f, g *Polynomial[T, C]) error {
	k := f.SymbolSet().Size()
	if k == 0 {
		return nil
	}
	var (
		fMin, fMax []T
		gMin, gMax []T
	)
	grp, _ := errgroup.WithContext(context.Background())
	grp.Go(func() error {
		var err error
		fMin, fMax, err = monomialSlotBounds(f)
		return err
	})
	grp.Go(func() error {
		var err error
		gMin, gMax, err = monomialSlotBounds(g)
		return err
	})
	if err := grp.Wait(); err != nil {
		return err
	}
	if fMin == nil || gMin == nil {
		// One operand has no terms; the product has none either, so no
		// monomial multiplication will ever be attempted.
		return nil
	}

	lay, err := layoutFor(nbitsOf[T](), k, isSignedT[T]())
	if err != nil {
		return err
	}
	for i := 0; i < k; i++ {
		min := new(big.Int).Add(bigFromT(fMin[i]), bigFromT(gMin[i]))
		max := new(big.Int).Add(bigFromT(fMax[i]), bigFromT(gMax[i]))
		if min.Cmp(lay.lo) < 0 || max.Cmp(lay.hi) > 0 {
			return fmt.Errorf("%w: slot %d product range [%s, %s] escapes [%s, %s] for arity %d",
				ErrOverflow, i, min, max, lay.lo, lay.hi, k)
		}
	}
	return nil
}

// monomialSlotBounds returns the per-slot minimum and maximum unpacked
// exponents across every term of p, or (nil, nil, nil) if p has no
// terms.
func monomialSlotBounds[T NativeInt, C any](p *Polynomial[T, C]) ([]T, []T, error) {
	k := p.SymbolSet().Size()
	if p.Size() == 0 || k == 0 {
		return nil, nil, nil
	}

	mins := make([]T, k)
	maxs := make([]T, k)
	first := true
	var iterErr error
	p.Each(func(m Monomial[T], _ C) {
		if iterErr != nil {
			return
		}
		xs, err := m.Exponents()
		if err != nil {
			iterErr = err
			return
		}
		for i, x := range xs {
			if first {
				mins[i], maxs[i] = x, x
				continue
			}
			if x < mins[i] {
				mins[i] = x
			}
			if x > maxs[i] {
				maxs[i] = x
			}
		}
		first = false
	})
	if iterErr != nil {
		return nil, nil, iterErr
	}
	return mins, maxs, nil
}
