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
	"hash/maphash"
)

// slotState tracks the three states an open-addressing slot can be in:
// never used, holding a live entry, or holding a tombstone left behind
// by a removed entry (kept so later probes still find entries that
// hashed past it).
type slotState uint8

const (
	slotEmpty slotState = iota
	slotUsed
	slotTomb
)

type segEntry[T NativeInt, C any] struct {
	state slotState
	word  T
	coeff C
}

// segment is one bucket of a Polynomial's top-level hash partition: an
// open-addressed hash table keyed by packed monomial word. Each segment
// is owned by exactly one worker
// during the parallel multiplier's Accumulate phase, so it needs no
// internal locking.
type segment[T NativeInt, C any] struct {
	ring    CoefficientRing[C]
	entries []segEntry[T, C]
	count   int
	tombs   int
}

// newSegment allocates a segment sized for roughly capacityHint live
// entries at a 0.5 load factor.
func newSegment[T NativeInt, C any](ring CoefficientRing[C], capacityHint int) *segment[T, C] {
	size := nextPow2(capacityHint * 2)
	if size < 8 {
		size = 8
	}
	return &segment[T, C]{ring: ring, entries: make([]segEntry[T, C], size)}
}

func (s *segment[T, C]) size() int { return s.count }

func (s *segment[T, C]) loadFactor() float64 {
	return float64(s.count+s.tombs) / float64(len(s.entries))
}

func (s *segment[T, C]) maybeGrow() {
	if s.loadFactor() >= 0.5 {
		s.rehash(len(s.entries) * 2)
	}
}

func (s *segment[T, C]) rehash(newSize int) {
	old := s.entries
	s.entries = make([]segEntry[T, C], newSize)
	s.count, s.tombs = 0, 0
	for _, e := range old {
		if e.state == slotUsed {
			idx := s.probeForInsert(e.word)
			s.entries[idx] = segEntry[T, C]{state: slotUsed, word: e.word, coeff: e.coeff}
			s.count++
		}
	}
}

// probeForInsert finds the slot word currently occupies, or the first
// empty-or-tombstone slot it should occupy.
func (s *segment[T, C]) probeForInsert(word T) int {
	n := len(s.entries)
	idx := int(hashWordBits(word) % uint64(n))
	firstTomb := -1
	for {
		e := &s.entries[idx]
		switch e.state {
		case slotEmpty:
			if firstTomb >= 0 {
				return firstTomb
			}
			return idx
		case slotTomb:
			if firstTomb < 0 {
				firstTomb = idx
			}
		case slotUsed:
			if e.word == word {
				return idx
			}
		}
		idx = (idx + 1) % n
	}
}

// insertOrAccumulate combines with any existing entry for word,
// removing it if the sum is zero in the coefficient ring; otherwise
// insert, unless coeff is itself zero.
func (s *segment[T, C]) insertOrAccumulate(word T, coeff C) error {
	s.maybeGrow()
	idx := s.probeForInsert(word)
	e := &s.entries[idx]

	if e.state != slotUsed {
		if s.ring.IsZero(coeff) {
			return nil
		}
		wasTomb := e.state == slotTomb
		*e = segEntry[T, C]{state: slotUsed, word: word, coeff: coeff}
		s.count++
		if wasTomb {
			s.tombs--
		}
		return nil
	}

	sum, err := s.ring.Add(e.coeff, coeff)
	if err != nil {
		return err
	}
	if s.ring.IsZero(sum) {
		e.state = slotTomb
		e.coeff = s.ring.Zero()
		s.count--
		s.tombs++
		return nil
	}
	e.coeff = sum
	return nil
}

// each visits every live entry in unspecified order.
func (s *segment[T, C]) each(fn func(word T, coeff C)) {
	for _, e := range s.entries {
		if e.state == slotUsed {
			fn(e.word, e.coeff)
		}
	}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// wordHashSeed is shared with monomial.go's Monomial.Hash: both want the
// same process-stable, cross-run-unstable contract over the same bit
// pattern, so they draw from one maphash seed.
func hashWordBits[T NativeInt](w T) uint64 {
	var h maphash.Hash
	h.SetSeed(wordHashSeed)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], wordBits(w))
	if nbitsOf[T]() == 32 {
		h.Write(buf[:4])
	} else {
		h.Write(buf[:])
	}
	return h.Sum64()
}
