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

// Package poly implements a sparse multivariate polynomial algebra engine
// built around a bit-packed monomial representation and a parallel,
// segmented-hash-map multiplication kernel.
package poly

import "errors"

// Sentinel error kinds. Every exported operation that can fail wraps one
// of these with fmt.Errorf("...: %w", ...) so callers can distinguish
// failure classes with errors.Is while still getting a diagnosable
// message.
var (
	// ErrOverflow is returned when a push, unpack, or monomial
	// multiplication would escape the representable range of the
	// packed word, or when the parallel multiplier's pre-check proves
	// a packed exponent cannot be represented.
	ErrOverflow = errors.New("poly: overflow")

	// ErrOutOfRange is returned when a packer/unpacker operation count
	// exceeds the configured arity, or when a packer is finalized
	// before enough values have been pushed.
	ErrOutOfRange = errors.New("poly: out of range")

	// ErrInvalidArgument is returned for precondition violations that
	// are neither an overflow nor an arity mismatch, such as passing a
	// non-zero word to an arity-0 unpacker or multiplying polynomials
	// over mismatched symbol sets.
	ErrInvalidArgument = errors.New("poly: invalid argument")
)
