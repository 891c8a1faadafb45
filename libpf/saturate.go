// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package libpf // import "github.com/xenviz/xentrace-kshark/libpf"

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Saturate converts v to the integer type To, clamping it to the bounds of To
// instead of wrapping around.
func Saturate[To, From constraints.Integer](v From) To {
	lo, hi := bounds[To]()
	if v < 0 {
		// Only signed types reach here, so widening to int64 is lossless.
		if int64(v) < lo {
			return To(lo)
		}
		return To(v)
	}
	if uint64(v) > hi {
		return To(hi)
	}
	return To(v)
}

// SaturateFloat converts f to int64, clamping values outside of the int64
// range. NaN maps to zero.
func SaturateFloat(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// bounds returns the smallest and largest value representable by T.
func bounds[T constraints.Integer]() (lo int64, hi uint64) {
	var zero T
	bits := 8 * sizeOf(zero)
	if T(0)-1 > 0 {
		// unsigned
		if bits == 64 {
			return 0, math.MaxUint64
		}
		return 0, 1<<bits - 1
	}
	return -1 << (bits - 1), 1<<(bits-1) - 1
}

func sizeOf[T constraints.Integer](v T) uint {
	size := uint(0)
	for v = ^T(0); v != 0; v <<= 8 {
		size++
	}
	return size
}
