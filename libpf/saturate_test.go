// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package libpf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaturate(t *testing.T) {
	assert.Equal(t, int16(7), Saturate[int16](uint32(7)))
	assert.Equal(t, int16(math.MaxInt16), Saturate[int16](uint32(math.MaxUint32)))
	assert.Equal(t, int16(math.MaxInt16), Saturate[int16](uint16(0x8000)))
	assert.Equal(t, int16(math.MinInt16), Saturate[int16](int64(math.MinInt64)))
	assert.Equal(t, int32(math.MaxInt32), Saturate[int32](uint64(math.MaxUint64)))
	assert.Equal(t, int32(0x7FF5), Saturate[int32](uint32(0x7FF5)))
	assert.Equal(t, uint8(0), Saturate[uint8](int32(-5)))
	assert.Equal(t, uint8(math.MaxUint8), Saturate[uint8](int(300)))
	assert.Equal(t, uint64(math.MaxUint64), Saturate[uint64](uint64(math.MaxUint64)))
	assert.Equal(t, int64(math.MaxInt64), Saturate[int64](uint64(math.MaxUint64)))
	assert.Equal(t, int64(-3), Saturate[int64](int8(-3)))
}

func TestSaturateFloat(t *testing.T) {
	tests := map[string]struct {
		in     float64
		expect int64
	}{
		"zero":      {in: 0, expect: 0},
		"truncates": {in: 999.9, expect: 999},
		"negative":  {in: -1.5, expect: -1},
		"nan":       {in: math.NaN(), expect: 0},
		"+inf":      {in: math.Inf(1), expect: math.MaxInt64},
		"-inf":      {in: math.Inf(-1), expect: math.MinInt64},
		"too large": {in: 1e30, expect: math.MaxInt64},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expect, SaturateFloat(test.in))
		})
	}
}

func TestSortedKeys(t *testing.T) {
	s := SliceToSet([]int32{5, 1, 5, 3})
	assert.Equal(t, []int32{1, 3, 5}, SortedKeys(s))
}
