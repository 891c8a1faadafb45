// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package hash

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUint32(t *testing.T) {
	tests := map[string]struct {
		input  uint32
		expect uint32
	}{
		"0":          {input: 0, expect: 0},
		"1":          {input: 1, expect: 1364076727},
		"uint16 max": {input: uint32(math.MaxUint16), expect: 2721820263},
		"uint32 max": {input: math.MaxUint32, expect: 2180083513},
	}

	for name, testcase := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, testcase.expect, Uint32(testcase.input))
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, String("csched:tickle"), String("csched:tickle"))
	assert.NotEqual(t, String("VMENTRY"), String("VMEXIT"))
}
