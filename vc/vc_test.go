// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package vc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := map[string]struct {
		version, revision, timestamp string
		expected                     string
	}{
		"unversioned": {expected: "devel"},
		"release": {
			version:   "v0.3.0",
			revision:  "4f2a9c1",
			timestamp: "2026-10-01T12:00:00Z",
			expected:  "v0.3.0 (4f2a9c1) built 2026-10-01T12:00:00Z",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			version, revision, buildTimestamp = tc.version, tc.revision, tc.timestamp
			t.Cleanup(func() { version, revision, buildTimestamp = "", "", "" })
			assert.Equal(t, tc.expected, String())
		})
	}
}
