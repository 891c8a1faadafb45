// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package xentrace_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenviz/xentrace-kshark/testsupport"
	"github.com/xenviz/xentrace-kshark/xentrace"
)

func TestParse(t *testing.T) {
	capture := testsupport.NewTraceBuilder(0).
		Event(xentrace.CodeSchedSwitch, 100, 0, 0, 3, 1).
		Event(0x00082006, 150, 0xAB).
		CPUChange(2).
		Event(0x0010F001, 120).
		EventNoCycles(0x00802008, 9).
		Bytes()

	trace, err := xentrace.Parse(bytes.NewReader(capture))
	require.NoError(t, err)
	require.Equal(t, 6, trace.Len())
	assert.Equal(t, 3, trace.CPUCount())

	recs := trace.Records()
	// Both CPU change records inherit tick 0 and keep their relative order.
	assert.Equal(t, uint32(xentrace.CodeCPUChange), recs[0].Event.Code)
	assert.Equal(t, uint32(0), recs[0].CPU)
	assert.Equal(t, uint32(xentrace.CodeCPUChange), recs[1].Event.Code)
	assert.Equal(t, uint32(2), recs[1].CPU)

	assert.Equal(t, uint32(xentrace.CodeSchedSwitch), recs[2].Event.Code)
	assert.Equal(t, uint64(100), recs[2].Event.Tick)
	assert.Equal(t, xentrace.NewDomain(3, 1), recs[2].Domain)

	// CPU 2 records sort between the two CPU 0 events.
	assert.Equal(t, uint32(0x0010F001), recs[3].Event.Code)
	assert.Equal(t, uint32(0x00802008), recs[4].Event.Code)
	assert.Equal(t, uint64(120), recs[4].Event.Tick)
	assert.False(t, recs[4].Event.HasCycles)
	assert.Equal(t, []uint32{9}, recs[4].Event.Extra)
	assert.Equal(t, xentrace.DomainDefault, recs[4].Domain.Kind)

	assert.Equal(t, uint32(0x00082006), recs[5].Event.Code)
	assert.Equal(t, []uint32{0xAB}, recs[5].Event.Extra)
	assert.Equal(t, xentrace.NewDomain(3, 1), recs[5].Domain)

	rec, ok := trace.Record(5)
	require.True(t, ok)
	assert.Equal(t, &recs[5], rec)
	_, ok = trace.Record(6)
	assert.False(t, ok)
	_, ok = trace.Record(-1)
	assert.False(t, ok)
}

func TestParseDomainTracking(t *testing.T) {
	tests := map[string]struct {
		code     uint32
		extra    []uint32
		expected xentrace.Domain
	}{
		"continue running": {
			code:     xentrace.CodeContinueRunning,
			extra:    []uint32{5<<16 | 2},
			expected: xentrace.NewDomain(5, 2),
		},
		"runnable to running": {
			code:     0x00021101,
			extra:    []uint32{0x7FFF<<16 | 3},
			expected: xentrace.Domain{Kind: xentrace.DomainIdle, ID: 0x7FFF, VCPU: 3},
		},
		"running to blocked": {
			code:     0x00021021,
			extra:    []uint32{5<<16 | 2},
			expected: xentrace.NewDomain(xentrace.DomainIDDefault, 0),
		},
		"short sched switch": {
			code:     xentrace.CodeSchedSwitch,
			extra:    []uint32{0, 0, 5},
			expected: xentrace.NewDomain(xentrace.DomainIDDefault, 0),
		},
		"dom0 switch": {
			code:     xentrace.CodeSchedSwitch,
			extra:    []uint32{7, 0, 0, 4},
			expected: xentrace.Domain{Kind: xentrace.DomainZero, VCPU: 4},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			capture := testsupport.NewTraceBuilder(1).
				Event(tc.code, 10, tc.extra...).
				Event(0x00082006, 20).
				Bytes()
			trace, err := xentrace.Parse(bytes.NewReader(capture))
			require.NoError(t, err)
			recs := trace.Records()
			require.Len(t, recs, 3)
			assert.Equal(t, tc.expected, recs[2].Domain)
		})
	}
}

func TestNewDomain(t *testing.T) {
	tests := map[string]struct {
		id   uint32
		kind xentrace.DomainKind
	}{
		"dom0":    {id: 0, kind: xentrace.DomainZero},
		"idle":    {id: 0x7FFF, kind: xentrace.DomainIdle},
		"invalid": {id: 0x7FF4, kind: xentrace.DomainDefault},
		"guest":   {id: 1, kind: xentrace.DomainGuest},
		"huge":    {id: 0xFFFFFFFF, kind: xentrace.DomainGuest},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.kind, xentrace.NewDomain(tc.id, 0).Kind)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]struct {
		capture []byte
		err     error
	}{
		"empty": {
			capture: nil,
			err:     xentrace.ErrEmptyTrace,
		},
		"partial header": {
			capture: []byte{0x03, 0xF0},
			err:     xentrace.ErrTruncatedRecord,
		},
		"missing extra words": {
			capture: testsupport.NewTraceBuilder(0).
				Raw(0x30082006|1<<31, 1, 0, 7).Bytes(),
			err: xentrace.ErrTruncatedRecord,
		},
		"missing cycles": {
			capture: testsupport.NewTraceBuilder(0).
				Raw(0x00082006 | 1<<31).Bytes(),
			err: xentrace.ErrTruncatedRecord,
		},
		"trailing bytes": {
			capture: append(testsupport.NewTraceBuilder(0).Bytes(), 0x01),
			err:     xentrace.ErrTruncatedRecord,
		},
		"foreign data": {
			capture: []byte("GIF89a.........."),
			err:     xentrace.ErrNotXenTrace,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := xentrace.Parse(bytes.NewReader(tc.capture))
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestOpen(t *testing.T) {
	builder := testsupport.NewTraceBuilder(0).
		Event(xentrace.CodeContinueRunning, 42, 1<<16)

	for name, path := range map[string]string{
		"plain":      builder.WriteFile(t, "trace.bin"),
		"compressed": builder.WriteCompressedFile(t, "trace.bin.zst"),
	} {
		t.Run(name, func(t *testing.T) {
			trace, err := xentrace.Open(path)
			require.NoError(t, err)
			assert.Equal(t, 2, trace.Len())
			assert.Equal(t, 1, trace.CPUCount())

			ok, err := xentrace.IsTraceFile(path)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := xentrace.Open(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = xentrace.Open(empty)
	require.ErrorIs(t, err, xentrace.ErrEmptyTrace)

	ok, err := xentrace.IsTraceFile(empty)
	require.NoError(t, err)
	assert.False(t, ok)

	other := filepath.Join(t.TempDir(), "other")
	require.NoError(t, os.WriteFile(other, []byte("not a trace"), 0o600))
	ok, err = xentrace.IsTraceFile(other)
	require.NoError(t, err)
	assert.False(t, ok)
}
