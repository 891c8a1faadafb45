// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package testsupport builds binary xentrace captures for tests.
package testsupport // import "github.com/xenviz/xentrace-kshark/testsupport"

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

const (
	cpuChangeCode = 0x0001F003
	cyclesFlag    = 1 << 31
	extraShift    = 28
	maxExtra      = 7
)

// TraceBuilder appends host endian trace records to an in-memory capture.
// The zero value is an empty capture.
type TraceBuilder struct {
	buf []byte
}

// NewTraceBuilder returns a builder whose capture starts on CPU cpu.
func NewTraceBuilder(cpu uint32) *TraceBuilder {
	return new(TraceBuilder).CPUChange(cpu)
}

// CPUChange appends a buffer header that switches the current CPU.
func (b *TraceBuilder) CPUChange(cpu uint32) *TraceBuilder {
	return b.header(cpuChangeCode, false, 2).words(cpu, 0)
}

// Event appends a record carrying a cycle counter value. At most seven extra
// words are kept.
func (b *TraceBuilder) Event(code uint32, tick uint64, extra ...uint32) *TraceBuilder {
	extra = extra[:min(len(extra), maxExtra)]
	return b.header(code, true, len(extra)).
		words(uint32(tick), uint32(tick>>32)).
		words(extra...)
}

// EventNoCycles appends a record that inherits the tick of its CPU.
func (b *TraceBuilder) EventNoCycles(code uint32, extra ...uint32) *TraceBuilder {
	extra = extra[:min(len(extra), maxExtra)]
	return b.header(code, false, len(extra)).words(extra...)
}

// Raw appends arbitrary words, e.g. to produce truncated captures.
func (b *TraceBuilder) Raw(w ...uint32) *TraceBuilder {
	return b.words(w...)
}

// Bytes returns the capture built so far.
func (b *TraceBuilder) Bytes() []byte {
	return b.buf
}

// WriteFile stores the capture in a temporary directory of t and returns its path.
func (b *TraceBuilder) WriteFile(t testing.TB, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, b.buf, 0o600); err != nil {
		t.Fatalf("failed to write capture: %v", err)
	}
	return path
}

// WriteCompressedFile stores the zstd compressed capture and returns its path.
func (b *TraceBuilder) WriteCompressedFile(t testing.TB, name string) string {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}
	defer enc.Close()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, enc.EncodeAll(b.buf, nil), 0o600); err != nil {
		t.Fatalf("failed to write capture: %v", err)
	}
	return path
}

func (b *TraceBuilder) header(code uint32, cycles bool, nExtra int) *TraceBuilder {
	hdr := code&0x0FFFFFFF | uint32(nExtra)<<extraShift
	if cycles {
		hdr |= cyclesFlag
	}
	return b.words(hdr)
}

func (b *TraceBuilder) words(w ...uint32) *TraceBuilder {
	for _, v := range w {
		b.buf = binary.NativeEndian.AppendUint32(b.buf, v)
	}
	return b
}
