// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// nopanicslicereader provides little convenience utilities to read host endian
// words from a trace buffer at given offset. Zeroes are returned on out of bounds access
// instead of panic.
package nopanicslicereader // import "github.com/xenviz/xentrace-kshark/nopanicslicereader"

import (
	"encoding/binary"
)

// Uint32 reads one 32-bit unsigned integer from given byte slice offset
func Uint32(b []byte, offs uint) uint32 {
	if offs+4 > uint(len(b)) {
		return 0
	}
	return binary.NativeEndian.Uint32(b[offs:])
}

// Uint32Checked reads one 32-bit unsigned integer from given byte slice offset and
// reports whether the slice was long enough.
func Uint32Checked(b []byte, offs uint) (uint32, bool) {
	if offs+4 > uint(len(b)) {
		return 0, false
	}
	return binary.NativeEndian.Uint32(b[offs:]), true
}

// Ticks joins a low and a high 32-bit word into a 64-bit cycle counter value.
func Ticks(lo, hi uint32) uint64 {
	return uint64(hi)<<32 | uint64(lo)
}
