// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package hash provides the hash callbacks used to key the LRU caches of
// the decode bridge.
package hash // import "github.com/xenviz/xentrace-kshark/libpf/hash"

import "github.com/zeebo/xxh3"

// Uint32 computes a hash of a 32-bit uint using the finalizer function for Murmur.
// 32-bit via https://en.wikipedia.org/wiki/MurmurHash#Algorithm
func Uint32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return x
}

// String is the hash callback for LRUs that use a string as key.
// xxh3 turned out to be the fastest hash function for strings in the FreeLRU benchmarks.
func String(s string) uint32 {
	return uint32(xxh3.HashString(s))
}
