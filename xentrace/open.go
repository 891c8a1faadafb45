// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package xentrace // import "github.com/xenviz/xentrace-kshark/xentrace"

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Open parses the capture stored at path. Captures compressed with zstd are
// decompressed transparently.
func Open(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, closer, err := decompressed(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer closer()

	trace, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return trace, nil
}

// IsTraceFile reports whether path holds a xentrace capture, judged by its first
// header word carrying the CPU change event code.
func IsTraceFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	r, closer, err := decompressed(f)
	if err != nil {
		return false, err
	}
	defer closer()

	var word [4]byte
	if _, err := io.ReadFull(r, word[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return binary.NativeEndian.Uint32(word[:])&codeMask == CodeCPUChange, nil
}

// decompressed wraps r in a zstd decoder if it starts with a zstd frame.
func decompressed(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	if !bytes.Equal(head, zstdMagic) {
		return br, func() {}, nil
	}

	dec, err := zstd.NewReader(br)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return dec, dec.Close, nil
}
