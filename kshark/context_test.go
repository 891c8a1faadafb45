// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package kshark

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenviz/xentrace-kshark/xentrace"
)

func TestContext(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()
	path := capture().WriteFile(t, "trace.bin")

	s0, err := ctx.Open(path, WithStreamID(42))
	require.NoError(t, err)
	s1, err := ctx.Open(path)
	require.NoError(t, err)
	assert.Equal(t, int16(0), s0.StreamID())
	assert.Equal(t, int16(1), s1.StreamID())

	_, err = ctx.Open(path + ".missing")
	require.Error(t, err)

	trace, err := xentrace.Parse(bytes.NewReader(capture().Bytes()))
	require.NoError(t, err)
	s2, err := ctx.AddTrace("memory", trace)
	require.NoError(t, err)
	assert.Equal(t, int16(2), s2.StreamID())
	assert.Equal(t, "memory", s2.File())

	entries, _ := s2.LoadEntries()
	for _, e := range entries {
		assert.Equal(t, int16(2), e.StreamID)
	}

	// Freed ids are handed out again.
	require.True(t, ctx.CloseStream(0))
	assert.True(t, s0.Closed())
	assert.False(t, ctx.CloseStream(0))
	_, ok := ctx.Stream(0)
	assert.False(t, ok)

	s3, err := ctx.Open(path)
	require.NoError(t, err)
	assert.Equal(t, int16(0), s3.StreamID())

	got, ok := ctx.Stream(1)
	require.True(t, ok)
	assert.Same(t, s1, got)
	_, ok = ctx.Stream(-1)
	assert.False(t, ok)
	_, ok = ctx.Stream(7)
	assert.False(t, ok)
	assert.Equal(t, []*DataStream{s3, s1, s2}, ctx.Streams())

	ctx.Close()
	assert.Empty(t, ctx.Streams())
	for _, s := range []*DataStream{s1, s2, s3} {
		assert.True(t, s.Closed())
	}
}
