// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package xsync_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xenviz/xentrace-kshark/libpf/xsync"
)

func TestRWMutex(t *testing.T) {
	ids := xsync.NewRWMutex(map[int32]struct{}{})

	mutable := ids.WLock()
	(*mutable)[7] = struct{}{}
	ids.WUnlock(&mutable)
	// WUnlock zeros the reference to make sure we can't accidentally use it after unlocking.
	assert.Nil(t, mutable)

	readable := ids.RLock()
	defer ids.RUnlock(&readable)
	assert.Contains(t, *readable, int32(7))
}

func TestRWMutex_Concurrent(t *testing.T) {
	counter := xsync.NewRWMutex(0)
	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := counter.WLock()
			*c++
			counter.WUnlock(&c)
		}()
	}
	wg.Wait()

	c := counter.RLock()
	defer counter.RUnlock(&c)
	assert.Equal(t, 64, *c)
}
