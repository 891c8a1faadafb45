// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package xsync // import "github.com/xenviz/xentrace-kshark/libpf/xsync"

import "sync"

// RWMutex is a thin wrapper around sync.RWMutex that hides away the data it protects to ensure it's
// not accidentally accessed without actually holding the lock.
//
// Instead of pairing a bare mutex with a field and hoping every method remembers to lock it:
//
//	type Registry struct {
//		mu  sync.Mutex
//		ids map[int32]struct{}
//	}
//
// the protected value is only reachable through the lock:
//
//	type Registry struct {
//		ids xsync.RWMutex[map[int32]struct{}]
//	}
//
//	func (r *Registry) Add(id int32) {
//		ids := r.ids.WLock()
//		defer r.ids.WUnlock(&ids)
//		(*ids)[id] = struct{}{}
//	}
//
// Unlocking clears the caller's pointer, so a use after unlock fails loudly in tests instead of
// silently racing.
type RWMutex[T any] struct {
	guarded T
	mutex   sync.RWMutex
}

// NewRWMutex creates a new read-write mutex.
func NewRWMutex[T any](guarded T) RWMutex[T] {
	return RWMutex[T]{
		guarded: guarded,
	}
}

// RLock locks the mutex for reading, returning a pointer to the protected data.
//
// The caller **must not** write to the data pointed to by the returned pointer, and must not let
// it escape the function that took the lock.
func (mtx *RWMutex[T]) RLock() *T {
	mtx.mutex.RLock()
	return &mtx.guarded
}

// RUnlock unlocks the mutex after previously being locked by RLock.
//
// Pass a reference to the pointer returned from RLock here to ensure it is invalidated.
func (mtx *RWMutex[T]) RUnlock(ref **T) {
	*ref = nil
	mtx.mutex.RUnlock()
}

// WLock locks the mutex for writing, returning a pointer to the protected data.
//
// The caller **must not** let the returned pointer escape the function that took the lock.
func (mtx *RWMutex[T]) WLock() *T {
	mtx.mutex.Lock()
	return &mtx.guarded
}

// WUnlock unlocks the mutex after previously being locked by WLock.
//
// Pass a reference to the pointer returned from WLock here to ensure it is invalidated.
func (mtx *RWMutex[T]) WUnlock(ref **T) {
	*ref = nil
	mtx.mutex.Unlock()
}
