// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package xsync provides thin wrappers around locking primitives that tie a lock to the data it
// protects. The stream keeps its backing trace, its task registry and its projected entries behind
// these wrappers so that the decode bridge can be called from any goroutine.
package xsync // import "github.com/xenviz/xentrace-kshark/libpf/xsync"
