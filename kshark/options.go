// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package kshark // import "github.com/xenviz/xentrace-kshark/kshark"

// defaultNameCacheSize is the number of event names kept per stream.
const defaultNameCacheSize = 1024

type streamConfig struct {
	streamID      int16
	frequency     string
	hasFrequency  bool
	nameCacheSize uint32
}

// Option configures how a stream is opened.
type Option interface {
	applyOption(*streamConfig) *streamConfig
}
type streamOptionFunc func(*streamConfig) *streamConfig

func (f streamOptionFunc) applyOption(c *streamConfig) *streamConfig {
	return f(c)
}

// WithStreamID sets the id stamped on every entry of the stream.
// This defaults to 0.
func WithStreamID(id int16) Option {
	return streamOptionFunc(func(c *streamConfig) *streamConfig {
		c.streamID = id
		return c
	})
}

// WithCPUFrequency overrides the CPU frequency used to convert ticks to nanoseconds.
// The value uses the grammar of the XENTRACE_CPUHZ environment variable, which is
// consulted when this option is absent. An empty value selects the default frequency.
func WithCPUFrequency(value string) Option {
	return streamOptionFunc(func(c *streamConfig) *streamConfig {
		c.frequency = value
		c.hasFrequency = true
		return c
	})
}

// WithNameCacheSize sets the capacity of the event name cache of the stream.
func WithNameCacheSize(size uint32) Option {
	return streamOptionFunc(func(c *streamConfig) *streamConfig {
		if size > 0 {
			c.nameCacheSize = size
		}
		return c
	})
}
