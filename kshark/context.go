// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package kshark // import "github.com/xenviz/xentrace-kshark/kshark"

import (
	"errors"
	"math"

	"github.com/xenviz/xentrace-kshark/libpf/xsync"
	"github.com/xenviz/xentrace-kshark/xentrace"
)

// ErrTooManyStreams is returned when every stream id of a Context is in use.
var ErrTooManyStreams = errors.New("no free stream id")

// Context is a session owning several streams. Stream ids are dense: a new
// stream gets the lowest id not in use.
type Context struct {
	streams xsync.RWMutex[[]*DataStream]
}

// NewContext returns a Context without streams.
func NewContext() *Context {
	return &Context{streams: xsync.NewRWMutex([]*DataStream(nil))}
}

// Open opens the capture at path as a new stream of c. A WithStreamID option
// is overridden by the id c assigns.
func (c *Context) Open(path string, opts ...Option) (*DataStream, error) {
	return c.add(func(id int16) (*DataStream, error) {
		return Open(path, append(opts[:len(opts):len(opts)], WithStreamID(id))...)
	})
}

// AddTrace adds a stream reading an already parsed trace to c.
func (c *Context) AddTrace(name string, trace *xentrace.Trace, opts ...Option) (*DataStream, error) {
	return c.add(func(id int16) (*DataStream, error) {
		return FromTrace(name, trace, append(opts[:len(opts):len(opts)], WithStreamID(id))...)
	})
}

func (c *Context) add(open func(id int16) (*DataStream, error)) (*DataStream, error) {
	streams := c.streams.WLock()
	defer c.streams.WUnlock(&streams)

	id := len(*streams)
	for i, s := range *streams {
		if s == nil {
			id = i
			break
		}
	}
	if id > math.MaxInt16 {
		return nil, ErrTooManyStreams
	}

	s, err := open(int16(id))
	if err != nil {
		return nil, err
	}
	if id == len(*streams) {
		*streams = append(*streams, s)
	} else {
		(*streams)[id] = s
	}
	return s, nil
}

// Stream returns the open stream with the given id.
func (c *Context) Stream(id int16) (*DataStream, bool) {
	streams := c.streams.RLock()
	defer c.streams.RUnlock(&streams)
	if id < 0 || int(id) >= len(*streams) || (*streams)[id] == nil {
		return nil, false
	}
	return (*streams)[id], true
}

// Streams returns the open streams ordered by id.
func (c *Context) Streams() []*DataStream {
	streams := c.streams.RLock()
	defer c.streams.RUnlock(&streams)
	open := make([]*DataStream, 0, len(*streams))
	for _, s := range *streams {
		if s != nil {
			open = append(open, s)
		}
	}
	return open
}

// CloseStream closes the stream with the given id and frees the id.
func (c *Context) CloseStream(id int16) bool {
	streams := c.streams.WLock()
	defer c.streams.WUnlock(&streams)
	if id < 0 || int(id) >= len(*streams) || (*streams)[id] == nil {
		return false
	}
	(*streams)[id].Close()
	(*streams)[id] = nil
	return true
}

// Close closes every stream of c.
func (c *Context) Close() {
	streams := c.streams.WLock()
	defer c.streams.WUnlock(&streams)
	for _, s := range *streams {
		if s != nil {
			s.Close()
		}
	}
	*streams = nil
}
