// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package kshark // import "github.com/xenviz/xentrace-kshark/kshark"

import (
	"fmt"
	"slices"

	"github.com/xenviz/xentrace-kshark/metrics"
	"github.com/xenviz/xentrace-kshark/taskid"
	"github.com/xenviz/xentrace-kshark/taxonomy"
	"github.com/xenviz/xentrace-kshark/xentrace"
)

// record resolves the record behind e. It fails for a nil entry, an offset
// outside of the trace and a closed stream.
func (s *DataStream) record(e *Entry) (*xentrace.Record, bool) {
	if e == nil {
		return nil, false
	}

	state := s.state.RLock()
	defer s.state.RUnlock(&state)
	if state.trace == nil {
		metrics.Add(metrics.IDBridgeCallsAfterClose, 1)
		return nil, false
	}

	rec, ok := state.trace.Record(e.Offset)
	if ok {
		s.decodeCalls.Add(1)
	}
	return rec, ok
}

// eventName resolves the name of code through the name cache.
func (s *DataStream) eventName(code uint32) string {
	if name, ok := s.names.Get(code); ok {
		s.nameCacheHit.Add(1)
		return name
	}
	s.nameCacheMiss.Add(1)

	class := taxonomy.Classify(code)
	name, ok := class.Lookup()
	if !ok {
		s.unknownCodes.Add(1)
		name = taxonomy.UnknownName(class.Code)
	}
	s.names.Add(code, name)
	return name
}

// GetPid returns the task id of e. It returns EmptyBin if the PluginUntouchedMask
// bit of e is cleared or the stream is closed.
func (s *DataStream) GetPid(e *Entry) int32 {
	if e == nil || e.Visible&PluginUntouchedMask == 0 {
		return EmptyBin
	}
	if s.Closed() {
		metrics.Add(metrics.IDBridgeCallsAfterClose, 1)
		return EmptyBin
	}
	return e.PID
}

// GetEventID returns the full event code of the record behind e, or 0.
func (s *DataStream) GetEventID(e *Entry) int32 {
	rec, ok := s.record(e)
	if !ok {
		return 0
	}
	return int32(rec.Event.Code)
}

// GetEventName returns the event name of the record behind e, or Unknown.
func (s *DataStream) GetEventName(e *Entry) string {
	rec, ok := s.record(e)
	if !ok {
		return Unknown
	}
	return s.eventName(rec.Event.Code)
}

// GetTask returns the domain label of the record behind e, or Unknown.
func (s *DataStream) GetTask(e *Entry) string {
	rec, ok := s.record(e)
	if !ok {
		return Unknown
	}
	return taskid.Label(rec.Domain)
}

// GetInfo renders the auxiliary words of the record behind e, or returns "".
func (s *DataStream) GetInfo(e *Entry) string {
	rec, ok := s.record(e)
	if !ok {
		return ""
	}
	return taxonomy.Info(taxonomy.Classify(rec.Event.Code), rec.Event.Extra)
}

// DumpEntry renders name, task and info of the record behind e on one line, or
// returns "".
func (s *DataStream) DumpEntry(e *Entry) string {
	rec, ok := s.record(e)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Record { Name: \"%s\", Task: \"%s\", Info: \"%s\" }",
		s.eventName(rec.Event.Code),
		taskid.Label(rec.Domain),
		taxonomy.Info(taxonomy.Classify(rec.Event.Code), rec.Event.Extra))
}

// FindEventID returns the event code called name, or -1. Codes seen in the
// stream take precedence over the remaining named codes. Results are cached once
// LoadEntries has run.
func (s *DataStream) FindEventID(name string) int32 {
	if id, ok := s.eventIDs.Get(name); ok {
		return id
	}

	state := s.state.RLock()
	loaded, seen := state.loaded, state.eventIDs
	s.state.RUnlock(&state)

	id := s.lookupEventID(name, seen)
	if loaded {
		s.eventIDs.Add(name, id)
	}
	return id
}

func (s *DataStream) lookupEventID(name string, seen []int32) int32 {
	for _, code := range seen {
		if s.eventName(uint32(code)) == name {
			return code
		}
	}
	if code, ok := taxonomy.FindCode(name); ok {
		return int32(code)
	}
	return -1
}

// AllEventIDs returns the distinct event codes of the projected records in
// ascending order. It is empty before LoadEntries and after Close.
func (s *DataStream) AllEventIDs() []int32 {
	state := s.state.RLock()
	defer s.state.RUnlock(&state)
	return slices.Clone(state.eventIDs)
}
