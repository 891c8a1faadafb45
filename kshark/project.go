// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package kshark // import "github.com/xenviz/xentrace-kshark/kshark"

import (
	log "github.com/sirupsen/logrus"

	"github.com/xenviz/xentrace-kshark/libpf"
	"github.com/xenviz/xentrace-kshark/metrics"
	"github.com/xenviz/xentrace-kshark/taxonomy"
	"github.com/xenviz/xentrace-kshark/xentrace"
)

// LoadEntries returns one entry per record, in record order, and their count.
// The projection runs on the first call and later calls return the same entries.
// A closed stream has no entries.
func (s *DataStream) LoadEntries() ([]Entry, int) {
	state := s.state.WLock()
	defer s.state.WUnlock(&state)

	if state.trace == nil {
		metrics.Add(metrics.IDBridgeCallsAfterClose, 1)
		return nil, 0
	}
	if !state.loaded {
		state.entries, state.eventIDs = s.project(state.trace.Records())
		state.loaded = true
		metrics.Add(metrics.IDEntriesProjected, metrics.MetricValue(len(state.entries)))
		log.Debugf("Projected %d entries of stream %d onto %d tasks",
			len(state.entries), s.streamID, s.tasks.Len())
	}
	return state.entries, len(state.entries)
}

// project maps every record onto an Entry and registers the task ids it sees.
// It also returns the sorted distinct event codes of the records.
func (s *DataStream) project(records []xentrace.Record) ([]Entry, []int32) {
	entries := make([]Entry, len(records))
	codes := libpf.Set[int32]{}

	var origin uint64
	hasOrigin := len(records) > 0
	if hasOrigin {
		origin = records[0].Event.Tick
	}

	for i := range records {
		rec := &records[i]
		class := taxonomy.Classify(rec.Event.Code)
		codes[int32(class.Code)] = libpf.Void{}

		entries[i] = Entry{
			Visible:  VisibleAll,
			StreamID: s.streamID,
			EventID:  libpf.Saturate[int16](class.Leaf),
			CPU:      libpf.Saturate[int16](rec.CPU),
			PID:      s.tasks.Register(rec.Domain),
			Offset:   int64(i),
			TS:       s.calib.TicksToNS(rec.Event.Tick, origin, hasOrigin),
		}
	}

	return entries, libpf.SortedKeys(codes)
}
