// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package kshark turns a xentrace capture into the entry stream of a trace viewer.
//
// Opening a stream parses the capture. LoadEntries then projects every record onto a
// small Entry once, and the accessors of DataStream decode the full record behind an
// entry on demand. All accessors are total: they return defaults instead of failing,
// also after the stream was closed.
package kshark // import "github.com/xenviz/xentrace-kshark/kshark"

import (
	"fmt"
	"sync/atomic"

	lru "github.com/elastic/go-freelru"
	log "github.com/sirupsen/logrus"

	"github.com/xenviz/xentrace-kshark/libpf/hash"
	"github.com/xenviz/xentrace-kshark/libpf/xsync"
	"github.com/xenviz/xentrace-kshark/metrics"
	"github.com/xenviz/xentrace-kshark/successfailurecounter"
	"github.com/xenviz/xentrace-kshark/taskid"
	"github.com/xenviz/xentrace-kshark/times"
	"github.com/xenviz/xentrace-kshark/xentrace"
)

// streamState holds everything a stream releases on Close.
type streamState struct {
	trace *xentrace.Trace

	// entries and eventIDs are set by the first LoadEntries call.
	entries  []Entry
	eventIDs []int32
	loaded   bool
}

// DataStream is one opened capture.
type DataStream struct {
	streamID int16
	file     string
	nCPUs    int
	nRecords int

	calib times.Calibration
	tasks *taskid.Registry
	state xsync.RWMutex[streamState]

	// names caches event names by event code.
	names *lru.SyncedLRU[uint32, string]
	// eventIDs caches FindEventID results by name.
	eventIDs *lru.SyncedLRU[string, int32]

	// Metrics
	decodeCalls   atomic.Uint64
	nameCacheHit  atomic.Uint64
	nameCacheMiss atomic.Uint64
	unknownCodes  atomic.Uint64
}

// InputCheck reports whether the file at path is a capture this package can open.
func InputCheck(path string) bool {
	ok, err := xentrace.IsTraceFile(path)
	if err != nil {
		log.Debugf("Failed to check %s: %v", path, err)
		return false
	}
	return ok
}

// Open parses the capture at path and returns the stream reading it.
func Open(path string, opts ...Option) (*DataStream, error) {
	sfc := successfailurecounter.New(metrics.IDStreamsOpened, metrics.IDStreamOpenFailures)
	defer sfc.DefaultToFailure()

	trace, err := xentrace.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := newDataStream(path, trace, opts)
	if err != nil {
		return nil, err
	}

	sfc.ReportSuccess()
	return s, nil
}

// FromTrace returns a stream reading an already parsed trace. name is reported by File.
func FromTrace(name string, trace *xentrace.Trace, opts ...Option) (*DataStream, error) {
	sfc := successfailurecounter.New(metrics.IDStreamsOpened, metrics.IDStreamOpenFailures)
	defer sfc.DefaultToFailure()

	if trace == nil || trace.Len() == 0 {
		return nil, xentrace.ErrEmptyTrace
	}
	s, err := newDataStream(name, trace, opts)
	if err != nil {
		return nil, err
	}

	sfc.ReportSuccess()
	return s, nil
}

func newDataStream(file string, trace *xentrace.Trace, opts []Option) (*DataStream, error) {
	cfg := &streamConfig{nameCacheSize: defaultNameCacheSize}
	for _, opt := range opts {
		cfg = opt.applyOption(cfg)
	}

	hz := times.FrequencyFromEnv()
	if cfg.hasFrequency {
		hz = times.ResolveFrequency(cfg.frequency)
	}

	names, err := lru.NewSynced[uint32, string](cfg.nameCacheSize, hash.Uint32)
	if err != nil {
		return nil, fmt.Errorf("failed to create name cache: %w", err)
	}
	eventIDs, err := lru.NewSynced[string, int32](cfg.nameCacheSize, hash.String)
	if err != nil {
		return nil, fmt.Errorf("failed to create event id cache: %w", err)
	}

	s := &DataStream{
		streamID: cfg.streamID,
		file:     file,
		nCPUs:    trace.CPUCount(),
		nRecords: trace.Len(),
		calib:    times.NewCalibration(hz),
		tasks:    taskid.NewRegistry(),
		state:    xsync.NewRWMutex(streamState{trace: trace}),
		names:    names,
		eventIDs: eventIDs,
	}

	log.Debugf("Opened stream %d from %s: %d records on %d CPUs, qhz %.1f",
		s.streamID, file, s.nRecords, s.nCPUs, s.calib.QHz())
	return s, nil
}

// StreamID returns the id stamped on the entries of the stream.
func (s *DataStream) StreamID() int16 { return s.streamID }

// File returns the path the stream was opened from.
func (s *DataStream) File() string { return s.file }

// NCPUs returns the number of CPUs of the capture.
func (s *DataStream) NCPUs() int { return s.nCPUs }

// RecordCount returns the number of records of the capture.
func (s *DataStream) RecordCount() int { return s.nRecords }

// IdlePID returns the task id of the idle domain.
func (s *DataStream) IdlePID() int32 { return IdlePID }

// Calibration returns the tick to nanosecond calibration of the stream.
func (s *DataStream) Calibration() times.Calibration { return s.calib }

// Tasks returns the task ids registered by the projection, in ascending order.
func (s *DataStream) Tasks() []int32 { return s.tasks.IDs() }

// Closed reports whether Close was called.
func (s *DataStream) Closed() bool {
	state := s.state.RLock()
	defer s.state.RUnlock(&state)
	return state.trace == nil
}

// Close releases the records and the entries of the stream. Accessors called
// afterwards return their defaults. Closing twice is a no-op.
func (s *DataStream) Close() {
	state := s.state.WLock()
	if state.trace == nil {
		s.state.WUnlock(&state)
		return
	}
	*state = streamState{}
	s.state.WUnlock(&state)

	s.names.Purge()
	s.eventIDs.Purge()
	s.CollectMetrics()
	log.Debugf("Closed stream %d", s.streamID)
}

// CollectMetrics forwards the counters of the stream to the metrics package.
func (s *DataStream) CollectMetrics() {
	metrics.AddSlice([]metrics.Metric{
		{ID: metrics.IDBridgeDecodeCalls,
			Value: metrics.MetricValue(s.decodeCalls.Swap(0))},
		{ID: metrics.IDNameCacheHit,
			Value: metrics.MetricValue(s.nameCacheHit.Swap(0))},
		{ID: metrics.IDNameCacheMiss,
			Value: metrics.MetricValue(s.nameCacheMiss.Swap(0))},
		{ID: metrics.IDUnknownEventCodes,
			Value: metrics.MetricValue(s.unknownCodes.Swap(0))},
	})
}
