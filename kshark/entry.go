// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package kshark // import "github.com/xenviz/xentrace-kshark/kshark"

const (
	// InputFormat names the data format this package reads.
	InputFormat = "xentrace_bin"

	// EmptyBin is the task id reported for entries whose task is hidden.
	EmptyBin int32 = -1

	// IdlePID is the task id of the idle domain.
	IdlePID int32 = 0

	// PluginUntouchedMask is the visibility bit that exposes the task id of an entry.
	PluginUntouchedMask uint16 = 1 << 7

	// VisibleAll marks an entry as visible everywhere.
	VisibleAll uint16 = 0xFF

	// Unknown is returned by the name and task accessors when the record is unavailable.
	Unknown = "unknown"
)

// Entry is the compact projection of one trace record. The decoded strings of the
// record are not part of it: they are produced on demand from Offset.
type Entry struct {
	// Visible is a bit mask controlling the visibility of the entry.
	Visible uint16

	StreamID int16

	// EventID is the leaf of the event code.
	EventID int16

	CPU int16

	// PID is the task id of the domain the record belongs to.
	PID int32

	// Offset is the index of the record in its trace.
	Offset int64

	// TS is the time of the record in nanoseconds since the first record.
	TS int64
}
