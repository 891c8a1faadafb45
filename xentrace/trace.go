// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package xentrace parses binary captures written by Xen's xentrace tool.
//
// A capture is a sequence of host endian 32-bit words. Every record starts with a
// header word holding the event code in bits 0-27, the number of extra words in
// bits 28-30 and a flag in bit 31 telling whether two words of cycle counter
// follow. The per-CPU buffers of the hypervisor are interleaved in the file and
// each buffer starts with a TRC_TRACE_CPU_CHANGE record naming its CPU.
package xentrace // import "github.com/xenviz/xentrace-kshark/xentrace"

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/xenviz/xentrace-kshark/nopanicslicereader"
)

// Event codes the parser interprets.
const (
	CodeCPUChange       = 0x0001F003
	CodeSchedSwitch     = 0x0002800A
	CodeContinueRunning = 0x00021002

	codeMask      = 0x0FFFFFFF
	extraShift    = 28
	extraMask     = 0x7
	cyclesFlag    = 1 << 31
	schedMinClass = 0x00021000
	classSubMask  = 0x0FFFF000
	runstateLeaf  = 0x1
	stateRunning  = 0x0
)

var (
	// ErrEmptyTrace is returned for a capture without any record.
	ErrEmptyTrace = errors.New("empty trace")
	// ErrTruncatedRecord is returned when a record runs past the end of the capture.
	ErrTruncatedRecord = errors.New("truncated record")
	// ErrNotXenTrace is returned when the capture does not start with a CPU change record.
	ErrNotXenTrace = errors.New("not a xentrace capture")
)

// Trace is the ordered record collection of one capture. It is immutable once parsed.
type Trace struct {
	records []Record
	nCPUs   int
}

// Len returns the number of records.
func (t *Trace) Len() int {
	return len(t.records)
}

// CPUCount returns one more than the highest CPU number seen.
func (t *Trace) CPUCount() int {
	return t.nCPUs
}

// Records returns the records ordered by tick. The slice must not be modified.
func (t *Trace) Records() []Record {
	return t.records
}

// Record returns the record at index i.
func (t *Trace) Record(i int64) (*Record, bool) {
	if i < 0 || i >= int64(len(t.records)) {
		return nil, false
	}
	return &t.records[i], true
}

// cpuState is the decoding context of one physical CPU.
type cpuState struct {
	tick   uint64
	domain Domain
}

// Parse reads a whole capture from r.
func Parse(r io.Reader) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	return parseBytes(data)
}

func parseBytes(data []byte) (*Trace, error) {
	if len(data) == 0 {
		return nil, ErrEmptyTrace
	}

	first, ok := nopanicslicereader.Uint32Checked(data, 0)
	if !ok {
		return nil, fmt.Errorf("header at offset 0: %w", ErrTruncatedRecord)
	}
	if first&codeMask != CodeCPUChange {
		return nil, fmt.Errorf("first event code 0x%08X: %w", first&codeMask, ErrNotXenTrace)
	}

	var (
		records []Record
		cpu     uint32
		maxCPU  uint32
	)
	cpus := make(map[uint32]*cpuState)
	state := func(cpu uint32) *cpuState {
		s, ok := cpus[cpu]
		if !ok {
			s = &cpuState{domain: NewDomain(DomainIDDefault, 0)}
			cpus[cpu] = s
		}
		return s
	}

	for offs := uint(0); offs < uint(len(data)); {
		hdr, ok := nopanicslicereader.Uint32Checked(data, offs)
		if !ok {
			return nil, fmt.Errorf("header at offset %d: %w", offs, ErrTruncatedRecord)
		}
		start := offs
		offs += 4

		nExtra := uint(hdr>>extraShift) & extraMask
		hasCycles := hdr&cyclesFlag != 0
		nWords := nExtra
		if hasCycles {
			nWords += 2
		}
		if offs+nWords*4 > uint(len(data)) {
			return nil, fmt.Errorf("record at offset %d declares %d words: %w",
				start, nWords, ErrTruncatedRecord)
		}

		ev := Event{Code: hdr & codeMask, HasCycles: hasCycles}
		if hasCycles {
			ev.Tick = nopanicslicereader.Ticks(
				nopanicslicereader.Uint32(data, offs),
				nopanicslicereader.Uint32(data, offs+4))
			offs += 8
		}
		if nExtra > 0 {
			ev.Extra = make([]uint32, nExtra)
			for i := range ev.Extra {
				ev.Extra[i] = nopanicslicereader.Uint32(data, offs)
				offs += 4
			}
		}

		if ev.Code == CodeCPUChange && len(ev.Extra) > 0 {
			cpu = ev.Extra[0]
		}
		maxCPU = max(maxCPU, cpu)

		s := state(cpu)
		if hasCycles {
			s.tick = ev.Tick
		} else {
			ev.Tick = s.tick
		}
		if d, ok := scheduledDomain(&ev); ok {
			s.domain = d
		}

		records = append(records, Record{CPU: cpu, Domain: s.domain, Event: ev})
	}

	// Per-CPU buffers are interleaved, so restore the global order.
	slices.SortStableFunc(records, func(a, b Record) int {
		return cmp.Compare(a.Event.Tick, b.Event.Tick)
	})

	log.Debugf("Parsed %d xentrace records on %d CPUs", len(records), len(cpus))

	return &Trace{
		records: records,
		nCPUs:   int(maxCPU) + 1,
	}, nil
}

// scheduledDomain returns the domain an event puts onto its CPU, if any.
func scheduledDomain(ev *Event) (Domain, bool) {
	switch {
	case ev.Code == CodeSchedSwitch:
		if len(ev.Extra) >= 4 {
			return NewDomain(ev.Extra[2], ev.Extra[3]), true
		}
	case ev.Code == CodeContinueRunning:
		if len(ev.Extra) >= 1 {
			return unpackDomain(ev.Extra[0]), true
		}
	case ev.Code&classSubMask == schedMinClass && ev.Code&0xF == runstateLeaf:
		// Bits 4-7 hold the new runstate.
		if (ev.Code>>4)&0xF == stateRunning && len(ev.Extra) >= 1 {
			return unpackDomain(ev.Extra[0]), true
		}
	}
	return Domain{}, false
}
