// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package xentrace // import "github.com/xenviz/xentrace-kshark/xentrace"

import "fmt"

// Well-known domain ids.
const (
	DomainIDZero    = 0x0000
	DomainIDDefault = 0x7FF4 // DOMID_INVALID
	DomainIDIdle    = 0x7FFF
)

// DomainKind distinguishes the special domains from guests.
type DomainKind uint8

const (
	// DomainZero is the control domain (dom0).
	DomainZero DomainKind = iota
	// DomainIdle is the idle domain of the hypervisor.
	DomainIdle
	// DomainDefault means the domain could not be determined.
	DomainDefault
	// DomainGuest is any other domain, identified by Domain.ID.
	DomainGuest
)

func (k DomainKind) String() string {
	switch k {
	case DomainZero:
		return "zero"
	case DomainIdle:
		return "idle"
	case DomainDefault:
		return "default"
	case DomainGuest:
		return "guest"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Domain identifies the virtual CPU of a domain.
type Domain struct {
	Kind DomainKind

	// ID is the numeric domain id, only meaningful for DomainGuest.
	ID   uint32
	VCPU uint32
}

// NewDomain maps a numeric domain id onto its kind.
func NewDomain(id, vcpu uint32) Domain {
	d := Domain{ID: id, VCPU: vcpu}
	switch id {
	case DomainIDZero:
		d.Kind = DomainZero
	case DomainIDIdle:
		d.Kind = DomainIdle
	case DomainIDDefault:
		d.Kind = DomainDefault
	default:
		d.Kind = DomainGuest
	}
	return d
}

// unpackDomain decodes a dom<<16|vcpu word.
func unpackDomain(word uint32) Domain {
	return NewDomain(word>>16, word&0xFFFF)
}

// Event is the payload of a record.
type Event struct {
	// Code is the 28-bit event code.
	Code uint32

	// Tick is the cycle counter value, inherited from the previous record of
	// the same CPU if the record carried none.
	Tick uint64

	// HasCycles reports whether Tick was recorded with this event.
	HasCycles bool

	// Extra holds the auxiliary words of the event, at most seven.
	Extra []uint32
}

// Record is one parsed trace record.
type Record struct {
	CPU    uint32
	Domain Domain
	Event  Event
}
