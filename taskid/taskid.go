// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskid maps xentrace domains onto the dense task ids shown by a trace viewer.
package taskid // import "github.com/xenviz/xentrace-kshark/taskid"

import (
	"fmt"

	"github.com/xenviz/xentrace-kshark/libpf"
	"github.com/xenviz/xentrace-kshark/libpf/xsync"
	"github.com/xenviz/xentrace-kshark/xentrace"
)

const (
	// IdleTaskID denotes "no task" and is never registered.
	IdleTaskID int32 = 0
	// HostTaskID is shared by the control domain and by records whose domain is unknown.
	HostTaskID int32 = xentrace.DomainIDZero + 1
)

// ForDomain returns the task id of d. Guest ids are shifted by one so that they
// never collide with IdleTaskID, saturating at the int32 bound.
func ForDomain(d xentrace.Domain) int32 {
	switch d.Kind {
	case xentrace.DomainIdle:
		return IdleTaskID
	case xentrace.DomainZero, xentrace.DomainDefault:
		return HostTaskID
	}
	return libpf.Saturate[int32](uint64(d.ID) + 1)
}

// Label renders d the way a viewer shows it in its task list.
func Label(d xentrace.Domain) string {
	switch d.Kind {
	case xentrace.DomainZero:
		return fmt.Sprintf("host/v%d", d.VCPU)
	case xentrace.DomainIdle:
		return fmt.Sprintf("idle/v%d", d.VCPU)
	case xentrace.DomainDefault:
		return "default/v?"
	}
	return fmt.Sprintf("d%d/v%d", d.ID, d.VCPU)
}

// Registry is the set of task ids observed in one stream. It only grows and is
// safe for concurrent use.
type Registry struct {
	ids xsync.RWMutex[libpf.Set[int32]]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: xsync.NewRWMutex(libpf.Set[int32]{})}
}

// Register resolves the task id of d and adds it to the registry unless it is
// IdleTaskID. Registering an id twice is a no-op.
func (r *Registry) Register(d xentrace.Domain) int32 {
	id := ForDomain(d)
	if id != IdleTaskID {
		r.Add(id)
	}
	return id
}

// Add inserts id and reports whether it was new. IdleTaskID is ignored.
func (r *Registry) Add(id int32) bool {
	if id == IdleTaskID {
		return false
	}
	if r.Contains(id) {
		return false
	}

	ids := r.ids.WLock()
	defer r.ids.WUnlock(&ids)
	if _, ok := (*ids)[id]; ok {
		return false
	}
	(*ids)[id] = libpf.Void{}
	return true
}

// Contains reports whether id was registered.
func (r *Registry) Contains(id int32) bool {
	ids := r.ids.RLock()
	defer r.ids.RUnlock(&ids)
	_, ok := (*ids)[id]
	return ok
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	ids := r.ids.RLock()
	defer r.ids.RUnlock(&ids)
	return len(*ids)
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []int32 {
	ids := r.ids.RLock()
	defer r.ids.RUnlock(&ids)
	return libpf.SortedKeys(*ids)
}
