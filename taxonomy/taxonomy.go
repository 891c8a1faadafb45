// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package taxonomy classifies 28-bit xentrace event codes and resolves them to names.
//
// An event code is laid out as in Xen's public/trace.h:
//
//	bits 16-27  class (one of the Category values)
//	bits 12-15  sub-class
//	bits  0-11  leaf
//
// Every function in this package is total: unknown or malformed codes resolve to a
// formatted fallback instead of an error.
package taxonomy // import "github.com/xenviz/xentrace-kshark/taxonomy"

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xenviz/xentrace-kshark/libpf"
)

const (
	// CodeMask selects the event code bits of a record header word.
	CodeMask = 0x0FFFFFFF

	classShift = 16
	classMask  = 0xFFF
	subShift   = 12
	subMask    = 0xF
	leafMask   = 0xFFF
)

// Category is the coarse class of an event code.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryGen
	CategorySched
	CategoryDom0Op
	CategoryHVM
	CategoryMem
	CategoryPV
	CategoryShadow
	CategoryHW
	CategoryGuest
)

// categoryClasses holds the class value of each category in matching order.
var categoryClasses = []struct {
	class    uint16
	category Category
}{
	{0x001, CategoryGen},
	{0x002, CategorySched},
	{0x004, CategoryDom0Op},
	{0x008, CategoryHVM},
	{0x010, CategoryMem},
	{0x020, CategoryPV},
	{0x040, CategoryShadow},
	{0x080, CategoryHW},
	{0x800, CategoryGuest},
}

var categoryNames = map[Category]string{
	CategoryUnknown: "UNKNOWN",
	CategoryGen:     "GEN",
	CategorySched:   "SCHED",
	CategoryDom0Op:  "DOM0OP",
	CategoryHVM:     "HVM",
	CategoryMem:     "MEM",
	CategoryPV:      "PV",
	CategoryShadow:  "SHADOW",
	CategoryHW:      "HW",
	CategoryGuest:   "GUEST",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[CategoryUnknown]
}

// Class is a classified event code.
type Class struct {
	// Code is the 28-bit event code the class was derived from.
	Code     uint32
	Category Category
	Sub      uint8
	Leaf     uint16
}

// Classify decomposes code into its category, sub-class and leaf. Bits above
// the 28-bit code are ignored.
func Classify(code uint32) Class {
	code &= CodeMask
	class := uint16(code>>classShift) & classMask

	c := Class{
		Code:     code,
		Category: CategoryUnknown,
		Sub:      uint8(code>>subShift) & subMask,
		Leaf:     uint16(code) & leafMask,
	}
	for _, cc := range categoryClasses {
		if cc.class == class {
			c.Category = cc.category
			break
		}
	}
	return c
}

// table returns the name table responsible for c, or nil.
func (c Class) table() *nameTable {
	switch c.Category {
	case CategoryGen:
		return &genNames
	case CategorySched:
		switch c.Sub {
		case 0x1:
			return &schedMinNames
		case 0x2:
			return &schedClassNames
		case 0x8:
			return &schedVerboseNames
		}
	case CategoryDom0Op:
		return &dom0opNames
	case CategoryHVM:
		switch c.Sub {
		case 0x1:
			return &hvmEntryExitNames
		case 0x2:
			return &hvmHandlerNames
		case 0x4:
			return &hvmEmulNames
		}
	case CategoryMem:
		return &memNames
	case CategoryPV:
		return &pvNames
	case CategoryShadow:
		return &shadowNames
	case CategoryHW:
		switch c.Sub {
		case 0x1:
			return &hwPMNames
		case 0x2:
			return &hwIRQNames
		}
	case CategoryGuest:
		return &guestNames
	}
	return nil
}

// Lookup returns the table name of the class and whether one exists.
func (c Class) Lookup() (string, bool) {
	t := c.table()
	if t == nil {
		return "", false
	}
	return t.lookup(c.Leaf)
}

// Name returns the name of the class, or "unknown (0xXXXXXXXX)" when no table
// entry matches.
func (c Class) Name() string {
	if name, ok := c.Lookup(); ok {
		return name
	}
	return UnknownName(c.Code)
}

// UnknownName formats the fallback name of code.
func UnknownName(code uint32) string {
	return fmt.Sprintf("unknown (0x%08X)", code)
}

// NameOf is shorthand for Classify(code).Name().
func NameOf(code uint32) string {
	return Classify(code).Name()
}

// Info renders the auxiliary words of an event. No category has a dedicated
// decoder yet, so every word is hex formatted and the results are joined by ", ".
func Info(_ Class, extra []uint32) string {
	var sb strings.Builder
	for i, word := range extra {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%08X", word)
	}
	return sb.String()
}

// codeIndex lists the named event codes.
type codeIndex struct {
	codes  []uint32
	byName map[string]uint32
}

// getIndex builds the index on first use.
var getIndex = sync.OnceValue(buildIndex)

func buildIndex() *codeIndex {
	set := libpf.Set[uint32]{}
	for _, t := range allTables {
		for leaf := range t.names {
			set[t.base|uint32(leaf)] = libpf.Void{}
		}
	}

	idx := codeIndex{codes: libpf.SortedKeys(set)}
	idx.byName = make(map[string]uint32, len(idx.codes))
	for _, code := range idx.codes {
		name := NameOf(code)
		if _, ok := idx.byName[name]; !ok {
			idx.byName[name] = code
		}
	}
	return &idx
}

// Codes returns every event code that has a name, in ascending order. The returned
// slice must not be modified.
func Codes() []uint32 {
	return getIndex().codes
}

// FindCode returns the smallest named event code called name.
func FindCode(name string) (uint32, bool) {
	code, ok := getIndex().byName[name]
	return code, ok
}
