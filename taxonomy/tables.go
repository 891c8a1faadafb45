// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package taxonomy // import "github.com/xenviz/xentrace-kshark/taxonomy"

// nameTable maps the leaf of an event code to its name. base is the class and
// sub-class part of the codes the table describes, leafMask is applied to the
// leaf before the lookup.
type nameTable struct {
	base     uint32
	leafMask uint16
	names    map[uint16]string
}

func (t *nameTable) lookup(leaf uint16) (string, bool) {
	name, ok := t.names[leaf&t.leafMask]
	return name, ok
}

// Leaf 0x003 (cpu_change) is intentionally absent.
var genNames = nameTable{
	base:     0x0001F000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "lost_records",
		0x002: "wrap_buffer",
		0x004: "trace_irq",
	},
}

var dom0opNames = nameTable{
	base:     0x00041000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "domain_create",
		0x002: "domain_destroy",
	},
}

var memNames = nameTable{
	base:     0x0010F000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "page_grant_map",
		0x002: "page_grant_unmap",
		0x003: "page_grant_transfer",
	},
}

var pvNames = nameTable{
	base:     0x0020F000,
	leafMask: 0x00F,
	names: map[uint16]string{
		0x001: "hypercall",
		0x003: "trap",
		0x004: "page_fault",
		0x005: "forced_invalid_op",
		0x006: "emulate_privop",
		0x007: "emulate_4G",
		0x008: "math_state_restore",
		0x009: "paging_fixup",
		0x00A: "gdt_ldt_mapping_fault",
		0x00B: "ptwr_emulation",
		0x00C: "ptwr_emulation_pae",
		0x00D: "hypercall",
		0x00E: "hypercall",
	},
}

var shadowNames = nameTable{
	base:     0x0040F000,
	leafMask: 0x00F,
	names: map[uint16]string{
		0x001: "shadow_not_shadow",
		0x002: "shadow_fast_propagate",
		0x003: "shadow_fast_mmio",
		0x004: "shadow_false_fast_path",
		0x005: "shadow_mmio",
		0x006: "shadow_fixup",
		0x007: "shadow_domf_dying",
		0x008: "shadow_emulate",
		0x009: "shadow_emulate_unshadow_user",
		0x00A: "shadow_emulate_unshadow_evtinj",
		0x00B: "shadow_emulate_unshadow_unhandled",
		0x00C: "shadow_emulate_wrmap_bf",
		0x00D: "shadow_emulate_prealloc_unpin",
		0x00E: "shadow_emulate_resync_full",
		0x00F: "shadow_emulate_resync_only",
	},
}

// Runstate changes encode the old state in bits 8-11 and the new state in bits 4-7.
var schedMinNames = nameTable{
	base:     0x00021000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x002: "continue_running",
		0x011: "running_to_runnable",
		0x021: "running_to_blocked",
		0x031: "running_to_offline",
		0x101: "runnable_to_running",
		0x121: "runnable_to_blocked",
		0x131: "runnable_to_offline",
		0x201: "blocked_to_running",
		0x211: "blocked_to_runnable",
		0x231: "blocked_to_offline",
		0x301: "offline_to_running",
		0x311: "offline_to_runnable",
		0x321: "offline_to_blocked",
	},
}

var schedClassNames = nameTable{
	base:     0x00022000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "csched:sched_tasklet",
		0x002: "csched:account_start",
		0x003: "csched:account_stop",
		0x004: "csched:stolen_vcpu",
		0x005: "csched:picked_cpu",
		0x006: "csched:tickle",
		0x007: "csched:boost",
		0x008: "csched:unboost",
		0x009: "csched:schedule",
		0x00A: "csched:ratelimit",
		0x00B: "csched:steal_check",

		0x201: "csched2:tick",
		0x202: "csched2:runq_pos",
		0x203: "csched2:credit",
		0x204: "csched2:credit_add",
		0x205: "csched2:tickle_check",
		0x206: "csched2:tickle",
		0x207: "csched2:credit_reset",
		0x208: "csched2:sched_tasklet",
		0x209: "csched2:update_load",
		0x20A: "csched2:runq_assign",
		0x20B: "csched2:updt_vcpu_load",
		0x20C: "csched2:updt_runq_load",
		0x20D: "csched2:tickle_new",
		0x20E: "csched2:runq_max_weight",
		0x20F: "csched2:migrrate",
		0x210: "csched2:load_check",
		0x211: "csched2:load_balance",
		0x212: "csched2:pick_cpu",
		0x213: "csched2:runq_candidate",
		0x214: "csched2:schedule",
		0x215: "csched2:ratelimit",
		0x216: "csched2:runq_cand_chk",

		0x801: "rtds:tickle",
		0x802: "rtds:runq_pick",
		0x803: "rtds:burn_budget",
		0x804: "rtds:repl_budget",
		0x805: "rtds:sched_tasklet",
		0x806: "rtds:schedule",

		0xA01: "null:pick_cpu",
		0xA02: "null:assign",
		0xA03: "null:deassign",
		0xA04: "null:migrate",
		0xA05: "null:schedule",
		0xA06: "null:sched_tasklet",
	},
}

var schedVerboseNames = nameTable{
	base:     0x00028000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "sched_add_domain",
		0x002: "sched_rem_domain",
		0x003: "domain_sleep",
		0x004: "domain_wake",
		0x005: "do_yield",
		0x006: "do_block",
		0x007: "domain_shutdown",
		0x008: "sched_ctl",
		0x009: "sched_adjdom",
		0x00A: "__enter_scheduler",
		0x00B: "s_timer_fn",
		0x00C: "t_timer_fn",
		0x00D: "dom_timer_fn",
		0x00E: "switch_infprev",
		0x00F: "switch_infnext",
		0x010: "domain_shutdown_code",
		0x011: "switch_infcont",
	},
}

var hvmEntryExitNames = nameTable{
	base:     0x00081000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "VMENTRY",
		0x002: "VMEXIT",
		0x102: "VMEXIT",
		0x401: "nVMENTRY",
		0x402: "nVMEXIT",
		0x502: "nVMEXIT",
	},
}

var hvmHandlerNames = nameTable{
	base:     0x00082000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "PF_XEN",
		0x101: "PF_XEN",
		0x002: "PF_INJECT",
		0x102: "PF_INJECT",
		0x003: "INJ_EXC",
		0x004: "INJ_VIRQ",
		0x005: "REINJ_VIRQ",
		0x006: "IO_READ",
		0x007: "IO_WRITE",
		0x008: "CR_READ",
		0x108: "CR_READ",
		0x009: "CR_WRITE",
		0x109: "CR_WRITE",
		0x00A: "DR_READ",
		0x00B: "DR_WRITE",
		0x00C: "MSR_READ",
		0x00D: "MSR_WRITE",
		0x00E: "CPUID",
		0x00F: "INTR",
		0x010: "NMI",
		0x011: "SMI",
		0x012: "VMMCALL",
		0x013: "HLT",
		0x014: "INVLPG",
		0x114: "INVLPG",
		0x015: "MCE",
		0x016: "IOPORT_READ",
		0x216: "IOPORT_WRITE",
		0x017: "MMIO_READ",
		0x217: "MMIO_WRITE",
		0x018: "CLTS",
		0x019: "LMSW",
		0x119: "LMSW",
		0x01A: "RDTSC",
		0x020: "INTR_WINDOW",
		0x021: "NPF",
		0x023: "TRAP",
	},
}

var hvmEmulNames = nameTable{
	base:     0x00084000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "hpet",
		0x005: "hpet",
		0x002: "pit",
		0x006: "pit",
		0x009: "pit",
		0x003: "rtc",
		0x007: "rtc",
		0x004: "vlapic",
		0x008: "vlapic",
		0x00A: "vlapic",
		0x00B: "vpic_update_int_output",
		0x00C: "vpic",
		0x00D: "__vpic_intack",
		0x00E: "vpic_irq_positive_edge",
		0x00F: "vpic_irq_negative_edge",
		0x010: "vpic_ack_pending_irq",
		0x011: "vlapic_accept_pic_intr",
	},
}

var hwPMNames = nameTable{
	base:     0x00801000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "cpu_freq_change",
		0x002: "cpu_idle_entry",
		0x003: "cpu_idle_exit",
	},
}

var hwIRQNames = nameTable{
	base:     0x00802000,
	leafMask: leafMask,
	names: map[uint16]string{
		0x001: "cleanup_move_delayed",
		0x002: "cleanup_move",
		0x003: "bind_vector",
		0x004: "clear_vector",
		0x005: "move_vector",
		0x006: "assign_vector",
		0x007: "bogus_vector",
		0x008: "do_irq",
	},
}

var guestNames = nameTable{
	base:     0x0800F000,
	leafMask: 0,
	names: map[uint16]string{
		0x000: "TRC_GUEST",
	},
}

// allTables lists every table in category order.
var allTables = []*nameTable{
	&genNames, &schedMinNames, &schedClassNames, &schedVerboseNames,
	&dom0opNames, &hvmEntryExitNames, &hvmHandlerNames, &hvmEmulNames,
	&memNames, &pvNames, &shadowNames, &hwPMNames, &hwIRQNames, &guestNames,
}
