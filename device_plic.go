// device_plic.go - Platform-Level Interrupt Controller (external interrupts)
//
// spec.md §6 only names the claim/complete register; per-source priority
// and a per-context enable bitmap are supplemented from
// original_source/src/device/plic.rs (SPEC_FULL §6). Still exposes
// exactly one pending external IRQ id to the trap subsystem, matching
// the single-hart / single-effective-source model spec.md describes.

package main

const plicSourceCount = 32

const (
	plicPriorityBase = PlicBase + 0x0
	plicEnableBase   = PlicBase + 0x2000
)

// PLIC implements MMIOCallback for the 4 MiB PLIC region.
type PLIC struct {
	hart *Hart

	priority [plicSourceCount]uint32
	enable   uint32 // bitmap, bit i enables source i for the sole context
	pending  uint32 // bitmap of sources raised but not yet claimed
	claimed  uint32 // id currently claimed and awaiting completion, 0 = none
}

func NewPLIC(h *Hart) *PLIC {
	return &PLIC{hart: h}
}

// RaiseIRQ marks source id (1..31) as pending. Called by device
// callbacks that generate external interrupts.
func (p *PLIC) RaiseIRQ(id uint32) {
	if id == 0 || id >= plicSourceCount {
		return
	}
	p.pending |= 1 << id
	p.updateExternal()
}

func (p *PLIC) highestPending() uint32 {
	best := uint32(0)
	bestPrio := uint32(0)
	for id := uint32(1); id < plicSourceCount; id++ {
		if p.pending&(1<<id) == 0 || p.enable&(1<<id) == 0 {
			continue
		}
		if p.priority[id] >= bestPrio {
			bestPrio = p.priority[id]
			best = id
		}
	}
	return best
}

func (p *PLIC) updateExternal() {
	p.hart.SetExternalBit(BitMEIP, p.highestPending() != 0)
}

func (p *PLIC) Read(addr, length uint32) uint32 {
	switch {
	case addr == PlicClaim:
		id := p.highestPending()
		if id != 0 {
			p.pending &^= 1 << id
			p.claimed = id
			p.updateExternal()
		}
		return id
	case addr >= plicPriorityBase && addr < plicPriorityBase+plicSourceCount*4:
		idx := (addr - plicPriorityBase) / 4
		return p.priority[idx]
	case addr >= plicEnableBase && addr < plicEnableBase+4:
		return p.enable
	default:
		return 0
	}
}

func (p *PLIC) Write(addr, length, data uint32) {
	switch {
	case addr == PlicClaim:
		if data == p.claimed {
			p.claimed = 0
		}
	case addr >= plicPriorityBase && addr < plicPriorityBase+plicSourceCount*4:
		idx := (addr - plicPriorityBase) / 4
		p.priority[idx] = data
	case addr >= plicEnableBase && addr < plicEnableBase+4:
		p.enable = data
		p.updateExternal()
	}
}
