// trap.go - Interrupt prioritisation, exception raising, M/S delegation, xRET
//
// Grounded on spec.md §4.4 and original_source/src/isa/riscv32/system/intr.rs.

package main

// PendingInterrupts returns the OR of stored MIP (which the CLINT sets
// for MSIP/MTIP) and the dynamically driven external-interrupt state
// (the PLIC's MEIP).
func (h *Hart) PendingInterrupts() uint32 {
	return h.CSR[CsrMip] | h.dynamicMIP()
}

// QueryIntr computes the highest-priority pending, enabled interrupt
// cause, returning 0 when none is ready to fire.
func (h *Hart) QueryIntr() uint32 {
	pending := h.PendingInterrupts()
	mie := h.CSR[CsrMie]
	mideleg := h.CSR[CsrMideleg]

	mEnabled := h.Mode != ModeMachine || (h.Mode == ModeMachine && h.mstatusBit(MstatusMIE))
	if mEnabled {
		mPending := pending & mie &^ mideleg
		for _, bit := range [...]uint32{BitMEIP, BitMTIP, BitMSIP} {
			if mPending&(1<<bit) != 0 {
				return InterruptBit | bit
			}
		}
	}

	sEnabled := h.Mode == ModeUser || (h.Mode == ModeSupervisor && h.mstatusBit(MstatusSIE))
	if sEnabled {
		sPending := pending & mie & mideleg
		for _, bit := range [...]uint32{BitSEIP, BitSTIP, BitSSIP} {
			if sPending&(1<<bit) != 0 {
				return InterruptBit | bit
			}
		}
	}
	return 0
}

// RaiseIntr transfers control to the trap handler for cause, recording
// epc/tval, applying M/S delegation, and returning the new PC.
func (h *Hart) RaiseIntr(cause, epc, tval uint32) uint32 {
	isIntr := cause&InterruptBit != 0
	code := cause &^ InterruptBit

	delegated := h.isDelegated(isIntr, code)
	fromMode := h.Mode

	if delegated {
		h.CSR[CsrScause] = cause
		h.CSR[CsrSepc] = epc
		h.CSR[CsrStval] = tval
		h.setMstatusBit(MstatusSPIE, h.mstatusBit(MstatusSIE))
		h.setMstatusBit(MstatusSIE, false)
		h.setSPP(fromMode)
		h.Mode = ModeSupervisor
		h.trace.Intr.Push(IntrTraceEntry{PC: epc, Cause: cause, IsIntr: isIntr, FromMode: fromMode, ToMode: ModeSupervisor, Delegated: true})
		return h.CSR[CsrStvec]
	}

	h.CSR[CsrMcause] = cause
	h.CSR[CsrMepc] = epc
	h.CSR[CsrMtval] = tval
	h.setMstatusBit(MstatusMPIE, h.mstatusBit(MstatusMIE))
	h.setMstatusBit(MstatusMIE, false)
	h.setMPP(fromMode)
	h.Mode = ModeMachine
	h.trace.Intr.Push(IntrTraceEntry{PC: epc, Cause: cause, IsIntr: isIntr, FromMode: fromMode, ToMode: ModeMachine, Delegated: false})
	return h.CSR[CsrMtvec]
}

// isDelegated reports whether a trap of the given kind/code should route
// to S-mode: only possible when the hart is not already in M-mode.
func (h *Hart) isDelegated(isIntr bool, code uint32) bool {
	if h.Mode == ModeMachine {
		return false
	}
	deleg := h.CSR[CsrMedeleg]
	if isIntr {
		deleg = h.CSR[CsrMideleg]
	}
	if code >= 32 {
		return false
	}
	return deleg&(1<<code) != 0
}

// MRET restores machine-mode state and returns the resume PC.
func (h *Hart) MRET() uint32 {
	h.setMstatusBit(MstatusMIE, h.mstatusBit(MstatusMPIE))
	h.setMstatusBit(MstatusMPIE, true)
	h.Mode = h.mpp()
	h.setMPP(ModeUser)
	return h.CSR[CsrMepc]
}

// SRET restores supervisor-mode state and returns the resume PC. The
// restored mode is restricted to a single bit (U or S only), per
// spec.md §4.4.
func (h *Hart) SRET() uint32 {
	h.setMstatusBit(MstatusSIE, h.mstatusBit(MstatusSPIE))
	h.setMstatusBit(MstatusSPIE, true)
	h.Mode = h.spp()
	h.setSPP(ModeUser)
	return h.CSR[CsrSepc]
}
