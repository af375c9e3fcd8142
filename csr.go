// csr.go - CSR bank: masked aliasing and read-side hooks
//
// All CSR traffic funnels through ReadCSR/WriteCSR rather than scattering
// bit masks across instruction handlers (spec.md §9 design note). Named
// mask/bit constants live in consts.go.

package main

// ReadCSR returns the current value of CSR address a, applying any
// alias masking or dynamic read-side hook.
func (h *Hart) ReadCSR(a uint32) uint32 {
	switch a {
	case CsrSstatus:
		return h.CSR[CsrMstatus] & SstatusMask
	case CsrSie:
		return h.CSR[CsrMie] & h.CSR[CsrMideleg]
	case CsrSip:
		return h.CSR[CsrMip] & h.CSR[CsrMideleg]
	case CsrTime:
		return uint32(h.ElapsedMicros())
	case CsrTimeH:
		return uint32(h.ElapsedMicros() >> 32)
	case CsrMip:
		return h.CSR[CsrMip] | h.dynamicMIP()
	default:
		return h.CSR[a&0xFFF]
	}
}

// WriteCSR writes v to CSR address a, applying masking rules so that
// aliased writes only ever touch the bits their alias owns.
func (h *Hart) WriteCSR(a, v uint32) {
	switch a {
	case CsrSstatus:
		h.CSR[CsrMstatus] = (h.CSR[CsrMstatus] &^ SstatusMask) | (v & SstatusMask)
	case CsrSie:
		deleg := h.CSR[CsrMideleg]
		h.CSR[CsrMie] = (h.CSR[CsrMie] &^ deleg) | (v & deleg)
	case CsrSip:
		// SIP writes are further restricted to SSIP even within the
		// delegated set (spec.md §4.3).
		writable := h.CSR[CsrMideleg] & (1 << BitSSIP)
		h.CSR[CsrMip] = (h.CSR[CsrMip] &^ writable) | (v & writable)
	case CsrTime, CsrTimeH:
		// read-only: writes ignored
	case CsrMip:
		h.CSR[CsrMip] = v
	default:
		h.CSR[a&0xFFF] = v
	}
}

// dynamicMIP reports externally-driven interrupt pending bits that are
// not part of the stored MIP field (e.g. PLIC external IRQ state). The
// PLIC drives them through SetExternalBit.
func (h *Hart) dynamicMIP() uint32 {
	return h.externalPending
}

// SetExternalPending replaces the whole dynamic (non-CSR-stored) portion
// of MIP. The devices in this tree use SetExternalBit (PLIC) or
// SetMIPBit (CLINT) instead.
func (h *Hart) SetExternalPending(bits uint32) {
	h.externalPending = bits
}

// SetExternalBit toggles a single dynamic MIP bit, used by the PLIC to
// assert/deassert MEIP without disturbing any other dynamic source.
func (h *Hart) SetExternalBit(bit uint32, set bool) {
	if set {
		h.externalPending |= 1 << bit
	} else {
		h.externalPending &^= 1 << bit
	}
}

// SetMIPBit directly sets or clears a stored MIP bit, used by the CLINT
// to reflect local-interruptor state (MSIP/MTIP) rather than going
// through the masked CSRRW write path.
func (h *Hart) SetMIPBit(bit uint32, set bool) {
	if set {
		h.CSR[CsrMip] |= 1 << bit
	} else {
		h.CSR[CsrMip] &^= 1 << bit
	}
}

// MSTATUS field helpers used by the trap subsystem and executor.

func (h *Hart) mstatusBit(mask uint32) bool {
	return h.CSR[CsrMstatus]&mask != 0
}

func (h *Hart) setMstatusBit(mask uint32, set bool) {
	if set {
		h.CSR[CsrMstatus] |= mask
	} else {
		h.CSR[CsrMstatus] &^= mask
	}
}

func (h *Hart) mpp() PrivMode {
	return PrivMode((h.CSR[CsrMstatus] & MstatusMPPMask) >> MstatusMPPShift)
}

func (h *Hart) setMPP(m PrivMode) {
	h.CSR[CsrMstatus] = (h.CSR[CsrMstatus] &^ MstatusMPPMask) | (uint32(m) << MstatusMPPShift)
}

func (h *Hart) spp() PrivMode {
	if h.CSR[CsrMstatus]&MstatusSPP != 0 {
		return ModeSupervisor
	}
	return ModeUser
}

func (h *Hart) setSPP(m PrivMode) {
	h.setMstatusBit(MstatusSPP, m == ModeSupervisor)
}
