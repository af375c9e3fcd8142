// mmu.go - Sv32 two-level software-walked MMU
//
// Grounded on spec.md §4.6. The standard SSTATUS mask and the
// superpage-misalignment fault are resolved per SPEC_FULL §11 (open
// questions) rather than copied from the quirky source value.

package main

// PTE bit positions (Sv32, spec.md §3).
const (
	PteV = 1 << 0
	PteR = 1 << 1
	PteW = 1 << 2
	PteX = 1 << 3
	PteU = 1 << 4
	PteG = 1 << 5
	PteA = 1 << 6
	PteD = 1 << 7
)

const ptePPNShift = 10

// TranslateResult carries either a physical address or a fault cause.
type TranslateResult struct {
	PAddr uint32
	Fault bool
	Cause uint32
}

func ok(paddr uint32) TranslateResult        { return TranslateResult{PAddr: paddr} }
func faultResult(cause uint32) TranslateResult { return TranslateResult{Fault: true, Cause: cause} }

// MMU wraps the hart + physical memory needed to perform a page walk.
type MMU struct {
	hart *Hart
	mem  *PhysMem
}

func NewMMU(h *Hart, mem *PhysMem) *MMU {
	return &MMU{hart: h, mem: mem}
}

// Check reports whether vaddr needs translation in the hart's current
// mode/SATP configuration.
func (m *MMU) Check() bool {
	satp := m.hart.CSR[CsrSatp]
	mode := (satp >> 31) & 1
	return mode == SatpModeSv32 && m.hart.Mode != ModeMachine
}

func faultCauseFor(access AccessKind) uint32 {
	switch access {
	case AccessIfetch:
		return CauseInstrPageFault
	case AccessWrite:
		return CauseStorePageFault
	default:
		return CauseLoadPageFault
	}
}

// Translate walks the two-level Sv32 page table for vaddr and access
// kind, returning either a physical address or a page-fault cause.
func (m *MMU) Translate(vaddr uint32, access AccessKind) TranslateResult {
	cause := faultCauseFor(access)
	satp := m.hart.CSR[CsrSatp]
	rootPPN := satp & 0x3FFFFF

	vpn1 := (vaddr >> 22) & 0x3FF
	vpn0 := (vaddr >> 12) & 0x3FF
	pageOff := vaddr & 0xFFF

	l1Addr := (rootPPN << 12) + vpn1*4
	pte1 := m.mem.Read(l1Addr, 4)

	if pte1&PteV == 0 || (pte1&PteR == 0 && pte1&PteW != 0) {
		return faultResult(cause)
	}

	if pte1&(PteR|PteX) != 0 {
		// L1 leaf: 4 MiB superpage. PPN[0] (bits [19:10] of the PTE)
		// must be zero or this is a misaligned superpage (SPEC_FULL §11).
		ppn0 := (pte1 >> ptePPNShift) & 0x3FF
		if ppn0 != 0 {
			return faultResult(cause)
		}
		if !m.checkPermissions(pte1, access) {
			return faultResult(cause)
		}
		ppn1 := (pte1 >> (ptePPNShift + 10)) & 0xFFF
		paddr := (ppn1 << 22) | (vaddr & 0x3FFFFF)
		return ok(paddr)
	}

	// Non-leaf: walk to the L2 table.
	ppn := pte1 >> ptePPNShift
	l2Addr := (ppn << 12) + vpn0*4
	pte2 := m.mem.Read(l2Addr, 4)

	if pte2&PteV == 0 || (pte2&PteR == 0 && pte2&PteW != 0) {
		return faultResult(cause)
	}
	if pte2&(PteR|PteW|PteX) == 0 {
		// L2 must be a leaf; a further non-leaf here is a malformed
		// table (Sv32 is exactly two levels).
		return faultResult(cause)
	}
	if !m.checkPermissions(pte2, access) {
		return faultResult(cause)
	}
	ppn2 := pte2 >> ptePPNShift
	paddr := (ppn2 << 12) | pageOff
	return ok(paddr)
}

func (m *MMU) checkPermissions(pte uint32, access AccessKind) bool {
	mxr := m.hart.mstatusBit(MstatusMXR)
	sum := m.hart.mstatusBit(MstatusSUM)

	switch access {
	case AccessIfetch:
		if pte&PteX == 0 {
			return false
		}
	case AccessRead:
		readable := pte&PteR != 0 || (mxr && pte&PteX != 0)
		if !readable {
			return false
		}
	case AccessWrite:
		if pte&PteW == 0 || pte&PteR == 0 {
			return false
		}
	}

	isU := pte&PteU != 0
	switch m.hart.Mode {
	case ModeUser:
		if !isU {
			return false
		}
	case ModeSupervisor:
		if isU && !sum {
			return false
		}
	}
	return true
}
