// consts.go - Centralized address map and CSR constants for the RV32IMA core
//
// This file is the single source of truth for physical memory layout,
// peripheral base addresses, CSR indices/masks, and trap cause codes.
// Individual device files define their own per-register offsets in
// *_constants-style blocks near the top of each device file.

package main

// ------------------------------------------------------------------------------
// Physical address space
// ------------------------------------------------------------------------------
const (
	MBASE           = 0x80000000 // Main RAM base
	DefaultMSize    = 128 * 1024 * 1024
	PCResetOffset   = 0x0 // Reset vector = MBASE + PCResetOffset
	BootROMBase     = 0x20000000
	BootROMSize     = 4 * 1024
	ScratchpadBase  = 0x0F000000
	ScratchpadSize  = 8 * 1024
)

// ------------------------------------------------------------------------------
// Peripheral map (spec.md §6)
// ------------------------------------------------------------------------------
const (
	ClintBase = 0x02000000
	ClintSize = 64 * 1024
	ClintMSIP = ClintBase + 0x0000
	ClintMTimeCmp = ClintBase + 0x4000
	ClintMTime = ClintBase + 0xBFF8

	PlicBase  = 0x0C000000
	PlicSize  = 4 * 1024 * 1024
	PlicClaim = PlicBase + 0x201004

	UartBase = 0xA00003F8
	UartSize = 8
	UartTX   = UartBase + 0
	UartLSR  = UartBase + 5

	RtcBase = 0xA0000048
	RtcSize = 8

	KeyboardBase = 0xA0000060
	KeyboardSize = 4

	VGACtrlBase = 0xA0000100
	VGACtrlSize = 8
	VGAWidthHeight = VGACtrlBase + 0
	VGASync        = VGACtrlBase + 4

	FramebufferBase = 0xA1000000

	AudioCtrlBase = 0xA0000200
	AudioCtrlSize = 4

	AudioBufferBase = 0xA1200000
	AudioBufferSize = 64 * 1024

	DiskBase = 0xA0000300
	DiskSize = 4
)

const (
	DefaultVGAWidth  = 640
	DefaultVGAHeight = 480
)

// ------------------------------------------------------------------------------
// Privilege modes
// ------------------------------------------------------------------------------
type PrivMode uint8

const (
	ModeUser       PrivMode = 0
	ModeSupervisor PrivMode = 1
	ModeMachine    PrivMode = 3
)

func (m PrivMode) String() string {
	switch m {
	case ModeUser:
		return "U"
	case ModeSupervisor:
		return "S"
	case ModeMachine:
		return "M"
	default:
		return "?"
	}
}

// ------------------------------------------------------------------------------
// CSR addresses
// ------------------------------------------------------------------------------
const (
	CsrSstatus = 0x100
	CsrSie     = 0x104
	CsrStvec   = 0x105
	CsrSscratch = 0x140
	CsrSepc    = 0x141
	CsrScause  = 0x142
	CsrStval   = 0x143
	CsrSip     = 0x144
	CsrSatp    = 0x180

	CsrMstatus = 0x300
	CsrMisa    = 0x301
	CsrMedeleg = 0x302
	CsrMideleg = 0x303
	CsrMie     = 0x304
	CsrMtvec   = 0x305
	CsrMscratch = 0x340
	CsrMepc    = 0x341
	CsrMcause  = 0x342
	CsrMtval   = 0x343
	CsrMip     = 0x344

	CsrTime  = 0xC01
	CsrTimeH = 0xC81
)

// ------------------------------------------------------------------------------
// MSTATUS / SSTATUS bit layout
// ------------------------------------------------------------------------------
const (
	MstatusSIE  = 1 << 1
	MstatusMIE  = 1 << 3
	MstatusSPIE = 1 << 5
	MstatusMPIE = 1 << 7
	MstatusSPP  = 1 << 8
	MstatusMPPShift = 11
	MstatusMPPMask  = 0x3 << MstatusMPPShift
	MstatusSUM  = 1 << 18
	MstatusMXR  = 1 << 19

	// Resolved per SPEC_FULL §11 open question: the standard RISC-V
	// privileged spec mask, not the 0x800DE162 quirk.
	SstatusMask = 0x800DE133
)

// ------------------------------------------------------------------------------
// MIP/MIE interrupt bit positions
// ------------------------------------------------------------------------------
const (
	BitSSIP = 1
	BitMSIP = 3
	BitSTIP = 5
	BitMTIP = 7
	BitSEIP = 9
	BitMEIP = 11
)

const InterruptBit = 1 << 31

// ------------------------------------------------------------------------------
// Exception cause codes
// ------------------------------------------------------------------------------
const (
	CauseIllegalInstruction = 2
	CauseBreakpoint         = 3
	CauseEcallFromU         = 8
	CauseEcallFromS         = 9
	CauseEcallFromM         = 11
	CauseInstrPageFault     = 12
	CauseLoadPageFault      = 13
	CauseStorePageFault     = 15
)

// ------------------------------------------------------------------------------
// Access kinds used by the MMU and memory bus
// ------------------------------------------------------------------------------
type AccessKind uint8

const (
	AccessIfetch AccessKind = iota
	AccessRead
	AccessWrite
)

// SATP.MODE bit for Sv32
const SatpModeSv32 = 1
