// driver.go - Execution driver: fetch-decode-execute loop
//
// Grounded on spec.md §4.1/§5 and the teacher's ExecuteInstruction-style
// run loop (cpu_ie32.go), generalized to the throttled interrupt-poll /
// device-tick cadence this spec calls for.

package main

import "fmt"

// State is the global run-state, shared across the driver and any
// external collaborator (signal handler, display thread) that can
// request termination (spec.md §5).
type State int

const (
	StateRunning State = iota
	StateStop
	StateEnd
	StateAbort
	StateQuit
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateStop:
		return "Stop"
	case StateEnd:
		return "End"
	case StateAbort:
		return "Abort"
	case StateQuit:
		return "Quit"
	default:
		return "?"
	}
}

const (
	intrPollInterval = 1024   // 2^10
	tickInterval     = 65536  // 2^16
)

// Ticker is the peripheral tick collaborator invoked every tickInterval
// instructions (spec.md §4.1).
type Ticker interface {
	Tick()
}

// Machine bundles a Hart with its physical address space, MMU, trace
// subsystem and the peripherals that need periodic ticking.
type Machine struct {
	Hart  *Hart
	Mem   *PhysMem
	MMU   *MMU
	Trace *Tracer
	State State

	// SymbolResolver renders a PC into a human-readable symbol for
	// FTRACE; defaults to "sub_<hex>" when no symbol table is loaded
	// (ELF ingestion itself stays out of core scope, spec.md §1).
	SymbolResolver func(pc uint32) string

	tickers []Ticker

	instCount uint64

	logf func(string, ...any) (int, error)
}

// NewMachine wires a freshly reset Hart to its memory/MMU/trace.
func NewMachine(h *Hart, mem *PhysMem, trace *Tracer) *Machine {
	return &Machine{
		Hart:  h,
		Mem:   mem,
		MMU:   NewMMU(h, mem),
		Trace: trace,
		State: StateStop,
		logf:  fmt.Printf,
	}
}

// AddTicker registers a peripheral to receive periodic Tick() calls.
func (m *Machine) AddTicker(t Ticker) {
	m.tickers = append(m.tickers, t)
}

// Run executes up to n instructions or until State leaves Running. It
// rejects further runs once the machine has reached a terminal state
// (End or Abort), per spec.md §5.
func (m *Machine) Run(n uint64) {
	if m.State == StateEnd || m.State == StateAbort {
		m.logf("run() rejected: machine already in terminal state %s\n", m.State)
		return
	}
	m.State = StateRunning

	for i := uint64(0); i < n; i++ {
		if m.State != StateRunning {
			return
		}

		if m.instCount%intrPollInterval == 0 {
			m.pollInterrupts()
		}
		if m.instCount%tickInterval == 0 {
			m.tickDevices()
		}

		m.Step()
		m.instCount++
	}
}

func (m *Machine) pollInterrupts() {
	cause := m.Hart.QueryIntr()
	if cause == 0 {
		return
	}
	newpc := m.Hart.RaiseIntr(cause, m.Hart.PC, 0)
	m.Hart.PC = newpc
}

func (m *Machine) tickDevices() {
	for _, t := range m.tickers {
		t.Tick()
	}
}

// Step executes exactly one instruction: fetch (through the MMU),
// decode, dispatch, and PC advance. All side effects within a single
// instruction complete before this call returns (spec.md §5: no
// suspension inside a single instruction).
func (m *Machine) Step() {
	if m.State != StateRunning && m.State != StateStop {
		return
	}

	pc := m.Hart.PC
	paddr, trapped := m.translate(pc, pc, AccessIfetch)
	if trapped {
		return
	}

	word := m.Mem.Read(paddr, 4)
	inst := Decode(word)

	if m.Trace.flags&TraceITrace != 0 {
		m.Trace.ITrace.Push(ITraceEntry{PC: pc, Inst: word, Mode: m.Hart.Mode, Asm: Disassemble(pc, inst)})
	}

	nextPC := pc + 4
	trapped = m.dispatch(pc, inst, &nextPC)

	m.Hart.restoreZero()
	if !trapped {
		m.Hart.PC = nextPC
	}

	if m.State == StateAbort {
		m.logf("ABORT at pc=%#08x inst=%#08x\n", pc, word)
		m.Trace.Dump(func(s string) { m.logf("%s\n", s) })
	}
}

// raiseException is the executor's single authority for converting a
// cause into a trap: it looks up the new PC and installs it directly,
// ensuring CSRs and PC update exactly once per faulting instruction
// (spec.md §7).
func (m *Machine) raiseException(cause, epc, tval uint32) {
	newpc := m.Hart.RaiseIntr(cause, epc, tval)
	m.Hart.PC = newpc
}

// translate runs vaddr through the MMU (when active) for the given
// access kind, tracing the walk and raising a page fault trap rooted at
// epc on failure.
func (m *Machine) translate(epc, vaddr uint32, access AccessKind) (uint32, bool) {
	if !m.MMU.Check() {
		return vaddr, false
	}
	res := m.MMU.Translate(vaddr, access)
	if m.Trace.flags&TraceMMU != 0 {
		m.Trace.MMU.Push(MMUTraceEntry{VAddr: vaddr, PAddr: res.PAddr, Fault: res.Fault, Cause: res.Cause, Access: access})
	}
	if res.Fault {
		m.raiseException(res.Cause, epc, vaddr)
		return 0, true
	}
	return res.PAddr, false
}

// load performs a translated memory read of the given width, optionally
// sign-extending the result to 32 bits.
func (m *Machine) load(pc, vaddr, length uint32, signed bool) (uint32, bool) {
	paddr, trapped := m.translate(pc, vaddr, AccessRead)
	if trapped {
		return 0, true
	}
	val := m.Mem.Read(paddr, length)
	if m.Trace.flags&TraceMTrace != 0 {
		m.Trace.MTrace.Push(MTraceEntry{PC: pc, Addr: vaddr, Len: uint8(length), Value: val})
	}
	if signed {
		val = uint32(signExtend(val, int(length)*8))
	}
	return val, false
}

// store performs a translated memory write and invalidates any LR/SC
// reservation covering the written word.
func (m *Machine) store(pc, vaddr, length, value uint32) bool {
	paddr, trapped := m.translate(pc, vaddr, AccessWrite)
	if trapped {
		return true
	}
	m.Mem.Write(paddr, length, value)
	if m.Trace.flags&TraceMTrace != 0 {
		m.Trace.MTrace.Push(MTraceEntry{PC: pc, Addr: vaddr, Len: uint8(length), Write: true, Value: value})
	}
	m.Hart.InvalidateReservation(paddr)
	return false
}
