package main

import "testing"

func TestRingZeroCapacityIsNoop(t *testing.T) {
	r := NewRing[int](0)
	r.Push(1)
	r.Push(2)
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for a zero-capacity ring", r.Len())
	}
	if len(r.Items()) != 0 {
		t.Error("zero-capacity ring should never yield items")
	}
}

func TestRingPushAndOrder(t *testing.T) {
	r := NewRing[int](3)
	r.Push(1)
	r.Push(2)
	got := r.Items()
	want := []int{1, 2}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Items() = %v, want %v", got, want)
	}
}

func TestRingEvictsOldestOnOverflow(t *testing.T) {
	r := NewRing[int](2)
	r.Push(1)
	r.Push(2)
	r.Push(3) // evicts 1
	got := r.Items()
	want := []int{2, 3}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Items() = %v, want %v", got, want)
	}
}

func TestTracerGatesChannelsByFlag(t *testing.T) {
	tr := NewTracer(TraceITrace, 4)
	tr.ITrace.Push(ITraceEntry{PC: 0x1000})
	tr.MTrace.Push(MTraceEntry{PC: 0x1000}) // MTrace not enabled -> no-op ring

	if tr.ITrace.Len() != 1 {
		t.Errorf("ITrace.Len() = %d, want 1", tr.ITrace.Len())
	}
	if tr.MTrace.Len() != 0 {
		t.Errorf("MTrace.Len() = %d, want 0 (channel not enabled)", tr.MTrace.Len())
	}
}

func TestTracerDumpOnlyEmitsNonEmptyChannels(t *testing.T) {
	tr := NewTracer(TraceAll, 4)
	tr.ITrace.Push(ITraceEntry{PC: 0x80000000, Inst: 0x13, Mode: ModeMachine, Asm: "nop"})

	var lines []string
	tr.Dump(func(s string) { lines = append(lines, s) })

	if len(lines) != 2 {
		t.Fatalf("Dump produced %d lines, want 2 (header + one entry)", len(lines))
	}
}
