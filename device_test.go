package main

import "testing"

func TestClintMSIPDrivesMIP(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	c := NewCLINT(h)
	c.Write(ClintMSIP, 4, 1)
	if h.CSR[CsrMip]&(1<<BitMSIP) == 0 {
		t.Error("writing CLINT MSIP=1 did not set MIP.MSIP")
	}
	c.Write(ClintMSIP, 4, 0)
	if h.CSR[CsrMip]&(1<<BitMSIP) != 0 {
		t.Error("writing CLINT MSIP=0 did not clear MIP.MSIP")
	}
}

func TestClintTimerFiresAtMtimecmp(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	c := NewCLINT(h)
	c.Write(ClintMTimeCmp, 4, 0) // mtimecmp low = 0, high still 0xFFFFFFFF -> huge
	c.Write(ClintMTimeCmp+4, 4, 0)
	c.Tick()
	if h.CSR[CsrMip]&(1<<BitMTIP) == 0 {
		t.Error("mtimecmp=0 should be already elapsed, expected MTIP set")
	}
}

func TestPlicClaimCompleteCycle(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	p := NewPLIC(h)
	p.Write(plicPriorityBase+4*4, 4, 1) // source 4 priority 1
	p.Write(plicEnableBase, 4, 1<<4)
	p.RaiseIRQ(4)

	if h.dynamicMIP()&(1<<BitMEIP) == 0 {
		t.Fatal("RaiseIRQ did not assert MEIP")
	}
	id := p.Read(PlicClaim, 4)
	if id != 4 {
		t.Fatalf("claim = %d, want 4", id)
	}
	if h.dynamicMIP()&(1<<BitMEIP) != 0 {
		t.Error("MEIP should deassert once the only pending source is claimed")
	}
	p.Write(PlicClaim, 4, 4) // complete
	if p.claimed != 0 {
		t.Error("claimed id not cleared after completion write")
	}
}

func TestPlicDisabledSourceNeverClaimed(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	p := NewPLIC(h)
	p.RaiseIRQ(7) // source 7, not enabled
	if id := p.Read(PlicClaim, 4); id != 0 {
		t.Errorf("claim = %d, want 0 (source not enabled)", id)
	}
}

func TestUartTXInvokesCallback(t *testing.T) {
	var got []byte
	u := NewUART(func(b byte) { got = append(got, b) })
	u.Write(UartTX, 1, 'H')
	u.Write(UartTX, 1, 'i')
	if string(got) != "Hi" {
		t.Errorf("TX bytes = %q, want %q", got, "Hi")
	}
}

func TestUartLSRAlwaysReportsTXEmpty(t *testing.T) {
	u := NewUART(nil)
	if got := u.Read(UartLSR, 1); got != 0x20 {
		t.Errorf("LSR = %#x, want 0x20", got)
	}
}

func TestRTCReadsHartElapsedMicros(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	r := NewRTC(h)
	if got := r.Read(RtcBase, 4); got > 1_000_000 {
		t.Errorf("RTC low word = %d, suspiciously large for a freshly reset hart", got)
	}
}

func TestKeyboardQueueFIFO(t *testing.T) {
	k := NewKeyboard()
	k.PushEvent(0x1E, true)
	k.PushEvent(0x1E, false)

	first := k.Read(KeyboardBase, 4)
	if first != 0x1E|(1<<15) {
		t.Errorf("first dequeue = %#x, want keydown scancode with bit15 set", first)
	}
	second := k.Read(KeyboardBase, 4)
	if second != 0x1E {
		t.Errorf("second dequeue = %#x, want keyup scancode with bit15 clear", second)
	}
	if got := k.Read(KeyboardBase, 4); got != 0 {
		t.Errorf("empty queue read = %#x, want 0", got)
	}
}

func TestAMKeycodeForRuneCaseInsensitive(t *testing.T) {
	lower, ok := AMKeycodeForRune('a')
	if !ok {
		t.Fatal("expected a mapping for 'a'")
	}
	upper, ok := AMKeycodeForRune('A')
	if !ok || upper != lower {
		t.Errorf("AMKeycodeForRune('A') = %#x,%v, want %#x,true", upper, ok, lower)
	}
}

func TestVGAControlRegisterReportsDimensions(t *testing.T) {
	v := NewVGA(640, 480, nil)
	want := (uint32(640) << 16) | 480
	if got := v.Read(VGAWidthHeight, 4); got != want {
		t.Errorf("VGA dims register = %#x, want %#x", got, want)
	}
}

type fakeVideoOutput struct {
	frames [][]byte
}

func (f *fakeVideoOutput) Start() error                 { return nil }
func (f *fakeVideoOutput) Stop() error                  { return nil }
func (f *fakeVideoOutput) UpdateFrame(buf []byte) error { f.frames = append(f.frames, buf); return nil }
func (f *fakeVideoOutput) PollKeys(kbd *Keyboard)        {}

func TestVGATickFlushesOnlyWhenSyncRequested(t *testing.T) {
	out := &fakeVideoOutput{}
	v := NewVGA(4, 4, out)
	v.Tick()
	if len(out.frames) != 0 {
		t.Fatal("Tick flushed a frame with no sync request pending")
	}
	v.Write(VGASync, 4, 1)
	v.Tick()
	if len(out.frames) != 1 {
		t.Fatalf("frames = %d, want 1 after a sync request", len(out.frames))
	}
}
