package main

import "testing"

func TestSstatusAliasesMstatus(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	h.WriteCSR(CsrMstatus, 0xFFFFFFFF)
	got := h.ReadCSR(CsrSstatus)
	if got != SstatusMask {
		t.Errorf("SSTATUS = %#x, want %#x", got, uint32(SstatusMask))
	}
}

func TestSstatusWriteOnlyTouchesMaskedBits(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	h.WriteCSR(CsrMstatus, 0) // clear everything, including MPP set at reset
	h.WriteCSR(CsrSstatus, 0xFFFFFFFF)
	if h.CSR[CsrMstatus] != SstatusMask {
		t.Errorf("MSTATUS = %#x, want only SSTATUS-masked bits set (%#x)", h.CSR[CsrMstatus], uint32(SstatusMask))
	}
}

func TestSieAliasesDelegatedMie(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	h.WriteCSR(CsrMideleg, 1<<BitSTIP)
	h.WriteCSR(CsrMie, (1<<BitSTIP)|(1<<BitMTIP))
	got := h.ReadCSR(CsrSie)
	want := uint32(1 << BitSTIP)
	if got != want {
		t.Errorf("SIE = %#x, want %#x (only delegated bits visible)", got, want)
	}
}

func TestSieWriteRestrictedToDelegatedBits(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	h.WriteCSR(CsrMideleg, 1<<BitSTIP)
	h.WriteCSR(CsrMie, 0)
	h.WriteCSR(CsrSie, (1<<BitSTIP)|(1<<BitMTIP))
	if h.CSR[CsrMie] != 1<<BitSTIP {
		t.Errorf("MIE = %#x, want only delegated STIP bit set", h.CSR[CsrMie])
	}
}

func TestTimeCsrTracksElapsedMicros(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	got := h.ReadCSR(CsrTime)
	if got > 1_000_000 {
		t.Errorf("TIME = %d, suspiciously large for a freshly reset hart", got)
	}
}

func TestDynamicMipOrsExternalPending(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	h.SetExternalBit(BitMEIP, true)
	if h.ReadCSR(CsrMip)&(1<<BitMEIP) == 0 {
		t.Error("MIP read does not reflect externally-driven MEIP")
	}
	h.SetExternalBit(BitMEIP, false)
	if h.ReadCSR(CsrMip)&(1<<BitMEIP) != 0 {
		t.Error("MEIP still set after SetExternalBit(false)")
	}
}

func TestSetMipBit(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	h.SetMIPBit(BitMTIP, true)
	if h.CSR[CsrMip]&(1<<BitMTIP) == 0 {
		t.Error("SetMIPBit(true) did not set the stored MIP bit")
	}
	h.SetMIPBit(BitMTIP, false)
	if h.CSR[CsrMip]&(1<<BitMTIP) != 0 {
		t.Error("SetMIPBit(false) did not clear the stored MIP bit")
	}
}

func TestMppRoundTrip(t *testing.T) {
	h := NewHart(MBASE, NewTracer(0, 0))
	h.setMPP(ModeSupervisor)
	if h.mpp() != ModeSupervisor {
		t.Errorf("mpp() = %v, want Supervisor", h.mpp())
	}
}
