package main

import "testing"

func TestMMIORegistryOverlapPanics(t *testing.T) {
	r := NewMMIORegistry()
	r.Register("a", 0x1000, 0x100, &ByteRegionMMIO{Base: 0x1000, Buf: make([]byte, 0x100)})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on overlapping registration")
		}
	}()
	r.Register("b", 0x1080, 0x100, &ByteRegionMMIO{Base: 0x1080, Buf: make([]byte, 0x100)})
}

func TestMMIORegistrySealBlocksRegister(t *testing.T) {
	r := NewMMIORegistry()
	r.Seal()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic registering after Seal()")
		}
	}()
	r.Register("late", 0x2000, 0x10, &ByteRegionMMIO{Base: 0x2000, Buf: make([]byte, 0x10)})
}

func TestMMIORegistryDispatch(t *testing.T) {
	r := NewMMIORegistry()
	region := &ByteRegionMMIO{Base: 0x3000, Buf: make([]byte, 0x10)}
	r.Register("dev", 0x3000, 0x10, region)

	r.Write(0x3004, 4, 0xCAFEBABE)
	if got := r.Read(0x3004, 4); got != 0xCAFEBABE {
		t.Errorf("Read = %#x, want %#x", got, 0xCAFEBABE)
	}
}

func TestMMIORegistryMissReturnsZero(t *testing.T) {
	r := NewMMIORegistry()
	if got := r.Read(0x9000, 4); got != 0 {
		t.Errorf("Read from unmapped range = %#x, want 0", got)
	}
}

func TestPhysMemRAMReadWrite(t *testing.T) {
	pm := NewPhysMem(4096, NewMMIORegistry(), NewTracer(0, 0), false)
	pm.Write(MBASE+4, 4, 0x11223344)
	if got := pm.Read(MBASE+4, 4); got != 0x11223344 {
		t.Errorf("Read = %#x, want %#x", got, 0x11223344)
	}
}

func TestPhysMemROMAndScratchRegions(t *testing.T) {
	pm := NewPhysMem(4096, NewMMIORegistry(), NewTracer(0, 0), false)
	pm.Write(BootROMBase, 4, 0xAABBCCDD)
	if got := pm.Read(BootROMBase, 4); got != 0xAABBCCDD {
		t.Errorf("ROM Read = %#x, want %#x", got, 0xAABBCCDD)
	}
	pm.Write(ScratchpadBase+8, 2, 0x55AA)
	if got := pm.Read(ScratchpadBase+8, 2); got != 0x55AA {
		t.Errorf("scratch Read = %#x, want %#x", got, 0x55AA)
	}
}

func TestPhysMemFallsThroughToMMIO(t *testing.T) {
	reg := NewMMIORegistry()
	region := &ByteRegionMMIO{Base: UartBase, Buf: make([]byte, UartSize)}
	reg.Register("uart", UartBase, UartSize, region)
	pm := NewPhysMem(4096, reg, NewTracer(0, 0), false)

	pm.Write(UartTX, 1, 'A')
	if got := pm.Read(UartTX, 1); got != 'A' {
		t.Errorf("MMIO passthrough Read = %#x, want 'A'", got)
	}
}

func TestPhysMemClassifyRejectsAddressWrap(t *testing.T) {
	pm := NewPhysMem(4096, NewMMIORegistry(), NewTracer(0, 0), false)
	// addr + length overflows uint32, must not be classified into any region.
	if got := pm.classify(0xFFFFFFFF, 8); got != regionNone {
		t.Errorf("classify wrap-around = %v, want regionNone", got)
	}
}

func TestPhysMemLoadImage(t *testing.T) {
	pm := NewPhysMem(4096, NewMMIORegistry(), NewTracer(0, 0), false)
	pm.LoadImage([]byte{0x01, 0x02, 0x03, 0x04})
	if got := pm.Read(MBASE+PCResetOffset, 4); got != 0x04030201 {
		t.Errorf("loaded image Read = %#x, want %#x", got, 0x04030201)
	}
}

func TestByteRegionMMIOReadWrite(t *testing.T) {
	b := &ByteRegionMMIO{Base: 0x4000, Buf: make([]byte, 16)}
	b.Write(0x4008, 4, 0xDEADBEEF)
	if got := b.Read(0x4008, 4); got != 0xDEADBEEF {
		t.Errorf("Read = %#x, want %#x", got, 0xDEADBEEF)
	}
}
