// device_vga.go - VGA control registers + ARGB8888 framebuffer window
//
// Grounded on original_source/src/device/vga.rs and the teacher's
// video_chip.go/vga_constants.go register layout (control register
// block separate from the linear VRAM window). The framebuffer itself
// is registered as a ByteRegionMMIO (membus.go); this file owns only the
// two control registers and the Tick-driven hand-off to VideoOutput.

package main

// VGA implements MMIOCallback for the 8-byte control block at
// VGACtrlBase: offset 0 reads (width<<16)|height; offset 4, written
// non-zero, requests a frame sync.
type VGA struct {
	width, height uint32
	fb            []byte
	out           VideoOutput

	syncRequested bool
}

func NewVGA(width, height uint32, out VideoOutput) *VGA {
	v := &VGA{
		width:  width,
		height: height,
		fb:     make([]byte, width*height*4),
		out:    out,
	}
	return v
}

// Framebuffer exposes the backing ARGB8888 buffer for registration as a
// ByteRegionMMIO at FramebufferBase.
func (v *VGA) Framebuffer() []byte { return v.fb }

func (v *VGA) Read(addr, length uint32) uint32 {
	switch addr - VGACtrlBase {
	case 0:
		return (v.width << 16) | v.height
	default:
		return 0
	}
}

func (v *VGA) Write(addr, length, data uint32) {
	if addr-VGACtrlBase == 4 && data != 0 {
		v.syncRequested = true
	}
}

// Tick flushes a pending sync request to the video backend; invoked by
// the driver's periodic device-tick collaborator.
func (v *VGA) Tick() {
	if !v.syncRequested {
		return
	}
	v.syncRequested = false
	_ = v.out.UpdateFrame(v.fb)
}
