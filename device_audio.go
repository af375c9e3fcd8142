// device_audio.go - 64 KiB circular PCM buffer plus an enable register
//
// Grounded on original_source/src/device/audio.rs: a control register
// and a raw buffer window registered as two separate MMIO ranges. The
// original leaves both as no-op stubs; SPEC_FULL wires this one to a
// real playback backend (audio_backend_oto.go) instead, pulling samples
// the way the teacher's OtoPlayer pulls from SoundChip.ReadSampleFromRing.

package main

import "sync"

// AudioChip backs the 64 KiB circular PCM buffer at AudioBufferBase and
// the single enable register at AudioCtrlBase. The guest writes raw
// little-endian int16 samples into the buffer at a wrapping offset of
// its own choosing; the backend drains sequentially from readPos.
type AudioChip struct {
	mu      sync.Mutex
	buf     []byte
	readPos uint32
	enabled bool
}

func NewAudioChip() *AudioChip {
	return &AudioChip{buf: make([]byte, AudioBufferSize)}
}

// Buffer exposes the backing PCM ring for registration as a
// ByteRegionMMIO at AudioBufferBase.
func (a *AudioChip) Buffer() []byte { return a.buf }

func (a *AudioChip) Read(addr, length uint32) uint32 {
	if addr == AudioCtrlBase {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.enabled {
			return 1
		}
		return 0
	}
	return 0
}

func (a *AudioChip) Write(addr, length, data uint32) {
	if addr == AudioCtrlBase {
		a.mu.Lock()
		a.enabled = data&1 != 0
		a.mu.Unlock()
	}
}

func (a *AudioChip) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// ReadSample pulls the next little-endian int16 PCM sample from the ring
// and advances the read cursor. Called from the audio backend's drain
// goroutine, never from the emulator thread.
func (a *AudioChip) ReadSample() int16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := uint32(len(a.buf))
	lo := a.buf[a.readPos]
	hi := a.buf[(a.readPos+1)%n]
	a.readPos = (a.readPos + 2) % n
	return int16(uint16(lo) | uint16(hi)<<8)
}
