// audio_backend_oto.go - oto/v3 audio output implementation
//
// Grounded on the teacher's audio_backend_oto.go OtoPlayer: an
// oto.Context driving an io.Reader player, pulling samples from the
// guest-facing ring on every Read rather than being pushed to.
//
// Always compiled in; NewAudioOutput (audio_interface.go) picks this or
// the headless stub at runtime off the -headless flag.

package main

import (
	"encoding/binary"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const audioSampleRate = 44100

type OtoAudioOutput struct {
	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	chip    *AudioChip
	started bool
}

func NewOtoAudioOutput() (AudioOutput, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audioSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   0,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return &OtoAudioOutput{ctx: ctx}, nil
}

func (o *OtoAudioOutput) Start(chip *AudioChip) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.chip = chip
	if o.player == nil {
		o.player = o.ctx.NewPlayer(o)
	}
	if !o.started {
		o.player.Play()
		o.started = true
	}
	return nil
}

func (o *OtoAudioOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started && o.player != nil {
		o.player.Pause()
		o.started = false
	}
	return nil
}

// Read implements io.Reader for oto.Player, filling p with PCM samples
// drained from the audio chip's ring. Silence is emitted while the
// guest has not enabled playback.
func (o *OtoAudioOutput) Read(p []byte) (int, error) {
	o.mu.Lock()
	chip := o.chip
	o.mu.Unlock()

	if chip == nil || !chip.Enabled() {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	for i := 0; i+1 < len(p); i += 2 {
		binary.LittleEndian.PutUint16(p[i:i+2], uint16(chip.ReadSample()))
	}
	return len(p), nil
}
