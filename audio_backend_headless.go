package main

// HeadlessAudioOutput discards samples; used in batch/test runs and
// whenever -headless is passed, since no audio device may be available.
// Grounded on the teacher's audio_backend_headless.go.
type HeadlessAudioOutput struct{}

func NewHeadlessAudioOutput() (AudioOutput, error) {
	return &HeadlessAudioOutput{}, nil
}

func (h *HeadlessAudioOutput) Start(chip *AudioChip) error { return nil }
func (h *HeadlessAudioOutput) Stop() error                 { return nil }
