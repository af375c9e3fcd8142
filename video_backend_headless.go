package main

// HeadlessVideoOutput discards frames; used in batch/test runs and
// whenever -headless is passed, since no display may be available.
// Grounded on the teacher's video_backend_headless.go.
type HeadlessVideoOutput struct {
	width, height int
	frames        uint64
}

func NewHeadlessVideoOutput(width, height int) (VideoOutput, error) {
	return &HeadlessVideoOutput{width: width, height: height}, nil
}

func (h *HeadlessVideoOutput) Start() error { return nil }
func (h *HeadlessVideoOutput) Stop() error  { return nil }

func (h *HeadlessVideoOutput) UpdateFrame(buffer []byte) error {
	h.frames++
	return nil
}

func (h *HeadlessVideoOutput) PollKeys(kbd *Keyboard) {}
