// video_backend_ebiten.go - Ebiten windowed VGA backend
//
// Grounded on the teacher's video_backend_ebiten.go: a goroutine running
// ebiten.RunGame feeding an ebiten.Image from a mutex-guarded frame
// buffer, key events drained once per Update(). The guest's fixed-size
// ARGB8888 framebuffer is converted to RGBA and copied at its own size
// with golang.org/x/image/draw (SPEC_FULL §4); fitting it to the window
// is left to ebiten, since Layout reports the fixed guest size.
//
// Always compiled in; NewVideoOutput (video_interface.go) picks this or
// the headless stub at runtime off the -headless flag.

package main

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"
)

type EbitenOutput struct {
	mu          sync.RWMutex
	width       int
	height      int
	frameBuffer []byte
	window      *ebiten.Image
	running     bool
	kbd         *Keyboard
}

func NewEbitenVideoOutput(width, height int) (VideoOutput, error) {
	return &EbitenOutput{
		width:       width,
		height:      height,
		frameBuffer: make([]byte, width*height*4),
	}, nil
}

func (eo *EbitenOutput) Start() error {
	eo.running = true
	ebiten.SetWindowSize(eo.width, eo.height)
	ebiten.SetWindowTitle("RV32IMA emulator")
	ebiten.SetWindowResizable(true)
	go func() { _ = ebiten.RunGame(eo) }()
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running = false
	return nil
}

func (eo *EbitenOutput) UpdateFrame(data []byte) error {
	eo.mu.Lock()
	defer eo.mu.Unlock()
	copy(eo.frameBuffer, data)
	return nil
}

// PollKeys attaches the keyboard device. Update() then drains ebiten's
// key events into it once per frame on the display goroutine rather than
// from the emulator thread, keeping guest state untouched by the display
// goroutine (spec.md §5).
func (eo *EbitenOutput) PollKeys(kbd *Keyboard) {
	eo.mu.Lock()
	eo.kbd = kbd
	eo.mu.Unlock()
}

func (eo *EbitenOutput) Update() error {
	if !eo.running {
		return ebiten.Termination
	}
	eo.mu.RLock()
	kbd := eo.kbd
	eo.mu.RUnlock()
	if kbd != nil {
		for _, k := range inpututil.AppendJustPressedKeys(nil) {
			if code, ok := AMKeycodeForRune(keyToRune(k)); ok {
				kbd.PushEvent(code, true)
			}
		}
		for _, k := range inpututil.AppendJustReleasedKeys(nil) {
			if code, ok := AMKeycodeForRune(keyToRune(k)); ok {
				kbd.PushEvent(code, false)
			}
		}
	}
	return nil
}

func keyToRune(k ebiten.Key) rune {
	name := k.String()
	if len(name) == 1 {
		return rune(name[0])
	}
	return 0
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}
	eo.mu.RLock()
	src := argb8888ToImage(eo.frameBuffer, eo.width, eo.height)
	eo.mu.RUnlock()

	dst := image.NewRGBA(image.Rect(0, 0, eo.width, eo.height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	eo.window.WritePixels(dst.Pix)
	screen.DrawImage(eo.window, nil)
}

func (eo *EbitenOutput) Layout(outsideWidth, outsideHeight int) (int, int) {
	return eo.width, eo.height
}

func argb8888ToImage(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i+3 < len(buf) && i/4 < width*height; i += 4 {
		b, g, r, a := buf[i], buf[i+1], buf[i+2], buf[i+3]
		img.Set(i/4%width, i/4/width, color.RGBA{R: r, G: g, B: b, A: a})
	}
	return img
}
