package input

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const BufferSize = 100

type MouseSample struct {
	At    time.Duration
	Delta mgl32.Vec2
	Speed float32 // px/s
}

// MouseBuffer keeps the most recent mouse samples in arrival order.
type MouseBuffer struct {
	samples []MouseSample
}

func NewMouseBuffer() *MouseBuffer {
	return &MouseBuffer{samples: make([]MouseSample, 0, BufferSize)}
}

// Push records a delta; frames with no elapsed time carry no speed and are dropped.
func (b *MouseBuffer) Push(delta mgl32.Vec2, dt, now time.Duration) (MouseSample, bool) {
	if dt <= 0 {
		return MouseSample{}, false
	}
	s := MouseSample{
		At:    now,
		Delta: delta,
		Speed: delta.Len() / float32(dt.Seconds()),
	}
	if len(b.samples) == BufferSize {
		copy(b.samples, b.samples[1:])
		b.samples = b.samples[:BufferSize-1]
	}
	b.samples = append(b.samples, s)
	return s, true
}

func (b *MouseBuffer) Latest() (MouseSample, bool) {
	if len(b.samples) == 0 {
		return MouseSample{}, false
	}
	return b.samples[len(b.samples)-1], true
}

func (b *MouseBuffer) Len() int {
	return len(b.samples)
}

func (b *MouseBuffer) Samples() []MouseSample {
	out := make([]MouseSample, len(b.samples))
	copy(out, b.samples)
	return out
}

type Key string

const (
	KeyEscape Key = "Escape"
	KeySpace  Key = "Space"
	KeyUp     Key = "ArrowUp"
	KeyDown   Key = "ArrowDown"
	KeyLeft   Key = "ArrowLeft"
	KeyRight  Key = "ArrowRight"
	KeyP      Key = "KeyP"
	KeyW      Key = "KeyW"
	KeyA      Key = "KeyA"
	KeyS      Key = "KeyS"
	KeyD      Key = "KeyD"
	KeyShift  Key = "Shift"
	KeyCtrl   Key = "Control"
)

// Frame is everything the host sampled for one frame.
type Frame struct {
	DT          time.Duration
	Mouse       mgl32.Vec2
	FirePressed bool // edge: went down this frame
	FireHeld    bool
	Pressed     []Key // edges this frame
	Held        []Key
}

func (f Frame) JustPressed(k Key) bool {
	for _, p := range f.Pressed {
		if p == k {
			return true
		}
	}
	return false
}

func (f Frame) IsHeld(k Key) bool {
	for _, h := range f.Held {
		if h == k {
			return true
		}
	}
	return false
}

// Firing reports whether this frame wants a shot. Spray weapons fire while held.
func (f Frame) Firing(spray bool) bool {
	if spray {
		return f.FirePressed || f.FireHeld
	}
	return f.FirePressed
}
