package render

import (
	"errors"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/masktransition/ecs"
)

var (
	ErrNilCallback   = errors.New("render: nil capture callback")
	ErrCaptureClosed = errors.New("render: capture closed")
)

type captureRequest struct {
	window ecs.Entity
	done   func(image.Image)
}

// ScreenCapture snapshots the next presented frame for every queued request.
// Each callback runs exactly once, on its own goroutine. Requests still
// pending at Close receive a nil image.
type ScreenCapture struct {
	mu      sync.Mutex
	pending []captureRequest
	closed  bool
}

func NewScreenCapture() *ScreenCapture {
	return &ScreenCapture{}
}

// CaptureFrame queues a request for the next frame of window.
func (c *ScreenCapture) CaptureFrame(window ecs.Entity, done func(image.Image)) error {
	if done == nil {
		return ErrNilCallback
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCaptureClosed
	}
	c.pending = append(c.pending, captureRequest{window: window, done: done})
	return nil
}

// Pending returns the number of requests waiting for a frame.
func (c *ScreenCapture) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Present reads frame back to the CPU when captures are pending and hands the
// pixels to their callbacks. Call it from Draw once the frame is complete.
func (c *ScreenCapture) Present(frame *ebiten.Image) {
	if frame == nil || c.Pending() == 0 {
		return
	}

	b := frame.Bounds()
	pix := make([]byte, 4*b.Dx()*b.Dy())
	frame.ReadPixels(pix)
	c.PresentImage(&image.RGBA{
		Pix:    pix,
		Stride: 4 * b.Dx(),
		Rect:   image.Rect(0, 0, b.Dx(), b.Dy()),
	})
}

// dispatch invokes every request's callback with img on its own goroutine.
func dispatch(img image.Image, requests ...captureRequest) {
	for _, req := range requests {
		go req.done(img)
	}
}

func (c *ScreenCapture) take() []captureRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out
}

// PresentImage completes pending requests with a frame already in CPU memory
// and returns how many it served. Present calls it after the GPU readback.
func (c *ScreenCapture) PresentImage(img image.Image) int {
	if img == nil {
		return 0
	}
	requests := c.take()
	dispatch(img, requests...)
	return len(requests)
}

// Close abandons pending requests, calling each with a nil image, and
// rejects new ones. It returns the number of abandoned requests.
func (c *ScreenCapture) Close() int {
	c.mu.Lock()
	c.closed = true
	requests := c.pending
	c.pending = nil
	c.mu.Unlock()

	dispatch(nil, requests...)
	return len(requests)
}
