// Package animation renders multi-frame captchas and encodes them as GIF.
package animation

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"io"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/kyiku/ptera-captcha/internal/render"
)

// FrameSink receives finished frames in order and writes the encoded
// animation once all of them are in.
type FrameSink interface {
	AddFrame(img image.Image, delay time.Duration) error
	Finish(w io.Writer) error
}

// GIFSink quantizes frames to the Plan 9 palette and encodes an infinitely
// looping GIF.
type GIFSink struct {
	anim gif.GIF
}

// NewGIFSink creates an empty sink.
func NewGIFSink() *GIFSink {
	return &GIFSink{anim: gif.GIF{LoopCount: 0}}
}

// AddFrame appends img shown for delay.
func (s *GIFSink) AddFrame(img image.Image, delay time.Duration) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: empty frame", render.ErrSerialization)
	}
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	xdraw.FloydSteinberg.Draw(dst, dst.Bounds(), img, b.Min)

	s.anim.Image = append(s.anim.Image, dst)
	// GIF delays are in hundredths of a second.
	s.anim.Delay = append(s.anim.Delay, int(delay/(10*time.Millisecond)))
	return nil
}

// Len returns the number of frames added so far.
func (s *GIFSink) Len() int {
	return len(s.anim.Image)
}

// Finish encodes every frame in memory, then writes the result to w.
func (s *GIFSink) Finish(w io.Writer) error {
	if s.Len() == 0 {
		return fmt.Errorf("%w: no frames", render.ErrSerialization)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, &s.anim); err != nil {
		return fmt.Errorf("%w: failed to encode gif: %v", render.ErrSerialization, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: failed to write gif: %v", render.ErrSerialization, err)
	}
	return nil
}
