package animation

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/kyiku/ptera-captcha/internal/interference"
	"github.com/kyiku/ptera-captcha/internal/logging"
	"github.com/kyiku/ptera-captcha/internal/render"
)

var logger = logging.New("animation")

// Animation is a fully composed sequence of frames. All frames share the
// same size and, when curves are enabled, the same Path.
type Animation struct {
	Frames []*render.Frame
	Path   *interference.Path
	Width  int
	Height int
	Delay  time.Duration
}

// Encode feeds every frame to sink and finishes it into w.
func (a *Animation) Encode(sink FrameSink, w io.Writer) error {
	for _, f := range a.Frames {
		if err := sink.AddFrame(f.Image, a.Delay); err != nil {
			return err
		}
	}
	return sink.Finish(w)
}

// WriteGIF encodes the animation as a looping GIF.
func (a *Animation) WriteGIF(w io.Writer) error {
	return a.Encode(NewGIFSink(), w)
}

// Encoder composes one frame per glyph.
type Encoder struct {
	comp *render.Compositor
}

// NewEncoder creates an encoder drawing with comp. A nil compositor uses
// the default font book.
func NewEncoder(comp *render.Compositor) *Encoder {
	if comp == nil {
		comp = render.NewCompositor(nil)
	}
	return &Encoder{comp: comp}
}

// Compose draws len(runes) frames. The font, glyph colors and curve path
// are chosen once so that only glyph opacity changes between frames.
// Frame 0 settles the canvas width; later frames are drawn at that width.
func (e *Encoder) Compose(rnd *rand.Rand, runes []rune, cfg render.Config) (*Animation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(runes) == 0 {
		return nil, fmt.Errorf("%w: nothing to draw", render.ErrInvalidConfig)
	}

	face, err := e.comp.ResolveFace(rnd, cfg, runes)
	if err != nil {
		return nil, err
	}

	var path *interference.Path
	if cfg.CurveCount > 0 {
		p := interference.SharedPath(rnd, cfg.Width, cfg.Height)
		path = &p
	}

	spec := render.FrameSpec{
		Width:       cfg.Width,
		Path:        path,
		Face:        face,
		GlyphColors: render.GlyphColors(rnd, cfg, len(runes)),
	}

	anim := &Animation{
		Frames: make([]*render.Frame, 0, len(runes)),
		Path:   path,
		Height: cfg.Height,
		Delay:  cfg.Delay(),
	}
	for i := range runes {
		spec.Index = i
		frame, err := e.comp.Compose(rnd, runes, cfg, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to compose frame %d: %w", i, err)
		}
		if i == 0 {
			if frame.Width != cfg.Width {
				logger.Debugf("animation widened from %dpx to %dpx", cfg.Width, frame.Width)
			}
			spec.Width = frame.Width
			anim.Width = frame.Width
			cfg.ResizeOnOverflow = false
		}
		anim.Frames = append(anim.Frames, frame)
	}
	return anim, nil
}
