package captcha

import (
	"image/color"
	"time"

	"github.com/kyiku/ptera-captcha/internal/challenge"
	"github.com/kyiku/ptera-captcha/internal/render"
)

type settings struct {
	cfg   render.Config
	seed  *int64
	fonts *render.FontBook
}

// Option customizes a Captcha.
type Option func(*settings)

// WithSize sets the canvas size.
func WithSize(width, height int) Option {
	return func(s *settings) {
		s.cfg.Width = width
		s.cfg.Height = height
	}
}

// WithLength sets the number of challenge characters.
func WithLength(n int) Option {
	return func(s *settings) { s.cfg.Length = n }
}

// WithPolicy replaces the preset's text policy.
func WithPolicy(p challenge.Policy) Option {
	return func(s *settings) { s.cfg.Policy = p }
}

// WithFont fixes the font instead of picking one per render.
func WithFont(f render.Font) Option {
	return func(s *settings) { s.cfg.Font = &f }
}

// WithBackground fixes the background color. Nil picks one per render.
func WithBackground(c color.Color) Option {
	return func(s *settings) { s.cfg.BackgroundColor = c }
}

// WithFontColor fixes the glyph color. Nil picks one per glyph.
func WithFontColor(c color.Color) Option {
	return func(s *settings) {
		s.cfg.FontColor = c
		if c != nil {
			s.cfg.PaletteFontColors = false
		}
	}
}

// WithInterferenceColors fixes the line, oval and curve colors.
func WithInterferenceColors(line, oval, curve color.Color) Option {
	return func(s *settings) {
		s.cfg.LineColor = line
		s.cfg.OvalColor = oval
		s.cfg.CurveColor = curve
	}
}

// WithInterference sets how many of each primitive is drawn. 0 disables it.
func WithInterference(lines, ovals, curves int) Option {
	return func(s *settings) {
		s.cfg.LineCount = lines
		s.cfg.OvalCount = ovals
		s.cfg.CurveCount = curves
	}
}

// WithCurveStroke sets the curve stroke width and opacity.
func WithCurveStroke(width, alpha float64) Option {
	return func(s *settings) {
		s.cfg.CurveStrokeWidth = width
		s.cfg.CurveAlpha = alpha
	}
}

// WithNoise sets the fraction of pixels turned into noise.
func WithNoise(rate float64) Option {
	return func(s *settings) { s.cfg.NoiseRate = rate }
}

// WithDistortion toggles the sinusoidal shear.
func WithDistortion(on bool) Option {
	return func(s *settings) { s.cfg.Distortion = on }
}

// WithRandomLocation toggles per-glyph vertical jitter.
func WithRandomLocation(on bool) Option {
	return func(s *settings) { s.cfg.RandomLocation = on }
}

// WithResize toggles the wider redraw when the text does not fit.
func WithResize(on bool) Option {
	return func(s *settings) { s.cfg.ResizeOnOverflow = on }
}

// WithFrameDelay sets the delay between animation frames.
func WithFrameDelay(d time.Duration) Option {
	return func(s *settings) { s.cfg.FrameDelay = d }
}

// WithSeed makes text and rendering reproducible.
func WithSeed(seed int64) Option {
	return func(s *settings) { s.seed = &seed }
}

// WithFontBook draws text from book instead of the default font book.
func WithFontBook(book *render.FontBook) Option {
	return func(s *settings) { s.fonts = book }
}
