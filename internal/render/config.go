// Package render composites captcha frames: background, interference,
// distortion, noise and glyphs on one owned canvas.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/kyiku/ptera-captcha/internal/challenge"
)

var (
	// ErrInvalidConfig is returned before any drawing when a Config is unusable.
	ErrInvalidConfig = errors.New("invalid render config")
	// ErrSerialization is returned when an image cannot be encoded or written.
	ErrSerialization = errors.New("captcha serialization failed")
	// ErrMissingGlyph is returned when the resolved font cannot draw the text.
	ErrMissingGlyph = errors.New("font has no glyph for the text")
)

// Margin is added to both canvas dimensions while drawing. The encoded
// image is cropped back to Width x Height.
const Margin = 4

// DefaultFrameDelay is the delay between animation frames.
const DefaultFrameDelay = 500 * time.Millisecond

// Config describes one render. Nil colors and a nil Font are chosen at
// random on every render.
type Config struct {
	Width  int
	Height int
	Length int
	Policy challenge.Policy

	LineCount  int
	OvalCount  int
	CurveCount int

	BackgroundColor color.Color
	FontColor       color.Color
	LineColor       color.Color
	OvalColor       color.Color
	CurveColor      color.Color

	// PaletteFontColors draws glyphs in one of the fixed font palette
	// colors when FontColor is nil.
	PaletteFontColors bool

	Font *Font

	NoiseRate        float64
	Distortion       bool
	RandomLocation   bool
	ResizeOnOverflow bool

	CurveStrokeWidth float64
	CurveAlpha       float64

	FrameDelay time.Duration
}

// DefaultConfig mirrors the plain image captcha defaults.
func DefaultConfig() Config {
	return Config{
		Width:            130,
		Height:           48,
		Length:           5,
		Policy:           challenge.Numeric,
		BackgroundColor:  color.White,
		NoiseRate:        0.02,
		ResizeOnOverflow: true,
		FrameDelay:       DefaultFrameDelay,
	}
}

// Validate rejects configs that cannot be rendered.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfig, c.Width)
	case c.Height <= 0:
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidConfig, c.Height)
	case c.Length <= 0:
		return fmt.Errorf("%w: length must be positive, got %d", ErrInvalidConfig, c.Length)
	case c.Policy == challenge.Arithmetic && c.Length > challenge.MaxExpressionLength:
		return fmt.Errorf("%w: arithmetic length must be at most %d, got %d",
			ErrInvalidConfig, challenge.MaxExpressionLength, c.Length)
	case c.NoiseRate < 0 || c.NoiseRate > 1:
		return fmt.Errorf("%w: noise rate must be within [0,1], got %v", ErrInvalidConfig, c.NoiseRate)
	case c.LineCount < 0 || c.OvalCount < 0 || c.CurveCount < 0:
		return fmt.Errorf("%w: interference counts must not be negative", ErrInvalidConfig)
	case c.Font != nil && c.Font.Size <= 0:
		return fmt.Errorf("%w: font size must be positive, got %v", ErrInvalidConfig, c.Font.Size)
	}
	return nil
}

// Delay returns the frame delay, falling back to DefaultFrameDelay.
func (c Config) Delay() time.Duration {
	if c.FrameDelay <= 0 {
		return DefaultFrameDelay
	}
	return c.FrameDelay
}
