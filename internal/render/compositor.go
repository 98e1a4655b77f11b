package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/kyiku/ptera-captcha/internal/interference"
	"github.com/kyiku/ptera-captcha/internal/layout"
	"github.com/kyiku/ptera-captcha/internal/logging"
)

var logger = logging.New("render")

// maxPasses bounds the resize loop: the first pass plus one corrected pass.
const maxPasses = 2

// fontPalette holds the colors used for glyphs when PaletteFontColors is set.
var fontPalette = []color.RGBA{
	{0, 135, 255, 255}, {51, 153, 51, 255}, {255, 102, 102, 255}, {255, 153, 0, 255},
	{153, 102, 0, 255}, {153, 102, 153, 255}, {51, 153, 153, 255}, {102, 102, 255, 255},
	{0, 102, 204, 255}, {204, 51, 51, 255}, {0, 153, 204, 255}, {0, 51, 102, 255},
}

// PaletteColor returns a random color from the font palette.
func PaletteColor(rnd *rand.Rand) color.RGBA {
	return fontPalette[rnd.Intn(len(fontPalette))]
}

// Still marks a FrameSpec that is not part of an animation.
const Still = -1

// FrameSpec carries per-frame inputs that are not part of Config.
type FrameSpec struct {
	// Index is the animation frame index, or Still.
	Index int
	// Width overrides Config.Width when positive.
	Width int
	// Path is a curve shared by all frames of an animation.
	Path *interference.Path
	// Face overrides font resolution.
	Face font.Face
	// GlyphColors fixes the color of each glyph.
	GlyphColors []color.Color
}

// StillFrame is the FrameSpec of a still image.
func StillFrame() FrameSpec {
	return FrameSpec{Index: Still}
}

// Frame is one composited canvas cropped to its final size.
type Frame struct {
	Image  *image.RGBA
	Width  int
	Height int
	// Passes is 2 when the text overflowed and the frame was redrawn wider.
	Passes int
	Layout layout.Result
	Index  int
	Path   *interference.Path
}

// Compositor draws frames. It keeps no per-render state and is safe for
// concurrent use as long as each call gets its own *rand.Rand.
type Compositor struct {
	fonts *FontBook
}

// NewCompositor creates a compositor drawing text from fonts. A nil book
// uses DefaultFontBook.
func NewCompositor(fonts *FontBook) *Compositor {
	if fonts == nil {
		fonts = DefaultFontBook()
	}
	return &Compositor{fonts: fonts}
}

// Fonts returns the compositor's font book.
func (c *Compositor) Fonts() *FontBook {
	return c.fonts
}

// ResolveFace returns the configured face, or a random one sized at 80% of
// the canvas height. It fails with ErrMissingGlyph when the font cannot draw
// runes.
func (c *Compositor) ResolveFace(rnd *rand.Rand, cfg Config, runes []rune) (font.Face, error) {
	f := RandomFont(rnd, float64(cfg.Height)*0.8)
	if cfg.Font != nil {
		f = *cfg.Font
	}
	if err := c.fonts.Covers(f, runes); err != nil {
		return nil, fmt.Errorf("failed to resolve font: %w", err)
	}
	face, err := c.fonts.Face(f)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve font: %w", err)
	}
	return face, nil
}

// Compose draws runes according to cfg. When the text does not fit and
// ResizeOnOverflow is set, the whole frame is redrawn once at the width the
// layout asked for.
func (c *Compositor) Compose(rnd *rand.Rand, runes []rune, cfg Config, spec FrameSpec) (*Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(runes) == 0 {
		return nil, fmt.Errorf("%w: nothing to draw", ErrInvalidConfig)
	}

	face := spec.Face
	if face == nil {
		var err error
		if face, err = c.ResolveFace(rnd, cfg, runes); err != nil {
			return nil, err
		}
	}

	width := cfg.Width
	if spec.Width > 0 {
		width = spec.Width
	}

	for pass := 1; ; pass++ {
		frame := c.draw(rnd, runes, cfg, spec, face, width)
		frame.Passes = pass
		if !frame.Layout.Overflows(width) {
			return frame, nil
		}
		if !cfg.ResizeOnOverflow || pass >= maxPasses {
			logger.Debugf("text needs %dpx but canvas is %dpx, keeping it", frame.Layout.NeededWidth, width)
			return frame, nil
		}
		logger.Debugf("text needs %dpx but canvas is %dpx, redrawing", frame.Layout.NeededWidth, width)
		width = frame.Layout.NeededWidth
	}
}

// draw runs one full pass of the pipeline on a fresh canvas.
func (c *Compositor) draw(rnd *rand.Rand, runes []rune, cfg Config, spec FrameSpec, face font.Face, width int) *Frame {
	height := cfg.Height
	canvas := image.NewRGBA(image.Rect(0, 0, width+Margin, height+Margin))

	bg := cfg.BackgroundColor
	if bg == nil {
		bg = interference.RandomColor(rnd)
	}
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	// gg always antialiases.
	dc := gg.NewContextForRGBA(canvas)

	for i := 0; i < cfg.LineCount; i++ {
		interference.RandomLine(rnd, width, height, cfg.LineColor).Draw(dc)
	}
	for i := 0; i < cfg.OvalCount; i++ {
		interference.RandomOval(rnd, width, height, cfg.OvalColor).Draw(dc)
	}

	curve := interference.Stroke{Color: cfg.CurveColor, Width: cfg.CurveStrokeWidth, Alpha: cfg.CurveAlpha}
	if spec.Path != nil {
		if curve.Color == nil {
			curve.Color = interference.RandomColor(rnd)
		}
		interference.CubicCurve{Path: *spec.Path, Stroke: curve}.Draw(dc)
	} else {
		for i := 0; i < cfg.CurveCount; i++ {
			interference.RandomCurve(rnd, width, height, curve).Draw(dc)
		}
	}

	if cfg.Distortion {
		interference.Shear(canvas, rnd, width, height, interference.RandomColor(rnd))
	}
	if cfg.NoiseRate > 0 {
		interference.Noise(canvas, rnd, width, height, cfg.NoiseRate)
	}

	res := layout.Place(face, runes, width, height, layout.Options{
		RandomLocation: cfg.RandomLocation,
		Rand:           rnd,
	})
	dc.SetFontFace(face)
	for i, p := range res.Placements {
		col := glyphColor(rnd, cfg, spec, i)
		if spec.Index != Still {
			a := AlphaSweep(spec.Index, i, len(runes))
			if a <= 0 {
				continue
			}
			col = interference.WithAlpha(col, a)
		}
		dc.SetColor(col)
		dc.DrawString(string(p.Rune), float64(p.X), float64(p.Y))
	}

	return &Frame{
		Image:  canvas.SubImage(image.Rect(0, 0, width, height)).(*image.RGBA),
		Width:  width,
		Height: height,
		Layout: res,
		Index:  spec.Index,
		Path:   spec.Path,
	}
}

// GlyphColors picks one color per glyph up front, for renders that draw the
// same text more than once.
func GlyphColors(rnd *rand.Rand, cfg Config, n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = glyphColor(rnd, cfg, FrameSpec{}, i)
	}
	return out
}

func glyphColor(rnd *rand.Rand, cfg Config, spec FrameSpec, i int) color.Color {
	switch {
	case i < len(spec.GlyphColors) && spec.GlyphColors[i] != nil:
		return spec.GlyphColors[i]
	case cfg.FontColor != nil:
		return cfg.FontColor
	case cfg.PaletteFontColors:
		return PaletteColor(rnd)
	default:
		return interference.RandomColor(rnd)
	}
}

// AlphaSweep is the opacity of glyph index in animation frame frame. It
// rises by 1/(length-1) per step of frame+index and wraps once it reaches
// length, so adjacent glyphs cross-fade across adjacent frames.
func AlphaSweep(frame, index, length int) float64 {
	if length <= 1 {
		return 1
	}
	s := float64(frame + index)
	r := 1 / float64(length-1)
	if frame+index >= length {
		return s*r - float64(length)*r
	}
	return s * r
}
