package captcha

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/kyiku/ptera-captcha/internal/challenge"
	"github.com/kyiku/ptera-captcha/internal/render"
)

// Preset names a captcha flavor.
type Preset string

const (
	PresetSpec       Preset = "spec"
	PresetGIF        Preset = "gif"
	PresetArithmetic Preset = "arithmetic"
	PresetChinese    Preset = "chinese"
	PresetChineseGIF Preset = "chinese-gif"
)

// Variant is what a preset renders: which text and whether it is animated.
type Variant struct {
	Policy   challenge.Policy
	Animated bool
}

// MIME returns the content type the variant encodes to.
func (v Variant) MIME() string {
	if v.Animated {
		return render.MIMEGIF
	}
	return render.MIMEPNG
}

// Ext returns the file extension of the variant's format, without the dot.
func (v Variant) Ext() string {
	if v.Animated {
		return "gif"
	}
	return "png"
}

// IdeographFontSize is the font size of the ideograph presets.
const IdeographFontSize = 28

// Curve stroke of the animated and ideograph presets.
const (
	CurveStrokeWidth = 1.2
	CurveAlpha       = 0.7
)

var presetOrder = []Preset{PresetSpec, PresetGIF, PresetArithmetic, PresetChinese, PresetChineseGIF}

// Presets lists every preset.
func Presets() []Preset {
	out := make([]Preset, len(presetOrder))
	copy(out, presetOrder)
	return out
}

// ParsePreset resolves a preset by name.
func ParsePreset(name string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range presetOrder {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Variant returns the preset's variant.
func (p Preset) Variant() Variant {
	switch p {
	case PresetGIF:
		return Variant{Policy: challenge.Numeric, Animated: true}
	case PresetArithmetic:
		return Variant{Policy: challenge.Arithmetic}
	case PresetChinese:
		return Variant{Policy: challenge.Ideograph}
	case PresetChineseGIF:
		return Variant{Policy: challenge.Ideograph, Animated: true}
	default:
		return Variant{Policy: challenge.Numeric}
	}
}

// Supported reports whether fonts can draw the preset. A nil book is the
// default font book.
func (p Preset) Supported(fonts *render.FontBook) error {
	if fonts == nil {
		fonts = render.DefaultFontBook()
	}
	return checkFont(p.Config(), fonts)
}

// Config returns the preset's default render configuration.
func (p Preset) Config() render.Config {
	cfg := render.DefaultConfig()
	cfg.Policy = p.Variant().Policy

	switch p {
	case PresetSpec:
		cfg.LineCount = 3
		cfg.RandomLocation = true
	case PresetGIF:
		cfg.LineCount = 3
		cfg.OvalCount = 3
		cfg.CurveCount = 1
		cfg.CurveStrokeWidth = CurveStrokeWidth
		cfg.CurveAlpha = CurveAlpha
		cfg.RandomLocation = true
	case PresetArithmetic:
		cfg.Length = 3
		cfg.CurveCount = 2
		cfg.NoiseRate = 0
		cfg.PaletteFontColors = true
	case PresetChinese, PresetChineseGIF:
		cfg.Length = 4
		cfg.LineCount = 3
		cfg.OvalCount = 3
		cfg.CurveCount = 3
		cfg.CurveStrokeWidth = CurveStrokeWidth
		cfg.CurveAlpha = CurveAlpha
		cfg.RandomLocation = true
		cfg.BackgroundColor = color.White
		cfg.Font = &render.Font{Family: render.FamilyIdeograph, Style: render.Bold, Size: IdeographFontSize}
	}
	return cfg
}
