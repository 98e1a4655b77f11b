// Package layout computes where each captcha glyph is drawn.
package layout

import (
	"math/rand"

	"golang.org/x/image/font"
)

const (
	// Gap separates glyphs when the text no longer fits one glyph per slot.
	Gap = 2
	// Indent shifts every glyph right inside its slot.
	Indent = 3

	// JitterMin and JitterMax bound the random baseline as a fraction of
	// the canvas height.
	JitterMin = 0.7
	JitterMax = 1.0
)

// Placement is the position of one glyph. Y is the baseline.
type Placement struct {
	Rune    rune
	X       int
	Y       int
	Advance int
}

// Result is a computed layout.
type Result struct {
	Placements []Placement
	// SlotWidth is width/len(runes).
	SlotWidth int
	// Padding is the left/right space around a glyph inside its slot.
	Padding int
	// Packed is set when padding was not positive and glyphs were packed
	// at advance+Gap instead.
	Packed bool
	// NeededWidth is the width the text requires.
	NeededWidth int
}

// Overflows reports whether the text needs more than width pixels.
func (r Result) Overflows(width int) bool {
	return r.NeededWidth > width
}

// Options controls vertical placement.
type Options struct {
	// RandomLocation jitters each baseline in [JitterMin, JitterMax) * height.
	RandomLocation bool
	Rand           *rand.Rand
}

// GlyphWidth returns the representative glyph width: the widest advance
// among runes.
func GlyphWidth(face font.Face, runes []rune) int {
	widest := 0
	for _, r := range runes {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			adv, _ = face.GlyphAdvance('W')
		}
		if w := adv.Ceil(); w > widest {
			widest = w
		}
	}
	return widest
}

// NaturalWidth is the sum of glyph advances with no spacing.
func NaturalWidth(face font.Face, runes []rune) int {
	return font.MeasureString(face, string(runes)).Ceil()
}

// Baseline returns the baseline that vertically centers the glyph box.
func Baseline(face font.Face, height int) int {
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	return height - (height-(ascent+descent))/2 - descent
}

// Place lays runes out over width x height.
func Place(face font.Face, runes []rune, width, height int, opts Options) Result {
	if len(runes) == 0 {
		return Result{}
	}
	n := len(runes)
	slot := width / n
	glyph := GlyphWidth(face, runes)
	pad := (slot - glyph) / 2

	res := Result{
		Placements: make([]Placement, n),
		SlotWidth:  slot,
		Padding:    pad,
	}
	base := Baseline(face, height)

	if pad <= 0 {
		res.Packed = true
		for i, r := range runes {
			res.Placements[i] = Placement{
				Rune:    r,
				X:       i * (glyph + Gap),
				Y:       baselineFor(base, height, opts),
				Advance: glyph,
			}
		}
		res.NeededWidth = (glyph + Gap) * n
		return res
	}

	for i, r := range runes {
		res.Placements[i] = Placement{
			Rune:    r,
			X:       i*slot + pad + Indent,
			Y:       baselineFor(base, height, opts),
			Advance: glyph,
		}
	}
	res.NeededWidth = width
	return res
}

func baselineFor(base, height int, opts Options) int {
	if !opts.RandomLocation || opts.Rand == nil {
		return base
	}
	f := JitterMin + (JitterMax-JitterMin)*opts.Rand.Float64()
	return int(f * float64(height))
}
