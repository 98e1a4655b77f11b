package interference

import (
	"image"
	"image/color"
	"math"
	"math/rand"
)

// Noise sets rate*width*height random pixels inside the width x height
// area to random colors.
func Noise(img *image.RGBA, rnd *rand.Rand, width, height int, rate float64) int {
	if rate <= 0 || width <= 0 || height <= 0 {
		return 0
	}
	n := int(rate * float64(width) * float64(height))
	for i := 0; i < n; i++ {
		img.SetRGBA(rnd.Intn(width), rnd.Intn(height), RandomColor(rnd))
	}
	return n
}

// Wave is one sinusoidal shear pass. Each row (or column) at position p is
// moved by (Period/2) * sin(p/Period + 2*pi*Phase/Frames).
type Wave struct {
	Period int
	Phase  int
	Frames int
}

// Offset returns the shift applied at position p.
func (w Wave) Offset(p int) int {
	if w.Period <= 0 || w.Frames <= 0 {
		return 0
	}
	d := float64(w.Period>>1) *
		math.Sin(float64(p)/float64(w.Period)+(2*math.Pi*float64(w.Phase))/float64(w.Frames))
	return int(d)
}

// RandomWaves picks the horizontal and vertical shear parameters.
func RandomWaves(rnd *rand.Rand) (Wave, Wave) {
	x := Wave{Period: rnd.Intn(8) + 2, Phase: rnd.Intn(2), Frames: 1}
	y := Wave{Period: rnd.Intn(40) + 10, Phase: 7, Frames: 20}
	return x, y
}

// Shear wobbles the width x height area of img along X then along Y. Pixels
// uncovered by a shift are filled with gap.
func Shear(img *image.RGBA, rnd *rand.Rand, width, height int, gap color.Color) {
	wx, wy := RandomWaves(rnd)
	ShearX(img, wx, width, height, gap)
	ShearY(img, wy, width, height, gap)
}

// ShearX shifts every row horizontally.
func ShearX(img *image.RGBA, w Wave, width, height int, gap color.Color) {
	fill := color.RGBAModel.Convert(gap).(color.RGBA)
	row := make([]color.RGBA, width)
	for y := 0; y < height; y++ {
		d := w.Offset(y)
		if d == 0 {
			continue
		}
		for x := 0; x < width; x++ {
			row[x] = img.RGBAAt(x, y)
		}
		for x := 0; x < width; x++ {
			src := x - d
			if src < 0 || src >= width {
				img.SetRGBA(x, y, fill)
				continue
			}
			img.SetRGBA(x, y, row[src])
		}
	}
}

// ShearY shifts every column vertically.
func ShearY(img *image.RGBA, w Wave, width, height int, gap color.Color) {
	fill := color.RGBAModel.Convert(gap).(color.RGBA)
	col := make([]color.RGBA, height)
	for x := 0; x < width; x++ {
		d := w.Offset(x)
		if d == 0 {
			continue
		}
		for y := 0; y < height; y++ {
			col[y] = img.RGBAAt(x, y)
		}
		for y := 0; y < height; y++ {
			src := y - d
			if src < 0 || src >= height {
				img.SetRGBA(x, y, fill)
				continue
			}
			img.SetRGBA(x, y, col[src])
		}
	}
}
