// Package interference draws the decorative geometry and noise that obstruct
// automated recognition of captcha text.
package interference

import (
	"image/color"
	"math/rand"

	"github.com/fogleman/gg"
)

// Point is a canvas coordinate.
type Point struct {
	X float64
	Y float64
}

// Primitive is a shape that can be stroked on a canvas.
type Primitive interface {
	Draw(dc *gg.Context)
}

// Stroke describes how a primitive is stroked.
type Stroke struct {
	Color color.Color
	Width float64 // 0 means 1px
	Alpha float64 // 0 means opaque
}

func (s Stroke) apply(dc *gg.Context) {
	dc.SetColor(WithAlpha(s.Color, s.Alpha))
	if s.Width > 0 {
		dc.SetLineWidth(s.Width)
	} else {
		dc.SetLineWidth(1)
	}
}

// Line is a straight segment.
type Line struct {
	P1, P2 Point
	Stroke Stroke
}

// Draw strokes the line.
func (l Line) Draw(dc *gg.Context) {
	l.Stroke.apply(dc)
	dc.DrawLine(l.P1.X, l.P1.Y, l.P2.X, l.P2.Y)
	dc.Stroke()
}

// Oval is a circle outline.
type Oval struct {
	Center Point
	Radius float64
	Stroke Stroke
}

// Draw strokes the oval.
func (o Oval) Draw(dc *gg.Context) {
	o.Stroke.apply(dc)
	dc.DrawEllipse(o.Center.X, o.Center.Y, o.Radius, o.Radius)
	dc.Stroke()
}

// QuadCurve is a quadratic Bézier curve.
type QuadCurve struct {
	P0, Ctrl, P1 Point
	Stroke       Stroke
}

// Draw strokes the curve.
func (q QuadCurve) Draw(dc *gg.Context) {
	q.Stroke.apply(dc)
	dc.MoveTo(q.P0.X, q.P0.Y)
	dc.QuadraticTo(q.Ctrl.X, q.Ctrl.Y, q.P1.X, q.P1.Y)
	dc.Stroke()
}

// CubicCurve is a cubic Bézier curve.
type CubicCurve struct {
	Path   Path
	Stroke Stroke
}

// Draw strokes the curve.
func (c CubicCurve) Draw(dc *gg.Context) {
	c.Stroke.apply(dc)
	p := c.Path
	dc.MoveTo(p[0].X, p[0].Y)
	dc.CubicTo(p[1].X, p[1].Y, p[2].X, p[2].Y, p[3].X, p[3].Y)
	dc.Stroke()
}

// Path holds the four control points of a cubic curve: start, two
// controls and end.
type Path [4]Point

// RandomColor returns an opaque color with each channel in [0, 255).
func RandomColor(rnd *rand.Rand) color.RGBA {
	return color.RGBA{
		R: uint8(rnd.Intn(255)),
		G: uint8(rnd.Intn(255)),
		B: uint8(rnd.Intn(255)),
		A: 0xFF,
	}
}

// WithAlpha returns c with its opacity scaled by alpha. alpha <= 0 or >= 1
// leaves c untouched.
func WithAlpha(c color.Color, alpha float64) color.Color {
	if alpha <= 0 || alpha >= 1 {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A) * alpha)
	return n
}

func pick(rnd *rand.Rand, c color.Color) color.Color {
	if c == nil {
		return RandomColor(rnd)
	}
	return c
}

// between returns a random integer in [lo, hi). It returns lo when the
// range is empty.
func between(rnd *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rnd.Intn(hi-lo)
}

// RandomLine spans the full width; both endpoints get an independent y.
func RandomLine(rnd *rand.Rand, width, height int, c color.Color) Line {
	return Line{
		P1:     Point{X: 0, Y: float64(between(rnd, 0, height))},
		P2:     Point{X: float64(width), Y: float64(between(rnd, 0, height))},
		Stroke: Stroke{Color: pick(rnd, c)},
	}
}

// RandomOval places a small circle with a diameter of 5 to 14 pixels.
func RandomOval(rnd *rand.Rand, width, height int, c color.Color) Oval {
	d := 5 + rnd.Intn(10)
	x := between(rnd, 0, width-25)
	y := between(rnd, 0, height-15)
	r := float64(d) / 2
	return Oval{
		Center: Point{X: float64(x) + r, Y: float64(y) + r},
		Radius: r,
		Stroke: Stroke{Color: pick(rnd, c)},
	}
}

// endpoints anchors a curve near the left and right edges, one end in the
// upper half and the other in the lower half, in random order.
func endpoints(rnd *rand.Rand, width, height int) (Point, Point) {
	y1 := between(rnd, 5, height/2)
	y2 := between(rnd, height/2, height-5)
	if rnd.Intn(2) == 0 {
		y1, y2 = y2, y1
	}
	return Point{X: 5, Y: float64(y1)}, Point{X: float64(width - 5), Y: float64(y2)}
}

func control(rnd *rand.Rand, width, height int) Point {
	return Point{
		X: float64(between(rnd, width/4, width/4*3)),
		Y: float64(between(rnd, 5, height-5)),
	}
}

// RandomCurve flips a coin between a quadratic and a cubic curve.
func RandomCurve(rnd *rand.Rand, width, height int, stroke Stroke) Primitive {
	start, end := endpoints(rnd, width, height)
	ctrl := control(rnd, width, height)
	stroke.Color = pick(rnd, stroke.Color)
	if rnd.Intn(2) == 0 {
		return QuadCurve{P0: start, Ctrl: ctrl, P1: end, Stroke: stroke}
	}
	ctrl1 := control(rnd, width, height)
	return CubicCurve{Path: Path{start, ctrl, ctrl1, end}, Stroke: stroke}
}

// SharedPath generates the single cubic path reused by every frame of an
// animation.
func SharedPath(rnd *rand.Rand, width, height int) Path {
	start, end := endpoints(rnd, width, height)
	c0 := control(rnd, width, height)
	c1 := control(rnd, width, height)
	return Path{start, c0, c1, end}
}
