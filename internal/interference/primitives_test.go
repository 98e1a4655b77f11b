package interference

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomLine(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	red := color.RGBA{255, 0, 0, 255}

	sawSlanted := false
	for i := 0; i < 200; i++ {
		l := RandomLine(rnd, 130, 48, red)

		assert.Equal(t, 0.0, l.P1.X)
		assert.Equal(t, 130.0, l.P2.X)
		assert.GreaterOrEqual(t, l.P1.Y, 0.0)
		assert.Less(t, l.P1.Y, 48.0)
		assert.GreaterOrEqual(t, l.P2.Y, 0.0)
		assert.Less(t, l.P2.Y, 48.0)
		assert.Equal(t, color.Color(red), l.Stroke.Color)
		if l.P1.Y != l.P2.Y {
			sawSlanted = true
		}
	}
	assert.True(t, sawSlanted, "endpoints should be drawn independently")
}

func TestRandomOval(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		o := RandomOval(rnd, 130, 48, nil)

		assert.GreaterOrEqual(t, o.Radius, 2.5)
		assert.LessOrEqual(t, o.Radius, 7.0)
		assert.NotNil(t, o.Stroke.Color)
		assert.Less(t, o.Center.X, 130.0)
		assert.Less(t, o.Center.Y, 48.0)
	}

	t.Run("正常系: キャンバスが小さい", func(t *testing.T) {
		o := RandomOval(rnd, 10, 10, nil)
		assert.GreaterOrEqual(t, o.Center.X, 0.0)
	})
}

func TestRandomCurve(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	quads, cubics := 0, 0
	for i := 0; i < 200; i++ {
		switch c := RandomCurve(rnd, 130, 48, Stroke{Width: 1.2}).(type) {
		case QuadCurve:
			quads++
			assert.Equal(t, 5.0, c.P0.X)
			assert.Equal(t, 125.0, c.P1.X)
			assert.Equal(t, 1.2, c.Stroke.Width)
		case CubicCurve:
			cubics++
			assert.Equal(t, 5.0, c.Path[0].X)
			assert.Equal(t, 125.0, c.Path[3].X)
			for _, p := range c.Path[1:3] {
				assert.GreaterOrEqual(t, p.X, 32.0)
				assert.Less(t, p.X, 96.0)
			}
		default:
			t.Fatalf("unexpected primitive %T", c)
		}
	}
	assert.Positive(t, quads)
	assert.Positive(t, cubics)
}

func TestSharedPath(t *testing.T) {
	p := SharedPath(rand.New(rand.NewSource(4)), 130, 48)

	assert.Equal(t, 5.0, p[0].X)
	assert.Equal(t, 125.0, p[3].X)
	// one endpoint in each half
	top, bottom := p[0].Y, p[3].Y
	if top > bottom {
		top, bottom = bottom, top
	}
	assert.Less(t, top, 24.0)
	assert.GreaterOrEqual(t, bottom, 24.0)
}

func TestPrimitives_Draw(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}

	tests := []struct {
		name string
		prim Primitive
	}{
		{"line", Line{P1: Point{0, 10}, P2: Point{40, 10}, Stroke: Stroke{Color: black, Width: 2}}},
		{"oval", Oval{Center: Point{20, 20}, Radius: 8, Stroke: Stroke{Color: black, Width: 2}}},
		{"quad", QuadCurve{P0: Point{0, 5}, Ctrl: Point{20, 35}, P1: Point{40, 5}, Stroke: Stroke{Color: black, Width: 2}}},
		{"cubic", CubicCurve{Path: Path{{0, 5}, {10, 35}, {30, 35}, {40, 5}}, Stroke: Stroke{Color: black, Width: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 40, 40))
			draw.Draw(img, img.Bounds(), &image.Uniform{C: white}, image.Point{}, draw.Src)
			dc := gg.NewContextForRGBA(img)

			tt.prim.Draw(dc)

			assert.Positive(t, countNot(img, white))
		})
	}
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(color.RGBA{10, 20, 30, 255}, 0.5)
	n, ok := c.(color.NRGBA)
	require.True(t, ok)
	assert.Equal(t, uint8(127), n.A)
	assert.Equal(t, uint8(10), n.R)

	opaque := color.RGBA{1, 2, 3, 255}
	assert.Equal(t, color.Color(opaque), WithAlpha(opaque, 0))
	assert.Equal(t, color.Color(opaque), WithAlpha(opaque, 1))
}

func countNot(img *image.RGBA, c color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != c {
				n++
			}
		}
	}
	return n
}
