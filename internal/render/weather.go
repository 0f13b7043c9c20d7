package render

import (
	"image"
	"image/color"
	"math"

	"github.com/ivlev/scene2video/internal/particles"
	"github.com/ivlev/scene2video/internal/scene"
)

var (
	rainColor = color.NRGBA{R: 174, G: 194, B: 224, A: 255}
	snowColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// drawWeather paints the particle layer crisp (no blur) with a fixed
// screen-like additive operator, independent of the scene's blob blend mode.
// Rain particles are thin vertical streaks, snow particles filled disks.
func drawWeather(dst *image.RGBA, st *scene.State, parts []particles.Particle) {
	if st.Weather == nil || len(parts) == 0 {
		return
	}
	switch st.Weather.(type) {
	case scene.Rain:
		for _, p := range parts {
			drawStreak(dst, p.X, p.Y, p.Size*5, rainColor, p.Opacity)
		}
	case scene.Snow:
		for _, p := range parts {
			drawDisk(dst, p.X, p.Y, p.Size, snowColor, p.Opacity)
		}
	}
}

// drawStreak screens a 1-px-wide vertical rectangle of the given height.
func drawStreak(dst *image.RGBA, x, y, height float64, c color.NRGBA, opacity float64) {
	bounds := dst.Bounds()
	px := bounds.Min.X + int(x)
	if px < bounds.Min.X || px >= bounds.Max.X {
		return
	}
	y0 := bounds.Min.Y + int(y)
	y1 := y0 + int(height+0.5)
	if y0 < bounds.Min.Y {
		y0 = bounds.Min.Y
	}
	if y1 > bounds.Max.Y {
		y1 = bounds.Max.Y
	}
	for py := y0; py < y1; py++ {
		screenPixel(dst, px, py, c, opacity)
	}
}

// drawDisk screens a filled circle of the given radius.
func drawDisk(dst *image.RGBA, x, y, radius float64, c color.NRGBA, opacity float64) {
	bounds := dst.Bounds()
	cx := float64(bounds.Min.X) + x
	cy := float64(bounds.Min.Y) + y
	x0 := int(math.Floor(cx - radius))
	x1 := int(math.Ceil(cx + radius))
	y0 := int(math.Floor(cy - radius))
	y1 := int(math.Ceil(cy + radius))
	for py := y0; py <= y1; py++ {
		if py < bounds.Min.Y || py >= bounds.Max.Y {
			continue
		}
		for px := x0; px <= x1; px++ {
			if px < bounds.Min.X || px >= bounds.Max.X {
				continue
			}
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			if dx*dx+dy*dy <= radius*radius {
				screenPixel(dst, px, py, c, opacity)
			}
		}
	}
}

// screenPixel applies out = d + s*(1-d) per channel, the separable screen
// operator with the source prescaled by the particle opacity.
func screenPixel(dst *image.RGBA, x, y int, c color.NRGBA, opacity float64) {
	i := dst.PixOffset(x, y)
	for ch := 0; ch < 3; ch++ {
		var sv uint8
		switch ch {
		case 0:
			sv = c.R
		case 1:
			sv = c.G
		case 2:
			sv = c.B
		}
		d := float64(dst.Pix[i+ch]) / 255
		s := float64(sv) / 255 * opacity
		dst.Pix[i+ch] = uint8((d + s*(1-d)) * 255)
	}
}
