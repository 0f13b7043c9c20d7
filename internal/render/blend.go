package render

import (
	"image"

	"github.com/ivlev/scene2video/internal/scene"
)

// blendFunc combines one normalized channel of backdrop and source.
type blendFunc func(d, s float64) float64

func blendScreen(d, s float64) float64 { return 1 - (1-d)*(1-s) }

func blendLighter(d, s float64) float64 {
	v := d + s
	if v > 1 {
		return 1
	}
	return v
}

func blendMultiply(d, s float64) float64 { return d * s }

func blendOverlay(d, s float64) float64 {
	if d < 0.5 {
		return 2 * d * s
	}
	return 1 - 2*(1-d)*(1-s)
}

// blendFor returns the separable blend function for a mode, or nil for
// plain source-over.
func blendFor(mode scene.BlendMode) blendFunc {
	switch mode {
	case scene.BlendScreen:
		return blendScreen
	case scene.BlendLighter:
		return blendLighter
	case scene.BlendMultiply:
		return blendMultiply
	case scene.BlendOverlay:
		return blendOverlay
	}
	return nil
}

// composite draws layer over dst with the given blend function and a global
// alpha. Both images must share bounds. The formula follows the canvas
// model: each channel is moved toward the blend result by the effective
// source coverage.
func composite(dst, layer *image.RGBA, blend blendFunc, globalAlpha float64) {
	bounds := sharedBounds(dst, layer)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		di := dst.PixOffset(bounds.Min.X, y)
		si := layer.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sa := float64(layer.Pix[si+3]) / 255
			cov := sa * globalAlpha
			if cov > 0 {
				da := float64(dst.Pix[di+3]) / 255
				outA := da + cov*(1-da)
				for c := 0; c < 3; c++ {
					// un-premultiply both sides before blending
					d := float64(dst.Pix[di+c]) / 255
					if da > 0 {
						d /= da
					}
					s := float64(layer.Pix[si+c]) / 255 / sa
					var b float64
					if blend != nil {
						b = blend(clamp01(d), clamp01(s))
					} else {
						b = s
					}
					out := d + (b-d)*cov
					dst.Pix[di+c] = uint8(clamp01(out)*outA*255 + 0.5)
				}
				dst.Pix[di+3] = uint8(clamp01(outA)*255 + 0.5)
			}
			di += 4
			si += 4
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sharedBounds panics early on a size mismatch between layer buffers; the
// pools hand out exact-size frames so this only trips on programmer error.
func sharedBounds(a, b *image.RGBA) image.Rectangle {
	if a.Bounds() != b.Bounds() {
		panic("render: layer bounds mismatch")
	}
	return a.Bounds()
}
