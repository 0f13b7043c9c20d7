// Package render composes one frame of the animated scene into an RGBA
// target. Rendering is pure with respect to the scene snapshot: the only
// varying inputs are the elapsed time and the particle slice, so any two
// drivers (preview, capture) produce identical frames for identical inputs.
package render

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/scene2video/internal/motion"
	"github.com/ivlev/scene2video/internal/particles"
	"github.com/ivlev/scene2video/internal/scene"
)

// gradientEdgeFactor extends a blob's gradient disk beyond its nominal
// radius so the falloff reaches full transparency well outside the core.
const gradientEdgeFactor = 1.5

type Engine struct {
	fonts *FontSet

	// ping-pong scratch layers for the blob field, blur and text shadows;
	// lazily sized to the current target
	scratchA *image.RGBA
	scratchB *image.RGBA

	// cover-scaled background and logo, cached per (source, target size):
	// scaling every frame at 60 fps would dominate the render budget
	bgSrc    image.Image
	bgScaled *image.RGBA

	logoSrc    image.Image
	logoWidth  int
	logoScaled *image.RGBA
}

func NewEngine(fonts *FontSet) *Engine {
	return &Engine{fonts: fonts}
}

// Render draws the full layer stack for the given elapsed time into dst.
// dst must match the scene's aspect preset dimensions. The particle slice
// is read, never mutated.
func (e *Engine) Render(dst *image.RGBA, st *scene.State, parts []particles.Particle, elapsedMs float64) error {
	e.ensureScratch(dst.Bounds())

	e.drawBackground(dst, st)
	e.drawBlobField(dst, st, elapsedMs)
	drawWeather(dst, st, parts)
	e.drawLogo(dst, st.Logo)
	return e.drawTextLayers(dst, st.TextLayers)
}

func (e *Engine) ensureScratch(bounds image.Rectangle) {
	if e.scratchA == nil || e.scratchA.Bounds() != bounds {
		e.scratchA = image.NewRGBA(bounds)
		e.scratchB = image.NewRGBA(bounds)
		e.bgScaled = nil
		e.logoScaled = nil
	}
}

// drawBackground fills dst with the solid color, or cover-places the bitmap:
// scaled by max(targetW/imgW, targetH/imgH), centered, overflow cropped.
// A missing bitmap degrades to solid black.
func (e *Engine) drawBackground(dst *image.RGBA, st *scene.State) {
	bounds := dst.Bounds()
	switch bg := st.Background.(type) {
	case scene.SolidBackground:
		fillSolid(dst, bg.Color)
	case scene.BitmapBackground:
		if bg.Image == nil {
			fillSolid(dst, color.NRGBA{A: 0xff})
			return
		}
		if e.bgScaled == nil || e.bgSrc != bg.Image {
			e.bgSrc = bg.Image
			e.bgScaled = coverScale(bg.Image, bounds)
		}
		copy(dst.Pix, e.bgScaled.Pix)
	default:
		fillSolid(dst, color.NRGBA{A: 0xff})
	}
}

func fillSolid(dst *image.RGBA, c color.NRGBA) {
	bounds := dst.Bounds()
	r := uint8(uint16(c.R) * uint16(c.A) / 255)
	g := uint8(uint16(c.G) * uint16(c.A) / 255)
	b := uint8(uint16(c.B) * uint16(c.A) / 255)
	row := dst.Pix[dst.PixOffset(bounds.Min.X, bounds.Min.Y):]
	for x := 0; x < bounds.Dx(); x++ {
		row[x*4+0] = r
		row[x*4+1] = g
		row[x*4+2] = b
		row[x*4+3] = c.A
	}
	first := row[:bounds.Dx()*4]
	for y := bounds.Min.Y + 1; y < bounds.Max.Y; y++ {
		copy(dst.Pix[dst.PixOffset(bounds.Min.X, y):], first)
	}
}

// coverScale maps src onto target completely, preserving aspect and
// cropping the overflow around the center.
func coverScale(src image.Image, target image.Rectangle) *image.RGBA {
	out := image.NewRGBA(target)
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	tw, th := float64(target.Dx()), float64(target.Dy())
	if sw == 0 || sh == 0 {
		return out
	}
	scale := math.Max(tw/sw, th/sh)
	dw, dh := int(sw*scale+0.5), int(sh*scale+0.5)
	ox := target.Min.X - (dw-target.Dx())/2
	oy := target.Min.Y - (dh-target.Dy())/2
	dr := image.Rect(ox, oy, ox+dw, oy+dh)
	xdraw.CatmullRom.Scale(out, dr, src, sb, xdraw.Src, nil)
	return out
}

// drawBlobField renders the gradient disks into a transparent scratch
// layer, blurs the layer, then composites it with the scene's blend mode
// and global blob opacity. Working in a separate layer is what makes the
// blur/blend/alpha state local: subsequent layers see a clean target.
func (e *Engine) drawBlobField(dst *image.RGBA, st *scene.State, elapsedMs float64) {
	if len(st.Blobs) == 0 || st.BlobOpacity <= 0 {
		return
	}
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	minDim := w
	if h < minDim {
		minDim = h
	}

	clear(e.scratchA.Pix)
	for _, b := range st.Blobs {
		cx, cy := motion.BlobCenter(b, elapsedMs, st.Speed, st.Duration, w, h)
		radius := gradientEdgeFactor * b.RadiusFactor * float64(minDim)
		drawGradientDisk(e.scratchA, float64(bounds.Min.X)+cx, float64(bounds.Min.Y)+cy, radius, b.Color)
	}
	boxBlur(e.scratchA, e.scratchB, st.BlurRadius)
	composite(dst, e.scratchA, blendFor(st.Blend), st.BlobOpacity)
}

// drawGradientDisk fills a disk with a radial gradient running from the
// blob color at the center to fully transparent at the rim, source-over
// onto the premultiplied layer.
func drawGradientDisk(layer *image.RGBA, cx, cy, radius float64, c color.NRGBA) {
	bounds := layer.Bounds()
	x0 := int(math.Floor(cx - radius))
	x1 := int(math.Ceil(cx + radius))
	y0 := int(math.Floor(cy - radius))
	y1 := int(math.Ceil(cy + radius))
	if x0 < bounds.Min.X {
		x0 = bounds.Min.X
	}
	if y0 < bounds.Min.Y {
		y0 = bounds.Min.Y
	}
	if x1 > bounds.Max.X {
		x1 = bounds.Max.X
	}
	if y1 > bounds.Max.Y {
		y1 = bounds.Max.Y
	}

	baseA := float64(c.A) / 255
	for y := y0; y < y1; y++ {
		dy := float64(y) + 0.5 - cy
		i := layer.PixOffset(x0, y)
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist < radius {
				a := baseA * (1 - dist/radius)
				srcOverPremul(layer.Pix[i:i+4], c, a)
			}
			i += 4
		}
	}
}

// srcOverPremul composites a color with coverage a over one premultiplied
// pixel.
func srcOverPremul(px []uint8, c color.NRGBA, a float64) {
	inv := 1 - a
	px[0] = uint8(float64(c.R)*a + float64(px[0])*inv + 0.5)
	px[1] = uint8(float64(c.G)*a + float64(px[1])*inv + 0.5)
	px[2] = uint8(float64(c.B)*a + float64(px[2])*inv + 0.5)
	px[3] = uint8(255*a + float64(px[3])*inv + 0.5)
}

// drawLogo places the overlay bitmap at its normalized anchor with its
// native aspect, crisp and source-over.
func (e *Engine) drawLogo(dst *image.RGBA, logo *scene.LogoLayer) {
	if logo == nil || logo.Image == nil || logo.Opacity <= 0 {
		return
	}
	bounds := dst.Bounds()
	w := int(logo.WidthFrac * float64(bounds.Dx()))
	if w < 1 {
		return
	}
	if e.logoScaled == nil || e.logoSrc != logo.Image || e.logoWidth != w {
		sb := logo.Image.Bounds()
		h := int(float64(w) * float64(sb.Dy()) / float64(sb.Dx()))
		if h < 1 {
			h = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), logo.Image, sb, xdraw.Src, nil)
		e.logoSrc = logo.Image
		e.logoWidth = w
		e.logoScaled = scaled
	}

	lw, lh := e.logoScaled.Bounds().Dx(), e.logoScaled.Bounds().Dy()
	ox := bounds.Min.X + int(logo.AnchorX*float64(bounds.Dx())) - lw/2
	oy := bounds.Min.Y + int(logo.AnchorY*float64(bounds.Dy())) - lh/2
	drawOverlay(dst, e.logoScaled, ox, oy, logo.Opacity)
}

// drawOverlay source-over composites a premultiplied overlay at an offset
// with a global alpha, clipped to dst.
func drawOverlay(dst, overlay *image.RGBA, ox, oy int, alpha float64) {
	ob := overlay.Bounds()
	db := dst.Bounds()
	for y := ob.Min.Y; y < ob.Max.Y; y++ {
		ty := oy + y - ob.Min.Y
		if ty < db.Min.Y || ty >= db.Max.Y {
			continue
		}
		for x := ob.Min.X; x < ob.Max.X; x++ {
			tx := ox + x - ob.Min.X
			if tx < db.Min.X || tx >= db.Max.X {
				continue
			}
			si := overlay.PixOffset(x, y)
			di := dst.PixOffset(tx, ty)
			sa := float64(overlay.Pix[si+3]) / 255 * alpha
			if sa <= 0 {
				continue
			}
			inv := 1 - sa
			for c := 0; c < 3; c++ {
				// overlay is premultiplied; rescale by the global alpha only
				s := float64(overlay.Pix[si+c]) * alpha
				dst.Pix[di+c] = uint8(s + float64(dst.Pix[di+c])*inv + 0.5)
			}
			dst.Pix[di+3] = uint8(255*sa + float64(dst.Pix[di+3])*inv + 0.5)
		}
	}
}
