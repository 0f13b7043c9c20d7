package render

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/scene2video/internal/scene"
)

// referenceWidth is the canvas width at which a layer's font size is
// authored; the renderer rescales by targetW/referenceWidth so the same
// scene lays out identically at every aspect preset.
const referenceWidth = 1920

// lineHeightFactor converts a scaled font size into the block line height.
const lineHeightFactor = 1.2

// drawTextLayers paints the ordered text layers, bottom of the slice first,
// each crisp and source-over with its own opacity.
func (e *Engine) drawTextLayers(dst *image.RGBA, layers []scene.TextLayer) error {
	for i := range layers {
		if err := e.drawTextLayer(dst, &layers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) drawTextLayer(dst *image.RGBA, l *scene.TextLayer) error {
	if l.Text == "" || l.Opacity <= 0 {
		return nil
	}
	bounds := dst.Bounds()
	scale := float64(bounds.Dx()) / referenceWidth
	size := l.Size * scale
	if size < 1 {
		return nil
	}
	face, err := e.fonts.Face(l.Font, l.Weight, l.Italic, size)
	if err != nil {
		return err
	}

	lines := strings.Split(l.Text, "\n")
	lineHeight := size * lineHeightFactor
	blockHeight := float64(len(lines)) * lineHeight
	blockTop := l.AnchorY*float64(bounds.Dy()) - blockHeight/2
	anchorX := l.AnchorX * float64(bounds.Dx())

	metrics := face.Metrics()
	ascent := fixedToFloat(metrics.Ascent)
	descent := fixedToFloat(metrics.Descent)

	if l.Shadow {
		// fixed soft shadow: 50% black, blur and offset scale with font size
		offset := size * 0.05
		clear(e.scratchA.Pix)
		e.drawTextLines(e.scratchA, face, lines, anchorX+offset, blockTop+offset,
			lineHeight, ascent, descent, l.Align, color.NRGBA{A: 128})
		boxBlur(e.scratchA, e.scratchB, size*0.08)
		composite(dst, e.scratchA, nil, l.Opacity)
	}

	c := l.Color
	c.A = uint8(float64(c.A)*l.Opacity + 0.5)
	e.drawTextLines(dst, face, lines, anchorX, blockTop, lineHeight, ascent, descent, l.Align, c)
	return nil
}

// drawTextLines places each line inside its slot of the block: vertically
// centered around the slot middle, horizontally per alignment at anchorX.
func (e *Engine) drawTextLines(dst *image.RGBA, face font.Face, lines []string,
	anchorX, blockTop, lineHeight, ascent, descent float64, align scene.Alignment, c color.NRGBA) {

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	for i, line := range lines {
		if line == "" {
			continue
		}
		width := fixedToFloat(d.MeasureString(line))
		var x float64
		switch align {
		case scene.AlignLeft:
			x = anchorX
		case scene.AlignRight:
			x = anchorX - width
		default:
			x = anchorX - width/2
		}
		slotTop := blockTop + float64(i)*lineHeight
		baseline := slotTop + (lineHeight+ascent-descent)/2

		d.Dot = fixed.Point26_6{
			X: floatToFixed(float64(dst.Bounds().Min.X) + x),
			Y: floatToFixed(float64(dst.Bounds().Min.Y) + baseline),
		}
		d.DrawString(line)
	}
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }
