package scene

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ivlev/scene2video/internal/config"
)

// BlendMode is the compositing operator applied to the blob field layer.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendScreen
	BlendLighter
	BlendMultiply
	BlendOverlay
)

// BlendModeByName resolves a blend mode from its scene-file spelling.
func BlendModeByName(name string) (BlendMode, error) {
	switch name {
	case "normal", "":
		return BlendNormal, nil
	case "screen":
		return BlendScreen, nil
	case "lighter":
		return BlendLighter, nil
	case "multiply":
		return BlendMultiply, nil
	case "overlay":
		return BlendOverlay, nil
	}
	return BlendNormal, fmt.Errorf("неизвестный режим наложения: %q", name)
}

// Background is a tagged union: a solid fill or a decoded bitmap.
// A nil BitmapBackground image degrades to solid black at render time.
type Background interface{ isBackground() }

type SolidBackground struct {
	Color color.NRGBA
}

type BitmapBackground struct {
	Image image.Image
}

func (SolidBackground) isBackground()  {}
func (BitmapBackground) isBackground() {}

// Weather is a tagged union: nil (none), Snow or Rain.
type Weather interface {
	isWeather()
	Intensity() int
}

type Snow struct{ Level int }
type Rain struct{ Level int }

func (Snow) isWeather()       {}
func (Rain) isWeather()       {}
func (w Snow) Intensity() int { return w.Level }
func (w Rain) Intensity() int { return w.Level }

// Alignment of a text line relative to its normalized x-anchor.
type Alignment int

const (
	AlignCenter Alignment = iota
	AlignLeft
	AlignRight
)

// TextLayer is one drawable text block. Size is specified in pixels at a
// 1920-px reference canvas width; the renderer rescales it per target.
type TextLayer struct {
	Text    string
	Font    string
	Weight  int
	Italic  bool
	Size    float64
	Align   Alignment
	Color   color.NRGBA
	Shadow  bool
	AnchorX float64
	AnchorY float64
	Opacity float64
}

// LogoLayer is the single optional bitmap overlay. WidthFrac is the drawn
// width as a fraction of canvas width; height follows the bitmap's own ratio.
type LogoLayer struct {
	Image   image.Image
	AnchorX float64
	AnchorY float64
	WidthFrac float64
	Opacity float64
}

// State — неизменяемый снимок всего, что нужно для отрисовки одного кадра.
// Рендер читает его как read-only: правки из UI видны только со следующего
// тика планировщика.
type State struct {
	Duration    float64 // seconds, > 0
	Aspect      config.AspectRatio
	Speed       float64 // dimensionless multiplier, > 0
	BlurRadius  float64 // px, >= 0
	Blend       BlendMode
	BlobOpacity float64 // [0,1]
	Palette     []color.NRGBA
	Blobs       []BlobDescriptor
	Background  Background
	Weather     Weather
	TextLayers  []TextLayer // draw order = slice order, later on top
	Logo        *LogoLayer
	Audio       *TrimWindow
}

// Validate checks the invariants the rest of the core relies on.
func (s *State) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("длительность должна быть > 0, получено %.3f", s.Duration)
	}
	if s.Speed <= 0 {
		return fmt.Errorf("скорость должна быть > 0, получено %.3f", s.Speed)
	}
	if s.BlurRadius < 0 {
		return fmt.Errorf("радиус размытия должен быть >= 0, получено %.3f", s.BlurRadius)
	}
	if s.BlobOpacity < 0 || s.BlobOpacity > 1 {
		return fmt.Errorf("непрозрачность должна быть в [0,1], получено %.3f", s.BlobOpacity)
	}
	if len(s.Palette) < 2 || len(s.Palette) > 8 {
		return fmt.Errorf("палитра должна содержать 2-8 цветов, получено %d", len(s.Palette))
	}
	if s.Aspect.Width <= 0 || s.Aspect.Height <= 0 {
		return fmt.Errorf("не задан пресет формата")
	}
	for i, l := range s.TextLayers {
		if l.Opacity < 0 || l.Opacity > 1 {
			return fmt.Errorf("слой текста %d: непрозрачность вне [0,1]", i)
		}
	}
	return nil
}
