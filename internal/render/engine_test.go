package render

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/particles"
	"github.com/ivlev/scene2video/internal/scene"
)

func testState(t *testing.T) *scene.State {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	palette := []color.NRGBA{
		{R: 255, G: 107, B: 157, A: 255},
		{R: 78, G: 205, B: 196, A: 255},
	}
	aspect, err := config.AspectByName("16:9")
	if err != nil {
		t.Fatal(err)
	}
	// small canvas keeps the pixel loops fast in tests
	aspect.Width, aspect.Height = 192, 108
	return &scene.State{
		Duration:    10,
		Aspect:      aspect,
		Speed:       1,
		BlurRadius:  6,
		Blend:       scene.BlendScreen,
		BlobOpacity: 0.9,
		Palette:     palette,
		Blobs:       scene.GenerateBlobs(palette, rng),
		Background:  scene.SolidBackground{Color: color.NRGBA{R: 16, G: 16, B: 24, A: 255}},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	fonts, err := NewFontSet()
	if err != nil {
		t.Fatalf("FontSet: %v", err)
	}
	return NewEngine(fonts)
}

func TestRenderDeterministic(t *testing.T) {
	st := testState(t)
	eng := newTestEngine(t)

	render := func(elapsed float64) []byte {
		dst := image.NewRGBA(image.Rect(0, 0, st.Aspect.Width, st.Aspect.Height))
		if err := eng.Render(dst, st, nil, elapsed); err != nil {
			t.Fatalf("Render: %v", err)
		}
		return dst.Pix
	}

	// same elapsed-mod-duration => bit-identical frames
	a := render(2500)
	b := render(2500 + st.Duration*1000)
	if !bytes.Equal(a, b) {
		t.Error("Frames differ across loop periods")
	}

	// the blob field must actually move between distinct times
	c := render(4000)
	if bytes.Equal(a, c) {
		t.Error("Frames identical at different elapsed times; blobs not animating")
	}
}

func TestSolidBackgroundFallback(t *testing.T) {
	st := testState(t)
	st.Blobs = nil
	st.Background = scene.BitmapBackground{Image: nil} // missing bitmap
	eng := newTestEngine(t)

	dst := image.NewRGBA(image.Rect(0, 0, st.Aspect.Width, st.Aspect.Height))
	if err := eng.Render(dst, st, nil, 0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	r, g, b, a := dst.At(10, 10).RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("Expected solid black fallback, got %v %v %v %v", r, g, b, a)
	}
}

func TestCoverScale(t *testing.T) {
	// 100x50 source onto 200x200 target: scale = max(2, 4) = 4,
	// scaled 400x200, horizontal overflow cropped 100px per side
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			c := color.RGBA{B: 255, A: 255}
			if x >= 25 && x < 75 {
				c = color.RGBA{R: 255, A: 255} // center band
			}
			src.Set(x, y, c)
		}
	}

	out := coverScale(src, image.Rect(0, 0, 200, 200))
	if out.Bounds() != image.Rect(0, 0, 200, 200) {
		t.Fatalf("Unexpected bounds %v", out.Bounds())
	}
	// target center must sample the source center band
	r, _, b, _ := out.At(100, 100).RGBA()
	if r < 0x8000 || b > 0x4000 {
		t.Errorf("Center not covered by source center band: r=%x b=%x", r, b)
	}
	// target edge must still be covered (no letterboxing)
	_, _, _, a := out.At(0, 199).RGBA()
	if a != 0xffff {
		t.Errorf("Cover placement left transparent pixels at the edge")
	}
}

func TestBlendFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   blendFunc
		d, s float64
		want float64
	}{
		{"screen", blendScreen, 0.5, 0.5, 0.75},
		{"screen-black", blendScreen, 0.3, 0, 0.3},
		{"lighter-clamps", blendLighter, 0.8, 0.5, 1.0},
		{"multiply", blendMultiply, 0.5, 0.5, 0.25},
		{"overlay-dark", blendOverlay, 0.25, 0.5, 0.25},
		{"overlay-light", blendOverlay, 0.75, 0.5, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.d, tt.s); abs(got-tt.want) > 1e-9 {
				t.Errorf("%s(%v,%v) = %v, want %v", tt.name, tt.d, tt.s, got, tt.want)
			}
		})
	}
}

func TestWeatherLayerBrightens(t *testing.T) {
	st := testState(t)
	st.Blobs = nil
	st.Weather = scene.Rain{Level: 3}
	eng := newTestEngine(t)

	sim := particles.NewSimulator(rand.New(rand.NewSource(9)))
	sim.Configure(st.Weather, st.Aspect.Width, st.Aspect.Height)

	dst := image.NewRGBA(image.Rect(0, 0, st.Aspect.Width, st.Aspect.Height))
	if err := eng.Render(dst, st, sim.Particles(), 0); err != nil {
		t.Fatalf("Render: %v", err)
	}

	// background is (16,16,24); screened streaks must exceed it
	brightened := 0
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] > 16 {
			brightened++
		}
	}
	if brightened == 0 {
		t.Error("Screen-blended rain left no brightened pixels")
	}
}

func TestTextLayerDrawn(t *testing.T) {
	st := testState(t)
	st.Blobs = nil
	st.TextLayers = []scene.TextLayer{{
		Text:    "hello\nworld",
		Size:    96,
		Color:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		AnchorX: 0.5,
		AnchorY: 0.5,
		Opacity: 1,
		Shadow:  true,
	}}
	eng := newTestEngine(t)

	dst := image.NewRGBA(image.Rect(0, 0, st.Aspect.Width, st.Aspect.Height))
	if err := eng.Render(dst, st, nil, 0); err != nil {
		t.Fatalf("Render: %v", err)
	}

	bright := 0
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] > 200 && dst.Pix[i+1] > 200 && dst.Pix[i+2] > 200 {
			bright++
		}
	}
	if bright == 0 {
		t.Error("Expected white text pixels on the canvas")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
