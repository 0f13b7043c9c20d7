package scene

import (
	"image/color"
	"math/rand"
	"path/filepath"
	"testing"
)

func TestGenerateBlobs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	palette := []color.NRGBA{
		{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255},
	}

	blobs := GenerateBlobs(palette, rng)
	if len(blobs) != len(palette)*blobsPerColor {
		t.Fatalf("Expected %d blobs, got %d", len(palette)*blobsPerColor, len(blobs))
	}
	for i, b := range blobs {
		if b.BaseCyclesX < 1 || b.BaseCyclesX > 2 || b.BaseCyclesY < 1 || b.BaseCyclesY > 2 {
			t.Errorf("blob %d: base cycles outside {1,2}: %d/%d", i, b.BaseCyclesX, b.BaseCyclesY)
		}
		if b.RadiusFactor <= 0 {
			t.Errorf("blob %d: non-positive radius factor", i)
		}
	}
}

func TestBlobRegenerationFreshIDs(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	palette := []color.NRGBA{{R: 255, A: 255}, {G: 255, A: 255}}

	// an aspect-ratio switch regenerates descriptors; every ID must be new
	first := GenerateBlobs(palette, rng)
	second := GenerateBlobs(palette, rng)

	seen := make(map[int64]bool)
	for _, b := range first {
		seen[b.ID] = true
	}
	for _, b := range second {
		if seen[b.ID] {
			t.Errorf("ID %d reused across regeneration", b.ID)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ff6b9d", color.NRGBA{R: 0xff, G: 0x6b, B: 0x9d, A: 0xff}, false},
		{"4ecdc4", color.NRGBA{R: 0x4e, G: 0xcd, B: 0xc4, A: 0xff}, false},
		{"#fff", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, false},
		{"#11223380", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}, false},
		{"#xyz", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := &Document{
		Version:     "1.0",
		Duration:    10,
		Aspect:      "16:9",
		Speed:       1.5,
		Blur:        40,
		Blend:       "screen",
		BlobOpacity: 0.85,
		Palette:     []string{"#ff6b9d", "#4ecdc4"},
		Background:  BackgroundDoc{Color: "#101018"},
		Weather:     WeatherDoc{Type: "snow", Intensity: 5},
		Text: []TextDoc{{
			Text: "late nights", Size: 96, Color: "#ffffff",
			X: 0.5, Y: 0.4, Opacity: 1, Shadow: true, Align: "center",
		}},
	}

	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := WriteDocument(doc, path); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	got, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if got.Duration != 10 || got.Aspect != "16:9" || got.Weather.Type != "snow" {
		t.Errorf("Round trip mismatch: %+v", got)
	}

	st, err := got.BuildState(rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("BuildState: %v", err)
	}
	if err := st.Validate(); err != nil {
		t.Errorf("Built state invalid: %v", err)
	}
	if st.Aspect.Width != 1920 || st.Aspect.Height != 1080 {
		t.Errorf("Aspect preset not resolved: %+v", st.Aspect)
	}
	if _, ok := st.Weather.(Snow); !ok {
		t.Errorf("Weather union not built: %#v", st.Weather)
	}
	if len(st.Blobs) == 0 {
		t.Error("Expected blobs generated from the palette")
	}
}

func TestBuildStateRejectsBadInput(t *testing.T) {
	bad := []Document{
		{Duration: 10, Aspect: "21:9", Speed: 1, BlobOpacity: 1, Palette: []string{"#fff", "#000"}},
		{Duration: 10, Aspect: "16:9", Speed: 1, BlobOpacity: 1, Palette: []string{"#fff", "#000"}, Weather: WeatherDoc{Type: "hail"}},
		{Duration: 10, Aspect: "16:9", Speed: 1, BlobOpacity: 1, Palette: []string{"oops", "#000"}},
	}
	for i, doc := range bad {
		if _, err := doc.BuildState(rand.New(rand.NewSource(4))); err == nil {
			t.Errorf("document %d: expected error", i)
		}
	}
}
