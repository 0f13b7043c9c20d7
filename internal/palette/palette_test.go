package palette

import (
	"image"
	"image/color"
	"testing"
)

func TestHistogramExtractor(t *testing.T) {
	// Two clearly separated color fields: red left half, blue right half
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := color.RGBA{R: 200, G: 30, B: 30, A: 255}
			if x >= 100 {
				c = color.RGBA{R: 30, G: 30, B: 200, A: 255}
			}
			img.Set(x, y, c)
		}
	}

	ex := NewHistogramExtractor()
	colors, err := ex.Extract(img, 4)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(colors) != 2 {
		t.Fatalf("Expected 2 distinct colors, got %d: %v", len(colors), colors)
	}

	reds, blues := 0, 0
	for _, c := range colors {
		if c.R > c.B {
			reds++
		} else {
			blues++
		}
	}
	if reds != 1 || blues != 1 {
		t.Errorf("Expected one red and one blue pick, got %v", colors)
	}
}

func TestHistogramSkipsNearDuplicates(t *testing.T) {
	// A gradient of one hue must collapse to few picks, not fill the count
	img := image.NewRGBA(image.Rect(0, 0, 128, 1))
	for x := 0; x < 128; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(100 + x/8), G: 10, B: 10, A: 255})
	}

	colors, err := NewHistogramExtractor().Extract(img, 8)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(colors) > 2 {
		t.Errorf("Expected near-duplicate shades to be skipped, got %d colors", len(colors))
	}
}

func TestExtractorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"histogram", false},
		{"", false}, // default
		{"kmeans", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			ex, err := NewExtractor(tt.variant)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if ex == nil {
					t.Error("Expected extractor, got nil")
				}
			}
		})
	}
}
