// Package palette derives a blob palette from a background bitmap, so a
// scene can declare `palette: [auto]` and follow whatever image the user
// (or an external generator) supplied.
package palette

import (
	"fmt"
	"image"
	"image/color"
)

// Extractor is the interface for dominant-color strategies.
type Extractor interface {
	Extract(img image.Image, count int) ([]color.NRGBA, error)
}

// NewExtractor creates an extractor based on the specified variant.
func NewExtractor(variant string) (Extractor, error) {
	switch variant {
	case "histogram", "":
		return NewHistogramExtractor(), nil
	case "kmeans":
		return nil, fmt.Errorf("kmeans extractor not yet implemented")
	default:
		return nil, fmt.Errorf("unknown palette extractor variant: %s", variant)
	}
}
