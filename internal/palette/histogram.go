package palette

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
)

// HistogramExtractor buckets pixels into a coarse RGB histogram and picks
// the most populated buckets, skipping near-duplicates so the resulting
// palette spans the image instead of shades of its single dominant tone.
type HistogramExtractor struct {
	Bits        uint    // bucket resolution per channel
	MinDistance float64 // minimum RGB distance between picked colors
	SampleStep  int     // pixel stride while scanning
}

// NewHistogramExtractor creates an extractor with default settings.
func NewHistogramExtractor() *HistogramExtractor {
	return &HistogramExtractor{
		Bits:        4,    // 16 levels per channel
		MinDistance: 60.0, // keeps picks visually distinct
		SampleStep:  4,
	}
}

type bucket struct {
	count   int
	r, g, b uint64
}

// Extract returns up to count dominant colors, most frequent first.
func (e *HistogramExtractor) Extract(img image.Image, count int) ([]color.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	if count < 1 {
		return nil, fmt.Errorf("color count must be >= 1, got %d", count)
	}

	shift := 8 - e.Bits
	step := e.SampleStep
	if step < 1 {
		step = 1
	}

	buckets := make(map[uint32]*bucket)
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			r8, g8, b8 := uint32(r>>8), uint32(g>>8), uint32(b>>8)
			key := (r8>>shift)<<(2*e.Bits) | (g8>>shift)<<e.Bits | b8>>shift
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += uint64(r8)
			bk.g += uint64(g8)
			bk.b += uint64(b8)
		}
	}
	if len(buckets) == 0 {
		return nil, fmt.Errorf("image has no opaque pixels")
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, bk := range buckets {
		ordered = append(ordered, bk)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].count > ordered[j].count })

	var picked []color.NRGBA
	for _, bk := range ordered {
		c := color.NRGBA{
			R: uint8(bk.r / uint64(bk.count)),
			G: uint8(bk.g / uint64(bk.count)),
			B: uint8(bk.b / uint64(bk.count)),
			A: 0xff,
		}
		if tooClose(picked, c, e.MinDistance) {
			continue
		}
		picked = append(picked, c)
		if len(picked) == count {
			break
		}
	}
	return picked, nil
}

func tooClose(have []color.NRGBA, c color.NRGBA, minDist float64) bool {
	for _, h := range have {
		dr := float64(h.R) - float64(c.R)
		dg := float64(h.G) - float64(c.G)
		db := float64(h.B) - float64(c.B)
		if math.Sqrt(dr*dr+dg*dg+db*db) < minDist {
			return true
		}
	}
	return false
}
