package render

import (
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// boxBlur applies three successive box passes, which approximates a Gaussian
// of the requested radius closely enough for a soft blob field. Channels are
// premultiplied, so alpha is blurred together with color and no halo forms
// around transparent regions.
//
// scratch must share dimensions with img; both are written.
func boxBlur(img, scratch *image.RGBA, radius float64) {
	if radius < 1 {
		return
	}
	// three box passes of ~2/3 the target radius approximate one Gaussian
	r := int(radius/3 + 0.5)
	if r < 1 {
		r = 1
	}
	for pass := 0; pass < 3; pass++ {
		blurAxis(img, scratch, r, true)
		blurAxis(scratch, img, r, false)
	}
}

// blurAxis runs a single running-sum box pass along one axis, reading src
// and writing dst. Lines are independent, so they are fanned out over the
// available cores.
func blurAxis(src, dst *image.RGBA, r int, horizontal bool) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	lines := h
	if !horizontal {
		lines = w
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	const band = 64
	for start := 0; start < lines; start += band {
		start := start
		end := start + band
		if end > lines {
			end = lines
		}
		g.Go(func() error {
			for line := start; line < end; line++ {
				if horizontal {
					blurLine(src, dst, r, w, func(i int) int { return src.PixOffset(bounds.Min.X+i, bounds.Min.Y+line) })
				} else {
					blurLine(src, dst, r, h, func(i int) int { return src.PixOffset(bounds.Min.X+line, bounds.Min.Y+i) })
				}
			}
			return nil
		})
	}
	g.Wait()
}

// blurLine averages a window of 2r+1 samples along one line using a sliding
// sum. Out-of-range taps clamp to the edge sample.
func blurLine(src, dst *image.RGBA, r, n int, offset func(i int) int) {
	if n == 0 {
		return
	}
	window := float64(2*r + 1)
	var sum [4]float64

	sample := func(i int) (p [4]uint8) {
		if i < 0 {
			i = 0
		}
		if i >= n {
			i = n - 1
		}
		o := offset(i)
		copy(p[:], src.Pix[o:o+4])
		return p
	}

	for i := -r; i <= r; i++ {
		p := sample(i)
		for c := 0; c < 4; c++ {
			sum[c] += float64(p[c])
		}
	}
	for i := 0; i < n; i++ {
		o := offset(i)
		for c := 0; c < 4; c++ {
			dst.Pix[o+c] = uint8(sum[c]/window + 0.5)
		}
		leading := sample(i + r + 1)
		trailing := sample(i - r)
		for c := 0; c < 4; c++ {
			sum[c] += float64(leading[c]) - float64(trailing[c])
		}
	}
}
