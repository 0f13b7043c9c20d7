package scene

import (
	"image/color"
	"math"
	"math/rand"
	"sync/atomic"
)

// BlobDescriptor seeds the motion model for one blob. Position is never
// stored: it is recomputed every frame from elapsed time, so two renders at
// equal elapsed-mod-duration produce bit-identical centers.
//
// BaseCyclesX/Y are small random integers fixed at creation; the motion
// model rounds the product baseCycles*speed*duration to the nearest whole
// number of cycles, which is what makes the loop seam-free.
type BlobDescriptor struct {
	ID           int64
	RadiusFactor float64
	Color        color.NRGBA
	PhaseX       float64
	PhaseY       float64
	BaseCyclesX  int
	BaseCyclesY  int
}

// blobsPerColor keeps the field dense enough to cover the canvas without
// turning it into a uniform wash.
const blobsPerColor = 2

var blobID atomic.Int64

// GenerateBlobs builds a fresh blob set for a palette. It is called once per
// (palette, canvas-size) change; IDs are unique across regenerations so a
// regenerated set is distinguishable from the one it replaces.
func GenerateBlobs(palette []color.NRGBA, rng *rand.Rand) []BlobDescriptor {
	blobs := make([]BlobDescriptor, 0, len(palette)*blobsPerColor)
	for _, c := range palette {
		for i := 0; i < blobsPerColor; i++ {
			blobs = append(blobs, BlobDescriptor{
				ID:           blobID.Add(1),
				RadiusFactor: 0.25 + rng.Float64()*0.3,
				Color:        c,
				PhaseX:       rng.Float64() * 2 * math.Pi,
				PhaseY:       rng.Float64() * 2 * math.Pi,
				BaseCyclesX:  1 + rng.Intn(2),
				BaseCyclesY:  1 + rng.Intn(2),
			})
		}
	}
	return blobs
}
