// Package motion maps a blob descriptor and an elapsed time to a canvas
// position. The model is periodic with period = scene duration, so a video
// captured over exactly one period tiles seamlessly when looped.
package motion

import (
	"math"

	"github.com/ivlev/scene2video/internal/scene"
)

// BaselineHz is the oscillation frequency at speed 1.0 before cycle rounding.
const BaselineHz = 0.5

// amplitudeFactor scales the trig offset by the canvas dimension; blobs swing
// over the middle 70% of each axis.
const amplitudeFactor = 0.35

// EffectiveCycles converts the requested speed into a whole number of
// oscillation cycles over the loop duration.
//
// Rounding to an integer is deliberate: a continuous frequency ends the loop
// mid-cycle and the exported video jumps when a player repeats it. Rounding
// trades at most half a cycle of deviation from the requested speed (spread
// over the whole duration, so the error shrinks as duration grows) for an
// exact seam at t=0 and t=duration. The max(1, …) floor keeps very slow
// settings moving instead of freezing.
func EffectiveCycles(baseCycles int, speed, duration float64) int {
	ideal := float64(baseCycles) * speed * BaselineHz * duration
	n := int(math.Round(ideal))
	if n < 1 {
		n = 1
	}
	return n
}

// LoopProgress returns the position inside the current loop as [0,1).
func LoopProgress(elapsedMs, duration float64) float64 {
	periodMs := duration * 1000
	p := math.Mod(elapsedMs, periodMs) / periodMs
	if p < 0 {
		p++
	}
	return p
}

// AxisOffset evaluates one axis of a blob's oscillation. The x axis uses
// sine, the y axis cosine, each with its own integer base-cycle count and
// phase, so the two axes trace a Lissajous-like closed path.
func AxisOffset(trig func(float64) float64, baseCycles int, phase, elapsedMs, speed, duration float64, dimension int) float64 {
	cycles := EffectiveCycles(baseCycles, speed, duration)
	angle := LoopProgress(elapsedMs, duration)*2*math.Pi*float64(cycles) + phase
	return trig(angle) * amplitudeFactor * float64(dimension)
}

// BlobCenter computes a blob's center for the given elapsed time. It is a
// pure function of its arguments; no per-frame state survives between calls.
func BlobCenter(b scene.BlobDescriptor, elapsedMs, speed, duration float64, width, height int) (x, y float64) {
	x = float64(width)/2 + AxisOffset(math.Sin, b.BaseCyclesX, b.PhaseX, elapsedMs, speed, duration, width)
	y = float64(height)/2 + AxisOffset(math.Cos, b.BaseCyclesY, b.PhaseY, elapsedMs, speed, duration, height)
	return x, y
}
