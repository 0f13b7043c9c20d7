package motion

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ivlev/scene2video/internal/scene"
)

func TestEffectiveCyclesConcrete(t *testing.T) {
	// duration=10s, speed=1x, baseCycles=1 => round(1*0.5*10) = 5
	if got := EffectiveCycles(1, 1.0, 10.0); got != 5 {
		t.Errorf("Expected 5 cycles, got %d", got)
	}
	if got := EffectiveCycles(2, 1.0, 10.0); got != 10 {
		t.Errorf("Expected 10 cycles, got %d", got)
	}
	// Very slow settings floor at one full cycle instead of freezing
	if got := EffectiveCycles(1, 0.01, 3.0); got != 1 {
		t.Errorf("Expected floor of 1 cycle, got %d", got)
	}
}

func TestEffectiveCyclesMonotonicInSpeed(t *testing.T) {
	durations := []float64{3, 10, 30, 60}
	for _, dur := range durations {
		for _, base := range []int{1, 2} {
			prev := 0
			for speed := 0.1; speed <= 4.0; speed += 0.1 {
				n := EffectiveCycles(base, speed, dur)
				if n < prev {
					t.Fatalf("cycles decreased: base=%d dur=%.0f speed=%.1f: %d < %d",
						base, dur, speed, n, prev)
				}
				prev = n
			}
		}
	}
}

func TestLoopContinuity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	durations := []float64{1, 7.3, 10, 42.5}
	speeds := []float64{0.25, 1, 1.7, 3}

	for _, dur := range durations {
		for _, speed := range speeds {
			for i := 0; i < 20; i++ {
				b := scene.BlobDescriptor{
					PhaseX:      rng.Float64() * 2 * math.Pi,
					PhaseY:      rng.Float64() * 2 * math.Pi,
					BaseCyclesX: 1 + rng.Intn(2),
					BaseCyclesY: 1 + rng.Intn(2),
				}
				x0, y0 := BlobCenter(b, 0, speed, dur, 1920, 1080)
				x1, y1 := BlobCenter(b, dur*1000, speed, dur, 1920, 1080)
				if math.Abs(x0-x1) > 1e-6 || math.Abs(y0-y1) > 1e-6 {
					t.Fatalf("loop seam: dur=%.1f speed=%.2f blob=%+v: (%f,%f) != (%f,%f)",
						dur, speed, b, x0, y0, x1, y1)
				}
			}
		}
	}
}

func TestMidpointOppositePhase(t *testing.T) {
	// With 5 full cycles over 10s, the x axis at t=5000ms sits half a cycle
	// away from t=0, i.e. at the mirrored offset.
	b := scene.BlobDescriptor{PhaseX: 0.3, BaseCyclesX: 1, BaseCyclesY: 1}
	o0 := AxisOffset(math.Sin, b.BaseCyclesX, b.PhaseX, 0, 1.0, 10.0, 1920)
	oMid := AxisOffset(math.Sin, b.BaseCyclesX, b.PhaseX, 5000, 1.0, 10.0, 1920)

	// sin(θ+5·π) == -sin(θ) for the odd cycle count at the midpoint
	if math.Abs(o0+oMid) > 1e-6 {
		t.Errorf("Expected opposite-phase midpoint, got %f and %f", o0, oMid)
	}
}

func TestLoopProgressRange(t *testing.T) {
	for ms := 0.0; ms < 100000; ms += 137.0 {
		p := LoopProgress(ms, 7.0)
		if p < 0 || p >= 1 {
			t.Fatalf("progress out of [0,1): %f at %fms", p, ms)
		}
	}
}

func TestDerivedPositionDeterminism(t *testing.T) {
	b := scene.BlobDescriptor{
		PhaseX: 1.1, PhaseY: 2.2, BaseCyclesX: 2, BaseCyclesY: 1,
	}
	// Equal elapsed-mod-duration must produce bit-identical positions.
	x0, y0 := BlobCenter(b, 2500, 1.3, 10, 1080, 1080)
	x1, y1 := BlobCenter(b, 2500+10000, 1.3, 10, 1080, 1080)
	if x0 != x1 || y0 != y1 {
		t.Errorf("Positions differ across loops: (%v,%v) != (%v,%v)", x0, y0, x1, y1)
	}
}
