// Package particles steps the weather layer. The simulator is the only
// stateful animation component; the render engine reads its current slice
// and never mutates it.
package particles

import (
	"math"
	"math/rand"

	"github.com/ivlev/scene2video/internal/scene"
)

// Particle is transient simulation state. Particles are never persisted:
// the whole set is regenerated when weather type, intensity or canvas size
// changes, and individual particles wrap instead of dying.
type Particle struct {
	X           float64
	Y           float64
	Speed       float64
	Size        float64
	Opacity     float64
	WobblePhase float64
}

type Kind int

const (
	KindNone Kind = iota
	KindSnow
	KindRain
)

const (
	rainPerIntensity = 5
	snowPerIntensity = 2
	wrapResetY       = -10
	wobbleStep       = 0.05
	wobbleAmplitude  = 0.5
)

// Simulator owns the particle set for one canvas.
type Simulator struct {
	kind      Kind
	intensity int
	width     int
	height    int
	parts     []Particle
	rng       *rand.Rand
}

func NewSimulator(rng *rand.Rand) *Simulator {
	return &Simulator{rng: rng}
}

// Configure matches the simulator to the scene's weather and canvas. The
// particle set is fully regenerated only when one of those actually changed;
// a steady per-frame call with the same arguments is free.
func (s *Simulator) Configure(w scene.Weather, width, height int) {
	kind, intensity := classify(w)
	if kind == s.kind && intensity == s.intensity && width == s.width && height == s.height {
		return
	}
	s.kind = kind
	s.intensity = intensity
	s.width = width
	s.height = height
	s.regenerate()
}

func classify(w scene.Weather) (Kind, int) {
	switch w.(type) {
	case nil:
		return KindNone, 0
	case scene.Snow:
		return KindSnow, w.Intensity()
	case scene.Rain:
		return KindRain, w.Intensity()
	}
	return KindNone, 0
}

func (s *Simulator) regenerate() {
	count := 0
	switch s.kind {
	case KindRain:
		count = s.intensity * rainPerIntensity
	case KindSnow:
		count = s.intensity * snowPerIntensity
	}
	s.parts = make([]Particle, count)
	for i := range s.parts {
		s.parts[i] = s.spawn()
	}
}

func (s *Simulator) spawn() Particle {
	p := Particle{
		X:           s.rng.Float64() * float64(s.width),
		Y:           s.rng.Float64() * float64(s.height),
		WobblePhase: s.rng.Float64() * 2 * math.Pi,
	}
	switch s.kind {
	case KindRain:
		p.Speed = 8 + s.rng.Float64()*12
		p.Size = 1 + s.rng.Float64()*2
		p.Opacity = 0.3 + s.rng.Float64()*0.4
	case KindSnow:
		p.Speed = 0.5 + s.rng.Float64()*1.5
		p.Size = 1 + s.rng.Float64()*3
		p.Opacity = 0.4 + s.rng.Float64()*0.6
	}
	return p
}

// Step advances every particle by one tick. A particle leaving the bottom
// edge wraps to just above the top at a fresh random x; density stays
// constant without any allocation churn.
func (s *Simulator) Step() {
	snow := s.kind == KindSnow
	for i := range s.parts {
		p := &s.parts[i]
		p.Y += p.Speed
		if snow {
			p.X += math.Sin(p.WobblePhase) * wobbleAmplitude
			p.WobblePhase += wobbleStep
		}
		if p.Y > float64(s.height) {
			p.Y = wrapResetY
			p.X = s.rng.Float64() * float64(s.width)
		}
	}
}

// Particles returns the live particle slice. Callers must treat it as
// read-only; it is reused between ticks.
func (s *Simulator) Particles() []Particle { return s.parts }
