package preview

import (
	"fmt"
	"sync"
)

// Owner identifies which scheduler currently drives the render engine.
type Owner int

const (
	OwnerNone Owner = iota
	OwnerPreview
	OwnerCapture
)

func (o Owner) String() string {
	switch o {
	case OwnerPreview:
		return "preview"
	case OwnerCapture:
		return "capture"
	}
	return "none"
}

// Gate enforces that at most one scheduler owns the render target. The
// hand-off is explicit: a scheduler acquires before its first tick and
// releases after its last, and an acquire while another owner is active is
// an error, not a queue.
type Gate struct {
	mu    sync.Mutex
	owner Owner
}

func NewGate() *Gate { return &Gate{} }

func (g *Gate) Acquire(o Owner) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.owner != OwnerNone {
		return fmt.Errorf("планировщик %s уже активен", g.owner)
	}
	g.owner = o
	return nil
}

func (g *Gate) Release(o Owner) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.owner == o {
		g.owner = OwnerNone
	}
}

func (g *Gate) Current() Owner {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.owner
}
