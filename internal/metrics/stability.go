package metrics

import (
	"math"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
)

// Containment records the worst excursion of any star outside the
// container profile or below the floor. Zero means fully contained.
type Containment struct {
	name    string
	shape   container.Shape
	worst   float64
	samples int
}

func NewContainment(shape container.Shape) *Containment {
	return &Containment{name: "containment", shape: shape}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(r dynamo.Reader, t float64) {
	c.samples++
	for i := 0; i < r.Count(); i++ {
		p := r.Position(i)
		wall := math.Hypot(p.X, p.Z) - c.shape.Radius(p.Y)
		floor := c.shape.FloorHeight - p.Y
		c.worst = math.Max(c.worst, math.Max(wall, floor))
	}
}

func (c *Containment) Value() float64 { return c.worst }

func (c *Containment) Reset() {
	c.worst = 0
	c.samples = 0
}

// SettledFraction reports the share of stars frozen at the last frame.
type SettledFraction struct {
	name     string
	fraction float64
}

func NewSettledFraction() *SettledFraction {
	return &SettledFraction{name: "settled_fraction"}
}

func (s *SettledFraction) Name() string { return s.name }

func (s *SettledFraction) Observe(r dynamo.Reader, t float64) {
	n := r.Count()
	if n == 0 {
		s.fraction = 1
		return
	}
	settled := 0
	for i := 0; i < n; i++ {
		if r.IsSettled(i) {
			settled++
		}
	}
	s.fraction = float64(settled) / float64(n)
}

func (s *SettledFraction) Value() float64 { return s.fraction }
func (s *SettledFraction) Reset()         { s.fraction = 0 }
