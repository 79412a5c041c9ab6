package metrics

import (
	"math"

	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/grid"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinGap tracks the smallest centre distance between two settled stars,
// expressed as a fraction of the collision diameter. Values below 1 mean
// stars came to rest interpenetrating.
type MinGap struct {
	name      string
	diameter  float64
	every     int
	frame     int
	min       float64
	hash      *grid.Hash
	positions []r3.Vec
	scratch   []int
}

// NewMinGap checks every n-th observed frame; n < 1 checks every frame.
func NewMinGap(radius float64, every int) *MinGap {
	if every < 1 {
		every = 1
	}
	return &MinGap{
		name:     "min_gap",
		diameter: 2 * radius,
		every:    every,
		min:      math.Inf(1),
		hash:     grid.New(2 * radius),
	}
}

func (g *MinGap) Name() string { return g.name }

func (g *MinGap) Observe(r dynamo.Reader, t float64) {
	g.frame++
	if (g.frame-1)%g.every != 0 {
		return
	}

	g.positions = g.positions[:0]
	for i := 0; i < r.Count(); i++ {
		if r.IsSettled(i) {
			g.positions = append(g.positions, r.Position(i))
		}
	}
	g.hash.Rebuild(g.positions)

	for a, p := range g.positions {
		g.scratch = g.hash.Neighbors(p, g.scratch[:0])
		for _, b := range g.scratch {
			if b <= a {
				continue
			}
			d := r3.Norm(r3.Sub(p, g.positions[b])) / g.diameter
			if d < g.min {
				g.min = d
			}
		}
	}
}

// Value returns the smallest gap seen, or 1 when no pair was within reach.
func (g *MinGap) Value() float64 {
	if math.IsInf(g.min, 1) || g.min > 1 {
		return 1
	}
	return g.min
}

func (g *MinGap) Reset() {
	g.frame = 0
	g.min = math.Inf(1)
}
