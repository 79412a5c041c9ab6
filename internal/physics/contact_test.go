package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func vecNear(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestResolveContact(t *testing.T) {
	const r, e = 0.5, 0.5

	tests := []struct {
		name     string
		a, b     body
		touching bool
		impulse  bool
		posA     r3.Vec
		posB     r3.Vec
		velA     r3.Vec
		velB     r3.Vec
	}{
		{
			name:     "apart",
			a:        body{pos: r3.Vec{X: 2}},
			b:        body{},
			touching: false,
		},
		{
			name:     "coincident centres skipped",
			a:        body{pos: r3.Vec{X: 1}},
			b:        body{pos: r3.Vec{X: 1}},
			touching: false,
		},
		{
			name:     "dynamic pair closing",
			a:        body{pos: r3.Vec{X: 0.8}, vel: r3.Vec{X: -1}},
			b:        body{vel: r3.Vec{X: 1}},
			touching: true,
			impulse:  true,
			posA:     r3.Vec{X: 0.1},
			posB:     r3.Vec{X: -0.1},
			velA:     r3.Vec{X: 1.5},
			velB:     r3.Vec{X: -1.5},
		},
		{
			name:     "settled obstacle takes nothing",
			a:        body{pos: r3.Vec{Y: 0.8}, vel: r3.Vec{Y: -2}},
			b:        body{settled: true},
			touching: true,
			impulse:  true,
			posA:     r3.Vec{Y: 0.2},
			velA:     r3.Vec{Y: 3},
		},
		{
			name:     "separating pair only pushed",
			a:        body{pos: r3.Vec{Z: 0.9}, vel: r3.Vec{Z: 1}},
			b:        body{},
			touching: true,
			posA:     r3.Vec{Z: 0.05},
			posB:     r3.Vec{Z: -0.05},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := resolveContact(tt.a, tt.b, r, e)
			if c.touching != tt.touching || c.impulse != tt.impulse {
				t.Fatalf("touching=%v impulse=%v, want %v/%v", c.touching, c.impulse, tt.touching, tt.impulse)
			}
			if !vecNear(c.posA, tt.posA, 1e-12) || !vecNear(c.posB, tt.posB, 1e-12) {
				t.Errorf("position deltas = %v %v, want %v %v", c.posA, c.posB, tt.posA, tt.posB)
			}
			if !vecNear(c.velA, tt.velA, 1e-12) || !vecNear(c.velB, tt.velB, 1e-12) {
				t.Errorf("velocity deltas = %v %v, want %v %v", c.velA, c.velB, tt.velA, tt.velB)
			}
		})
	}
}

func TestResolveContactConservesMomentumBetweenDynamic(t *testing.T) {
	a := body{pos: r3.Vec{X: 0.3, Y: 0.4}, vel: r3.Vec{X: -0.7, Y: -0.2, Z: 0.1}}
	b := body{vel: r3.Vec{X: 0.4, Y: 0.9}}
	c := resolveContact(a, b, 0.5, 0.3)
	if !c.impulse {
		t.Fatal("expected an impulse")
	}
	if sum := r3.Add(c.velA, c.velB); r3.Norm(sum) > 1e-12 {
		t.Errorf("momentum not conserved: %v", sum)
	}
}

func TestStruckDynamicNeighbourWakes(t *testing.T) {
	s := newTestSim(t, 2)
	s.AddStar(0, 1, 0)
	s.AddStar(0, 1+s.params.EffectiveRadius, 0)
	s.store.SetVelocity(0, r3.Vec{Y: 1})
	s.store.SetVelocity(1, r3.Vec{})
	s.store.SetStreak(1, 10)

	s.grid.Rebuild(s.store.Positions())
	s.collideNeighbors(0)

	if s.store.Streak(1) != 0 {
		t.Errorf("struck neighbour streak = %d, want 0", s.store.Streak(1))
	}
	if s.Velocity(1).Y <= 0 {
		t.Errorf("struck neighbour did not gain velocity: %v", s.Velocity(1))
	}
}

func TestSettledNeighbourNeverWakes(t *testing.T) {
	s := newTestSim(t, 2)
	s.AddSettledStar(0, 1, 0)
	s.AddStar(0, 1+s.params.EffectiveRadius, 0)
	s.store.SetVelocity(1, r3.Vec{Y: -1})

	s.grid.Rebuild(s.store.Positions())
	s.collideNeighbors(1)

	if !s.IsSettled(0) || s.Position(0) != (r3.Vec{Y: 1}) || s.Velocity(0) != (r3.Vec{}) {
		t.Error("settled obstacle was disturbed")
	}
	gap := s.Position(1).Y - s.Position(0).Y
	if math.Abs(gap-2*s.params.EffectiveRadius) > 1e-12 {
		t.Errorf("mover not pushed fully clear: gap %f", gap)
	}
	if s.Velocity(1).Y <= 0 {
		t.Errorf("mover did not bounce: %v", s.Velocity(1))
	}
}

func TestLowerDynamicPairSkipped(t *testing.T) {
	s := newTestSim(t, 2)
	s.AddStar(0, 1, 0)
	s.AddStar(0, 1.1, 0)
	before0, before1 := s.Position(0), s.Position(1)

	s.grid.Rebuild(s.store.Positions())
	s.collideNeighbors(1)

	if s.Position(0) != before0 || s.Position(1) != before1 {
		t.Error("pair handled from the higher index")
	}
}
