package physics

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const frameDt = 1.0 / 60.0

func newTestSim(t *testing.T, capacity int) *Simulator {
	t.Helper()
	s, err := New(capacity, container.DefaultShape(), DefaultParams(), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	return s
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*container.Shape, *Params)
	}{
		{"zero substeps", func(_ *container.Shape, p *Params) { p.Substeps = 0 }},
		{"small cells", func(_ *container.Shape, p *Params) { p.CellSize = p.EffectiveRadius }},
		{"zero radius", func(_ *container.Shape, p *Params) { p.EffectiveRadius = 0 }},
		{"restitution above one", func(_ *container.Shape, p *Params) { p.Restitution = 1.5 }},
		{"zero streak", func(_ *container.Shape, p *Params) { p.SettleStreak = 0 }},
		{"narrow neck", func(s *container.Shape, p *Params) { s.NeckRadius = p.EffectiveRadius / 2 }},
		{"bad shape", func(s *container.Shape, _ *Params) { s.BodyRadius = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, params := container.DefaultShape(), DefaultParams()
			tt.mutate(&shape, &params)
			_, err := New(10, shape, params, nil)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestAddStarBeyondCapacity(t *testing.T) {
	s := newTestSim(t, 500)
	for i := 0; i < 500; i++ {
		idx, err := s.AddStar(0, 5, 0)
		if err != nil {
			t.Fatalf("add %d failed: %v", i, err)
		}
		if idx != i {
			t.Fatalf("expected index %d, got %d", i, idx)
		}
	}

	if _, err := s.AddStar(0, 5, 0); !errors.Is(err, dynamo.ErrStoreFull) {
		t.Errorf("expected ErrStoreFull, got %v", err)
	}
	if _, err := s.AddSettledStar(0, 5, 0); !errors.Is(err, dynamo.ErrStoreFull) {
		t.Errorf("expected ErrStoreFull from AddSettledStar, got %v", err)
	}
	if s.Count() != 500 {
		t.Errorf("expected count 500, got %d", s.Count())
	}
}

func TestResetRestartsIndices(t *testing.T) {
	s := newTestSim(t, 10)
	s.AddStar(0, 2, 0)
	s.AddStar(0, 3, 0)
	s.Reset()

	if s.Count() != 0 {
		t.Fatalf("count after reset = %d", s.Count())
	}
	if s.HasActiveStars() {
		t.Error("active stars after reset")
	}
	idx, err := s.AddStar(0, 2, 0)
	if err != nil || idx != 0 {
		t.Errorf("AddStar after reset = (%d, %v), want (0, nil)", idx, err)
	}
}

func TestAddSettledStar(t *testing.T) {
	s := newTestSim(t, 10)
	idx, err := s.AddSettledStar(1.0, 2.0, 3.0)
	if err != nil {
		t.Fatalf("add settled: %v", err)
	}
	want := r3.Vec{X: 1, Y: 2, Z: 3}
	if !s.IsSettled(idx) || s.Position(idx) != want {
		t.Fatalf("settled=%v pos=%v", s.IsSettled(idx), s.Position(idx))
	}
	if s.store.AliveFrames(idx) <= s.params.ForcedSettleFrames {
		t.Error("restored star did not skip the forced-settle countdown")
	}

	rot := s.Rotation(idx)
	s.Step(frameDt)
	if s.Position(idx) != want || s.Rotation(idx) != rot {
		t.Error("settled star moved during step")
	}
}

func TestStepIgnoresBadDt(t *testing.T) {
	for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		s := newTestSim(t, 1)
		s.AddStar(0, 2, 0)
		before := s.Position(0)
		s.Step(dt)
		if s.Position(0) != before {
			t.Errorf("Step(%v) moved the particle", dt)
		}
	}
}

func TestSingleStarRestsOnFloor(t *testing.T) {
	s := newTestSim(t, 500)
	s.AddStar(0, 5, 0)
	for i := 0; i < 300; i++ {
		s.Step(frameDt)
	}

	if !s.IsSettled(0) {
		t.Fatal("star not settled after 300 frames")
	}
	want := s.shape.FloorHeight + s.params.EffectiveRadius
	if got := s.Position(0).Y; math.Abs(got-want) > 1e-2 {
		t.Errorf("resting height = %.4f, want %.4f", got, want)
	}
	if s.Velocity(0) != (r3.Vec{}) {
		t.Error("settled star has non-zero velocity")
	}
}

func TestSettleAll(t *testing.T) {
	s := newTestSim(t, 20)
	for i := 0; i < 20; i++ {
		s.AddStar(0, 3+float64(i)*0.3, 0)
	}
	s.Step(frameDt)
	s.SettleAll()

	if s.HasActiveStars() {
		t.Fatal("active stars after SettleAll")
	}
	before := make([]r3.Vec, s.Count())
	for i := range before {
		before[i] = s.Position(i)
		if s.Velocity(i) != (r3.Vec{}) {
			t.Errorf("star %d has velocity after SettleAll", i)
		}
	}
	s.Step(frameDt)
	for i := range before {
		if s.Position(i) != before[i] {
			t.Errorf("star %d moved after SettleAll", i)
		}
	}
}

func TestWarmupSettlesSingleStar(t *testing.T) {
	s := newTestSim(t, 1)
	s.AddStar(0, 1, 0)
	s.Warmup(600)
	if s.HasActiveStars() {
		t.Error("warmup of 600 frames left the star active")
	}
}

func TestForcedSettleTimeout(t *testing.T) {
	params := DefaultParams()
	params.SettleSpeed = 0
	params.ForcedSettleFrames = 10
	s, err := New(1, container.DefaultShape(), params, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.AddStar(0, 3, 0)

	s.Step(frameDt) // 4 evaluations
	s.Step(frameDt) // 8
	if s.IsSettled(0) {
		t.Fatal("settled before the timeout")
	}
	s.Step(frameDt) // 11th evaluation exceeds the timeout
	if !s.IsSettled(0) {
		t.Error("forced settle did not fire")
	}
}

func TestSettleStreakResetsOnSpeed(t *testing.T) {
	s := newTestSim(t, 1)
	s.AddStar(0, 1, 0)
	s.store.SetStreak(0, 5)
	s.store.SetVelocity(0, r3.Vec{X: 1})
	s.evaluateSettle(0)
	if s.store.Streak(0) != 0 {
		t.Errorf("streak = %d, want 0", s.store.Streak(0))
	}

	s.store.SetVelocity(0, r3.Vec{})
	s.evaluateSettle(0)
	if s.store.Streak(0) != 1 {
		t.Errorf("streak = %d, want 1", s.store.Streak(0))
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []r3.Vec {
		s := newTestSim(t, 30)
		for i := 0; i < 30; i++ {
			s.AddStar(0.1*float64(i%3), 3+0.25*float64(i), 0)
		}
		for i := 0; i < 120; i++ {
			s.Step(frameDt)
		}
		out := make([]r3.Vec, s.Count())
		for i := range out {
			out[i] = s.Position(i)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("star %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestStarsStayInsideProfile(t *testing.T) {
	s := newTestSim(t, 150)
	for i := 0; i < 150; i++ {
		angle := float64(i) * 0.7
		s.AddStar(0.3*math.Cos(angle), 3.5+0.05*float64(i), 0.3*math.Sin(angle))
	}

	const eps = 1e-6
	floor := s.shape.FloorHeight
	for frame := 0; frame < 400; frame++ {
		s.Step(frameDt)
		for i := 0; i < s.Count(); i++ {
			p := s.Position(i)
			if d := math.Hypot(p.X, p.Z); d > s.shape.Radius(p.Y)+eps {
				t.Fatalf("frame %d star %d outside wall: d=%.4f r=%.4f", frame, i, d, s.shape.Radius(p.Y))
			}
			if p.Y < floor-eps {
				t.Fatalf("frame %d star %d below floor: y=%.4f", frame, i, p.Y)
			}
		}
	}
}

func TestCollideWallReflectsOutwardVelocity(t *testing.T) {
	s := newTestSim(t, 1)
	s.AddStar(2, 1, 0)
	s.store.SetVelocity(0, r3.Vec{X: 1})
	s.collideWall(0)

	limit := s.shape.Radius(1) - s.params.EffectiveRadius
	if got := s.Position(0).X; math.Abs(got-limit) > 1e-12 {
		t.Errorf("x = %f, want %f", got, limit)
	}
	if got := s.Velocity(0).X; math.Abs(got+s.params.Restitution) > 1e-12 {
		t.Errorf("vx = %f, want %f", got, -s.params.Restitution)
	}
}

func TestCollideFloorBounces(t *testing.T) {
	s := newTestSim(t, 1)
	s.AddStar(0, -1, 0)
	s.store.SetVelocity(0, r3.Vec{X: 1, Y: -2})
	s.collideFloor(0)

	p, v := s.Position(0), s.Velocity(0)
	if p.Y != s.shape.FloorHeight+s.params.EffectiveRadius {
		t.Errorf("y = %f", p.Y)
	}
	if math.Abs(v.Y-2*s.params.Restitution) > 1e-12 {
		t.Errorf("vy = %f, want %f", v.Y, 2*s.params.Restitution)
	}
	if math.Abs(v.X-(1-s.params.FloorFriction)) > 1e-12 {
		t.Errorf("vx = %f, want %f", v.X, 1-s.params.FloorFriction)
	}
}
